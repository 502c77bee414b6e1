package purchasing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestBaseQuantity_Kilo(t *testing.T) {
	t.Run("counts as-is", func(t *testing.T) {
		base := BaseQuantity(UnitTypeKilo, dec("12.5"), decimal.Zero, decimal.Zero)
		assert.True(t, dec("12.5").Equal(base))
	})

	t.Run("ignores multipliers", func(t *testing.T) {
		// Packaging multipliers only matter for variant synthesis,
		// never for the canonical quantity.
		base := BaseQuantity(UnitTypeKilo, dec("12.5"), dec("24"), dec("0.5"))
		assert.True(t, dec("12.5").Equal(base))
	})
}

func TestBaseQuantity_Carton(t *testing.T) {
	t.Run("multiplies both factors", func(t *testing.T) {
		base := BaseQuantity(UnitTypeCarton, dec("10"), dec("24"), dec("0.5"))
		assert.True(t, dec("120").Equal(base), "got %s", base)
	})

	t.Run("missing multipliers default to 1", func(t *testing.T) {
		base := BaseQuantity(UnitTypeCarton, dec("10"), decimal.Zero, decimal.Zero)
		assert.True(t, dec("10").Equal(base))
	})
}

func TestBaseQuantity_PaquetAndSac(t *testing.T) {
	t.Run("paquet uses weight per unit", func(t *testing.T) {
		base := BaseQuantity(UnitTypePaquet, dec("5"), decimal.Zero, dec("2"))
		assert.True(t, dec("10").Equal(base))
	})

	t.Run("sac uses weight per unit", func(t *testing.T) {
		base := BaseQuantity(UnitTypeSac, dec("3"), decimal.Zero, dec("25"))
		assert.True(t, dec("75").Equal(base))
	})

	t.Run("carton multiplier is ignored", func(t *testing.T) {
		base := BaseQuantity(UnitTypePaquet, dec("5"), dec("24"), dec("2"))
		assert.True(t, dec("10").Equal(base))
	})
}

func TestBaseQuantity_NonPositiveQuantity(t *testing.T) {
	assert.True(t, BaseQuantity(UnitTypeKilo, decimal.Zero, decimal.Zero, decimal.Zero).IsZero())
	assert.True(t, BaseQuantity(UnitTypeCarton, dec("-3"), dec("24"), dec("0.5")).IsZero())
}

func TestUnitTypeIsValid(t *testing.T) {
	assert.True(t, UnitTypeKilo.IsValid())
	assert.True(t, UnitTypeCarton.IsValid())
	assert.True(t, UnitTypePaquet.IsValid())
	assert.True(t, UnitTypeSac.IsValid())
	assert.False(t, UnitTypeUnit.IsValid(), "unit rows are derived, never purchased")
	assert.False(t, UnitType("pallet").IsValid())
}
