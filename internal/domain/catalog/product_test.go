package catalog

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestProductApplyStockDelta(t *testing.T) {
	t.Run("adds and removes by delta", func(t *testing.T) {
		p, err := NewProduct("Riz parfumé", "RIZ-01")
		require.NoError(t, err)

		p.ApplyStockDelta(dec("120"))
		assert.True(t, dec("120").Equal(p.Stock))

		p.ApplyStockDelta(dec("-20"))
		assert.True(t, dec("100").Equal(p.Stock))
	})

	t.Run("floors at zero", func(t *testing.T) {
		p, err := NewProduct("Riz parfumé", "RIZ-02")
		require.NoError(t, err)

		p.ApplyStockDelta(dec("5"))
		p.ApplyStockDelta(dec("-10"))
		assert.True(t, p.Stock.IsZero(), "stock must never go negative, got %s", p.Stock)
	})

	t.Run("raises stock adjusted event", func(t *testing.T) {
		p, err := NewProduct("Riz parfumé", "RIZ-03")
		require.NoError(t, err)
		p.ClearDomainEvents()

		p.ApplyStockDelta(dec("10"))
		events := p.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeProductStockAdjusted, events[0].EventType())
	})

	t.Run("raises low stock event under threshold", func(t *testing.T) {
		p, err := NewProduct("Riz parfumé", "RIZ-04")
		require.NoError(t, err)
		p.AlertThreshold = dec("10")
		p.ApplyStockDelta(dec("20"))
		p.ClearDomainEvents()

		p.ApplyStockDelta(dec("-15"))
		events := p.GetDomainEvents()
		require.Len(t, events, 2)
		assert.Equal(t, EventTypeProductLowStock, events[1].EventType())
	})
}

func TestProductCostPrice(t *testing.T) {
	p, err := NewProduct("Riz parfumé", "RIZ-05")
	require.NoError(t, err)

	require.NoError(t, p.UpdateCostPrice(dec("12")))
	assert.True(t, dec("12").Equal(p.CostPrice))

	assert.Error(t, p.UpdateCostPrice(dec("-1")))
}

func TestProductVariantStock(t *testing.T) {
	productID := uuid.New()

	t.Run("delta floored at zero", func(t *testing.T) {
		v, err := NewProductVariant(productID, nil, "Riz (kilo)", "kilo", dec("1"), dec("1.2"), dec("5"))
		require.NoError(t, err)

		v.ApplyStockDelta(dec("-10"))
		assert.True(t, v.Stock.IsZero())
	})

	t.Run("negative initial stock clamped", func(t *testing.T) {
		v, err := NewProductVariant(productID, nil, "Riz (kilo)", "kilo", dec("1"), dec("1.2"), dec("-3"))
		require.NoError(t, err)
		assert.True(t, v.Stock.IsZero())
	})
}

func TestProductVariantPredicates(t *testing.T) {
	productID := uuid.New()

	t.Run("kilo base row", func(t *testing.T) {
		v, err := NewProductVariant(productID, nil, "Riz (kilo)", "kilo", dec("1"), dec("1.2"), decimal.Zero)
		require.NoError(t, err)
		assert.True(t, v.IsKiloBase())
		assert.False(t, v.IsStaleDerivedKilo())
	})

	t.Run("unset contained quantity is still base", func(t *testing.T) {
		v, err := NewProductVariant(productID, nil, "Riz (kilo)", "kilo", decimal.Zero, dec("1.2"), decimal.Zero)
		require.NoError(t, err)
		assert.True(t, v.IsKiloBase())
		assert.False(t, v.IsStaleDerivedKilo())
	})

	t.Run("fractional kilo row is stale derived", func(t *testing.T) {
		v, err := NewProductVariant(productID, nil, "Riz (unité)", "kilo", dec("0.5"), dec("0.6"), dec("2"))
		require.NoError(t, err)
		assert.True(t, v.IsStaleDerivedKilo())
	})

	t.Run("carton row is neither", func(t *testing.T) {
		v, err := NewProductVariant(productID, nil, "Lait (carton)", "carton", dec("24"), dec("30"), dec("10"))
		require.NoError(t, err)
		assert.False(t, v.IsKiloBase())
		assert.False(t, v.IsStaleDerivedKilo())
	})
}

func TestProductVariantMatchesKey(t *testing.T) {
	productID := uuid.New()
	variantID := uuid.New()

	base, err := NewProductVariant(productID, nil, "Riz (kilo)", "kilo", dec("1"), dec("1.2"), decimal.Zero)
	require.NoError(t, err)
	scoped, err := NewProductVariant(productID, &variantID, "Riz 5kg (sac)", "sac", dec("5"), dec("8"), decimal.Zero)
	require.NoError(t, err)

	assert.True(t, base.MatchesKey(productID, nil))
	assert.False(t, base.MatchesKey(productID, &variantID))
	assert.True(t, scoped.MatchesKey(productID, &variantID))
	assert.False(t, scoped.MatchesKey(productID, nil))
	assert.False(t, scoped.MatchesKey(uuid.New(), &variantID))
}
