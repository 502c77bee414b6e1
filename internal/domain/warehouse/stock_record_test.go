package warehouse

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

func TestNewStockRecord(t *testing.T) {
	t.Run("positive initial delta", func(t *testing.T) {
		r, err := NewStockRecord(uuid.New(), nil, uuid.New(), dec("120"), dec("1.2"))
		require.NoError(t, err)
		assert.True(t, dec("120").Equal(r.QuantityInStock))
		assert.True(t, dec("1.2").Equal(r.CostPrice))
	})

	t.Run("negative initial delta clamps to zero", func(t *testing.T) {
		r, err := NewStockRecord(uuid.New(), nil, uuid.New(), dec("-5"), dec("1.2"))
		require.NoError(t, err)
		assert.True(t, r.QuantityInStock.IsZero())
	})

	t.Run("requires product and warehouse", func(t *testing.T) {
		_, err := NewStockRecord(uuid.Nil, nil, uuid.New(), dec("1"), dec("1"))
		assert.Error(t, err)
		_, err = NewStockRecord(uuid.New(), nil, uuid.Nil, dec("1"), dec("1"))
		assert.Error(t, err)
	})
}

func TestStockRecordApplyDelta(t *testing.T) {
	t.Run("accumulates signed deltas", func(t *testing.T) {
		r, err := NewStockRecord(uuid.New(), nil, uuid.New(), dec("100"), dec("10"))
		require.NoError(t, err)

		r.ApplyDelta(dec("50"), dec("16"))
		assert.True(t, dec("150").Equal(r.QuantityInStock))

		r.ApplyDelta(dec("-30"), dec("16"))
		assert.True(t, dec("120").Equal(r.QuantityInStock))
	})

	t.Run("floors at zero on large decrement", func(t *testing.T) {
		r, err := NewStockRecord(uuid.New(), nil, uuid.New(), dec("5"), dec("10"))
		require.NoError(t, err)

		r.ApplyDelta(dec("-10"), dec("10"))
		assert.True(t, r.QuantityInStock.IsZero())
	})

	t.Run("cost is overwritten, not averaged", func(t *testing.T) {
		r, err := NewStockRecord(uuid.New(), nil, uuid.New(), dec("100"), dec("10"))
		require.NoError(t, err)

		r.ApplyDelta(dec("50"), dec("16"))
		// A weighted average would give 12; the warehouse record
		// keeps the last purchase cost instead.
		assert.True(t, dec("16").Equal(r.CostPrice))
	})
}
