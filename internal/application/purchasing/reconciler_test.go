package purchasing

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/retail/backoffice/internal/domain/catalog"
	"github.com/retail/backoffice/internal/domain/purchasing"
	"github.com/retail/backoffice/internal/domain/warehouse"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

type reconcilerFixture struct {
	products     *memProducts
	variants     *memVariants
	stockRecords *memStockRecords
	reconciler   *Reconciler
	warehouseID  uuid.UUID
}

func newReconcilerFixture() *reconcilerFixture {
	products := newMemProducts()
	variants := newMemVariants()
	stockRecords := newMemStockRecords()
	logger := zap.NewNop()
	synthesizer := NewVariantSynthesizer(variants, logger)

	return &reconcilerFixture{
		products:     products,
		variants:     variants,
		stockRecords: stockRecords,
		reconciler:   NewReconciler(products, stockRecords, synthesizer, logger),
		warehouseID:  uuid.New(),
	}
}

func (f *reconcilerFixture) addProduct(t *testing.T, name string, stock, cost decimal.Decimal) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct(name, "")
	require.NoError(t, err)
	p.Stock = stock
	p.CostPrice = cost
	require.NoError(t, f.products.Save(context.Background(), p))
	return p
}

func receivedPurchase(t *testing.T, warehouseID uuid.UUID) *purchasing.Purchase {
	t.Helper()
	p, err := purchasing.NewPurchase("ACH-000100", uuid.New(), "Fournisseur", warehouseID, decimal.Zero)
	require.NoError(t, err)
	return p
}

func TestReconcilerApplyCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("carton line hits all three surfaces", func(t *testing.T) {
		f := newReconcilerFixture()
		product := f.addProduct(t, "Lait", decimal.Zero, decimal.Zero)

		p := receivedPurchase(t, f.warehouseID)
		_, err := p.AddLine(product.ID, nil, "Lait", dec("10"), purchasing.UnitTypeCarton, dec("24"), dec("0.5"), purchasing.PackagingNone, dec("30"))
		require.NoError(t, err)
		require.NoError(t, p.MarkReceived())

		require.NoError(t, f.reconciler.ApplyCreate(ctx, p))

		// base = 10 * 24 * 0.5 = 120
		assert.True(t, dec("120").Equal(product.Stock), "got %s", product.Stock)
		// first purchase: cost = line price applied over base units
		assert.True(t, dec("2.5").Equal(product.CostPrice), "got %s", product.CostPrice)

		record, err := f.stockRecords.FindByKey(ctx, product.ID, nil, f.warehouseID)
		require.NoError(t, err)
		assert.True(t, dec("120").Equal(record.QuantityInStock))
		assert.True(t, dec("30").Equal(record.CostPrice), "warehouse keeps raw line price")

		carton := f.variants.byUnitType("carton")
		require.NotNil(t, carton)
		assert.True(t, dec("10").Equal(carton.Stock), "carton variant moves by carton count")
		assert.True(t, dec("24").Equal(carton.QuantityContained))
		assert.True(t, dec("30").Equal(carton.PurchasePrice))

		unit := f.variants.byUnitType("unit")
		require.NotNil(t, unit)
		assert.True(t, dec("240").Equal(unit.Stock), "10 cartons of 24 units")
		assert.True(t, dec("1.25").Equal(unit.PurchasePrice), "30 / 24")
	})

	t.Run("weighted average across purchases", func(t *testing.T) {
		f := newReconcilerFixture()
		product := f.addProduct(t, "Riz", dec("100"), dec("10"))

		p := receivedPurchase(t, f.warehouseID)
		_, err := p.AddLine(product.ID, nil, "Riz", dec("50"), purchasing.UnitTypeKilo, decimal.Zero, decimal.Zero, purchasing.PackagingNone, dec("16"))
		require.NoError(t, err)
		require.NoError(t, p.MarkReceived())

		require.NoError(t, f.reconciler.ApplyCreate(ctx, p))

		assert.True(t, dec("150").Equal(product.Stock))
		assert.True(t, dec("12").Equal(product.CostPrice), "(100*10 + 50*16) / 150")
	})

	t.Run("pending purchase contributes nothing", func(t *testing.T) {
		f := newReconcilerFixture()
		product := f.addProduct(t, "Riz", decimal.Zero, decimal.Zero)

		p := receivedPurchase(t, f.warehouseID)
		_, err := p.AddLine(product.ID, nil, "Riz", dec("50"), purchasing.UnitTypeKilo, decimal.Zero, decimal.Zero, purchasing.PackagingNone, dec("16"))
		require.NoError(t, err)

		require.NoError(t, f.reconciler.ApplyCreate(ctx, p))
		assert.True(t, product.Stock.IsZero())
		assert.Empty(t, f.stockRecords.rows)
	})

	t.Run("store error mid-purchase leaves earlier lines applied", func(t *testing.T) {
		f := newReconcilerFixture()
		first := f.addProduct(t, "Riz", decimal.Zero, decimal.Zero)
		second := f.addProduct(t, "Lait", decimal.Zero, decimal.Zero)
		f.products.failOn = second.ID

		p := receivedPurchase(t, f.warehouseID)
		_, err := p.AddLine(first.ID, nil, "Riz", dec("10"), purchasing.UnitTypeKilo, decimal.Zero, decimal.Zero, purchasing.PackagingNone, dec("1"))
		require.NoError(t, err)
		_, err = p.AddLine(second.ID, nil, "Lait", dec("5"), purchasing.UnitTypeKilo, decimal.Zero, decimal.Zero, purchasing.PackagingNone, dec("2"))
		require.NoError(t, err)
		require.NoError(t, p.MarkReceived())

		err = f.reconciler.ApplyCreate(ctx, p)
		var rerr *ReconcileError
		require.ErrorAs(t, err, &rerr)
		assert.Equal(t, 1, rerr.FailedLine)
		assert.Equal(t, 1, rerr.AppliedLines)

		// The first line's mutations are not rolled back
		assert.True(t, dec("10").Equal(first.Stock))
		assert.True(t, second.Stock.IsZero())
	})
}

func TestReconcilerApplyEdit(t *testing.T) {
	ctx := context.Background()

	t.Run("quantity edit applies only the delta", func(t *testing.T) {
		f := newReconcilerFixture()
		product := f.addProduct(t, "Riz", decimal.Zero, decimal.Zero)

		p := receivedPurchase(t, f.warehouseID)
		_, err := p.AddLine(product.ID, nil, "Riz", dec("10"), purchasing.UnitTypeKilo, decimal.Zero, decimal.Zero, purchasing.PackagingNone, dec("2"))
		require.NoError(t, err)
		require.NoError(t, p.MarkReceived())
		require.NoError(t, f.reconciler.ApplyCreate(ctx, p))
		require.True(t, dec("10").Equal(product.Stock))

		oldItems := make([]purchasing.PurchaseLineItem, len(p.Items))
		copy(oldItems, p.Items)

		edited, err := purchasing.NewPurchaseLineItem(p.ID, product.ID, nil, "Riz", dec("15"), purchasing.UnitTypeKilo, decimal.Zero, decimal.Zero, purchasing.PackagingNone, dec("2"))
		require.NoError(t, err)
		require.NoError(t, p.ReplaceLines([]purchasing.PurchaseLineItem{*edited}))

		require.NoError(t, f.reconciler.ApplyEdit(ctx, p, oldItems))

		assert.True(t, dec("15").Equal(product.Stock), "+5 delta, not +15; got %s", product.Stock)

		record, err := f.stockRecords.FindByKey(ctx, product.ID, nil, f.warehouseID)
		require.NoError(t, err)
		assert.True(t, dec("15").Equal(record.QuantityInStock))

		kilo := f.variants.byUnitType("kilo")
		require.NotNil(t, kilo)
		assert.True(t, dec("15").Equal(kilo.Stock))
	})

	t.Run("price edit recomputes cost symmetrically", func(t *testing.T) {
		f := newReconcilerFixture()
		product := f.addProduct(t, "Riz", dec("100"), dec("10"))

		p := receivedPurchase(t, f.warehouseID)
		_, err := p.AddLine(product.ID, nil, "Riz", dec("50"), purchasing.UnitTypeKilo, decimal.Zero, decimal.Zero, purchasing.PackagingNone, dec("16"))
		require.NoError(t, err)
		require.NoError(t, p.MarkReceived())
		require.NoError(t, f.reconciler.ApplyCreate(ctx, p))
		require.True(t, dec("12").Equal(product.CostPrice))

		oldItems := make([]purchasing.PurchaseLineItem, len(p.Items))
		copy(oldItems, p.Items)

		edited, err := purchasing.NewPurchaseLineItem(p.ID, product.ID, nil, "Riz", dec("50"), purchasing.UnitTypeKilo, decimal.Zero, decimal.Zero, purchasing.PackagingNone, dec("22"))
		require.NoError(t, err)
		require.NoError(t, p.ReplaceLines([]purchasing.PurchaseLineItem{*edited}))

		require.NoError(t, f.reconciler.ApplyEdit(ctx, p, oldItems))

		// Removing 50@16 restores 100@10, then adding 50@22 gives
		// (100*10 + 50*22) / 150 = 14
		assert.True(t, dec("150").Equal(product.Stock))
		assert.True(t, dec("14").Equal(product.CostPrice), "got %s", product.CostPrice)
	})

	t.Run("drained stock edit floors the recomputed cost", func(t *testing.T) {
		// Sales have drained stock bought at mixed prices down to 60
		// units averaged below the expensive line's price. Shrinking
		// that line would remove more value than remains; the recompute
		// must floor at zero and the edit must go through, keeping the
		// warehouse record and the product aggregate in step.
		f := newReconcilerFixture()
		product := f.addProduct(t, "Huile", dec("60"), dec("10.6667"))

		p := receivedPurchase(t, f.warehouseID)
		_, err := p.AddLine(product.ID, nil, "Huile", dec("50"), purchasing.UnitTypeKilo, decimal.Zero, decimal.Zero, purchasing.PackagingNone, dec("30"))
		require.NoError(t, err)
		require.NoError(t, p.MarkReceived())

		seed, err := warehouse.NewStockRecord(product.ID, nil, f.warehouseID, dec("60"), dec("30"))
		require.NoError(t, err)
		require.NoError(t, f.stockRecords.Save(ctx, seed))

		oldItems := make([]purchasing.PurchaseLineItem, len(p.Items))
		copy(oldItems, p.Items)

		edited, err := purchasing.NewPurchaseLineItem(p.ID, product.ID, nil, "Huile", dec("1"), purchasing.UnitTypeKilo, decimal.Zero, decimal.Zero, purchasing.PackagingNone, dec("30"))
		require.NoError(t, err)
		require.NoError(t, p.ReplaceLines([]purchasing.PurchaseLineItem{*edited}))

		require.NoError(t, f.reconciler.ApplyEdit(ctx, p, oldItems))

		assert.True(t, dec("11").Equal(product.Stock), "got %s", product.Stock)
		// Removal wipes the remaining value, so the new line's price
		// carries alone: (0*10 + 1*30) / 11
		assert.True(t, dec("2.7273").Equal(product.CostPrice), "got %s", product.CostPrice)

		record, err := f.stockRecords.FindByKey(ctx, product.ID, nil, f.warehouseID)
		require.NoError(t, err)
		assert.True(t, dec("11").Equal(record.QuantityInStock), "warehouse record stays in step; got %s", record.QuantityInStock)
	})

	t.Run("unit type transition moves both base variants", func(t *testing.T) {
		f := newReconcilerFixture()
		product := f.addProduct(t, "Lait", decimal.Zero, decimal.Zero)

		p := receivedPurchase(t, f.warehouseID)
		_, err := p.AddLine(product.ID, nil, "Lait", dec("10"), purchasing.UnitTypeCarton, dec("24"), dec("0.5"), purchasing.PackagingNone, dec("30"))
		require.NoError(t, err)
		require.NoError(t, p.MarkReceived())
		require.NoError(t, f.reconciler.ApplyCreate(ctx, p))

		carton := f.variants.byUnitType("carton")
		require.NotNil(t, carton)
		require.True(t, dec("10").Equal(carton.Stock))

		oldItems := make([]purchasing.PurchaseLineItem, len(p.Items))
		copy(oldItems, p.Items)

		edited, err := purchasing.NewPurchaseLineItem(p.ID, product.ID, nil, "Lait", dec("80"), purchasing.UnitTypeKilo, decimal.Zero, decimal.Zero, purchasing.PackagingNone, dec("2"))
		require.NoError(t, err)
		require.NoError(t, p.ReplaceLines([]purchasing.PurchaseLineItem{*edited}))

		require.NoError(t, f.reconciler.ApplyEdit(ctx, p, oldItems))

		assert.True(t, carton.Stock.IsZero(), "old carton contribution reversed")
		kilo := f.variants.byUnitType("kilo")
		require.NotNil(t, kilo)
		assert.True(t, dec("80").Equal(kilo.Stock), "new kilo contribution applied")

		// Aggregate moved by the base delta: 120 -> 80
		assert.True(t, dec("80").Equal(product.Stock))
	})

	t.Run("dropped line is reversed", func(t *testing.T) {
		f := newReconcilerFixture()
		riz := f.addProduct(t, "Riz", decimal.Zero, decimal.Zero)
		lait := f.addProduct(t, "Lait", decimal.Zero, decimal.Zero)

		p := receivedPurchase(t, f.warehouseID)
		_, err := p.AddLine(riz.ID, nil, "Riz", dec("10"), purchasing.UnitTypeKilo, decimal.Zero, decimal.Zero, purchasing.PackagingNone, dec("1"))
		require.NoError(t, err)
		_, err = p.AddLine(lait.ID, nil, "Lait", dec("20"), purchasing.UnitTypeKilo, decimal.Zero, decimal.Zero, purchasing.PackagingNone, dec("2"))
		require.NoError(t, err)
		require.NoError(t, p.MarkReceived())
		require.NoError(t, f.reconciler.ApplyCreate(ctx, p))

		oldItems := make([]purchasing.PurchaseLineItem, len(p.Items))
		copy(oldItems, p.Items)

		kept, err := purchasing.NewPurchaseLineItem(p.ID, riz.ID, nil, "Riz", dec("10"), purchasing.UnitTypeKilo, decimal.Zero, decimal.Zero, purchasing.PackagingNone, dec("1"))
		require.NoError(t, err)
		require.NoError(t, p.ReplaceLines([]purchasing.PurchaseLineItem{*kept}))

		require.NoError(t, f.reconciler.ApplyEdit(ctx, p, oldItems))

		assert.True(t, dec("10").Equal(riz.Stock))
		assert.True(t, lait.Stock.IsZero(), "dropped line's contribution removed")
	})
}

func TestReconcilerApplyDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("floors every surface at zero", func(t *testing.T) {
		f := newReconcilerFixture()
		product := f.addProduct(t, "Riz", decimal.Zero, decimal.Zero)

		p := receivedPurchase(t, f.warehouseID)
		_, err := p.AddLine(product.ID, nil, "Riz", dec("10"), purchasing.UnitTypeKilo, decimal.Zero, decimal.Zero, purchasing.PackagingNone, dec("2"))
		require.NoError(t, err)
		require.NoError(t, p.MarkReceived())
		require.NoError(t, f.reconciler.ApplyCreate(ctx, p))

		// Stock drained below the purchase's contribution in the meantime
		product.ApplyStockDelta(dec("-5"))
		require.True(t, dec("5").Equal(product.Stock))

		require.NoError(t, f.reconciler.ApplyDelete(ctx, p))

		assert.True(t, product.Stock.IsZero(), "floored at 0, not -5")
		assert.True(t, product.CostPrice.IsZero(), "delete path zeroes the average cost")

		record, err := f.stockRecords.FindByKey(ctx, product.ID, nil, f.warehouseID)
		require.NoError(t, err)
		assert.True(t, record.QuantityInStock.IsZero())

		kilo := f.variants.byUnitType("kilo")
		require.NotNil(t, kilo)
		assert.True(t, kilo.Stock.IsZero())
	})

	t.Run("pending purchase deletion touches nothing", func(t *testing.T) {
		f := newReconcilerFixture()
		product := f.addProduct(t, "Riz", dec("50"), dec("3"))

		p := receivedPurchase(t, f.warehouseID)
		_, err := p.AddLine(product.ID, nil, "Riz", dec("10"), purchasing.UnitTypeKilo, decimal.Zero, decimal.Zero, purchasing.PackagingNone, dec("2"))
		require.NoError(t, err)

		require.NoError(t, f.reconciler.ApplyDelete(ctx, p))
		assert.True(t, dec("50").Equal(product.Stock))
		assert.True(t, dec("3").Equal(product.CostPrice))
	})
}
