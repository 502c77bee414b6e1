package purchasing

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/retail/backoffice/internal/domain/catalog"
	"github.com/retail/backoffice/internal/domain/purchasing"
	"github.com/retail/backoffice/internal/domain/shared"
	"github.com/retail/backoffice/internal/domain/warehouse"
)

// ReconcileError reports a reconciliation that stopped partway through a
// purchase's lines. Lines before FailedLine were fully applied and stay
// applied: reconciliation is not wrapped in a transaction, and the
// caller must inspect stock manually after a partial failure.
type ReconcileError struct {
	PurchaseID   uuid.UUID
	FailedLine   int // index of the line that failed
	AppliedLines int // lines fully applied before the failure
	Err          error
}

// Error implements the error interface
func (e *ReconcileError) Error() string {
	return fmt.Sprintf("reconciliation of purchase %s stopped at line %d (%d lines already applied): %v", e.PurchaseID, e.FailedLine, e.AppliedLines, e.Err)
}

// Unwrap returns the underlying error
func (e *ReconcileError) Unwrap() error {
	return e.Err
}

// Reconciler applies a purchase's stock contribution across the three
// storage surfaces: per-warehouse stock records, the product aggregate
// (stock plus weighted-average cost), and variant rows. Lines are
// processed sequentially, each awaited before the next; a store error
// leaves earlier lines applied.
type Reconciler struct {
	products     catalog.ProductRepository
	stockRecords warehouse.StockRecordRepository
	synthesizer  *VariantSynthesizer
	logger       *zap.Logger
}

// NewReconciler creates a new Reconciler
func NewReconciler(products catalog.ProductRepository, stockRecords warehouse.StockRecordRepository, synthesizer *VariantSynthesizer, logger *zap.Logger) *Reconciler {
	return &Reconciler{
		products:     products,
		stockRecords: stockRecords,
		synthesizer:  synthesizer,
		logger:       logger,
	}
}

// ApplyCreate records a freshly received purchase's full contribution.
// Purchases that are not received contribute nothing.
func (r *Reconciler) ApplyCreate(ctx context.Context, p *purchasing.Purchase) error {
	if !p.Status.AffectsStock() {
		return nil
	}

	for idx := range p.Items {
		line := &p.Items[idx]
		if err := r.applyLine(ctx, p.WarehouseID, line, decimal.NewFromInt(1)); err != nil {
			return &ReconcileError{PurchaseID: p.ID, FailedLine: idx, AppliedLines: idx, Err: err}
		}
	}

	r.logger.Info("purchase reconciled",
		zap.String("purchase_id", p.ID.String()),
		zap.String("purchase_number", p.PurchaseNumber),
		zap.Int("lines", len(p.Items)))

	return nil
}

// ApplyEdit adjusts stock by the delta between a received purchase's
// old lines and its current ones. Keys present on both sides move by
// the difference; keys only in the old set are reversed; keys only in
// the new set are applied fresh. A changed unit type is handled as a
// reversal under the old type followed by an application under the new.
func (r *Reconciler) ApplyEdit(ctx context.Context, p *purchasing.Purchase, oldItems []purchasing.PurchaseLineItem) error {
	if !p.Status.AffectsStock() {
		return nil
	}

	oldByKey := make(map[string]*purchasing.PurchaseLineItem, len(oldItems))
	for idx := range oldItems {
		oldByKey[oldItems[idx].Key()] = &oldItems[idx]
	}

	applied := 0
	for idx := range p.Items {
		newLine := &p.Items[idx]
		oldLine, existed := oldByKey[newLine.Key()]
		if !existed {
			if err := r.applyLine(ctx, p.WarehouseID, newLine, decimal.NewFromInt(1)); err != nil {
				return &ReconcileError{PurchaseID: p.ID, FailedLine: idx, AppliedLines: applied, Err: err}
			}
			applied++
			continue
		}
		delete(oldByKey, newLine.Key())

		if err := r.applyLineDelta(ctx, p.WarehouseID, oldLine, newLine); err != nil {
			return &ReconcileError{PurchaseID: p.ID, FailedLine: idx, AppliedLines: applied, Err: err}
		}
		applied++
	}

	// Lines dropped from the purchase lose their contribution
	for _, oldLine := range oldByKey {
		if err := r.reverseLine(ctx, p.WarehouseID, oldLine, false); err != nil {
			return &ReconcileError{PurchaseID: p.ID, FailedLine: -1, AppliedLines: applied, Err: err}
		}
		applied++
	}

	return nil
}

// ApplyDelete reverses a received purchase's contribution: every related
// product, variant and warehouse record is decremented, each floored at
// zero independently. The product's weighted-average cost is reset to
// zero rather than recomputed; restoring the pre-purchase average is
// not attempted.
func (r *Reconciler) ApplyDelete(ctx context.Context, p *purchasing.Purchase) error {
	if !p.Status.AffectsStock() {
		return nil
	}

	for idx := range p.Items {
		line := &p.Items[idx]
		if err := r.reverseLine(ctx, p.WarehouseID, line, true); err != nil {
			return &ReconcileError{PurchaseID: p.ID, FailedLine: idx, AppliedLines: idx, Err: err}
		}
	}

	r.logger.Info("purchase contribution reversed",
		zap.String("purchase_id", p.ID.String()),
		zap.String("purchase_number", p.PurchaseNumber))

	return nil
}

// applyLine pushes one line's signed contribution through the warehouse
// record, the product aggregate and the variant rows, in that order
func (r *Reconciler) applyLine(ctx context.Context, warehouseID uuid.UUID, line *purchasing.PurchaseLineItem, direction decimal.Decimal) error {
	base := line.BaseQuantity.Mul(direction)

	if err := r.upsertStockRecord(ctx, warehouseID, line, base); err != nil {
		return fmt.Errorf("warehouse record: %w", err)
	}

	product, err := r.products.FindByID(ctx, line.ProductID)
	if err != nil {
		return fmt.Errorf("load product: %w", err)
	}

	newCost := purchasing.NextWeightedCost(product.Stock, product.CostPrice, base, line.UnitPrice)
	product.ApplyStockDelta(base)
	if err := product.UpdateCostPrice(newCost); err != nil {
		return err
	}
	if err := r.products.Update(ctx, product); err != nil {
		return fmt.Errorf("update product: %w", err)
	}

	if err := r.synthesizer.Apply(ctx, line, direction); err != nil {
		return fmt.Errorf("variants: %w", err)
	}

	return nil
}

// applyLineDelta moves stock by the difference between an old and a new
// version of the same line. The product cost is recomputed symmetrically:
// the old contribution is removed at its price before the new one is
// added at the current price. Variants see a full reversal plus a full
// application, which also covers a changed unit type.
func (r *Reconciler) applyLineDelta(ctx context.Context, warehouseID uuid.UUID, oldLine, newLine *purchasing.PurchaseLineItem) error {
	baseDelta := newLine.BaseQuantity.Sub(oldLine.BaseQuantity)

	if err := r.upsertStockRecord(ctx, warehouseID, newLine, baseDelta); err != nil {
		return fmt.Errorf("warehouse record: %w", err)
	}

	product, err := r.products.FindByID(ctx, newLine.ProductID)
	if err != nil {
		return fmt.Errorf("load product: %w", err)
	}

	costAfterRemoval := purchasing.NextWeightedCost(product.Stock, product.CostPrice, oldLine.BaseQuantity.Neg(), oldLine.UnitPrice)
	stockAfterRemoval := product.Stock.Sub(oldLine.BaseQuantity)
	if stockAfterRemoval.IsNegative() {
		stockAfterRemoval = decimal.Zero
	}
	newCost := purchasing.NextWeightedCost(stockAfterRemoval, costAfterRemoval, newLine.BaseQuantity, newLine.UnitPrice)

	product.ApplyStockDelta(baseDelta)
	if err := product.UpdateCostPrice(newCost); err != nil {
		return err
	}
	if err := r.products.Update(ctx, product); err != nil {
		return fmt.Errorf("update product: %w", err)
	}

	if err := r.synthesizer.Apply(ctx, oldLine, decimal.NewFromInt(-1)); err != nil {
		return fmt.Errorf("variants (reversal): %w", err)
	}
	if err := r.synthesizer.Apply(ctx, newLine, decimal.NewFromInt(1)); err != nil {
		return fmt.Errorf("variants: %w", err)
	}

	return nil
}

// reverseLine removes one line's contribution. resetCost marks the
// delete path, where the product's average cost is zeroed instead of
// recomputed.
func (r *Reconciler) reverseLine(ctx context.Context, warehouseID uuid.UUID, line *purchasing.PurchaseLineItem, resetCost bool) error {
	base := line.BaseQuantity.Neg()

	if err := r.upsertStockRecord(ctx, warehouseID, line, base); err != nil {
		return fmt.Errorf("warehouse record: %w", err)
	}

	product, err := r.products.FindByID(ctx, line.ProductID)
	if err != nil {
		return fmt.Errorf("load product: %w", err)
	}

	newCost := decimal.Zero
	if !resetCost {
		newCost = purchasing.NextWeightedCost(product.Stock, product.CostPrice, base, line.UnitPrice)
	}
	product.ApplyStockDelta(base)
	if err := product.UpdateCostPrice(newCost); err != nil {
		return err
	}
	if err := r.products.Update(ctx, product); err != nil {
		return fmt.Errorf("update product: %w", err)
	}

	if err := r.synthesizer.Apply(ctx, line, decimal.NewFromInt(-1)); err != nil {
		return fmt.Errorf("variants: %w", err)
	}

	return nil
}

// upsertStockRecord locates the warehouse record for a line's key and
// applies the delta, creating the record on first touch. The stored
// cost is overwritten with the line's unit price on every touch.
func (r *Reconciler) upsertStockRecord(ctx context.Context, warehouseID uuid.UUID, line *purchasing.PurchaseLineItem, delta decimal.Decimal) error {
	record, err := r.stockRecords.FindByKey(ctx, line.ProductID, line.PrimaryVariantID, warehouseID)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			return err
		}
		record, err = warehouse.NewStockRecord(line.ProductID, line.PrimaryVariantID, warehouseID, delta, line.UnitPrice)
		if err != nil {
			return err
		}
		return r.stockRecords.Save(ctx, record)
	}

	record.ApplyDelta(delta, line.UnitPrice)
	return r.stockRecords.Update(ctx, record)
}
