package purchasing

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/retail/backoffice/internal/domain/catalog"
	"github.com/retail/backoffice/internal/domain/purchasing"
	"github.com/retail/backoffice/internal/domain/shared"
)

// VariantSynthesizer keeps a product's variant rows consistent with its
// purchase lines. Each purchase upserts the "base" variant for its unit
// type and may synthesize derived rows: a carton purchase implies a
// per-unit row, and a carton-packaged kilo purchase implies both a
// carton and a per-unit row. Fractional kilo leftovers superseded by a
// packaged purchase are purged.
type VariantSynthesizer struct {
	variants catalog.ProductVariantRepository
	logger   *zap.Logger
}

// NewVariantSynthesizer creates a new VariantSynthesizer
func NewVariantSynthesizer(variants catalog.ProductVariantRepository, logger *zap.Logger) *VariantSynthesizer {
	return &VariantSynthesizer{
		variants: variants,
		logger:   logger,
	}
}

// Apply records one purchase line's variant contribution. direction is
// +1 to add the line (create, or the new side of an edit) and -1 to
// reverse it (delete, or the old side of an edit). Only positive
// applications refresh prices and contained quantities or purge stale
// rows; reversals just walk stock back down, floored at zero.
func (s *VariantSynthesizer) Apply(ctx context.Context, line *purchasing.PurchaseLineItem, direction decimal.Decimal) error {
	positive := direction.IsPositive()
	mainDelta := line.MainDelta().Mul(direction)

	if err := s.upsert(ctx, line, line.UnitType.String(), mainDelta, line.UnitPrice, s.baseContained(line), positive); err != nil {
		return fmt.Errorf("base variant %s: %w", line.UnitType, err)
	}

	unitsPerCarton := line.UnitsPerCartonOrDefault()
	weightPerUnit := line.WeightPerUnitOrDefault()

	switch {
	case line.UnitType == purchasing.UnitTypeCarton && unitsPerCarton.GreaterThan(decimal.NewFromInt(1)):
		unitDelta := line.Quantity.Mul(unitsPerCarton).Mul(direction)
		unitPrice := line.UnitPrice.Div(unitsPerCarton).Round(4)
		if err := s.upsert(ctx, line, purchasing.UnitTypeUnit.String(), unitDelta, unitPrice, weightPerUnit, positive); err != nil {
			return fmt.Errorf("derived unit variant: %w", err)
		}

	case line.HasCartonPackaging():
		cartonWeight := line.UnitsPerCarton.Mul(line.WeightPerUnit)
		cartonDelta := line.BaseQuantity.Div(cartonWeight).Mul(direction)
		cartonPrice := line.UnitPrice.Mul(cartonWeight).Round(4)
		if err := s.upsert(ctx, line, purchasing.UnitTypeCarton.String(), cartonDelta, cartonPrice, line.UnitsPerCarton, positive); err != nil {
			return fmt.Errorf("derived carton variant: %w", err)
		}

		unitDelta := line.BaseQuantity.Div(line.WeightPerUnit).Mul(direction)
		unitPrice := line.UnitPrice.Mul(line.WeightPerUnit).Round(4)
		if err := s.upsert(ctx, line, purchasing.UnitTypeUnit.String(), unitDelta, unitPrice, line.WeightPerUnit, positive); err != nil {
			return fmt.Errorf("derived unit variant: %w", err)
		}

	default:
		return nil
	}

	// Packaged purchases supersede any fractional kilo leftover for the
	// same key. Reversals leave rows in place.
	if positive {
		if err := s.variants.DeleteStaleDerivedKilo(ctx, line.ProductID, line.PrimaryVariantID); err != nil {
			return fmt.Errorf("purge stale kilo variants: %w", err)
		}
	}

	return nil
}

// baseContained returns the contained quantity the base variant carries
// for the line's unit type
func (s *VariantSynthesizer) baseContained(line *purchasing.PurchaseLineItem) decimal.Decimal {
	switch line.UnitType {
	case purchasing.UnitTypeCarton:
		return line.UnitsPerCartonOrDefault()
	case purchasing.UnitTypePaquet, purchasing.UnitTypeSac:
		return line.WeightPerUnitOrDefault()
	default:
		return decimal.NewFromInt(1)
	}
}

// upsert moves one variant row's stock by delta, creating the row on a
// first positive touch. Missing rows are skipped on reversal: there is
// nothing left to decrement.
func (s *VariantSynthesizer) upsert(ctx context.Context, line *purchasing.PurchaseLineItem, unitType string, delta, purchasePrice, quantityContained decimal.Decimal, positive bool) error {
	variant, err := s.variants.FindByKeyAndUnitType(ctx, line.ProductID, line.PrimaryVariantID, unitType)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			return err
		}
		if !positive {
			s.logger.Debug("skipping reversal for missing variant",
				zap.String("product_id", line.ProductID.String()),
				zap.String("unit_type", unitType))
			return nil
		}

		name := line.ProductName
		if name == "" {
			name = line.ProductID.String()
		}
		variant, err = catalog.NewProductVariant(line.ProductID, line.PrimaryVariantID, fmt.Sprintf("%s (%s)", name, unitType), unitType, quantityContained, purchasePrice, delta)
		if err != nil {
			return err
		}
		return s.variants.Save(ctx, variant)
	}

	variant.ApplyStockDelta(delta)
	if positive {
		variant.RefreshPurchaseInfo(purchasePrice, quantityContained)
	}
	return s.variants.Update(ctx, variant)
}
