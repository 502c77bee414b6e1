package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/retail/backoffice/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ProductVariant represents one packaging configuration of a product
// (loose kilo, carton of 24, derived unit, ...). Each variant tracks its
// own stock, expressed in variant units, and its own purchase cost.
//
// QuantityContained is the number of base units one variant unit
// represents. A kilo-typed row with QuantityContained ≤ 1 (or zero for
// unset) is the "base" row for its product/variant key; a kilo-typed row
// with 0 < QuantityContained < 1 is a stale derived leftover and gets
// purged once a carton or packaged purchase supersedes it.
type ProductVariant struct {
	shared.BaseEntity
	ProductID         uuid.UUID       `gorm:"type:uuid;not null;index:idx_variant_product_key"`
	PrimaryVariantID  *uuid.UUID      `gorm:"type:uuid;index:idx_variant_product_key"`
	VariantName       string          `gorm:"type:varchar(200);not null"`
	UnitType          string          `gorm:"type:varchar(20);not null"`
	QuantityContained decimal.Decimal `gorm:"type:decimal(18,6);not null;default:0"` // 0 means unset
	PurchasePrice     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Stock             decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	AlertThreshold    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	IsActive          bool            `gorm:"not null;default:true"`
	IsDefault         bool            `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (ProductVariant) TableName() string {
	return "product_variants"
}

// NewProductVariant creates a new variant row with an initial stock
func NewProductVariant(productID uuid.UUID, primaryVariantID *uuid.UUID, name, unitType string, quantityContained, purchasePrice, stock decimal.Decimal) (*ProductVariant, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if unitType == "" {
		return nil, shared.NewDomainError("INVALID_UNIT_TYPE", "Unit type cannot be empty")
	}
	if stock.IsNegative() {
		stock = decimal.Zero
	}

	return &ProductVariant{
		BaseEntity:        shared.NewBaseEntity(),
		ProductID:         productID,
		PrimaryVariantID:  primaryVariantID,
		VariantName:       name,
		UnitType:          unitType,
		QuantityContained: quantityContained,
		PurchasePrice:     purchasePrice,
		Stock:             stock,
		IsActive:          true,
	}, nil
}

// ApplyStockDelta adjusts the variant stock by a signed amount, floored
// at zero
func (v *ProductVariant) ApplyStockDelta(delta decimal.Decimal) {
	newStock := v.Stock.Add(delta)
	if newStock.IsNegative() {
		newStock = decimal.Zero
	}
	v.Stock = newStock
	v.UpdatedAt = time.Now()
}

// RefreshPurchaseInfo overwrites the variant's cost and contained
// quantity from the latest purchase line touching it
func (v *ProductVariant) RefreshPurchaseInfo(purchasePrice, quantityContained decimal.Decimal) {
	v.PurchasePrice = purchasePrice
	v.QuantityContained = quantityContained
	v.UpdatedAt = time.Now()
}

// IsKiloBase reports whether this row is the base kilo row for its key:
// kilo-typed with QuantityContained unset or ≤ 1
func (v *ProductVariant) IsKiloBase() bool {
	return v.UnitType == "kilo" && v.QuantityContained.LessThanOrEqual(decimal.NewFromInt(1))
}

// IsStaleDerivedKilo reports whether this row is a fractional kilo
// leftover that should be purged after a carton or packaged purchase
func (v *ProductVariant) IsStaleDerivedKilo() bool {
	one := decimal.NewFromInt(1)
	return v.UnitType == "kilo" &&
		v.QuantityContained.GreaterThan(decimal.Zero) &&
		v.QuantityContained.LessThan(one)
}

// MatchesKey reports whether the variant belongs to the given
// product/primary-variant combination
func (v *ProductVariant) MatchesKey(productID uuid.UUID, primaryVariantID *uuid.UUID) bool {
	if v.ProductID != productID {
		return false
	}
	if primaryVariantID == nil {
		return v.PrimaryVariantID == nil
	}
	return v.PrimaryVariantID != nil && *v.PrimaryVariantID == *primaryVariantID
}
