package catalog

import (
	"time"

	"github.com/retail/backoffice/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Product represents a product aggregate root.
// Stock is the aggregate quantity in canonical base units across all
// variants and warehouses; CostPrice is its weighted-average unit cost.
type Product struct {
	shared.BaseAggregateRoot
	Name           string          `gorm:"type:varchar(200);not null;index"`
	Code           string          `gorm:"type:varchar(50);uniqueIndex"`
	Barcode        string          `gorm:"type:varchar(64);index"`
	Stock          decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	CostPrice      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	SalePrice      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	AlertThreshold decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	IsActive       bool            `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a new active product with zero stock
func NewProduct(name, code string) (*Product, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}

	return &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Code:              code,
		Stock:             decimal.Zero,
		CostPrice:         decimal.Zero,
		SalePrice:         decimal.Zero,
		IsActive:          true,
	}, nil
}

// ApplyStockDelta adjusts the aggregate stock by a signed amount,
// flooring the result at zero. Stock is always moved by deltas, never
// recomputed from history.
func (p *Product) ApplyStockDelta(delta decimal.Decimal) {
	newStock := p.Stock.Add(delta)
	if newStock.IsNegative() {
		newStock = decimal.Zero
	}
	p.Stock = newStock
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewProductStockAdjustedEvent(p, delta))
	if delta.IsNegative() && p.IsBelowAlertThreshold() {
		p.AddDomainEvent(NewProductLowStockEvent(p))
	}
}

// UpdateCostPrice overwrites the weighted-average cost
func (p *Product) UpdateCostPrice(cost decimal.Decimal) error {
	if cost.IsNegative() {
		return shared.NewDomainError("INVALID_COST", "Cost price cannot be negative")
	}
	p.CostPrice = cost
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// UpdateSalePrice sets the retail price
func (p *Product) UpdateSalePrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Sale price cannot be negative")
	}
	p.SalePrice = price
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// IsBelowAlertThreshold reports whether the stock dropped under the
// configured alert level
func (p *Product) IsBelowAlertThreshold() bool {
	return p.AlertThreshold.IsPositive() && p.Stock.LessThan(p.AlertThreshold)
}

// Deactivate hides the product from sale without deleting its history
func (p *Product) Deactivate() {
	p.IsActive = false
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

// Activate makes the product sellable again
func (p *Product) Activate() {
	p.IsActive = true
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}
