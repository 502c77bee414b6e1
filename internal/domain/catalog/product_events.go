package catalog

import (
	"github.com/retail/backoffice/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Event type constants for the catalog context
const (
	EventTypeProductStockAdjusted = "product.stock_adjusted"
	EventTypeProductLowStock      = "product.low_stock"
)

// ProductStockAdjustedEvent is raised when the aggregate stock moves
type ProductStockAdjustedEvent struct {
	shared.BaseDomainEvent
	ProductName string          `json:"product_name"`
	Delta       decimal.Decimal `json:"delta"`
	NewStock    decimal.Decimal `json:"new_stock"`
	CostPrice   decimal.Decimal `json:"cost_price"`
}

// NewProductStockAdjustedEvent creates a new ProductStockAdjustedEvent
func NewProductStockAdjustedEvent(p *Product, delta decimal.Decimal) *ProductStockAdjustedEvent {
	return &ProductStockAdjustedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductStockAdjusted, "Product", p.ID),
		ProductName:     p.Name,
		Delta:           delta,
		NewStock:        p.Stock,
		CostPrice:       p.CostPrice,
	}
}

// ProductLowStockEvent is raised when stock drops below the alert threshold
type ProductLowStockEvent struct {
	shared.BaseDomainEvent
	ProductName    string          `json:"product_name"`
	Stock          decimal.Decimal `json:"stock"`
	AlertThreshold decimal.Decimal `json:"alert_threshold"`
}

// NewProductLowStockEvent creates a new ProductLowStockEvent
func NewProductLowStockEvent(p *Product) *ProductLowStockEvent {
	return &ProductLowStockEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductLowStock, "Product", p.ID),
		ProductName:     p.Name,
		Stock:           p.Stock,
		AlertThreshold:  p.AlertThreshold,
	}
}
