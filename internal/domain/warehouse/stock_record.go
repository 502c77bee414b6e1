package warehouse

import (
	"time"

	"github.com/google/uuid"
	"github.com/retail/backoffice/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// StockRecord tracks the quantity of one product/variant combination
// held in one warehouse.
//
// CostPrice is a snapshot of the most recent purchase cost that touched
// the record, not a weighted average. The product aggregate carries the
// averaged cost; the two costing models are intentionally different.
type StockRecord struct {
	shared.BaseEntity
	ProductID        uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_stock_record_key,priority:1"`
	PrimaryVariantID *uuid.UUID      `gorm:"type:uuid;uniqueIndex:idx_stock_record_key,priority:2"`
	WarehouseID      uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_stock_record_key,priority:3"`
	QuantityInStock  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	CostPrice        decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (StockRecord) TableName() string {
	return "warehouse_stock_records"
}

// NewStockRecord creates a stock record from an initial movement.
// A negative initial delta clamps to zero.
func NewStockRecord(productID uuid.UUID, primaryVariantID *uuid.UUID, warehouseID uuid.UUID, delta, costPrice decimal.Decimal) (*StockRecord, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if warehouseID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_WAREHOUSE", "Warehouse ID cannot be empty")
	}

	quantity := delta
	if quantity.IsNegative() {
		quantity = decimal.Zero
	}

	return &StockRecord{
		BaseEntity:       shared.NewBaseEntity(),
		ProductID:        productID,
		PrimaryVariantID: primaryVariantID,
		WarehouseID:      warehouseID,
		QuantityInStock:  quantity,
		CostPrice:        costPrice,
	}, nil
}

// ApplyDelta adjusts the held quantity by a signed amount, floored at
// zero, and overwrites the cost snapshot with the incoming line price
func (r *StockRecord) ApplyDelta(delta, costPrice decimal.Decimal) {
	newQuantity := r.QuantityInStock.Add(delta)
	if newQuantity.IsNegative() {
		newQuantity = decimal.Zero
	}
	r.QuantityInStock = newQuantity
	r.CostPrice = costPrice
	r.UpdatedAt = time.Now()
}
