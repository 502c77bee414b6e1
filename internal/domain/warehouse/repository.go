package warehouse

import (
	"context"

	"github.com/google/uuid"
	"github.com/retail/backoffice/internal/domain/shared"
)

// WarehouseRepository defines persistence operations for warehouses
type WarehouseRepository interface {
	Save(ctx context.Context, warehouse *Warehouse) error
	Update(ctx context.Context, warehouse *Warehouse) error
	FindByID(ctx context.Context, id uuid.UUID) (*Warehouse, error)
	FindDefault(ctx context.Context) (*Warehouse, error)
	List(ctx context.Context, filter shared.Filter) (*shared.Paginated[*Warehouse], error)
}

// StockRecordRepository defines persistence operations for per-warehouse
// stock records
type StockRecordRepository interface {
	// FindByKey returns the record for a product/variant/warehouse
	// combination, or shared.ErrNotFound
	FindByKey(ctx context.Context, productID uuid.UUID, primaryVariantID *uuid.UUID, warehouseID uuid.UUID) (*StockRecord, error)
	Save(ctx context.Context, record *StockRecord) error
	Update(ctx context.Context, record *StockRecord) error
	ListByWarehouse(ctx context.Context, warehouseID uuid.UUID) ([]*StockRecord, error)
	ListByProduct(ctx context.Context, productID uuid.UUID) ([]*StockRecord, error)
}
