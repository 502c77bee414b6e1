package warehouse

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/retail/backoffice/internal/domain/shared"
	"github.com/retail/backoffice/internal/domain/warehouse"
)

// CreateWarehouseRequest creates a new warehouse
type CreateWarehouseRequest struct {
	Name    string `json:"name"`
	Code    string `json:"code"`
	Address string `json:"address"`
}

// WarehouseResponse is the outward view of a warehouse
type WarehouseResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Code      string    `json:"code"`
	Address   string    `json:"address"`
	IsActive  bool      `json:"is_active"`
	IsDefault bool      `json:"is_default"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StockRecordResponse is the outward view of one held quantity
type StockRecordResponse struct {
	ProductID        uuid.UUID       `json:"product_id"`
	PrimaryVariantID *uuid.UUID      `json:"primary_variant_id,omitempty"`
	WarehouseID      uuid.UUID       `json:"warehouse_id"`
	QuantityInStock  decimal.Decimal `json:"quantity_in_stock"`
	CostPrice        decimal.Decimal `json:"cost_price"`
}

// WarehouseService exposes warehouse management operations
type WarehouseService struct {
	warehouses   warehouse.WarehouseRepository
	stockRecords warehouse.StockRecordRepository
	logger       *zap.Logger
}

// NewWarehouseService creates a new WarehouseService
func NewWarehouseService(warehouses warehouse.WarehouseRepository, stockRecords warehouse.StockRecordRepository, logger *zap.Logger) *WarehouseService {
	return &WarehouseService{
		warehouses:   warehouses,
		stockRecords: stockRecords,
		logger:       logger,
	}
}

// CreateWarehouse creates a new warehouse
func (s *WarehouseService) CreateWarehouse(ctx context.Context, req *CreateWarehouseRequest) (*WarehouseResponse, error) {
	wh, err := warehouse.NewWarehouse(req.Name, req.Code)
	if err != nil {
		return nil, err
	}
	wh.Address = req.Address

	if err := s.warehouses.Save(ctx, wh); err != nil {
		return nil, err
	}

	s.logger.Info("warehouse created",
		zap.String("warehouse_id", wh.ID.String()),
		zap.String("code", wh.Code),
	)
	return toWarehouseResponse(wh), nil
}

// GetWarehouse returns a warehouse by ID
func (s *WarehouseService) GetWarehouse(ctx context.Context, id uuid.UUID) (*WarehouseResponse, error) {
	wh, err := s.warehouses.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toWarehouseResponse(wh), nil
}

// ListWarehouses returns a page of warehouses
func (s *WarehouseService) ListWarehouses(ctx context.Context, filter shared.Filter) (*shared.Paginated[*WarehouseResponse], error) {
	page, err := s.warehouses.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]*WarehouseResponse, 0, len(page.Items))
	for _, wh := range page.Items {
		items = append(items, toWarehouseResponse(wh))
	}
	return &shared.Paginated[*WarehouseResponse]{
		Items:  items,
		Total:  page.Total,
		Limit:  page.Limit,
		Offset: page.Offset,
	}, nil
}

// ListStock returns the stock records held in a warehouse
func (s *WarehouseService) ListStock(ctx context.Context, warehouseID uuid.UUID) ([]*StockRecordResponse, error) {
	if _, err := s.warehouses.FindByID(ctx, warehouseID); err != nil {
		return nil, err
	}

	records, err := s.stockRecords.ListByWarehouse(ctx, warehouseID)
	if err != nil {
		return nil, err
	}

	items := make([]*StockRecordResponse, 0, len(records))
	for _, r := range records {
		items = append(items, &StockRecordResponse{
			ProductID:        r.ProductID,
			PrimaryVariantID: r.PrimaryVariantID,
			WarehouseID:      r.WarehouseID,
			QuantityInStock:  r.QuantityInStock,
			CostPrice:        r.CostPrice,
		})
	}
	return items, nil
}

func toWarehouseResponse(wh *warehouse.Warehouse) *WarehouseResponse {
	return &WarehouseResponse{
		ID:        wh.ID,
		Name:      wh.Name,
		Code:      wh.Code,
		Address:   wh.Address,
		IsActive:  wh.IsActive,
		IsDefault: wh.IsDefault,
		CreatedAt: wh.CreatedAt,
		UpdatedAt: wh.UpdatedAt,
	}
}
