package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/retail/backoffice/internal/domain/shared"
	"github.com/retail/backoffice/internal/domain/warehouse"
)

// GormWarehouseRepository implements warehouse.WarehouseRepository using GORM
type GormWarehouseRepository struct {
	db *gorm.DB
}

// NewGormWarehouseRepository creates a new GormWarehouseRepository
func NewGormWarehouseRepository(db *gorm.DB) *GormWarehouseRepository {
	return &GormWarehouseRepository{db: db}
}

// Save persists a new warehouse
func (r *GormWarehouseRepository) Save(ctx context.Context, w *warehouse.Warehouse) error {
	return r.db.WithContext(ctx).Create(w).Error
}

// Update persists changes to an existing warehouse
func (r *GormWarehouseRepository) Update(ctx context.Context, w *warehouse.Warehouse) error {
	return r.db.WithContext(ctx).Save(w).Error
}

// FindByID finds a warehouse by its ID
func (r *GormWarehouseRepository) FindByID(ctx context.Context, id uuid.UUID) (*warehouse.Warehouse, error) {
	var w warehouse.Warehouse
	if err := r.db.WithContext(ctx).First(&w, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &w, nil
}

// FindDefault returns the warehouse marked as default
func (r *GormWarehouseRepository) FindDefault(ctx context.Context) (*warehouse.Warehouse, error) {
	var w warehouse.Warehouse
	if err := r.db.WithContext(ctx).First(&w, "is_default = ?", true).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &w, nil
}

// List returns a page of warehouses
func (r *GormWarehouseRepository) List(ctx context.Context, filter shared.Filter) (*shared.Paginated[*warehouse.Warehouse], error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&warehouse.Warehouse{}).Count(&total).Error; err != nil {
		return nil, err
	}

	var warehouses []*warehouse.Warehouse
	if err := applyFilter(r.db.WithContext(ctx), filter).Find(&warehouses).Error; err != nil {
		return nil, err
	}

	return &shared.Paginated[*warehouse.Warehouse]{
		Items:  warehouses,
		Total:  total,
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}, nil
}
