package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/retail/backoffice/internal/domain/shared"
	"github.com/retail/backoffice/internal/domain/warehouse"
)

// GormStockRecordRepository implements warehouse.StockRecordRepository using GORM
type GormStockRecordRepository struct {
	db *gorm.DB
}

// NewGormStockRecordRepository creates a new GormStockRecordRepository
func NewGormStockRecordRepository(db *gorm.DB) *GormStockRecordRepository {
	return &GormStockRecordRepository{db: db}
}

// FindByKey returns the record for a product/variant/warehouse combination
func (r *GormStockRecordRepository) FindByKey(ctx context.Context, productID uuid.UUID, primaryVariantID *uuid.UUID, warehouseID uuid.UUID) (*warehouse.StockRecord, error) {
	tx := r.db.WithContext(ctx).
		Where("product_id = ? AND warehouse_id = ?", productID, warehouseID)
	if primaryVariantID == nil {
		tx = tx.Where("primary_variant_id IS NULL")
	} else {
		tx = tx.Where("primary_variant_id = ?", *primaryVariantID)
	}

	var record warehouse.StockRecord
	if err := tx.First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

// Save persists a new stock record
func (r *GormStockRecordRepository) Save(ctx context.Context, record *warehouse.StockRecord) error {
	return withSchemaTolerance(func(omit ...string) error {
		tx := r.db.WithContext(ctx)
		if len(omit) > 0 {
			tx = tx.Omit(omit...)
		}
		return tx.Create(record).Error
	})
}

// Update persists changes to an existing stock record
func (r *GormStockRecordRepository) Update(ctx context.Context, record *warehouse.StockRecord) error {
	return withSchemaTolerance(func(omit ...string) error {
		tx := r.db.WithContext(ctx)
		if len(omit) > 0 {
			tx = tx.Omit(omit...)
		}
		return tx.Save(record).Error
	})
}

// ListByWarehouse returns all stock records in one warehouse
func (r *GormStockRecordRepository) ListByWarehouse(ctx context.Context, warehouseID uuid.UUID) ([]*warehouse.StockRecord, error) {
	var records []*warehouse.StockRecord
	if err := r.db.WithContext(ctx).Where("warehouse_id = ?", warehouseID).Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// ListByProduct returns a product's stock records across warehouses
func (r *GormStockRecordRepository) ListByProduct(ctx context.Context, productID uuid.UUID) ([]*warehouse.StockRecord, error) {
	var records []*warehouse.StockRecord
	if err := r.db.WithContext(ctx).Where("product_id = ?", productID).Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}
