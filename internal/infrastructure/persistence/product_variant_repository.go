package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/retail/backoffice/internal/domain/catalog"
	"github.com/retail/backoffice/internal/domain/shared"
)

// GormProductVariantRepository implements catalog.ProductVariantRepository using GORM
type GormProductVariantRepository struct {
	db *gorm.DB
}

// NewGormProductVariantRepository creates a new GormProductVariantRepository
func NewGormProductVariantRepository(db *gorm.DB) *GormProductVariantRepository {
	return &GormProductVariantRepository{db: db}
}

// Save persists a new variant row
func (r *GormProductVariantRepository) Save(ctx context.Context, variant *catalog.ProductVariant) error {
	return withSchemaTolerance(func(omit ...string) error {
		tx := r.db.WithContext(ctx)
		if len(omit) > 0 {
			tx = tx.Omit(omit...)
		}
		return tx.Create(variant).Error
	})
}

// Update persists changes to an existing variant row
func (r *GormProductVariantRepository) Update(ctx context.Context, variant *catalog.ProductVariant) error {
	return withSchemaTolerance(func(omit ...string) error {
		tx := r.db.WithContext(ctx)
		if len(omit) > 0 {
			tx = tx.Omit(omit...)
		}
		return tx.Save(variant).Error
	})
}

// Delete removes a variant row
func (r *GormProductVariantRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&catalog.ProductVariant{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// FindByID finds a variant row by its ID
func (r *GormProductVariantRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.ProductVariant, error) {
	var variant catalog.ProductVariant
	if err := r.db.WithContext(ctx).First(&variant, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &variant, nil
}

// FindByKey returns all variant rows for a product/primary-variant combination
func (r *GormProductVariantRepository) FindByKey(ctx context.Context, productID uuid.UUID, primaryVariantID *uuid.UUID) ([]*catalog.ProductVariant, error) {
	var variants []*catalog.ProductVariant
	if err := r.keyScope(ctx, productID, primaryVariantID).Find(&variants).Error; err != nil {
		return nil, err
	}
	return variants, nil
}

// FindByKeyAndUnitType returns the single variant row for a key and unit type
func (r *GormProductVariantRepository) FindByKeyAndUnitType(ctx context.Context, productID uuid.UUID, primaryVariantID *uuid.UUID, unitType string) (*catalog.ProductVariant, error) {
	var variant catalog.ProductVariant
	if err := r.keyScope(ctx, productID, primaryVariantID).
		Where("unit_type = ?", unitType).
		First(&variant).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &variant, nil
}

// DeleteStaleDerivedKilo removes kilo-typed rows for a key whose
// contained quantity is strictly between zero and one
func (r *GormProductVariantRepository) DeleteStaleDerivedKilo(ctx context.Context, productID uuid.UUID, primaryVariantID *uuid.UUID) error {
	return r.keyScope(ctx, productID, primaryVariantID).
		Where("unit_type = ? AND quantity_contained > 0 AND quantity_contained < 1", "kilo").
		Delete(&catalog.ProductVariant{}).Error
}

// ListByProduct returns all variant rows of a product
func (r *GormProductVariantRepository) ListByProduct(ctx context.Context, productID uuid.UUID) ([]*catalog.ProductVariant, error) {
	var variants []*catalog.ProductVariant
	if err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("created_at").
		Find(&variants).Error; err != nil {
		return nil, err
	}
	return variants, nil
}

// keyScope scopes a query to one product/primary-variant combination
func (r *GormProductVariantRepository) keyScope(ctx context.Context, productID uuid.UUID, primaryVariantID *uuid.UUID) *gorm.DB {
	tx := r.db.WithContext(ctx).Model(&catalog.ProductVariant{}).Where("product_id = ?", productID)
	if primaryVariantID == nil {
		return tx.Where("primary_variant_id IS NULL")
	}
	return tx.Where("primary_variant_id = ?", *primaryVariantID)
}
