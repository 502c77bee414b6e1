package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/retail/backoffice/internal/domain/catalog"
	"github.com/retail/backoffice/internal/domain/shared"
)

// GormProductRepository implements catalog.ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// Save persists a new product
func (r *GormProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

// Update persists changes to an existing product. A write that trips
// over schema drift is retried once without the offending column.
func (r *GormProductRepository) Update(ctx context.Context, product *catalog.Product) error {
	return withSchemaTolerance(func(omit ...string) error {
		tx := r.db.WithContext(ctx)
		if len(omit) > 0 {
			tx = tx.Omit(omit...)
		}
		return tx.Save(product).Error
	})
}

// FindByID finds a product by its ID
func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	var product catalog.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

// FindByCode finds a product by its code
func (r *GormProductRepository) FindByCode(ctx context.Context, code string) (*catalog.Product, error) {
	var product catalog.Product
	if err := r.db.WithContext(ctx).First(&product, "code = ?", code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

// List returns a page of products
func (r *GormProductRepository) List(ctx context.Context, filter shared.Filter) (*shared.Paginated[*catalog.Product], error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&catalog.Product{}).Count(&total).Error; err != nil {
		return nil, err
	}

	var products []*catalog.Product
	if err := applyFilter(r.db.WithContext(ctx), filter).Find(&products).Error; err != nil {
		return nil, err
	}

	return &shared.Paginated[*catalog.Product]{
		Items:  products,
		Total:  total,
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}, nil
}

// applyFilter applies pagination and ordering to a query
func applyFilter(tx *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.OrderBy != "" {
		order := filter.OrderBy
		if filter.Desc {
			order += " DESC"
		}
		tx = tx.Order(order)
	}
	if filter.Limit > 0 {
		tx = tx.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		tx = tx.Offset(filter.Offset)
	}
	return tx
}
