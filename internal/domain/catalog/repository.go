package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/retail/backoffice/internal/domain/shared"
)

// ProductRepository defines persistence operations for products
type ProductRepository interface {
	Save(ctx context.Context, product *Product) error
	Update(ctx context.Context, product *Product) error
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)
	FindByCode(ctx context.Context, code string) (*Product, error)
	List(ctx context.Context, filter shared.Filter) (*shared.Paginated[*Product], error)
}

// ProductVariantRepository defines persistence operations for variant rows
type ProductVariantRepository interface {
	Save(ctx context.Context, variant *ProductVariant) error
	Update(ctx context.Context, variant *ProductVariant) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*ProductVariant, error)
	// FindByKey returns all variant rows for a product/primary-variant
	// combination, every unit type included
	FindByKey(ctx context.Context, productID uuid.UUID, primaryVariantID *uuid.UUID) ([]*ProductVariant, error)
	// FindByKeyAndUnitType returns the single row for a key and unit
	// type, or shared.ErrNotFound
	FindByKeyAndUnitType(ctx context.Context, productID uuid.UUID, primaryVariantID *uuid.UUID, unitType string) (*ProductVariant, error)
	// DeleteStaleDerivedKilo removes kilo-typed rows for a key whose
	// contained quantity is strictly between zero and one
	DeleteStaleDerivedKilo(ctx context.Context, productID uuid.UUID, primaryVariantID *uuid.UUID) error
	ListByProduct(ctx context.Context, productID uuid.UUID) ([]*ProductVariant, error)
}
