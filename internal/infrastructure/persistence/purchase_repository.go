package persistence

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/retail/backoffice/internal/domain/purchasing"
	"github.com/retail/backoffice/internal/domain/shared"
)

// purchaseNumberPrefix starts every purchase number, followed by a
// zero-padded sequence
const purchaseNumberPrefix = "ACH-"

// GormPurchaseRepository implements purchasing.PurchaseRepository using GORM
type GormPurchaseRepository struct {
	db *gorm.DB
}

// NewGormPurchaseRepository creates a new GormPurchaseRepository
func NewGormPurchaseRepository(db *gorm.DB) *GormPurchaseRepository {
	return &GormPurchaseRepository{db: db}
}

// Save persists a new purchase with its lines
func (r *GormPurchaseRepository) Save(ctx context.Context, purchase *purchasing.Purchase) error {
	return r.db.WithContext(ctx).Create(purchase).Error
}

// Update persists changes to an existing purchase, replacing its lines
func (r *GormPurchaseRepository) Update(ctx context.Context, purchase *purchasing.Purchase) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("purchase_id = ?", purchase.ID).Delete(&purchasing.PurchaseLineItem{}).Error; err != nil {
			return err
		}
		return withSchemaTolerance(func(omit ...string) error {
			scope := tx.Session(&gorm.Session{FullSaveAssociations: true})
			if len(omit) > 0 {
				scope = scope.Omit(omit...)
			}
			return scope.Save(purchase).Error
		})
	})
}

// Delete removes a purchase and its lines
func (r *GormPurchaseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("purchase_id = ?", id).Delete(&purchasing.PurchaseLineItem{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&purchasing.Purchase{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// FindByID finds a purchase with its lines by ID
func (r *GormPurchaseRepository) FindByID(ctx context.Context, id uuid.UUID) (*purchasing.Purchase, error) {
	var purchase purchasing.Purchase
	if err := r.db.WithContext(ctx).Preload("Items").First(&purchase, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &purchase, nil
}

// FindByNumber finds a purchase by its purchase number
func (r *GormPurchaseRepository) FindByNumber(ctx context.Context, purchaseNumber string) (*purchasing.Purchase, error) {
	var purchase purchasing.Purchase
	if err := r.db.WithContext(ctx).Preload("Items").First(&purchase, "purchase_number = ?", purchaseNumber).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &purchase, nil
}

// FindBySupplier returns purchases from one supplier
func (r *GormPurchaseRepository) FindBySupplier(ctx context.Context, supplierID uuid.UUID, filter shared.Filter) ([]*purchasing.Purchase, error) {
	var purchases []*purchasing.Purchase
	query := applyFilter(r.db.WithContext(ctx).Preload("Items").Where("supplier_id = ?", supplierID), filter)
	if err := query.Find(&purchases).Error; err != nil {
		return nil, err
	}
	return purchases, nil
}

// List returns a page of purchases
func (r *GormPurchaseRepository) List(ctx context.Context, filter shared.Filter) (*shared.Paginated[*purchasing.Purchase], error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&purchasing.Purchase{}).Count(&total).Error; err != nil {
		return nil, err
	}

	var purchases []*purchasing.Purchase
	if err := applyFilter(r.db.WithContext(ctx).Preload("Items"), filter).Find(&purchases).Error; err != nil {
		return nil, err
	}

	return &shared.Paginated[*purchasing.Purchase]{
		Items:  purchases,
		Total:  total,
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}, nil
}

// CountByStatus counts purchases in a given status
func (r *GormPurchaseRepository) CountByStatus(ctx context.Context, status purchasing.PurchaseStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&purchasing.Purchase{}).Where("status = ?", status).Count(&count).Error
	return count, err
}

// NextPurchaseNumber allocates the next sequential purchase number
func (r *GormPurchaseRepository) NextPurchaseNumber(ctx context.Context) (string, error) {
	var last string
	err := r.db.WithContext(ctx).
		Model(&purchasing.Purchase{}).
		Select("purchase_number").
		Where("purchase_number LIKE ?", purchaseNumberPrefix+"%").
		Order("purchase_number DESC").
		Limit(1).
		Scan(&last).Error
	if err != nil {
		return "", err
	}

	seq := 0
	if last != "" {
		n, err := strconv.Atoi(strings.TrimPrefix(last, purchaseNumberPrefix))
		if err != nil {
			return "", fmt.Errorf("malformed purchase number %q: %w", last, err)
		}
		seq = n
	}

	return fmt.Sprintf("%s%06d", purchaseNumberPrefix, seq+1), nil
}
