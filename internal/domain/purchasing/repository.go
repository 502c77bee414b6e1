package purchasing

import (
	"context"

	"github.com/google/uuid"
	"github.com/retail/backoffice/internal/domain/shared"
)

// PurchaseRepository defines persistence operations for purchases
type PurchaseRepository interface {
	Save(ctx context.Context, purchase *Purchase) error
	Update(ctx context.Context, purchase *Purchase) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*Purchase, error)
	FindByNumber(ctx context.Context, purchaseNumber string) (*Purchase, error)
	FindBySupplier(ctx context.Context, supplierID uuid.UUID, filter shared.Filter) ([]*Purchase, error)
	List(ctx context.Context, filter shared.Filter) (*shared.Paginated[*Purchase], error)
	CountByStatus(ctx context.Context, status PurchaseStatus) (int64, error)
	// NextPurchaseNumber allocates the next sequential purchase number
	NextPurchaseNumber(ctx context.Context) (string, error)
}
