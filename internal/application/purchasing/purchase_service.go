package purchasing

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/retail/backoffice/internal/domain/catalog"
	"github.com/retail/backoffice/internal/domain/purchasing"
	"github.com/retail/backoffice/internal/domain/shared"
)

// defaultIdempotencyTTL bounds how long an operation key blocks replays
const defaultIdempotencyTTL = 24 * time.Hour

// PurchaseService handles the purchase workflow: creation, edits,
// deletion, payments. Stock reconciliation is delegated to the
// Reconciler once a purchase is received.
type PurchaseService struct {
	purchases      purchasing.PurchaseRepository
	products       catalog.ProductRepository
	reconciler     *Reconciler
	idempotency    shared.IdempotencyStore
	eventPublisher shared.EventPublisher
	validate       *validator.Validate
	idempotencyTTL time.Duration
	defaultTaxRate decimal.Decimal
	logger         *zap.Logger
}

// NewPurchaseService creates a new PurchaseService
func NewPurchaseService(
	purchases purchasing.PurchaseRepository,
	products catalog.ProductRepository,
	reconciler *Reconciler,
	idempotency shared.IdempotencyStore,
	logger *zap.Logger,
) *PurchaseService {
	return &PurchaseService{
		purchases:      purchases,
		products:       products,
		reconciler:     reconciler,
		idempotency:    idempotency,
		validate:       validator.New(),
		idempotencyTTL: defaultIdempotencyTTL,
		logger:         logger,
	}
}

// SetIdempotencyTTL overrides how long an operation key blocks replays
func (s *PurchaseService) SetIdempotencyTTL(ttl time.Duration) {
	if ttl > 0 {
		s.idempotencyTTL = ttl
	}
}

// SetDefaultTaxRate sets the tax rate applied to purchases that do not
// carry one of their own
func (s *PurchaseService) SetDefaultTaxRate(rate decimal.Decimal) {
	s.defaultTaxRate = rate
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *PurchaseService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// CreatePurchase creates a purchase and, when it is received on the
// spot, reconciles its stock contribution. Validation happens before
// any mutation; a reconciliation error after that point leaves already
// applied lines in place and is returned as a ReconcileError.
func (s *PurchaseService) CreatePurchase(ctx context.Context, req *CreatePurchaseRequest) (*PurchaseResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, shared.NewDomainError("VALIDATION_FAILED", err.Error())
	}

	release, err := s.claimKey(ctx, req.IdempotencyKey)
	if err != nil {
		return nil, err
	}

	number, err := s.purchases.NextPurchaseNumber(ctx)
	if err != nil {
		release()
		return nil, fmt.Errorf("allocate purchase number: %w", err)
	}

	taxRate := req.TaxRate
	if taxRate.IsZero() {
		taxRate = s.defaultTaxRate
	}

	purchase, err := purchasing.NewPurchase(number, req.SupplierID, req.SupplierName, req.WarehouseID, taxRate)
	if err != nil {
		release()
		return nil, err
	}

	for _, input := range req.Items {
		product, err := s.products.FindByID(ctx, input.ProductID)
		if err != nil {
			release()
			return nil, fmt.Errorf("product %s: %w", input.ProductID, err)
		}
		if _, err := purchase.AddLine(
			input.ProductID,
			input.PrimaryVariantID,
			product.Name,
			input.Quantity,
			purchasing.UnitType(input.UnitType),
			input.UnitsPerCarton,
			input.WeightPerUnit,
			purchasing.PackagingMode(input.PackagingMode),
			input.UnitPrice,
		); err != nil {
			release()
			return nil, err
		}
	}

	if req.Received {
		if err := purchase.MarkReceived(); err != nil {
			release()
			return nil, err
		}
	}
	if req.PaidAmount.IsPositive() {
		if err := purchase.RecordPayment(req.PaidAmount); err != nil {
			release()
			return nil, err
		}
	}

	if err := s.purchases.Save(ctx, purchase); err != nil {
		release()
		return nil, fmt.Errorf("save purchase: %w", err)
	}

	// Past this point the key stays claimed: a blind retry after a
	// partial reconciliation would double-apply the applied lines.
	if err := s.reconciler.ApplyCreate(ctx, purchase); err != nil {
		s.logger.Error("purchase saved but reconciliation incomplete",
			zap.String("purchase_id", purchase.ID.String()),
			zap.Error(err))
		return nil, err
	}

	s.publishEvents(ctx, purchase)

	return ToPurchaseResponse(purchase), nil
}

// EditPurchase replaces a purchase's lines and adjusts stock by the
// delta between the old and new lines
func (s *PurchaseService) EditPurchase(ctx context.Context, req *EditPurchaseRequest) (*PurchaseResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, shared.NewDomainError("VALIDATION_FAILED", err.Error())
	}

	purchase, err := s.purchases.FindByID(ctx, req.PurchaseID)
	if err != nil {
		return nil, err
	}

	newItems := make([]purchasing.PurchaseLineItem, 0, len(req.Items))
	for _, input := range req.Items {
		product, err := s.products.FindByID(ctx, input.ProductID)
		if err != nil {
			return nil, fmt.Errorf("product %s: %w", input.ProductID, err)
		}
		item, err := purchasing.NewPurchaseLineItem(
			purchase.ID,
			input.ProductID,
			input.PrimaryVariantID,
			product.Name,
			input.Quantity,
			purchasing.UnitType(input.UnitType),
			input.UnitsPerCarton,
			input.WeightPerUnit,
			purchasing.PackagingMode(input.PackagingMode),
			input.UnitPrice,
		)
		if err != nil {
			return nil, err
		}
		newItems = append(newItems, *item)
	}

	release, err := s.claimKey(ctx, req.IdempotencyKey)
	if err != nil {
		return nil, err
	}

	oldItems := make([]purchasing.PurchaseLineItem, len(purchase.Items))
	copy(oldItems, purchase.Items)

	if err := purchase.ReplaceLines(newItems); err != nil {
		release()
		return nil, err
	}

	if err := s.purchases.Update(ctx, purchase); err != nil {
		release()
		return nil, fmt.Errorf("update purchase: %w", err)
	}

	if err := s.reconciler.ApplyEdit(ctx, purchase, oldItems); err != nil {
		s.logger.Error("purchase updated but reconciliation incomplete",
			zap.String("purchase_id", purchase.ID.String()),
			zap.Error(err))
		return nil, err
	}

	s.publishEvents(ctx, purchase)

	return ToPurchaseResponse(purchase), nil
}

// DeletePurchase removes a purchase. A received purchase first has its
// stock contribution reversed, floored at zero at every surface.
func (s *PurchaseService) DeletePurchase(ctx context.Context, purchaseID uuid.UUID) error {
	purchase, err := s.purchases.FindByID(ctx, purchaseID)
	if err != nil {
		return err
	}

	if err := s.reconciler.ApplyDelete(ctx, purchase); err != nil {
		s.logger.Error("purchase deletion reconciliation incomplete",
			zap.String("purchase_id", purchase.ID.String()),
			zap.Error(err))
		return err
	}

	if err := s.purchases.Delete(ctx, purchaseID); err != nil {
		return fmt.Errorf("delete purchase: %w", err)
	}

	if s.eventPublisher != nil {
		if err := s.eventPublisher.Publish(ctx, purchasing.NewPurchaseDeletedEvent(purchase)); err != nil {
			s.logger.Warn("failed to publish purchase deleted event", zap.Error(err))
		}
	}

	return nil
}

// ReceivePurchase transitions a pending purchase to received and
// reconciles its stock contribution
func (s *PurchaseService) ReceivePurchase(ctx context.Context, purchaseID uuid.UUID) (*PurchaseResponse, error) {
	purchase, err := s.purchases.FindByID(ctx, purchaseID)
	if err != nil {
		return nil, err
	}

	if err := purchase.MarkReceived(); err != nil {
		return nil, err
	}

	if err := s.purchases.Update(ctx, purchase); err != nil {
		return nil, fmt.Errorf("update purchase: %w", err)
	}

	if err := s.reconciler.ApplyCreate(ctx, purchase); err != nil {
		s.logger.Error("purchase received but reconciliation incomplete",
			zap.String("purchase_id", purchase.ID.String()),
			zap.Error(err))
		return nil, err
	}

	s.publishEvents(ctx, purchase)

	return ToPurchaseResponse(purchase), nil
}

// CancelPurchase cancels a pending purchase
func (s *PurchaseService) CancelPurchase(ctx context.Context, purchaseID uuid.UUID) (*PurchaseResponse, error) {
	purchase, err := s.purchases.FindByID(ctx, purchaseID)
	if err != nil {
		return nil, err
	}

	if err := purchase.Cancel(); err != nil {
		return nil, err
	}

	if err := s.purchases.Update(ctx, purchase); err != nil {
		return nil, fmt.Errorf("update purchase: %w", err)
	}

	s.publishEvents(ctx, purchase)

	return ToPurchaseResponse(purchase), nil
}

// RecordPayment applies a payment against a purchase and refreshes its
// payment status
func (s *PurchaseService) RecordPayment(ctx context.Context, req *RecordPaymentRequest) (*PurchaseResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, shared.NewDomainError("VALIDATION_FAILED", err.Error())
	}

	purchase, err := s.purchases.FindByID(ctx, req.PurchaseID)
	if err != nil {
		return nil, err
	}

	if err := purchase.RecordPayment(req.Amount); err != nil {
		return nil, err
	}

	if err := s.purchases.Update(ctx, purchase); err != nil {
		return nil, fmt.Errorf("update purchase: %w", err)
	}

	return ToPurchaseResponse(purchase), nil
}

// GetPurchase loads one purchase by ID
func (s *PurchaseService) GetPurchase(ctx context.Context, purchaseID uuid.UUID) (*PurchaseResponse, error) {
	purchase, err := s.purchases.FindByID(ctx, purchaseID)
	if err != nil {
		return nil, err
	}
	return ToPurchaseResponse(purchase), nil
}

// ListPurchases returns a page of purchases
func (s *PurchaseService) ListPurchases(ctx context.Context, filter shared.Filter) (*shared.Paginated[*PurchaseResponse], error) {
	page, err := s.purchases.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]*PurchaseResponse, 0, len(page.Items))
	for _, p := range page.Items {
		items = append(items, ToPurchaseResponse(p))
	}

	return &shared.Paginated[*PurchaseResponse]{
		Items:  items,
		Total:  page.Total,
		Limit:  page.Limit,
		Offset: page.Offset,
	}, nil
}

// claimKey reserves an idempotency key. The returned release func frees
// the key again and is called when the operation fails before any stock
// was touched.
func (s *PurchaseService) claimKey(ctx context.Context, key string) (func(), error) {
	if key == "" || s.idempotency == nil {
		return func() {}, nil
	}

	ok, err := s.idempotency.SetNX(ctx, key, s.idempotencyTTL)
	if err != nil {
		return nil, fmt.Errorf("idempotency check: %w", err)
	}
	if !ok {
		return nil, shared.NewDomainError("DUPLICATE_OPERATION", "Operation with this idempotency key was already applied")
	}

	return func() {
		if err := s.idempotency.Release(ctx, key); err != nil {
			s.logger.Warn("failed to release idempotency key", zap.String("key", key), zap.Error(err))
		}
	}, nil
}

// publishEvents drains the purchase's domain events to the bus
func (s *PurchaseService) publishEvents(ctx context.Context, purchase *purchasing.Purchase) {
	if s.eventPublisher == nil {
		return
	}
	events := purchase.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish purchase events",
			zap.String("purchase_id", purchase.ID.String()),
			zap.Error(err))
	}
	purchase.ClearDomainEvents()
}
