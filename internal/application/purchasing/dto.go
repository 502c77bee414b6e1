package purchasing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/retail/backoffice/internal/domain/purchasing"
)

// PurchaseLineInput carries one purchase line from the caller
type PurchaseLineInput struct {
	ProductID        uuid.UUID       `json:"product_id" validate:"required"`
	PrimaryVariantID *uuid.UUID      `json:"primary_variant_id,omitempty"`
	Quantity         decimal.Decimal `json:"quantity" validate:"required"`
	UnitType         string          `json:"unit_type" validate:"required,oneof=kilo carton paquet sac"`
	UnitsPerCarton   decimal.Decimal `json:"units_per_carton"`
	WeightPerUnit    decimal.Decimal `json:"weight_per_unit"`
	PackagingMode    string          `json:"packaging_mode" validate:"omitempty,oneof=none carton sachet"`
	UnitPrice        decimal.Decimal `json:"unit_price"`
}

// CreatePurchaseRequest creates a new purchase, optionally received on
// the spot so its lines reconcile stock immediately
type CreatePurchaseRequest struct {
	SupplierID     uuid.UUID           `json:"supplier_id" validate:"required"`
	SupplierName   string              `json:"supplier_name"`
	WarehouseID    uuid.UUID           `json:"warehouse_id" validate:"required"`
	TaxRate        decimal.Decimal     `json:"tax_rate"`
	Received       bool                `json:"received"`
	PaidAmount     decimal.Decimal     `json:"paid_amount"`
	Items          []PurchaseLineInput `json:"items" validate:"required,min=1,dive"`
	IdempotencyKey string              `json:"idempotency_key,omitempty"`
}

// EditPurchaseRequest replaces a purchase's line items; stock is
// adjusted by the delta between the old and new lines
type EditPurchaseRequest struct {
	PurchaseID     uuid.UUID           `json:"purchase_id" validate:"required"`
	Items          []PurchaseLineInput `json:"items" validate:"required,min=1,dive"`
	IdempotencyKey string              `json:"idempotency_key,omitempty"`
}

// RecordPaymentRequest applies a payment against a purchase
type RecordPaymentRequest struct {
	PurchaseID uuid.UUID       `json:"purchase_id" validate:"required"`
	Amount     decimal.Decimal `json:"amount" validate:"required"`
}

// PurchaseLineResponse is the outward view of one purchase line
type PurchaseLineResponse struct {
	ID               uuid.UUID       `json:"id"`
	ProductID        uuid.UUID       `json:"product_id"`
	PrimaryVariantID *uuid.UUID      `json:"primary_variant_id,omitempty"`
	ProductName      string          `json:"product_name"`
	Quantity         decimal.Decimal `json:"quantity"`
	UnitType         string          `json:"unit_type"`
	UnitsPerCarton   decimal.Decimal `json:"units_per_carton"`
	WeightPerUnit    decimal.Decimal `json:"weight_per_unit"`
	PackagingMode    string          `json:"packaging_mode"`
	UnitPrice        decimal.Decimal `json:"unit_price"`
	LineTotal        decimal.Decimal `json:"line_total"`
	BaseQuantity     decimal.Decimal `json:"base_quantity"`
}

// PurchaseResponse is the outward view of a purchase
type PurchaseResponse struct {
	ID              uuid.UUID              `json:"id"`
	PurchaseNumber  string                 `json:"purchase_number"`
	SupplierID      uuid.UUID              `json:"supplier_id"`
	SupplierName    string                 `json:"supplier_name"`
	WarehouseID     uuid.UUID              `json:"warehouse_id"`
	Status          string                 `json:"status"`
	Subtotal        decimal.Decimal        `json:"subtotal"`
	TaxRate         decimal.Decimal        `json:"tax_rate"`
	TaxAmount       decimal.Decimal        `json:"tax_amount"`
	TotalAmount     decimal.Decimal        `json:"total_amount"`
	PaidAmount      decimal.Decimal        `json:"paid_amount"`
	RemainingAmount decimal.Decimal        `json:"remaining_amount"`
	PaymentStatus   string                 `json:"payment_status"`
	Items           []PurchaseLineResponse `json:"items"`
	ReceivedAt      *time.Time             `json:"received_at,omitempty"`
	CreatedAt       time.Time              `json:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at"`
}

// ToPurchaseResponse converts a purchase aggregate to its response view
func ToPurchaseResponse(p *purchasing.Purchase) *PurchaseResponse {
	items := make([]PurchaseLineResponse, 0, len(p.Items))
	for _, item := range p.Items {
		items = append(items, PurchaseLineResponse{
			ID:               item.ID,
			ProductID:        item.ProductID,
			PrimaryVariantID: item.PrimaryVariantID,
			ProductName:      item.ProductName,
			Quantity:         item.Quantity,
			UnitType:         item.UnitType.String(),
			UnitsPerCarton:   item.UnitsPerCarton,
			WeightPerUnit:    item.WeightPerUnit,
			PackagingMode:    item.PackagingMode.String(),
			UnitPrice:        item.UnitPrice,
			LineTotal:        item.LineTotal,
			BaseQuantity:     item.BaseQuantity,
		})
	}

	return &PurchaseResponse{
		ID:              p.ID,
		PurchaseNumber:  p.PurchaseNumber,
		SupplierID:      p.SupplierID,
		SupplierName:    p.SupplierName,
		WarehouseID:     p.WarehouseID,
		Status:          p.Status.String(),
		Subtotal:        p.Subtotal,
		TaxRate:         p.TaxRate,
		TaxAmount:       p.TaxAmount,
		TotalAmount:     p.TotalAmount,
		PaidAmount:      p.PaidAmount,
		RemainingAmount: p.RemainingAmount,
		PaymentStatus:   p.PaymentStatus.String(),
		Items:           items,
		ReceivedAt:      p.ReceivedAt,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}
