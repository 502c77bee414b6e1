package purchasing

import (
	"github.com/google/uuid"
	"github.com/retail/backoffice/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Event type constants for the purchasing context
const (
	EventTypePurchaseCreated   = "purchase.created"
	EventTypePurchaseReceived  = "purchase.received"
	EventTypePurchaseCancelled = "purchase.cancelled"
	EventTypePurchaseDeleted   = "purchase.deleted"
)

// PurchaseCreatedEvent is raised when a new purchase is created
type PurchaseCreatedEvent struct {
	shared.BaseDomainEvent
	PurchaseNumber string          `json:"purchase_number"`
	SupplierID     uuid.UUID       `json:"supplier_id"`
	WarehouseID    uuid.UUID       `json:"warehouse_id"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
}

// NewPurchaseCreatedEvent creates a new PurchaseCreatedEvent
func NewPurchaseCreatedEvent(p *Purchase) *PurchaseCreatedEvent {
	return &PurchaseCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseCreated, "Purchase", p.ID),
		PurchaseNumber:  p.PurchaseNumber,
		SupplierID:      p.SupplierID,
		WarehouseID:     p.WarehouseID,
		TotalAmount:     p.TotalAmount,
	}
}

// PurchaseReceivedEvent is raised when a purchase transitions to received.
// Its lines carry everything stock reconciliation needs downstream.
type PurchaseReceivedEvent struct {
	shared.BaseDomainEvent
	PurchaseNumber string             `json:"purchase_number"`
	WarehouseID    uuid.UUID          `json:"warehouse_id"`
	Items          []PurchaseLineItem `json:"items"`
}

// NewPurchaseReceivedEvent creates a new PurchaseReceivedEvent
func NewPurchaseReceivedEvent(p *Purchase) *PurchaseReceivedEvent {
	return &PurchaseReceivedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseReceived, "Purchase", p.ID),
		PurchaseNumber:  p.PurchaseNumber,
		WarehouseID:     p.WarehouseID,
		Items:           p.Items,
	}
}

// PurchaseCancelledEvent is raised when a pending purchase is cancelled
type PurchaseCancelledEvent struct {
	shared.BaseDomainEvent
	PurchaseNumber string `json:"purchase_number"`
}

// NewPurchaseCancelledEvent creates a new PurchaseCancelledEvent
func NewPurchaseCancelledEvent(p *Purchase) *PurchaseCancelledEvent {
	return &PurchaseCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseCancelled, "Purchase", p.ID),
		PurchaseNumber:  p.PurchaseNumber,
	}
}

// PurchaseDeletedEvent is raised after a purchase and its stock
// contribution have been removed
type PurchaseDeletedEvent struct {
	shared.BaseDomainEvent
	PurchaseNumber string    `json:"purchase_number"`
	WarehouseID    uuid.UUID `json:"warehouse_id"`
	WasReceived    bool      `json:"was_received"`
}

// NewPurchaseDeletedEvent creates a new PurchaseDeletedEvent
func NewPurchaseDeletedEvent(p *Purchase) *PurchaseDeletedEvent {
	return &PurchaseDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseDeleted, "Purchase", p.ID),
		PurchaseNumber:  p.PurchaseNumber,
		WarehouseID:     p.WarehouseID,
		WasReceived:     p.IsReceived(),
	}
}
