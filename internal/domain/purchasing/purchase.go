package purchasing

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/retail/backoffice/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// PurchaseStatus represents the lifecycle status of a purchase
type PurchaseStatus string

const (
	PurchaseStatusPending   PurchaseStatus = "pending"
	PurchaseStatusReceived  PurchaseStatus = "received"
	PurchaseStatusCancelled PurchaseStatus = "cancelled"
)

// IsValid checks if the status is a valid PurchaseStatus
func (s PurchaseStatus) IsValid() bool {
	switch s {
	case PurchaseStatusPending, PurchaseStatusReceived, PurchaseStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of PurchaseStatus
func (s PurchaseStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s PurchaseStatus) CanTransitionTo(target PurchaseStatus) bool {
	switch s {
	case PurchaseStatusPending:
		return target == PurchaseStatusReceived || target == PurchaseStatusCancelled
	case PurchaseStatusReceived, PurchaseStatusCancelled:
		return false // Terminal states
	}
	return false
}

// AffectsStock returns true if purchases in this status contribute to stock
func (s PurchaseStatus) AffectsStock() bool {
	return s == PurchaseStatusReceived
}

// PaymentStatus represents how much of a purchase has been paid
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPartial PaymentStatus = "partial"
	PaymentStatusPaid    PaymentStatus = "paid"
)

// String returns the string representation of PaymentStatus
func (s PaymentStatus) String() string {
	return string(s)
}

// PurchaseLineItem represents a line item in a purchase
type PurchaseLineItem struct {
	ID               uuid.UUID       `gorm:"type:uuid;primary_key"`
	PurchaseID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID        uuid.UUID       `gorm:"type:uuid;not null"`
	PrimaryVariantID *uuid.UUID      `gorm:"type:uuid;index"`
	ProductName      string          `gorm:"type:varchar(200);not null"`
	Quantity         decimal.Decimal `gorm:"type:decimal(18,4);not null"` // Count in the purchase unit
	UnitType         UnitType        `gorm:"type:varchar(20);not null"`
	UnitsPerCarton   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"` // 0 means unset
	WeightPerUnit    decimal.Decimal `gorm:"type:decimal(18,6);not null;default:0"` // 0 means unset
	PackagingMode    PackagingMode   `gorm:"type:varchar(20);not null;default:'none'"`
	UnitPrice        decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	LineTotal        decimal.Decimal `gorm:"type:decimal(18,4);not null"` // Quantity * UnitPrice
	BaseQuantity     decimal.Decimal `gorm:"type:decimal(18,4);not null"` // Quantity in canonical base units
	CreatedAt        time.Time       `gorm:"not null"`
	UpdatedAt        time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PurchaseLineItem) TableName() string {
	return "purchase_line_items"
}

// NewPurchaseLineItem creates and validates a new purchase line item
func NewPurchaseLineItem(purchaseID, productID uuid.UUID, primaryVariantID *uuid.UUID, productName string, quantity decimal.Decimal, unitType UnitType, unitsPerCarton, weightPerUnit decimal.Decimal, packagingMode PackagingMode, unitPrice decimal.Decimal) (*PurchaseLineItem, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if !unitType.IsValid() {
		return nil, shared.NewDomainError("INVALID_UNIT_TYPE", fmt.Sprintf("Unknown unit type %q", unitType))
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}
	if packagingMode == "" {
		packagingMode = PackagingNone
	}
	if !packagingMode.IsValid() {
		return nil, shared.NewDomainError("INVALID_PACKAGING", fmt.Sprintf("Unknown packaging mode %q", packagingMode))
	}
	if unitType == UnitTypeCarton && unitsPerCarton.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("MISSING_MULTIPLIER", "Carton purchases require units per carton")
	}
	if unitType == UnitTypeKilo && packagingMode == PackagingCarton {
		if unitsPerCarton.LessThanOrEqual(decimal.Zero) || weightPerUnit.LessThanOrEqual(decimal.Zero) {
			return nil, shared.NewDomainError("MISSING_MULTIPLIER", "Carton-packaged kilo purchases require units per carton and weight per unit")
		}
	}

	now := time.Now()
	item := &PurchaseLineItem{
		ID:               uuid.New(),
		PurchaseID:       purchaseID,
		ProductID:        productID,
		PrimaryVariantID: primaryVariantID,
		ProductName:      productName,
		Quantity:         quantity,
		UnitType:         unitType,
		UnitsPerCarton:   unitsPerCarton,
		WeightPerUnit:    weightPerUnit,
		PackagingMode:    packagingMode,
		UnitPrice:        unitPrice,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	item.recompute()
	return item, nil
}

// recompute refreshes the derived line fields from the raw inputs
func (i *PurchaseLineItem) recompute() {
	i.LineTotal = i.Quantity.Mul(i.UnitPrice)
	i.BaseQuantity = BaseQuantity(i.UnitType, i.Quantity, i.UnitsPerCarton, i.WeightPerUnit)
}

// Key identifies the product/variant combination this line targets.
// Lines within one purchase are matched by this key during edits.
func (i *PurchaseLineItem) Key() string {
	if i.PrimaryVariantID != nil {
		return i.ProductID.String() + "/" + i.PrimaryVariantID.String()
	}
	return i.ProductID.String()
}

// MainDelta returns the stock delta applied to the line's base variant:
// base units for kilo purchases, purchase-unit count otherwise (a carton
// line moves the carton variant by the number of cartons, not by weight).
func (i *PurchaseLineItem) MainDelta() decimal.Decimal {
	if i.UnitType == UnitTypeKilo {
		return i.BaseQuantity
	}
	return i.Quantity
}

// UnitsPerCartonOrDefault returns the carton multiplier, defaulting to 1
func (i *PurchaseLineItem) UnitsPerCartonOrDefault() decimal.Decimal {
	return orDefaultOne(i.UnitsPerCarton)
}

// WeightPerUnitOrDefault returns the weight multiplier, defaulting to 1
func (i *PurchaseLineItem) WeightPerUnitOrDefault() decimal.Decimal {
	return orDefaultOne(i.WeightPerUnit)
}

// HasCartonPackaging reports whether the line is a kilo purchase that
// arrived packed in cartons with both multipliers supplied.
func (i *PurchaseLineItem) HasCartonPackaging() bool {
	return i.UnitType == UnitTypeKilo &&
		i.PackagingMode == PackagingCarton &&
		i.UnitsPerCarton.GreaterThan(decimal.Zero) &&
		i.WeightPerUnit.GreaterThan(decimal.Zero)
}

// MergeFrom folds another line for the same product/variant key into this
// one, summing quantities and recomputing the derived fields. The incoming
// line's price and multipliers win, matching a user re-entering the item.
func (i *PurchaseLineItem) MergeFrom(other *PurchaseLineItem) {
	i.Quantity = i.Quantity.Add(other.Quantity)
	i.UnitType = other.UnitType
	i.UnitsPerCarton = other.UnitsPerCarton
	i.WeightPerUnit = other.WeightPerUnit
	i.PackagingMode = other.PackagingMode
	i.UnitPrice = other.UnitPrice
	i.recompute()
	i.UpdatedAt = time.Now()
}

// Purchase represents a supplier purchase aggregate root.
// Its line items drive stock reconciliation once the purchase is received.
type Purchase struct {
	shared.BaseAggregateRoot
	PurchaseNumber  string             `gorm:"type:varchar(50);not null;uniqueIndex"`
	SupplierID      uuid.UUID          `gorm:"type:uuid;not null;index"`
	SupplierName    string             `gorm:"type:varchar(200);not null"`
	WarehouseID     uuid.UUID          `gorm:"type:uuid;not null;index"`
	Items           []PurchaseLineItem `gorm:"foreignKey:PurchaseID;references:ID"`
	Status          PurchaseStatus     `gorm:"type:varchar(20);not null;default:'pending'"`
	Subtotal        decimal.Decimal    `gorm:"type:decimal(18,4);not null;default:0"`
	TaxRate         decimal.Decimal    `gorm:"type:decimal(8,4);not null;default:0"`
	TaxAmount       decimal.Decimal    `gorm:"type:decimal(18,4);not null;default:0"`
	TotalAmount     decimal.Decimal    `gorm:"type:decimal(18,4);not null;default:0"`
	PaidAmount      decimal.Decimal    `gorm:"type:decimal(18,4);not null;default:0"`
	RemainingAmount decimal.Decimal    `gorm:"type:decimal(18,4);not null;default:0"`
	PaymentStatus   PaymentStatus      `gorm:"type:varchar(20);not null;default:'pending'"`
	ReceivedAt      *time.Time         `gorm:"index"`
	CancelledAt     *time.Time
	Remark          string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Purchase) TableName() string {
	return "purchases"
}

// NewPurchase creates a new pending purchase
func NewPurchase(purchaseNumber string, supplierID uuid.UUID, supplierName string, warehouseID uuid.UUID, taxRate decimal.Decimal) (*Purchase, error) {
	if purchaseNumber == "" {
		return nil, shared.NewDomainError("INVALID_PURCHASE_NUMBER", "Purchase number cannot be empty")
	}
	if supplierID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SUPPLIER", "Supplier must be selected")
	}
	if warehouseID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_WAREHOUSE", "Warehouse must be selected")
	}
	if taxRate.IsNegative() {
		return nil, shared.NewDomainError("INVALID_TAX_RATE", "Tax rate cannot be negative")
	}

	p := &Purchase{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		PurchaseNumber:    purchaseNumber,
		SupplierID:        supplierID,
		SupplierName:      supplierName,
		WarehouseID:       warehouseID,
		Items:             make([]PurchaseLineItem, 0),
		Status:            PurchaseStatusPending,
		TaxRate:           taxRate,
		PaymentStatus:     PaymentStatusPending,
	}

	p.AddDomainEvent(NewPurchaseCreatedEvent(p))

	return p, nil
}

// AddLine appends a line item to the purchase. A line whose
// product/variant key already exists is merged into the existing line
// instead of creating a duplicate key.
func (p *Purchase) AddLine(productID uuid.UUID, primaryVariantID *uuid.UUID, productName string, quantity decimal.Decimal, unitType UnitType, unitsPerCarton, weightPerUnit decimal.Decimal, packagingMode PackagingMode, unitPrice decimal.Decimal) (*PurchaseLineItem, error) {
	if p.Status == PurchaseStatusCancelled {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot add items to a cancelled purchase")
	}

	item, err := NewPurchaseLineItem(p.ID, productID, primaryVariantID, productName, quantity, unitType, unitsPerCarton, weightPerUnit, packagingMode, unitPrice)
	if err != nil {
		return nil, err
	}

	if existing := p.LineByKey(item.Key()); existing != nil {
		existing.MergeFrom(item)
		item = existing
	} else {
		p.Items = append(p.Items, *item)
		item = &p.Items[len(p.Items)-1]
	}

	p.recalculateTotals()
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	return item, nil
}

// ReplaceLines swaps the purchase's line items for a new set, merging any
// duplicate product/variant keys, and recomputes the totals. The caller is
// responsible for reconciling stock by delta against the previous lines.
func (p *Purchase) ReplaceLines(items []PurchaseLineItem) error {
	if p.Status == PurchaseStatusCancelled {
		return shared.NewDomainError("INVALID_STATE", "Cannot edit a cancelled purchase")
	}
	if len(items) == 0 {
		return shared.NewDomainError("NO_ITEMS", "A purchase must keep at least one line")
	}

	merged := make([]PurchaseLineItem, 0, len(items))
	byKey := make(map[string]int, len(items))
	for idx := range items {
		items[idx].PurchaseID = p.ID
		key := items[idx].Key()
		if at, ok := byKey[key]; ok {
			merged[at].MergeFrom(&items[idx])
			continue
		}
		byKey[key] = len(merged)
		merged = append(merged, items[idx])
	}

	p.Items = merged
	p.recalculateTotals()
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	return nil
}

// MarkReceived transitions the purchase to received, making its lines
// eligible for stock reconciliation
func (p *Purchase) MarkReceived() error {
	if !p.Status.CanTransitionTo(PurchaseStatusReceived) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot receive purchase in %s status", p.Status))
	}
	if len(p.Items) == 0 {
		return shared.NewDomainError("NO_ITEMS", "Cannot receive a purchase without items")
	}

	now := time.Now()
	p.Status = PurchaseStatusReceived
	p.ReceivedAt = &now
	p.UpdatedAt = now
	p.IncrementVersion()

	p.AddDomainEvent(NewPurchaseReceivedEvent(p))

	return nil
}

// Cancel cancels a pending purchase
func (p *Purchase) Cancel() error {
	if !p.Status.CanTransitionTo(PurchaseStatusCancelled) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot cancel purchase in %s status", p.Status))
	}

	now := time.Now()
	p.Status = PurchaseStatusCancelled
	p.CancelledAt = &now
	p.UpdatedAt = now
	p.IncrementVersion()

	p.AddDomainEvent(NewPurchaseCancelledEvent(p))

	return nil
}

// RecordPayment applies a payment against the purchase total
func (p *Purchase) RecordPayment(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_PAYMENT", "Payment amount must be positive")
	}
	if p.PaidAmount.Add(amount).GreaterThan(p.TotalAmount) {
		return shared.NewDomainError("PAYMENT_EXCEEDED", fmt.Sprintf("Payment of %s exceeds remaining amount %s", amount.String(), p.RemainingAmount.String()))
	}

	p.PaidAmount = p.PaidAmount.Add(amount)
	p.recalculatePayment()
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	return nil
}

// recalculateTotals refreshes subtotal, tax and payment-derived fields
func (p *Purchase) recalculateTotals() {
	subtotal := decimal.Zero
	for _, item := range p.Items {
		subtotal = subtotal.Add(item.LineTotal)
	}
	p.Subtotal = subtotal
	p.TaxAmount = subtotal.Mul(p.TaxRate).Round(4)
	p.TotalAmount = p.Subtotal.Add(p.TaxAmount)
	p.recalculatePayment()
}

// recalculatePayment derives remaining amount and payment status
func (p *Purchase) recalculatePayment() {
	p.RemainingAmount = p.TotalAmount.Sub(p.PaidAmount)
	if p.RemainingAmount.IsNegative() {
		p.RemainingAmount = decimal.Zero
	}

	switch {
	case p.PaidAmount.IsZero():
		p.PaymentStatus = PaymentStatusPending
	case p.RemainingAmount.IsPositive():
		p.PaymentStatus = PaymentStatusPartial
	default:
		p.PaymentStatus = PaymentStatusPaid
	}
}

// LineByKey returns the line matching a product/variant key, or nil
func (p *Purchase) LineByKey(key string) *PurchaseLineItem {
	for idx := range p.Items {
		if p.Items[idx].Key() == key {
			return &p.Items[idx]
		}
	}
	return nil
}

// IsReceived returns true if the purchase has been received
func (p *Purchase) IsReceived() bool {
	return p.Status == PurchaseStatusReceived
}

// IsPending returns true if the purchase is still pending
func (p *Purchase) IsPending() bool {
	return p.Status == PurchaseStatusPending
}

// IsCancelled returns true if the purchase was cancelled
func (p *Purchase) IsCancelled() bool {
	return p.Status == PurchaseStatusCancelled
}

// ItemCount returns the number of line items
func (p *Purchase) ItemCount() int {
	return len(p.Items)
}
