package purchasing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/retail/backoffice/internal/domain/catalog"
	"github.com/retail/backoffice/internal/domain/purchasing"
	"github.com/retail/backoffice/internal/domain/shared"
	"github.com/retail/backoffice/internal/domain/warehouse"
)

// In-memory repositories for exercising the reconciliation flow without
// a database. Stock mutations accumulate across calls, which is what
// the delta-based assertions need.

type memProducts struct {
	items map[uuid.UUID]*catalog.Product
	// failOn makes FindByID fail for one product, simulating a store
	// error partway through a multi-line purchase
	failOn uuid.UUID
}

func newMemProducts() *memProducts {
	return &memProducts{items: make(map[uuid.UUID]*catalog.Product)}
}

func (m *memProducts) Save(_ context.Context, p *catalog.Product) error {
	m.items[p.ID] = p
	return nil
}

func (m *memProducts) Update(_ context.Context, p *catalog.Product) error {
	m.items[p.ID] = p
	return nil
}

func (m *memProducts) FindByID(_ context.Context, id uuid.UUID) (*catalog.Product, error) {
	if m.failOn != uuid.Nil && id == m.failOn {
		return nil, fmt.Errorf("connection reset")
	}
	p, ok := m.items[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return p, nil
}

func (m *memProducts) FindByCode(_ context.Context, code string) (*catalog.Product, error) {
	for _, p := range m.items {
		if p.Code == code {
			return p, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (m *memProducts) List(_ context.Context, filter shared.Filter) (*shared.Paginated[*catalog.Product], error) {
	items := make([]*catalog.Product, 0, len(m.items))
	for _, p := range m.items {
		items = append(items, p)
	}
	return &shared.Paginated[*catalog.Product]{Items: items, Total: int64(len(items)), Limit: filter.Limit, Offset: filter.Offset}, nil
}

type memVariants struct {
	rows []*catalog.ProductVariant
}

func newMemVariants() *memVariants {
	return &memVariants{}
}

func (m *memVariants) Save(_ context.Context, v *catalog.ProductVariant) error {
	m.rows = append(m.rows, v)
	return nil
}

func (m *memVariants) Update(_ context.Context, v *catalog.ProductVariant) error {
	for idx := range m.rows {
		if m.rows[idx].ID == v.ID {
			m.rows[idx] = v
			return nil
		}
	}
	return shared.ErrNotFound
}

func (m *memVariants) Delete(_ context.Context, id uuid.UUID) error {
	for idx := range m.rows {
		if m.rows[idx].ID == id {
			m.rows = append(m.rows[:idx], m.rows[idx+1:]...)
			return nil
		}
	}
	return shared.ErrNotFound
}

func (m *memVariants) FindByID(_ context.Context, id uuid.UUID) (*catalog.ProductVariant, error) {
	for _, v := range m.rows {
		if v.ID == id {
			return v, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (m *memVariants) FindByKey(_ context.Context, productID uuid.UUID, primaryVariantID *uuid.UUID) ([]*catalog.ProductVariant, error) {
	out := make([]*catalog.ProductVariant, 0)
	for _, v := range m.rows {
		if v.MatchesKey(productID, primaryVariantID) {
			out = append(out, v)
		}
	}
	return out, nil
}

func (m *memVariants) FindByKeyAndUnitType(_ context.Context, productID uuid.UUID, primaryVariantID *uuid.UUID, unitType string) (*catalog.ProductVariant, error) {
	for _, v := range m.rows {
		if v.MatchesKey(productID, primaryVariantID) && v.UnitType == unitType {
			return v, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (m *memVariants) DeleteStaleDerivedKilo(_ context.Context, productID uuid.UUID, primaryVariantID *uuid.UUID) error {
	kept := m.rows[:0]
	for _, v := range m.rows {
		if v.MatchesKey(productID, primaryVariantID) && v.IsStaleDerivedKilo() {
			continue
		}
		kept = append(kept, v)
	}
	m.rows = kept
	return nil
}

func (m *memVariants) ListByProduct(_ context.Context, productID uuid.UUID) ([]*catalog.ProductVariant, error) {
	out := make([]*catalog.ProductVariant, 0)
	for _, v := range m.rows {
		if v.ProductID == productID {
			out = append(out, v)
		}
	}
	return out, nil
}

type memStockRecords struct {
	rows []*warehouse.StockRecord
}

func newMemStockRecords() *memStockRecords {
	return &memStockRecords{}
}

func sameVariantKey(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func (m *memStockRecords) FindByKey(_ context.Context, productID uuid.UUID, primaryVariantID *uuid.UUID, warehouseID uuid.UUID) (*warehouse.StockRecord, error) {
	for _, r := range m.rows {
		if r.ProductID == productID && r.WarehouseID == warehouseID && sameVariantKey(r.PrimaryVariantID, primaryVariantID) {
			return r, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (m *memStockRecords) Save(_ context.Context, r *warehouse.StockRecord) error {
	m.rows = append(m.rows, r)
	return nil
}

func (m *memStockRecords) Update(_ context.Context, r *warehouse.StockRecord) error {
	for idx := range m.rows {
		if m.rows[idx].ID == r.ID {
			m.rows[idx] = r
			return nil
		}
	}
	return shared.ErrNotFound
}

func (m *memStockRecords) ListByWarehouse(_ context.Context, warehouseID uuid.UUID) ([]*warehouse.StockRecord, error) {
	out := make([]*warehouse.StockRecord, 0)
	for _, r := range m.rows {
		if r.WarehouseID == warehouseID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memStockRecords) ListByProduct(_ context.Context, productID uuid.UUID) ([]*warehouse.StockRecord, error) {
	out := make([]*warehouse.StockRecord, 0)
	for _, r := range m.rows {
		if r.ProductID == productID {
			out = append(out, r)
		}
	}
	return out, nil
}

type memPurchases struct {
	items map[uuid.UUID]*purchasing.Purchase
	seq   int
}

func newMemPurchases() *memPurchases {
	return &memPurchases{items: make(map[uuid.UUID]*purchasing.Purchase)}
}

func (m *memPurchases) Save(_ context.Context, p *purchasing.Purchase) error {
	m.items[p.ID] = p
	return nil
}

func (m *memPurchases) Update(_ context.Context, p *purchasing.Purchase) error {
	m.items[p.ID] = p
	return nil
}

func (m *memPurchases) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.items, id)
	return nil
}

func (m *memPurchases) FindByID(_ context.Context, id uuid.UUID) (*purchasing.Purchase, error) {
	p, ok := m.items[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return p, nil
}

func (m *memPurchases) FindByNumber(_ context.Context, number string) (*purchasing.Purchase, error) {
	for _, p := range m.items {
		if p.PurchaseNumber == number {
			return p, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (m *memPurchases) FindBySupplier(_ context.Context, supplierID uuid.UUID, _ shared.Filter) ([]*purchasing.Purchase, error) {
	out := make([]*purchasing.Purchase, 0)
	for _, p := range m.items {
		if p.SupplierID == supplierID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memPurchases) List(_ context.Context, filter shared.Filter) (*shared.Paginated[*purchasing.Purchase], error) {
	items := make([]*purchasing.Purchase, 0, len(m.items))
	for _, p := range m.items {
		items = append(items, p)
	}
	return &shared.Paginated[*purchasing.Purchase]{Items: items, Total: int64(len(items)), Limit: filter.Limit, Offset: filter.Offset}, nil
}

func (m *memPurchases) CountByStatus(_ context.Context, status purchasing.PurchaseStatus) (int64, error) {
	var n int64
	for _, p := range m.items {
		if p.Status == status {
			n++
		}
	}
	return n, nil
}

func (m *memPurchases) NextPurchaseNumber(_ context.Context) (string, error) {
	m.seq++
	return fmt.Sprintf("ACH-%06d", m.seq), nil
}

type memIdempotency struct {
	keys map[string]struct{}
}

func newMemIdempotency() *memIdempotency {
	return &memIdempotency{keys: make(map[string]struct{})}
}

func (m *memIdempotency) SetNX(_ context.Context, key string, _ time.Duration) (bool, error) {
	if _, ok := m.keys[key]; ok {
		return false, nil
	}
	m.keys[key] = struct{}{}
	return true, nil
}

func (m *memIdempotency) Release(_ context.Context, key string) error {
	delete(m.keys, key)
	return nil
}

// variantByUnitType is a test helper resolving a synthesized row
func (m *memVariants) byUnitType(unitType string) *catalog.ProductVariant {
	for _, v := range m.rows {
		if strings.EqualFold(v.UnitType, unitType) {
			return v
		}
	}
	return nil
}
