package warehouse

import (
	"time"

	"github.com/retail/backoffice/internal/domain/shared"
)

// Warehouse represents a physical stock location
type Warehouse struct {
	shared.BaseAggregateRoot
	Name      string `gorm:"type:varchar(200);not null"`
	Code      string `gorm:"type:varchar(50);uniqueIndex"`
	Address   string `gorm:"type:varchar(500)"`
	IsActive  bool   `gorm:"not null;default:true"`
	IsDefault bool   `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (Warehouse) TableName() string {
	return "warehouses"
}

// NewWarehouse creates a new active warehouse
func NewWarehouse(name, code string) (*Warehouse, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Warehouse name cannot be empty")
	}

	return &Warehouse{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Code:              code,
		IsActive:          true,
	}, nil
}

// Deactivate disables the warehouse for new stock movements
func (w *Warehouse) Deactivate() {
	w.IsActive = false
	w.UpdatedAt = time.Now()
	w.IncrementVersion()
}
