package catalog

import (
	"strings"
	"time"

	"github.com/pricewatch/backend/internal/domain/shared"
)

// MonitoredBrand is a first-party vendor whose catalog is kept in sync
type MonitoredBrand struct {
	shared.BaseAggregateRoot
	Name   string `gorm:"type:varchar(200);not null;uniqueIndex"`
	Active bool   `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (MonitoredBrand) TableName() string {
	return "monitored_brands"
}

// NewMonitoredBrand creates a new monitored brand
func NewMonitoredBrand(name string) (*MonitoredBrand, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Brand name cannot be empty")
	}
	if len(name) > 200 {
		return nil, shared.NewDomainError("INVALID_NAME", "Brand name cannot exceed 200 characters")
	}

	return &MonitoredBrand{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Active:            true,
	}, nil
}

// Activate marks the brand as actively monitored
func (b *MonitoredBrand) Activate() {
	if b.Active {
		return
	}
	b.Active = true
	b.UpdatedAt = time.Now()
	b.IncrementVersion()
}

// Deactivate stops sync passes for the brand without removing it
func (b *MonitoredBrand) Deactivate() {
	if !b.Active {
		return
	}
	b.Active = false
	b.UpdatedAt = time.Now()
	b.IncrementVersion()
}
