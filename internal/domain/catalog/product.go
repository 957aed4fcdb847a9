package catalog

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pricewatch/backend/internal/domain/shared"
)

// Product represents a first-party catalog item kept in sync from the
// authoritative catalog API. It is the aggregate root for catalog operations.
type Product struct {
	shared.BaseAggregateRoot
	ExternalID     string           `gorm:"type:varchar(64);not null;uniqueIndex"`
	Title          string           `gorm:"type:varchar(500);not null"`
	Vendor         string           `gorm:"type:varchar(200);not null;index"`
	ProductType    string           `gorm:"type:varchar(200)"`
	SKU            string           `gorm:"type:varchar(100);index"`
	Price          decimal.Decimal  `gorm:"type:decimal(18,4);not null;default:0"`
	CompareAtPrice *decimal.Decimal `gorm:"type:decimal(18,4)"`
	Available      bool             `gorm:"not null;index"`
	InventoryQty   int              `gorm:"not null;default:0"`
	Embedding      shared.Vector    `gorm:"type:jsonb"`
	BrandID        *uuid.UUID       `gorm:"type:uuid;index"`
	LastSyncedAt   time.Time
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "catalog_products"
}

// NewProduct creates a catalog product from a synced external record
func NewProduct(externalID, title, vendor string, price decimal.Decimal) (*Product, error) {
	if strings.TrimSpace(externalID) == "" {
		return nil, shared.NewDomainError("INVALID_EXTERNAL_ID", "External ID cannot be empty")
	}
	if strings.TrimSpace(title) == "" {
		return nil, shared.NewDomainError("INVALID_TITLE", "Product title cannot be empty")
	}
	if !price.IsPositive() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Product price must be positive")
	}

	return &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ExternalID:        strings.TrimSpace(externalID),
		Title:             strings.TrimSpace(title),
		Vendor:            strings.TrimSpace(vendor),
		Price:             price,
		Available:         true,
		LastSyncedAt:      time.Now(),
	}, nil
}

// ApplySync refreshes the product from the external source of truth.
// The embedding is intentionally left untouched; it is regenerated by the
// backfill pass only when the descriptive fields that feed it change.
func (p *Product) ApplySync(title, vendor, productType, sku string, price decimal.Decimal, compareAt *decimal.Decimal, inventoryQty int) error {
	if strings.TrimSpace(title) == "" {
		return shared.NewDomainError("INVALID_TITLE", "Product title cannot be empty")
	}
	if !price.IsPositive() {
		return shared.NewDomainError("INVALID_PRICE", "Product price must be positive")
	}

	p.Title = strings.TrimSpace(title)
	p.Vendor = strings.TrimSpace(vendor)
	p.ProductType = strings.TrimSpace(productType)
	p.SKU = strings.TrimSpace(sku)
	p.Price = price
	p.CompareAtPrice = compareAt
	p.InventoryQty = inventoryQty
	p.Available = true
	p.LastSyncedAt = time.Now()
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	return nil
}

// SetBrand associates the product with a monitored brand
func (p *Product) SetBrand(brandID *uuid.UUID) {
	p.BrandID = brandID
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

// SetEmbedding stores the semantic embedding vector
func (p *Product) SetEmbedding(vec shared.Vector) {
	p.Embedding = vec
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

// Deactivate soft-deletes the product. The row is never removed so that
// existing matches keep a valid reference.
func (p *Product) Deactivate() {
	if !p.Available {
		return
	}
	p.Available = false
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

// HasEmbedding returns true if a usable embedding vector is present
func (p *Product) HasEmbedding() bool {
	return !p.Embedding.IsZero()
}

// MAPPrice returns the minimum advertised price for violation checks.
// The catalog selling price is the MAP in this system.
func (p *Product) MAPPrice() decimal.Decimal {
	return p.Price
}
