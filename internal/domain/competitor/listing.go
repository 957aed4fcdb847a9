package competitor

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pricewatch/backend/internal/domain/shared"
)

// Listing is a scraped competitor product. Unique per (external_id, competitor_id).
type Listing struct {
	shared.BaseAggregateRoot
	ExternalID     string           `gorm:"type:varchar(64);not null;uniqueIndex:idx_listing_external_competitor,priority:1"`
	CompetitorID   uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_listing_external_competitor,priority:2;index"`
	Title          string           `gorm:"type:varchar(500);not null"`
	Vendor         string           `gorm:"type:varchar(200);index"`
	ProductType    string           `gorm:"type:varchar(200)"`
	SKU            string           `gorm:"type:varchar(100)"`
	Price          decimal.Decimal  `gorm:"type:decimal(18,4);not null;default:0"`
	CompareAtPrice *decimal.Decimal `gorm:"type:decimal(18,4)"`
	Available      bool             `gorm:"not null"`
	ImageURL       string           `gorm:"type:text"`
	ProductURL     string           `gorm:"type:text"`
	Embedding      shared.Vector    `gorm:"type:jsonb"`
	ScrapedAt      time.Time        `gorm:"not null"`
}

// TableName returns the table name for GORM
func (Listing) TableName() string {
	return "competitor_listings"
}

// NewListing creates a listing from a scraped record
func NewListing(competitorID uuid.UUID, externalID, title string, price decimal.Decimal) (*Listing, error) {
	if competitorID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_COMPETITOR", "Competitor ID is required")
	}
	if strings.TrimSpace(externalID) == "" {
		return nil, shared.NewDomainError("INVALID_EXTERNAL_ID", "Listing external ID cannot be empty")
	}
	if strings.TrimSpace(title) == "" {
		return nil, shared.NewDomainError("INVALID_TITLE", "Listing title cannot be empty")
	}
	if !price.IsPositive() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Listing price must be positive")
	}

	return &Listing{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ExternalID:        strings.TrimSpace(externalID),
		CompetitorID:      competitorID,
		Title:             strings.TrimSpace(title),
		Price:             price,
		Available:         true,
		ScrapedAt:         time.Now(),
	}, nil
}

// ApplyScrape refreshes the listing from the latest scrape
func (l *Listing) ApplyScrape(title, vendor, productType, sku string, price decimal.Decimal, compareAt *decimal.Decimal, available bool, imageURL, productURL string) error {
	if strings.TrimSpace(title) == "" {
		return shared.NewDomainError("INVALID_TITLE", "Listing title cannot be empty")
	}
	if !price.IsPositive() {
		return shared.NewDomainError("INVALID_PRICE", "Listing price must be positive")
	}

	l.Title = strings.TrimSpace(title)
	l.Vendor = strings.TrimSpace(vendor)
	l.ProductType = strings.TrimSpace(productType)
	l.SKU = strings.TrimSpace(sku)
	l.Price = price
	l.CompareAtPrice = compareAt
	l.Available = available
	l.ImageURL = imageURL
	l.ProductURL = productURL
	l.ScrapedAt = time.Now()
	l.UpdatedAt = time.Now()
	l.IncrementVersion()

	return nil
}

// SetEmbedding stores the semantic embedding vector
func (l *Listing) SetEmbedding(vec shared.Vector) {
	l.Embedding = vec
	l.UpdatedAt = time.Now()
	l.IncrementVersion()
}

// HasEmbedding returns true if a usable embedding vector is present
func (l *Listing) HasEmbedding() bool {
	return !l.Embedding.IsZero()
}
