package competitor

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pricewatch/backend/internal/domain/shared"
)

// PriceChangeThreshold is the minimum absolute price difference that
// produces a new history entry. Re-scraping an unchanged price must not
// grow the table.
var PriceChangeThreshold = decimal.NewFromFloat(0.01)

// PriceHistoryEntry is an append-only record of a listing's price at a
// point in time. Entries are immutable.
type PriceHistoryEntry struct {
	shared.BaseEntity
	ListingID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	Price      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	RecordedAt time.Time       `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (PriceHistoryEntry) TableName() string {
	return "price_history_entries"
}

// NewPriceHistoryEntry records a listing price observation
func NewPriceHistoryEntry(listingID uuid.UUID, price decimal.Decimal) (*PriceHistoryEntry, error) {
	if listingID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_LISTING", "Listing ID is required")
	}
	if !price.IsPositive() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Price must be positive")
	}

	return &PriceHistoryEntry{
		BaseEntity: shared.NewBaseEntity(),
		ListingID:  listingID,
		Price:      price,
		RecordedAt: time.Now(),
	}, nil
}

// ShouldRecord reports whether newPrice differs enough from lastPrice to
// warrant a new history entry. A nil lastPrice means no history exists yet.
func ShouldRecord(lastPrice *decimal.Decimal, newPrice decimal.Decimal) bool {
	if lastPrice == nil {
		return true
	}
	return newPrice.Sub(*lastPrice).Abs().GreaterThan(PriceChangeThreshold)
}
