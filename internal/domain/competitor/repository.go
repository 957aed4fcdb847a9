package competitor

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pricewatch/backend/internal/domain/shared"
)

// Repository defines persistence operations for competitors
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Competitor, error)
	FindByDomain(ctx context.Context, domain string) (*Competitor, error)
	FindActive(ctx context.Context) ([]Competitor, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Competitor, error)
	Save(ctx context.Context, competitor *Competitor) error
}

// ListingRepository defines persistence operations for competitor listings
type ListingRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Listing, error)
	FindByExternalID(ctx context.Context, competitorID uuid.UUID, externalID string) (*Listing, error)
	FindByCompetitor(ctx context.Context, competitorID uuid.UUID, limit int) ([]Listing, error)
	FindAvailable(ctx context.Context, limit int) ([]Listing, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Listing, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	Save(ctx context.Context, listing *Listing) error
	// Upsert creates the listing or updates the existing row keyed by
	// (external_id, competitor_id) in a single atomic write. Returns true
	// when a new row was created.
	Upsert(ctx context.Context, listing *Listing) (created bool, err error)
}

// PriceHistoryRepository defines persistence operations for price history
type PriceHistoryRepository interface {
	Append(ctx context.Context, entry *PriceHistoryEntry) error
	// LastPrice returns the most recently recorded price for the listing,
	// or nil when no history exists.
	LastPrice(ctx context.Context, listingID uuid.UUID) (*decimal.Decimal, error)
	FindByListing(ctx context.Context, listingID uuid.UUID, filter shared.Filter) ([]PriceHistoryEntry, error)
}

// ScrapeJobRepository defines persistence operations for scrape jobs
type ScrapeJobRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*ScrapeJob, error)
	FindByCompetitor(ctx context.Context, competitorID uuid.UUID, filter shared.Filter) ([]ScrapeJob, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]ScrapeJob, error)
	Save(ctx context.Context, job *ScrapeJob) error
}
