package matching

import (
	"context"

	"github.com/google/uuid"

	"github.com/pricewatch/backend/internal/domain/shared"
)

// MatchRepository defines persistence operations for product matches
type MatchRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Match, error)
	FindByPair(ctx context.Context, productID, listingID uuid.UUID) (*Match, error)
	FindByProduct(ctx context.Context, productID uuid.UUID) ([]Match, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Match, error)
	// FindScannable returns matches joined with current prices for
	// violation scanning, optionally restricted to the given vendors.
	FindScannable(ctx context.Context, vendors []string) ([]Match, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	Save(ctx context.Context, match *Match) error
}
