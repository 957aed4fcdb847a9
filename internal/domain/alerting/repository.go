package alerting

import (
	"context"

	"github.com/google/uuid"

	"github.com/pricewatch/backend/internal/domain/shared"
)

// AlertRepository defines persistence operations for price alerts
type AlertRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Alert, error)
	// FindActiveByMatch returns the match's single alert whose status is
	// outside {resolved, dismissed}, or shared.ErrNotFound.
	FindActiveByMatch(ctx context.Context, matchID uuid.UUID) (*Alert, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Alert, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Alert, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	Save(ctx context.Context, alert *Alert) error
}
