package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/pricewatch/backend/internal/domain/competitor"
	"github.com/pricewatch/backend/internal/domain/shared"
)

// GormPriceHistoryRepository implements competitor.PriceHistoryRepository using GORM
type GormPriceHistoryRepository struct {
	db *gorm.DB
}

// NewGormPriceHistoryRepository creates a new GormPriceHistoryRepository
func NewGormPriceHistoryRepository(db *gorm.DB) *GormPriceHistoryRepository {
	return &GormPriceHistoryRepository{db: db}
}

// Append records a new price observation. Entries are append-only.
func (r *GormPriceHistoryRepository) Append(ctx context.Context, entry *competitor.PriceHistoryEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// LastPrice returns the most recently recorded price for the listing,
// or nil when no history exists
func (r *GormPriceHistoryRepository) LastPrice(ctx context.Context, listingID uuid.UUID) (*decimal.Decimal, error) {
	var entry competitor.PriceHistoryEntry
	if err := r.db.WithContext(ctx).
		Where("listing_id = ?", listingID).
		Order("recorded_at DESC").
		First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entry.Price, nil
}

// FindByListing returns price history for a listing, newest first
func (r *GormPriceHistoryRepository) FindByListing(ctx context.Context, listingID uuid.UUID, filter shared.Filter) ([]competitor.PriceHistoryEntry, error) {
	var entries []competitor.PriceHistoryEntry
	query := r.db.WithContext(ctx).
		Where("listing_id = ?", listingID).
		Order("recorded_at DESC")

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// Ensure GormPriceHistoryRepository implements PriceHistoryRepository
var _ competitor.PriceHistoryRepository = (*GormPriceHistoryRepository)(nil)
