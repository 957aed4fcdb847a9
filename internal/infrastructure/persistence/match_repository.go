package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pricewatch/backend/internal/domain/matching"
	"github.com/pricewatch/backend/internal/domain/shared"
)

// GormMatchRepository implements matching.MatchRepository using GORM
type GormMatchRepository struct {
	db *gorm.DB
}

// NewGormMatchRepository creates a new GormMatchRepository
func NewGormMatchRepository(db *gorm.DB) *GormMatchRepository {
	return &GormMatchRepository{db: db}
}

// FindByID finds a match by its ID
func (r *GormMatchRepository) FindByID(ctx context.Context, id uuid.UUID) (*matching.Match, error) {
	var match matching.Match
	if err := r.db.WithContext(ctx).First(&match, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &match, nil
}

// FindByPair finds the match for a (product, listing) pair
func (r *GormMatchRepository) FindByPair(ctx context.Context, productID, listingID uuid.UUID) (*matching.Match, error) {
	var match matching.Match
	if err := r.db.WithContext(ctx).
		Where("catalog_product_id = ? AND competitor_listing_id = ?", productID, listingID).
		First(&match).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &match, nil
}

// FindByProduct finds all matches for a catalog product, best score first
func (r *GormMatchRepository) FindByProduct(ctx context.Context, productID uuid.UUID) ([]matching.Match, error) {
	var matches []matching.Match
	if err := r.db.WithContext(ctx).
		Where("catalog_product_id = ?", productID).
		Order("overall_score DESC").
		Find(&matches).Error; err != nil {
		return nil, err
	}
	return matches, nil
}

// FindAll finds all matches matching the filter
func (r *GormMatchRepository) FindAll(ctx context.Context, filter shared.Filter) ([]matching.Match, error) {
	var matches []matching.Match
	query := r.applyFilter(r.db.WithContext(ctx).Model(&matching.Match{}), filter)

	if err := query.Find(&matches).Error; err != nil {
		return nil, err
	}
	return matches, nil
}

// FindScannable returns matches whose catalog product and competitor listing
// are both still available, optionally restricted to products of the given
// vendors. These are the pairs worth scanning for price violations.
func (r *GormMatchRepository) FindScannable(ctx context.Context, vendors []string) ([]matching.Match, error) {
	query := r.db.WithContext(ctx).
		Model(&matching.Match{}).
		Joins("JOIN catalog_products ON catalog_products.id = product_matches.catalog_product_id").
		Joins("JOIN competitor_listings ON competitor_listings.id = product_matches.competitor_listing_id").
		Where("catalog_products.available = ?", true).
		Where("competitor_listings.available = ?", true)

	if len(vendors) > 0 {
		query = query.Where("catalog_products.vendor IN ?", vendors)
	}

	var matches []matching.Match
	if err := query.Order("product_matches.overall_score DESC").Find(&matches).Error; err != nil {
		return nil, err
	}
	return matches, nil
}

// Count counts matches matching the filter
func (r *GormMatchRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&matching.Match{}), filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a match
func (r *GormMatchRepository) Save(ctx context.Context, match *matching.Match) error {
	return r.db.WithContext(ctx).Save(match).Error
}

// applyFilter applies filter options to the query
func (r *GormMatchRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	// Apply sorting with whitelist validation to prevent SQL injection
	sortField := ValidateSortField(filter.OrderBy, MatchSortFields, "overall_score")
	sortOrder := ValidateSortOrder(filter.OrderDir)
	query = query.Order(sortField + " " + sortOrder)

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormMatchRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "confidence":
			query = query.Where("confidence = ?", value)
		case "is_manual":
			query = query.Where("is_manual_match = ?", value)
		case "catalog_product_id":
			query = query.Where("catalog_product_id = ?", value)
		case "competitor_listing_id":
			query = query.Where("competitor_listing_id = ?", value)
		case "min_score":
			query = query.Where("overall_score >= ?", value)
		}
	}

	return query
}

// Ensure GormMatchRepository implements MatchRepository
var _ matching.MatchRepository = (*GormMatchRepository)(nil)
