package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pricewatch/backend/internal/domain/competitor"
	"github.com/pricewatch/backend/internal/domain/shared"
)

// GormListingRepository implements competitor.ListingRepository using GORM
type GormListingRepository struct {
	db *gorm.DB
}

// NewGormListingRepository creates a new GormListingRepository
func NewGormListingRepository(db *gorm.DB) *GormListingRepository {
	return &GormListingRepository{db: db}
}

// FindByID finds a listing by its ID
func (r *GormListingRepository) FindByID(ctx context.Context, id uuid.UUID) (*competitor.Listing, error) {
	var listing competitor.Listing
	if err := r.db.WithContext(ctx).First(&listing, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &listing, nil
}

// FindByExternalID finds a listing by its (competitor, external ID) pair
func (r *GormListingRepository) FindByExternalID(ctx context.Context, competitorID uuid.UUID, externalID string) (*competitor.Listing, error) {
	var listing competitor.Listing
	if err := r.db.WithContext(ctx).
		Where("competitor_id = ? AND external_id = ?", competitorID, externalID).
		First(&listing).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &listing, nil
}

// FindByCompetitor finds listings of a competitor, up to limit
func (r *GormListingRepository) FindByCompetitor(ctx context.Context, competitorID uuid.UUID, limit int) ([]competitor.Listing, error) {
	var listings []competitor.Listing
	query := r.db.WithContext(ctx).
		Where("competitor_id = ?", competitorID).
		Order("title ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&listings).Error; err != nil {
		return nil, err
	}
	return listings, nil
}

// FindAvailable finds available listings across all competitors, up to limit
func (r *GormListingRepository) FindAvailable(ctx context.Context, limit int) ([]competitor.Listing, error) {
	var listings []competitor.Listing
	query := r.db.WithContext(ctx).
		Where("available = ?", true).
		Order("scraped_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&listings).Error; err != nil {
		return nil, err
	}
	return listings, nil
}

// FindAll finds all listings matching the filter
func (r *GormListingRepository) FindAll(ctx context.Context, filter shared.Filter) ([]competitor.Listing, error) {
	var listings []competitor.Listing
	query := r.applyFilter(r.db.WithContext(ctx).Model(&competitor.Listing{}), filter)

	if err := query.Find(&listings).Error; err != nil {
		return nil, err
	}
	return listings, nil
}

// Count counts listings matching the filter
func (r *GormListingRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&competitor.Listing{}), filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a listing
func (r *GormListingRepository) Save(ctx context.Context, listing *competitor.Listing) error {
	return r.db.WithContext(ctx).Save(listing).Error
}

// Upsert creates the listing or updates the existing row keyed by
// (external_id, competitor_id). The embedding column is excluded from the
// update so a previously generated embedding survives routine scrapes.
func (r *GormListingRepository) Upsert(ctx context.Context, listing *competitor.Listing) (bool, error) {
	var existing competitor.Listing
	err := r.db.WithContext(ctx).
		Select("id").
		Where("competitor_id = ? AND external_id = ?", listing.CompetitorID, listing.ExternalID).
		First(&existing).Error
	created := errors.Is(err, gorm.ErrRecordNotFound)
	if err != nil && !created {
		return false, err
	}
	if !created {
		listing.ID = existing.ID
	}

	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "external_id"}, {Name: "competitor_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"title", "vendor", "product_type", "sku", "price", "compare_at_price",
			"available", "image_url", "product_url", "scraped_at",
			"updated_at", "version",
		}),
	}).Create(listing).Error; err != nil {
		return false, err
	}
	return created, nil
}

// applyFilter applies filter options to the query
func (r *GormListingRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	// Apply sorting with whitelist validation to prevent SQL injection
	sortField := ValidateSortField(filter.OrderBy, ListingSortFields, "scraped_at")
	sortOrder := ValidateSortOrder(filter.OrderDir)
	query = query.Order(sortField + " " + sortOrder)

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormListingRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("title LIKE ? OR vendor LIKE ? OR sku LIKE ?",
			searchPattern, searchPattern, searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "competitor_id":
			query = query.Where("competitor_id = ?", value)
		case "vendor":
			query = query.Where("vendor = ?", value)
		case "available":
			query = query.Where("available = ?", value)
		}
	}

	return query
}

// Ensure GormListingRepository implements ListingRepository
var _ competitor.ListingRepository = (*GormListingRepository)(nil)
