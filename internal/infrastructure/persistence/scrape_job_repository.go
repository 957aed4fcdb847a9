package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pricewatch/backend/internal/domain/competitor"
	"github.com/pricewatch/backend/internal/domain/shared"
)

// GormScrapeJobRepository implements competitor.ScrapeJobRepository using GORM
type GormScrapeJobRepository struct {
	db *gorm.DB
}

// NewGormScrapeJobRepository creates a new GormScrapeJobRepository
func NewGormScrapeJobRepository(db *gorm.DB) *GormScrapeJobRepository {
	return &GormScrapeJobRepository{db: db}
}

// FindByID finds a scrape job by its ID
func (r *GormScrapeJobRepository) FindByID(ctx context.Context, id uuid.UUID) (*competitor.ScrapeJob, error) {
	var job competitor.ScrapeJob
	if err := r.db.WithContext(ctx).First(&job, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &job, nil
}

// FindByCompetitor finds scrape jobs for a competitor, newest first
func (r *GormScrapeJobRepository) FindByCompetitor(ctx context.Context, competitorID uuid.UUID, filter shared.Filter) ([]competitor.ScrapeJob, error) {
	var jobs []competitor.ScrapeJob
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&competitor.ScrapeJob{}).
			Where("competitor_id = ?", competitorID),
		filter,
	)

	if err := query.Find(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}

// FindAll finds all scrape jobs matching the filter
func (r *GormScrapeJobRepository) FindAll(ctx context.Context, filter shared.Filter) ([]competitor.ScrapeJob, error) {
	var jobs []competitor.ScrapeJob
	query := r.applyFilter(r.db.WithContext(ctx).Model(&competitor.ScrapeJob{}), filter)

	if err := query.Find(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}

// Save creates or updates a scrape job
func (r *GormScrapeJobRepository) Save(ctx context.Context, job *competitor.ScrapeJob) error {
	return r.db.WithContext(ctx).Save(job).Error
}

// applyFilter applies filter options to the query
func (r *GormScrapeJobRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if status, ok := filter.Filters["status"]; ok {
		query = query.Where("status = ?", status)
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	// Apply sorting with whitelist validation to prevent SQL injection
	sortField := ValidateSortField(filter.OrderBy, ScrapeJobSortFields, "created_at")
	sortOrder := ValidateSortOrder(filter.OrderDir)
	query = query.Order(sortField + " " + sortOrder)

	return query
}

// Ensure GormScrapeJobRepository implements ScrapeJobRepository
var _ competitor.ScrapeJobRepository = (*GormScrapeJobRepository)(nil)
