package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pricewatch/backend/internal/domain/competitor"
	"github.com/pricewatch/backend/internal/domain/shared"
)

// GormCompetitorRepository implements competitor.Repository using GORM
type GormCompetitorRepository struct {
	db *gorm.DB
}

// NewGormCompetitorRepository creates a new GormCompetitorRepository
func NewGormCompetitorRepository(db *gorm.DB) *GormCompetitorRepository {
	return &GormCompetitorRepository{db: db}
}

// FindByID finds a competitor by its ID
func (r *GormCompetitorRepository) FindByID(ctx context.Context, id uuid.UUID) (*competitor.Competitor, error) {
	var c competitor.Competitor
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// FindByDomain finds a competitor by its store domain
func (r *GormCompetitorRepository) FindByDomain(ctx context.Context, domain string) (*competitor.Competitor, error) {
	var c competitor.Competitor
	if err := r.db.WithContext(ctx).
		Where("domain = ?", strings.ToLower(strings.TrimSpace(domain))).
		First(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// FindActive finds all active competitors
func (r *GormCompetitorRepository) FindActive(ctx context.Context) ([]competitor.Competitor, error) {
	var competitors []competitor.Competitor
	if err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("name ASC").
		Find(&competitors).Error; err != nil {
		return nil, err
	}
	return competitors, nil
}

// FindAll finds all competitors matching the filter
func (r *GormCompetitorRepository) FindAll(ctx context.Context, filter shared.Filter) ([]competitor.Competitor, error) {
	var competitors []competitor.Competitor
	query := r.db.WithContext(ctx).Model(&competitor.Competitor{})

	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("name LIKE ? OR domain LIKE ?", searchPattern, searchPattern)
	}
	if active, ok := filter.Filters["active"]; ok {
		query = query.Where("active = ?", active)
	}
	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}
	query = query.Order("name ASC")

	if err := query.Find(&competitors).Error; err != nil {
		return nil, err
	}
	return competitors, nil
}

// Save creates or updates a competitor
func (r *GormCompetitorRepository) Save(ctx context.Context, c *competitor.Competitor) error {
	return r.db.WithContext(ctx).Save(c).Error
}

// Ensure GormCompetitorRepository implements Repository
var _ competitor.Repository = (*GormCompetitorRepository)(nil)
