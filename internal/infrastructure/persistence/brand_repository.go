package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pricewatch/backend/internal/domain/catalog"
	"github.com/pricewatch/backend/internal/domain/shared"
)

// GormMonitoredBrandRepository implements catalog.MonitoredBrandRepository using GORM
type GormMonitoredBrandRepository struct {
	db *gorm.DB
}

// NewGormMonitoredBrandRepository creates a new GormMonitoredBrandRepository
func NewGormMonitoredBrandRepository(db *gorm.DB) *GormMonitoredBrandRepository {
	return &GormMonitoredBrandRepository{db: db}
}

// FindByID finds a monitored brand by its ID
func (r *GormMonitoredBrandRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.MonitoredBrand, error) {
	var brand catalog.MonitoredBrand
	if err := r.db.WithContext(ctx).First(&brand, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &brand, nil
}

// FindByName finds a monitored brand by its name
func (r *GormMonitoredBrandRepository) FindByName(ctx context.Context, name string) (*catalog.MonitoredBrand, error) {
	var brand catalog.MonitoredBrand
	if err := r.db.WithContext(ctx).
		Where("name = ?", strings.TrimSpace(name)).
		First(&brand).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &brand, nil
}

// FindActive finds all active monitored brands
func (r *GormMonitoredBrandRepository) FindActive(ctx context.Context) ([]catalog.MonitoredBrand, error) {
	var brands []catalog.MonitoredBrand
	if err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("name ASC").
		Find(&brands).Error; err != nil {
		return nil, err
	}
	return brands, nil
}

// FindAll finds all monitored brands matching the filter
func (r *GormMonitoredBrandRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.MonitoredBrand, error) {
	var brands []catalog.MonitoredBrand
	query := r.db.WithContext(ctx).Model(&catalog.MonitoredBrand{})

	if filter.Search != "" {
		query = query.Where("name LIKE ?", "%"+filter.Search+"%")
	}
	if active, ok := filter.Filters["active"]; ok {
		query = query.Where("active = ?", active)
	}
	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}
	query = query.Order("name ASC")

	if err := query.Find(&brands).Error; err != nil {
		return nil, err
	}
	return brands, nil
}

// Save creates or updates a monitored brand
func (r *GormMonitoredBrandRepository) Save(ctx context.Context, brand *catalog.MonitoredBrand) error {
	return r.db.WithContext(ctx).Save(brand).Error
}

// Ensure GormMonitoredBrandRepository implements MonitoredBrandRepository
var _ catalog.MonitoredBrandRepository = (*GormMonitoredBrandRepository)(nil)
