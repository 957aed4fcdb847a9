package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pricewatch/backend/internal/domain/alerting"
	"github.com/pricewatch/backend/internal/domain/shared"
)

// GormAlertRepository implements alerting.AlertRepository using GORM
type GormAlertRepository struct {
	db *gorm.DB
}

// NewGormAlertRepository creates a new GormAlertRepository
func NewGormAlertRepository(db *gorm.DB) *GormAlertRepository {
	return &GormAlertRepository{db: db}
}

// FindByID finds an alert by its ID
func (r *GormAlertRepository) FindByID(ctx context.Context, id uuid.UUID) (*alerting.Alert, error) {
	var alert alerting.Alert
	if err := r.db.WithContext(ctx).First(&alert, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &alert, nil
}

// FindActiveByMatch returns the match's alert that is still open
func (r *GormAlertRepository) FindActiveByMatch(ctx context.Context, matchID uuid.UUID) (*alerting.Alert, error) {
	var alert alerting.Alert
	if err := r.db.WithContext(ctx).
		Where("match_id = ? AND status NOT IN ?", matchID,
			[]alerting.AlertStatus{alerting.AlertStatusResolved, alerting.AlertStatusDismissed}).
		Order("created_at DESC").
		First(&alert).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &alert, nil
}

// FindByIDs finds multiple alerts by their IDs
func (r *GormAlertRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]alerting.Alert, error) {
	if len(ids) == 0 {
		return []alerting.Alert{}, nil
	}

	var alerts []alerting.Alert
	if err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&alerts).Error; err != nil {
		return nil, err
	}
	return alerts, nil
}

// FindAll finds all alerts matching the filter
func (r *GormAlertRepository) FindAll(ctx context.Context, filter shared.Filter) ([]alerting.Alert, error) {
	var alerts []alerting.Alert
	query := r.applyFilter(r.db.WithContext(ctx).Model(&alerting.Alert{}), filter)

	if err := query.Find(&alerts).Error; err != nil {
		return nil, err
	}
	return alerts, nil
}

// Count counts alerts matching the filter
func (r *GormAlertRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&alerting.Alert{}), filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates an alert
func (r *GormAlertRepository) Save(ctx context.Context, alert *alerting.Alert) error {
	return r.db.WithContext(ctx).Save(alert).Error
}

// applyFilter applies filter options to the query
func (r *GormAlertRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	// Apply sorting with whitelist validation to prevent SQL injection
	sortField := ValidateSortField(filter.OrderBy, AlertSortFields, "created_at")
	sortOrder := ValidateSortOrder(filter.OrderDir)
	query = query.Order(sortField + " " + sortOrder)

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormAlertRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("title LIKE ? OR message LIKE ?", searchPattern, searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "severity":
			query = query.Where("severity = ?", value)
		case "match_id":
			query = query.Where("match_id = ?", value)
		}
	}

	return query
}

// Ensure GormAlertRepository implements AlertRepository
var _ alerting.AlertRepository = (*GormAlertRepository)(nil)
