package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pricewatch/backend/internal/domain/catalog"
	"github.com/pricewatch/backend/internal/domain/shared"
)

// GormProductRepository implements catalog.ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindByID finds a product by its ID
func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	var product catalog.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

// FindByExternalID finds a product by its external catalog ID
func (r *GormProductRepository) FindByExternalID(ctx context.Context, externalID string) (*catalog.Product, error) {
	var product catalog.Product
	if err := r.db.WithContext(ctx).
		Where("external_id = ?", externalID).
		First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

// FindAll finds all products matching the filter
func (r *GormProductRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Product, error) {
	var products []catalog.Product
	query := r.applyFilter(r.db.WithContext(ctx).Model(&catalog.Product{}), filter)

	if err := query.Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// FindAvailableByVendor finds available products of a vendor, up to limit
func (r *GormProductRepository) FindAvailableByVendor(ctx context.Context, vendor string, limit int) ([]catalog.Product, error) {
	var products []catalog.Product
	query := r.db.WithContext(ctx).
		Where("available = ? AND vendor = ?", true, vendor).
		Order("title ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// FindMissingEmbedding finds available products without an embedding, up to limit
func (r *GormProductRepository) FindMissingEmbedding(ctx context.Context, limit int) ([]catalog.Product, error) {
	var products []catalog.Product
	query := r.db.WithContext(ctx).
		Where("available = ? AND (embedding IS NULL OR embedding = ?)", true, "null").
		Order("created_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// Count counts products matching the filter
func (r *GormProductRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&catalog.Product{}), filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a product
func (r *GormProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	return r.db.WithContext(ctx).Save(product).Error
}

// Upsert creates the product or updates the existing row keyed by
// external_id. The embedding column is excluded from the update so a
// previously generated embedding survives routine syncs.
func (r *GormProductRepository) Upsert(ctx context.Context, product *catalog.Product) (bool, error) {
	var existing catalog.Product
	err := r.db.WithContext(ctx).
		Select("id").
		Where("external_id = ?", product.ExternalID).
		First(&existing).Error
	created := errors.Is(err, gorm.ErrRecordNotFound)
	if err != nil && !created {
		return false, err
	}
	if !created {
		product.ID = existing.ID
	}

	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "external_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"title", "vendor", "product_type", "sku", "price", "compare_at_price",
			"available", "inventory_qty", "brand_id", "last_synced_at",
			"updated_at", "version",
		}),
	}).Create(product).Error; err != nil {
		return false, err
	}
	return created, nil
}

// DeactivateAbsent soft-deletes available products of the vendor not present
// in seenExternalIDs. Rows are never deleted so existing matches survive.
func (r *GormProductRepository) DeactivateAbsent(ctx context.Context, vendor string, seenExternalIDs []string) (int64, error) {
	query := r.db.WithContext(ctx).
		Model(&catalog.Product{}).
		Where("available = ? AND vendor = ?", true, vendor)
	if len(seenExternalIDs) > 0 {
		query = query.Where("external_id NOT IN ?", seenExternalIDs)
	}

	result := query.Update("available", false)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// applyFilter applies filter options to the query
func (r *GormProductRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	// Apply sorting with whitelist validation to prevent SQL injection
	sortField := ValidateSortField(filter.OrderBy, CatalogProductSortFields, "title")
	sortOrder := ValidateSortOrder(filter.OrderDir)
	query = query.Order(sortField + " " + sortOrder)

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormProductRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("title LIKE ? OR sku LIKE ? OR vendor LIKE ?",
			searchPattern, searchPattern, searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "vendor":
			query = query.Where("vendor = ?", value)
		case "product_type":
			query = query.Where("product_type = ?", value)
		case "available":
			query = query.Where("available = ?", value)
		case "brand_id":
			query = query.Where("brand_id = ?", value)
		case "missing_embedding":
			if value == true {
				query = query.Where("embedding IS NULL OR embedding = ?", "null")
			}
		}
	}

	return query
}

// Ensure GormProductRepository implements ProductRepository
var _ catalog.ProductRepository = (*GormProductRepository)(nil)
