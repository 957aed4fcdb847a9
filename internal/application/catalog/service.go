package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/pricewatch/backend/internal/domain/catalog"
	"github.com/pricewatch/backend/internal/domain/shared"
)

// CatalogServiceImpl exposes read access to the synced catalog and
// management of the monitored brand list
type CatalogServiceImpl struct {
	productRepo catalog.ProductRepository
	brandRepo   catalog.MonitoredBrandRepository
}

// NewCatalogService creates a new CatalogServiceImpl
func NewCatalogService(
	productRepo catalog.ProductRepository,
	brandRepo catalog.MonitoredBrandRepository,
) *CatalogServiceImpl {
	return &CatalogServiceImpl{
		productRepo: productRepo,
		brandRepo:   brandRepo,
	}
}

// GetProduct retrieves a catalog product by ID
func (s *CatalogServiceImpl) GetProduct(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	return s.productRepo.FindByID(ctx, id)
}

// ListProducts lists catalog products with filtering and pagination
func (s *CatalogServiceImpl) ListProducts(ctx context.Context, filter shared.Filter) (*shared.Paginated[catalog.Product], error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	products, err := s.productRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.productRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	paginated := shared.NewPaginated(products, total, filter.Page, filter.PageSize)
	return &paginated, nil
}

// AddBrand registers a brand for catalog sync. Brand names are unique.
func (s *CatalogServiceImpl) AddBrand(ctx context.Context, name string) (*catalog.MonitoredBrand, error) {
	existing, err := s.brandRepo.FindByName(ctx, name)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, shared.ErrAlreadyExists
	}

	brand, err := catalog.NewMonitoredBrand(name)
	if err != nil {
		return nil, err
	}
	if err := s.brandRepo.Save(ctx, brand); err != nil {
		return nil, err
	}
	return brand, nil
}

// ListBrands lists all monitored brands
func (s *CatalogServiceImpl) ListBrands(ctx context.Context, filter shared.Filter) ([]catalog.MonitoredBrand, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	return s.brandRepo.FindAll(ctx, filter)
}

// ActivateBrand re-enables a brand for sync
func (s *CatalogServiceImpl) ActivateBrand(ctx context.Context, id uuid.UUID) (*catalog.MonitoredBrand, error) {
	brand, err := s.brandRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	brand.Activate()
	if err := s.brandRepo.Save(ctx, brand); err != nil {
		return nil, err
	}
	return brand, nil
}

// DeactivateBrand excludes a brand from future syncs. Its products stay
// in the catalog untouched.
func (s *CatalogServiceImpl) DeactivateBrand(ctx context.Context, id uuid.UUID) (*catalog.MonitoredBrand, error) {
	brand, err := s.brandRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	brand.Deactivate()
	if err := s.brandRepo.Save(ctx, brand); err != nil {
		return nil, err
	}
	return brand, nil
}
