package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pricewatch/backend/internal/domain/catalog"
	"github.com/pricewatch/backend/internal/domain/shared"
)

// MockProductRepository is a mock implementation of catalog.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByExternalID(ctx context.Context, externalID string) (*catalog.Product, error) {
	args := m.Called(ctx, externalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Product, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindAvailableByVendor(ctx context.Context, vendor string, limit int) ([]catalog.Product, error) {
	args := m.Called(ctx, vendor, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindMissingEmbedding(ctx context.Context, limit int) ([]catalog.Product, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) Upsert(ctx context.Context, product *catalog.Product) (bool, error) {
	args := m.Called(ctx, product)
	return args.Bool(0), args.Error(1)
}

func (m *MockProductRepository) DeactivateAbsent(ctx context.Context, vendor string, seenExternalIDs []string) (int64, error) {
	args := m.Called(ctx, vendor, seenExternalIDs)
	return args.Get(0).(int64), args.Error(1)
}

// MockBrandRepository is a mock implementation of catalog.MonitoredBrandRepository
type MockBrandRepository struct {
	mock.Mock
}

func (m *MockBrandRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.MonitoredBrand, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.MonitoredBrand), args.Error(1)
}

func (m *MockBrandRepository) FindByName(ctx context.Context, name string) (*catalog.MonitoredBrand, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.MonitoredBrand), args.Error(1)
}

func (m *MockBrandRepository) FindActive(ctx context.Context) ([]catalog.MonitoredBrand, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.MonitoredBrand), args.Error(1)
}

func (m *MockBrandRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.MonitoredBrand, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.MonitoredBrand), args.Error(1)
}

func (m *MockBrandRepository) Save(ctx context.Context, brand *catalog.MonitoredBrand) error {
	args := m.Called(ctx, brand)
	return args.Error(0)
}

func newService() (*CatalogServiceImpl, *MockProductRepository, *MockBrandRepository) {
	productRepo := new(MockProductRepository)
	brandRepo := new(MockBrandRepository)
	return NewCatalogService(productRepo, brandRepo), productRepo, brandRepo
}

func TestCatalogService_ListProducts(t *testing.T) {
	t.Run("applies pagination defaults", func(t *testing.T) {
		svc, productRepo, _ := newService()

		expected := shared.Filter{Page: 1, PageSize: 20}
		productRepo.On("FindAll", mock.Anything, expected).Return([]catalog.Product{}, nil)
		productRepo.On("Count", mock.Anything, expected).Return(int64(0), nil)

		result, err := svc.ListProducts(context.Background(), shared.Filter{})

		require.NoError(t, err)
		assert.Equal(t, 1, result.Page)
		assert.Equal(t, 20, result.PageSize)
		productRepo.AssertExpectations(t)
	})

	t.Run("returns paginated products", func(t *testing.T) {
		svc, productRepo, _ := newService()

		product, err := catalog.NewProduct("101", "Profitec Pro 600", "Profitec", decimal.NewFromInt(2499))
		require.NoError(t, err)

		filter := shared.Filter{Page: 2, PageSize: 10}
		productRepo.On("FindAll", mock.Anything, filter).Return([]catalog.Product{*product}, nil)
		productRepo.On("Count", mock.Anything, filter).Return(int64(11), nil)

		result, err := svc.ListProducts(context.Background(), filter)

		require.NoError(t, err)
		assert.Len(t, result.Items, 1)
		assert.Equal(t, int64(11), result.Total)
		assert.Equal(t, 2, result.TotalPages)
	})
}

func TestCatalogService_AddBrand(t *testing.T) {
	t.Run("creates brand when name is free", func(t *testing.T) {
		svc, _, brandRepo := newService()

		brandRepo.On("FindByName", mock.Anything, "Profitec").Return(nil, shared.ErrNotFound)
		brandRepo.On("Save", mock.Anything, mock.AnythingOfType("*catalog.MonitoredBrand")).Return(nil)

		brand, err := svc.AddBrand(context.Background(), "Profitec")

		require.NoError(t, err)
		assert.Equal(t, "Profitec", brand.Name)
		assert.True(t, brand.Active)
		brandRepo.AssertExpectations(t)
	})

	t.Run("rejects duplicate name", func(t *testing.T) {
		svc, _, brandRepo := newService()

		existing, err := catalog.NewMonitoredBrand("Profitec")
		require.NoError(t, err)
		brandRepo.On("FindByName", mock.Anything, "Profitec").Return(existing, nil)

		_, err = svc.AddBrand(context.Background(), "Profitec")

		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
		brandRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("rejects empty name", func(t *testing.T) {
		svc, _, brandRepo := newService()

		brandRepo.On("FindByName", mock.Anything, "  ").Return(nil, shared.ErrNotFound)

		_, err := svc.AddBrand(context.Background(), "  ")

		require.Error(t, err)
		brandRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestCatalogService_DeactivateBrand(t *testing.T) {
	svc, _, brandRepo := newService()

	brand, err := catalog.NewMonitoredBrand("Rocket Espresso")
	require.NoError(t, err)
	brandRepo.On("FindByID", mock.Anything, brand.ID).Return(brand, nil)
	brandRepo.On("Save", mock.Anything, brand).Return(nil)

	updated, err := svc.DeactivateBrand(context.Background(), brand.ID)

	require.NoError(t, err)
	assert.False(t, updated.Active)
	brandRepo.AssertExpectations(t)
}

func TestCatalogService_ActivateBrand_NotFound(t *testing.T) {
	svc, _, brandRepo := newService()

	id := uuid.New()
	brandRepo.On("FindByID", mock.Anything, id).Return(nil, shared.ErrNotFound)

	_, err := svc.ActivateBrand(context.Background(), id)

	assert.ErrorIs(t, err, shared.ErrNotFound)
}
