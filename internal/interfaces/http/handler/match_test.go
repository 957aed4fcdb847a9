package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	matchingapp "github.com/pricewatch/backend/internal/application/matching"
	"github.com/pricewatch/backend/internal/domain/competitor"
	"github.com/pricewatch/backend/internal/domain/matching"
	"github.com/pricewatch/backend/internal/domain/shared"
	"github.com/pricewatch/backend/internal/infrastructure/config"
)

// MockListingRepository implements competitor.ListingRepository for testing
type MockListingRepository struct {
	mock.Mock
}

func (m *MockListingRepository) FindByID(ctx context.Context, id uuid.UUID) (*competitor.Listing, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*competitor.Listing), args.Error(1)
}

func (m *MockListingRepository) FindByExternalID(ctx context.Context, competitorID uuid.UUID, externalID string) (*competitor.Listing, error) {
	args := m.Called(ctx, competitorID, externalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*competitor.Listing), args.Error(1)
}

func (m *MockListingRepository) FindByCompetitor(ctx context.Context, competitorID uuid.UUID, limit int) ([]competitor.Listing, error) {
	args := m.Called(ctx, competitorID, limit)
	return args.Get(0).([]competitor.Listing), args.Error(1)
}

func (m *MockListingRepository) FindAvailable(ctx context.Context, limit int) ([]competitor.Listing, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]competitor.Listing), args.Error(1)
}

func (m *MockListingRepository) FindAll(ctx context.Context, filter shared.Filter) ([]competitor.Listing, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]competitor.Listing), args.Error(1)
}

func (m *MockListingRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockListingRepository) Save(ctx context.Context, listing *competitor.Listing) error {
	args := m.Called(ctx, listing)
	return args.Error(0)
}

func (m *MockListingRepository) Upsert(ctx context.Context, listing *competitor.Listing) (bool, error) {
	args := m.Called(ctx, listing)
	return args.Bool(0), args.Error(1)
}

// MockMatchRepository implements matching.MatchRepository for testing
type MockMatchRepository struct {
	mock.Mock
}

func (m *MockMatchRepository) FindByID(ctx context.Context, id uuid.UUID) (*matching.Match, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*matching.Match), args.Error(1)
}

func (m *MockMatchRepository) FindByPair(ctx context.Context, productID, listingID uuid.UUID) (*matching.Match, error) {
	args := m.Called(ctx, productID, listingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*matching.Match), args.Error(1)
}

func (m *MockMatchRepository) FindByProduct(ctx context.Context, productID uuid.UUID) ([]matching.Match, error) {
	args := m.Called(ctx, productID)
	return args.Get(0).([]matching.Match), args.Error(1)
}

func (m *MockMatchRepository) FindAll(ctx context.Context, filter shared.Filter) ([]matching.Match, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]matching.Match), args.Error(1)
}

func (m *MockMatchRepository) FindScannable(ctx context.Context, vendors []string) ([]matching.Match, error) {
	args := m.Called(ctx, vendors)
	return args.Get(0).([]matching.Match), args.Error(1)
}

func (m *MockMatchRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockMatchRepository) Save(ctx context.Context, match *matching.Match) error {
	args := m.Called(ctx, match)
	return args.Error(0)
}

func setupMatchHandler(t *testing.T, productRepo *MockProductRepository, listingRepo *MockListingRepository, matchRepo *MockMatchRepository) *MatchHandler {
	scorer, err := matchingapp.NewScorer(config.MatcherConfig{})
	require.NoError(t, err)
	service := matchingapp.NewMatchService(productRepo, listingRepo, matchRepo, scorer, 0)
	return NewMatchHandler(service)
}

func createTestListing(title string) *competitor.Listing {
	listing, _ := competitor.NewListing(uuid.New(), uuid.NewString(), title, decimal.NewFromInt(1799))
	listing.Vendor = "Acme"
	return listing
}

// Tests

func TestMatchHandler_ManualMatch_CreatesMatch(t *testing.T) {
	productRepo := new(MockProductRepository)
	listingRepo := new(MockListingRepository)
	matchRepo := new(MockMatchRepository)
	handler := setupMatchHandler(t, productRepo, listingRepo, matchRepo)

	product := createTestCatalogProduct("Widget A")
	listing := createTestListing("Widget A")

	productRepo.On("FindByID", mock.Anything, product.ID).Return(product, nil)
	listingRepo.On("FindByID", mock.Anything, listing.ID).Return(listing, nil)
	matchRepo.On("FindByPair", mock.Anything, product.ID, listing.ID).Return(nil, shared.ErrNotFound)
	matchRepo.On("Save", mock.Anything, mock.AnythingOfType("*matching.Match")).Return(nil)

	router := setupTestRouter()
	router.POST("/match/manual", handler.ManualMatch)

	body, _ := json.Marshal(ManualMatchRequest{
		CatalogProductID:    product.ID,
		CompetitorListingID: listing.ID,
		Confidence:          "high",
	})
	req := httptest.NewRequest(http.MethodPost, "/match/manual", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			IsManualMatch bool   `json:"IsManualMatch"`
			Confidence    string `json:"Confidence"`
		} `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.True(t, resp.Data.IsManualMatch)
	assert.Equal(t, "high", resp.Data.Confidence)
	matchRepo.AssertExpectations(t)
}

func TestMatchHandler_ManualMatch_UnknownProduct(t *testing.T) {
	productRepo := new(MockProductRepository)
	listingRepo := new(MockListingRepository)
	matchRepo := new(MockMatchRepository)
	handler := setupMatchHandler(t, productRepo, listingRepo, matchRepo)

	productID := uuid.New()
	productRepo.On("FindByID", mock.Anything, productID).Return(nil, shared.ErrNotFound)

	router := setupTestRouter()
	router.POST("/match/manual", handler.ManualMatch)

	body, _ := json.Marshal(ManualMatchRequest{
		CatalogProductID:    productID,
		CompetitorListingID: uuid.New(),
	})
	req := httptest.NewRequest(http.MethodPost, "/match/manual", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	matchRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestMatchHandler_ManualMatch_MissingFields(t *testing.T) {
	productRepo := new(MockProductRepository)
	listingRepo := new(MockListingRepository)
	matchRepo := new(MockMatchRepository)
	handler := setupMatchHandler(t, productRepo, listingRepo, matchRepo)

	router := setupTestRouter()
	router.POST("/match/manual", handler.ManualMatch)

	req := httptest.NewRequest(http.MethodPost, "/match/manual", bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMatchHandler_Preview_Success(t *testing.T) {
	productRepo := new(MockProductRepository)
	listingRepo := new(MockListingRepository)
	matchRepo := new(MockMatchRepository)
	handler := setupMatchHandler(t, productRepo, listingRepo, matchRepo)

	product := createTestCatalogProduct("Widget A")
	listing := createTestListing("Widget A")

	productRepo.On("FindByID", mock.Anything, product.ID).Return(product, nil)
	listingRepo.On("FindByID", mock.Anything, listing.ID).Return(listing, nil)

	router := setupTestRouter()
	router.POST("/match/preview", handler.Preview)

	body, _ := json.Marshal(PreviewRequest{
		CatalogProductID:    product.ID,
		CompetitorListingID: listing.ID,
	})
	req := httptest.NewRequest(http.MethodPost, "/match/preview", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	matchRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestMatchHandler_GetByID_NotFound(t *testing.T) {
	productRepo := new(MockProductRepository)
	listingRepo := new(MockListingRepository)
	matchRepo := new(MockMatchRepository)
	handler := setupMatchHandler(t, productRepo, listingRepo, matchRepo)

	id := uuid.New()
	matchRepo.On("FindByID", mock.Anything, id).Return(nil, shared.ErrNotFound)

	router := setupTestRouter()
	router.GET("/matches/:id", handler.GetByID)

	req := httptest.NewRequest(http.MethodGet, "/matches/"+id.String(), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMatchHandler_List_ConfidenceFilter(t *testing.T) {
	productRepo := new(MockProductRepository)
	listingRepo := new(MockListingRepository)
	matchRepo := new(MockMatchRepository)
	handler := setupMatchHandler(t, productRepo, listingRepo, matchRepo)

	hasConfidence := mock.MatchedBy(func(f shared.Filter) bool {
		return f.Filters["confidence"] == "high"
	})
	matchRepo.On("FindAll", mock.Anything, hasConfidence).Return([]matching.Match{}, nil)
	matchRepo.On("Count", mock.Anything, hasConfidence).Return(int64(0), nil)

	router := setupTestRouter()
	router.GET("/matches", handler.List)

	req := httptest.NewRequest(http.MethodGet, "/matches?confidence=high", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	matchRepo.AssertExpectations(t)
}
