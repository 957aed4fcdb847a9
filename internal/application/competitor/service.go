package competitor

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/pricewatch/backend/internal/domain/competitor"
	"github.com/pricewatch/backend/internal/domain/shared"
)

// RegisterCompetitorRequest carries the input for registering a scrape target
type RegisterCompetitorRequest struct {
	Name        string   `json:"name"`
	Domain      string   `json:"domain"`
	Collections []string `json:"collections"`
	RateLimitMs int      `json:"rate_limit_ms"`
}

// UpdateCompetitorRequest carries optional field updates for a competitor
type UpdateCompetitorRequest struct {
	Collections *[]string `json:"collections"`
	RateLimitMs *int      `json:"rate_limit_ms"`
}

// CompetitorServiceImpl manages scrape targets and exposes their
// listings and price history
type CompetitorServiceImpl struct {
	repo        competitor.Repository
	listingRepo competitor.ListingRepository
	historyRepo competitor.PriceHistoryRepository
}

// NewCompetitorService creates a new CompetitorServiceImpl
func NewCompetitorService(
	repo competitor.Repository,
	listingRepo competitor.ListingRepository,
	historyRepo competitor.PriceHistoryRepository,
) *CompetitorServiceImpl {
	return &CompetitorServiceImpl{
		repo:        repo,
		listingRepo: listingRepo,
		historyRepo: historyRepo,
	}
}

// Register creates a new competitor. Domains are unique.
func (s *CompetitorServiceImpl) Register(ctx context.Context, req RegisterCompetitorRequest) (*competitor.Competitor, error) {
	existing, err := s.repo.FindByDomain(ctx, req.Domain)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, shared.ErrAlreadyExists
	}

	comp, err := competitor.NewCompetitor(req.Name, req.Domain, req.Collections)
	if err != nil {
		return nil, err
	}
	if req.RateLimitMs > 0 {
		if err := comp.SetRateLimit(time.Duration(req.RateLimitMs) * time.Millisecond); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Save(ctx, comp); err != nil {
		return nil, err
	}
	return comp, nil
}

// Get retrieves a competitor by ID
func (s *CompetitorServiceImpl) Get(ctx context.Context, id uuid.UUID) (*competitor.Competitor, error) {
	return s.repo.FindByID(ctx, id)
}

// List lists competitors with filtering
func (s *CompetitorServiceImpl) List(ctx context.Context, filter shared.Filter) ([]competitor.Competitor, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	return s.repo.FindAll(ctx, filter)
}

// Update applies partial changes to a competitor's scrape configuration
func (s *CompetitorServiceImpl) Update(ctx context.Context, id uuid.UUID, req UpdateCompetitorRequest) (*competitor.Competitor, error) {
	comp, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Collections != nil {
		comp.SetCollections(*req.Collections)
	}
	if req.RateLimitMs != nil {
		if err := comp.SetRateLimit(time.Duration(*req.RateLimitMs) * time.Millisecond); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Save(ctx, comp); err != nil {
		return nil, err
	}
	return comp, nil
}

// Activate re-enables scraping for a competitor
func (s *CompetitorServiceImpl) Activate(ctx context.Context, id uuid.UUID) (*competitor.Competitor, error) {
	comp, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	comp.Activate()
	if err := s.repo.Save(ctx, comp); err != nil {
		return nil, err
	}
	return comp, nil
}

// Deactivate stops scraping a competitor without deleting its listings
func (s *CompetitorServiceImpl) Deactivate(ctx context.Context, id uuid.UUID) (*competitor.Competitor, error) {
	comp, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	comp.Deactivate()
	if err := s.repo.Save(ctx, comp); err != nil {
		return nil, err
	}
	return comp, nil
}

// GetListing retrieves a scraped listing by ID
func (s *CompetitorServiceImpl) GetListing(ctx context.Context, id uuid.UUID) (*competitor.Listing, error) {
	return s.listingRepo.FindByID(ctx, id)
}

// ListListings lists scraped listings with filtering and pagination
func (s *CompetitorServiceImpl) ListListings(ctx context.Context, filter shared.Filter) (*shared.Paginated[competitor.Listing], error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	listings, err := s.listingRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.listingRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	paginated := shared.NewPaginated(listings, total, filter.Page, filter.PageSize)
	return &paginated, nil
}

// ListingHistory returns the recorded price points for a listing
func (s *CompetitorServiceImpl) ListingHistory(ctx context.Context, listingID uuid.UUID, filter shared.Filter) ([]competitor.PriceHistoryEntry, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 50
	}
	if _, err := s.listingRepo.FindByID(ctx, listingID); err != nil {
		return nil, err
	}
	return s.historyRepo.FindByListing(ctx, listingID, filter)
}
