package matching

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/pricewatch/backend/internal/domain/catalog"
	"github.com/pricewatch/backend/internal/domain/competitor"
	"github.com/pricewatch/backend/internal/domain/matching"
	"github.com/pricewatch/backend/internal/domain/shared"
)

const productPageSize = 200

// MatchServiceImpl links catalog products to competitor listings by
// weighted similarity
type MatchServiceImpl struct {
	productRepo catalog.ProductRepository
	listingRepo competitor.ListingRepository
	matchRepo   matching.MatchRepository
	scorer      *Scorer
	poolSize    int
}

// NewMatchService creates a new MatchServiceImpl
func NewMatchService(
	productRepo catalog.ProductRepository,
	listingRepo competitor.ListingRepository,
	matchRepo matching.MatchRepository,
	scorer *Scorer,
	candidatePoolSize int,
) *MatchServiceImpl {
	if candidatePoolSize <= 0 {
		candidatePoolSize = 100
	}
	return &MatchServiceImpl{
		productRepo: productRepo,
		listingRepo: listingRepo,
		matchRepo:   matchRepo,
		scorer:      scorer,
		poolSize:    candidatePoolSize,
	}
}

// AutoMatch scores every available catalog product in scope against the
// candidate listing pool and records the best pairing per product. Manual
// matches are never overwritten; a rescan that hits one counts it as
// skipped instead.
func (s *MatchServiceImpl) AutoMatch(ctx context.Context, req AutoMatchRequest) (*AutoMatchResult, error) {
	minConfidence := req.MinConfidence
	if minConfidence == "" {
		minConfidence = matching.ConfidenceLow
	}
	if !minConfidence.IsValid() {
		return nil, shared.NewDomainError("INVALID_CONFIDENCE", "Unknown minimum confidence tier")
	}

	candidates, err := s.listingRepo.FindAvailable(ctx, s.poolSize)
	if err != nil {
		return nil, err
	}

	result := &AutoMatchResult{
		CandidateListings: len(candidates),
		ByConfidence:      make(map[matching.Confidence]int),
		DryRun:            req.DryRun,
	}
	if len(candidates) == 0 {
		return result, nil
	}

	products, err := s.productsInScope(ctx, req.Vendor)
	if err != nil {
		return nil, err
	}

	for i := range products {
		if req.Limit > 0 && result.ProductsScored >= req.Limit {
			break
		}
		product := &products[i]
		result.ProductsScored++

		best, overall, breakdown, confidence := s.bestCandidate(product, candidates)
		if best == nil || !confidence.AtLeast(minConfidence) {
			result.SkippedLowScore++
			continue
		}
		result.ByConfidence[confidence]++

		if req.DryRun {
			continue
		}

		if err := s.persistMatch(ctx, product.ID, best.ID, overall, breakdown, confidence, result); err != nil {
			return nil, err
		}
	}

	return result, nil
}

// ManualMatch records an operator-confirmed pairing. An existing match for
// the pair, manual or automated, is promoted; otherwise a new manual match
// is created with freshly computed scores for audit.
func (s *MatchServiceImpl) ManualMatch(ctx context.Context, req ManualMatchRequest) (*matching.Match, error) {
	product, err := s.productRepo.FindByID(ctx, req.CatalogProductID)
	if err != nil {
		return nil, err
	}
	listing, err := s.listingRepo.FindByID(ctx, req.CompetitorListingID)
	if err != nil {
		return nil, err
	}

	overall, breakdown, computed := s.scorer.Score(product, listing)
	confidence := req.Confidence
	if confidence == "" {
		confidence = computed
	}
	if !confidence.IsValid() {
		return nil, shared.NewDomainError("INVALID_CONFIDENCE", "Unknown confidence tier")
	}

	existing, err := s.matchRepo.FindByPair(ctx, product.ID, listing.ID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	if existing != nil {
		if err := existing.ConfirmManual(confidence); err != nil {
			return nil, err
		}
		if err := s.matchRepo.Save(ctx, existing); err != nil {
			return nil, err
		}
		return existing, nil
	}

	match, err := matching.NewManualMatch(product.ID, listing.ID, overall, breakdown, confidence)
	if err != nil {
		return nil, err
	}
	if err := s.matchRepo.Save(ctx, match); err != nil {
		return nil, err
	}
	return match, nil
}

// PreviewScore computes the score for a pair without persisting anything
func (s *MatchServiceImpl) PreviewScore(ctx context.Context, productID, listingID uuid.UUID) (*ScorePreview, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	listing, err := s.listingRepo.FindByID(ctx, listingID)
	if err != nil {
		return nil, err
	}

	overall, breakdown, confidence := s.scorer.Score(product, listing)
	return &ScorePreview{
		CatalogProductID:    product.ID,
		CompetitorListingID: listing.ID,
		OverallScore:        overall,
		Breakdown:           breakdown,
		Confidence:          confidence,
	}, nil
}

// GetMatch retrieves a match by ID
func (s *MatchServiceImpl) GetMatch(ctx context.Context, id uuid.UUID) (*matching.Match, error) {
	return s.matchRepo.FindByID(ctx, id)
}

// ListMatches lists matches with filtering and pagination
func (s *MatchServiceImpl) ListMatches(ctx context.Context, filter shared.Filter) (*shared.Paginated[matching.Match], error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	matches, err := s.matchRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.matchRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	paginated := shared.NewPaginated(matches, total, filter.Page, filter.PageSize)
	return &paginated, nil
}

// ListMatchesForProduct returns the product's matches ordered best first
func (s *MatchServiceImpl) ListMatchesForProduct(ctx context.Context, productID uuid.UUID) ([]matching.Match, error) {
	return s.matchRepo.FindByProduct(ctx, productID)
}

// productsInScope pages through the available catalog, optionally
// restricted to one vendor
func (s *MatchServiceImpl) productsInScope(ctx context.Context, vendor string) ([]catalog.Product, error) {
	if vendor != "" {
		return s.productRepo.FindAvailableByVendor(ctx, vendor, 0)
	}

	var all []catalog.Product
	for page := 1; ; page++ {
		filter := shared.Filter{
			Page:     page,
			PageSize: productPageSize,
			Filters:  map[string]interface{}{"available": true},
		}
		batch, err := s.productRepo.FindAll(ctx, filter)
		if err != nil {
			return nil, err
		}
		all = append(all, batch...)
		if len(batch) < productPageSize {
			return all, nil
		}
	}
}

// bestCandidate scores the product against every candidate and returns the
// highest-scoring listing, or nil when no candidate clears very_low.
func (s *MatchServiceImpl) bestCandidate(product *catalog.Product, candidates []competitor.Listing) (*competitor.Listing, float64, matching.ScoreBreakdown, matching.Confidence) {
	var (
		best          *competitor.Listing
		bestOverall   float64
		bestBreakdown matching.ScoreBreakdown
		bestTier      = matching.ConfidenceVeryLow
	)

	for i := range candidates {
		listing := &candidates[i]
		overall, breakdown, confidence := s.scorer.Score(product, listing)
		if confidence == matching.ConfidenceVeryLow {
			continue
		}
		if best == nil || overall > bestOverall {
			best = listing
			bestOverall = overall
			bestBreakdown = breakdown
			bestTier = confidence
		}
	}
	return best, bestOverall, bestBreakdown, bestTier
}

func (s *MatchServiceImpl) persistMatch(
	ctx context.Context,
	productID, listingID uuid.UUID,
	overall float64,
	breakdown matching.ScoreBreakdown,
	confidence matching.Confidence,
	result *AutoMatchResult,
) error {
	existing, err := s.matchRepo.FindByPair(ctx, productID, listingID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return err
	}

	if existing != nil {
		if rescoreErr := existing.Rescore(overall, breakdown, confidence); rescoreErr != nil {
			result.SkippedManual++
			return nil
		}
		if err := s.matchRepo.Save(ctx, existing); err != nil {
			return err
		}
		result.MatchesUpdated++
		result.Matches = append(result.Matches, MatchSummary{
			CatalogProductID:    productID,
			CompetitorListingID: listingID,
			OverallScore:        overall,
			Confidence:          confidence,
		})
		return nil
	}

	match, err := matching.NewMatch(productID, listingID, overall, breakdown, confidence)
	if err != nil {
		return err
	}
	if err := s.matchRepo.Save(ctx, match); err != nil {
		return err
	}
	result.MatchesCreated++
	result.Matches = append(result.Matches, MatchSummary{
		CatalogProductID:    productID,
		CompetitorListingID: listingID,
		OverallScore:        overall,
		Confidence:          confidence,
		Created:             true,
	})
	return nil
}
