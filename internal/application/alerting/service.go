package alerting

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pricewatch/backend/internal/domain/alerting"
	"github.com/pricewatch/backend/internal/domain/catalog"
	"github.com/pricewatch/backend/internal/domain/competitor"
	"github.com/pricewatch/backend/internal/domain/matching"
	"github.com/pricewatch/backend/internal/domain/shared"
	"github.com/pricewatch/backend/internal/infrastructure/config"
)

const defaultEstimatedVolume = 10

// severityRank orders tiers for minimum-severity comparisons
var severityRank = map[alerting.Severity]int{
	alerting.SeverityMinor:    1,
	alerting.SeverityModerate: 2,
	alerting.SeveritySevere:   3,
}

// ViolationServiceImpl scans confirmed matches for competitor prices below
// MAP and drives the alert lifecycle
type ViolationServiceImpl struct {
	matchRepo   matching.MatchRepository
	productRepo catalog.ProductRepository
	listingRepo competitor.ListingRepository
	alertRepo   alerting.AlertRepository
	thresholds  alerting.SeverityThresholds
	volume      int
	log         *zap.Logger
}

// NewViolationService creates a new ViolationServiceImpl. Zero threshold
// blocks fall back to the production defaults.
func NewViolationService(
	matchRepo matching.MatchRepository,
	productRepo catalog.ProductRepository,
	listingRepo competitor.ListingRepository,
	alertRepo alerting.AlertRepository,
	cfg config.AlertsConfig,
	log *zap.Logger,
) *ViolationServiceImpl {
	if log == nil {
		log = zap.NewNop()
	}

	thresholds := alerting.SeverityThresholds{
		Severe:   cfg.SeverePct,
		Moderate: cfg.ModeratePct,
		Minor:    cfg.MinorPct,
	}
	if thresholds.Severe == 0 && thresholds.Moderate == 0 && thresholds.Minor == 0 {
		thresholds = alerting.DefaultSeverityThresholds()
	}

	volume := cfg.EstimatedVolume
	if volume <= 0 {
		volume = defaultEstimatedVolume
	}

	return &ViolationServiceImpl{
		matchRepo:   matchRepo,
		productRepo: productRepo,
		listingRepo: listingRepo,
		alertRepo:   alertRepo,
		thresholds:  thresholds,
		volume:      volume,
		log:         log,
	}
}

// ScanViolations checks every scannable match for a competitor price below
// MAP. A violating match with an active alert gets that alert refreshed in
// place, so a rescan never piles up duplicates.
func (s *ViolationServiceImpl) ScanViolations(ctx context.Context, req ScanRequest) (*ScanResult, error) {
	if req.MinSeverity != "" && !req.MinSeverity.IsValid() {
		return nil, shared.NewDomainError("INVALID_SEVERITY", "Unknown minimum severity")
	}

	matches, err := s.matchRepo.FindScannable(ctx, req.Vendors)
	if err != nil {
		return nil, err
	}

	result := &ScanResult{
		MatchesScanned: len(matches),
		BySeverity:     make(map[alerting.Severity]int),
		DryRun:         req.DryRun,
	}

	for i := range matches {
		match := &matches[i]

		violation, ok, err := s.checkMatch(ctx, match)
		if err != nil {
			s.log.Warn("match skipped during scan",
				zap.String("match_id", match.ID.String()),
				zap.Error(err))
			continue
		}
		if !ok {
			continue
		}

		result.BySeverity[violation.Severity]++
		if req.MinSeverity != "" && severityRank[violation.Severity] < severityRank[req.MinSeverity] {
			continue
		}
		result.Violations = append(result.Violations, violation)

		if req.DryRun || req.SkipAlerts {
			continue
		}
		if err := s.upsertAlert(ctx, &violation, result); err != nil {
			return nil, err
		}
	}

	s.log.Info("violation scan finished",
		zap.Int("scanned", result.MatchesScanned),
		zap.Int("violations", len(result.Violations)),
		zap.Int("alerts_created", result.AlertsCreated),
		zap.Int("alerts_updated", result.AlertsUpdated))
	return result, nil
}

// checkMatch evaluates one match against its current prices
func (s *ViolationServiceImpl) checkMatch(ctx context.Context, match *matching.Match) (Violation, bool, error) {
	product, err := s.productRepo.FindByID(ctx, match.CatalogProductID)
	if err != nil {
		return Violation{}, false, err
	}
	listing, err := s.listingRepo.FindByID(ctx, match.CompetitorListingID)
	if err != nil {
		return Violation{}, false, err
	}

	severity := s.thresholds.Classify(product.MAPPrice(), listing.Price)
	if severity == alerting.SeverityNone {
		return Violation{}, false, nil
	}

	return Violation{
		MatchID:             match.ID,
		CatalogProductID:    product.ID,
		CompetitorListingID: listing.ID,
		ProductTitle:        product.Title,
		ListingTitle:        listing.Title,
		MAPPrice:            product.MAPPrice(),
		CompetitorPrice:     listing.Price,
		Severity:            severity,
		Impact:              alerting.ComputeFinancialImpact(product.MAPPrice(), listing.Price, s.volume),
	}, true, nil
}

// upsertAlert refreshes the match's active alert or creates a new one
func (s *ViolationServiceImpl) upsertAlert(ctx context.Context, v *Violation, result *ScanResult) error {
	title := fmt.Sprintf("MAP violation: %s", v.ProductTitle)
	message := fmt.Sprintf("%s listed at %s against a MAP of %s (%s%% below)",
		v.ListingTitle,
		v.CompetitorPrice.StringFixed(2),
		v.MAPPrice.StringFixed(2),
		v.Impact.PercentBelowMAP.StringFixed(1))

	existing, err := s.alertRepo.FindActiveByMatch(ctx, v.MatchID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return err
	}

	if existing != nil {
		if err := existing.Refresh(title, message, v.Severity, v.MAPPrice, v.CompetitorPrice); err != nil {
			return err
		}
		if err := s.alertRepo.Save(ctx, existing); err != nil {
			return err
		}
		result.AlertsUpdated++
		return nil
	}

	alert, err := alerting.NewAlert(v.MatchID, title, message, v.Severity, v.MAPPrice, v.CompetitorPrice)
	if err != nil {
		return err
	}
	if err := s.alertRepo.Save(ctx, alert); err != nil {
		return err
	}
	result.AlertsCreated++
	return nil
}

// GetAlert retrieves an alert by ID
func (s *ViolationServiceImpl) GetAlert(ctx context.Context, id uuid.UUID) (*alerting.Alert, error) {
	return s.alertRepo.FindByID(ctx, id)
}

// ListAlerts lists alerts with filtering and pagination
func (s *ViolationServiceImpl) ListAlerts(ctx context.Context, filter shared.Filter) (*shared.Paginated[alerting.Alert], error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	alerts, err := s.alertRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.alertRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	paginated := shared.NewPaginated(alerts, total, filter.Page, filter.PageSize)
	return &paginated, nil
}

// Resolve marks an alert as handled
func (s *ViolationServiceImpl) Resolve(ctx context.Context, id uuid.UUID) (*alerting.Alert, error) {
	alert, err := s.alertRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := alert.Resolve(); err != nil {
		return nil, err
	}
	if err := s.alertRepo.Save(ctx, alert); err != nil {
		return nil, err
	}
	return alert, nil
}

// Dismiss marks an alert as not worth acting on
func (s *ViolationServiceImpl) Dismiss(ctx context.Context, id uuid.UUID) (*alerting.Alert, error) {
	alert, err := s.alertRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := alert.Dismiss(); err != nil {
		return nil, err
	}
	if err := s.alertRepo.Save(ctx, alert); err != nil {
		return nil, err
	}
	return alert, nil
}

// BulkResolve resolves every non-terminal alert in the ID set. Terminal
// alerts are counted as skipped, not failed.
func (s *ViolationServiceImpl) BulkResolve(ctx context.Context, ids []uuid.UUID) (*BulkResolveResult, error) {
	alerts, err := s.alertRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	result := &BulkResolveResult{Requested: len(ids)}
	for i := range alerts {
		alert := &alerts[i]
		if alert.IsTerminal() {
			result.Skipped++
			continue
		}
		if err := alert.Resolve(); err != nil {
			result.Skipped++
			continue
		}
		if err := s.alertRepo.Save(ctx, alert); err != nil {
			return nil, err
		}
		result.Resolved++
	}

	// IDs that resolved to no alert at all also count as skipped
	result.Skipped += len(ids) - len(alerts)
	return result, nil
}
