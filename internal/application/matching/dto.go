package matching

import (
	"github.com/google/uuid"

	"github.com/pricewatch/backend/internal/domain/matching"
)

// AutoMatchRequest controls an automated matching run
type AutoMatchRequest struct {
	// Vendor restricts the run to one catalog vendor. Empty runs the whole
	// available catalog.
	Vendor string `json:"vendor"`
	// MinConfidence is the lowest tier an auto-match may be saved at.
	// Empty defaults to "low"; candidates classified very_low are never
	// saved regardless.
	MinConfidence matching.Confidence `json:"min_confidence"`
	// DryRun scores without persisting anything
	DryRun bool `json:"dry_run"`
	// Limit caps the number of products scored in one run. Zero scores the
	// whole scope.
	Limit int `json:"limit"`
}

// AutoMatchResult summarizes an automated matching run
type AutoMatchResult struct {
	ProductsScored    int                         `json:"products_scored"`
	CandidateListings int                         `json:"candidate_listings"`
	MatchesCreated    int                         `json:"matches_created"`
	MatchesUpdated    int                         `json:"matches_updated"`
	SkippedManual     int                         `json:"skipped_manual"`
	SkippedLowScore   int                         `json:"skipped_low_score"`
	ByConfidence      map[matching.Confidence]int `json:"by_confidence"`
	Matches           []MatchSummary              `json:"matches,omitempty"`
	DryRun            bool                        `json:"dry_run"`
}

// MatchSummary describes one match written during an automated run
type MatchSummary struct {
	CatalogProductID    uuid.UUID           `json:"catalog_product_id"`
	CompetitorListingID uuid.UUID           `json:"competitor_listing_id"`
	OverallScore        float64             `json:"overall_score"`
	Confidence          matching.Confidence `json:"confidence"`
	Created             bool                `json:"created"`
}

// ManualMatchRequest confirms a product/listing pair by operator decision
type ManualMatchRequest struct {
	CatalogProductID    uuid.UUID `json:"catalog_product_id" binding:"required"`
	CompetitorListingID uuid.UUID `json:"competitor_listing_id" binding:"required"`
	// Confidence overrides the computed tier. Empty keeps the computed one.
	Confidence matching.Confidence `json:"confidence"`
}

// ScorePreview is a non-persisted score for a candidate pair
type ScorePreview struct {
	CatalogProductID    uuid.UUID               `json:"catalog_product_id"`
	CompetitorListingID uuid.UUID               `json:"competitor_listing_id"`
	OverallScore        float64                 `json:"overall_score"`
	Breakdown           matching.ScoreBreakdown `json:"breakdown"`
	Confidence          matching.Confidence     `json:"confidence"`
}
