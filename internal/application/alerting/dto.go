package alerting

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pricewatch/backend/internal/domain/alerting"
)

// ScanRequest controls a violation scan
type ScanRequest struct {
	// Vendors restricts the scan to matches whose catalog product belongs
	// to one of the given vendors. Empty scans everything.
	Vendors []string `json:"vendors"`
	// MinSeverity drops violations below the given tier from the report.
	// Empty reports all severities.
	MinSeverity alerting.Severity `json:"min_severity"`
	// SkipAlerts reports violations without touching the alert table
	SkipAlerts bool `json:"skip_alerts"`
	// DryRun implies SkipAlerts and marks the result as a rehearsal
	DryRun bool `json:"dry_run"`
}

// Violation is one detected MAP breach
type Violation struct {
	MatchID             uuid.UUID                `json:"match_id"`
	CatalogProductID    uuid.UUID                `json:"catalog_product_id"`
	CompetitorListingID uuid.UUID                `json:"competitor_listing_id"`
	ProductTitle        string                   `json:"product_title"`
	ListingTitle        string                   `json:"listing_title"`
	MAPPrice            decimal.Decimal          `json:"map_price"`
	CompetitorPrice     decimal.Decimal          `json:"competitor_price"`
	Severity            alerting.Severity        `json:"severity"`
	Impact              alerting.FinancialImpact `json:"impact"`
}

// ScanResult summarizes one violation scan
type ScanResult struct {
	MatchesScanned int                       `json:"matches_scanned"`
	Violations     []Violation               `json:"violations"`
	BySeverity     map[alerting.Severity]int `json:"by_severity"`
	AlertsCreated  int                       `json:"alerts_created"`
	AlertsUpdated  int                       `json:"alerts_updated"`
	DryRun         bool                      `json:"dry_run"`
}

// BulkResolveResult reports how many alerts a bulk action changed
type BulkResolveResult struct {
	Requested int `json:"requested"`
	Resolved  int `json:"resolved"`
	Skipped   int `json:"skipped"`
}
