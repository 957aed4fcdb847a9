package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// CommonSortFields contains fields common to most entities
var CommonSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
}

// CatalogProductSortFields contains allowed sort fields for catalog products
var CatalogProductSortFields = map[string]bool{
	"id":             true,
	"created_at":     true,
	"updated_at":     true,
	"external_id":    true,
	"title":          true,
	"vendor":         true,
	"product_type":   true,
	"sku":            true,
	"price":          true,
	"available":      true,
	"inventory_qty":  true,
	"last_synced_at": true,
}

// ListingSortFields contains allowed sort fields for competitor listings
var ListingSortFields = map[string]bool{
	"id":           true,
	"created_at":   true,
	"updated_at":   true,
	"external_id":  true,
	"title":        true,
	"vendor":       true,
	"product_type": true,
	"sku":          true,
	"price":        true,
	"available":    true,
	"scraped_at":   true,
}

// MatchSortFields contains allowed sort fields for product matches
var MatchSortFields = map[string]bool{
	"id":              true,
	"created_at":      true,
	"updated_at":      true,
	"overall_score":   true,
	"confidence":      true,
	"is_manual_match": true,
	"last_scored_at":  true,
}

// AlertSortFields contains allowed sort fields for price alerts
var AlertSortFields = map[string]bool{
	"id":          true,
	"created_at":  true,
	"updated_at":  true,
	"severity":    true,
	"status":      true,
	"old_price":   true,
	"new_price":   true,
	"price_delta": true,
	"resolved_at": true,
}

// ScrapeJobSortFields contains allowed sort fields for scrape jobs
var ScrapeJobSortFields = map[string]bool{
	"id":          true,
	"created_at":  true,
	"updated_at":  true,
	"status":      true,
	"started_at":  true,
	"finished_at": true,
	"duration_ms": true,
}
