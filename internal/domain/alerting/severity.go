package alerting

import (
	"github.com/shopspring/decimal"
)

// Severity classifies how far a competitor price falls below MAP
type Severity string

const (
	SeverityNone     Severity = ""
	SeverityMinor    Severity = "minor"
	SeverityModerate Severity = "moderate"
	SeveritySevere   Severity = "severe"
)

// IsValid reports whether s is a known non-empty severity
func (s Severity) IsValid() bool {
	return s == SeverityMinor || s == SeverityModerate || s == SeveritySevere
}

// SeverityThresholds are the violation percentage cutoffs. Below the minor
// threshold is tolerated noise, not a violation.
type SeverityThresholds struct {
	Severe   float64
	Moderate float64
	Minor    float64
}

// DefaultSeverityThresholds returns the production cutoffs
func DefaultSeverityThresholds() SeverityThresholds {
	return SeverityThresholds{Severe: 0.20, Moderate: 0.10, Minor: 0.05}
}

// Classify computes the violation severity for a MAP price and a
// competitor price. Missing or non-positive prices, and competitor prices
// at or above MAP, yield SeverityNone.
func (t SeverityThresholds) Classify(mapPrice, competitorPrice decimal.Decimal) Severity {
	if !mapPrice.IsPositive() || !competitorPrice.IsPositive() {
		return SeverityNone
	}

	gap := mapPrice.Sub(competitorPrice)
	if !gap.IsPositive() {
		return SeverityNone
	}

	pct, _ := gap.Div(mapPrice).Float64()
	switch {
	case pct >= t.Severe:
		return SeveritySevere
	case pct >= t.Moderate:
		return SeverityModerate
	case pct >= t.Minor:
		return SeverityMinor
	default:
		return SeverityNone
	}
}

// FinancialImpact estimates the commercial effect of a violation.
// EstimatedVolume is a configured heuristic, not a measured sales figure.
type FinancialImpact struct {
	PriceGap             decimal.Decimal `json:"price_gap"`
	PercentBelowMAP      decimal.Decimal `json:"percent_below_map"`
	PotentialLostRevenue decimal.Decimal `json:"potential_lost_revenue"`
	CompetitorAdvantage  decimal.Decimal `json:"competitor_advantage"`
}

// ComputeFinancialImpact derives the impact figures for a violating pair
func ComputeFinancialImpact(mapPrice, competitorPrice decimal.Decimal, estimatedVolume int) FinancialImpact {
	if !mapPrice.IsPositive() || !competitorPrice.IsPositive() {
		return FinancialImpact{}
	}

	gap := mapPrice.Sub(competitorPrice)
	return FinancialImpact{
		PriceGap:             gap,
		PercentBelowMAP:      gap.Div(mapPrice).Mul(decimal.NewFromInt(100)),
		PotentialLostRevenue: gap.Mul(decimal.NewFromInt(int64(estimatedVolume))),
		CompetitorAdvantage:  competitorPrice.Div(mapPrice),
	}
}
