package matching

import (
	"math"

	"github.com/pricewatch/backend/internal/domain/shared"
)

// Weights are the per-factor weights of the combined match score.
// They are configuration, not constants, so tiers can be tuned without a
// code change. SKU is defined but currently weighted 0.
type Weights struct {
	Embedding float64
	Vendor    float64
	Title     float64
	Category  float64
	Price     float64
	SKU       float64
}

// DefaultWeights returns the production weighting
func DefaultWeights() Weights {
	return Weights{
		Embedding: 0.40,
		Vendor:    0.24,
		Title:     0.18,
		Category:  0.12,
		Price:     0.06,
		SKU:       0,
	}
}

// Sum returns the total of all weights
func (w Weights) Sum() float64 {
	return w.Embedding + w.Vendor + w.Title + w.Category + w.Price + w.SKU
}

// Validate checks that the weights sum to 1.0 within floating tolerance
func (w Weights) Validate() error {
	if math.Abs(w.Sum()-1.0) > 1e-9 {
		return shared.NewDomainError("INVALID_WEIGHTS", "Match factor weights must sum to 1.0")
	}
	return nil
}

// Thresholds are the confidence tier cutoffs applied to the overall score
type Thresholds struct {
	High   float64
	Medium float64
	Low    float64
}

// DefaultThresholds returns the production tier cutoffs
func DefaultThresholds() Thresholds {
	return Thresholds{High: 0.80, Medium: 0.70, Low: 0.60}
}

// Validate checks that the thresholds are ordered and within (0,1]
func (t Thresholds) Validate() error {
	if !(t.Low > 0 && t.Low < t.Medium && t.Medium < t.High && t.High <= 1) {
		return shared.NewDomainError("INVALID_THRESHOLDS", "Confidence thresholds must satisfy 0 < low < medium < high <= 1")
	}
	return nil
}

// Classify maps an overall score to a confidence tier. Classification is
// monotonic: a higher score never yields a lower tier.
func (t Thresholds) Classify(overall float64) Confidence {
	switch {
	case overall >= t.High:
		return ConfidenceHigh
	case overall >= t.Medium:
		return ConfidenceMedium
	case overall >= t.Low:
		return ConfidenceLow
	default:
		return ConfidenceVeryLow
	}
}
