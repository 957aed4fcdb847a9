package matching

import (
	"github.com/pricewatch/backend/internal/domain/catalog"
	"github.com/pricewatch/backend/internal/domain/competitor"
	"github.com/pricewatch/backend/internal/domain/matching"
	"github.com/pricewatch/backend/internal/infrastructure/config"
)

// Scorer computes the weighted similarity between a catalog product and a
// competitor listing
type Scorer struct {
	weights    matching.Weights
	thresholds matching.Thresholds
}

// NewScorer builds a scorer from matcher configuration. Zero weight and
// threshold blocks fall back to the production defaults.
func NewScorer(cfg config.MatcherConfig) (*Scorer, error) {
	weights := matching.Weights{
		Embedding: cfg.WeightEmbedding,
		Vendor:    cfg.WeightVendor,
		Title:     cfg.WeightTitle,
		Category:  cfg.WeightCategory,
		Price:     cfg.WeightPrice,
		SKU:       cfg.WeightSKU,
	}
	if weights.Sum() == 0 {
		weights = matching.DefaultWeights()
	}
	if err := weights.Validate(); err != nil {
		return nil, err
	}

	thresholds := matching.Thresholds{
		High:   cfg.ThresholdHigh,
		Medium: cfg.ThresholdMedium,
		Low:    cfg.ThresholdLow,
	}
	if thresholds.High == 0 && thresholds.Medium == 0 && thresholds.Low == 0 {
		thresholds = matching.DefaultThresholds()
	}
	if err := thresholds.Validate(); err != nil {
		return nil, err
	}

	return &Scorer{weights: weights, thresholds: thresholds}, nil
}

// Score computes the overall weighted score, the per-factor breakdown, and
// the confidence tier for a product/listing pair. Missing factors on either
// side score 0 for that factor rather than failing the comparison.
func (s *Scorer) Score(product *catalog.Product, listing *competitor.Listing) (float64, matching.ScoreBreakdown, matching.Confidence) {
	breakdown := matching.ScoreBreakdown{
		Embedding: matching.CosineSimilarity(product.Embedding, listing.Embedding),
		Vendor:    matching.VendorSimilarity(product.Vendor, listing.Vendor),
		Title:     matching.TitleSimilarity(product.Title, listing.Title),
		Category:  matching.CategorySimilarity(product.ProductType, listing.ProductType),
		Price:     matching.PriceSimilarity(product.Price, listing.Price),
		SKU:       skuSimilarity(product.SKU, listing.SKU),
	}

	overall := s.weights.Embedding*breakdown.Embedding +
		s.weights.Vendor*breakdown.Vendor +
		s.weights.Title*breakdown.Title +
		s.weights.Category*breakdown.Category +
		s.weights.Price*breakdown.Price +
		s.weights.SKU*breakdown.SKU

	if overall < 0 {
		overall = 0
	}
	if overall > 1 {
		overall = 1
	}

	return overall, breakdown, s.thresholds.Classify(overall)
}

// Classify exposes the configured tier cutoffs
func (s *Scorer) Classify(overall float64) matching.Confidence {
	return s.thresholds.Classify(overall)
}

// skuSimilarity is exact-match only. SKUs are identifiers, and near-miss
// SKUs usually mean different variants of the same family, not the same
// product.
func skuSimilarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1
	}
	return 0
}
