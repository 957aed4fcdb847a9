package matching

import (
	"time"

	"github.com/google/uuid"

	"github.com/pricewatch/backend/internal/domain/shared"
)

// Confidence is the discrete classification of a continuous match score
type Confidence string

const (
	ConfidenceVeryLow Confidence = "very_low"
	ConfidenceLow     Confidence = "low"
	ConfidenceMedium  Confidence = "medium"
	ConfidenceHigh    Confidence = "high"
)

// confidenceRank orders tiers for minimum-confidence comparisons
var confidenceRank = map[Confidence]int{
	ConfidenceVeryLow: 0,
	ConfidenceLow:     1,
	ConfidenceMedium:  2,
	ConfidenceHigh:    3,
}

// AtLeast reports whether c meets or exceeds min in tier ordering
func (c Confidence) AtLeast(min Confidence) bool {
	return confidenceRank[c] >= confidenceRank[min]
}

// IsValid reports whether c is a known confidence tier
func (c Confidence) IsValid() bool {
	_, ok := confidenceRank[c]
	return ok
}

// ScoreBreakdown holds the per-factor sub-scores behind an overall score.
// Callers need the breakdown for auditing, not just the verdict.
type ScoreBreakdown struct {
	Embedding float64 `json:"embedding"`
	Vendor    float64 `json:"vendor"`
	Title     float64 `json:"title"`
	Category  float64 `json:"category"`
	Price     float64 `json:"price"`
	SKU       float64 `json:"sku"`
}

// Match associates a catalog product with a competitor listing.
// Unique per (catalog_product_id, competitor_listing_id). Manual matches
// are immutable to automated re-matching.
type Match struct {
	shared.BaseAggregateRoot
	CatalogProductID     uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_match_product_listing,priority:1;index"`
	CompetitorListingID  uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_match_product_listing,priority:2;index"`
	OverallScore         float64    `gorm:"not null;default:0"`
	EmbeddingScore       float64    `gorm:"not null;default:0"`
	VendorScore          float64    `gorm:"not null;default:0"`
	TitleScore           float64    `gorm:"not null;default:0"`
	CategoryScore        float64    `gorm:"not null;default:0"`
	PriceScore           float64    `gorm:"not null;default:0"`
	SKUScore             float64    `gorm:"not null;default:0"`
	Confidence           Confidence `gorm:"type:varchar(20);not null;index"`
	IsManualMatch        bool       `gorm:"not null;default:false;index"`
	LastScoredAt         time.Time  `gorm:"not null"`
}

// TableName returns the table name for GORM
func (Match) TableName() string {
	return "product_matches"
}

// NewMatch creates an automated match from a score result
func NewMatch(productID, listingID uuid.UUID, overall float64, breakdown ScoreBreakdown, confidence Confidence) (*Match, error) {
	if productID == uuid.Nil || listingID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_MATCH", "Product and listing IDs are required")
	}
	if !confidence.IsValid() {
		return nil, shared.NewDomainError("INVALID_CONFIDENCE", "Unknown confidence tier")
	}

	m := &Match{
		BaseAggregateRoot:   shared.NewBaseAggregateRoot(),
		CatalogProductID:    productID,
		CompetitorListingID: listingID,
		Confidence:          confidence,
		LastScoredAt:        time.Now(),
	}
	m.applyScores(overall, breakdown)
	return m, nil
}

// NewManualMatch creates an operator-confirmed match. The computed scores
// are kept for audit, but the manual flag protects the match from any
// automated overwrite.
func NewManualMatch(productID, listingID uuid.UUID, overall float64, breakdown ScoreBreakdown, confidence Confidence) (*Match, error) {
	m, err := NewMatch(productID, listingID, overall, breakdown, confidence)
	if err != nil {
		return nil, err
	}
	m.IsManualMatch = true
	return m, nil
}

// Rescore updates an automated match in place. Manual matches reject the
// update.
func (m *Match) Rescore(overall float64, breakdown ScoreBreakdown, confidence Confidence) error {
	if m.IsManualMatch {
		return shared.NewDomainError("MANUAL_MATCH_PROTECTED", "Manual matches cannot be overwritten by automated re-matching")
	}
	if !confidence.IsValid() {
		return shared.NewDomainError("INVALID_CONFIDENCE", "Unknown confidence tier")
	}
	m.applyScores(overall, breakdown)
	m.Confidence = confidence
	m.UpdatedAt = time.Now()
	m.IncrementVersion()
	return nil
}

// ConfirmManual promotes an automated match to a manual one
func (m *Match) ConfirmManual(confidence Confidence) error {
	if !confidence.IsValid() {
		return shared.NewDomainError("INVALID_CONFIDENCE", "Unknown confidence tier")
	}
	m.IsManualMatch = true
	m.Confidence = confidence
	m.UpdatedAt = time.Now()
	m.IncrementVersion()
	return nil
}

func (m *Match) applyScores(overall float64, b ScoreBreakdown) {
	m.OverallScore = overall
	m.EmbeddingScore = b.Embedding
	m.VendorScore = b.Vendor
	m.TitleScore = b.Title
	m.CategoryScore = b.Category
	m.PriceScore = b.Price
	m.SKUScore = b.SKU
	m.LastScoredAt = time.Now()
}

// Breakdown returns the stored sub-scores
func (m *Match) Breakdown() ScoreBreakdown {
	return ScoreBreakdown{
		Embedding: m.EmbeddingScore,
		Vendor:    m.VendorScore,
		Title:     m.TitleScore,
		Category:  m.CategoryScore,
		Price:     m.PriceScore,
		SKU:       m.SKUScore,
	}
}
