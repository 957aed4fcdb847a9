package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	matchingapp "github.com/pricewatch/backend/internal/application/matching"
	"github.com/pricewatch/backend/internal/domain/matching"
)

// MatchHandler handles product matching endpoints
type MatchHandler struct {
	BaseHandler
	matchService *matchingapp.MatchServiceImpl
}

// NewMatchHandler creates a new MatchHandler
func NewMatchHandler(matchService *matchingapp.MatchServiceImpl) *MatchHandler {
	return &MatchHandler{matchService: matchService}
}

// AutoMatchRequest represents a request to run automated matching
type AutoMatchRequest struct {
	Vendor        string `json:"vendor"`
	MinConfidence string `json:"min_confidence" binding:"omitempty,oneof=high medium low"`
	DryRun        bool   `json:"dry_run"`
	Limit         int    `json:"limit" binding:"omitempty,min=1"`
}

// ManualMatchRequest represents an operator-confirmed match
type ManualMatchRequest struct {
	CatalogProductID    uuid.UUID `json:"catalog_product_id" binding:"required"`
	CompetitorListingID uuid.UUID `json:"competitor_listing_id" binding:"required"`
	Confidence          string    `json:"confidence" binding:"omitempty,oneof=high medium low"`
}

// PreviewRequest represents a request to score a pair without saving
type PreviewRequest struct {
	CatalogProductID    uuid.UUID `json:"catalog_product_id" binding:"required"`
	CompetitorListingID uuid.UUID `json:"competitor_listing_id" binding:"required"`
}

// AutoMatch scores the catalog against the candidate listing pool and
// records the best pairing per product
func (h *MatchHandler) AutoMatch(c *gin.Context) {
	var req AutoMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.matchService.AutoMatch(c.Request.Context(), matchingapp.AutoMatchRequest{
		Vendor:        req.Vendor,
		MinConfidence: matching.Confidence(req.MinConfidence),
		DryRun:        req.DryRun,
		Limit:         req.Limit,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// ManualMatch records an operator-confirmed pairing. Manual matches are
// never overwritten by later automated runs.
func (h *MatchHandler) ManualMatch(c *gin.Context) {
	var req ManualMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	match, err := h.matchService.ManualMatch(c.Request.Context(), matchingapp.ManualMatchRequest{
		CatalogProductID:    req.CatalogProductID,
		CompetitorListingID: req.CompetitorListingID,
		Confidence:          matching.Confidence(req.Confidence),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, match)
}

// Preview scores a product/listing pair without persisting anything
func (h *MatchHandler) Preview(c *gin.Context) {
	var req PreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	preview, err := h.matchService.PreviewScore(c.Request.Context(), req.CatalogProductID, req.CompetitorListingID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, preview)
}

// GetByID returns a single match
func (h *MatchHandler) GetByID(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		h.BadRequest(c, "Invalid match ID")
		return
	}

	match, err := h.matchService.GetMatch(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, match)
}

// List returns matches with pagination.
// Supported filters: confidence, is_manual, catalog_product_id.
func (h *MatchHandler) List(c *gin.Context) {
	filter, err := bindListFilter(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	filterParam(c, &filter, "confidence", "confidence")
	filterParam(c, &filter, "catalog_product_id", "catalog_product_id")
	filterBoolParam(c, &filter, "is_manual", "is_manual")

	result, err := h.matchService.ListMatches(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// ListForProduct returns a product's matches, best first
func (h *MatchHandler) ListForProduct(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}

	matches, err := h.matchService.ListMatchesForProduct(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, matches)
}
