package handler

import (
	"github.com/gin-gonic/gin"

	competitorapp "github.com/pricewatch/backend/internal/application/competitor"
)

// CompetitorHandler handles competitor configuration and listing endpoints
type CompetitorHandler struct {
	BaseHandler
	competitorService *competitorapp.CompetitorServiceImpl
}

// NewCompetitorHandler creates a new CompetitorHandler
func NewCompetitorHandler(competitorService *competitorapp.CompetitorServiceImpl) *CompetitorHandler {
	return &CompetitorHandler{competitorService: competitorService}
}

// RegisterCompetitorRequest represents a request to register a scrape target
type RegisterCompetitorRequest struct {
	Name        string   `json:"name" binding:"required,min=1,max=200"`
	Domain      string   `json:"domain" binding:"required,min=4,max=255"`
	Collections []string `json:"collections"`
	RateLimitMs int      `json:"rate_limit_ms" binding:"omitempty,min=0"`
}

// UpdateCompetitorRequest represents a partial competitor update
type UpdateCompetitorRequest struct {
	Collections *[]string `json:"collections"`
	RateLimitMs *int      `json:"rate_limit_ms" binding:"omitempty"`
}

// Register creates a new competitor
func (h *CompetitorHandler) Register(c *gin.Context) {
	var req RegisterCompetitorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	comp, err := h.competitorService.Register(c.Request.Context(), competitorapp.RegisterCompetitorRequest{
		Name:        req.Name,
		Domain:      req.Domain,
		Collections: req.Collections,
		RateLimitMs: req.RateLimitMs,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, comp)
}

// List returns competitors. Supported filters: active, search.
func (h *CompetitorHandler) List(c *gin.Context) {
	filter, err := bindListFilter(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	filterBoolParam(c, &filter, "active", "active")

	competitors, err := h.competitorService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, competitors)
}

// GetByID returns a single competitor
func (h *CompetitorHandler) GetByID(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		h.BadRequest(c, "Invalid competitor ID")
		return
	}

	comp, err := h.competitorService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, comp)
}

// Update applies partial changes to a competitor's scrape configuration
func (h *CompetitorHandler) Update(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		h.BadRequest(c, "Invalid competitor ID")
		return
	}

	var req UpdateCompetitorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	comp, err := h.competitorService.Update(c.Request.Context(), id, competitorapp.UpdateCompetitorRequest{
		Collections: req.Collections,
		RateLimitMs: req.RateLimitMs,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, comp)
}

// Activate re-enables scraping for a competitor
func (h *CompetitorHandler) Activate(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		h.BadRequest(c, "Invalid competitor ID")
		return
	}

	comp, err := h.competitorService.Activate(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, comp)
}

// Deactivate stops scraping a competitor. Its listings are kept.
func (h *CompetitorHandler) Deactivate(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		h.BadRequest(c, "Invalid competitor ID")
		return
	}

	comp, err := h.competitorService.Deactivate(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, comp)
}

// ListListings returns scraped listings with pagination.
// Supported filters: competitor_id, vendor, available, search.
func (h *CompetitorHandler) ListListings(c *gin.Context) {
	filter, err := bindListFilter(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	filterParam(c, &filter, "competitor_id", "competitor_id")
	filterParam(c, &filter, "vendor", "vendor")
	filterBoolParam(c, &filter, "available", "available")

	result, err := h.competitorService.ListListings(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// GetListing returns a single scraped listing
func (h *CompetitorHandler) GetListing(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		h.BadRequest(c, "Invalid listing ID")
		return
	}

	listing, err := h.competitorService.GetListing(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, listing)
}

// ListingHistory returns the recorded price points for a listing
func (h *CompetitorHandler) ListingHistory(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		h.BadRequest(c, "Invalid listing ID")
		return
	}

	filter, err := bindListFilter(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	history, err := h.competitorService.ListingHistory(c.Request.Context(), id, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, history)
}
