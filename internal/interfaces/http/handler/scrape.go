package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	scrapingapp "github.com/pricewatch/backend/internal/application/scraping"
)

// ScrapeHandler handles scrape run endpoints
type ScrapeHandler struct {
	BaseHandler
	scraperService *scrapingapp.ScraperServiceImpl
}

// NewScrapeHandler creates a new ScrapeHandler
func NewScrapeHandler(scraperService *scrapingapp.ScraperServiceImpl) *ScrapeHandler {
	return &ScrapeHandler{scraperService: scraperService}
}

// StartScrapeRequest optionally restricts a run to a subset of the
// competitor's collections
type StartScrapeRequest struct {
	Collections []string `json:"collections"`
}

// StartScrapeResponse is returned when a scrape run is accepted
type StartScrapeResponse struct {
	JobID        uuid.UUID `json:"job_id"`
	CompetitorID uuid.UUID `json:"competitor_id"`
	Status       string    `json:"status"`
}

// Start kicks off an asynchronous scrape run for one competitor and
// returns the job ID for polling. The body is optional; without one the
// competitor's full collection set is scraped.
func (h *ScrapeHandler) Start(c *gin.Context) {
	id, err := uuid.Parse(c.Param("competitorId"))
	if err != nil {
		h.BadRequest(c, "Invalid competitor ID")
		return
	}

	var req StartScrapeRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.BadRequest(c, err.Error())
			return
		}
	}

	job, err := h.scraperService.StartScrape(c.Request.Context(), id, req.Collections)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Accepted(c, StartScrapeResponse{
		JobID:        job.ID,
		CompetitorID: job.CompetitorID,
		Status:       string(job.Status),
	})
}

// ScrapeAll runs a synchronous scrape of every active competitor
func (h *ScrapeHandler) ScrapeAll(c *gin.Context) {
	result, err := h.scraperService.ScrapeAll(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// GetJob returns a scrape job by ID
func (h *ScrapeHandler) GetJob(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		h.BadRequest(c, "Invalid job ID")
		return
	}

	job, err := h.scraperService.GetJob(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, job)
}

// ListJobs returns scrape jobs, newest first. Supported filters: status.
func (h *ScrapeHandler) ListJobs(c *gin.Context) {
	filter, err := bindListFilter(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	filterParam(c, &filter, "status", "status")

	jobs, err := h.scraperService.ListJobs(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, jobs)
}
