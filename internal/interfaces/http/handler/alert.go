package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	alertingapp "github.com/pricewatch/backend/internal/application/alerting"
	"github.com/pricewatch/backend/internal/domain/alerting"
)

// AlertHandler handles MAP violation scan and alert lifecycle endpoints
type AlertHandler struct {
	BaseHandler
	violationService *alertingapp.ViolationServiceImpl
}

// NewAlertHandler creates a new AlertHandler
func NewAlertHandler(violationService *alertingapp.ViolationServiceImpl) *AlertHandler {
	return &AlertHandler{violationService: violationService}
}

// ScanRequest represents a request to scan matches for MAP violations
type ScanRequest struct {
	Vendors     []string `json:"vendors"`
	MinSeverity string   `json:"min_severity" binding:"omitempty,oneof=minor moderate severe"`
	SkipAlerts  bool     `json:"skip_alerts"`
	DryRun      bool     `json:"dry_run"`
}

// BulkResolveRequest represents a request to resolve several alerts at once
type BulkResolveRequest struct {
	IDs []uuid.UUID `json:"ids" binding:"required,min=1"`
}

// Scan checks scannable matches for listings priced below MAP and
// creates or refreshes alerts for the violations found
func (h *AlertHandler) Scan(c *gin.Context) {
	var req ScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.violationService.ScanViolations(c.Request.Context(), alertingapp.ScanRequest{
		Vendors:     req.Vendors,
		MinSeverity: alerting.Severity(req.MinSeverity),
		SkipAlerts:  req.SkipAlerts,
		DryRun:      req.DryRun,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// GetByID returns a single alert
func (h *AlertHandler) GetByID(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		h.BadRequest(c, "Invalid alert ID")
		return
	}

	alert, err := h.violationService.GetAlert(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, alert)
}

// List returns alerts with pagination.
// Supported filters: status, severity, match_id.
func (h *AlertHandler) List(c *gin.Context) {
	filter, err := bindListFilter(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	filterParam(c, &filter, "status", "status")
	filterParam(c, &filter, "severity", "severity")
	filterParam(c, &filter, "match_id", "match_id")

	result, err := h.violationService.ListAlerts(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// Resolve marks an alert as handled. Resolved alerts are terminal.
func (h *AlertHandler) Resolve(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		h.BadRequest(c, "Invalid alert ID")
		return
	}

	alert, err := h.violationService.Resolve(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, alert)
}

// Dismiss marks an alert as a false positive. Dismissed alerts are terminal.
func (h *AlertHandler) Dismiss(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		h.BadRequest(c, "Invalid alert ID")
		return
	}

	alert, err := h.violationService.Dismiss(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, alert)
}

// BulkResolve resolves several alerts, skipping ones already terminal
func (h *AlertHandler) BulkResolve(c *gin.Context) {
	var req BulkResolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.violationService.BulkResolve(c.Request.Context(), req.IDs)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}
