package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pricewatch/backend/internal/domain/shared"
	"github.com/pricewatch/backend/internal/interfaces/http/dto"
)

// parseID parses the :id path parameter as a UUID
func parseID(c *gin.Context) (uuid.UUID, error) {
	return uuid.Parse(c.Param("id"))
}

// bindListFilter maps the common list query parameters onto a repository
// filter. Absent parameters keep the defaults.
func bindListFilter(c *gin.Context) (shared.Filter, error) {
	req := dto.DefaultListRequest()
	if err := c.ShouldBindQuery(&req); err != nil {
		return shared.Filter{}, err
	}
	return shared.Filter{
		Page:     req.Page,
		PageSize: req.PageSize,
		OrderBy:  req.OrderBy,
		OrderDir: req.OrderDir,
		Search:   req.Search,
		Filters:  map[string]interface{}{},
	}, nil
}

// filterParam copies a query parameter into the filter map when present
func filterParam(c *gin.Context, filter *shared.Filter, query, key string) {
	if v := c.Query(query); v != "" {
		filter.Filters[key] = v
	}
}

// filterBoolParam copies a boolean query parameter into the filter map
func filterBoolParam(c *gin.Context, filter *shared.Filter, query, key string) {
	switch c.Query(query) {
	case "true", "1":
		filter.Filters[key] = true
	case "false", "0":
		filter.Filters[key] = false
	}
}
