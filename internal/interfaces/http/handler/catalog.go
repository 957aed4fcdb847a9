package handler

import (
	"github.com/gin-gonic/gin"

	catalogapp "github.com/pricewatch/backend/internal/application/catalog"
)

// CatalogHandler handles catalog product and monitored brand endpoints
type CatalogHandler struct {
	BaseHandler
	catalogService *catalogapp.CatalogServiceImpl
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(catalogService *catalogapp.CatalogServiceImpl) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

// CreateBrandRequest represents a request to monitor a new brand
type CreateBrandRequest struct {
	Name string `json:"name" binding:"required,min=1,max=200"`
}

// ListProducts returns synced catalog products with pagination.
// Supported filters: vendor, available, search.
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	filter, err := bindListFilter(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	filterParam(c, &filter, "vendor", "vendor")
	filterBoolParam(c, &filter, "available", "available")

	result, err := h.catalogService.ListProducts(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// GetProduct returns a single catalog product
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}

	product, err := h.catalogService.GetProduct(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, product)
}

// CreateBrand registers a brand for catalog sync
func (h *CatalogHandler) CreateBrand(c *gin.Context) {
	var req CreateBrandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	brand, err := h.catalogService.AddBrand(c.Request.Context(), req.Name)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, brand)
}

// ListBrands returns all monitored brands
func (h *CatalogHandler) ListBrands(c *gin.Context) {
	filter, err := bindListFilter(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	filterBoolParam(c, &filter, "active", "active")

	brands, err := h.catalogService.ListBrands(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, brands)
}

// ActivateBrand re-enables a brand for sync
func (h *CatalogHandler) ActivateBrand(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		h.BadRequest(c, "Invalid brand ID")
		return
	}

	brand, err := h.catalogService.ActivateBrand(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, brand)
}

// DeactivateBrand excludes a brand from future syncs
func (h *CatalogHandler) DeactivateBrand(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		h.BadRequest(c, "Invalid brand ID")
		return
	}

	brand, err := h.catalogService.DeactivateBrand(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, brand)
}
