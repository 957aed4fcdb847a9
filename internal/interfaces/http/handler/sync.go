package handler

import (
	"github.com/gin-gonic/gin"

	syncingapp "github.com/pricewatch/backend/internal/application/syncing"
)

// SyncHandler handles catalog sync endpoints
type SyncHandler struct {
	BaseHandler
	syncService *syncingapp.CatalogSyncServiceImpl
}

// NewSyncHandler creates a new SyncHandler
func NewSyncHandler(syncService *syncingapp.CatalogSyncServiceImpl) *SyncHandler {
	return &SyncHandler{syncService: syncService}
}

// SyncRequest optionally restricts a sync run to a subset of the
// monitored brands
type SyncRequest struct {
	Brands []string `json:"brands"`
}

// Run refreshes the local catalog from the external source of truth and
// backfills missing embeddings. The call is synchronous; per-brand
// failures are reported in the result without failing the run. The body
// is optional; without one every active brand is synced.
func (h *SyncHandler) Run(c *gin.Context) {
	var req SyncRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.BadRequest(c, err.Error())
			return
		}
	}

	result, err := h.syncService.Sync(c.Request.Context(), req.Brands)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// BackfillEmbeddings embeds catalog products that are still missing a
// vector, in batches, without running a full sync
func (h *SyncHandler) BackfillEmbeddings(c *gin.Context) {
	embedded, err := h.syncService.BackfillEmbeddings(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, gin.H{"embedded": embedded})
}
