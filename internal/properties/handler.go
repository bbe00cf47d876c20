package properties

import (
	"net/http"

	"dealerbridge_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

// Handler exposes the operator-triggered property sync.
type Handler struct {
	syncer *Syncer
}

// NewHandler creates a new properties handler.
func NewHandler(syncer *Syncer) *Handler {
	return &Handler{syncer: syncer}
}

// HandleSync synchronizes brand/model properties across all tenant accounts.
// POST /api/v1/admin/properties/sync
func (h *Handler) HandleSync(c *gin.Context) {
	var req SyncRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			httpkit.Error(c, http.StatusBadRequest, "invalid sync request", err.Error())
			return
		}
	}

	resp, err := h.syncer.Sync(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}

	status := http.StatusOK
	if !resp.Success {
		status = http.StatusBadGateway
	}
	c.JSON(status, resp)
}
