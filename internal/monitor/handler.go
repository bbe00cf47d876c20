package monitor

import (
	"dealerbridge_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

// Handler exposes the manual drift check and the snapshot view.
type Handler struct {
	checker   *Checker
	snapshots *SnapshotStore
}

// NewHandler creates a new monitor handler.
func NewHandler(checker *Checker, snapshots *SnapshotStore) *Handler {
	return &Handler{checker: checker, snapshots: snapshots}
}

// HandleCheck runs one drift check pass immediately.
// POST /api/v1/admin/monitor/check
func (h *Handler) HandleCheck(c *gin.Context) {
	resp, err := h.checker.Check(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}

// HandleSnapshot returns every stored property-option snapshot.
// GET /api/v1/admin/monitor/snapshot
func (h *Handler) HandleSnapshot(c *gin.Context) {
	snapshot, err := h.snapshots.All(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"snapshot": snapshot})
}
