package audit

import (
	"strconv"

	"dealerbridge_backend/internal/events"
	apphttp "dealerbridge_backend/internal/http"
	"dealerbridge_backend/platform/httpkit"
	"dealerbridge_backend/platform/logger"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Module bundles the audit store, the event recorder, and the admin listing.
type Module struct {
	store    Store
	recorder *Recorder
}

// NewModule creates the audit module. A nil pool degrades to the no-op
// store, keeping the API usable without a database.
func NewModule(pool *pgxpool.Pool, bus events.Bus, log *logger.Logger) *Module {
	var store Store = NoopStore{}
	if pool != nil {
		store = NewRepository(pool)
	}

	recorder := NewRecorder(store, log)
	recorder.RegisterHandlers(bus)

	return &Module{store: store, recorder: recorder}
}

// Name returns the module identifier.
func (m *Module) Name() string { return "audit" }

// RegisterRoutes mounts the admin audit listing.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Admin.GET("/audit", m.handleList)
}

// handleList returns the newest audit entries.
// GET /api/v1/admin/audit?limit=100
func (m *Module) handleList(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	entries, err := m.store.ListRecent(c.Request.Context(), limit)
	if httpkit.HandleError(c, err) {
		return
	}
	if entries == nil {
		entries = []Entry{}
	}
	httpkit.OK(c, gin.H{"entries": entries})
}
