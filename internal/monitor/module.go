package monitor

import (
	"dealerbridge_backend/internal/crm"
	"dealerbridge_backend/internal/events"
	apphttp "dealerbridge_backend/internal/http"
	"dealerbridge_backend/platform/logger"

	"github.com/redis/go-redis/v9"
)

// Module bundles the drift checker and its admin endpoints.
type Module struct {
	checker   *Checker
	snapshots *SnapshotStore
	handler   *Handler
}

// NewModule creates the monitor module.
func NewModule(rdb redis.Cmdable, factory *crm.Factory, configPath string, bus events.Bus, log *logger.Logger) *Module {
	snapshots := NewSnapshotStore(rdb)
	checker := NewChecker(snapshots, NewEnvClientProvider(factory), configPath, bus, log)
	return &Module{
		checker:   checker,
		snapshots: snapshots,
		handler:   NewHandler(checker, snapshots),
	}
}

// Checker exposes the drift checker for the background worker.
func (m *Module) Checker() *Checker { return m.checker }

// Name returns the module identifier.
func (m *Module) Name() string { return "monitor" }

// RegisterRoutes mounts the admin monitor routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Admin.POST("/monitor/check", m.handler.HandleCheck)
	ctx.Admin.GET("/monitor/snapshot", m.handler.HandleSnapshot)
}
