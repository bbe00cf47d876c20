package configstore

import (
	apphttp "dealerbridge_backend/internal/http"
	"dealerbridge_backend/platform/logger"

	"github.com/redis/go-redis/v9"
)

// Module bundles the configuration store with its admin HTTP surface.
type Module struct {
	store   *Store
	handler *Handler
}

// NewModule creates the configstore module.
func NewModule(rdb redis.Cmdable, log *logger.Logger) *Module {
	store := New(rdb, log)
	return &Module{
		store:   store,
		handler: NewHandler(store),
	}
}

// Store exposes the underlying store for other modules.
func (m *Module) Store() *Store {
	return m.store
}

// Name returns the module identifier.
func (m *Module) Name() string { return "configstore" }

// RegisterRoutes mounts the admin configuration routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	cfg := ctx.Admin.Group("/config")
	cfg.GET("/tenants", m.handler.HandleGetTenants)
	cfg.PUT("/tenants", m.handler.HandlePutTenants)
	cfg.GET("/brands", m.handler.HandleGetBrands)
	cfg.PUT("/brands", m.handler.HandlePutBrands)
	cfg.POST("/refresh", m.handler.HandleRefresh)
}
