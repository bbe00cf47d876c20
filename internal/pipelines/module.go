package pipelines

import (
	"dealerbridge_backend/internal/configstore"
	"dealerbridge_backend/internal/crm"
	apphttp "dealerbridge_backend/internal/http"
)

// Module exposes the live pipeline listing. The mapping logic itself is
// pure and imported directly by the lead pipeline.
type Module struct {
	handler *Handler
}

// NewModule creates the pipelines module.
func NewModule(store *configstore.Store, factory *crm.Factory) *Module {
	return &Module{handler: NewHandler(store, factory)}
}

// Name returns the module identifier.
func (m *Module) Name() string { return "pipelines" }

// RegisterRoutes mounts the admin pipeline listing.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Admin.GET("/pipelines/:tenant", m.handler.HandleList)
}
