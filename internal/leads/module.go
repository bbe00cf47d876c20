package leads

import (
	"dealerbridge_backend/internal/configstore"
	"dealerbridge_backend/internal/crm"
	"dealerbridge_backend/internal/events"
	apphttp "dealerbridge_backend/internal/http"
	"dealerbridge_backend/internal/properties"
	"dealerbridge_backend/internal/tenants"
	"dealerbridge_backend/platform/logger"
)

// Module bundles the lead intake pipeline.
type Module struct {
	processor *Processor
	handler   *Handler
}

// NewModule creates the leads module.
func NewModule(store *configstore.Store, factory *crm.Factory, props *properties.Module, bus events.Bus, log *logger.Logger) *Module {
	provider := &credentialClientProvider{factory: factory}
	processor := NewProcessor(store, provider, props.Ensurer(), props.Composer(), bus, log)
	return &Module{
		processor: processor,
		handler:   NewHandler(processor),
	}
}

// Name returns the module identifier.
func (m *Module) Name() string { return "leads" }

// RegisterRoutes mounts the API-key authenticated intake route.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Intake.POST("/leads/intake", m.handler.HandleIntake)
}

// credentialClientProvider binds CRM clients to tenant credentials resolved
// from the environment.
type credentialClientProvider struct {
	factory *crm.Factory
}

func (p *credentialClientProvider) ClientFor(tenantName string, record configstore.TenantRecord) (Client, error) {
	token, err := tenants.Credential(tenantName, record)
	if err != nil {
		return nil, err
	}
	return p.factory.ForToken(token), nil
}
