package properties

import (
	"time"

	"dealerbridge_backend/internal/configstore"
	"dealerbridge_backend/internal/crm"
	"dealerbridge_backend/internal/events"
	apphttp "dealerbridge_backend/internal/http"
	"dealerbridge_backend/internal/tenants"
	"dealerbridge_backend/platform/logger"

	"github.com/redis/go-redis/v9"
)

// Module bundles the ensurer, composer, and tenant-wide property sync.
type Module struct {
	ensurer  *Ensurer
	composer *Composer
	syncer   *Syncer
	handler  *Handler
}

// NewModule creates the properties module.
func NewModule(store *configstore.Store, factory *crm.Factory, rdb redis.Cmdable, strategy string, bus events.Bus, log *logger.Logger) *Module {
	var locker Locker
	if rdb != nil {
		locker = NewRedisLocker(rdb, 10*time.Second)
	}

	provider := &credentialClientProvider{factory: factory}
	syncer := NewSyncer(store, provider, bus, log)

	return &Module{
		ensurer:  NewEnsurer(locker, log),
		composer: NewComposer(strategy),
		syncer:   syncer,
		handler:  NewHandler(syncer),
	}
}

// Ensurer exposes the option ensurer for the lead-processing pipeline.
func (m *Module) Ensurer() *Ensurer { return m.ensurer }

// Composer exposes the custom-property composer.
func (m *Module) Composer() *Composer { return m.composer }

// Name returns the module identifier.
func (m *Module) Name() string { return "properties" }

// RegisterRoutes mounts the admin property-sync route.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Admin.POST("/properties/sync", m.handler.HandleSync)
}

// credentialClientProvider binds CRM clients to tenant credentials resolved
// from the environment.
type credentialClientProvider struct {
	factory *crm.Factory
}

func (p *credentialClientProvider) ClientFor(tenantName string, record configstore.TenantRecord) (SyncClient, error) {
	token, err := tenants.Credential(tenantName, record)
	if err != nil {
		return nil, err
	}
	return p.factory.ForToken(token), nil
}
