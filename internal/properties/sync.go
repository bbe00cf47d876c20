package properties

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"dealerbridge_backend/internal/configstore"
	"dealerbridge_backend/internal/crm"
	"dealerbridge_backend/internal/events"
	"dealerbridge_backend/platform/apperr"
	"dealerbridge_backend/platform/logger"
	"dealerbridge_backend/platform/normalize"

	"golang.org/x/sync/errgroup"
)

// Sync statuses per property, part of the API response contract.
const (
	StatusExists  = "exists"
	StatusCreated = "created"
	StatusError   = "error"
)

// syncConcurrency bounds how many tenant accounts are synced in parallel.
const syncConcurrency = 4

// SyncClient is the subset of the CRM client the sync path needs. Unlike the
// lead path, this operator-triggered path is allowed to create properties.
type SyncClient interface {
	GetProperty(ctx context.Context, objectType, name string) (*crm.Property, error)
	CreateProperty(ctx context.Context, objectType string, input crm.PropertyCreate) (*crm.Property, error)
	UpdatePropertyOptions(ctx context.Context, objectType, name string, options []crm.Option) (*crm.Property, error)
}

// ClientProvider returns a CRM client bound to a tenant's credential.
type ClientProvider interface {
	ClientFor(tenantName string, record configstore.TenantRecord) (SyncClient, error)
}

// SyncRequest selects which object types and brands to synchronize.
// Empty slices mean "all".
type SyncRequest struct {
	Objects []string `json:"objects"`
	Brands  []string `json:"brands"`
}

// SyncResultItem reports the outcome for one property on one tenant.
type SyncResultItem struct {
	Tenant string `json:"tenant"`
	Object string `json:"object"`
	Name   string `json:"name"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// SyncResponse is the bulk sync outcome. Success requires at least one
// tenant to have synchronized without errors; per-tenant failures are
// collected, never fatal to the others.
type SyncResponse struct {
	Success bool             `json:"success"`
	Results []SyncResultItem `json:"results"`
	Errors  []string         `json:"errors,omitempty"`
}

// Syncer pushes brand/model property definitions to every tenant account.
type Syncer struct {
	store    *configstore.Store
	provider ClientProvider
	bus      events.Bus
	log      *logger.Logger
}

// NewSyncer creates a property syncer. The bus may be nil.
func NewSyncer(store *configstore.Store, provider ClientProvider, bus events.Bus, log *logger.Logger) *Syncer {
	return &Syncer{store: store, provider: provider, bus: bus, log: log}
}

// Sync ensures, for every tenant and each brand it sells, that the brand's
// model property exists on the requested object types with the brand
// catalog's models as options. Tenants are processed independently; one
// tenant's failure never blocks the rest.
func (s *Syncer) Sync(ctx context.Context, req SyncRequest) (SyncResponse, error) {
	dir, err := s.store.Tenants(ctx)
	if err != nil {
		return SyncResponse{}, err
	}
	catalog, err := s.store.Brands(ctx)
	if err != nil {
		return SyncResponse{}, err
	}

	objects := req.Objects
	if len(objects) == 0 {
		objects = []string{crm.ObjectTypeDeals}
	}

	var (
		mu         sync.Mutex
		results    []SyncResultItem
		errsList   []string
		successful int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(syncConcurrency)

	for _, tenantName := range dir.Names() {
		tenantName := tenantName
		record := dir[tenantName]
		g.Go(func() error {
			items, tenantErrs := s.syncTenant(gctx, tenantName, record, catalog, objects, req.Brands)

			mu.Lock()
			defer mu.Unlock()
			results = append(results, items...)
			errsList = append(errsList, tenantErrs...)
			if len(tenantErrs) == 0 && len(items) > 0 {
				successful++
			}
			return nil
		})
	}
	_ = g.Wait()

	sort.Slice(results, func(i, j int) bool {
		if results[i].Tenant != results[j].Tenant {
			return results[i].Tenant < results[j].Tenant
		}
		if results[i].Object != results[j].Object {
			return results[i].Object < results[j].Object
		}
		return results[i].Name < results[j].Name
	})

	resp := SyncResponse{
		Success: successful > 0,
		Results: results,
		Errors:  errsList,
	}

	if s.bus != nil {
		s.bus.Publish(ctx, events.PropertySyncCompleted{
			BaseEvent: events.NewBaseEvent(),
			Success:   resp.Success,
			Synced:    len(resp.Results),
			Errors:    len(resp.Errors),
		})
	}

	return resp, nil
}

func (s *Syncer) syncTenant(ctx context.Context, tenantName string, record configstore.TenantRecord, catalog configstore.BrandCatalog, objects, wantedBrands []string) ([]SyncResultItem, []string) {
	client, err := s.provider.ClientFor(tenantName, record)
	if err != nil {
		return nil, []string{fmt.Sprintf("%s: %v", tenantName, err)}
	}

	var items []SyncResultItem
	var errs []string

	for _, brand := range record.Brands {
		if !brandRequested(brand, wantedBrands) {
			continue
		}

		models := catalogModels(catalog, brand)
		propName := PropertyForBrand(brand)
		if propName == "" {
			continue
		}

		for _, objectType := range objects {
			item := SyncResultItem{Tenant: tenantName, Object: objectType, Name: propName}
			status, err := s.syncProperty(ctx, client, objectType, propName, brand, models)
			item.Status = status
			if err != nil {
				item.Error = err.Error()
				errs = append(errs, fmt.Sprintf("%s %s/%s: %v", tenantName, objectType, propName, err))
				if s.log != nil {
					s.log.CRMError("property sync", tenantName, err)
				}
			}
			items = append(items, item)
		}
	}

	return items, errs
}

// syncProperty creates the property when absent, or tops up missing model
// options when it already exists. Existing options are never removed.
func (s *Syncer) syncProperty(ctx context.Context, client SyncClient, objectType, propName, brand string, models []string) (string, error) {
	prop, err := client.GetProperty(ctx, objectType, propName)
	if err != nil {
		if !apperr.Is(err, apperr.KindNotFound) {
			return StatusError, err
		}

		input := crm.PropertyCreate{
			Name:      propName,
			Label:     "Modelo " + brand,
			Type:      "enumeration",
			FieldType: "select",
			GroupName: groupNameFor(objectType),
			Options:   optionsForModels(models, nil),
		}
		if _, err := client.CreateProperty(ctx, objectType, input); err != nil {
			return StatusError, err
		}
		return StatusCreated, nil
	}

	missing := missingModels(prop.Options, models)
	if len(missing) == 0 {
		return StatusExists, nil
	}

	merged := append(append([]crm.Option{}, prop.Options...), optionsForModels(missing, prop.Options)...)
	if _, err := client.UpdatePropertyOptions(ctx, objectType, propName, merged); err != nil {
		return StatusError, err
	}
	return StatusExists, nil
}

func brandRequested(brand string, wanted []string) bool {
	if len(wanted) == 0 {
		return true
	}
	for _, w := range wanted {
		if normalize.Equal(w, brand) {
			return true
		}
	}
	return false
}

func catalogModels(catalog configstore.BrandCatalog, brand string) []string {
	if entry, ok := catalog[brand]; ok {
		return entry.Models
	}
	for name, entry := range catalog {
		if normalize.Equal(name, brand) {
			return entry.Models
		}
	}
	return nil
}

func missingModels(existing []crm.Option, models []string) []string {
	var missing []string
	for _, model := range models {
		found := false
		for _, opt := range existing {
			if normalize.Equal(opt.Value, model) || normalize.Equal(opt.Label, model) {
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, model)
		}
	}
	return missing
}

func optionsForModels(models []string, existing []crm.Option) []crm.Option {
	maxOrder := 0
	for _, opt := range existing {
		if opt.DisplayOrder > maxOrder {
			maxOrder = opt.DisplayOrder
		}
	}

	options := make([]crm.Option, 0, len(models))
	for i, model := range models {
		options = append(options, crm.Option{
			Label:        model,
			Value:        model,
			DisplayOrder: maxOrder + i + 1,
		})
	}
	return options
}

func groupNameFor(objectType string) string {
	if objectType == crm.ObjectTypeContacts {
		return "contactinformation"
	}
	return "dealinformation"
}
