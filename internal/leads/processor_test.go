package leads

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"dealerbridge_backend/internal/configstore"
	"dealerbridge_backend/internal/crm"
	"dealerbridge_backend/internal/properties"
	"dealerbridge_backend/platform/apperr"
)

// fakeClient records CRM writes and serves canned reads.
type fakeClient struct {
	property *crm.Property // the modelo property, nil when absent
	contacts map[string]*crm.Object

	createdContacts []crm.CreateInput
	updatedContacts []map[string]string
	createdDeals    []crm.CreateInput
	optionUpdates   int
}

func newFakeClient() *fakeClient {
	return &fakeClient{contacts: make(map[string]*crm.Object)}
}

func (f *fakeClient) GetProperty(_ context.Context, _, name string) (*crm.Property, error) {
	if f.property == nil {
		return nil, apperr.NotFound("CRM resource not found (get property): " + name)
	}
	clone := *f.property
	return &clone, nil
}

func (f *fakeClient) UpdatePropertyOptions(_ context.Context, _, _ string, options []crm.Option) (*crm.Property, error) {
	f.property.Options = options
	f.optionUpdates++
	return f.property, nil
}

func (f *fakeClient) SearchContactByEmail(_ context.Context, email string) (*crm.Object, error) {
	return f.contacts[email], nil
}

func (f *fakeClient) CreateObject(_ context.Context, objectType string, input crm.CreateInput) (*crm.Object, error) {
	switch objectType {
	case crm.ObjectTypeContacts:
		f.createdContacts = append(f.createdContacts, input)
		return &crm.Object{ID: "contact-1", Properties: input.Properties}, nil
	case crm.ObjectTypeDeals:
		f.createdDeals = append(f.createdDeals, input)
		return &crm.Object{ID: "deal-1", Properties: input.Properties}, nil
	}
	return nil, apperr.BadRequest("unexpected object type " + objectType)
}

func (f *fakeClient) UpdateObject(_ context.Context, _, id string, props map[string]string) (*crm.Object, error) {
	f.updatedContacts = append(f.updatedContacts, props)
	return &crm.Object{ID: id, Properties: props}, nil
}

type staticProvider struct {
	client *fakeClient
	err    error
}

func (p *staticProvider) ClientFor(string, configstore.TenantRecord) (Client, error) {
	return p.client, p.err
}

func newLeadTestStore(t *testing.T, dir configstore.Directory) *configstore.Store {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	raw, _ := json.Marshal(dir)
	mr.Set(configstore.KeyTenants, string(raw))
	mr.Set(configstore.KeyBrands, `{}`)

	return configstore.New(rdb, nil)
}

func testDirectory() configstore.Directory {
	return configstore.Directory{
		"ACME MOTORS": {
			Brands:  []string{"KTM"},
			Dealers: []string{"Acme Norte"},
			PipelineMapping: map[string]configstore.StageTarget{
				"ktm": {Pipeline: "moto-pipeline", Stage: "qualified"},
			},
			CustomProperties: map[string]interface{}{
				"origen": "portal",
			},
		},
		"GRUPO COLON": {
			Brands:  []string{"Yamaha", "Honda"},
			Dealers: []string{"Colón Centro"},
		},
	}
}

func newTestProcessor(t *testing.T, client *fakeClient) *Processor {
	t.Helper()
	store := newLeadTestStore(t, testDirectory())
	return NewProcessor(
		store,
		&staticProvider{client: client},
		properties.NewEnsurer(nil, nil),
		properties.NewComposer(properties.StrategyFirst),
		nil, nil,
	)
}

func TestProcessForwardsNewLead(t *testing.T) {
	client := newFakeClient()
	client.property = &crm.Property{
		Name:    "modelo_ktm",
		Options: []crm.Option{{Label: "Duke 390", Value: "Duke 390", DisplayOrder: 1}},
	}
	p := newTestProcessor(t, client)

	outcome, err := p.Process(context.Background(), Submission{
		DealerName: "ACME NORTE",
		Brand:      "ktm",
		FirstName:  "Ana",
		LastName:   "García",
		Email:      "ana@example.com",
		Phone:      "33 1234 5678",
		Model:      "Duke 390",
	})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	if !outcome.Success {
		t.Fatalf("outcome = %+v", outcome)
	}
	if outcome.RazonSocial != "ACME MOTORS" {
		t.Fatalf("razonSocial = %q", outcome.RazonSocial)
	}
	if outcome.Pipeline != "moto-pipeline" || outcome.Stage != "qualified" {
		t.Fatalf("pipeline/stage = %q/%q, want brand mapping applied", outcome.Pipeline, outcome.Stage)
	}
	if outcome.ContactAction != ActionCreated || outcome.DealAction != ActionCreated {
		t.Fatalf("actions = %q/%q", outcome.ContactAction, outcome.DealAction)
	}
	if outcome.DealerContactID != "contact-1" || outcome.DealerDealID != "deal-1" {
		t.Fatalf("ids = %q/%q", outcome.DealerContactID, outcome.DealerDealID)
	}

	if len(client.createdContacts) != 1 {
		t.Fatalf("createdContacts = %d", len(client.createdContacts))
	}
	contactProps := client.createdContacts[0].Properties
	if contactProps["phone"] != "+523312345678" {
		t.Fatalf("phone = %q, want E.164 form", contactProps["phone"])
	}

	if len(client.createdDeals) != 1 {
		t.Fatalf("createdDeals = %d", len(client.createdDeals))
	}
	deal := client.createdDeals[0]
	if deal.Properties["pipeline"] != "moto-pipeline" || deal.Properties["dealstage"] != "qualified" {
		t.Fatalf("deal props = %v", deal.Properties)
	}
	if deal.Properties["modelo_ktm"] != "Duke 390" {
		t.Fatalf("model enrichment = %q", deal.Properties["modelo_ktm"])
	}
	if deal.Properties["origen"] != "portal" {
		t.Fatalf("composed props missing, deal props = %v", deal.Properties)
	}
	if len(deal.Associations) != 1 || deal.Associations[0].To.ID != "contact-1" {
		t.Fatalf("associations = %+v, want link to the contact", deal.Associations)
	}
}

func TestProcessUpdatesExistingContact(t *testing.T) {
	client := newFakeClient()
	client.contacts["ana@example.com"] = &crm.Object{ID: "contact-7"}
	p := newTestProcessor(t, client)

	outcome, err := p.Process(context.Background(), Submission{
		DealerName: "Acme Norte",
		Email:      "ana@example.com",
		Phone:      "+523312345678",
	})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if outcome.ContactAction != ActionUpdated {
		t.Fatalf("contactAction = %q, want %q", outcome.ContactAction, ActionUpdated)
	}
	if outcome.DealerContactID != "contact-7" {
		t.Fatalf("contactId = %q", outcome.DealerContactID)
	}
	if len(client.createdContacts) != 0 || len(client.updatedContacts) != 1 {
		t.Fatalf("created=%d updated=%d", len(client.createdContacts), len(client.updatedContacts))
	}
}

func TestProcessExplicitRazonSocialWins(t *testing.T) {
	client := newFakeClient()
	p := newTestProcessor(t, client)

	outcome, err := p.Process(context.Background(), Submission{
		DealerName:  "Acme Norte",
		RazonSocial: "grupo colón",
		Email:       "ana@example.com",
		Phone:       "+523312345678",
	})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if outcome.RazonSocial != "GRUPO COLON" {
		t.Fatalf("razonSocial = %q, want explicit input honored", outcome.RazonSocial)
	}
	if outcome.Method != MethodExplicit {
		t.Fatalf("method = %q", outcome.Method)
	}
}

func TestProcessUnknownDealerFails(t *testing.T) {
	client := newFakeClient()
	p := newTestProcessor(t, client)

	_, err := p.Process(context.Background(), Submission{
		DealerName: "Nowhere Motors",
		Email:      "ana@example.com",
	})
	if err == nil {
		t.Fatal("expected resolution failure")
	}
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("err = %v, want not-found", err)
	}
	if len(client.createdDeals) != 0 {
		t.Fatal("no CRM writes on resolution failure")
	}
}

func TestProcessMissingModelPropertySkipsEnrichment(t *testing.T) {
	client := newFakeClient() // property stays nil
	p := newTestProcessor(t, client)

	outcome, err := p.Process(context.Background(), Submission{
		DealerName: "Acme Norte",
		Brand:      "KTM",
		Email:      "ana@example.com",
		Phone:      "+523312345678",
		Model:      "Duke 390",
	})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if !outcome.Success {
		t.Fatalf("lead must still go through, outcome = %+v", outcome)
	}
	if _, ok := client.createdDeals[0].Properties["modelo_ktm"]; ok {
		t.Fatal("model property must not be written when the picklist is absent")
	}
	found := false
	for _, w := range outcome.Warnings {
		if strings.Contains(w, "property sync") {
			found = true
		}
	}
	if !found {
		t.Fatalf("warnings = %v, want sync guidance", outcome.Warnings)
	}
}

func TestProcessValidationFailure(t *testing.T) {
	client := newFakeClient()
	p := newTestProcessor(t, client)

	_, err := p.Process(context.Background(), Submission{DealerName: "Acme Norte"})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("err = %v, want validation kind", err)
	}
}
