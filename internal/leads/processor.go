package leads

import (
	"context"
	"fmt"
	"strings"

	"dealerbridge_backend/internal/configstore"
	"dealerbridge_backend/internal/crm"
	"dealerbridge_backend/internal/events"
	"dealerbridge_backend/internal/pipelines"
	"dealerbridge_backend/internal/properties"
	"dealerbridge_backend/internal/tenants"
	"dealerbridge_backend/platform/apperr"
	"dealerbridge_backend/platform/logger"
	"dealerbridge_backend/platform/normalize"
	"dealerbridge_backend/platform/phone"
)

// Record actions reported back to the caller.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
)

// MethodExplicit marks a resolution forced by an explicit razon_social input
// rather than inferred from the dealer name.
const MethodExplicit = "explicit_razon_social"

// Client is the subset of the CRM client the lead pipeline needs.
type Client interface {
	properties.OptionClient
	SearchContactByEmail(ctx context.Context, email string) (*crm.Object, error)
	CreateObject(ctx context.Context, objectType string, input crm.CreateInput) (*crm.Object, error)
	UpdateObject(ctx context.Context, objectType, id string, props map[string]string) (*crm.Object, error)
}

// ClientProvider returns a CRM client bound to a tenant's credential.
type ClientProvider interface {
	ClientFor(tenantName string, record configstore.TenantRecord) (Client, error)
}

// Outcome is the processing result returned to the caller as outputFields.
type Outcome struct {
	Success         bool     `json:"success"`
	Message         string   `json:"message"`
	RazonSocial     string   `json:"razonSocial,omitempty"`
	Method          string   `json:"resolutionMethod,omitempty"`
	Confidence      string   `json:"resolutionConfidence,omitempty"`
	Pipeline        string   `json:"pipeline,omitempty"`
	Stage           string   `json:"stage,omitempty"`
	DealerContactID string   `json:"dealerContactId,omitempty"`
	DealerDealID    string   `json:"dealerDealId,omitempty"`
	ContactAction   string   `json:"contactAction,omitempty"`
	DealAction      string   `json:"dealAction,omitempty"`
	Warnings        []string `json:"warnings,omitempty"`
	DebugTrace      []string `json:"debugTrace,omitempty"`
}

// Processor runs the lead pipeline: validate, resolve tenant, map pipeline,
// ensure the model option, compose custom properties, write contact and deal.
type Processor struct {
	store     *configstore.Store
	provider  ClientProvider
	ensurer   *properties.Ensurer
	composer  *properties.Composer
	validator *Validator
	bus       events.Bus
	log       *logger.Logger
}

// NewProcessor creates a lead processor. The bus may be nil.
func NewProcessor(store *configstore.Store, provider ClientProvider, ensurer *properties.Ensurer, composer *properties.Composer, bus events.Bus, log *logger.Logger) *Processor {
	return &Processor{
		store:     store,
		provider:  provider,
		ensurer:   ensurer,
		composer:  composer,
		validator: NewValidator(),
		bus:       bus,
		log:       log,
	}
}

// Process forwards one lead submission to the resolved tenant's CRM account.
// There are no retries: a CRM write failure is returned to the caller, who
// owns redelivery. Option-ensure failures are the one exception; they are
// logged and the enrichment skipped so a picklist problem never loses a lead.
func (p *Processor) Process(ctx context.Context, sub Submission) (Outcome, error) {
	vr := p.validator.Validate(sub)
	if !vr.IsValid {
		err := apperr.Validation(strings.Join(vr.Errors, "; "))
		p.publish(ctx, sub, Outcome{Message: err.Error()})
		return Outcome{Warnings: vr.Warnings}, err
	}

	dir, err := p.store.Tenants(ctx)
	if err != nil {
		return Outcome{}, err
	}

	res, err := p.resolveTenant(dir, sub)
	if err != nil {
		p.publish(ctx, sub, Outcome{Message: err.Error()})
		return Outcome{}, err
	}

	client, err := p.provider.ClientFor(res.TenantName, res.Tenant)
	if err != nil {
		p.publish(ctx, sub, Outcome{RazonSocial: res.TenantName, Message: err.Error()})
		return Outcome{}, err
	}

	mapped := pipelines.Map(res.Tenant, sub.Brand, sub.Pipeline, sub.Stage, sub.DealerName)

	outcome := Outcome{
		RazonSocial: res.TenantName,
		Method:      res.Method,
		Confidence:  res.Confidence,
		Pipeline:    mapped.Pipeline,
		Stage:       mapped.Stage,
		Warnings:    vr.Warnings,
		DebugTrace:  mapped.Trace,
	}

	dealProps := p.composer.Compose(res.Tenant.CustomProperties, mapped.Brand, sub.DealerName)
	p.ensureModel(ctx, client, mapped.Brand, sub.Model, dealProps, &outcome)

	contact, contactAction, err := p.upsertContact(ctx, client, sub)
	if err != nil {
		outcome.Message = err.Error()
		p.publish(ctx, sub, outcome)
		return Outcome{}, err
	}
	outcome.DealerContactID = contact.ID
	outcome.ContactAction = contactAction

	deal, err := p.createDeal(ctx, client, sub, mapped, dealProps, contact.ID)
	if err != nil {
		outcome.Message = err.Error()
		p.publish(ctx, sub, outcome)
		return Outcome{}, err
	}
	outcome.DealerDealID = deal.ID
	outcome.DealAction = ActionCreated

	outcome.Success = true
	outcome.Message = fmt.Sprintf("lead forwarded to %s", res.TenantName)
	p.publish(ctx, sub, outcome)
	return outcome, nil
}

// resolveTenant honors an explicit razon_social input when it names a known
// tenant; otherwise the dealer/brand resolution rules apply.
func (p *Processor) resolveTenant(dir configstore.Directory, sub Submission) (tenants.Resolution, error) {
	if sub.RazonSocial != "" {
		for _, name := range dir.Names() {
			if normalize.Equal(name, sub.RazonSocial) {
				return tenants.Resolution{
					TenantName: name,
					Tenant:     dir[name],
					Method:     MethodExplicit,
					Confidence: tenants.ConfidenceHigh,
				}, nil
			}
		}
		if p.log != nil {
			p.log.Warn("razon_social input names no known tenant, falling back to dealer resolution",
				"razon_social", sub.RazonSocial)
		}
	}
	return tenants.Resolve(dir, sub.DealerName, sub.Brand)
}

// ensureModel guarantees the brand's model picklist accepts the submitted
// model before the deal write references it. Failures downgrade to a warning;
// the lead still goes through without the enrichment.
func (p *Processor) ensureModel(ctx context.Context, client Client, brand, model string, dealProps map[string]string, outcome *Outcome) {
	if brand == "" || strings.TrimSpace(model) == "" {
		return
	}
	propName := properties.PropertyForBrand(brand)
	if propName == "" {
		return
	}

	res, err := p.ensurer.EnsureOption(ctx, client, crm.ObjectTypeDeals, propName, strings.TrimSpace(model))
	if err != nil {
		if p.log != nil {
			p.log.Warn("model option ensure failed, skipping enrichment",
				"property", propName, "error", err.Error())
		}
		outcome.Warnings = append(outcome.Warnings, fmt.Sprintf("model enrichment skipped: %v", err))
		return
	}
	if !res.Exists {
		outcome.Warnings = append(outcome.Warnings,
			fmt.Sprintf("model enrichment skipped: property %s does not exist, run the property sync", propName))
		return
	}
	dealProps[propName] = res.ResolvedValue
}

func (p *Processor) upsertContact(ctx context.Context, client Client, sub Submission) (*crm.Object, string, error) {
	props := contactProperties(sub)

	email := strings.TrimSpace(sub.Email)
	if email != "" {
		existing, err := client.SearchContactByEmail(ctx, email)
		if err != nil {
			return nil, "", fmt.Errorf("search contact: %w", err)
		}
		if existing != nil {
			updated, err := client.UpdateObject(ctx, crm.ObjectTypeContacts, existing.ID, props)
			if err != nil {
				return nil, "", fmt.Errorf("update contact: %w", err)
			}
			return updated, ActionUpdated, nil
		}
	}

	created, err := client.CreateObject(ctx, crm.ObjectTypeContacts, crm.CreateInput{Properties: props})
	if err != nil {
		return nil, "", fmt.Errorf("create contact: %w", err)
	}
	return created, ActionCreated, nil
}

func (p *Processor) createDeal(ctx context.Context, client Client, sub Submission, mapped pipelines.Result, dealProps map[string]string, contactID string) (*crm.Object, error) {
	props := make(map[string]string, len(dealProps)+3)
	for k, v := range dealProps {
		props[k] = v
	}
	props["dealname"] = dealName(sub)
	props["pipeline"] = mapped.Pipeline
	props["dealstage"] = mapped.Stage

	input := crm.CreateInput{Properties: props}
	if contactID != "" {
		input.Associations = []crm.Association{{
			To:    crm.AssociationTarget{ID: contactID},
			Types: []crm.AssociationType{crm.DealToContactAssociation},
		}}
	}

	deal, err := client.CreateObject(ctx, crm.ObjectTypeDeals, input)
	if err != nil {
		return nil, fmt.Errorf("create deal: %w", err)
	}
	return deal, nil
}

func (p *Processor) publish(ctx context.Context, sub Submission, outcome Outcome) {
	if p.bus == nil {
		return
	}
	p.bus.Publish(ctx, events.LeadProcessed{
		BaseEvent:     events.NewBaseEvent(),
		Tenant:        outcome.RazonSocial,
		Dealer:        sub.DealerName,
		Brand:         sub.Brand,
		Pipeline:      outcome.Pipeline,
		Stage:         outcome.Stage,
		ContactID:     outcome.DealerContactID,
		DealID:        outcome.DealerDealID,
		ContactAction: outcome.ContactAction,
		DealAction:    outcome.DealAction,
		Success:       outcome.Success,
		Message:       outcome.Message,
	})
}

func contactProperties(sub Submission) map[string]string {
	props := make(map[string]string, 4)
	set := func(key, value string) {
		if v := strings.TrimSpace(value); v != "" {
			props[key] = v
		}
	}
	set("firstname", sub.FirstName)
	set("lastname", sub.LastName)
	set("email", sub.Email)
	set("phone", phone.NormalizeE164(sub.Phone))
	return props
}

func dealName(sub Submission) string {
	name := strings.TrimSpace(strings.TrimSpace(sub.FirstName) + " " + strings.TrimSpace(sub.LastName))
	if name == "" {
		name = strings.TrimSpace(sub.Email)
	}
	if name == "" {
		name = strings.TrimSpace(sub.DealerName)
	}
	if brand := strings.TrimSpace(sub.Brand); brand != "" {
		return name + " - " + brand
	}
	return name
}
