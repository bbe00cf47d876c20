package properties

import (
	"context"
	"testing"

	"dealerbridge_backend/internal/crm"
	"dealerbridge_backend/platform/apperr"
)

// fakeCRM implements OptionClient and SyncClient against in-memory properties.
type fakeCRM struct {
	properties map[string]*crm.Property // keyed objectType/name
	updates    int
	creates    int
}

func newFakeCRM() *fakeCRM {
	return &fakeCRM{properties: make(map[string]*crm.Property)}
}

func (f *fakeCRM) key(objectType, name string) string { return objectType + "/" + name }

func (f *fakeCRM) GetProperty(_ context.Context, objectType, name string) (*crm.Property, error) {
	prop, ok := f.properties[f.key(objectType, name)]
	if !ok {
		return nil, apperr.NotFound("CRM resource not found (get property): " + name)
	}
	clone := *prop
	clone.Options = append([]crm.Option{}, prop.Options...)
	return &clone, nil
}

func (f *fakeCRM) CreateProperty(_ context.Context, objectType string, input crm.PropertyCreate) (*crm.Property, error) {
	prop := &crm.Property{
		Name:      input.Name,
		Label:     input.Label,
		Type:      input.Type,
		FieldType: input.FieldType,
		Options:   append([]crm.Option{}, input.Options...),
	}
	f.properties[f.key(objectType, input.Name)] = prop
	f.creates++
	return prop, nil
}

func (f *fakeCRM) UpdatePropertyOptions(_ context.Context, objectType, name string, options []crm.Option) (*crm.Property, error) {
	prop, ok := f.properties[f.key(objectType, name)]
	if !ok {
		return nil, apperr.NotFound("CRM resource not found (update property options): " + name)
	}
	prop.Options = append([]crm.Option{}, options...)
	f.updates++
	return prop, nil
}

func TestEnsureOptionMissingPropertyIssuesNoWrite(t *testing.T) {
	fake := newFakeCRM()
	ensurer := NewEnsurer(nil, nil)

	res, err := ensurer.EnsureOption(context.Background(), fake, "deals", "modelo_ktm", "Duke 390")
	if err != nil {
		t.Fatalf("EnsureOption: %v", err)
	}
	if res.Exists || res.Added {
		t.Fatalf("result = %+v, want exists=false added=false", res)
	}
	if res.Reason != ReasonPropertyMissing {
		t.Fatalf("reason = %q, want %q", res.Reason, ReasonPropertyMissing)
	}
	if fake.updates != 0 {
		t.Fatal("missing property must not trigger a write")
	}
}

func TestEnsureOptionAddsNewOption(t *testing.T) {
	fake := newFakeCRM()
	fake.properties["deals/modelo_ktm"] = &crm.Property{
		Name: "modelo_ktm",
		Options: []crm.Option{
			{Label: "Duke 200", Value: "Duke 200", DisplayOrder: 1},
		},
	}
	ensurer := NewEnsurer(nil, nil)

	res, err := ensurer.EnsureOption(context.Background(), fake, "deals", "modelo_ktm", "Duke 390")
	if err != nil {
		t.Fatalf("EnsureOption: %v", err)
	}
	if res.Reason != ReasonAdded {
		t.Fatalf("reason = %q, want %q", res.Reason, ReasonAdded)
	}
	if res.ResolvedValue != "Duke 390" {
		t.Fatalf("resolvedValue = %q", res.ResolvedValue)
	}

	prop := fake.properties["deals/modelo_ktm"]
	if len(prop.Options) != 2 {
		t.Fatalf("options = %d, want 2", len(prop.Options))
	}
	if prop.Options[1].DisplayOrder != 2 {
		t.Fatalf("displayOrder = %d, want max existing + 1", prop.Options[1].DisplayOrder)
	}
}

func TestEnsureOptionIsIdempotent(t *testing.T) {
	fake := newFakeCRM()
	fake.properties["deals/modelo_ktm"] = &crm.Property{
		Name:    "modelo_ktm",
		Options: []crm.Option{{Label: "Duke 390", Value: "duke_390", DisplayOrder: 1}},
	}
	ensurer := NewEnsurer(nil, nil)
	ctx := context.Background()

	first, err := ensurer.EnsureOption(ctx, fake, "deals", "modelo_ktm", "DUKE 390")
	if err != nil {
		t.Fatalf("first ensure: %v", err)
	}
	if first.Reason != ReasonAlreadyExists {
		t.Fatalf("reason = %q, want %q", first.Reason, ReasonAlreadyExists)
	}
	// The stored value wins over the caller's casing.
	if first.ResolvedValue != "duke_390" {
		t.Fatalf("resolvedValue = %q, want stored value duke_390", first.ResolvedValue)
	}

	second, err := ensurer.EnsureOption(ctx, fake, "deals", "modelo_ktm", "DUKE 390")
	if err != nil {
		t.Fatalf("second ensure: %v", err)
	}
	if second.Reason != ReasonAlreadyExists {
		t.Fatalf("second reason = %q", second.Reason)
	}
	if got := len(fake.properties["deals/modelo_ktm"].Options); got != 1 {
		t.Fatalf("option count = %d, want unchanged 1", got)
	}
	if fake.updates != 0 {
		t.Fatal("idempotent ensures must not write")
	}
}
