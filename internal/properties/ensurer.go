package properties

import (
	"context"
	"fmt"

	"dealerbridge_backend/internal/crm"
	"dealerbridge_backend/platform/apperr"
	"dealerbridge_backend/platform/logger"
	"dealerbridge_backend/platform/normalize"
)

// Ensure outcome reasons. They are part of the API response contract.
const (
	ReasonPropertyMissing = "property_missing"
	ReasonAlreadyExists   = "already_exists"
	ReasonAdded           = "added"
)

// OptionClient is the subset of the CRM client the ensurer needs.
type OptionClient interface {
	GetProperty(ctx context.Context, objectType, name string) (*crm.Property, error)
	UpdatePropertyOptions(ctx context.Context, objectType, name string, options []crm.Option) (*crm.Property, error)
}

// EnsureResult reports whether the property exists and whether the option is
// now available. Callers must write ResolvedValue, not their original input:
// the CRM enforces exact-value matching, and the stored option's casing wins.
type EnsureResult struct {
	Exists        bool   `json:"exists"`
	Added         bool   `json:"added"`
	Reason        string `json:"reason"`
	ResolvedValue string `json:"resolvedValue,omitempty"`
}

// Ensurer guarantees an enumerated property contains a given option value
// before a record write references it.
type Ensurer struct {
	locker Locker
	log    *logger.Logger
}

// NewEnsurer creates an ensurer. The locker may be nil; ensure calls then run
// without mutual exclusion.
func NewEnsurer(locker Locker, log *logger.Logger) *Ensurer {
	return &Ensurer{locker: locker, log: log}
}

// EnsureOption makes sure the property's option list contains optionValue.
// A missing property is reported, not created: the lead-forwarding path must
// never grow the schema from end-user input. The administrative sync path
// (Syncer) is the one allowed to create properties.
func (e *Ensurer) EnsureOption(ctx context.Context, client OptionClient, objectType, propertyName, optionValue string) (EnsureResult, error) {
	if release, err := e.acquire(ctx, objectType, propertyName); err == nil {
		defer release()
	} else if e.log != nil {
		e.log.Warn("property lock unavailable, ensuring without it",
			"object_type", objectType, "property", propertyName, "error", err.Error())
	}

	prop, err := client.GetProperty(ctx, objectType, propertyName)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return EnsureResult{Exists: false, Added: false, Reason: ReasonPropertyMissing}, nil
		}
		return EnsureResult{}, fmt.Errorf("read property %s/%s: %w", objectType, propertyName, err)
	}

	maxOrder := 0
	for _, opt := range prop.Options {
		if normalize.Equal(opt.Value, optionValue) || normalize.Equal(opt.Label, optionValue) {
			return EnsureResult{
				Exists:        true,
				Added:         true,
				Reason:        ReasonAlreadyExists,
				ResolvedValue: opt.Value,
			}, nil
		}
		if opt.DisplayOrder > maxOrder {
			maxOrder = opt.DisplayOrder
		}
	}

	options := append(append([]crm.Option{}, prop.Options...), crm.Option{
		Label:        optionValue,
		Value:        optionValue,
		DisplayOrder: maxOrder + 1,
	})

	if _, err := client.UpdatePropertyOptions(ctx, objectType, propertyName, options); err != nil {
		return EnsureResult{}, fmt.Errorf("append option to %s/%s: %w", objectType, propertyName, err)
	}

	return EnsureResult{
		Exists:        true,
		Added:         true,
		Reason:        ReasonAdded,
		ResolvedValue: optionValue,
	}, nil
}

func (e *Ensurer) acquire(ctx context.Context, objectType, propertyName string) (func(), error) {
	if e.locker == nil {
		return func() {}, nil
	}
	return e.locker.Acquire(ctx, objectType+":"+propertyName)
}
