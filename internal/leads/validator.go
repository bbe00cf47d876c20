// Package leads receives inbound lead submissions, validates them, resolves
// the owning tenant, and forwards contact and deal records to that tenant's
// CRM account.
package leads

import (
	"strings"

	"dealerbridge_backend/platform/validator"
)

// Submission is the inbound lead payload. It is consumed once per request
// and never persisted. Upstream forms vary by integration, so every field
// except the validated minimum is optional.
type Submission struct {
	DealerName  string `json:"dealer_name"`
	Brand       string `json:"contact_brand"`
	FirstName   string `json:"contact_firstname"`
	LastName    string `json:"contact_lastname"`
	Email       string `json:"contact_email"`
	Phone       string `json:"contact_phone"`
	RazonSocial string `json:"razon_social"`
	Pipeline    string `json:"deal_pipeline"`
	Stage       string `json:"deal_stage"`
	Model       string `json:"contact_model"`
}

// ValidationResult reports whether a submission can be processed. Warnings
// never block processing.
type ValidationResult struct {
	IsValid  bool     `json:"isValid"`
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// Validator checks minimum field completeness before a lead is forwarded.
type Validator struct {
	val *validator.Validator
}

// NewValidator creates a lead validator.
func NewValidator() *Validator {
	return &Validator{val: validator.New()}
}

// Validate applies the minimum completeness rules. Validation is permissive:
// a lead needs a dealer name and some way to identify the contact, nothing
// more.
func (v *Validator) Validate(sub Submission) ValidationResult {
	var res ValidationResult

	email := strings.TrimSpace(sub.Email)
	firstName := strings.TrimSpace(sub.FirstName)

	if email == "" && firstName == "" {
		res.Errors = append(res.Errors, "contact requires at least an email or a first name")
	}
	if strings.TrimSpace(sub.DealerName) == "" {
		res.Errors = append(res.Errors, "dealer name is required")
	}

	if strings.TrimSpace(sub.Phone) == "" {
		res.Warnings = append(res.Warnings, "phone number missing")
	}
	if email != "" {
		if err := v.val.Var(email, "email"); err != nil {
			res.Warnings = append(res.Warnings, "email format looks invalid")
		}
	}

	res.IsValid = len(res.Errors) == 0
	return res
}
