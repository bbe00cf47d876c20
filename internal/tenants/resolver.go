// Package tenants resolves which legal entity (razón social) owns an
// inbound lead, based on the dealer name and optionally the brand.
package tenants

import (
	"dealerbridge_backend/internal/configstore"
	"dealerbridge_backend/platform/apperr"
	"dealerbridge_backend/platform/normalize"
)

// Resolution methods, in decreasing order of certainty.
const (
	MethodExactMatch                = "exact_match"
	MethodDealerExclusive           = "dealer_exclusive"
	MethodDealerAmbiguousFirstMatch = "dealer_ambiguous_first_match"
)

// Confidence levels attached to a resolution.
const (
	ConfidenceHigh = "high"
	ConfidenceLow  = "low"
)

// Resolution failure reasons. They are part of the API response contract.
const (
	ReasonDealerMissing = "Dealer name missing"
	ReasonNoMatch       = "No match found"
)

// Resolution is the outcome of mapping a dealer (and optional brand) to a tenant.
type Resolution struct {
	TenantName   string                    `json:"tenantName"`
	Tenant       configstore.TenantRecord  `json:"tenant"`
	Method       string                    `json:"method"`
	Confidence   string                    `json:"confidence"`
	Alternatives []string                  `json:"alternatives,omitempty"`
}

// Resolve determines the owning tenant for a dealer/brand pair.
//
// Order of attempts, first success wins:
//  1. dealer and brand both match a tenant (exact_match, high)
//  2. dealer matches exactly one tenant, brand ignored (dealer_exclusive, high)
//  3. dealer matches several tenants: the first in lexicographic tenant-name
//     order is returned with confidence low and every candidate listed in
//     Alternatives. This is a best-effort policy, not a guaranteed-correct
//     resolution.
//
// Matching is insensitive to case, accents, and punctuation.
func Resolve(dir configstore.Directory, dealerName, brandName string) (Resolution, error) {
	if normalize.Key(dealerName) == "" {
		return Resolution{}, apperr.Validation(ReasonDealerMissing)
	}

	if brandName != "" {
		for _, name := range dir.Names() {
			record := dir[name]
			if containsName(record.Dealers, dealerName) && containsName(record.Brands, brandName) {
				return Resolution{
					TenantName: name,
					Tenant:     record,
					Method:     MethodExactMatch,
					Confidence: ConfidenceHigh,
				}, nil
			}
		}
	}

	var matches []string
	for _, name := range dir.Names() {
		if containsName(dir[name].Dealers, dealerName) {
			matches = append(matches, name)
		}
	}

	switch len(matches) {
	case 0:
		return Resolution{}, apperr.NotFound(ReasonNoMatch)
	case 1:
		name := matches[0]
		return Resolution{
			TenantName: name,
			Tenant:     dir[name],
			Method:     MethodDealerExclusive,
			Confidence: ConfidenceHigh,
		}, nil
	default:
		name := matches[0]
		return Resolution{
			TenantName:   name,
			Tenant:       dir[name],
			Method:       MethodDealerAmbiguousFirstMatch,
			Confidence:   ConfidenceLow,
			Alternatives: matches,
		}, nil
	}
}

func containsName(names []string, candidate string) bool {
	for _, name := range names {
		if normalize.Equal(name, candidate) {
			return true
		}
	}
	return false
}
