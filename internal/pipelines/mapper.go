// Package pipelines decides which CRM pipeline and stage a deal must land
// in, given the owning tenant and the brand (which may need to be inferred).
package pipelines

import (
	"fmt"
	"sort"

	"dealerbridge_backend/internal/configstore"
	"dealerbridge_backend/platform/normalize"
)

// Fallback pipeline/stage used when neither the request nor the tenant
// mapping prescribes a target.
const (
	DefaultPipeline = "default"
	DefaultStage    = "appointmentscheduled"
)

// Sources describing where the final pipeline/stage pair came from.
const (
	SourceInputDefault           = "input_default"
	SourceBrandMapping           = "brand_mapping"
	SourceNormalizedBrandMapping = "normalized_brand_mapping"
	SourceDefaultMapping         = "default_mapping"
)

// DefaultMappingKey is the literal key for the brand-independent fallback
// entry inside a tenant's pipelineMapping.
const DefaultMappingKey = "default"

// Result is the mapping outcome. Pipeline and Stage are never empty; the
// Trace records every decision step for audit output and is not used for
// control flow.
type Result struct {
	Pipeline string   `json:"pipeline"`
	Stage    string   `json:"stage"`
	Source   string   `json:"source"`
	Brand    string   `json:"brand,omitempty"`
	Trace    []string `json:"debugTrace"`
}

// Map determines the target pipeline/stage for a deal. It never fails:
// when no mapping applies, the input (or built-in) defaults are kept.
func Map(tenant configstore.TenantRecord, brandName, inputPipeline, inputStage, dealerName string) Result {
	res := Result{
		Pipeline: inputPipeline,
		Stage:    inputStage,
		Source:   SourceInputDefault,
	}
	if res.Pipeline == "" {
		res.Pipeline = DefaultPipeline
	}
	if res.Stage == "" {
		res.Stage = DefaultStage
	}
	res.trace("Defaults: pipeline=%s stage=%s", res.Pipeline, res.Stage)

	res.Brand = brandName
	if res.Brand == "" {
		res.Brand = inferBrand(tenant, dealerName, &res)
	}

	if len(tenant.PipelineMapping) == 0 {
		res.trace("Tenant has no pipeline mapping, keeping defaults")
		return res
	}

	if res.Brand != "" {
		if target, ok := tenant.PipelineMapping[res.Brand]; ok {
			res.apply(target, SourceBrandMapping)
			res.trace("Mapping found for brand key %q", res.Brand)
			return res
		}
		// Sorted keys so that two mapping entries collapsing to the same
		// normalized brand resolve to a deterministic winner.
		for _, key := range sortedMappingKeys(tenant.PipelineMapping) {
			if key != DefaultMappingKey && normalize.Equal(key, res.Brand) {
				res.apply(tenant.PipelineMapping[key], SourceNormalizedBrandMapping)
				res.trace("Mapping found for normalized brand key %q", key)
				return res
			}
		}
		res.trace("No mapping for brand %q", res.Brand)
	}

	if target, ok := tenant.PipelineMapping[DefaultMappingKey]; ok {
		res.apply(target, SourceDefaultMapping)
		res.trace("Fallback to default mapping")
		return res
	}

	res.trace("No default mapping, keeping input defaults")
	return res
}

func sortedMappingKeys(mapping map[string]configstore.StageTarget) []string {
	keys := make([]string, 0, len(mapping))
	for key := range mapping {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func inferBrand(tenant configstore.TenantRecord, dealerName string, res *Result) string {
	if len(tenant.Brands) == 1 {
		brand := tenant.Brands[0]
		res.trace("Brand inferred (single option): %s", brand)
		return brand
	}

	for _, brand := range tenant.Brands {
		if normalize.Contains(dealerName, brand) {
			res.trace("Brand inferred from dealer name: %s", brand)
			return brand
		}
	}

	res.trace("Brand could not be inferred")
	return ""
}

func (r *Result) apply(target configstore.StageTarget, source string) {
	if target.Pipeline != "" {
		r.Pipeline = target.Pipeline
	}
	if target.Stage != "" {
		r.Stage = target.Stage
	}
	r.Source = source
}

func (r *Result) trace(format string, args ...interface{}) {
	r.Trace = append(r.Trace, fmt.Sprintf(format, args...))
}
