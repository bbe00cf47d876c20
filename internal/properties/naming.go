// Package properties guarantees enumerated custom-field options exist before
// record writes, composes per-record custom property sets from layered
// configuration, and synchronizes brand/model field definitions across
// tenant CRM accounts.
package properties

import "dealerbridge_backend/platform/normalize"

// modelPropertyPrefix is the schema-naming convention coupling brands to
// their per-brand model picklist on CRM objects. Changing it is a schema
// migration across every tenant account, so it is centralized here.
const modelPropertyPrefix = "modelo_"

// PropertyForBrand returns the CRM property name holding the model picklist
// for a brand. This is the single mapping from brand identifier to property
// identifier; there are no alternate runtime candidates.
func PropertyForBrand(brand string) string {
	key := normalize.Key(brand)
	if key == "" {
		return ""
	}
	return modelPropertyPrefix + key
}
