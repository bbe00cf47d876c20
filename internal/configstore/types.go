package configstore

import "sort"

// StageTarget is the pipeline/stage pair a brand maps to within a tenant.
type StageTarget struct {
	Pipeline string `json:"pipeline"`
	Stage    string `json:"stage"`
}

// TenantRecord describes one legal entity (razón social): the brands it
// sells, the dealers whitelisted for it, where its CRM credential lives,
// and how its deals are routed.
type TenantRecord struct {
	Brands           []string               `json:"brands"`
	Dealers          []string               `json:"dealers"`
	TokenEnv         string                 `json:"tokenEnv,omitempty"`
	PortalID         string                 `json:"portalId,omitempty"`
	PipelineMapping  map[string]StageTarget `json:"pipelineMapping,omitempty"`
	CustomProperties map[string]interface{} `json:"customProperties,omitempty"`
}

// Directory is the tenant directory keyed by tenant name.
type Directory map[string]TenantRecord

// Names returns the tenant names in lexicographic order. All iteration over
// the directory goes through this method so that first-match resolution has
// a deterministic, documented tie-break.
func (d Directory) Names() []string {
	names := make([]string, 0, len(d))
	for name := range d {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// BrandCatalogEntry lists the models sold under a brand, in display order.
type BrandCatalogEntry struct {
	Models []string `json:"models"`
}

// BrandCatalog maps upper-cased brand names to their model catalogs.
type BrandCatalog map[string]BrandCatalogEntry

// Names returns the brand names in lexicographic order.
func (c BrandCatalog) Names() []string {
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
