// Package crm implements the HTTP client for the CRM platform's v3 API:
// property definitions, deal pipelines, and contact/deal records.
package crm

// Option represents a selectable option for enumeration properties.
type Option struct {
	Label        string `json:"label"`
	Value        string `json:"value"`
	DisplayOrder int    `json:"displayOrder"`
	Hidden       bool   `json:"hidden"`
}

// Property represents a CRM property definition.
type Property struct {
	Name         string   `json:"name"`
	Label        string   `json:"label"`
	Type         string   `json:"type"`
	FieldType    string   `json:"fieldType"`
	GroupName    string   `json:"groupName"`
	Description  string   `json:"description,omitempty"`
	Options      []Option `json:"options,omitempty"`
	DisplayOrder int      `json:"displayOrder,omitempty"`
	Hidden       bool     `json:"hidden,omitempty"`
	FormField    bool     `json:"formField,omitempty"`
	Archived     bool     `json:"archived,omitempty"`
}

// PropertyCreate holds the fields accepted when defining a new property.
type PropertyCreate struct {
	Name      string   `json:"name"`
	Label     string   `json:"label"`
	Type      string   `json:"type"`
	FieldType string   `json:"fieldType"`
	GroupName string   `json:"groupName"`
	Options   []Option `json:"options,omitempty"`
}

// PipelineStage represents a single stage within a pipeline.
type PipelineStage struct {
	ID           string `json:"id"`
	Label        string `json:"label"`
	DisplayOrder int    `json:"displayOrder"`
	Archived     bool   `json:"archived"`
}

// Pipeline represents a CRM deal pipeline.
type Pipeline struct {
	ID           string          `json:"id"`
	Label        string          `json:"label"`
	DisplayOrder int             `json:"displayOrder"`
	Stages       []PipelineStage `json:"stages"`
	Archived     bool            `json:"archived"`
}

// Object represents a CRM record (contact, deal, …).
type Object struct {
	ID         string            `json:"id"`
	Properties map[string]string `json:"properties"`
	CreatedAt  string            `json:"createdAt,omitempty"`
	UpdatedAt  string            `json:"updatedAt,omitempty"`
	Archived   bool              `json:"archived,omitempty"`
}

// CreateInput holds the data needed to create a new object.
type CreateInput struct {
	Properties   map[string]string `json:"properties"`
	Associations []Association     `json:"associations,omitempty"`
}

// Association links a new object to an existing one.
type Association struct {
	To    AssociationTarget `json:"to"`
	Types []AssociationType `json:"types"`
}

// AssociationTarget identifies the record being associated.
type AssociationTarget struct {
	ID string `json:"id"`
}

// AssociationType identifies the association category.
type AssociationType struct {
	AssociationCategory string `json:"associationCategory"`
	AssociationTypeID   int    `json:"associationTypeId"`
}

// DealToContactAssociation is the CRM-defined association type linking a
// freshly created deal to its contact.
var DealToContactAssociation = AssociationType{
	AssociationCategory: "HUBSPOT_DEFINED",
	AssociationTypeID:   3,
}

const (
	// ObjectTypeContacts is the contacts object type identifier.
	ObjectTypeContacts = "contacts"
	// ObjectTypeDeals is the deals object type identifier.
	ObjectTypeDeals = "deals"
)
