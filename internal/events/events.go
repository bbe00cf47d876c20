// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"time"

	"dealerbridge_backend/platform/events"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Lead Domain Events
// =============================================================================

// LeadProcessed is published when an inbound lead has been forwarded to a
// tenant's CRM account (successfully or not).
type LeadProcessed struct {
	BaseEvent
	Tenant        string `json:"tenant"`
	Dealer        string `json:"dealer"`
	Brand         string `json:"brand,omitempty"`
	Pipeline      string `json:"pipeline"`
	Stage         string `json:"stage"`
	ContactID     string `json:"contactId,omitempty"`
	DealID        string `json:"dealId,omitempty"`
	ContactAction string `json:"contactAction,omitempty"`
	DealAction    string `json:"dealAction,omitempty"`
	Success       bool   `json:"success"`
	Message       string `json:"message,omitempty"`
}

func (e LeadProcessed) EventName() string { return "leads.processed" }

// =============================================================================
// Property Domain Events
// =============================================================================

// PropertySyncCompleted is published after an operator-triggered sync of
// brand/model properties across tenant accounts.
type PropertySyncCompleted struct {
	BaseEvent
	Success bool `json:"success"`
	Synced  int  `json:"synced"`
	Errors  int  `json:"errors"`
}

func (e PropertySyncCompleted) EventName() string { return "properties.sync.completed" }

// =============================================================================
// Monitoring Domain Events
// =============================================================================

// PropertyDriftDetected is published when the drift monitor observes options
// on a live CRM property that are absent from the stored snapshot.
type PropertyDriftDetected struct {
	BaseEvent
	ObjectType string    `json:"objectType"`
	Property   string    `json:"property"`
	Added      []string  `json:"added"`
	Count      int       `json:"count"`
	DetectedAt time.Time `json:"detectedAt"`
}

func (e PropertyDriftDetected) EventName() string { return "monitor.property.drift_detected" }
