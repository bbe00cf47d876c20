package audit

import (
	"context"
	"encoding/json"

	"dealerbridge_backend/internal/events"
	"dealerbridge_backend/platform/logger"
)

// Recorder subscribes to domain events and writes them to the audit store.
type Recorder struct {
	store Store
	log   *logger.Logger
}

// NewRecorder creates an audit recorder.
func NewRecorder(store Store, log *logger.Logger) *Recorder {
	return &Recorder{store: store, log: log}
}

// RegisterHandlers subscribes the recorder to every audited event.
func (r *Recorder) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.LeadProcessed{}.EventName(), events.HandlerFunc(r.handleLeadProcessed))
	bus.Subscribe(events.PropertySyncCompleted{}.EventName(), events.HandlerFunc(r.handlePropertySync))
	bus.Subscribe(events.PropertyDriftDetected{}.EventName(), events.HandlerFunc(r.handleDrift))
}

func (r *Recorder) handleLeadProcessed(ctx context.Context, e events.Event) error {
	lead, ok := e.(events.LeadProcessed)
	if !ok {
		return nil
	}
	return r.insert(ctx, Entry{
		EventName:  lead.EventName(),
		Tenant:     lead.Tenant,
		Subject:    lead.Dealer,
		Success:    lead.Success,
		Detail:     mustDetail(lead),
		OccurredAt: lead.OccurredAt(),
	})
}

func (r *Recorder) handlePropertySync(ctx context.Context, e events.Event) error {
	sync, ok := e.(events.PropertySyncCompleted)
	if !ok {
		return nil
	}
	return r.insert(ctx, Entry{
		EventName:  sync.EventName(),
		Success:    sync.Success,
		Detail:     mustDetail(sync),
		OccurredAt: sync.OccurredAt(),
	})
}

func (r *Recorder) handleDrift(ctx context.Context, e events.Event) error {
	drift, ok := e.(events.PropertyDriftDetected)
	if !ok {
		return nil
	}
	return r.insert(ctx, Entry{
		EventName:  drift.EventName(),
		Subject:    drift.ObjectType + "/" + drift.Property,
		Success:    true,
		Detail:     mustDetail(drift),
		OccurredAt: drift.OccurredAt(),
	})
}

func (r *Recorder) insert(ctx context.Context, entry Entry) error {
	if err := r.store.Insert(ctx, entry); err != nil {
		if r.log != nil {
			r.log.Error("audit insert failed", "event", entry.EventName, "error", err.Error())
		}
		return err
	}
	return nil
}

func mustDetail(v interface{}) json.RawMessage {
	raw, err := json.Marshal(v)
	if err != nil {
		return json.RawMessage(`{}`)
	}
	return raw
}
