package notify

import (
	"context"
	"fmt"
	"strings"

	"dealerbridge_backend/internal/events"
	"dealerbridge_backend/platform/config"
	"dealerbridge_backend/platform/logger"
)

// Notifier fans one alert out to every configured channel.
type Notifier struct {
	senders []Sender
	log     *logger.Logger
}

// NewNotifier builds the notifier from the notify configuration. Channels
// without configuration are skipped.
func NewNotifier(cfg config.NotifyConfig, log *logger.Logger) *Notifier {
	var senders []Sender
	if cfg.GetSlackWebhookURL() != "" {
		senders = append(senders, NewSlackSender(cfg.GetSlackWebhookURL()))
	}
	if cfg.GetSMTPHost() != "" && cfg.GetAlertToAddress() != "" {
		senders = append(senders, NewSMTPSender(cfg))
	}
	return &Notifier{senders: senders, log: log}
}

// Enabled reports whether at least one channel is configured.
func (n *Notifier) Enabled() bool { return len(n.senders) > 0 }

// Notify sends the alert on every channel. Channel failures are logged and
// do not block the other channels.
func (n *Notifier) Notify(ctx context.Context, alert Alert) {
	for _, sender := range n.senders {
		if err := sender.Send(ctx, alert); err != nil && n.log != nil {
			n.log.Error("alert delivery failed", "subject", alert.Subject, "error", err.Error())
		}
	}
}

// RegisterHandlers subscribes the notifier to the events operators care
// about: schema drift and lead forwarding failures.
func (n *Notifier) RegisterHandlers(bus events.Bus) {
	if !n.Enabled() {
		return
	}

	bus.Subscribe(events.PropertyDriftDetected{}.EventName(), events.HandlerFunc(func(ctx context.Context, e events.Event) error {
		drift, ok := e.(events.PropertyDriftDetected)
		if !ok {
			return nil
		}
		n.Notify(ctx, driftAlert(drift))
		return nil
	}))

	bus.Subscribe(events.LeadProcessed{}.EventName(), events.HandlerFunc(func(ctx context.Context, e events.Event) error {
		lead, ok := e.(events.LeadProcessed)
		if !ok || lead.Success {
			return nil
		}
		n.Notify(ctx, leadFailureAlert(lead))
		return nil
	}))
}

func driftAlert(drift events.PropertyDriftDetected) Alert {
	return Alert{
		Subject: fmt.Sprintf("Picklist drift: %s/%s", drift.ObjectType, drift.Property),
		Body: fmt.Sprintf("%d option(s) added outside the sync:\n%s\nDetected at %s",
			drift.Count,
			strings.Join(drift.Added, "\n"),
			drift.DetectedAt.Format("2006-01-02 15:04:05 MST")),
	}
}

func leadFailureAlert(lead events.LeadProcessed) Alert {
	return Alert{
		Subject: fmt.Sprintf("Lead forwarding failed: %s", lead.Dealer),
		Body: fmt.Sprintf("Dealer: %s\nBrand: %s\nTenant: %s\nError: %s",
			lead.Dealer, lead.Brand, lead.Tenant, lead.Message),
	}
}
