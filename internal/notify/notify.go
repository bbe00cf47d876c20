// Package notify delivers drift alerts to operators over Slack and email.
// Both channels are optional; an unconfigured channel degrades to a no-op
// so the monitor keeps running in environments without alerting.
package notify

import "context"

// Alert is one operator-facing notification.
type Alert struct {
	Subject string
	Body    string
}

// Sender delivers an alert over one channel.
type Sender interface {
	Send(ctx context.Context, alert Alert) error
}

// NoopSender discards alerts.
type NoopSender struct{}

func (NoopSender) Send(context.Context, Alert) error { return nil }
