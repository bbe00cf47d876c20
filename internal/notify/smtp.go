package notify

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"dealerbridge_backend/platform/config"

	gomail "github.com/wneessen/go-mail"
)

// SMTPSender delivers alerts to the operator mailbox via a direct SMTP
// connection.
type SMTPSender struct {
	host     string
	port     int
	username string
	password string
	from     string
	to       string
}

// NewSMTPSender creates an SMTP sender from the notify configuration.
func NewSMTPSender(cfg config.NotifyConfig) *SMTPSender {
	return &SMTPSender{
		host:     cfg.GetSMTPHost(),
		port:     cfg.GetSMTPPort(),
		username: cfg.GetSMTPUsername(),
		password: cfg.GetSMTPPassword(),
		from:     cfg.GetAlertFromAddress(),
		to:       cfg.GetAlertToAddress(),
	}
}

func (s *SMTPSender) Send(ctx context.Context, alert Alert) error {
	msg := gomail.NewMsg()
	if err := msg.From(s.from); err != nil {
		return fmt.Errorf("smtp from: %w", err)
	}
	if err := msg.To(s.to); err != nil {
		return fmt.Errorf("smtp to: %w", err)
	}
	msg.Subject(alert.Subject)
	msg.SetBodyString(gomail.TypeTextHTML, renderBody(alert))

	client, err := gomail.NewClient(s.host,
		gomail.WithPort(s.port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.username),
		gomail.WithPassword(s.password),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(15*time.Second),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

func renderBody(alert Alert) string {
	var b strings.Builder
	b.WriteString("<h3>")
	b.WriteString(html.EscapeString(alert.Subject))
	b.WriteString("</h3><pre>")
	b.WriteString(html.EscapeString(alert.Body))
	b.WriteString("</pre>")
	return b.String()
}
