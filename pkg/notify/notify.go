// Package notify delivers escalation alerts to the site operator.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/wneessen/go-mail"
)

// Escalation describes a visitor handoff to be signalled to a human agent.
type Escalation struct {
	ConversationID string
	VisitorMessage string
	RequestedAt    time.Time
}

// Notifier delivers an escalation alert.
type Notifier interface {
	Send(ctx context.Context, esc Escalation) error
}

// SMTPConfig holds the transactional mail settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       string
}

// Complete reports whether every field required for a send is present.
func (c SMTPConfig) Complete() bool {
	return c.Host != "" && c.Port != 0 && c.Username != "" &&
		c.Password != "" && c.From != "" && c.To != ""
}

// SMTPNotifier implements Notifier over SMTP.
type SMTPNotifier struct {
	cfg SMTPConfig
}

// NewSMTP creates a new SMTPNotifier.
func NewSMTP(cfg SMTPConfig) *SMTPNotifier {
	return &SMTPNotifier{cfg: cfg}
}

// Send emails the escalation to the configured recipient. An incomplete
// configuration skips the send with a warning instead of failing, so a
// partially configured deployment still answers chat turns.
func (n *SMTPNotifier) Send(ctx context.Context, esc Escalation) error {
	if !n.cfg.Complete() {
		slog.Warn("escalation email skipped: incomplete SMTP configuration",
			"conversation_id", esc.ConversationID)
		return nil
	}

	msg := mail.NewMsg()
	if err := msg.From(n.cfg.From); err != nil {
		return fmt.Errorf("invalid from address: %w", err)
	}
	if err := msg.To(n.cfg.To); err != nil {
		return fmt.Errorf("invalid to address: %w", err)
	}
	msg.Subject(fmt.Sprintf("Chat visitor requests a human agent (conversation %s)", esc.ConversationID))
	msg.SetBodyString(mail.TypeTextPlain, fmt.Sprintf(
		"A website visitor asked to talk to a human agent.\n\n"+
			"Conversation: %s\n"+
			"Requested at: %s\n"+
			"Last visitor message:\n%s\n",
		esc.ConversationID,
		esc.RequestedAt.Format(time.RFC3339),
		esc.VisitorMessage,
	))

	client, err := mail.NewClient(n.cfg.Host,
		mail.WithPort(n.cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(n.cfg.Username),
		mail.WithPassword(n.cfg.Password),
	)
	if err != nil {
		return fmt.Errorf("failed to build smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("failed to send escalation email: %w", err)
	}
	return nil
}

// Noop discards escalations. Used in dev mode when no SMTP block is configured.
type Noop struct{}

// Send logs the escalation and drops it.
func (Noop) Send(ctx context.Context, esc Escalation) error {
	slog.Info("escalation notification (noop)", "conversation_id", esc.ConversationID)
	return nil
}
