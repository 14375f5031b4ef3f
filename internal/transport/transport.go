// Package transport abstracts the outbound email provider behind a single
// Mailer interface so the dispatch engine does not care whether mail leaves
// through SES or SparkPost.
package transport

import (
	"context"
	"fmt"

	appconfig "github.com/ignite/campaigner/internal/config"
)

// Message is a fully rendered, single-recipient email ready for handoff to
// a provider. Personalization has already been applied by the caller.
type Message struct {
	To        string
	FromEmail string
	FromName  string
	ReplyTo   string
	Subject   string
	HTML      string
	Text      string
	// Headers carries extra SMTP headers such as List-Unsubscribe.
	Headers map[string]string
	// Metadata is attached as provider tags for downstream event correlation.
	Metadata map[string]string
}

// Mailer sends a single rendered message to one recipient.
type Mailer interface {
	Send(ctx context.Context, msg *Message) error
}

// Provider names accepted by the EMAIL_PROVIDER setting.
const (
	ProviderSES       = "ses"
	ProviderSparkPost = "sparkpost"
)

// ErrUnknownProvider is returned when the configured provider name does not
// match any supported transport.
type ErrUnknownProvider struct {
	Provider string
}

func (e *ErrUnknownProvider) Error() string {
	return fmt.Sprintf("unknown email provider %q", e.Provider)
}

// NewMailer builds the mailer named by cfg.Email.Provider.
func NewMailer(ctx context.Context, cfg *appconfig.Config) (Mailer, error) {
	switch cfg.Email.Provider {
	case ProviderSES:
		return NewSESMailer(ctx, cfg.SES)
	case ProviderSparkPost:
		return NewSparkPostMailer(cfg.SparkPost)
	default:
		return nil, &ErrUnknownProvider{Provider: cfg.Email.Provider}
	}
}
