package mailer

import (
	"context"
	"errors"
	"time"

	mg "github.com/mailgun/mailgun-go/v4"
)

// Sender delivers one rendered message.
type Sender interface {
	Send(ctx context.Context, to, subject, text, html string) error
}

// Mailgun sends through the Mailgun HTTP API.
type Mailgun struct {
	Sender string
	client *mg.MailgunImpl
}

// NewMailgun builds a sender for domain. apiBase may be empty for the US
// region or mg.APIBaseEU.
func NewMailgun(domain, apiKey, sender, apiBase string) (*Mailgun, error) {
	if domain == "" || apiKey == "" || sender == "" {
		return nil, errors.New("mailgun domain, api key and sender are required")
	}
	client := mg.NewMailgun(domain, apiKey)
	if apiBase != "" {
		client.SetAPIBase(apiBase)
	}
	return &Mailgun{Sender: sender, client: client}, nil
}

// Send sends a text message with an optional HTML body.
func (m *Mailgun) Send(ctx context.Context, to, subject, text, html string) error {
	msg := m.client.NewMessage(m.Sender, subject, text, to)
	if html != "" {
		msg.SetHtml(html)
	}
	c, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	_, _, err := m.client.Send(c, msg)
	return err
}

var _ Sender = (*Mailgun)(nil)
