package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-jwt-identity/internal/application"
	"github.com/oksasatya/go-jwt-identity/pkg/mailer"
	tpl "github.com/oksasatya/go-jwt-identity/pkg/mailer/templates"
)

// ErrBadMessage marks a delivery that can never be processed; it should be
// dropped rather than requeued.
var ErrBadMessage = errors.New("bad message")

// EventHandler turns identity events into notification mail.
type EventHandler struct {
	Mail      mailer.Sender
	AppName   string
	SupportTo string
	Logger    *logrus.Logger
}

// Handle processes one message body. Send failures are returned as-is so the
// caller can requeue.
func (h *EventHandler) Handle(ctx context.Context, body []byte) error {
	var ev application.IdentityEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("%w: %v", ErrBadMessage, err)
	}
	if ev.Email == "" {
		return fmt.Errorf("%w: event %q has no email", ErrBadMessage, ev.Type)
	}

	var name string
	opts := []tpl.Option{tpl.WithTime(ev.OccurredAt), tpl.WithSupport(h.SupportTo)}
	switch ev.Type {
	case application.EventUserRegistered:
		name = tpl.Welcome
	case application.EventRoleAssigned:
		name = tpl.RoleAssigned
		opts = append(opts, tpl.WithRole(ev.Role))
	default:
		h.Logger.WithField("type", ev.Type).Debug("ignoring event")
		return nil
	}

	data := tpl.NewEmailData(h.AppName, ev.FirstName+" "+ev.LastName, ev.UserName, ev.Email, opts...)
	subject, text, html, err := tpl.Render(name, data)
	if err != nil {
		return fmt.Errorf("%w: render %s: %v", ErrBadMessage, name, err)
	}
	if err := h.Mail.Send(ctx, ev.Email, subject, text, html); err != nil {
		return fmt.Errorf("send %s: %w", name, err)
	}
	h.Logger.WithFields(logrus.Fields{"type": ev.Type, "user_id": ev.UserID}).Info("notification sent")
	return nil
}
