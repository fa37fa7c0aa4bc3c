package notify

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/racane123/schoolboard/pkg/clients/whatsapp"
)

// ErrNotConfigured is returned when no delivery channel is set up.
var ErrNotConfigured = errors.New("notifications are not configured")

// Notifier delivers plain-text messages to a recipient.
type Notifier interface {
	Notify(ctx context.Context, to, message string) error
}

// TextSender is the subset of the WhatsApp client used here.
type TextSender interface {
	SendText(ctx context.Context, msg whatsapp.TextMessage) (string, error)
}

// WhatsAppNotifier delivers notifications as WhatsApp text messages.
type WhatsAppNotifier struct {
	client TextSender
	logger *zap.Logger
}

// NewWhatsAppNotifier wires a notifier over the WhatsApp client.
func NewWhatsAppNotifier(client TextSender, logger *zap.Logger) *WhatsAppNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WhatsAppNotifier{client: client, logger: logger}
}

// Notify sends message to the WhatsApp number to.
func (n *WhatsAppNotifier) Notify(ctx context.Context, to, message string) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	id, err := n.client.SendText(ctxWithTimeout, whatsapp.TextMessage{To: to, Body: message})
	if err != nil {
		return err
	}
	n.logger.Info("notification sent", zap.String("to", to), zap.String("message_id", id))
	return nil
}

// Disabled is the Notifier used when no channel is configured.
type Disabled struct{}

// Notify always fails with ErrNotConfigured.
func (Disabled) Notify(context.Context, string, string) error {
	return ErrNotConfigured
}
