package amqp

import (
	"context"
	"log/slog"

	"cardtrack/internal/notify"
)

// BusNotifier delivers notifications over the AMQP bus. Publishing is
// best-effort: a failed publish is logged and the notification still goes to
// the local log, so a broker outage never blocks a mutation.
type BusNotifier struct {
	client *Client
}

var _ notify.Notifier = (*BusNotifier)(nil)

func NewBusNotifier(client *Client) *BusNotifier {
	return &BusNotifier{client: client}
}

func (n *BusNotifier) Notify(ctx context.Context, title, message string, severity notify.Severity) {
	notify.LogNotifier{}.Notify(ctx, title, message, severity)

	msg := NewNotificationMessage(title, message, string(severity))
	if err := n.client.PublishNotification(ctx, msg); err != nil {
		slog.WarnContext(ctx, "Dropping bus notification", "error", err, "title", title)
	}
}
