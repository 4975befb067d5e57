package notifications

import (
	"context"

	"github.com/humbertoamdc/torvek-sub000/application/ports"
	"github.com/humbertoamdc/torvek-sub000/domain/events"
)

// NoopNotifier discards notifications. Used when no WebSocket endpoint is
// configured, e.g. local development.
type NoopNotifier struct{}

var _ ports.Notifier = (*NoopNotifier)(nil)

func NewNoopNotifier() *NoopNotifier {
	return &NoopNotifier{}
}

func (n *NoopNotifier) NotifyOrderStatus(context.Context, events.OrderStatusChanged) error {
	return nil
}
