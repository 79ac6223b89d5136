package out_ws

import (
	"context"

	"deliverytrack/internal/shared/logger"
	"deliverytrack/internal/shared/ws"
	out "deliverytrack/internal/tracking/application/ports/out"
)

// WsDeliveryNotifier рассылает события доставки подписчикам через WebSocket hub
type WsDeliveryNotifier struct {
	hub *ws.Hub
	log *logger.Logger
}

// NewWsDeliveryNotifier создает новый notifier
func NewWsDeliveryNotifier(hub *ws.Hub, log *logger.Logger) *WsDeliveryNotifier {
	return &WsDeliveryNotifier{
		hub: hub,
		log: log,
	}
}

// PublishToDelivery отправляет событие всем подписчикам доставки.
// Fire-and-forget: медленный подписчик теряет старые события, но
// write path доставки не блокируется и не падает.
func (n *WsDeliveryNotifier) PublishToDelivery(ctx context.Context, deliveryID string, notification out.DeliveryNotification) {
	n.hub.PublishToDelivery(deliveryID, notification)

	n.log.Debug(logger.Entry{
		Action:     "delivery_fanout",
		Message:    notification.Type,
		DeliveryID: deliveryID,
		Additional: map[string]any{
			"subscribers": n.hub.SubscriberCount(deliveryID),
		},
	})
}
