package out

import "context"

// DeliveryNotification — событие для live-подписчиков доставки
type DeliveryNotification struct {
	Type       string                 `json:"type"` // position | status
	DeliveryID string                 `json:"delivery_id"`
	Data       map[string]interface{} `json:"data,omitempty"`
}

// DeliveryNotifier — интерфейс fanout-уведомлений подписчикам.
// Fire-and-forget относительно write path: сбой доставки одному подписчику
// никогда не распространяется на вызывающего.
type DeliveryNotifier interface {
	// PublishToDelivery отправляет событие всем активным подписчикам доставки
	PublishToDelivery(ctx context.Context, deliveryID string, notification DeliveryNotification)
}
