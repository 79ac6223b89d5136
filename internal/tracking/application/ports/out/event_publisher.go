package out

import "context"

// DeliveryEventData — данные события доставки для бэкенд-потребителей
type DeliveryEventData struct {
	DeliveryID     string                 `json:"delivery_id"`
	OrderID        string                 `json:"order_id,omitempty"`
	CourierID      *string                `json:"courier_id,omitempty"`
	Status         string                 `json:"status,omitempty"`
	AdditionalData map[string]interface{} `json:"additional_data,omitempty"`
}

// EventPublisher — интерфейс публикации событий доставки в RabbitMQ
type EventPublisher interface {
	// PublishDeliveryEvent публикует событие доставки
	// eventType: DELIVERY_CREATED | STATUS_CHANGED | LOCATION_UPDATED
	PublishDeliveryEvent(ctx context.Context, eventType string, data DeliveryEventData) error
}
