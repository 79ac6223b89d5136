package out_amqp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"deliverytrack/internal/shared/logger"
	"deliverytrack/internal/shared/mq"
	out "deliverytrack/internal/tracking/application/ports/out"
	"deliverytrack/internal/tracking/domain"
)

// AmqpEventPublisher публикует события доставки в RabbitMQ
type AmqpEventPublisher struct {
	mq  *mq.RabbitMQ
	log *logger.Logger
}

// NewAmqpEventPublisher создает новый publisher
func NewAmqpEventPublisher(rabbit *mq.RabbitMQ, log *logger.Logger) *AmqpEventPublisher {
	return &AmqpEventPublisher{
		mq:  rabbit,
		log: log,
	}
}

// routingKeyFor сопоставляет тип события с routing key топологии
func routingKeyFor(eventType string) (string, error) {
	switch eventType {
	case domain.EventDeliveryCreated:
		return mq.QueueDeliveryCreated, nil
	case domain.EventStatusChanged:
		return mq.QueueStatusChanged, nil
	case domain.EventLocationUpdated:
		return mq.QueueLocationUpdated, nil
	}
	return "", fmt.Errorf("unknown delivery event type: %s", eventType)
}

// PublishDeliveryEvent публикует событие доставки в delivery_topic exchange
func (p *AmqpEventPublisher) PublishDeliveryEvent(ctx context.Context, eventType string, data out.DeliveryEventData) error {
	routingKey, err := routingKeyFor(eventType)
	if err != nil {
		return err
	}

	envelope := map[string]interface{}{
		"event_type":  eventType,
		"occurred_at": time.Now().UTC().Format(time.RFC3339),
		"data":        data,
	}

	body, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", eventType, err)
	}

	if err := p.mq.Publish(ctx, mq.ExchangeDeliveryTopic, routingKey, body); err != nil {
		return fmt.Errorf("publish %s: %w", eventType, err)
	}

	p.log.Debug(logger.Entry{
		Action:     "delivery_event_published",
		Message:    eventType,
		DeliveryID: data.DeliveryID,
		Additional: map[string]any{
			"routing_key": routingKey,
		},
	})

	return nil
}
