package mq

import (
	"fmt"

	"deliverytrack/internal/shared/logger"
)

// Queues бэкенд-потребителей движка трекинга
const (
	QueueDeliveryCreated      = "delivery.created"
	QueueStatusChanged        = "delivery.status_changed"
	QueueLocationUpdated      = "delivery.location_updated"
	QueueFulfillmentRequested = "delivery.fulfillment_requested"
	ExchangeDeliveryTopic     = "delivery_topic"
)

// SetupTopology создает exchange и очереди движка трекинга
func SetupTopology(mq *RabbitMQ, log *logger.Logger) error {
	ch := mq.Channel()
	if ch == nil {
		return fmt.Errorf("rabbitmq channel not available")
	}

	if err := ch.ExchangeDeclare(
		ExchangeDeliveryTopic, // name
		"topic",               // type
		true,                  // durable
		false,                 // auto-deleted
		false,                 // internal
		false,                 // no-wait
		nil,                   // args
	); err != nil {
		return fmt.Errorf("declare %s: %w", ExchangeDeliveryTopic, err)
	}

	queues := []string{
		QueueDeliveryCreated,
		QueueStatusChanged,
		QueueLocationUpdated,
		QueueFulfillmentRequested,
	}
	for _, q := range queues {
		if _, err := ch.QueueDeclare(q, true, false, false, false, nil); err != nil {
			return fmt.Errorf("declare queue %s: %w", q, err)
		}
		// routing key совпадает с именем очереди
		if err := ch.QueueBind(q, q, ExchangeDeliveryTopic, false, nil); err != nil {
			return fmt.Errorf("bind queue %s: %w", q, err)
		}
	}

	log.Info(logger.Entry{
		Action:  "topology_setup_complete",
		Message: "all exchanges and queues created",
	})

	return nil
}
