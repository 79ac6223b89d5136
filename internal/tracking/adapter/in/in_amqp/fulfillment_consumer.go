package in_amqp

import (
	"context"
	"encoding/json"

	amqp "github.com/rabbitmq/amqp091-go"

	"deliverytrack/internal/shared/logger"
	"deliverytrack/internal/shared/mq"
	"deliverytrack/internal/tracking/application/ports/in"
)

// FulfillmentRequestMessage — запрос commerce-подсистемы на исполнение заказа
type FulfillmentRequestMessage struct {
	OrderID    string  `json:"order_id"`
	PickupLat  float64 `json:"pickup_lat"`
	PickupLng  float64 `json:"pickup_lng"`
	DropoffLat float64 `json:"dropoff_lat"`
	DropoffLng float64 `json:"dropoff_lng"`
}

// FulfillmentConsumer слушает delivery.fulfillment_requested и создает доставки
type FulfillmentConsumer struct {
	mqConn           *mq.RabbitMQ
	createDeliveryUC in.CreateDeliveryUseCase
	log              *logger.Logger
}

// NewFulfillmentConsumer создает новый consumer
func NewFulfillmentConsumer(
	mqConn *mq.RabbitMQ,
	createDeliveryUC in.CreateDeliveryUseCase,
	log *logger.Logger,
) *FulfillmentConsumer {
	return &FulfillmentConsumer{
		mqConn:           mqConn,
		createDeliveryUC: createDeliveryUC,
		log:              log,
	}
}

// Start запускает consumer очереди fulfillment-запросов
func (c *FulfillmentConsumer) Start(ctx context.Context) error {
	return c.mqConn.Consume(ctx, mq.QueueFulfillmentRequested, "tracking-fulfillment", c.handleMessage)
}

func (c *FulfillmentConsumer) handleMessage(delivery amqp.Delivery) {
	var msg FulfillmentRequestMessage
	if err := json.Unmarshal(delivery.Body, &msg); err != nil {
		c.log.Error(logger.Entry{
			Action:  "fulfillment_parse_failed",
			Message: err.Error(),
			Error:   &logger.ErrObj{Msg: err.Error()},
			Additional: map[string]any{
				"raw": string(delivery.Body),
			},
		})
		return
	}

	if msg.OrderID == "" {
		c.log.Warn(logger.Entry{
			Action:  "fulfillment_missing_order_id",
			Message: "fulfillment request without order_id skipped",
		})
		return
	}

	output, err := c.createDeliveryUC.Execute(context.Background(), in.CreateDeliveryInput{
		OrderID:    msg.OrderID,
		PickupLat:  msg.PickupLat,
		PickupLng:  msg.PickupLng,
		DropoffLat: msg.DropoffLat,
		DropoffLng: msg.DropoffLng,
	})
	if err != nil {
		c.log.Error(logger.Entry{
			Action:  "fulfillment_create_failed",
			Message: err.Error(),
			Error:   &logger.ErrObj{Msg: err.Error()},
			Additional: map[string]any{
				"order_id": msg.OrderID,
			},
		})
		return
	}

	c.log.Info(logger.Entry{
		Action:     "fulfillment_delivery_created",
		Message:    "delivery created from fulfillment request",
		DeliveryID: output.DeliveryID,
		Additional: map[string]any{
			"order_id": msg.OrderID,
		},
	})
}
