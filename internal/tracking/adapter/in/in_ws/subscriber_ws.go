package in_ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"deliverytrack/internal/shared/logger"
	"deliverytrack/internal/shared/ws"
	out "deliverytrack/internal/tracking/application/ports/out"
	"deliverytrack/internal/tracking/domain"
)

// SubscriberWSHandler обрабатывает сообщения подписчиков live-трекинга:
// subscribe / unsubscribe / ping
type SubscriberWSHandler struct {
	hub          *ws.Hub
	deliveryRepo out.DeliveryRepository
	log          *logger.Logger
}

// NewSubscriberWSHandler создает обработчик и привязывает его к хабу
func NewSubscriberWSHandler(hub *ws.Hub, deliveryRepo out.DeliveryRepository, log *logger.Logger) *SubscriberWSHandler {
	h := &SubscriberWSHandler{
		hub:          hub,
		deliveryRepo: deliveryRepo,
		log:          log,
	}
	hub.SetMessageHandler(h.Handle)
	return h
}

type subscriptionMessage struct {
	DeliveryID string `json:"delivery_id"`
}

// Handle обрабатывает одно входящее сообщение сессии
func (h *SubscriberWSHandler) Handle(session *ws.Session, messageType string, data json.RawMessage) error {
	switch messageType {
	case "subscribe":
		return h.handleSubscribe(session, data)
	case "unsubscribe":
		return h.handleUnsubscribe(session, data)
	case "ping":
		return session.Send(map[string]string{"type": "pong"})
	default:
		return session.Send(map[string]string{
			"type":  "error",
			"error": fmt.Sprintf("unknown message type: %s", messageType),
		})
	}
}

func (h *SubscriberWSHandler) handleSubscribe(session *ws.Session, data json.RawMessage) error {
	var msg subscriptionMessage
	if err := json.Unmarshal(data, &msg); err != nil || msg.DeliveryID == "" {
		return session.Send(map[string]string{
			"type":  "error",
			"error": "subscribe requires delivery_id",
		})
	}

	// Подписка на несуществующую доставку отклоняется сразу
	if _, err := h.deliveryRepo.FindByID(context.Background(), msg.DeliveryID); err != nil {
		if errors.Is(err, domain.ErrDeliveryNotFound) {
			return session.Send(map[string]interface{}{
				"type":        "error",
				"error":       "delivery not found",
				"delivery_id": msg.DeliveryID,
			})
		}
		return err
	}

	h.hub.Subscribe(session, msg.DeliveryID)

	h.log.Debug(logger.Entry{
		Action:     "ws_subscribed",
		Message:    session.ID,
		DeliveryID: msg.DeliveryID,
		Additional: map[string]any{
			"user_id": session.UserID,
			"role":    session.Role,
		},
	})

	return session.Send(map[string]interface{}{
		"type":        "subscribed",
		"delivery_id": msg.DeliveryID,
	})
}

func (h *SubscriberWSHandler) handleUnsubscribe(session *ws.Session, data json.RawMessage) error {
	var msg subscriptionMessage
	if err := json.Unmarshal(data, &msg); err != nil || msg.DeliveryID == "" {
		return session.Send(map[string]string{
			"type":  "error",
			"error": "unsubscribe requires delivery_id",
		})
	}

	h.hub.Unsubscribe(session, msg.DeliveryID)

	return session.Send(map[string]interface{}{
		"type":        "unsubscribed",
		"delivery_id": msg.DeliveryID,
	})
}
