package in

import (
	"context"

	"deliverytrack/internal/tracking/domain"
)

// AssignCourierInput — входные данные для назначения курьера
type AssignCourierInput struct {
	DeliveryID string `json:"delivery_id"`
	CourierID  string `json:"courier_id"`
	ActorID    string `json:"actor_id"`
}

// AssignCourierOutput — результат назначения курьера
type AssignCourierOutput struct {
	DeliveryID string              `json:"delivery_id"`
	Status     string              `json:"status"`
	Event      *domain.StatusEvent `json:"event"`
}

// AssignCourierUseCase — интерфейс use-case назначения курьера
type AssignCourierUseCase interface {
	Execute(ctx context.Context, input AssignCourierInput) (*AssignCourierOutput, error)
}
