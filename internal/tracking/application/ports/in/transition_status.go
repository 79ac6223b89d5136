package in

import (
	"context"

	"deliverytrack/internal/tracking/domain"
)

// TransitionStatusInput — входные данные для явного перехода статуса
type TransitionStatusInput struct {
	DeliveryID string   `json:"delivery_id"`
	ToStatus   string   `json:"to_status"`
	ActorID    string   `json:"actor_id"`
	Latitude   *float64 `json:"latitude,omitempty"`
	Longitude  *float64 `json:"longitude,omitempty"`
	Metadata   *string  `json:"metadata,omitempty"`
}

// TransitionStatusOutput — результат перехода статуса
type TransitionStatusOutput struct {
	DeliveryID string              `json:"delivery_id"`
	Status     string              `json:"status"`
	Event      *domain.StatusEvent `json:"event"`
}

// TransitionStatusUseCase — интерфейс use-case перехода статуса
type TransitionStatusUseCase interface {
	Execute(ctx context.Context, input TransitionStatusInput) (*TransitionStatusOutput, error)
}
