package in

import (
	"context"
	"iter"
	"time"

	"deliverytrack/internal/tracking/domain"
)

// DeliveryStateOutput — текущее состояние доставки для query-запроса
type DeliveryStateOutput struct {
	DeliveryID string               `json:"delivery_id"`
	OrderID    string               `json:"order_id"`
	CourierID  *string              `json:"courier_id,omitempty"`
	Status     string               `json:"status"`
	Position   domain.Position      `json:"position"`
	Route      *domain.RouteSummary `json:"route,omitempty"`
	FeeAmount  float64              `json:"fee_amount"`
}

// CurrentStateUseCase — интерфейс query use-case текущего состояния
type CurrentStateUseCase interface {
	Execute(ctx context.Context, deliveryID string) (*DeliveryStateOutput, error)
}

// RouteDetailOutput — маршрут доставки с декодированной геометрией
type RouteDetailOutput struct {
	DeliveryID               string              `json:"delivery_id"`
	DistanceMeters           int                 `json:"distance_meters"`
	EstimatedDurationSeconds int                 `json:"estimated_duration_seconds"`
	ActualDurationSeconds    *int                `json:"actual_duration_seconds,omitempty"`
	Estimated                bool                `json:"estimated"`
	Waypoints                []domain.Coordinate `json:"waypoints"`
}

// RouteDetailUseCase — интерфейс query use-case маршрута.
// (nil, nil) означает "у доставки нет сохраненного маршрута".
type RouteDetailUseCase interface {
	Execute(ctx context.Context, deliveryID string) (*RouteDetailOutput, error)
}

// HistoryOutput — история доставки: пинги и события статусов по возрастанию времени
type HistoryOutput struct {
	DeliveryID   string
	Pings        []domain.LocationPing
	StatusEvents []domain.StatusEvent
}

// PingSeq возвращает пинги как ленивую конечную повторяемую последовательность
func (h *HistoryOutput) PingSeq() iter.Seq[domain.LocationPing] {
	return func(yield func(domain.LocationPing) bool) {
		for _, p := range h.Pings {
			if !yield(p) {
				return
			}
		}
	}
}

// HistoryUseCase — интерфейс query use-case истории доставки
type HistoryUseCase interface {
	Execute(ctx context.Context, deliveryID string, since *time.Time) (*HistoryOutput, error)
}
