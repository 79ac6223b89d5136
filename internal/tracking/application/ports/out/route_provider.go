package out

import (
	"context"

	"deliverytrack/internal/tracking/domain"
)

// RouteInfo — результат одного вызова внешнего routing-провайдера
type RouteInfo struct {
	DistanceMeters  int    `json:"distance_meters"`
	DurationSeconds int    `json:"duration_seconds"`
	Geometry        string `json:"geometry"`
	ProviderRouteID string `json:"provider_route_id"`
}

// RouteProvider — capability-интерфейс внешнего routing/geocoding провайдера.
// Конкретная реализация инжектируется, что позволяет подменять ее в тестах.
type RouteProvider interface {
	// ComputeRoute делает ровно один вызов провайдера; ошибка/таймаут
	// оборачивает domain.ErrRouteUnavailable. Retry — ответственность вызывающего.
	ComputeRoute(ctx context.Context, origin, destination domain.Coordinate, mode string) (*RouteInfo, error)

	// Geocode возвращает (nil, nil) когда адрес не найден:
	// "нет результата" — ожидаемый исход, не сбой
	Geocode(ctx context.Context, address string) (*domain.Coordinate, error)
}
