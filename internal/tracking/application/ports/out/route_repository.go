package out

import (
	"context"

	"deliverytrack/internal/tracking/domain"
)

// RouteRepository — интерфейс хранилища маршрутов
type RouteRepository interface {
	// Put сохраняет маршрут доставки, заменяя прежнюю запись целиком
	// (геометрия никогда не патчится по месту)
	Put(ctx context.Context, route *domain.Route) error

	// FindByDelivery возвращает маршрут доставки; nil если маршрута нет
	FindByDelivery(ctx context.Context, deliveryID string) (*domain.Route, error)

	// SetActualDuration фиксирует фактическую длительность после delivered
	SetActualDuration(ctx context.Context, deliveryID string, seconds int) error
}
