package in

import (
	"context"

	"deliverytrack/internal/tracking/domain"
)

// GeocodeOutput — результат геокодирования адреса.
// Coordinate == nil означает "адрес не найден" — это ожидаемый исход, не ошибка.
type GeocodeOutput struct {
	Coordinate *domain.Coordinate `json:"coordinate"`
	Found      bool               `json:"found"`
}

// GeocodeUseCase — интерфейс best-effort геокодирования
type GeocodeUseCase interface {
	Execute(ctx context.Context, address string) (*GeocodeOutput, error)
}
