package out

import (
	"context"

	"deliverytrack/internal/tracking/domain"
)

// GeocodeCache — кэш результатов геокодирования.
// Кэшируется и отрицательный результат ("не найдено"), чтобы не долбить провайдера.
type GeocodeCache interface {
	// Get возвращает (coord, found, ok): ok=false — промах кэша
	Get(ctx context.Context, address string) (coord *domain.Coordinate, found bool, ok bool)

	// Put сохраняет результат; coord==nil означает "адрес не найден"
	Put(ctx context.Context, address string, coord *domain.Coordinate)
}
