package out

import (
	"context"
	"time"

	"deliverytrack/internal/tracking/domain"
)

// PingRepository — интерфейс append-only хранилища GPS-пингов
type PingRepository interface {
	// Create добавляет пинг; ранее записанные пинги никогда не мутируются
	Create(ctx context.Context, ping *domain.LocationPing) error

	// Latest возвращает пинг с максимальным captured_at
	// (received_at — tiebreak); nil если пингов нет
	Latest(ctx context.Context, deliveryID string) (*domain.LocationPing, error)

	// ListSince возвращает пинги доставки по возрастанию captured_at
	ListSince(ctx context.Context, deliveryID string, since *time.Time) ([]domain.LocationPing, error)
}
