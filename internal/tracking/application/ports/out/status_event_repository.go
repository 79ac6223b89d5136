package out

import (
	"context"
	"time"

	"deliverytrack/internal/tracking/domain"
)

// StatusEventRepository — интерфейс чтения append-only журнала статусов.
// Запись событий идет через DeliveryRepository.Transition (атомарно со сменой статуса).
type StatusEventRepository interface {
	// ListByDelivery возвращает события по возрастанию occurred_at
	ListByDelivery(ctx context.Context, deliveryID string, since *time.Time) ([]domain.StatusEvent, error)
}
