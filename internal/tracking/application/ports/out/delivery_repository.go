package out

import (
	"context"

	"deliverytrack/internal/tracking/domain"
)

// DeliveryRepository — интерфейс репозитория для работы с доставками
type DeliveryRepository interface {
	// Create создает новую доставку
	Create(ctx context.Context, delivery *domain.Delivery) error

	// FindByID возвращает доставку по ID (ErrDeliveryNotFound если нет)
	FindByID(ctx context.Context, deliveryID string) (*domain.Delivery, error)

	// FindByOrderID возвращает доставку по заказу (ErrDeliveryNotFound если нет)
	FindByOrderID(ctx context.Context, orderID string) (*domain.Delivery, error)

	// Transition атомарно применяет переход статуса: в одной транзакции
	// добавляет StatusEvent и обновляет status + last_updated_at доставки
	// (и courier_id, если courierID != nil — для назначения курьера).
	// UPDATE условный по event.FromStatus — проигравший конкурентный переход
	// получает ErrIllegalTransition, частичных записей не остается.
	Transition(ctx context.Context, event *domain.StatusEvent, courierID *string) (*domain.Delivery, error)
}
