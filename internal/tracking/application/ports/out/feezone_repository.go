package out

import (
	"context"

	"deliverytrack/internal/tracking/domain"
)

// FeeZoneRepository — интерфейс чтения конфигурации зон (admin-managed)
type FeeZoneRepository interface {
	// ListAll возвращает все зоны, включая неактивные
	ListAll(ctx context.Context) ([]domain.FeeZone, error)
}
