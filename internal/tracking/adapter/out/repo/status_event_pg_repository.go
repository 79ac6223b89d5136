package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"deliverytrack/internal/shared/logger"
	"deliverytrack/internal/tracking/domain"
)

// StatusEventPgRepository — чтение append-only журнала статусов.
// Записи создаются в транзакции DeliveryPgRepository.Transition.
type StatusEventPgRepository struct {
	pool *pgxpool.Pool
	log  *logger.Logger
}

// NewStatusEventPgRepository создает новый экземпляр репозитория
func NewStatusEventPgRepository(pool *pgxpool.Pool, log *logger.Logger) *StatusEventPgRepository {
	return &StatusEventPgRepository{
		pool: pool,
		log:  log,
	}
}

// ListByDelivery возвращает события по возрастанию occurred_at
func (r *StatusEventPgRepository) ListByDelivery(ctx context.Context, deliveryID string, since *time.Time) ([]domain.StatusEvent, error) {
	query := `
		SELECT id, delivery_id, from_status, to_status, occurred_at,
		       latitude, longitude, actor_id, metadata
		FROM status_events
		WHERE delivery_id = $1 AND ($2::timestamptz IS NULL OR occurred_at >= $2)
		ORDER BY occurred_at ASC
	`

	rows, err := r.pool.Query(ctx, query, deliveryID, since)
	if err != nil {
		return nil, fmt.Errorf("query status events: %w", err)
	}
	defer rows.Close()

	var events []domain.StatusEvent
	for rows.Next() {
		var e domain.StatusEvent
		var lat, lng *float64
		if err := rows.Scan(
			&e.ID,
			&e.DeliveryID,
			&e.FromStatus,
			&e.ToStatus,
			&e.OccurredAt,
			&lat,
			&lng,
			&e.ActorID,
			&e.Metadata,
		); err != nil {
			return nil, fmt.Errorf("scan status event: %w", err)
		}
		if lat != nil && lng != nil {
			e.Coords = &domain.Coordinate{Latitude: *lat, Longitude: *lng}
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate status events: %w", err)
	}

	return events, nil
}
