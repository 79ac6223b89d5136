package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"deliverytrack/internal/shared/logger"
	"deliverytrack/internal/tracking/domain"
)

// PingPgRepository — PostgreSQL репозиторий для GPS-пингов
type PingPgRepository struct {
	pool *pgxpool.Pool
	log  *logger.Logger
}

// NewPingPgRepository создает новый экземпляр репозитория
func NewPingPgRepository(pool *pgxpool.Pool, log *logger.Logger) *PingPgRepository {
	return &PingPgRepository{
		pool: pool,
		log:  log,
	}
}

const pingColumns = `
	id, delivery_id, courier_id, latitude, longitude,
	heading_degrees, speed, accuracy_meters, captured_at, received_at
`

// Create добавляет пинг (append-only)
func (r *PingPgRepository) Create(ctx context.Context, ping *domain.LocationPing) error {
	query := `
		INSERT INTO location_pings (
			id, delivery_id, courier_id, latitude, longitude,
			heading_degrees, speed, accuracy_meters, captured_at, received_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10
		)
	`

	_, err := r.pool.Exec(ctx, query,
		ping.ID,
		ping.DeliveryID,
		ping.CourierID,
		ping.Latitude,
		ping.Longitude,
		ping.HeadingDegrees,
		ping.Speed,
		ping.AccuracyMeters,
		ping.CapturedAt,
		ping.ReceivedAt,
	)
	if err != nil {
		r.log.Error(logger.Entry{
			Action:     "db_create_ping_failed",
			Message:    err.Error(),
			DeliveryID: ping.DeliveryID,
			Error:      &logger.ErrObj{Msg: err.Error()},
		})
		return fmt.Errorf("insert ping: %w", err)
	}

	return nil
}

// Latest возвращает последний пинг по captured_at (received_at — tiebreak
// для одинакового captured_at); nil если пингов нет
func (r *PingPgRepository) Latest(ctx context.Context, deliveryID string) (*domain.LocationPing, error) {
	query := `
		SELECT ` + pingColumns + `
		FROM location_pings
		WHERE delivery_id = $1
		ORDER BY captured_at DESC, received_at DESC
		LIMIT 1
	`

	ping, err := scanPing(r.pool.QueryRow(ctx, query, deliveryID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return ping, nil
}

// ListSince возвращает пинги доставки по возрастанию captured_at
func (r *PingPgRepository) ListSince(ctx context.Context, deliveryID string, since *time.Time) ([]domain.LocationPing, error) {
	query := `
		SELECT ` + pingColumns + `
		FROM location_pings
		WHERE delivery_id = $1 AND ($2::timestamptz IS NULL OR captured_at >= $2)
		ORDER BY captured_at ASC, received_at ASC
	`

	rows, err := r.pool.Query(ctx, query, deliveryID, since)
	if err != nil {
		return nil, fmt.Errorf("query pings: %w", err)
	}
	defer rows.Close()

	var pings []domain.LocationPing
	for rows.Next() {
		ping, err := scanPing(rows)
		if err != nil {
			return nil, err
		}
		pings = append(pings, *ping)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pings: %w", err)
	}

	return pings, nil
}

func scanPing(row pgx.Row) (*domain.LocationPing, error) {
	var p domain.LocationPing
	err := row.Scan(
		&p.ID,
		&p.DeliveryID,
		&p.CourierID,
		&p.Latitude,
		&p.Longitude,
		&p.HeadingDegrees,
		&p.Speed,
		&p.AccuracyMeters,
		&p.CapturedAt,
		&p.ReceivedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan ping: %w", err)
	}
	return &p, nil
}
