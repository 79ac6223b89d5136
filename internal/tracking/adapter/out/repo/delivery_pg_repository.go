package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"deliverytrack/internal/shared/logger"
	"deliverytrack/internal/tracking/domain"
)

// DeliveryPgRepository — PostgreSQL репозиторий для работы с доставками
type DeliveryPgRepository struct {
	pool *pgxpool.Pool
	log  *logger.Logger
}

// NewDeliveryPgRepository создает новый экземпляр репозитория
func NewDeliveryPgRepository(pool *pgxpool.Pool, log *logger.Logger) *DeliveryPgRepository {
	return &DeliveryPgRepository{
		pool: pool,
		log:  log,
	}
}

const deliveryColumns = `
	id, order_id, courier_id,
	pickup_latitude, pickup_longitude, dropoff_latitude, dropoff_longitude,
	status, fee_amount, fee_zone_id, fee_estimated,
	created_at, last_updated_at
`

// Create создает новую доставку
func (r *DeliveryPgRepository) Create(ctx context.Context, delivery *domain.Delivery) error {
	query := `
		INSERT INTO deliveries (
			id, order_id, courier_id,
			pickup_latitude, pickup_longitude, dropoff_latitude, dropoff_longitude,
			status, fee_amount, fee_zone_id, fee_estimated,
			created_at, last_updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13
		)
	`

	_, err := r.pool.Exec(ctx, query,
		delivery.ID,
		delivery.OrderID,
		delivery.CourierID,
		delivery.Pickup.Latitude,
		delivery.Pickup.Longitude,
		delivery.Dropoff.Latitude,
		delivery.Dropoff.Longitude,
		delivery.Status,
		delivery.FeeAmount,
		delivery.FeeZoneID,
		delivery.FeeEstimated,
		delivery.CreatedAt,
		delivery.LastUpdatedAt,
	)
	if err != nil {
		r.log.Error(logger.Entry{
			Action:     "db_create_delivery_failed",
			Message:    err.Error(),
			DeliveryID: delivery.ID,
			Error:      &logger.ErrObj{Msg: err.Error()},
		})
		return fmt.Errorf("insert delivery: %w", err)
	}

	return nil
}

// FindByID возвращает доставку по ID
func (r *DeliveryPgRepository) FindByID(ctx context.Context, deliveryID string) (*domain.Delivery, error) {
	query := `SELECT ` + deliveryColumns + ` FROM deliveries WHERE id = $1`
	return r.scanDelivery(r.pool.QueryRow(ctx, query, deliveryID))
}

// FindByOrderID возвращает доставку по заказу
func (r *DeliveryPgRepository) FindByOrderID(ctx context.Context, orderID string) (*domain.Delivery, error) {
	query := `SELECT ` + deliveryColumns + ` FROM deliveries WHERE order_id = $1`
	return r.scanDelivery(r.pool.QueryRow(ctx, query, orderID))
}

// Transition атомарно применяет переход статуса: событие и смена статуса
// (и courier_id при назначении) пишутся в одной транзакции. Условный UPDATE
// по from_status отбивает проигравший конкурентный переход.
func (r *DeliveryPgRepository) Transition(ctx context.Context, event *domain.StatusEvent, courierID *string) (*domain.Delivery, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transition tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	updateQuery := `
		UPDATE deliveries
		SET status = $1,
		    courier_id = COALESCE($2, courier_id),
		    last_updated_at = $3
		WHERE id = $4 AND status = $5
		RETURNING ` + deliveryColumns

	var lat, lng *float64
	if event.Coords != nil {
		lat = &event.Coords.Latitude
		lng = &event.Coords.Longitude
	}

	delivery, err := r.scanDelivery(tx.QueryRow(ctx, updateQuery,
		event.ToStatus,
		courierID,
		event.OccurredAt,
		event.DeliveryID,
		event.FromStatus,
	))
	if err != nil {
		if errors.Is(err, domain.ErrDeliveryNotFound) {
			// Доставки нет либо статус уже ушел из from_status
			return nil, fmt.Errorf("%w: %s is not in status %s",
				domain.ErrIllegalTransition, event.DeliveryID, event.FromStatus)
		}
		return nil, err
	}

	insertQuery := `
		INSERT INTO status_events (
			id, delivery_id, from_status, to_status, occurred_at,
			latitude, longitude, actor_id, metadata
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9
		)
	`

	if _, err := tx.Exec(ctx, insertQuery,
		event.ID,
		event.DeliveryID,
		event.FromStatus,
		event.ToStatus,
		event.OccurredAt,
		lat,
		lng,
		event.ActorID,
		event.Metadata,
	); err != nil {
		r.log.Error(logger.Entry{
			Action:     "db_insert_status_event_failed",
			Message:    err.Error(),
			DeliveryID: event.DeliveryID,
			Error:      &logger.ErrObj{Msg: err.Error()},
		})
		return nil, fmt.Errorf("insert status event: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transition tx: %w", err)
	}

	return delivery, nil
}

func (r *DeliveryPgRepository) scanDelivery(row pgx.Row) (*domain.Delivery, error) {
	var d domain.Delivery
	err := row.Scan(
		&d.ID,
		&d.OrderID,
		&d.CourierID,
		&d.Pickup.Latitude,
		&d.Pickup.Longitude,
		&d.Dropoff.Latitude,
		&d.Dropoff.Longitude,
		&d.Status,
		&d.FeeAmount,
		&d.FeeZoneID,
		&d.FeeEstimated,
		&d.CreatedAt,
		&d.LastUpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrDeliveryNotFound
		}
		return nil, fmt.Errorf("scan delivery: %w", err)
	}
	return &d, nil
}
