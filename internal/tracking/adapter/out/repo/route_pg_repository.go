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

// RoutePgRepository — PostgreSQL репозиторий для маршрутов доставок
type RoutePgRepository struct {
	pool *pgxpool.Pool
	log  *logger.Logger
}

// NewRoutePgRepository создает новый экземпляр репозитория
func NewRoutePgRepository(pool *pgxpool.Pool, log *logger.Logger) *RoutePgRepository {
	return &RoutePgRepository{
		pool: pool,
		log:  log,
	}
}

// Put сохраняет маршрут, заменяя прежнюю запись доставки целиком
func (r *RoutePgRepository) Put(ctx context.Context, route *domain.Route) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin route tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx,
		`DELETE FROM delivery_routes WHERE delivery_id = $1`, route.DeliveryID); err != nil {
		return fmt.Errorf("delete old route: %w", err)
	}

	query := `
		INSERT INTO delivery_routes (
			id, delivery_id,
			pickup_latitude, pickup_longitude, dropoff_latitude, dropoff_longitude,
			route_geometry, distance_meters, estimated_duration_seconds,
			actual_duration_seconds, provider_route_id, estimated,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14
		)
	`

	if _, err := tx.Exec(ctx, query,
		route.ID,
		route.DeliveryID,
		route.Pickup.Latitude,
		route.Pickup.Longitude,
		route.Dropoff.Latitude,
		route.Dropoff.Longitude,
		route.Geometry,
		route.DistanceMeters,
		route.EstimatedDurationSeconds,
		route.ActualDurationSeconds,
		route.ProviderRouteID,
		route.Estimated,
		route.CreatedAt,
		route.UpdatedAt,
	); err != nil {
		r.log.Error(logger.Entry{
			Action:     "db_put_route_failed",
			Message:    err.Error(),
			DeliveryID: route.DeliveryID,
			Error:      &logger.ErrObj{Msg: err.Error()},
		})
		return fmt.Errorf("insert route: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit route tx: %w", err)
	}

	return nil
}

// FindByDelivery возвращает маршрут доставки; nil если маршрута нет
func (r *RoutePgRepository) FindByDelivery(ctx context.Context, deliveryID string) (*domain.Route, error) {
	query := `
		SELECT
			id, delivery_id,
			pickup_latitude, pickup_longitude, dropoff_latitude, dropoff_longitude,
			route_geometry, distance_meters, estimated_duration_seconds,
			actual_duration_seconds, provider_route_id, estimated,
			created_at, updated_at
		FROM delivery_routes
		WHERE delivery_id = $1
	`

	var rt domain.Route
	var geometry *string
	err := r.pool.QueryRow(ctx, query, deliveryID).Scan(
		&rt.ID,
		&rt.DeliveryID,
		&rt.Pickup.Latitude,
		&rt.Pickup.Longitude,
		&rt.Dropoff.Latitude,
		&rt.Dropoff.Longitude,
		&geometry,
		&rt.DistanceMeters,
		&rt.EstimatedDurationSeconds,
		&rt.ActualDurationSeconds,
		&rt.ProviderRouteID,
		&rt.Estimated,
		&rt.CreatedAt,
		&rt.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan route: %w", err)
	}
	if geometry != nil {
		rt.Geometry = *geometry
	}

	return &rt, nil
}

// SetActualDuration фиксирует фактическую длительность доставки
func (r *RoutePgRepository) SetActualDuration(ctx context.Context, deliveryID string, seconds int) error {
	query := `
		UPDATE delivery_routes
		SET actual_duration_seconds = $1, updated_at = $2
		WHERE delivery_id = $3
	`

	tag, err := r.pool.Exec(ctx, query, seconds, time.Now().UTC(), deliveryID)
	if err != nil {
		r.log.Error(logger.Entry{
			Action:     "db_set_actual_duration_failed",
			Message:    err.Error(),
			DeliveryID: deliveryID,
			Error:      &logger.ErrObj{Msg: err.Error()},
		})
		return fmt.Errorf("update actual duration: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Доставка могла создаться без маршрута (сбой провайдера и записи)
		r.log.Warn(logger.Entry{
			Action:     "actual_duration_no_route",
			Message:    "no route row to record actual duration",
			DeliveryID: deliveryID,
		})
	}

	return nil
}
