package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"deliverytrack/internal/shared/logger"
	"deliverytrack/internal/tracking/domain"
)

// FeeZonePgRepository — чтение admin-managed конфигурации зон
type FeeZonePgRepository struct {
	pool *pgxpool.Pool
	log  *logger.Logger
}

// NewFeeZonePgRepository создает новый экземпляр репозитория
func NewFeeZonePgRepository(pool *pgxpool.Pool, log *logger.Logger) *FeeZonePgRepository {
	return &FeeZonePgRepository{
		pool: pool,
		log:  log,
	}
}

// ListAll возвращает все зоны, включая неактивные
func (r *FeeZonePgRepository) ListAll(ctx context.Context) ([]domain.FeeZone, error) {
	query := `
		SELECT id, name, min_distance_km, max_distance_km, base_fee, per_km_rate, is_active
		FROM delivery_zones
		ORDER BY min_distance_km ASC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query fee zones: %w", err)
	}
	defer rows.Close()

	var zones []domain.FeeZone
	for rows.Next() {
		var z domain.FeeZone
		if err := rows.Scan(
			&z.ID,
			&z.Name,
			&z.MinDistanceKm,
			&z.MaxDistanceKm,
			&z.BaseFee,
			&z.PerKmRate,
			&z.IsActive,
		); err != nil {
			return nil, fmt.Errorf("scan fee zone: %w", err)
		}
		zones = append(zones, z)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate fee zones: %w", err)
	}

	return zones, nil
}
