package usecase

import (
	"context"
	"fmt"

	"deliverytrack/internal/shared/config"
	"deliverytrack/internal/shared/logger"
	"deliverytrack/internal/shared/metrics"
	in "deliverytrack/internal/tracking/application/ports/in"
	"deliverytrack/internal/tracking/domain"
	"deliverytrack/internal/tracking/fee"
)

type feePreviewUseCase struct {
	zones *fee.Zones
	cfg   config.TrackingConfig
	log   *logger.Logger
}

func NewFeePreviewUseCase(zones *fee.Zones, cfg config.TrackingConfig, log *logger.Logger) in.FeePreviewUseCase {
	return &feePreviewUseCase{zones: zones, cfg: cfg, log: log}
}

func (uc *feePreviewUseCase) Execute(ctx context.Context, input in.FeePreviewInput) (*in.FeePreviewOutput, error) {
	if input.DistanceKm < 0 {
		return nil, fmt.Errorf("%w: distance_km must be non-negative, got %v", domain.ErrInvalidDistance, input.DistanceKm)
	}

	distanceKm := domain.Round2(input.DistanceKm)
	quote := fee.Resolve(distanceKm, uc.zones.Snapshot(), uc.cfg.FallbackFee)

	if quote.Fallback {
		metrics.FeeFallbacksTotal.Inc()
		uc.log.Error(logger.Entry{
			Action:  "fee_zone_config_empty",
			Message: "no active fee zones configured, using fixed fallback fee",
			Error:   &logger.ErrObj{Msg: domain.ErrConfigurationError.Error()},
			Additional: map[string]any{
				"fallback_fee": uc.cfg.FallbackFee,
				"distance_km":  distanceKm,
			},
		})
	}

	output := &in.FeePreviewOutput{
		Fee:          quote.Fee,
		DistanceKm:   distanceKm,
		Extrapolated: quote.Extrapolated,
		Fallback:     quote.Fallback,
		Breakdown:    quote.Breakdown(distanceKm),
	}
	if quote.Zone != nil {
		output.ZoneName = quote.Zone.Name
	}
	return output, nil
}
