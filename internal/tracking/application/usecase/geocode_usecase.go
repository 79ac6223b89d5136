package usecase

import (
	"context"
	"fmt"
	"strings"

	"deliverytrack/internal/shared/logger"
	in "deliverytrack/internal/tracking/application/ports/in"
	out "deliverytrack/internal/tracking/application/ports/out"
)

type geocodeUseCase struct {
	cache    out.GeocodeCache
	provider out.RouteProvider
	log      *logger.Logger
}

func NewGeocodeUseCase(cache out.GeocodeCache, provider out.RouteProvider, log *logger.Logger) in.GeocodeUseCase {
	return &geocodeUseCase{cache: cache, provider: provider, log: log}
}

func (uc *geocodeUseCase) Execute(ctx context.Context, address string) (*in.GeocodeOutput, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, fmt.Errorf("address must not be empty")
	}

	if coord, found, ok := uc.cache.Get(ctx, address); ok {
		uc.log.Debug(logger.Entry{
			Action:  "geocode_cache_hit",
			Message: "geocode served from cache",
			Additional: map[string]any{
				"address": address,
				"found":   found,
			},
		})
		return &in.GeocodeOutput{Coordinate: coord, Found: found}, nil
	}

	coord, err := uc.provider.Geocode(ctx, address)
	if err != nil {
		uc.log.Error(logger.Entry{
			Action:  "geocode_failed",
			Message: err.Error(),
			Error:   &logger.ErrObj{Msg: err.Error()},
			Additional: map[string]any{
				"address": address,
			},
		})
		return nil, err
	}

	// Отрицательный результат тоже кэшируется
	uc.cache.Put(ctx, address, coord)

	return &in.GeocodeOutput{Coordinate: coord, Found: coord != nil}, nil
}
