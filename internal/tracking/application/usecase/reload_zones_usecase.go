package usecase

import (
	"context"
	"fmt"

	"deliverytrack/internal/shared/logger"
	in "deliverytrack/internal/tracking/application/ports/in"
	out "deliverytrack/internal/tracking/application/ports/out"
	"deliverytrack/internal/tracking/fee"
)

type reloadZonesUseCase struct {
	zoneRepo out.FeeZoneRepository
	zones    *fee.Zones
	log      *logger.Logger
}

func NewReloadZonesUseCase(zoneRepo out.FeeZoneRepository, zones *fee.Zones, log *logger.Logger) in.ReloadZonesUseCase {
	return &reloadZonesUseCase{zoneRepo: zoneRepo, zones: zones, log: log}
}

func (uc *reloadZonesUseCase) Execute(ctx context.Context) (*in.ReloadZonesOutput, error) {
	loaded, err := uc.zoneRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load fee zones: %w", err)
	}

	// Подмена снапшота атомарна: начатые расчеты дорабатывают на старом поколении
	uc.zones.Reload(loaded)

	active := 0
	for _, z := range loaded {
		if z.IsActive {
			active++
		}
	}

	uc.log.Info(logger.Entry{
		Action:  "fee_zones_reloaded",
		Message: "fee zone snapshot reloaded from database",
		Additional: map[string]any{
			"zones_loaded": len(loaded),
			"active_zones": active,
		},
	})

	return &in.ReloadZonesOutput{ZonesLoaded: len(loaded), ActiveZones: active}, nil
}
