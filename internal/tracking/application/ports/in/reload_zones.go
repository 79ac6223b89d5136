package in

import "context"

// ReloadZonesOutput — результат перезагрузки снапшота зон
type ReloadZonesOutput struct {
	ZonesLoaded int `json:"zones_loaded"`
	ActiveZones int `json:"active_zones"`
}

// ReloadZonesUseCase — интерфейс admin-перезагрузки конфигурации зон из БД
type ReloadZonesUseCase interface {
	Execute(ctx context.Context) (*ReloadZonesOutput, error)
}
