package fee

import (
	"sync/atomic"

	"deliverytrack/internal/tracking/domain"
)

// Zones — hot-reloadable snapshot набора зон.
//
// Один вызов Resolve всегда видит консистентное поколение конфигурации:
// Snapshot возвращает иммутабельный срез, Reload атомарно подменяет его целиком.
type Zones struct {
	current atomic.Pointer[[]domain.FeeZone]
}

// NewZones создает holder с начальным набором зон
func NewZones(zones []domain.FeeZone) *Zones {
	z := &Zones{}
	z.Reload(zones)
	return z
}

// Snapshot возвращает текущее поколение зон. Срез нельзя мутировать.
func (z *Zones) Snapshot() []domain.FeeZone {
	p := z.current.Load()
	if p == nil {
		return nil
	}
	return *p
}

// Reload подменяет набор зон новым поколением
func (z *Zones) Reload(zones []domain.FeeZone) {
	copied := make([]domain.FeeZone, len(zones))
	copy(copied, zones)
	z.current.Store(&copied)
}
