package fee

import (
	"sort"

	"deliverytrack/internal/tracking/domain"
)

// Quote — результат расчета fee для расстояния
type Quote struct {
	Fee          float64         `json:"fee"`
	Zone         *domain.FeeZone `json:"zone,omitempty"`
	Extrapolated bool            `json:"extrapolated"` // расстояние за пределами всех зон
	Fallback     bool            `json:"fallback"`     // ноль активных зон, фиксированный fee
}

// Breakdown — детализация fee в ответе (как у исходного API)
type Breakdown struct {
	BaseFee     float64 `json:"base_fee"`
	DistanceFee float64 `json:"distance_fee"`
	TotalFee    float64 `json:"total_fee"`
}

// Breakdown возвращает детализацию; nil если зона не определена
func (q Quote) Breakdown(distanceKm float64) *Breakdown {
	if q.Zone == nil {
		return nil
	}
	return &Breakdown{
		BaseFee:     q.Zone.BaseFee,
		DistanceFee: domain.Round2(distanceKm * q.Zone.PerKmRate),
		TotalFee:    q.Fee,
	}
}

// Resolve подбирает зону для расстояния и считает fee.
//
// Правила:
//   - учитываются только активные зоны;
//   - берется первая подходящая зона по возрастанию MinDistanceKm,
//     границы включительно с обеих сторон;
//   - без совпадения — экстраполяция по тарифу активной зоны с наибольшей
//     MaxDistanceKm;
//   - при нуле активных зон — фиксированный fallbackFee и nil-зона
//     (вызывающая сторона обязана зафиксировать ConfigurationError).
//
// Функция чистая и детерминированная: fee замораживается при создании
// доставки и никогда не пересчитывается.
func Resolve(distanceKm float64, zones []domain.FeeZone, fallbackFee float64) Quote {
	active := make([]domain.FeeZone, 0, len(zones))
	for _, z := range zones {
		if z.IsActive {
			active = append(active, z)
		}
	}

	if len(active) == 0 {
		return Quote{Fee: domain.Round2(fallbackFee), Fallback: true}
	}

	// first match in ascending minDistance order
	sort.SliceStable(active, func(i, j int) bool {
		return active[i].MinDistanceKm < active[j].MinDistanceKm
	})

	for i := range active {
		if active[i].Contains(distanceKm) {
			z := active[i]
			return Quote{
				Fee:  domain.Round2(z.BaseFee + distanceKm*z.PerKmRate),
				Zone: &z,
			}
		}
	}

	// Экстраполяция по самой дальней зоне
	furthest := active[0]
	for _, z := range active[1:] {
		if z.MaxDistanceKm > furthest.MaxDistanceKm {
			furthest = z
		}
	}

	return Quote{
		Fee:          domain.Round2(furthest.BaseFee + distanceKm*furthest.PerKmRate),
		Zone:         &furthest,
		Extrapolated: true,
	}
}
