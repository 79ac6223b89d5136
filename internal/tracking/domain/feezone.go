package domain

// FeeZone — сконфигурированная админом полоса расстояний со своим тарифом.
// Читается резолвером; мутации зон — вне этого движка.
type FeeZone struct {
	ID            string  `json:"id" db:"id"`
	Name          string  `json:"name" db:"name"`
	MinDistanceKm float64 `json:"min_distance_km" db:"min_distance_km"`
	MaxDistanceKm float64 `json:"max_distance_km" db:"max_distance_km"`
	BaseFee       float64 `json:"base_fee" db:"base_fee"`
	PerKmRate     float64 `json:"per_km_rate" db:"per_km_rate"`
	IsActive      bool    `json:"is_active" db:"is_active"`
}

// Contains проверяет попадание расстояния в интервал зоны (включительно с обеих сторон)
func (z FeeZone) Contains(distanceKm float64) bool {
	return distanceKm >= z.MinDistanceKm && distanceKm <= z.MaxDistanceKm
}
