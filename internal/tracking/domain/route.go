package domain

import "time"

// Route — маршрут доставки. Одна запись на доставку; геометрия после
// сохранения не патчится, только замена записи целиком.
type Route struct {
	ID                       string     `json:"id" db:"id"`
	DeliveryID               string     `json:"delivery_id" db:"delivery_id"`
	Pickup                   Coordinate `json:"pickup"`
	Dropoff                  Coordinate `json:"dropoff"`
	Geometry                 string     `json:"geometry,omitempty" db:"route_geometry"`
	DistanceMeters           int        `json:"distance_meters" db:"distance_meters"`
	EstimatedDurationSeconds int        `json:"estimated_duration_seconds" db:"estimated_duration_seconds"`
	ActualDurationSeconds    *int       `json:"actual_duration_seconds,omitempty" db:"actual_duration_seconds"`
	ProviderRouteID          *string    `json:"provider_route_id,omitempty" db:"provider_route_id"`
	Estimated                bool       `json:"estimated" db:"estimated"`
	CreatedAt                time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt                time.Time  `json:"updated_at" db:"updated_at"`
}

// RouteSummary — компактное представление маршрута для query-ответов
type RouteSummary struct {
	DistanceMeters           int  `json:"distance_meters"`
	EstimatedDurationSeconds int  `json:"estimated_duration_seconds"`
	Estimated                bool `json:"estimated"`
}

// Summary возвращает компактное представление маршрута
func (r *Route) Summary() RouteSummary {
	return RouteSummary{
		DistanceMeters:           r.DistanceMeters,
		EstimatedDurationSeconds: r.EstimatedDurationSeconds,
		Estimated:                r.Estimated,
	}
}
