package domain

import (
	"fmt"
	"math"
)

// Coordinate представляет географическую точку
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// ValidateCoordinate проверяет корректность координат
func ValidateCoordinate(c Coordinate) error {
	if c.Latitude < -90 || c.Latitude > 90 {
		return fmt.Errorf("%w: latitude must be between -90 and 90, got %v", ErrInvalidCoordinate, c.Latitude)
	}
	if c.Longitude < -180 || c.Longitude > 180 {
		return fmt.Errorf("%w: longitude must be between -180 and 180, got %v", ErrInvalidCoordinate, c.Longitude)
	}
	return nil
}

const earthRadiusKm = 6371.0

// DistanceKm вычисляет расстояние по дуге большого круга (формула Haversine),
// округленное до 2 знаков
func DistanceKm(a, b Coordinate) (float64, error) {
	if err := ValidateCoordinate(a); err != nil {
		return 0, err
	}
	if err := ValidateCoordinate(b); err != nil {
		return 0, err
	}

	lat1Rad := a.Latitude * math.Pi / 180
	lat2Rad := b.Latitude * math.Pi / 180
	deltaLat := (b.Latitude - a.Latitude) * math.Pi / 180
	deltaLon := (b.Longitude - a.Longitude) * math.Pi / 180

	h := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(deltaLon/2)*math.Sin(deltaLon/2)

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return Round2(earthRadiusKm * c), nil
}

// Round2 округляет до 2 знаков после запятой
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
