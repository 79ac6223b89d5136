package domain

import "time"

// LocationPing — одна строка на каждый отчет курьера о позиции.
// Пинги неизменяемы после сохранения.
type LocationPing struct {
	ID             string    `json:"id" db:"id"`
	DeliveryID     string    `json:"delivery_id" db:"delivery_id"`
	CourierID      string    `json:"courier_id" db:"courier_id"`
	Latitude       float64   `json:"latitude" db:"latitude"`
	Longitude      float64   `json:"longitude" db:"longitude"`
	HeadingDegrees *float64  `json:"heading_degrees,omitempty" db:"heading_degrees"`
	Speed          *float64  `json:"speed,omitempty" db:"speed"`
	AccuracyMeters *float64  `json:"accuracy_meters,omitempty" db:"accuracy_meters"`
	CapturedAt     time.Time `json:"captured_at" db:"captured_at"`
	ReceivedAt     time.Time `json:"received_at" db:"received_at"`
}

// Coordinate возвращает позицию пинга
func (p *LocationPing) Coordinate() Coordinate {
	return Coordinate{Latitude: p.Latitude, Longitude: p.Longitude}
}

// ==== Position Freshness ====
const (
	PositionLive    = "live"
	PositionStale   = "stale"
	PositionUnknown = "unknown"
)

// Position — ответ "текущая позиция" с классификацией свежести
type Position struct {
	Freshness  string      `json:"freshness"` // live | stale | unknown
	Coordinate *Coordinate `json:"coordinate,omitempty"`
	CapturedAt *time.Time  `json:"captured_at,omitempty"`
}

// ClassifyPosition определяет свежесть последнего пинга относительно порога.
// nil ping -> unknown; старше порога -> stale с последними координатами.
func ClassifyPosition(latest *LocationPing, now time.Time, staleness time.Duration) Position {
	if latest == nil {
		return Position{Freshness: PositionUnknown}
	}
	c := latest.Coordinate()
	capturedAt := latest.CapturedAt
	if now.Sub(capturedAt) > staleness {
		return Position{Freshness: PositionStale, Coordinate: &c, CapturedAt: &capturedAt}
	}
	return Position{Freshness: PositionLive, Coordinate: &c, CapturedAt: &capturedAt}
}
