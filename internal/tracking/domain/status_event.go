package domain

import "time"

// StatusEvent — append-only запись о переходе статуса.
// Текущий Delivery.Status всегда равен ToStatus последнего события.
type StatusEvent struct {
	ID         string      `json:"id" db:"id"`
	DeliveryID string      `json:"delivery_id" db:"delivery_id"`
	FromStatus string      `json:"from_status" db:"from_status"`
	ToStatus   string      `json:"to_status" db:"to_status"`
	OccurredAt time.Time   `json:"occurred_at" db:"occurred_at"`
	Coords     *Coordinate `json:"coords,omitempty"`
	ActorID    string      `json:"actor_id" db:"actor_id"`
	Metadata   *string     `json:"metadata,omitempty" db:"metadata"`
}
