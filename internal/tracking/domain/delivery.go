package domain

import "time"

// ==== Delivery Status ====
const (
	StatusPending        = "pending"
	StatusAssigned       = "assigned"
	StatusEnRoutePickup  = "en_route_pickup"
	StatusPickedUp       = "picked_up"
	StatusEnRouteDropoff = "en_route_dropoff"
	StatusDelivered      = "delivered"
	StatusCancelled      = "cancelled"
)

// ==== Subscriber Role ====
const (
	RoleCustomer = "customer"
	RoleCourier  = "courier"
	RoleStore    = "store"
)

// ==== Delivery Event Type ====
const (
	EventDeliveryCreated = "DELIVERY_CREATED"
	EventStatusChanged   = "STATUS_CHANGED"
	EventLocationUpdated = "LOCATION_UPDATED"
)

// Delivery представляет одну попытку исполнения заказа.
// Записи никогда не удаляются физически: история статусов — аудиторский след.
type Delivery struct {
	ID            string     `json:"id" db:"id"`
	OrderID       string     `json:"order_id" db:"order_id"`
	CourierID     *string    `json:"courier_id,omitempty" db:"courier_id"`
	Pickup        Coordinate `json:"pickup"`
	Dropoff       Coordinate `json:"dropoff"`
	Status        string     `json:"status" db:"status"`
	FeeAmount     float64    `json:"fee_amount" db:"fee_amount"`
	FeeZoneID     *string    `json:"fee_zone_id,omitempty" db:"fee_zone_id"`
	FeeEstimated  bool       `json:"fee_estimated" db:"fee_estimated"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	LastUpdatedAt time.Time  `json:"last_updated_at" db:"last_updated_at"`
}

// IsTerminal сообщает, достигла ли доставка терминального статуса
func (d *Delivery) IsTerminal() bool {
	return d.Status == StatusDelivered || d.Status == StatusCancelled
}
