package in

import "context"

// CreateDeliveryInput — входные данные для постановки заказа на исполнение
type CreateDeliveryInput struct {
	OrderID    string  `json:"order_id"`
	PickupLat  float64 `json:"pickup_lat"`
	PickupLng  float64 `json:"pickup_lng"`
	DropoffLat float64 `json:"dropoff_lat"`
	DropoffLng float64 `json:"dropoff_lng"`
}

// CreateDeliveryOutput — результат создания доставки
type CreateDeliveryOutput struct {
	DeliveryID               string  `json:"delivery_id"`
	Status                   string  `json:"status"`
	FeeAmount                float64 `json:"fee_amount"`
	FeeZoneName              string  `json:"fee_zone_name,omitempty"`
	FeeEstimated             bool    `json:"fee_estimated"`
	DistanceMeters           int     `json:"distance_meters"`
	EstimatedDurationSeconds int     `json:"estimated_duration_seconds"`
}

// CreateDeliveryUseCase — интерфейс use-case создания доставки
type CreateDeliveryUseCase interface {
	Execute(ctx context.Context, input CreateDeliveryInput) (*CreateDeliveryOutput, error)
}
