package in

import (
	"context"
	"time"
)

// RecordPingInput — входные данные для записи GPS-отчета курьера
type RecordPingInput struct {
	DeliveryID     string    `json:"delivery_id"`
	CourierID      string    `json:"courier_id"`
	Latitude       float64   `json:"latitude"`
	Longitude      float64   `json:"longitude"`
	HeadingDegrees *float64  `json:"heading_degrees,omitempty"`
	Speed          *float64  `json:"speed,omitempty"`
	AccuracyMeters *float64  `json:"accuracy_meters,omitempty"`
	CapturedAt     time.Time `json:"captured_at"`
}

// RecordPingOutput — результат записи пинга
type RecordPingOutput struct {
	PingID     string    `json:"ping_id"`
	DeliveryID string    `json:"delivery_id"`
	CapturedAt time.Time `json:"captured_at"`
	ReceivedAt time.Time `json:"received_at"`
}

// RecordPingUseCase — интерфейс use-case записи пинга
type RecordPingUseCase interface {
	Execute(ctx context.Context, input RecordPingInput) (*RecordPingOutput, error)
}
