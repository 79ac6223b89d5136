package in

import (
	"context"

	"deliverytrack/internal/tracking/fee"
)

// FeePreviewInput — входные данные для предварительного расчета fee
type FeePreviewInput struct {
	DistanceKm float64 `json:"distance_km"`
}

// FeePreviewOutput — результат расчета без побочных эффектов
type FeePreviewOutput struct {
	Fee          float64        `json:"fee"`
	ZoneName     string         `json:"zone_name,omitempty"`
	DistanceKm   float64        `json:"distance_km"`
	Extrapolated bool           `json:"extrapolated"`
	Fallback     bool           `json:"fallback"`
	Breakdown    *fee.Breakdown `json:"breakdown,omitempty"`
}

// FeePreviewUseCase — интерфейс read-only расчета fee для commerce-подсистемы
type FeePreviewUseCase interface {
	Execute(ctx context.Context, input FeePreviewInput) (*FeePreviewOutput, error)
}
