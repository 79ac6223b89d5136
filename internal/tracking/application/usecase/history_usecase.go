package usecase

import (
	"context"
	"fmt"
	"time"

	"deliverytrack/internal/shared/logger"
	in "deliverytrack/internal/tracking/application/ports/in"
	out "deliverytrack/internal/tracking/application/ports/out"
)

type historyUseCase struct {
	deliveryRepo out.DeliveryRepository
	pingRepo     out.PingRepository
	eventRepo    out.StatusEventRepository
	log          *logger.Logger
}

func NewHistoryUseCase(
	deliveryRepo out.DeliveryRepository,
	pingRepo out.PingRepository,
	eventRepo out.StatusEventRepository,
	log *logger.Logger,
) in.HistoryUseCase {
	return &historyUseCase{
		deliveryRepo: deliveryRepo,
		pingRepo:     pingRepo,
		eventRepo:    eventRepo,
		log:          log,
	}
}

func (uc *historyUseCase) Execute(ctx context.Context, deliveryID string, since *time.Time) (*in.HistoryOutput, error) {
	delivery, err := uc.deliveryRepo.FindByID(ctx, deliveryID)
	if err != nil {
		return nil, err
	}

	pings, err := uc.pingRepo.ListSince(ctx, delivery.ID, since)
	if err != nil {
		return nil, fmt.Errorf("load pings: %w", err)
	}

	events, err := uc.eventRepo.ListByDelivery(ctx, delivery.ID, since)
	if err != nil {
		return nil, fmt.Errorf("load status events: %w", err)
	}

	return &in.HistoryOutput{
		DeliveryID:   delivery.ID,
		Pings:        pings,
		StatusEvents: events,
	}, nil
}
