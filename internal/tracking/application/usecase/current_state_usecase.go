package usecase

import (
	"context"
	"fmt"
	"time"

	"deliverytrack/internal/shared/config"
	"deliverytrack/internal/shared/logger"
	in "deliverytrack/internal/tracking/application/ports/in"
	out "deliverytrack/internal/tracking/application/ports/out"
	"deliverytrack/internal/tracking/domain"
)

type currentStateUseCase struct {
	deliveryRepo out.DeliveryRepository
	pingRepo     out.PingRepository
	routeRepo    out.RouteRepository
	cfg          config.TrackingConfig
	log          *logger.Logger
}

func NewCurrentStateUseCase(
	deliveryRepo out.DeliveryRepository,
	pingRepo out.PingRepository,
	routeRepo out.RouteRepository,
	cfg config.TrackingConfig,
	log *logger.Logger,
) in.CurrentStateUseCase {
	return &currentStateUseCase{
		deliveryRepo: deliveryRepo,
		pingRepo:     pingRepo,
		routeRepo:    routeRepo,
		cfg:          cfg,
		log:          log,
	}
}

func (uc *currentStateUseCase) Execute(ctx context.Context, deliveryID string) (*in.DeliveryStateOutput, error) {
	delivery, err := uc.deliveryRepo.FindByID(ctx, deliveryID)
	if err != nil {
		return nil, err
	}

	latest, err := uc.pingRepo.Latest(ctx, deliveryID)
	if err != nil {
		return nil, fmt.Errorf("load latest ping: %w", err)
	}

	output := &in.DeliveryStateOutput{
		DeliveryID: delivery.ID,
		OrderID:    delivery.OrderID,
		CourierID:  delivery.CourierID,
		Status:     delivery.Status,
		Position:   domain.ClassifyPosition(latest, time.Now().UTC(), uc.cfg.StalenessThreshold),
		FeeAmount:  delivery.FeeAmount,
	}

	route, err := uc.routeRepo.FindByDelivery(ctx, deliveryID)
	if err != nil {
		uc.log.Error(logger.Entry{
			Action:     "route_load_failed",
			Message:    err.Error(),
			DeliveryID: deliveryID,
			Error:      &logger.ErrObj{Msg: err.Error()},
		})
		// Не фатальная ошибка: состояние отдаем без маршрута
	} else if route != nil {
		summary := route.Summary()
		output.Route = &summary
	}

	return output, nil
}
