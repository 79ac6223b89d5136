package usecase

import (
	"context"
	"fmt"

	"deliverytrack/internal/shared/logger"
	in "deliverytrack/internal/tracking/application/ports/in"
	out "deliverytrack/internal/tracking/application/ports/out"
	"deliverytrack/internal/tracking/domain"
)

type routeDetailUseCase struct {
	deliveryRepo out.DeliveryRepository
	routeRepo    out.RouteRepository
	log          *logger.Logger
}

func NewRouteDetailUseCase(
	deliveryRepo out.DeliveryRepository,
	routeRepo out.RouteRepository,
	log *logger.Logger,
) in.RouteDetailUseCase {
	return &routeDetailUseCase{
		deliveryRepo: deliveryRepo,
		routeRepo:    routeRepo,
		log:          log,
	}
}

func (uc *routeDetailUseCase) Execute(ctx context.Context, deliveryID string) (*in.RouteDetailOutput, error) {
	delivery, err := uc.deliveryRepo.FindByID(ctx, deliveryID)
	if err != nil {
		return nil, err
	}

	route, err := uc.routeRepo.FindByDelivery(ctx, delivery.ID)
	if err != nil {
		return nil, fmt.Errorf("load route: %w", err)
	}
	if route == nil {
		return nil, nil
	}

	output := &in.RouteDetailOutput{
		DeliveryID:               delivery.ID,
		DistanceMeters:           route.DistanceMeters,
		EstimatedDurationSeconds: route.EstimatedDurationSeconds,
		ActualDurationSeconds:    route.ActualDurationSeconds,
		Estimated:                route.Estimated,
		Waypoints:                []domain.Coordinate{},
	}

	// Haversine-фоллбек геометрии не несет
	if route.Geometry == "" {
		return output, nil
	}

	seq, err := domain.DecodePolyline(route.Geometry)
	if err != nil {
		uc.log.Error(logger.Entry{
			Action:     "route_geometry_decode_failed",
			Message:    err.Error(),
			DeliveryID: delivery.ID,
			Error:      &logger.ErrObj{Msg: err.Error()},
		})
		return nil, err
	}
	for coord := range seq {
		output.Waypoints = append(output.Waypoints, coord)
	}

	return output, nil
}
