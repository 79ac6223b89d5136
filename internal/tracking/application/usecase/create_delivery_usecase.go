package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"deliverytrack/internal/shared/config"
	"deliverytrack/internal/shared/logger"
	"deliverytrack/internal/shared/metrics"
	in "deliverytrack/internal/tracking/application/ports/in"
	out "deliverytrack/internal/tracking/application/ports/out"
	"deliverytrack/internal/tracking/domain"
	"deliverytrack/internal/tracking/fee"
)

// routeRetryDelay — пауза перед единственным повтором вызова провайдера
const routeRetryDelay = 500 * time.Millisecond

type createDeliveryUseCase struct {
	deliveryRepo out.DeliveryRepository
	routeRepo    out.RouteRepository
	provider     out.RouteProvider
	zones        *fee.Zones
	eventPub     out.EventPublisher
	routingCfg   config.RoutingConfig
	trackingCfg  config.TrackingConfig
	log          *logger.Logger
}

func NewCreateDeliveryUseCase(
	deliveryRepo out.DeliveryRepository,
	routeRepo out.RouteRepository,
	provider out.RouteProvider,
	zones *fee.Zones,
	eventPub out.EventPublisher,
	routingCfg config.RoutingConfig,
	trackingCfg config.TrackingConfig,
	log *logger.Logger,
) in.CreateDeliveryUseCase {
	return &createDeliveryUseCase{
		deliveryRepo: deliveryRepo,
		routeRepo:    routeRepo,
		provider:     provider,
		zones:        zones,
		eventPub:     eventPub,
		routingCfg:   routingCfg,
		trackingCfg:  trackingCfg,
		log:          log,
	}
}

func (uc *createDeliveryUseCase) Execute(ctx context.Context, input in.CreateDeliveryInput) (*in.CreateDeliveryOutput, error) {
	pickup := domain.Coordinate{Latitude: input.PickupLat, Longitude: input.PickupLng}
	dropoff := domain.Coordinate{Latitude: input.DropoffLat, Longitude: input.DropoffLng}

	if err := domain.ValidateCoordinate(pickup); err != nil {
		return nil, fmt.Errorf("pickup: %w", err)
	}
	if err := domain.ValidateCoordinate(dropoff); err != nil {
		return nil, fmt.Errorf("dropoff: %w", err)
	}

	// Заказ исполняется ровно одной доставкой: повторный запрос идемпотентен
	if existing, err := uc.deliveryRepo.FindByOrderID(ctx, input.OrderID); err == nil {
		return uc.existingOutput(ctx, existing)
	} else if !errors.Is(err, domain.ErrDeliveryNotFound) {
		return nil, err
	}

	route, err := uc.buildRoute(ctx, pickup, dropoff)
	if err != nil {
		return nil, err
	}

	distanceKm := domain.Round2(float64(route.DistanceMeters) / 1000)
	quote := fee.Resolve(distanceKm, uc.zones.Snapshot(), uc.trackingCfg.FallbackFee)
	if quote.Fallback {
		metrics.FeeFallbacksTotal.Inc()
		uc.log.Error(logger.Entry{
			Action:  "fee_zone_config_empty",
			Message: "no active fee zones configured, using fixed fallback fee",
			Error:   &logger.ErrObj{Msg: domain.ErrConfigurationError.Error()},
			Additional: map[string]any{
				"fallback_fee": uc.trackingCfg.FallbackFee,
				"distance_km":  distanceKm,
			},
		})
	}

	now := time.Now().UTC()
	delivery := &domain.Delivery{
		ID:            uuid.NewString(),
		OrderID:       input.OrderID,
		Pickup:        pickup,
		Dropoff:       dropoff,
		Status:        domain.StatusPending,
		FeeAmount:     quote.Fee,
		FeeEstimated:  route.Estimated,
		CreatedAt:     now,
		LastUpdatedAt: now,
	}
	if quote.Zone != nil {
		delivery.FeeZoneID = &quote.Zone.ID
	}

	if err := uc.deliveryRepo.Create(ctx, delivery); err != nil {
		return nil, fmt.Errorf("create delivery: %w", err)
	}

	route.DeliveryID = delivery.ID
	if err := uc.routeRepo.Put(ctx, route); err != nil {
		uc.log.Error(logger.Entry{
			Action:     "route_save_failed",
			Message:    err.Error(),
			DeliveryID: delivery.ID,
			Error:      &logger.ErrObj{Msg: err.Error()},
		})
		// Не фатальная ошибка: доставка создана, маршрут — вспомогательные данные
	}

	if err := uc.eventPub.PublishDeliveryEvent(ctx, domain.EventDeliveryCreated, out.DeliveryEventData{
		DeliveryID: delivery.ID,
		OrderID:    delivery.OrderID,
		Status:     delivery.Status,
		AdditionalData: map[string]interface{}{
			"fee_amount":    delivery.FeeAmount,
			"fee_estimated": delivery.FeeEstimated,
		},
	}); err != nil {
		uc.log.Error(logger.Entry{
			Action:     "delivery_created_publish_failed",
			Message:    err.Error(),
			DeliveryID: delivery.ID,
			Error:      &logger.ErrObj{Msg: err.Error()},
		})
		// Не фатальная ошибка
	}

	uc.log.Info(logger.Entry{
		Action:     "delivery_created",
		Message:    "delivery created for order",
		DeliveryID: delivery.ID,
		Additional: map[string]any{
			"order_id":        delivery.OrderID,
			"fee_amount":      delivery.FeeAmount,
			"fee_estimated":   delivery.FeeEstimated,
			"distance_meters": route.DistanceMeters,
		},
	})

	output := &in.CreateDeliveryOutput{
		DeliveryID:               delivery.ID,
		Status:                   delivery.Status,
		FeeAmount:                delivery.FeeAmount,
		FeeEstimated:             delivery.FeeEstimated,
		DistanceMeters:           route.DistanceMeters,
		EstimatedDurationSeconds: route.EstimatedDurationSeconds,
	}
	if quote.Zone != nil {
		output.FeeZoneName = quote.Zone.Name
	}
	return output, nil
}

// buildRoute — один вызов провайдера, один retry, затем haversine-фоллбек.
// Фоллбек помечается estimated=true и не несет геометрии.
func (uc *createDeliveryUseCase) buildRoute(ctx context.Context, pickup, dropoff domain.Coordinate) (*domain.Route, error) {
	now := time.Now().UTC()

	info, err := uc.provider.ComputeRoute(ctx, pickup, dropoff, uc.routingCfg.TransportMode)
	if err != nil {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(routeRetryDelay):
		}
		info, err = uc.provider.ComputeRoute(ctx, pickup, dropoff, uc.routingCfg.TransportMode)
	}

	if err == nil {
		providerRouteID := info.ProviderRouteID
		route := &domain.Route{
			ID:                       uuid.NewString(),
			Pickup:                   pickup,
			Dropoff:                  dropoff,
			Geometry:                 info.Geometry,
			DistanceMeters:           info.DistanceMeters,
			EstimatedDurationSeconds: info.DurationSeconds,
			CreatedAt:                now,
			UpdatedAt:                now,
		}
		if providerRouteID != "" {
			route.ProviderRouteID = &providerRouteID
		}
		return route, nil
	}

	distKm, derr := domain.DistanceKm(pickup, dropoff)
	if derr != nil {
		return nil, derr
	}

	uc.log.Warn(logger.Entry{
		Action:  "route_fallback_haversine",
		Message: "routing provider unavailable, using haversine estimate",
		Additional: map[string]any{
			"provider_error": err.Error(),
			"distance_km":    distKm,
		},
	})

	durationSeconds := 0
	if uc.trackingCfg.AvgCourierSpeedKmh > 0 {
		durationSeconds = int(math.Round(distKm / uc.trackingCfg.AvgCourierSpeedKmh * 3600))
	}

	return &domain.Route{
		ID:                       uuid.NewString(),
		Pickup:                   pickup,
		Dropoff:                  dropoff,
		DistanceMeters:           int(math.Round(distKm * 1000)),
		EstimatedDurationSeconds: durationSeconds,
		Estimated:                true,
		CreatedAt:                now,
		UpdatedAt:                now,
	}, nil
}

// existingOutput восстанавливает ответ для уже созданной доставки заказа
func (uc *createDeliveryUseCase) existingOutput(ctx context.Context, delivery *domain.Delivery) (*in.CreateDeliveryOutput, error) {
	output := &in.CreateDeliveryOutput{
		DeliveryID:   delivery.ID,
		Status:       delivery.Status,
		FeeAmount:    delivery.FeeAmount,
		FeeEstimated: delivery.FeeEstimated,
	}
	if route, err := uc.routeRepo.FindByDelivery(ctx, delivery.ID); err == nil && route != nil {
		output.DistanceMeters = route.DistanceMeters
		output.EstimatedDurationSeconds = route.EstimatedDurationSeconds
	}
	if delivery.FeeZoneID != nil {
		for _, z := range uc.zones.Snapshot() {
			if z.ID == *delivery.FeeZoneID {
				output.FeeZoneName = z.Name
				break
			}
		}
	}
	return output, nil
}
