package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"deliverytrack/internal/shared/config"
	"deliverytrack/internal/shared/logger"
	"deliverytrack/internal/shared/metrics"
	in "deliverytrack/internal/tracking/application/ports/in"
	out "deliverytrack/internal/tracking/application/ports/out"
	"deliverytrack/internal/tracking/domain"
)

type recordPingUseCase struct {
	pingRepo     out.PingRepository
	deliveryRepo out.DeliveryRepository
	notifier     out.DeliveryNotifier
	eventPub     out.EventPublisher
	transitions  in.TransitionStatusUseCase
	cfg          config.TrackingConfig
	log          *logger.Logger
}

func NewRecordPingUseCase(
	pingRepo out.PingRepository,
	deliveryRepo out.DeliveryRepository,
	notifier out.DeliveryNotifier,
	eventPub out.EventPublisher,
	transitions in.TransitionStatusUseCase,
	cfg config.TrackingConfig,
	log *logger.Logger,
) in.RecordPingUseCase {
	return &recordPingUseCase{
		pingRepo:     pingRepo,
		deliveryRepo: deliveryRepo,
		notifier:     notifier,
		eventPub:     eventPub,
		transitions:  transitions,
		cfg:          cfg,
		log:          log,
	}
}

func (uc *recordPingUseCase) Execute(ctx context.Context, input in.RecordPingInput) (*in.RecordPingOutput, error) {
	coord := domain.Coordinate{Latitude: input.Latitude, Longitude: input.Longitude}
	if err := domain.ValidateCoordinate(coord); err != nil {
		metrics.PingsRejectedTotal.Inc()
		uc.log.Warn(logger.Entry{
			Action:     "ping_rejected",
			Message:    err.Error(),
			DeliveryID: input.DeliveryID,
		})
		return nil, err
	}

	delivery, err := uc.deliveryRepo.FindByID(ctx, input.DeliveryID)
	if err != nil {
		if errors.Is(err, domain.ErrDeliveryNotFound) {
			metrics.PingsRejectedTotal.Inc()
		}
		return nil, err
	}

	capturedAt := input.CapturedAt
	if capturedAt.IsZero() {
		capturedAt = time.Now().UTC()
	}

	// Пинг "из прошлого" сохраняется, но текущую позицию назад не двигает
	prevLatest, err := uc.pingRepo.Latest(ctx, input.DeliveryID)
	if err != nil {
		return nil, fmt.Errorf("load latest ping: %w", err)
	}
	isNewest := prevLatest == nil || !capturedAt.Before(prevLatest.CapturedAt)

	ping := &domain.LocationPing{
		ID:             uuid.NewString(),
		DeliveryID:     input.DeliveryID,
		CourierID:      input.CourierID,
		Latitude:       input.Latitude,
		Longitude:      input.Longitude,
		HeadingDegrees: input.HeadingDegrees,
		Speed:          input.Speed,
		AccuracyMeters: input.AccuracyMeters,
		CapturedAt:     capturedAt,
		ReceivedAt:     time.Now().UTC(),
	}

	if err := uc.pingRepo.Create(ctx, ping); err != nil {
		return nil, fmt.Errorf("save ping: %w", err)
	}
	metrics.PingsReceivedTotal.Inc()

	if isNewest {
		uc.notifier.PublishToDelivery(ctx, input.DeliveryID, out.DeliveryNotification{
			Type:       "position",
			DeliveryID: input.DeliveryID,
			Data: map[string]interface{}{
				"latitude":    ping.Latitude,
				"longitude":   ping.Longitude,
				"captured_at": ping.CapturedAt.Format(time.RFC3339),
			},
		})
	}

	if err := uc.eventPub.PublishDeliveryEvent(ctx, domain.EventLocationUpdated, out.DeliveryEventData{
		DeliveryID: delivery.ID,
		OrderID:    delivery.OrderID,
		CourierID:  delivery.CourierID,
		Status:     delivery.Status,
		AdditionalData: map[string]interface{}{
			"latitude":  ping.Latitude,
			"longitude": ping.Longitude,
		},
	}); err != nil {
		uc.log.Error(logger.Entry{
			Action:     "location_updated_publish_failed",
			Message:    err.Error(),
			DeliveryID: delivery.ID,
			Error:      &logger.ErrObj{Msg: err.Error()},
		})
		// Не фатальная ошибка
	}

	uc.inferEnRoutePickup(ctx, delivery, coord)

	uc.log.Debug(logger.Entry{
		Action:     "ping_recorded",
		Message:    "courier location ping recorded",
		DeliveryID: delivery.ID,
		Additional: map[string]any{
			"courier_id": input.CourierID,
			"latitude":   ping.Latitude,
			"longitude":  ping.Longitude,
		},
	})

	return &in.RecordPingOutput{
		PingID:     ping.ID,
		DeliveryID: ping.DeliveryID,
		CapturedAt: ping.CapturedAt,
		ReceivedAt: ping.ReceivedAt,
	}, nil
}

// inferEnRoutePickup — единственный неявный переход: первый пинг после
// назначения в радиусе точки pickup переводит assigned -> en_route_pickup
func (uc *recordPingUseCase) inferEnRoutePickup(ctx context.Context, delivery *domain.Delivery, coord domain.Coordinate) {
	if delivery.Status != domain.StatusAssigned {
		return
	}

	distKm, err := domain.DistanceKm(coord, delivery.Pickup)
	if err != nil {
		return
	}
	if distKm*1000 > uc.cfg.PickupRadiusMeters {
		return
	}

	lat, lng := coord.Latitude, coord.Longitude
	_, err = uc.transitions.Execute(ctx, in.TransitionStatusInput{
		DeliveryID: delivery.ID,
		ToStatus:   domain.StatusEnRoutePickup,
		ActorID:    "system",
		Latitude:   &lat,
		Longitude:  &lng,
	})
	if err != nil {
		// Параллельный переход мог уже увести доставку дальше
		if errors.Is(err, domain.ErrIllegalTransition) {
			return
		}
		uc.log.Error(logger.Entry{
			Action:     "pickup_inference_failed",
			Message:    err.Error(),
			DeliveryID: delivery.ID,
			Error:      &logger.ErrObj{Msg: err.Error()},
		})
		// Не фатальная ошибка
	}
}
