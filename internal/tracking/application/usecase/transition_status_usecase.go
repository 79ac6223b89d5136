package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"deliverytrack/internal/shared/logger"
	"deliverytrack/internal/shared/metrics"
	in "deliverytrack/internal/tracking/application/ports/in"
	out "deliverytrack/internal/tracking/application/ports/out"
	"deliverytrack/internal/tracking/domain"
)

type transitionStatusUseCase struct {
	deliveryRepo out.DeliveryRepository
	routeRepo    out.RouteRepository
	notifier     out.DeliveryNotifier
	eventPub     out.EventPublisher
	locks        *KeyedMutex
	log          *logger.Logger
}

func NewTransitionStatusUseCase(
	deliveryRepo out.DeliveryRepository,
	routeRepo out.RouteRepository,
	notifier out.DeliveryNotifier,
	eventPub out.EventPublisher,
	locks *KeyedMutex,
	log *logger.Logger,
) in.TransitionStatusUseCase {
	return &transitionStatusUseCase{
		deliveryRepo: deliveryRepo,
		routeRepo:    routeRepo,
		notifier:     notifier,
		eventPub:     eventPub,
		locks:        locks,
		log:          log,
	}
}

func (uc *transitionStatusUseCase) Execute(ctx context.Context, input in.TransitionStatusInput) (*in.TransitionStatusOutput, error) {
	// Координаты события опциональны, но если заданы — валидны
	var coords *domain.Coordinate
	if input.Latitude != nil && input.Longitude != nil {
		c := domain.Coordinate{Latitude: *input.Latitude, Longitude: *input.Longitude}
		if err := domain.ValidateCoordinate(c); err != nil {
			return nil, err
		}
		coords = &c
	}

	// Переходы одной доставки строго последовательны
	unlock := uc.locks.Lock(input.DeliveryID)
	defer unlock()

	delivery, err := uc.deliveryRepo.FindByID(ctx, input.DeliveryID)
	if err != nil {
		return nil, err
	}

	if err := domain.CheckTransition(delivery.Status, input.ToStatus); err != nil {
		metrics.IllegalTransitionsTotal.Inc()
		uc.log.Warn(logger.Entry{
			Action:     "status_transition_rejected",
			Message:    err.Error(),
			DeliveryID: input.DeliveryID,
			Additional: map[string]any{
				"from_status": delivery.Status,
				"to_status":   input.ToStatus,
				"actor_id":    input.ActorID,
			},
		})
		return nil, err
	}

	event := &domain.StatusEvent{
		ID:         uuid.NewString(),
		DeliveryID: input.DeliveryID,
		FromStatus: delivery.Status,
		ToStatus:   input.ToStatus,
		OccurredAt: time.Now().UTC(),
		Coords:     coords,
		ActorID:    input.ActorID,
		Metadata:   input.Metadata,
	}

	updated, err := uc.deliveryRepo.Transition(ctx, event, nil)
	if err != nil {
		if errors.Is(err, domain.ErrIllegalTransition) {
			metrics.IllegalTransitionsTotal.Inc()
		}
		return nil, fmt.Errorf("apply transition: %w", err)
	}

	metrics.StatusTransitionsTotal.WithLabelValues(event.ToStatus).Inc()

	if event.ToStatus == domain.StatusDelivered {
		uc.recordActualDuration(ctx, updated, event.OccurredAt)
	}

	// Fanout подписчикам: fire-and-forget
	uc.notifier.PublishToDelivery(ctx, input.DeliveryID, out.DeliveryNotification{
		Type:       "status",
		DeliveryID: input.DeliveryID,
		Data: map[string]interface{}{
			"from_status": event.FromStatus,
			"to_status":   event.ToStatus,
			"occurred_at": event.OccurredAt.Format(time.RFC3339),
			"actor_id":    event.ActorID,
		},
	})

	if err := uc.eventPub.PublishDeliveryEvent(ctx, domain.EventStatusChanged, out.DeliveryEventData{
		DeliveryID: updated.ID,
		OrderID:    updated.OrderID,
		CourierID:  updated.CourierID,
		Status:     updated.Status,
	}); err != nil {
		uc.log.Error(logger.Entry{
			Action:     "status_changed_publish_failed",
			Message:    err.Error(),
			DeliveryID: updated.ID,
			Error:      &logger.ErrObj{Msg: err.Error()},
		})
		// Не фатальная ошибка
	}

	uc.log.Info(logger.Entry{
		Action:     "status_transitioned",
		Message:    fmt.Sprintf("delivery moved %s -> %s", event.FromStatus, event.ToStatus),
		DeliveryID: updated.ID,
		Additional: map[string]any{
			"from_status": event.FromStatus,
			"to_status":   event.ToStatus,
			"actor_id":    event.ActorID,
		},
	})

	return &in.TransitionStatusOutput{
		DeliveryID: updated.ID,
		Status:     updated.Status,
		Event:      event,
	}, nil
}

// recordActualDuration фиксирует фактическую длительность доставки на маршруте
func (uc *transitionStatusUseCase) recordActualDuration(ctx context.Context, delivery *domain.Delivery, deliveredAt time.Time) {
	seconds := int(deliveredAt.Sub(delivery.CreatedAt).Seconds())
	if seconds < 0 {
		seconds = 0
	}
	if err := uc.routeRepo.SetActualDuration(ctx, delivery.ID, seconds); err != nil {
		uc.log.Error(logger.Entry{
			Action:     "actual_duration_save_failed",
			Message:    err.Error(),
			DeliveryID: delivery.ID,
			Error:      &logger.ErrObj{Msg: err.Error()},
		})
		// Не фатальная ошибка
	}
}
