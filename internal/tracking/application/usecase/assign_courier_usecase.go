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

type assignCourierUseCase struct {
	deliveryRepo out.DeliveryRepository
	notifier     out.DeliveryNotifier
	eventPub     out.EventPublisher
	locks        *KeyedMutex
	log          *logger.Logger
}

func NewAssignCourierUseCase(
	deliveryRepo out.DeliveryRepository,
	notifier out.DeliveryNotifier,
	eventPub out.EventPublisher,
	locks *KeyedMutex,
	log *logger.Logger,
) in.AssignCourierUseCase {
	return &assignCourierUseCase{
		deliveryRepo: deliveryRepo,
		notifier:     notifier,
		eventPub:     eventPub,
		locks:        locks,
		log:          log,
	}
}

func (uc *assignCourierUseCase) Execute(ctx context.Context, input in.AssignCourierInput) (*in.AssignCourierOutput, error) {
	unlock := uc.locks.Lock(input.DeliveryID)
	defer unlock()

	delivery, err := uc.deliveryRepo.FindByID(ctx, input.DeliveryID)
	if err != nil {
		return nil, err
	}

	if err := domain.CheckTransition(delivery.Status, domain.StatusAssigned); err != nil {
		metrics.IllegalTransitionsTotal.Inc()
		uc.log.Warn(logger.Entry{
			Action:     "courier_assign_rejected",
			Message:    err.Error(),
			DeliveryID: input.DeliveryID,
			Additional: map[string]any{
				"current_status": delivery.Status,
				"courier_id":     input.CourierID,
			},
		})
		return nil, err
	}

	event := &domain.StatusEvent{
		ID:         uuid.NewString(),
		DeliveryID: input.DeliveryID,
		FromStatus: delivery.Status,
		ToStatus:   domain.StatusAssigned,
		OccurredAt: time.Now().UTC(),
		ActorID:    input.ActorID,
	}

	// courier_id ставится той же транзакцией, что и переход статуса
	courierID := input.CourierID
	updated, err := uc.deliveryRepo.Transition(ctx, event, &courierID)
	if err != nil {
		if errors.Is(err, domain.ErrIllegalTransition) {
			metrics.IllegalTransitionsTotal.Inc()
		}
		return nil, fmt.Errorf("assign courier: %w", err)
	}

	metrics.StatusTransitionsTotal.WithLabelValues(domain.StatusAssigned).Inc()

	uc.notifier.PublishToDelivery(ctx, updated.ID, out.DeliveryNotification{
		Type:       "status",
		DeliveryID: updated.ID,
		Data: map[string]interface{}{
			"from_status": event.FromStatus,
			"to_status":   event.ToStatus,
			"occurred_at": event.OccurredAt.Format(time.RFC3339),
			"courier_id":  courierID,
		},
	})

	if err := uc.eventPub.PublishDeliveryEvent(ctx, domain.EventStatusChanged, out.DeliveryEventData{
		DeliveryID: updated.ID,
		OrderID:    updated.OrderID,
		CourierID:  updated.CourierID,
		Status:     updated.Status,
	}); err != nil {
		uc.log.Error(logger.Entry{
			Action:     "courier_assigned_publish_failed",
			Message:    err.Error(),
			DeliveryID: updated.ID,
			Error:      &logger.ErrObj{Msg: err.Error()},
		})
		// Не фатальная ошибка
	}

	uc.log.Info(logger.Entry{
		Action:     "courier_assigned",
		Message:    "courier assigned to delivery",
		DeliveryID: updated.ID,
		Additional: map[string]any{
			"courier_id": courierID,
			"actor_id":   input.ActorID,
		},
	})

	return &in.AssignCourierOutput{
		DeliveryID: updated.ID,
		Status:     updated.Status,
		Event:      event,
	}, nil
}
