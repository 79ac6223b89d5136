package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deliverytrack/internal/shared/logger"
	in "deliverytrack/internal/tracking/application/ports/in"
	"deliverytrack/internal/tracking/domain"
)

func testDelivery(status string) *domain.Delivery {
	now := time.Now().UTC().Add(-10 * time.Minute)
	return &domain.Delivery{
		ID:            "d-1",
		OrderID:       "order-1",
		Pickup:        domain.Coordinate{Latitude: 55.75, Longitude: 37.61},
		Dropoff:       domain.Coordinate{Latitude: 55.76, Longitude: 37.64},
		Status:        status,
		FeeAmount:     120,
		CreatedAt:     now,
		LastUpdatedAt: now,
	}
}

func TestTransitionStatusUseCase(t *testing.T) {
	log := logger.NewLogger("test")
	ctx := context.Background()

	setup := func(status string) (*fakeDeliveryRepo, *fakeRouteRepo, *fakeNotifier, *fakeEventPublisher, in.TransitionStatusUseCase) {
		repo := newFakeDeliveryRepo(testDelivery(status))
		routeRepo := newFakeRouteRepo()
		notifier := &fakeNotifier{}
		pub := &fakeEventPublisher{}
		uc := NewTransitionStatusUseCase(repo, routeRepo, notifier, pub, NewKeyedMutex(), log)
		return repo, routeRepo, notifier, pub, uc
	}

	t.Run("legal transition updates status and appends event", func(t *testing.T) {
		repo, _, notifier, pub, uc := setup(domain.StatusAssigned)

		output, err := uc.Execute(ctx, in.TransitionStatusInput{
			DeliveryID: "d-1",
			ToStatus:   domain.StatusEnRoutePickup,
			ActorID:    "courier-7",
		})
		require.NoError(t, err)
		assert.Equal(t, domain.StatusEnRoutePickup, output.Status)
		require.NotNil(t, output.Event)
		assert.Equal(t, domain.StatusAssigned, output.Event.FromStatus)

		assert.Equal(t, domain.StatusEnRoutePickup, repo.deliveries["d-1"].Status)
		require.Len(t, repo.events, 1)
		assert.Equal(t, "courier-7", repo.events[0].ActorID)

		require.Len(t, notifier.notifications, 1)
		assert.Equal(t, "status", notifier.notifications[0].Type)

		require.Len(t, pub.published, 1)
		assert.Equal(t, domain.EventStatusChanged, pub.published[0].eventType)
	})

	t.Run("illegal transition leaves delivery untouched", func(t *testing.T) {
		repo, _, notifier, _, uc := setup(domain.StatusPending)

		_, err := uc.Execute(ctx, in.TransitionStatusInput{
			DeliveryID: "d-1",
			ToStatus:   domain.StatusDelivered,
			ActorID:    "dispatcher-1",
		})
		assert.ErrorIs(t, err, domain.ErrIllegalTransition)
		assert.Equal(t, domain.StatusPending, repo.deliveries["d-1"].Status)
		assert.Empty(t, repo.events)
		assert.Empty(t, notifier.notifications)
	})

	t.Run("unknown delivery", func(t *testing.T) {
		_, _, _, _, uc := setup(domain.StatusPending)

		_, err := uc.Execute(ctx, in.TransitionStatusInput{
			DeliveryID: "missing",
			ToStatus:   domain.StatusAssigned,
		})
		assert.ErrorIs(t, err, domain.ErrDeliveryNotFound)
	})

	t.Run("invalid event coordinates rejected before any write", func(t *testing.T) {
		repo, _, _, _, uc := setup(domain.StatusAssigned)

		lat, lng := 95.0, 37.61
		_, err := uc.Execute(ctx, in.TransitionStatusInput{
			DeliveryID: "d-1",
			ToStatus:   domain.StatusEnRoutePickup,
			Latitude:   &lat,
			Longitude:  &lng,
		})
		assert.ErrorIs(t, err, domain.ErrInvalidCoordinate)
		assert.Empty(t, repo.events)
	})

	t.Run("delivered records actual route duration", func(t *testing.T) {
		_, routeRepo, _, _, uc := setup(domain.StatusEnRouteDropoff)

		_, err := uc.Execute(ctx, in.TransitionStatusInput{
			DeliveryID: "d-1",
			ToStatus:   domain.StatusDelivered,
			ActorID:    "courier-7",
		})
		require.NoError(t, err)

		seconds, ok := routeRepo.actualDurations["d-1"]
		require.True(t, ok)
		// доставка создана ~10 минут назад
		assert.InDelta(t, 600, seconds, 5)
	})

	t.Run("publish failure does not fail the transition", func(t *testing.T) {
		repo := newFakeDeliveryRepo(testDelivery(domain.StatusPending))
		pub := &fakeEventPublisher{publishErr: assert.AnError}
		uc := NewTransitionStatusUseCase(repo, newFakeRouteRepo(), &fakeNotifier{}, pub, NewKeyedMutex(), log)

		output, err := uc.Execute(ctx, in.TransitionStatusInput{
			DeliveryID: "d-1",
			ToStatus:   domain.StatusCancelled,
			ActorID:    "dispatcher-1",
		})
		require.NoError(t, err)
		assert.Equal(t, domain.StatusCancelled, output.Status)
	})
}

func TestAssignCourierUseCase(t *testing.T) {
	log := logger.NewLogger("test")
	ctx := context.Background()

	t.Run("assigns courier atomically with status", func(t *testing.T) {
		repo := newFakeDeliveryRepo(testDelivery(domain.StatusPending))
		notifier := &fakeNotifier{}
		pub := &fakeEventPublisher{}
		uc := NewAssignCourierUseCase(repo, notifier, pub, NewKeyedMutex(), log)

		output, err := uc.Execute(ctx, in.AssignCourierInput{
			DeliveryID: "d-1",
			CourierID:  "courier-7",
			ActorID:    "dispatcher-1",
		})
		require.NoError(t, err)
		assert.Equal(t, domain.StatusAssigned, output.Status)

		d := repo.deliveries["d-1"]
		assert.Equal(t, domain.StatusAssigned, d.Status)
		require.NotNil(t, d.CourierID)
		assert.Equal(t, "courier-7", *d.CourierID)
		require.Len(t, pub.published, 1)
		assert.Equal(t, domain.EventStatusChanged, pub.published[0].eventType)
	})

	t.Run("assignment requires pending status", func(t *testing.T) {
		repo := newFakeDeliveryRepo(testDelivery(domain.StatusPickedUp))
		uc := NewAssignCourierUseCase(repo, &fakeNotifier{}, &fakeEventPublisher{}, NewKeyedMutex(), log)

		_, err := uc.Execute(ctx, in.AssignCourierInput{
			DeliveryID: "d-1",
			CourierID:  "courier-7",
		})
		assert.ErrorIs(t, err, domain.ErrIllegalTransition)
		assert.Nil(t, repo.deliveries["d-1"].CourierID)
	})
}
