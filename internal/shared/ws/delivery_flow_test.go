package ws

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deliverytrack/internal/shared/config"
	"deliverytrack/internal/shared/logger"
	in "deliverytrack/internal/tracking/application/ports/in"
	out "deliverytrack/internal/tracking/application/ports/out"
	"deliverytrack/internal/tracking/application/usecase"
	"deliverytrack/internal/tracking/domain"
	"deliverytrack/internal/tracking/fee"
)

// Сквозной сценарий: create -> assign -> пинги -> delivered через настоящие
// use cases и настоящую очередь сессии хаба. In-memory реализации портов
// хранения вместо Postgres/RabbitMQ.

type memDeliveryStore struct {
	deliveries map[string]*domain.Delivery
}

func (s *memDeliveryStore) Create(ctx context.Context, d *domain.Delivery) error {
	copied := *d
	s.deliveries[d.ID] = &copied
	return nil
}

func (s *memDeliveryStore) FindByID(ctx context.Context, deliveryID string) (*domain.Delivery, error) {
	d, ok := s.deliveries[deliveryID]
	if !ok {
		return nil, domain.ErrDeliveryNotFound
	}
	copied := *d
	return &copied, nil
}

func (s *memDeliveryStore) FindByOrderID(ctx context.Context, orderID string) (*domain.Delivery, error) {
	for _, d := range s.deliveries {
		if d.OrderID == orderID {
			copied := *d
			return &copied, nil
		}
	}
	return nil, domain.ErrDeliveryNotFound
}

func (s *memDeliveryStore) Transition(ctx context.Context, event *domain.StatusEvent, courierID *string) (*domain.Delivery, error) {
	d, ok := s.deliveries[event.DeliveryID]
	if !ok || d.Status != event.FromStatus {
		return nil, domain.ErrIllegalTransition
	}
	d.Status = event.ToStatus
	d.LastUpdatedAt = event.OccurredAt
	if courierID != nil {
		d.CourierID = courierID
	}
	copied := *d
	return &copied, nil
}

type memPingStore struct {
	pings []domain.LocationPing
}

func (s *memPingStore) Create(ctx context.Context, ping *domain.LocationPing) error {
	s.pings = append(s.pings, *ping)
	return nil
}

func (s *memPingStore) Latest(ctx context.Context, deliveryID string) (*domain.LocationPing, error) {
	var latest *domain.LocationPing
	for i := range s.pings {
		p := &s.pings[i]
		if p.DeliveryID == deliveryID && (latest == nil || p.CapturedAt.After(latest.CapturedAt)) {
			latest = p
		}
	}
	if latest == nil {
		return nil, nil
	}
	copied := *latest
	return &copied, nil
}

func (s *memPingStore) ListSince(ctx context.Context, deliveryID string, since *time.Time) ([]domain.LocationPing, error) {
	var result []domain.LocationPing
	for _, p := range s.pings {
		if p.DeliveryID == deliveryID {
			result = append(result, p)
		}
	}
	return result, nil
}

type memRouteStore struct {
	routes map[string]*domain.Route
}

func (s *memRouteStore) Put(ctx context.Context, route *domain.Route) error {
	copied := *route
	s.routes[route.DeliveryID] = &copied
	return nil
}

func (s *memRouteStore) FindByDelivery(ctx context.Context, deliveryID string) (*domain.Route, error) {
	route, ok := s.routes[deliveryID]
	if !ok {
		return nil, nil
	}
	copied := *route
	return &copied, nil
}

func (s *memRouteStore) SetActualDuration(ctx context.Context, deliveryID string, seconds int) error {
	if route, ok := s.routes[deliveryID]; ok {
		route.ActualDurationSeconds = &seconds
	}
	return nil
}

type staticRouteProvider struct{}

func (p *staticRouteProvider) ComputeRoute(ctx context.Context, origin, destination domain.Coordinate, mode string) (*out.RouteInfo, error) {
	return &out.RouteInfo{DistanceMeters: 4200, DurationSeconds: 900}, nil
}

func (p *staticRouteProvider) Geocode(ctx context.Context, address string) (*domain.Coordinate, error) {
	return nil, nil
}

type noopPublisher struct{}

func (p *noopPublisher) PublishDeliveryEvent(ctx context.Context, eventType string, data out.DeliveryEventData) error {
	return nil
}

// hubNotifier — то же, что production-адаптер над хабом: fanout в очереди сессий
type hubNotifier struct {
	hub *Hub
}

func (n *hubNotifier) PublishToDelivery(ctx context.Context, deliveryID string, notification out.DeliveryNotification) {
	n.hub.PublishToDelivery(deliveryID, notification)
}

func TestDeliveryLifecycleFanout(t *testing.T) {
	log := logger.NewLogger("test")
	ctx := context.Background()

	hub := newTestHub(64)
	subscriber := newTestSession(hub, "sub")
	notifier := &hubNotifier{hub: hub}

	deliveryStore := &memDeliveryStore{deliveries: map[string]*domain.Delivery{}}
	pingStore := &memPingStore{}
	routeStore := &memRouteStore{routes: map[string]*domain.Route{}}
	zones := fee.NewZones([]domain.FeeZone{
		{ID: "near", Name: "Near", MinDistanceKm: 0, MaxDistanceKm: 15, BaseFee: 20, PerKmRate: 5, IsActive: true},
	})
	pub := &noopPublisher{}
	locks := usecase.NewKeyedMutex()

	routingCfg := config.RoutingConfig{TransportMode: "bicycle"}
	trackingCfg := config.TrackingConfig{
		PickupRadiusMeters: 150,
		FallbackFee:        100,
		AvgCourierSpeedKmh: 25,
	}

	createUC := usecase.NewCreateDeliveryUseCase(deliveryStore, routeStore, &staticRouteProvider{}, zones, pub, routingCfg, trackingCfg, log)
	transitionUC := usecase.NewTransitionStatusUseCase(deliveryStore, routeStore, notifier, pub, locks, log)
	assignUC := usecase.NewAssignCourierUseCase(deliveryStore, notifier, pub, locks, log)
	recordPingUC := usecase.NewRecordPingUseCase(pingStore, deliveryStore, notifier, pub, transitionUC, trackingCfg, log)

	created, err := createUC.Execute(ctx, in.CreateDeliveryInput{
		OrderID:    "order-1",
		PickupLat:  55.75,
		PickupLng:  37.61,
		DropoffLat: 55.76,
		DropoffLng: 37.64,
	})
	require.NoError(t, err)
	deliveryID := created.DeliveryID

	hub.Subscribe(subscriber, deliveryID)

	_, err = assignUC.Execute(ctx, in.AssignCourierInput{
		DeliveryID: deliveryID,
		CourierID:  "courier-7",
		ActorID:    "dispatcher-1",
	})
	require.NoError(t, err)

	base := time.Now().UTC()
	ping := func(lat, lng float64, capturedAt time.Time) {
		t.Helper()
		_, err := recordPingUC.Execute(ctx, in.RecordPingInput{
			DeliveryID: deliveryID,
			CourierID:  "courier-7",
			Latitude:   lat,
			Longitude:  lng,
			CapturedAt: capturedAt,
		})
		require.NoError(t, err)
	}
	transition := func(toStatus string) {
		t.Helper()
		_, err := transitionUC.Execute(ctx, in.TransitionStatusInput{
			DeliveryID: deliveryID,
			ToStatus:   toStatus,
			ActorID:    "courier-7",
		})
		require.NoError(t, err)
	}

	// Первый пинг у точки pickup: assigned -> en_route_pickup выводится сам
	ping(55.75, 37.61, base)
	transition(domain.StatusPickedUp)
	ping(55.755, 37.625, base.Add(time.Minute))
	transition(domain.StatusEnRouteDropoff)
	ping(55.76, 37.64, base.Add(2*time.Minute))
	transition(domain.StatusDelivered)

	var statusSeq []string
	var positionTimes []time.Time
	for _, raw := range drain(subscriber) {
		var msg struct {
			Type string `json:"type"`
			Data struct {
				ToStatus   string `json:"to_status"`
				CapturedAt string `json:"captured_at"`
			} `json:"data"`
		}
		require.NoError(t, json.Unmarshal([]byte(raw), &msg))

		switch msg.Type {
		case "status":
			statusSeq = append(statusSeq, msg.Data.ToStatus)
		case "position":
			capturedAt, err := time.Parse(time.RFC3339, msg.Data.CapturedAt)
			require.NoError(t, err)
			positionTimes = append(positionTimes, capturedAt)
		default:
			t.Fatalf("unexpected message type %q", msg.Type)
		}
	}

	// Ровно одно событие на каждый переход, в порядке жизненного цикла
	assert.Equal(t, []string{
		domain.StatusAssigned,
		domain.StatusEnRoutePickup,
		domain.StatusPickedUp,
		domain.StatusEnRouteDropoff,
		domain.StatusDelivered,
	}, statusSeq)

	// Позиции приходят в порядке captured_at
	require.Len(t, positionTimes, 3)
	for i := 1; i < len(positionTimes); i++ {
		assert.False(t, positionTimes[i].Before(positionTimes[i-1]))
	}

	assert.False(t, subscriber.Degraded())
	assert.Equal(t, domain.StatusDelivered, deliveryStore.deliveries[deliveryID].Status)
}
