package usecase

import (
	"context"
	"time"

	in "deliverytrack/internal/tracking/application/ports/in"
	out "deliverytrack/internal/tracking/application/ports/out"
	"deliverytrack/internal/tracking/domain"
)

// Ручные фейки портов: тесты use cases не трогают Postgres/RabbitMQ/WS.

type fakeDeliveryRepo struct {
	deliveries map[string]*domain.Delivery
	events     []domain.StatusEvent

	createErr     error
	transitionErr error
}

func newFakeDeliveryRepo(deliveries ...*domain.Delivery) *fakeDeliveryRepo {
	r := &fakeDeliveryRepo{deliveries: map[string]*domain.Delivery{}}
	for _, d := range deliveries {
		r.deliveries[d.ID] = d
	}
	return r
}

func (r *fakeDeliveryRepo) Create(ctx context.Context, delivery *domain.Delivery) error {
	if r.createErr != nil {
		return r.createErr
	}
	copied := *delivery
	r.deliveries[delivery.ID] = &copied
	return nil
}

func (r *fakeDeliveryRepo) FindByID(ctx context.Context, deliveryID string) (*domain.Delivery, error) {
	d, ok := r.deliveries[deliveryID]
	if !ok {
		return nil, domain.ErrDeliveryNotFound
	}
	copied := *d
	return &copied, nil
}

func (r *fakeDeliveryRepo) FindByOrderID(ctx context.Context, orderID string) (*domain.Delivery, error) {
	for _, d := range r.deliveries {
		if d.OrderID == orderID {
			copied := *d
			return &copied, nil
		}
	}
	return nil, domain.ErrDeliveryNotFound
}

func (r *fakeDeliveryRepo) Transition(ctx context.Context, event *domain.StatusEvent, courierID *string) (*domain.Delivery, error) {
	if r.transitionErr != nil {
		return nil, r.transitionErr
	}
	d, ok := r.deliveries[event.DeliveryID]
	if !ok || d.Status != event.FromStatus {
		return nil, domain.ErrIllegalTransition
	}
	d.Status = event.ToStatus
	d.LastUpdatedAt = event.OccurredAt
	if courierID != nil {
		d.CourierID = courierID
	}
	r.events = append(r.events, *event)
	copied := *d
	return &copied, nil
}

type fakePingRepo struct {
	pings     []domain.LocationPing
	createErr error
}

func (r *fakePingRepo) Create(ctx context.Context, ping *domain.LocationPing) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.pings = append(r.pings, *ping)
	return nil
}

func (r *fakePingRepo) Latest(ctx context.Context, deliveryID string) (*domain.LocationPing, error) {
	var latest *domain.LocationPing
	for i := range r.pings {
		p := &r.pings[i]
		if p.DeliveryID != deliveryID {
			continue
		}
		if latest == nil || p.CapturedAt.After(latest.CapturedAt) ||
			(p.CapturedAt.Equal(latest.CapturedAt) && p.ReceivedAt.After(latest.ReceivedAt)) {
			latest = p
		}
	}
	if latest == nil {
		return nil, nil
	}
	copied := *latest
	return &copied, nil
}

func (r *fakePingRepo) ListSince(ctx context.Context, deliveryID string, since *time.Time) ([]domain.LocationPing, error) {
	var result []domain.LocationPing
	for _, p := range r.pings {
		if p.DeliveryID != deliveryID {
			continue
		}
		if since != nil && p.CapturedAt.Before(*since) {
			continue
		}
		result = append(result, p)
	}
	return result, nil
}

type fakeRouteRepo struct {
	routes          map[string]*domain.Route
	actualDurations map[string]int
	putErr          error
}

func newFakeRouteRepo() *fakeRouteRepo {
	return &fakeRouteRepo{
		routes:          map[string]*domain.Route{},
		actualDurations: map[string]int{},
	}
}

func (r *fakeRouteRepo) Put(ctx context.Context, route *domain.Route) error {
	if r.putErr != nil {
		return r.putErr
	}
	copied := *route
	r.routes[route.DeliveryID] = &copied
	return nil
}

func (r *fakeRouteRepo) FindByDelivery(ctx context.Context, deliveryID string) (*domain.Route, error) {
	route, ok := r.routes[deliveryID]
	if !ok {
		return nil, nil
	}
	copied := *route
	return &copied, nil
}

func (r *fakeRouteRepo) SetActualDuration(ctx context.Context, deliveryID string, seconds int) error {
	r.actualDurations[deliveryID] = seconds
	return nil
}

type fakeStatusEventRepo struct {
	events []domain.StatusEvent
}

func (r *fakeStatusEventRepo) ListByDelivery(ctx context.Context, deliveryID string, since *time.Time) ([]domain.StatusEvent, error) {
	var result []domain.StatusEvent
	for _, e := range r.events {
		if e.DeliveryID != deliveryID {
			continue
		}
		if since != nil && e.OccurredAt.Before(*since) {
			continue
		}
		result = append(result, e)
	}
	return result, nil
}

type fakeFeeZoneRepo struct {
	zones   []domain.FeeZone
	listErr error
}

func (r *fakeFeeZoneRepo) ListAll(ctx context.Context) ([]domain.FeeZone, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	return r.zones, nil
}

type fakeRouteProvider struct {
	info       *out.RouteInfo
	failures   int // первые failures вызовов ComputeRoute падают
	calls      int
	geocoded   *domain.Coordinate
	geocodeErr error
}

func (p *fakeRouteProvider) ComputeRoute(ctx context.Context, origin, destination domain.Coordinate, mode string) (*out.RouteInfo, error) {
	p.calls++
	if p.calls <= p.failures {
		return nil, domain.ErrRouteUnavailable
	}
	if p.info == nil {
		return nil, domain.ErrRouteUnavailable
	}
	copied := *p.info
	return &copied, nil
}

func (p *fakeRouteProvider) Geocode(ctx context.Context, address string) (*domain.Coordinate, error) {
	if p.geocodeErr != nil {
		return nil, p.geocodeErr
	}
	return p.geocoded, nil
}

type publishedEvent struct {
	eventType string
	data      out.DeliveryEventData
}

type fakeEventPublisher struct {
	published  []publishedEvent
	publishErr error
}

func (p *fakeEventPublisher) PublishDeliveryEvent(ctx context.Context, eventType string, data out.DeliveryEventData) error {
	if p.publishErr != nil {
		return p.publishErr
	}
	p.published = append(p.published, publishedEvent{eventType: eventType, data: data})
	return nil
}

type fakeNotifier struct {
	notifications []out.DeliveryNotification
}

func (n *fakeNotifier) PublishToDelivery(ctx context.Context, deliveryID string, notification out.DeliveryNotification) {
	n.notifications = append(n.notifications, notification)
}

type fakeGeocodeCache struct {
	entries map[string]*domain.Coordinate // nil value = негативный результат
	puts    int
}

func newFakeGeocodeCache() *fakeGeocodeCache {
	return &fakeGeocodeCache{entries: map[string]*domain.Coordinate{}}
}

func (c *fakeGeocodeCache) Get(ctx context.Context, address string) (*domain.Coordinate, bool, bool) {
	coord, ok := c.entries[address]
	if !ok {
		return nil, false, false
	}
	return coord, coord != nil, true
}

func (c *fakeGeocodeCache) Put(ctx context.Context, address string, coord *domain.Coordinate) {
	c.entries[address] = coord
	c.puts++
}

type fakeTransitionUC struct {
	inputs []in.TransitionStatusInput
	err    error
}

func (uc *fakeTransitionUC) Execute(ctx context.Context, input in.TransitionStatusInput) (*in.TransitionStatusOutput, error) {
	uc.inputs = append(uc.inputs, input)
	if uc.err != nil {
		return nil, uc.err
	}
	return &in.TransitionStatusOutput{DeliveryID: input.DeliveryID, Status: input.ToStatus}, nil
}
