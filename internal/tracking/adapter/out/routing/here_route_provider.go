package routing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"deliverytrack/internal/shared/config"
	"deliverytrack/internal/shared/logger"
	"deliverytrack/internal/shared/metrics"
	out "deliverytrack/internal/tracking/application/ports/out"
	"deliverytrack/internal/tracking/domain"
)

// HereRouteProvider — адаптер HERE Routing v8 + HERE Geocoding.
// Делает ровно один HTTP-вызов на обращение: retry — ответственность вызывающего.
type HereRouteProvider struct {
	cfg    config.RoutingConfig
	client *http.Client
	log    *logger.Logger
}

// NewHereRouteProvider создает адаптер с таймаутом из конфигурации
func NewHereRouteProvider(cfg config.RoutingConfig, log *logger.Logger) *HereRouteProvider {
	return &HereRouteProvider{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		log:    log,
	}
}

type hereRoutesResponse struct {
	Routes []struct {
		ID       string `json:"id"`
		Sections []struct {
			Polyline string `json:"polyline"`
			Summary  struct {
				Duration int `json:"duration"`
				Length   int `json:"length"`
			} `json:"summary"`
		} `json:"sections"`
	} `json:"routes"`
}

// ComputeRoute запрашивает маршрут у HERE Routing v8
func (p *HereRouteProvider) ComputeRoute(ctx context.Context, origin, destination domain.Coordinate, mode string) (*out.RouteInfo, error) {
	params := url.Values{}
	params.Set("transportMode", mode)
	params.Set("origin", fmt.Sprintf("%f,%f", origin.Latitude, origin.Longitude))
	params.Set("destination", fmt.Sprintf("%f,%f", destination.Latitude, destination.Longitude))
	params.Set("return", "polyline,summary")
	params.Set("apikey", p.cfg.APIKey)

	endpoint := p.cfg.BaseURL + "/routes?" + params.Encode()

	metrics.RouteProviderCallsTotal.Inc()
	started := time.Now()

	var parsed hereRoutesResponse
	if err := p.getJSON(ctx, endpoint, &parsed); err != nil {
		metrics.RouteProviderFailuresTotal.Inc()
		metrics.RouteProviderDuration.Observe(time.Since(started).Seconds())
		return nil, fmt.Errorf("%w: %v", domain.ErrRouteUnavailable, err)
	}
	metrics.RouteProviderDuration.Observe(time.Since(started).Seconds())

	if len(parsed.Routes) == 0 || len(parsed.Routes[0].Sections) == 0 {
		metrics.RouteProviderFailuresTotal.Inc()
		return nil, fmt.Errorf("%w: provider returned no routes", domain.ErrRouteUnavailable)
	}

	route := parsed.Routes[0]
	info := &out.RouteInfo{
		Geometry:        route.Sections[0].Polyline,
		ProviderRouteID: route.ID,
	}
	for _, section := range route.Sections {
		info.DistanceMeters += section.Summary.Length
		info.DurationSeconds += section.Summary.Duration
	}

	p.log.Debug(logger.Entry{
		Action:  "route_computed",
		Message: "route received from provider",
		Additional: map[string]any{
			"distance_meters":  info.DistanceMeters,
			"duration_seconds": info.DurationSeconds,
			"transport_mode":   mode,
		},
	})

	return info, nil
}

type hereGeocodeResponse struct {
	Items []struct {
		Position struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"position"`
	} `json:"items"`
}

// Geocode переводит адрес в координаты; (nil, nil) если адрес не найден
func (p *HereRouteProvider) Geocode(ctx context.Context, address string) (*domain.Coordinate, error) {
	params := url.Values{}
	params.Set("q", address)
	params.Set("apikey", p.cfg.APIKey)

	endpoint := p.cfg.GeocodeBaseURL + "/geocode?" + params.Encode()

	var parsed hereGeocodeResponse
	if err := p.getJSON(ctx, endpoint, &parsed); err != nil {
		return nil, fmt.Errorf("%w: geocode: %v", domain.ErrRouteUnavailable, err)
	}

	if len(parsed.Items) == 0 {
		return nil, nil
	}

	return &domain.Coordinate{
		Latitude:  parsed.Items[0].Position.Lat,
		Longitude: parsed.Items[0].Position.Lng,
	}, nil
}

func (p *HereRouteProvider) getJSON(ctx context.Context, endpoint string, dest interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("provider returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}
