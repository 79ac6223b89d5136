package transport

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"deliverytrack/internal/shared/logger"
	"deliverytrack/internal/tracking/application/ports/in"
	"deliverytrack/internal/tracking/domain"
)

const maxBodySize = 1 << 20 // 1MB

// HTTPHandler обрабатывает HTTP запросы трекинг-сервиса
type HTTPHandler struct {
	createDeliveryUC   in.CreateDeliveryUseCase
	assignCourierUC    in.AssignCourierUseCase
	recordPingUC       in.RecordPingUseCase
	transitionStatusUC in.TransitionStatusUseCase
	currentStateUC     in.CurrentStateUseCase
	routeDetailUC      in.RouteDetailUseCase
	historyUC          in.HistoryUseCase
	feePreviewUC       in.FeePreviewUseCase
	reloadZonesUC      in.ReloadZonesUseCase
	geocodeUC          in.GeocodeUseCase
	log                *logger.Logger
}

// NewHTTPHandler создает новый HTTP handler
func NewHTTPHandler(
	createDeliveryUC in.CreateDeliveryUseCase,
	assignCourierUC in.AssignCourierUseCase,
	recordPingUC in.RecordPingUseCase,
	transitionStatusUC in.TransitionStatusUseCase,
	currentStateUC in.CurrentStateUseCase,
	routeDetailUC in.RouteDetailUseCase,
	historyUC in.HistoryUseCase,
	feePreviewUC in.FeePreviewUseCase,
	reloadZonesUC in.ReloadZonesUseCase,
	geocodeUC in.GeocodeUseCase,
	log *logger.Logger,
) *HTTPHandler {
	return &HTTPHandler{
		createDeliveryUC:   createDeliveryUC,
		assignCourierUC:    assignCourierUC,
		recordPingUC:       recordPingUC,
		transitionStatusUC: transitionStatusUC,
		currentStateUC:     currentStateUC,
		routeDetailUC:      routeDetailUC,
		historyUC:          historyUC,
		feePreviewUC:       feePreviewUC,
		reloadZonesUC:      reloadZonesUC,
		geocodeUC:          geocodeUC,
		log:                log,
	}
}

// RegisterRoutes регистрирует все HTTP маршруты
func (h *HTTPHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware func(http.HandlerFunc) http.HandlerFunc) {
	// liveness
	mux.HandleFunc("GET /health", h.handleHealth)

	mux.HandleFunc("POST /deliveries", authMiddleware(h.handleCreateDelivery))
	mux.HandleFunc("POST /deliveries/{id}/assign", authMiddleware(h.handleAssignCourier))
	mux.HandleFunc("POST /deliveries/{id}/pings", authMiddleware(h.handleRecordPing))
	mux.HandleFunc("PUT /deliveries/{id}/status", authMiddleware(h.handleTransitionStatus))
	mux.HandleFunc("GET /deliveries/{id}/state", authMiddleware(h.handleCurrentState))
	mux.HandleFunc("GET /deliveries/{id}/route", authMiddleware(h.handleRouteDetail))
	mux.HandleFunc("GET /deliveries/{id}/history", authMiddleware(h.handleHistory))

	mux.HandleFunc("POST /fees/preview", authMiddleware(h.handleFeePreview))
	mux.HandleFunc("POST /admin/fee-zones/reload", authMiddleware(h.handleReloadZones))
	mux.HandleFunc("POST /geocode", authMiddleware(h.handleGeocode))
}

// handleHealth обрабатывает health check
func (h *HTTPHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// CreateDeliveryHTTPRequest — HTTP DTO для создания доставки
type CreateDeliveryHTTPRequest struct {
	OrderID    string  `json:"order_id"`
	PickupLat  float64 `json:"pickup_lat"`
	PickupLng  float64 `json:"pickup_lng"`
	DropoffLat float64 `json:"dropoff_lat"`
	DropoffLng float64 `json:"dropoff_lng"`
}

// handleCreateDelivery обрабатывает POST /deliveries
func (h *HTTPHandler) handleCreateDelivery(w http.ResponseWriter, r *http.Request) {
	var req CreateDeliveryHTTPRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	if req.OrderID == "" {
		h.respondError(w, http.StatusBadRequest, "validation_error", "order_id is required")
		return
	}

	output, err := h.createDeliveryUC.Execute(r.Context(), in.CreateDeliveryInput{
		OrderID:    req.OrderID,
		PickupLat:  req.PickupLat,
		PickupLng:  req.PickupLng,
		DropoffLat: req.DropoffLat,
		DropoffLng: req.DropoffLng,
	})
	if err != nil {
		h.handleUseCaseError(w, err)
		return
	}

	h.respondJSON(w, http.StatusCreated, output)
}

// AssignCourierHTTPRequest — HTTP DTO для назначения курьера
type AssignCourierHTTPRequest struct {
	CourierID string `json:"courier_id"`
}

// handleAssignCourier обрабатывает POST /deliveries/{id}/assign
func (h *HTTPHandler) handleAssignCourier(w http.ResponseWriter, r *http.Request) {
	userID, _ := userFromContext(r.Context())

	var req AssignCourierHTTPRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	if req.CourierID == "" {
		h.respondError(w, http.StatusBadRequest, "validation_error", "courier_id is required")
		return
	}

	output, err := h.assignCourierUC.Execute(r.Context(), in.AssignCourierInput{
		DeliveryID: r.PathValue("id"),
		CourierID:  req.CourierID,
		ActorID:    userID,
	})
	if err != nil {
		h.handleUseCaseError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, output)
}

// RecordPingHTTPRequest — HTTP DTO для GPS-пинга курьера
type RecordPingHTTPRequest struct {
	Latitude       float64   `json:"latitude"`
	Longitude      float64   `json:"longitude"`
	HeadingDegrees *float64  `json:"heading_degrees,omitempty"`
	Speed          *float64  `json:"speed,omitempty"`
	AccuracyMeters *float64  `json:"accuracy_meters,omitempty"`
	CapturedAt     time.Time `json:"captured_at"`
}

// handleRecordPing обрабатывает POST /deliveries/{id}/pings
func (h *HTTPHandler) handleRecordPing(w http.ResponseWriter, r *http.Request) {
	userID, _ := userFromContext(r.Context())

	var req RecordPingHTTPRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	output, err := h.recordPingUC.Execute(r.Context(), in.RecordPingInput{
		DeliveryID:     r.PathValue("id"),
		CourierID:      userID,
		Latitude:       req.Latitude,
		Longitude:      req.Longitude,
		HeadingDegrees: req.HeadingDegrees,
		Speed:          req.Speed,
		AccuracyMeters: req.AccuracyMeters,
		CapturedAt:     req.CapturedAt,
	})
	if err != nil {
		h.handleUseCaseError(w, err)
		return
	}

	h.respondJSON(w, http.StatusCreated, output)
}

// TransitionStatusHTTPRequest — HTTP DTO для явного перехода статуса
type TransitionStatusHTTPRequest struct {
	ToStatus  string   `json:"to_status"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	Metadata  *string  `json:"metadata,omitempty"`
}

// handleTransitionStatus обрабатывает PUT /deliveries/{id}/status
func (h *HTTPHandler) handleTransitionStatus(w http.ResponseWriter, r *http.Request) {
	userID, _ := userFromContext(r.Context())

	var req TransitionStatusHTTPRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	if req.ToStatus == "" {
		h.respondError(w, http.StatusBadRequest, "validation_error", "to_status is required")
		return
	}

	output, err := h.transitionStatusUC.Execute(r.Context(), in.TransitionStatusInput{
		DeliveryID: r.PathValue("id"),
		ToStatus:   req.ToStatus,
		ActorID:    userID,
		Latitude:   req.Latitude,
		Longitude:  req.Longitude,
		Metadata:   req.Metadata,
	})
	if err != nil {
		h.handleUseCaseError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, output)
}

// handleCurrentState обрабатывает GET /deliveries/{id}/state
func (h *HTTPHandler) handleCurrentState(w http.ResponseWriter, r *http.Request) {
	output, err := h.currentStateUC.Execute(r.Context(), r.PathValue("id"))
	if err != nil {
		h.handleUseCaseError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, output)
}

// handleRouteDetail обрабатывает GET /deliveries/{id}/route
func (h *HTTPHandler) handleRouteDetail(w http.ResponseWriter, r *http.Request) {
	output, err := h.routeDetailUC.Execute(r.Context(), r.PathValue("id"))
	if err != nil {
		h.handleUseCaseError(w, err)
		return
	}
	if output == nil {
		h.respondError(w, http.StatusNotFound, "route_not_found", "no route stored for delivery")
		return
	}

	h.respondJSON(w, http.StatusOK, output)
}

// HistoryHTTPResponse — HTTP DTO истории доставки
type HistoryHTTPResponse struct {
	DeliveryID   string                `json:"delivery_id"`
	Pings        []domain.LocationPing `json:"pings"`
	StatusEvents []domain.StatusEvent  `json:"status_events"`
}

// handleHistory обрабатывает GET /deliveries/{id}/history?since=RFC3339
func (h *HTTPHandler) handleHistory(w http.ResponseWriter, r *http.Request) {
	var since *time.Time
	if raw := r.URL.Query().Get("since"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			h.respondError(w, http.StatusBadRequest, "validation_error", "since must be RFC3339")
			return
		}
		since = &parsed
	}

	output, err := h.historyUC.Execute(r.Context(), r.PathValue("id"), since)
	if err != nil {
		h.handleUseCaseError(w, err)
		return
	}

	// Пинги отдаются ленивой последовательностью; JSON-границе нужен срез
	resp := HistoryHTTPResponse{
		DeliveryID:   output.DeliveryID,
		Pings:        []domain.LocationPing{},
		StatusEvents: output.StatusEvents,
	}
	for ping := range output.PingSeq() {
		resp.Pings = append(resp.Pings, ping)
	}
	if resp.StatusEvents == nil {
		resp.StatusEvents = []domain.StatusEvent{}
	}

	h.respondJSON(w, http.StatusOK, resp)
}

// FeePreviewHTTPRequest — HTTP DTO для расчета fee без создания доставки
type FeePreviewHTTPRequest struct {
	DistanceKm float64 `json:"distance_km"`
}

// handleFeePreview обрабатывает POST /fees/preview
func (h *HTTPHandler) handleFeePreview(w http.ResponseWriter, r *http.Request) {
	var req FeePreviewHTTPRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	output, err := h.feePreviewUC.Execute(r.Context(), in.FeePreviewInput{DistanceKm: req.DistanceKm})
	if err != nil {
		h.handleUseCaseError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, output)
}

// handleReloadZones обрабатывает POST /admin/fee-zones/reload
func (h *HTTPHandler) handleReloadZones(w http.ResponseWriter, r *http.Request) {
	output, err := h.reloadZonesUC.Execute(r.Context())
	if err != nil {
		h.handleUseCaseError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, output)
}

// GeocodeHTTPRequest — HTTP DTO для геокодирования адреса
type GeocodeHTTPRequest struct {
	Address string `json:"address"`
}

// handleGeocode обрабатывает POST /geocode.
// Ненайденный адрес — это 200 с found=false, не ошибка.
func (h *HTTPHandler) handleGeocode(w http.ResponseWriter, r *http.Request) {
	var req GeocodeHTTPRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	if req.Address == "" {
		h.respondError(w, http.StatusBadRequest, "validation_error", "address is required")
		return
	}

	output, err := h.geocodeUC.Execute(r.Context(), req.Address)
	if err != nil {
		h.handleUseCaseError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, output)
}

// decodeBody парсит JSON тело запроса; false означает, что ответ уже отправлен
func (h *HTTPHandler) decodeBody(w http.ResponseWriter, r *http.Request, dest interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dest); err != nil {
		if errors.Is(err, io.EOF) {
			h.respondError(w, http.StatusBadRequest, "validation_error", "empty request body")
			return false
		}
		h.log.Warn(logger.Entry{
			Action:  "parse_request_failed",
			Message: err.Error(),
		})
		h.respondError(w, http.StatusBadRequest, "validation_error", "invalid request format")
		return false
	}

	return true
}

// handleUseCaseError сопоставляет доменные ошибки с HTTP статусами
func (h *HTTPHandler) handleUseCaseError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidCoordinate):
		h.respondError(w, http.StatusBadRequest, "invalid_coordinate", err.Error())
	case errors.Is(err, domain.ErrInvalidDistance):
		h.respondError(w, http.StatusBadRequest, "invalid_distance", err.Error())
	case errors.Is(err, domain.ErrDeliveryNotFound):
		h.respondError(w, http.StatusNotFound, "delivery_not_found", err.Error())
	case errors.Is(err, domain.ErrIllegalTransition):
		h.respondError(w, http.StatusConflict, "illegal_transition", err.Error())
	case errors.Is(err, domain.ErrMalformedGeometry):
		h.respondError(w, http.StatusInternalServerError, "malformed_geometry", err.Error())
	case errors.Is(err, domain.ErrRouteUnavailable):
		h.respondError(w, http.StatusBadGateway, "route_unavailable", err.Error())
	default:
		h.log.Error(logger.Entry{
			Action:  "usecase_error",
			Message: err.Error(),
			Error:   &logger.ErrObj{Msg: err.Error()},
		})
		h.respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

// respondJSON отправляет JSON ответ
func (h *HTTPHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error(logger.Entry{
			Action:  "encode_response_failed",
			Message: err.Error(),
			Error:   &logger.ErrObj{Msg: err.Error()},
		})
	}
}

// respondError отправляет JSON с ошибкой и ее видом
func (h *HTTPHandler) respondError(w http.ResponseWriter, status int, kind, message string) {
	h.respondJSON(w, status, map[string]string{"error": message, "kind": kind})
}
