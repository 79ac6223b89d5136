package domain

import "errors"

var (
	// ErrInvalidCoordinate возвращается при координатах вне допустимых диапазонов
	ErrInvalidCoordinate = errors.New("invalid coordinate")

	// ErrMalformedGeometry возвращается при некорректной polyline-геометрии
	ErrMalformedGeometry = errors.New("malformed geometry")

	// ErrIllegalTransition возвращается при недопустимом переходе статуса
	ErrIllegalTransition = errors.New("illegal status transition")

	// ErrDeliveryNotFound возвращается когда доставка не найдена
	ErrDeliveryNotFound = errors.New("delivery not found")

	// ErrInvalidDistance возвращается при отрицательной дистанции в запросе
	ErrInvalidDistance = errors.New("invalid distance")

	// ErrRouteUnavailable возвращается при недоступности routing-провайдера
	ErrRouteUnavailable = errors.New("route unavailable")

	// ErrConfigurationError возвращается при некорректной конфигурации (например, ноль активных зон)
	ErrConfigurationError = errors.New("configuration error")
)
