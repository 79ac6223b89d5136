package domain

import (
	"fmt"
	"iter"
)

// DecodePolyline декодирует polyline-геометрию (дельта-кодирование с precision 1e5,
// формат HERE/Google) в ленивую конечную последовательность координат.
//
// Вся строка валидируется заранее: обрезанный varint-чанк или координата вне
// диапазона дает ErrMalformedGeometry, частичный результат не возвращается.
// Последовательность можно итерировать повторно.
func DecodePolyline(encoded string) (iter.Seq[Coordinate], error) {
	// Полный проход для валидации до того, как отдать итератор
	n := 0
	for c, err := range decodeSeq(encoded) {
		if err != nil {
			return nil, err
		}
		if vErr := ValidateCoordinate(c); vErr != nil {
			return nil, fmt.Errorf("%w: point %d out of range", ErrMalformedGeometry, n)
		}
		n++
	}

	return func(yield func(Coordinate) bool) {
		for c, err := range decodeSeq(encoded) {
			if err != nil {
				return
			}
			if !yield(c) {
				return
			}
		}
	}, nil
}

// decodeSeq — низкоуровневый декодер, отдает ошибку последним элементом
func decodeSeq(encoded string) iter.Seq2[Coordinate, error] {
	return func(yield func(Coordinate, error) bool) {
		index := 0
		lat, lng := 0, 0

		for index < len(encoded) {
			dLat, next, err := decodeVarint(encoded, index)
			if err != nil {
				yield(Coordinate{}, err)
				return
			}
			lat += dLat
			index = next

			dLng, next, err := decodeVarint(encoded, index)
			if err != nil {
				yield(Coordinate{}, err)
				return
			}
			lng += dLng
			index = next

			c := Coordinate{
				Latitude:  float64(lat) / 1e5,
				Longitude: float64(lng) / 1e5,
			}
			if !yield(c, nil) {
				return
			}
		}
	}
}

// decodeVarint читает один zigzag-закодированный varint начиная с index
func decodeVarint(encoded string, index int) (value, next int, err error) {
	shift := 0
	result := 0

	for {
		if index >= len(encoded) {
			return 0, 0, fmt.Errorf("%w: truncated varint chunk", ErrMalformedGeometry)
		}
		b := int(encoded[index]) - 63
		if b < 0 {
			return 0, 0, fmt.Errorf("%w: invalid character at offset %d", ErrMalformedGeometry, index)
		}
		index++
		result |= (b & 0x1f) << shift
		shift += 5
		if b < 0x20 {
			break
		}
		if shift > 35 {
			return 0, 0, fmt.Errorf("%w: varint chunk too long", ErrMalformedGeometry)
		}
	}

	if result&1 != 0 {
		return ^(result >> 1), index, nil
	}
	return result >> 1, index, nil
}
