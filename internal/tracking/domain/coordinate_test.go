package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCoordinate(t *testing.T) {
	t.Run("valid coordinate", func(t *testing.T) {
		assert.NoError(t, ValidateCoordinate(Coordinate{Latitude: 55.75, Longitude: 37.61}))
		assert.NoError(t, ValidateCoordinate(Coordinate{Latitude: -90, Longitude: 180}))
		assert.NoError(t, ValidateCoordinate(Coordinate{Latitude: 90, Longitude: -180}))
	})

	t.Run("latitude out of range", func(t *testing.T) {
		err := ValidateCoordinate(Coordinate{Latitude: 90.001, Longitude: 0})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidCoordinate)
	})

	t.Run("longitude out of range", func(t *testing.T) {
		err := ValidateCoordinate(Coordinate{Latitude: 0, Longitude: -180.5})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidCoordinate)
	})
}

func TestDistanceKm(t *testing.T) {
	moscow := Coordinate{Latitude: 55.7558, Longitude: 37.6173}
	spb := Coordinate{Latitude: 59.9343, Longitude: 30.3351}

	t.Run("known distance", func(t *testing.T) {
		d, err := DistanceKm(moscow, spb)
		require.NoError(t, err)
		// Москва — Санкт-Петербург по дуге большого круга
		assert.InDelta(t, 633.0, d, 5.0)
	})

	t.Run("symmetric", func(t *testing.T) {
		ab, err := DistanceKm(moscow, spb)
		require.NoError(t, err)
		ba, err := DistanceKm(spb, moscow)
		require.NoError(t, err)
		assert.Equal(t, ab, ba)
	})

	t.Run("zero for identical points", func(t *testing.T) {
		d, err := DistanceKm(moscow, moscow)
		require.NoError(t, err)
		assert.Zero(t, d)
	})

	t.Run("rounded to two decimals", func(t *testing.T) {
		a := Coordinate{Latitude: 55.7558, Longitude: 37.6173}
		b := Coordinate{Latitude: 55.7601, Longitude: 37.6201}
		d, err := DistanceKm(a, b)
		require.NoError(t, err)
		assert.Equal(t, Round2(d), d)
	})

	t.Run("invalid input rejected", func(t *testing.T) {
		_, err := DistanceKm(Coordinate{Latitude: 91, Longitude: 0}, moscow)
		assert.ErrorIs(t, err, ErrInvalidCoordinate)

		_, err = DistanceKm(moscow, Coordinate{Latitude: 0, Longitude: 181})
		assert.ErrorIs(t, err, ErrInvalidCoordinate)
	})
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 1.23, Round2(1.234))
	assert.Equal(t, 1.24, Round2(1.235))
	assert.Equal(t, 0.0, Round2(0.004))
	assert.Equal(t, -2.5, Round2(-2.499))
}
