package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	t.Run("canonical path steps forward", func(t *testing.T) {
		assert.True(t, CanTransition(StatusPending, StatusAssigned))
		assert.True(t, CanTransition(StatusAssigned, StatusEnRoutePickup))
		assert.True(t, CanTransition(StatusEnRoutePickup, StatusPickedUp))
		assert.True(t, CanTransition(StatusPickedUp, StatusEnRouteDropoff))
		assert.True(t, CanTransition(StatusEnRouteDropoff, StatusDelivered))
	})

	t.Run("skipping steps is forbidden", func(t *testing.T) {
		assert.False(t, CanTransition(StatusPending, StatusDelivered))
		assert.False(t, CanTransition(StatusPending, StatusEnRoutePickup))
		assert.False(t, CanTransition(StatusAssigned, StatusPickedUp))
	})

	t.Run("moving backwards is forbidden", func(t *testing.T) {
		assert.False(t, CanTransition(StatusPickedUp, StatusAssigned))
		assert.False(t, CanTransition(StatusAssigned, StatusPending))
	})

	t.Run("cancel allowed from any non-terminal status", func(t *testing.T) {
		for _, from := range []string{
			StatusPending, StatusAssigned, StatusEnRoutePickup,
			StatusPickedUp, StatusEnRouteDropoff,
		} {
			assert.True(t, CanTransition(from, StatusCancelled), "from %s", from)
		}
	})

	t.Run("terminal statuses are frozen", func(t *testing.T) {
		assert.False(t, CanTransition(StatusDelivered, StatusCancelled))
		assert.False(t, CanTransition(StatusCancelled, StatusPending))
		assert.False(t, CanTransition(StatusDelivered, StatusDelivered))
	})
}

func TestCheckTransition(t *testing.T) {
	t.Run("legal move passes", func(t *testing.T) {
		assert.NoError(t, CheckTransition(StatusPending, StatusAssigned))
	})

	t.Run("unknown target status", func(t *testing.T) {
		err := CheckTransition(StatusPending, "teleported")
		assert.ErrorIs(t, err, ErrIllegalTransition)
	})

	t.Run("illegal move names both statuses", func(t *testing.T) {
		err := CheckTransition(StatusPending, StatusDelivered)
		assert.ErrorIs(t, err, ErrIllegalTransition)
		assert.Contains(t, err.Error(), StatusPending)
		assert.Contains(t, err.Error(), StatusDelivered)
	})
}

func TestValidStatus(t *testing.T) {
	assert.True(t, ValidStatus(StatusPending))
	assert.True(t, ValidStatus(StatusCancelled))
	assert.False(t, ValidStatus(""))
	assert.False(t, ValidStatus("PENDING"))
}
