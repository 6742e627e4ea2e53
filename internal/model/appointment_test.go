package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	allowed := []struct{ from, to AppointmentStatus }{
		{AppointmentStatusPending, AppointmentStatusConfirmed},
		{AppointmentStatusPending, AppointmentStatusCheckedIn},
		{AppointmentStatusPending, AppointmentStatusCancelled},
		{AppointmentStatusConfirmed, AppointmentStatusCheckedIn},
		{AppointmentStatusConfirmed, AppointmentStatusCancelled},
		{AppointmentStatusConfirmed, AppointmentStatusNoShow},
		{AppointmentStatusCheckedIn, AppointmentStatusCompleted},
	}
	for _, tc := range allowed {
		assert.True(t, CanTransition(tc.from, tc.to), "%s -> %s should be allowed", tc.from, tc.to)
	}

	denied := []struct{ from, to AppointmentStatus }{
		{AppointmentStatusPending, AppointmentStatusNoShow},
		{AppointmentStatusPending, AppointmentStatusCompleted},
		{AppointmentStatusConfirmed, AppointmentStatusCompleted},
		{AppointmentStatusCheckedIn, AppointmentStatusCancelled},
		{AppointmentStatusCompleted, AppointmentStatusCancelled},
		{AppointmentStatusCancelled, AppointmentStatusPending},
		{AppointmentStatusNoShow, AppointmentStatusConfirmed},
	}
	for _, tc := range denied {
		assert.False(t, CanTransition(tc.from, tc.to), "%s -> %s should be denied", tc.from, tc.to)
	}
}
