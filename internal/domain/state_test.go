package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransition_AllowedPaths(t *testing.T) {
	testCases := []struct {
		name    string
		current BookingStatus
		action  BookingAction
		want    BookingStatus
	}{
		{name: "pay from initiated", current: BookingStatusInitiated, action: ActionPay, want: BookingStatusBooked},
		{name: "cancel from initiated", current: BookingStatusInitiated, action: ActionCancel, want: BookingStatusCancelled},
		{name: "cancel from booked", current: BookingStatusBooked, action: ActionCancel, want: BookingStatusCancelled},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			next, err := Transition(tc.current, tc.action)
			assert.NoError(t, err)
			assert.Equal(t, tc.want, next)
		})
	}
}

func TestTransition_RejectedPaths(t *testing.T) {
	testCases := []struct {
		name    string
		current BookingStatus
		action  BookingAction
	}{
		{name: "pay from booked", current: BookingStatusBooked, action: ActionPay},
		{name: "pay from cancelled", current: BookingStatusCancelled, action: ActionPay},
		{name: "cancel from cancelled", current: BookingStatusCancelled, action: ActionCancel},
		{name: "pay from pending", current: BookingStatusPending, action: ActionPay},
		{name: "cancel from pending", current: BookingStatusPending, action: ActionCancel},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			next, err := Transition(tc.current, tc.action)
			assert.Error(t, err)
			assert.Empty(t, next)
			assert.Equal(t, KindConflict, KindOf(err))
			assert.Contains(t, err.Error(), string(tc.current))
			assert.Contains(t, err.Error(), string(tc.action))
		})
	}
}

func TestCanCancel(t *testing.T) {
	assert.True(t, CanCancel(BookingStatusInitiated))
	assert.True(t, CanCancel(BookingStatusBooked))
	assert.False(t, CanCancel(BookingStatusCancelled))
	assert.False(t, CanCancel(BookingStatusPending))
}
