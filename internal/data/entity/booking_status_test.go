package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookingStatus_EveryStatusClassified(t *testing.T) {
	for _, s := range AllBookingStatuses() {
		assert.True(t, s.IsValid(), s)
		if s.IsSlotHolding() {
			assert.False(t, s.IsTerminal(), "holding status %s cannot be terminal", s)
		}
	}
	assert.Len(t, AllBookingStatuses(), len(validTransitions))
}

func TestBookingStatus_Terminal(t *testing.T) {
	terminal := []BookingStatus{
		BookingStatusCompleted,
		BookingStatusCancelledByUser,
		BookingStatusCancelledByAdmin,
		BookingStatusCancelledNoPayment,
		BookingStatusNoShow,
		BookingStatusRefunded,
	}
	for _, s := range terminal {
		assert.True(t, s.IsTerminal(), s)
		assert.False(t, s.IsSlotHolding(), s)
	}
	assert.True(t, BookingStatus("BOGUS").IsTerminal())
}

func TestBookingStatus_Transitions(t *testing.T) {
	cases := []struct {
		from, to BookingStatus
		want     bool
	}{
		{BookingStatusPendingPayment, BookingStatusConfirmed, true},
		{BookingStatusPendingPayment, BookingStatusCancelledNoPayment, true},
		{BookingStatusPendingPayment, BookingStatusModified, true},
		{BookingStatusConfirmed, BookingStatusModified, true},
		{BookingStatusModified, BookingStatusConfirmed, true},
		{BookingStatusConfirmed, BookingStatusCheckedIn, true},
		{BookingStatusCheckedIn, BookingStatusInProgress, true},
		{BookingStatusInProgress, BookingStatusCompleted, true},
		{BookingStatusConfirmed, BookingStatusRefunded, true},
		{BookingStatusConfirmed, BookingStatusCancelledNoPayment, false},
		{BookingStatusCheckedIn, BookingStatusModified, false},
		{BookingStatusPendingPayment, BookingStatusCompleted, false},
		{BookingStatusCompleted, BookingStatusCancelledByUser, false},
		{BookingStatusRefunded, BookingStatusConfirmed, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.from.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestBookingStatus_Mutable(t *testing.T) {
	assert.True(t, BookingStatusPendingPayment.IsMutable())
	assert.True(t, BookingStatusConfirmed.IsMutable())
	assert.True(t, BookingStatusModified.IsMutable())
	assert.False(t, BookingStatusCheckedIn.IsMutable())
	assert.False(t, BookingStatusInProgress.IsMutable())
	assert.False(t, BookingStatusNoShow.IsMutable())
	assert.False(t, BookingStatusRefunded.IsMutable())
	assert.False(t, BookingStatusCompleted.IsMutable())
	assert.False(t, BookingStatusCancelledByUser.IsMutable())
}

func TestBookingStatus_AdminSettable(t *testing.T) {
	assert.True(t, BookingStatusNoShow.IsAdminSettable())
	assert.True(t, BookingStatusCancelledByAdmin.IsAdminSettable())
	assert.False(t, BookingStatusRefunded.IsAdminSettable())
	assert.False(t, BookingStatusPendingPayment.IsAdminSettable())
}

func TestParseBookingStatus(t *testing.T) {
	s, err := ParseBookingStatus("CONFIRMED")
	require.NoError(t, err)
	assert.Equal(t, BookingStatusConfirmed, s)

	_, err = ParseBookingStatus("confirmed")
	assert.Error(t, err)
}

func TestSlotHoldingStatuses(t *testing.T) {
	assert.Equal(t, []string{
		"PENDING_PAYMENT", "PAYMENT_RECEIVED", "CONFIRMED", "MODIFIED", "CHECKED_IN", "IN_PROGRESS",
	}, SlotHoldingStatuses())
}
