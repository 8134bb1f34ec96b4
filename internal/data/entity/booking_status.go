package entity

import "fmt"

type BookingStatus string

const (
	BookingStatusPendingPayment     BookingStatus = "PENDING_PAYMENT"
	BookingStatusPaymentReceived    BookingStatus = "PAYMENT_RECEIVED"
	BookingStatusConfirmed          BookingStatus = "CONFIRMED"
	BookingStatusModified           BookingStatus = "MODIFIED"
	BookingStatusCheckedIn          BookingStatus = "CHECKED_IN"
	BookingStatusInProgress         BookingStatus = "IN_PROGRESS"
	BookingStatusCompleted          BookingStatus = "COMPLETED"
	BookingStatusCancelledByUser    BookingStatus = "CANCELLED_BY_USER"
	BookingStatusCancelledByAdmin   BookingStatus = "CANCELLED_BY_ADMIN"
	BookingStatusCancelledNoPayment BookingStatus = "CANCELLED_NO_PAYMENT"
	BookingStatusNoShow             BookingStatus = "NO_SHOW"
	BookingStatusRefunded           BookingStatus = "REFUNDED"
)

var cancellations = []BookingStatus{
	BookingStatusCancelledByUser,
	BookingStatusCancelledByAdmin,
}

// validTransitions is the booking lifecycle. Every status must appear as a key;
// terminal statuses map to an empty list.
var validTransitions = map[BookingStatus][]BookingStatus{
	BookingStatusPendingPayment: append([]BookingStatus{
		BookingStatusPaymentReceived,
		BookingStatusConfirmed,
		BookingStatusModified,
		BookingStatusCancelledNoPayment,
		BookingStatusRefunded,
	}, cancellations...),
	BookingStatusPaymentReceived: append([]BookingStatus{
		BookingStatusConfirmed,
		BookingStatusModified,
		BookingStatusRefunded,
	}, cancellations...),
	BookingStatusConfirmed: append([]BookingStatus{
		BookingStatusModified,
		BookingStatusCheckedIn,
		BookingStatusNoShow,
		BookingStatusRefunded,
	}, cancellations...),
	BookingStatusModified: append([]BookingStatus{
		BookingStatusConfirmed,
		BookingStatusModified,
		BookingStatusCancelledNoPayment,
		BookingStatusCheckedIn,
		BookingStatusNoShow,
		BookingStatusRefunded,
	}, cancellations...),
	BookingStatusCheckedIn: append([]BookingStatus{
		BookingStatusInProgress,
		BookingStatusRefunded,
	}, cancellations...),
	BookingStatusInProgress: append([]BookingStatus{
		BookingStatusCompleted,
		BookingStatusRefunded,
	}, cancellations...),
	BookingStatusCompleted:          {},
	BookingStatusCancelledByUser:    {},
	BookingStatusCancelledByAdmin:   {},
	BookingStatusCancelledNoPayment: {},
	BookingStatusNoShow:             {},
	BookingStatusRefunded:           {},
}

// Statuses that occupy the room for conflict detection. A new status has to be
// classified here explicitly.
var slotHolding = map[BookingStatus]bool{
	BookingStatusPendingPayment:  true,
	BookingStatusPaymentReceived: true,
	BookingStatusConfirmed:       true,
	BookingStatusModified:        true,
	BookingStatusCheckedIn:       true,
	BookingStatusInProgress:      true,
}

// Targets an admin may set directly, bypassing validTransitions.
var adminSettable = map[BookingStatus]bool{
	BookingStatusConfirmed:        true,
	BookingStatusCancelledByAdmin: true,
	BookingStatusCompleted:        true,
	BookingStatusCheckedIn:        true,
	BookingStatusInProgress:       true,
	BookingStatusNoShow:           true,
}

func (s BookingStatus) IsValid() bool {
	_, ok := validTransitions[s]
	return ok
}

func (s BookingStatus) CanTransitionTo(target BookingStatus) bool {
	for _, t := range validTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// IsTerminal returns true if no further transitions are possible. Unknown
// statuses are treated as terminal.
func (s BookingStatus) IsTerminal() bool {
	return len(validTransitions[s]) == 0
}

func (s BookingStatus) IsSlotHolding() bool {
	return slotHolding[s]
}

func (s BookingStatus) IsCancelled() bool {
	switch s {
	case BookingStatusCancelledByUser, BookingStatusCancelledByAdmin, BookingStatusCancelledNoPayment:
		return true
	}
	return false
}

// IsMutable reports whether date, time or headcount may still change. Only
// states that can move to MODIFIED qualify, so a booking that is checked in,
// running, marked no-show or refunded is frozen as well.
func (s BookingStatus) IsMutable() bool {
	return s.CanTransitionTo(BookingStatusModified)
}

func (s BookingStatus) IsAdminSettable() bool {
	return adminSettable[s]
}

func (s BookingStatus) String() string {
	return string(s)
}

func ParseBookingStatus(s string) (BookingStatus, error) {
	status := BookingStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid booking status: %s", s)
	}
	return status, nil
}

// SlotHoldingStatuses lists the holding set as strings, for SQL parameters.
func SlotHoldingStatuses() []string {
	out := make([]string, 0, len(slotHolding))
	for _, s := range SlotHoldingStatusList() {
		out = append(out, string(s))
	}
	return out
}

func SlotHoldingStatusList() []BookingStatus {
	out := make([]BookingStatus, 0, len(slotHolding))
	for _, s := range AllBookingStatuses() {
		if s.IsSlotHolding() {
			out = append(out, s)
		}
	}
	return out
}

func AllBookingStatuses() []BookingStatus {
	return []BookingStatus{
		BookingStatusPendingPayment,
		BookingStatusPaymentReceived,
		BookingStatusConfirmed,
		BookingStatusModified,
		BookingStatusCheckedIn,
		BookingStatusInProgress,
		BookingStatusCompleted,
		BookingStatusCancelledByUser,
		BookingStatusCancelledByAdmin,
		BookingStatusCancelledNoPayment,
		BookingStatusNoShow,
		BookingStatusRefunded,
	}
}
