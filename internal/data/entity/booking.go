package entity

import (
	"time"

	"github.com/google/uuid"

	"room-booking/internal/domain"
)

type Booking struct {
	Base
	RoomID            uuid.UUID     `db:"room_id"`
	UserID            string        `db:"user_id"`
	Date              time.Time     `db:"date"`
	StartMinute       int           `db:"start_minute"`
	EndMinute         int           `db:"end_minute"`
	CustomerName      string        `db:"customer_name"`
	CustomerEmail     string        `db:"customer_email"`
	CustomerPhone     *string       `db:"customer_phone"`
	NumberOfPeople    int           `db:"number_of_people"`
	TotalPrice        float64       `db:"total_price"`
	Status            BookingStatus `db:"status"`
	CheckoutSessionID *string       `db:"checkout_session_id"`
	CheckoutExpiresAt *time.Time    `db:"checkout_expires_at"`
	PaymentRef        *string       `db:"payment_ref"`
	RefundRef         *string       `db:"refund_ref"`
	PaymentDate       *time.Time    `db:"payment_date"`
	CancelledAt       *time.Time    `db:"cancelled_at"`
}

func (b *Booking) Slot() domain.Slot {
	return domain.Slot{
		Date:  b.Date,
		Start: domain.ClockTime(b.StartMinute),
		End:   domain.ClockTime(b.EndMinute),
	}
}

func (b *Booking) SetSlot(s domain.Slot) {
	b.Date = s.Date
	b.StartMinute = int(s.Start)
	b.EndMinute = int(s.End)
}

// Booking with the room name joined in, for listings.
type BookingWithRoom struct {
	Booking
	RoomName string `db:"room_name"`
}

// AwaitingPayment reports whether the booking holds its slot without having
// been paid yet. Unpaid bookings may still be modified before checkout.
func (b *Booking) AwaitingPayment() bool {
	if b.PaymentDate != nil {
		return false
	}
	return b.Status == BookingStatusPendingPayment || b.Status == BookingStatusModified
}

// CheckoutOpen reports whether the stored checkout session may still be paid at now.
func (b *Booking) CheckoutOpen(now time.Time) bool {
	return b.CheckoutSessionID != nil && b.CheckoutExpiresAt != nil && now.Before(*b.CheckoutExpiresAt)
}
