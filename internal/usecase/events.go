package usecase

import (
	"context"
	"time"

	"go.uber.org/zap"

	"room-booking/internal/data/entity"
	"room-booking/internal/domain"
)

// Routing keys for booking lifecycle events.
const (
	EventBookingCreated       = "booking.created"
	EventBookingModified      = "booking.modified"
	EventBookingCancelled     = "booking.cancelled"
	EventBookingConfirmed     = "booking.confirmed"
	EventBookingRefunded      = "booking.refunded"
	EventBookingExpired       = "booking.expired"
	EventBookingCompleted     = "booking.completed"
	EventBookingStatusChanged = "booking.status_changed"
)

// EventPublisher is satisfied by *mq.Publisher.
type EventPublisher interface {
	PublishJSON(ctx context.Context, key string, v any) error
}

type BookingEvent struct {
	Type       string    `json:"type"`
	BookingID  string    `json:"bookingId"`
	RoomID     string    `json:"roomId"`
	UserID     string    `json:"userId"`
	Status     string    `json:"status"`
	Date       string    `json:"date"`
	StartTime  string    `json:"startTime"`
	EndTime    string    `json:"endTime"`
	TotalPrice float64   `json:"totalPrice"`
	OccurredAt time.Time `json:"occurredAt"`
}

func newBookingEvent(key string, b *entity.Booking, at time.Time) BookingEvent {
	slot := b.Slot()
	return BookingEvent{
		Type:       key,
		BookingID:  b.ID.String(),
		RoomID:     b.RoomID.String(),
		UserID:     b.UserID,
		Status:     string(b.Status),
		Date:       b.Date.Format(domain.DateLayout),
		StartTime:  slot.Start.String(),
		EndTime:    slot.End.String(),
		TotalPrice: b.TotalPrice,
		OccurredAt: at.UTC(),
	}
}

// eventSink publishes after commit. A nil publisher turns it into a no-op,
// and publish failures are logged, never returned.
type eventSink struct {
	pub EventPublisher
	log *zap.Logger
}

func newEventSink(pub EventPublisher, log *zap.Logger) *eventSink {
	return &eventSink{pub: pub, log: log.With(zap.String("component", "events"))}
}

func (s *eventSink) booking(ctx context.Context, key string, b *entity.Booking, at time.Time) {
	if s == nil || s.pub == nil || b == nil {
		return
	}
	if err := s.pub.PublishJSON(ctx, key, newBookingEvent(key, b, at)); err != nil {
		s.log.Warn("Failed to publish booking event",
			zap.Error(err),
			zap.String("event", key),
			zap.String("booking_id", b.ID.String()),
		)
	}
}
