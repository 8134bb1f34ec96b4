package usecase

import (
	"time"

	"go.uber.org/zap"

	"room-booking/internal/data/repository"
	"room-booking/internal/gateway"
	"room-booking/pkg/utils"
)

type Service struct {
	Room    RoomService
	Booking BookingService
	Payment PaymentService
	Admin   AdminService
}

func NewService(repo *repository.Repository, provider gateway.Provider, events EventPublisher, config *utils.Config, log *zap.Logger) *Service {
	return newService(repo, provider, events, config, time.Now, log)
}

func newService(repo *repository.Repository, provider gateway.Provider, events EventPublisher, config *utils.Config, now func() time.Time, log *zap.Logger) *Service {
	base := serviceBase{
		repo:   repo,
		config: config,
		loc:    config.App.Location(),
		now:    now,
		events: newEventSink(events, log),
	}

	booking := newBookingService(base, provider, log)
	payment := newPaymentService(base, booking, provider, log)
	booking.confirmPayment = payment.ConfirmPayment

	return &Service{
		Room:    newRoomService(base, log),
		Booking: booking,
		Payment: payment,
		Admin:   newAdminService(base, booking, log),
	}
}

// serviceBase holds the dependencies shared by every service.
type serviceBase struct {
	repo   *repository.Repository
	config *utils.Config
	loc    *time.Location
	now    func() time.Time
	events *eventSink
}

// today is the current calendar date in the configured timezone, as a UTC
// midnight to match stored booking dates.
func (b serviceBase) today() time.Time {
	n := b.now().In(b.loc)
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, time.UTC)
}

// clockNow returns today's date and the minute of day in the configured timezone.
func (b serviceBase) clockNow() (time.Time, int) {
	n := b.now().In(b.loc)
	return b.today(), n.Hour()*60 + n.Minute()
}
