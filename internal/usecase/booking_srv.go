package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"room-booking/internal/data/entity"
	"room-booking/internal/data/repository"
	"room-booking/internal/domain"
	"room-booking/internal/dto/request"
	"room-booking/internal/dto/response"
	"room-booking/internal/gateway"
	"room-booking/pkg/utils"
)

type BookingService interface {
	CreateBooking(ctx context.Context, actor domain.Actor, req *request.CreateBookingRequest) (*response.BookingResponse, error)
	UpdateBooking(ctx context.Context, actor domain.Actor, bookingID string, req *request.UpdateBookingRequest) (*response.BookingResponse, error)
	CancelBooking(ctx context.Context, actor domain.Actor, bookingID string) (*response.BookingResponse, error)
	GetBooking(ctx context.Context, actor domain.Actor, bookingID string) (*response.BookingDetailResponse, error)
	ListMyBookings(ctx context.Context, actor domain.Actor, req request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error)

	// Maintenance, driven by the scheduler
	ReleaseUnpaid(ctx context.Context) (int, error)
	CompleteFinished(ctx context.Context) (int, error)
}

type bookingService struct {
	serviceBase
	provider gateway.Provider
	// confirmPayment settles a paid checkout found by the unpaid sweep.
	confirmPayment func(ctx context.Context, session *gateway.Session) (*entity.Booking, error)
	log            *zap.Logger
}

func newBookingService(base serviceBase, provider gateway.Provider, log *zap.Logger) *bookingService {
	return &bookingService{
		serviceBase: base,
		provider:    provider,
		log:         log.With(zap.String("service", "booking")),
	}
}

func (s *bookingService) CreateBooking(ctx context.Context, actor domain.Actor, req *request.CreateBookingRequest) (*response.BookingResponse, error) {
	booking, err := s.create(ctx, actor, req)
	if err != nil {
		return nil, err
	}
	resp := response.BookingToResponse(booking)
	return &resp, nil
}

// create validates req and inserts a PENDING_PAYMENT booking while holding
// the (room, date) lock.
func (s *bookingService) create(ctx context.Context, actor domain.Actor, req *request.CreateBookingRequest) (*entity.Booking, error) {
	if actor.UserID == "" {
		return nil, domain.Forbidden("Authentication required")
	}
	if req == nil {
		return nil, domain.Validation("Booking data is required", nil)
	}
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create booking validation failed", zap.Any("errors", errs))
		return nil, utils.ValidationError(errs)
	}

	roomID, err := parseID(req.RoomID, "roomId")
	if err != nil {
		return nil, err
	}
	slot, err := parseSlot(req.Date, req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if err := ensureFuture(slot, s.loc, now); err != nil {
		return nil, err
	}

	people := 1
	if req.NumberOfPeople != nil {
		people = *req.NumberOfPeople
	}

	booking := &entity.Booking{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		RoomID:         roomID,
		UserID:         actor.UserID,
		CustomerName:   req.CustomerName,
		CustomerEmail:  req.CustomerEmail,
		CustomerPhone:  req.CustomerPhone,
		NumberOfPeople: people,
		Status:         entity.BookingStatusPendingPayment,
	}
	booking.SetSlot(slot)

	err = s.repo.Tx.WithinTx(ctx, func(tx *repository.Repository) error {
		room, err := tx.Room.FindByID(ctx, roomID)
		if err != nil {
			return err
		}
		if room == nil || !room.IsActive {
			return errRoomNotFound()
		}
		if err := ensureCapacity(people, room); err != nil {
			return err
		}
		if err := checkSlotFree(ctx, tx, roomID, slot, nil); err != nil {
			return err
		}

		booking.TotalPrice = domain.TotalPrice(slot, room.PricePerHour)
		return tx.Booking.Create(ctx, booking)
	})
	if err != nil {
		s.log.Warn("Create booking failed",
			zap.Error(err),
			zap.String("user_id", actor.UserID),
			zap.String("room_id", req.RoomID),
			zap.String("slot", slot.String()),
		)
		return nil, err
	}

	s.log.Info("Booking created",
		zap.String("booking_id", booking.ID.String()),
		zap.String("user_id", actor.UserID),
		zap.String("room_id", roomID.String()),
		zap.String("slot", slot.String()),
		zap.Float64("total_price", booking.TotalPrice),
	)
	s.events.booking(ctx, EventBookingCreated, booking, now)

	return booking, nil
}

func (s *bookingService) UpdateBooking(ctx context.Context, actor domain.Actor, bookingID string, req *request.UpdateBookingRequest) (*response.BookingResponse, error) {
	if req == nil {
		return nil, domain.Validation("Nothing to update", nil)
	}
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, utils.ValidationError(errs)
	}
	id, err := parseID(bookingID, "id")
	if err != nil {
		return nil, err
	}

	now := s.now()
	var booking *entity.Booking

	err = s.repo.Tx.WithinTx(ctx, func(tx *repository.Repository) error {
		b, err := tx.Booking.FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if b == nil || !actor.CanAccess(b.UserID) {
			return errBookingNotFound()
		}
		if !b.Status.IsMutable() {
			return domain.ImmutableState(fmt.Sprintf("Booking in status %s cannot be modified", b.Status))
		}

		room, err := tx.Room.FindByID(ctx, b.RoomID)
		if err != nil {
			return err
		}
		if room == nil {
			return errRoomNotFound()
		}

		if req.ChangesSlot() {
			current := b.Slot()
			date, start, end := current.DateString(), current.Start.String(), current.End.String()
			if req.Date != nil {
				date = *req.Date
			}
			if req.StartTime != nil {
				start = *req.StartTime
			}
			if req.EndTime != nil {
				end = *req.EndTime
			}

			slot, err := parseSlot(date, start, end)
			if err != nil {
				return err
			}
			if err := ensureFuture(slot, s.loc, now); err != nil {
				return err
			}
			if err := checkSlotFree(ctx, tx, b.RoomID, slot, &b.ID); err != nil {
				return err
			}
			b.SetSlot(slot)
			b.TotalPrice = domain.TotalPrice(slot, room.PricePerHour)
		}

		if req.CustomerName != nil {
			b.CustomerName = *req.CustomerName
		}
		if req.CustomerEmail != nil {
			b.CustomerEmail = *req.CustomerEmail
		}
		if req.CustomerPhone != nil {
			b.CustomerPhone = req.CustomerPhone
		}
		if req.NumberOfPeople != nil {
			if err := ensureCapacity(*req.NumberOfPeople, room); err != nil {
				return err
			}
			b.NumberOfPeople = *req.NumberOfPeople
		}

		b.Status = entity.BookingStatusModified
		b.UpdatedAt = now
		if err := tx.Booking.Update(ctx, b); err != nil {
			return err
		}
		booking = b
		return nil
	})
	if err != nil {
		s.log.Warn("Update booking failed", zap.Error(err), zap.String("booking_id", bookingID))
		return nil, err
	}

	s.log.Info("Booking modified",
		zap.String("booking_id", booking.ID.String()),
		zap.String("slot", booking.Slot().String()),
		zap.Float64("total_price", booking.TotalPrice),
	)
	s.events.booking(ctx, EventBookingModified, booking, now)

	resp := response.BookingToResponse(booking)
	return &resp, nil
}

func (s *bookingService) CancelBooking(ctx context.Context, actor domain.Actor, bookingID string) (*response.BookingResponse, error) {
	id, err := parseID(bookingID, "id")
	if err != nil {
		return nil, err
	}

	now := s.now()
	var booking *entity.Booking

	err = s.repo.Tx.WithinTx(ctx, func(tx *repository.Repository) error {
		b, err := tx.Booking.FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if b == nil || !actor.CanAccess(b.UserID) {
			return errBookingNotFound()
		}

		target := entity.BookingStatusCancelledByUser
		if actor.IsAdmin() {
			target = entity.BookingStatusCancelledByAdmin
		}
		if err := cancellable(b.Status, target); err != nil {
			return err
		}

		b.Status = target
		b.CancelledAt = &now
		b.UpdatedAt = now
		if err := tx.Booking.Update(ctx, b); err != nil {
			return err
		}
		booking = b
		return nil
	})
	if err != nil {
		s.log.Warn("Cancel booking failed", zap.Error(err), zap.String("booking_id", bookingID))
		return nil, err
	}

	s.log.Info("Booking cancelled",
		zap.String("booking_id", booking.ID.String()),
		zap.String("status", string(booking.Status)),
		zap.String("actor", actor.UserID),
	)
	s.events.booking(ctx, EventBookingCancelled, booking, now)

	resp := response.BookingToResponse(booking)
	return &resp, nil
}

func cancellable(current, target entity.BookingStatus) error {
	switch {
	case current.IsCancelled():
		return domain.AlreadyCancelled("Booking is already cancelled")
	case current == entity.BookingStatusCompleted:
		return domain.TerminalState("BOOKING_COMPLETED", "Cannot cancel a completed booking")
	case !current.CanTransitionTo(target):
		return domain.TerminalState("BOOKING_TERMINAL", fmt.Sprintf("Booking in status %s cannot be cancelled", current))
	}
	return nil
}

func (s *bookingService) GetBooking(ctx context.Context, actor domain.Actor, bookingID string) (*response.BookingDetailResponse, error) {
	id, err := parseID(bookingID, "id")
	if err != nil {
		return nil, err
	}

	booking, err := s.repo.Booking.FindByID(ctx, id)
	if err != nil {
		s.log.Error("Failed to get booking", zap.Error(err), zap.String("booking_id", bookingID))
		return nil, err
	}
	if booking == nil || !actor.CanAccess(booking.UserID) {
		return nil, errBookingNotFound()
	}

	return s.detail(ctx, booking)
}

func (s *bookingService) detail(ctx context.Context, booking *entity.Booking) (*response.BookingDetailResponse, error) {
	resp := &response.BookingDetailResponse{BookingResponse: response.BookingToResponse(booking)}

	room, err := s.repo.Room.FindByID(ctx, booking.RoomID)
	if err != nil {
		return nil, err
	}
	if room != nil {
		r := response.RoomToResponse(room)
		resp.Room = &r
		resp.RoomName = room.Name
	}

	payment, err := s.repo.Payment.FindByBookingID(ctx, booking.ID)
	if err != nil {
		return nil, err
	}
	if payment != nil {
		p := response.PaymentToResponse(payment)
		resp.Payment = &p
	}

	return resp, nil
}

func (s *bookingService) ListMyBookings(ctx context.Context, actor domain.Actor, req request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error) {
	limit := req.Limit()
	offset := req.Offset()

	bookings, err := s.repo.Booking.FindByUser(ctx, actor.UserID, limit, offset)
	if err != nil {
		s.log.Error("Failed to get user bookings", zap.Error(err), zap.String("user_id", actor.UserID))
		return nil, err
	}

	total, err := s.repo.Booking.CountByUser(ctx, actor.UserID)
	if err != nil {
		s.log.Error("Failed to count user bookings", zap.Error(err), zap.String("user_id", actor.UserID))
		return nil, err
	}

	data := make([]response.BookingResponse, 0, len(bookings))
	for _, b := range bookings {
		data = append(data, response.BookingWithRoomToResponse(b))
	}

	return response.NewPaginatedResponse(data, req.Page, limit, total), nil
}

// ReleaseUnpaid cancels bookings that have been waiting for payment longer
// than the checkout expiry.
func (s *bookingService) ReleaseUnpaid(ctx context.Context) (int, error) {
	now := s.now()
	cutoff := now.Add(-s.config.Payment.CheckoutExpiry)

	var stale []*entity.Booking
	for _, status := range []entity.BookingStatus{entity.BookingStatusPendingPayment, entity.BookingStatusModified} {
		found, err := s.repo.Booking.FindStale(ctx, status, cutoff, now)
		if err != nil {
			return 0, err
		}
		stale = append(stale, found...)
	}

	released := 0
	for _, candidate := range stale {
		if !candidate.AwaitingPayment() || candidate.CheckoutOpen(now) {
			continue
		}
		if candidate.CheckoutSessionID != nil {
			hold, err := s.checkoutHoldsSlot(ctx, candidate, now)
			if err != nil {
				s.log.Warn("Skipping unpaid booking, checkout state unknown",
					zap.Error(err),
					zap.String("booking_id", candidate.ID.String()),
				)
				continue
			}
			if hold {
				continue
			}
		}

		var booking *entity.Booking
		err := s.repo.Tx.WithinTx(ctx, func(tx *repository.Repository) error {
			b, err := tx.Booking.FindByIDForUpdate(ctx, candidate.ID)
			if err != nil || b == nil {
				return err
			}
			// A new checkout may have been opened since the candidate was read.
			if b.CheckoutOpen(now) {
				return nil
			}
			ok, err := expireUnpaid(ctx, tx, b, now)
			if ok {
				booking = b
			}
			return err
		})
		if err != nil {
			s.log.Error("Failed to release unpaid booking", zap.Error(err), zap.String("booking_id", candidate.ID.String()))
			continue
		}
		if booking != nil {
			released++
			s.events.booking(ctx, EventBookingExpired, booking, now)
		}
	}

	if released > 0 {
		s.log.Info("Released unpaid bookings", zap.Int("count", released))
	}
	return released, nil
}

// checkoutHoldsSlot asks the provider about the booking's last checkout. A paid
// session is confirmed instead of released. An open one keeps the slot for at
// most one more checkout window past its recorded expiry.
func (s *bookingService) checkoutHoldsSlot(ctx context.Context, b *entity.Booking, now time.Time) (bool, error) {
	session, err := s.provider.GetSession(ctx, *b.CheckoutSessionID)
	if errors.Is(err, gateway.ErrSessionNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	switch {
	case session.IsPaid():
		if s.confirmPayment == nil {
			return true, nil
		}
		if _, err := s.confirmPayment(ctx, session); err != nil {
			return true, err
		}
		s.log.Info("Confirmed paid checkout found by unpaid sweep",
			zap.String("booking_id", b.ID.String()),
			zap.String("session_id", session.ID),
		)
		return true, nil
	case session.Status == gateway.SessionOpen:
		if b.CheckoutExpiresAt == nil {
			return true, nil
		}
		return now.Before(b.CheckoutExpiresAt.Add(s.config.Payment.CheckoutExpiry)), nil
	}
	return false, nil
}

// CompleteFinished moves IN_PROGRESS bookings whose end has passed to COMPLETED.
func (s *bookingService) CompleteFinished(ctx context.Context) (int, error) {
	now := s.now()
	today, minute := s.clockNow()

	ended, err := s.repo.Booking.FindEndedBy(ctx, entity.BookingStatusInProgress, today, minute)
	if err != nil {
		return 0, err
	}

	completed := 0
	for _, candidate := range ended {
		var booking *entity.Booking
		err := s.repo.Tx.WithinTx(ctx, func(tx *repository.Repository) error {
			b, err := tx.Booking.FindByIDForUpdate(ctx, candidate.ID)
			if err != nil || b == nil {
				return err
			}
			if !b.Status.CanTransitionTo(entity.BookingStatusCompleted) {
				return nil
			}
			if err := tx.Booking.UpdateStatus(ctx, b.ID, entity.BookingStatusCompleted); err != nil {
				return err
			}
			b.Status = entity.BookingStatusCompleted
			booking = b
			return nil
		})
		if err != nil {
			s.log.Error("Failed to complete booking", zap.Error(err), zap.String("booking_id", candidate.ID.String()))
			continue
		}
		if booking != nil {
			completed++
			s.events.booking(ctx, EventBookingCompleted, booking, now)
		}
	}

	if completed > 0 {
		s.log.Info("Completed finished bookings", zap.Int("count", completed))
	}
	return completed, nil
}
