package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"room-booking/internal/data/entity"
	"room-booking/internal/data/repository"
	"room-booking/internal/domain"
	"room-booking/internal/dto/request"
	"room-booking/internal/dto/response"
	"room-booking/pkg/utils"
)

// Statuses counted as earned revenue.
var revenueStatuses = []entity.BookingStatus{
	entity.BookingStatusConfirmed,
	entity.BookingStatusCompleted,
}

type AdminService interface {
	// Rooms
	ListRooms(ctx context.Context) ([]response.RoomResponse, error)
	CreateRoom(ctx context.Context, req *request.CreateRoomRequest) (*response.RoomResponse, error)
	UpdateRoom(ctx context.Context, roomID string, req *request.UpdateRoomRequest) (*response.RoomResponse, error)
	DeleteRoom(ctx context.Context, roomID string) (*response.RoomResponse, error)
	PurgeRoom(ctx context.Context, roomID string) error

	// Bookings
	ListBookings(ctx context.Context, req *request.BookingFilterRequest) (*response.PaginatedResponse[response.BookingResponse], error)
	GetBooking(ctx context.Context, bookingID string) (*response.BookingDetailResponse, error)
	SetBookingStatus(ctx context.Context, actor domain.Actor, bookingID string, req *request.UpdateBookingStatusRequest) (*response.BookingResponse, error)

	Statistics(ctx context.Context) (*response.StatisticsResponse, error)
}

type adminService struct {
	serviceBase
	bookings *bookingService
	log      *zap.Logger
}

func newAdminService(base serviceBase, bookings *bookingService, log *zap.Logger) AdminService {
	return &adminService{
		serviceBase: base,
		bookings:    bookings,
		log:         log.With(zap.String("service", "admin")),
	}
}

func (s *adminService) ListRooms(ctx context.Context) ([]response.RoomResponse, error) {
	rooms, err := s.repo.Room.FindAll(ctx)
	if err != nil {
		s.log.Error("Failed to list rooms", zap.Error(err))
		return nil, err
	}

	result := make([]response.RoomResponse, 0, len(rooms))
	for _, room := range rooms {
		result = append(result, response.RoomToResponse(room))
	}
	return result, nil
}

func (s *adminService) CreateRoom(ctx context.Context, req *request.CreateRoomRequest) (*response.RoomResponse, error) {
	if req == nil {
		return nil, domain.Validation("Room data is required", nil)
	}
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create room validation failed", zap.Any("errors", errs))
		return nil, utils.ValidationError(errs)
	}

	now := s.now()
	equipments := req.Equipments
	if equipments == nil {
		equipments = []string{}
	}

	room := &entity.Room{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Name:         req.Name,
		Description:  req.Description,
		Capacity:     req.Capacity,
		PricePerHour: req.PricePerHour,
		Equipments:   equipments,
		ImageURL:     req.ImageURL,
		IsActive:     true,
	}

	if err := s.repo.Room.Create(ctx, room); err != nil {
		s.log.Error("Failed to create room", zap.Error(err), zap.String("name", req.Name))
		return nil, err
	}

	s.log.Info("Room created", zap.String("room_id", room.ID.String()), zap.String("name", room.Name))

	resp := response.RoomToResponse(room)
	return &resp, nil
}

func (s *adminService) UpdateRoom(ctx context.Context, roomID string, req *request.UpdateRoomRequest) (*response.RoomResponse, error) {
	if req == nil {
		return nil, domain.Validation("Nothing to update", nil)
	}
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, utils.ValidationError(errs)
	}
	id, err := parseID(roomID, "id")
	if err != nil {
		return nil, err
	}

	room, err := s.repo.Room.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, errRoomNotFound()
	}

	if req.Name != nil {
		room.Name = *req.Name
	}
	if req.Description != nil {
		room.Description = req.Description
	}
	if req.Capacity != nil {
		room.Capacity = *req.Capacity
	}
	if req.PricePerHour != nil {
		room.PricePerHour = *req.PricePerHour
	}
	if req.Equipments != nil {
		room.Equipments = *req.Equipments
	}
	if req.ImageURL != nil {
		room.ImageURL = req.ImageURL
	}
	if req.IsActive != nil {
		room.IsActive = *req.IsActive
	}
	room.UpdatedAt = s.now()

	if err := s.repo.Room.Update(ctx, room); err != nil {
		s.log.Error("Failed to update room", zap.Error(err), zap.String("room_id", roomID))
		return nil, err
	}

	s.log.Info("Room updated", zap.String("room_id", roomID))

	resp := response.RoomToResponse(room)
	return &resp, nil
}

// DeleteRoom deactivates a room. Rooms with upcoming slot-holding bookings
// stay active.
func (s *adminService) DeleteRoom(ctx context.Context, roomID string) (*response.RoomResponse, error) {
	id, err := parseID(roomID, "id")
	if err != nil {
		return nil, err
	}

	room, err := s.repo.Room.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, errRoomNotFound()
	}

	upcoming, err := s.repo.Booking.CountUpcomingByRoom(ctx, id, s.today())
	if err != nil {
		return nil, err
	}
	if upcoming > 0 {
		return nil, &domain.Error{
			Kind:    domain.KindValidation,
			Code:    "HAS_FUTURE_BOOKINGS",
			Message: fmt.Sprintf("Cannot delete room: %d upcoming booking(s) exist", upcoming),
		}
	}

	if err := s.repo.Room.SetActive(ctx, id, false); err != nil {
		s.log.Error("Failed to deactivate room", zap.Error(err), zap.String("room_id", roomID))
		return nil, err
	}
	room.IsActive = false

	s.log.Info("Room deactivated", zap.String("room_id", roomID))

	resp := response.RoomToResponse(room)
	return &resp, nil
}

// PurgeRoom removes a room for good. Only inactive rooms without any booking
// history can be purged.
func (s *adminService) PurgeRoom(ctx context.Context, roomID string) error {
	id, err := parseID(roomID, "id")
	if err != nil {
		return err
	}

	room, err := s.repo.Room.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if room == nil {
		return errRoomNotFound()
	}
	if room.IsActive {
		return &domain.Error{Kind: domain.KindValidation, Code: "ROOM_ACTIVE", Message: "Deactivate the room before deleting it"}
	}

	count, err := s.repo.Booking.CountByRoom(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return &domain.Error{
			Kind:    domain.KindValidation,
			Code:    "ROOM_HAS_BOOKINGS",
			Message: fmt.Sprintf("Cannot delete room with %d booking(s)", count),
		}
	}

	if err := s.repo.Room.Delete(ctx, id); err != nil {
		s.log.Error("Failed to delete room", zap.Error(err), zap.String("room_id", roomID))
		return err
	}

	s.log.Info("Room deleted", zap.String("room_id", roomID))
	return nil
}

func (s *adminService) ListBookings(ctx context.Context, req *request.BookingFilterRequest) (*response.PaginatedResponse[response.BookingResponse], error) {
	if req == nil {
		req = &request.BookingFilterRequest{PaginatedRequest: request.NewPaginatedRequest("", "")}
	}
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, utils.ValidationError(errs)
	}

	filter, err := bookingFilter(req)
	if err != nil {
		return nil, err
	}

	limit := req.Limit()
	offset := req.Offset()

	bookings, err := s.repo.Booking.FindAll(ctx, filter, limit, offset)
	if err != nil {
		s.log.Error("Failed to list bookings", zap.Error(err))
		return nil, err
	}
	total, err := s.repo.Booking.CountAll(ctx, filter)
	if err != nil {
		s.log.Error("Failed to count bookings", zap.Error(err))
		return nil, err
	}

	data := make([]response.BookingResponse, 0, len(bookings))
	for _, b := range bookings {
		data = append(data, response.BookingWithRoomToResponse(b))
	}
	return response.NewPaginatedResponse(data, req.Page, limit, total), nil
}

func bookingFilter(req *request.BookingFilterRequest) (repository.BookingFilter, error) {
	var filter repository.BookingFilter

	if req.Status != "" {
		status, err := entity.ParseBookingStatus(req.Status)
		if err != nil {
			return filter, domain.Validation("Invalid status", map[string]string{"status": err.Error()})
		}
		filter.Status = &status
	}
	if req.RoomID != "" {
		id, err := parseID(req.RoomID, "roomId")
		if err != nil {
			return filter, err
		}
		filter.RoomID = &id
	}
	if req.StartDate != "" {
		d, err := time.Parse(domain.DateLayout, req.StartDate)
		if err != nil {
			return filter, domain.Validation("Invalid startDate", map[string]string{"startDate": "Must be a date in YYYY-MM-DD format"})
		}
		filter.StartDate = &d
	}
	if req.EndDate != "" {
		d, err := time.Parse(domain.DateLayout, req.EndDate)
		if err != nil {
			return filter, domain.Validation("Invalid endDate", map[string]string{"endDate": "Must be a date in YYYY-MM-DD format"})
		}
		filter.EndDate = &d
	}
	if filter.StartDate != nil && filter.EndDate != nil && filter.EndDate.Before(*filter.StartDate) {
		return filter, domain.Validation("Invalid date range", map[string]string{"endDate": "Must not be before startDate"})
	}

	return filter, nil
}

func (s *adminService) GetBooking(ctx context.Context, bookingID string) (*response.BookingDetailResponse, error) {
	id, err := parseID(bookingID, "id")
	if err != nil {
		return nil, err
	}

	booking, err := s.repo.Booking.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, errBookingNotFound()
	}
	return s.bookings.detail(ctx, booking)
}

// SetBookingStatus is the administrative override. It ignores the lifecycle
// graph, but a booking moved back into a slot-holding status must still fit.
func (s *adminService) SetBookingStatus(ctx context.Context, actor domain.Actor, bookingID string, req *request.UpdateBookingStatusRequest) (*response.BookingResponse, error) {
	if req == nil {
		return nil, domain.Validation("status is required", map[string]string{"status": "This field is required"})
	}
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, utils.ValidationError(errs)
	}
	target, err := entity.ParseBookingStatus(req.Status)
	if err != nil || !target.IsAdminSettable() {
		return nil, &domain.Error{
			Kind:    domain.KindValidation,
			Code:    "INVALID_STATUS",
			Message: fmt.Sprintf("Status %s cannot be set directly", req.Status),
			Fields:  map[string]string{"status": "Not an allowed status"},
		}
	}
	id, err := parseID(bookingID, "id")
	if err != nil {
		return nil, err
	}

	now := s.now()
	var (
		booking  *entity.Booking
		previous entity.BookingStatus
	)

	err = s.repo.Tx.WithinTx(ctx, func(tx *repository.Repository) error {
		b, err := tx.Booking.FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if b == nil {
			return errBookingNotFound()
		}

		if target.IsSlotHolding() && !b.Status.IsSlotHolding() {
			if err := checkSlotFree(ctx, tx, b.RoomID, b.Slot(), &b.ID); err != nil {
				return err
			}
		}

		previous = b.Status
		b.Status = target
		switch {
		case target.IsCancelled():
			b.CancelledAt = &now
		case target.IsSlotHolding():
			b.CancelledAt = nil
		}
		b.UpdatedAt = now
		if err := tx.Booking.Update(ctx, b); err != nil {
			return err
		}
		booking = b
		return nil
	})
	if err != nil {
		s.log.Warn("Set booking status failed", zap.Error(err), zap.String("booking_id", bookingID))
		return nil, err
	}

	s.log.Info("Booking status overridden",
		zap.String("booking_id", bookingID),
		zap.String("from", string(previous)),
		zap.String("to", string(target)),
		zap.String("admin", actor.UserID),
	)
	s.events.booking(ctx, EventBookingStatusChanged, booking, now)

	resp := response.BookingToResponse(booking)
	return &resp, nil
}

func (s *adminService) Statistics(ctx context.Context) (*response.StatisticsResponse, error) {
	var (
		stats response.StatisticsResponse
		err   error
	)
	confirmed := []entity.BookingStatus{entity.BookingStatusConfirmed}

	if stats.TotalRooms, err = s.repo.Room.CountActive(ctx); err != nil {
		return nil, err
	}
	if stats.TotalBookings, err = s.repo.Booking.CountByStatuses(ctx, nil); err != nil {
		return nil, err
	}
	if stats.ConfirmedBookings, err = s.repo.Booking.CountByStatuses(ctx, confirmed); err != nil {
		return nil, err
	}
	if stats.FutureBookings, err = s.repo.Booking.CountUpcoming(ctx, s.today(), confirmed); err != nil {
		return nil, err
	}
	if stats.TotalRevenue, err = s.repo.Booking.SumRevenue(ctx, revenueStatuses); err != nil {
		return nil, err
	}

	top, err := s.repo.Booking.MostBookedRoom(ctx, revenueStatuses)
	if err != nil {
		return nil, err
	}
	if top != nil {
		stats.MostBookedRoom = &response.MostBookedRoom{
			ID:       top.RoomID.String(),
			Name:     top.RoomName,
			Bookings: top.Count,
		}
	}

	return &stats, nil
}
