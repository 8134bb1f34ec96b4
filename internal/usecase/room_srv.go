package usecase

import (
	"context"
	"time"

	"go.uber.org/zap"

	"room-booking/internal/data/entity"
	"room-booking/internal/domain"
	"room-booking/internal/dto/response"
)

// AvailabilityDays is how far ahead room detail reports free slots, today included.
const AvailabilityDays = 7

// availabilityHours is the hourly grid offered to customers. 13:00 is lunch.
var availabilityHours = []int{9, 10, 11, 12, 14, 15, 16, 17}

type RoomService interface {
	ListRooms(ctx context.Context) ([]response.RoomResponse, error)
	GetRoom(ctx context.Context, roomID string) (*response.RoomDetailResponse, error)
}

type roomService struct {
	serviceBase
	log *zap.Logger
}

func newRoomService(base serviceBase, log *zap.Logger) RoomService {
	return &roomService{
		serviceBase: base,
		log:         log.With(zap.String("service", "room")),
	}
}

func (s *roomService) ListRooms(ctx context.Context) ([]response.RoomResponse, error) {
	rooms, err := s.repo.Room.FindActive(ctx)
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

func (s *roomService) GetRoom(ctx context.Context, roomID string) (*response.RoomDetailResponse, error) {
	id, err := parseID(roomID, "id")
	if err != nil {
		return nil, err
	}

	room, err := s.repo.Room.FindByID(ctx, id)
	if err != nil {
		s.log.Error("Failed to get room", zap.Error(err), zap.String("room_id", roomID))
		return nil, err
	}
	if room == nil || !room.IsActive {
		return nil, errRoomNotFound()
	}

	today, minute := s.clockNow()
	last := today.AddDate(0, 0, AvailabilityDays-1)

	bookings, err := s.repo.Booking.FindByRoomInRange(ctx, id, today, last, entity.SlotHoldingStatusList())
	if err != nil {
		s.log.Error("Failed to load room bookings", zap.Error(err), zap.String("room_id", roomID))
		return nil, err
	}

	return &response.RoomDetailResponse{
		RoomResponse:   response.RoomToResponse(room),
		AvailableSlots: availability(bookings, today, minute),
	}, nil
}

// availability lists the free grid hours per day. Days without a free hour
// are left out, as are hours of today that have already started.
func availability(bookings []*entity.Booking, today time.Time, nowMinute int) []response.DayAvailability {
	days := make([]response.DayAvailability, 0, AvailabilityDays)

	for offset := 0; offset < AvailabilityDays; offset++ {
		date := today.AddDate(0, 0, offset)
		slots := []string{}

		for _, hour := range availabilityHours {
			start := domain.ClockTime(hour * 60)
			if offset == 0 && int(start) <= nowMinute {
				continue
			}
			candidate, err := domain.NewSlot(date, start, start+60)
			if err != nil {
				continue
			}
			if !overlapsAny(candidate, bookings) {
				slots = append(slots, start.String())
			}
		}

		if len(slots) > 0 {
			days = append(days, response.DayAvailability{
				Date:  date.Format(domain.DateLayout),
				Slots: slots,
			})
		}
	}
	return days
}

func overlapsAny(slot domain.Slot, bookings []*entity.Booking) bool {
	for _, b := range bookings {
		if b.Status.IsSlotHolding() && slot.Overlaps(b.Slot()) {
			return true
		}
	}
	return false
}
