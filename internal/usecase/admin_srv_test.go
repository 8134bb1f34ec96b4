package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"room-booking/internal/data/entity"
	"room-booking/internal/domain"
	"room-booking/internal/dto/request"
)

func TestAdminRooms(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.Admin.CreateRoom(ctx, &request.CreateRoomRequest{
		Name:         "Orion",
		Capacity:     6,
		PricePerHour: 45,
		Equipments:   []string{"projector", "whiteboard"},
	})
	require.NoError(t, err)
	assert.True(t, created.IsActive)

	_, err = f.svc.Admin.CreateRoom(ctx, &request.CreateRoomRequest{Name: "X", Capacity: 0, PricePerHour: -1})
	de, ok := domain.AsError(err)
	require.True(t, ok)
	assert.Equal(t, domain.KindValidation, de.Kind)
	assert.Contains(t, de.Fields, "capacity")
	assert.Contains(t, de.Fields, "pricePerHour")

	price := 55.0
	updated, err := f.svc.Admin.UpdateRoom(ctx, created.ID, &request.UpdateRoomRequest{
		PricePerHour: &price,
	})
	require.NoError(t, err)
	assert.Equal(t, 55.0, updated.PricePerHour)
	assert.Equal(t, "Orion", updated.Name)

	room, _ := f.store.repository().Room.FindByID(ctx, uuid.MustParse(created.ID))
	booking := f.addBooking(t, room, customer.UserID, "2025-06-05", "10:00", "11:00", entity.BookingStatusConfirmed)

	_, err = f.svc.Admin.DeleteRoom(ctx, created.ID)
	de, ok = domain.AsError(err)
	require.True(t, ok)
	assert.Equal(t, "HAS_FUTURE_BOOKINGS", de.Code)

	_, err = f.svc.Booking.CancelBooking(ctx, customer, booking.ID.String())
	require.NoError(t, err)

	deleted, err := f.svc.Admin.DeleteRoom(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, deleted.IsActive)

	public, err := f.svc.Room.ListRooms(ctx)
	require.NoError(t, err)
	assert.Empty(t, public)

	all, err := f.svc.Admin.ListRooms(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	err = f.svc.Admin.PurgeRoom(ctx, created.ID)
	de, ok = domain.AsError(err)
	require.True(t, ok)
	assert.Equal(t, "ROOM_HAS_BOOKINGS", de.Code)

	empty := f.addRoom(t, "Spare", 10, true)
	err = f.svc.Admin.PurgeRoom(ctx, empty.ID.String())
	de, ok = domain.AsError(err)
	require.True(t, ok)
	assert.Equal(t, "ROOM_ACTIVE", de.Code)

	_, err = f.svc.Admin.DeleteRoom(ctx, empty.ID.String())
	require.NoError(t, err)
	require.NoError(t, f.svc.Admin.PurgeRoom(ctx, empty.ID.String()))

	gone, _ := f.store.repository().Room.FindByID(ctx, empty.ID)
	assert.Nil(t, gone)
}

func TestAdminSetBookingStatus(t *testing.T) {
	f := newFixture(t)
	room := f.addRoom(t, "Orion", 50, true)
	ctx := context.Background()

	cancelled := f.addBooking(t, room, customer.UserID, "2025-06-05", "10:00", "12:00", entity.BookingStatusCancelledByUser)
	taker := f.addBooking(t, room, stranger.UserID, "2025-06-05", "11:00", "12:00", entity.BookingStatusConfirmed)

	_, err := f.svc.Admin.SetBookingStatus(ctx, admin, taker.ID.String(), &request.UpdateBookingStatusRequest{Status: "REFUNDED"})
	assert.True(t, errors.Is(err, domain.ErrValidation))

	_, err = f.svc.Admin.SetBookingStatus(ctx, admin, taker.ID.String(), &request.UpdateBookingStatusRequest{Status: "bogus"})
	assert.True(t, errors.Is(err, domain.ErrValidation))

	_, err = f.svc.Admin.SetBookingStatus(ctx, admin, cancelled.ID.String(), &request.UpdateBookingStatusRequest{Status: "CONFIRMED"})
	assert.True(t, errors.Is(err, domain.ErrConflict), "reviving into a taken slot")

	resp, err := f.svc.Admin.SetBookingStatus(ctx, admin, taker.ID.String(), &request.UpdateBookingStatusRequest{Status: "NO_SHOW"})
	require.NoError(t, err)
	assert.Equal(t, entity.BookingStatusNoShow, resp.Status)

	resp, err = f.svc.Admin.SetBookingStatus(ctx, admin, cancelled.ID.String(), &request.UpdateBookingStatusRequest{Status: "CONFIRMED"})
	require.NoError(t, err)
	assert.Equal(t, entity.BookingStatusConfirmed, resp.Status)
	assert.Nil(t, resp.CancelledAt)

	resp, err = f.svc.Admin.SetBookingStatus(ctx, admin, cancelled.ID.String(), &request.UpdateBookingStatusRequest{Status: "CANCELLED_BY_ADMIN"})
	require.NoError(t, err)
	assert.NotNil(t, resp.CancelledAt)

	assert.Equal(t, 3, f.events.count(EventBookingStatusChanged))
}

func TestAdminListBookings(t *testing.T) {
	f := newFixture(t)
	orion := f.addRoom(t, "Orion", 50, true)
	vega := f.addRoom(t, "Vega", 50, true)
	f.addBooking(t, orion, "a", "2025-06-05", "10:00", "11:00", entity.BookingStatusConfirmed)
	f.addBooking(t, orion, "b", "2025-06-06", "10:00", "11:00", entity.BookingStatusPendingPayment)
	f.addBooking(t, vega, "c", "2025-06-07", "10:00", "11:00", entity.BookingStatusConfirmed)
	ctx := context.Background()

	list := func(req request.BookingFilterRequest) int {
		t.Helper()
		req.PaginatedRequest = request.NewPaginatedRequest("1", "50")
		resp, err := f.svc.Admin.ListBookings(ctx, &req)
		require.NoError(t, err)
		return len(resp.Data)
	}

	assert.Equal(t, 3, list(request.BookingFilterRequest{}))
	assert.Equal(t, 2, list(request.BookingFilterRequest{Status: "CONFIRMED"}))
	assert.Equal(t, 2, list(request.BookingFilterRequest{RoomID: orion.ID.String()}))
	assert.Equal(t, 2, list(request.BookingFilterRequest{StartDate: "2025-06-06", EndDate: "2025-06-07"}))
	assert.Equal(t, 1, list(request.BookingFilterRequest{Status: "CONFIRMED", RoomID: vega.ID.String()}))

	_, err := f.svc.Admin.ListBookings(ctx, &request.BookingFilterRequest{
		PaginatedRequest: request.NewPaginatedRequest("", ""),
		Status:           "LOST",
	})
	assert.True(t, errors.Is(err, domain.ErrValidation))

	_, err = f.svc.Admin.ListBookings(ctx, &request.BookingFilterRequest{
		PaginatedRequest: request.NewPaginatedRequest("", ""),
		StartDate:        "2025-06-07",
		EndDate:          "2025-06-01",
	})
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

func TestAdminStatistics(t *testing.T) {
	f := newFixture(t)
	orion := f.addRoom(t, "Orion", 50, true)
	vega := f.addRoom(t, "Vega", 50, true)
	f.addRoom(t, "Closed", 50, false)

	f.addBooking(t, orion, "a", "2025-06-05", "10:00", "12:00", entity.BookingStatusConfirmed)
	f.addBooking(t, orion, "a", "2025-05-20", "10:00", "11:00", entity.BookingStatusCompleted)
	f.addBooking(t, orion, "a", "2025-05-21", "10:00", "11:00", entity.BookingStatusConfirmed)
	f.addBooking(t, vega, "b", "2025-06-05", "10:00", "11:00", entity.BookingStatusConfirmed)
	f.addBooking(t, vega, "b", "2025-06-06", "10:00", "11:00", entity.BookingStatusCancelledByUser)

	stats, err := f.svc.Admin.Statistics(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(2), stats.TotalRooms)
	assert.Equal(t, int64(5), stats.TotalBookings)
	assert.Equal(t, int64(3), stats.ConfirmedBookings)
	assert.Equal(t, int64(2), stats.FutureBookings)
	assert.Equal(t, 250.0, stats.TotalRevenue)
	require.NotNil(t, stats.MostBookedRoom)
	assert.Equal(t, "Orion", stats.MostBookedRoom.Name)
	assert.Equal(t, int64(3), stats.MostBookedRoom.Bookings)
}
