package adaptor

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"room-booking/internal/dto/request"
	"room-booking/internal/usecase"
	"room-booking/pkg/utils"
)

type AdminHandler struct {
	responder
	service usecase.AdminService
}

func NewAdminHandler(service usecase.AdminService, debug bool, log *zap.Logger) *AdminHandler {
	return &AdminHandler{
		responder: newResponder("admin", debug, log),
		service:   service,
	}
}

// ==================== ROOMS ====================

// ListRooms handles GET /api/admin/rooms, inactive rooms included
func (h *AdminHandler) ListRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.service.ListRooms(r.Context())
	if err != nil {
		h.fail(w, err, "list rooms")
		return
	}
	utils.ResponseSuccess(w, rooms)
}

// CreateRoom handles POST /api/admin/rooms
func (h *AdminHandler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	var req request.CreateRoomRequest
	if !decode(w, r, &req) {
		return
	}

	room, err := h.service.CreateRoom(r.Context(), &req)
	if err != nil {
		h.fail(w, err, "create room")
		return
	}
	utils.ResponseCreated(w, room)
}

// UpdateRoom handles PUT /api/admin/rooms/{id}
func (h *AdminHandler) UpdateRoom(w http.ResponseWriter, r *http.Request) {
	var req request.UpdateRoomRequest
	if !decode(w, r, &req) {
		return
	}

	room, err := h.service.UpdateRoom(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		h.fail(w, err, "update room")
		return
	}
	utils.ResponseSuccess(w, room)
}

// DeleteRoom handles DELETE /api/admin/rooms/{id}. The room is deactivated.
func (h *AdminHandler) DeleteRoom(w http.ResponseWriter, r *http.Request) {
	room, err := h.service.DeleteRoom(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, err, "delete room")
		return
	}
	utils.ResponseSuccess(w, room)
}

// PurgeRoom handles DELETE /api/admin/rooms/{id}/purge
func (h *AdminHandler) PurgeRoom(w http.ResponseWriter, r *http.Request) {
	if err := h.service.PurgeRoom(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, err, "purge room")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ==================== BOOKINGS ====================

// ListBookings handles GET /api/admin/bookings?status=&roomId=&startDate=&endDate=&page=&limit=
func (h *AdminHandler) ListBookings(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req := request.BookingFilterRequest{
		PaginatedRequest: request.NewPaginatedRequest(query.Get("page"), query.Get("limit")),
		Status:           query.Get("status"),
		RoomID:           query.Get("roomId"),
		StartDate:        query.Get("startDate"),
		EndDate:          query.Get("endDate"),
	}

	bookings, err := h.service.ListBookings(r.Context(), &req)
	if err != nil {
		h.fail(w, err, "list bookings")
		return
	}
	utils.ResponsePaginated(w, bookings.Data, bookings.Meta)
}

// GetBooking handles GET /api/admin/bookings/{id}
func (h *AdminHandler) GetBooking(w http.ResponseWriter, r *http.Request) {
	booking, err := h.service.GetBooking(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, err, "get booking")
		return
	}
	utils.ResponseSuccess(w, booking)
}

// SetBookingStatus handles PATCH /api/admin/bookings/{id}/status
func (h *AdminHandler) SetBookingStatus(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	var req request.UpdateBookingStatusRequest
	if !decode(w, r, &req) {
		return
	}

	booking, err := h.service.SetBookingStatus(r.Context(), actor, chi.URLParam(r, "id"), &req)
	if err != nil {
		h.fail(w, err, "set booking status")
		return
	}
	utils.ResponseSuccess(w, booking)
}

// Statistics handles GET /api/admin/statistics
func (h *AdminHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Statistics(r.Context())
	if err != nil {
		h.fail(w, err, "statistics")
		return
	}
	utils.ResponseSuccess(w, stats)
}
