package adaptor

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"room-booking/internal/dto/request"
	"room-booking/internal/usecase"
	"room-booking/pkg/utils"
)

type BookingHandler struct {
	responder
	service usecase.BookingService
}

func NewBookingHandler(service usecase.BookingService, debug bool, log *zap.Logger) *BookingHandler {
	return &BookingHandler{
		responder: newResponder("booking", debug, log),
		service:   service,
	}
}

// CreateBooking handles POST /api/bookings (protected)
func (h *BookingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	var req request.CreateBookingRequest
	if !decode(w, r, &req) {
		return
	}

	booking, err := h.service.CreateBooking(r.Context(), actor, &req)
	if err != nil {
		h.fail(w, err, "create booking")
		return
	}

	utils.ResponseCreated(w, booking)
}

// ListMyBookings handles GET /api/bookings/my-bookings (protected)
func (h *BookingHandler) ListMyBookings(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	req := request.NewPaginatedRequest(query.Get("page"), query.Get("limit"))

	bookings, err := h.service.ListMyBookings(r.Context(), actor, req)
	if err != nil {
		h.fail(w, err, "list my bookings")
		return
	}

	utils.ResponsePaginated(w, bookings.Data, bookings.Meta)
}

// GetBooking handles GET /api/bookings/{id} (protected, owner or admin)
func (h *BookingHandler) GetBooking(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	booking, err := h.service.GetBooking(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, err, "get booking")
		return
	}

	utils.ResponseSuccess(w, booking)
}

// UpdateBooking handles PUT /api/bookings/{id} (protected, owner or admin)
func (h *BookingHandler) UpdateBooking(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	var req request.UpdateBookingRequest
	if !decode(w, r, &req) {
		return
	}

	booking, err := h.service.UpdateBooking(r.Context(), actor, chi.URLParam(r, "id"), &req)
	if err != nil {
		h.fail(w, err, "update booking")
		return
	}

	utils.ResponseSuccess(w, booking)
}

// CancelBooking handles DELETE /api/bookings/{id} (protected, owner or admin)
func (h *BookingHandler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	booking, err := h.service.CancelBooking(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, err, "cancel booking")
		return
	}

	utils.ResponseSuccess(w, booking)
}
