package wire

import (
	"github.com/go-chi/chi/v5"

	"room-booking/internal/adaptor"
	"room-booking/pkg/middleware"
)

func wireBooking(r chi.Router, bookingHandler *adaptor.BookingHandler, auth *middleware.Authenticator) {
	// ==================== PROTECTED ROUTES (require auth) ====================
	r.Route("/bookings", func(r chi.Router) {
		r.Use(auth.RequireAuth)

		r.Post("/", bookingHandler.CreateBooking)
		r.Get("/my-bookings", bookingHandler.ListMyBookings)
		r.Get("/{id}", bookingHandler.GetBooking)
		r.Put("/{id}", bookingHandler.UpdateBooking)
		r.Delete("/{id}", bookingHandler.CancelBooking)
	})
}
