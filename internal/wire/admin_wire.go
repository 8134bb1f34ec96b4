package wire

import (
	"github.com/go-chi/chi/v5"

	"room-booking/internal/adaptor"
	"room-booking/pkg/middleware"
)

func wireAdmin(r chi.Router, adminHandler *adaptor.AdminHandler, auth *middleware.Authenticator) {
	// ==================== ADMIN ROUTES ====================
	r.Route("/admin", func(r chi.Router) {
		// Require both authentication AND admin role
		r.Use(auth.RequireAuth)
		r.Use(auth.RequireAdmin)

		r.Get("/rooms", adminHandler.ListRooms)
		r.Post("/rooms", adminHandler.CreateRoom)
		r.Put("/rooms/{id}", adminHandler.UpdateRoom)
		r.Delete("/rooms/{id}", adminHandler.DeleteRoom)
		r.Delete("/rooms/{id}/purge", adminHandler.PurgeRoom)

		r.Get("/bookings", adminHandler.ListBookings)
		r.Get("/bookings/{id}", adminHandler.GetBooking)
		r.Patch("/bookings/{id}/status", adminHandler.SetBookingStatus)

		r.Get("/statistics", adminHandler.Statistics)
	})
}
