package wire

import (
	"github.com/go-chi/chi/v5"

	"room-booking/internal/adaptor"
)

func wireRoom(r chi.Router, roomHandler *adaptor.RoomHandler) {
	// ==================== PUBLIC ROUTES ====================
	r.Route("/rooms", func(r chi.Router) {
		r.Get("/", roomHandler.ListRooms)
		r.Get("/{id}", roomHandler.GetRoom)
	})
}
