package adaptor

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"room-booking/internal/usecase"
	"room-booking/pkg/utils"
)

type RoomHandler struct {
	responder
	service usecase.RoomService
}

func NewRoomHandler(service usecase.RoomService, debug bool, log *zap.Logger) *RoomHandler {
	return &RoomHandler{
		responder: newResponder("room", debug, log),
		service:   service,
	}
}

// ListRooms handles GET /api/rooms (public)
func (h *RoomHandler) ListRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.service.ListRooms(r.Context())
	if err != nil {
		h.fail(w, err, "list rooms")
		return
	}
	utils.ResponseSuccess(w, rooms)
}

// GetRoom handles GET /api/rooms/{id} (public)
func (h *RoomHandler) GetRoom(w http.ResponseWriter, r *http.Request) {
	room, err := h.service.GetRoom(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, err, "get room")
		return
	}
	utils.ResponseSuccess(w, room)
}
