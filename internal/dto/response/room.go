package response

import (
	"time"

	"room-booking/internal/data/entity"
)

type RoomResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  *string   `json:"description,omitempty"`
	Capacity     int       `json:"capacity"`
	PricePerHour float64   `json:"pricePerHour"`
	Equipments   []string  `json:"equipments"`
	ImageURL     *string   `json:"imageUrl,omitempty"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type DayAvailability struct {
	Date  string   `json:"date"`
	Slots []string `json:"slots"`
}

type RoomDetailResponse struct {
	RoomResponse
	AvailableSlots []DayAvailability `json:"availableSlots"`
}

func RoomToResponse(room *entity.Room) RoomResponse {
	equipments := room.Equipments
	if equipments == nil {
		equipments = []string{}
	}
	return RoomResponse{
		ID:           room.ID.String(),
		Name:         room.Name,
		Description:  room.Description,
		Capacity:     room.Capacity,
		PricePerHour: room.PricePerHour,
		Equipments:   equipments,
		ImageURL:     room.ImageURL,
		IsActive:     room.IsActive,
		CreatedAt:    room.CreatedAt,
		UpdatedAt:    room.UpdatedAt,
	}
}
