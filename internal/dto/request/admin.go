package request

type BookingFilterRequest struct {
	PaginatedRequest
	Status    string `json:"status" validate:"omitempty"`
	RoomID    string `json:"roomId" validate:"omitempty,uuid"`
	StartDate string `json:"startDate" validate:"omitempty,datetime=2006-01-02"`
	EndDate   string `json:"endDate" validate:"omitempty,datetime=2006-01-02"`
}

type UpdateBookingStatusRequest struct {
	Status string `json:"status" validate:"required"`
}
