package request

type CreateBookingRequest struct {
	RoomID         string  `json:"roomId" validate:"required,uuid"`
	Date           string  `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime      string  `json:"startTime" validate:"required,clock"`
	EndTime        string  `json:"endTime" validate:"required,clock"`
	CustomerName   string  `json:"customerName" validate:"required,min=2,max=100"`
	CustomerEmail  string  `json:"customerEmail" validate:"required,email"`
	CustomerPhone  *string `json:"customerPhone,omitempty" validate:"omitempty,max=30"`
	NumberOfPeople *int    `json:"numberOfPeople,omitempty" validate:"omitempty,min=1"`
}

// UpdateBookingRequest is a partial update; nil fields keep their value.
type UpdateBookingRequest struct {
	Date           *string `json:"date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	StartTime      *string `json:"startTime,omitempty" validate:"omitempty,clock"`
	EndTime        *string `json:"endTime,omitempty" validate:"omitempty,clock"`
	CustomerName   *string `json:"customerName,omitempty" validate:"omitempty,min=2,max=100"`
	CustomerEmail  *string `json:"customerEmail,omitempty" validate:"omitempty,email"`
	CustomerPhone  *string `json:"customerPhone,omitempty" validate:"omitempty,max=30"`
	NumberOfPeople *int    `json:"numberOfPeople,omitempty" validate:"omitempty,min=1"`
}

func (r *UpdateBookingRequest) ChangesSlot() bool {
	return r.Date != nil || r.StartTime != nil || r.EndTime != nil
}
