package request

// CreateCheckoutRequest pays for an existing booking, or creates the booking
// from BookingData first.
type CreateCheckoutRequest struct {
	BookingID   *string               `json:"bookingId,omitempty" validate:"omitempty,uuid"`
	BookingData *CreateBookingRequest `json:"bookingData,omitempty"`
}

type RefundRequest struct {
	BookingID string  `json:"bookingId" validate:"required,uuid"`
	Reason    *string `json:"reason,omitempty" validate:"omitempty,max=500"`
}

type CalculateRefundRequest struct {
	BookingID string `json:"bookingId" validate:"required,uuid"`
}
