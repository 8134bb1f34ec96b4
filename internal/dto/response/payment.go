package response

import "room-booking/internal/domain"

type CheckoutResponse struct {
	BookingID  string `json:"bookingId"`
	SessionID  string `json:"sessionId"`
	SessionURL string `json:"sessionUrl"`
}

type SessionSummary struct {
	ID            string `json:"id"`
	Status        string `json:"status"`
	PaymentStatus string `json:"paymentStatus"`
}

type VerifyPaymentResponse struct {
	Booking BookingResponse `json:"booking"`
	Session SessionSummary  `json:"session"`
}

type RefundResponse struct {
	RefundID         string  `json:"refundId"`
	RefundAmount     float64 `json:"refundAmount"`
	RefundPercentage int     `json:"refundPercentage"`
}

type RefundPreviewResponse struct {
	TotalPrice       float64 `json:"totalPrice"`
	RefundAmount     float64 `json:"refundAmount"`
	RefundPercentage int     `json:"refundPercentage"`
	CanRefund        bool    `json:"canRefund"`
}

func RefundQuoteToPreview(q domain.RefundQuote) RefundPreviewResponse {
	return RefundPreviewResponse{
		TotalPrice:       q.TotalPrice,
		RefundAmount:     q.RefundAmount,
		RefundPercentage: q.RefundPercentage,
		CanRefund:        q.CanRefund,
	}
}
