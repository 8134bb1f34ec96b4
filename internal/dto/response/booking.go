package response

import (
	"time"

	"room-booking/internal/data/entity"
	"room-booking/internal/domain"
)

type BookingResponse struct {
	ID                string               `json:"id"`
	RoomID            string               `json:"roomId"`
	RoomName          string               `json:"roomName,omitempty"`
	UserID            string               `json:"userId"`
	Date              string               `json:"date"`
	StartTime         string               `json:"startTime"`
	EndTime           string               `json:"endTime"`
	CustomerName      string               `json:"customerName"`
	CustomerEmail     string               `json:"customerEmail"`
	CustomerPhone     *string              `json:"customerPhone,omitempty"`
	NumberOfPeople    int                  `json:"numberOfPeople"`
	TotalPrice        float64              `json:"totalPrice"`
	Status            entity.BookingStatus `json:"status"`
	CheckoutSessionID *string              `json:"checkoutSessionId,omitempty"`
	PaymentDate       *time.Time           `json:"paymentDate,omitempty"`
	CancelledAt       *time.Time           `json:"cancelledAt,omitempty"`
	CreatedAt         time.Time            `json:"createdAt"`
	UpdatedAt         time.Time            `json:"updatedAt"`
}

type PaymentResponse struct {
	ID         string               `json:"id"`
	Amount     float64              `json:"amount"`
	Currency   string               `json:"currency"`
	Method     *string              `json:"method,omitempty"`
	Status     entity.PaymentStatus `json:"status"`
	PaymentRef *string              `json:"paymentRef,omitempty"`
	CreatedAt  time.Time            `json:"createdAt"`
}

type BookingDetailResponse struct {
	BookingResponse
	Room    *RoomResponse    `json:"room,omitempty"`
	Payment *PaymentResponse `json:"payment,omitempty"`
}

func BookingToResponse(b *entity.Booking) BookingResponse {
	slot := b.Slot()
	return BookingResponse{
		ID:                b.ID.String(),
		RoomID:            b.RoomID.String(),
		UserID:            b.UserID,
		Date:              b.Date.Format(domain.DateLayout),
		StartTime:         slot.Start.String(),
		EndTime:           slot.End.String(),
		CustomerName:      b.CustomerName,
		CustomerEmail:     b.CustomerEmail,
		CustomerPhone:     b.CustomerPhone,
		NumberOfPeople:    b.NumberOfPeople,
		TotalPrice:        b.TotalPrice,
		Status:            b.Status,
		CheckoutSessionID: b.CheckoutSessionID,
		PaymentDate:       b.PaymentDate,
		CancelledAt:       b.CancelledAt,
		CreatedAt:         b.CreatedAt,
		UpdatedAt:         b.UpdatedAt,
	}
}

func BookingWithRoomToResponse(b *entity.BookingWithRoom) BookingResponse {
	resp := BookingToResponse(&b.Booking)
	resp.RoomName = b.RoomName
	return resp
}

func PaymentToResponse(p *entity.Payment) PaymentResponse {
	return PaymentResponse{
		ID:         p.ID.String(),
		Amount:     p.Amount,
		Currency:   p.Currency,
		Method:     p.Method,
		Status:     p.Status,
		PaymentRef: p.ProviderPaymentRef,
		CreatedAt:  p.CreatedAt,
	}
}
