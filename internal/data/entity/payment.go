package entity

import (
	"github.com/google/uuid"
)

type PaymentStatus string

const (
	PaymentStatusSucceeded         PaymentStatus = "SUCCEEDED"
	PaymentStatusRefunded          PaymentStatus = "REFUNDED"
	PaymentStatusPartiallyRefunded PaymentStatus = "PARTIALLY_REFUNDED"
)

type Payment struct {
	Base
	BookingID          uuid.UUID     `db:"booking_id"`
	Amount             float64       `db:"amount"`
	Currency           string        `db:"currency"`
	ProviderPaymentRef *string       `db:"provider_payment_ref"`
	Method             *string       `db:"method"`
	Status             PaymentStatus `db:"status"`
}
