package entity

import (
	"time"

	"github.com/google/uuid"
)

type RefundStatus string

const (
	RefundStatusSucceeded RefundStatus = "SUCCEEDED"
	RefundStatusPending   RefundStatus = "PENDING"
)

type Refund struct {
	BaseSimple
	BookingID         uuid.UUID    `db:"booking_id"`
	Amount            float64      `db:"amount"`
	ProviderRefundRef string       `db:"provider_refund_ref"`
	Reason            *string      `db:"reason"`
	Status            RefundStatus `db:"status"`
	ProcessedAt       time.Time    `db:"processed_at"`
}
