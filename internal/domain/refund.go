package domain

import (
	"math"
	"time"
)

const (
	FullRefundNotice = 48 * time.Hour
	HalfRefundNotice = 24 * time.Hour
)

type RefundQuote struct {
	TotalPrice        float64 `json:"totalPrice"`
	RefundAmount      float64 `json:"refundAmount"`
	RefundPercentage  int     `json:"refundPercentage"`
	HoursUntilBooking float64 `json:"hoursUntilBooking"`
	CanRefund         bool    `json:"canRefund"`
}

// CalculateRefund applies the cancellation policy: 100% with at least 48h
// notice, 50% with at least 24h, nothing below that.
func CalculateRefund(startsAt time.Time, totalPrice float64, now time.Time) RefundQuote {
	until := startsAt.Sub(now)

	var amount float64
	switch {
	case until >= FullRefundNotice:
		amount = totalPrice
	case until >= HalfRefundNotice:
		amount = totalPrice * 0.5
	}

	percentage := 0
	if totalPrice != 0 {
		percentage = int(math.Round(amount / totalPrice * 100))
	}

	return RefundQuote{
		TotalPrice:        totalPrice,
		RefundAmount:      amount,
		RefundPercentage:  percentage,
		HoursUntilBooking: until.Hours(),
		CanRefund:         amount > 0,
	}
}
