package gateway

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strings"
	"time"
)

var (
	// ErrInvalidSignature is returned by ParseWebhook before any payload is trusted.
	ErrInvalidSignature = errors.New("invalid webhook signature")
	ErrSessionNotFound  = errors.New("checkout session not found")
)

type SessionStatus string

const (
	SessionOpen     SessionStatus = "open"
	SessionComplete SessionStatus = "complete"
	SessionExpired  SessionStatus = "expired"
)

type PaymentStatus string

const (
	PaymentPaid   PaymentStatus = "paid"
	PaymentUnpaid PaymentStatus = "unpaid"
)

type EventKind string

const (
	EventCheckoutCompleted EventKind = "checkout.completed"
	EventCheckoutExpired   EventKind = "checkout.expired"
	EventPaymentSucceeded  EventKind = "payment.succeeded"
	EventPaymentFailed     EventKind = "payment.failed"
	EventChargeRefunded    EventKind = "charge.refunded"
	EventUnknown           EventKind = "unknown"
)

type CheckoutRequest struct {
	BookingID     string
	Amount        int64 // minor units
	Currency      string
	ProductName   string
	Description   string
	CustomerEmail string
	SuccessURL    string
	CancelURL     string
	ExpiresAt     time.Time
}

type CheckoutSession struct {
	ID  string
	URL string
}

type Session struct {
	ID            string
	BookingID     string
	Status        SessionStatus
	PaymentStatus PaymentStatus
	AmountTotal   int64
	Currency      string
	PaymentRef    string
	Method        string
	// URL is where the customer completes an open session.
	URL string
}

func (s *Session) IsPaid() bool {
	return s.Status == SessionComplete && s.PaymentStatus == PaymentPaid
}

type RefundRequest struct {
	PaymentRef     string
	Amount         int64
	Reason         string
	BookingID      string
	IdempotencyKey string
}

const RefundSucceeded = "succeeded"

type Refund struct {
	ID     string
	Status string
}

// Event is a verified provider notification reduced to the kinds the
// booking flow reacts to.
type Event struct {
	ID         string
	Kind       EventKind
	RawType    string
	Session    *Session
	PaymentRef string
}

// Provider is the payment processor contract. Implementations are created
// once at startup and shared.
type Provider interface {
	Name() string
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error)
	GetSession(ctx context.Context, sessionID string) (*Session, error)
	CreateRefund(ctx context.Context, req RefundRequest) (*Refund, error)
	ParseWebhook(ctx context.Context, payload []byte, header http.Header) (*Event, error)
}

// withQuery appends key=value to rawURL without escaping value, so provider
// placeholders such as {CHECKOUT_SESSION_ID} survive.
func withQuery(rawURL, key, value string) string {
	sep := "?"
	if strings.Contains(rawURL, "?") {
		sep = "&"
	}
	return rawURL + sep + key + "=" + value
}

// ToMinorUnits converts an amount in major units to cents.
func ToMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

func FromMinorUnits(amount int64) float64 {
	return float64(amount) / 100
}
