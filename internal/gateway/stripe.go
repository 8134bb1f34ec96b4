package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/checkout/session"
	"github.com/stripe/stripe-go/v76/refund"
	"github.com/stripe/stripe-go/v76/webhook"
	"go.uber.org/zap"
)

type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
	// BaseURL overrides the API endpoint, used against local mocks.
	BaseURL string
}

type stripeProvider struct {
	sessions      session.Client
	refunds       refund.Client
	webhookSecret string
	log           *zap.Logger
}

func NewStripeProvider(cfg StripeConfig, log *zap.Logger) Provider {
	backendCfg := &stripe.BackendConfig{
		LeveledLogger:     log.Sugar(),
		MaxNetworkRetries: stripe.Int64(2),
	}
	if cfg.BaseURL != "" {
		backendCfg.URL = stripe.String(cfg.BaseURL)
	}
	backend := stripe.GetBackendWithConfig(stripe.APIBackend, backendCfg)

	return &stripeProvider{
		sessions:      session.Client{B: backend, Key: cfg.SecretKey},
		refunds:       refund.Client{B: backend, Key: cfg.SecretKey},
		webhookSecret: cfg.WebhookSecret,
		log:           log.With(zap.String("provider", "stripe")),
	}
}

func (p *stripeProvider) Name() string { return "stripe" }

func (p *stripeProvider) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(req.Currency),
					UnitAmount: stripe.Int64(req.Amount),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name:        stripe.String(req.ProductName),
						Description: stripe.String(req.Description),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
		CustomerEmail:     stripe.String(req.CustomerEmail),
		ClientReferenceID: stripe.String(req.BookingID),
		SuccessURL:        stripe.String(withQuery(req.SuccessURL, "session_id", "{CHECKOUT_SESSION_ID}")),
		CancelURL:         stripe.String(req.CancelURL),
		ExpiresAt:         stripe.Int64(req.ExpiresAt.Unix()),
		Metadata:          map[string]string{"bookingId": req.BookingID},
	}
	params.Context = ctx
	params.SetIdempotencyKey("checkout-" + req.BookingID + "-" + fmt.Sprint(req.ExpiresAt.Unix()))

	s, err := p.sessions.New(params)
	if err != nil {
		p.log.Error("Failed to create checkout session", zap.Error(err), zap.String("booking_id", req.BookingID))
		return nil, fmt.Errorf("stripe create checkout session: %w", err)
	}

	return &CheckoutSession{ID: s.ID, URL: s.URL}, nil
}

func (p *stripeProvider) GetSession(ctx context.Context, sessionID string) (*Session, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	s, err := p.sessions.Get(sessionID, params)
	if err != nil {
		var se *stripe.Error
		if errors.As(err, &se) && se.HTTPStatusCode == http.StatusNotFound {
			return nil, ErrSessionNotFound
		}
		p.log.Error("Failed to retrieve checkout session", zap.Error(err), zap.String("session_id", sessionID))
		return nil, fmt.Errorf("stripe get checkout session %s: %w", sessionID, err)
	}

	return stripeSession(s), nil
}

func stripeSession(s *stripe.CheckoutSession) *Session {
	out := &Session{
		ID:            s.ID,
		Status:        SessionStatus(s.Status),
		PaymentStatus: PaymentUnpaid,
		AmountTotal:   s.AmountTotal,
		Currency:      string(s.Currency),
		BookingID:     s.Metadata["bookingId"],
		URL:           s.URL,
	}
	if out.BookingID == "" {
		out.BookingID = s.ClientReferenceID
	}
	if s.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid {
		out.PaymentStatus = PaymentPaid
	}
	if s.PaymentIntent != nil {
		out.PaymentRef = s.PaymentIntent.ID
	}
	if len(s.PaymentMethodTypes) > 0 {
		out.Method = s.PaymentMethodTypes[0]
	}
	return out
}

func (p *stripeProvider) CreateRefund(ctx context.Context, req RefundRequest) (*Refund, error) {
	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(req.PaymentRef),
		Amount:        stripe.Int64(req.Amount),
		Reason:        stripe.String(string(stripe.RefundReasonRequestedByCustomer)),
		Metadata: map[string]string{
			"bookingId": req.BookingID,
			"reason":    req.Reason,
		},
	}
	params.Context = ctx
	if req.IdempotencyKey != "" {
		params.SetIdempotencyKey(req.IdempotencyKey)
	}

	r, err := p.refunds.New(params)
	if err != nil {
		p.log.Error("Failed to create refund",
			zap.Error(err),
			zap.String("booking_id", req.BookingID),
			zap.String("payment_ref", req.PaymentRef),
		)
		return nil, fmt.Errorf("stripe create refund: %w", err)
	}

	return &Refund{ID: r.ID, Status: string(r.Status)}, nil
}

func (p *stripeProvider) ParseWebhook(_ context.Context, payload []byte, header http.Header) (*Event, error) {
	ev, err := webhook.ConstructEventWithOptions(payload, header.Get("Stripe-Signature"), p.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		p.log.Warn("Rejected webhook", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	out := &Event{ID: ev.ID, RawType: string(ev.Type), Kind: EventUnknown}
	if ev.Data == nil {
		return out, nil
	}

	switch ev.Type {
	case stripe.EventTypeCheckoutSessionCompleted, stripe.EventTypeCheckoutSessionExpired:
		var s stripe.CheckoutSession
		if err := json.Unmarshal(ev.Data.Raw, &s); err != nil {
			return nil, fmt.Errorf("decode checkout session: %w", err)
		}
		out.Session = stripeSession(&s)
		out.PaymentRef = out.Session.PaymentRef
		out.Kind = EventCheckoutCompleted
		if ev.Type == stripe.EventTypeCheckoutSessionExpired {
			out.Kind = EventCheckoutExpired
		}

	case stripe.EventTypePaymentIntentSucceeded, stripe.EventTypePaymentIntentPaymentFailed:
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(ev.Data.Raw, &pi); err != nil {
			return nil, fmt.Errorf("decode payment intent: %w", err)
		}
		out.PaymentRef = pi.ID
		out.Kind = EventPaymentSucceeded
		if ev.Type == stripe.EventTypePaymentIntentPaymentFailed {
			out.Kind = EventPaymentFailed
		}

	case stripe.EventTypeChargeRefunded:
		var ch stripe.Charge
		if err := json.Unmarshal(ev.Data.Raw, &ch); err != nil {
			return nil, fmt.Errorf("decode charge: %w", err)
		}
		if ch.PaymentIntent != nil {
			out.PaymentRef = ch.PaymentIntent.ID
		}
		out.Kind = EventChargeRefunded
	}

	return out, nil
}
