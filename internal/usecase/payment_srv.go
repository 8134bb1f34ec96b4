package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"room-booking/internal/data/entity"
	"room-booking/internal/data/repository"
	"room-booking/internal/domain"
	"room-booking/internal/dto/request"
	"room-booking/internal/dto/response"
	"room-booking/internal/gateway"
	"room-booking/pkg/utils"
)

type PaymentService interface {
	CreateCheckout(ctx context.Context, actor domain.Actor, req *request.CreateCheckoutRequest) (*response.CheckoutResponse, error)
	VerifyPayment(ctx context.Context, sessionID string) (*response.VerifyPaymentResponse, error)
	ConfirmPayment(ctx context.Context, session *gateway.Session) (*entity.Booking, error)
	ProcessRefund(ctx context.Context, actor domain.Actor, req *request.RefundRequest) (*response.RefundResponse, error)
	PreviewRefund(ctx context.Context, actor domain.Actor, bookingID string) (*response.RefundPreviewResponse, error)
	HandleWebhook(ctx context.Context, payload []byte, header http.Header) error
}

type paymentService struct {
	serviceBase
	bookings *bookingService
	provider gateway.Provider
	log      *zap.Logger
}

func newPaymentService(base serviceBase, bookings *bookingService, provider gateway.Provider, log *zap.Logger) PaymentService {
	return &paymentService{
		serviceBase: base,
		bookings:    bookings,
		provider:    provider,
		log:         log.With(zap.String("service", "payment"), zap.String("provider", provider.Name())),
	}
}

func (s *paymentService) CreateCheckout(ctx context.Context, actor domain.Actor, req *request.CreateCheckoutRequest) (*response.CheckoutResponse, error) {
	if req == nil || (req.BookingID == nil && req.BookingData == nil) {
		return nil, domain.Validation("bookingId or bookingData is required", map[string]string{
			"bookingId": "This field is required",
		})
	}
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, utils.ValidationError(errs)
	}

	var (
		booking *entity.Booking
		err     error
	)
	if req.BookingData != nil {
		booking, err = s.bookings.create(ctx, actor, req.BookingData)
	} else {
		booking, err = s.payableBooking(ctx, actor, *req.BookingID)
		if err != nil {
			return nil, err
		}
		resumed, err := s.resumeCheckout(ctx, booking)
		if err != nil || resumed != nil {
			return resumed, err
		}
	}
	if err != nil {
		return nil, err
	}

	room, err := s.repo.Room.FindByID(ctx, booking.RoomID)
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, errRoomNotFound()
	}

	frontend := s.config.App.FrontendURL
	successURL := frontend + "/booking-success"
	cancelURL := fmt.Sprintf("%s/booking-cancelled?booking_id=%s", frontend, booking.ID)

	amount := gateway.ToMinorUnits(booking.TotalPrice)
	if amount <= 0 {
		if err := s.confirmFree(ctx, booking.ID); err != nil {
			return nil, err
		}
		return &response.CheckoutResponse{
			BookingID:  booking.ID.String(),
			SessionURL: fmt.Sprintf("%s?booking_id=%s", successURL, booking.ID),
		}, nil
	}

	slot := booking.Slot()
	now := s.now()
	expiresAt := now.Add(s.config.Payment.CheckoutExpiry)
	checkout, err := s.provider.CreateCheckoutSession(ctx, gateway.CheckoutRequest{
		BookingID:     booking.ID.String(),
		Amount:        amount,
		Currency:      s.config.Payment.Currency,
		ProductName:   "Booking - " + room.Name,
		Description:   fmt.Sprintf("%s from %s to %s", slot.DateString(), slot.Start, slot.End),
		CustomerEmail: booking.CustomerEmail,
		SuccessURL:    successURL,
		CancelURL:     cancelURL,
		ExpiresAt:     expiresAt,
	})
	if err != nil {
		s.log.Error("Failed to create checkout session", zap.Error(err), zap.String("booking_id", booking.ID.String()))
		return nil, domain.PaymentProvider("Failed to create checkout session", err)
	}

	err = s.repo.Tx.WithinTx(ctx, func(tx *repository.Repository) error {
		b, err := tx.Booking.FindByIDForUpdate(ctx, booking.ID)
		if err != nil {
			return err
		}
		if b == nil {
			return errBookingNotFound()
		}
		if !b.AwaitingPayment() {
			return errNotPayable(b.Status)
		}
		b.CheckoutSessionID = &checkout.ID
		b.CheckoutExpiresAt = &expiresAt
		b.UpdatedAt = now
		return tx.Booking.Update(ctx, b)
	})
	if err != nil {
		s.log.Error("Failed to store checkout session", zap.Error(err), zap.String("session_id", checkout.ID))
		return nil, err
	}

	s.log.Info("Checkout session created",
		zap.String("booking_id", booking.ID.String()),
		zap.String("session_id", checkout.ID),
		zap.Int64("amount", amount),
	)

	return &response.CheckoutResponse{
		BookingID:  booking.ID.String(),
		SessionID:  checkout.ID,
		SessionURL: checkout.URL,
	}, nil
}

// payableBooking loads an existing booking of actor that still waits for payment.
func (s *paymentService) payableBooking(ctx context.Context, actor domain.Actor, bookingID string) (*entity.Booking, error) {
	id, err := parseID(bookingID, "bookingId")
	if err != nil {
		return nil, err
	}
	booking, err := s.repo.Booking.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking == nil || !actor.CanAccess(booking.UserID) {
		return nil, errBookingNotFound()
	}
	if !booking.AwaitingPayment() {
		return nil, errNotPayable(booking.Status)
	}
	return booking, nil
}

func errNotPayable(status entity.BookingStatus) error {
	return &domain.Error{
		Kind:    domain.KindValidation,
		Code:    "BOOKING_NOT_PAYABLE",
		Message: fmt.Sprintf("Booking in status %s does not require payment", status),
	}
}

// resumeCheckout returns the booking's stored checkout while the provider still
// accepts payment on it at the current price. A session paid meanwhile is
// confirmed. A nil response means a new session is needed.
func (s *paymentService) resumeCheckout(ctx context.Context, b *entity.Booking) (*response.CheckoutResponse, error) {
	if !b.CheckoutOpen(s.now()) {
		return nil, nil
	}

	session, err := s.provider.GetSession(ctx, *b.CheckoutSessionID)
	if err != nil {
		s.log.Warn("Stored checkout session unavailable, opening a new one",
			zap.Error(err),
			zap.String("booking_id", b.ID.String()),
			zap.String("session_id", *b.CheckoutSessionID),
		)
		return nil, nil
	}

	switch {
	case session.IsPaid():
		if _, err := s.ConfirmPayment(ctx, session); err != nil {
			return nil, err
		}
		return &response.CheckoutResponse{
			BookingID:  b.ID.String(),
			SessionID:  session.ID,
			SessionURL: fmt.Sprintf("%s/booking-success?session_id=%s", s.config.App.FrontendURL, session.ID),
		}, nil
	case session.Status == gateway.SessionOpen && session.URL != "" &&
		session.AmountTotal == gateway.ToMinorUnits(b.TotalPrice):
		s.log.Info("Reusing open checkout session",
			zap.String("booking_id", b.ID.String()),
			zap.String("session_id", session.ID),
		)
		return &response.CheckoutResponse{
			BookingID:  b.ID.String(),
			SessionID:  session.ID,
			SessionURL: session.URL,
		}, nil
	}
	return nil, nil
}

// confirmFree confirms a booking that costs nothing without involving the provider.
func (s *paymentService) confirmFree(ctx context.Context, bookingID uuid.UUID) error {
	now := s.now()
	var booking *entity.Booking

	err := s.repo.Tx.WithinTx(ctx, func(tx *repository.Repository) error {
		b, err := tx.Booking.FindByIDForUpdate(ctx, bookingID)
		if err != nil {
			return err
		}
		if b == nil {
			return errBookingNotFound()
		}
		if !b.AwaitingPayment() {
			return nil
		}
		b.Status = entity.BookingStatusConfirmed
		b.PaymentDate = &now
		b.UpdatedAt = now
		booking = b
		return tx.Booking.Update(ctx, b)
	})
	if err != nil {
		return err
	}

	s.log.Info("Free booking confirmed", zap.String("booking_id", bookingID.String()))
	s.events.booking(ctx, EventBookingConfirmed, booking, now)
	return nil
}

func (s *paymentService) VerifyPayment(ctx context.Context, sessionID string) (*response.VerifyPaymentResponse, error) {
	if sessionID == "" {
		return nil, domain.Validation("Session id is required", map[string]string{"sessionId": "This field is required"})
	}

	session, err := s.provider.GetSession(ctx, sessionID)
	if errors.Is(err, gateway.ErrSessionNotFound) {
		return nil, domain.NotFound("SESSION_NOT_FOUND", "Checkout session not found")
	}
	if err != nil {
		s.log.Error("Failed to retrieve checkout session", zap.Error(err), zap.String("session_id", sessionID))
		return nil, domain.PaymentProvider("Failed to verify payment", err)
	}

	var booking *entity.Booking
	if session.IsPaid() {
		booking, err = s.ConfirmPayment(ctx, session)
	} else {
		err = s.repo.Tx.WithinTx(ctx, func(tx *repository.Repository) error {
			booking, err = sessionBooking(ctx, tx, session)
			return err
		})
	}
	if err != nil {
		return nil, err
	}

	return &response.VerifyPaymentResponse{
		Booking: response.BookingToResponse(booking),
		Session: response.SessionSummary{
			ID:            session.ID,
			Status:        string(session.Status),
			PaymentStatus: string(session.PaymentStatus),
		},
	}, nil
}

// sessionBooking locks the booking a checkout session was created for.
func sessionBooking(ctx context.Context, tx *repository.Repository, session *gateway.Session) (*entity.Booking, error) {
	var (
		b   *entity.Booking
		err error
	)
	if id, perr := uuid.Parse(session.BookingID); perr == nil {
		b, err = tx.Booking.FindByIDForUpdate(ctx, id)
	} else {
		b, err = tx.Booking.FindBySessionIDForUpdate(ctx, session.ID)
	}
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, errBookingNotFound()
	}
	return b, nil
}

// ConfirmPayment records a completed checkout. It is safe to call any number
// of times for the same session: the booking row is locked, the payment insert
// is a no-op once a payment exists, and confirmed bookings are left as they are.
//
// A charge the booking cannot take is refunded instead: the booking was closed
// before payment completed, or it was already paid through another session.
// Such a session yields a TerminalState error with code BOOKING_CLOSED.
func (s *paymentService) ConfirmPayment(ctx context.Context, session *gateway.Session) (*entity.Booking, error) {
	if session == nil {
		return nil, domain.Validation("Session is required", nil)
	}

	now := s.now()
	var (
		booking   *entity.Booking
		confirmed bool
		returned  *gateway.Refund
	)

	err := s.repo.Tx.WithinTx(ctx, func(tx *repository.Repository) error {
		b, err := sessionBooking(ctx, tx, session)
		if err != nil {
			return err
		}
		booking = b

		existing, err := tx.Payment.FindByBookingID(ctx, b.ID)
		if err != nil {
			return err
		}
		if unclaimedCharge(b, existing, session) {
			returned, err = s.returnCharge(ctx, tx, b, existing, session, now)
			return err
		}

		if expected := gateway.ToMinorUnits(b.TotalPrice); session.AmountTotal != 0 && session.AmountTotal != expected {
			s.log.Warn("Paid amount differs from booking price",
				zap.String("booking_id", b.ID.String()),
				zap.Int64("paid", session.AmountTotal),
				zap.Int64("expected", expected),
			)
		}

		created, err := tx.Payment.Create(ctx, s.paymentFromSession(b, session, now))
		if err != nil {
			return err
		}
		if !created {
			s.log.Debug("Payment already recorded", zap.String("booking_id", b.ID.String()))
		}

		changed := false
		if b.PaymentRef == nil && session.PaymentRef != "" {
			ref := session.PaymentRef
			b.PaymentRef = &ref
			changed = true
		}
		if b.CheckoutSessionID == nil && session.ID != "" {
			id := session.ID
			b.CheckoutSessionID = &id
			changed = true
		}

		switch {
		case b.Status == entity.BookingStatusPendingPayment || b.Status == entity.BookingStatusPaymentReceived:
			b.Status = entity.BookingStatusConfirmed
			b.PaymentDate = &now
			confirmed, changed = true, true
		case b.Status == entity.BookingStatusModified && b.PaymentDate == nil:
			b.PaymentDate = &now
			confirmed, changed = true, true
		}

		if !changed {
			return nil
		}
		b.UpdatedAt = now
		return tx.Booking.Update(ctx, b)
	})
	if err != nil {
		s.log.Error("Failed to confirm payment", zap.Error(err), zap.String("session_id", session.ID))
		return nil, err
	}

	if returned != nil {
		s.log.Warn("Payment returned for a booking that cannot take it",
			zap.String("booking_id", booking.ID.String()),
			zap.String("status", string(booking.Status)),
			zap.String("session_id", session.ID),
			zap.String("refund_id", returned.ID),
		)
		return nil, domain.TerminalState(codeBookingClosed,
			fmt.Sprintf("Booking in status %s no longer accepts payment, the charge has been refunded", booking.Status))
	}

	if confirmed {
		s.log.Info("Payment confirmed",
			zap.String("booking_id", booking.ID.String()),
			zap.String("session_id", session.ID),
		)
		s.events.booking(ctx, EventBookingConfirmed, booking, now)
	}
	return booking, nil
}

const (
	codeBookingClosed = "BOOKING_CLOSED"
	reasonUnclaimed   = "unclaimed_payment"
)

func isBookingClosed(err error) bool {
	de, ok := domain.AsError(err)
	return ok && de.Code == codeBookingClosed
}

// unclaimedCharge reports whether the paid session cannot be applied to b:
// b never got paid and no longer waits for payment, or b is already paid
// through a different charge.
func unclaimedCharge(b *entity.Booking, existing *entity.Payment, session *gateway.Session) bool {
	if existing != nil && existing.ProviderPaymentRef != nil && session.PaymentRef != "" {
		if *existing.ProviderPaymentRef != session.PaymentRef {
			return true
		}
		return existing.Status == entity.PaymentStatusRefunded && b.PaymentDate == nil
	}
	if b.PaymentDate != nil {
		return false
	}
	switch b.Status {
	case entity.BookingStatusPendingPayment, entity.BookingStatusPaymentReceived, entity.BookingStatusModified:
		return false
	}
	return true
}

// returnCharge refunds the session's charge in full and records it. The
// provider call is keyed by the charge so repeated deliveries refund once.
func (s *paymentService) returnCharge(ctx context.Context, tx *repository.Repository, b *entity.Booking, existing *entity.Payment, session *gateway.Session, now time.Time) (*gateway.Refund, error) {
	if session.PaymentRef == "" {
		return nil, domain.Internal("Paid session carries no payment reference", nil)
	}

	recorded, err := tx.Refund.FindByBookingID(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	sameCharge := existing != nil && existing.ProviderPaymentRef != nil && *existing.ProviderPaymentRef == session.PaymentRef
	if sameCharge && existing.Status == entity.PaymentStatusRefunded {
		for _, r := range recorded {
			if r.Reason != nil && *r.Reason == reasonUnclaimed {
				return &gateway.Refund{ID: r.ProviderRefundRef, Status: string(r.Status)}, nil
			}
		}
	}

	amount := session.AmountTotal
	if amount <= 0 {
		amount = gateway.ToMinorUnits(b.TotalPrice)
	}
	refund, err := s.provider.CreateRefund(ctx, gateway.RefundRequest{
		PaymentRef:     session.PaymentRef,
		Amount:         amount,
		Reason:         reasonUnclaimed,
		BookingID:      b.ID.String(),
		IdempotencyKey: "unclaimed-" + session.PaymentRef,
	})
	if err != nil {
		return nil, domain.PaymentProvider("Failed to refund payment for closed booking", err)
	}
	for _, r := range recorded {
		if r.ProviderRefundRef == refund.ID {
			return refund, nil
		}
	}

	reason := reasonUnclaimed
	status := entity.RefundStatusPending
	if refund.Status == gateway.RefundSucceeded {
		status = entity.RefundStatusSucceeded
	}
	err = tx.Refund.Create(ctx, &entity.Refund{
		BaseSimple:        entity.BaseSimple{ID: uuid.New(), CreatedAt: now},
		BookingID:         b.ID,
		Amount:            gateway.FromMinorUnits(amount),
		ProviderRefundRef: refund.ID,
		Reason:            &reason,
		Status:            status,
		ProcessedAt:       now,
	})
	if err == nil && existing == nil {
		payment := s.paymentFromSession(b, session, now)
		payment.Status = entity.PaymentStatusRefunded
		_, err = tx.Payment.Create(ctx, payment)
	} else if err == nil && sameCharge {
		err = tx.Payment.UpdateStatus(ctx, existing.ID, entity.PaymentStatusRefunded)
	}
	if err != nil {
		s.log.Error("Refund executed but not recorded",
			zap.Error(err),
			zap.String("booking_id", b.ID.String()),
			zap.String("refund_id", refund.ID),
		)
		return nil, err
	}
	return refund, nil
}

func (s *paymentService) paymentFromSession(b *entity.Booking, session *gateway.Session, now time.Time) *entity.Payment {
	amount := b.TotalPrice
	if session.AmountTotal > 0 {
		amount = gateway.FromMinorUnits(session.AmountTotal)
	}
	currency := session.Currency
	if currency == "" {
		currency = s.config.Payment.Currency
	}

	payment := &entity.Payment{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		BookingID: b.ID,
		Amount:    amount,
		Currency:  currency,
		Status:    entity.PaymentStatusSucceeded,
	}
	if session.PaymentRef != "" {
		ref := session.PaymentRef
		payment.ProviderPaymentRef = &ref
	}
	if session.Method != "" {
		method := session.Method
		payment.Method = &method
	}
	return payment
}

func (s *paymentService) ProcessRefund(ctx context.Context, actor domain.Actor, req *request.RefundRequest) (*response.RefundResponse, error) {
	if req == nil {
		return nil, domain.Validation("bookingId is required", map[string]string{"bookingId": "This field is required"})
	}
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, utils.ValidationError(errs)
	}
	id, err := parseID(req.BookingID, "bookingId")
	if err != nil {
		return nil, err
	}

	reason := "requested_by_customer"
	if req.Reason != nil && *req.Reason != "" {
		reason = *req.Reason
	}

	now := s.now()
	var (
		booking *entity.Booking
		result  response.RefundResponse
	)

	err = s.repo.Tx.WithinTx(ctx, func(tx *repository.Repository) error {
		b, err := tx.Booking.FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if b == nil {
			return errBookingNotFound()
		}
		if !actor.CanAccess(b.UserID) {
			return domain.Forbidden("You can only refund your own bookings")
		}

		payment, err := tx.Payment.FindByBookingID(ctx, b.ID)
		if err != nil {
			return err
		}
		paymentRef := ""
		if payment != nil && payment.ProviderPaymentRef != nil {
			paymentRef = *payment.ProviderPaymentRef
		} else if b.PaymentRef != nil {
			paymentRef = *b.PaymentRef
		}
		if payment == nil || paymentRef == "" {
			return &domain.Error{Kind: domain.KindValidation, Code: "NO_PAYMENT", Message: "No payment found for this booking"}
		}

		if !b.Status.IsSlotHolding() {
			return domain.TerminalState("BOOKING_TERMINAL", fmt.Sprintf("Booking in status %s cannot be refunded", b.Status))
		}

		quote := domain.CalculateRefund(b.Slot().StartsAt(s.loc), b.TotalPrice, now)
		if !quote.CanRefund {
			return domain.NoRefundAvailable("No refund available less than 24 hours before the booking")
		}

		amount := quote.RefundAmount
		if amount > payment.Amount {
			amount = payment.Amount
		}

		refund, err := s.provider.CreateRefund(ctx, gateway.RefundRequest{
			PaymentRef:     paymentRef,
			Amount:         gateway.ToMinorUnits(amount),
			Reason:         reason,
			BookingID:      b.ID.String(),
			IdempotencyKey: "refund-" + b.ID.String(),
		})
		if err != nil {
			return domain.PaymentProvider("Failed to process refund", err)
		}

		// The provider has refunded from here on. A local failure below is
		// logged with the refund id so it can be reconciled.
		status := entity.RefundStatusPending
		if refund.Status == gateway.RefundSucceeded {
			status = entity.RefundStatusSucceeded
		}
		err = tx.Refund.Create(ctx, &entity.Refund{
			BaseSimple:        entity.BaseSimple{ID: uuid.New(), CreatedAt: now},
			BookingID:         b.ID,
			Amount:            amount,
			ProviderRefundRef: refund.ID,
			Reason:            &reason,
			Status:            status,
			ProcessedAt:       now,
		})
		if err == nil {
			b.Status = entity.BookingStatusRefunded
			b.RefundRef = &refund.ID
			b.CancelledAt = &now
			b.UpdatedAt = now
			err = tx.Booking.Update(ctx, b)
		}
		if err == nil {
			paymentStatus := entity.PaymentStatusPartiallyRefunded
			if quote.RefundAmount == b.TotalPrice {
				paymentStatus = entity.PaymentStatusRefunded
			}
			err = tx.Payment.UpdateStatus(ctx, payment.ID, paymentStatus)
		}
		if err != nil {
			s.log.Error("Refund executed but not recorded",
				zap.Error(err),
				zap.String("booking_id", b.ID.String()),
				zap.String("refund_id", refund.ID),
			)
			return err
		}

		booking = b
		result = response.RefundResponse{
			RefundID:         refund.ID,
			RefundAmount:     amount,
			RefundPercentage: quote.RefundPercentage,
		}
		return nil
	})
	if err != nil {
		s.log.Warn("Refund failed", zap.Error(err), zap.String("booking_id", req.BookingID))
		return nil, err
	}

	s.log.Info("Booking refunded",
		zap.String("booking_id", booking.ID.String()),
		zap.String("refund_id", result.RefundID),
		zap.Float64("amount", result.RefundAmount),
	)
	s.events.booking(ctx, EventBookingRefunded, booking, now)

	return &result, nil
}

func (s *paymentService) PreviewRefund(ctx context.Context, actor domain.Actor, bookingID string) (*response.RefundPreviewResponse, error) {
	id, err := parseID(bookingID, "bookingId")
	if err != nil {
		return nil, err
	}

	booking, err := s.repo.Booking.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking == nil || !actor.CanAccess(booking.UserID) {
		return nil, errBookingNotFound()
	}

	quote := domain.CalculateRefund(booking.Slot().StartsAt(s.loc), booking.TotalPrice, s.now())
	if !booking.Status.IsSlotHolding() {
		quote.RefundAmount, quote.RefundPercentage, quote.CanRefund = 0, 0, false
	}

	preview := response.RefundQuoteToPreview(quote)
	return &preview, nil
}

// HandleWebhook verifies a provider notification and applies it. Signature
// failures are returned as gateway.ErrInvalidSignature before anything else runs.
func (s *paymentService) HandleWebhook(ctx context.Context, payload []byte, header http.Header) error {
	event, err := s.provider.ParseWebhook(ctx, payload, header)
	if err != nil {
		if errors.Is(err, gateway.ErrInvalidSignature) {
			s.log.Warn("Rejected webhook with invalid signature")
			return err
		}
		return domain.PaymentProvider("Failed to read webhook event", err)
	}

	log := s.log.With(zap.String("event_id", event.ID), zap.String("event_type", event.RawType))

	switch event.Kind {
	case gateway.EventCheckoutCompleted:
		if event.Session == nil || !event.Session.IsPaid() {
			log.Info("Checkout completed without payment, waiting")
			return nil
		}
		_, err := s.ConfirmPayment(ctx, event.Session)
		if errors.Is(err, domain.ErrNotFound) {
			log.Warn("Checkout completed for unknown booking", zap.String("booking_id", event.Session.BookingID))
			return nil
		}
		if isBookingClosed(err) {
			return nil
		}
		return err

	case gateway.EventCheckoutExpired:
		if event.Session == nil {
			return nil
		}
		return s.expireSession(ctx, event.Session, log)

	case gateway.EventPaymentSucceeded, gateway.EventPaymentFailed, gateway.EventChargeRefunded:
		log.Info("Payment event received", zap.String("payment_ref", event.PaymentRef))
		return nil

	default:
		log.Debug("Ignoring webhook event")
		return nil
	}
}

func (s *paymentService) expireSession(ctx context.Context, session *gateway.Session, log *zap.Logger) error {
	now := s.now()
	var booking *entity.Booking

	err := s.repo.Tx.WithinTx(ctx, func(tx *repository.Repository) error {
		b, err := sessionBooking(ctx, tx, session)
		if err != nil {
			return err
		}
		if b.CheckoutSessionID != nil && *b.CheckoutSessionID != session.ID {
			log.Debug("Ignoring expiry of a superseded checkout", zap.String("booking_id", b.ID.String()))
			return nil
		}
		ok, err := expireUnpaid(ctx, tx, b, now)
		if ok {
			booking = b
		}
		return err
	})
	if errors.Is(err, domain.ErrNotFound) {
		log.Warn("Checkout expired for unknown booking", zap.String("booking_id", session.BookingID))
		return nil
	}
	if err != nil {
		return err
	}

	if booking != nil {
		log.Info("Booking released after checkout expiry", zap.String("booking_id", booking.ID.String()))
		s.events.booking(ctx, EventBookingExpired, booking, now)
	}
	return nil
}
