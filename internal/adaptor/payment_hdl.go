package adaptor

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"room-booking/internal/dto/request"
	"room-booking/internal/gateway"
	"room-booking/internal/usecase"
	"room-booking/pkg/utils"
)

type PaymentHandler struct {
	responder
	service usecase.PaymentService
}

func NewPaymentHandler(service usecase.PaymentService, debug bool, log *zap.Logger) *PaymentHandler {
	return &PaymentHandler{
		responder: newResponder("payment", debug, log),
		service:   service,
	}
}

// CreateCheckout handles POST /api/payments/create-checkout (protected)
func (h *PaymentHandler) CreateCheckout(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	var req request.CreateCheckoutRequest
	if !decode(w, r, &req) {
		return
	}

	checkout, err := h.service.CreateCheckout(r.Context(), actor, &req)
	if err != nil {
		h.fail(w, err, "create checkout")
		return
	}

	utils.ResponseCreated(w, checkout)
}

// VerifyPayment handles GET /api/payments/verify/{sessionId} (public; the
// success page calls it before the user is known)
func (h *PaymentHandler) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.VerifyPayment(r.Context(), chi.URLParam(r, "sessionId"))
	if err != nil {
		h.fail(w, err, "verify payment")
		return
	}

	utils.ResponseSuccess(w, result)
}

// RequestRefund handles POST /api/payments/refund (protected)
func (h *PaymentHandler) RequestRefund(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	var req request.RefundRequest
	if !decode(w, r, &req) {
		return
	}

	refund, err := h.service.ProcessRefund(r.Context(), actor, &req)
	if err != nil {
		h.fail(w, err, "refund")
		return
	}

	utils.ResponseSuccess(w, refund)
}

// CalculateRefund handles POST /api/payments/calculate-refund (protected)
func (h *PaymentHandler) CalculateRefund(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	var req request.CalculateRefundRequest
	if !decode(w, r, &req) {
		return
	}
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", errs)
		return
	}

	preview, err := h.service.PreviewRefund(r.Context(), actor, req.BookingID)
	if err != nil {
		h.fail(w, err, "calculate refund")
		return
	}

	utils.ResponseSuccess(w, preview)
}

// WebhookHandler receives provider callbacks. Provider retries on any non 2xx
// answer, so only signature failures are reported as client errors.
type WebhookHandler struct {
	service  usecase.PaymentService
	provider string
	log      *zap.Logger
}

func NewWebhookHandler(service usecase.PaymentService, provider string, log *zap.Logger) *WebhookHandler {
	return &WebhookHandler{
		service:  service,
		provider: provider,
		log:      log.With(zap.String("handler", "webhook")),
	}
}

// Receive handles POST /api/webhooks/{provider}
func (h *WebhookHandler) Receive(w http.ResponseWriter, r *http.Request) {
	if name := chi.URLParam(r, "provider"); name != h.provider {
		utils.ResponseNotFound(w, "Unknown webhook provider")
		return
	}

	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		utils.ResponseBadRequest(w, "Unreadable webhook body", nil)
		return
	}

	if err := h.service.HandleWebhook(r.Context(), payload, r.Header); err != nil {
		if errors.Is(err, gateway.ErrInvalidSignature) {
			utils.ResponseError(w, http.StatusBadRequest, "INVALID_SIGNATURE", "Webhook signature verification failed", nil)
			return
		}
		h.log.Error("Webhook processing failed", zap.Error(err))
		utils.ResponseInternalError(w, "Webhook processing failed")
		return
	}

	utils.ResponseSuccess(w, map[string]bool{"received": true})
}
