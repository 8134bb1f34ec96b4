package wire

import (
	"github.com/go-chi/chi/v5"

	"room-booking/internal/adaptor"
	"room-booking/pkg/middleware"
)

func wirePayment(
	r chi.Router,
	paymentHandler *adaptor.PaymentHandler,
	webhookHandler *adaptor.WebhookHandler,
	auth *middleware.Authenticator,
) {
	r.Route("/payments", func(r chi.Router) {
		// ==================== PUBLIC ROUTES ====================
		r.Get("/verify/{sessionId}", paymentHandler.VerifyPayment)

		// ==================== PROTECTED ROUTES (require auth) ====================
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth)

			r.Post("/create-checkout", paymentHandler.CreateCheckout)
			r.Post("/refund", paymentHandler.RequestRefund)
			r.Post("/calculate-refund", paymentHandler.CalculateRefund)
		})
	})

	// Signed by the provider, no bearer token.
	r.Post("/webhooks/{provider}", webhookHandler.Receive)
}
