package adaptor

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"room-booking/internal/domain"
	"room-booking/internal/usecase"
	"room-booking/pkg/utils"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

type Handler struct {
	Room    *RoomHandler
	Booking *BookingHandler
	Payment *PaymentHandler
	Admin   *AdminHandler
	Webhook *WebhookHandler
}

func NewHandler(service *usecase.Service, config *utils.Config, log *zap.Logger) *Handler {
	debug := config.App.Debug
	return &Handler{
		Room:    NewRoomHandler(service.Room, debug, log),
		Booking: NewBookingHandler(service.Booking, debug, log),
		Payment: NewPaymentHandler(service.Payment, debug, log),
		Admin:   NewAdminHandler(service.Admin, debug, log),
		Webhook: NewWebhookHandler(service.Payment, config.Payment.Provider, log),
	}
}

// responder holds what every handler needs to write errors.
type responder struct {
	log   *zap.Logger
	debug bool
}

func newResponder(name string, debug bool, log *zap.Logger) responder {
	return responder{log: log.With(zap.String("handler", name)), debug: debug}
}

// fail maps a service error onto the response envelope. Messages of server
// side failures are replaced unless debug is on.
func (h responder) fail(w http.ResponseWriter, err error, operation string) {
	de, ok := domain.AsError(err)
	if !ok {
		de = domain.Internal("", err)
	}

	status := statusFor(de.Kind)
	message := de.Message

	switch {
	case status >= http.StatusInternalServerError:
		h.log.Error(operation+" failed", zap.Error(err), zap.String("code", de.Code))
		if h.debug {
			message = err.Error()
		} else if de.Kind == domain.KindPaymentProvider {
			message = "Payment provider error"
		} else {
			message = "Internal server error"
		}
	default:
		h.log.Warn(operation+" failed", zap.Error(err), zap.String("code", de.Code))
	}
	if message == "" {
		message = de.Code
	}

	utils.ResponseError(w, status, de.Code, message, de.Fields)
}

func statusFor(kind domain.Kind) int {
	switch kind {
	case domain.KindValidation,
		domain.KindImmutableState,
		domain.KindTerminalState,
		domain.KindAlreadyCancelled,
		domain.KindNoRefundAvailable:
		return http.StatusBadRequest
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindConflict:
		return http.StatusConflict
	case domain.KindForbidden:
		return http.StatusForbidden
	case domain.KindPaymentProvider:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// decode reads a JSON body into dst. It writes the 400 itself and reports
// whether the handler may continue.
func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			utils.ResponseBadRequest(w, "Request body is required", nil)
			return false
		}
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return false
	}
	return true
}

// actorFrom returns the caller set by the auth middleware, answering 401 when
// it is missing.
func actorFrom(w http.ResponseWriter, r *http.Request) (domain.Actor, bool) {
	actor, ok := utils.GetActorFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
	}
	return actor, ok
}
