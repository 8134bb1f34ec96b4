// internal/wire/wire.go
package wire

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"room-booking/internal/adaptor"
	"room-booking/internal/data/repository"
	"room-booking/internal/gateway"
	"room-booking/internal/usecase"
	"room-booking/pkg/middleware"
	"room-booking/pkg/utils"
)

// Pinger reports database health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// App holds the wired dependencies
type App struct {
	Router  *chi.Mux
	Service *usecase.Service
}

// Wiring builds services, handlers and routes
func Wiring(
	repo *repository.Repository,
	db Pinger,
	provider gateway.Provider,
	events usecase.EventPublisher,
	config *utils.Config,
	logger *zap.Logger,
) *App {
	service := usecase.NewService(repo, provider, events, config, logger)
	handler := adaptor.NewHandler(service, config, logger)
	auth := middleware.NewAuthenticator(config.Auth, logger)

	router := setupRouter(handler, auth, db, config, logger)

	return &App{
		Router:  router,
		Service: service,
	}
}

// NewProvider selects the payment provider named in config.
func NewProvider(config utils.PaymentConfig, logger *zap.Logger) (gateway.Provider, error) {
	switch config.Provider {
	case "stripe":
		return gateway.NewStripeProvider(gateway.StripeConfig{
			SecretKey:     config.StripeSecretKey,
			WebhookSecret: config.StripeWebhookSecret,
		}, logger), nil
	case "omise":
		return gateway.NewOmiseProvider(gateway.OmiseConfig{
			PublicKey:  config.OmisePublicKey,
			SecretKey:  config.OmiseSecretKey,
			SourceType: config.OmiseSourceType,
		}, logger)
	default:
		return nil, fmt.Errorf("unknown payment provider %q", config.Provider)
	}
}

func setupRouter(
	handler *adaptor.Handler,
	auth *middleware.Authenticator,
	db Pinger,
	config *utils.Config,
	logger *zap.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recover(logger))
	r.Use(middleware.CORS(config.App.CORSOrigins))

	r.Get("/health", health(db))

	r.Route("/api", func(r chi.Router) {
		wireRoom(r, handler.Room)
		wireBooking(r, handler.Booking, auth)
		wirePayment(r, handler.Payment, handler.Webhook, auth)
		wireAdmin(r, handler.Admin, auth)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		utils.ResponseNotFound(w, "Endpoint not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		utils.ResponseError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
	})

	return r
}

func health(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := map[string]string{
			"status":    "ok",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		}
		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := db.Ping(ctx); err != nil {
				status["status"] = "degraded"
				status["database"] = "unreachable"
				utils.ResponseJSON(w, http.StatusServiceUnavailable, utils.Response{Success: false, Data: status})
				return
			}
		}
		utils.ResponseSuccess(w, status)
	}
}
