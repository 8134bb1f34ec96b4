package wire

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"room-booking/internal/data/repository"
	"room-booking/internal/domain"
	"room-booking/pkg/middleware"
	"room-booking/pkg/utils"
)

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

func testConfig() *utils.Config {
	return &utils.Config{
		App:     utils.AppConfig{Name: "room-booking", Timezone: "UTC", CORSOrigins: []string{"http://localhost:3000"}},
		Auth:    utils.AuthConfig{JWTSecret: "wire-secret"},
		Payment: utils.PaymentConfig{Provider: "stripe", StripeSecretKey: "sk_test_x", StripeWebhookSecret: "whsec_x", CheckoutExpiry: 30 * time.Minute},
	}
}

func newTestApp(t *testing.T, db Pinger) *App {
	t.Helper()
	config := testConfig()
	provider, err := NewProvider(config.Payment, zap.NewNop())
	require.NoError(t, err)
	return Wiring(&repository.Repository{}, db, provider, nil, config, zap.NewNop())
}

func token(t *testing.T, role domain.Role) string {
	t.Helper()
	auth := middleware.NewAuthenticator(testConfig().Auth, zap.NewNop())
	tok, err := auth.IssueToken("u-1", role, time.Hour)
	require.NoError(t, err)
	return "Bearer " + tok
}

func do(app *App, method, path, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	rec := do(newTestApp(t, pinger{}), http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)

	rec = do(newTestApp(t, pinger{err: errors.New("down")}), http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRoutesRequireAuth(t *testing.T) {
	app := newTestApp(t, nil)

	protected := []struct{ method, path string }{
		{http.MethodPost, "/api/bookings"},
		{http.MethodGet, "/api/bookings/my-bookings"},
		{http.MethodDelete, "/api/bookings/2b5c6f1e-8a7d-4e2b-9c3a-1f0e9d8c7b6a"},
		{http.MethodPost, "/api/payments/create-checkout"},
		{http.MethodPost, "/api/payments/refund"},
		{http.MethodGet, "/api/admin/statistics"},
	}
	for _, route := range protected {
		rec := do(app, route.method, route.path, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s", route.method, route.path)
	}

	rec := do(app, http.MethodGet, "/api/admin/statistics", token(t, domain.RoleCustomer))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestWebhookRouteIsPublic(t *testing.T) {
	app := newTestApp(t, nil)

	// unsigned payload reaches the provider and fails verification
	rec := do(app, http.MethodPost, "/api/webhooks/stripe", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "INVALID_SIGNATURE")
}

func TestNotFound(t *testing.T) {
	rec := do(newTestApp(t, nil), http.MethodGet, "/api/unknown", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":false`)
}

func TestNewProvider(t *testing.T) {
	_, err := NewProvider(utils.PaymentConfig{Provider: "paypal"}, zap.NewNop())
	assert.Error(t, err)

	p, err := NewProvider(utils.PaymentConfig{Provider: "stripe", StripeSecretKey: "sk_test_x"}, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "stripe", p.Name())
}
