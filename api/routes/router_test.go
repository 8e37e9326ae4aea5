package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	pkgauth "github.com/kmensah/boutique-backend/pkg/auth"
	"github.com/kmensah/boutique-backend/pkg/config"
	"github.com/kmensah/boutique-backend/pkg/logger"
)

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error { return s.err }

func testRouter(t *testing.T, cfg *config.Config) http.Handler {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "test", Level: zerolog.Disabled})
	return NewRouter(cfg, logg, stubPinger{}, stubPinger{}, Services{})
}

func testConfig(env string) *config.Config {
	return &config.Config{
		App:  config.AppConfig{Env: env, Port: "8080"},
		Cron: config.CronConfig{Secret: "cron-secret"},
		JWT:  config.JWTConfig{Secret: "jwt-secret", Issuer: "boutique"},
	}
}

func TestRouterHealthEndpoints(t *testing.T) {
	router := testRouter(t, testConfig("dev"))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("live: expected 200, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("ready: expected 200, got %d", rec.Code)
	}
}

func TestRouterCronRequiresSecretInProd(t *testing.T) {
	router := testRouter(t, testConfig("production"))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/cron/cleanup", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without secret, got %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cron/cleanup", nil)
	req.Header.Set("X-Cron-Secret", "wrong")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with wrong secret, got %d", rec.Code)
	}
}

func TestRouterAdminRequiresToken(t *testing.T) {
	router := testRouter(t, testConfig("production"))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/admin/v1/orders/4e8fdbfe-1df5-4f6c-9d7a-111111111111/cancel", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}
}

func TestRouterAdminAcceptsValidToken(t *testing.T) {
	cfg := testConfig("production")
	cfg.JWT.ExpirationMinutes = 60
	router := testRouter(t, cfg)

	token, err := pkgauth.MintAdminToken(cfg.JWT, time.Now(), uuid.New(), "admin")
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/admin/v1/orders/4e8fdbfe-1df5-4f6c-9d7a-111111111111/cancel", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	// Auth passed; with no lifecycle service wired the handler reports 500,
	// not 401.
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 past auth, got %d", rec.Code)
	}
}
