package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"retail-backend/internal/auth"
	"retail-backend/internal/config"
	"retail-backend/internal/fx"
	"retail-backend/internal/models"
)

func newTestRatesHandler(secret string) (*RatesHandler, *auth.JWTManager) {
	cfg := &config.Config{}
	cfg.JWT.Secret = secret
	cfg.JWT.ExpirationHours = 1
	cfg.JWT.Issuer = "retail-backend"
	jwtManager := auth.NewJWTManager(cfg)
	return NewRatesHandler(fx.NewProvider(), jwtManager), jwtManager
}

func TestSubscribeRejectsMissingToken(t *testing.T) {
	h, _ := newTestRatesHandler("test-secret")

	rec := httptest.NewRecorder()
	h.Subscribe(rec, httptest.NewRequest("GET", "/ws/rates", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestSubscribeRejectsInvalidToken(t *testing.T) {
	h, _ := newTestRatesHandler("test-secret")

	rec := httptest.NewRecorder()
	h.Subscribe(rec, httptest.NewRequest("GET", "/ws/rates?token=not-a-jwt", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestSubscribeAcceptsValidTokenBeforeUpgrade(t *testing.T) {
	h, jwtManager := newTestRatesHandler("test-secret")

	token, err := jwtManager.GenerateToken(&models.User{ID: 1, Email: "a@b.c", Role: "employee", IsActive: true})
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	// A plain GET is not a websocket handshake, so a valid token gets past
	// auth and fails at the upgrade instead.
	rec := httptest.NewRecorder()
	h.Subscribe(rec, httptest.NewRequest("GET", "/ws/rates?token="+token, nil))

	if rec.Code == http.StatusUnauthorized {
		t.Fatalf("valid token rejected with 401")
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 from the upgrader", rec.Code)
	}
}
