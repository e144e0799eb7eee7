package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"tracker/internal/middleware"
)

const testJWTSecret = "handler-test-secret"

func setupAuthRouter(handler *AuthHandler) *gin.Engine {
	r := gin.New()
	r.POST("/auth/login", handler.Login)
	r.GET("/auth/status", handler.Status)
	return r
}

func hashPasscode(t *testing.T, passcode string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(passcode), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash passcode: %v", err)
	}
	return string(hash)
}

func TestAuthHandler_Login(t *testing.T) {
	hash := hashPasscode(t, "2468")

	t.Run("not configured", func(t *testing.T) {
		r := setupAuthRouter(NewAuthHandler("", testJWTSecret, time.Hour))
		rec := doRequest(r, "POST", "/auth/login", `{"passcode":"2468"}`)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "AUTH_NOT_CONFIGURED")
	})

	t.Run("wrong passcode", func(t *testing.T) {
		r := setupAuthRouter(NewAuthHandler(hash, testJWTSecret, time.Hour))
		rec := doRequest(r, "POST", "/auth/login", `{"passcode":"1357"}`)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_PASSCODE")
	})

	t.Run("missing passcode", func(t *testing.T) {
		r := setupAuthRouter(NewAuthHandler(hash, testJWTSecret, time.Hour))
		rec := doRequest(r, "POST", "/auth/login", `{}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})

	t.Run("issues a valid token", func(t *testing.T) {
		r := setupAuthRouter(NewAuthHandler(hash, testJWTSecret, time.Hour))
		rec := doRequest(r, "POST", "/auth/login", `{"passcode":"2468"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}

		body := parseJSON(t, rec)
		token, _ := body["token"].(string)
		if token == "" {
			t.Fatal("expected a token")
		}
		if _, err := time.Parse(time.RFC3339, body["expiresAt"].(string)); err != nil {
			t.Errorf("expected RFC 3339 expiry, got %v", body["expiresAt"])
		}
		if _, err := middleware.ValidateToken(testJWTSecret, token); err != nil {
			t.Errorf("issued token does not validate: %v", err)
		}
	})
}

func TestAuthHandler_Status(t *testing.T) {
	tests := []struct {
		name string
		hash string
		want bool
	}{
		{"open", "", false},
		{"protected", hashPasscode(t, "2468"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := setupAuthRouter(NewAuthHandler(tt.hash, testJWTSecret, time.Hour))
			rec := doRequest(r, "GET", "/auth/status", "")
			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", rec.Code)
			}
			if got := parseJSON(t, rec)["authEnabled"]; got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}
