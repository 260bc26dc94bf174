package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"wompicol-be/internal/wompicol"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireAuth(t *testing.T) {
	secret := "test-secret"

	t.Run("MissingHeader", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/admin/wompicol/reconcile", nil)
		rec := httptest.NewRecorder()

		RequireAuth(secret, okHandler()).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("InvalidToken", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/admin/wompicol/reconcile", nil)
		req.Header.Set("Authorization", "Bearer not-a-token")
		rec := httptest.NewRecorder()

		RequireAuth(secret, okHandler()).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("WrongSecret", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"sub": "operator",
			"exp": time.Now().Add(time.Hour).Unix(),
		}).SignedString([]byte("other-secret"))
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodPost, "/admin/wompicol/reconcile", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()

		RequireAuth(secret, okHandler()).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("ValidToken", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"sub": "operator",
			"exp": time.Now().Add(time.Hour).Unix(),
		}).SignedString([]byte(secret))
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodPost, "/admin/wompicol/reconcile", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()

		RequireAuth(secret, okHandler()).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestResolveRateTier(t *testing.T) {
	t.Run("WebhookPathsAreStrict", func(t *testing.T) {
		for _, path := range []string{wompicol.WebhookPath, wompicol.TestWebhookPath} {
			req := httptest.NewRequest(http.MethodPost, path, nil)
			limit, burst, tier := resolveRateTier(req)
			assert.Equal(t, "strict", tier, path)
			assert.Equal(t, limitStrict, limit)
			assert.Equal(t, burstStrict, burst)
		}
	})

	t.Run("OtherPathsAreGeneral", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/anything", nil)
		_, _, tier := resolveRateTier(req)
		assert.Equal(t, "general", tier)
	})
}

func TestRateLimitMiddleware(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, wompicol.WebhookPath, nil)
	req.RemoteAddr = "203.0.113.9:4312"

	allowed, limited := 0, 0
	for i := 0; i < burstStrict+3; i++ {
		rec := httptest.NewRecorder()
		RateLimitMiddleware(okHandler()).ServeHTTP(rec, req)
		switch rec.Code {
		case http.StatusOK:
			allowed++
		case http.StatusTooManyRequests:
			limited++
		}
	}

	assert.Equal(t, burstStrict, allowed)
	assert.Equal(t, 3, limited)
}
