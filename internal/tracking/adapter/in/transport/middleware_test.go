package transport

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deliverytrack/internal/shared/auth"
	"deliverytrack/internal/shared/config"
	"deliverytrack/internal/shared/logger"
)

func TestJWTMiddleware(t *testing.T) {
	jwtService := auth.NewJWTService(config.JWTConfig{Secret: "test-secret", ExpiryMinutes: 5})
	middleware := JWTMiddleware(jwtService, logger.NewLogger("test"))

	protected := middleware(func(w http.ResponseWriter, r *http.Request) {
		userID, role := userFromContext(r.Context())
		w.Header().Set("X-User", userID)
		w.Header().Set("X-Role", role)
		w.WriteHeader(http.StatusOK)
	})

	t.Run("valid token passes user into context", func(t *testing.T) {
		token, err := jwtService.GenerateToken("courier-7", "COURIER")
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/deliveries/d-1/state", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()

		protected(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "courier-7", rec.Header().Get("X-User"))
		assert.Equal(t, "COURIER", rec.Header().Get("X-Role"))
	})

	t.Run("missing header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/deliveries/d-1/state", nil)
		rec := httptest.NewRecorder()

		protected(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("malformed header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/deliveries/d-1/state", nil)
		req.Header.Set("Authorization", "Token abc")
		rec := httptest.NewRecorder()

		protected(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("token signed with another secret", func(t *testing.T) {
		other := auth.NewJWTService(config.JWTConfig{Secret: "other-secret", ExpiryMinutes: 5})
		token, err := other.GenerateToken("courier-7", "COURIER")
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/deliveries/d-1/state", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()

		protected(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
