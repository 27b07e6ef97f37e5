package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartserveai/widget-gateway/internal/tenancy"
)

func embedAuthHandler(cfg EmbedAuthConfig) (http.Handler, *bool, *string) {
	reached := false
	venue := ""
	h := EmbedAuth(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
		venue, _ = tenancy.VenueIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))
	return h, &reached, &venue
}

func TestEmbedAuthStaticKey(t *testing.T) {
	h, reached, venue := embedAuthHandler(EmbedAuthConfig{VenueID: "venue-1", StaticKey: "ek_live_abc"})

	req := httptest.NewRequest(http.MethodPost, "/api/chat", nil)
	req.Header.Set("X-Venue-Id", "venue-1")
	req.Header.Set("X-Embed-Key", "ek_live_abc")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, *reached)
	assert.Equal(t, "venue-1", *venue)
}

func TestEmbedAuthRejections(t *testing.T) {
	h, reached, _ := embedAuthHandler(EmbedAuthConfig{VenueID: "venue-1", StaticKey: "ek_live_abc"})

	tests := []struct {
		name  string
		venue string
		key   string
	}{
		{"missing headers", "", ""},
		{"missing key", "venue-1", ""},
		{"wrong venue", "venue-2", "ek_live_abc"},
		{"wrong key", "venue-1", "ek_live_nope"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			*reached = false
			req := httptest.NewRequest(http.MethodPost, "/api/chat", nil)
			if tt.venue != "" {
				req.Header.Set("X-Venue-Id", tt.venue)
			}
			if tt.key != "" {
				req.Header.Set("X-Embed-Key", tt.key)
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			assert.Equal(t, http.StatusForbidden, w.Code)
			assert.False(t, *reached, "handler must not run on auth failure")
			assert.NotEmpty(t, w.Body.String(), "403 body should explain the failure")
		})
	}
}

func signEmbedToken(t *testing.T, secret, subject string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestEmbedAuthJWT(t *testing.T) {
	cfg := EmbedAuthConfig{VenueID: "venue-1", JWTSecret: "sekrit"}
	h, reached, _ := embedAuthHandler(cfg)

	req := httptest.NewRequest(http.MethodPost, "/api/chat", nil)
	req.Header.Set("X-Venue-Id", "venue-1")
	req.Header.Set("X-Embed-Key", signEmbedToken(t, "sekrit", "venue-1"))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, *reached)
}

func TestEmbedAuthJWTWrongSubject(t *testing.T) {
	cfg := EmbedAuthConfig{VenueID: "venue-1", JWTSecret: "sekrit"}
	h, reached, _ := embedAuthHandler(cfg)

	req := httptest.NewRequest(http.MethodPost, "/api/chat", nil)
	req.Header.Set("X-Venue-Id", "venue-1")
	req.Header.Set("X-Embed-Key", signEmbedToken(t, "sekrit", "venue-9"))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.False(t, *reached)
}

func TestEmbedAuthJWTBadSignature(t *testing.T) {
	cfg := EmbedAuthConfig{VenueID: "venue-1", JWTSecret: "sekrit"}
	h, reached, _ := embedAuthHandler(cfg)

	req := httptest.NewRequest(http.MethodPost, "/api/chat", nil)
	req.Header.Set("X-Venue-Id", "venue-1")
	req.Header.Set("X-Embed-Key", signEmbedToken(t, "other-secret", "venue-1"))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.False(t, *reached)
}
