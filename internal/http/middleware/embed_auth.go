package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	"github.com/smartserveai/widget-gateway/internal/tenancy"
)

// EmbedAuthConfig controls embed credential validation. StaticKey is the
// pre-issued embed key; JWTSecret, when set, additionally accepts signed
// embed tokens whose subject is the venue id (used for short-lived keys
// issued per page load).
type EmbedAuthConfig struct {
	VenueID   string
	StaticKey string
	JWTSecret string
}

// EmbedAuth validates the X-Venue-Id / X-Embed-Key headers every embed
// request must carry. Failures return 403 with an explanatory body so the
// embedding site's console makes the misconfiguration obvious.
func EmbedAuth(cfg EmbedAuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			venueID := r.Header.Get("X-Venue-Id")
			embedKey := r.Header.Get("X-Embed-Key")

			if venueID == "" || embedKey == "" {
				http.Error(w, "embed validation: missing X-Venue-Id or X-Embed-Key header", http.StatusForbidden)
				return
			}
			if venueID != cfg.VenueID {
				http.Error(w, "embed validation: unknown venue", http.StatusForbidden)
				return
			}
			if !keyValid(cfg, venueID, embedKey) {
				http.Error(w, "embed validation: invalid embed key", http.StatusForbidden)
				return
			}

			ctx := tenancy.WithVenueID(r.Context(), venueID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func keyValid(cfg EmbedAuthConfig, venueID, embedKey string) bool {
	if cfg.StaticKey != "" && subtle.ConstantTimeCompare([]byte(embedKey), []byte(cfg.StaticKey)) == 1 {
		return true
	}
	if cfg.JWTSecret == "" {
		return false
	}

	claims := jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(embedKey, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return false
	}
	return claims.Subject == venueID
}
