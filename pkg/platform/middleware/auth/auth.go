// Package auth provides hospital authentication middleware.
//
// Hospitals call the engine with a bearer JWT issued out-of-band. The
// middleware validates the token and places the hospital identity in the
// request context; handlers never touch tokens directly.
package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	id "renalmatch/pkg/domain"
	dErrors "renalmatch/pkg/domain-errors"
	"renalmatch/pkg/platform/httputil"
)

// Claims represents the claims the engine expects from a hospital token.
type Claims struct {
	HospitalID id.HospitalID
}

// TokenValidator validates a bearer token and extracts hospital claims.
type TokenValidator interface {
	ValidateToken(tokenString string) (*Claims, error)
}

type contextKeyHospitalID struct{}

// ContextKeyHospitalID is exported for tests that need context.WithValue.
var ContextKeyHospitalID = contextKeyHospitalID{}

// GetHospitalID retrieves the authenticated hospital ID from the context.
func GetHospitalID(ctx context.Context) id.HospitalID {
	hid, ok := ctx.Value(ContextKeyHospitalID).(id.HospitalID)
	if !ok {
		return id.HospitalID{}
	}
	return hid
}

// WithHospitalID injects a hospital identity, for tests and internal callers.
func WithHospitalID(ctx context.Context, hid id.HospitalID) context.Context {
	return context.WithValue(ctx, ContextKeyHospitalID, hid)
}

// RequireHospital enforces a valid hospital bearer token on every request.
func RequireHospital(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "missing bearer token"))
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				if logger != nil {
					logger.WarnContext(r.Context(), "hospital token rejected", "error", err)
				}
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "invalid bearer token"))
				return
			}

			ctx := WithHospitalID(r.Context(), claims.HospitalID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, prefix))
	return token, token != ""
}
