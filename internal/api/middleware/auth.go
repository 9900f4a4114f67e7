package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/reelspot/backend/internal/domain/entities"
	apperrors "github.com/reelspot/backend/pkg/errors"
)

type principalKey struct{}

// TokenAuthenticator verifies bearer tokens
type TokenAuthenticator interface {
	Authenticate(token string) (*entities.Principal, error)
}

// WithPrincipal stores the authenticated caller on ctx
func WithPrincipal(ctx context.Context, principal *entities.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, principal)
}

// PrincipalFromContext returns the caller stored by RequireAuth
func PrincipalFromContext(ctx context.Context) (*entities.Principal, bool) {
	principal, ok := ctx.Value(principalKey{}).(*entities.Principal)
	return principal, ok && principal != nil
}

// RequireAuth rejects requests without a valid "Bearer" token
func RequireAuth(auth TokenAuthenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, err := auth.Authenticate(bearerToken(r))
			if err != nil {
				writeError(w, apperrors.HTTPStatus(err), errorMessage(err))
				return
			}
			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
		})
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

func errorMessage(err error) string {
	if appErr, ok := apperrors.As(err); ok {
		return appErr.Message
	}
	return err.Error()
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
