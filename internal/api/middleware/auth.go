package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/kiranshivaraju/queueview/internal/api/response"
	"github.com/kiranshivaraju/queueview/internal/auth"
)

// Authorizer verifies a bearer token.
type Authorizer interface {
	Authorize(token string) (*auth.Claims, error)
}

// Auth provides token authentication and role-checking middleware.
type Auth struct {
	authz Authorizer
}

// NewAuth creates a new Auth middleware.
func NewAuth(a Authorizer) *Auth {
	return &Auth{authz: a}
}

// Authenticate verifies the Bearer token and sets the Principal in the
// request context. A missing or malformed header is rejected before the
// token is looked at.
func (a *Auth) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractBearerToken(r)
		if token == "" {
			response.Error(w, http.StatusForbidden,
				response.CodeInvalidToken, "Missing or invalid Authorization header", nil)
			return
		}

		claims, err := a.authz.Authorize(token)
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrTokenExpired):
				response.Error(w, http.StatusUnauthorized,
					response.CodeTokenExpired, "Token expired", nil)
			case errors.Is(err, auth.ErrIncompleteClaims):
				response.Error(w, http.StatusBadRequest,
					response.CodeInvalidRequest, "Invalid token payload", nil)
			default:
				slog.Debug("token rejected", "error", err, "path", r.URL.Path)
				response.Error(w, http.StatusForbidden,
					response.CodeInvalidToken, "Invalid token", nil)
			}
			return
		}

		ctx := SetPrincipal(r.Context(), Principal{Username: claims.Username, Role: claims.Role})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole returns middleware that checks whether the authenticated
// principal has the given role. An empty role lets every principal through.
func (a *Auth) RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if role == "" {
				next.ServeHTTP(w, r)
				return
			}
			p, ok := GetPrincipal(r)
			if ok && p.Role == role {
				next.ServeHTTP(w, r)
				return
			}
			response.Error(w, http.StatusForbidden,
				response.CodeForbidden, "Insufficient permissions", nil)
		})
	}
}

func extractBearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
