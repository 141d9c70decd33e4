package middleware_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	mw "github.com/kiranshivaraju/queueview/internal/api/middleware"
	"github.com/kiranshivaraju/queueview/internal/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Mock Authorizer ---

type mockAuthorizer struct {
	claims *auth.Claims
	err    error
	seen   string
}

func (m *mockAuthorizer) Authorize(token string) (*auth.Claims, error) {
	m.seen = token
	return m.claims, m.err
}

// --- Mock Cache ---

type mockCache struct {
	counter int64
	err     error
	keys    []string
}

func (m *mockCache) Ping(_ context.Context) error { return nil }
func (m *mockCache) IncrWithExpiry(_ context.Context, key string, _ time.Duration) (int64, error) {
	m.keys = append(m.keys, key)
	m.counter++
	return m.counter, m.err
}

// --- helpers ---

func okHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}
}

func errBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body["error"].(map[string]any)
}

func withPrincipal(r *http.Request, user, role string) *http.Request {
	return r.WithContext(mw.SetPrincipal(r.Context(), mw.Principal{Username: user, Role: role}))
}

// ========================================
// Auth Middleware Tests
// ========================================

func TestAuth_MissingAuthHeader(t *testing.T) {
	authz := &mockAuthorizer{}
	handler := mw.NewAuth(authz).Authenticate(okHandler())

	req := httptest.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "INVALID_TOKEN", errBody(t, w)["code"])
	assert.Empty(t, authz.seen, "token must not be verified when the header is missing")
}

func TestAuth_InvalidBearerFormat(t *testing.T) {
	for _, header := range []string{"Basic abc123", "Bearer", "Bearer    ", "abc123"} {
		handler := mw.NewAuth(&mockAuthorizer{}).Authenticate(okHandler())

		req := httptest.NewRequest("GET", "/test", nil)
		req.Header.Set("Authorization", header)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code, header)
	}
}

func TestAuth_ValidToken(t *testing.T) {
	authz := &mockAuthorizer{claims: &auth.Claims{Username: "alice", Role: "admin"}}

	var got mw.Principal
	var gotOK bool
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, gotOK = mw.GetPrincipal(r)
		w.WriteHeader(http.StatusOK)
	})
	handler := mw.NewAuth(authz).Authenticate(inner)

	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "bearer tok-123")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "tok-123", authz.seen)
	assert.True(t, gotOK)
	assert.Equal(t, mw.Principal{Username: "alice", Role: "admin"}, got)
}

func TestAuth_ErrorMapping(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{auth.ErrTokenExpired, http.StatusUnauthorized, "TOKEN_EXPIRED"},
		{auth.ErrTokenInvalid, http.StatusForbidden, "INVALID_TOKEN"},
		{errors.Join(auth.ErrTokenInvalid, errors.New("signature is invalid")), http.StatusForbidden, "INVALID_TOKEN"},
		{auth.ErrIncompleteClaims, http.StatusBadRequest, "INVALID_REQUEST"},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			handler := mw.NewAuth(&mockAuthorizer{err: tt.err}).Authenticate(okHandler())

			req := httptest.NewRequest("GET", "/test", nil)
			req.Header.Set("Authorization", "Bearer whatever")
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.code, errBody(t, w)["code"])
		})
	}
}

func TestAuth_RequireRole_Allowed(t *testing.T) {
	handler := mw.NewAuth(&mockAuthorizer{}).RequireRole("admin")(okHandler())

	req := withPrincipal(httptest.NewRequest("GET", "/test", nil), "alice", "admin")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuth_RequireRole_Denied(t *testing.T) {
	handler := mw.NewAuth(&mockAuthorizer{}).RequireRole("admin")(okHandler())

	req := withPrincipal(httptest.NewRequest("GET", "/test", nil), "bob", "viewer")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "FORBIDDEN", errBody(t, w)["code"])
}

func TestAuth_RequireRole_EmptyRoleAllowsAll(t *testing.T) {
	handler := mw.NewAuth(&mockAuthorizer{}).RequireRole("")(okHandler())

	req := withPrincipal(httptest.NewRequest("GET", "/test", nil), "bob", "viewer")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

// ========================================
// Rate Limit Middleware Tests
// ========================================

func TestRateLimit_AllowsUnderLimit(t *testing.T) {
	mc := &mockCache{}
	handler := mw.NewRateLimit(mc, 60).Limit(okHandler())

	req := withPrincipal(httptest.NewRequest("GET", "/test", nil), "alice", "admin")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "60", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "59", w.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, w.Header().Get("X-RateLimit-Reset"))
	assert.Equal(t, []string{"ratelimit:user:alice"}, mc.keys)
}

func TestRateLimit_RejectsOverLimit(t *testing.T) {
	mc := &mockCache{counter: 60} // next IncrWithExpiry will return 61
	handler := mw.NewRateLimit(mc, 60).Limit(okHandler())

	req := withPrincipal(httptest.NewRequest("GET", "/test", nil), "alice", "admin")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))
	assert.Equal(t, "RATE_LIMIT_EXCEEDED", errBody(t, w)["code"])
}

func TestRateLimit_NoPrincipal_PassThrough(t *testing.T) {
	mc := &mockCache{}
	handler := mw.NewRateLimit(mc, 60).Limit(okHandler())

	req := httptest.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, mc.keys)
}

func TestRateLimit_CacheError_FailsOpen(t *testing.T) {
	mc := &mockCache{counter: 1000, err: errors.New("redis down")}
	handler := mw.NewRateLimit(mc, 60).Limit(okHandler())

	req := withPrincipal(httptest.NewRequest("GET", "/test", nil), "alice", "admin")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimit_ByAddr(t *testing.T) {
	mc := &mockCache{}
	handler := mw.NewRateLimit(mc, 10).LimitByAddr(okHandler())

	req := httptest.NewRequest("POST", "/users", nil)
	req.RemoteAddr = "192.0.2.7:54321"
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"ratelimit:login:192.0.2.7"}, mc.keys)
}

// ========================================
// Recovery Middleware Tests
// ========================================

func TestRecovery_CatchesPanic(t *testing.T) {
	panicking := http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		panic("something went wrong")
	})
	handler := mw.Recovery(panicking)

	req := httptest.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "INTERNAL_ERROR", errBody(t, w)["code"])
}

func TestRecovery_NoPanic(t *testing.T) {
	handler := mw.Recovery(okHandler())

	req := httptest.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

// ========================================
// Logging Middleware Tests
// ========================================

func TestLogger_SetsStatus(t *testing.T) {
	handler := mw.Logger(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusTeapot, w.Code)
}
