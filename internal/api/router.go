package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	mw "github.com/kiranshivaraju/queueview/internal/api/middleware"
	"github.com/kiranshivaraju/queueview/internal/api/response"
)

// Dependencies holds all handler and middleware dependencies for the router.
type Dependencies struct {
	Auth      *mw.Auth
	RateLimit *mw.RateLimit

	// AllJobsRole is the role required for GET /jobs. Empty allows any
	// authenticated user.
	AllJobsRole string

	HealthHandler  http.HandlerFunc
	LoginHandler   http.HandlerFunc
	MyJobsHandler  http.HandlerFunc
	AllJobsHandler http.HandlerFunc
}

// NewRouter builds the Chi router with middleware stack and all routes.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(mw.Logger)
	r.Use(mw.Recovery)

	// Public routes
	r.Get("/health", orNotImplemented(deps.HealthHandler))
	r.With(deps.RateLimit.LimitByAddr).Post("/users", orNotImplemented(deps.LoginHandler))

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(deps.Auth.Authenticate)
		r.Use(deps.RateLimit.Limit)

		r.Get("/jobs/mine", orNotImplemented(deps.MyJobsHandler))

		r.Group(func(r chi.Router) {
			r.Use(deps.Auth.RequireRole(deps.AllJobsRole))

			r.Get("/jobs", orNotImplemented(deps.AllJobsHandler))
		})
	})

	return r
}

// orNotImplemented returns the handler if non-nil, or a 501 placeholder.
func orNotImplemented(h http.HandlerFunc) http.HandlerFunc {
	if h != nil {
		return h
	}
	return func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusNotImplemented, "NOT_IMPLEMENTED", "Endpoint not yet implemented", nil)
	}
}
