package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	mw "github.com/kiranshivaraju/queueview/internal/api/middleware"
	"github.com/kiranshivaraju/queueview/internal/api/response"
	"github.com/kiranshivaraju/queueview/internal/jobs"
	"github.com/kiranshivaraju/queueview/pkg/models"
	"github.com/kiranshivaraju/queueview/pkg/pagination"
)

// JobQuerier returns enriched jobs matching a filter.
type JobQuerier interface {
	Query(ctx context.Context, f jobs.Filter) ([]models.EnrichedJob, error)
}

type pageParams struct {
	Skip  int  `validate:"gte=0"`
	Limit *int `validate:"omitempty,min=1,max=500"`
}

// NewMyJobsHandler returns an http.HandlerFunc for GET /jobs/mine.
// Results are restricted to jobs submitted by the token's user.
func NewMyJobsHandler(q JobQuerier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := mw.GetPrincipal(r)
		if !ok || p.Username == "" {
			response.Error(w, http.StatusBadRequest, response.CodeInvalidRequest, "Invalid token payload", nil)
			return
		}
		serveJobs(w, r, q, jobs.ForUser(p.Username))
	}
}

// NewAllJobsHandler returns an http.HandlerFunc for GET /jobs.
func NewAllJobsHandler(q JobQuerier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		serveJobs(w, r, q, jobs.Filter{})
	}
}

func serveJobs(w http.ResponseWriter, r *http.Request, q JobQuerier, f jobs.Filter) {
	params, msg := parsePageParams(r)
	if msg != "" {
		response.Error(w, http.StatusBadRequest, response.CodeInvalidRequest, msg, nil)
		return
	}

	all, err := q.Query(r.Context(), f)
	if err != nil {
		slog.Error("query jobs failed", "error", err, "path", r.URL.Path)
		response.Internal(w)
		return
	}

	response.JSON(w, pagination.Paginate(all, params.Skip, params.Limit))
}

// parsePageParams reads skip and limit from the query string. It returns a
// non-empty message when they are malformed or out of range.
func parsePageParams(r *http.Request) (pageParams, string) {
	var p pageParams
	q := r.URL.Query()

	if v := strings.TrimSpace(q.Get("skip")); v != "" {
		skip, err := strconv.Atoi(v)
		if err != nil {
			return p, "skip must be an integer"
		}
		p.Skip = skip
	}

	if v := strings.TrimSpace(q.Get("limit")); v != "" && v != "null" {
		limit, err := strconv.Atoi(v)
		if err != nil {
			return p, "limit must be an integer"
		}
		p.Limit = &limit
	}

	if err := validate.Struct(p); err != nil {
		return p, validationMessage(err)
	}
	return p, ""
}
