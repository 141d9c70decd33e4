package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/kiranshivaraju/queueview/internal/api/response"
	"github.com/kiranshivaraju/queueview/internal/auth"
)

// Authenticator checks credentials and issues a session token.
type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) (*auth.Session, error)
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Username string   `json:"username"`
	Role     string   `json:"role"`
	Jobs     []string `json:"jobs"`
	JWT      string   `json:"jwt"`
}

// NewLoginHandler returns an http.HandlerFunc for POST /users.
func NewLoginHandler(a Authenticator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, response.CodeInvalidRequest, "Invalid JSON body", nil)
			return
		}
		if err := validate.Struct(req); err != nil {
			response.Error(w, http.StatusBadRequest, response.CodeInvalidRequest, validationMessage(err), nil)
			return
		}

		sess, err := a.Authenticate(r.Context(), req.Username, req.Password)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidCredentials) {
				response.Error(w, http.StatusUnauthorized,
					response.CodeInvalidCredentials, "Invalid username or password", nil)
				return
			}
			slog.Error("login failed", "error", err)
			response.Internal(w)
			return
		}

		jobs := sess.Jobs
		if jobs == nil {
			jobs = []string{}
		}
		response.JSON(w, loginResponse{
			Username: sess.Username,
			Role:     sess.Role,
			Jobs:     jobs,
			JWT:      sess.Token,
		})
	}
}
