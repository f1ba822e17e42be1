package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/okian/shopfloor/internal/domain/model"
	"github.com/okian/shopfloor/internal/domain/types"
)

// AuthDependencies defines the interface for sign-in operations.
type AuthDependencies interface {
	Login(ctx context.Context, email, password string) (types.LoginResult, error)
	Logout(ctx context.Context) error
}

// AuthHandler handles login, logout and identity requests.
type AuthHandler struct {
	deps AuthDependencies
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(deps AuthDependencies) *AuthHandler {
	return &AuthHandler{deps: deps}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleLogin handles POST /login requests.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	const op = "api.login"
	if !allow(w, r, http.MethodPost) {
		return
	}
	var req loginRequest
	if err := decode(r, &req); err != nil {
		fail(w, op, err)
		return
	}
	if strings.TrimSpace(req.Email) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	res, err := h.deps.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		fail(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// HandleLogout handles POST /logout requests.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request, _ model.Employee) {
	const op = "api.logout"
	if !allow(w, r, http.MethodPost) {
		return
	}
	if err := h.deps.Logout(r.Context()); err != nil {
		fail(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Status: "signed_out"})
}

// HandleMe handles GET /me requests.
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request, emp model.Employee) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, emp)
}
