package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/plateful/restaurant-ops/internal/auth"
	"github.com/plateful/restaurant-ops/internal/middleware"
)

// AuthHandler handles sign-in and account provisioning.
type AuthHandler struct {
	auth *auth.Service
	log  *slog.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(svc *auth.Service, log *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: svc, log: log}
}

type signInRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// SignIn handles POST /api/auth/signin
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	result, err := h.auth.SignIn(r.Context(), req.Username, req.Password)
	if err != nil {
		respondError(w, h.log, err)
		return
	}

	h.log.Info("user signed in", "username", result.Username)
	writeJSON(w, http.StatusOK, result)
}

// SignUp handles POST /api/auth/signup. Only ADMIN sessions may
// provision accounts; the service enforces it against the session.
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req auth.SignUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	session, _ := middleware.SessionFrom(r.Context())
	user, err := h.auth.SignUp(r.Context(), session, req)
	if err != nil {
		respondError(w, h.log, err)
		return
	}

	h.log.Info("user created", "username", user.Username, "roles", user.Roles)
	writeJSON(w, http.StatusCreated, user)
}
