package handlers

import (
	"log/slog"
	"net/http"

	"github.com/plateful/restaurant-ops/internal/repository"
)

// UserHandler serves the console's user-management page. The route is
// ADMIN-gated by middleware.
type UserHandler struct {
	users repository.UserStore
	log   *slog.Logger
}

// NewUserHandler creates a new user handler
func NewUserHandler(users repository.UserStore, log *slog.Logger) *UserHandler {
	return &UserHandler{users: users, log: log}
}

// ListUsers handles GET /api/users
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}
