package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/plateful/restaurant-ops/internal/models"
	"github.com/plateful/restaurant-ops/internal/workflow"
)

// writeJSON writes a JSON response
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log error but can't do much else at this point
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// writeError writes an error response
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{
		"error": message,
	})
}

// respondError maps core error kinds to HTTP statuses. Unrecognized
// errors become a 500 with a generic message so internals do not leak.
func respondError(w http.ResponseWriter, log *slog.Logger, err error) {
	var cascade *workflow.CascadeError
	switch {
	case errors.As(err, &cascade):
		// The primary write succeeded; tell the caller exactly which
		// follow-up step to retry.
		log.Error("cascading update failed", "error", err)
		writeError(w, http.StatusBadGateway, cascade.Error())
	case errors.Is(err, models.ErrInvalidInput),
		errors.Is(err, models.ErrUnknownMenuItem),
		errors.Is(err, models.ErrEmptyCart):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, models.ErrIllegalTransition),
		errors.Is(err, models.ErrConcurrentModification):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, models.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, models.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, models.ErrForbidden):
		writeError(w, http.StatusForbidden, err.Error())
	default:
		log.Error("request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}
