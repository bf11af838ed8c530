package handler

import (
	"errors"
	"net/http"

	"legacybook/internal/domain"
	"legacybook/internal/httputil"

	"github.com/google/uuid"
)

// pathID extracts and validates the {id} path parameter. All resource IDs
// except user IDs are UUIDs, so a malformed one is rejected before it
// reaches the database.
func pathID(w http.ResponseWriter, r *http.Request, label string) (string, bool) {
	id := r.PathValue("id")
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, label+" is required")
		return "", false
	}
	if _, err := uuid.Parse(id); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid "+label+" format")
		return "", false
	}
	return id, true
}

// handleError converts domain errors to HTTP responses
func handleError(w http.ResponseWriter, err error) {
	var usageErr *domain.UsageLimitError

	switch {
	case errors.Is(err, domain.ErrValidation):
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		httputil.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		httputil.RespondError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		httputil.RespondError(w, http.StatusForbidden, err.Error())
	case errors.As(err, &usageErr):
		httputil.RespondErrorWithExtras(w, http.StatusTooManyRequests, usageErr.Error(),
			map[string]interface{}{"limitType": usageErr.Action})
	case errors.Is(err, domain.ErrConflict):
		httputil.RespondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrStateCorrupted):
		// Distinct from completion and from a generic 500: the conversation
		// itself is broken and retrying will not help.
		httputil.RespondError(w, http.StatusInternalServerError, err.Error())
	default:
		httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}
