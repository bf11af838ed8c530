package handler

import (
	"log/slog"
	"net/http"

	"legacybook/internal/domain/services"
	"legacybook/internal/httputil"
)

// BookHandler handles book lifecycle HTTP requests
type BookHandler struct {
	service services.BookService
	logger  *slog.Logger
}

// NewBookHandler creates a new book handler
func NewBookHandler(service services.BookService, logger *slog.Logger) *BookHandler {
	return &BookHandler{
		service: service,
		logger:  logger,
	}
}

// Generate produces an initial draft chapter (not persisted)
// POST /api/conversations/{id}/book/generate
func (h *BookHandler) Generate(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	id, ok := pathID(w, r, "Conversation ID")
	if !ok {
		return
	}

	result, err := h.service.Generate(r.Context(), id, userID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}

// VerifyConversation generates and verifies a draft on the fly
// POST /api/conversations/{id}/book/verify
func (h *BookHandler) VerifyConversation(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	id, ok := pathID(w, r, "Conversation ID")
	if !ok {
		return
	}

	report, err := h.service.VerifyConversation(r.Context(), id, userID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, report)
}

// Regenerate produces a new draft version under the recorded decisions
// POST /api/conversations/{id}/book/regenerate
func (h *BookHandler) Regenerate(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	id, ok := pathID(w, r, "Conversation ID")
	if !ok {
		return
	}

	version, err := h.service.Regenerate(r.Context(), id, userID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, version)
}

// SaveDecisions records issue resolutions for later regeneration
// PUT /api/conversations/{id}/decisions
func (h *BookHandler) SaveDecisions(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	id, ok := pathID(w, r, "Conversation ID")
	if !ok {
		return
	}

	var req services.SaveDecisionsRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.service.SaveDecisions(r.Context(), id, userID, &req); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// VerifyVersion verifies a stored version's content
// POST /api/book/versions/{id}/verify
func (h *BookHandler) VerifyVersion(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	id, ok := pathID(w, r, "Version ID")
	if !ok {
		return
	}

	report, err := h.service.VerifyVersion(r.Context(), id, userID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, report)
}

// Finalize promotes a version to FINAL
// POST /api/book/versions/{id}/finalize
func (h *BookHandler) Finalize(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	id, ok := pathID(w, r, "Version ID")
	if !ok {
		return
	}

	version, err := h.service.Finalize(r.Context(), id, userID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, version)
}
