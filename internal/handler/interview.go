package handler

import (
	"log/slog"
	"net/http"

	"legacybook/internal/domain/services"
	"legacybook/internal/httputil"
)

// InterviewHandler handles interview progression HTTP requests
type InterviewHandler struct {
	service services.InterviewService
	logger  *slog.Logger
}

// NewInterviewHandler creates a new interview handler
func NewInterviewHandler(service services.InterviewService, logger *slog.Logger) *InterviewHandler {
	return &InterviewHandler{
		service: service,
		logger:  logger,
	}
}

// NextQuestion returns the next interview question, or the completion marker
// GET /api/conversations/{id}/question
func (h *InterviewHandler) NextQuestion(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	id, ok := pathID(w, r, "Conversation ID")
	if !ok {
		return
	}

	result, err := h.service.NextQuestion(r.Context(), id, userID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}

// SubmitAnswer records one answer and advances the interview
// POST /api/conversations/{id}/answers
func (h *InterviewHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	id, ok := pathID(w, r, "Conversation ID")
	if !ok {
		return
	}

	var req services.SubmitAnswerRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.service.SubmitAnswer(r.Context(), id, userID, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	status := http.StatusCreated
	if result.Completed {
		status = http.StatusOK
	}
	httputil.RespondJSON(w, status, result)
}
