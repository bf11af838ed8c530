package handler

import (
	"log/slog"
	"net/http"

	"legacybook/internal/domain/services"
	"legacybook/internal/httputil"
)

// ConversationHandler handles conversation HTTP requests
type ConversationHandler struct {
	service services.ConversationService
	logger  *slog.Logger
}

// NewConversationHandler creates a new conversation handler
func NewConversationHandler(service services.ConversationService, logger *slog.Logger) *ConversationHandler {
	return &ConversationHandler{
		service: service,
		logger:  logger,
	}
}

// StartConversation creates a new biography project for the caller
// POST /api/conversations
func (h *ConversationHandler) StartConversation(w http.ResponseWriter, r *http.Request) {
	claims := httputil.GetClaims(r)
	if claims == nil {
		httputil.RespondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req services.StartConversationRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.UserID = claims.GetUserID()
	req.Email = claims.Email
	req.Name = claims.Name

	conversation, err := h.service.Start(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, conversation)
}

// GetConversation retrieves a conversation
// GET /api/conversations/{id}
func (h *ConversationHandler) GetConversation(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	id, ok := pathID(w, r, "Conversation ID")
	if !ok {
		return
	}

	conversation, err := h.service.Get(r.Context(), id, userID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, conversation)
}
