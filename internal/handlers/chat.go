package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/BerylCAtieno/document-metadata-api/internal/models"
	"github.com/BerylCAtieno/document-metadata-api/internal/services"
	"github.com/BerylCAtieno/document-metadata-api/internal/utils"
)

type ChatHandler struct {
	service services.ChatService
	logger  *utils.Logger
}

func NewChatHandler(service services.ChatService, logger *utils.Logger) *ChatHandler {
	return &ChatHandler{
		service: service,
		logger:  logger,
	}
}

func (h *ChatHandler) Query(w http.ResponseWriter, r *http.Request) {
	var req models.QueryRequest
	// Oversized queries still decode so the service can report them by name.
	if err := json.NewDecoder(io.LimitReader(r.Body, 4*services.MaxQueryBytes)).Decode(&req); err != nil {
		respondError(w, h.logger, utils.NewBadRequestError("Invalid request body"))
		return
	}

	resp, err := h.service.Query(r.Context(), req.Query)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, resp)
}

func (h *ChatHandler) History(w http.ResponseWriter, r *http.Request) {
	msgs, err := h.service.History(r.Context())
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, map[string]interface{}{
		"messages": msgs,
	})
}

func (h *ChatHandler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	if err := h.service.ClearHistory(r.Context()); err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, map[string]string{
		"message": "Chat history cleared",
	})
}
