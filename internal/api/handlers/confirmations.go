package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/mlisboa17/assistente-pessoal/internal/api/middleware"
	"github.com/mlisboa17/assistente-pessoal/internal/confirmation"
	"github.com/mlisboa17/assistente-pessoal/internal/domain"
	"github.com/mlisboa17/assistente-pessoal/internal/logger"
)

// ConfirmationsHandler lists parked documents and applies user corrections.
type ConfirmationsHandler struct {
	processor Processor
	pending   PendingReader
}

func NewConfirmationsHandler(processor Processor, pending PendingReader) *ConfirmationsHandler {
	return &ConfirmationsHandler{processor: processor, pending: pending}
}

// ListPending handles GET /api/confirmations
func (h *ConfirmationsHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	items, err := h.pending.List(r.Context())
	if err != nil {
		logger.FromContext(r.Context()).Error().Err(err).Msg("Failed to list pending documents")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list pending documents")
		return
	}
	if items == nil {
		items = []confirmation.Pending{}
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"pending": items,
		"count":   len(items),
	})
}

// GetPending handles GET /api/confirmations/{id}
func (h *ConfirmationsHandler) GetPending(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	p, err := h.pending.Get(r.Context(), id)
	if errors.Is(err, confirmation.ErrNotFound) {
		middleware.WriteError(w, http.StatusNotFound, "Pending document not found")
		return
	}
	if err != nil {
		logger.FromContext(r.Context()).Error().Err(err).Str("document_id", id).Msg("Failed to get pending document")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to get pending document")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, p)
}

// Confirm handles POST /api/confirmations/{id}. The body is a patch with the
// fields the user corrected; an empty object confirms the record as is.
func (h *ConfirmationsHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var patch domain.Patch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil && !errors.Is(err, io.EOF) {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	res, err := h.processor.Confirm(r.Context(), id, patch)
	if errors.Is(err, confirmation.ErrNotFound) {
		middleware.WriteError(w, http.StatusNotFound, "Pending document not found")
		return
	}
	if err != nil {
		logger.FromContext(r.Context()).Error().Err(err).Str("document_id", id).Msg("Failed to confirm document")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to confirm document")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, res)
}
