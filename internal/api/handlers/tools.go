package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/mlisboa17/assistente-pessoal/internal/api/middleware"
	"github.com/mlisboa17/assistente-pessoal/internal/normalize"
	"github.com/mlisboa17/assistente-pessoal/internal/taxid"
)

// ToolsHandler exposes the standalone helpers: category suggestion and tax
// id checks.
type ToolsHandler struct {
	categorizer Categorizer
}

func NewToolsHandler(categorizer Categorizer) *ToolsHandler {
	return &ToolsHandler{categorizer: categorizer}
}

// Categorize handles POST /api/categorize
func (h *ToolsHandler) Categorize(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text      string `json:"text"`
		Recipient string `json:"recipient"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Text) == "" && strings.TrimSpace(req.Recipient) == "" {
		middleware.WriteError(w, http.StatusBadRequest, "text or recipient is required")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, h.categorizer.Suggest(req.Text, req.Recipient))
}

// CheckTaxID handles GET /api/taxid?id=...
func (h *ToolsHandler) CheckTaxID(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("id")
	if raw == "" {
		middleware.WriteError(w, http.StatusBadRequest, "id is required")
		return
	}
	id := normalize.Digits(raw)
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"tax_id": id,
		"kind":   string(taxid.KindOf(id)),
		"valid":  taxid.Valid(id),
		"masked": taxid.Mask(id),
	})
}
