// Package api assembles the HTTP routes of the extraction service.
package api

import (
	"net/http"

	"github.com/mlisboa17/assistente-pessoal/internal/api/handlers"
	"github.com/mlisboa17/assistente-pessoal/internal/api/middleware"
)

// Routes holds the handlers served by the API. Nil handlers leave their
// routes unregistered.
type Routes struct {
	Documents     *handlers.DocumentsHandler
	Confirmations *handlers.ConfirmationsHandler
	Jobs          *handlers.JobsHandler
	Tools         *handlers.ToolsHandler
	Metrics       http.Handler
}

// NewMux registers every route on a fresh mux.
func NewMux(rt Routes) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if rt.Metrics != nil {
		mux.Handle("GET /metrics", rt.Metrics)
	}

	if d := rt.Documents; d != nil {
		mux.HandleFunc("POST /api/documents/extract", d.Extract)
		mux.HandleFunc("POST /api/documents/parse", d.EnqueueParsing)
		mux.HandleFunc("POST /api/documents/upload", d.Upload)
		mux.HandleFunc("GET /api/documents", d.ListDocuments)
		mux.HandleFunc("GET /api/documents/{id}", d.GetDocument)
	}
	if c := rt.Confirmations; c != nil {
		mux.HandleFunc("GET /api/confirmations", c.ListPending)
		mux.HandleFunc("GET /api/confirmations/{id}", c.GetPending)
		mux.HandleFunc("POST /api/confirmations/{id}", c.Confirm)
	}
	if j := rt.Jobs; j != nil {
		mux.HandleFunc("GET /api/jobs", j.ListJobs)
		mux.HandleFunc("GET /api/jobs/{id}", j.GetJob)
	}
	if t := rt.Tools; t != nil {
		mux.HandleFunc("POST /api/categorize", t.Categorize)
		mux.HandleFunc("GET /api/taxid", t.CheckTaxID)
	}
	return mux
}
