// Package handlers implements the HTTP endpoints.
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/mlisboa17/assistente-pessoal/internal/api/middleware"
	"github.com/mlisboa17/assistente-pessoal/internal/domain"
	"github.com/mlisboa17/assistente-pessoal/internal/gcsuploader"
	infra "github.com/mlisboa17/assistente-pessoal/internal/infra/bigquery"
	"github.com/mlisboa17/assistente-pessoal/internal/jobs"
	"github.com/mlisboa17/assistente-pessoal/internal/logger"
	"github.com/mlisboa17/assistente-pessoal/internal/orchestrator"
	"github.com/mlisboa17/assistente-pessoal/internal/pipeline"
)

// MaxUploadBytes caps request bodies carrying documents.
const MaxUploadBytes = 20 << 20

const uploadPrefix = "uploads"

// DocumentsHandler handles document-related endpoints.
type DocumentsHandler struct {
	processor Processor
	docs      DocumentReader
	uploader  Uploader
	publisher jobs.Publisher
	bucket    string
	now       func() time.Time
}

// NewDocumentsHandler creates a new documents handler. docs, uploader and
// publisher may be nil; their endpoints then answer 503.
func NewDocumentsHandler(processor Processor, docs DocumentReader, uploader Uploader, publisher jobs.Publisher, bucket string) *DocumentsHandler {
	return &DocumentsHandler{
		processor: processor,
		docs:      docs,
		uploader:  uploader,
		publisher: publisher,
		bucket:    bucket,
		now:       time.Now,
	}
}

// Extract handles POST /api/documents/extract. It accepts a multipart upload
// in the "file" field or a JSON body with pasted text, and runs the pipeline
// synchronously.
func (h *DocumentsHandler) Extract(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadBytes)

	req, status, msg := readExtractRequest(r)
	if status != 0 {
		middleware.WriteError(w, status, msg)
		return
	}

	res, err := h.processor.Process(r.Context(), req)
	if err != nil {
		writeProcessError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, res)
}

func readExtractRequest(r *http.Request) (pipeline.Request, int, string) {
	var req pipeline.Request
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	switch ct {
	case "multipart/form-data":
		if err := r.ParseMultipartForm(MaxUploadBytes); err != nil {
			return req, http.StatusBadRequest, "Invalid multipart body"
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			return req, http.StatusBadRequest, "file is required"
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			return req, http.StatusRequestEntityTooLarge, "File too large"
		}
		req.Data = data
		req.MediaType = header.Header.Get("Content-Type")
		if req.MediaType == "application/octet-stream" {
			req.MediaType = ""
		}
		if k, ok := parseKindHint(r.FormValue("kind_hint")); ok {
			req.KindHint = k
		} else {
			return req, http.StatusBadRequest, "Unknown kind_hint"
		}

	default:
		var body struct {
			Text     string `json:"text"`
			KindHint string `json:"kind_hint"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			return req, http.StatusBadRequest, "Invalid request body"
		}
		if strings.TrimSpace(body.Text) == "" {
			return req, http.StatusBadRequest, "text is required"
		}
		req.Text = body.Text
		k, ok := parseKindHint(body.KindHint)
		if !ok {
			return req, http.StatusBadRequest, "Unknown kind_hint"
		}
		req.KindHint = k
	}
	return req, 0, ""
}

// parseKindHint accepts an empty hint as "no hint".
func parseKindHint(s string) (*domain.DocumentKind, bool) {
	if strings.TrimSpace(s) == "" {
		return nil, true
	}
	k, ok := domain.ParseKind(s)
	if !ok {
		return nil, false
	}
	return &k, true
}

func writeProcessError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, orchestrator.ErrUnsupportedMediaType):
		middleware.WriteError(w, http.StatusUnsupportedMediaType, "Unsupported media type")
	case errors.Is(err, pipeline.ErrNoSource):
		middleware.WriteError(w, http.StatusBadRequest, "No document provided")
	default:
		logger.FromContext(r.Context()).Error().Err(err).Msg("Failed to process document")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to process document")
	}
}

// EnqueueParsing handles POST /api/documents/parse
func (h *DocumentsHandler) EnqueueParsing(w http.ResponseWriter, r *http.Request) {
	if h.publisher == nil {
		middleware.WriteError(w, http.StatusServiceUnavailable, "Job queue not configured")
		return
	}

	var req struct {
		GCSURI   string `json:"gcs_uri"`
		KindHint string `json:"kind_hint"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if _, _, err := gcsuploader.ParseURI(req.GCSURI); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "gcs_uri must look like gs://bucket/object")
		return
	}
	if _, ok := parseKindHint(req.KindHint); !ok {
		middleware.WriteError(w, http.StatusBadRequest, "Unknown kind_hint")
		return
	}

	h.enqueue(w, r, req.GCSURI, req.KindHint)
}

// Upload handles POST /api/documents/upload. The file is stored in the
// configured bucket and an extraction job is queued for it.
func (h *DocumentsHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if h.uploader == nil || h.publisher == nil || h.bucket == "" {
		middleware.WriteError(w, http.StatusServiceUnavailable, "Uploads not configured")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadBytes)

	if err := r.ParseMultipartForm(MaxUploadBytes); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid multipart body")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	kindHint := r.FormValue("kind_hint")
	if _, ok := parseKindHint(kindHint); !ok {
		middleware.WriteError(w, http.StatusBadRequest, "Unknown kind_hint")
		return
	}

	contentType := header.Header.Get("Content-Type")
	object := gcsuploader.ObjectName(uploadPrefix, filepath.Base(header.Filename), h.now())
	uri, err := h.uploader.Upload(r.Context(), h.bucket, object, file, contentType)
	if err != nil {
		logger.FromContext(r.Context()).Error().Err(err).Str("object", object).Msg("Failed to upload file")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to upload file")
		return
	}

	logger.FromContext(r.Context()).Info().
		Str("gcs_uri", uri).
		Int64("bytes", header.Size).
		Msg("File uploaded successfully")

	h.enqueue(w, r, uri, kindHint)
}

func (h *DocumentsHandler) enqueue(w http.ResponseWriter, r *http.Request, uri, kindHint string) {
	job := &jobs.ExtractDocumentJob{SourceURI: uri, KindHint: kindHint}
	if err := h.publisher.Publish(r.Context(), job); err != nil {
		logger.FromContext(r.Context()).Error().Err(err).Str("gcs_uri", uri).Msg("Failed to enqueue extraction job")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to enqueue extraction job")
		return
	}

	logger.FromContext(r.Context()).Info().Str("job_id", job.JobID).Str("gcs_uri", uri).Msg("Extraction job enqueued")

	middleware.WriteJSON(w, http.StatusAccepted, map[string]string{
		"job_id":  job.JobID,
		"gcs_uri": uri,
		"status":  string(job.Status),
	})
}

// ListDocuments handles GET /api/documents
func (h *DocumentsHandler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	if h.docs == nil {
		middleware.WriteError(w, http.StatusServiceUnavailable, "Document storage not configured")
		return
	}

	query := r.URL.Query()
	var filter infra.DocumentFilter
	if kind := query.Get("kind"); kind != "" {
		k, ok := domain.ParseKind(kind)
		if !ok {
			middleware.WriteError(w, http.StatusBadRequest, "Unknown kind")
			return
		}
		filter.Kind = string(k)
	}
	if since := query.Get("since"); since != "" {
		t, err := time.Parse("2006-01-02", since)
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, "Invalid since format")
			return
		}
		filter.Since = t
	}
	if limitStr := query.Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil {
			filter.Limit = limit
		}
	}

	rows, err := h.docs.ListDocuments(r.Context(), filter)
	if err != nil {
		logger.FromContext(r.Context()).Error().Err(err).Msg("Failed to list documents")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list documents")
		return
	}

	documents := make([]documentView, 0, len(rows))
	for _, row := range rows {
		documents = append(documents, newDocumentView(row))
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"documents": documents,
		"count":     len(documents),
	})
}

// GetDocument handles GET /api/documents/{id}
func (h *DocumentsHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	if h.docs == nil {
		middleware.WriteError(w, http.StatusServiceUnavailable, "Document storage not configured")
		return
	}
	id := r.PathValue("id")

	row, err := h.docs.GetDocument(r.Context(), id)
	if err != nil {
		logger.FromContext(r.Context()).Error().Err(err).Str("document_id", id).Msg("Failed to get document")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to get document")
		return
	}
	if row == nil {
		middleware.WriteError(w, http.StatusNotFound, "Document not found")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, newDocumentView(row))
}

// documentView is a stored document as the API returns it.
type documentView struct {
	Document      domain.ExtractedDocument   `json:"document"`
	Category      *domain.CategorySuggestion `json:"category,omitempty"`
	State         string                     `json:"extraction_state"`
	Valid         bool                       `json:"valid"`
	Violations    json.RawMessage            `json:"violations,omitempty"`
	SourceURI     string                     `json:"source_uri,omitempty"`
	RunID         string                     `json:"run_id,omitempty"`
	UserConfirmed bool                       `json:"user_confirmed"`
}

func newDocumentView(row *infra.DocumentRow) documentView {
	doc, cat := row.ToDomain()
	v := documentView{
		Document:      doc,
		Category:      cat,
		State:         row.ExtractionState,
		Valid:         row.Valid,
		SourceURI:     row.SourceURI,
		RunID:         row.RunID,
		UserConfirmed: row.Confirmed,
	}
	if row.Violations.Valid && json.Valid([]byte(row.Violations.JSONVal)) {
		v.Violations = json.RawMessage(row.Violations.JSONVal)
	}
	return v
}
