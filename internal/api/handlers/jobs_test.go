package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mlisboa17/assistente-pessoal/internal/jobs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetJob(t *testing.T) {
	store := &MockJobStore{GetJobFunc: func(ctx context.Context, jobID string) (*jobs.ExtractDocumentJob, error) {
		switch jobID {
		case "job-1":
			return &jobs.ExtractDocumentJob{JobID: "job-1", Status: jobs.JobStatusCompleted, DocumentID: "doc-9"}, nil
		case "broken":
			return nil, errors.New("store offline")
		}
		return nil, fmt.Errorf("GetJob: %w", jobs.ErrJobNotFound)
	}}
	h := NewJobsHandler(store)

	tests := []struct {
		id   string
		want int
	}{
		{"job-1", http.StatusOK},
		{"missing", http.StatusNotFound},
		{"broken", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/api/jobs/"+tt.id, nil)
		req.SetPathValue("id", tt.id)
		rec := httptest.NewRecorder()
		h.GetJob(rec, req)
		assert.Equal(t, tt.want, rec.Code, tt.id)
		if tt.want == http.StatusOK {
			assert.Contains(t, rec.Body.String(), `"document_id":"doc-9"`)
		}
	}
}

func TestListJobs_Filter(t *testing.T) {
	var got jobs.JobFilter
	store := &MockJobStore{ListJobsFunc: func(ctx context.Context, filter jobs.JobFilter) ([]*jobs.ExtractDocumentJob, error) {
		got = filter
		return nil, nil
	}}
	h := NewJobsHandler(store)

	rec := httptest.NewRecorder()
	h.ListJobs(rec, httptest.NewRequest(http.MethodGet, "/api/jobs?status=failed&limit=10&offset=20&source_uri=gs://b/a.pdf", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, jobs.JobFilter{SourceURI: "gs://b/a.pdf", Status: jobs.JobStatusFailed, Limit: 10, Offset: 20}, got)
	assert.JSONEq(t, `{"jobs":[],"count":0}`, rec.Body.String())
}
