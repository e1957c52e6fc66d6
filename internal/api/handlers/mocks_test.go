package handlers

import (
	"context"
	"io"

	"github.com/mlisboa17/assistente-pessoal/internal/confirmation"
	"github.com/mlisboa17/assistente-pessoal/internal/domain"
	infra "github.com/mlisboa17/assistente-pessoal/internal/infra/bigquery"
	"github.com/mlisboa17/assistente-pessoal/internal/jobs"
	"github.com/mlisboa17/assistente-pessoal/internal/pipeline"
)

type MockProcessor struct {
	ProcessFunc func(ctx context.Context, req pipeline.Request) (domain.ProcessResult, error)
	ConfirmFunc func(ctx context.Context, documentID string, patch domain.Patch) (domain.ProcessResult, error)
}

func (m *MockProcessor) Process(ctx context.Context, req pipeline.Request) (domain.ProcessResult, error) {
	return m.ProcessFunc(ctx, req)
}

func (m *MockProcessor) Confirm(ctx context.Context, documentID string, patch domain.Patch) (domain.ProcessResult, error) {
	return m.ConfirmFunc(ctx, documentID, patch)
}

type MockDocumentReader struct {
	GetDocumentFunc   func(ctx context.Context, documentID string) (*infra.DocumentRow, error)
	ListDocumentsFunc func(ctx context.Context, filter infra.DocumentFilter) ([]*infra.DocumentRow, error)
}

func (m *MockDocumentReader) GetDocument(ctx context.Context, documentID string) (*infra.DocumentRow, error) {
	return m.GetDocumentFunc(ctx, documentID)
}

func (m *MockDocumentReader) ListDocuments(ctx context.Context, filter infra.DocumentFilter) ([]*infra.DocumentRow, error) {
	return m.ListDocumentsFunc(ctx, filter)
}

type MockUploader struct {
	Objects map[string][]byte
	Err     error
}

func (m *MockUploader) Upload(ctx context.Context, bucket, object string, r io.Reader, contentType string) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	if m.Objects == nil {
		m.Objects = map[string][]byte{}
	}
	m.Objects[object] = data
	return "gs://" + bucket + "/" + object, nil
}

type MockPublisher struct {
	Published []*jobs.ExtractDocumentJob
	Err       error
}

func (m *MockPublisher) Publish(ctx context.Context, job *jobs.ExtractDocumentJob) error {
	if m.Err != nil {
		return m.Err
	}
	job.JobID = "job-1"
	job.Status = jobs.JobStatusPending
	m.Published = append(m.Published, job)
	return nil
}

func (m *MockPublisher) Close() error { return nil }

type MockJobStore struct {
	GetJobFunc   func(ctx context.Context, jobID string) (*jobs.ExtractDocumentJob, error)
	ListJobsFunc func(ctx context.Context, filter jobs.JobFilter) ([]*jobs.ExtractDocumentJob, error)
}

func (m *MockJobStore) SaveJob(ctx context.Context, job *jobs.ExtractDocumentJob) error { return nil }

func (m *MockJobStore) GetJob(ctx context.Context, jobID string) (*jobs.ExtractDocumentJob, error) {
	return m.GetJobFunc(ctx, jobID)
}

func (m *MockJobStore) ListJobs(ctx context.Context, filter jobs.JobFilter) ([]*jobs.ExtractDocumentJob, error) {
	return m.ListJobsFunc(ctx, filter)
}

func (m *MockJobStore) UpdateJobStatus(ctx context.Context, jobID string, status jobs.JobStatus, errorMsg string) error {
	return nil
}

var _ PendingReader = (*confirmation.MemoryStore)(nil)
