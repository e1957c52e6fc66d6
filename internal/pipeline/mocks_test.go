package pipeline_test

import (
	"context"
	"sync"

	"cloud.google.com/go/civil"
	"github.com/mlisboa17/assistente-pessoal/internal/backend"
	"github.com/mlisboa17/assistente-pessoal/internal/domain"
	infra "github.com/mlisboa17/assistente-pessoal/internal/infra/bigquery"
)

type MockSourceFetcher struct {
	FetchFunc func(ctx context.Context, uri string) ([]byte, error)
	Calls     []string
}

func (m *MockSourceFetcher) Fetch(ctx context.Context, uri string) ([]byte, error) {
	m.Calls = append(m.Calls, uri)
	if m.FetchFunc != nil {
		return m.FetchFunc(ctx, uri)
	}
	return []byte("%PDF-1.4 mock"), nil
}

type MockExtractor struct {
	ExtractFunc func(ctx context.Context, in backend.Input) (domain.ExtractionResult, error)
	Inputs      []backend.Input
}

func (m *MockExtractor) Extract(ctx context.Context, in backend.Input) (domain.ExtractionResult, error) {
	m.Inputs = append(m.Inputs, in)
	return m.ExtractFunc(ctx, in)
}

type MockDocumentStore struct {
	FindDocumentByFingerprintFunc func(ctx context.Context, fingerprint string) (*infra.DocumentRow, error)
	InsertDocumentFunc            func(ctx context.Context, row *infra.DocumentRow) error

	mu       sync.Mutex
	Inserted []*infra.DocumentRow
}

func (m *MockDocumentStore) InsertDocument(ctx context.Context, row *infra.DocumentRow) error {
	if m.InsertDocumentFunc != nil {
		if err := m.InsertDocumentFunc(ctx, row); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Inserted = append(m.Inserted, row)
	return nil
}

func (m *MockDocumentStore) FindDocumentByFingerprint(ctx context.Context, fingerprint string) (*infra.DocumentRow, error) {
	if m.FindDocumentByFingerprintFunc != nil {
		return m.FindDocumentByFingerprintFunc(ctx, fingerprint)
	}
	return nil, nil
}

type MockRunRecorder struct {
	StartExtractionRunFunc func(ctx context.Context, sourceURI string) (string, error)

	Started   []string
	Failed    map[string]error
	Succeeded map[string]string
	Attempts  []*infra.AttemptRow
}

func (m *MockRunRecorder) StartExtractionRun(ctx context.Context, sourceURI string) (string, error) {
	m.Started = append(m.Started, sourceURI)
	if m.StartExtractionRunFunc != nil {
		return m.StartExtractionRunFunc(ctx, sourceURI)
	}
	return "run-1", nil
}

func (m *MockRunRecorder) MarkExtractionRunFailed(ctx context.Context, runID string, runErr error) {
	if m.Failed == nil {
		m.Failed = map[string]error{}
	}
	m.Failed[runID] = runErr
}

func (m *MockRunRecorder) MarkExtractionRunSucceeded(ctx context.Context, runID, documentID string) error {
	if m.Succeeded == nil {
		m.Succeeded = map[string]string{}
	}
	m.Succeeded[runID] = documentID
	return nil
}

func (m *MockRunRecorder) InsertAttempts(ctx context.Context, rows []*infra.AttemptRow) error {
	m.Attempts = append(m.Attempts, rows...)
	return nil
}

type MockReminderScheduler struct {
	ScheduleFunc func(ctx context.Context, documentID string, due civil.Date) error
	Scheduled    map[string]civil.Date
}

func (m *MockReminderScheduler) Schedule(ctx context.Context, documentID string, due civil.Date) error {
	if m.ScheduleFunc != nil {
		if err := m.ScheduleFunc(ctx, documentID, due); err != nil {
			return err
		}
	}
	if m.Scheduled == nil {
		m.Scheduled = map[string]civil.Date{}
	}
	m.Scheduled[documentID] = due
	return nil
}

type MockExporter struct {
	ExportFunc func(ctx context.Context, res domain.ProcessResult) error
	Exported   []domain.ProcessResult
}

func (m *MockExporter) Export(ctx context.Context, res domain.ProcessResult) error {
	m.Exported = append(m.Exported, res)
	if m.ExportFunc != nil {
		return m.ExportFunc(ctx, res)
	}
	return nil
}
