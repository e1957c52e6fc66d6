package app

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/mlisboa17/assistente-pessoal/internal/domain"
	"github.com/mlisboa17/assistente-pessoal/internal/gcsuploader"
	"github.com/mlisboa17/assistente-pessoal/internal/jobs"
	"github.com/mlisboa17/assistente-pessoal/internal/orchestrator"
	"github.com/mlisboa17/assistente-pessoal/internal/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProcessor struct {
	ProcessFunc func(ctx context.Context, req pipeline.Request) (domain.ProcessResult, error)
	calls       []pipeline.Request
}

func (f *fakeProcessor) Process(ctx context.Context, req pipeline.Request) (domain.ProcessResult, error) {
	f.calls = append(f.calls, req)
	return f.ProcessFunc(ctx, req)
}

func TestExtractJobHandler_FillsResult(t *testing.T) {
	p := &fakeProcessor{ProcessFunc: func(ctx context.Context, req pipeline.Request) (domain.ProcessResult, error) {
		return domain.ProcessResult{
			Extraction: domain.ExtractionResult{
				Document: domain.ExtractedDocument{ID: "doc-1"},
				State:    domain.StateExhausted,
			},
			AwaitingConfirm: true,
		}, nil
	}}
	job := &jobs.ExtractDocumentJob{JobID: "j", SourceURI: "gs://b/a.pdf", KindHint: "darf"}

	require.NoError(t, ExtractJobHandler(p)(context.Background(), job))

	require.Len(t, p.calls, 1)
	assert.Equal(t, "gs://b/a.pdf", p.calls[0].SourceURI)
	require.NotNil(t, p.calls[0].KindHint)
	assert.Equal(t, domain.KindTaxGuide, *p.calls[0].KindHint)
	assert.Equal(t, "doc-1", job.DocumentID)
	assert.Equal(t, string(domain.StateExhausted), job.State)
	assert.True(t, job.AwaitingConfirm)
}

func TestExtractJobHandler_DuplicatePointsAtExisting(t *testing.T) {
	p := &fakeProcessor{ProcessFunc: func(ctx context.Context, req pipeline.Request) (domain.ProcessResult, error) {
		return domain.ProcessResult{
			Extraction:         domain.ExtractionResult{Document: domain.ExtractedDocument{ID: "new"}},
			Duplicate:          true,
			ExistingDocumentID: "old",
		}, nil
	}}
	job := &jobs.ExtractDocumentJob{SourceURI: "gs://b/a.pdf"}

	require.NoError(t, ExtractJobHandler(p)(context.Background(), job))
	assert.Equal(t, "old", job.DocumentID)
	assert.True(t, job.Duplicate)
}

func TestExtractJobHandler_Errors(t *testing.T) {
	tests := []struct {
		name      string
		kindHint  string
		err       error
		permanent bool
	}{
		{"unknown hint", "cheque", nil, true},
		{"unsupported media", "", fmt.Errorf("pipeline step 4 (extract) failed: %w", orchestrator.ErrUnsupportedMediaType), true},
		{"bad uri", "", fmt.Errorf("fetch: %w", gcsuploader.ErrInvalidURI), true},
		{"transient", "", errors.New("bigquery: 503"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &fakeProcessor{ProcessFunc: func(ctx context.Context, req pipeline.Request) (domain.ProcessResult, error) {
				return domain.ProcessResult{}, tt.err
			}}
			job := &jobs.ExtractDocumentJob{SourceURI: "gs://b/a.pdf", KindHint: tt.kindHint}

			err := ExtractJobHandler(p)(context.Background(), job)

			require.Error(t, err)
			assert.Equal(t, tt.permanent, errors.Is(err, jobs.ErrPermanent))
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
			}
		})
	}
}
