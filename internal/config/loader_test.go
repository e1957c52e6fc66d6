package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv(EnvConfigPath, "")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 0.9, cfg.Extraction.BaseConfidence.VisionAI)
	assert.Equal(t, 0.6, cfg.Extraction.BaseConfidence.OCR)
	assert.Equal(t, 0.1, cfg.Extraction.PatchPenalty)
	assert.Equal(t, 0.5, cfg.Extraction.ExhaustedCap)
	assert.Equal(t, 5.0, cfg.Categorizer.ScoreDivisor)
	assert.Equal(t, 90, cfg.Validation.StaleSlipDays)
	assert.Equal(t, "gemini-2.5-flash", cfg.Vision.Model)
}

func TestLoad_YAMLOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
extraction:
  patch_penalty: 0.05
  backend_timeout:
    vision_ai: 5s
categorizer:
  score_divisor: 4
gcp:
  project_id: my-project
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 0.05, cfg.Extraction.PatchPenalty)
	assert.Equal(t, 5*time.Second, cfg.Extraction.BackendTimeout.VisionAI)
	assert.Equal(t, 60*time.Second, cfg.Extraction.BackendTimeout.OCR, "untouched keys keep defaults")
	assert.Equal(t, 4.0, cfg.Categorizer.ScoreDivisor)
	assert.Equal(t, "my-project", cfg.GCP.ProjectID)
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("gcp:\n  bucket: from-file\n"), 0600))

	t.Setenv("DOCX_GCP_BUCKET", "from-env")
	t.Setenv("DOCX_VISION_MODEL", "gemini-2.5-pro")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.GCP.Bucket)
	assert.Equal(t, "gemini-2.5-pro", cfg.Vision.Model)
}

func TestLoad_InvalidValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("extraction:\n  exhausted_cap: 1.5\n"), 0600))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exhausted_cap")
}

func TestLoad_ExhaustedCapAboveHalf(t *testing.T) {
	tests := []struct {
		name    string
		cap     string
		wantErr bool
	}{
		{"at the bound", "0.5", false},
		{"below the bound", "0.3", false},
		{"above the bound", "0.8", true},
		{"negative", "-0.1", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte("extraction:\n  exhausted_cap: "+tt.cap+"\n"), 0600))

			_, err := Load(path)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "exhausted_cap")
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestEnvKey(t *testing.T) {
	tests := map[string]string{
		"DOCX_GCP_PROJECT_ID":           "gcp.project_id",
		"DOCX_LOG_LEVEL":                "log.level",
		"DOCX_EXTRACTION_PATCH_PENALTY": "extraction.patch_penalty",
		"DOCX_DEBUG":                    "debug",
	}
	for in, want := range tests {
		assert.Equal(t, want, envKey(in), in)
	}
}

func TestSecret_Redacted(t *testing.T) {
	s := Secret("token-value")
	assert.Equal(t, "[REDACTED]", s.String())
	assert.Equal(t, "token-value", s.Value())
	assert.Equal(t, "", Secret("").String())
}
