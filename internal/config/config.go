// Package config holds the tunable settings of the extraction service.
package config

import (
	"errors"
	"fmt"
	"time"
)

// Config is the root configuration.
type Config struct {
	Log         Log         `koanf:"log"`
	Extraction  Extraction  `koanf:"extraction"`
	Validation  Validation  `koanf:"validation"`
	Categorizer Categorizer `koanf:"categorizer"`
	Vision      Vision      `koanf:"vision"`
	OCR         OCR         `koanf:"ocr"`
	GCP         GCP         `koanf:"gcp"`
	Notion      Notion      `koanf:"notion"`
	Server      Server      `koanf:"server"`
	Jobs        Jobs        `koanf:"jobs"`
}

// Log configures the zerolog logger.
type Log struct {
	Level string `koanf:"level"`
}

// MethodValues holds one value per extraction method.
type MethodValues struct {
	VisionAI           float64 `koanf:"vision_ai"`
	TextLayer          float64 `koanf:"text_layer"`
	OCR                float64 `koanf:"ocr"`
	PatternSpecialized float64 `koanf:"pattern_specialized"`

	// Text is the pattern_specialized base when the input is plain text
	// rather than a decoded barcode image.
	Text float64 `koanf:"text"`
}

// MethodTimeouts holds one timeout per backend.
type MethodTimeouts struct {
	VisionAI           time.Duration `koanf:"vision_ai"`
	TextLayer          time.Duration `koanf:"text_layer"`
	OCR                time.Duration `koanf:"ocr"`
	PatternSpecialized time.Duration `koanf:"pattern_specialized"`
}

// MaxExhaustedCap bounds the confidence of a record the cascade could not
// complete.
const MaxExhaustedCap = 0.5

// Extraction tunes the orchestrator.
type Extraction struct {
	BaseConfidence   MethodValues   `koanf:"base_confidence"`
	PatchPenalty     float64        `koanf:"patch_penalty"`
	ExhaustedCap     float64        `koanf:"exhausted_cap"`
	BackendTimeout   MethodTimeouts `koanf:"backend_timeout"`
	OverallTimeout   time.Duration  `koanf:"overall_timeout"`
	ReconstructCodes bool           `koanf:"reconstruct_codes"`
	MinTextPerPage   int            `koanf:"min_text_per_page"`
	MaxExcerpt       int            `koanf:"max_excerpt"`
}

// Validation bounds used by the validator.
type Validation struct {
	MinAmount     float64 `koanf:"min_amount"`
	MaxAmount     float64 `koanf:"max_amount"`
	StaleSlipDays int     `koanf:"stale_slip_days"`
}

// Categorizer scoring constants.
type Categorizer struct {
	ScoreDivisor   float64 `koanf:"score_divisor"`
	RecipientBonus int     `koanf:"recipient_bonus"`
}

// Vision configures the multimodal model backend.
type Vision struct {
	Enabled           bool   `koanf:"enabled"`
	Model             string `koanf:"model"`
	APIVersion        string `koanf:"api_version"`
	APIKey            Secret `koanf:"api_key"`
	RequestsPerMinute int    `koanf:"requests_per_minute"`
}

// OCR configures the external recognition tools.
type OCR struct {
	Tesseract string `koanf:"tesseract"`
	Pdftoppm  string `koanf:"pdftoppm"`
	Zbarimg   string `koanf:"zbarimg"`
	Language  string `koanf:"language"`
	DPI       int    `koanf:"dpi"`
	MaxPages  int    `koanf:"max_pages"`
}

// GCP names the storage bucket and BigQuery dataset.
type GCP struct {
	ProjectID string `koanf:"project_id"`
	Dataset   string `koanf:"dataset"`
	Bucket    string `koanf:"bucket"`
}

// Notion configures the export of documents to a Notion database.
type Notion struct {
	Token      Secret `koanf:"token"`
	DatabaseID string `koanf:"database_id"`
}

// Server configures the HTTP API.
type Server struct {
	Port            int           `koanf:"port"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// Jobs configures the in-memory job queue.
type Jobs struct {
	Workers    int `koanf:"workers"`
	Buffer     int `koanf:"buffer"`
	MaxRetries int `koanf:"max_retries"`
}

// Secret wraps strings that must not show up in logs.
type Secret string

// String always returns a redacted value.
func (s Secret) String() string {
	if s == "" {
		return ""
	}
	return "[REDACTED]"
}

// Value returns the actual secret.
func (s Secret) Value() string {
	return string(s)
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Log: Log{Level: "info"},
		Extraction: Extraction{
			BaseConfidence: MethodValues{
				VisionAI:           0.9,
				TextLayer:          0.75,
				OCR:                0.6,
				PatternSpecialized: 0.9,
				Text:               0.7,
			},
			PatchPenalty: 0.1,
			ExhaustedCap: 0.5,
			BackendTimeout: MethodTimeouts{
				VisionAI:           45 * time.Second,
				TextLayer:          10 * time.Second,
				OCR:                60 * time.Second,
				PatternSpecialized: 30 * time.Second,
			},
			OverallTimeout:   2 * time.Minute,
			ReconstructCodes: true,
			MinTextPerPage:   50,
			MaxExcerpt:       500,
		},
		Validation: Validation{
			MinAmount:     0.01,
			MaxAmount:     1_000_000.00,
			StaleSlipDays: 90,
		},
		Categorizer: Categorizer{
			ScoreDivisor:   5.0,
			RecipientBonus: 2,
		},
		Vision: Vision{
			Enabled:           true,
			Model:             "gemini-2.5-flash",
			APIVersion:        "v1",
			RequestsPerMinute: 30,
		},
		OCR: OCR{
			Tesseract: "tesseract",
			Pdftoppm:  "pdftoppm",
			Zbarimg:   "zbarimg",
			Language:  "por",
			DPI:       300,
			MaxPages:  5,
		},
		GCP: GCP{
			Dataset: "docx",
		},
		Server: Server{
			Port:            8080,
			ShutdownTimeout: 30 * time.Second,
		},
		Jobs: Jobs{
			Workers:    5,
			Buffer:     100,
			MaxRetries: 3,
		},
	}
}

// Validate checks ranges that would make the pipeline misbehave.
func (c *Config) Validate() error {
	var errs []error

	e := c.Extraction
	for name, v := range map[string]float64{
		"extraction.base_confidence.vision_ai":           e.BaseConfidence.VisionAI,
		"extraction.base_confidence.text_layer":          e.BaseConfidence.TextLayer,
		"extraction.base_confidence.ocr":                 e.BaseConfidence.OCR,
		"extraction.base_confidence.pattern_specialized": e.BaseConfidence.PatternSpecialized,
		"extraction.base_confidence.text":                e.BaseConfidence.Text,
	} {
		if v < 0 || v > 1 {
			errs = append(errs, fmt.Errorf("%s must be within [0,1], got %v", name, v))
		}
	}
	if e.ExhaustedCap < 0 || e.ExhaustedCap > MaxExhaustedCap {
		errs = append(errs, fmt.Errorf("extraction.exhausted_cap must be within [0,%v], got %v", MaxExhaustedCap, e.ExhaustedCap))
	}
	if e.PatchPenalty < 0 {
		errs = append(errs, fmt.Errorf("extraction.patch_penalty must not be negative"))
	}
	if e.MinTextPerPage < 0 {
		errs = append(errs, fmt.Errorf("extraction.min_text_per_page must not be negative"))
	}
	if e.MaxExcerpt <= 0 {
		errs = append(errs, fmt.Errorf("extraction.max_excerpt must be positive"))
	}

	v := c.Validation
	if v.MinAmount <= 0 || v.MaxAmount <= v.MinAmount {
		errs = append(errs, fmt.Errorf("validation amount bounds invalid: min=%v max=%v", v.MinAmount, v.MaxAmount))
	}
	if v.StaleSlipDays <= 0 {
		errs = append(errs, fmt.Errorf("validation.stale_slip_days must be positive"))
	}

	if c.Categorizer.ScoreDivisor <= 0 {
		errs = append(errs, fmt.Errorf("categorizer.score_divisor must be positive"))
	}

	if c.Jobs.Workers <= 0 {
		errs = append(errs, fmt.Errorf("jobs.workers must be positive"))
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port out of range: %d", c.Server.Port))
	}

	return errors.Join(errs...)
}
