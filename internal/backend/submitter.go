package backend

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/mlisboa17/assistente-pessoal/internal/config"
	"google.golang.org/genai"
)

// Submitter sends a document and a prompt to a multimodal model and returns
// its text reply.
type Submitter interface {
	Submit(ctx context.Context, in Input, prompt string) (string, error)
}

// ErrEmptyReply is returned when the model answers with no text.
var ErrEmptyReply = errors.New("empty response from model")

// GeminiSubmitter talks to Gemini through google.golang.org/genai.
type GeminiSubmitter struct {
	client      *genai.Client
	model       string
	temperature float32
}

// NewGeminiSubmitter creates a client. An empty API key lets the SDK read
// GOOGLE_API_KEY or the Vertex AI environment.
func NewGeminiSubmitter(ctx context.Context, cfg config.Vision) (*GeminiSubmitter, error) {
	cc := &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: cfg.APIVersion},
	}
	if key := cfg.APIKey.Value(); key != "" {
		cc.APIKey = key
		cc.Backend = genai.BackendGeminiAPI
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("NewGeminiSubmitter: create genai client: %w", err)
	}
	return &GeminiSubmitter{client: client, model: cfg.Model}, nil
}

// Submit sends the prompt with the document bytes inline, or with the text
// when the input has no bytes.
func (g *GeminiSubmitter) Submit(ctx context.Context, in Input, prompt string) (string, error) {
	parts := []*genai.Part{{Text: prompt}}
	if len(in.Data) > 0 {
		parts = append(parts, &genai.Part{
			InlineData: &genai.Blob{
				MIMEType: in.MediaType,
				Data:     in.Data,
			},
		})
	} else {
		parts = append(parts, &genai.Part{Text: in.Text})
	}

	contents := []*genai.Content{{Role: "user", Parts: parts}}
	temp := g.temperature

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{
		Temperature: &temp,
	})
	if err != nil {
		return "", fmt.Errorf("GeminiSubmitter.Submit: generate content: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", ErrEmptyReply
	}
	return text, nil
}

// IsRetryable reports whether a submit error is transient (network trouble,
// rate limiting, server errors). Auth and request errors are not.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == 429 || apiErr.Code >= 500
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "connection reset") || strings.Contains(msg, "unavailable")
}
