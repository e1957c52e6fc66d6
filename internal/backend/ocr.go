package backend

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/mlisboa17/assistente-pessoal/internal/config"
	"github.com/mlisboa17/assistente-pessoal/internal/domain"
	"github.com/mlisboa17/assistente-pessoal/internal/patterns"
)

// OCR rasterizes PDFs with pdftoppm and recognizes images with tesseract.
type OCR struct {
	runner Runner
	cfg    config.OCR
}

func NewOCR(runner Runner, cfg config.OCR) *OCR {
	if runner == nil {
		runner = ExecRunner{}
	}
	return &OCR{runner: runner, cfg: cfg}
}

func (o *OCR) Method() domain.Method { return domain.MethodOCR }

func (o *OCR) TryExtract(ctx context.Context, in Input) Result {
	text, err := o.Recognize(ctx, in)
	if err != nil {
		return toolFailure(ctx, domain.MethodOCR, err)
	}
	if strings.TrimSpace(text) == "" {
		return fail(domain.MethodOCR, CodeNoText, "recognition produced no text", nil)
	}
	return Result{Fields: patterns.Extract(text, in.KindHint), RawText: text}
}

var errUnsupportedShape = errors.New("unsupported input shape")

// Recognize returns the text tesseract reads from the input.
func (o *OCR) Recognize(ctx context.Context, in Input) (string, error) {
	shape := in.Shape()
	if shape != ShapePDF && shape != ShapeImage {
		return "", errUnsupportedShape
	}

	dir, err := os.MkdirTemp("", "docx-ocr-*")
	if err != nil {
		return "", fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	images, err := o.images(ctx, dir, in, shape)
	if err != nil {
		return "", err
	}

	var pages []string
	for _, img := range images {
		out, err := o.runner.Run(ctx, o.cfg.Tesseract, img, "stdout", "-l", o.cfg.Language)
		if err != nil {
			return "", err
		}
		pages = append(pages, string(out))
	}
	return strings.Join(pages, "\n"), nil
}

func (o *OCR) images(ctx context.Context, dir string, in Input, shape Shape) ([]string, error) {
	if shape == ShapeImage {
		path := filepath.Join(dir, "input"+imageExt(in.MediaType))
		if err := os.WriteFile(path, in.Data, 0600); err != nil {
			return nil, fmt.Errorf("write image: %w", err)
		}
		return []string{path}, nil
	}

	src := filepath.Join(dir, "input.pdf")
	if err := os.WriteFile(src, in.Data, 0600); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	prefix := filepath.Join(dir, "page")
	args := []string{"-r", strconv.Itoa(o.cfg.DPI), "-png"}
	if o.cfg.MaxPages > 0 {
		args = append(args, "-l", strconv.Itoa(o.cfg.MaxPages))
	}
	args = append(args, src, prefix)

	if _, err := o.runner.Run(ctx, o.cfg.Pdftoppm, args...); err != nil {
		return nil, err
	}

	pages, err := filepath.Glob(prefix + "*.png")
	if err != nil {
		return nil, fmt.Errorf("list rasterized pages: %w", err)
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("pdftoppm produced no pages")
	}
	sort.Strings(pages)
	return pages, nil
}

func imageExt(mediaType string) string {
	switch strings.ToLower(mediaType) {
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "image/tiff":
		return ".tif"
	case "image/bmp":
		return ".bmp"
	}
	return ".png"
}

// toolFailure classifies errors coming from external tools.
func toolFailure(ctx context.Context, method domain.Method, err error) Result {
	if f := ctxFailure(ctx, method); f != nil {
		return Result{Failure: f}
	}
	switch {
	case errors.Is(err, errUnsupportedShape):
		return fail(method, CodeUnsupportedInput, "input is neither PDF nor image", err)
	case errors.Is(err, ErrToolMissing):
		return fail(method, CodeUnavailable, "tool not installed", err)
	}
	return fail(method, CodeToolError, "tool failed", err)
}
