package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/joseph-ayodele/reportai/constants"
)

type Config struct {
	Pdftotext string // binary name or absolute path; if empty -> "pdftotext"
	Antiword  string // if empty -> "antiword"
	Xls2csv   string // if empty -> "xls2csv"

	TempDir string        // scratch space for tools that need a file path; "" = os.TempDir()
	Timeout time.Duration // per extraction; 0 = none
}

// Extractor dispatches on media type to the per-format readers.
type Extractor struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

var _ TextExtractor = (*Extractor)(nil)

type Option func(*Extractor)

// WithRunner replaces the external command runner.
func WithRunner(r Runner) Option {
	return func(e *Extractor) {
		if r != nil {
			e.runner = r
		}
	}
}

func New(cfg Config, logger *slog.Logger, opts ...Option) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	if cfg.Antiword == "" {
		cfg.Antiword = "antiword"
	}
	if cfg.Xls2csv == "" {
		cfg.Xls2csv = "xls2csv"
	}
	e := &Extractor{cfg: cfg, runner: execRunner{logger: logger}, logger: logger}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Extract reads raw as mediaType. Every failure matches ErrExtraction;
// context errors stay matchable as well.
func (e *Extractor) Extract(ctx context.Context, mediaType string, raw []byte) (Result, error) {
	start := time.Now()
	mt, ok := constants.CanonicalMediaType(mediaType)
	if !ok {
		return Result{}, fmt.Errorf("%w: unsupported media type %q", ErrExtraction, mediaType)
	}
	format, _ := constants.FormatForMediaType(mt)

	if e.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.Timeout)
		defer cancel()
	}
	if err := ctx.Err(); err != nil {
		return Result{Format: format}, fmt.Errorf("%w: %w", ErrExtraction, err)
	}

	e.logger.Debug("extract.start", "format", format, "bytes", len(raw))

	var (
		res Result
		err error
	)
	switch format {
	case constants.FormatTXT:
		res, err = extractPlain(raw)
	case constants.FormatCSV:
		res, err = extractCSV(raw)
	case constants.FormatPDF:
		res, err = e.extractPDF(ctx, raw)
	case constants.FormatDOCX:
		res, err = extractDOCX(raw)
	case constants.FormatDOC:
		res, err = e.extractDOC(ctx, raw)
	case constants.FormatXLSX:
		res, err = extractXLSX(raw)
	case constants.FormatXLS:
		res, err = e.extractXLS(ctx, raw)
	default:
		err = fmt.Errorf("no reader for format %s", format)
	}
	res.Format = format
	res.Duration = time.Since(start)

	if err == nil && Normalize(res.Text) == "" {
		err = errors.New("no text content")
	}
	if err != nil {
		e.logger.Warn("extract.failed", "format", format, "method", res.Method, "elapsed_ms", res.Duration.Milliseconds(), "error", err)
		return res, fmt.Errorf("%w: %s: %w", ErrExtraction, format, err)
	}
	e.logger.Debug("extract.ok", "format", format, "method", res.Method, "pages", res.Pages,
		"chars", len(res.Text), "elapsed_ms", res.Duration.Milliseconds())
	return res, nil
}

// withTempFile writes raw to a scratch file for tools that only read paths.
func (e *Extractor) withTempFile(raw []byte, ext string, fn func(path string) error) error {
	dir := e.cfg.TempDir
	if dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create temp dir: %w", err)
		}
	}
	f, err := os.CreateTemp(dir, "reportai-*"+ext)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	path := f.Name()
	defer func() {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			e.logger.Warn("failed to remove temp file", "path", filepath.Base(path), "error", err)
		}
	}()
	if _, err := f.Write(raw); err != nil {
		_ = f.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	return fn(path)
}
