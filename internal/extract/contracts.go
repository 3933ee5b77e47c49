package extract

import (
	"context"
	"errors"
	"time"

	"github.com/joseph-ayodele/reportai/constants"
)

// ErrExtraction is matched by every failure reported by a TextExtractor.
var ErrExtraction = errors.New("text extraction failed")

// TextExtractor turns the raw bytes of an uploaded file into text.
type TextExtractor interface {
	Extract(ctx context.Context, mediaType string, raw []byte) (Result, error)
}

type Result struct {
	Text     string
	Pages    int
	Format   constants.Format
	Method   string // "plain" | "csv" | "pdftotext" | "docx-xml" | "antiword" | "xlsx" | "xls2csv"
	Duration time.Duration
	Warnings []string
}

// Func adapts a plain function to TextExtractor.
type Func func(ctx context.Context, mediaType string, raw []byte) (Result, error)

func (f Func) Extract(ctx context.Context, mediaType string, raw []byte) (Result, error) {
	return f(ctx, mediaType, raw)
}
