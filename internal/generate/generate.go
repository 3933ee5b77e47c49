// Package generate turns a set of ready documents into report content.
//
// Every backend honors the ordered section list of the kind's Template.
// The local backend renders deterministic markdown; the LLM backends ask
// for JSON sections, validate them, and render the same markdown shape.
package generate

import (
	"context"
	"errors"

	"github.com/joseph-ayodele/reportai/constants"
)

// ErrGeneration is matched by every failure reported by a Generator.
var ErrGeneration = errors.New("content generation failed")

// DocumentSummary is what a generator sees of one source document.
type DocumentSummary struct {
	Name      string
	SizeBytes int64
	MediaType string
	Text      string
}

// Generator produces report content for kind from docs, in order.
type Generator interface {
	Generate(ctx context.Context, kind constants.ReportKind, docs []DocumentSummary) (string, error)
}

// Func adapts a plain function to Generator.
type Func func(ctx context.Context, kind constants.ReportKind, docs []DocumentSummary) (string, error)

func (f Func) Generate(ctx context.Context, kind constants.ReportKind, docs []DocumentSummary) (string, error) {
	return f(ctx, kind, docs)
}
