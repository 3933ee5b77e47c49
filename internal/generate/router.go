package generate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/reportai/constants"
)

// Router dispatches to the backend currently selected in settings.
type Router struct {
	selected func() constants.Backend
	backends map[constants.Backend]Generator
	logger   *slog.Logger
}

var _ Generator = (*Router)(nil)

func NewRouter(selected func() constants.Backend, backends map[constants.Backend]Generator, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{selected: selected, backends: backends, logger: logger}
}

func (r *Router) Generate(ctx context.Context, kind constants.ReportKind, docs []DocumentSummary) (string, error) {
	backend := r.selected()
	g, ok := r.backends[backend]
	if !ok {
		return "", fmt.Errorf("%w: backend %q is not configured", ErrGeneration, backend)
	}

	start := time.Now()
	r.logger.Info("generate.start", "backend", backend, "kind", kind, "documents", len(docs))
	content, err := g.Generate(ctx, kind, docs)
	if err != nil {
		r.logger.Error("generate.failed", "backend", backend, "kind", kind, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds())
		if !errors.Is(err, ErrGeneration) {
			err = fmt.Errorf("%w: %s: %w", ErrGeneration, backend, err)
		}
		return "", err
	}
	r.logger.Info("generate.ok", "backend", backend, "kind", kind, "chars", len(content),
		"elapsed_ms", time.Since(start).Milliseconds())
	return content, nil
}

// Has reports whether backend is wired.
func (r *Router) Has(backend constants.Backend) bool {
	_, ok := r.backends[backend]
	return ok
}
