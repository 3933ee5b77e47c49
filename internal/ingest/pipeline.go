// Package ingest drives uploaded files from validation to extracted,
// report-ready documents.
package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/reportai/constants"
	"github.com/joseph-ayodele/reportai/internal/common"
	"github.com/joseph-ayodele/reportai/internal/entity"
	"github.com/joseph-ayodele/reportai/internal/extract"
)

// DocumentStore is the part of the store the pipeline mutates.
type DocumentStore interface {
	InsertDocument(ctx context.Context, d entity.Document) error
	ApplyDocument(ctx context.Context, id string, u entity.DocumentUpdate) (entity.Document, error)
}

// Result is the outcome of one file that reached the store.
type Result struct {
	Document entity.Document
	Pages    int
	Warnings []string
}

type Pipeline struct {
	store     DocumentStore
	extractor extract.TextExtractor
	logger    *slog.Logger
	now       func() time.Time
	maxSize   int64
}

type Option func(*Pipeline)

func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		if now != nil {
			p.now = now
		}
	}
}

// WithMaxFileSize lowers or raises the per-file limit.
func WithMaxFileSize(n int64) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.maxSize = n
		}
	}
}

func New(store DocumentStore, extractor extract.TextExtractor, logger *slog.Logger, opts ...Option) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Pipeline{
		store:     store,
		extractor: extractor,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC().Round(0) },
		maxSize:   constants.MaxFileSizeBytes,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Ingest processes files one after another in submission order. The first
// failure stops the batch; documents committed before it stay in the store
// and their results are returned alongside the error.
func (p *Pipeline) Ingest(ctx context.Context, files []File) ([]Result, error) {
	batchID := common.BatchIDFromContext(ctx)
	if batchID == "" {
		batchID = uuid.New().String()
		ctx = common.WithBatchID(ctx, batchID)
	}
	log := p.logger.With("batch_id", batchID)
	start := time.Now()
	log.Info("ingest.batch.start", "files", len(files))

	results := make([]Result, 0, len(files))
	for i, f := range files {
		res, err := p.IngestFile(ctx, f)
		if err != nil {
			log.Warn("ingest.batch.aborted", "index", i, "file", f.Name, "committed", len(results),
				"skipped", len(files)-i-1, "error", err)
			if res.Document.ID != "" {
				results = append(results, res)
			}
			return results, err
		}
		results = append(results, res)
	}

	log.Info("ingest.batch.ok", "files", len(results), "elapsed_ms", time.Since(start).Milliseconds())
	return results, nil
}

// Validate checks size and media type and returns the canonical media type.
func (p *Pipeline) Validate(f File) (string, error) {
	if f.Size > p.maxSize {
		return "", fmt.Errorf("%s is %d bytes, limit is %d: %w", f.Name, f.Size, p.maxSize, common.ErrFileTooLarge)
	}
	raw := f.MediaType
	if raw == "" {
		raw = extOf(f.Name)
	}
	mt, ok := constants.CanonicalMediaType(raw)
	if !ok {
		return "", fmt.Errorf("%s has type %q: %w", f.Name, raw, common.ErrUnsupportedType)
	}
	if f.Open == nil {
		return "", common.ValidationError{Field: "open", Value: f.Name, Message: "file has no content source"}
	}
	return mt, nil
}

// IngestFile runs one file through validate, register, process and extract.
// A validation failure registers nothing. Any later failure leaves the
// document in Error and returns a *common.ProcessingError.
func (p *Pipeline) IngestFile(ctx context.Context, f File) (Result, error) {
	log := p.logger.With("file", f.Name)
	if id := common.BatchIDFromContext(ctx); id != "" {
		log = log.With("batch_id", id)
	}
	start := time.Now()

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	mediaType, err := p.Validate(f)
	if err != nil {
		log.Warn("ingest.file.rejected", "size_bytes", f.Size, "media_type", f.MediaType, "error", err)
		return Result{}, err
	}

	doc := entity.Document{
		ID:         entity.NewDocumentID(),
		Name:       f.Name,
		SizeBytes:  f.Size,
		MediaType:  mediaType,
		Status:     constants.DocumentUploading,
		UploadedAt: p.now(),
	}
	// A failed save still registers the document in memory; it is then
	// driven to error so it never stays uploading.
	registerErr := p.store.InsertDocument(ctx, doc)
	if registerErr != nil && !errors.Is(registerErr, common.ErrPersistence) {
		return Result{}, fmt.Errorf("register %s: %w", f.Name, registerErr)
	}
	log = log.With("document_id", doc.ID)
	log.Info("ingest.file.registered", "size_bytes", doc.SizeBytes, "media_type", mediaType)

	res := Result{Document: doc}
	processing, err := p.store.ApplyDocument(ctx, doc.ID, entity.DocumentUpdate{Status: entity.Ptr(constants.DocumentProcessing)})
	if err != nil && !errors.Is(err, common.ErrPersistence) {
		return res, fmt.Errorf("start processing %s: %w", f.Name, err)
	}
	res.Document = processing
	startErr := err

	fail := func(cause error, checksum string) (Result, error) {
		upd := entity.DocumentUpdate{
			Status:       entity.Ptr(constants.DocumentError),
			ErrorMessage: entity.Ptr(cause.Error()),
		}
		if checksum != "" {
			upd.Checksum = entity.Ptr(checksum)
		}
		// the error state must land even when ctx is what failed
		d, err := p.store.ApplyDocument(context.WithoutCancel(ctx), doc.ID, upd)
		if d.ID != "" {
			res.Document = d
		}
		if err != nil {
			log.Error("ingest.file.mark_error_failed", "error", err)
		}
		log.Warn("ingest.file.failed", "error", cause, "elapsed_ms", time.Since(start).Milliseconds())
		perr := &common.ProcessingError{FileName: f.Name, DocumentID: doc.ID, Cause: cause}
		if err != nil {
			return res, errors.Join(perr, err)
		}
		return res, perr
	}

	if registerErr != nil {
		return fail(fmt.Errorf("register: %w", registerErr), "")
	}
	if startErr != nil {
		return fail(fmt.Errorf("start processing: %w", startErr), "")
	}
	if err := ctx.Err(); err != nil {
		return fail(err, "")
	}

	raw, err := p.read(f)
	if err != nil {
		return fail(err, "")
	}
	sum := sha256.Sum256(raw)
	checksum := hex.EncodeToString(sum[:])

	out, err := p.extractor.Extract(ctx, mediaType, raw)
	res.Pages, res.Warnings = out.Pages, out.Warnings
	if err != nil {
		return fail(err, checksum)
	}
	if err := ctx.Err(); err != nil {
		return fail(err, checksum)
	}

	done, err := p.store.ApplyDocument(ctx, doc.ID, entity.DocumentUpdate{
		Status:        entity.Ptr(constants.DocumentCompleted),
		ExtractedText: entity.Ptr(out.Text),
		Content:       entity.Ptr(extract.Normalize(out.Text)),
		Checksum:      entity.Ptr(checksum),
	})
	if done.ID != "" {
		res.Document = done
	}
	if err != nil {
		return res, fmt.Errorf("complete %s: %w", f.Name, err)
	}
	log.Info("ingest.file.ok", "format", out.Format, "method", out.Method, "pages", out.Pages,
		"chars", len(out.Text), "elapsed_ms", time.Since(start).Milliseconds())
	return res, nil
}

// read loads the whole file, refusing anything past the size limit even
// when the declared size was smaller.
func (p *Pipeline) read(f File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer func() { _ = rc.Close() }()

	raw, err := io.ReadAll(io.LimitReader(rc, p.maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.Name, err)
	}
	if int64(len(raw)) > p.maxSize {
		return nil, fmt.Errorf("%s exceeds %d bytes: %w", f.Name, p.maxSize, common.ErrFileTooLarge)
	}
	return raw, nil
}

func extOf(name string) string {
	return constants.NormalizeExt(filepath.Ext(name))
}
