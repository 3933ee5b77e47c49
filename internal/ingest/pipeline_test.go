package ingest

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/reportai/constants"
	"github.com/joseph-ayodele/reportai/internal/common"
	"github.com/joseph-ayodele/reportai/internal/entity"
	"github.com/joseph-ayodele/reportai/internal/extract"
	"github.com/joseph-ayodele/reportai/internal/persistence"
	"github.com/joseph-ayodele/reportai/internal/persistence/jsonfile"
	"github.com/joseph-ayodele/reportai/internal/store"
)

func newStore(t *testing.T) *store.Store {
	t.Helper()
	p := jsonfile.New(filepath.Join(t.TempDir(), "state.json"), nil)
	return store.New(context.Background(), p, nil)
}

func newPipeline(t *testing.T, ex extract.TextExtractor, opts ...Option) (*Pipeline, *store.Store) {
	t.Helper()
	st := newStore(t)
	if ex == nil {
		ex = extract.New(extract.Config{TempDir: t.TempDir()}, nil)
	}
	return New(st, ex, nil, opts...), st
}

// failOn makes extraction fail for files whose raw bytes start with marker.
func failOn(marker string) extract.TextExtractor {
	real := extract.New(extract.Config{}, nil)
	return extract.Func(func(ctx context.Context, mediaType string, raw []byte) (extract.Result, error) {
		if bytes.HasPrefix(raw, []byte(marker)) {
			return extract.Result{}, errors.Join(extract.ErrExtraction, errors.New("corrupt body"))
		}
		return real.Extract(ctx, mediaType, raw)
	})
}

func TestIngest_TwoMegabyteText(t *testing.T) {
	p, st := newPipeline(t, nil)
	body := bytes.Repeat([]byte("quarterly revenue grew steadily\n"), (2<<20)/32)
	require.Len(t, body, 2<<20)

	results, err := p.Ingest(context.Background(), []File{FromBytes("notes.txt", "text/plain", body)})
	require.NoError(t, err)
	require.Len(t, results, 1)

	docs := st.Documents()
	require.Len(t, docs, 1)
	d := docs[0]
	assert.Equal(t, constants.DocumentCompleted, d.Status)
	require.NotNil(t, d.ExtractedText)
	assert.NotEmpty(t, *d.ExtractedText)
	require.NotNil(t, d.Content)
	assert.True(t, strings.HasPrefix(*d.Content, "quarterly revenue grew steadily"))
	assert.Equal(t, int64(2<<20), d.SizeBytes)
	assert.Equal(t, constants.MediaTXT, d.MediaType)
	sum := sha256.Sum256(body)
	assert.Equal(t, hex.EncodeToString(sum[:]), d.Checksum)
	assert.Equal(t, d, results[0].Document)
}

func TestIngest_SixtyMegabyteFileIsRejected(t *testing.T) {
	p, st := newPipeline(t, nil)

	_, err := p.Ingest(context.Background(), []File{FromBytes("huge.txt", "text/plain", make([]byte, 60<<20))})
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrFileTooLarge)
	assert.ErrorIs(t, err, common.ErrValidation)
	assert.Empty(t, st.Documents())
}

func TestIngest_UnsupportedType(t *testing.T) {
	p, st := newPipeline(t, nil)

	tests := []File{
		FromBytes("photo.png", "image/png", []byte{1}),
		FromBytes("script", "", []byte("echo")),
		FromBytes("archive.zip", "zip", []byte("PK")),
	}
	for _, f := range tests {
		t.Run(f.Name, func(t *testing.T) {
			_, err := p.Ingest(context.Background(), []File{f})
			assert.ErrorIs(t, err, common.ErrUnsupportedType)
		})
	}
	assert.Empty(t, st.Documents())
}

func TestIngest_MediaTypeAliasesAndInference(t *testing.T) {
	p, st := newPipeline(t, nil)

	_, err := p.Ingest(context.Background(), []File{
		FromBytes("a.csv", "application/csv", []byte("x,y\n1,2")),
		FromBytes("b.TXT", "", []byte("inferred from name")),
	})
	require.NoError(t, err)

	docs := st.Documents()
	require.Len(t, docs, 2)
	assert.Equal(t, constants.MediaCSV, docs[0].MediaType)
	assert.Equal(t, constants.MediaTXT, docs[1].MediaType)
}

func TestIngest_ExtractionFailureStopsBatch(t *testing.T) {
	p, st := newPipeline(t, failOn("BROKEN"))

	results, err := p.Ingest(context.Background(), []File{
		FromBytes("one.txt", "text/plain", []byte("first file")),
		FromBytes("two.txt", "text/plain", []byte("BROKEN second file")),
		FromBytes("three.txt", "text/plain", []byte("never reached")),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrProcessingFailed)
	assert.ErrorIs(t, err, extract.ErrExtraction)
	var perr *common.ProcessingError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "two.txt", perr.FileName)

	require.Len(t, results, 2)
	docs := st.Documents()
	require.Len(t, docs, 2, "documents exist only for files that passed validation and were reached")
	assert.Equal(t, "one.txt", docs[0].Name)
	assert.Equal(t, constants.DocumentCompleted, docs[0].Status)
	assert.Equal(t, "two.txt", docs[1].Name)
	assert.Equal(t, constants.DocumentError, docs[1].Status)
	assert.Nil(t, docs[1].ExtractedText)
	assert.Nil(t, docs[1].Content)
	assert.Contains(t, docs[1].ErrorMessage, "corrupt body")
	assert.Equal(t, perr.DocumentID, docs[1].ID)
}

func TestIngest_ValidationFailureStopsBatch(t *testing.T) {
	p, st := newPipeline(t, nil, WithMaxFileSize(16))

	results, err := p.Ingest(context.Background(), []File{
		FromBytes("small.txt", "text/plain", []byte("tiny")),
		FromBytes("big.txt", "text/plain", []byte("this one is too long")),
		FromBytes("after.txt", "text/plain", []byte("skipped")),
	})
	assert.ErrorIs(t, err, common.ErrFileTooLarge)
	assert.Len(t, results, 1)
	require.Len(t, st.Documents(), 1)
	assert.Equal(t, "small.txt", st.Documents()[0].Name)
}

func TestIngest_UnderstatedSizeIsCaughtWhileReading(t *testing.T) {
	p, st := newPipeline(t, nil, WithMaxFileSize(16))
	f := File{
		Name:      "liar.txt",
		MediaType: "text/plain",
		Size:      4,
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader(strings.Repeat("x", 64))), nil
		},
	}

	_, err := p.Ingest(context.Background(), []File{f})
	assert.ErrorIs(t, err, common.ErrProcessingFailed)
	assert.ErrorIs(t, err, common.ErrFileTooLarge)
	docs := st.Documents()
	require.Len(t, docs, 1)
	assert.Equal(t, constants.DocumentError, docs[0].Status)
}

func TestIngest_OpenFailure(t *testing.T) {
	p, st := newPipeline(t, nil)
	f := File{Name: "gone.txt", Size: 3, Open: func() (io.ReadCloser, error) { return nil, errors.New("file vanished") }}

	_, err := p.Ingest(context.Background(), []File{f})
	assert.ErrorIs(t, err, common.ErrProcessingFailed)
	require.Len(t, st.Documents(), 1)
	assert.Equal(t, constants.DocumentError, st.Documents()[0].Status)
}

func TestIngest_CancelledBeforeStart(t *testing.T) {
	p, st := newPipeline(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Ingest(ctx, []File{FromBytes("a.txt", "text/plain", []byte("a"))})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, st.Documents())
}

func TestIngest_CancelledDuringExtraction(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	ex := extract.Func(func(context.Context, string, []byte) (extract.Result, error) {
		cancel()
		return extract.Result{Text: "late text"}, nil
	})
	p, st := newPipeline(t, ex)

	_, err := p.Ingest(ctx, []File{FromBytes("a.txt", "text/plain", []byte("a"))})
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, err, common.ErrProcessingFailed)

	docs := st.Documents()
	require.Len(t, docs, 1)
	assert.Equal(t, constants.DocumentError, docs[0].Status)
	assert.Nil(t, docs[0].ExtractedText, "no partial content is committed")
}

func TestIngest_DocumentsFollowSubmissionOrder(t *testing.T) {
	p, st := newPipeline(t, nil)
	var files []File
	names := []string{"c.txt", "a.txt", "b.txt", "e.txt", "d.txt"}
	for _, n := range names {
		files = append(files, FromBytes(n, "", []byte("content of "+n)))
	}

	_, err := p.Ingest(context.Background(), files)
	require.NoError(t, err)

	var got []string
	for _, d := range st.Documents() {
		got = append(got, d.Name)
		assert.Equal(t, constants.DocumentCompleted, d.Status)
	}
	assert.Equal(t, names, got)
}

type recordingStore struct {
	DocumentStore
	statuses []constants.DocumentStatus
}

func (r *recordingStore) InsertDocument(ctx context.Context, d entity.Document) error {
	r.statuses = append(r.statuses, d.Status)
	return r.DocumentStore.InsertDocument(ctx, d)
}

func (r *recordingStore) ApplyDocument(ctx context.Context, id string, u entity.DocumentUpdate) (entity.Document, error) {
	if u.Status != nil {
		r.statuses = append(r.statuses, *u.Status)
	}
	return r.DocumentStore.ApplyDocument(ctx, id, u)
}

func TestIngest_WalksEveryState(t *testing.T) {
	rec := &recordingStore{DocumentStore: newStore(t)}
	p := New(rec, extract.New(extract.Config{}, nil), nil)

	_, err := p.Ingest(context.Background(), []File{FromBytes("a.txt", "text/plain", []byte("a"))})
	require.NoError(t, err)
	assert.Equal(t, []constants.DocumentStatus{
		constants.DocumentUploading, constants.DocumentProcessing, constants.DocumentCompleted,
	}, rec.statuses)
}

// diskFull fails every save from the failFrom-th on (1-based).
type diskFull struct {
	failFrom int
	saves    int
}

func (d *diskFull) Load(context.Context) (*entity.Snapshot, error) { return nil, nil }

func (d *diskFull) Save(context.Context, *entity.Snapshot, ...persistence.Change) error {
	d.saves++
	if d.saves >= d.failFrom {
		return errors.New("disk full")
	}
	return nil
}

func (d *diskFull) Close() error { return nil }

func TestIngest_SaveFailureLeavesDocumentInError(t *testing.T) {
	cases := []struct {
		name     string
		failFrom int
	}{
		{"register", 1},
		{"start processing", 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			st := store.New(context.Background(), &diskFull{failFrom: tc.failFrom}, nil)
			p := New(st, extract.New(extract.Config{}, nil), nil)

			results, err := p.Ingest(context.Background(), []File{
				FromBytes("a.txt", "text/plain", []byte("alpha")),
				FromBytes("b.txt", "text/plain", []byte("beta")),
			})
			require.Error(t, err)
			assert.ErrorIs(t, err, common.ErrPersistence)
			assert.ErrorIs(t, err, common.ErrProcessingFailed)

			require.Len(t, results, 1)
			assert.Equal(t, constants.DocumentError, results[0].Document.Status)
			assert.Contains(t, results[0].Document.ErrorMessage, "disk full")

			var perr *common.ProcessingError
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, results[0].Document.ID, perr.DocumentID)

			docs := st.Documents()
			require.Len(t, docs, 1)
			assert.Equal(t, results[0].Document.ID, docs[0].ID)
			assert.Equal(t, constants.DocumentError, docs[0].Status)
		})
	}
}

func TestIngest_SaveFailureOnCompletionKeepsResult(t *testing.T) {
	st := store.New(context.Background(), &diskFull{failFrom: 3}, nil)
	p := New(st, extract.New(extract.Config{}, nil), nil)

	results, err := p.Ingest(context.Background(), []File{FromBytes("a.txt", "text/plain", []byte("alpha"))})
	require.ErrorIs(t, err, common.ErrPersistence)
	require.Len(t, results, 1)
	assert.Equal(t, constants.DocumentCompleted, results[0].Document.Status)

	d, ok := st.Document(results[0].Document.ID)
	require.True(t, ok)
	assert.Equal(t, constants.DocumentCompleted, d.Status)
}
