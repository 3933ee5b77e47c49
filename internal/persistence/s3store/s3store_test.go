package s3store

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/reportai/constants"
	"github.com/joseph-ayodele/reportai/internal/entity"
	"github.com/joseph-ayodele/reportai/internal/persistence"
)

type fakeObjects struct {
	objects map[string][]byte
	putErr  error
}

func newFakeObjects() *fakeObjects {
	return &fakeObjects{objects: map[string][]byte{}}
}

func (f *fakeObjects) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	b, ok := f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(b))}, nil
}

func (f *fakeObjects) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	b, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)] = b
	return &s3.PutObjectOutput{}, nil
}

func TestLoad_MissingObject(t *testing.T) {
	s := New(newFakeObjects(), "bucket", "state.json", nil)

	snap, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, snap)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	objects := newFakeObjects()
	s := New(objects, "bucket", "state.json", nil)
	ctx := context.Background()

	want := entity.EmptySnapshot()
	want.Documents = append(want.Documents, entity.Document{
		ID: "doc_1", Name: "sheet.xlsx", SizeBytes: 42, MediaType: constants.MediaXLSX,
		Status: constants.DocumentProcessing, UploadedAt: time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC),
	})

	require.NoError(t, s.Save(ctx, want))
	assert.Contains(t, objects.objects, "bucket/state.json")

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLoad_CorruptObject(t *testing.T) {
	objects := newFakeObjects()
	objects.objects["bucket/state.json"] = []byte("not json")

	_, err := New(objects, "bucket", "state.json", nil).Load(context.Background())
	assert.ErrorIs(t, err, persistence.ErrCorrupt)
}

func TestSave_PropagatesPutError(t *testing.T) {
	objects := newFakeObjects()
	objects.putErr = errors.New("access denied")

	err := New(objects, "bucket", "state.json", nil).Save(context.Background(), entity.EmptySnapshot())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access denied")
}
