// Package s3store keeps the snapshot as a single JSON object in an S3 (or
// S3-compatible) bucket. A PutObject replaces the object atomically.
package s3store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/joseph-ayodele/reportai/internal/entity"
	"github.com/joseph-ayodele/reportai/internal/persistence"
)

// ObjectAPI is the subset of *s3.Client the store needs.
type ObjectAPI interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type Config struct {
	Bucket    string
	Key       string
	Region    string
	Endpoint  string // optional, e.g. a MinIO URL
	AccessKey string // optional; default credential chain when empty
	SecretKey string
}

type Store struct {
	client ObjectAPI
	bucket string
	key    string
	logger *slog.Logger
}

var _ persistence.Persister = (*Store)(nil)

func New(client ObjectAPI, bucket, key string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{client: client, bucket: bucket, key: key, logger: logger}
}

// Open builds an S3 client from cfg.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*Store, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return New(client, cfg.Bucket, cfg.Key, logger), nil
}

func (s *Store) Load(ctx context.Context) (*entity.Snapshot, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, nil
		}
		return nil, fmt.Errorf("get s3://%s/%s: %w", s.bucket, s.key, err)
	}
	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			s.logger.Warn("s3 response body close error", "error", err)
		}
	}(out.Body)

	b, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("read s3://%s/%s: %w", s.bucket, s.key, err)
	}
	return persistence.DecodeSnapshot(b)
}

func (s *Store) Save(ctx context.Context, snap *entity.Snapshot, _ ...persistence.Change) error {
	b, err := persistence.EncodeSnapshot(snap)
	if err != nil {
		return err
	}
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(s.key),
		Body:          bytes.NewReader(b),
		ContentLength: aws.Int64(int64(len(b))),
		ContentType:   aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("put s3://%s/%s: %w", s.bucket, s.key, err)
	}
	s.logger.Debug("s3store.save", "bucket", s.bucket, "key", s.key, "bytes", len(b))
	return nil
}

func (s *Store) Close() error { return nil }
