package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	apperrors "github.com/typetester/font-tester-backend/internal/pkg/errors"
	"github.com/typetester/font-tester-backend/internal/pkg/logger"
	"go.uber.org/zap"
)

// MinIOStore keeps font blobs in an S3-compatible bucket
type MinIOStore struct {
	client  *minio.Client
	bucket  string
	baseURL string
	logger  *logger.Logger
}

// MinIOOptions configures a MinIOStore
type MinIOOptions struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
	BaseURL   string
}

// NewMinIOStore creates an object-storage-backed store
func NewMinIOStore(opts MinIOOptions, log *logger.Logger) (*MinIOStore, error) {
	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	return &MinIOStore{
		client:  client,
		bucket:  opts.Bucket,
		baseURL: strings.TrimSuffix(opts.BaseURL, "/"),
		logger:  log,
	}, nil
}

// Put uploads content under a generated object name
func (s *MinIOStore) Put(ctx context.Context, ext string, content io.Reader, size int64) (*StoredFont, error) {
	if err := s.EnsureRoot(ctx); err != nil {
		return nil, err
	}

	name, err := generateFilename(ext)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrFontMoveFailed)
	}

	if _, err := s.client.PutObject(ctx, s.bucket, name, content, size, minio.PutObjectOptions{
		ContentType: "application/octet-stream",
	}); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrFontMoveFailed)
	}

	s.logger.Info("font stored",
		zap.String("bucket", s.bucket),
		zap.String("object", name),
		zap.Int64("size", size),
	)

	return &StoredFont{Filename: name, Path: name}, nil
}

// Remove deletes the object at path; a missing object is not an error,
// RemoveObject succeeds for nonexistent keys
func (s *MinIOStore) Remove(ctx context.Context, path string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, path, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to remove font object: %w", err)
	}
	return nil
}

// ResolveURL derives the public URL for a stored filename
func (s *MinIOStore) ResolveURL(storedFilename string) string {
	return s.baseURL + "/" + url.PathEscape(storedFilename)
}

// EnsureRoot creates the bucket if it does not exist
func (s *MinIOStore) EnsureRoot(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrFontStorageDir)
	}
	if exists {
		return nil
	}

	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return apperrors.Wrap(err, apperrors.ErrFontStorageDir)
	}
	return nil
}

// RemoveRoot deletes every object in the bucket
func (s *MinIOStore) RemoveRoot(ctx context.Context) error {
	objects := s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Recursive: true})

	for obj := range objects {
		if obj.Err != nil {
			return fmt.Errorf("failed to list font objects: %w", obj.Err)
		}
		if err := s.client.RemoveObject(ctx, s.bucket, obj.Key, minio.RemoveObjectOptions{}); err != nil {
			return fmt.Errorf("failed to remove font object %q: %w", obj.Key, err)
		}
	}

	s.logger.Info("font bucket emptied", zap.String("bucket", s.bucket))
	return nil
}
