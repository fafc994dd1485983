package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/jakeh134/motionflow/config"
	"github.com/jakeh134/motionflow/pkg/apperr"
)

// DocumentStorage holds the uploaded motion documents.
type DocumentStorage interface {
	Upload(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) error
	PresignedURL(ctx context.Context, objectName string) (string, error)
	Delete(ctx context.Context, objectName string) error
}

// MinioStorage stores documents in a MinIO bucket.
type MinioStorage struct {
	client *minio.Client
	bucket string
	config *config.MinioConfig
}

func NewMinioStorage(cfg *config.MinioConfig) (*MinioStorage, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	return &MinioStorage{
		client: client,
		bucket: cfg.Bucket,
		config: cfg,
	}, nil
}

// EnsureBucket creates the bucket if it doesn't exist
func (s *MinioStorage) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket: %w", err)
	}

	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return nil
}

func (s *MinioStorage) Upload(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) error {
	_, err := s.client.PutObject(ctx, s.bucket, objectName, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return apperr.NewRetryableError(fmt.Errorf("failed to upload document: %w", err), "document storage unavailable")
	}
	return nil
}

// PresignedURL returns a time-limited download link for the document, or the
// plain object URL when the bucket is publicly readable.
func (s *MinioStorage) PresignedURL(ctx context.Context, objectName string) (string, error) {
	if s.config.PublicRead {
		return s.PublicURL(objectName), nil
	}
	expiry := time.Duration(s.config.ExpireDays) * 24 * time.Hour
	u, err := s.client.PresignedGetObject(ctx, s.bucket, objectName, expiry, nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}
	return u.String(), nil
}

func (s *MinioStorage) Delete(ctx context.Context, objectName string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, objectName, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	return nil
}

// PublicURL returns the direct object URL (if bucket policy allows)
func (s *MinioStorage) PublicURL(objectName string) string {
	protocol := "http"
	if s.config.UseSSL {
		protocol = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", protocol, s.config.Endpoint, s.bucket, objectName)
}

// MemoryStorage keeps documents in process memory. Used when no MinIO
// endpoint is configured and in tests.
type MemoryStorage struct {
	mu      sync.RWMutex
	objects map[string]memoryObject
}

type memoryObject struct {
	data        []byte
	contentType string
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{objects: make(map[string]memoryObject)}
}

func (s *MemoryStorage) Upload(ctx context.Context, objectName string, reader io.Reader, _ int64, contentType string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return fmt.Errorf("failed to read document: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[objectName] = memoryObject{data: data, contentType: contentType}
	return nil
}

func (s *MemoryStorage) PresignedURL(_ context.Context, objectName string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.objects[objectName]; !ok {
		return "", fmt.Errorf("document %s: %w", objectName, apperr.ErrNotFound)
	}
	return "memory://" + objectName, nil
}

func (s *MemoryStorage) Delete(_ context.Context, objectName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, objectName)
	return nil
}

// Open returns a reader over a stored document.
func (s *MemoryStorage) Open(objectName string) (io.Reader, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[objectName]
	if !ok {
		return nil, false
	}
	return bytes.NewReader(obj.data), true
}

// NewDocumentStorage picks MinIO when an endpoint is configured.
func NewDocumentStorage(ctx context.Context, cfg *config.MinioConfig) (DocumentStorage, error) {
	if cfg.Endpoint == "" {
		return NewMemoryStorage(), nil
	}
	s, err := NewMinioStorage(cfg)
	if err != nil {
		return nil, err
	}
	if err := s.EnsureBucket(ctx); err != nil {
		return nil, err
	}
	return s, nil
}
