package media

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

const uploadTimeout = 2 * time.Minute

// ObjectWriterFactory opens a writer for bucket/object. GCSStorage uses the
// storage client; tests substitute a buffer.
type ObjectWriterFactory func(ctx context.Context, bucket, object, contentType string) io.WriteCloser

// GCSStorage uploads objects to Google Cloud Storage.
type GCSStorage struct {
	client        *storage.Client
	open          ObjectWriterFactory
	publicBaseURL string
}

// NewGCSStorage dials GCS using application default credentials unless
// extra client options are supplied.
func NewGCSStorage(ctx context.Context, publicBaseURL string, opts ...option.ClientOption) (*GCSStorage, error) {
	opts = append(opts, option.WithScopes(storage.ScopeReadWrite))
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("media: create gcs client: %w", err)
	}
	s := &GCSStorage{client: client, publicBaseURL: publicBaseURL}
	s.open = func(ctx context.Context, bucket, object, contentType string) io.WriteCloser {
		w := client.Bucket(bucket).Object(object).NewWriter(ctx)
		if contentType != "" {
			w.ContentType = contentType
		}
		return w
	}
	return s, nil
}

// NewGCSStorageWithWriter builds a storage around a custom writer factory.
func NewGCSStorageWithWriter(open ObjectWriterFactory, publicBaseURL string) *GCSStorage {
	return &GCSStorage{open: open, publicBaseURL: publicBaseURL}
}

// Upload writes body to bucket/objectPath and returns its public URL.
func (s *GCSStorage) Upload(ctx context.Context, bucket, objectPath string, body []byte, contentType string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	w := s.open(ctx, bucket, objectPath, contentType)
	if _, err := io.Copy(w, bytes.NewReader(body)); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("media: write gcs object: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("media: close gcs writer: %w", err)
	}
	return PublicURL(s.publicBaseURL, bucket, objectPath), nil
}

// Close releases the underlying client.
func (s *GCSStorage) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}
