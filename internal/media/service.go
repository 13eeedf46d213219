package media

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/goliatone/go-sitecms/internal/apperrors"
	"github.com/goliatone/go-sitecms/internal/logging"
	"github.com/goliatone/go-sitecms/pkg/interfaces"
)

// Service validates and uploads editor media.
type Service struct {
	storage       interfaces.ObjectStorage
	defaultBucket string
	maxSize       int
	logger        interfaces.Logger
	now           func() time.Time
}

// ServiceOption customises the media service behaviour.
type ServiceOption func(*Service)

func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithDefaultBucket sets the bucket used when an upload names none.
func WithDefaultBucket(bucket string) ServiceOption {
	return func(s *Service) {
		s.defaultBucket = strings.TrimSpace(bucket)
	}
}

// WithMaxSize overrides MaxUploadSize.
func WithMaxSize(size int) ServiceOption {
	return func(s *Service) {
		if size > 0 {
			s.maxSize = size
		}
	}
}

func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func NewService(storage interfaces.ObjectStorage, opts ...ServiceOption) (*Service, error) {
	if storage == nil {
		return nil, ErrStorageRequired
	}
	s := &Service{
		storage: storage,
		maxSize: MaxUploadSize,
		logger:  logging.NoOp(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// UploadInput is one file sent by an editor.
type UploadInput struct {
	Bucket      string
	FileName    string
	Body        []byte
	ContentType string
}

// Upload normalizes the object path, sniffs a missing content type and
// stores the body. Storage failures are integration errors.
func (s *Service) Upload(ctx context.Context, in UploadInput) (*Asset, error) {
	bucket := strings.TrimSpace(in.Bucket)
	if bucket == "" {
		bucket = s.defaultBucket
	}
	if bucket == "" {
		return nil, ErrBucketRequired
	}
	if len(in.Body) == 0 {
		return nil, ErrBodyRequired
	}
	if len(in.Body) > s.maxSize {
		return nil, ErrBodyTooLarge
	}
	objectPath, err := NormalizePath(in.FileName)
	if err != nil {
		return nil, err
	}
	contentType := strings.TrimSpace(in.ContentType)
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(in.Body)
	}

	logger := s.logger.WithContext(ctx)
	url, err := s.storage.Upload(ctx, bucket, objectPath, in.Body, contentType)
	if err != nil {
		logger.Error("media.upload.failed", "bucket", bucket, "path", objectPath, "error", err)
		return nil, apperrors.Integration("MEDIA_UPLOAD_FAILED", err, "media: upload %s", objectPath)
	}
	logger.Info("media.upload.success", "bucket", bucket, "path", objectPath, "size", len(in.Body))

	return &Asset{
		Bucket:      bucket,
		Path:        objectPath,
		URL:         url,
		ContentType: contentType,
		Size:        len(in.Body),
		UploadedAt:  s.now().UTC(),
	}, nil
}
