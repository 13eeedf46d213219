package media

import (
	"errors"
	"path"
	"strings"
	"time"

	"github.com/goliatone/go-slug"

	"github.com/goliatone/go-sitecms/internal/apperrors"
)

// MaxUploadSize bounds a single uploaded object.
const MaxUploadSize = 25 << 20

var (
	ErrBodyRequired     = apperrors.Validation("MEDIA_BODY_REQUIRED", "media: upload body is empty")
	ErrBodyTooLarge     = apperrors.Validation("MEDIA_BODY_TOO_LARGE", "media: upload body exceeds limit")
	ErrFileNameRequired = apperrors.Validation("MEDIA_FILE_NAME_REQUIRED", "media: file name is required")
	ErrBucketRequired   = apperrors.Validation("MEDIA_BUCKET_REQUIRED", "media: bucket is required")
	// ErrStorageRequired signals a service built without an object storage.
	ErrStorageRequired = errors.New("media: object storage is required")
)

// Asset describes an uploaded object.
type Asset struct {
	Bucket      string    `json:"bucket"`
	Path        string    `json:"path"`
	URL         string    `json:"url"`
	ContentType string    `json:"contentType"`
	Size        int       `json:"size"`
	UploadedAt  time.Time `json:"uploadedAt"`
}

// NormalizePath slugs every segment of an object path and keeps the file
// extension lowercase, so "Product Shots/Hero Image.PNG" becomes
// "product-shots/hero-image.png".
func NormalizePath(name string) (string, error) {
	name = strings.ReplaceAll(strings.TrimSpace(name), "\\", "/")
	parts := strings.Split(strings.Trim(name, "/"), "/")

	out := make([]string, 0, len(parts))
	for i, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" || part == "." || part == ".." {
			continue
		}
		ext := ""
		if i == len(parts)-1 {
			ext = strings.ToLower(path.Ext(part))
			part = strings.TrimSuffix(part, path.Ext(part))
		}
		normalized, err := slug.Normalize(part)
		if err != nil || normalized == "" {
			if ext == "" {
				continue
			}
			normalized = "file"
		}
		out = append(out, normalized+ext)
	}
	if len(out) == 0 {
		return "", ErrFileNameRequired
	}
	return strings.Join(out, "/"), nil
}

// PublicURL composes the public address of an object. An empty base falls
// back to the storage.googleapis.com host.
func PublicURL(base, bucket, objectPath string) string {
	objectPath = strings.TrimLeft(strings.TrimSpace(objectPath), "/")
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	if base != "" {
		return base + "/" + bucket + "/" + objectPath
	}
	return "https://storage.googleapis.com/" + bucket + "/" + objectPath
}
