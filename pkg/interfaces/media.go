package interfaces

import "context"

// ObjectStorage uploads binary payloads and returns the public URL of the
// stored object.
type ObjectStorage interface {
	Upload(ctx context.Context, bucket, path string, body []byte, contentType string) (string, error)
}
