package interfaces

import (
	"context"
	"time"
)

// CacheProvider stores opaque payloads with a TTL. Get reports a miss with
// found=false and a nil error.
type CacheProvider interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
