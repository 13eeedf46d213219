package media

import (
	"context"
	"sync"
)

// StoredObject is what MemoryStorage keeps per key.
type StoredObject struct {
	Body        []byte
	ContentType string
}

// MemoryStorage keeps uploads in process. Err, when set, fails every upload.
type MemoryStorage struct {
	mu            sync.RWMutex
	objects       map[string]StoredObject
	publicBaseURL string
	Err           error
}

func NewMemoryStorage(publicBaseURL string) *MemoryStorage {
	return &MemoryStorage{objects: make(map[string]StoredObject), publicBaseURL: publicBaseURL}
}

func (m *MemoryStorage) Upload(_ context.Context, bucket, objectPath string, body []byte, contentType string) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	copied := append([]byte(nil), body...)
	m.mu.Lock()
	m.objects[bucket+"/"+objectPath] = StoredObject{Body: copied, ContentType: contentType}
	m.mu.Unlock()
	return PublicURL(m.publicBaseURL, bucket, objectPath), nil
}

// Object returns a stored object by bucket and path.
func (m *MemoryStorage) Object(bucket, objectPath string) (StoredObject, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[bucket+"/"+objectPath]
	return obj, ok
}
