package navigation

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/goliatone/go-sitecms/internal/identity"
	"github.com/goliatone/go-sitecms/internal/locale"
)

type memoryRepository struct {
	mu    sync.RWMutex
	links map[uuid.UUID]*Link
}

// NewMemoryRepository constructs an in-memory navigation repository.
func NewMemoryRepository() Repository {
	return &memoryRepository{links: make(map[uuid.UUID]*Link)}
}

func (m *memoryRepository) Save(_ context.Context, link *Link) (*Link, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	record := cloneLink(link)
	if record.ID == uuid.Nil {
		language := ""
		if record.Language != nil {
			language = *record.Language
		}
		record.ID = identity.NavigationLinkUUID(record.Slug, language)
	}
	m.links[record.ID] = record
	return cloneLink(record), nil
}

func (m *memoryRepository) List(_ context.Context, language *locale.Language) ([]*Link, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	code := languageString(language)
	out := make([]*Link, 0, len(m.links))
	for _, link := range m.links {
		if link.Language != nil && (code == nil || *link.Language != *code) {
			continue
		}
		out = append(out, cloneLink(link))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Position != out[j].Position {
			return out[i].Position < out[j].Position
		}
		return out[i].Label < out[j].Label
	})
	return out, nil
}

// UpdateTargetBySlugLike matches a literal, case-insensitive substring, the
// same rule the bun store applies.
func (m *memoryRepository) UpdateTargetBySlugLike(_ context.Context, fragment string, target *string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	fragment = strings.ToLower(fragment)
	var affected int64
	for _, link := range m.links {
		if !strings.Contains(strings.ToLower(link.Slug), fragment) {
			continue
		}
		if target == nil {
			link.TargetPageSlug = nil
		} else {
			v := *target
			link.TargetPageSlug = &v
		}
		affected++
	}
	return affected, nil
}
