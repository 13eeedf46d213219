package content

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/goliatone/go-sitecms/internal/locale"
)

// MemoryStore is an in-memory Store for tests and local development.
type MemoryStore struct {
	mu   sync.RWMutex
	rows map[string]*Row
	now  func() time.Time
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rows: make(map[string]*Row), now: time.Now}
}

var (
	_ Store  = (*MemoryStore)(nil)
	_ Lister = (*MemoryStore)(nil)
)

func memoryKey(pageSlug, sectionKey string, language *locale.Language) string {
	return Key{PageSlug: pageSlug, SectionKey: sectionKey, Language: language}.String()
}

func (m *MemoryStore) Get(_ context.Context, pageSlug, sectionKey string, language *locale.Language) (*Row, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	row, ok := m.rows[memoryKey(pageSlug, sectionKey, language)]
	if !ok {
		return nil, ErrRowNotFound
	}
	return cloneRow(row), nil
}

func (m *MemoryStore) Upsert(_ context.Context, row Row) (*Row, bool, error) {
	if err := row.Key().validate(); err != nil {
		return nil, false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	key := memoryKey(row.PageSlug, row.SectionKey, row.Language)
	_, exists := m.rows[key]
	stored := cloneRow(&row)
	if stored.UpdatedAt.IsZero() {
		stored.UpdatedAt = m.now().UTC()
	}
	m.rows[key] = stored
	return cloneRow(stored), !exists, nil
}

func (m *MemoryStore) ListSection(_ context.Context, sectionKey string, language *locale.Language) ([]*Row, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*Row
	for _, row := range m.rows {
		if row.SectionKey != sectionKey || !sameLanguage(row.Language, language) {
			continue
		}
		out = append(out, cloneRow(row))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PageSlug < out[j].PageSlug })
	return out, nil
}

// Seed stores rows as-is, used by tests and fixtures.
func (m *MemoryStore) Seed(rows ...Row) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range rows {
		m.rows[memoryKey(rows[i].PageSlug, rows[i].SectionKey, rows[i].Language)] = cloneRow(&rows[i])
	}
}

func sameLanguage(a, b *locale.Language) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func cloneRow(row *Row) *Row {
	if row == nil {
		return nil
	}
	copied := *row
	if row.Language != nil {
		copied.Language = row.Language.Ptr()
	}
	return &copied
}
