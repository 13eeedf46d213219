package pages

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/goliatone/go-sitecms/internal/identity"
)

type memoryRepository struct {
	mu     sync.RWMutex
	byID   map[int64]*Entry
	bySlug map[string]int64
	now    func() time.Time
}

// NewMemoryRepository constructs an in-memory page registry.
func NewMemoryRepository() Repository {
	return &memoryRepository{
		byID:   make(map[int64]*Entry),
		bySlug: make(map[string]int64),
		now:    time.Now,
	}
}

func (m *memoryRepository) Create(_ context.Context, entry *Entry) (*Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cloned := cloneEntry(entry)
	cloned.PageSlug = normalizeSlug(cloned.PageSlug)
	cloned.ID = identity.PageRegistryUUID(cloned.PageID)
	if _, exists := m.byID[cloned.PageID]; exists {
		return nil, fmt.Errorf("page registry create: page id %d already exists", cloned.PageID)
	}
	if _, exists := m.bySlug[cloned.PageSlug]; exists {
		return nil, fmt.Errorf("page registry create: slug %q already exists", cloned.PageSlug)
	}
	if cloned.UpdatedAt.IsZero() {
		cloned.UpdatedAt = m.now().UTC()
	}
	m.byID[cloned.PageID] = cloned
	m.bySlug[cloned.PageSlug] = cloned.PageID
	return cloneEntry(cloned), nil
}

func (m *memoryRepository) GetByPageID(_ context.Context, pageID int64) (*Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	record, ok := m.byID[pageID]
	if !ok {
		return nil, &NotFoundError{Resource: "page", Key: fmt.Sprint(pageID)}
	}
	return cloneEntry(record), nil
}

func (m *memoryRepository) GetBySlug(_ context.Context, slug string) (*Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	normalized := normalizeSlug(slug)
	id, ok := m.bySlug[normalized]
	if !ok {
		return nil, &NotFoundError{Resource: "page", Key: normalized}
	}
	return cloneEntry(m.byID[id]), nil
}

func (m *memoryRepository) List(_ context.Context) ([]*Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	records := make([]*Entry, 0, len(m.byID))
	for _, record := range m.byID {
		records = append(records, cloneEntry(record))
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].PageID < records[j].PageID
	})
	return records, nil
}

func (m *memoryRepository) UpdateTarget(_ context.Context, pageID int64, target *string) (*Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	record, ok := m.byID[pageID]
	if !ok {
		return nil, &NotFoundError{Resource: "page", Key: fmt.Sprint(pageID)}
	}
	if target == nil {
		record.TargetPageSlug = nil
	} else {
		value := *target
		record.TargetPageSlug = &value
	}
	record.UpdatedAt = m.now().UTC()
	return cloneEntry(record), nil
}

type memorySegmentRepository struct {
	mu      sync.RWMutex
	entries map[string]*SegmentEntry
}

// NewMemorySegmentRepository constructs an in-memory segment registry.
func NewMemorySegmentRepository() SegmentRepository {
	return &memorySegmentRepository{entries: make(map[string]*SegmentEntry)}
}

func (m *memorySegmentRepository) Upsert(_ context.Context, entry *SegmentEntry) (*SegmentEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	record := *entry
	record.PageSlug = normalizeSlug(record.PageSlug)
	record.ID = identity.SegmentRegistryUUID(record.PageSlug, record.SegmentID)
	m.entries[record.ID.String()] = &record
	out := record
	return &out, nil
}

func (m *memorySegmentRepository) ListForPage(_ context.Context, slug string) ([]*SegmentEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	normalized := normalizeSlug(slug)
	records := make([]*SegmentEntry, 0)
	for _, record := range m.entries {
		if record.PageSlug != normalized {
			continue
		}
		out := *record
		records = append(records, &out)
	}
	sort.Slice(records, func(i, j int) bool {
		if records[i].Position != records[j].Position {
			return records[i].Position < records[j].Position
		}
		return records[i].SegmentID < records[j].SegmentID
	})
	return records, nil
}
