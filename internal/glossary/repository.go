package glossary

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-sitecms/internal/identity"
)

// NewEntryRepository creates the generic repository for glossary rows.
func NewEntryRepository(db *bun.DB) repository.Repository[*Entry] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Entry]{
		NewRecord: func() *Entry { return &Entry{} },
		GetID: func(entry *Entry) uuid.UUID {
			return entry.ID
		},
		SetID: func(entry *Entry, id uuid.UUID) {
			entry.ID = id
		},
		GetIdentifier: func() string {
			return "term"
		},
		GetIdentifierValue: func(entry *Entry) string {
			return entry.Term
		},
	})
}

// BunRepository stores the glossary through bun.
type BunRepository struct {
	repo repository.Repository[*Entry]
}

func NewBunRepository(db *bun.DB) *BunRepository {
	return &BunRepository{repo: NewEntryRepository(db)}
}

var _ Repository = (*BunRepository)(nil)

func (r *BunRepository) List(ctx context.Context) ([]*Entry, error) {
	records, _, err := r.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	sortEntries(records)
	return records, nil
}

func (r *BunRepository) Upsert(ctx context.Context, entry *Entry) (*Entry, error) {
	record := cloneEntry(entry)
	if record.ID == uuid.Nil {
		record.ID = identity.GlossaryUUID(record.Term)
	}
	if _, err := r.repo.GetByID(ctx, record.ID.String()); err != nil {
		if !errors.IsCategory(err, repository.CategoryDatabaseNotFound) {
			return nil, fmt.Errorf("glossary lookup: %w", err)
		}
		return r.repo.Create(ctx, record)
	}
	return r.repo.Update(ctx, record,
		repository.UpdateByID(record.ID.String()),
		repository.UpdateColumns("term", "term_type", "translations", "context", "updated_at"),
	)
}

func (r *BunRepository) Delete(ctx context.Context, term string) error {
	id := identity.GlossaryUUID(term)
	if _, err := r.repo.GetByID(ctx, id.String()); err != nil {
		if errors.IsCategory(err, repository.CategoryDatabaseNotFound) {
			return fmt.Errorf("%w: %q", ErrNotFound, term)
		}
		return err
	}
	return r.repo.Delete(ctx, &Entry{ID: id})
}

type memoryRepository struct {
	mu      sync.RWMutex
	entries map[string]*Entry
}

// NewMemoryRepository constructs an in-memory glossary.
func NewMemoryRepository() Repository {
	return &memoryRepository{entries: make(map[string]*Entry)}
}

func (m *memoryRepository) List(_ context.Context) ([]*Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Entry, 0, len(m.entries))
	for _, entry := range m.entries {
		out = append(out, cloneEntry(entry))
	}
	sortEntries(out)
	return out, nil
}

func (m *memoryRepository) Upsert(_ context.Context, entry *Entry) (*Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	record := cloneEntry(entry)
	m.entries[strings.ToLower(record.Term)] = record
	return cloneEntry(record), nil
}

func (m *memoryRepository) Delete(_ context.Context, term string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := strings.ToLower(strings.TrimSpace(term))
	if _, ok := m.entries[key]; !ok {
		return fmt.Errorf("%w: %q", ErrNotFound, term)
	}
	delete(m.entries, key)
	return nil
}
