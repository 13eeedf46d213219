package pages

import (
	"context"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Repository exposes page registry persistence.
type Repository interface {
	Create(ctx context.Context, entry *Entry) (*Entry, error)
	GetByPageID(ctx context.Context, pageID int64) (*Entry, error)
	GetBySlug(ctx context.Context, slug string) (*Entry, error)
	List(ctx context.Context) ([]*Entry, error)
	UpdateTarget(ctx context.Context, pageID int64, target *string) (*Entry, error)
}

// SegmentRepository exposes segment_registry persistence.
type SegmentRepository interface {
	Upsert(ctx context.Context, entry *SegmentEntry) (*SegmentEntry, error)
	ListForPage(ctx context.Context, slug string) ([]*SegmentEntry, error)
}

// NewEntryRepository creates the generic repository for page_registry.
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
			return "page_slug"
		},
		GetIdentifierValue: func(entry *Entry) string {
			return entry.PageSlug
		},
	})
}

// NewSegmentEntryRepository creates the generic repository for segment_registry.
func NewSegmentEntryRepository(db *bun.DB) repository.Repository[*SegmentEntry] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*SegmentEntry]{
		NewRecord: func() *SegmentEntry { return &SegmentEntry{} },
		GetID: func(entry *SegmentEntry) uuid.UUID {
			return entry.ID
		},
		SetID: func(entry *SegmentEntry, id uuid.UUID) {
			entry.ID = id
		},
		GetIdentifier: func() string {
			return "segment_id"
		},
		GetIdentifierValue: func(entry *SegmentEntry) string {
			return entry.SegmentID
		},
	})
}

// Migrate creates the registry tables.
func Migrate(ctx context.Context, db bun.IDB) error {
	for _, model := range []any{(*Entry)(nil), (*SegmentEntry)(nil)} {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return err
		}
	}
	_, err := db.NewCreateIndex().
		Model((*SegmentEntry)(nil)).
		Index("segment_registry_page_segment_uidx").
		Unique().
		Column("page_slug", "segment_id").
		IfNotExists().
		Exec(ctx)
	return err
}
