package pages

import (
	"context"
	"fmt"
	"time"

	"github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repository-cache/cache"
	repositorycache "github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-sitecms/internal/identity"
)

// BunRepository implements Repository with optional caching.
type BunRepository struct {
	repo repository.Repository[*Entry]
	now  func() time.Time
}

// NewBunRepository creates a page registry repository without caching.
func NewBunRepository(db *bun.DB) *BunRepository {
	return NewBunRepositoryWithCache(db, nil, nil)
}

// NewBunRepositoryWithCache creates a page registry repository with caching support.
func NewBunRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, serializer cache.KeySerializer) *BunRepository {
	base := NewEntryRepository(db)
	if cacheService != nil && serializer != nil {
		base = repositorycache.New(base, cacheService, serializer)
	}
	return &BunRepository{repo: base, now: time.Now}
}

var _ Repository = (*BunRepository)(nil)

func (r *BunRepository) Create(ctx context.Context, entry *Entry) (*Entry, error) {
	record := cloneEntry(entry)
	record.PageSlug = normalizeSlug(record.PageSlug)
	record.ID = identity.PageRegistryUUID(record.PageID)
	if record.UpdatedAt.IsZero() {
		record.UpdatedAt = r.now().UTC()
	}
	created, err := r.repo.Create(ctx, record)
	if err != nil {
		return nil, fmt.Errorf("page registry create: %w", err)
	}
	return created, nil
}

func (r *BunRepository) GetByPageID(ctx context.Context, pageID int64) (*Entry, error) {
	record, err := r.repo.GetByID(ctx, identity.PageRegistryUUID(pageID).String())
	if err != nil {
		return nil, mapRepositoryError(err, "page", fmt.Sprint(pageID))
	}
	return record, nil
}

func (r *BunRepository) GetBySlug(ctx context.Context, slug string) (*Entry, error) {
	normalized := normalizeSlug(slug)
	record, err := r.repo.GetByIdentifier(ctx, normalized)
	if err != nil {
		return nil, mapRepositoryError(err, "page", normalized)
	}
	return record, nil
}

func (r *BunRepository) List(ctx context.Context) ([]*Entry, error) {
	records, _, err := r.repo.List(ctx, repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Order("page_id ASC")
	}))
	return records, err
}

func (r *BunRepository) UpdateTarget(ctx context.Context, pageID int64, target *string) (*Entry, error) {
	existing, err := r.GetByPageID(ctx, pageID)
	if err != nil {
		return nil, err
	}
	existing.TargetPageSlug = target
	existing.UpdatedAt = r.now().UTC()
	updated, err := r.repo.Update(ctx, existing,
		repository.UpdateByID(existing.ID.String()),
		repository.UpdateColumns("target_page_slug", "updated_at"),
	)
	if err != nil {
		return nil, mapRepositoryError(err, "page", fmt.Sprint(pageID))
	}
	return updated, nil
}

// BunSegmentRepository implements SegmentRepository.
type BunSegmentRepository struct {
	repo repository.Repository[*SegmentEntry]
}

func NewBunSegmentRepository(db *bun.DB) *BunSegmentRepository {
	return &BunSegmentRepository{repo: NewSegmentEntryRepository(db)}
}

var _ SegmentRepository = (*BunSegmentRepository)(nil)

func (r *BunSegmentRepository) Upsert(ctx context.Context, entry *SegmentEntry) (*SegmentEntry, error) {
	record := *entry
	record.PageSlug = normalizeSlug(record.PageSlug)
	record.ID = identity.SegmentRegistryUUID(record.PageSlug, record.SegmentID)

	if _, err := r.repo.GetByID(ctx, record.ID.String()); err != nil {
		if !errors.IsCategory(err, repository.CategoryDatabaseNotFound) {
			return nil, fmt.Errorf("segment registry lookup: %w", err)
		}
		return r.repo.Create(ctx, &record)
	}
	return r.repo.Update(ctx, &record,
		repository.UpdateByID(record.ID.String()),
		repository.UpdateColumns("segment_type", "label", "position"),
	)
}

func (r *BunSegmentRepository) ListForPage(ctx context.Context, slug string) ([]*SegmentEntry, error) {
	normalized := normalizeSlug(slug)
	records, _, err := r.repo.List(ctx, repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("?TableAlias.page_slug = ?", normalized).Order("position ASC", "segment_id ASC")
	}))
	return records, err
}

func mapRepositoryError(err error, resource, key string) error {
	if err == nil {
		return nil
	}
	if errors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return &NotFoundError{Resource: resource, Key: key}
	}
	return fmt.Errorf("%s repository error: %w", resource, err)
}
