package news

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

func NewArticleRepository(db *bun.DB) repository.Repository[*Article] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Article]{
		NewRecord:          func() *Article { return &Article{} },
		GetID:              func(a *Article) uuid.UUID { return a.ID },
		SetID:              func(a *Article, id uuid.UUID) { a.ID = id },
		GetIdentifier:      func() string { return "slug" },
		GetIdentifierValue: func(a *Article) string { return a.Slug },
	})
}

// BunRepository stores articles through bun.
type BunRepository struct {
	repo repository.Repository[*Article]
}

func NewBunRepository(db *bun.DB) *BunRepository {
	return &BunRepository{repo: NewArticleRepository(db)}
}

var _ Repository = (*BunRepository)(nil)

func (r *BunRepository) Upsert(ctx context.Context, article *Article) (*Article, error) {
	record := cloneArticle(article)
	record.ID = identity.NewsArticleUUID(record.Slug, record.Language)
	if _, err := r.repo.GetByID(ctx, record.ID.String()); err != nil {
		if !errors.IsCategory(err, repository.CategoryDatabaseNotFound) {
			return nil, fmt.Errorf("news lookup: %w", err)
		}
		return r.repo.Create(ctx, record)
	}
	return r.repo.Update(ctx, record,
		repository.UpdateByID(record.ID.String()),
		repository.UpdateColumns("title", "summary", "category", "image_url", "body_markdown",
			"body_html", "published", "published_at", "checksum", "updated_at"),
	)
}

func (r *BunRepository) Get(ctx context.Context, slug, language string) (*Article, error) {
	record, err := r.repo.GetByID(ctx, identity.NewsArticleUUID(slug, language).String())
	if err != nil {
		if errors.IsCategory(err, repository.CategoryDatabaseNotFound) {
			return nil, fmt.Errorf("%w: %s@%s", ErrNotFound, slug, language)
		}
		return nil, err
	}
	return record, nil
}

func (r *BunRepository) List(ctx context.Context, filter Filter) ([]*Article, error) {
	records, _, err := r.repo.List(ctx, repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
		if !filter.IncludeDrafts {
			q = q.Where("?TableAlias.published = ?", true)
		}
		if filter.Category != "" {
			q = q.Where("LOWER(?TableAlias.category) = ?", strings.ToLower(filter.Category))
		}
		if len(filter.Languages) > 0 {
			q = q.Where("?TableAlias.language IN (?)", bun.In(filter.Languages))
		}
		return q
	}))
	if err != nil {
		return nil, err
	}
	sortLatest(records)
	return records, nil
}

type memoryRepository struct {
	mu       sync.RWMutex
	articles map[uuid.UUID]*Article
}

func NewMemoryRepository() Repository {
	return &memoryRepository{articles: make(map[uuid.UUID]*Article)}
}

func (m *memoryRepository) Upsert(_ context.Context, article *Article) (*Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	record := cloneArticle(article)
	record.ID = identity.NewsArticleUUID(record.Slug, record.Language)
	m.articles[record.ID] = record
	return cloneArticle(record), nil
}

func (m *memoryRepository) Get(_ context.Context, slug, language string) (*Article, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	record, ok := m.articles[identity.NewsArticleUUID(slug, language)]
	if !ok {
		return nil, fmt.Errorf("%w: %s@%s", ErrNotFound, slug, language)
	}
	return cloneArticle(record), nil
}

func (m *memoryRepository) List(_ context.Context, filter Filter) ([]*Article, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Article, 0, len(m.articles))
	for _, article := range m.articles {
		if matches(article, filter) {
			out = append(out, cloneArticle(article))
		}
	}
	sortLatest(out)
	return out, nil
}
