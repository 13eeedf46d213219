package navigation

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-sitecms/internal/identity"
	"github.com/goliatone/go-sitecms/internal/locale"
)

// NewLinkRepository creates the generic repository for navigation_links.
func NewLinkRepository(db *bun.DB) repository.Repository[*Link] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Link]{
		NewRecord: func() *Link { return &Link{} },
		GetID: func(link *Link) uuid.UUID {
			return link.ID
		},
		SetID: func(link *Link, id uuid.UUID) {
			link.ID = id
		},
		GetIdentifier: func() string {
			return "slug"
		},
		GetIdentifierValue: func(link *Link) string {
			return link.Slug
		},
	})
}

// BunRepository implements Repository on bun.
type BunRepository struct {
	db   *bun.DB
	repo repository.Repository[*Link]
}

func NewBunRepository(db *bun.DB) *BunRepository {
	return &BunRepository{db: db, repo: NewLinkRepository(db)}
}

var _ Repository = (*BunRepository)(nil)

func (r *BunRepository) Save(ctx context.Context, link *Link) (*Link, error) {
	record := cloneLink(link)
	if record.ID == uuid.Nil {
		language := ""
		if record.Language != nil {
			language = *record.Language
		}
		record.ID = identity.NavigationLinkUUID(record.Slug, language)
	}
	if _, err := r.repo.GetByID(ctx, record.ID.String()); err != nil {
		if !errors.IsCategory(err, repository.CategoryDatabaseNotFound) {
			return nil, fmt.Errorf("navigation lookup: %w", err)
		}
		return r.repo.Create(ctx, record)
	}
	return r.repo.Update(ctx, record,
		repository.UpdateByID(record.ID.String()),
		repository.UpdateColumns("label", "slug", "target_page_slug", "position", "language"),
	)
}

func (r *BunRepository) List(ctx context.Context, language *locale.Language) ([]*Link, error) {
	code := languageString(language)
	records, _, err := r.repo.List(ctx, repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
		if code == nil {
			q = q.Where("?TableAlias.language IS NULL")
		} else {
			q = q.WhereGroup(" AND ", func(g *bun.SelectQuery) *bun.SelectQuery {
				return g.Where("?TableAlias.language = ?", *code).WhereOr("?TableAlias.language IS NULL")
			})
		}
		return q.Order("position ASC", "label ASC")
	}))
	return records, err
}

func (r *BunRepository) UpdateTargetBySlugLike(ctx context.Context, fragment string, target *string) (int64, error) {
	res, err := r.db.NewUpdate().
		Model((*Link)(nil)).
		Set("target_page_slug = ?", target).
		Where("LOWER(slug) LIKE ? ESCAPE '!'", "%"+likeLiteral(strings.ToLower(fragment))+"%").
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("navigation update target: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, nil
	}
	return affected, nil
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// likeLiteral escapes LIKE wildcards so fragment only matches itself.
func likeLiteral(fragment string) string {
	return likeEscaper.Replace(fragment)
}
