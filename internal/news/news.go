// Package news stores localized news articles and imports them from Markdown.
package news

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-sitecms/internal/apperrors"
)

var (
	ErrNotFound     = apperrors.New(apperrors.KindNotFound, "NEWS_NOT_FOUND", "news: article not found")
	ErrSlugRequired = apperrors.Validation("NEWS_SLUG_REQUIRED", "news: slug is required")
	ErrTitleMissing = apperrors.Validation("NEWS_TITLE_REQUIRED", "news: title is required")
)

// Article is one localized news_articles row. Slug plus language is unique.
type Article struct {
	bun.BaseModel `bun:"table:news_articles,alias:na"`

	ID           uuid.UUID `bun:",pk,type:uuid" json:"id"`
	Slug         string    `bun:"slug,notnull" json:"slug"`
	Language     string    `bun:"language,notnull" json:"language"`
	Title        string    `bun:"title,notnull" json:"title"`
	Summary      string    `bun:"summary,notnull,default:''" json:"summary,omitempty"`
	Category     string    `bun:"category,notnull,default:''" json:"category,omitempty"`
	ImageURL     string    `bun:"image_url,notnull,default:''" json:"imageUrl,omitempty"`
	BodyMarkdown string    `bun:"body_markdown,notnull,default:''" json:"bodyMarkdown,omitempty"`
	BodyHTML     string    `bun:"body_html,notnull,default:''" json:"bodyHtml,omitempty"`
	Published    bool      `bun:"published,notnull" json:"published"`
	PublishedAt  time.Time `bun:"published_at,nullzero" json:"publishedAt"`
	Checksum     string    `bun:"checksum,notnull,default:''" json:"-"`
	UpdatedAt    time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updatedAt"`
}

// Filter narrows a listing.
type Filter struct {
	Languages []string
	Category  string
	// IncludeDrafts lists unpublished articles as well.
	IncludeDrafts bool
}

// Repository persists articles.
type Repository interface {
	Upsert(ctx context.Context, article *Article) (*Article, error)
	Get(ctx context.Context, slug, language string) (*Article, error)
	List(ctx context.Context, filter Filter) ([]*Article, error)
}

// Migrate creates the news table and its unique index.
func Migrate(ctx context.Context, db bun.IDB) error {
	if _, err := db.NewCreateTable().Model((*Article)(nil)).IfNotExists().Exec(ctx); err != nil {
		return err
	}
	_, err := db.NewCreateIndex().Model((*Article)(nil)).
		Index("news_articles_slug_language_idx").
		Unique().
		Column("slug", "language").
		IfNotExists().
		Exec(ctx)
	return err
}

func cloneArticle(a *Article) *Article {
	out := *a
	return &out
}

// sortLatest orders by publication date, newest first, then by slug.
func sortLatest(articles []*Article) {
	sort.SliceStable(articles, func(i, j int) bool {
		if !articles[i].PublishedAt.Equal(articles[j].PublishedAt) {
			return articles[i].PublishedAt.After(articles[j].PublishedAt)
		}
		return articles[i].Slug < articles[j].Slug
	})
}

func matches(a *Article, filter Filter) bool {
	if !filter.IncludeDrafts && !a.Published {
		return false
	}
	if filter.Category != "" && !strings.EqualFold(a.Category, filter.Category) {
		return false
	}
	if len(filter.Languages) == 0 {
		return true
	}
	for _, language := range filter.Languages {
		if a.Language == language {
			return true
		}
	}
	return false
}
