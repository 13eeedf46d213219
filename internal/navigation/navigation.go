// Package navigation stores the site navigation links. Links carry their
// own copy of a page's shortcut target, kept in step on a best-effort basis.
package navigation

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-sitecms/internal/locale"
)

// Link is one navigation_links row. A nil Language is shown for every
// locale.
type Link struct {
	bun.BaseModel `bun:"table:navigation_links,alias:nl"`

	ID             uuid.UUID `bun:",pk,type:uuid" json:"id"`
	Label          string    `bun:"label,notnull" json:"label"`
	Slug           string    `bun:"slug,notnull" json:"slug"`
	TargetPageSlug *string   `bun:"target_page_slug" json:"target_page_slug"`
	Position       int       `bun:"position,notnull,default:0" json:"position"`
	Language       *string   `bun:"language" json:"language"`
}

// Href returns the slug the link should point at, honouring its target.
func (l *Link) Href() string {
	if l.TargetPageSlug != nil && strings.TrimSpace(*l.TargetPageSlug) != "" {
		return strings.TrimSpace(*l.TargetPageSlug)
	}
	return l.Slug
}

// Repository exposes navigation persistence.
type Repository interface {
	Save(ctx context.Context, link *Link) (*Link, error)
	List(ctx context.Context, language *locale.Language) ([]*Link, error)
	// UpdateTargetBySlugLike sets target_page_slug on every link whose slug
	// contains fragment, compared literally and without case, and reports how
	// many rows changed.
	UpdateTargetBySlugLike(ctx context.Context, fragment string, target *string) (int64, error)
}

// Migrate creates navigation_links.
func Migrate(ctx context.Context, db bun.IDB) error {
	_, err := db.NewCreateTable().Model((*Link)(nil)).IfNotExists().Exec(ctx)
	return err
}

func cloneLink(src *Link) *Link {
	out := *src
	if src.TargetPageSlug != nil {
		v := *src.TargetPageSlug
		out.TargetPageSlug = &v
	}
	if src.Language != nil {
		v := *src.Language
		out.Language = &v
	}
	return &out
}

func languageString(language *locale.Language) *string {
	if language == nil {
		return nil
	}
	v := string(*language)
	return &v
}
