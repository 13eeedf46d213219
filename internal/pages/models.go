// Package pages persists the page registry: the admin list of pages, their
// numeric ids and their optional shortcut targets.
package pages

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-sitecms/internal/apperrors"
)

// Entry is one page_registry row. A non-nil TargetPageSlug turns the page
// into a shortcut that redirects to the target.
type Entry struct {
	bun.BaseModel `bun:"table:page_registry,alias:pr"`

	ID             uuid.UUID `bun:",pk,type:uuid" json:"-"`
	PageID         int64     `bun:"page_id,notnull,unique" json:"page_id"`
	PageSlug       string    `bun:"page_slug,notnull,unique" json:"page_slug"`
	PageTitle      string    `bun:"page_title,notnull,default:''" json:"page_title"`
	TargetPageSlug *string   `bun:"target_page_slug" json:"target_page_slug"`
	UpdatedAt      time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`
}

// IsShortcut reports whether the page redirects elsewhere.
func (e *Entry) IsShortcut() bool {
	return e != nil && e.TargetPageSlug != nil && strings.TrimSpace(*e.TargetPageSlug) != ""
}

// Target returns the shortcut target or an empty string.
func (e *Entry) Target() string {
	if !e.IsShortcut() {
		return ""
	}
	return strings.TrimSpace(*e.TargetPageSlug)
}

// SegmentEntry is one segment_registry row listing a segment a page is
// expected to carry.
type SegmentEntry struct {
	bun.BaseModel `bun:"table:segment_registry,alias:sr"`

	ID          uuid.UUID `bun:",pk,type:uuid" json:"-"`
	PageSlug    string    `bun:"page_slug,notnull" json:"page_slug"`
	SegmentID   string    `bun:"segment_id,notnull" json:"segment_id"`
	SegmentType string    `bun:"segment_type,notnull,default:''" json:"segment_type"`
	Label       string    `bun:"label,notnull,default:''" json:"label"`
	Position    int       `bun:"position,notnull,default:0" json:"position"`
}

// ErrNotFound is the cause of every NotFoundError.
var ErrNotFound = apperrors.New(apperrors.KindNotFound, "PAGE_NOT_FOUND", "pages: not found")

// NotFoundError is returned when a registry record cannot be located.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

func cloneEntry(src *Entry) *Entry {
	if src == nil {
		return nil
	}
	out := *src
	if src.TargetPageSlug != nil {
		target := *src.TargetPageSlug
		out.TargetPageSlug = &target
	}
	return &out
}

func normalizeSlug(slug string) string {
	return strings.Trim(strings.TrimSpace(slug), "/")
}
