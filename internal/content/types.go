package content

import (
	"errors"
	"strings"
	"time"

	"github.com/goliatone/go-sitecms/internal/apperrors"
	"github.com/goliatone/go-sitecms/internal/locale"
)

// SectionPageSegments is the section key holding a page's segment array.
const SectionPageSegments = "page_segments"

// Content type tags. They are advisory; decoding also sniffs the payload.
const (
	TypeJSON     = "json"
	TypeText     = "text"
	TypeHTML     = "html"
	TypeMarkdown = "markdown"
)

var (
	// ErrRowNotFound is returned by stores when no row matches the tuple.
	ErrRowNotFound = apperrors.New(apperrors.KindNotFound, "CONTENT_NOT_FOUND", "content: row not found")
	// ErrPageSlugRequired rejects writes without a page slug.
	ErrPageSlugRequired = apperrors.Validation("PAGE_SLUG_REQUIRED", "content: page slug is required")
	// ErrSectionKeyRequired rejects writes without a section key.
	ErrSectionKeyRequired = apperrors.Validation("SECTION_KEY_REQUIRED", "content: section key is required")
	// ErrStoreRequired signals a service built without a store.
	ErrStoreRequired = errors.New("content: store is required")
)

// Row is one page_content record. A nil Language is a legacy row written
// before per-language storage existed.
type Row struct {
	PageSlug     string
	SectionKey   string
	Language     *locale.Language
	ContentType  string
	ContentValue string
	UpdatedAt    time.Time
	UpdatedBy    string
}

// Key returns the unique tuple of the row.
func (r Row) Key() Key {
	return Key{PageSlug: r.PageSlug, SectionKey: r.SectionKey, Language: r.Language}
}

// Key is the unique (page_slug, section_key, language) tuple.
type Key struct {
	PageSlug   string
	SectionKey string
	Language   *locale.Language
}

func (k Key) languageCode() string {
	if k.Language == nil {
		return ""
	}
	return string(*k.Language)
}

func (k Key) String() string {
	return k.PageSlug + "/" + k.SectionKey + "@" + locale.Label(k.Language)
}

func (k Key) validate() error {
	if strings.TrimSpace(k.PageSlug) == "" {
		return ErrPageSlugRequired
	}
	if strings.TrimSpace(k.SectionKey) == "" {
		return ErrSectionKeyRequired
	}
	return nil
}

// Fallback tells callers which step of the read order produced a value.
type Fallback string

const (
	FallbackNone    Fallback = "none"
	FallbackEnglish Fallback = "english"
	FallbackLegacy  Fallback = "legacy"
)

// Resolution is the outcome of a read. A zero Resolution means no content is
// configured, which is not an error.
type Resolution struct {
	Row      *Row
	Fallback Fallback
	// Value holds the decoded payload: the JSON value for structured rows, the
	// raw string for scalar rows.
	Value any
	// Raw is the undecoded content_value.
	Raw string
}

// Found reports whether any row answered the read.
func (r Resolution) Found() bool { return r.Row != nil }

// IsFallback reports whether the value came from another language.
func (r Resolution) IsFallback() bool {
	return r.Found() && r.Fallback != FallbackNone
}

// ChangeType labels content events.
type ChangeType string

const (
	ChangeCreated ChangeType = "created"
	ChangeUpdated ChangeType = "updated"
)

// ChangeEvent is published after each successful upsert.
type ChangeEvent struct {
	Type ChangeType
	Key  Key
	At   time.Time
	By   string
}
