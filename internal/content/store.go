package content

import (
	"context"

	"github.com/goliatone/go-sitecms/internal/locale"
)

// Store is the key-value view of page_content the resolution protocol
// depends on. Get returns ErrRowNotFound when the tuple is absent; any other
// error is a datastore failure.
type Store interface {
	Get(ctx context.Context, pageSlug, sectionKey string, language *locale.Language) (*Row, error)
	// Upsert inserts or replaces the row keyed on (page_slug, section_key,
	// language) and reports whether it was created.
	Upsert(ctx context.Context, row Row) (stored *Row, created bool, err error)
}

// Lister is implemented by stores that can enumerate a section across pages,
// used to gather search candidates.
type Lister interface {
	ListSection(ctx context.Context, sectionKey string, language *locale.Language) ([]*Row, error)
}
