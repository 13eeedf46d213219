// Package sitecms assembles the multilingual site content service: segment
// editing with language fallback, page shortcuts, AI assisted translation,
// semantic search and the public rendering and download endpoints.
package sitecms

import (
	"context"
	"net/http"

	"github.com/goliatone/go-sitecms/internal/di"
	"github.com/goliatone/go-sitecms/internal/downloads"
	"github.com/goliatone/go-sitecms/internal/glossary"
	"github.com/goliatone/go-sitecms/internal/media"
	"github.com/goliatone/go-sitecms/internal/news"
	"github.com/goliatone/go-sitecms/internal/render"
	"github.com/goliatone/go-sitecms/internal/search"
	"github.com/goliatone/go-sitecms/internal/segments"
	"github.com/goliatone/go-sitecms/internal/shortcuts"
	"github.com/goliatone/go-sitecms/internal/translation"
	"github.com/goliatone/go-sitecms/pkg/interfaces"
)

// SegmentService exports the page segment service.
type SegmentService = *segments.Service

// ShortcutService exports the page shortcut service.
type ShortcutService = *shortcuts.Service

// TranslationService exports the auto-translation service.
type TranslationService = *translation.Service

// GlossaryService exports the translation glossary service.
type GlossaryService = *glossary.Service

// SearchService exports the semantic search service.
type SearchService = *search.Service

type (
	MediaService    = *media.Service
	NewsService     = *news.Service
	DownloadHandler = *downloads.Handler
	Renderer        = *render.Renderer
)

// Option overrides a container dependency.
type Option = di.Option

var (
	WithLoggerProvider = di.WithLoggerProvider
	WithBunDB          = di.WithBunDB
	WithTranslator     = di.WithTranslator
	WithEmbedder       = di.WithEmbedder
	WithObjectStorage  = di.WithObjectStorage
	WithCRM            = di.WithCRM
	WithMailer         = di.WithMailer
	WithClock          = di.WithClock
)

// Module represents the top level site runtime facade.
type Module struct {
	container *di.Container
}

// New constructs a module using the provided configuration and optional DI
// overrides.
func New(ctx context.Context, cfg Config, opts ...Option) (*Module, error) {
	container, err := di.New(ctx, cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying DI container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// Handler serves the admin API, the public API, health and metrics.
func (m *Module) Handler() http.Handler {
	return m.container.HTTPHandler()
}

func (m *Module) Segments() SegmentService { return m.container.SegmentService() }

func (m *Module) Shortcuts() ShortcutService { return m.container.ShortcutService() }

// Translation returns nil when no translator is configured.
func (m *Module) Translation() TranslationService { return m.container.TranslationService() }

func (m *Module) Glossary() GlossaryService { return m.container.GlossaryService() }

func (m *Module) Search() SearchService { return m.container.SearchService() }

func (m *Module) Media() MediaService { return m.container.MediaService() }

func (m *Module) News() NewsService { return m.container.NewsService() }

func (m *Module) Downloads() DownloadHandler { return m.container.DownloadHandler() }

func (m *Module) Renderer() Renderer { return m.container.Renderer() }

// Logger returns the module root logger.
func (m *Module) Logger() interfaces.Logger { return m.container.Logger() }

// Close releases the clients opened for the module.
func (m *Module) Close() error {
	return m.container.Close()
}
