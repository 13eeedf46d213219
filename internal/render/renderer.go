// Package render turns resolved page segments into HTML.
package render

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"

	"github.com/goliatone/go-sitecms/internal/i18n"
	"github.com/goliatone/go-sitecms/internal/locale"
	"github.com/goliatone/go-sitecms/internal/logging"
	"github.com/goliatone/go-sitecms/internal/navigation"
	"github.com/goliatone/go-sitecms/internal/news"
	"github.com/goliatone/go-sitecms/internal/segments"
	"github.com/goliatone/go-sitecms/pkg/interfaces"
)

//go:embed templates/*.html templates/segments/*.html
var templateFS embed.FS

// ErrSegmentsRequired signals a renderer built without a segment service.
var ErrSegmentsRequired = errors.New("render: segment service is required")

// SegmentLister resolves a page's segments through the fallback read order.
type SegmentLister interface {
	List(ctx context.Context, slug string, language locale.Language) (segments.Page, error)
}

// Redirector resolves shortcut pages.
type Redirector interface {
	ResolveRedirect(ctx context.Context, slug string) (string, bool, error)
}

// NewsSource lists the latest articles for news segments.
type NewsSource interface {
	Latest(ctx context.Context, lang locale.Language, category string, limit int) ([]*news.Article, error)
}

// URLBuilder renders public URLs.
type URLBuilder interface {
	PageURL(slug string, lang locale.Language) string
	NewsURL(slug string, lang locale.Language) string
	SearchURL(query string, lang locale.Language) string
}

// Tab is one entry of the page tab bar.
type Tab struct {
	ID     string
	Anchor string
	Label  string
	HTML   template.HTML
}

// Page is a rendered page. A non-empty Redirect means the slug is a shortcut
// and nothing else was rendered.
type Page struct {
	Slug       string
	Language   locale.Language
	Title      string
	Body       template.HTML
	Tabs       []Tab
	Navigation []*navigation.Link
	Found      bool
	Fallback   string
	Redirect   string
	Year       int
}

// Renderer composes segment partials into pages.
type Renderer struct {
	segments   SegmentLister
	redirects  Redirector
	news       NewsSource
	navigation navigation.Repository
	urls       URLBuilder
	catalog    *i18n.Catalog
	logger     interfaces.Logger
	now        func() time.Time

	templates map[locale.Language]*template.Template
}

type Option func(*Renderer)

func WithRedirector(r Redirector) Option    { return func(rr *Renderer) { rr.redirects = r } }
func WithNews(source NewsSource) Option     { return func(r *Renderer) { r.news = source } }
func WithURLs(urls URLBuilder) Option       { return func(r *Renderer) { r.urls = urls } }
func WithCatalog(c *i18n.Catalog) Option    { return func(r *Renderer) { r.catalog = c } }
func WithClock(now func() time.Time) Option { return func(r *Renderer) { r.now = now } }
func WithNavigation(repo navigation.Repository) Option {
	return func(r *Renderer) { r.navigation = repo }
}

func WithLogger(logger interfaces.Logger) Option {
	return func(r *Renderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func New(segs SegmentLister, opts ...Option) (*Renderer, error) {
	if segs == nil {
		return nil, ErrSegmentsRequired
	}
	r := &Renderer{
		segments: segs,
		logger:   logging.NoOp(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.catalog == nil {
		catalog, err := i18n.Default()
		if err != nil {
			return nil, err
		}
		r.catalog = catalog
	}
	if r.urls == nil {
		r.urls = relativeURLs{}
	}
	if err := r.parseTemplates(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Renderer) parseTemplates() error {
	base, err := template.New("site").Funcs(r.funcs(locale.Fallback)).
		ParseFS(templateFS, "templates/*.html", "templates/segments/*.html")
	if err != nil {
		return fmt.Errorf("render: parse templates: %w", err)
	}
	r.templates = make(map[locale.Language]*template.Template, len(locale.Supported()))
	for _, lang := range locale.Supported() {
		clone, err := base.Clone()
		if err != nil {
			return fmt.Errorf("render: clone templates: %w", err)
		}
		r.templates[lang] = clone.Funcs(r.funcs(lang))
	}
	return nil
}

func (r *Renderer) funcs(lang locale.Language) template.FuncMap {
	funcs := r.catalog.TemplateFuncs(lang)
	funcs["pageURL"] = func(slug string) string { return r.urls.PageURL(slug, lang) }
	funcs["newsURL"] = func(slug string) string { return r.urls.NewsURL(slug, lang) }
	funcs["searchURL"] = func() string { return r.urls.SearchURL("", lang) }
	return funcs
}

func (r *Renderer) templateFor(lang locale.Language) *template.Template {
	if tmpl, ok := r.templates[lang]; ok {
		return tmpl
	}
	return r.templates[locale.Fallback]
}

// RenderPage resolves redirects and segments for slug and renders the body
// and tab panels. A page without content is returned with Found false.
func (r *Renderer) RenderPage(ctx context.Context, slug string, lang locale.Language) (*Page, error) {
	slug = strings.Trim(strings.TrimSpace(slug), "/")
	logger := logging.WithPage(r.logger, slug, string(lang)).WithContext(ctx)
	page := &Page{Slug: slug, Language: lang, Year: r.now().Year()}

	if r.redirects != nil {
		target, ok, err := r.redirects.ResolveRedirect(ctx, slug)
		if err != nil {
			logger.Warn("render.redirect.failed", "error", err)
		} else if ok {
			page.Redirect = r.urls.PageURL(target, lang)
			return page, nil
		}
	}

	resolved, err := r.segments.List(ctx, slug, lang)
	if err != nil {
		return nil, err
	}
	page.Found = resolved.Found()
	page.Fallback = string(resolved.Fallback)
	page.Navigation = r.loadNavigation(ctx, logger, lang)
	if !page.Found {
		return page, nil
	}

	tmpl := r.templateFor(lang)
	var body bytes.Buffer
	for _, seg := range segments.Inline(resolved.Segments) {
		html, ok := r.renderSegment(ctx, logger, tmpl, lang, seg)
		if !ok {
			continue
		}
		if page.Title == "" {
			page.Title = titleOf(seg.Data)
		}
		body.WriteString(string(html))
	}
	page.Body = template.HTML(body.String())

	for _, seg := range segments.Tabs(resolved.Segments) {
		html, ok := r.renderSegment(ctx, logger, tmpl, lang, seg)
		if !ok {
			continue
		}
		label := titleOf(seg.Data)
		if label == "" {
			label = string(seg.Type)
		}
		page.Tabs = append(page.Tabs, Tab{ID: seg.ID.String(), Anchor: anchor(seg), Label: label, HTML: html})
	}
	return page, nil
}

// WriteDocument renders page inside the site layout.
func (r *Renderer) WriteDocument(w io.Writer, page *Page) error {
	if err := r.templateFor(page.Language).ExecuteTemplate(w, "layout", page); err != nil {
		return fmt.Errorf("render: layout: %w", err)
	}
	return nil
}

type segmentView struct {
	ID     string
	Anchor string
	Data   segments.Data
	News   []*news.Article
}

func (r *Renderer) renderSegment(ctx context.Context, logger interfaces.Logger, tmpl *template.Template, lang locale.Language, seg segments.Segment) (template.HTML, bool) {
	if _, raw := seg.Data.(*segments.RawData); raw || seg.Data == nil {
		logger.Debug("render.segment.skipped", "segment_id", seg.ID.String(), "type", string(seg.Type))
		return "", false
	}
	name := "segment/" + string(seg.Type)
	if tmpl.Lookup(name) == nil {
		logger.Debug("render.segment.skipped", "segment_id", seg.ID.String(), "type", string(seg.Type))
		return "", false
	}

	view := segmentView{ID: seg.ID.String(), Anchor: anchor(seg), Data: seg.Data}
	if cfg, ok := seg.Data.(*segments.News); ok && r.news != nil {
		articles, err := r.news.Latest(ctx, lang, cfg.Category, cfg.Limit)
		if err != nil {
			logger.Warn("render.news.failed", "segment_id", view.ID, "error", err)
		}
		view.News = articles
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, name, view); err != nil {
		logger.Error("render.segment.failed", "segment_id", view.ID, "type", string(seg.Type), "error", err)
		return "", false
	}
	return template.HTML(buf.String()), true
}

func (r *Renderer) loadNavigation(ctx context.Context, logger interfaces.Logger, lang locale.Language) []*navigation.Link {
	if r.navigation == nil {
		return nil
	}
	links, err := r.navigation.List(ctx, lang.Ptr())
	if err != nil {
		logger.Warn("render.navigation.failed", "error", err)
		return nil
	}
	return links
}

func anchor(seg segments.Segment) string {
	return "segment-" + seg.ID.String()
}

func titleOf(data segments.Data) string {
	switch d := data.(type) {
	case *segments.FullHero:
		return d.Title
	case *segments.ProductHeroGallery:
		return d.Title
	case *segments.Intro:
		return d.Title
	case *segments.FAQ:
		return d.Title
	case *segments.Specification:
		return d.Title
	case *segments.FeatureOverview:
		return d.Title
	case *segments.Table:
		return d.Title
	case *segments.Video:
		return d.Title
	case *segments.Industries:
		return d.Title
	case *segments.Tiles:
		return d.Title
	case *segments.Banner:
		return d.Title
	case *segments.BannerProduct:
		return d.Title
	case *segments.ImageText:
		return d.Title
	case *segments.News:
		return d.Title
	case *segments.MetaNavigation:
		return d.Title
	}
	return ""
}

// relativeURLs is used when no URL builder is configured.
type relativeURLs struct{}

func (relativeURLs) PageURL(slug string, lang locale.Language) string {
	prefix := ""
	if lang != locale.Fallback {
		prefix = "/" + string(lang)
	}
	if slug == "" || slug == "home" {
		return prefix + "/"
	}
	return prefix + "/" + strings.Trim(slug, "/")
}

func (u relativeURLs) NewsURL(slug string, lang locale.Language) string {
	return u.PageURL("news/"+slug, lang)
}

func (u relativeURLs) SearchURL(_ string, lang locale.Language) string {
	return u.PageURL("search", lang)
}
