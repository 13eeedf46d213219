package search

import (
	"context"
	"sort"
	"strings"

	"github.com/goliatone/go-sitecms/internal/locale"
	"github.com/goliatone/go-sitecms/internal/news"
	"github.com/goliatone/go-sitecms/internal/pages"
	"github.com/goliatone/go-sitecms/internal/segments"
)

// URLBuilder renders public page URLs.
type URLBuilder interface {
	PageURL(slug string, language locale.Language) string
}

// PageSource turns every registered page that is not a shortcut into a
// candidate built from the text fields of its resolved segments.
type PageSource struct {
	registry pages.Repository
	segments *segments.Service
	urls     URLBuilder
}

func NewPageSource(registry pages.Repository, segs *segments.Service, urls URLBuilder) *PageSource {
	return &PageSource{registry: registry, segments: segs, urls: urls}
}

func (p *PageSource) Documents(ctx context.Context, language locale.Language) ([]Document, error) {
	entries, err := p.registry.List(ctx)
	if err != nil {
		return nil, err
	}
	docs := make([]Document, 0, len(entries))
	for _, entry := range entries {
		if entry.IsShortcut() {
			continue
		}
		page, err := p.segments.List(ctx, entry.PageSlug, language)
		if err != nil {
			return nil, err
		}
		text := pageText(page.Segments)
		if text == "" {
			continue
		}
		url := "/" + entry.PageSlug
		if p.urls != nil {
			url = p.urls.PageURL(entry.PageSlug, language)
		}
		docs = append(docs, Document{
			ID:    "page:" + entry.PageSlug,
			Title: entry.PageTitle,
			URL:   url,
			Text:  text,
		})
	}
	return docs, nil
}

// NewsLister returns the newest published articles for a language.
type NewsLister interface {
	Latest(ctx context.Context, lang locale.Language, category string, limit int) ([]*news.Article, error)
}

// NewsURLBuilder renders public article URLs.
type NewsURLBuilder interface {
	NewsURL(slug string, language locale.Language) string
}

const defaultNewsWindow = 50

// NewsSource indexes the most recent published articles.
type NewsSource struct {
	articles NewsLister
	urls     NewsURLBuilder
	window   int
}

// NewNewsSource indexes up to window articles per language. A window of zero
// or less uses 50.
func NewNewsSource(articles NewsLister, urls NewsURLBuilder, window int) *NewsSource {
	if window <= 0 {
		window = defaultNewsWindow
	}
	return &NewsSource{articles: articles, urls: urls, window: window}
}

func (n *NewsSource) Documents(ctx context.Context, language locale.Language) ([]Document, error) {
	list, err := n.articles.Latest(ctx, language, "", n.window)
	if err != nil {
		return nil, err
	}
	docs := make([]Document, 0, len(list))
	for _, article := range list {
		text := strings.TrimSpace(strings.Join([]string{article.Summary, article.BodyMarkdown}, "\n"))
		if text == "" {
			continue
		}
		url := "/news/" + article.Slug
		if n.urls != nil {
			url = n.urls.NewsURL(article.Slug, language)
		}
		docs = append(docs, Document{
			ID:    "news:" + article.Slug,
			Title: article.Title,
			URL:   url,
			Text:  text,
		})
	}
	return docs, nil
}

// pageText joins segment texts in array order, with each segment's fields
// ordered by path.
func pageText(list []segments.Segment) string {
	var parts []string
	for _, seg := range list {
		texts, err := segments.ExtractText(seg.Data)
		if err != nil || len(texts) == 0 {
			continue
		}
		keys := make([]string, 0, len(texts))
		for key := range texts {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			parts = append(parts, strings.TrimSpace(texts[key]))
		}
	}
	return strings.Join(parts, "\n")
}
