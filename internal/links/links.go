// Package links builds public site URLs through a go-urlkit route manager.
package links

import (
	"fmt"
	"strings"
	"sync"

	urlkit "github.com/goliatone/go-urlkit"

	"github.com/goliatone/go-sitecms/internal/locale"
)

// Route names registered in every language group.
const (
	RouteHome   = "home"
	RoutePage   = "page"
	RouteNews   = "news"
	RouteSearch = "search"
)

const rootGroup = "site"

// Config builds the route configuration: English paths at the root and one
// child group per other language mounted under "/<code>".
func Config(baseURL string) *urlkit.Config {
	paths := map[string]string{
		RouteHome:   "/",
		RoutePage:   "/:slug",
		RouteNews:   "/news/:slug",
		RouteSearch: "/search",
	}
	children := make([]urlkit.GroupConfig, 0, len(locale.Supported()))
	for _, lang := range locale.Supported() {
		if lang == locale.Fallback {
			continue
		}
		children = append(children, urlkit.GroupConfig{
			Name:  string(lang),
			Path:  "/" + string(lang),
			Paths: paths,
		})
	}
	return &urlkit.Config{
		Groups: []urlkit.GroupConfig{{
			Name:    rootGroup,
			BaseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
			Paths:   paths,
			Groups:  children,
		}},
	}
}

// Builder resolves public URLs per language.
type Builder struct {
	manager *urlkit.RouteManager
	baseURL string

	mu     sync.RWMutex
	groups map[locale.Language]*urlkit.Group
}

func NewBuilder(baseURL string) *Builder {
	return NewBuilderWithManager(urlkit.NewRouteManager(Config(baseURL)), baseURL)
}

// NewBuilderWithManager uses a caller supplied route manager. It must define
// the "site" group and its language children.
func NewBuilderWithManager(manager *urlkit.RouteManager, baseURL string) *Builder {
	return &Builder{
		manager: manager,
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		groups:  make(map[locale.Language]*urlkit.Group),
	}
}

// PageURL returns the public address of a page. The home slug maps to the
// language root.
func (b *Builder) PageURL(slug string, lang locale.Language) string {
	slug = strings.Trim(strings.TrimSpace(slug), "/")
	if slug == "" || slug == "home" {
		return b.build(lang, RouteHome, nil, nil)
	}
	return b.build(lang, RoutePage, map[string]any{"slug": slug}, nil)
}

func (b *Builder) NewsURL(slug string, lang locale.Language) string {
	return b.build(lang, RouteNews, map[string]any{"slug": strings.Trim(slug, "/")}, nil)
}

func (b *Builder) SearchURL(query string, lang locale.Language) string {
	var queries map[string]string
	if strings.TrimSpace(query) != "" {
		queries = map[string]string{"q": query}
	}
	return b.build(lang, RouteSearch, nil, queries)
}

func (b *Builder) build(lang locale.Language, route string, params map[string]any, queries map[string]string) string {
	url, err := b.tryBuild(lang, route, params, queries)
	if err != nil || url == "" {
		return b.fallback(lang, route, params)
	}
	return url
}

func (b *Builder) tryBuild(lang locale.Language, route string, params map[string]any, queries map[string]string) (url string, err error) {
	group, err := b.group(lang)
	if err != nil {
		return "", err
	}
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("links: urlkit builder panic: %v", rec)
		}
	}()
	builder := group.Builder(route)
	for key, value := range params {
		builder.WithParam(key, value)
	}
	for key, value := range queries {
		builder.WithQuery(key, value)
	}
	return builder.Build()
}

func (b *Builder) group(lang locale.Language) (group *urlkit.Group, err error) {
	b.mu.RLock()
	cached, ok := b.groups[lang]
	b.mu.RUnlock()
	if ok {
		return cached, nil
	}
	if b.manager == nil {
		return nil, fmt.Errorf("links: route manager not configured")
	}

	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("links: route group for %q not found", lang)
		}
	}()
	group = b.manager.Group(rootGroup)
	if lang != locale.Fallback && lang != "" {
		group = group.Group(string(lang))
	}

	b.mu.Lock()
	b.groups[lang] = group
	b.mu.Unlock()
	return group, nil
}

// fallback composes a URL by hand when the route manager cannot.
func (b *Builder) fallback(lang locale.Language, route string, params map[string]any) string {
	prefix := b.baseURL
	if lang != locale.Fallback && lang != "" {
		prefix += "/" + string(lang)
	}
	switch route {
	case RoutePage:
		return prefix + "/" + fmt.Sprint(params["slug"])
	case RouteNews:
		return prefix + "/news/" + fmt.Sprint(params["slug"])
	case RouteSearch:
		return prefix + "/search"
	}
	return prefix + "/"
}
