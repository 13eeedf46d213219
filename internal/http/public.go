package http

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"github.com/goliatone/go-sitecms/internal/apperrors"
	"github.com/goliatone/go-sitecms/internal/content"
	"github.com/goliatone/go-sitecms/internal/downloads"
	"github.com/goliatone/go-sitecms/internal/i18n"
	"github.com/goliatone/go-sitecms/internal/locale"
	"github.com/goliatone/go-sitecms/internal/logging"
	"github.com/goliatone/go-sitecms/internal/metrics"
	"github.com/goliatone/go-sitecms/internal/render"
	"github.com/goliatone/go-sitecms/internal/search"
	"github.com/goliatone/go-sitecms/pkg/interfaces"
)

// PublicAPI serves visitor-facing reads, search and download forms.
type PublicAPI struct {
	content   *content.Service
	renderer  *render.Renderer
	search    *search.Service
	downloads *downloads.Handler
	catalog   *i18n.Catalog
	metrics   *metrics.Metrics
	logger    interfaces.Logger
}

type PublicOption func(*PublicAPI)

func WithContentService(service *content.Service) PublicOption {
	return func(api *PublicAPI) { api.content = service }
}

func WithRenderer(renderer *render.Renderer) PublicOption {
	return func(api *PublicAPI) { api.renderer = renderer }
}

func WithSearchService(service *search.Service) PublicOption {
	return func(api *PublicAPI) { api.search = service }
}

func WithDownloadHandler(handler *downloads.Handler) PublicOption {
	return func(api *PublicAPI) { api.downloads = handler }
}

func WithCatalog(catalog *i18n.Catalog) PublicOption {
	return func(api *PublicAPI) { api.catalog = catalog }
}

// WithMetrics records search and download outcomes.
func WithMetrics(m *metrics.Metrics) PublicOption {
	return func(api *PublicAPI) { api.metrics = m }
}

func WithPublicLogger(logger interfaces.Logger) PublicOption {
	return func(api *PublicAPI) {
		if logger != nil {
			api.logger = logger
		}
	}
}

func NewPublicAPI(opts ...PublicOption) *PublicAPI {
	api := &PublicAPI{logger: logging.NoOp()}
	for _, opt := range opts {
		if opt != nil {
			opt(api)
		}
	}
	return api
}

// Register attaches the public endpoints to the provided mux.
func (api *PublicAPI) Register(mux *http.ServeMux) error {
	if mux == nil {
		return fmt.Errorf("http: mux is required")
	}
	mux.HandleFunc("GET /content/{slug}/{key}", api.handleContent)
	mux.HandleFunc("GET /pages/{slug...}", api.handlePage)
	mux.HandleFunc("POST /api/search", api.handleSearch)
	mux.HandleFunc("POST /api/downloads", api.handleDownload)
	mux.HandleFunc("GET /api/i18n/{lang}", api.handleDictionary)
	return nil
}

type contentResponse struct {
	PageSlug   string           `json:"page_slug"`
	SectionKey string           `json:"section_key"`
	Language   string           `json:"language"`
	Found      bool             `json:"found"`
	Fallback   content.Fallback `json:"fallback,omitempty"`
	Value      any              `json:"value"`
}

// handleContent answers raw content reads. Absent content is a 200 with
// found=false so clients fall back to their built-in copy.
func (api *PublicAPI) handleContent(w http.ResponseWriter, r *http.Request) {
	if api.content == nil {
		unavailable(w)
		return
	}
	lang := publicLanguage(r)
	slug, key := r.PathValue("slug"), r.PathValue("key")
	res, err := api.content.Resolve(r.Context(), slug, key, lang)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, contentResponse{
		PageSlug:   slug,
		SectionKey: key,
		Language:   string(lang),
		Found:      res.Found(),
		Fallback:   res.Fallback,
		Value:      res.Value,
	})
}

func (api *PublicAPI) handlePage(w http.ResponseWriter, r *http.Request) {
	if api.renderer == nil {
		unavailable(w)
		return
	}
	lang := publicLanguage(r)
	page, err := api.renderer.RenderPage(r.Context(), r.PathValue("slug"), lang)
	if err != nil {
		api.logger.WithContext(r.Context()).Error("http.page.render_failed", "page_slug", r.PathValue("slug"), "error", err)
		writeError(w, err)
		return
	}
	if page.Redirect != "" {
		http.Redirect(w, r, page.Redirect, http.StatusFound)
		return
	}

	var buf bytes.Buffer
	if err := api.renderer.WriteDocument(&buf, page); err != nil {
		api.logger.WithContext(r.Context()).Error("http.page.layout_failed", "page_slug", page.Slug, "error", err)
		writeError(w, err)
		return
	}
	status := http.StatusOK
	if !page.Found {
		status = http.StatusNotFound
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Language", string(lang))
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

type searchResponse struct {
	Results []search.Result `json:"results"`
}

func (api *PublicAPI) handleSearch(w http.ResponseWriter, r *http.Request) {
	if api.search == nil {
		unavailable(w)
		return
	}
	var q search.Query
	if err := decodeJSON(r, &q); err != nil {
		writeError(w, err)
		return
	}
	results, err := api.search.Search(r.Context(), q)
	if api.metrics != nil {
		api.metrics.ObserveSearch(string(locale.ParseOrDefault(q.Language, locale.Fallback)), err)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	if results == nil {
		results = []search.Result{}
	}
	writeJSON(w, http.StatusOK, searchResponse{Results: results})
}

func (api *PublicAPI) handleDownload(w http.ResponseWriter, r *http.Request) {
	if api.downloads == nil {
		unavailable(w)
		return
	}
	var req downloads.Request
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	result, err := api.downloads.Submit(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	if api.metrics != nil {
		for _, step := range result.Steps {
			api.metrics.ObserveDownloadStep(step.Name, string(step.Status))
		}
	}
	writeJSON(w, http.StatusOK, result)
}

func (api *PublicAPI) handleDictionary(w http.ResponseWriter, r *http.Request) {
	if api.catalog == nil {
		unavailable(w)
		return
	}
	code := strings.TrimSpace(r.PathValue("lang"))
	lang, err := locale.Parse(code)
	if err != nil {
		writeError(w, apperrors.New(apperrors.KindNotFound, "DICTIONARY_NOT_FOUND", "http: no dictionary for "+code))
		return
	}
	w.Header().Set("Cache-Control", "public, max-age=300")
	writeJSON(w, http.StatusOK, api.catalog.Dictionary(lang))
}
