// Package search ranks site content against a free text query. Candidates
// come from pluggable sources and ranking is delegated to an embedder.
package search

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/goliatone/go-sitecms/internal/apperrors"
	"github.com/goliatone/go-sitecms/internal/locale"
	"github.com/goliatone/go-sitecms/internal/logging"
	"github.com/goliatone/go-sitecms/pkg/interfaces"
)

const (
	DefaultLimit = 10
	MaxLimit     = 50
	snippetRunes = 160
)

var ErrQueryRequired = apperrors.Validation("SEARCH_QUERY_REQUIRED", "search: query is required")

// Query is a search request.
type Query struct {
	Query    string `json:"query"`
	Language string `json:"language"`
	Limit    int    `json:"limit"`
}

// Result is one ranked hit.
type Result struct {
	ID             string  `json:"id"`
	Title          string  `json:"title"`
	URL            string  `json:"url"`
	RelevanceScore float64 `json:"relevanceScore"`
	Snippet        string  `json:"snippet"`
}

// Document is a search candidate.
type Document struct {
	ID    string
	Title string
	URL   string
	Text  string
}

// Source yields candidate documents for a language.
type Source interface {
	Documents(ctx context.Context, language locale.Language) ([]Document, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context, language locale.Language) ([]Document, error)

func (f SourceFunc) Documents(ctx context.Context, language locale.Language) ([]Document, error) {
	return f(ctx, language)
}

// Service runs searches.
type Service struct {
	sources      []Source
	embedder     interfaces.Embedder
	cache        interfaces.CacheProvider
	cacheTTL     time.Duration
	defaultLimit int
	maxLimit     int
	logger       interfaces.Logger

	mu      sync.Mutex
	vectors map[string][]float32
}

type ServiceOption func(*Service)

func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithCache caches result lists for ttl.
func WithCache(cache interfaces.CacheProvider, ttl time.Duration) ServiceOption {
	return func(s *Service) {
		s.cache = cache
		s.cacheTTL = ttl
	}
}

// WithLimits overrides the default and maximum result counts.
func WithLimits(defaultLimit, maxLimit int) ServiceOption {
	return func(s *Service) {
		if defaultLimit > 0 {
			s.defaultLimit = defaultLimit
		}
		if maxLimit > 0 {
			s.maxLimit = maxLimit
		}
	}
}

// WithSources appends candidate sources.
func WithSources(sources ...Source) ServiceOption {
	return func(s *Service) {
		s.sources = append(s.sources, sources...)
	}
}

// NewService builds a search service. Without an embedder results are
// ranked by term overlap.
func NewService(embedder interfaces.Embedder, opts ...ServiceOption) *Service {
	s := &Service{
		embedder:     embedder,
		defaultLimit: DefaultLimit,
		maxLimit:     MaxLimit,
		logger:       logging.NoOp(),
		vectors:      make(map[string][]float32),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.defaultLimit > s.maxLimit {
		s.defaultLimit = s.maxLimit
	}
	return s
}

// Search ranks candidates for q and returns at most q.Limit results.
func (s *Service) Search(ctx context.Context, q Query) ([]Result, error) {
	text := strings.TrimSpace(q.Query)
	if text == "" {
		return nil, ErrQueryRequired
	}
	language := locale.ParseOrDefault(q.Language, locale.Fallback)
	limit := s.clampLimit(q.Limit)
	logger := s.logger.WithContext(ctx)

	key := cacheKey(text, language, limit)
	if cached, ok := s.cached(ctx, key); ok {
		return cached, nil
	}

	docs, err := s.collect(ctx, language)
	if err != nil {
		return nil, err
	}
	var results []Result
	if s.embedder != nil {
		results, err = s.rankSemantic(ctx, text, docs)
		if err != nil {
			logger.Error("search.rank.failed", "error", err)
			return nil, apperrors.Integration("SEARCH_RANK_FAILED", err, "search: rank %d candidates", len(docs))
		}
	} else {
		results = rankLexical(text, docs)
	}
	if len(results) > limit {
		results = results[:limit]
	}

	s.store(ctx, key, results)
	logger.Debug("search.success", "language", string(language), "candidates", len(docs), "results", len(results))
	return results, nil
}

func (s *Service) clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return s.defaultLimit
	case limit > s.maxLimit:
		return s.maxLimit
	default:
		return limit
	}
}

func (s *Service) collect(ctx context.Context, language locale.Language) ([]Document, error) {
	seen := make(map[string]bool)
	var docs []Document
	for _, source := range s.sources {
		batch, err := source.Documents(ctx, language)
		if err != nil {
			if apperrors.IsIntegration(err) {
				return nil, err
			}
			return nil, apperrors.Integration("SEARCH_SOURCE_FAILED", err, "search: gather candidates")
		}
		for _, doc := range batch {
			if strings.TrimSpace(doc.Text) == "" || seen[doc.ID] {
				continue
			}
			seen[doc.ID] = true
			docs = append(docs, doc)
		}
	}
	return docs, nil
}

func (s *Service) rankSemantic(ctx context.Context, query string, docs []Document) ([]Result, error) {
	if len(docs) == 0 {
		return []Result{}, nil
	}
	queryVector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}

	vectors := make([][]float32, len(docs))
	var missing []int
	var missingTexts []string
	s.mu.Lock()
	for i, doc := range docs {
		if v, ok := s.vectors[textHash(doc.Text)]; ok {
			vectors[i] = v
			continue
		}
		missing = append(missing, i)
		missingTexts = append(missingTexts, doc.Text)
	}
	s.mu.Unlock()

	if len(missingTexts) > 0 {
		embedded, err := s.embedder.EmbedBatch(ctx, missingTexts)
		if err != nil {
			return nil, err
		}
		if len(embedded) != len(missingTexts) {
			return nil, fmt.Errorf("search: expected %d embeddings, got %d", len(missingTexts), len(embedded))
		}
		s.mu.Lock()
		for j, idx := range missing {
			vectors[idx] = embedded[j]
			s.vectors[textHash(docs[idx].Text)] = embedded[j]
		}
		s.mu.Unlock()
	}

	results := make([]Result, 0, len(docs))
	for i, doc := range docs {
		results = append(results, toResult(doc, cosine(queryVector, vectors[i]), query))
	}
	sortResults(results)
	return results, nil
}

func rankLexical(query string, docs []Document) []Result {
	terms := strings.Fields(strings.ToLower(query))
	results := make([]Result, 0, len(docs))
	for _, doc := range docs {
		haystack := strings.ToLower(doc.Title + " " + doc.Text)
		matched := 0
		for _, term := range terms {
			if strings.Contains(haystack, term) {
				matched++
			}
		}
		if matched == 0 {
			continue
		}
		results = append(results, toResult(doc, float64(matched)/float64(len(terms)), query))
	}
	sortResults(results)
	return results
}

func toResult(doc Document, score float64, query string) Result {
	return Result{
		ID:             doc.ID,
		Title:          doc.Title,
		URL:            doc.URL,
		RelevanceScore: math.Round(score*10000) / 10000,
		Snippet:        snippet(doc.Text, query),
	}
}

func sortResults(results []Result) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].RelevanceScore != results[j].RelevanceScore {
			return results[i].RelevanceScore > results[j].RelevanceScore
		}
		return results[i].ID < results[j].ID
	})
}

func cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// snippet returns up to snippetRunes runes around the first query term.
func snippet(text, query string) string {
	text = strings.Join(strings.Fields(text), " ")
	if utf8.RuneCountInString(text) <= snippetRunes {
		return text
	}
	runes := []rune(text)
	start := 0
	lower := strings.ToLower(text)
	for _, term := range strings.Fields(strings.ToLower(query)) {
		if idx := strings.Index(lower, term); idx >= 0 {
			start = utf8.RuneCountInString(lower[:idx]) - snippetRunes/4
			break
		}
	}
	if start < 0 {
		start = 0
	}
	end := start + snippetRunes
	if end > len(runes) {
		end = len(runes)
		start = max(0, end-snippetRunes)
	}
	out := string(runes[start:end])
	if start > 0 {
		out = "…" + out
	}
	if end < len(runes) {
		out += "…"
	}
	return out
}

func cacheKey(query string, language locale.Language, limit int) string {
	return fmt.Sprintf("search:%s:%d:%s", language, limit, textHash(strings.ToLower(query))[:16])
}

func textHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

func (s *Service) cached(ctx context.Context, key string) ([]Result, bool) {
	if s.cache == nil {
		return nil, false
	}
	raw, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.WithContext(ctx).Warn("search.cache.get_failed", "error", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}
	var results []Result
	if err := json.Unmarshal(raw, &results); err != nil {
		return nil, false
	}
	return results, true
}

func (s *Service) store(ctx context.Context, key string, results []Result) {
	if s.cache == nil || s.cacheTTL <= 0 {
		return
	}
	raw, err := json.Marshal(results)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, raw, s.cacheTTL); err != nil {
		s.logger.WithContext(ctx).Warn("search.cache.set_failed", "error", err)
	}
}
