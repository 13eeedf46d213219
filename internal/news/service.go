package news

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"time"

	"github.com/goliatone/go-slug"

	"github.com/goliatone/go-sitecms/internal/apperrors"
	"github.com/goliatone/go-sitecms/internal/locale"
	"github.com/goliatone/go-sitecms/internal/logging"
	"github.com/goliatone/go-sitecms/internal/markdown"
	"github.com/goliatone/go-sitecms/pkg/interfaces"
)

const (
	DefaultLimit = 3
	MaxLimit     = 50
)

// ErrRepositoryRequired signals a service built without storage.
var ErrRepositoryRequired = errors.New("news: repository is required")

type Service struct {
	repo   Repository
	parser *markdown.Parser
	logger interfaces.Logger
	now    func() time.Time
}

type ServiceOption func(*Service)

func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithParser(parser *markdown.Parser) ServiceOption {
	return func(s *Service) {
		if parser != nil {
			s.parser = parser
		}
	}
}

func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func NewService(repo Repository, opts ...ServiceOption) (*Service, error) {
	if repo == nil {
		return nil, ErrRepositoryRequired
	}
	s := &Service{
		repo:   repo,
		parser: markdown.NewParser(markdown.ParseOptions{}),
		logger: logging.NoOp(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Latest lists published articles for lang, newest first. Each slug resolves
// to its lang version when one exists and to the English version otherwise.
func (s *Service) Latest(ctx context.Context, lang locale.Language, category string, limit int) ([]*Article, error) {
	switch {
	case limit <= 0:
		limit = DefaultLimit
	case limit > MaxLimit:
		limit = MaxLimit
	}
	languages := []string{string(lang)}
	if lang != locale.Fallback {
		languages = append(languages, string(locale.Fallback))
	}
	articles, err := s.repo.List(ctx, Filter{Languages: languages, Category: category})
	if err != nil {
		return nil, apperrors.Integration("NEWS_READ_FAILED", err, "news: list %s", lang)
	}

	bySlug := make(map[string]*Article, len(articles))
	for _, article := range articles {
		current, ok := bySlug[article.Slug]
		if !ok || (current.Language != string(lang) && article.Language == string(lang)) {
			bySlug[article.Slug] = article
		}
	}
	out := make([]*Article, 0, len(bySlug))
	for _, article := range bySlug {
		out = append(out, article)
	}
	sortLatest(out)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Get returns one article for lang, falling back to English. The bool
// reports whether the fallback answered.
func (s *Service) Get(ctx context.Context, articleSlug string, lang locale.Language) (*Article, bool, error) {
	article, err := s.repo.Get(ctx, articleSlug, string(lang))
	if err == nil {
		return article, false, nil
	}
	if !apperrors.IsNotFound(err) {
		return nil, false, apperrors.Integration("NEWS_READ_FAILED", err, "news: get %s", articleSlug)
	}
	if lang == locale.Fallback {
		return nil, false, err
	}
	article, err = s.repo.Get(ctx, articleSlug, string(locale.Fallback))
	if err != nil {
		return nil, false, err
	}
	return article, true, nil
}

// Save validates and stores an article, rendering its Markdown body.
func (s *Service) Save(ctx context.Context, article Article) (*Article, error) {
	article.Slug = strings.TrimSpace(article.Slug)
	article.Title = strings.TrimSpace(article.Title)
	if article.Slug == "" {
		return nil, ErrSlugRequired
	}
	if article.Title == "" {
		return nil, ErrTitleMissing
	}
	lang, err := locale.Parse(article.Language)
	if err != nil {
		return nil, &apperrors.Error{Kind: apperrors.KindValidation, Code: "NEWS_LANGUAGE_INVALID", Message: "news: unsupported language", Err: err}
	}
	article.Language = string(lang)
	if article.BodyMarkdown != "" && article.BodyHTML == "" {
		html, err := s.parser.Render([]byte(article.BodyMarkdown))
		if err != nil {
			return nil, apperrors.Decode("NEWS_BODY_INVALID", err, "news: render %s", article.Slug)
		}
		article.BodyHTML = html
	}
	article.UpdatedAt = s.now().UTC()
	stored, err := s.repo.Upsert(ctx, &article)
	if err != nil {
		return nil, apperrors.Integration("NEWS_WRITE_FAILED", err, "news: save %s", article.Slug)
	}
	return stored, nil
}

// ImportResult summarises a Markdown import.
type ImportResult struct {
	Created []string
	Updated []string
	Skipped []string
	Errors  []error
}

// Import loads every Markdown document under dir. Documents whose checksum
// matches the stored article are skipped. Per-document failures are
// collected and do not stop the import.
func (s *Service) Import(ctx context.Context, fsys fs.FS, dir string) (*ImportResult, error) {
	languages := make([]string, 0, len(locale.Supported()))
	for _, lang := range locale.Supported() {
		languages = append(languages, string(lang))
	}
	loader := markdown.NewLoader(fsys, markdown.LoaderConfig{DefaultLanguage: string(locale.Fallback), Languages: languages})
	loaded, err := loader.LoadDirectory(ctx, dir)
	if err != nil {
		return nil, fmt.Errorf("news import: %w", err)
	}

	result := &ImportResult{Errors: append([]error(nil), loaded.Failures...)}
	for _, doc := range loaded.Documents {
		article, err := s.articleFromDocument(doc)
		if err != nil {
			result.Errors = append(result.Errors, err)
			continue
		}
		key := article.Slug + "@" + article.Language
		existing, err := s.repo.Get(ctx, article.Slug, article.Language)
		switch {
		case err == nil && existing.Checksum == article.Checksum:
			result.Skipped = append(result.Skipped, key)
			continue
		case err != nil && !apperrors.IsNotFound(err):
			result.Errors = append(result.Errors, err)
			continue
		}
		if _, err := s.Save(ctx, *article); err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("%s: %w", doc.Path, err))
			continue
		}
		if existing != nil {
			result.Updated = append(result.Updated, key)
		} else {
			result.Created = append(result.Created, key)
		}
	}
	s.logger.WithContext(ctx).Info("news.import.complete",
		"created", len(result.Created), "updated", len(result.Updated),
		"skipped", len(result.Skipped), "errors", len(result.Errors))
	return result, nil
}

func (s *Service) articleFromDocument(doc *markdown.Document) (*Article, error) {
	meta := doc.Meta
	articleSlug := strings.TrimSpace(meta.Slug)
	if articleSlug == "" {
		base := strings.TrimSuffix(path.Base(doc.Path), path.Ext(doc.Path))
		normalized, err := slug.Normalize(base)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", doc.Path, err)
		}
		articleSlug = normalized
	}
	html, err := s.parser.Render(doc.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", doc.Path, err)
	}
	published := meta.Date
	if published.IsZero() {
		published = doc.LastModified
	}
	return &Article{
		Slug:         articleSlug,
		Language:     doc.Language,
		Title:        meta.Title,
		Summary:      meta.Summary,
		Category:     meta.Category,
		ImageURL:     meta.Image,
		BodyMarkdown: string(doc.Body),
		BodyHTML:     html,
		Published:    !meta.Draft,
		PublishedAt:  published.UTC(),
		Checksum:     hex.EncodeToString(doc.Checksum),
	}, nil
}
