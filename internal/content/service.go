package content

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/goliatone/go-sitecms/internal/apperrors"
	"github.com/goliatone/go-sitecms/internal/events"
	"github.com/goliatone/go-sitecms/internal/locale"
	"github.com/goliatone/go-sitecms/internal/logging"
	"github.com/goliatone/go-sitecms/pkg/interfaces"
)

// Service implements the content resolution protocol over a Store.
type Service struct {
	store  Store
	logger interfaces.Logger
	events *events.Broadcaster[ChangeEvent]
	now    func() time.Time
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the clock used for updated_at stamps.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService builds the resolver. It panics without a store.
func NewService(store Store, opts ...ServiceOption) *Service {
	if store == nil {
		panic(ErrStoreRequired)
	}
	s := &Service{
		store:  store,
		logger: logging.NoOp(),
		events: events.NewBroadcaster[ChangeEvent](16),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Store exposes the underlying store.
func (s *Service) Store() Store { return s.store }

// Resolve returns the best available content for the requested language:
// the exact row, then the English row for non-English requests, then the
// legacy NULL language row. Nothing found yields a zero Resolution and a nil
// error. Malformed JSON also yields a zero Resolution and is only logged.
func (s *Service) Resolve(ctx context.Context, pageSlug, sectionKey string, language locale.Language) (Resolution, error) {
	steps := make([]readStep, 0, 3)
	steps = append(steps, readStep{language.Ptr(), FallbackNone})
	if language != locale.Fallback {
		steps = append(steps, readStep{locale.Fallback.Ptr(), FallbackEnglish})
	}
	steps = append(steps, readStep{locale.Legacy(), FallbackLegacy})

	for _, step := range steps {
		row, err := s.lookup(ctx, pageSlug, sectionKey, step.lang)
		if err != nil {
			return Resolution{}, err
		}
		if row == nil {
			continue
		}
		return s.decode(row, step.fallback), nil
	}
	return Resolution{}, nil
}

type readStep struct {
	lang     *locale.Language
	fallback Fallback
}

// ResolveExact reads only the requested language. Writers use it so edits
// never pick up another language's payload.
func (s *Service) ResolveExact(ctx context.Context, pageSlug, sectionKey string, language locale.Language) (Resolution, error) {
	row, err := s.lookup(ctx, pageSlug, sectionKey, language.Ptr())
	if err != nil || row == nil {
		return Resolution{}, err
	}
	return s.decode(row, FallbackNone), nil
}

// ResolveText resolves a per-field scalar section such as "hero_title".
func (s *Service) ResolveText(ctx context.Context, pageSlug, sectionKey string, language locale.Language) (string, Fallback, error) {
	res, err := s.Resolve(ctx, pageSlug, sectionKey, language)
	if err != nil || !res.Found() {
		return "", "", err
	}
	if text, ok := res.Value.(string); ok {
		return text, res.Fallback, nil
	}
	return res.Raw, res.Fallback, nil
}

// WriteInput is a full replacement of one row's payload.
type WriteInput struct {
	PageSlug     string
	SectionKey   string
	Language     locale.Language
	ContentType  string
	ContentValue string
	UpdatedBy    string
}

// Write upserts the row for the exact tuple and publishes a change event.
func (s *Service) Write(ctx context.Context, in WriteInput) (*Row, error) {
	row := Row{
		PageSlug:     strings.TrimSpace(in.PageSlug),
		SectionKey:   strings.TrimSpace(in.SectionKey),
		Language:     in.Language.Ptr(),
		ContentType:  in.ContentType,
		ContentValue: in.ContentValue,
		UpdatedAt:    s.now().UTC(),
		UpdatedBy:    in.UpdatedBy,
	}
	if err := row.Key().validate(); err != nil {
		return nil, err
	}
	if row.ContentType == "" {
		row.ContentType = sniffType(row.ContentValue)
	}

	logger := logging.WithPage(s.logger, row.PageSlug, string(in.Language)).WithContext(ctx)
	stored, created, err := s.store.Upsert(ctx, row)
	if err != nil {
		logger.Error("content.write.failed", "section_key", row.SectionKey, "error", err)
		return nil, err
	}

	change := ChangeUpdated
	if created {
		change = ChangeCreated
	}
	s.events.Publish(ChangeEvent{Type: change, Key: stored.Key(), At: stored.UpdatedAt, By: stored.UpdatedBy})
	logger.Debug("content.write.success", "section_key", row.SectionKey, "change", string(change))
	return stored, nil
}

// Subscribe streams change events until ctx is cancelled.
func (s *Service) Subscribe(ctx context.Context) (<-chan ChangeEvent, error) {
	return s.events.Subscribe(ctx)
}

func (s *Service) lookup(ctx context.Context, pageSlug, sectionKey string, language *locale.Language) (*Row, error) {
	row, err := s.store.Get(ctx, pageSlug, sectionKey, language)
	switch {
	case errors.Is(err, ErrRowNotFound), apperrors.IsNotFound(err):
		return nil, nil
	case err != nil:
		s.logger.Error("content.read.failed",
			"page_slug", pageSlug, "section_key", sectionKey, "language", locale.Label(language), "error", err)
		if apperrors.IsIntegration(err) {
			return nil, err
		}
		return nil, apperrors.Integration("DATASTORE_READ_FAILED", err, "content: get %s/%s", pageSlug, sectionKey)
	case row == nil || strings.TrimSpace(row.ContentValue) == "":
		return nil, nil
	}
	return row, nil
}

func (s *Service) decode(row *Row, fallback Fallback) Resolution {
	res := Resolution{Row: row, Fallback: fallback, Raw: row.ContentValue}
	if !isStructured(row) {
		res.Value = row.ContentValue
		return res
	}
	var value any
	if err := json.Unmarshal([]byte(row.ContentValue), &value); err != nil {
		s.logger.Warn("content.decode.failed",
			"page_slug", row.PageSlug, "section_key", row.SectionKey,
			"language", locale.Label(row.Language), "error", apperrors.Decode("CONTENT_DECODE_FAILED", err, "content: decode"))
		return Resolution{}
	}
	res.Value = value
	return res
}

// DecodeInto unmarshals a resolution's raw JSON into target. A zero
// Resolution leaves target untouched and returns nil.
func DecodeInto(res Resolution, target any) error {
	if !res.Found() {
		return nil
	}
	if err := json.Unmarshal([]byte(res.Raw), target); err != nil {
		return apperrors.Decode("CONTENT_DECODE_FAILED", err, "content: decode %s", res.Row.Key())
	}
	return nil
}

func isStructured(row *Row) bool {
	if strings.EqualFold(strings.TrimSpace(row.ContentType), TypeJSON) {
		return true
	}
	return sniffType(row.ContentValue) == TypeJSON
}

func sniffType(value string) string {
	trimmed := strings.TrimSpace(value)
	if strings.HasPrefix(trimmed, "[") || strings.HasPrefix(trimmed, "{") {
		return TypeJSON
	}
	return TypeText
}
