package translation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-sitecms/internal/apperrors"
	"github.com/goliatone/go-sitecms/internal/glossary"
	"github.com/goliatone/go-sitecms/internal/locale"
	"github.com/goliatone/go-sitecms/internal/logging"
	"github.com/goliatone/go-sitecms/internal/segments"
	"github.com/goliatone/go-sitecms/pkg/interfaces"
)

var (
	ErrTranslatorRequired = errors.New("translation: translator is required")
	ErrSegmentsRequired   = errors.New("translation: segment service is required")
	// ErrSourceLanguage rejects translating English into English.
	ErrSourceLanguage = apperrors.Validation("TRANSLATION_TARGET_INVALID", "translation: target language must differ from English")
	// ErrSourceMissing reports that no English segment exists to translate.
	ErrSourceMissing = apperrors.New(apperrors.KindNotFound, "TRANSLATION_SOURCE_MISSING", "translation: no English source segment")
)

// Service produces translated drafts. Drafts are never saved here; the
// editor reviews and saves them through the segment service.
type Service struct {
	segments   *segments.Service
	translator interfaces.Translator
	glossary   *glossary.Service
	bus        *Bus
	logger     interfaces.Logger
}

type ServiceOption func(*Service)

func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithGlossary adds glossary hints to every request.
func WithGlossary(g *glossary.Service) ServiceOption {
	return func(s *Service) {
		s.glossary = g
	}
}

func WithBus(bus *Bus) ServiceOption {
	return func(s *Service) {
		if bus != nil {
			s.bus = bus
		}
	}
}

func NewService(segs *segments.Service, translator interfaces.Translator, opts ...ServiceOption) (*Service, error) {
	if segs == nil {
		return nil, ErrSegmentsRequired
	}
	if translator == nil {
		return nil, ErrTranslatorRequired
	}
	s := &Service{segments: segs, translator: translator, bus: NewBus(), logger: logging.NoOp()}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Bus exposes the translation event bus.
func (s *Service) Bus() *Bus { return s.bus }

// TranslateTexts translates keyed English texts into language and applies
// the same keys back contract.
func (s *Service) TranslateTexts(ctx context.Context, texts map[string]string, language locale.Language) (map[string]string, error) {
	if language == locale.English {
		return nil, ErrSourceLanguage
	}
	if len(texts) == 0 {
		return map[string]string{}, nil
	}
	req := interfaces.TranslationRequest{
		Texts:          texts,
		TargetLanguage: string(language),
		SourceLanguage: string(locale.English),
	}
	if s.glossary != nil {
		hints, err := s.glossary.Hints(ctx, language)
		if err != nil {
			s.logger.WithContext(ctx).Warn("translation.glossary.failed", "error", err)
		} else {
			req.Hints = relevantHints(hints, texts)
		}
	}
	resp, err := s.translator.Translate(ctx, req)
	if err != nil {
		if apperrors.IsIntegration(err) {
			return nil, err
		}
		return nil, apperrors.Integration("TRANSLATION_FAILED", err, "translation: translate %d texts", len(texts))
	}
	return Reconcile(texts, resp.TranslatedTexts), nil
}

// AutoTranslateRequest addresses the segment to draft.
type AutoTranslateRequest struct {
	PageSlug string
	ID       segments.ID
	Type     segments.Type
	Language locale.Language
}

// Draft is a translated payload ready for review.
type Draft struct {
	Data segments.Data
	// Translated counts the text fields sent to the translator.
	Translated int
	// MergedOntoTarget is true when the draft kept the target language's own
	// non-text fields.
	MergedOntoTarget bool
}

// AutoTranslateSegment pulls the English segment, translates its text
// fields and returns a draft for req.Language.
func (s *Service) AutoTranslateSegment(ctx context.Context, req AutoTranslateRequest) (Draft, error) {
	if _, err := locale.Parse(string(req.Language)); err != nil {
		return Draft{}, segments.ErrLanguageInvalid
	}
	if req.Language == locale.English {
		return Draft{}, ErrSourceLanguage
	}
	logger := logging.WithPage(s.logger, req.PageSlug, string(req.Language)).WithContext(ctx)

	source, err := s.segments.Lookup(ctx, segments.LookupRequest{
		PageSlug: req.PageSlug, ID: req.ID, Type: req.Type, Language: locale.English, Mode: segments.ModeRender,
	})
	if err != nil {
		return Draft{}, err
	}
	if !source.Found() || source.Data == nil {
		return Draft{}, fmt.Errorf("%w: %s/%s", ErrSourceMissing, req.PageSlug, req.ID)
	}

	texts, err := segments.ExtractText(source.Data)
	if err != nil {
		return Draft{}, apperrors.Decode("TRANSLATION_EXTRACT_FAILED", err, "translation: extract %s", req.ID)
	}
	translated, err := s.TranslateTexts(ctx, texts, req.Language)
	if err != nil {
		logger.Error("translation.segment.failed", "segment_id", req.ID.String(), "error", err)
		return Draft{}, err
	}

	base, merged := s.mergeBase(ctx, req, source.Data, translated)
	draft, err := segments.ApplyText(base, translated)
	if err != nil {
		return Draft{}, apperrors.Decode("TRANSLATION_APPLY_FAILED", err, "translation: apply %s", req.ID)
	}

	s.bus.Publish(Event{
		Kind: EventDrafted, PageSlug: req.PageSlug, SegmentID: req.ID.String(),
		Language: req.Language, Translated: len(translated),
	})
	logger.Info("translation.segment.drafted", "segment_id", req.ID.String(), "fields", len(translated), "merged", merged)
	return Draft{Data: draft, Translated: len(translated), MergedOntoTarget: merged}, nil
}

// RequestTranslation asks subscribed editors to run an auto-translate.
func (s *Service) RequestTranslation(pageSlug string, id segments.ID, language locale.Language) {
	s.bus.Publish(Event{Kind: EventRequested, PageSlug: pageSlug, SegmentID: id.String(), Language: language})
}

// mergeBase picks the payload translations are written onto. The target
// language's own segment is used when it has every translated location, so
// its non-text fields survive; otherwise the English payload is the base.
func (s *Service) mergeBase(ctx context.Context, req AutoTranslateRequest, english segments.Data, translated map[string]string) (segments.Data, bool) {
	target, err := s.segments.Lookup(ctx, segments.LookupRequest{
		PageSlug: req.PageSlug, ID: req.ID, Type: req.Type, Language: req.Language, Mode: segments.ModeRender,
	})
	if err != nil || !target.Found() || target.IsFallback() || target.Data == nil {
		return english, false
	}
	if target.Data.SegmentType() != english.SegmentType() {
		return english, false
	}
	paths, err := segments.TextPaths(target.Data)
	if err != nil {
		return english, false
	}
	for key := range translated {
		if !paths[key] {
			return english, false
		}
	}
	return target.Data, true
}

// relevantHints keeps the glossary terms that occur in texts.
func relevantHints(hints, texts map[string]string) map[string]string {
	out := make(map[string]string)
	for term, rendering := range hints {
		for _, text := range texts {
			if strings.Contains(strings.ToLower(text), strings.ToLower(term)) {
				out[term] = rendering
				break
			}
		}
	}
	return out
}
