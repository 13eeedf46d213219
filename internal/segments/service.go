package segments

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-sitecms/internal/apperrors"
	"github.com/goliatone/go-sitecms/internal/content"
	"github.com/goliatone/go-sitecms/internal/locale"
	"github.com/goliatone/go-sitecms/internal/logging"
	"github.com/goliatone/go-sitecms/internal/validation"
	"github.com/goliatone/go-sitecms/pkg/interfaces"
)

// Mode selects how English fallback content is presented.
type Mode string

const (
	// ModeRender shows English fallback content as is.
	ModeRender Mode = "render"
	// ModeEdit blanks the text fields of English fallback content so an
	// editor never saves English copy under another language.
	ModeEdit Mode = "edit"
)

// ParseMode maps query values onto a Mode, defaulting to ModeRender.
func ParseMode(value string) Mode {
	if strings.EqualFold(strings.TrimSpace(value), string(ModeEdit)) {
		return ModeEdit
	}
	return ModeRender
}

var (
	ErrPageSlugRequired = apperrors.Validation("PAGE_SLUG_REQUIRED", "segments: page slug is required")
	ErrIDRequired       = apperrors.Validation("SEGMENT_ID_REQUIRED", "segments: segment id is required")
	ErrTypeRequired     = apperrors.Validation("SEGMENT_TYPE_REQUIRED", "segments: segment type is required")
	ErrTypeMismatch     = apperrors.Validation("SEGMENT_TYPE_MISMATCH", "segments: data does not match segment type")
	ErrLanguageInvalid  = apperrors.Validation("LANGUAGE_INVALID", "segments: unsupported language")
)

// Service reads and writes the page_segments row of a page.
type Service struct {
	content *content.Service
	schemas *validation.Registry
	logger  interfaces.Logger
}

type ServiceOption func(*Service)

func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithSchemas replaces the payload schema registry. A nil registry disables
// schema checks.
func WithSchemas(schemas *validation.Registry) ServiceOption {
	return func(s *Service) {
		s.schemas = schemas
	}
}

// NewService wires the segment service on top of the content resolver.
func NewService(resolver *content.Service, opts ...ServiceOption) (*Service, error) {
	if resolver == nil {
		return nil, content.ErrStoreRequired
	}
	schemas, err := NewSchemaRegistry()
	if err != nil {
		return nil, err
	}
	s := &Service{content: resolver, schemas: schemas, logger: logging.NoOp()}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Schemas exposes the payload schema registry.
func (s *Service) Schemas() *validation.Registry { return s.schemas }

// Page is the resolved segment array of a page.
type Page struct {
	Slug     string
	Language locale.Language
	Segments []Segment
	Fallback content.Fallback
}

// Found reports whether any page_segments row answered the read.
func (p Page) Found() bool { return p.Fallback != "" }

// List resolves the segment array through the fallback read order.
func (s *Service) List(ctx context.Context, slug string, language locale.Language) (Page, error) {
	page := Page{Slug: slug, Language: language}
	res, err := s.content.Resolve(ctx, slug, content.SectionPageSegments, language)
	if err != nil || !res.Found() {
		return page, err
	}
	list, err := DecodeArray(res.Raw)
	if err != nil {
		s.pageLogger(ctx, slug, language).Warn("segments.decode.failed",
			"error", apperrors.Decode("SEGMENTS_DECODE_FAILED", err, "segments: decode page_segments"))
		return page, nil
	}
	page.Segments = list
	page.Fallback = res.Fallback
	return page, nil
}

// LookupRequest addresses one segment. Type is used to build a zero payload
// when the segment does not exist yet.
type LookupRequest struct {
	PageSlug string
	ID       ID
	Type     Type
	Language locale.Language
	Mode     Mode
}

// LookupResult carries the segment payload and where it came from.
type LookupResult struct {
	Segment  *Segment
	Data     Data
	Fallback content.Fallback
	Blanked  bool
}

// Found reports whether the segment exists in the resolved array.
func (r LookupResult) Found() bool { return r.Segment != nil }

// IsFallback reports whether the payload belongs to another language.
func (r LookupResult) IsFallback() bool {
	return r.Found() && r.Fallback != content.FallbackNone
}

// Lookup finds a segment by id in the resolved array. A missing segment is
// a zero payload for req.Type, not an error.
func (s *Service) Lookup(ctx context.Context, req LookupRequest) (LookupResult, error) {
	page, err := s.List(ctx, req.PageSlug, req.Language)
	if err != nil {
		return LookupResult{}, err
	}
	idx := Find(page.Segments, req.ID)
	if idx < 0 {
		return LookupResult{Data: Zero(req.Type), Fallback: content.FallbackNone}, nil
	}

	segment := page.Segments[idx]
	result := LookupResult{Segment: &segment, Data: segment.Data, Fallback: page.Fallback}
	if result.Data == nil {
		t := segment.Type
		if t == "" {
			t = req.Type
		}
		result.Data = Zero(t)
	}
	if req.Mode == ModeEdit && page.Fallback == content.FallbackEnglish {
		blanked, err := Blank(result.Data)
		if err != nil {
			return LookupResult{}, apperrors.Decode("SEGMENT_BLANK_FAILED", err, "segments: blank %s", segment.ID)
		}
		result.Data = blanked
		result.Blanked = true
	}
	return result, nil
}

// SaveInput is an editor save of one segment in one language.
type SaveInput struct {
	PageSlug  string
	Language  locale.Language
	ID        ID
	Type      Type
	Data      Data
	UpdatedBy string
	// BackfillType overwrites the stored type tag, for rows saved before
	// segments carried one.
	BackfillType bool
}

// SaveResult describes the stored array after a save.
type SaveResult struct {
	Segments []Segment
	Appended bool
	Row      *content.Row
}

// Save replaces the segment in the exact language array, or appends it,
// and upserts the row. Other languages are never read.
func (s *Service) Save(ctx context.Context, in SaveInput) (SaveResult, error) {
	if err := s.validateSave(&in); err != nil {
		return SaveResult{}, err
	}
	logger := s.pageLogger(ctx, in.PageSlug, in.Language)

	list, err := s.exactArray(ctx, in.PageSlug, in.Language)
	if err != nil {
		return SaveResult{}, err
	}

	result := SaveResult{}
	if idx := Find(list, in.ID); idx >= 0 {
		existing := list[idx]
		tag := existing.Type
		switch {
		case tag == "" || in.BackfillType:
			tag = in.Type
		case tag != in.Type:
			logger.Warn("segments.save.type_differs", "segment_id", in.ID.String(), "stored_type", string(tag), "segment_type", string(in.Type))
		}
		// A fresh value drops the decoded bytes so the element is re-encoded.
		list[idx] = Segment{ID: existing.ID, Type: tag, Position: existing.Position, Data: in.Data, Extra: existing.Extra}
	} else {
		list = append(list, Segment{ID: in.ID, Type: in.Type, Data: in.Data})
		result.Appended = true
	}

	row, err := s.writeArray(ctx, in.PageSlug, in.Language, list, in.UpdatedBy)
	if err != nil {
		return SaveResult{}, err
	}
	logger.Info("segments.save.success", "segment_id", in.ID.String(), "segment_type", string(in.Type), "appended", result.Appended)
	result.Segments = list
	result.Row = row
	return result, nil
}

// DeleteInput removes one segment from one language array.
type DeleteInput struct {
	PageSlug  string
	Language  locale.Language
	ID        ID
	UpdatedBy string
}

// Delete filters the segment out of the exact language array. It reports
// false when nothing matched.
func (s *Service) Delete(ctx context.Context, in DeleteInput) (bool, error) {
	if strings.TrimSpace(in.PageSlug) == "" {
		return false, ErrPageSlugRequired
	}
	if in.ID.IsZero() {
		return false, ErrIDRequired
	}
	if _, err := locale.Parse(string(in.Language)); err != nil {
		return false, ErrLanguageInvalid
	}

	list, err := s.exactArray(ctx, in.PageSlug, in.Language)
	if err != nil {
		return false, err
	}
	kept := make([]Segment, 0, len(list))
	for _, seg := range list {
		if !seg.ID.Equal(in.ID) {
			kept = append(kept, seg)
		}
	}
	if len(kept) == len(list) {
		return false, nil
	}
	if _, err := s.writeArray(ctx, in.PageSlug, in.Language, kept, in.UpdatedBy); err != nil {
		return false, err
	}
	s.pageLogger(ctx, in.PageSlug, in.Language).Info("segments.delete.success", "segment_id", in.ID.String())
	return true, nil
}

func (s *Service) validateSave(in *SaveInput) error {
	in.PageSlug = strings.TrimSpace(in.PageSlug)
	if in.PageSlug == "" {
		return ErrPageSlugRequired
	}
	if in.ID.IsZero() {
		return ErrIDRequired
	}
	if _, err := locale.Parse(string(in.Language)); err != nil {
		return ErrLanguageInvalid
	}
	if in.Type == "" && in.Data != nil {
		in.Type = in.Data.SegmentType()
	}
	if in.Type == "" {
		return ErrTypeRequired
	}
	if in.Data == nil {
		in.Data = Zero(in.Type)
		if in.Data == nil {
			return fmt.Errorf("%w: %q", ErrUnknownType, in.Type)
		}
	}
	if in.Data.SegmentType() != in.Type {
		return fmt.Errorf("%w: %q carries %q data", ErrTypeMismatch, in.Type, in.Data.SegmentType())
	}
	if s.schemas != nil && in.Type.Known() {
		if err := s.schemas.Validate(string(in.Type), in.Data); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) exactArray(ctx context.Context, slug string, language locale.Language) ([]Segment, error) {
	res, err := s.content.ResolveExact(ctx, slug, content.SectionPageSegments, language)
	if err != nil || !res.Found() {
		return nil, err
	}
	list, err := DecodeArray(res.Raw)
	if err != nil {
		s.pageLogger(ctx, slug, language).Warn("segments.decode.failed",
			"error", apperrors.Decode("SEGMENTS_DECODE_FAILED", err, "segments: decode page_segments"))
		return nil, nil
	}
	return list, nil
}

func (s *Service) writeArray(ctx context.Context, slug string, language locale.Language, list []Segment, by string) (*content.Row, error) {
	encoded, err := EncodeArray(list)
	if err != nil {
		return nil, apperrors.Decode("SEGMENTS_ENCODE_FAILED", err, "segments: encode page_segments")
	}
	return s.content.Write(ctx, content.WriteInput{
		PageSlug:     slug,
		SectionKey:   content.SectionPageSegments,
		Language:     language,
		ContentType:  content.TypeJSON,
		ContentValue: encoded,
		UpdatedBy:    by,
	})
}

func (s *Service) pageLogger(ctx context.Context, slug string, language locale.Language) interfaces.Logger {
	return logging.WithPage(s.logger, slug, string(language)).WithContext(ctx)
}
