package editorcmd

import (
	"encoding/json"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/goliatone/go-sitecms/internal/glossary"
	"github.com/goliatone/go-sitecms/internal/locale"
	"github.com/goliatone/go-sitecms/internal/segments"
	"github.com/goliatone/go-sitecms/internal/shortcuts"
)

const (
	saveSegmentMessageType    = "sitecms.segments.save"
	deleteSegmentMessageType  = "sitecms.segments.delete"
	setShortcutMessageType    = "sitecms.shortcuts.set"
	clearShortcutMessageType  = "sitecms.shortcuts.clear"
	upsertGlossaryMessageType = "sitecms.glossary.upsert"
	deleteGlossaryMessageType = "sitecms.glossary.delete"
)

// SaveSegmentCommand stores one segment in one language. Data is validated
// against the schema of Type before it reaches the segment service.
type SaveSegmentCommand struct {
	PageSlug     string          `json:"page_slug"`
	Language     string          `json:"language"`
	ID           segments.ID     `json:"id"`
	Type         segments.Type   `json:"type"`
	Data         json.RawMessage `json:"data"`
	UpdatedBy    string          `json:"updated_by,omitempty"`
	BackfillType bool            `json:"backfill_type,omitempty"`

	// Result receives the stored array when set.
	Result *segments.SaveResult `json:"-"`
}

func (SaveSegmentCommand) Type() string { return saveSegmentMessageType }

func (m SaveSegmentCommand) Validate() error {
	errs := validation.Errors{}
	if strings.TrimSpace(m.PageSlug) == "" {
		errs["page_slug"] = validation.NewError("sitecms.segments.save.page_slug_required", "page_slug is required")
	}
	if err := languageError(m.Language); err != nil {
		errs["language"] = err
	}
	if m.ID.IsZero() {
		errs["id"] = validation.NewError("sitecms.segments.save.id_required", "id is required")
	}
	if !m.Type.Known() {
		errs["type"] = validation.NewError("sitecms.segments.save.type_unknown", "type must be a known segment type")
	}
	return errs.Filter()
}

// DeleteSegmentCommand removes one segment from one language array.
type DeleteSegmentCommand struct {
	PageSlug  string      `json:"page_slug"`
	Language  string      `json:"language"`
	ID        segments.ID `json:"id"`
	UpdatedBy string      `json:"updated_by,omitempty"`

	// Deleted reports whether a segment matched when set.
	Deleted *bool `json:"-"`
}

func (DeleteSegmentCommand) Type() string { return deleteSegmentMessageType }

func (m DeleteSegmentCommand) Validate() error {
	errs := validation.Errors{}
	if strings.TrimSpace(m.PageSlug) == "" {
		errs["page_slug"] = validation.NewError("sitecms.segments.delete.page_slug_required", "page_slug is required")
	}
	if err := languageError(m.Language); err != nil {
		errs["language"] = err
	}
	if m.ID.IsZero() {
		errs["id"] = validation.NewError("sitecms.segments.delete.id_required", "id is required")
	}
	return errs.Filter()
}

// SetShortcutCommand turns a page into a redirect. Target is the raw editor
// input; the shortcut validator parses it.
type SetShortcutCommand struct {
	PageID int64  `json:"page_id"`
	Target string `json:"target"`

	Result *shortcuts.Result `json:"-"`
}

func (SetShortcutCommand) Type() string { return setShortcutMessageType }

func (m SetShortcutCommand) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.PageID, validation.Required, validation.Min(int64(1))),
		validation.Field(&m.Target, validation.Required),
	)
}

// ClearShortcutCommand removes a page's redirect.
type ClearShortcutCommand struct {
	PageID int64 `json:"page_id"`

	Result *shortcuts.Result `json:"-"`
}

func (ClearShortcutCommand) Type() string { return clearShortcutMessageType }

func (m ClearShortcutCommand) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.PageID, validation.Required, validation.Min(int64(1))),
	)
}

// UpsertGlossaryEntryCommand stores a translation hint.
type UpsertGlossaryEntryCommand struct {
	Entry glossary.Entry `json:"entry"`

	Result *glossary.Entry `json:"-"`
}

func (UpsertGlossaryEntryCommand) Type() string { return upsertGlossaryMessageType }

func (m UpsertGlossaryEntryCommand) Validate() error {
	if strings.TrimSpace(m.Entry.Term) == "" {
		return validation.Errors{
			"term": validation.NewError("sitecms.glossary.upsert.term_required", "term is required"),
		}
	}
	return nil
}

// DeleteGlossaryEntryCommand drops a term.
type DeleteGlossaryEntryCommand struct {
	Term string `json:"term"`
}

func (DeleteGlossaryEntryCommand) Type() string { return deleteGlossaryMessageType }

func (m DeleteGlossaryEntryCommand) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Term, validation.Required),
	)
}

func languageError(code string) error {
	if _, err := locale.Parse(code); err != nil {
		return validation.NewError("sitecms.language_unsupported", "language must be one of "+supportedCodes())
	}
	return nil
}

func supportedCodes() string {
	codes := make([]string, 0, len(locale.Supported()))
	for _, lang := range locale.Supported() {
		codes = append(codes, string(lang))
	}
	return strings.Join(codes, ", ")
}
