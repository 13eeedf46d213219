// Package glossary keeps the terminology rules fed to the translator.
package glossary

import (
	"context"
	"sort"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-sitecms/internal/apperrors"
	"github.com/goliatone/go-sitecms/internal/identity"
	"github.com/goliatone/go-sitecms/internal/locale"
)

// TermType controls how a term is treated during translation.
type TermType string

const (
	// NonTranslate terms are kept verbatim in every language.
	NonTranslate TermType = "non-translate"
	// PreferredTranslation terms map to a fixed translation per language.
	PreferredTranslation TermType = "preferred-translation"
	// Abbreviation terms are kept verbatim.
	Abbreviation TermType = "abbreviation"
	// CompanySpecific terms use their translation when one exists.
	CompanySpecific TermType = "company-specific"
)

// Entry is one glossary row.
type Entry struct {
	bun.BaseModel `bun:"table:glossary,alias:g"`

	ID           uuid.UUID         `bun:",pk,type:uuid" json:"-"`
	Term         string            `bun:"term,notnull,unique" json:"term"`
	TermType     TermType          `bun:"term_type,notnull" json:"term_type"`
	Translations map[string]string `bun:"translations,type:jsonb" json:"translations,omitempty"`
	Context      string            `bun:"context,notnull,default:''" json:"context,omitempty"`
	UpdatedAt    time.Time         `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`
}

// Validate checks the entry before it is stored.
func (e Entry) Validate() error {
	err := validation.ValidateStruct(&e,
		validation.Field(&e.Term, validation.Required, validation.Length(1, 200)),
		validation.Field(&e.TermType, validation.Required, validation.In(
			NonTranslate, PreferredTranslation, Abbreviation, CompanySpecific,
		)),
		validation.Field(&e.Translations, validation.By(func(value any) error {
			translations, _ := value.(map[string]string)
			for code := range translations {
				if _, err := locale.Parse(code); err != nil {
					return validation.NewError("glossary.translations.language", "unsupported language "+code)
				}
			}
			return nil
		})),
	)
	if err != nil {
		return &apperrors.Error{Kind: apperrors.KindValidation, Code: "GLOSSARY_INVALID", Message: "glossary: invalid entry", Err: err}
	}
	return nil
}

// Repository exposes glossary persistence.
type Repository interface {
	List(ctx context.Context) ([]*Entry, error)
	Upsert(ctx context.Context, entry *Entry) (*Entry, error)
	Delete(ctx context.Context, term string) error
}

// ErrNotFound reports a missing term.
var ErrNotFound = apperrors.New(apperrors.KindNotFound, "GLOSSARY_NOT_FOUND", "glossary: term not found")

// Migrate creates the glossary table.
func Migrate(ctx context.Context, db bun.IDB) error {
	_, err := db.NewCreateTable().Model((*Entry)(nil)).IfNotExists().Exec(ctx)
	return err
}

// Service validates entries and builds translation hints.
type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

func (s *Service) List(ctx context.Context) ([]*Entry, error) {
	return s.repo.List(ctx)
}

// Upsert validates and stores entry, keyed by its normalised term.
func (s *Service) Upsert(ctx context.Context, entry Entry) (*Entry, error) {
	entry.Term = strings.TrimSpace(entry.Term)
	entry.TermType = TermType(strings.ToLower(strings.TrimSpace(string(entry.TermType))))
	if err := entry.Validate(); err != nil {
		return nil, err
	}
	entry.ID = identity.GlossaryUUID(entry.Term)
	entry.UpdatedAt = s.now().UTC()
	return s.repo.Upsert(ctx, &entry)
}

func (s *Service) Delete(ctx context.Context, term string) error {
	term = strings.TrimSpace(term)
	if term == "" {
		return apperrors.Validation("GLOSSARY_TERM_REQUIRED", "glossary: term is required")
	}
	return s.repo.Delete(ctx, term)
}

// Hints maps each term to the form it must take in language: verbatim for
// non-translate and abbreviation terms, the stored translation otherwise.
// Terms without a translation for language are kept verbatim.
func (s *Service) Hints(ctx context.Context, language locale.Language) (map[string]string, error) {
	entries, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperrors.Integration("GLOSSARY_READ_FAILED", err, "glossary: list")
	}
	return BuildHints(entries, language), nil
}

// BuildHints is Hints over an already loaded term list.
func BuildHints(entries []*Entry, language locale.Language) map[string]string {
	hints := make(map[string]string, len(entries))
	for _, entry := range entries {
		if entry == nil || entry.Term == "" {
			continue
		}
		switch entry.TermType {
		case PreferredTranslation, CompanySpecific:
			if translated := strings.TrimSpace(entry.Translations[string(language)]); translated != "" {
				hints[entry.Term] = translated
				continue
			}
		}
		hints[entry.Term] = entry.Term
	}
	return hints
}

func cloneEntry(src *Entry) *Entry {
	out := *src
	if src.Translations != nil {
		out.Translations = make(map[string]string, len(src.Translations))
		for k, v := range src.Translations {
			out.Translations[k] = v
		}
	}
	return &out
}

func sortEntries(entries []*Entry) {
	sort.Slice(entries, func(i, j int) bool {
		return strings.ToLower(entries[i].Term) < strings.ToLower(entries[j].Term)
	})
}
