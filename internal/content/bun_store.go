package content

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-sitecms/internal/apperrors"
	"github.com/goliatone/go-sitecms/internal/identity"
	"github.com/goliatone/go-sitecms/internal/locale"
)

// PageContentModel is the bun mapping of the page_content table.
type PageContentModel struct {
	bun.BaseModel `bun:"table:page_content,alias:pc"`

	ID           uuid.UUID `bun:",pk,type:uuid"`
	PageSlug     string    `bun:"page_slug,notnull"`
	SectionKey   string    `bun:"section_key,notnull"`
	Language     *string   `bun:"language"`
	ContentType  string    `bun:"content_type,notnull,default:'text'"`
	ContentValue string    `bun:"content_value,notnull,default:''"`
	UpdatedAt    time.Time `bun:"updated_at,notnull"`
	UpdatedBy    string    `bun:"updated_by"`
}

// BunStore persists page content through bun. It works against sqlite and
// postgres.
type BunStore struct {
	db  bun.IDB
	now func() time.Time
}

// NewBunStore builds a store over db.
func NewBunStore(db bun.IDB) *BunStore {
	return &BunStore{db: db, now: time.Now}
}

var (
	_ Store  = (*BunStore)(nil)
	_ Lister = (*BunStore)(nil)
)

// Migrate creates page_content and its unique tuple index.
func Migrate(ctx context.Context, db bun.IDB) error {
	if _, err := db.NewCreateTable().Model((*PageContentModel)(nil)).IfNotExists().Exec(ctx); err != nil {
		return err
	}
	_, err := db.NewCreateIndex().
		Model((*PageContentModel)(nil)).
		Index("page_content_slug_key_lang_uidx").
		Unique().
		Column("page_slug", "section_key", "language").
		IfNotExists().
		Exec(ctx)
	return err
}

func (s *BunStore) Get(ctx context.Context, pageSlug, sectionKey string, language *locale.Language) (*Row, error) {
	model := new(PageContentModel)
	q := s.db.NewSelect().Model(model).
		Where("page_slug = ?", pageSlug).
		Where("section_key = ?", sectionKey)
	q = whereLanguage(q, language)
	if err := q.OrderExpr("updated_at DESC").Limit(1).Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRowNotFound
		}
		return nil, apperrors.Integration("DATASTORE_READ_FAILED", err, "content: get %s/%s@%s", pageSlug, sectionKey, locale.Label(language))
	}
	return modelToRow(model), nil
}

// Upsert relies on the unique tuple index for language rows. Legacy rows
// have a NULL language, which unique indexes never match, so an existing
// legacy row is located by tuple and updated by its own id.
func (s *BunStore) Upsert(ctx context.Context, row Row) (*Row, bool, error) {
	key := row.Key()
	if err := key.validate(); err != nil {
		return nil, false, err
	}

	model := rowToModel(row)
	if model.UpdatedAt.IsZero() {
		model.UpdatedAt = s.now().UTC()
	}

	if row.Language == nil {
		return s.upsertLegacy(ctx, key, model)
	}

	_, err := s.Get(ctx, row.PageSlug, row.SectionKey, row.Language)
	created := errors.Is(err, ErrRowNotFound)
	if err != nil && !created {
		return nil, false, err
	}

	_, err = s.db.NewInsert().
		Model(model).
		On("CONFLICT (page_slug, section_key, language) DO UPDATE").
		Set("content_type = EXCLUDED.content_type").
		Set("content_value = EXCLUDED.content_value").
		Set("updated_at = EXCLUDED.updated_at").
		Set("updated_by = EXCLUDED.updated_by").
		Exec(ctx)
	if err != nil {
		return nil, false, apperrors.Integration("DATASTORE_WRITE_FAILED", err, "content: upsert %s", key)
	}

	stored, err := s.Get(ctx, row.PageSlug, row.SectionKey, row.Language)
	if err != nil {
		return nil, false, err
	}
	return stored, created, nil
}

func (s *BunStore) upsertLegacy(ctx context.Context, key Key, model *PageContentModel) (*Row, bool, error) {
	existing := new(PageContentModel)
	err := s.db.NewSelect().Model(existing).
		Column("id").
		Where("page_slug = ?", model.PageSlug).
		Where("section_key = ?", model.SectionKey).
		Where("language IS NULL").
		OrderExpr("updated_at DESC").
		Limit(1).
		Scan(ctx)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := s.db.NewInsert().Model(model).Exec(ctx); err != nil {
			return nil, false, apperrors.Integration("DATASTORE_WRITE_FAILED", err, "content: insert %s", key)
		}
		stored, err := s.Get(ctx, model.PageSlug, model.SectionKey, nil)
		if err != nil {
			return nil, false, err
		}
		return stored, true, nil
	case err != nil:
		return nil, false, apperrors.Integration("DATASTORE_READ_FAILED", err, "content: get %s", key)
	}

	model.ID = existing.ID
	_, err = s.db.NewUpdate().
		Model(model).
		Column("content_type", "content_value", "updated_at", "updated_by").
		WherePK().
		Exec(ctx)
	if err != nil {
		return nil, false, apperrors.Integration("DATASTORE_WRITE_FAILED", err, "content: update %s", key)
	}
	stored, err := s.Get(ctx, model.PageSlug, model.SectionKey, nil)
	if err != nil {
		return nil, false, err
	}
	return stored, false, nil
}

func (s *BunStore) ListSection(ctx context.Context, sectionKey string, language *locale.Language) ([]*Row, error) {
	var models []PageContentModel
	q := s.db.NewSelect().Model(&models).Where("section_key = ?", sectionKey)
	q = whereLanguage(q, language)
	if err := q.OrderExpr("page_slug ASC").Scan(ctx); err != nil {
		return nil, apperrors.Integration("DATASTORE_READ_FAILED", err, "content: list section %s", sectionKey)
	}
	out := make([]*Row, 0, len(models))
	for i := range models {
		out = append(out, modelToRow(&models[i]))
	}
	return out, nil
}

func whereLanguage(q *bun.SelectQuery, language *locale.Language) *bun.SelectQuery {
	if language == nil {
		return q.Where("language IS NULL")
	}
	return q.Where("language = ?", string(*language))
}

func rowToModel(row Row) *PageContentModel {
	key := row.Key()
	model := &PageContentModel{
		ID:           identity.PageContentUUID(row.PageSlug, row.SectionKey, key.languageCode()),
		PageSlug:     row.PageSlug,
		SectionKey:   row.SectionKey,
		ContentType:  row.ContentType,
		ContentValue: row.ContentValue,
		UpdatedAt:    row.UpdatedAt,
		UpdatedBy:    row.UpdatedBy,
	}
	if model.ContentType == "" {
		model.ContentType = TypeText
	}
	if row.Language != nil {
		code := string(*row.Language)
		model.Language = &code
	}
	return model
}

func modelToRow(model *PageContentModel) *Row {
	row := &Row{
		PageSlug:     model.PageSlug,
		SectionKey:   model.SectionKey,
		ContentType:  model.ContentType,
		ContentValue: model.ContentValue,
		UpdatedAt:    model.UpdatedAt,
		UpdatedBy:    model.UpdatedBy,
	}
	if model.Language != nil {
		lang := locale.Language(*model.Language)
		row.Language = &lang
	}
	return row
}
