package content_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-sitecms/internal/content"
	"github.com/goliatone/go-sitecms/internal/locale"
	"github.com/goliatone/go-sitecms/pkg/testsupport"
)

func TestBunStoreUpsertOnTuple(t *testing.T) {
	ctx := context.Background()
	db := testsupport.NewBunDB(t, content.Migrate)
	store := content.NewBunStore(db)

	if _, err := store.Get(ctx, "arcturus", "page_segments", locale.German.Ptr()); !errors.Is(err, content.ErrRowNotFound) {
		t.Fatalf("expected ErrRowNotFound, got %v", err)
	}

	_, created, err := store.Upsert(ctx, content.Row{
		PageSlug: "arcturus", SectionKey: "page_segments", Language: locale.German.Ptr(),
		ContentType: content.TypeJSON, ContentValue: `[]`,
	})
	if err != nil || !created {
		t.Fatalf("first upsert: created=%v err=%v", created, err)
	}

	stored, created, err := store.Upsert(ctx, content.Row{
		PageSlug: "arcturus", SectionKey: "page_segments", Language: locale.German.Ptr(),
		ContentType: content.TypeJSON, ContentValue: `[{"id":1}]`, UpdatedBy: "editor",
	})
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if created {
		t.Fatal("expected update on existing tuple")
	}
	if stored.ContentValue != `[{"id":1}]` || stored.UpdatedBy != "editor" {
		t.Fatalf("unexpected stored row %+v", stored)
	}

	if _, _, err := store.Upsert(ctx, content.Row{
		PageSlug: "arcturus", SectionKey: "page_segments", Language: locale.English.Ptr(), ContentValue: `[{"id":2}]`,
	}); err != nil {
		t.Fatalf("english upsert: %v", err)
	}
	german, err := store.Get(ctx, "arcturus", "page_segments", locale.German.Ptr())
	if err != nil || german.ContentValue != `[{"id":1}]` {
		t.Fatalf("expected german row untouched, got %+v (%v)", german, err)
	}

	rows, err := store.ListSection(ctx, "page_segments", locale.German.Ptr())
	if err != nil || len(rows) != 1 {
		t.Fatalf("ListSection: %d rows, err %v", len(rows), err)
	}
}

func TestBunStoreLegacyRows(t *testing.T) {
	ctx := context.Background()
	db := testsupport.NewBunDB(t, content.Migrate)
	store := content.NewBunStore(db)

	for _, value := range []string{"first", "second"} {
		if _, _, err := store.Upsert(ctx, content.Row{PageSlug: "about", SectionKey: "hero_title", ContentValue: value}); err != nil {
			t.Fatalf("legacy upsert %q: %v", value, err)
		}
	}
	row, err := store.Get(ctx, "about", "hero_title", locale.Legacy())
	if err != nil {
		t.Fatalf("Get legacy: %v", err)
	}
	if row.Language != nil || row.ContentValue != "second" {
		t.Fatalf("unexpected legacy row %+v", row)
	}

	svc := content.NewService(store)
	res, err := svc.Resolve(ctx, "about", "hero_title", locale.German)
	if err != nil || res.Fallback != content.FallbackLegacy {
		t.Fatalf("expected legacy fallback, got %+v (%v)", res, err)
	}
}

func TestBunStoreUpdatesImportedLegacyRowInPlace(t *testing.T) {
	ctx := context.Background()
	db := testsupport.NewBunDB(t, content.Migrate)
	store := content.NewBunStore(db)

	imported := &content.PageContentModel{
		ID:           uuid.New(),
		PageSlug:     "about",
		SectionKey:   "hero_title",
		ContentType:  content.TypeText,
		ContentValue: "imported",
		UpdatedAt:    time.Now().UTC().Add(-time.Hour),
	}
	if _, err := db.NewInsert().Model(imported).Exec(ctx); err != nil {
		t.Fatalf("seed legacy row: %v", err)
	}

	stored, created, err := store.Upsert(ctx, content.Row{PageSlug: "about", SectionKey: "hero_title", ContentValue: "edited", UpdatedBy: "editor"})
	if err != nil {
		t.Fatalf("legacy upsert: %v", err)
	}
	if created {
		t.Fatal("expected imported legacy row to be updated")
	}
	if stored.ContentValue != "edited" || stored.UpdatedBy != "editor" {
		t.Fatalf("unexpected stored row %+v", stored)
	}

	var models []content.PageContentModel
	if err := db.NewSelect().Model(&models).Where("page_slug = ?", "about").Scan(ctx); err != nil {
		t.Fatalf("select rows: %v", err)
	}
	if len(models) != 1 {
		t.Fatalf("expected a single legacy row, got %d", len(models))
	}
	if models[0].ID != imported.ID || models[0].ContentValue != "edited" {
		t.Fatalf("expected row %s updated in place, got %+v", imported.ID, models[0])
	}
}
