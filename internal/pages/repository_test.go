package pages_test

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-sitecms/internal/apperrors"
	"github.com/goliatone/go-sitecms/internal/pages"
	"github.com/goliatone/go-sitecms/pkg/testsupport"
)

func repositories(t *testing.T) map[string]pages.Repository {
	t.Helper()
	db := testsupport.NewBunDB(t, pages.Migrate)
	return map[string]pages.Repository{
		"memory": pages.NewMemoryRepository(),
		"bun":    pages.NewBunRepository(db),
	}
}

func TestRepositoryLifecycle(t *testing.T) {
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			if _, err := repo.Create(ctx, &pages.Entry{PageID: 2, PageSlug: "/products/arcturus/", PageTitle: "Arcturus"}); err != nil {
				t.Fatalf("create: %v", err)
			}
			if _, err := repo.Create(ctx, &pages.Entry{PageID: 1, PageSlug: "home", PageTitle: "Home"}); err != nil {
				t.Fatalf("create: %v", err)
			}

			bySlug, err := repo.GetBySlug(ctx, "products/arcturus")
			if err != nil {
				t.Fatalf("get by slug: %v", err)
			}
			if bySlug.PageID != 2 || bySlug.IsShortcut() {
				t.Fatalf("unexpected entry %+v", bySlug)
			}

			target := "home"
			updated, err := repo.UpdateTarget(ctx, 2, &target)
			if err != nil {
				t.Fatalf("update target: %v", err)
			}
			if updated.Target() != "home" {
				t.Fatalf("expected target home, got %q", updated.Target())
			}
			reloaded, err := repo.GetByPageID(ctx, 2)
			if err != nil {
				t.Fatalf("get by id: %v", err)
			}
			if !reloaded.IsShortcut() {
				t.Fatal("expected stored shortcut")
			}

			cleared, err := repo.UpdateTarget(ctx, 2, nil)
			if err != nil {
				t.Fatalf("clear target: %v", err)
			}
			if cleared.IsShortcut() {
				t.Fatal("expected cleared shortcut")
			}

			list, err := repo.List(ctx)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if len(list) != 2 || list[0].PageID != 1 {
				t.Fatalf("expected entries ordered by page id, got %+v", list)
			}
		})
	}
}

func TestRepositoryNotFound(t *testing.T) {
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			_, err := repo.GetByPageID(context.Background(), 404)
			var nf *pages.NotFoundError
			if !errors.As(err, &nf) {
				t.Fatalf("expected not found error, got %v", err)
			}
			if !apperrors.IsNotFound(err) {
				t.Fatal("expected not found classification")
			}
			if _, err := repo.UpdateTarget(context.Background(), 404, nil); !errors.As(err, &nf) {
				t.Fatalf("expected not found on update, got %v", err)
			}
		})
	}
}

func TestSegmentRegistryOrdering(t *testing.T) {
	db := testsupport.NewBunDB(t, pages.Migrate)
	repos := map[string]pages.SegmentRepository{
		"memory": pages.NewMemorySegmentRepository(),
		"bun":    pages.NewBunSegmentRepository(db),
	}
	for name, repo := range repos {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			entries := []pages.SegmentEntry{
				{PageSlug: "arcturus", SegmentID: "video", SegmentType: "video", Position: 2},
				{PageSlug: "arcturus", SegmentID: "faq", SegmentType: "faq", Position: 1},
				{PageSlug: "other", SegmentID: "intro", SegmentType: "intro"},
			}
			for i := range entries {
				if _, err := repo.Upsert(ctx, &entries[i]); err != nil {
					t.Fatalf("upsert: %v", err)
				}
			}
			if _, err := repo.Upsert(ctx, &pages.SegmentEntry{PageSlug: "arcturus", SegmentID: "faq", SegmentType: "faq", Label: "FAQ", Position: 3}); err != nil {
				t.Fatalf("re-upsert: %v", err)
			}
			list, err := repo.ListForPage(ctx, "arcturus")
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if len(list) != 2 || list[0].SegmentID != "video" || list[1].Label != "FAQ" {
				t.Fatalf("unexpected segment registry %+v", list)
			}
		})
	}
}
