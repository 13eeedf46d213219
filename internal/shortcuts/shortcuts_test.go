package shortcuts

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-sitecms/internal/apperrors"
	"github.com/goliatone/go-sitecms/internal/locale"
	"github.com/goliatone/go-sitecms/internal/navigation"
	"github.com/goliatone/go-sitecms/internal/pages"
)

func strPtr(v string) *string { return &v }

func newRegistry(t *testing.T) pages.Repository {
	t.Helper()
	repo := pages.NewMemoryRepository()
	entries := []*pages.Entry{
		{PageID: 1, PageSlug: "home", PageTitle: "Home"},
		{PageID: 2, PageSlug: "products/arcturus", PageTitle: "Arcturus"},
		{PageID: 3, PageSlug: "products/arcturus-v2", PageTitle: "Arcturus v2"},
		{PageID: 4, PageSlug: "old-arcturus", PageTitle: "Old", TargetPageSlug: strPtr("products/arcturus")},
	}
	for _, entry := range entries {
		if _, err := repo.Create(context.Background(), entry); err != nil {
			t.Fatalf("create %s: %v", entry.PageSlug, err)
		}
	}
	return repo
}

func TestValidatorOrder(t *testing.T) {
	validator := NewValidator(newRegistry(t))
	cases := []struct {
		name      string
		pageID    int64
		candidate string
		want      error
	}{
		{"not an integer", 2, "abc", ErrInvalidInput},
		{"empty input", 2, "  ", ErrInvalidInput},
		{"decimal input", 2, "3.5", ErrInvalidInput},
		{"self redirect", 2, "2", ErrSelfRedirect},
		{"self wins over missing", 99, "99", ErrSelfRedirect},
		{"missing target", 2, "42", ErrTargetNotFound},
		{"chained redirect", 2, "4", ErrChainedRedirect},
		{"valid", 2, " 3 ", nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			target, err := validator.Validate(context.Background(), tc.pageID, tc.candidate)
			if tc.want == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if target.PageSlug != "products/arcturus-v2" {
					t.Fatalf("unexpected target %+v", target)
				}
				return
			}
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			if !apperrors.IsValidation(err) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestSetShortcutStoresTargetAndPropagates(t *testing.T) {
	ctx := context.Background()
	registry := newRegistry(t)
	nav := navigation.NewMemoryRepository()
	for _, link := range []*navigation.Link{
		{Label: "Arcturus", Slug: "/products/arcturus"},
		{Label: "Home", Slug: "/home"},
	} {
		if _, err := nav.Save(ctx, link); err != nil {
			t.Fatalf("save link: %v", err)
		}
	}
	svc, err := NewService(registry, WithNavigation(nav))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	result, err := svc.SetShortcut(ctx, 2, "3")
	if err != nil {
		t.Fatalf("set shortcut: %v", err)
	}
	if result.Source.Target() != "products/arcturus-v2" {
		t.Fatalf("expected stored target, got %q", result.Source.Target())
	}
	// "products/arcturus" also matches "/products/arcturus" and nothing else.
	if result.NavigationUpdated != 1 || result.NavigationErr != nil {
		t.Fatalf("unexpected navigation outcome %+v", result)
	}

	target, ok, err := svc.ResolveRedirect(ctx, "/products/arcturus/")
	if err != nil || !ok || target != "products/arcturus-v2" {
		t.Fatalf("expected redirect, got %q %v %v", target, ok, err)
	}

	links, _ := nav.List(ctx, locale.Legacy())
	for _, link := range links {
		if link.Label == "Arcturus" && link.Href() != "products/arcturus-v2" {
			t.Fatalf("expected link to follow target, got %q", link.Href())
		}
	}

	if _, err := svc.ClearShortcut(ctx, 2); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, ok, _ := svc.ResolveRedirect(ctx, "products/arcturus"); ok {
		t.Fatal("expected redirect to be cleared")
	}
}

func TestSetShortcutRejectsWithoutWriting(t *testing.T) {
	ctx := context.Background()
	registry := newRegistry(t)
	svc, _ := NewService(registry)

	if _, err := svc.SetShortcut(ctx, 2, "4"); !errors.Is(err, ErrChainedRedirect) {
		t.Fatalf("expected chained redirect, got %v", err)
	}
	entry, _ := registry.GetByPageID(ctx, 2)
	if entry.IsShortcut() {
		t.Fatal("expected source to stay unchanged")
	}
}

type failingNavigation struct{ navigation.Repository }

func (failingNavigation) UpdateTargetBySlugLike(context.Context, string, *string) (int64, error) {
	return 0, errors.New("navigation offline")
}

func TestNavigationFailureDoesNotFailSave(t *testing.T) {
	ctx := context.Background()
	registry := newRegistry(t)
	svc, _ := NewService(registry, WithNavigation(failingNavigation{}))

	result, err := svc.SetShortcut(ctx, 2, "3")
	if err != nil {
		t.Fatalf("expected save to succeed, got %v", err)
	}
	if !apperrors.IsIntegration(result.NavigationErr) {
		t.Fatalf("expected integration warning, got %v", result.NavigationErr)
	}
	entry, _ := registry.GetByPageID(ctx, 2)
	if entry.Target() != "products/arcturus-v2" {
		t.Fatal("expected target stored despite navigation failure")
	}
}

func TestResolveRedirectUnknownPage(t *testing.T) {
	svc, _ := NewService(newRegistry(t))
	target, ok, err := svc.ResolveRedirect(context.Background(), "missing")
	if err != nil || ok || target != "" {
		t.Fatalf("expected no redirect, got %q %v %v", target, ok, err)
	}
}
