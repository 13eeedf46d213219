package content_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-sitecms/internal/apperrors"
	"github.com/goliatone/go-sitecms/internal/content"
	"github.com/goliatone/go-sitecms/internal/locale"
)

func TestResolveFallbackOrder(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		name         string
		rows         []content.Row
		request      locale.Language
		wantFound    bool
		wantFallback content.Fallback
		wantRaw      string
	}{
		{
			name: "exact language wins",
			rows: []content.Row{
				{PageSlug: "arcturus", SectionKey: "hero_title", Language: locale.German.Ptr(), ContentValue: "Hallo"},
				{PageSlug: "arcturus", SectionKey: "hero_title", Language: locale.English.Ptr(), ContentValue: "Hello"},
			},
			request:      locale.German,
			wantFound:    true,
			wantFallback: content.FallbackNone,
			wantRaw:      "Hallo",
		},
		{
			name: "english fallback for other languages",
			rows: []content.Row{
				{PageSlug: "arcturus", SectionKey: "hero_title", Language: locale.English.Ptr(), ContentValue: "Hello"},
			},
			request:      locale.Japanese,
			wantFound:    true,
			wantFallback: content.FallbackEnglish,
			wantRaw:      "Hello",
		},
		{
			name: "empty value is a miss",
			rows: []content.Row{
				{PageSlug: "arcturus", SectionKey: "hero_title", Language: locale.German.Ptr(), ContentValue: "  "},
				{PageSlug: "arcturus", SectionKey: "hero_title", Language: locale.English.Ptr(), ContentValue: "Hello"},
			},
			request:      locale.German,
			wantFound:    true,
			wantFallback: content.FallbackEnglish,
			wantRaw:      "Hello",
		},
		{
			name: "legacy null row",
			rows: []content.Row{
				{PageSlug: "arcturus", SectionKey: "hero_title", ContentValue: "Legacy"},
			},
			request:      locale.Korean,
			wantFound:    true,
			wantFallback: content.FallbackLegacy,
			wantRaw:      "Legacy",
		},
		{
			name: "english request skips straight to legacy",
			rows: []content.Row{
				{PageSlug: "arcturus", SectionKey: "hero_title", ContentValue: "Legacy"},
			},
			request:      locale.English,
			wantFound:    true,
			wantFallback: content.FallbackLegacy,
			wantRaw:      "Legacy",
		},
		{
			name:      "absent is not an error",
			request:   locale.Chinese,
			wantFound: false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := content.NewMemoryStore()
			store.Seed(tc.rows...)
			svc := content.NewService(store)

			res, err := svc.Resolve(ctx, "arcturus", "hero_title", tc.request)
			if err != nil {
				t.Fatalf("Resolve: %v", err)
			}
			if res.Found() != tc.wantFound {
				t.Fatalf("Found() = %v, want %v", res.Found(), tc.wantFound)
			}
			if !tc.wantFound {
				return
			}
			if res.Fallback != tc.wantFallback {
				t.Fatalf("fallback = %q, want %q", res.Fallback, tc.wantFallback)
			}
			if res.Raw != tc.wantRaw || res.Value != tc.wantRaw {
				t.Fatalf("value = %v (raw %q), want %q", res.Value, res.Raw, tc.wantRaw)
			}
		})
	}
}

func TestResolveDecodesJSON(t *testing.T) {
	store := content.NewMemoryStore()
	store.Seed(content.Row{
		PageSlug: "arcturus", SectionKey: content.SectionPageSegments, Language: locale.English.Ptr(),
		ContentType: content.TypeJSON, ContentValue: `[{"id":"3","type":"faq","data":{"title":"FAQ"}}]`,
	})
	svc := content.NewService(store)

	res, err := svc.Resolve(context.Background(), "arcturus", content.SectionPageSegments, locale.German)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	items, ok := res.Value.([]any)
	if !ok || len(items) != 1 {
		t.Fatalf("expected decoded array, got %#v", res.Value)
	}
	if !res.IsFallback() {
		t.Fatal("expected english fallback flag")
	}
}

func TestResolveMalformedJSONDegradesToNoContent(t *testing.T) {
	store := content.NewMemoryStore()
	store.Seed(content.Row{
		PageSlug: "arcturus", SectionKey: content.SectionPageSegments, Language: locale.German.Ptr(),
		ContentType: content.TypeJSON, ContentValue: `[{"id":`,
	})
	svc := content.NewService(store)

	res, err := svc.Resolve(context.Background(), "arcturus", content.SectionPageSegments, locale.German)
	if err != nil {
		t.Fatalf("expected decode failure to be swallowed, got %v", err)
	}
	if res.Found() {
		t.Fatalf("expected no content, got %+v", res)
	}
}

type failingStore struct{ err error }

func (f failingStore) Get(context.Context, string, string, *locale.Language) (*content.Row, error) {
	return nil, f.err
}

func (f failingStore) Upsert(context.Context, content.Row) (*content.Row, bool, error) {
	return nil, false, f.err
}

func TestResolvePropagatesDatastoreErrors(t *testing.T) {
	svc := content.NewService(failingStore{err: errors.New("connection refused")})

	_, err := svc.Resolve(context.Background(), "arcturus", "hero_title", locale.German)
	if err == nil {
		t.Fatal("expected datastore error")
	}
	if !apperrors.IsIntegration(err) {
		t.Fatalf("expected integration error, got %v", err)
	}
}

func TestResolveExactIgnoresFallbacks(t *testing.T) {
	store := content.NewMemoryStore()
	store.Seed(
		content.Row{PageSlug: "arcturus", SectionKey: "hero_title", Language: locale.English.Ptr(), ContentValue: "Hello"},
		content.Row{PageSlug: "arcturus", SectionKey: "hero_title", ContentValue: "Legacy"},
	)
	svc := content.NewService(store)

	res, err := svc.ResolveExact(context.Background(), "arcturus", "hero_title", locale.German)
	if err != nil {
		t.Fatalf("ResolveExact: %v", err)
	}
	if res.Found() {
		t.Fatalf("expected no exact row, got %+v", res.Row)
	}
}

func TestWritePublishesEventsAndIsolatesLanguages(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	now := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	store := content.NewMemoryStore()
	svc := content.NewService(store, content.WithClock(func() time.Time { return now }))
	changes, _ := svc.Subscribe(ctx)

	if _, err := svc.Write(ctx, content.WriteInput{
		PageSlug: "arcturus", SectionKey: "hero_title", Language: locale.English, ContentValue: "Hello", UpdatedBy: "editor",
	}); err != nil {
		t.Fatalf("Write en: %v", err)
	}
	if _, err := svc.Write(ctx, content.WriteInput{
		PageSlug: "arcturus", SectionKey: "hero_title", Language: locale.German, ContentValue: "Hallo",
	}); err != nil {
		t.Fatalf("Write de: %v", err)
	}
	if _, err := svc.Write(ctx, content.WriteInput{
		PageSlug: "arcturus", SectionKey: "hero_title", Language: locale.German, ContentValue: "Servus",
	}); err != nil {
		t.Fatalf("Write de again: %v", err)
	}

	wantTypes := []content.ChangeType{content.ChangeCreated, content.ChangeCreated, content.ChangeUpdated}
	for i, want := range wantTypes {
		select {
		case evt := <-changes:
			if evt.Type != want {
				t.Fatalf("event %d: got %q want %q", i, evt.Type, want)
			}
		case <-time.After(time.Second):
			t.Fatalf("event %d not delivered", i)
		}
	}

	english, err := svc.ResolveExact(ctx, "arcturus", "hero_title", locale.English)
	if err != nil || english.Raw != "Hello" {
		t.Fatalf("expected english untouched, got %q (%v)", english.Raw, err)
	}
	if english.Row.UpdatedBy != "editor" || !english.Row.UpdatedAt.Equal(now) {
		t.Fatalf("unexpected audit fields %+v", english.Row)
	}
}

func TestWriteRequiresKey(t *testing.T) {
	svc := content.NewService(content.NewMemoryStore())
	_, err := svc.Write(context.Background(), content.WriteInput{SectionKey: "hero_title", Language: locale.English})
	if !errors.Is(err, content.ErrPageSlugRequired) {
		t.Fatalf("expected ErrPageSlugRequired, got %v", err)
	}
	if !apperrors.IsValidation(err) {
		t.Fatal("expected validation classification")
	}
}
