package news

import (
	"context"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/goliatone/go-sitecms/internal/apperrors"
	"github.com/goliatone/go-sitecms/internal/locale"
	"github.com/goliatone/go-sitecms/pkg/testsupport"
)

func day(d int) time.Time { return time.Date(2024, 5, d, 0, 0, 0, 0, time.UTC) }

func repositories(t *testing.T) map[string]Repository {
	return map[string]Repository{
		"memory": NewMemoryRepository(),
		"bun":    NewBunRepository(testsupport.NewBunDB(t, Migrate)),
	}
}

func seed(t *testing.T, repo Repository) {
	t.Helper()
	articles := []Article{
		{Slug: "launch", Language: "en", Title: "Launch", Category: "products", Published: true, PublishedAt: day(3)},
		{Slug: "launch", Language: "de", Title: "Einführung", Category: "products", Published: true, PublishedAt: day(3)},
		{Slug: "fair", Language: "en", Title: "Trade fair", Category: "events", Published: true, PublishedAt: day(2)},
		{Slug: "webinar", Language: "en", Title: "Webinar", Category: "events", Published: true, PublishedAt: day(1)},
		{Slug: "draft", Language: "en", Title: "Draft", Published: false, PublishedAt: day(4)},
	}
	for i := range articles {
		if _, err := repo.Upsert(context.Background(), &articles[i]); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
}

func TestLatestPrefersRequestedLanguage(t *testing.T) {
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			seed(t, repo)
			svc, _ := NewService(repo)

			got, err := svc.Latest(context.Background(), locale.German, "", 10)
			if err != nil {
				t.Fatalf("latest: %v", err)
			}
			titles := make([]string, 0, len(got))
			for _, a := range got {
				titles = append(titles, a.Title)
			}
			if strings.Join(titles, ",") != "Einführung,Trade fair,Webinar" {
				t.Fatalf("unexpected titles %v", titles)
			}

			events, _ := svc.Latest(context.Background(), locale.Japanese, "events", 1)
			if len(events) != 1 || events[0].Slug != "fair" || events[0].Language != "en" {
				t.Fatalf("unexpected events %+v", events)
			}
		})
	}
}

func TestGetFallsBackToEnglish(t *testing.T) {
	repo := NewMemoryRepository()
	seed(t, repo)
	svc, _ := NewService(repo)
	ctx := context.Background()

	article, fallback, err := svc.Get(ctx, "fair", locale.Korean)
	if err != nil || !fallback || article.Language != "en" {
		t.Fatalf("expected english fallback, got %+v %v %v", article, fallback, err)
	}
	article, fallback, err = svc.Get(ctx, "launch", locale.German)
	if err != nil || fallback || article.Title != "Einführung" {
		t.Fatalf("expected exact german, got %+v %v %v", article, fallback, err)
	}
	if _, _, err := svc.Get(ctx, "missing", locale.German); !apperrors.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSaveRendersMarkdown(t *testing.T) {
	svc, _ := NewService(NewMemoryRepository())
	stored, err := svc.Save(context.Background(), Article{Slug: "x", Language: "en", Title: "X", BodyMarkdown: "**bold**"})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if !strings.Contains(stored.BodyHTML, "<strong>bold</strong>") {
		t.Fatalf("body not rendered: %q", stored.BodyHTML)
	}
	if _, err := svc.Save(context.Background(), Article{Language: "en", Title: "X"}); !apperrors.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestImportIsIdempotent(t *testing.T) {
	fsys := fstest.MapFS{
		"news/Launch Day.md": {Data: []byte("---\ntitle: Launch\ncategory: products\ndate: 2024-05-03T00:00:00Z\n---\nHello *world*\n")},
		"news/de/launch.md":  {Data: []byte("---\ntitle: Einführung\nslug: launch-day\n---\nHallo\n")},
		"news/broken.md":     {Data: []byte("---\ntitle: [unclosed\n---\nbody\n")},
	}
	repo := NewMemoryRepository()
	svc, _ := NewService(repo)
	ctx := context.Background()

	first, err := svc.Import(ctx, fsys, "news")
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if len(first.Created) != 2 || len(first.Errors) != 1 {
		t.Fatalf("unexpected first import %+v", first)
	}
	article, _, err := svc.Get(ctx, "launch-day", locale.English)
	if err != nil || !strings.Contains(article.BodyHTML, "<em>world</em>") {
		t.Fatalf("unexpected imported article %+v %v", article, err)
	}

	second, err := svc.Import(ctx, fsys, "news")
	if err != nil {
		t.Fatalf("second import: %v", err)
	}
	if len(second.Created) != 0 || len(second.Skipped) != 2 {
		t.Fatalf("expected a no-op import, got %+v", second)
	}
}
