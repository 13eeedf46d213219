package translation

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-sitecms/internal/apperrors"
	"github.com/goliatone/go-sitecms/internal/content"
	"github.com/goliatone/go-sitecms/internal/glossary"
	"github.com/goliatone/go-sitecms/internal/locale"
	"github.com/goliatone/go-sitecms/internal/segments"
	"github.com/goliatone/go-sitecms/pkg/interfaces"
)

type prefixTranslator struct {
	requests []interfaces.TranslationRequest
	drop     string
	err      error
}

func (p *prefixTranslator) Translate(_ context.Context, req interfaces.TranslationRequest) (interfaces.TranslationResponse, error) {
	p.requests = append(p.requests, req)
	if p.err != nil {
		return interfaces.TranslationResponse{}, p.err
	}
	out := make(map[string]string, len(req.Texts)+1)
	for key, text := range req.Texts {
		if key == p.drop {
			continue
		}
		out[key] = "[" + req.TargetLanguage + "] " + text
	}
	out["unexpected"] = "extra"
	return interfaces.TranslationResponse{TranslatedTexts: out}, nil
}

func newFixture(t *testing.T, translator interfaces.Translator, opts ...ServiceOption) (*Service, *segments.Service) {
	t.Helper()
	store := content.NewMemoryStore()
	store.Seed(content.Row{
		PageSlug:    "arcturus",
		SectionKey:  content.SectionPageSegments,
		Language:    locale.English.Ptr(),
		ContentType: content.TypeJSON,
		ContentValue: `[{"id":"hero","type":"product-hero-gallery","data":{"title":"Arcturus","subtitle":"The brightest test chart light",` +
			`"images":[{"url":"/img/a.png","alt":"Front view"}],"buttonText":"Request quote","buttonLink":"/contact"}}]`,
	})
	segs, err := segments.NewService(content.NewService(store))
	if err != nil {
		t.Fatalf("segments: %v", err)
	}
	svc, err := NewService(segs, translator, opts...)
	if err != nil {
		t.Fatalf("translation: %v", err)
	}
	return svc, segs
}

func TestAutoTranslateSegmentDraftsFromEnglish(t *testing.T) {
	translator := &prefixTranslator{drop: "subtitle"}
	svc, _ := newFixture(t, translator)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events, _ := svc.Bus().Subscribe(ctx)

	draft, err := svc.AutoTranslateSegment(context.Background(), AutoTranslateRequest{
		PageSlug: "arcturus", ID: segments.NewID("hero"), Language: locale.German,
	})
	if err != nil {
		t.Fatalf("auto translate: %v", err)
	}
	hero, ok := draft.Data.(*segments.ProductHeroGallery)
	if !ok {
		t.Fatalf("expected hero payload, got %T", draft.Data)
	}
	if hero.Title != "[de] Arcturus" || hero.Images[0].Alt != "[de] Front view" {
		t.Fatalf("expected translated text, got %+v", hero)
	}
	if hero.Subtitle != "The brightest test chart light" {
		t.Fatalf("expected dropped key to keep source text, got %q", hero.Subtitle)
	}
	if hero.Images[0].URL != "/img/a.png" || hero.ButtonLink != "/contact" {
		t.Fatalf("expected non-text fields kept, got %+v", hero)
	}
	if draft.MergedOntoTarget || draft.Translated != 4 {
		t.Fatalf("unexpected draft meta %+v", draft)
	}
	if _, ok := translator.requests[0].Texts["buttonLink"]; ok {
		t.Fatal("expected links to stay out of the translation request")
	}

	select {
	case evt := <-events:
		if evt.Kind != EventDrafted || evt.SegmentID != "hero" || evt.Language != locale.German {
			t.Fatalf("unexpected event %+v", evt)
		}
	case <-time.After(time.Second):
		t.Fatal("expected drafted event")
	}
}

func TestAutoTranslateMergesOntoTargetLanguage(t *testing.T) {
	svc, segs := newFixture(t, &prefixTranslator{})
	_, err := segs.Save(context.Background(), segments.SaveInput{
		PageSlug: "arcturus", Language: locale.Japanese, ID: segments.NewID("hero"), Type: segments.TypeProductHeroGallery,
		Data: &segments.ProductHeroGallery{
			Title: "古い", Images: []segments.Image{{URL: "/img/ja.png", Alt: "正面"}}, ButtonLink: "/ja/contact",
		},
	})
	if err != nil {
		t.Fatalf("seed ja: %v", err)
	}

	draft, err := svc.AutoTranslateSegment(context.Background(), AutoTranslateRequest{
		PageSlug: "arcturus", ID: segments.NewID("hero"), Language: locale.Japanese,
	})
	if err != nil {
		t.Fatalf("auto translate: %v", err)
	}
	hero := draft.Data.(*segments.ProductHeroGallery)
	if !draft.MergedOntoTarget || hero.Images[0].URL != "/img/ja.png" || hero.ButtonLink != "/ja/contact" {
		t.Fatalf("expected target non-text fields kept, got %+v", hero)
	}
	if hero.Title != "[ja] Arcturus" {
		t.Fatalf("expected translated title, got %q", hero.Title)
	}
}

func TestAutoTranslateErrors(t *testing.T) {
	svc, _ := newFixture(t, &prefixTranslator{err: errors.New("quota exceeded")})
	ctx := context.Background()

	if _, err := svc.AutoTranslateSegment(ctx, AutoTranslateRequest{PageSlug: "arcturus", ID: segments.NewID("hero"), Language: locale.English}); !apperrors.IsValidation(err) {
		t.Fatalf("expected validation error for english target, got %v", err)
	}
	if _, err := svc.AutoTranslateSegment(ctx, AutoTranslateRequest{PageSlug: "arcturus", ID: segments.NewID("missing"), Language: locale.German}); !errors.Is(err, ErrSourceMissing) {
		t.Fatalf("expected missing source, got %v", err)
	}
	if _, err := svc.AutoTranslateSegment(ctx, AutoTranslateRequest{PageSlug: "arcturus", ID: segments.NewID("hero"), Language: locale.German}); !apperrors.IsIntegration(err) {
		t.Fatalf("expected integration error, got %v", err)
	}
}

func TestTranslateTextsSendsRelevantGlossaryHints(t *testing.T) {
	repo := glossary.NewMemoryRepository()
	terms := glossary.NewService(repo)
	for _, entry := range []glossary.Entry{
		{Term: "test chart", TermType: glossary.PreferredTranslation, Translations: map[string]string{"de": "Testchart"}},
		{Term: "OECF", TermType: glossary.Abbreviation},
	} {
		if _, err := terms.Upsert(context.Background(), entry); err != nil {
			t.Fatalf("glossary: %v", err)
		}
	}
	translator := &prefixTranslator{}
	svc, _ := newFixture(t, translator, WithGlossary(terms))

	out, err := svc.TranslateTexts(context.Background(), map[string]string{"title": "A Test Chart light"}, locale.German)
	if err != nil {
		t.Fatalf("translate: %v", err)
	}
	if _, ok := out["unexpected"]; ok {
		t.Fatal("expected extra keys to be dropped")
	}
	hints := translator.requests[0].Hints
	if hints["test chart"] != "Testchart" {
		t.Fatalf("expected preferred translation hint, got %v", hints)
	}
	if _, ok := hints["OECF"]; ok {
		t.Fatal("expected unrelated terms to be left out")
	}
}

func TestReconcile(t *testing.T) {
	out := Reconcile(
		map[string]string{"a": "one", "b": "two", "c": "three"},
		map[string]string{"a": "eins", "b": "  ", "z": "extra"},
	)
	got := []string{out["a"], out["b"], out["c"]}
	if strings.Join(got, ",") != "eins,two,three" || len(out) != 3 {
		t.Fatalf("unexpected reconcile %v", out)
	}
}
