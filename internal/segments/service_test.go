package segments

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/goliatone/go-sitecms/internal/apperrors"
	"github.com/goliatone/go-sitecms/internal/content"
	"github.com/goliatone/go-sitecms/internal/locale"
)

func newTestService(t *testing.T) (*Service, *content.MemoryStore) {
	t.Helper()
	store := content.NewMemoryStore()
	svc, err := NewService(content.NewService(store))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, store
}

func seed(t *testing.T, store *content.MemoryStore, slug string, lang *locale.Language, value string) {
	t.Helper()
	store.Seed(content.Row{
		PageSlug:     slug,
		SectionKey:   content.SectionPageSegments,
		Language:     lang,
		ContentType:  content.TypeJSON,
		ContentValue: value,
	})
}

func rawRow(t *testing.T, store *content.MemoryStore, slug string, lang *locale.Language) string {
	t.Helper()
	row, err := store.Get(context.Background(), slug, content.SectionPageSegments, lang)
	if err != nil {
		t.Fatalf("get row: %v", err)
	}
	return row.ContentValue
}

const arcturusEnglish = `[
	{"id":"faq-1","type":"faq","data":{"title":"Frequently asked","subtext":"About arcturus","items":[{"question":"What is it?","answer":"A light source."}]}},
	{"id":2,"type":"video","position":1,"data":{"title":"Demo","description":"Watch","videoUrl":"https://video.example/abc"}}
]`

func TestLookupEditModeBlanksEnglishFallback(t *testing.T) {
	svc, store := newTestService(t)
	seed(t, store, "arcturus", locale.English.Ptr(), arcturusEnglish)

	result, err := svc.Lookup(context.Background(), LookupRequest{
		PageSlug: "arcturus", ID: NewID("faq-1"), Type: TypeFAQ, Language: locale.German, Mode: ModeEdit,
	})
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if !result.IsFallback() || result.Fallback != content.FallbackEnglish {
		t.Fatalf("expected english fallback, got %q", result.Fallback)
	}
	faq, ok := result.Data.(*FAQ)
	if !ok {
		t.Fatalf("expected *FAQ, got %T", result.Data)
	}
	if faq.Title != "" || faq.Subtext != "" {
		t.Fatalf("expected blanked title and subtext, got %+v", faq)
	}
	if len(faq.Items) != 1 || faq.Items[0].Question != "What is it?" {
		t.Fatalf("expected items to be retained, got %+v", faq.Items)
	}
}

func TestLookupRenderModeKeepsEnglishValues(t *testing.T) {
	svc, store := newTestService(t)
	seed(t, store, "arcturus", locale.English.Ptr(), arcturusEnglish)

	result, err := svc.Lookup(context.Background(), LookupRequest{
		PageSlug: "arcturus", ID: NewID("faq-1"), Language: locale.German, Mode: ModeRender,
	})
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	faq := result.Data.(*FAQ)
	if faq.Title != "Frequently asked" || result.Blanked {
		t.Fatalf("expected english title in render mode, got %+v", faq)
	}
}

func TestLookupEditModeDoesNotBlankExactLanguage(t *testing.T) {
	svc, store := newTestService(t)
	seed(t, store, "arcturus", locale.English.Ptr(), arcturusEnglish)

	result, err := svc.Lookup(context.Background(), LookupRequest{
		PageSlug: "arcturus", ID: NewID("faq-1"), Language: locale.English, Mode: ModeEdit,
	})
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if result.Blanked || result.Data.(*FAQ).Title != "Frequently asked" {
		t.Fatalf("expected exact language content to be untouched, got %+v", result.Data)
	}
}

func TestLookupMissingSegmentReturnsZeroPayload(t *testing.T) {
	svc, _ := newTestService(t)

	result, err := svc.Lookup(context.Background(), LookupRequest{
		PageSlug: "nowhere", ID: NewID("x"), Type: TypeTiles, Language: locale.Japanese, Mode: ModeEdit,
	})
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if result.Found() {
		t.Fatal("expected missing segment")
	}
	if _, ok := result.Data.(*Tiles); !ok {
		t.Fatalf("expected zero *Tiles, got %T", result.Data)
	}
}

func TestSaveIsolatesLanguages(t *testing.T) {
	svc, store := newTestService(t)
	seed(t, store, "arcturus", locale.English.Ptr(), arcturusEnglish)
	before := rawRow(t, store, "arcturus", locale.English.Ptr())

	_, err := svc.Save(context.Background(), SaveInput{
		PageSlug: "arcturus",
		Language: locale.German,
		ID:       NewID("faq-1"),
		Type:     TypeFAQ,
		Data:     &FAQ{Title: "Häufige Fragen", Items: []FAQItem{{Question: "Was ist das?", Answer: "Eine Lichtquelle."}}},
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	if after := rawRow(t, store, "arcturus", locale.English.Ptr()); after != before {
		t.Fatalf("english row changed:\nbefore %s\nafter  %s", before, after)
	}
	german, err := DecodeArray(rawRow(t, store, "arcturus", locale.German.Ptr()))
	if err != nil {
		t.Fatalf("decode german: %v", err)
	}
	if len(german) != 1 {
		t.Fatalf("expected german array with only the saved segment, got %d", len(german))
	}
	if german[0].Data.(*FAQ).Title != "Häufige Fragen" {
		t.Fatalf("unexpected german payload %+v", german[0].Data)
	}
}

func TestSaveIsIdempotent(t *testing.T) {
	svc, store := newTestService(t)
	input := SaveInput{
		PageSlug: "arcturus",
		Language: locale.English,
		ID:       NewID("intro"),
		Type:     TypeIntro,
		Data:     &Intro{Title: "Arcturus", Text: "Bright"},
	}
	if _, err := svc.Save(context.Background(), input); err != nil {
		t.Fatalf("first save: %v", err)
	}
	first := rawRow(t, store, "arcturus", locale.English.Ptr())
	result, err := svc.Save(context.Background(), input)
	if err != nil {
		t.Fatalf("second save: %v", err)
	}
	if result.Appended {
		t.Fatal("expected second save to replace")
	}
	if second := rawRow(t, store, "arcturus", locale.English.Ptr()); second != first {
		t.Fatalf("expected identical rows:\n%s\n%s", first, second)
	}
}

func TestSaveReplacesInPlaceAndAppendsOnMiss(t *testing.T) {
	svc, store := newTestService(t)
	seed(t, store, "arcturus", locale.English.Ptr(), arcturusEnglish)

	replaced, err := svc.Save(context.Background(), SaveInput{
		PageSlug: "arcturus", Language: locale.English, ID: NewID("faq-1"), Type: TypeFAQ,
		Data: &FAQ{Title: "FAQ"},
	})
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	if replaced.Appended || len(replaced.Segments) != 2 || !replaced.Segments[0].ID.Equal(NewID("faq-1")) {
		t.Fatalf("expected in-place replacement, got %+v", replaced)
	}

	appended, err := svc.Save(context.Background(), SaveInput{
		PageSlug: "arcturus", Language: locale.English, ID: NewID("banner-9"), Type: TypeBanner,
		Data: &Banner{Title: "Buy"},
	})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if !appended.Appended || len(appended.Segments) != 3 {
		t.Fatalf("expected append, got %+v", appended)
	}
	stored, _ := DecodeArray(rawRow(t, store, "arcturus", locale.English.Ptr()))
	order := []string{stored[0].ID.String(), stored[1].ID.String(), stored[2].ID.String()}
	if strings.Join(order, ",") != "faq-1,2,banner-9" {
		t.Fatalf("unexpected order %v", order)
	}
	if stored[1].Position == nil || *stored[1].Position != 1 {
		t.Fatal("expected untouched segment to keep its position")
	}
}

func TestSaveMatchesNumericIDsByString(t *testing.T) {
	svc, store := newTestService(t)
	seed(t, store, "arcturus", locale.English.Ptr(), arcturusEnglish)

	result, err := svc.Save(context.Background(), SaveInput{
		PageSlug: "arcturus", Language: locale.English, ID: NewID("2"), Type: TypeVideo,
		Data: &Video{Title: "New demo", VideoURL: "https://video.example/def"},
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if result.Appended || len(result.Segments) != 2 {
		t.Fatalf("expected string id to match stored numeric id, got %+v", result)
	}
	raw := rawRow(t, store, "arcturus", locale.English.Ptr())
	if !strings.Contains(raw, `"id":2,`) {
		t.Fatalf("expected numeric id to survive rewrite, got %s", raw)
	}
}

func TestSaveBackfillsMissingType(t *testing.T) {
	svc, store := newTestService(t)
	seed(t, store, "legacy", locale.English.Ptr(), `[{"id":"hero","data":{"title":"Old"}}]`)

	if _, err := svc.Save(context.Background(), SaveInput{
		PageSlug: "legacy", Language: locale.English, ID: NewID("hero"), Type: TypeFullHero,
		Data: &FullHero{Title: "New"},
	}); err != nil {
		t.Fatalf("save: %v", err)
	}
	stored, _ := DecodeArray(rawRow(t, store, "legacy", locale.English.Ptr()))
	if stored[0].Type != TypeFullHero {
		t.Fatalf("expected backfilled type, got %q", stored[0].Type)
	}
}

func TestSaveValidation(t *testing.T) {
	svc, store := newTestService(t)
	seed(t, store, "arcturus", locale.English.Ptr(), arcturusEnglish)

	cases := []struct {
		name  string
		input SaveInput
	}{
		{"missing slug", SaveInput{Language: locale.English, ID: NewID("a"), Type: TypeIntro}},
		{"missing id", SaveInput{PageSlug: "p", Language: locale.English, Type: TypeIntro}},
		{"bad language", SaveInput{PageSlug: "p", Language: "fr", ID: NewID("a"), Type: TypeIntro}},
		{"missing type", SaveInput{PageSlug: "p", Language: locale.English, ID: NewID("a")}},
		{"unknown type", SaveInput{PageSlug: "p", Language: locale.English, ID: NewID("a"), Type: "carousel"}},
		{"data mismatch", SaveInput{PageSlug: "p", Language: locale.English, ID: NewID("a"), Type: TypeIntro, Data: &Banner{}}},
		{"stored type differs", SaveInput{PageSlug: "arcturus", Language: locale.English, ID: NewID("faq-1"), Type: TypeIntro, Data: &Intro{}}},
		{"schema violation", SaveInput{PageSlug: "p", Language: locale.English, ID: NewID("a"), Type: TypeNews, Data: &News{Limit: 500}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Save(context.Background(), tc.input)
			if !apperrors.IsValidation(err) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestDeleteFiltersExactLanguage(t *testing.T) {
	svc, store := newTestService(t)
	seed(t, store, "arcturus", locale.English.Ptr(), arcturusEnglish)
	seed(t, store, "arcturus", locale.German.Ptr(), arcturusEnglish)

	removed, err := svc.Delete(context.Background(), DeleteInput{PageSlug: "arcturus", Language: locale.German, ID: NewID(2)})
	if err != nil || !removed {
		t.Fatalf("expected removal, got %v %v", removed, err)
	}
	german, _ := DecodeArray(rawRow(t, store, "arcturus", locale.German.Ptr()))
	english, _ := DecodeArray(rawRow(t, store, "arcturus", locale.English.Ptr()))
	if len(german) != 1 || len(english) != 2 {
		t.Fatalf("expected only german array to shrink, got de=%d en=%d", len(german), len(english))
	}

	removed, err = svc.Delete(context.Background(), DeleteInput{PageSlug: "arcturus", Language: locale.German, ID: NewID("missing")})
	if err != nil || removed {
		t.Fatalf("expected no-op delete, got %v %v", removed, err)
	}
}

type failingStore struct{ err error }

func (f failingStore) Get(context.Context, string, string, *locale.Language) (*content.Row, error) {
	return nil, f.err
}

func (f failingStore) Upsert(context.Context, content.Row) (*content.Row, bool, error) {
	return nil, false, f.err
}

func TestDatastoreErrorsPropagate(t *testing.T) {
	svc, err := NewService(content.NewService(failingStore{err: errors.New("connection reset")}))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	_, err = svc.List(context.Background(), "arcturus", locale.German)
	if !apperrors.IsIntegration(err) {
		t.Fatalf("expected integration error, got %v", err)
	}
	_, err = svc.Save(context.Background(), SaveInput{
		PageSlug: "arcturus", Language: locale.German, ID: NewID("a"), Type: TypeIntro,
	})
	if !apperrors.IsIntegration(err) {
		t.Fatalf("expected integration error on save, got %v", err)
	}
}

func TestListMalformedArrayIsEmpty(t *testing.T) {
	svc, store := newTestService(t)
	seed(t, store, "broken", locale.English.Ptr(), `{"not":"an array"}`)

	page, err := svc.List(context.Background(), "broken", locale.English)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.Found() || len(page.Segments) != 0 {
		t.Fatalf("expected no content, got %+v", page)
	}
}

func TestSegmentJSONPreservesUnknownContent(t *testing.T) {
	raw := `[{"id":"x","type":"carousel","data":{"slides":[1,2]},"theme":"dark"}]`
	list, err := DecodeArray(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, ok := list[0].Data.(*RawData); !ok {
		t.Fatalf("expected RawData, got %T", list[0].Data)
	}
	encoded, err := EncodeArray(list)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	var a, b any
	_ = json.Unmarshal([]byte(raw), &a)
	_ = json.Unmarshal([]byte(encoded), &b)
	ja, _ := json.Marshal(a)
	jb, _ := json.Marshal(b)
	if string(ja) != string(jb) {
		t.Fatalf("expected lossless rewrite:\n%s\n%s", ja, jb)
	}
}

func TestSaveLeavesSiblingsByteEquivalent(t *testing.T) {
	svc, store := newTestService(t)
	seed(t, store, "arcturus", locale.German.Ptr(),
		`[{"id":1,"type":"faq","data":{"title":"T","ctaLabel":"Contact us"}},{"id":2,"type":"intro","data":{"title":"Alt"}}]`)

	if _, err := svc.Save(context.Background(), SaveInput{
		PageSlug: "arcturus", Language: locale.German, ID: NewID("2"), Type: TypeIntro,
		Data: &Intro{Title: "Neu", Text: "Hell"},
	}); err != nil {
		t.Fatalf("save: %v", err)
	}

	var stored []json.RawMessage
	if err := json.Unmarshal([]byte(rawRow(t, store, "arcturus", locale.German.Ptr())), &stored); err != nil {
		t.Fatalf("stored array: %v", err)
	}
	if len(stored) != 2 {
		t.Fatalf("expected two elements, got %d", len(stored))
	}
	want := `{"id":1,"type":"faq","data":{"title":"T","ctaLabel":"Contact us"}}`
	if string(stored[0]) != want {
		t.Fatalf("expected untouched sibling:\n%s\ngot\n%s", want, stored[0])
	}
	if !strings.Contains(string(stored[1]), `"title":"Neu"`) {
		t.Fatalf("expected saved element to be rewritten, got %s", stored[1])
	}
}

func TestDeleteLeavesSiblingsByteEquivalent(t *testing.T) {
	svc, store := newTestService(t)
	seed(t, store, "arcturus", locale.English.Ptr(),
		`[{"id":"a","type":"banner","data":{"title":"Buy","legacyColor":"red"}},{"id":"b","type":"intro","data":{}}]`)

	removed, err := svc.Delete(context.Background(), DeleteInput{PageSlug: "arcturus", Language: locale.English, ID: NewID("b")})
	if err != nil || !removed {
		t.Fatalf("delete: removed=%v err=%v", removed, err)
	}
	want := `[{"id":"a","type":"banner","data":{"title":"Buy","legacyColor":"red"}}]`
	if got := rawRow(t, store, "arcturus", locale.English.Ptr()); got != want {
		t.Fatalf("expected sibling kept verbatim:\n%s\ngot\n%s", want, got)
	}
}

func TestSaveReplacesDataWhenStoredTypeDiffers(t *testing.T) {
	svc, store := newTestService(t)
	seed(t, store, "arcturus", locale.English.Ptr(), `[{"id":"7","type":"banner"}]`)

	result, err := svc.Save(context.Background(), SaveInput{
		PageSlug: "arcturus", Language: locale.English, ID: NewID("7"), Type: TypeBannerP,
		Data: &BannerProduct{Title: "Promo"},
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if result.Appended || len(result.Segments) != 1 {
		t.Fatalf("expected in-place replacement, got %+v", result)
	}
	raw := rawRow(t, store, "arcturus", locale.English.Ptr())
	if !strings.Contains(raw, `"type":"banner"`) || !strings.Contains(raw, `"title":"Promo"`) {
		t.Fatalf("expected stored tag kept and data replaced, got %s", raw)
	}

	if _, err := svc.Save(context.Background(), SaveInput{
		PageSlug: "arcturus", Language: locale.English, ID: NewID("7"), Type: TypeBannerP,
		Data: &BannerProduct{Title: "Promo"}, BackfillType: true,
	}); err != nil {
		t.Fatalf("backfill save: %v", err)
	}
	if raw := rawRow(t, store, "arcturus", locale.English.Ptr()); !strings.Contains(raw, `"type":"banner-p"`) {
		t.Fatalf("expected backfill to retag, got %s", raw)
	}
}
