package i18n

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-sitecms/internal/locale"
)

func TestEmbeddedDictionaries(t *testing.T) {
	catalog, err := Default()
	if err != nil {
		t.Fatalf("default: %v", err)
	}
	for _, lang := range locale.Supported() {
		if got := catalog.T(lang, "nav.home"); got == "nav.home" {
			t.Fatalf("%s: nav.home missing", lang)
		}
	}
	if got := catalog.T(locale.German, "nav.home"); got != "Startseite" {
		t.Fatalf("unexpected german home %q", got)
	}
}

func TestTranslateFallbacks(t *testing.T) {
	catalog := MustDefault()

	t.Run("falls back to english", func(t *testing.T) {
		if catalog.Has(locale.Korean, "news.empty") {
			t.Fatalf("fixture changed: korean defines news.empty")
		}
		if got := catalog.T(locale.Korean, "news.empty"); got != "There is no news yet" {
			t.Fatalf("expected english fallback, got %q", got)
		}
	})

	t.Run("falls back to key", func(t *testing.T) {
		if got := catalog.T(locale.Japanese, "does.not.exist"); got != "does.not.exist" {
			t.Fatalf("expected key, got %q", got)
		}
	})

	t.Run("formats arguments", func(t *testing.T) {
		if got := catalog.T(locale.English, "search.noResults", "chart"); got != `No results for "chart"` {
			t.Fatalf("unexpected formatting %q", got)
		}
	})
}

func TestDictionaryMergesFallback(t *testing.T) {
	catalog := MustDefault()
	dict := catalog.Dictionary(locale.Chinese)
	if dict["nav.home"] != "首页" || dict["editor.saved"] != "Saved" {
		t.Fatalf("unexpected merged dictionary %v", dict)
	}
	if len(catalog.Missing(locale.English)) != 0 {
		t.Fatalf("english must define every key")
	}
}

func TestLoadFSRequiresFallback(t *testing.T) {
	fsys := fstest.MapFS{"l/de.json": {Data: []byte(`{"a":"b"}`)}}
	if _, err := LoadFS(fsys, "l"); err == nil {
		t.Fatalf("expected missing fallback error")
	}
	fsys["l/fr.json"] = &fstest.MapFile{Data: []byte(`{}`)}
	fsys["l/en.json"] = &fstest.MapFile{Data: []byte(`{}`)}
	if _, err := LoadFS(fsys, "l"); err == nil {
		t.Fatalf("expected unsupported language error")
	}
}

func TestMergeFileOverridesMessages(t *testing.T) {
	catalog := MustDefault()
	file := filepath.Join(t.TempDir(), "de.json")
	if err := os.WriteFile(file, []byte(`{"nav.home":"Start"}`), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := catalog.MergeFile(context.Background(), locale.German, file); err != nil {
		t.Fatalf("merge: %v", err)
	}
	if got := catalog.T(locale.German, "nav.home"); got != "Start" {
		t.Fatalf("expected override, got %q", got)
	}
}
