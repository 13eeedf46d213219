package sitecms_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/goliatone/go-sitecms"
	"github.com/goliatone/go-sitecms/internal/locale"
	"github.com/goliatone/go-sitecms/internal/logging/console"
)

func TestModuleServesHealth(t *testing.T) {
	module, err := sitecms.New(context.Background(), sitecms.DefaultConfig(),
		sitecms.WithLoggerProvider(console.NewProvider(console.Options{Writer: io.Discard})))
	if err != nil {
		t.Fatalf("new module: %v", err)
	}
	defer module.Close()

	rec := httptest.NewRecorder()
	module.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if module.Translation() != nil {
		t.Fatal("expected translation to be disabled by default")
	}

	page, err := module.Segments().List(context.Background(), "home", locale.German)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page.Segments) != 0 {
		t.Fatalf("expected an empty page, got %+v", page.Segments)
	}
}

func TestLoadConfigReadsYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sitecms.yaml")
	raw := []byte("default_language: de\nsite:\n  base_url: https://example.com\n")
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := sitecms.LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DefaultLanguage != "de" || cfg.Site.BaseURL != "https://example.com" {
		t.Fatalf("unexpected config %+v", cfg)
	}

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(bad, []byte("default_language: fr\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := sitecms.LoadConfig(bad); !errors.Is(err, sitecms.ErrDefaultLanguageUnsupported) {
		t.Fatalf("expected unsupported language, got %v", err)
	}
}
