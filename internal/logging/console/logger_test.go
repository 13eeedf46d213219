package console_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-sitecms/internal/logging"
	"github.com/goliatone/go-sitecms/internal/logging/console"
	"github.com/goliatone/go-sitecms/pkg/interfaces"
)

func TestConsoleLoggerWritesSortedFields(t *testing.T) {
	var buf bytes.Buffer
	now := time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)

	provider := console.NewProvider(console.Options{
		Writer:   &buf,
		TimeFunc: func() time.Time { return now },
	})

	logger := provider.GetLogger("sitecms.content").(interfaces.FieldsLogger).WithFields(map[string]any{"module": "sitecms.content"})
	ctx := logging.ContextWithFields(context.Background(), map[string]any{"request_id": "req-1"})
	logger.WithContext(ctx).Info("content.upsert", "page_slug", "arcturus", "err", errors.New("boom now"))

	got := strings.TrimSpace(buf.String())
	want := `2026-03-14T15:09:26Z INFO content.upsert err="boom now" logger=sitecms.content module=sitecms.content page_slug=arcturus request_id=req-1`
	if got != want {
		t.Fatalf("unexpected entry\nwant: %s\ngot:  %s", want, got)
	}
}

func TestConsoleLoggerFiltersBelowMinLevel(t *testing.T) {
	var buf bytes.Buffer
	level := console.ParseLevel("warn")
	provider := console.NewProvider(console.Options{Writer: &buf, MinLevel: &level})

	logger := provider.GetLogger("sitecms.test")
	logger.Info("dropped")
	logger.Warn("kept", "odd")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one line, got %d: %q", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], "kept field_0=odd") {
		t.Fatalf("unexpected line %s", lines[0])
	}
}

func TestParseLevelDefaultsToInfo(t *testing.T) {
	if got := console.ParseLevel("verbose"); got != console.LevelInfo {
		t.Fatalf("expected info, got %s", got)
	}
	if got := console.ParseLevel("TRACE"); got != console.LevelTrace {
		t.Fatalf("expected trace, got %s", got)
	}
}
