package zaplog

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/goliatone/go-sitecms/pkg/interfaces"
)

func TestProviderWritesNamedEntriesWithFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	provider := NewFromLogger(zap.New(core))

	logger := provider.GetLogger("sitecms.downloads").(interfaces.FieldsLogger).WithFields(map[string]any{"module": "sitecms.downloads"})
	logger.Info("downloads.submit", "email", "Jane@Example.com", "api_key", "k-123", "file_key", "arcturus-datasheet")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	entry := entries[0]
	if entry.LoggerName != "sitecms.downloads" {
		t.Fatalf("unexpected logger name %q", entry.LoggerName)
	}
	fields := entry.ContextMap()
	if fields["api_key"] != "[REDACTED]" {
		t.Fatalf("expected api key redaction, got %v", fields["api_key"])
	}
	if fields["email"] == "Jane@Example.com" {
		t.Fatal("expected email to be hashed")
	}
	if fields["file_key"] != "arcturus-datasheet" || fields["module"] != "sitecms.downloads" {
		t.Fatalf("unexpected fields %v", fields)
	}
}

func TestNewProviderRejectsUnknownLevel(t *testing.T) {
	if _, err := NewProvider(Config{Level: "loud"}); err == nil {
		t.Fatal("expected invalid level error")
	}
}

func TestTraceMapsToDebug(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	NewFromLogger(zap.New(core)).GetLogger("").Trace("trace.entry")
	if logs.Len() != 1 || logs.All()[0].Level != zap.DebugLevel {
		t.Fatalf("expected one debug entry, got %v", logs.All())
	}
}
