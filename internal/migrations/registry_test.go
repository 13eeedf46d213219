package migrations

import (
	"context"
	"errors"
	"testing"

	"github.com/uptrace/bun"

	"github.com/goliatone/go-sitecms/pkg/testsupport"
)

func TestDefaultCreatesEveryTable(t *testing.T) {
	db := testsupport.NewBunDB(t)
	ctx := context.Background()

	if err := Default().Run(ctx, db, nil); err != nil {
		t.Fatalf("run: %v", err)
	}
	// A second run must be a no-op.
	if err := Default().Run(ctx, db, nil); err != nil {
		t.Fatalf("rerun: %v", err)
	}

	for _, table := range []string{"page_content", "page_registry", "segment_registry", "navigation_links", "glossary", "news_articles", "download_requests", "file_segment_mappings"} {
		var count int
		err := db.NewSelect().TableExpr("sqlite_master").ColumnExpr("count(*)").
			Where("type = 'table' AND name = ?", table).Scan(ctx, &count)
		if err != nil {
			t.Fatalf("inspect %s: %v", table, err)
		}
		if count != 1 {
			t.Fatalf("expected table %s to exist", table)
		}
	}
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	r := NewRegistry()
	noop := func(context.Context, bun.IDB) error { return nil }
	if err := r.Register("a", noop); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := r.Register("a", noop); err == nil {
		t.Fatal("expected duplicate registration to fail")
	}
	if err := r.Register(" ", noop); err == nil {
		t.Fatal("expected empty name to fail")
	}
}

func TestRunStopsAtFirstFailure(t *testing.T) {
	r := NewRegistry()
	boom := errors.New("boom")
	ran := []string{}
	_ = r.Register("first", func(context.Context, bun.IDB) error { ran = append(ran, "first"); return boom })
	_ = r.Register("second", func(context.Context, bun.IDB) error { ran = append(ran, "second"); return nil })

	err := r.Run(context.Background(), nil, nil)
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if len(ran) != 1 {
		t.Fatalf("expected only the first step to run, got %v", ran)
	}
}
