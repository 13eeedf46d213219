package storage

import (
	"context"
	"errors"
	"testing"
)

func TestOpenSQLiteMemory(t *testing.T) {
	db, err := Open(context.Background(), Config{Driver: "sqlite", DSN: "file:storage_test?mode=memory&cache=shared"})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	var one int
	if err := db.NewSelect().ColumnExpr("1").Scan(context.Background(), &one); err != nil {
		t.Fatalf("select: %v", err)
	}
	if one != 1 {
		t.Fatalf("expected 1, got %d", one)
	}
}

func TestOpenValidation(t *testing.T) {
	if _, err := Open(context.Background(), Config{Driver: "sqlite"}); !errors.Is(err, ErrDSNRequired) {
		t.Fatalf("expected ErrDSNRequired, got %v", err)
	}
	if _, err := Open(context.Background(), Config{Driver: "oracle", DSN: "x"}); !errors.Is(err, ErrDriverUnsupported) {
		t.Fatalf("expected ErrDriverUnsupported, got %v", err)
	}
}
