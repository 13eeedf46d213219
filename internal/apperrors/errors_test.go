package apperrors

import (
	"context"
	"errors"
	"fmt"
	"testing"

	goerrors "github.com/goliatone/go-errors"
)

var errSample = Validation("SAMPLE_INVALID", "sample: invalid")

func TestKindOfFindsWrappedClassification(t *testing.T) {
	err := fmt.Errorf("save: %w", errSample)
	kind, ok := KindOf(err)
	if !ok || kind != KindValidation {
		t.Fatalf("expected validation kind, got %v %v", kind, ok)
	}
	if !errors.Is(err, errSample) {
		t.Fatal("expected sentinel identity to survive wrapping")
	}
	if CodeOf(err) != "SAMPLE_INVALID" {
		t.Fatalf("unexpected code %q", CodeOf(err))
	}
}

func TestIntegrationNilPassThrough(t *testing.T) {
	if Integration("X", nil, "ignored") != nil {
		t.Fatal("expected nil for nil cause")
	}
	err := Integration("DATASTORE_FAILED", errors.New("conn reset"), "content: get %s", "arcturus")
	if !IsIntegration(err) {
		t.Fatalf("expected integration kind, got %v", err)
	}
	if err.Error() != "content: get arcturus: conn reset" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestCategorizeMapsKinds(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want goerrors.Category
	}{
		{"validation", errSample, goerrors.CategoryValidation},
		{"integration", Integration("UPLOAD_FAILED", errors.New("x"), "media"), CategoryIntegration},
		{"decode", Decode("BAD_JSON", errors.New("x"), "content"), CategoryDecode},
		{"not found", New(KindNotFound, "PAGE_NOT_FOUND", "missing"), CategoryNotFound},
		{"fallback", errors.New("plain"), goerrors.CategoryCommand},
		{"context", context.Canceled, goerrors.CategoryCommand},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Categorize(tc.err, goerrors.CategoryCommand, "COMMAND_FAILED")
			if !goerrors.IsCategory(got, tc.want) {
				t.Fatalf("expected category %v, got %v", tc.want, got)
			}
		})
	}
}
