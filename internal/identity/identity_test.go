package identity

import (
	"testing"

	"github.com/google/uuid"
)

func TestPageContentUUIDIsStablePerTuple(t *testing.T) {
	a := PageContentUUID("arcturus", "page_segments", "de")
	b := PageContentUUID("arcturus", "page_segments", "de")
	if a != b {
		t.Fatalf("expected deterministic ids, got %s and %s", a, b)
	}
	if a == PageContentUUID("arcturus", "page_segments", "en") {
		t.Fatal("expected language to change the id")
	}
	if PageContentUUID("arcturus", "page_segments", "") == a {
		t.Fatal("expected legacy row to have its own id")
	}
}

func TestUUIDEmptyKey(t *testing.T) {
	if UUID("  ") != uuid.Nil {
		t.Fatal("expected nil uuid for blank key")
	}
}

func TestRegistryUUIDsDiffer(t *testing.T) {
	if PageRegistryUUID(7) == PageRegistryUUID(8) {
		t.Fatal("expected page ids to produce different uuids")
	}
	if SegmentRegistryUUID("arcturus", "faq-1") == SegmentRegistryUUID("arcturus", "faq-2") {
		t.Fatal("expected segment ids to produce different uuids")
	}
	if NavigationLinkUUID("/arcturus", "") == NavigationLinkUUID("/arcturus", "de") {
		t.Fatal("expected language to change navigation ids")
	}
}
