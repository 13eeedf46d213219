package identity

import (
	"strconv"
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// UUID derives a deterministic UUID from a stable key using go-hashid. Keys
// are prefixed per entity so different tables never collide.
func UUID(key string) uuid.UUID {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return uuid.Nil
	}
	uid, err := hashid.NewUUID(trimmed, hashid.WithHashAlgorithm(hashid.SHA256), hashid.WithNormalization(true))
	if err != nil || uid == uuid.Nil {
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(trimmed))
	}
	return uid
}

// PageContentUUID identifies the page_content row for a unique
// (page_slug, section_key, language) tuple. An empty language is the legacy
// NULL row.
func PageContentUUID(pageSlug, sectionKey, language string) uuid.UUID {
	if strings.TrimSpace(language) == "" {
		language = "<null>"
	}
	return UUID("sitecms:page_content:" + strings.TrimSpace(pageSlug) + ":" + strings.TrimSpace(sectionKey) + ":" + language)
}

func GlossaryUUID(term string) uuid.UUID {
	return UUID("sitecms:glossary:" + strings.ToLower(strings.TrimSpace(term)))
}

func NewsArticleUUID(slug, language string) uuid.UUID {
	return UUID("sitecms:news:" + strings.TrimSpace(slug) + ":" + strings.ToLower(strings.TrimSpace(language)))
}

func FileMappingUUID(fileKey string) uuid.UUID {
	return UUID("sitecms:file_segment_mapping:" + strings.TrimSpace(fileKey))
}

func PageRegistryUUID(pageID int64) uuid.UUID {
	return UUID("sitecms:page_registry:" + strconv.FormatInt(pageID, 10))
}

func SegmentRegistryUUID(pageSlug, segmentID string) uuid.UUID {
	return UUID("sitecms:segment_registry:" + strings.TrimSpace(pageSlug) + ":" + strings.TrimSpace(segmentID))
}

func NavigationLinkUUID(slug, language string) uuid.UUID {
	if strings.TrimSpace(language) == "" {
		language = "<null>"
	}
	return UUID("sitecms:navigation_link:" + strings.TrimSpace(slug) + ":" + language)
}
