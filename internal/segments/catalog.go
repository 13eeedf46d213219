package segments

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/goliatone/go-sitecms/internal/apperrors"
	"github.com/goliatone/go-sitecms/internal/validation"
)

// definition binds a segment type to its payload struct, its translatable
// fields and the fields blanked when an editor is shown English fallback
// content. Paths use dot notation with [] to step into arrays.
type definition struct {
	zero   func() Data
	text   []string
	blank  []string
	schema map[string]any
}

var catalog = map[Type]definition{
	TypeMetaNavigation: {
		zero:  func() Data { return &MetaNavigation{} },
		text:  []string{"title", "items[].label"},
		blank: []string{"title", "items[].label"},
		schema: object(map[string]any{
			"title": str(),
			"items": list(object(map[string]any{"label": str(), "anchor": str()}, "anchor")),
		}),
	},
	TypeProductHeroGallery: {
		zero:  func() Data { return &ProductHeroGallery{} },
		text:  []string{"title", "subtitle", "description", "buttonText", "images[].alt"},
		blank: []string{"title", "subtitle", "description", "buttonText"},
		schema: object(map[string]any{
			"title":       str(),
			"subtitle":    str(),
			"description": str(),
			"images":      list(object(map[string]any{"url": str(), "alt": str()}, "url")),
			"buttonText":  str(),
			"buttonLink":  str(),
		}),
	},
	TypeFeatureOverview: {
		zero:  func() Data { return &FeatureOverview{} },
		text:  []string{"title", "subtext", "features[].title", "features[].description"},
		blank: []string{"title", "subtext"},
		schema: object(map[string]any{
			"title":   str(),
			"subtext": str(),
			"features": list(object(map[string]any{
				"title": str(), "description": str(), "icon": str(),
			}, "title")),
		}),
	},
	TypeTable: {
		zero:  func() Data { return &Table{} },
		text:  []string{"title", "headers[]", "rows[][]"},
		blank: []string{"title"},
		schema: object(map[string]any{
			"title":   str(),
			"headers": list(str()),
			"rows":    list(list(str())),
		}),
	},
	TypeFAQ: {
		zero:  func() Data { return &FAQ{} },
		text:  []string{"title", "subtext", "items[].question", "items[].answer"},
		blank: []string{"title", "subtext"},
		schema: object(map[string]any{
			"title":   str(),
			"subtext": str(),
			"items":   list(object(map[string]any{"question": str(), "answer": str()}, "question", "answer")),
		}),
	},
	TypeSpecification: {
		zero:  func() Data { return &Specification{} },
		text:  []string{"title", "rows[].specification", "rows[].value"},
		blank: []string{"title"},
		schema: object(map[string]any{
			"title": str(),
			"rows":  list(object(map[string]any{"specification": str(), "value": str()}, "specification")),
		}),
	},
	TypeVideo: {
		zero:  func() Data { return &Video{} },
		text:  []string{"title", "description"},
		blank: []string{"title", "description"},
		schema: object(map[string]any{
			"title": str(), "description": str(), "videoUrl": str(), "posterUrl": str(),
		}, "videoUrl"),
	},
	TypeIntro: {
		zero:  func() Data { return &Intro{} },
		text:  []string{"title", "text"},
		blank: []string{"title", "text"},
		schema: object(map[string]any{
			"title": str(), "text": str(), "imageUrl": str(),
		}),
	},
	TypeIndustries: {
		zero:  func() Data { return &Industries{} },
		text:  []string{"title", "subtext", "items[].name", "items[].description"},
		blank: []string{"title", "subtext", "items[].description"},
		schema: object(map[string]any{
			"title":   str(),
			"subtext": str(),
			"items": list(object(map[string]any{
				"name": str(), "description": str(), "imageUrl": str(), "link": str(),
			}, "name")),
		}),
	},
	TypeFullHero: {
		zero:  func() Data { return &FullHero{} },
		text:  []string{"title", "subtitle", "buttonText"},
		blank: []string{"title", "subtitle", "buttonText"},
		schema: object(map[string]any{
			"title": str(), "subtitle": str(), "backgroundImage": str(), "buttonText": str(), "buttonLink": str(),
		}),
	},
	TypeNews: {
		zero:  func() Data { return &News{} },
		text:  []string{"title"},
		blank: []string{"title"},
		schema: object(map[string]any{
			"title":    str(),
			"limit":    map[string]any{"type": "integer", "minimum": 0, "maximum": 50},
			"category": str(),
		}),
	},
	TypeTiles: {
		zero:  func() Data { return &Tiles{} },
		text:  []string{"title", "tiles[].title", "tiles[].description"},
		blank: []string{"title", "tiles[].title", "tiles[].description"},
		schema: object(map[string]any{
			"title": str(),
			"tiles": list(object(map[string]any{
				"title": str(), "description": str(), "imageUrl": str(), "link": str(),
			})),
		}),
	},
	TypeBanner: {
		zero:  func() Data { return &Banner{} },
		text:  []string{"title", "text", "buttonText"},
		blank: []string{"title", "text", "buttonText"},
		schema: object(map[string]any{
			"title": str(), "text": str(), "buttonText": str(), "buttonLink": str(), "imageUrl": str(),
		}),
	},
	TypeBannerP: {
		zero:  func() Data { return &BannerProduct{} },
		text:  []string{"title", "text", "buttonText"},
		blank: []string{"title", "text"},
		schema: object(map[string]any{
			"title": str(), "text": str(), "productSlug": str(), "imageUrl": str(), "buttonText": str(), "buttonLink": str(),
		}),
	},
	TypeImageText: {
		zero:  func() Data { return &ImageText{} },
		text:  []string{"title", "text"},
		blank: []string{"title", "text"},
		schema: object(map[string]any{
			"title":         str(),
			"text":          str(),
			"imageUrl":      str(),
			"imagePosition": map[string]any{"enum": []any{"", "left", "right", nil}},
		}),
	},
}

func str() map[string]any {
	return map[string]any{"type": []any{"string", "null"}}
}

func list(items map[string]any) map[string]any {
	return map[string]any{"type": []any{"array", "null"}, "items": items}
}

func object(properties map[string]any, required ...string) map[string]any {
	schema := map[string]any{"type": "object", "properties": properties}
	if len(required) > 0 {
		names := make([]any, len(required))
		for i, name := range required {
			names[i] = name
		}
		schema["required"] = names
	}
	return schema
}

// TextFields returns the translatable field paths of t.
func TextFields(t Type) []string {
	return append([]string(nil), catalog[t].text...)
}

// BlankFields returns the field paths of t cleared on English fallback in
// edit mode.
func BlankFields(t Type) []string {
	return append([]string(nil), catalog[t].blank...)
}

// NewSchemaRegistry compiles the payload schema of every catalog type.
func NewSchemaRegistry() (*validation.Registry, error) {
	registry := validation.NewRegistry()
	for t, def := range catalog {
		if err := registry.Register(string(t), def.schema); err != nil {
			return nil, fmt.Errorf("segments: schema %s: %w", t, err)
		}
	}
	return registry, nil
}

// ErrUnknownType rejects payloads for types outside the catalog.
var ErrUnknownType = apperrors.Validation("SEGMENT_TYPE_UNKNOWN", "segments: unknown segment type")

// ParseData validates raw against the schema of t and decodes it.
func ParseData(schemas *validation.Registry, t Type, raw json.RawMessage) (Data, error) {
	if !t.Known() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, t)
	}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		trimmed = []byte("{}")
	}
	var doc any
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return nil, apperrors.Validation("PAYLOAD_MALFORMED", "segments: data must be a JSON object: "+err.Error())
	}
	if schemas != nil {
		if err := schemas.Validate(string(t), doc); err != nil {
			return nil, err
		}
	}
	data := catalog[t].zero()
	if err := json.Unmarshal(trimmed, data); err != nil {
		return nil, apperrors.Validation("PAYLOAD_MALFORMED", "segments: "+err.Error())
	}
	return data, nil
}
