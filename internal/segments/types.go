// Package segments models the typed content blocks a page is composed of and
// the editor read/write path for the page_segments array.
package segments

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// Type tags a segment's data shape.
type Type string

const (
	TypeMetaNavigation     Type = "meta-navigation"
	TypeProductHeroGallery Type = "product-hero-gallery"
	TypeFeatureOverview    Type = "feature-overview"
	TypeTable              Type = "table"
	TypeFAQ                Type = "faq"
	TypeSpecification      Type = "specification"
	TypeVideo              Type = "video"
	TypeIntro              Type = "intro"
	TypeIndustries         Type = "industries"
	TypeFullHero           Type = "full-hero"
	TypeNews               Type = "news"
	TypeTiles              Type = "tiles"
	TypeBanner             Type = "banner"
	TypeBannerP            Type = "banner-p"
	TypeImageText          Type = "image-text"
)

// Types lists the known segment types in catalog order.
func Types() []Type {
	out := make([]Type, 0, len(catalog))
	for t := range catalog {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Known reports whether t is part of the catalog.
func (t Type) Known() bool {
	_, ok := catalog[t]
	return ok
}

// Data is the payload of a segment. Each catalog type has its own struct;
// anything else is carried as RawData.
type Data interface {
	SegmentType() Type
}

// Segment is one element of a page_segments array.
type Segment struct {
	ID       ID
	Type     Type
	Position *int
	Data     Data
	// Extra keeps unrecognised top level keys so rewrites preserve them.
	Extra map[string]json.RawMessage

	// raw holds the element as it was decoded. It is written back verbatim
	// so rewriting an array leaves untouched elements byte-equivalent.
	raw json.RawMessage
}

// Tabbed reports whether the segment is shown in the page tab bar.
func (s Segment) Tabbed() bool {
	return s.Position != nil && *s.Position > 0
}

func (s Segment) MarshalJSON() ([]byte, error) {
	if len(s.raw) > 0 {
		return s.raw, nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	write := func(key string, value any) error {
		if buf.Len() > 1 {
			buf.WriteByte(',')
		}
		encodedKey, _ := json.Marshal(key)
		buf.Write(encodedKey)
		buf.WriteByte(':')
		encoded, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("segments: encode %s: %w", key, err)
		}
		buf.Write(encoded)
		return nil
	}

	if err := write("id", s.ID); err != nil {
		return nil, err
	}
	if s.Type != "" {
		if err := write("type", s.Type); err != nil {
			return nil, err
		}
	}
	if s.Position != nil {
		if err := write("position", *s.Position); err != nil {
			return nil, err
		}
	}
	if s.Data != nil {
		if err := write("data", s.Data); err != nil {
			return nil, err
		}
	}
	keys := make([]string, 0, len(s.Extra))
	for key := range s.Extra {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if err := write(key, s.Extra[key]); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (s *Segment) UnmarshalJSON(raw []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return err
	}
	var out Segment
	if value, ok := fields["id"]; ok {
		if err := json.Unmarshal(value, &out.ID); err != nil {
			return err
		}
		delete(fields, "id")
	}
	if value, ok := fields["type"]; ok {
		var t *string
		if err := json.Unmarshal(value, &t); err != nil {
			return fmt.Errorf("segments: type must be a string: %w", err)
		}
		if t != nil {
			out.Type = Type(*t)
		}
		delete(fields, "type")
	}
	if value, ok := fields["position"]; ok {
		var position *float64
		if err := json.Unmarshal(value, &position); err == nil && position != nil {
			p := int(*position)
			out.Position = &p
		}
		delete(fields, "position")
	}
	data, hasData := fields["data"]
	delete(fields, "data")
	if hasData || out.Type.Known() {
		out.Data = DecodeData(out.Type, data)
	}
	if len(fields) > 0 {
		out.Extra = fields
	}
	out.raw = cloneRaw(bytes.TrimSpace(raw))
	*s = out
	return nil
}

// DecodeData decodes raw into the struct registered for t. Unknown types,
// and payloads that do not fit the registered struct, are kept as RawData.
func DecodeData(t Type, raw json.RawMessage) Data {
	trimmed := bytes.TrimSpace(raw)
	def, ok := catalog[t]
	if !ok {
		return &RawData{Kind: t, Raw: cloneRaw(trimmed)}
	}
	data := def.zero()
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return data
	}
	if err := json.Unmarshal(trimmed, data); err != nil {
		return &RawData{Kind: t, Raw: cloneRaw(trimmed)}
	}
	return data
}

// Zero returns an empty payload for t, or nil for unknown types.
func Zero(t Type) Data {
	def, ok := catalog[t]
	if !ok {
		return nil
	}
	return def.zero()
}

func cloneRaw(raw []byte) json.RawMessage {
	if len(raw) == 0 {
		return nil
	}
	out := make(json.RawMessage, len(raw))
	copy(out, raw)
	return out
}

// RawData holds a payload verbatim.
type RawData struct {
	Kind Type
	Raw  json.RawMessage
}

func (r *RawData) SegmentType() Type { return r.Kind }

func (r *RawData) MarshalJSON() ([]byte, error) {
	if len(r.Raw) == 0 {
		return []byte("null"), nil
	}
	return r.Raw, nil
}

// DecodeArray decodes a page_segments payload.
func DecodeArray(raw string) ([]Segment, error) {
	trimmed := bytes.TrimSpace([]byte(raw))
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	var out []Segment
	if err := json.Unmarshal(trimmed, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// EncodeArray encodes segments as a JSON array, never null.
func EncodeArray(list []Segment) (string, error) {
	if list == nil {
		list = []Segment{}
	}
	raw, err := json.Marshal(list)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// Find returns the index of the segment with id, or -1.
func Find(list []Segment, id ID) int {
	for i := range list {
		if list[i].ID.Equal(id) {
			return i
		}
	}
	return -1
}

// Inline returns segments rendered in document order, outside the tab bar.
func Inline(list []Segment) []Segment {
	out := make([]Segment, 0, len(list))
	for _, seg := range list {
		if !seg.Tabbed() {
			out = append(out, seg)
		}
	}
	return out
}

// Tabs returns tabbed segments sorted by position. Ties keep array order.
func Tabs(list []Segment) []Segment {
	out := make([]Segment, 0, len(list))
	for _, seg := range list {
		if seg.Tabbed() {
			out = append(out, seg)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return *out[i].Position < *out[j].Position })
	return out
}
