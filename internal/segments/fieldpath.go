package segments

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Field is one concrete string location inside a payload, e.g.
// "items.2.question".
type Field struct {
	Path  string
	Value string
}

// ExtractText returns the non-empty translatable strings of data keyed by
// concrete path.
func ExtractText(data Data) (map[string]string, error) {
	if data == nil {
		return map[string]string{}, nil
	}
	doc, err := toDocument(data)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string)
	for _, pattern := range catalog[data.SegmentType()].text {
		for _, field := range expand(doc, pattern) {
			if strings.TrimSpace(field.Value) != "" {
				out[field.Path] = field.Value
			}
		}
	}
	return out, nil
}

// ApplyText writes values onto a copy of data at the given concrete paths.
// Paths that do not exist in data are ignored.
func ApplyText(data Data, values map[string]string) (Data, error) {
	if data == nil {
		return nil, nil
	}
	doc, err := toDocument(data)
	if err != nil {
		return nil, err
	}
	for path, value := range values {
		assign(doc, path, value)
	}
	return fromDocument(data.SegmentType(), doc)
}

// Blank clears the fallback-blanked fields of data and returns the copy.
func Blank(data Data) (Data, error) {
	if data == nil {
		return nil, nil
	}
	def, ok := catalog[data.SegmentType()]
	if !ok {
		return data, nil
	}
	doc, err := toDocument(data)
	if err != nil {
		return nil, err
	}
	for _, pattern := range def.blank {
		for _, field := range expand(doc, pattern) {
			assign(doc, field.Path, "")
		}
	}
	return fromDocument(data.SegmentType(), doc)
}

func toDocument(data Data) (any, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func fromDocument(t Type, doc any) (Data, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	return DecodeData(t, raw), nil
}

func expand(doc any, pattern string) []Field {
	var out []Field
	walkPattern(doc, strings.Split(pattern, "."), "", &out)
	return out
}

func walkPattern(node any, tokens []string, prefix string, out *[]Field) {
	if len(tokens) == 0 {
		if value, ok := node.(string); ok {
			*out = append(*out, Field{Path: prefix, Value: value})
		}
		return
	}
	name, depth := parseToken(tokens[0])
	current := node
	if name != "" {
		obj, ok := node.(map[string]any)
		if !ok {
			return
		}
		current, ok = obj[name]
		if !ok {
			return
		}
		prefix = join(prefix, name)
	}
	walkArrays(current, depth, tokens[1:], prefix, out)
}

func walkArrays(node any, depth int, rest []string, prefix string, out *[]Field) {
	if depth == 0 {
		walkPattern(node, rest, prefix, out)
		return
	}
	items, ok := node.([]any)
	if !ok {
		return
	}
	for i, item := range items {
		walkArrays(item, depth-1, rest, join(prefix, strconv.Itoa(i)), out)
	}
}

func parseToken(token string) (string, int) {
	depth := 0
	for strings.HasSuffix(token, "[]") {
		token = strings.TrimSuffix(token, "[]")
		depth++
	}
	return token, depth
}

func join(prefix, part string) string {
	if prefix == "" {
		return part
	}
	return prefix + "." + part
}

// assign sets a string leaf addressed by a concrete path. It only replaces
// existing string or null leaves.
func assign(doc any, path string, value string) bool {
	parts := strings.Split(path, ".")
	node := doc
	for i, part := range parts {
		last := i == len(parts)-1
		switch container := node.(type) {
		case map[string]any:
			next, ok := container[part]
			if !ok {
				return false
			}
			if last {
				if !isLeaf(next) {
					return false
				}
				container[part] = value
				return true
			}
			node = next
		case []any:
			idx, err := strconv.Atoi(part)
			if err != nil || idx < 0 || idx >= len(container) {
				return false
			}
			if last {
				if !isLeaf(container[idx]) {
					return false
				}
				container[idx] = value
				return true
			}
			node = container[idx]
		default:
			return false
		}
	}
	return false
}

func isLeaf(v any) bool {
	switch v.(type) {
	case string, nil:
		return true
	}
	return false
}

// TextPaths lists every concrete translatable location of data, including
// empty ones.
func TextPaths(data Data) (map[string]bool, error) {
	out := make(map[string]bool)
	if data == nil {
		return out, nil
	}
	doc, err := toDocument(data)
	if err != nil {
		return nil, err
	}
	for _, pattern := range catalog[data.SegmentType()].text {
		for _, field := range expand(doc, pattern) {
			out[field.Path] = true
		}
	}
	return out, nil
}
