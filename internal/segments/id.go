package segments

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ID identifies a segment within a page array. Stored ids may be JSON
// strings or numbers; two ids are equal when their string forms match, so
// 5 and "5" address the same segment.
type ID struct {
	value   string
	numeric bool
}

// NewID converts a string, integer, float or json.Number into an ID.
func NewID(v any) ID {
	switch value := v.(type) {
	case ID:
		return value
	case string:
		return ID{value: value}
	case json.Number:
		return numericID(value.String())
	case int:
		return ID{value: strconv.Itoa(value), numeric: true}
	case int32:
		return ID{value: strconv.FormatInt(int64(value), 10), numeric: true}
	case int64:
		return ID{value: strconv.FormatInt(value, 10), numeric: true}
	case uint:
		return ID{value: strconv.FormatUint(uint64(value), 10), numeric: true}
	case uint64:
		return ID{value: strconv.FormatUint(value, 10), numeric: true}
	case float64:
		return ID{value: formatFloat(value), numeric: true}
	case float32:
		return ID{value: formatFloat(float64(value)), numeric: true}
	case nil:
		return ID{}
	default:
		return ID{value: fmt.Sprint(value)}
	}
}

func numericID(text string) ID {
	if strings.ContainsAny(text, ".eE") {
		if f, err := strconv.ParseFloat(text, 64); err == nil {
			return ID{value: formatFloat(f), numeric: true}
		}
	}
	return ID{value: text, numeric: true}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func (id ID) String() string { return id.value }

func (id ID) IsZero() bool { return strings.TrimSpace(id.value) == "" }

// Numeric reports whether the id was stored as a JSON number.
func (id ID) Numeric() bool { return id.numeric }

// Equal compares string forms only.
func (id ID) Equal(other ID) bool { return id.value == other.value }

// MarshalJSON keeps the stored representation so rewrites do not change
// numeric ids into strings.
func (id ID) MarshalJSON() ([]byte, error) {
	if id.numeric {
		if _, err := strconv.ParseFloat(id.value, 64); err == nil {
			return []byte(id.value), nil
		}
	}
	return json.Marshal(id.value)
}

func (id *ID) UnmarshalJSON(raw []byte) error {
	trimmed := bytes.TrimSpace(raw)
	switch {
	case len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")):
		*id = ID{}
	case trimmed[0] == '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*id = ID{value: s}
	default:
		var n json.Number
		if err := json.Unmarshal(trimmed, &n); err != nil {
			return fmt.Errorf("segments: id must be a string or number: %w", err)
		}
		*id = numericID(n.String())
	}
	return nil
}
