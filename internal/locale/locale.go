package locale

import (
	"errors"
	"fmt"
	"strings"
)

// Language is one of the locale codes the site publishes.
type Language string

const (
	English  Language = "en"
	German   Language = "de"
	Japanese Language = "ja"
	Korean   Language = "ko"
	Chinese  Language = "zh"
)

// Fallback is the language consulted when the requested one has no content.
const Fallback = English

// ErrUnsupportedLanguage is returned by Parse for codes outside Supported.
var ErrUnsupportedLanguage = errors.New("locale: unsupported language")

var supported = []Language{English, German, Japanese, Korean, Chinese}

// Supported returns the publishable languages in display order.
func Supported() []Language {
	out := make([]Language, len(supported))
	copy(out, supported)
	return out
}

// Parse normalizes a code such as "DE" or "de-DE" to a supported Language.
func Parse(code string) (Language, error) {
	trimmed := strings.ToLower(strings.TrimSpace(code))
	if idx := strings.IndexAny(trimmed, "-_"); idx > 0 {
		trimmed = trimmed[:idx]
	}
	for _, lang := range supported {
		if string(lang) == trimmed {
			return lang, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedLanguage, code)
}

// ParseOrDefault is Parse with a fallback for empty or unsupported input.
func ParseOrDefault(code string, def Language) Language {
	lang, err := Parse(code)
	if err != nil {
		return def
	}
	return lang
}

func (l Language) String() string { return string(l) }

// IsFallback reports whether l is the fallback language.
func (l Language) IsFallback() bool { return l == Fallback }

// Ptr returns a pointer to l, used where storage needs a nullable column.
func (l Language) Ptr() *Language {
	v := l
	return &v
}

// Legacy is the NULL language of rows written before per-language storage.
func Legacy() *Language { return nil }

// Label renders a nullable language for logs.
func Label(l *Language) string {
	if l == nil {
		return "null"
	}
	return string(*l)
}
