package markdown

import (
	"bytes"
	"fmt"
	"maps"
	"time"

	"github.com/adrg/frontmatter"
)

// FrontMatter is the metadata block of a news or page document.
type FrontMatter struct {
	Title    string         `yaml:"title"`
	Slug     string         `yaml:"slug"`
	Summary  string         `yaml:"summary"`
	Category string         `yaml:"category"`
	Image    string         `yaml:"image"`
	Author   string         `yaml:"author"`
	Tags     []string       `yaml:"tags"`
	Date     time.Time      `yaml:"date"`
	Draft    bool           `yaml:"draft"`
	Custom   map[string]any `yaml:",inline"`
}

// Document is a parsed Markdown file.
type Document struct {
	Path         string
	Language     string
	Meta         FrontMatter
	Body         []byte
	Checksum     []byte
	LastModified time.Time
}

// ParseError reports a document whose front matter could not be parsed.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string { return e.Path + ": " + e.Err.Error() }

func (e *ParseError) Unwrap() error { return e.Err }

// ParseFrontMatter splits source into metadata and the Markdown body.
func ParseFrontMatter(source []byte) (FrontMatter, []byte, error) {
	var meta FrontMatter
	body, err := frontmatter.Parse(bytes.NewReader(source), &meta)
	if err != nil {
		return FrontMatter{}, nil, fmt.Errorf("parse frontmatter: %w", err)
	}
	if meta.Custom != nil {
		meta.Custom = maps.Clone(meta.Custom)
	}
	return meta, body, nil
}

// BuildDocument parses source into a Document. Bodies are rendered lazily.
func BuildDocument(path, language string, source []byte, modified time.Time) (*Document, error) {
	meta, body, err := ParseFrontMatter(source)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	return &Document{
		Path:         path,
		Language:     language,
		Meta:         meta,
		Body:         body,
		LastModified: modified,
	}, nil
}
