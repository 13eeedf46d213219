package markdown

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
)

// LoaderConfig configures document discovery.
type LoaderConfig struct {
	// DefaultLanguage is used when no language directory prefixes the path.
	DefaultLanguage string
	// Languages are the directory names recognised as language roots, as in
	// "de/2024-05-launch.md".
	Languages []string
	// Pattern limits discovered files (defaults to "*.md").
	Pattern string
}

// Loader turns files of an fs.FS into Documents.
type Loader struct {
	fs              fs.FS
	defaultLanguage string
	languages       []string
	pattern         string
}

func NewLoader(filesystem fs.FS, cfg LoaderConfig) *Loader {
	pattern := strings.TrimSpace(cfg.Pattern)
	if pattern == "" {
		pattern = "*.md"
	}
	return &Loader{
		fs:              filesystem,
		defaultLanguage: cfg.DefaultLanguage,
		languages:       append([]string(nil), cfg.Languages...),
		pattern:         pattern,
	}
}

// LoadFile reads and parses one document.
func (l *Loader) LoadFile(ctx context.Context, name string) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	name = path.Clean(strings.TrimPrefix(name, "/"))
	data, err := fs.ReadFile(l.fs, name)
	if err != nil {
		return nil, fmt.Errorf("markdown loader read %s: %w", name, err)
	}
	info, err := fs.Stat(l.fs, name)
	if err != nil {
		return nil, fmt.Errorf("markdown loader stat %s: %w", name, err)
	}
	doc, err := BuildDocument(name, l.detectLanguage(name), data, info.ModTime())
	if err != nil {
		return nil, err
	}
	sum := sha256.Sum256(data)
	doc.Checksum = sum[:]
	return doc, nil
}

// LoadResult holds the documents of a directory and the files that failed
// to parse.
type LoadResult struct {
	Documents []*Document
	Failures  []error
}

// LoadDirectory walks dir recursively and returns documents sorted by path.
// Unparseable files are reported in Failures; read errors abort the walk.
func (l *Loader) LoadDirectory(ctx context.Context, dir string) (*LoadResult, error) {
	root := path.Clean(strings.TrimPrefix(dir, "/"))
	if root == "" {
		root = "."
	}

	result := &LoadResult{}
	err := fs.WalkDir(l.fs, root, func(name string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if match, _ := path.Match(l.pattern, path.Base(name)); !match {
			return nil
		}
		doc, err := l.LoadFile(ctx, name)
		var parseErr *ParseError
		switch {
		case errors.As(err, &parseErr):
			result.Failures = append(result.Failures, err)
			return nil
		case err != nil:
			return err
		}
		result.Documents = append(result.Documents, doc)
		return nil
	})
	if err != nil {
		return nil, err
	}
	docs := result.Documents
	sort.Slice(docs, func(i, j int) bool { return docs[i].Path < docs[j].Path })
	return result, nil
}

func (l *Loader) detectLanguage(name string) string {
	for _, segment := range strings.Split(name, "/") {
		for _, language := range l.languages {
			if strings.EqualFold(segment, language) {
				return language
			}
		}
	}
	return l.defaultLanguage
}
