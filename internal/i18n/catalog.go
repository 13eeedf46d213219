// Package i18n serves the static UI dictionaries of the public site.
package i18n

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"maps"
	"os"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-sitecms/internal/locale"
)

//go:embed locales/*.json
var embedded embed.FS

// Catalog holds one flat dictionary per language. Lookups fall back to the
// English dictionary and then to the key itself.
type Catalog struct {
	mu    sync.RWMutex
	dicts map[locale.Language]map[string]string
}

// Default loads the embedded dictionaries.
func Default() (*Catalog, error) {
	return LoadFS(embedded, "locales")
}

// MustDefault is Default for package level wiring.
func MustDefault() *Catalog {
	catalog, err := Default()
	if err != nil {
		panic(err)
	}
	return catalog
}

// LoadFS reads every <lang>.json file in dir. Files for unsupported languages
// are rejected.
func LoadFS(fsys fs.FS, dir string) (*Catalog, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("i18n: read %s: %w", dir, err)
	}
	c := &Catalog{dicts: make(map[locale.Language]map[string]string)}
	for _, entry := range entries {
		if entry.IsDir() || path.Ext(entry.Name()) != ".json" {
			continue
		}
		lang, err := locale.Parse(strings.TrimSuffix(entry.Name(), ".json"))
		if err != nil {
			return nil, fmt.Errorf("i18n: %s: %w", entry.Name(), err)
		}
		data, err := fs.ReadFile(fsys, path.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("i18n: read %s: %w", entry.Name(), err)
		}
		dict, err := decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("i18n: decode %s: %w", entry.Name(), err)
		}
		c.dicts[lang] = dict
	}
	if _, ok := c.dicts[locale.Fallback]; !ok {
		return nil, errors.New("i18n: fallback dictionary missing")
	}
	return c, nil
}

// MergeFile overlays the dictionary in a JSON file onto lang, so deployments
// can adjust wording without a rebuild.
func (c *Catalog) MergeFile(ctx context.Context, lang locale.Language, filePath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("i18n: open %q: %w", filePath, err)
	}
	defer file.Close()

	dict, err := decode(file)
	if err != nil {
		return fmt.Errorf("i18n: decode %q: %w", filePath, err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.dicts[lang] == nil {
		c.dicts[lang] = map[string]string{}
	}
	maps.Copy(c.dicts[lang], dict)
	return nil
}

func decode(r io.Reader) (map[string]string, error) {
	dict := map[string]string{}
	if err := json.NewDecoder(r).Decode(&dict); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return dict, nil
}

// T returns the message for key. Extra args are applied with fmt.Sprintf.
func (c *Catalog) T(lang locale.Language, key string, args ...any) string {
	message, ok := c.lookup(lang, key)
	if !ok {
		return key
	}
	if len(args) > 0 {
		return fmt.Sprintf(message, args...)
	}
	return message
}

// Has reports whether key exists in lang itself, without fallback.
func (c *Catalog) Has(lang locale.Language, key string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.dicts[lang][key]
	return ok
}

func (c *Catalog) lookup(lang locale.Language, key string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if message, ok := c.dicts[lang][key]; ok && message != "" {
		return message, true
	}
	message, ok := c.dicts[locale.Fallback][key]
	return message, ok
}

// Dictionary returns the full dictionary for lang with English filling the
// missing keys.
func (c *Catalog) Dictionary(lang locale.Language) map[string]string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := maps.Clone(c.dicts[locale.Fallback])
	for key, message := range c.dicts[lang] {
		if message != "" {
			out[key] = message
		}
	}
	return out
}

// Missing lists the keys of the English dictionary that lang does not define.
func (c *Catalog) Missing(lang locale.Language) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var missing []string
	for key := range c.dicts[locale.Fallback] {
		if _, ok := c.dicts[lang][key]; !ok {
			missing = append(missing, key)
		}
	}
	sort.Strings(missing)
	return missing
}

// TemplateFuncs exposes T to html/template as "t".
func (c *Catalog) TemplateFuncs(lang locale.Language) template.FuncMap {
	return template.FuncMap{
		"t": func(key string, args ...any) string { return c.T(lang, key, args...) },
	}
}
