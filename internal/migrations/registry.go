// Package migrations orders the table migrations of every bun-backed store.
package migrations

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/uptrace/bun"

	"github.com/goliatone/go-sitecms/internal/content"
	"github.com/goliatone/go-sitecms/internal/downloads"
	"github.com/goliatone/go-sitecms/internal/glossary"
	"github.com/goliatone/go-sitecms/internal/logging"
	"github.com/goliatone/go-sitecms/internal/navigation"
	"github.com/goliatone/go-sitecms/internal/news"
	"github.com/goliatone/go-sitecms/internal/pages"
	"github.com/goliatone/go-sitecms/pkg/interfaces"
)

// MigrationFunc creates or alters the tables of one module. It must be
// idempotent.
type MigrationFunc func(ctx context.Context, db bun.IDB) error

type step struct {
	name string
	fn   MigrationFunc
}

// Registry runs migrations in registration order.
type Registry struct {
	mu    sync.RWMutex
	steps []step
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Default registers every module table of the site.
func Default() *Registry {
	r := NewRegistry()
	_ = r.Register("page_content", content.Migrate)
	_ = r.Register("page_registry", pages.Migrate)
	_ = r.Register("navigation_links", navigation.Migrate)
	_ = r.Register("glossary", glossary.Migrate)
	_ = r.Register("news_articles", news.Migrate)
	_ = r.Register("downloads", downloads.Migrate)
	return r
}

// Register appends a named step. Names must be unique.
func (r *Registry) Register(name string, fn MigrationFunc) error {
	name = strings.TrimSpace(name)
	if name == "" || fn == nil {
		return fmt.Errorf("migrations: name and function are required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.steps {
		if existing.name == name {
			return fmt.Errorf("migrations: %s already registered", name)
		}
	}
	r.steps = append(r.steps, step{name: name, fn: fn})
	return nil
}

// Names lists the registered steps in run order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.steps))
	for _, s := range r.steps {
		names = append(names, s.name)
	}
	return names
}

// Run applies every step, stopping at the first failure.
func (r *Registry) Run(ctx context.Context, db bun.IDB, logger interfaces.Logger) error {
	if logger == nil {
		logger = logging.NoOp()
	}
	r.mu.RLock()
	steps := append([]step(nil), r.steps...)
	r.mu.RUnlock()

	for _, s := range steps {
		if err := s.fn(ctx, db); err != nil {
			logger.Error("migrations.step.failed", "step", s.name, "error", err)
			return fmt.Errorf("migrations: %s: %w", s.name, err)
		}
		logger.Debug("migrations.step.applied", "step", s.name)
	}
	logger.Info("migrations.complete", "steps", len(steps))
	return nil
}
