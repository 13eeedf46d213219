// Package shortcuts validates and stores page redirects. A shortcut page
// points at another page that must exist and must not itself be a shortcut.
// The check is advisory: two concurrent edits can still create a cycle.
package shortcuts

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-sitecms/internal/apperrors"
	"github.com/goliatone/go-sitecms/internal/logging"
	"github.com/goliatone/go-sitecms/internal/navigation"
	"github.com/goliatone/go-sitecms/internal/pages"
	"github.com/goliatone/go-sitecms/pkg/interfaces"
)

var (
	ErrInvalidInput       = apperrors.Validation("SHORTCUT_INVALID_INPUT", "shortcuts: target page id must be an integer")
	ErrSelfRedirect       = apperrors.Validation("SHORTCUT_SELF_REDIRECT", "shortcuts: a page cannot redirect to itself")
	ErrTargetNotFound     = apperrors.Validation("SHORTCUT_TARGET_NOT_FOUND", "shortcuts: target page does not exist")
	ErrChainedRedirect    = apperrors.Validation("SHORTCUT_CHAINED_REDIRECT", "shortcuts: target page is itself a shortcut")
	ErrRepositoryRequired = errors.New("shortcuts: page repository is required")
)

// Validator runs the shortcut checks against the page registry.
type Validator struct {
	pages pages.Repository
}

func NewValidator(repo pages.Repository) *Validator {
	return &Validator{pages: repo}
}

// Validate checks candidate as a shortcut target for pageID and returns the
// target entry. Checks run in order and stop at the first failure: integer
// input, self reference, target existence, chained redirect.
func (v *Validator) Validate(ctx context.Context, pageID int64, candidate string) (*pages.Entry, error) {
	targetID, err := strconv.ParseInt(strings.TrimSpace(candidate), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidInput, candidate)
	}
	if targetID == pageID {
		return nil, ErrSelfRedirect
	}
	target, err := v.pages.GetByPageID(ctx, targetID)
	if err != nil {
		var nf *pages.NotFoundError
		if errors.As(err, &nf) {
			return nil, fmt.Errorf("%w: %d", ErrTargetNotFound, targetID)
		}
		return nil, apperrors.Integration("PAGE_REGISTRY_READ_FAILED", err, "shortcuts: load target %d", targetID)
	}
	if target.IsShortcut() {
		return nil, fmt.Errorf("%w: %s -> %s", ErrChainedRedirect, target.PageSlug, target.Target())
	}
	return target, nil
}

// Result describes a stored shortcut change.
type Result struct {
	Source *pages.Entry
	Target *pages.Entry
	// NavigationUpdated counts navigation links that now follow the target.
	NavigationUpdated int64
	// NavigationErr is set when the navigation update failed. The shortcut
	// itself is stored regardless.
	NavigationErr error
}

// Service stores shortcuts and keeps navigation links in step.
type Service struct {
	pages      pages.Repository
	navigation navigation.Repository
	validator  *Validator
	logger     interfaces.Logger
}

type ServiceOption func(*Service)

func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithNavigation enables link propagation.
func WithNavigation(repo navigation.Repository) ServiceOption {
	return func(s *Service) {
		s.navigation = repo
	}
}

func NewService(repo pages.Repository, opts ...ServiceOption) (*Service, error) {
	if repo == nil {
		return nil, ErrRepositoryRequired
	}
	s := &Service{pages: repo, validator: NewValidator(repo), logger: logging.NoOp()}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Validator exposes the underlying validator.
func (s *Service) Validator() *Validator { return s.validator }

// SetShortcut validates candidate and stores the target slug on pageID.
func (s *Service) SetShortcut(ctx context.Context, pageID int64, candidate string) (Result, error) {
	logger := s.logger.WithContext(ctx)
	target, err := s.validator.Validate(ctx, pageID, candidate)
	if err != nil {
		logger.Debug("shortcuts.validate.rejected", "page_id", pageID, "candidate", candidate, "error", err)
		return Result{}, err
	}

	slug := target.PageSlug
	source, err := s.pages.UpdateTarget(ctx, pageID, &slug)
	if err != nil {
		return Result{}, s.storeError(pageID, err)
	}
	result := Result{Source: source, Target: target}
	result.NavigationUpdated, result.NavigationErr = s.PropagateToNavigation(ctx, source.PageSlug, &slug)
	logger.Info("shortcuts.set", "page_id", pageID, "page_slug", source.PageSlug, "target_page_slug", slug,
		"navigation_updated", result.NavigationUpdated)
	return result, nil
}

// ClearShortcut removes the shortcut from pageID.
func (s *Service) ClearShortcut(ctx context.Context, pageID int64) (Result, error) {
	source, err := s.pages.UpdateTarget(ctx, pageID, nil)
	if err != nil {
		return Result{}, s.storeError(pageID, err)
	}
	result := Result{Source: source}
	result.NavigationUpdated, result.NavigationErr = s.PropagateToNavigation(ctx, source.PageSlug, nil)
	s.logger.WithContext(ctx).Info("shortcuts.cleared", "page_id", pageID, "page_slug", source.PageSlug)
	return result, nil
}

// PropagateToNavigation copies target onto every navigation link whose
// slug contains sourceSlug. Failures are logged and returned, never fatal.
func (s *Service) PropagateToNavigation(ctx context.Context, sourceSlug string, target *string) (int64, error) {
	if s.navigation == nil || strings.TrimSpace(sourceSlug) == "" {
		return 0, nil
	}
	affected, err := s.navigation.UpdateTargetBySlugLike(ctx, sourceSlug, target)
	if err != nil {
		wrapped := apperrors.Integration("NAVIGATION_UPDATE_FAILED", err, "shortcuts: propagate %s", sourceSlug)
		s.logger.WithContext(ctx).Warn("shortcuts.navigation.failed", "page_slug", sourceSlug, "error", wrapped)
		return 0, wrapped
	}
	return affected, nil
}

// ResolveRedirect returns the shortcut target of slug. Unknown pages and
// regular pages report false.
func (s *Service) ResolveRedirect(ctx context.Context, slug string) (string, bool, error) {
	entry, err := s.pages.GetBySlug(ctx, slug)
	if err != nil {
		var nf *pages.NotFoundError
		if errors.As(err, &nf) {
			return "", false, nil
		}
		return "", false, apperrors.Integration("PAGE_REGISTRY_READ_FAILED", err, "shortcuts: load %s", slug)
	}
	if !entry.IsShortcut() {
		return "", false, nil
	}
	return entry.Target(), true, nil
}

func (s *Service) storeError(pageID int64, err error) error {
	var nf *pages.NotFoundError
	if errors.As(err, &nf) {
		return err
	}
	return apperrors.Integration("PAGE_REGISTRY_WRITE_FAILED", err, "shortcuts: store target on %d", pageID)
}
