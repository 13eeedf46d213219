// Package apperrors holds the error taxonomy shared by the content, shortcut
// and integration packages, and its mapping onto go-errors categories.
package apperrors

import (
	"context"
	"errors"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
)

// Kind classifies failures the way callers are expected to react to them.
type Kind uint8

const (
	// KindNotFound means absent content. Readers usually treat it as empty.
	KindNotFound Kind = iota + 1
	// KindValidation rejects admin input before any write is attempted.
	KindValidation
	// KindIntegration wraps datastore, storage and third-party call failures.
	KindIntegration
	// KindDecode marks malformed stored payloads. Readers degrade to no content.
	KindDecode
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindValidation:
		return "validation"
	case KindIntegration:
		return "integration"
	case KindDecode:
		return "decode"
	default:
		return "unknown"
	}
}

// Categories used when errors cross the command and HTTP boundaries.
var (
	CategoryNotFound    = goerrors.Category("sitecms_not_found")
	CategoryIntegration = goerrors.Category("sitecms_integration")
	CategoryDecode      = goerrors.Category("sitecms_decode")
)

// Error is a classified failure. Code is a stable upper snake case
// identifier surfaced to admin clients.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Err != nil && e.Message != "":
		return e.Message + ": " + e.Err.Error()
	case e.Err != nil:
		return e.Err.Error()
	default:
		return e.Message
	}
}

func (e *Error) Unwrap() error { return e.Err }

// New builds a classified error without a cause, suitable for sentinels.
func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// Validation is shorthand for New(KindValidation, ...).
func Validation(code, message string) *Error {
	return New(KindValidation, code, message)
}

// Integration wraps a collaborator failure. A nil err returns nil.
func Integration(code string, err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: KindIntegration, Code: code, Message: fmt.Sprintf(format, args...), Err: err}
}

// Decode wraps a malformed payload error. A nil err returns nil.
func Decode(code string, err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: KindDecode, Code: code, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf reports the classification of err, if any.
func KindOf(err error) (Kind, bool) {
	var classified *Error
	if errors.As(err, &classified) {
		return classified.Kind, true
	}
	return 0, false
}

// CodeOf returns the code of the outermost classified error.
func CodeOf(err error) string {
	var classified *Error
	if errors.As(err, &classified) {
		return classified.Code
	}
	return ""
}

func IsValidation(err error) bool  { return hasKind(err, KindValidation) }
func IsNotFound(err error) bool    { return hasKind(err, KindNotFound) }
func IsIntegration(err error) bool { return hasKind(err, KindIntegration) }
func IsDecode(err error) bool      { return hasKind(err, KindDecode) }

func hasKind(err error, kind Kind) bool {
	got, ok := KindOf(err)
	return ok && got == kind
}

// Categorize converts a classified error into a go-errors error carrying the
// matching category and text code. Already wrapped errors pass through, and
// unclassified errors fall back to the provided category.
func Categorize(err error, fallback goerrors.Category, fallbackCode string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}

	kind, ok := KindOf(err)
	if !ok {
		switch {
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return goerrors.Wrap(err, goerrors.CategoryCommand, "operation interrupted").
				WithTextCode("CONTEXT_ERROR")
		}
		return goerrors.Wrap(err, fallback, err.Error()).WithTextCode(fallbackCode)
	}

	code := CodeOf(err)
	switch kind {
	case KindValidation:
		return goerrors.Wrap(err, goerrors.CategoryValidation, err.Error()).WithTextCode(code)
	case KindNotFound:
		return goerrors.Wrap(err, CategoryNotFound, err.Error()).WithTextCode(code)
	case KindDecode:
		return goerrors.Wrap(err, CategoryDecode, err.Error()).WithTextCode(code)
	default:
		return goerrors.Wrap(err, CategoryIntegration, err.Error()).WithTextCode(code)
	}
}
