package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-sitecms/internal/apperrors"
	"github.com/goliatone/go-sitecms/internal/locale"
	schemas "github.com/goliatone/go-sitecms/internal/validation"
)

// maxJSONBody bounds JSON request bodies. Uploads use their own limit.
const maxJSONBody = 1 << 20

type errorResponse struct {
	Error   string            `json:"error"`
	Code    string            `json:"code,omitempty"`
	Message string            `json:"message,omitempty"`
	Issues  []schemas.Issue   `json:"issues,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

var errBodyRequired = apperrors.Validation("BODY_REQUIRED", "http: request body is required")

func joinPath(base, suffix string) string {
	trimmedBase := strings.TrimSpace(base)
	trimmedSuffix := strings.TrimSpace(suffix)
	if trimmedBase == "" {
		if trimmedSuffix == "" {
			return "/"
		}
		return "/" + strings.Trim(trimmedSuffix, "/")
	}
	baseClean := "/" + strings.Trim(trimmedBase, "/")
	if trimmedSuffix == "" {
		return baseClean
	}
	return baseClean + "/" + strings.Trim(trimmedSuffix, "/")
}

func decodeJSON(r *http.Request, target any) error {
	if r == nil || r.Body == nil {
		return errBodyRequired
	}
	defer r.Body.Close()
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody))
	if err := decoder.Decode(target); err != nil {
		if errors.Is(err, io.EOF) {
			return errBodyRequired
		}
		return apperrors.Validation("BODY_MALFORMED", "http: malformed JSON body: "+err.Error())
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	status, payload := mapError(err)
	writeJSON(w, status, payload)
}

// mapError turns service errors into status codes. Integration failures
// carry their code only; the cause stays in the logs.
func mapError(err error) (int, errorResponse) {
	if err == nil {
		return http.StatusInternalServerError, errorResponse{Error: "unknown_error"}
	}

	if errors.Is(err, schemas.ErrSchemaValidation) {
		return http.StatusUnprocessableEntity, errorResponse{
			Error:   "validation_failed",
			Code:    apperrors.CodeOf(err),
			Message: err.Error(),
			Issues:  schemas.Issues(err),
		}
	}

	if kind, ok := apperrors.KindOf(err); ok {
		code := apperrors.CodeOf(err)
		switch kind {
		case apperrors.KindValidation:
			return http.StatusBadRequest, errorResponse{
				Error:   "bad_request",
				Code:    code,
				Message: err.Error(),
				Fields:  fieldErrors(err),
			}
		case apperrors.KindNotFound:
			return http.StatusNotFound, errorResponse{Error: "not_found", Code: code, Message: err.Error()}
		case apperrors.KindIntegration:
			return http.StatusBadGateway, errorResponse{Error: "upstream_failed", Code: code, Message: "an upstream service failed"}
		}
	}

	if goerrors.IsCategory(err, goerrors.CategoryValidation) {
		return http.StatusBadRequest, errorResponse{
			Error:   "bad_request",
			Message: err.Error(),
			Fields:  fieldErrors(err),
		}
	}

	return http.StatusInternalServerError, errorResponse{
		Error:   "internal_error",
		Message: "internal error",
	}
}

func fieldErrors(err error) map[string]string {
	var fields validation.Errors
	if !errors.As(err, &fields) || len(fields) == 0 {
		return nil
	}
	out := make(map[string]string, len(fields))
	for name, fieldErr := range fields {
		if fieldErr != nil {
			out[name] = fieldErr.Error()
		}
	}
	return out
}

// languageParam reads ?lang=, defaulting to English. Unsupported codes are a
// validation error rather than a silent fallback.
func languageParam(r *http.Request) (locale.Language, error) {
	code := strings.TrimSpace(r.URL.Query().Get("lang"))
	if code == "" {
		return locale.Fallback, nil
	}
	lang, err := locale.Parse(code)
	if err != nil {
		return "", apperrors.Validation("LANGUAGE_INVALID", "http: unsupported language "+code)
	}
	return lang, nil
}

// publicLanguage is languageParam for visitor routes, where an unknown code
// falls back to English.
func publicLanguage(r *http.Request) locale.Language {
	return locale.ParseOrDefault(r.URL.Query().Get("lang"), locale.Fallback)
}
