package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/goliatone/go-sitecms/internal/apperrors"
	editorcmd "github.com/goliatone/go-sitecms/internal/commands/editor"
	"github.com/goliatone/go-sitecms/internal/shortcuts"
)

var errPageIDInvalid = apperrors.Validation("PAGE_ID_INVALID", "http: page id must be an integer")

// shortcutPayload accepts the target as a JSON string or number; the
// validator owns the parsing rules.
type shortcutPayload struct {
	Target json.RawMessage `json:"target"`
}

type shortcutResponse struct {
	PageID            int64   `json:"page_id"`
	PageSlug          string  `json:"page_slug"`
	TargetPageSlug    *string `json:"target_page_slug"`
	NavigationUpdated int64   `json:"navigation_updated"`
	NavigationError   string  `json:"navigation_error,omitempty"`
}

func (api *AdminAPI) registerShortcutRoutes(mux *http.ServeMux, base string) {
	root := joinPath(base, "registry/{id}/shortcut")
	mux.HandleFunc("PUT "+root, api.handleShortcutSet)
	mux.HandleFunc("DELETE "+root, api.handleShortcutClear)
}

func pageIDParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(r.PathValue("id")), 10, 64)
	if err != nil || id <= 0 {
		return 0, errPageIDInvalid
	}
	return id, nil
}

func (p shortcutPayload) candidate() string {
	raw := strings.TrimSpace(string(p.Target))
	var text string
	if err := json.Unmarshal(p.Target, &text); err == nil {
		return text
	}
	return raw
}

func (api *AdminAPI) handleShortcutSet(w http.ResponseWriter, r *http.Request) {
	if api.commands == nil {
		unavailable(w)
		return
	}
	pageID, err := pageIDParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var payload shortcutPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, err)
		return
	}
	candidate := payload.candidate()
	if candidate == "" {
		writeError(w, shortcuts.ErrInvalidInput)
		return
	}
	var result shortcuts.Result
	err = api.commands.SetShortcut.Execute(r.Context(), editorcmd.SetShortcutCommand{
		PageID: pageID,
		Target: candidate,
		Result: &result,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, shortcutView(pageID, result))
}

func (api *AdminAPI) handleShortcutClear(w http.ResponseWriter, r *http.Request) {
	if api.commands == nil {
		unavailable(w)
		return
	}
	pageID, err := pageIDParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var result shortcuts.Result
	err = api.commands.ClearShortcut.Execute(r.Context(), editorcmd.ClearShortcutCommand{PageID: pageID, Result: &result})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, shortcutView(pageID, result))
}

func shortcutView(pageID int64, result shortcuts.Result) shortcutResponse {
	resp := shortcutResponse{PageID: pageID, NavigationUpdated: result.NavigationUpdated}
	if result.Source != nil {
		resp.PageSlug = result.Source.PageSlug
		resp.TargetPageSlug = result.Source.TargetPageSlug
	}
	if result.NavigationErr != nil {
		resp.NavigationError = apperrors.CodeOf(result.NavigationErr)
		if resp.NavigationError == "" {
			resp.NavigationError = "NAVIGATION_UPDATE_FAILED"
		}
	}
	return resp
}
