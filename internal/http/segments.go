package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	editorcmd "github.com/goliatone/go-sitecms/internal/commands/editor"
	"github.com/goliatone/go-sitecms/internal/content"
	"github.com/goliatone/go-sitecms/internal/segments"
	"github.com/goliatone/go-sitecms/internal/translation"
)

type segmentListResponse struct {
	Slug     string             `json:"slug"`
	Language string             `json:"language"`
	Fallback content.Fallback   `json:"fallback,omitempty"`
	Segments []segments.Segment `json:"segments"`
}

type segmentResponse struct {
	ID       segments.ID      `json:"id"`
	Type     segments.Type    `json:"type"`
	Language string           `json:"language"`
	Found    bool             `json:"found"`
	Fallback content.Fallback `json:"fallback,omitempty"`
	Blanked  bool             `json:"blanked,omitempty"`
	Data     segments.Data    `json:"data"`
}

type segmentSavePayload struct {
	Type         segments.Type   `json:"type"`
	Data         json.RawMessage `json:"data"`
	UpdatedBy    string          `json:"updated_by,omitempty"`
	BackfillType bool            `json:"backfill_type,omitempty"`
}

type segmentSaveResponse struct {
	Appended bool               `json:"appended"`
	Segments []segments.Segment `json:"segments"`
}

type translateResponse struct {
	Data             segments.Data `json:"data"`
	Translated       int           `json:"translated"`
	MergedOntoTarget bool          `json:"merged_onto_target"`
}

func (api *AdminAPI) registerSegmentRoutes(mux *http.ServeMux, base string) {
	root := joinPath(base, "pages/{slug}/segments")
	mux.HandleFunc("GET "+root, api.handleSegmentList)
	mux.HandleFunc("GET "+root+"/{id}", api.handleSegmentGet)
	mux.HandleFunc("PUT "+root+"/{id}", api.handleSegmentSave)
	mux.HandleFunc("DELETE "+root+"/{id}", api.handleSegmentDelete)
	mux.HandleFunc("POST "+root+"/{id}/translate", api.handleSegmentTranslate)
}

// pathID keeps integer ids numeric so appended segments store the same
// representation new editor rows use.
func pathID(r *http.Request) segments.ID {
	raw := strings.TrimSpace(r.PathValue("id"))
	if _, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return segments.NewID(json.Number(raw))
	}
	return segments.NewID(raw)
}

func (api *AdminAPI) handleSegmentList(w http.ResponseWriter, r *http.Request) {
	if api.segments == nil {
		unavailable(w)
		return
	}
	lang, err := languageParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	page, err := api.segments.List(r.Context(), r.PathValue("slug"), lang)
	if err != nil {
		writeError(w, err)
		return
	}
	list := page.Segments
	if list == nil {
		list = []segments.Segment{}
	}
	writeJSON(w, http.StatusOK, segmentListResponse{
		Slug:     page.Slug,
		Language: string(lang),
		Fallback: page.Fallback,
		Segments: list,
	})
}

func (api *AdminAPI) handleSegmentGet(w http.ResponseWriter, r *http.Request) {
	if api.segments == nil {
		unavailable(w)
		return
	}
	lang, err := languageParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	req := segments.LookupRequest{
		PageSlug: r.PathValue("slug"),
		ID:       pathID(r),
		Type:     segments.Type(strings.TrimSpace(r.URL.Query().Get("type"))),
		Language: lang,
		Mode:     segments.ParseMode(r.URL.Query().Get("mode")),
	}
	result, err := api.segments.Lookup(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	resp := segmentResponse{
		ID:       req.ID,
		Type:     req.Type,
		Language: string(lang),
		Found:    result.Found(),
		Fallback: result.Fallback,
		Blanked:  result.Blanked,
		Data:     result.Data,
	}
	if result.Segment != nil && result.Segment.Type != "" {
		resp.Type = result.Segment.Type
	}
	writeJSON(w, http.StatusOK, resp)
}

func (api *AdminAPI) handleSegmentSave(w http.ResponseWriter, r *http.Request) {
	if api.commands == nil {
		unavailable(w)
		return
	}
	var payload segmentSavePayload
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, err)
		return
	}
	var result segments.SaveResult
	err := api.commands.SaveSegment.Execute(r.Context(), editorcmd.SaveSegmentCommand{
		PageSlug:     r.PathValue("slug"),
		Language:     queryLanguage(r),
		ID:           pathID(r),
		Type:         payload.Type,
		Data:         payload.Data,
		UpdatedBy:    payload.UpdatedBy,
		BackfillType: payload.BackfillType,
		Result:       &result,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	status := http.StatusOK
	if result.Appended {
		status = http.StatusCreated
	}
	writeJSON(w, status, segmentSaveResponse{Appended: result.Appended, Segments: result.Segments})
}

func (api *AdminAPI) handleSegmentDelete(w http.ResponseWriter, r *http.Request) {
	if api.commands == nil {
		unavailable(w)
		return
	}
	var deleted bool
	err := api.commands.DeleteSegment.Execute(r.Context(), editorcmd.DeleteSegmentCommand{
		PageSlug:  r.PathValue("slug"),
		Language:  queryLanguage(r),
		ID:        pathID(r),
		UpdatedBy: strings.TrimSpace(r.URL.Query().Get("updated_by")),
		Deleted:   &deleted,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	if !deleted {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not_found", Code: "SEGMENT_NOT_FOUND"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (api *AdminAPI) handleSegmentTranslate(w http.ResponseWriter, r *http.Request) {
	if api.translation == nil {
		unavailable(w)
		return
	}
	lang, err := languageParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	draft, err := api.translation.AutoTranslateSegment(r.Context(), translation.AutoTranslateRequest{
		PageSlug: r.PathValue("slug"),
		ID:       pathID(r),
		Type:     segments.Type(strings.TrimSpace(r.URL.Query().Get("type"))),
		Language: lang,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, translateResponse{
		Data:             draft.Data,
		Translated:       draft.Translated,
		MergedOntoTarget: draft.MergedOntoTarget,
	})
}

// queryLanguage passes ?lang= through untouched; commands validate it.
func queryLanguage(r *http.Request) string {
	code := strings.TrimSpace(r.URL.Query().Get("lang"))
	if code == "" {
		return "en"
	}
	return code
}
