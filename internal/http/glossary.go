package http

import (
	"net/http"

	editorcmd "github.com/goliatone/go-sitecms/internal/commands/editor"
	"github.com/goliatone/go-sitecms/internal/glossary"
)

func (api *AdminAPI) registerGlossaryRoutes(mux *http.ServeMux, base string) {
	root := joinPath(base, "glossary")
	mux.HandleFunc("GET "+root, api.handleGlossaryList)
	mux.HandleFunc("PUT "+root, api.handleGlossaryUpsert)
	mux.HandleFunc("DELETE "+root+"/{term}", api.handleGlossaryDelete)
}

func (api *AdminAPI) handleGlossaryList(w http.ResponseWriter, r *http.Request) {
	if api.glossary == nil {
		unavailable(w)
		return
	}
	entries, err := api.glossary.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if entries == nil {
		entries = []*glossary.Entry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (api *AdminAPI) handleGlossaryUpsert(w http.ResponseWriter, r *http.Request) {
	if api.commands == nil {
		unavailable(w)
		return
	}
	var entry glossary.Entry
	if err := decodeJSON(r, &entry); err != nil {
		writeError(w, err)
		return
	}
	var stored glossary.Entry
	if err := api.commands.UpsertGlossary.Execute(r.Context(), editorcmd.UpsertGlossaryEntryCommand{Entry: entry, Result: &stored}); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stored)
}

func (api *AdminAPI) handleGlossaryDelete(w http.ResponseWriter, r *http.Request) {
	if api.commands == nil {
		unavailable(w)
		return
	}
	if err := api.commands.DeleteGlossary.Execute(r.Context(), editorcmd.DeleteGlossaryEntryCommand{Term: r.PathValue("term")}); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
