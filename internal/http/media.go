package http

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/goliatone/go-sitecms/internal/apperrors"
	"github.com/goliatone/go-sitecms/internal/media"
)

var errFileRequired = apperrors.Validation("UPLOAD_FILE_REQUIRED", "http: multipart field \"file\" is required")

func (api *AdminAPI) registerMediaRoutes(mux *http.ServeMux, base string) {
	mux.HandleFunc("POST "+joinPath(base, "media"), api.handleMediaUpload)
}

// handleMediaUpload accepts a multipart form with a "file" part and an
// optional "bucket" field.
func (api *AdminAPI) handleMediaUpload(w http.ResponseWriter, r *http.Request) {
	if api.media == nil {
		unavailable(w)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, media.MaxUploadSize+(1<<20))
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, media.ErrBodyTooLarge)
			return
		}
		writeError(w, errFileRequired)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, errFileRequired)
		return
	}
	defer file.Close()

	body, err := io.ReadAll(io.LimitReader(file, media.MaxUploadSize+1))
	if err != nil {
		writeError(w, errFileRequired)
		return
	}
	asset, err := api.media.Upload(r.Context(), media.UploadInput{
		Bucket:      strings.TrimSpace(r.FormValue("bucket")),
		FileName:    header.Filename,
		Body:        body,
		ContentType: header.Header.Get("Content-Type"),
	})
	if err != nil {
		api.logger.WithContext(r.Context()).Debug("http.media.upload.rejected", "file_name", header.Filename, "error", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, asset)
}
