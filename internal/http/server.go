package http

import (
	"net/http"

	"github.com/goliatone/go-sitecms/internal/metrics"
)

// NewHandler mounts both APIs on one mux and wraps it with request metrics
// when m is set. A nil api is skipped.
func NewHandler(admin *AdminAPI, public *PublicAPI, m *metrics.Metrics) (http.Handler, error) {
	mux := http.NewServeMux()
	if admin != nil {
		if err := admin.Register(mux); err != nil {
			return nil, err
		}
	}
	if public != nil {
		if err := public.Register(mux); err != nil {
			return nil, err
		}
	}
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if m == nil {
		return mux, nil
	}
	mux.Handle("GET /metrics", m.Handler())
	return m.Middleware(mux), nil
}
