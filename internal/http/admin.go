package http

import (
	"fmt"
	"net/http"
	"strings"

	editorcmd "github.com/goliatone/go-sitecms/internal/commands/editor"
	"github.com/goliatone/go-sitecms/internal/glossary"
	"github.com/goliatone/go-sitecms/internal/logging"
	"github.com/goliatone/go-sitecms/internal/media"
	"github.com/goliatone/go-sitecms/internal/segments"
	"github.com/goliatone/go-sitecms/internal/translation"
	"github.com/goliatone/go-sitecms/pkg/interfaces"
)

// AdminAPI registers the editor endpoints. Reads go to the services, writes
// go through the editor command handlers.
type AdminAPI struct {
	basePath    string
	segments    *segments.Service
	commands    *editorcmd.HandlerSet
	translation *translation.Service
	glossary    *glossary.Service
	media       *media.Service
	logger      interfaces.Logger
}

// AdminOption mutates the AdminAPI configuration.
type AdminOption func(*AdminAPI)

// NewAdminAPI constructs an AdminAPI instance.
func NewAdminAPI(opts ...AdminOption) *AdminAPI {
	api := &AdminAPI{
		basePath: "/admin/api",
		logger:   logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(api)
		}
	}
	return api
}

// WithBasePath overrides the base API path (defaults to "/admin/api").
func WithBasePath(path string) AdminOption {
	return func(api *AdminAPI) {
		if trimmed := strings.TrimSpace(path); trimmed != "" {
			api.basePath = trimmed
		}
	}
}

func WithSegmentService(service *segments.Service) AdminOption {
	return func(api *AdminAPI) { api.segments = service }
}

// WithCommands wires the write side.
func WithCommands(set *editorcmd.HandlerSet) AdminOption {
	return func(api *AdminAPI) { api.commands = set }
}

func WithTranslationService(service *translation.Service) AdminOption {
	return func(api *AdminAPI) { api.translation = service }
}

func WithGlossaryService(service *glossary.Service) AdminOption {
	return func(api *AdminAPI) { api.glossary = service }
}

func WithMediaService(service *media.Service) AdminOption {
	return func(api *AdminAPI) { api.media = service }
}

func WithAdminLogger(logger interfaces.Logger) AdminOption {
	return func(api *AdminAPI) {
		if logger != nil {
			api.logger = logger
		}
	}
}

// Register attaches the admin endpoints to the provided mux.
func (api *AdminAPI) Register(mux *http.ServeMux) error {
	if mux == nil {
		return fmt.Errorf("http: mux is required")
	}
	if api == nil {
		return fmt.Errorf("http: admin api is nil")
	}

	base := joinPath(api.basePath, "")

	api.registerSegmentRoutes(mux, base)
	api.registerShortcutRoutes(mux, base)
	api.registerGlossaryRoutes(mux, base)
	api.registerMediaRoutes(mux, base)

	return nil
}

func unavailable(w http.ResponseWriter) {
	writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
}
