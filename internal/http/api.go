package http

import (
	"net/http"

	"github.com/malwarescan/croutons-merge-service/internal/documents"
	"github.com/malwarescan/croutons-merge-service/internal/listings"
	"github.com/malwarescan/croutons-merge-service/internal/logging"
	"github.com/malwarescan/croutons-merge-service/pkg/interfaces"
)

// API mounts the merge and document endpoints plus the public serving route.
type API struct {
	listings  listings.Service
	documents documents.Service
	basePath  string
	logger    interfaces.Logger
}

// Option configures the API.
type Option func(*API)

// WithBasePath sets the prefix for the JSON endpoints. Defaults to /api.
func WithBasePath(base string) Option {
	return func(a *API) {
		a.basePath = base
	}
}

// WithLogger attaches a logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(a *API) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// NewAPI constructs the HTTP surface.
func NewAPI(listingSvc listings.Service, documentSvc documents.Service, opts ...Option) *API {
	api := &API{
		listings:  listingSvc,
		documents: documentSvc,
		basePath:  "/api",
		logger:    logging.NoOp(),
	}
	for _, opt := range opts {
		opt(api)
	}
	return api
}

// Register mounts every route on the mux.
func (api *API) Register(mux *http.ServeMux) {
	if api == nil || mux == nil {
		return
	}
	api.registerListingRoutes(mux, api.basePath)
	api.registerDocumentRoutes(mux, api.basePath)
	api.registerServingRoutes(mux)
}

// Handler returns a mux with every route registered.
func (api *API) Handler() http.Handler {
	mux := http.NewServeMux()
	api.Register(mux)
	return mux
}
