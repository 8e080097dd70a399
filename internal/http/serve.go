package http

import (
	"fmt"
	"net/http"
	"strings"
)

const markdownContentType = "text/markdown; charset=utf-8"

func (api *API) registerServingRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /sites/{domain}/{path...}", api.handleServe)
}

// handleServe is the public read path. Responses carry an ETag derived from
// the content hash and a Last-Modified from the render time, so unchanged
// documents revalidate without a body transfer.
func (api *API) handleServe(w http.ResponseWriter, r *http.Request) {
	if api == nil || api.documents == nil {
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
		return
	}

	doc, err := api.documents.Resolve(r.Context(), r.PathValue("domain"), r.PathValue("path"))
	if err != nil {
		status, payload := mapError(err)
		api.logger.Debug("serve rejected",
			"domain", r.PathValue("domain"), "path", r.PathValue("path"), "status", status)
		http.Error(w, payload.Message, status)
		return
	}

	etag := fmt.Sprintf("%q", doc.ContentHash)
	if match := r.Header.Get("If-None-Match"); match != "" && etagMatches(match, etag) {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", markdownContentType)
	w.Header().Set("ETag", etag)
	w.Header().Set("Last-Modified", doc.GeneratedAt.UTC().Format(http.TimeFormat))
	_, _ = w.Write([]byte(doc.Markdown))
}

func etagMatches(header, etag string) bool {
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		candidate = strings.TrimPrefix(candidate, "W/")
		if candidate == etag || candidate == "*" {
			return true
		}
	}
	return false
}
