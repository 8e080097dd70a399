package http

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/malwarescan/croutons-merge-service/internal/documents"
)

type activatePayload struct {
	VersionID   string `json:"version_id,omitempty"`
	Domain      string `json:"domain,omitempty"`
	Path        string `json:"path,omitempty"`
	ContentHash string `json:"content_hash,omitempty"`
}

func (api *API) registerDocumentRoutes(mux *http.ServeMux, base string) {
	mux.HandleFunc("POST "+joinPath(base, "documents/render"), api.handleRender)
	mux.HandleFunc("POST "+joinPath(base, "documents/activate"), api.handleActivate)
	mux.HandleFunc("POST "+joinPath(base, "documents/deactivate"), api.handleDeactivate)
	mux.HandleFunc("GET "+joinPath(base, "documents/{domain}/versions/{path...}"), api.handleListVersions)
	mux.HandleFunc("GET "+joinPath(base, "documents/{domain}/preview/{path...}"), api.handlePreview)
	mux.HandleFunc("POST "+joinPath(base, "domains/{domain}/verify"), api.handleInitiateVerification)
	mux.HandleFunc("POST "+joinPath(base, "domains/{domain}/verify/confirm"), api.handleConfirmVerification)
	mux.HandleFunc("GET "+joinPath(base, "domains/{domain}"), api.handleDomainStatus)
}

func (api *API) handleRender(w http.ResponseWriter, r *http.Request) {
	if api == nil || api.documents == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
		return
	}
	var req documents.RenderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_json", Message: err.Error()})
		return
	}
	result, err := api.documents.Render(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	status := http.StatusCreated
	if result.Outcome == documents.RenderOutcomeDuplicate {
		status = http.StatusOK
	}
	writeJSON(w, status, result)
}

func (api *API) handleActivate(w http.ResponseWriter, r *http.Request) {
	if api == nil || api.documents == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
		return
	}
	var payload activatePayload
	if err := decodeJSON(r, &payload); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_json", Message: err.Error()})
		return
	}

	var (
		version *documents.DocumentVersion
		err     error
	)
	if payload.VersionID != "" {
		id, parseErr := uuid.Parse(payload.VersionID)
		if parseErr != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_request", Message: "version_id must be a uuid"})
			return
		}
		version, err = api.documents.ActivateByID(r.Context(), id)
	} else {
		version, err = api.documents.Activate(r.Context(), payload.Domain, payload.Path, payload.ContentHash)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, version)
}

func (api *API) handleDeactivate(w http.ResponseWriter, r *http.Request) {
	if api == nil || api.documents == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
		return
	}
	var payload activatePayload
	if err := decodeJSON(r, &payload); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_json", Message: err.Error()})
		return
	}
	version, err := api.documents.Deactivate(r.Context(), payload.Domain, payload.Path, payload.ContentHash)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, version)
}

func (api *API) handleListVersions(w http.ResponseWriter, r *http.Request) {
	if api == nil || api.documents == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
		return
	}
	versions, err := api.documents.ListVersions(r.Context(), r.PathValue("domain"), r.PathValue("path"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, versions)
}

func (api *API) handlePreview(w http.ResponseWriter, r *http.Request) {
	if api == nil || api.documents == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
		return
	}
	preview, err := api.documents.Preview(r.Context(), r.PathValue("domain"), r.PathValue("path"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, preview)
}

func (api *API) handleInitiateVerification(w http.ResponseWriter, r *http.Request) {
	if api == nil || api.documents == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
		return
	}
	record, err := api.documents.InitiateVerification(r.Context(), r.PathValue("domain"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"domain":     record.Domain,
		"verified":   record.Verified,
		"txt_record": documents.VerificationTokenPrefix + record.Token,
	})
}

func (api *API) handleConfirmVerification(w http.ResponseWriter, r *http.Request) {
	if api == nil || api.documents == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
		return
	}
	record, err := api.documents.ConfirmVerification(r.Context(), r.PathValue("domain"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (api *API) handleDomainStatus(w http.ResponseWriter, r *http.Request) {
	if api == nil || api.documents == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
		return
	}
	record, err := api.documents.DomainStatus(r.Context(), r.PathValue("domain"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}
