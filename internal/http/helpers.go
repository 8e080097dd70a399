package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/malwarescan/croutons-merge-service/internal/documents"
	"github.com/malwarescan/croutons-merge-service/internal/listings"
)

type errorResponse struct {
	Error   string            `json:"error"`
	Message string            `json:"message,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

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
		return io.EOF
	}
	defer r.Body.Close()
	decoder := json.NewDecoder(r.Body)
	decoder.UseNumber()
	return decoder.Decode(target)
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

func mapError(err error) (int, errorResponse) {
	if err == nil {
		return http.StatusInternalServerError, errorResponse{Error: "unknown_error"}
	}

	var fieldErrors validation.Errors
	if errors.As(err, &fieldErrors) {
		fields := make(map[string]string, len(fieldErrors))
		for name, fieldErr := range fieldErrors {
			if fieldErr != nil {
				fields[name] = fieldErr.Error()
			}
		}
		return http.StatusBadRequest, errorResponse{
			Error:   "validation_failed",
			Message: err.Error(),
			Fields:  fields,
		}
	}

	var versionNotFound *documents.VersionNotFoundError
	if errors.As(err, &versionNotFound) {
		return http.StatusNotFound, errorResponse{
			Error:   "not_found",
			Message: versionNotFound.Error(),
		}
	}

	switch {
	case errors.Is(err, documents.ErrDomainNotVerified):
		return http.StatusForbidden, errorResponse{
			Error:   "domain_not_verified",
			Message: err.Error(),
		}
	case errors.Is(err, documents.ErrDocumentNotFound),
		errors.Is(err, documents.ErrVersionNotFound),
		errors.Is(err, documents.ErrDomainNotFound),
		errors.Is(err, listings.ErrProfileNotFound):
		return http.StatusNotFound, errorResponse{
			Error:   "not_found",
			Message: err.Error(),
		}
	case errors.Is(err, documents.ErrVerificationFailed):
		return http.StatusUnprocessableEntity, errorResponse{
			Error:   "verification_failed",
			Message: err.Error(),
		}
	case errors.Is(err, documents.ErrDomainRequired),
		errors.Is(err, documents.ErrPathRequired),
		errors.Is(err, documents.ErrContentRequired),
		errors.Is(err, listings.ErrDistrictRequired),
		errors.Is(err, listings.ErrNoLiveRecords):
		return http.StatusBadRequest, errorResponse{
			Error:   "invalid_request",
			Message: err.Error(),
		}
	}

	return http.StatusInternalServerError, errorResponse{
		Error:   "internal_error",
		Message: err.Error(),
	}
}
