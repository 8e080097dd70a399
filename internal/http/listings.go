package http

import (
	"net/http"

	"github.com/malwarescan/croutons-merge-service/internal/listings"
)

type mergePayload struct {
	District string                    `json:"district"`
	Strategy string                    `json:"strategy,omitempty"`
	Live     []*listings.ListingRecord `json:"live"`
}

func (api *API) registerListingRoutes(mux *http.ServeMux, base string) {
	mux.HandleFunc("POST "+joinPath(base, "merge"), api.handleMerge)
	mux.HandleFunc("GET "+joinPath(base, "listings/{district}"), api.handleListings)
	mux.HandleFunc("GET "+joinPath(base, "districts"), api.handleDistricts)
	mux.HandleFunc("GET "+joinPath(base, "districts/{district}/profile"), api.handleProfile)
	mux.HandleFunc("GET "+joinPath(base, "districts/{district}/pricing"), api.handlePricing)
}

func (api *API) handleMerge(w http.ResponseWriter, r *http.Request) {
	if api == nil || api.listings == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
		return
	}
	var payload mergePayload
	if err := decodeJSON(r, &payload); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_json", Message: err.Error()})
		return
	}

	result, err := api.listings.Merge(r.Context(), listings.MergeRequest{
		District: payload.District,
		Strategy: listings.Strategy(payload.Strategy),
		Live:     payload.Live,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (api *API) handleDistricts(w http.ResponseWriter, r *http.Request) {
	if api == nil || api.listings == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
		return
	}
	names, err := api.listings.Districts(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, names)
}

func (api *API) handleListings(w http.ResponseWriter, r *http.Request) {
	if api == nil || api.listings == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
		return
	}
	records, err := api.listings.Listings(r.Context(), r.PathValue("district"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (api *API) handleProfile(w http.ResponseWriter, r *http.Request) {
	if api == nil || api.listings == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
		return
	}
	profile, err := api.listings.Profile(r.Context(), r.PathValue("district"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (api *API) handlePricing(w http.ResponseWriter, r *http.Request) {
	if api == nil || api.listings == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
		return
	}
	entries, err := api.listings.PricingReference(r.Context(), r.PathValue("district"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
