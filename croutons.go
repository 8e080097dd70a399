package croutons

import (
	"net/http"

	"github.com/malwarescan/croutons-merge-service/internal/cache"
	"github.com/malwarescan/croutons-merge-service/internal/di"
	"github.com/malwarescan/croutons-merge-service/internal/documents"
	"github.com/malwarescan/croutons-merge-service/internal/listings"
)

// ListingService exports the merge service contract for consumers of the
// croutons package.
type ListingService = listings.Service

// DocumentService exports the versioned document store contract.
type DocumentService = documents.Service

// ListingRecord exports the canonical merged business entity.
type ListingRecord = listings.ListingRecord

// DistrictProfile exports the curated district profile shape.
type DistrictProfile = listings.DistrictProfile

// PricingReferenceEntry exports the reference pricing shape.
type PricingReferenceEntry = listings.PricingReferenceEntry

// MergeRequest exports the merge request payload.
type MergeRequest = listings.MergeRequest

// MergeResult exports the merge response payload.
type MergeResult = listings.MergeResult

// DocumentVersion exports the stored version shape.
type DocumentVersion = documents.DocumentVersion

// VerifiedDomain exports the domain verification record.
type VerifiedDomain = documents.VerifiedDomain

// RenderRequest exports the document render payload.
type RenderRequest = documents.RenderRequest

// RenderResult exports the document render response.
type RenderResult = documents.RenderResult

// ServableDocument exports the public serving shape.
type ServableDocument = documents.ServableDocument

// TieredCache exports the read-through cache for host integrations.
type TieredCache = cache.Service

// Module is the top level runtime façade.
type Module struct {
	container *di.Container
}

// New constructs a module using the provided configuration and optional DI
// overrides.
func New(cfg Config, opts ...di.Option) (*Module, error) {
	container, err := di.NewContainer(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying DI container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// Listings returns the configured merge service.
func (m *Module) Listings() ListingService {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.ListingService()
}

// Documents returns the configured document store service.
func (m *Module) Documents() DocumentService {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.DocumentService()
}

// Cache returns the tiered read-through cache.
func (m *Module) Cache() *TieredCache {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Cache()
}

// Handler returns the HTTP surface with every route registered.
func (m *Module) Handler() http.Handler {
	if m == nil || m.container == nil {
		return http.NotFoundHandler()
	}
	return m.container.API().Handler()
}
