package listings

import (
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

func NewListingRepository(db *bun.DB) repository.Repository[*ListingRecord] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*ListingRecord]{
		NewRecord: func() *ListingRecord { return &ListingRecord{} },
		GetID: func(r *ListingRecord) uuid.UUID {
			return r.ID
		},
		SetID: func(r *ListingRecord, id uuid.UUID) {
			r.ID = id
		},
		GetIdentifier: func() string {
			return "name"
		},
		GetIdentifierValue: func(r *ListingRecord) string {
			return r.Name
		},
	})
}

func NewPricingReferenceRepository(db *bun.DB) repository.Repository[*PricingReferenceEntry] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*PricingReferenceEntry]{
		NewRecord: func() *PricingReferenceEntry { return &PricingReferenceEntry{} },
		GetID: func(e *PricingReferenceEntry) uuid.UUID {
			return e.ID
		},
		SetID: func(e *PricingReferenceEntry, id uuid.UUID) {
			e.ID = id
		},
		GetIdentifier: func() string {
			return "id"
		},
		GetIdentifierValue: func(e *PricingReferenceEntry) string {
			if e == nil {
				return ""
			}
			return e.ID.String()
		},
	})
}
