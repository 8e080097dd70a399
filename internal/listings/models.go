package listings

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Source tags recorded in a listing's provenance set.
const (
	SourceLive   = "live"
	SourceCorpus = "corpus"
)

// ListingRecord is the canonical business entity produced by the merge path.
// A record is rebuilt wholesale on every merge request; there is no
// per-field history.
type ListingRecord struct {
	bun.BaseModel `bun:"table:listing_records,alias:lr"`

	ID             uuid.UUID `bun:",pk,type:uuid"                    json:"id"`
	Name           string    `bun:"name,notnull"                     json:"name"`
	Address        string    `bun:"address"                          json:"address"`
	District       *string   `bun:"district"                         json:"district,omitempty"`
	Rating         float64   `bun:"rating"                           json:"rating"`
	ReviewCount    int       `bun:"review_count"                     json:"review_count"`
	PricingEntries []string  `bun:"pricing_entries,type:jsonb"       json:"pricing_entries,omitempty"`
	ContactHandles []string  `bun:"contact_handles,type:jsonb"       json:"contact_handles,omitempty"`
	Websites       []string  `bun:"websites,type:jsonb"              json:"websites,omitempty"`
	Verified       bool      `bun:"verified,notnull,default:false"   json:"verified"`
	SafetySignals  []string  `bun:"safety_signals,type:jsonb"        json:"safety_signals,omitempty"`
	Provenance     []string  `bun:"provenance,type:jsonb"            json:"provenance"`
	Confidence     float64   `bun:"confidence"                       json:"confidence"`
	LastUpdated    time.Time `bun:"last_updated,nullzero"            json:"last_updated"`
}

// DistrictProfile holds the curated profile blob for a district. The merge
// path treats profiles as read-only reference data.
type DistrictProfile struct {
	bun.BaseModel `bun:"table:district_profiles,alias:dp"`

	District    string         `bun:"district,pk"            json:"district"`
	Profile     map[string]any `bun:"profile,type:jsonb"     json:"profile"`
	LastUpdated time.Time      `bun:"last_updated,nullzero"  json:"last_updated"`
}

// PricingReferenceEntry is read-only reference pricing, filterable by district.
type PricingReferenceEntry struct {
	bun.BaseModel `bun:"table:pricing_reference,alias:pr"`

	ID           uuid.UUID `bun:",pk,type:uuid"  json:"id"`
	District     string    `bun:"district"       json:"district"`
	Category     string    `bun:"category"       json:"category"`
	PriceLow     float64   `bun:"price_low"      json:"price_low"`
	PriceHigh    float64   `bun:"price_high"     json:"price_high"`
	PriceTypical float64   `bun:"price_typical"  json:"price_typical"`
	Currency     string    `bun:"currency"       json:"currency"`
}

// CloneRecord returns a deep copy of a listing record so callers can mutate
// merge output without aliasing cached slices.
func CloneRecord(record *ListingRecord) *ListingRecord {
	if record == nil {
		return nil
	}
	copied := *record
	copied.PricingEntries = cloneStrings(record.PricingEntries)
	copied.ContactHandles = cloneStrings(record.ContactHandles)
	copied.Websites = cloneStrings(record.Websites)
	copied.SafetySignals = cloneStrings(record.SafetySignals)
	copied.Provenance = cloneStrings(record.Provenance)
	if record.District != nil {
		district := *record.District
		copied.District = &district
	}
	return &copied
}

func cloneStrings(values []string) []string {
	if values == nil {
		return nil
	}
	return append([]string(nil), values...)
}
