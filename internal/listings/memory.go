package listings

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory durable tier for scaffolding/tests.
type MemoryStore struct {
	mu       sync.RWMutex
	records  map[uuid.UUID]*ListingRecord
	profiles []*DistrictProfile
	pricing  []*PricingReferenceEntry
}

// NewMemoryStore constructs the store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[uuid.UUID]*ListingRecord),
	}
}

// ListingsByDistrict returns stored records for one district.
func (m *MemoryStore) ListingsByDistrict(_ context.Context, district string) ([]*ListingRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*ListingRecord, 0)
	for _, record := range m.records {
		if record == nil || record.District == nil {
			continue
		}
		if strings.EqualFold(*record.District, district) {
			out = append(out, CloneRecord(record))
		}
	}
	return out, nil
}

// UpsertListings replaces records wholesale by id.
func (m *MemoryStore) UpsertListings(_ context.Context, records []*ListingRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, record := range records {
		if record == nil {
			continue
		}
		m.records[record.ID] = CloneRecord(record)
	}
	return nil
}

// Profiles returns every stored district profile.
func (m *MemoryStore) Profiles(_ context.Context) ([]*DistrictProfile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*DistrictProfile, 0, len(m.profiles))
	for _, profile := range m.profiles {
		if profile == nil {
			continue
		}
		copied := *profile
		out = append(out, &copied)
	}
	return out, nil
}

// ReplaceProfiles swaps the profile collection.
func (m *MemoryStore) ReplaceProfiles(_ context.Context, profiles []*DistrictProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles = nil
	for _, profile := range profiles {
		if profile == nil {
			continue
		}
		copied := *profile
		m.profiles = append(m.profiles, &copied)
	}
	return nil
}

// Pricing returns every stored pricing row.
func (m *MemoryStore) Pricing(_ context.Context) ([]*PricingReferenceEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*PricingReferenceEntry, 0, len(m.pricing))
	for _, entry := range m.pricing {
		if entry == nil {
			continue
		}
		copied := *entry
		out = append(out, &copied)
	}
	return out, nil
}

// ReplacePricing swaps the pricing collection.
func (m *MemoryStore) ReplacePricing(_ context.Context, entries []*PricingReferenceEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pricing = nil
	for _, entry := range entries {
		if entry == nil {
			continue
		}
		copied := *entry
		m.pricing = append(m.pricing, &copied)
	}
	return nil
}
