package cache

import (
	"context"
	"strings"
	"time"

	"github.com/viccon/sturdyc"

	"github.com/malwarescan/croutons-merge-service/internal/listings"
)

const (
	listingsKeyPrefix = "listings:district:"
	profilesKey       = "profiles:all"
	pricingKey        = "pricing:all"
	lastUpdatedKey    = "listings:last_updated"
)

// FastTierConfig sizes the in-process sturdyc clients.
type FastTierConfig struct {
	Capacity           int
	Shards             int
	TTL                time.Duration
	EvictionPercentage int
}

// DefaultFastTierConfig returns the sizing used when the host supplies none.
func DefaultFastTierConfig() FastTierConfig {
	return FastTierConfig{
		Capacity:           10_000,
		Shards:             16,
		TTL:                time.Minute,
		EvictionPercentage: 10,
	}
}

// SturdycFastTier implements FastTier on sharded in-process TTL caches, one
// client per collection shape.
type SturdycFastTier struct {
	listings *sturdyc.Client[[]*listings.ListingRecord]
	profiles *sturdyc.Client[[]*listings.DistrictProfile]
	pricing  *sturdyc.Client[[]*listings.PricingReferenceEntry]
	markers  *sturdyc.Client[time.Time]
}

var _ FastTier = (*SturdycFastTier)(nil)

// NewSturdycFastTier constructs the fast tier.
func NewSturdycFastTier(cfg FastTierConfig) *SturdycFastTier {
	if cfg.Capacity <= 0 {
		cfg.Capacity = DefaultFastTierConfig().Capacity
	}
	if cfg.Shards <= 0 {
		cfg.Shards = DefaultFastTierConfig().Shards
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultFastTierConfig().TTL
	}
	if cfg.EvictionPercentage <= 0 || cfg.EvictionPercentage > 100 {
		cfg.EvictionPercentage = DefaultFastTierConfig().EvictionPercentage
	}

	return &SturdycFastTier{
		listings: sturdyc.New[[]*listings.ListingRecord](cfg.Capacity, cfg.Shards, cfg.TTL, cfg.EvictionPercentage),
		profiles: sturdyc.New[[]*listings.DistrictProfile](cfg.Capacity, cfg.Shards, cfg.TTL, cfg.EvictionPercentage),
		pricing:  sturdyc.New[[]*listings.PricingReferenceEntry](cfg.Capacity, cfg.Shards, cfg.TTL, cfg.EvictionPercentage),
		markers:  sturdyc.New[time.Time](cfg.Capacity, cfg.Shards, cfg.TTL, cfg.EvictionPercentage),
	}
}

func (t *SturdycFastTier) GetListings(_ context.Context, district string) ([]*listings.ListingRecord, bool, error) {
	records, ok := t.listings.Get(listingsKey(district))
	return records, ok, nil
}

func (t *SturdycFastTier) SetListings(_ context.Context, district string, records []*listings.ListingRecord) error {
	t.listings.Set(listingsKey(district), records)
	return nil
}

func (t *SturdycFastTier) GetProfiles(_ context.Context) ([]*listings.DistrictProfile, bool, error) {
	profiles, ok := t.profiles.Get(profilesKey)
	return profiles, ok, nil
}

func (t *SturdycFastTier) SetProfiles(_ context.Context, profiles []*listings.DistrictProfile) error {
	t.profiles.Set(profilesKey, profiles)
	return nil
}

func (t *SturdycFastTier) GetPricing(_ context.Context) ([]*listings.PricingReferenceEntry, bool, error) {
	entries, ok := t.pricing.Get(pricingKey)
	return entries, ok, nil
}

func (t *SturdycFastTier) SetPricing(_ context.Context, entries []*listings.PricingReferenceEntry) error {
	t.pricing.Set(pricingKey, entries)
	return nil
}

func (t *SturdycFastTier) MarkUpdated(_ context.Context, at time.Time) error {
	t.markers.Set(lastUpdatedKey, at)
	return nil
}

// LastUpdated reports the global write marker while it remains in the TTL
// window.
func (t *SturdycFastTier) LastUpdated() (time.Time, bool) {
	return t.markers.Get(lastUpdatedKey)
}

func listingsKey(district string) string {
	return listingsKeyPrefix + strings.ToLower(strings.TrimSpace(district))
}
