package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/malwarescan/croutons-merge-service/internal/identity"
	"github.com/malwarescan/croutons-merge-service/internal/listings"
)

func identityID(name string) uuid.UUID { return identity.ListingUUID(name) }

type spySource struct {
	listings []*listings.ListingRecord
	profiles []*listings.DistrictProfile
	pricing  []*listings.PricingReferenceEntry
	err      error

	listingCalls int
	profileCalls int
	pricingCalls int
}

func (s *spySource) Listings(context.Context) ([]*listings.ListingRecord, error) {
	s.listingCalls++
	if s.err != nil {
		return nil, s.err
	}
	return s.listings, nil
}

func (s *spySource) Profiles(context.Context) ([]*listings.DistrictProfile, error) {
	s.profileCalls++
	if s.err != nil {
		return nil, s.err
	}
	return s.profiles, nil
}

func (s *spySource) Pricing(context.Context) ([]*listings.PricingReferenceEntry, error) {
	s.pricingCalls++
	if s.err != nil {
		return nil, s.err
	}
	return s.pricing, nil
}

type failingDurable struct{}

func (failingDurable) ListingsByDistrict(context.Context, string) ([]*listings.ListingRecord, error) {
	return nil, errors.New("durable down")
}
func (failingDurable) UpsertListings(context.Context, []*listings.ListingRecord) error {
	return errors.New("durable down")
}
func (failingDurable) Profiles(context.Context) ([]*listings.DistrictProfile, error) {
	return nil, errors.New("durable down")
}
func (failingDurable) ReplaceProfiles(context.Context, []*listings.DistrictProfile) error {
	return errors.New("durable down")
}
func (failingDurable) Pricing(context.Context) ([]*listings.PricingReferenceEntry, error) {
	return nil, errors.New("durable down")
}
func (failingDurable) ReplacePricing(context.Context, []*listings.PricingReferenceEntry) error {
	return errors.New("durable down")
}

func district(name string) *string { return &name }

func newTestCache(source SourceTier, durable DurableTier, now time.Time) *Service {
	return New(NewSturdycFastTier(DefaultFastTierConfig()), durable, source,
		WithClock(func() time.Time { return now }),
	)
}

func TestListingsFallThroughToSourceAndWarm(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	source := &spySource{
		listings: []*listings.ListingRecord{
			{Name: "Jade Spa", District: district("Thonglor"), LastUpdated: now},
			{Name: "Orchid House", District: district("Asok"), LastUpdated: now},
		},
	}
	durable := listings.NewMemoryStore()
	svc := newTestCache(source, durable, now)

	records, err := svc.Listings(context.Background(), "Thonglor")
	if err != nil {
		t.Fatalf("listings resolve failed: %v", err)
	}
	if len(records) != 1 || records[0].Name != "Jade Spa" {
		t.Fatalf("expected district-filtered source results, got %+v", records)
	}
	if source.listingCalls != 1 {
		t.Fatalf("expected one source read, got %d", source.listingCalls)
	}

	// Second read must come from the warmed fast tier.
	if _, err := svc.Listings(context.Background(), "Thonglor"); err != nil {
		t.Fatalf("second resolve failed: %v", err)
	}
	if source.listingCalls != 1 {
		t.Fatalf("fast tier hit must not touch the source, got %d source reads", source.listingCalls)
	}

	// The durable tier was warmed too.
	stored, err := durable.ListingsByDistrict(context.Background(), "Thonglor")
	if err != nil {
		t.Fatalf("durable read failed: %v", err)
	}
	if len(stored) != 1 {
		t.Fatalf("expected durable warm, got %d records", len(stored))
	}
}

func TestListingsFreshDurableSkipsSource(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	source := &spySource{}
	durable := listings.NewMemoryStore()
	if err := durable.UpsertListings(context.Background(), []*listings.ListingRecord{
		{ID: identityID("fresh one"), Name: "Fresh One", District: district("Asok"), LastUpdated: now.Add(-30 * time.Minute)},
	}); err != nil {
		t.Fatalf("seed durable: %v", err)
	}
	svc := newTestCache(source, durable, now)

	records, err := svc.Listings(context.Background(), "Asok")
	if err != nil {
		t.Fatalf("listings resolve failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected durable hit, got %d records", len(records))
	}
	if source.listingCalls != 0 {
		t.Fatal("fresh durable data must not trigger a source read")
	}
}

func TestListingsStaleDurableRefreshesFromSource(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	source := &spySource{
		listings: []*listings.ListingRecord{
			{ID: identityID("stale one"), Name: "Stale One", District: district("Asok"), LastUpdated: now},
		},
	}
	durable := listings.NewMemoryStore()
	if err := durable.UpsertListings(context.Background(), []*listings.ListingRecord{
		{ID: identityID("stale one"), Name: "Stale One", District: district("Asok"), LastUpdated: now.Add(-2 * time.Hour)},
	}); err != nil {
		t.Fatalf("seed durable: %v", err)
	}
	svc := newTestCache(source, durable, now)

	if _, err := svc.Listings(context.Background(), "Asok"); err != nil {
		t.Fatalf("listings resolve failed: %v", err)
	}
	if source.listingCalls != 1 {
		t.Fatalf("stale durable data must fall through to the source, got %d reads", source.listingCalls)
	}
}

func TestListingsTotalMissYieldsEmptyNotError(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	source := &spySource{err: errors.New("bucket gone")}
	svc := newTestCache(source, failingDurable{}, now)

	records, err := svc.Listings(context.Background(), "Asok")
	if err != nil {
		t.Fatalf("pure reads must never error, got %v", err)
	}
	if records == nil || len(records) != 0 {
		t.Fatalf("expected empty collection, got %v", records)
	}
}

func TestUpdateListingsServesFromFastTier(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	source := &spySource{}
	fast := NewSturdycFastTier(DefaultFastTierConfig())
	svc := New(fast, listings.NewMemoryStore(), source,
		WithClock(func() time.Time { return now }),
	)

	merged := []*listings.ListingRecord{
		{ID: identityID("merged"), Name: "Merged Venue", District: district("Nana"), LastUpdated: now},
	}
	if err := svc.UpdateListings(context.Background(), merged); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	records, err := svc.Listings(context.Background(), "Nana")
	if err != nil {
		t.Fatalf("resolve after update failed: %v", err)
	}
	if len(records) != 1 || records[0].Name != "Merged Venue" {
		t.Fatalf("expected merged record back, got %+v", records)
	}
	if source.listingCalls != 0 {
		t.Fatal("resolve directly after update must be served by the fast tier")
	}
	if at, ok := fast.LastUpdated(); !ok || !at.Equal(now) {
		t.Fatalf("expected last-updated marker %v, got %v (present=%v)", now, at, ok)
	}
}

func TestUpdateListingsSurvivesDurableFailure(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestCache(&spySource{}, failingDurable{}, now)

	err := svc.UpdateListings(context.Background(), []*listings.ListingRecord{
		{Name: "Venue", District: district("Asok")},
	})
	if err != nil {
		t.Fatalf("durable write failure must not surface, got %v", err)
	}
}

func TestProfilesAndPricingFallThrough(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	source := &spySource{
		profiles: []*listings.DistrictProfile{{District: "Asok", LastUpdated: now}},
		pricing:  []*listings.PricingReferenceEntry{{District: "Asok", Category: "massage"}},
	}
	svc := newTestCache(source, listings.NewMemoryStore(), now)

	profiles, err := svc.Profiles(context.Background())
	if err != nil {
		t.Fatalf("profiles resolve failed: %v", err)
	}
	if len(profiles) != 1 {
		t.Fatalf("expected full profile set, got %d", len(profiles))
	}

	pricing, err := svc.Pricing(context.Background())
	if err != nil {
		t.Fatalf("pricing resolve failed: %v", err)
	}
	if len(pricing) != 1 {
		t.Fatalf("expected full pricing set, got %d", len(pricing))
	}

	// Warmed tiers satisfy repeat reads.
	if _, err := svc.Profiles(context.Background()); err != nil {
		t.Fatalf("second profiles resolve failed: %v", err)
	}
	if _, err := svc.Pricing(context.Background()); err != nil {
		t.Fatalf("second pricing resolve failed: %v", err)
	}
	if source.profileCalls != 1 || source.pricingCalls != 1 {
		t.Fatalf("repeat reads must not touch the source, got profiles=%d pricing=%d", source.profileCalls, source.pricingCalls)
	}
}
