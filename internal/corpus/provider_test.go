package corpus

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/google/uuid"
)

func TestProviderLoadsListings(t *testing.T) {
	provider := NewProvider("testdata")

	records, err := provider.Listings(context.Background())
	if err != nil {
		t.Fatalf("load listings: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 listings (nameless row skipped), got %d", len(records))
	}

	jade := records[0]
	if jade.Name != "Jade Spa" {
		t.Fatalf("unexpected first record %q", jade.Name)
	}
	if jade.ID == uuid.Nil {
		t.Fatal("corpus records must carry deterministic identifiers")
	}
	if jade.District == nil || *jade.District != "Thonglor" {
		t.Fatalf("expected district derived from address, got %v", jade.District)
	}
	if len(jade.Provenance) != 1 || jade.Provenance[0] != "corpus" {
		t.Fatalf("expected corpus provenance, got %v", jade.Provenance)
	}
	if jade.LastUpdated.IsZero() {
		t.Fatal("expected parsed timestamp")
	}

	orchid := records[1]
	if orchid.District == nil || *orchid.District != "Asok" {
		t.Fatalf("explicit district must win over extraction, got %v", orchid.District)
	}
}

func TestProviderLoadsProfilesAndPricing(t *testing.T) {
	provider := NewProvider("testdata")

	profiles, err := provider.Profiles(context.Background())
	if err != nil {
		t.Fatalf("load profiles: %v", err)
	}
	if len(profiles) != 2 {
		t.Fatalf("expected 2 profiles, got %d", len(profiles))
	}
	if profiles[0].Profile["vibe"] != "busy interchange" {
		t.Fatalf("unexpected profile payload: %+v", profiles[0].Profile)
	}

	pricing, err := provider.Pricing(context.Background())
	if err != nil {
		t.Fatalf("load pricing: %v", err)
	}
	if len(pricing) != 2 {
		t.Fatalf("expected 2 pricing rows, got %d", len(pricing))
	}
	if pricing[0].Currency != "THB" || pricing[0].PriceTypical != 600 {
		t.Fatalf("unexpected pricing row: %+v", pricing[0])
	}
	if pricing[0].ID == uuid.Nil {
		t.Fatal("pricing rows must carry identifiers")
	}
}

func TestProviderReturnsCopies(t *testing.T) {
	provider := NewProvider("testdata")

	first, err := provider.Listings(context.Background())
	if err != nil {
		t.Fatalf("load listings: %v", err)
	}
	first[0].Name = "mutated"

	second, err := provider.Listings(context.Background())
	if err != nil {
		t.Fatalf("reload listings: %v", err)
	}
	if second[0].Name == "mutated" {
		t.Fatal("provider must not expose its internal records")
	}
}

func TestProviderMissingFilesYieldEmptySets(t *testing.T) {
	provider := NewProviderFS(fstest.MapFS{})

	records, err := provider.Listings(context.Background())
	if err != nil {
		t.Fatalf("missing files must not error: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected empty set, got %d", len(records))
	}
}

func TestProviderRejectsMalformedJSON(t *testing.T) {
	provider := NewProviderFS(fstest.MapFS{
		ListingsFile: {Data: []byte("{not json")},
	})

	if _, err := provider.Listings(context.Background()); err == nil {
		t.Fatal("expected decode error")
	}
}
