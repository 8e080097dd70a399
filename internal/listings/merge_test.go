package listings

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

var mergeNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func TestEnrichWithCorpusBackfillsEmptyFields(t *testing.T) {
	live := &ListingRecord{
		Name:    "Jade Spa",
		Address: "10 Thonglor Soi 4",
	}
	district := "Thonglor"
	ref := &ListingRecord{
		Name:           "Jade Spa",
		Address:        "10/1 Thonglor Soi 4",
		District:       &district,
		Rating:         4.2,
		ReviewCount:    80,
		PricingEntries: []string{"massage: 500 THB"},
		ContactHandles: []string{"@jadespa"},
		Websites:       []string{"https://jadespa.example"},
		Verified:       true,
		SafetySignals:  []string{"licensed"},
	}

	merged := MergeRecords(live, ref, StrategyEnrichWithCorpus, mergeNow)

	if merged.Rating != 4.2 || merged.ReviewCount != 80 {
		t.Fatalf("expected corpus backfill for zero scalars, got rating=%v reviews=%d", merged.Rating, merged.ReviewCount)
	}
	if len(merged.PricingEntries) != 1 || len(merged.ContactHandles) != 1 || len(merged.Websites) != 1 {
		t.Fatalf("expected corpus backfill for empty lists, got %+v", merged)
	}
	if !merged.Verified {
		t.Fatal("verification must come from the reference record")
	}
	if len(merged.SafetySignals) != 1 || merged.SafetySignals[0] != "licensed" {
		t.Fatalf("safety signals must come from the reference record, got %v", merged.SafetySignals)
	}
	if merged.District == nil || *merged.District != "Thonglor" {
		t.Fatalf("expected district from live address, got %v", merged.District)
	}
	if len(merged.Provenance) != 2 || merged.Provenance[0] != SourceLive || merged.Provenance[1] != SourceCorpus {
		t.Fatalf("expected provenance [live corpus], got %v", merged.Provenance)
	}
	if !merged.LastUpdated.Equal(mergeNow) {
		t.Fatalf("expected merge timestamp %v, got %v", mergeNow, merged.LastUpdated)
	}
}

func TestEnrichWithCorpusLiveValuesWin(t *testing.T) {
	live := &ListingRecord{
		Name:           "Jade Spa",
		Address:        "10 Thonglor Soi 4",
		Rating:         4.9,
		ReviewCount:    200,
		PricingEntries: []string{"foot massage: 350 THB"},
		Verified:       true, // self-declared, must be discarded
		SafetySignals:  []string{"self-claimed"},
	}
	ref := &ListingRecord{
		Name:        "Jade Spa",
		Rating:      3.0,
		ReviewCount: 10,
	}

	merged := MergeRecords(live, ref, StrategyEnrichWithCorpus, mergeNow)

	if merged.Rating != 4.9 || merged.ReviewCount != 200 {
		t.Fatalf("live non-zero scalars must win, got rating=%v reviews=%d", merged.Rating, merged.ReviewCount)
	}
	if merged.PricingEntries[0] != "foot massage: 350 THB" {
		t.Fatalf("live non-empty lists must win, got %v", merged.PricingEntries)
	}
	if merged.Verified {
		t.Fatal("unverified reference must reset live self-declared verification")
	}
	if merged.SafetySignals != nil {
		t.Fatalf("safety signals must reset without a verified reference set, got %v", merged.SafetySignals)
	}
}

func TestEnrichWithCorpusNoMatchKeepsLiveOnly(t *testing.T) {
	live := &ListingRecord{Name: "Solo Venue", Address: "77 Ekkamai"}

	merged := MergeRecords(live, nil, StrategyEnrichWithCorpus, mergeNow)

	if len(merged.Provenance) != 1 || merged.Provenance[0] != SourceLive {
		t.Fatalf("expected provenance [live], got %v", merged.Provenance)
	}
	if merged.Confidence != 0.5 {
		t.Fatalf("unmatched record scores the base weight, got %v", merged.Confidence)
	}
}

func TestCorpusPriorityPrefersReference(t *testing.T) {
	live := &ListingRecord{
		Name:           "Jade Spa Bangkok",
		Address:        "10 Thonglor",
		Rating:         4.9,
		PricingEntries: []string{"live price"},
	}
	ref := &ListingRecord{
		Name:           "Jade Spa",
		Rating:         4.1,
		PricingEntries: []string{"corpus price"},
	}

	merged := MergeRecords(live, ref, StrategyCorpusPriority, mergeNow)

	if merged.Name != "Jade Spa" || merged.Rating != 4.1 {
		t.Fatalf("corpus values must win, got name=%q rating=%v", merged.Name, merged.Rating)
	}
	if len(merged.PricingEntries) != 2 || merged.PricingEntries[0] != "corpus price" || merged.PricingEntries[1] != "live price" {
		t.Fatalf("expected corpus-then-live list union, got %v", merged.PricingEntries)
	}
	if len(merged.Provenance) != 2 || merged.Provenance[0] != SourceCorpus {
		t.Fatalf("expected provenance [corpus live], got %v", merged.Provenance)
	}
}

func TestCorpusPriorityWithoutReference(t *testing.T) {
	live := &ListingRecord{Name: "Solo Venue"}
	merged := MergeRecords(live, nil, StrategyCorpusPriority, mergeNow)
	if merged.Name != "Solo Venue" {
		t.Fatalf("nil reference must pass the live record through, got %+v", merged)
	}
}

func TestUnknownStrategyIsIdentity(t *testing.T) {
	live := &ListingRecord{Name: "Jade Spa", Rating: 4.0}
	ref := &ListingRecord{Name: "Jade Spa", Rating: 1.0}

	merged := MergeRecords(live, ref, Strategy("definitely_not_real"), mergeNow)
	if merged.Rating != 4.0 {
		t.Fatalf("unknown strategy must behave as identity, got %+v", merged)
	}
	if merged == live {
		t.Fatal("identity merge must return a copy, not the input")
	}
}

func TestConfidenceScoring(t *testing.T) {
	cases := []struct {
		name string
		live *ListingRecord
		ref  *ListingRecord
		want float64
	}{
		{"base only", &ListingRecord{Name: "a"}, nil, 0.5},
		{"match", &ListingRecord{Name: "a"}, &ListingRecord{Name: "a"}, 0.8},
		{"match verified", &ListingRecord{Name: "a"}, &ListingRecord{Name: "a", Verified: true}, 1.0},
		{"rating above threshold", &ListingRecord{Name: "a", Rating: 4.8}, nil, 0.6},
		{"rating at threshold", &ListingRecord{Name: "a", Rating: 4.0}, nil, 0.5},
		{"reviews above threshold", &ListingRecord{Name: "a", ReviewCount: 120}, nil, 0.6},
		{"all bonuses clamp to one", &ListingRecord{Name: "a", Rating: 4.8, ReviewCount: 120}, &ListingRecord{Name: "a", Verified: true}, 1.0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			merged := MergeRecords(tc.live, tc.ref, StrategyEnrichWithCorpus, mergeNow)
			if merged.Confidence != tc.want {
				t.Fatalf("expected confidence %v, got %v", tc.want, merged.Confidence)
			}
		})
	}
}

func TestMergeStableIdentity(t *testing.T) {
	first := MergeRecords(&ListingRecord{Name: "Jade Spa"}, nil, StrategyEnrichWithCorpus, mergeNow)
	second := MergeRecords(&ListingRecord{Name: "jade spa"}, nil, StrategyEnrichWithCorpus, mergeNow.Add(time.Hour))

	if first.ID == uuid.Nil {
		t.Fatal("merged records must carry a stable identifier")
	}
	if first.ID != second.ID {
		t.Fatalf("same business must keep the same id across merges: %s vs %s", first.ID, second.ID)
	}
}
