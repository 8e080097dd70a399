package listings

import (
	"time"

	"github.com/google/uuid"

	"github.com/malwarescan/croutons-merge-service/internal/identity"
)

// Strategy selects how a live record combines with its matched reference.
// The set is closed: anything outside the declared constants falls through to
// the identity branch and passes the live record through unchanged.
type Strategy string

const (
	// StrategyEnrichWithCorpus keeps live values and backfills from the corpus.
	StrategyEnrichWithCorpus Strategy = "enrich_with_corpus"
	// StrategyCorpusPriority prefers corpus values and unions list fields.
	StrategyCorpusPriority Strategy = "corpus_priority"
)

// DefaultStrategy is applied when a merge request does not name one.
const DefaultStrategy = StrategyEnrichWithCorpus

// Confidence weights for the enrich strategy. The additive weights and the
// clamp are load-bearing: downstream consumers depend on the exact values.
const (
	confidenceBase          = 0.5
	confidenceMatchBonus    = 0.3
	confidenceVerifiedBonus = 0.2
	confidenceRatingBonus   = 0.1
	confidenceReviewBonus   = 0.1
	confidenceMax           = 1.0

	ratingBonusThreshold = 4.0
	reviewBonusThreshold = 10
)

// MergeRecords builds a fresh listing from a live record and an optional
// matched reference. A nil reference always yields the live record alone,
// regardless of strategy.
func MergeRecords(live, ref *ListingRecord, strategy Strategy, now time.Time) *ListingRecord {
	if live == nil {
		return nil
	}

	switch strategy {
	case StrategyEnrichWithCorpus:
		return enrichWithCorpus(live, ref, now)
	case StrategyCorpusPriority:
		return corpusPriority(live, ref, now)
	default:
		// Identity merge: callers treat an unknown tag as a no-op, not an error.
		return CloneRecord(live)
	}
}

func enrichWithCorpus(live, ref *ListingRecord, now time.Time) *ListingRecord {
	merged := CloneRecord(live)
	merged.ID = stableID(live, ref)
	merged.LastUpdated = now

	if ref != nil {
		if merged.Name == "" {
			merged.Name = ref.Name
		}
		if merged.Address == "" {
			merged.Address = ref.Address
		}
		if merged.Rating == 0 {
			merged.Rating = ref.Rating
		}
		if merged.ReviewCount == 0 {
			merged.ReviewCount = ref.ReviewCount
		}
		if len(merged.PricingEntries) == 0 {
			merged.PricingEntries = cloneStrings(ref.PricingEntries)
		}
		if len(merged.ContactHandles) == 0 {
			merged.ContactHandles = cloneStrings(ref.ContactHandles)
		}
		if len(merged.Websites) == 0 {
			merged.Websites = cloneStrings(ref.Websites)
		}
	}

	// A live record can never self-declare verification or safety signals.
	merged.Verified = false
	merged.SafetySignals = nil
	if ref != nil {
		merged.Verified = ref.Verified
		merged.SafetySignals = cloneStrings(ref.SafetySignals)
	}

	if ref != nil {
		merged.Provenance = []string{SourceLive, SourceCorpus}
	} else {
		merged.Provenance = []string{SourceLive}
	}

	merged.District = ExtractDistrict(live.Address)
	if merged.District == nil && ref != nil && ref.District != nil {
		district := *ref.District
		merged.District = &district
	}

	merged.Confidence = scoreConfidence(live, ref)
	return merged
}

func corpusPriority(live, ref *ListingRecord, now time.Time) *ListingRecord {
	if ref == nil {
		return CloneRecord(live)
	}

	merged := CloneRecord(ref)
	merged.ID = stableID(live, ref)
	merged.LastUpdated = now

	merged.PricingEntries = append(cloneStrings(ref.PricingEntries), live.PricingEntries...)
	merged.ContactHandles = append(cloneStrings(ref.ContactHandles), live.ContactHandles...)
	merged.Websites = append(cloneStrings(ref.Websites), live.Websites...)

	merged.Provenance = []string{SourceCorpus, SourceLive}

	if merged.District == nil {
		merged.District = ExtractDistrict(live.Address)
	}
	return merged
}

// scoreConfidence applies the additive heuristic weighting. It is not a
// calibrated probability.
func scoreConfidence(live, ref *ListingRecord) float64 {
	score := confidenceBase
	if ref != nil {
		score += confidenceMatchBonus
		if ref.Verified {
			score += confidenceVerifiedBonus
		}
	}
	if live.Rating > ratingBonusThreshold {
		score += confidenceRatingBonus
	}
	if live.ReviewCount > reviewBonusThreshold {
		score += confidenceReviewBonus
	}
	if score > confidenceMax {
		score = confidenceMax
	}
	return score
}

func stableID(live, ref *ListingRecord) uuid.UUID {
	if live.ID != uuid.Nil {
		return live.ID
	}
	name := live.Name
	if name == "" && ref != nil {
		name = ref.Name
	}
	return identity.ListingUUID(name)
}
