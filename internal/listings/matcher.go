package listings

import "strings"

// Matcher finds the best reference record for a live record. It exists as an
// interface so the substring heuristics below can be swapped for edit-distance
// or phonetic matching without touching the merge orchestration.
type Matcher interface {
	Match(live *ListingRecord, refs []*ListingRecord) *ListingRecord
}

// HeuristicMatcher applies three rules in order, first success wins:
//
//  1. case-insensitive exact name match
//  2. fuzzy name match on a 5-character normalized prefix
//  3. address match on a 10-character lowercased prefix
//
// The prefix rules are a known false-positive risk for short names; they are
// preserved for behavioural compatibility with existing consumers.
type HeuristicMatcher struct{}

// NewHeuristicMatcher constructs the default matcher.
func NewHeuristicMatcher() *HeuristicMatcher {
	return &HeuristicMatcher{}
}

// Match returns the first reference record satisfying a rule, or nil.
func (m *HeuristicMatcher) Match(live *ListingRecord, refs []*ListingRecord) *ListingRecord {
	if live == nil {
		return nil
	}

	for _, ref := range refs {
		if ref == nil {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(live.Name), strings.TrimSpace(ref.Name)) {
			return ref
		}
	}

	for _, ref := range refs {
		if ref == nil {
			continue
		}
		if fuzzyNameMatch(live.Name, ref.Name) {
			return ref
		}
	}

	for _, ref := range refs {
		if ref == nil {
			continue
		}
		if addressMatch(live.Address, ref.Address) {
			return ref
		}
	}

	return nil
}

// fuzzyNameMatch normalizes both names (lowercase, alphanumerics only) and
// reports a match when either normalized string contains the other's first
// five characters.
func fuzzyNameMatch(a, b string) bool {
	na := normalizeName(a)
	nb := normalizeName(b)
	if na == "" || nb == "" {
		return false
	}
	return containsPrefix(na, nb, 5) || containsPrefix(nb, na, 5)
}

// addressMatch lowercases both addresses and reports a match when either
// contains the other's first ten characters.
func addressMatch(a, b string) bool {
	la := strings.ToLower(strings.TrimSpace(a))
	lb := strings.ToLower(strings.TrimSpace(b))
	if la == "" || lb == "" {
		return false
	}
	return containsPrefix(la, lb, 10) || containsPrefix(lb, la, 10)
}

// containsPrefix reports whether haystack contains the first n characters of
// needle. Needles shorter than n are used whole.
func containsPrefix(haystack, needle string, n int) bool {
	if len(needle) > n {
		needle = needle[:n]
	}
	if needle == "" {
		return false
	}
	return strings.Contains(haystack, needle)
}

func normalizeName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
