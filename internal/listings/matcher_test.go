package listings

import "testing"

func TestHeuristicMatcherExactNameWins(t *testing.T) {
	matcher := NewHeuristicMatcher()
	refs := []*ListingRecord{
		{Name: "Sunrise Wellness Spa", Address: "12 Soi 8"},
		{Name: "sunrise wellness spa", Address: "99 Sukhumvit 23"},
	}

	live := &ListingRecord{Name: "Sunrise Wellness Spa"}
	got := matcher.Match(live, refs)
	if got == nil {
		t.Fatal("expected a match")
	}
	if got != refs[0] {
		t.Fatalf("expected first exact match, got %q at %q", got.Name, got.Address)
	}
}

func TestHeuristicMatcherFuzzyNamePrefix(t *testing.T) {
	matcher := NewHeuristicMatcher()
	refs := []*ListingRecord{
		{Name: "Lotus Garden Massage"},
	}

	// "lotus" survives normalization and is contained in "lotusgardenmassage".
	live := &ListingRecord{Name: "LOTUS & Co."}
	if got := matcher.Match(live, refs); got != refs[0] {
		t.Fatalf("expected fuzzy prefix match, got %v", got)
	}
}

func TestHeuristicMatcherAddressPrefix(t *testing.T) {
	matcher := NewHeuristicMatcher()
	refs := []*ListingRecord{
		{Name: "Completely Different", Address: "88/12 Sukhumvit Soi 11, Bangkok"},
	}

	live := &ListingRecord{Name: "Unrelated", Address: "88/12 Sukhumvit Soi 11"}
	if got := matcher.Match(live, refs); got != refs[0] {
		t.Fatalf("expected address prefix match, got %v", got)
	}
}

func TestHeuristicMatcherOrderOfRules(t *testing.T) {
	matcher := NewHeuristicMatcher()
	fuzzy := &ListingRecord{Name: "Siam Serenity Annex"}
	exact := &ListingRecord{Name: "Siam Serenity"}
	refs := []*ListingRecord{fuzzy, exact}

	live := &ListingRecord{Name: "siam serenity"}
	if got := matcher.Match(live, refs); got != exact {
		t.Fatalf("exact name rule must run before fuzzy, got %q", got.Name)
	}
}

func TestHeuristicMatcherNoMatch(t *testing.T) {
	matcher := NewHeuristicMatcher()
	refs := []*ListingRecord{
		{Name: "Orchid House", Address: "1 Silom Road"},
	}

	live := &ListingRecord{Name: "Zen Den", Address: "500 Rama IV"}
	if got := matcher.Match(live, refs); got != nil {
		t.Fatalf("expected no match, got %q", got.Name)
	}
}

func TestHeuristicMatcherNilInputs(t *testing.T) {
	matcher := NewHeuristicMatcher()
	if got := matcher.Match(nil, []*ListingRecord{{Name: "x"}}); got != nil {
		t.Fatal("nil live record must not match")
	}
	if got := matcher.Match(&ListingRecord{Name: "x"}, []*ListingRecord{nil}); got != nil {
		t.Fatal("nil reference records must be skipped")
	}
}
