package listings

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/malwarescan/croutons-merge-service/internal/logging"
	"github.com/malwarescan/croutons-merge-service/pkg/interfaces"
)

// Service exposes the merge use-cases.
type Service interface {
	Merge(ctx context.Context, req MergeRequest) (*MergeResult, error)
	Districts(ctx context.Context) ([]string, error)
	Listings(ctx context.Context, district string) ([]*ListingRecord, error)
	Profile(ctx context.Context, district string) (*DistrictProfile, error)
	PricingReference(ctx context.Context, district string) ([]*PricingReferenceEntry, error)
}

// MergeRequest carries the live records for one merge pass.
type MergeRequest struct {
	District string
	Strategy Strategy
	Live     []*ListingRecord
}

// MergeResult is the merge API's response payload.
type MergeResult struct {
	District string           `json:"district"`
	Strategy Strategy         `json:"strategy"`
	Matched  int              `json:"matched"`
	Records  []*ListingRecord `json:"records"`
}

var (
	ErrDistrictRequired = errors.New("listings: district is required")
	ErrNoLiveRecords    = errors.New("listings: at least one live record is required")
	ErrProfileNotFound  = errors.New("listings: district profile not found")
)

// CorpusResolver is the read/write surface of the tiered cache the merge path
// depends on. Listings are resolved pre-partitioned by district; profiles and
// pricing come back as full sets and are filtered here.
type CorpusResolver interface {
	Listings(ctx context.Context, district string) ([]*ListingRecord, error)
	Profiles(ctx context.Context) ([]*DistrictProfile, error)
	Pricing(ctx context.Context) ([]*PricingReferenceEntry, error)
	UpdateListings(ctx context.Context, records []*ListingRecord) error
}

// ServiceOption configures the service at construction time.
type ServiceOption func(*service)

// WithClock overrides the clock used to stamp merged records.
func WithClock(clock func() time.Time) ServiceOption {
	return func(s *service) {
		if clock != nil {
			s.now = clock
		}
	}
}

// WithMatcher swaps the matching heuristic.
func WithMatcher(matcher Matcher) ServiceOption {
	return func(s *service) {
		if matcher != nil {
			s.matcher = matcher
		}
	}
}

// WithLogger attaches a module logger.
func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

type service struct {
	corpus  CorpusResolver
	matcher Matcher
	now     func() time.Time
	logger  interfaces.Logger
}

// NewService constructs the merge service.
func NewService(corpus CorpusResolver, opts ...ServiceOption) Service {
	s := &service{
		corpus:  corpus,
		matcher: NewHeuristicMatcher(),
		now:     time.Now,
		logger:  logging.NoOp(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Merge resolves the reference corpus for the requested district, matches and
// merges every live record, persists the result through the cache, and
// returns the merged collection.
func (s *service) Merge(ctx context.Context, req MergeRequest) (*MergeResult, error) {
	district := strings.TrimSpace(req.District)
	if district == "" {
		return nil, ErrDistrictRequired
	}
	if len(req.Live) == 0 {
		return nil, ErrNoLiveRecords
	}

	strategy := req.Strategy
	if strategy == "" {
		strategy = DefaultStrategy
	}

	refs, err := s.corpus.Listings(ctx, district)
	if err != nil {
		// The cache contract recovers tier failures internally; an error here
		// means the resolver itself is miswired.
		return nil, fmt.Errorf("listings: resolve corpus: %w", err)
	}

	now := s.now().UTC()
	matched := 0
	records := make([]*ListingRecord, 0, len(req.Live))
	for _, live := range req.Live {
		if live == nil {
			continue
		}
		ref := s.matcher.Match(live, refs)
		if ref != nil {
			matched++
		}
		records = append(records, MergeRecords(live, ref, strategy, now))
	}

	if err := s.corpus.UpdateListings(ctx, records); err != nil {
		// Persisting merged output is best-effort: the merge response is
		// still the answer to the request.
		s.logger.Warn("merge output cache update failed", "district", district, "error", err)
	}

	return &MergeResult{
		District: district,
		Strategy: strategy,
		Matched:  matched,
		Records:  records,
	}, nil
}

// Districts returns the district names with a curated profile, falling back
// to the static extraction list when no profiles are loaded yet.
func (s *service) Districts(ctx context.Context) ([]string, error) {
	profiles, err := s.corpus.Profiles(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(profiles))
	for _, profile := range profiles {
		if profile != nil && strings.TrimSpace(profile.District) != "" {
			names = append(names, profile.District)
		}
	}
	if len(names) == 0 {
		names = append(names, KnownDistricts...)
	}
	return names, nil
}

// Listings returns the cache-resolved records for a district.
func (s *service) Listings(ctx context.Context, district string) ([]*ListingRecord, error) {
	district = strings.TrimSpace(district)
	if district == "" {
		return nil, ErrDistrictRequired
	}
	return s.corpus.Listings(ctx, district)
}

// Profile returns the curated profile for a district.
func (s *service) Profile(ctx context.Context, district string) (*DistrictProfile, error) {
	district = strings.TrimSpace(district)
	if district == "" {
		return nil, ErrDistrictRequired
	}
	profiles, err := s.corpus.Profiles(ctx)
	if err != nil {
		return nil, err
	}
	for _, profile := range profiles {
		if profile != nil && strings.EqualFold(profile.District, district) {
			return profile, nil
		}
	}
	return nil, ErrProfileNotFound
}

// PricingReference returns reference pricing filtered by district. An empty
// district returns the full set.
func (s *service) PricingReference(ctx context.Context, district string) ([]*PricingReferenceEntry, error) {
	entries, err := s.corpus.Pricing(ctx)
	if err != nil {
		return nil, err
	}
	district = strings.TrimSpace(district)
	if district == "" {
		return entries, nil
	}
	filtered := make([]*PricingReferenceEntry, 0, len(entries))
	for _, entry := range entries {
		if entry != nil && strings.EqualFold(entry.District, district) {
			filtered = append(filtered, entry)
		}
	}
	return filtered, nil
}
