package cache

import (
	"context"
	"strings"
	"time"

	"github.com/malwarescan/croutons-merge-service/internal/listings"
	"github.com/malwarescan/croutons-merge-service/internal/logging"
	"github.com/malwarescan/croutons-merge-service/pkg/interfaces"
)

// DefaultFreshness is the staleness window applied to durable-tier hits.
const DefaultFreshness = 3600 * time.Second

// FastTier is the ephemeral TTL-bound cache tier. Listings are keyed by
// district; profiles and pricing are cached as whole collections.
type FastTier interface {
	GetListings(ctx context.Context, district string) ([]*listings.ListingRecord, bool, error)
	SetListings(ctx context.Context, district string, records []*listings.ListingRecord) error
	GetProfiles(ctx context.Context) ([]*listings.DistrictProfile, bool, error)
	SetProfiles(ctx context.Context, profiles []*listings.DistrictProfile) error
	GetPricing(ctx context.Context) ([]*listings.PricingReferenceEntry, bool, error)
	SetPricing(ctx context.Context, entries []*listings.PricingReferenceEntry) error
	MarkUpdated(ctx context.Context, at time.Time) error
}

// DurableTier is the persistent local store. It has no TTL; reads are
// staleness-checked against the freshness window instead.
type DurableTier interface {
	ListingsByDistrict(ctx context.Context, district string) ([]*listings.ListingRecord, error)
	UpsertListings(ctx context.Context, records []*listings.ListingRecord) error
	Profiles(ctx context.Context) ([]*listings.DistrictProfile, error)
	ReplaceProfiles(ctx context.Context, profiles []*listings.DistrictProfile) error
	Pricing(ctx context.Context) ([]*listings.PricingReferenceEntry, error)
	ReplacePricing(ctx context.Context, entries []*listings.PricingReferenceEntry) error
}

// SourceTier is the authoritative static dataset. It always returns full
// collections; the cache partitions listings by district itself and leaves
// the non-primary collections unfiltered for callers.
type SourceTier interface {
	Listings(ctx context.Context) ([]*listings.ListingRecord, error)
	Profiles(ctx context.Context) ([]*listings.DistrictProfile, error)
	Pricing(ctx context.Context) ([]*listings.PricingReferenceEntry, error)
}

// Option configures the tiered cache.
type Option func(*Service)

// WithFreshness overrides the durable-tier staleness window.
func WithFreshness(window time.Duration) Option {
	return func(s *Service) {
		if window > 0 {
			s.freshness = window
		}
	}
}

// WithClock overrides the clock used for staleness checks.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		if clock != nil {
			s.now = clock
		}
	}
}

// WithLogger attaches a module logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Service resolves collections through three ordered tiers, warming upper
// tiers on every fallback hit. All tier clients are injected and owned by
// this single instance; there are no package-level handles.
type Service struct {
	fast      FastTier
	durable   DurableTier
	source    SourceTier
	freshness time.Duration
	now       func() time.Time
	logger    interfaces.Logger
}

var _ listings.CorpusResolver = (*Service)(nil)

// New constructs the tiered cache. The fast tier may be nil when caching is
// disabled; durable and source tiers are required.
func New(fast FastTier, durable DurableTier, source SourceTier, opts ...Option) *Service {
	s := &Service{
		fast:      fast,
		durable:   durable,
		source:    source,
		freshness: DefaultFreshness,
		now:       time.Now,
		logger:    logging.NoOp(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Listings resolves the records for a district. Tier failures degrade to the
// next tier; a total miss yields an empty collection, never an error.
func (s *Service) Listings(ctx context.Context, district string) ([]*listings.ListingRecord, error) {
	if s.fast != nil {
		records, ok, err := s.fast.GetListings(ctx, district)
		if err != nil {
			s.logger.Warn("fast tier read failed", "collection", "listings", "district", district, "error", err)
		} else if ok {
			return records, nil
		}
	}

	if records, err := s.durable.ListingsByDistrict(ctx, district); err != nil {
		s.logger.Warn("durable tier read failed", "collection", "listings", "district", district, "error", err)
	} else if len(records) > 0 && s.isFresh(newestListingUpdate(records)) {
		s.warmFastListings(ctx, district, records)
		return records, nil
	}

	full, err := s.source.Listings(ctx)
	if err != nil {
		s.logger.Error("source tier read failed", "collection", "listings", "error", err)
		return []*listings.ListingRecord{}, nil
	}
	records := filterByDistrict(full, district)
	if err := s.durable.UpsertListings(ctx, records); err != nil {
		s.logger.Warn("durable tier warm failed", "collection", "listings", "district", district, "error", err)
	}
	s.warmFastListings(ctx, district, records)
	return records, nil
}

// Profiles resolves the full profile collection.
func (s *Service) Profiles(ctx context.Context) ([]*listings.DistrictProfile, error) {
	if s.fast != nil {
		profiles, ok, err := s.fast.GetProfiles(ctx)
		if err != nil {
			s.logger.Warn("fast tier read failed", "collection", "profiles", "error", err)
		} else if ok {
			return profiles, nil
		}
	}

	if profiles, err := s.durable.Profiles(ctx); err != nil {
		s.logger.Warn("durable tier read failed", "collection", "profiles", "error", err)
	} else if len(profiles) > 0 && s.isFresh(newestProfileUpdate(profiles)) {
		s.warmFastProfiles(ctx, profiles)
		return profiles, nil
	}

	profiles, err := s.source.Profiles(ctx)
	if err != nil {
		s.logger.Error("source tier read failed", "collection", "profiles", "error", err)
		return []*listings.DistrictProfile{}, nil
	}
	if err := s.durable.ReplaceProfiles(ctx, profiles); err != nil {
		s.logger.Warn("durable tier warm failed", "collection", "profiles", "error", err)
	}
	s.warmFastProfiles(ctx, profiles)
	return profiles, nil
}

// Pricing resolves the full pricing-reference collection. Pricing rows carry
// no per-record timestamp, so a non-empty durable hit counts as fresh.
func (s *Service) Pricing(ctx context.Context) ([]*listings.PricingReferenceEntry, error) {
	if s.fast != nil {
		entries, ok, err := s.fast.GetPricing(ctx)
		if err != nil {
			s.logger.Warn("fast tier read failed", "collection", "pricing", "error", err)
		} else if ok {
			return entries, nil
		}
	}

	if entries, err := s.durable.Pricing(ctx); err != nil {
		s.logger.Warn("durable tier read failed", "collection", "pricing", "error", err)
	} else if len(entries) > 0 {
		s.warmFastPricing(ctx, entries)
		return entries, nil
	}

	entries, err := s.source.Pricing(ctx)
	if err != nil {
		s.logger.Error("source tier read failed", "collection", "pricing", "error", err)
		return []*listings.PricingReferenceEntry{}, nil
	}
	if err := s.durable.ReplacePricing(ctx, entries); err != nil {
		s.logger.Warn("durable tier warm failed", "collection", "pricing", "error", err)
	}
	s.warmFastPricing(ctx, entries)
	return entries, nil
}

// UpdateListings writes merged records to the durable tier and, when the fast
// tier is configured, to the fast tier plus a global last-updated marker. The
// two writes are independently best-effort: no cross-tier transaction exists,
// because the source tier can always rehydrate both caches.
func (s *Service) UpdateListings(ctx context.Context, records []*listings.ListingRecord) error {
	if len(records) == 0 {
		return nil
	}

	if err := s.durable.UpsertListings(ctx, records); err != nil {
		s.logger.Warn("durable tier write failed", "collection", "listings", "error", err)
	}

	if s.fast == nil {
		return nil
	}
	for district, partition := range partitionByDistrict(records) {
		if err := s.fast.SetListings(ctx, district, partition); err != nil {
			s.logger.Warn("fast tier write failed", "collection", "listings", "district", district, "error", err)
		}
	}
	if err := s.fast.MarkUpdated(ctx, s.now().UTC()); err != nil {
		s.logger.Warn("fast tier marker write failed", "error", err)
	}
	return nil
}

func (s *Service) warmFastListings(ctx context.Context, district string, records []*listings.ListingRecord) {
	if s.fast == nil {
		return
	}
	if err := s.fast.SetListings(ctx, district, records); err != nil {
		s.logger.Warn("fast tier warm failed", "collection", "listings", "district", district, "error", err)
	}
}

func (s *Service) warmFastProfiles(ctx context.Context, profiles []*listings.DistrictProfile) {
	if s.fast == nil {
		return
	}
	if err := s.fast.SetProfiles(ctx, profiles); err != nil {
		s.logger.Warn("fast tier warm failed", "collection", "profiles", "error", err)
	}
}

func (s *Service) warmFastPricing(ctx context.Context, entries []*listings.PricingReferenceEntry) {
	if s.fast == nil {
		return
	}
	if err := s.fast.SetPricing(ctx, entries); err != nil {
		s.logger.Warn("fast tier warm failed", "collection", "pricing", "error", err)
	}
}

func (s *Service) isFresh(lastUpdated time.Time) bool {
	if lastUpdated.IsZero() {
		return false
	}
	return s.now().Sub(lastUpdated) <= s.freshness
}

func newestListingUpdate(records []*listings.ListingRecord) time.Time {
	var newest time.Time
	for _, record := range records {
		if record != nil && record.LastUpdated.After(newest) {
			newest = record.LastUpdated
		}
	}
	return newest
}

func newestProfileUpdate(profiles []*listings.DistrictProfile) time.Time {
	var newest time.Time
	for _, profile := range profiles {
		if profile != nil && profile.LastUpdated.After(newest) {
			newest = profile.LastUpdated
		}
	}
	return newest
}

func filterByDistrict(records []*listings.ListingRecord, district string) []*listings.ListingRecord {
	out := make([]*listings.ListingRecord, 0, len(records))
	for _, record := range records {
		if record == nil {
			continue
		}
		if record.District != nil && strings.EqualFold(*record.District, district) {
			out = append(out, record)
			continue
		}
		if record.District == nil {
			if derived := listings.ExtractDistrict(record.Address); derived != nil && strings.EqualFold(*derived, district) {
				out = append(out, record)
			}
		}
	}
	return out
}

func partitionByDistrict(records []*listings.ListingRecord) map[string][]*listings.ListingRecord {
	partitions := make(map[string][]*listings.ListingRecord)
	for _, record := range records {
		if record == nil {
			continue
		}
		key := ""
		if record.District != nil {
			key = *record.District
		}
		partitions[key] = append(partitions[key], record)
	}
	return partitions
}
