package listings

import (
	"context"
	"fmt"
	"strings"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repository-cache/cache"
	repositorycache "github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/uptrace/bun"
)

const (
	listingRecordNamespace    = "listing_record"
	pricingReferenceNamespace = "pricing_reference_entry"
)

// BunStore is the durable cache tier backed by bun. It keeps the reference
// collections in local tables and filters listings by the district column.
type BunStore struct {
	db           *bun.DB
	records      repository.Repository[*ListingRecord]
	pricing      repository.Repository[*PricingReferenceEntry]
	cacheService cache.CacheService
}

// NewBunStore constructs the durable store.
func NewBunStore(db *bun.DB) *BunStore {
	return NewBunStoreWithCache(db, nil, nil)
}

// NewBunStoreWithCache constructs a durable store whose read repositories are
// wrapped with the repository cache when one is supplied. Writes here bypass
// that wrapper, so they drop the affected namespace from the cache instead.
func NewBunStoreWithCache(db *bun.DB, cacheService cache.CacheService, keySerializer cache.KeySerializer) *BunStore {
	var svc cache.CacheService
	if cacheService != nil && keySerializer != nil {
		svc = cacheService
	}
	return &BunStore{
		db:           db,
		records:      wrapWithCache(NewListingRepository(db), cacheService, keySerializer),
		pricing:      wrapWithCache(NewPricingReferenceRepository(db), cacheService, keySerializer),
		cacheService: svc,
	}
}

func (s *BunStore) invalidate(ctx context.Context, namespace string) error {
	if s.cacheService == nil || namespace == "" {
		return nil
	}
	return s.cacheService.DeleteByPrefix(ctx, namespace+cache.KeySeparator)
}

// ListingsByDistrict returns durable records for one district.
func (s *BunStore) ListingsByDistrict(ctx context.Context, district string) ([]*ListingRecord, error) {
	records, _, err := s.records.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("LOWER(?TableAlias.district) = ?", strings.ToLower(strings.TrimSpace(district)))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("listing repository error: %w", err)
	}
	return records, nil
}

// UpsertListings replaces records wholesale by id. Merged output supersedes
// the previous row; there is no partial-field history.
func (s *BunStore) UpsertListings(ctx context.Context, records []*ListingRecord) error {
	if s.db == nil {
		return fmt.Errorf("listing repository: database not configured")
	}
	toInsert := make([]*ListingRecord, 0, len(records))
	for _, record := range records {
		if record != nil {
			toInsert = append(toInsert, record)
		}
	}
	if len(toInsert) == 0 {
		return nil
	}

	_, err := s.db.NewInsert().
		Model(&toInsert).
		On("CONFLICT (id) DO UPDATE").
		Set("name = EXCLUDED.name").
		Set("address = EXCLUDED.address").
		Set("district = EXCLUDED.district").
		Set("rating = EXCLUDED.rating").
		Set("review_count = EXCLUDED.review_count").
		Set("pricing_entries = EXCLUDED.pricing_entries").
		Set("contact_handles = EXCLUDED.contact_handles").
		Set("websites = EXCLUDED.websites").
		Set("verified = EXCLUDED.verified").
		Set("safety_signals = EXCLUDED.safety_signals").
		Set("provenance = EXCLUDED.provenance").
		Set("confidence = EXCLUDED.confidence").
		Set("last_updated = EXCLUDED.last_updated").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("upsert listings: %w", err)
	}
	if err := s.invalidate(ctx, listingRecordNamespace); err != nil {
		return fmt.Errorf("invalidate listing cache: %w", err)
	}
	return nil
}

// Profiles returns every district profile.
func (s *BunStore) Profiles(ctx context.Context) ([]*DistrictProfile, error) {
	if s.db == nil {
		return nil, fmt.Errorf("listing repository: database not configured")
	}
	var profiles []*DistrictProfile
	if err := s.db.NewSelect().Model(&profiles).Scan(ctx); err != nil {
		return nil, fmt.Errorf("list district profiles: %w", err)
	}
	return profiles, nil
}

// ReplaceProfiles swaps the stored profile collection wholesale.
func (s *BunStore) ReplaceProfiles(ctx context.Context, profiles []*DistrictProfile) error {
	if s.db == nil {
		return fmt.Errorf("listing repository: database not configured")
	}
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*DistrictProfile)(nil)).
			Where("1 = 1").
			Exec(ctx); err != nil {
			return fmt.Errorf("delete district profiles: %w", err)
		}
		toInsert := make([]*DistrictProfile, 0, len(profiles))
		for _, profile := range profiles {
			if profile != nil {
				toInsert = append(toInsert, profile)
			}
		}
		if len(toInsert) == 0 {
			return nil
		}
		if _, err := tx.NewInsert().Model(&toInsert).Exec(ctx); err != nil {
			return fmt.Errorf("insert district profiles: %w", err)
		}
		return nil
	})
}

// Pricing returns every pricing-reference row.
func (s *BunStore) Pricing(ctx context.Context) ([]*PricingReferenceEntry, error) {
	entries, _, err := s.pricing.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("pricing repository error: %w", err)
	}
	return entries, nil
}

// ReplacePricing swaps the stored pricing collection wholesale.
func (s *BunStore) ReplacePricing(ctx context.Context, entries []*PricingReferenceEntry) error {
	if s.db == nil {
		return fmt.Errorf("listing repository: database not configured")
	}
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*PricingReferenceEntry)(nil)).
			Where("1 = 1").
			Exec(ctx); err != nil {
			return fmt.Errorf("delete pricing reference: %w", err)
		}
		toInsert := make([]*PricingReferenceEntry, 0, len(entries))
		for _, entry := range entries {
			if entry != nil {
				toInsert = append(toInsert, entry)
			}
		}
		if len(toInsert) == 0 {
			return nil
		}
		if _, err := tx.NewInsert().Model(&toInsert).Exec(ctx); err != nil {
			return fmt.Errorf("insert pricing reference: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	return s.invalidate(ctx, pricingReferenceNamespace)
}

func wrapWithCache[T any](base repository.Repository[T], cacheService cache.CacheService, keySerializer cache.KeySerializer) repository.Repository[T] {
	if cacheService == nil || keySerializer == nil {
		return base
	}
	return repositorycache.New(base, cacheService, keySerializer)
}
