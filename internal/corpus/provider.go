package corpus

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/malwarescan/croutons-merge-service/internal/identity"
	"github.com/malwarescan/croutons-merge-service/internal/listings"
	"github.com/malwarescan/croutons-merge-service/internal/logging"
	"github.com/malwarescan/croutons-merge-service/pkg/interfaces"
)

// File names the provider reads from its root directory.
const (
	ListingsFile = "listings.json"
	ProfilesFile = "district_profiles.json"
	PricingFile  = "pricing_reference.json"
)

// Provider loads the authoritative corpus from JSON files on disk. It is the
// bottom tier of the read-through cache: reads are lazy, parsed once, and the
// parsed collections are reused for the process lifetime.
type Provider struct {
	fsys   fs.FS
	logger interfaces.Logger

	mu       sync.Mutex
	loaded   bool
	listings []*listings.ListingRecord
	profiles []*listings.DistrictProfile
	pricing  []*listings.PricingReferenceEntry
}

// ProviderOption configures a Provider.
type ProviderOption func(*Provider)

// WithLogger attaches a logger.
func WithLogger(logger interfaces.Logger) ProviderOption {
	return func(p *Provider) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewProvider reads corpus files from the given directory.
func NewProvider(dir string, opts ...ProviderOption) *Provider {
	return NewProviderFS(os.DirFS(filepath.Clean(dir)), opts...)
}

// NewProviderFS reads corpus files from an fs.FS, which lets tests embed
// fixtures.
func NewProviderFS(fsys fs.FS, opts ...ProviderOption) *Provider {
	p := &Provider{
		fsys:   fsys,
		logger: logging.NoOp(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Listings returns the full corpus listing collection.
func (p *Provider) Listings(ctx context.Context) ([]*listings.ListingRecord, error) {
	if err := p.load(ctx); err != nil {
		return nil, err
	}
	return cloneListings(p.listings), nil
}

// Profiles returns every district profile in the corpus.
func (p *Provider) Profiles(ctx context.Context) ([]*listings.DistrictProfile, error) {
	if err := p.load(ctx); err != nil {
		return nil, err
	}
	out := make([]*listings.DistrictProfile, 0, len(p.profiles))
	for _, profile := range p.profiles {
		copied := *profile
		out = append(out, &copied)
	}
	return out, nil
}

// Pricing returns every pricing reference row in the corpus.
func (p *Provider) Pricing(ctx context.Context) ([]*listings.PricingReferenceEntry, error) {
	if err := p.load(ctx); err != nil {
		return nil, err
	}
	out := make([]*listings.PricingReferenceEntry, 0, len(p.pricing))
	for _, entry := range p.pricing {
		copied := *entry
		out = append(out, &copied)
	}
	return out, nil
}

func (p *Provider) load(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.loaded {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	records, err := loadListings(p.fsys)
	if err != nil {
		return err
	}
	profiles, err := loadProfiles(p.fsys)
	if err != nil {
		return err
	}
	pricing, err := loadPricing(p.fsys)
	if err != nil {
		return err
	}

	p.listings = records
	p.profiles = profiles
	p.pricing = pricing
	p.loaded = true
	p.logger.Info("corpus loaded",
		"listings", len(records), "profiles", len(profiles), "pricing", len(pricing))
	return nil
}

type corpusListing struct {
	Name           string   `json:"name"`
	Address        string   `json:"address"`
	District       string   `json:"district,omitempty"`
	Rating         float64  `json:"rating,omitempty"`
	ReviewCount    int      `json:"review_count,omitempty"`
	PricingEntries []string `json:"pricing,omitempty"`
	ContactHandles []string `json:"contacts,omitempty"`
	Websites       []string `json:"websites,omitempty"`
	SafetySignals  []string `json:"safety_signals,omitempty"`
	Verified       bool     `json:"verified,omitempty"`
	LastUpdated    string   `json:"last_updated,omitempty"`
}

func loadListings(fsys fs.FS) ([]*listings.ListingRecord, error) {
	var rows []corpusListing
	if err := readJSON(fsys, ListingsFile, &rows); err != nil {
		return nil, err
	}

	out := make([]*listings.ListingRecord, 0, len(rows))
	for _, row := range rows {
		if strings.TrimSpace(row.Name) == "" {
			continue
		}
		record := &listings.ListingRecord{
			ID:             identity.ListingUUID(row.Name),
			Name:           row.Name,
			Address:        row.Address,
			Rating:         row.Rating,
			ReviewCount:    row.ReviewCount,
			PricingEntries: row.PricingEntries,
			ContactHandles: row.ContactHandles,
			Websites:       row.Websites,
			SafetySignals:  row.SafetySignals,
			Verified:       row.Verified,
			Provenance:     []string{listings.SourceCorpus},
			LastUpdated:    parseTimestamp(row.LastUpdated),
		}
		if district := strings.TrimSpace(row.District); district != "" {
			record.District = &district
		} else {
			record.District = listings.ExtractDistrict(row.Address)
		}
		out = append(out, record)
	}
	return out, nil
}

type corpusProfile struct {
	District    string         `json:"district"`
	Profile     map[string]any `json:"profile"`
	LastUpdated string         `json:"last_updated,omitempty"`
}

func loadProfiles(fsys fs.FS) ([]*listings.DistrictProfile, error) {
	var rows []corpusProfile
	if err := readJSON(fsys, ProfilesFile, &rows); err != nil {
		return nil, err
	}

	out := make([]*listings.DistrictProfile, 0, len(rows))
	for _, row := range rows {
		if strings.TrimSpace(row.District) == "" {
			continue
		}
		out = append(out, &listings.DistrictProfile{
			District:    row.District,
			Profile:     row.Profile,
			LastUpdated: parseTimestamp(row.LastUpdated),
		})
	}
	return out, nil
}

type corpusPricing struct {
	District     string  `json:"district"`
	Category     string  `json:"category"`
	PriceLow     float64 `json:"price_low"`
	PriceHigh    float64 `json:"price_high"`
	PriceTypical float64 `json:"price_typical"`
	Currency     string  `json:"currency"`
}

func loadPricing(fsys fs.FS) ([]*listings.PricingReferenceEntry, error) {
	var rows []corpusPricing
	if err := readJSON(fsys, PricingFile, &rows); err != nil {
		return nil, err
	}

	out := make([]*listings.PricingReferenceEntry, 0, len(rows))
	for _, row := range rows {
		entry := &listings.PricingReferenceEntry{
			ID:           identity.UUID("croutons:pricing:" + strings.ToLower(row.District) + ":" + strings.ToLower(row.Category)),
			District:     row.District,
			Category:     row.Category,
			PriceLow:     row.PriceLow,
			PriceHigh:    row.PriceHigh,
			PriceTypical: row.PriceTypical,
			Currency:     row.Currency,
		}
		if entry.ID == uuid.Nil {
			entry.ID = uuid.New()
		}
		out = append(out, entry)
	}
	return out, nil
}

func readJSON(fsys fs.FS, name string, target any) error {
	payload, err := fs.ReadFile(fsys, name)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("corpus: read %s: %w", name, err)
	}
	if err := json.Unmarshal(payload, target); err != nil {
		return fmt.Errorf("corpus: decode %s: %w", name, err)
	}
	return nil
}

func parseTimestamp(value string) time.Time {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if ts, err := time.Parse(layout, trimmed); err == nil {
			return ts
		}
	}
	return time.Time{}
}

func cloneListings(records []*listings.ListingRecord) []*listings.ListingRecord {
	out := make([]*listings.ListingRecord, 0, len(records))
	for _, record := range records {
		out = append(out, listings.CloneRecord(record))
	}
	return out
}
