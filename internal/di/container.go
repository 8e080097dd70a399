package di

import (
	"context"
	"database/sql"
	"fmt"
	"net"

	repocache "github.com/goliatone/go-repository-cache/cache"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/malwarescan/croutons-merge-service/internal/cache"
	"github.com/malwarescan/croutons-merge-service/internal/corpus"
	"github.com/malwarescan/croutons-merge-service/internal/documents"
	httpapi "github.com/malwarescan/croutons-merge-service/internal/http"
	"github.com/malwarescan/croutons-merge-service/internal/listings"
	"github.com/malwarescan/croutons-merge-service/internal/logging"
	"github.com/malwarescan/croutons-merge-service/internal/logging/gologger"
	"github.com/malwarescan/croutons-merge-service/internal/markdown"
	"github.com/malwarescan/croutons-merge-service/internal/runtimeconfig"
	"github.com/malwarescan/croutons-merge-service/pkg/interfaces"
)

// Container wires service dependencies from configuration. Every field can be
// overridden through options, so tests swap collaborators without touching
// the wiring.
type Container struct {
	config runtimeconfig.Config

	provider interfaces.LoggerProvider

	sqlDB *sql.DB
	bunDB *bun.DB

	cacheService  repocache.CacheService
	keySerializer repocache.KeySerializer

	fastTier    cache.FastTier
	durableTier cache.DurableTier
	sourceTier  cache.SourceTier
	tieredCache *cache.Service

	versionRepo documents.VersionRepository
	domainRepo  documents.DomainRepository
	renderer    interfaces.MarkdownRenderer
	txtResolver documents.TXTResolver

	listingSvc  listings.Service
	documentSvc documents.Service

	api *httpapi.API
}

// Option mutates the container before it is finalised.
type Option func(*Container)

// WithLoggerProvider overrides the default go-logger provider.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		c.provider = provider
	}
}

// WithSQLDB injects an existing database handle.
func WithSQLDB(db *sql.DB) Option {
	return func(c *Container) {
		c.sqlDB = db
	}
}

// WithBunDB injects a pre-built bun handle, skipping driver selection.
func WithBunDB(db *bun.DB) Option {
	return func(c *Container) {
		c.bunDB = db
	}
}

// WithRepositoryCache enables read caching on the bun repositories.
func WithRepositoryCache(service repocache.CacheService, serializer repocache.KeySerializer) Option {
	return func(c *Container) {
		c.cacheService = service
		c.keySerializer = serializer
	}
}

// WithFastTier overrides the in-process cache tier.
func WithFastTier(tier cache.FastTier) Option {
	return func(c *Container) {
		c.fastTier = tier
	}
}

// WithDurableTier overrides the persistent cache tier.
func WithDurableTier(tier cache.DurableTier) Option {
	return func(c *Container) {
		c.durableTier = tier
	}
}

// WithSourceTier overrides the authoritative corpus tier.
func WithSourceTier(tier cache.SourceTier) Option {
	return func(c *Container) {
		c.sourceTier = tier
	}
}

// WithVersionRepository overrides the document version store.
func WithVersionRepository(repo documents.VersionRepository) Option {
	return func(c *Container) {
		c.versionRepo = repo
	}
}

// WithDomainRepository overrides the verified-domain store.
func WithDomainRepository(repo documents.DomainRepository) Option {
	return func(c *Container) {
		c.domainRepo = repo
	}
}

// WithRenderer overrides the markdown renderer.
func WithRenderer(renderer interfaces.MarkdownRenderer) Option {
	return func(c *Container) {
		c.renderer = renderer
	}
}

// WithTXTResolver overrides the DNS collaborator used for verification.
func WithTXTResolver(resolver documents.TXTResolver) Option {
	return func(c *Container) {
		c.txtResolver = resolver
	}
}

// NewContainer builds the full dependency graph for the given configuration.
func NewContainer(cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Container{config: cfg}
	for _, opt := range opts {
		opt(c)
	}

	if c.provider == nil {
		provider, err := gologger.NewProvider(gologger.Config{
			Level:     cfg.Logging.Level,
			Format:    cfg.Logging.Format,
			AddSource: cfg.Logging.AddSource,
			Focus:     cfg.Logging.Focus,
		})
		if err != nil {
			return nil, err
		}
		c.provider = provider
	}

	if err := c.buildDatabase(); err != nil {
		return nil, err
	}
	c.configureCacheDefaults()
	c.buildCache()
	c.buildDocuments()
	c.buildServices()
	return c, nil
}

func (c *Container) buildDatabase() error {
	if c.bunDB != nil {
		return nil
	}
	if c.sqlDB == nil {
		if c.durableTier != nil && c.versionRepo != nil && c.domainRepo != nil {
			// Every persistent collaborator was injected; no handle needed.
			return nil
		}
		sqldb, err := sql.Open(driverName(c.config.Database.NormalizedDriver()), c.config.Database.DSN)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		c.sqlDB = sqldb
	}

	switch c.config.Database.NormalizedDriver() {
	case "postgres":
		c.bunDB = bun.NewDB(c.sqlDB, pgdialect.New())
	default:
		c.bunDB = bun.NewDB(c.sqlDB, sqlitedialect.New())
	}
	return nil
}

func driverName(driver string) string {
	if driver == "postgres" {
		return "postgres"
	}
	return "sqlite3"
}

// configureCacheDefaults builds the repository read cache when enabled and no
// override was injected.
func (c *Container) configureCacheDefaults() {
	if !c.config.Cache.Enabled {
		return
	}

	if c.cacheService == nil {
		cfg := repocache.DefaultConfig()
		if c.config.Cache.RepositoryTTL > 0 {
			cfg.TTL = c.config.Cache.RepositoryTTL
		}
		service, err := repocache.NewCacheService(cfg)
		if err == nil {
			c.cacheService = service
		}
	}

	if c.cacheService != nil && c.keySerializer == nil {
		c.keySerializer = repocache.NewDefaultKeySerializer()
	}
}

func (c *Container) buildCache() {
	if c.fastTier == nil {
		c.fastTier = cache.NewSturdycFastTier(cache.FastTierConfig{
			Capacity:           c.config.Cache.FastCapacity,
			Shards:             c.config.Cache.FastShards,
			TTL:                c.config.Cache.FastTTL,
			EvictionPercentage: c.config.Cache.EvictionPercentage,
		})
	}
	if c.durableTier == nil && c.bunDB != nil {
		c.durableTier = listings.NewBunStoreWithCache(c.bunDB, c.cacheService, c.keySerializer)
	}
	if c.sourceTier == nil {
		c.sourceTier = corpus.NewProvider(c.config.Corpus.Dir,
			corpus.WithLogger(logging.CacheLogger(c.provider)))
	}
	c.tieredCache = cache.New(c.fastTier, c.durableTier, c.sourceTier,
		cache.WithFreshness(c.config.Cache.Freshness),
		cache.WithLogger(logging.CacheLogger(c.provider)),
	)
}

func (c *Container) buildDocuments() {
	if c.versionRepo == nil && c.bunDB != nil {
		c.versionRepo = documents.NewBunVersionRepositoryWithCache(c.bunDB, c.cacheService, c.keySerializer)
	}
	if c.domainRepo == nil && c.bunDB != nil {
		c.domainRepo = documents.NewBunDomainRepositoryWithCache(c.bunDB, c.cacheService, c.keySerializer)
	}
	if c.renderer == nil {
		c.renderer = markdown.NewGoldmarkRenderer()
	}
	if c.txtResolver == nil {
		c.txtResolver = documents.TXTResolverFunc(func(ctx context.Context, domain string) ([]string, error) {
			return net.DefaultResolver.LookupTXT(ctx, domain)
		})
	}
}

func (c *Container) buildServices() {
	c.listingSvc = listings.NewService(c.tieredCache,
		listings.WithLogger(logging.ListingsLogger(c.provider)),
	)
	c.documentSvc = documents.NewService(c.versionRepo, c.domainRepo, c.renderer,
		documents.WithLogger(logging.DocumentsLogger(c.provider)),
		documents.WithTXTResolver(c.txtResolver),
		documents.WithAutoActivate(c.config.Documents.AutoActivate),
	)
	c.api = httpapi.NewAPI(c.listingSvc, c.documentSvc,
		httpapi.WithBasePath(c.config.Server.BasePath),
		httpapi.WithLogger(logging.ModuleLogger(c.provider, "")),
	)
}

// Config returns the validated configuration.
func (c *Container) Config() runtimeconfig.Config { return c.config }

// LoggerProvider exposes the logging provider for host integration.
func (c *Container) LoggerProvider() interfaces.LoggerProvider { return c.provider }

// DB returns the bun handle, nil when every store was injected.
func (c *Container) DB() *bun.DB { return c.bunDB }

// ListingService returns the merge service.
func (c *Container) ListingService() listings.Service { return c.listingSvc }

// DocumentService returns the document store service.
func (c *Container) DocumentService() documents.Service { return c.documentSvc }

// Cache returns the tiered read-through cache.
func (c *Container) Cache() *cache.Service { return c.tieredCache }

// API returns the HTTP surface.
func (c *Container) API() *httpapi.API { return c.api }
