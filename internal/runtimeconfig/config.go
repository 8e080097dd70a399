package runtimeconfig

import (
	"errors"
	"strings"
	"time"
)

var (
	// ErrServerAddrRequired indicates a missing listen address.
	ErrServerAddrRequired = errors.New("croutons config: server address is required")
	// ErrDatabaseDriverUnknown indicates an unsupported database driver.
	ErrDatabaseDriverUnknown = errors.New("croutons config: database driver must be sqlite or postgres")
	// ErrDatabaseDSNRequired indicates a missing connection string.
	ErrDatabaseDSNRequired = errors.New("croutons config: database dsn is required")
	// ErrFreshnessInvalid indicates a non-positive freshness window.
	ErrFreshnessInvalid = errors.New("croutons config: cache freshness window must be positive")
	// ErrFastTierInvalid indicates invalid fast-tier sizing.
	ErrFastTierInvalid = errors.New("croutons config: fast tier capacity and shards must be positive")
	// ErrCorpusDirRequired indicates a missing corpus directory.
	ErrCorpusDirRequired = errors.New("croutons config: corpus directory is required")
	// ErrLoggingLevelInvalid indicates an unsupported log level.
	ErrLoggingLevelInvalid = errors.New("croutons config: logging level is invalid")
	// ErrLoggingFormatInvalid indicates an unsupported log format.
	ErrLoggingFormatInvalid = errors.New("croutons config: logging format is invalid")
)

// Config aggregates runtime settings for the service. Fields use simple types
// so host applications can populate them from any source.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Cache     CacheConfig
	Corpus    CorpusConfig
	Documents DocumentsConfig
	Logging   LoggingConfig
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Addr     string
	BasePath string
}

// DatabaseConfig selects the durable store backend.
type DatabaseConfig struct {
	Driver string
	DSN    string
}

// NormalizedDriver returns the driver name trimmed and lowercased, the form
// the container's driver switch expects.
func (d DatabaseConfig) NormalizedDriver() string {
	return strings.ToLower(strings.TrimSpace(d.Driver))
}

// CacheConfig sizes the tiered read-through cache. Enabled gates the read
// cache wrapped around the bun repositories; RepositoryTTL bounds its entries.
type CacheConfig struct {
	Enabled            bool
	RepositoryTTL      time.Duration
	Freshness          time.Duration
	FastCapacity       int
	FastShards         int
	FastTTL            time.Duration
	EvictionPercentage int
}

// CorpusConfig locates the authoritative dataset on disk.
type CorpusConfig struct {
	Dir string
}

// DocumentsConfig controls document store behaviour.
type DocumentsConfig struct {
	AutoActivate bool
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Level     string
	Format    string
	AddSource bool
	Focus     []string
}

// DefaultConfig returns a configuration suitable for local development.
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Addr:     ":8080",
			BasePath: "/api",
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			DSN:    "file:croutons.db?cache=shared",
		},
		Cache: CacheConfig{
			Enabled:            true,
			RepositoryTTL:      5 * time.Minute,
			Freshness:          time.Hour,
			FastCapacity:       10_000,
			FastShards:         16,
			FastTTL:            time.Minute,
			EvictionPercentage: 10,
		},
		Corpus: CorpusConfig{
			Dir: "data/corpus",
		},
		Documents: DocumentsConfig{
			AutoActivate: true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Validate checks invariants and returns the first violation.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Server.Addr) == "" {
		return ErrServerAddrRequired
	}
	switch c.Database.NormalizedDriver() {
	case "sqlite", "postgres":
	default:
		return ErrDatabaseDriverUnknown
	}
	if strings.TrimSpace(c.Database.DSN) == "" {
		return ErrDatabaseDSNRequired
	}
	if c.Cache.Freshness <= 0 {
		return ErrFreshnessInvalid
	}
	if c.Cache.FastCapacity <= 0 || c.Cache.FastShards <= 0 {
		return ErrFastTierInvalid
	}
	if strings.TrimSpace(c.Corpus.Dir) == "" {
		return ErrCorpusDirRequired
	}
	switch strings.ToLower(strings.TrimSpace(c.Logging.Level)) {
	case "", "debug", "info", "warn", "error":
	default:
		return ErrLoggingLevelInvalid
	}
	switch strings.ToLower(strings.TrimSpace(c.Logging.Format)) {
	case "", "console", "json", "pretty":
	default:
		return ErrLoggingFormatInvalid
	}
	return nil
}
