package croutons

import "github.com/malwarescan/croutons-merge-service/internal/runtimeconfig"

var (
	ErrServerAddrRequired    = runtimeconfig.ErrServerAddrRequired
	ErrDatabaseDriverUnknown = runtimeconfig.ErrDatabaseDriverUnknown
	ErrDatabaseDSNRequired   = runtimeconfig.ErrDatabaseDSNRequired
	ErrFreshnessInvalid      = runtimeconfig.ErrFreshnessInvalid
	ErrFastTierInvalid       = runtimeconfig.ErrFastTierInvalid
	ErrCorpusDirRequired     = runtimeconfig.ErrCorpusDirRequired
	ErrLoggingLevelInvalid   = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid  = runtimeconfig.ErrLoggingFormatInvalid
)

type (
	Config          = runtimeconfig.Config
	ServerConfig    = runtimeconfig.ServerConfig
	DatabaseConfig  = runtimeconfig.DatabaseConfig
	CacheConfig     = runtimeconfig.CacheConfig
	CorpusConfig    = runtimeconfig.CorpusConfig
	DocumentsConfig = runtimeconfig.DocumentsConfig
	LoggingConfig   = runtimeconfig.LoggingConfig
)

// DefaultConfig returns a configuration suitable for local development.
func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}
