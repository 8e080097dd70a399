package di

import (
	"testing"

	"github.com/uptrace/bun/dialect"

	_ "github.com/lib/pq"

	"github.com/malwarescan/croutons-merge-service/internal/documents"
	"github.com/malwarescan/croutons-merge-service/internal/listings"
	"github.com/malwarescan/croutons-merge-service/internal/runtimeconfig"
)

func memoryStoreOptions() []Option {
	return []Option{
		WithDurableTier(listings.NewMemoryStore()),
		WithVersionRepository(documents.NewMemoryVersionRepository()),
		WithDomainRepository(documents.NewMemoryDomainRepository()),
	}
}

func TestContainerBuildsRepositoryCacheDefaults(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()

	c, err := NewContainer(cfg, memoryStoreOptions()...)
	if err != nil {
		t.Fatalf("build container: %v", err)
	}
	if c.cacheService == nil || c.keySerializer == nil {
		t.Fatal("enabled cache config must build repository cache defaults")
	}

	cfg.Cache.Enabled = false
	c, err = NewContainer(cfg, memoryStoreOptions()...)
	if err != nil {
		t.Fatalf("build container: %v", err)
	}
	if c.cacheService != nil || c.keySerializer != nil {
		t.Fatal("disabled cache config must not build a repository cache")
	}
}

func TestContainerNormalizesDriverCase(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Database.Driver = "Postgres"
	cfg.Database.DSN = "postgres://localhost:5432/croutons?sslmode=disable"

	c, err := NewContainer(cfg)
	if err != nil {
		t.Fatalf("build container: %v", err)
	}
	if got := c.DB().Dialect().Name(); got != dialect.PG {
		t.Fatalf("mixed-case postgres driver must select the pg dialect, got %v", got)
	}
}
