package documents

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repository-cache/cache"
	repositorycache "github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

func NewVersionBunRepository(db *bun.DB) repository.Repository[*DocumentVersion] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*DocumentVersion]{
		NewRecord: func() *DocumentVersion { return &DocumentVersion{} },
		GetID: func(v *DocumentVersion) uuid.UUID {
			return v.ID
		},
		SetID: func(v *DocumentVersion, id uuid.UUID) {
			v.ID = id
		},
		GetIdentifier: func() string {
			return "id"
		},
		GetIdentifierValue: func(v *DocumentVersion) string {
			if v == nil {
				return ""
			}
			return v.ID.String()
		},
	})
}

func NewDomainBunRepository(db *bun.DB) repository.Repository[*VerifiedDomain] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*VerifiedDomain]{
		NewRecord: func() *VerifiedDomain { return &VerifiedDomain{} },
		GetID: func(d *VerifiedDomain) uuid.UUID {
			return d.ID
		},
		SetID: func(d *VerifiedDomain, id uuid.UUID) {
			d.ID = id
		},
		GetIdentifier: func() string {
			return "domain"
		},
		GetIdentifierValue: func(d *VerifiedDomain) string {
			if d == nil {
				return ""
			}
			return d.Domain
		},
	})
}

const (
	versionNamespace = "document_version"
	domainNamespace  = "verified_domain"
)

// BunVersionRepository is the bun-backed VersionRepository.
type BunVersionRepository struct {
	db           *bun.DB
	repo         repository.Repository[*DocumentVersion]
	cacheService cache.CacheService
}

func NewBunVersionRepository(db *bun.DB) *BunVersionRepository {
	return NewBunVersionRepositoryWithCache(db, nil, nil)
}

// NewBunVersionRepositoryWithCache constructs a VersionRepository backed by bun with optional caching.
// Activation writes run as raw statements, so they drop the version namespace
// from the cache once committed.
func NewBunVersionRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, keySerializer cache.KeySerializer) *BunVersionRepository {
	var svc cache.CacheService
	if cacheService != nil && keySerializer != nil {
		svc = cacheService
	}
	return &BunVersionRepository{
		db:           db,
		repo:         wrapWithCache(NewVersionBunRepository(db), cacheService, keySerializer),
		cacheService: svc,
	}
}

func (r *BunVersionRepository) invalidate(ctx context.Context) error {
	if r.cacheService == nil {
		return nil
	}
	return r.cacheService.DeleteByPrefix(ctx, versionNamespace+cache.KeySeparator)
}

func (r *BunVersionRepository) Insert(ctx context.Context, version *DocumentVersion) (*DocumentVersion, bool, error) {
	existing, err := r.GetByKeyHash(ctx, version.Domain, version.Path, version.ContentHash)
	if err == nil {
		return existing, false, nil
	}
	var notFound *VersionNotFoundError
	if !errors.As(err, &notFound) {
		return nil, false, err
	}

	created, err := r.repo.Create(ctx, version)
	if err != nil {
		// A concurrent insert of the same (domain, path, hash) can land
		// between the lookup and the create. The unique index absorbs it;
		// resolve to the winning row.
		if goerrors.IsCategory(err, repository.CategoryDatabaseDuplicate) {
			existing, getErr := r.GetByKeyHash(ctx, version.Domain, version.Path, version.ContentHash)
			if getErr != nil {
				return nil, false, fmt.Errorf("resolve duplicate document version: %w", getErr)
			}
			return existing, false, nil
		}
		return nil, false, fmt.Errorf("insert document version: %w", err)
	}
	return created, true, nil
}

func (r *BunVersionRepository) GetByID(ctx context.Context, id uuid.UUID) (*DocumentVersion, error) {
	result, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, id, "", "")
	}
	return result, nil
}

func (r *BunVersionRepository) GetByKeyHash(ctx context.Context, domain, path, contentHash string) (*DocumentVersion, error) {
	records, _, err := r.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("LOWER(?TableAlias.domain) = LOWER(?)", domain).
				Where("?TableAlias.path = ?", path).
				Where("?TableAlias.content_hash = ?", contentHash)
		}),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		return nil, mapRepositoryError(err, uuid.Nil, domain, path)
	}
	if len(records) == 0 {
		return nil, &VersionNotFoundError{Domain: domain, Path: path}
	}
	return records[0], nil
}

func (r *BunVersionRepository) ListByKey(ctx context.Context, domain, path string) ([]*DocumentVersion, error) {
	records, _, err := r.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("LOWER(?TableAlias.domain) = LOWER(?)", domain).
				Where("?TableAlias.path = ?", path)
		}),
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.OrderExpr("?TableAlias.generated_at DESC")
		}),
	)
	if err != nil {
		return nil, mapRepositoryError(err, uuid.Nil, domain, path)
	}
	return records, nil
}

func (r *BunVersionRepository) ActiveByKey(ctx context.Context, domain, path string) (*DocumentVersion, error) {
	records, _, err := r.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("LOWER(?TableAlias.domain) = LOWER(?)", domain).
				Where("?TableAlias.path = ?", path).
				Where("?TableAlias.active = ?", true)
		}),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		return nil, mapRepositoryError(err, uuid.Nil, domain, path)
	}
	if len(records) == 0 {
		return nil, &VersionNotFoundError{Domain: domain, Path: path}
	}
	return records[0], nil
}

// Activate flips the active flag to the identified version inside one
// transaction so a key never carries two active versions.
func (r *BunVersionRepository) Activate(ctx context.Context, id uuid.UUID) (*DocumentVersion, error) {
	if r.db == nil {
		return nil, fmt.Errorf("document repository: database not configured")
	}

	var activated *DocumentVersion
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		target := new(DocumentVersion)
		if err := tx.NewSelect().
			Model(target).
			Where("?TableAlias.id = ?", id).
			Scan(ctx); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return &VersionNotFoundError{ID: id}
			}
			return fmt.Errorf("load activation target: %w", err)
		}

		if target.Active {
			activated = target
			return nil
		}

		now := time.Now().UTC()
		if _, err := tx.NewUpdate().
			Model((*DocumentVersion)(nil)).
			Set("active = ?", false).
			Set("activated_at = NULL").
			Set("updated_at = ?", now).
			Where("LOWER(?TableAlias.domain) = LOWER(?)", target.Domain).
			Where("?TableAlias.path = ?", target.Path).
			Where("?TableAlias.active = ?", true).
			Exec(ctx); err != nil {
			return fmt.Errorf("deactivate current version: %w", err)
		}

		if _, err := tx.NewUpdate().
			Model((*DocumentVersion)(nil)).
			Set("active = ?", true).
			Set("activated_at = ?", now).
			Set("updated_at = ?", now).
			Where("?TableAlias.id = ?", id).
			Exec(ctx); err != nil {
			return fmt.Errorf("activate version: %w", err)
		}

		target.Active = true
		target.ActivatedAt = &now
		target.UpdatedAt = now
		activated = target
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := r.invalidate(ctx); err != nil {
		return nil, fmt.Errorf("invalidate version cache: %w", err)
	}
	return activated, nil
}

func (r *BunVersionRepository) Deactivate(ctx context.Context, id uuid.UUID) (*DocumentVersion, error) {
	version, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !version.Active {
		return version, nil
	}

	now := time.Now().UTC()
	if _, err := r.db.NewUpdate().
		Model((*DocumentVersion)(nil)).
		Set("active = ?", false).
		Set("activated_at = NULL").
		Set("updated_at = ?", now).
		Where("?TableAlias.id = ?", id).
		Exec(ctx); err != nil {
		return nil, fmt.Errorf("deactivate version: %w", err)
	}

	version.Active = false
	version.ActivatedAt = nil
	version.UpdatedAt = now
	if err := r.invalidate(ctx); err != nil {
		return nil, fmt.Errorf("invalidate version cache: %w", err)
	}
	return version, nil
}

// BunDomainRepository is the bun-backed DomainRepository.
type BunDomainRepository struct {
	db           *bun.DB
	repo         repository.Repository[*VerifiedDomain]
	cacheService cache.CacheService
}

func NewBunDomainRepository(db *bun.DB) *BunDomainRepository {
	return NewBunDomainRepositoryWithCache(db, nil, nil)
}

// NewBunDomainRepositoryWithCache constructs a DomainRepository backed by bun with optional caching.
func NewBunDomainRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, keySerializer cache.KeySerializer) *BunDomainRepository {
	var svc cache.CacheService
	if cacheService != nil && keySerializer != nil {
		svc = cacheService
	}
	return &BunDomainRepository{
		db:           db,
		repo:         wrapWithCache(NewDomainBunRepository(db), cacheService, keySerializer),
		cacheService: svc,
	}
}

func (r *BunDomainRepository) Upsert(ctx context.Context, record *VerifiedDomain) (*VerifiedDomain, error) {
	if r.db == nil {
		return nil, fmt.Errorf("domain repository: database not configured")
	}
	if _, err := r.db.NewInsert().
		Model(record).
		On("CONFLICT (domain) DO UPDATE").
		Set("token = EXCLUDED.token").
		Set("verified = EXCLUDED.verified").
		Set("verified_at = EXCLUDED.verified_at").
		Exec(ctx); err != nil {
		return nil, fmt.Errorf("upsert verified domain: %w", err)
	}
	if r.cacheService != nil {
		if err := r.cacheService.DeleteByPrefix(ctx, domainNamespace+cache.KeySeparator); err != nil {
			return nil, fmt.Errorf("invalidate domain cache: %w", err)
		}
	}
	return r.GetByDomain(ctx, record.Domain)
}

func (r *BunDomainRepository) GetByDomain(ctx context.Context, domain string) (*VerifiedDomain, error) {
	records, _, err := r.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("LOWER(?TableAlias.domain) = LOWER(?)", domain)
		}),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		return nil, fmt.Errorf("domain repository error: %w", err)
	}
	if len(records) == 0 {
		return nil, ErrDomainNotFound
	}
	return records[0], nil
}

func (r *BunDomainRepository) MarkVerified(ctx context.Context, domain string) (*VerifiedDomain, error) {
	record, err := r.GetByDomain(ctx, domain)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	record.Verified = true
	record.VerifiedAt = &now
	return r.Upsert(ctx, record)
}

func mapRepositoryError(err error, id uuid.UUID, domain, path string) error {
	if err == nil {
		return nil
	}

	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return &VersionNotFoundError{ID: id, Domain: domain, Path: path}
	}

	return fmt.Errorf("document repository error: %w", err)
}

func wrapWithCache[T any](base repository.Repository[T], cacheService cache.CacheService, keySerializer cache.KeySerializer) repository.Repository[T] {
	if cacheService == nil || keySerializer == nil {
		return base
	}
	return repositorycache.New(base, cacheService, keySerializer)
}
