package documents

import (
	"context"

	"github.com/google/uuid"
)

// VersionRepository persists document versions and enforces the single
// active version invariant for each (domain, path) key.
type VersionRepository interface {
	// Insert stores a version unless one with the same (domain, path,
	// content hash) already exists. It returns the stored version and
	// whether a new row was created.
	Insert(ctx context.Context, version *DocumentVersion) (*DocumentVersion, bool, error)
	// GetByID returns a version by identifier.
	GetByID(ctx context.Context, id uuid.UUID) (*DocumentVersion, error)
	// GetByKeyHash returns the version with the given content hash for a key.
	GetByKeyHash(ctx context.Context, domain, path, contentHash string) (*DocumentVersion, error)
	// ListByKey returns every version for a key, newest first.
	ListByKey(ctx context.Context, domain, path string) ([]*DocumentVersion, error)
	// ActiveByKey returns the active version for a key, if any.
	ActiveByKey(ctx context.Context, domain, path string) (*DocumentVersion, error)
	// Activate makes the identified version the only active one for its
	// key. Activating an already active version is a no-op.
	Activate(ctx context.Context, id uuid.UUID) (*DocumentVersion, error)
	// Deactivate clears the active flag on the identified version.
	// Deactivating an inactive version is a no-op.
	Deactivate(ctx context.Context, id uuid.UUID) (*DocumentVersion, error)
}

// DomainRepository persists domain verification state.
type DomainRepository interface {
	// Upsert stores or refreshes a verification record keyed by domain.
	Upsert(ctx context.Context, record *VerifiedDomain) (*VerifiedDomain, error)
	// GetByDomain returns the record for a domain.
	GetByDomain(ctx context.Context, domain string) (*VerifiedDomain, error)
	// MarkVerified flips the verified flag for a domain.
	MarkVerified(ctx context.Context, domain string) (*VerifiedDomain, error)
}
