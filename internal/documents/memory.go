package documents

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryVersionRepository is an in-memory VersionRepository for tests and
// scaffolding.
type MemoryVersionRepository struct {
	mu       sync.RWMutex
	versions map[uuid.UUID]*DocumentVersion
	clock    func() time.Time
}

// NewMemoryVersionRepository constructs the repository.
func NewMemoryVersionRepository() *MemoryVersionRepository {
	return &MemoryVersionRepository{
		versions: make(map[uuid.UUID]*DocumentVersion),
		clock:    time.Now,
	}
}

func sameKey(v *DocumentVersion, domain, path string) bool {
	return strings.EqualFold(v.Domain, domain) && v.Path == path
}

func (m *MemoryVersionRepository) Insert(_ context.Context, version *DocumentVersion) (*DocumentVersion, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.versions {
		if sameKey(existing, version.Domain, version.Path) && existing.ContentHash == version.ContentHash {
			return CloneVersion(existing), false, nil
		}
	}
	stored := CloneVersion(version)
	m.versions[stored.ID] = stored
	return CloneVersion(stored), true, nil
}

func (m *MemoryVersionRepository) GetByID(_ context.Context, id uuid.UUID) (*DocumentVersion, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	version, ok := m.versions[id]
	if !ok {
		return nil, &VersionNotFoundError{ID: id}
	}
	return CloneVersion(version), nil
}

func (m *MemoryVersionRepository) GetByKeyHash(_ context.Context, domain, path, contentHash string) (*DocumentVersion, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, version := range m.versions {
		if sameKey(version, domain, path) && version.ContentHash == contentHash {
			return CloneVersion(version), nil
		}
	}
	return nil, &VersionNotFoundError{Domain: domain, Path: path}
}

func (m *MemoryVersionRepository) ListByKey(_ context.Context, domain, path string) ([]*DocumentVersion, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*DocumentVersion, 0)
	for _, version := range m.versions {
		if sameKey(version, domain, path) {
			out = append(out, CloneVersion(version))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].GeneratedAt.After(out[j].GeneratedAt)
	})
	return out, nil
}

func (m *MemoryVersionRepository) ActiveByKey(_ context.Context, domain, path string) (*DocumentVersion, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, version := range m.versions {
		if sameKey(version, domain, path) && version.Active {
			return CloneVersion(version), nil
		}
	}
	return nil, &VersionNotFoundError{Domain: domain, Path: path}
}

func (m *MemoryVersionRepository) Activate(_ context.Context, id uuid.UUID) (*DocumentVersion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	target, ok := m.versions[id]
	if !ok {
		return nil, &VersionNotFoundError{ID: id}
	}
	if target.Active {
		return CloneVersion(target), nil
	}
	now := m.clock()
	for _, version := range m.versions {
		if sameKey(version, target.Domain, target.Path) && version.Active {
			version.Active = false
			version.ActivatedAt = nil
			version.UpdatedAt = now
		}
	}
	target.Active = true
	target.ActivatedAt = &now
	target.UpdatedAt = now
	return CloneVersion(target), nil
}

func (m *MemoryVersionRepository) Deactivate(_ context.Context, id uuid.UUID) (*DocumentVersion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	target, ok := m.versions[id]
	if !ok {
		return nil, &VersionNotFoundError{ID: id}
	}
	if target.Active {
		target.Active = false
		target.ActivatedAt = nil
		target.UpdatedAt = m.clock()
	}
	return CloneVersion(target), nil
}

// MemoryDomainRepository is an in-memory DomainRepository.
type MemoryDomainRepository struct {
	mu      sync.RWMutex
	domains map[string]*VerifiedDomain
	clock   func() time.Time
}

// NewMemoryDomainRepository constructs the repository.
func NewMemoryDomainRepository() *MemoryDomainRepository {
	return &MemoryDomainRepository{
		domains: make(map[string]*VerifiedDomain),
		clock:   time.Now,
	}
}

func (m *MemoryDomainRepository) Upsert(_ context.Context, record *VerifiedDomain) (*VerifiedDomain, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *record
	m.domains[strings.ToLower(record.Domain)] = &copied
	out := copied
	return &out, nil
}

func (m *MemoryDomainRepository) GetByDomain(_ context.Context, domain string) (*VerifiedDomain, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	record, ok := m.domains[strings.ToLower(domain)]
	if !ok {
		return nil, ErrDomainNotFound
	}
	copied := *record
	return &copied, nil
}

func (m *MemoryDomainRepository) MarkVerified(_ context.Context, domain string) (*VerifiedDomain, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	record, ok := m.domains[strings.ToLower(domain)]
	if !ok {
		return nil, ErrDomainNotFound
	}
	now := m.clock()
	record.Verified = true
	record.VerifiedAt = &now
	copied := *record
	return &copied, nil
}
