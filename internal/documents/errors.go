package documents

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrDomainRequired indicates a request without a domain.
	ErrDomainRequired = errors.New("documents: domain is required")
	// ErrPathRequired indicates a request without a path.
	ErrPathRequired = errors.New("documents: path is required")
	// ErrContentRequired indicates a render request without content.
	ErrContentRequired = errors.New("documents: content is required")
	// ErrVersionNotFound indicates the requested version does not exist.
	ErrVersionNotFound = errors.New("documents: version not found")
	// ErrDocumentNotFound indicates no active document exists for the key.
	ErrDocumentNotFound = errors.New("documents: document not found")
	// ErrDomainNotVerified indicates the domain has not passed verification.
	ErrDomainNotVerified = errors.New("documents: domain not verified")
	// ErrDomainNotFound indicates no verification record exists for the domain.
	ErrDomainNotFound = errors.New("documents: domain not found")
	// ErrVerificationFailed indicates the DNS record did not match the token.
	ErrVerificationFailed = errors.New("documents: verification failed")
)

// VersionNotFoundError carries the identifier that failed to resolve.
type VersionNotFoundError struct {
	ID     uuid.UUID
	Domain string
	Path   string
}

func (e *VersionNotFoundError) Error() string {
	if e.ID != uuid.Nil {
		return fmt.Sprintf("documents: version %s not found", e.ID)
	}
	return fmt.Sprintf("documents: version not found for %s/%s", e.Domain, e.Path)
}

func (e *VersionNotFoundError) Unwrap() error { return ErrVersionNotFound }
