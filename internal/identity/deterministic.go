package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// UUID derives a deterministic UUID from a stable key using go-hashid.
//
// Callers must ensure key construction prevents cross-entity collisions (prefix by domain/type).
func UUID(key string) uuid.UUID {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return uuid.Nil
	}
	uid, err := hashid.NewUUID(trimmed, hashid.WithHashAlgorithm(hashid.SHA256), hashid.WithNormalization(true))
	if err != nil || uid == uuid.Nil {
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(trimmed))
	}
	return uid
}

// ListingUUID derives the stable identifier for a listing from its name.
// The same business keeps the same id across merge requests regardless of
// which source supplied the record.
func ListingUUID(name string) uuid.UUID {
	return UUID("croutons:listing:" + strings.ToLower(strings.TrimSpace(name)))
}

// DocumentVersionUUID derives the identifier for a document version from its
// logical key plus content hash, so concurrent renders of identical content
// converge on one row.
func DocumentVersionUUID(domain, path, contentHash string) uuid.UUID {
	return UUID("croutons:document_version:" + strings.ToLower(strings.TrimSpace(domain)) + ":" + strings.TrimSpace(path) + ":" + strings.TrimSpace(contentHash))
}

// VerifiedDomainUUID derives the identifier for a verified-domain record.
func VerifiedDomainUUID(domain string) uuid.UUID {
	return UUID("croutons:verified_domain:" + strings.ToLower(strings.TrimSpace(domain)))
}

// ContentHash returns the hex-encoded sha256 digest used to content-address
// rendered documents.
func ContentHash(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}
