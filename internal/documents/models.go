package documents

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// DocumentVersion is one immutable rendered document for a (domain, path) key.
// Versions are content-addressed: the same content hash for the same key is
// never stored twice.
type DocumentVersion struct {
	bun.BaseModel `bun:"table:document_versions,alias:dv"`

	ID          uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	Domain      string    `bun:"domain,notnull" json:"domain"`
	Path        string    `bun:"path,notnull" json:"path"`
	ContentHash string    `bun:"content_hash,notnull" json:"content_hash"`
	Markdown    string    `bun:"markdown,notnull" json:"markdown"`
	Title       string    `bun:"title" json:"title"`
	SourceURL   string    `bun:"source_url" json:"source_url,omitempty"`
	Active      bool      `bun:"active,notnull,default:false" json:"active"`
	GeneratedAt time.Time `bun:"generated_at,notnull" json:"generated_at"`
	ActivatedAt *time.Time `bun:"activated_at,nullzero" json:"activated_at,omitempty"`
	CreatedAt   time.Time  `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt   time.Time  `bun:"updated_at,notnull" json:"updated_at"`
}

// VerifiedDomain records a domain that passed ownership verification and may
// be served publicly.
type VerifiedDomain struct {
	bun.BaseModel `bun:"table:verified_domains,alias:vd"`

	ID         uuid.UUID  `bun:"id,pk,type:uuid" json:"id"`
	Domain     string     `bun:"domain,notnull,unique" json:"domain"`
	Token      string     `bun:"token,notnull" json:"token"`
	Verified   bool       `bun:"verified,notnull,default:false" json:"verified"`
	VerifiedAt *time.Time `bun:"verified_at,nullzero" json:"verified_at,omitempty"`
	CreatedAt  time.Time  `bun:"created_at,notnull" json:"created_at"`
}

// CloneVersion returns a deep copy of v.
func CloneVersion(v *DocumentVersion) *DocumentVersion {
	if v == nil {
		return nil
	}
	copied := *v
	if v.ActivatedAt != nil {
		at := *v.ActivatedAt
		copied.ActivatedAt = &at
	}
	return &copied
}
