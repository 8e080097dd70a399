package documents

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/malwarescan/croutons-merge-service/internal/identity"
	"github.com/malwarescan/croutons-merge-service/internal/logging"
	"github.com/malwarescan/croutons-merge-service/pkg/interfaces"
)

// RenderOutcome describes what a render request did.
type RenderOutcome string

const (
	// RenderOutcomeCreated means a new version row was stored.
	RenderOutcomeCreated RenderOutcome = "created"
	// RenderOutcomeDuplicate means the content already existed for the key.
	RenderOutcomeDuplicate RenderOutcome = "duplicate"
	// RenderOutcomeActivated means a new version was stored and activated
	// because the domain is verified.
	RenderOutcomeActivated RenderOutcome = "activated"
)

// VerificationTokenPrefix is the TXT record label consumers publish to prove
// domain ownership.
const VerificationTokenPrefix = "croutons-site-verification="

// RenderRequest asks the service to build and store a markdown document.
// ContentHash is optional; when empty the service derives it from the content.
type RenderRequest struct {
	Domain      string                      `json:"domain"`
	Path        string                      `json:"path"`
	SourceURL   string                      `json:"source_url,omitempty"`
	ContentHash string                      `json:"content_hash,omitempty"`
	Content     interfaces.ExtractedContent `json:"content"`
}

// Validate enforces the request invariants.
func (r RenderRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Domain, validation.Required.Error(ErrDomainRequired.Error())),
		validation.Field(&r.Path, validation.Required.Error(ErrPathRequired.Error())),
	)
}

// RenderResult reports the stored version and what happened.
type RenderResult struct {
	Version *DocumentVersion `json:"version"`
	Outcome RenderOutcome    `json:"outcome"`
}

// ServableDocument is the public serving shape for an active version.
type ServableDocument struct {
	Domain      string    `json:"domain"`
	Path        string    `json:"path"`
	Markdown    string    `json:"markdown"`
	ContentHash string    `json:"content_hash"`
	GeneratedAt time.Time `json:"generated_at"`
}

// RenderedPreview is the HTML rendering of an active version.
type RenderedPreview struct {
	Domain      string `json:"domain"`
	Path        string `json:"path"`
	HTML        string `json:"html"`
	ContentHash string `json:"content_hash"`
}

// TXTResolver looks up DNS TXT records. The production wiring uses
// net.LookupTXT; tests inject a stub.
type TXTResolver interface {
	LookupTXT(ctx context.Context, domain string) ([]string, error)
}

// TXTResolverFunc adapts a function to TXTResolver.
type TXTResolverFunc func(ctx context.Context, domain string) ([]string, error)

func (f TXTResolverFunc) LookupTXT(ctx context.Context, domain string) ([]string, error) {
	return f(ctx, domain)
}

// EndorsementChecker is a policy hook consulted before activation. The
// default implementation permits everything.
type EndorsementChecker interface {
	AllowActivation(ctx context.Context, version *DocumentVersion) (bool, error)
}

type allowAllEndorsements struct{}

func (allowAllEndorsements) AllowActivation(context.Context, *DocumentVersion) (bool, error) {
	return true, nil
}

// NoopEndorsementChecker returns a checker that permits every activation.
func NoopEndorsementChecker() EndorsementChecker { return allowAllEndorsements{} }

// Service manages versioned documents, activation, and domain verification.
type Service interface {
	Render(ctx context.Context, req RenderRequest) (*RenderResult, error)
	Activate(ctx context.Context, domain, path, contentHash string) (*DocumentVersion, error)
	ActivateByID(ctx context.Context, id uuid.UUID) (*DocumentVersion, error)
	Deactivate(ctx context.Context, domain, path, contentHash string) (*DocumentVersion, error)
	ListVersions(ctx context.Context, domain, path string) ([]*DocumentVersion, error)
	Resolve(ctx context.Context, domain, path string) (*ServableDocument, error)
	Preview(ctx context.Context, domain, path string) (*RenderedPreview, error)
	InitiateVerification(ctx context.Context, domain string) (*VerifiedDomain, error)
	ConfirmVerification(ctx context.Context, domain string) (*VerifiedDomain, error)
	DomainStatus(ctx context.Context, domain string) (*VerifiedDomain, error)
}

type service struct {
	versions     VersionRepository
	domains      DomainRepository
	renderer     interfaces.MarkdownRenderer
	resolver     TXTResolver
	endorsements EndorsementChecker
	logger       interfaces.Logger
	clock        func() time.Time
	tokenGen     func() string
	autoActivate bool
}

// ServiceOption customizes service construction.
type ServiceOption func(*service)

// WithClock overrides the time source.
func WithClock(clock func() time.Time) ServiceOption {
	return func(s *service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithTXTResolver injects the DNS collaborator used by ConfirmVerification.
func WithTXTResolver(resolver TXTResolver) ServiceOption {
	return func(s *service) {
		if resolver != nil {
			s.resolver = resolver
		}
	}
}

// WithEndorsementChecker injects the activation policy hook.
func WithEndorsementChecker(checker EndorsementChecker) ServiceOption {
	return func(s *service) {
		if checker != nil {
			s.endorsements = checker
		}
	}
}

// WithAutoActivate toggles activation of fresh versions on verified domains.
func WithAutoActivate(enabled bool) ServiceOption {
	return func(s *service) {
		s.autoActivate = enabled
	}
}

// WithTokenGenerator overrides verification token generation.
func WithTokenGenerator(gen func() string) ServiceOption {
	return func(s *service) {
		if gen != nil {
			s.tokenGen = gen
		}
	}
}

// NewService constructs the documents service.
func NewService(versions VersionRepository, domains DomainRepository, renderer interfaces.MarkdownRenderer, opts ...ServiceOption) Service {
	svc := &service{
		versions:     versions,
		domains:      domains,
		renderer:     renderer,
		endorsements: NoopEndorsementChecker(),
		logger:       logging.NoOp(),
		clock:        time.Now,
		tokenGen:     func() string { return uuid.NewString() },
		autoActivate: true,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

func (s *service) Render(ctx context.Context, req RenderRequest) (*RenderResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Content.Body) == "" && len(req.Content.Tables) == 0 && len(req.Content.Lists) == 0 {
		return nil, ErrContentRequired
	}

	hash := strings.TrimSpace(req.ContentHash)
	if hash == "" {
		derived, err := canonicalHash(req.Content)
		if err != nil {
			return nil, fmt.Errorf("documents: hash content: %w", err)
		}
		hash = derived
	}

	now := s.clock().UTC()
	front := interfaces.FrontSection{
		Title:       req.Content.Title,
		Source:      req.SourceURL,
		ContentHash: hash,
		GeneratedAt: now.Format(time.RFC3339),
	}
	rendered, err := s.renderer.Render(front, req.Content)
	if err != nil {
		return nil, fmt.Errorf("documents: render markdown: %w", err)
	}

	domain := strings.ToLower(strings.TrimSpace(req.Domain))
	path := normalizePath(req.Path)
	version := &DocumentVersion{
		ID:          identity.DocumentVersionUUID(domain, path, hash),
		Domain:      domain,
		Path:        path,
		ContentHash: hash,
		Markdown:    rendered,
		Title:       req.Content.Title,
		SourceURL:   req.SourceURL,
		GeneratedAt: now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	stored, created, err := s.versions.Insert(ctx, version)
	if err != nil {
		return nil, err
	}
	if !created {
		s.logger.Debug("render skipped, version exists",
			"domain", stored.Domain, "path", stored.Path, "content_hash", stored.ContentHash)
		return &RenderResult{Version: stored, Outcome: RenderOutcomeDuplicate}, nil
	}

	outcome := RenderOutcomeCreated
	if s.autoActivate && s.domainVerified(ctx, stored.Domain) {
		activated, actErr := s.activate(ctx, stored)
		if actErr != nil {
			s.logger.Warn("auto activation failed",
				"domain", stored.Domain, "path", stored.Path, "error", actErr)
		} else if activated != nil {
			stored = activated
			outcome = RenderOutcomeActivated
		}
	}

	s.logger.Info("document version rendered",
		"domain", stored.Domain, "path", stored.Path,
		"content_hash", stored.ContentHash, "outcome", string(outcome))
	return &RenderResult{Version: stored, Outcome: outcome}, nil
}

func (s *service) Activate(ctx context.Context, domain, path, contentHash string) (*DocumentVersion, error) {
	version, err := s.versions.GetByKeyHash(ctx, strings.ToLower(strings.TrimSpace(domain)), normalizePath(path), contentHash)
	if err != nil {
		return nil, err
	}
	return s.activate(ctx, version)
}

func (s *service) ActivateByID(ctx context.Context, id uuid.UUID) (*DocumentVersion, error) {
	version, err := s.versions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.activate(ctx, version)
}

func (s *service) activate(ctx context.Context, version *DocumentVersion) (*DocumentVersion, error) {
	allowed, err := s.endorsements.AllowActivation(ctx, version)
	if err != nil {
		return nil, fmt.Errorf("documents: endorsement check: %w", err)
	}
	if !allowed {
		return nil, fmt.Errorf("documents: activation not endorsed for %s/%s", version.Domain, version.Path)
	}
	activated, err := s.versions.Activate(ctx, version.ID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("document version activated",
		"domain", activated.Domain, "path", activated.Path, "content_hash", activated.ContentHash)
	return activated, nil
}

func (s *service) Deactivate(ctx context.Context, domain, path, contentHash string) (*DocumentVersion, error) {
	version, err := s.versions.GetByKeyHash(ctx, strings.ToLower(strings.TrimSpace(domain)), normalizePath(path), contentHash)
	if err != nil {
		return nil, err
	}
	deactivated, err := s.versions.Deactivate(ctx, version.ID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("document version deactivated",
		"domain", deactivated.Domain, "path", deactivated.Path, "content_hash", deactivated.ContentHash)
	return deactivated, nil
}

func (s *service) ListVersions(ctx context.Context, domain, path string) ([]*DocumentVersion, error) {
	if strings.TrimSpace(domain) == "" {
		return nil, ErrDomainRequired
	}
	if strings.TrimSpace(path) == "" {
		return nil, ErrPathRequired
	}
	return s.versions.ListByKey(ctx, strings.ToLower(strings.TrimSpace(domain)), normalizePath(path))
}

func (s *service) Resolve(ctx context.Context, domain, path string) (*ServableDocument, error) {
	normalized := strings.ToLower(strings.TrimSpace(domain))
	record, err := s.domains.GetByDomain(ctx, normalized)
	if err != nil {
		if errors.Is(err, ErrDomainNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, err
	}
	if !record.Verified {
		return nil, ErrDomainNotVerified
	}

	active, err := s.versions.ActiveByKey(ctx, normalized, normalizePath(path))
	if err != nil {
		if errors.Is(err, ErrVersionNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, err
	}
	return &ServableDocument{
		Domain:      active.Domain,
		Path:        active.Path,
		Markdown:    active.Markdown,
		ContentHash: active.ContentHash,
		GeneratedAt: active.GeneratedAt,
	}, nil
}

func (s *service) Preview(ctx context.Context, domain, path string) (*RenderedPreview, error) {
	doc, err := s.Resolve(ctx, domain, path)
	if err != nil {
		return nil, err
	}
	html, err := s.renderer.PreviewHTML([]byte(doc.Markdown))
	if err != nil {
		return nil, fmt.Errorf("documents: preview render: %w", err)
	}
	return &RenderedPreview{
		Domain:      doc.Domain,
		Path:        doc.Path,
		HTML:        string(html),
		ContentHash: doc.ContentHash,
	}, nil
}

func (s *service) InitiateVerification(ctx context.Context, domain string) (*VerifiedDomain, error) {
	normalized := strings.ToLower(strings.TrimSpace(domain))
	if normalized == "" {
		return nil, ErrDomainRequired
	}

	if existing, err := s.domains.GetByDomain(ctx, normalized); err == nil && existing.Verified {
		return existing, nil
	}

	record := &VerifiedDomain{
		ID:        identity.VerifiedDomainUUID(normalized),
		Domain:    normalized,
		Token:     s.tokenGen(),
		CreatedAt: s.clock().UTC(),
	}
	stored, err := s.domains.Upsert(ctx, record)
	if err != nil {
		return nil, err
	}
	s.logger.Info("domain verification initiated", "domain", stored.Domain)
	return stored, nil
}

func (s *service) ConfirmVerification(ctx context.Context, domain string) (*VerifiedDomain, error) {
	normalized := strings.ToLower(strings.TrimSpace(domain))
	if normalized == "" {
		return nil, ErrDomainRequired
	}
	record, err := s.domains.GetByDomain(ctx, normalized)
	if err != nil {
		return nil, err
	}
	if record.Verified {
		return record, nil
	}
	if s.resolver == nil {
		return nil, fmt.Errorf("documents: txt resolver not configured")
	}

	records, err := s.resolver.LookupTXT(ctx, normalized)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrVerificationFailed, err)
	}
	expected := VerificationTokenPrefix + record.Token
	for _, txt := range records {
		if strings.TrimSpace(txt) == expected {
			verified, err := s.domains.MarkVerified(ctx, normalized)
			if err != nil {
				return nil, err
			}
			s.logger.Info("domain verified", "domain", verified.Domain)
			return verified, nil
		}
	}
	return nil, ErrVerificationFailed
}

func (s *service) DomainStatus(ctx context.Context, domain string) (*VerifiedDomain, error) {
	normalized := strings.ToLower(strings.TrimSpace(domain))
	if normalized == "" {
		return nil, ErrDomainRequired
	}
	return s.domains.GetByDomain(ctx, normalized)
}

func (s *service) domainVerified(ctx context.Context, domain string) bool {
	record, err := s.domains.GetByDomain(ctx, domain)
	if err != nil {
		return false
	}
	return record.Verified
}

func normalizePath(path string) string {
	trimmed := strings.TrimSpace(path)
	trimmed = strings.TrimPrefix(trimmed, "/")
	if trimmed == "" {
		return "index"
	}
	return trimmed
}

// canonicalHash content-addresses extracted content so identical inputs map
// to the same version regardless of when they were rendered.
func canonicalHash(content interfaces.ExtractedContent) (string, error) {
	payload, err := json.Marshal(content)
	if err != nil {
		return "", err
	}
	return identity.ContentHash(string(payload)), nil
}
