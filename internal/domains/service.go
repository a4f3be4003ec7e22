// Package domains allocates public hostnames: generated subdomains under
// the platform's base domain and externally-owned custom domains with a
// DNS verification workflow. Allocation drives the reverse-proxy config
// manager to make each hostname routable.
package domains

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/sitelaunch/sitelaunch/api/internal/apperrors"
	"github.com/sitelaunch/sitelaunch/api/internal/config"
	"github.com/sitelaunch/sitelaunch/api/internal/models"
	"github.com/sitelaunch/sitelaunch/api/internal/slug"
	"github.com/sitelaunch/sitelaunch/api/pkg/utils"
)

const (
	verificationTokenBytes = 32
	verificationValidity   = 7 * 24 * time.Hour
	containerSuffixLength  = 8
	tempLabelSuffixLength  = 6
)

// ProxyManager is the slice of the reverse-proxy config manager the
// allocator depends on.
type ProxyManager interface {
	GenerateSubdomainConfig(hostname, containerName string) (string, error)
	GenerateCustomDomainConfig(hostname, containerName, certPath string) (string, error)
	RemoveConfig(hostname string) error
	ReloadProxy(ctx context.Context) error
}

// Service implements domain allocation on top of the Domain table and the
// proxy config manager.
type Service struct {
	db    *gorm.DB
	cfg   *config.Config
	proxy ProxyManager
}

var (
	defaultService *Service
	defaultOnce    sync.Once
)

// Initialize sets up the package-level service used by the HTTP handlers
func Initialize(db *gorm.DB, cfg *config.Config, proxy ProxyManager) {
	defaultOnce.Do(func() {
		defaultService = NewService(db, cfg, proxy)
	})
}

// Default returns the package-level service
func Default() *Service {
	return defaultService
}

// NewService creates an allocator
func NewService(db *gorm.DB, cfg *config.Config, proxy ProxyManager) *Service {
	return &Service{db: db, cfg: cfg, proxy: proxy}
}

// Availability is the result of a subdomain availability check
type Availability struct {
	Available   bool     `json:"available"`
	Reason      string   `json:"reason,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// CheckAvailability validates a candidate label and reports whether it can
// be registered. Reserved and already-taken labels come back with up to
// three ready-to-use alternatives; format violations and the per-user
// subdomain limit surface as validation errors.
func (s *Service) CheckAvailability(ctx context.Context, label, userID string) (*Availability, error) {
	if err := ValidateLabel(label); err != nil {
		return nil, err
	}

	if IsReserved(label) {
		return &Availability{
			Available:   false,
			Reason:      "this subdomain is reserved",
			Suggestions: s.suggest(ctx, label),
		}, nil
	}

	taken, err := s.labelTaken(ctx, label)
	if err != nil {
		return nil, err
	}
	if taken {
		return &Availability{
			Available:   false,
			Reason:      "this subdomain is already taken",
			Suggestions: s.suggest(ctx, label),
		}, nil
	}

	if err := s.checkSubdomainLimit(ctx, userID); err != nil {
		return nil, err
	}

	return &Availability{Available: true}, nil
}

// CreateGeneratedSubdomain allocates a permanent subdomain under the base
// domain, wires it through the proxy and links it as the session's active
// domain. The Domain row survives in FAILED state when proxy wiring fails.
func (s *Service) CreateGeneratedSubdomain(ctx context.Context, session *models.WizardSession, label string) (*models.Domain, error) {
	return s.createGenerated(ctx, session, label, false)
}

func (s *Service) createGenerated(ctx context.Context, session *models.WizardSession, label string, temporary bool) (*models.Domain, error) {
	if err := ValidateLabel(label); err != nil {
		return nil, err
	}
	if IsReserved(label) {
		return nil, apperrors.NewConflict("domain", fmt.Sprintf("subdomain %q is reserved", label))
	}

	taken, err := s.labelTaken(ctx, label)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperrors.NewConflict("domain", fmt.Sprintf("subdomain %q is already taken", label))
	}

	// Temporary companions of custom domains do not count against the limit
	if !temporary {
		if err := s.checkSubdomainLimit(ctx, session.UserID); err != nil {
			return nil, err
		}
	}

	hostname := label + "." + s.cfg.BaseDomain
	containerName := GenerateContainerName(session.SiteName, session.ID)

	domain := models.Domain{
		ID:            utils.GenerateShortID(),
		SessionID:     session.ID,
		UserID:        session.UserID,
		Hostname:      hostname,
		Type:          models.DomainTypeGenerated,
		IsTemporary:   temporary,
		Status:        models.DomainStatusPending,
		ContainerName: containerName,
	}
	if err := s.db.WithContext(ctx).Create(&domain).Error; err != nil {
		return nil, fmt.Errorf("failed to create domain record: %w", err)
	}

	configPath, err := s.wireProxy(ctx, &domain)
	if err != nil {
		now := time.Now()
		s.db.WithContext(ctx).Model(&domain).Updates(map[string]interface{}{
			"status":        models.DomainStatusFailed,
			"error":         err.Error(),
			"lastCheckedAt": now,
		})
		return nil, err
	}

	now := time.Now()
	updates := map[string]interface{}{
		"status":      models.DomainStatusActive,
		"configPath":  configPath,
		"activatedAt": now,
	}
	if err := s.db.WithContext(ctx).Model(&domain).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to activate domain record: %w", err)
	}
	domain.Status = models.DomainStatusActive
	domain.ConfigPath = &configPath
	domain.ActivatedAt = &now

	s.linkActiveDomain(ctx, session, &domain, temporary)

	return &domain, nil
}

// CustomDomainResult bundles a custom domain with its companion temporary
// subdomain and the DNS verification token the owner has to publish.
type CustomDomainResult struct {
	Domain            *models.Domain `json:"domain"`
	TempDomain        *models.Domain `json:"tempDomain"`
	VerificationToken string         `json:"verificationToken"`
}

// CreateCustomDomain registers an externally-owned hostname pending DNS
// verification and always creates a temporary generated subdomain pointing
// at the same container, so the owner has a reachable endpoint right away.
func (s *Service) CreateCustomDomain(ctx context.Context, session *models.WizardSession, hostname string) (*CustomDomainResult, error) {
	if err := ValidateHostname(hostname); err != nil {
		return nil, err
	}

	taken, err := s.hostnameTaken(ctx, hostname)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperrors.NewConflict("domain", fmt.Sprintf("domain %q is already registered", hostname))
	}

	token, err := generateVerificationToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate verification token: %w", err)
	}

	method := models.VerificationMethodDNSTXT
	tlsStatus := models.TLSStatusPending
	expiresAt := time.Now().Add(verificationValidity)
	containerName := GenerateContainerName(session.SiteName, session.ID)

	domain := models.Domain{
		ID:                    utils.GenerateShortID(),
		SessionID:             session.ID,
		UserID:                session.UserID,
		Hostname:              hostname,
		Type:                  models.DomainTypeCustom,
		Status:                models.DomainStatusPending,
		VerificationToken:     &token,
		VerificationMethod:    &method,
		VerificationExpiresAt: &expiresAt,
		TLSStatus:             &tlsStatus,
		ContainerName:         containerName,
	}
	if err := s.db.WithContext(ctx).Create(&domain).Error; err != nil {
		return nil, fmt.Errorf("failed to create domain record: %w", err)
	}

	tempLabel := tempSubdomainLabel(session.SiteName)
	tempDomain, err := s.createGenerated(ctx, session, tempLabel, true)
	if err != nil {
		// The custom domain row stays for the verification flow; the owner
		// just has no preview endpoint until a retry succeeds.
		log.Printf("[Domains] Failed to create temporary subdomain for %s: %v", hostname, err)
		return nil, err
	}

	return &CustomDomainResult{
		Domain:            &domain,
		TempDomain:        tempDomain,
		VerificationToken: token,
	}, nil
}

// DeleteDomain removes the proxy mapping best-effort and then deletes the
// Domain row. Proxy cleanup failure never blocks the delete.
func (s *Service) DeleteDomain(ctx context.Context, id string) error {
	var domain models.Domain
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&domain).Error; err != nil {
		return fmt.Errorf("domain not found: %w", err)
	}

	if err := s.proxy.RemoveConfig(domain.Hostname); err != nil {
		log.Printf("[Domains] Failed to remove proxy config for %s: %v", domain.Hostname, err)
	} else if err := s.proxy.ReloadProxy(ctx); err != nil {
		log.Printf("[Domains] Failed to reload proxy after removing %s: %v", domain.Hostname, err)
	}

	if err := s.db.WithContext(ctx).Delete(&models.Domain{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete domain record: %w", err)
	}
	return nil
}

// ListBySession returns all domains attached to a wizard session
func (s *Service) ListBySession(ctx context.Context, sessionID string) ([]models.Domain, error) {
	var list []models.Domain
	if err := s.db.WithContext(ctx).
		Where("sessionId = ?", sessionID).
		Order("createdAt ASC").
		Find(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to list domains: %w", err)
	}
	return list, nil
}

// GetDomain loads a single domain by ID
func (s *Service) GetDomain(ctx context.Context, id string) (*models.Domain, error) {
	var domain models.Domain
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&domain).Error; err != nil {
		return nil, err
	}
	return &domain, nil
}

// GenerateContainerName derives the deterministic container name binding a
// domain, a proxy mapping and a running container: the slug-sanitized site
// name joined with the first 8 characters of the session id. Re-deploys for
// the same session therefore always target the same container identity.
func GenerateContainerName(siteName, sessionID string) string {
	suffix := sessionID
	if len(suffix) > containerSuffixLength {
		suffix = suffix[:containerSuffixLength]
	}
	return slug.Make(siteName) + "-" + suffix
}

func (s *Service) wireProxy(ctx context.Context, domain *models.Domain) (string, error) {
	configPath, err := s.proxy.GenerateSubdomainConfig(domain.Hostname, domain.ContainerName)
	if err != nil {
		return "", err
	}
	if err := s.proxy.ReloadProxy(ctx); err != nil {
		return "", err
	}
	return configPath, nil
}

func (s *Service) linkActiveDomain(ctx context.Context, session *models.WizardSession, domain *models.Domain, temporary bool) {
	// A temporary preview domain never displaces an explicitly chosen one
	if temporary && session.ActiveDomainID != nil {
		return
	}
	if err := s.db.WithContext(ctx).Model(&models.WizardSession{}).
		Where("id = ?", session.ID).
		Update("activeDomainId", domain.ID).Error; err != nil {
		log.Printf("[Domains] Failed to link active domain for session %s: %v", session.ID, err)
		return
	}
	session.ActiveDomainID = &domain.ID
}

func (s *Service) labelTaken(ctx context.Context, label string) (bool, error) {
	return s.hostnameTaken(ctx, label+"."+s.cfg.BaseDomain)
}

func (s *Service) hostnameTaken(ctx context.Context, hostname string) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Domain{}).
		Where("hostname = ?", hostname).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check hostname: %w", err)
	}
	return count > 0, nil
}

func (s *Service) checkSubdomainLimit(ctx context.Context, userID string) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Domain{}).
		Where("userId = ? AND type = ? AND isTemporary = ?", userID, models.DomainTypeGenerated, false).
		Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count subdomains: %w", err)
	}
	if count >= int64(s.cfg.SubdomainLimit) {
		return apperrors.NewValidation("subdomain", fmt.Sprintf("subdomain limit reached (%d)", s.cfg.SubdomainLimit))
	}
	return nil
}

func (s *Service) suggest(ctx context.Context, label string) []string {
	var suggestions []string
	for _, candidate := range suggestionCandidates(label) {
		if ValidateLabel(candidate) != nil || IsReserved(candidate) {
			continue
		}
		taken, err := s.labelTaken(ctx, candidate)
		if err != nil || taken {
			continue
		}
		suggestions = append(suggestions, candidate)
		if len(suggestions) == 3 {
			break
		}
	}
	return suggestions
}

func tempSubdomainLabel(siteName string) string {
	base := slug.Make(siteName)
	if base == "" {
		base = "site"
	}
	// Leave room for the random suffix within the 63-char label bound
	maxBase := 63 - tempLabelSuffixLength - 1
	if len(base) > maxBase {
		base = strings.TrimRight(base[:maxBase], "-")
	}
	return base + "-" + utils.GenerateLowercaseSuffix(tempLabelSuffixLength)
}

func generateVerificationToken() (string, error) {
	buf := make([]byte, verificationTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
