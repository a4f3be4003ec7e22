package domains

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/sitelaunch/sitelaunch/api/internal/apperrors"
)

var reservedLabels = map[string]bool{
	"admin":     true,
	"api":       true,
	"app":       true,
	"assets":    true,
	"auth":      true,
	"blog":      true,
	"cdn":       true,
	"dashboard": true,
	"demo":      true,
	"dev":       true,
	"docs":      true,
	"ftp":       true,
	"help":      true,
	"imap":      true,
	"login":     true,
	"mail":      true,
	"news":      true,
	"pop":       true,
	"portal":    true,
	"secure":    true,
	"shop":      true,
	"smtp":      true,
	"staging":   true,
	"static":    true,
	"status":    true,
	"store":     true,
	"support":   true,
	"test":      true,
	"www":       true,
}

var (
	// Lowercase alphanumerics with single interior hyphens; the grammar
	// itself rules out leading/trailing and consecutive hyphens.
	labelPattern    = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)
	allDigits       = regexp.MustCompile(`^[0-9]+$`)
	hostnamePattern = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?$`)
)

// ValidateLabel checks a generated-subdomain label against the format rules
func ValidateLabel(label string) error {
	if len(label) < 3 || len(label) > 63 {
		return apperrors.NewValidation("subdomain", "must be between 3 and 63 characters")
	}
	if !labelPattern.MatchString(label) {
		return apperrors.NewValidation("subdomain", "may only contain lowercase letters, digits and single hyphens, and must start and end with a letter or digit")
	}
	if allDigits.MatchString(label) {
		return apperrors.NewValidation("subdomain", "cannot consist of digits only")
	}
	return nil
}

// IsReserved reports whether a label is on the reserved-word list
func IsReserved(label string) bool {
	return reservedLabels[label]
}

// ValidateHostname checks an externally-owned hostname: no scheme, no
// spaces, at least one dot, every label well-formed.
func ValidateHostname(hostname string) error {
	if hostname == "" {
		return apperrors.NewValidation("domain", "is required")
	}
	if strings.Contains(hostname, "://") {
		return apperrors.NewValidation("domain", "must not include a scheme")
	}
	if strings.ContainsAny(hostname, " \t") {
		return apperrors.NewValidation("domain", "must not contain spaces")
	}
	if !strings.Contains(hostname, ".") {
		return apperrors.NewValidation("domain", "must contain at least one dot")
	}
	if len(hostname) > 253 {
		return apperrors.NewValidation("domain", "is too long")
	}

	lowered := strings.ToLower(hostname)
	for _, part := range strings.Split(lowered, ".") {
		if !hostnamePattern.MatchString(part) {
			return apperrors.NewValidation("domain", fmt.Sprintf("label %q is not valid", part))
		}
	}
	return nil
}

// suggestionCandidates returns the deterministic alternatives offered when
// a label is reserved or taken.
func suggestionCandidates(label string) []string {
	return []string{
		fmt.Sprintf("%s-%d", label, time.Now().Year()),
		label + "-2",
		label + "-app",
	}
}
