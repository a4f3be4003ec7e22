package generator

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/sitelaunch/sitelaunch/api/internal/apperrors"
	"github.com/sitelaunch/sitelaunch/api/internal/models"
	"github.com/sitelaunch/sitelaunch/api/internal/redis"
	"github.com/sitelaunch/sitelaunch/api/internal/slug"
)

// maxSlugAttempts bounds collision disambiguation before the run fails
const maxSlugAttempts = 100

// uniqueSiteID derives a slug from the business name and resolves
// collisions by suffixing -2, -3, ... A candidate has to be free in all
// three namespaces at once: the Site table, the config directory tree and
// the generated-output tree; a half-finished prior run may have left
// filesystem artifacts without a matching row, or vice versa. The winning
// candidate is additionally reserved in Redis so two concurrent runs
// cannot both claim it between probe and write.
func (g *Generator) uniqueSiteID(ctx context.Context, businessName string) (string, error) {
	base := slug.Make(businessName)
	if base == "" {
		base = "site"
	}

	for attempt := 1; attempt <= maxSlugAttempts; attempt++ {
		candidate := base
		if attempt > 1 {
			candidate = fmt.Sprintf("%s-%d", base, attempt)
		}

		taken, err := g.siteIDTaken(ctx, candidate)
		if err != nil {
			return "", err
		}
		if taken {
			continue
		}

		reserved, err := redis.ReserveSiteID(ctx, candidate)
		if err != nil {
			// Degrade to probe-then-write when Redis is unavailable
			log.Printf("[Generator] Site ID reservation unavailable: %v", err)
			return candidate, nil
		}
		if !reserved {
			// A concurrent run holds this candidate; treat as collision
			continue
		}
		return candidate, nil
	}

	return "", apperrors.NewConflict("siteId", fmt.Sprintf("could not find a unique site identifier for %q after %d attempts", businessName, maxSlugAttempts))
}

func (g *Generator) siteIDTaken(ctx context.Context, candidate string) (bool, error) {
	var count int64
	if err := g.db.WithContext(ctx).Model(&models.Site{}).
		Where("id = ?", candidate).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to probe site table: %w", err)
	}
	if count > 0 {
		return true, nil
	}

	if _, err := os.Stat(filepath.Join(g.cfg.SitesConfigRoot, candidate)); err == nil {
		return true, nil
	}
	if _, err := os.Stat(filepath.Join(g.cfg.GeneratedSitesRoot, candidate)); err == nil {
		return true, nil
	}
	return false, nil
}
