// Package generator runs the site provisioning pipeline: it validates a
// wizard session, reserves a site identifier, materializes the build
// configuration, invokes the external build executor, deploys the
// resulting container and wires a public domain. Each run is tracked by a
// persisted GenerationTask that callers poll; failures never propagate
// across the async boundary.
package generator

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/sitelaunch/sitelaunch/api/internal/apperrors"
	"github.com/sitelaunch/sitelaunch/api/internal/config"
	"github.com/sitelaunch/sitelaunch/api/internal/domains"
	"github.com/sitelaunch/sitelaunch/api/internal/models"
	"github.com/sitelaunch/sitelaunch/api/internal/redis"
	"github.com/sitelaunch/sitelaunch/api/pkg/builder"
	"github.com/sitelaunch/sitelaunch/api/pkg/docker"
	"github.com/sitelaunch/sitelaunch/api/pkg/utils"
)

const (
	containerPort    = 80
	containerSettle  = 10 * time.Second
	containerRestart = "unless-stopped"
	logTailLines     = 50
)

// ContainerRuntime is the slice of the container runtime the pipeline uses
type ContainerRuntime interface {
	StopAndRemove(ctx context.Context, name string) error
	RunDetached(ctx context.Context, opts docker.RunOptions) error
	WaitUntilRunning(ctx context.Context, name string, settle time.Duration) (bool, error)
	Logs(ctx context.Context, name string, tail int) (string, error)
}

// BuildExecutor runs the external build script for a site
type BuildExecutor interface {
	Build(ctx context.Context, siteID string) (string, error)
}

// DomainAllocator provisions a routable hostname for a deployed container
type DomainAllocator interface {
	CreateGeneratedSubdomain(ctx context.Context, session *models.WizardSession, label string) (*models.Domain, error)
}

// Generator orchestrates provisioning runs
type Generator struct {
	db          *gorm.DB
	cfg         *config.Config
	tracker     *Tracker
	runtime     ContainerRuntime
	executor    BuildExecutor
	allocator   DomainAllocator
	transformer ConfigTransformer

	mu      sync.Mutex
	cancels map[string]context.CancelFunc
}

var (
	defaultGenerator *Generator
	defaultOnce      sync.Once
)

// Initialize sets up the package-level generator used by the HTTP handlers
func Initialize(db *gorm.DB, cfg *config.Config, runtime ContainerRuntime, executor BuildExecutor, allocator DomainAllocator) {
	defaultOnce.Do(func() {
		defaultGenerator = New(db, cfg, runtime, executor, allocator, NewJSONTransformer())
	})
}

// Default returns the package-level generator
func Default() *Generator {
	return defaultGenerator
}

// New creates a generator
func New(db *gorm.DB, cfg *config.Config, runtime ContainerRuntime, executor BuildExecutor, allocator DomainAllocator, transformer ConfigTransformer) *Generator {
	return &Generator{
		db:          db,
		cfg:         cfg,
		tracker:     NewTracker(db),
		runtime:     runtime,
		executor:    executor,
		allocator:   allocator,
		transformer: transformer,
		cancels:     make(map[string]context.CancelFunc),
	}
}

// StartGeneration creates a PENDING task for the session and runs the
// pipeline in the background. The caller gets the task handle immediately
// and observes progress and failure exclusively through polling.
func (g *Generator) StartGeneration(ctx context.Context, sessionID, userID string) (*models.GenerationTask, error) {
	var session models.WizardSession
	if err := g.db.WithContext(ctx).
		Where("id = ? AND userId = ?", sessionID, userID).
		First(&session).Error; err != nil {
		return nil, apperrors.NewValidation("sessionId", "session not found")
	}

	task := models.GenerationTask{
		ID:        utils.GenerateShortID(),
		UserID:    userID,
		SessionID: sessionID,
		Status:    models.TaskStatusPending,
	}
	if err := g.db.WithContext(ctx).Create(&task).Error; err != nil {
		return nil, fmt.Errorf("failed to create generation task: %w", err)
	}

	runCtx, cancel := context.WithCancel(context.Background())
	g.mu.Lock()
	g.cancels[task.ID] = cancel
	g.mu.Unlock()

	go g.run(runCtx, task, session)

	return &task, nil
}

// GetTaskStatus returns the current task record for polling
func (g *Generator) GetTaskStatus(ctx context.Context, taskID, userID string) (*models.GenerationTask, error) {
	var task models.GenerationTask
	if err := g.db.WithContext(ctx).
		Where("id = ? AND userId = ?", taskID, userID).
		First(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// ListActiveTasks returns the caller's tasks that have not reached a
// terminal state.
func (g *Generator) ListActiveTasks(ctx context.Context, userID string) ([]models.GenerationTask, error) {
	var tasks []models.GenerationTask
	if err := g.db.WithContext(ctx).
		Where("userId = ? AND status IN ?", userID,
			[]models.TaskStatus{models.TaskStatusPending, models.TaskStatusInProgress}).
		Order("createdAt DESC").
		Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// Cancel requests cooperative cancellation of an in-flight run. No route
// exposes this yet; the pipeline honors it between steps.
func (g *Generator) Cancel(taskID string) bool {
	g.mu.Lock()
	cancel, ok := g.cancels[taskID]
	g.mu.Unlock()
	if ok {
		cancel()
	}
	return ok
}

// run executes the pipeline. Every error is written into the task record;
// nothing is thrown past this function.
func (g *Generator) run(ctx context.Context, task models.GenerationTask, session models.WizardSession) {
	defer func() {
		g.mu.Lock()
		delete(g.cancels, task.ID)
		g.mu.Unlock()
	}()

	log.Printf("[Generator] Task %s: starting generation for session %s", task.ID, session.ID)

	// Step 1: validate the source configuration before touching anything external
	g.tracker.Progress(ctx, &task, 5, "Validating configuration")
	if session.SiteName == "" {
		g.fail(ctx, &task, apperrors.NewValidation("siteName", "business name is required"))
		return
	}
	if session.BusinessCategory == "" {
		g.fail(ctx, &task, apperrors.NewValidation("businessCategory", "business category is required"))
		return
	}
	if g.cancelled(ctx, &task) {
		return
	}

	// Step 2: compute the unique site identifier
	g.tracker.Progress(ctx, &task, 15, "Reserving site identifier")
	siteID, err := g.uniqueSiteID(ctx, session.SiteName)
	if err != nil {
		g.fail(ctx, &task, err)
		return
	}
	task.SiteID = &siteID
	g.persistTaskField(ctx, &task, "siteId", siteID)
	if g.cancelled(ctx, &task) {
		return
	}

	// Step 3: materialize the configuration artifact and stage assets
	g.tracker.Progress(ctx, &task, 30, "Writing site configuration")
	if err := g.writeArtifact(&session, siteID); err != nil {
		g.fail(ctx, &task, err)
		return
	}
	if result := g.stageAssets(&session, siteID); result.Soft() {
		log.Printf("[Generator] Task %s: %s: %v", task.ID, result.Reason, result.Err)
	}
	if g.cancelled(ctx, &task) {
		return
	}

	// Step 4: run the external build
	g.tracker.Progress(ctx, &task, 40, "Building site")
	if _, err := g.executor.Build(ctx, siteID); err != nil {
		g.fail(ctx, &task, err)
		return
	}
	g.tracker.Progress(ctx, &task, 60, "Build finished")
	if g.cancelled(ctx, &task) {
		return
	}

	// Step 5: the build executor writes deployment metadata back into the artifact
	g.tracker.Progress(ctx, &task, 70, "Resolving deployment port")
	port := g.resolvePort(siteID)
	task.Port = &port
	g.persistTaskField(ctx, &task, "port", port)

	// Step 6: deploy the container
	g.tracker.Progress(ctx, &task, 75, "Starting container")
	containerName := domains.GenerateContainerName(session.SiteName, session.ID)
	if err := g.deployContainer(ctx, siteID, containerName, port); err != nil {
		g.fail(ctx, &task, err)
		return
	}
	g.tracker.Progress(ctx, &task, 85, "Container running")
	if g.cancelled(ctx, &task) {
		return
	}

	// Step 7: wire a public domain. Failure here is non-fatal: the site is
	// built and running, so the run continues with a raw host:port URL and
	// an operator can wire the domain manually.
	g.tracker.Progress(ctx, &task, 95, "Configuring domain")
	siteURL, domainResult := g.wireDomain(ctx, &session, siteID, port)
	if domainResult.Soft() {
		log.Printf("[Generator] Task %s: %s: %v", task.ID, domainResult.Reason, domainResult.Err)
	}
	task.SiteURL = &siteURL

	// Step 8: persist final linkage on the durable records
	if err := g.finalize(ctx, &task, &session, siteID, containerName, port, siteURL); err != nil {
		g.fail(ctx, &task, err)
		return
	}

	// Step 9: done
	g.tracker.Complete(ctx, &task)
	log.Printf("[Generator] Task %s: completed, site %s at %s", task.ID, siteID, siteURL)
}

func (g *Generator) fail(ctx context.Context, task *models.GenerationTask, err error) {
	log.Printf("[Generator] Task %s failed: %v", task.ID, err)
	if task.SiteID != nil {
		// Free the reservation; the slug can be retried by a new run
		if rerr := redis.ReleaseSiteID(ctx, *task.SiteID); rerr != nil {
			log.Printf("[Generator] Task %s: failed to release site ID reservation: %v", task.ID, rerr)
		}
	}
	g.tracker.Fail(ctx, task, err)
}

func (g *Generator) cancelled(ctx context.Context, task *models.GenerationTask) bool {
	if ctx.Err() == nil {
		return false
	}
	log.Printf("[Generator] Task %s cancelled", task.ID)
	if task.SiteID != nil {
		if rerr := redis.ReleaseSiteID(context.WithoutCancel(ctx), *task.SiteID); rerr != nil {
			log.Printf("[Generator] Task %s: failed to release site ID reservation: %v", task.ID, rerr)
		}
	}
	g.tracker.Cancel(context.WithoutCancel(ctx), task)
	return true
}

func (g *Generator) writeArtifact(session *models.WizardSession, siteID string) error {
	domain := siteID + "." + g.cfg.BaseDomain
	doc, err := g.transformer.Transform(session, siteID, domain)
	if err != nil {
		return err
	}

	siteDir := filepath.Join(g.cfg.SitesConfigRoot, siteID)
	if err := os.MkdirAll(siteDir, 0o755); err != nil {
		return fmt.Errorf("failed to create site config directory: %w", err)
	}
	if err := os.WriteFile(filepath.Join(siteDir, ArtifactFileName), doc, 0o644); err != nil {
		return fmt.Errorf("failed to write site configuration artifact: %w", err)
	}
	return nil
}

// stageAssets copies the session's uploaded media into the site's asset
// directory. Individual missing files are logged and skipped; only the
// overall outcome is reported.
func (g *Generator) stageAssets(session *models.WizardSession, siteID string) StepResult {
	var files []string
	if err := session.MediaFiles.UnmarshalTo(&files); err != nil {
		return SoftFailure("unreadable media file list", err)
	}
	if len(files) == 0 {
		return OK()
	}

	assetDir := filepath.Join(g.cfg.SitesConfigRoot, siteID, "assets")
	if err := os.MkdirAll(assetDir, 0o755); err != nil {
		return SoftFailure("failed to create asset directory", err)
	}

	uploadDir := filepath.Join(g.cfg.UploadsRoot, session.ID)
	missing := 0
	for _, name := range files {
		src := filepath.Join(uploadDir, filepath.Base(name))
		if err := copyFile(src, filepath.Join(assetDir, filepath.Base(name))); err != nil {
			missing++
			log.Printf("[Generator] Skipping asset %s for site %s: %v", name, siteID, err)
		}
	}
	if missing > 0 {
		return SoftFailure(fmt.Sprintf("%d of %d assets could not be staged", missing, len(files)), nil)
	}
	return OK()
}

func (g *Generator) resolvePort(siteID string) int {
	data, err := os.ReadFile(filepath.Join(g.cfg.SitesConfigRoot, siteID, ArtifactFileName))
	if err != nil {
		log.Printf("[Generator] Could not read artifact for %s, using default port: %v", siteID, err)
		return DefaultDeploymentPort
	}

	var doc artifactDocument
	if err := models.JSON(data).UnmarshalTo(&doc); err != nil || doc.Deployment.Port <= 0 {
		return DefaultDeploymentPort
	}
	return doc.Deployment.Port
}

func (g *Generator) deployContainer(ctx context.Context, siteID, containerName string, port int) error {
	// A previous run may have left a container under the same identity
	if err := g.runtime.StopAndRemove(ctx, containerName); err != nil {
		return err
	}

	if err := g.runtime.RunDetached(ctx, docker.RunOptions{
		Name:          containerName,
		Image:         builder.ImageName(siteID),
		HostPort:      port,
		ContainerPort: containerPort,
		RestartPolicy: containerRestart,
	}); err != nil {
		return err
	}

	running, err := g.runtime.WaitUntilRunning(ctx, containerName, containerSettle)
	if err != nil {
		return err
	}
	if !running {
		logs, logErr := g.runtime.Logs(ctx, containerName, logTailLines)
		if logErr != nil {
			logs = fmt.Sprintf("(logs unavailable: %v)", logErr)
		}
		return apperrors.NewExternalProcess("container "+containerName, logs,
			fmt.Errorf("container did not stay running"))
	}
	return nil
}

func (g *Generator) wireDomain(ctx context.Context, session *models.WizardSession, siteID string, port int) (string, StepResult) {
	domain, err := g.allocator.CreateGeneratedSubdomain(ctx, session, siteID)
	if err != nil {
		fallback := fmt.Sprintf("%s:%d", g.cfg.PublicHost, port)
		return fallback, SoftFailure("domain wiring failed, recording raw endpoint", err)
	}
	return "https://" + domain.Hostname, OK()
}

func (g *Generator) finalize(ctx context.Context, task *models.GenerationTask, session *models.WizardSession, siteID, containerName string, port int, siteURL string) error {
	site := models.Site{
		ID:            siteID,
		SessionID:     session.ID,
		UserID:        session.UserID,
		Name:          session.SiteName,
		Port:          port,
		URL:           siteURL,
		ContainerName: containerName,
	}
	if err := g.db.WithContext(ctx).Create(&site).Error; err != nil {
		return fmt.Errorf("failed to persist site record: %w", err)
	}

	now := time.Now()
	if err := g.db.WithContext(ctx).Model(&models.WizardSession{}).
		Where("id = ?", session.ID).
		Updates(map[string]interface{}{
			"siteId":     siteID,
			"deployed":   true,
			"deployedAt": now,
		}).Error; err != nil {
		return fmt.Errorf("failed to mark session deployed: %w", err)
	}

	g.persistTaskField(ctx, task, "siteUrl", siteURL)
	return nil
}

func (g *Generator) persistTaskField(ctx context.Context, task *models.GenerationTask, column string, value interface{}) {
	if err := g.db.WithContext(ctx).Model(&models.GenerationTask{}).
		Where("id = ?", task.ID).
		Update(column, value).Error; err != nil {
		log.Printf("[Generator] Failed to persist task %s field %s: %v", task.ID, column, err)
	}
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
