package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/sitelaunch/sitelaunch/api/internal/apperrors"
	"github.com/sitelaunch/sitelaunch/api/internal/config"
	"github.com/sitelaunch/sitelaunch/api/internal/models"
	"github.com/sitelaunch/sitelaunch/api/pkg/docker"
)

type fakeRuntime struct {
	stopped    []string
	ran        []docker.RunOptions
	notRunning bool
	runErr     error
}

func (f *fakeRuntime) StopAndRemove(ctx context.Context, name string) error {
	f.stopped = append(f.stopped, name)
	return nil
}

func (f *fakeRuntime) RunDetached(ctx context.Context, opts docker.RunOptions) error {
	if f.runErr != nil {
		return f.runErr
	}
	f.ran = append(f.ran, opts)
	return nil
}

func (f *fakeRuntime) WaitUntilRunning(ctx context.Context, name string, settle time.Duration) (bool, error) {
	return !f.notRunning, nil
}

func (f *fakeRuntime) Logs(ctx context.Context, name string, tail int) (string, error) {
	return "container exited: missing index.html", nil
}

type fakeExecutor struct {
	builtIDs []string
	err      error
}

func (f *fakeExecutor) Build(ctx context.Context, siteID string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.builtIDs = append(f.builtIDs, siteID)
	return "build ok", nil
}

type fakeAllocator struct {
	err      error
	labels   []string
	hostname string
}

func (f *fakeAllocator) CreateGeneratedSubdomain(ctx context.Context, session *models.WizardSession, label string) (*models.Domain, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.labels = append(f.labels, label)
	hostname := f.hostname
	if hostname == "" {
		hostname = label + ".sitelaunch.app"
	}
	return &models.Domain{
		ID:       uuid.NewString(),
		Hostname: hostname,
		Status:   models.DomainStatusActive,
	}, nil
}

type testEnv struct {
	gen       *Generator
	db        *gorm.DB
	cfg       *config.Config
	runtime   *fakeRuntime
	executor  *fakeExecutor
	allocator *fakeAllocator
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := openTestDB(t)
	cfg := &config.Config{
		BaseDomain:         "sitelaunch.app",
		PublicHost:         "203.0.113.10",
		SitesConfigRoot:    t.TempDir(),
		GeneratedSitesRoot: t.TempDir(),
		UploadsRoot:        t.TempDir(),
	}
	runtime := &fakeRuntime{}
	executor := &fakeExecutor{}
	allocator := &fakeAllocator{}
	gen := New(db, cfg, runtime, executor, allocator, NewJSONTransformer())
	return &testEnv{gen: gen, db: db, cfg: cfg, runtime: runtime, executor: executor, allocator: allocator}
}

func seedSession(t *testing.T, db *gorm.DB, siteName string) *models.WizardSession {
	t.Helper()
	session := &models.WizardSession{
		ID:               uuid.NewString(),
		UserID:           "user-1",
		SiteName:         siteName,
		BusinessCategory: "restaurant",
		ConfigData:       models.JSON(`{"theme":"bistro","pages":["home","menu"]}`),
	}
	require.NoError(t, db.Create(session).Error)
	return session
}

func runPipeline(t *testing.T, env *testEnv, session *models.WizardSession) *models.GenerationTask {
	t.Helper()
	task := models.GenerationTask{
		ID:        uuid.NewString(),
		UserID:    session.UserID,
		SessionID: session.ID,
		Status:    models.TaskStatusPending,
	}
	require.NoError(t, env.db.Create(&task).Error)
	env.gen.run(context.Background(), task, *session)
	return reloadTask(t, env.db, task.ID)
}

func TestRunCompletesAndProvisions(t *testing.T) {
	env := newTestEnv(t)
	session := seedSession(t, env.db, "Café René")

	task := runPipeline(t, env, session)

	assert.Equal(t, models.TaskStatusCompleted, task.Status)
	assert.Equal(t, 100, task.Progress)
	require.NotNil(t, task.SiteID)
	assert.Equal(t, "cafe-rene", *task.SiteID)
	require.NotNil(t, task.SiteURL)
	assert.Equal(t, "https://cafe-rene.sitelaunch.app", *task.SiteURL)
	require.NotNil(t, task.CompletedAt)

	// The artifact carries the session config plus the stamped sections
	data, err := os.ReadFile(filepath.Join(env.cfg.SitesConfigRoot, "cafe-rene", ArtifactFileName))
	require.NoError(t, err)
	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "bistro", doc["theme"])
	meta := doc["meta"].(map[string]interface{})
	assert.Equal(t, "cafe-rene", meta["siteId"])
	assert.Equal(t, "cafe-rene.sitelaunch.app", meta["domain"])

	// Build and deploy went through the site's identity
	assert.Equal(t, []string{"cafe-rene"}, env.executor.builtIDs)
	require.Len(t, env.runtime.ran, 1)
	assert.Equal(t, "cafe-rene-website", env.runtime.ran[0].Image)
	assert.Equal(t, 3000, env.runtime.ran[0].HostPort)
	assert.Equal(t, 80, env.runtime.ran[0].ContainerPort)
	assert.Equal(t, "unless-stopped", env.runtime.ran[0].RestartPolicy)

	// Durable records are in place
	var site models.Site
	require.NoError(t, env.db.First(&site, "id = ?", "cafe-rene").Error)
	assert.Equal(t, session.ID, site.SessionID)
	assert.Equal(t, 3000, site.Port)

	var reloaded models.WizardSession
	require.NoError(t, env.db.First(&reloaded, "id = ?", session.ID).Error)
	assert.True(t, reloaded.Deployed)
	require.NotNil(t, reloaded.SiteID)
	assert.Equal(t, "cafe-rene", *reloaded.SiteID)
}

func TestRunUsesDeclaredPort(t *testing.T) {
	env := newTestEnv(t)
	session := seedSession(t, env.db, "Café René")
	session.ConfigData = models.JSON(`{"deployment":{"port":4173}}`)
	require.NoError(t, env.db.Save(session).Error)

	runPipeline(t, env, session)

	require.Len(t, env.runtime.ran, 1)
	assert.Equal(t, 4173, env.runtime.ran[0].HostPort)
}

func TestRunFailsOnMissingSiteName(t *testing.T) {
	env := newTestEnv(t)
	session := seedSession(t, env.db, "")

	task := runPipeline(t, env, session)

	assert.Equal(t, models.TaskStatusFailed, task.Status)
	require.NotNil(t, task.Error)
	assert.Contains(t, *task.Error, "business name")
	assert.Empty(t, env.executor.builtIDs)
}

func TestRunFailsOnBuildError(t *testing.T) {
	env := newTestEnv(t)
	env.executor.err = apperrors.NewExternalProcess("build cafe-rene", "npm exited 2", fmt.Errorf("exit status 2"))
	session := seedSession(t, env.db, "Café René")

	task := runPipeline(t, env, session)

	assert.Equal(t, models.TaskStatusFailed, task.Status)
	assert.Equal(t, 40, task.Progress)
	require.NotNil(t, task.Error)
	require.NotNil(t, task.CompletedAt)
	assert.Empty(t, env.runtime.ran)

	var count int64
	require.NoError(t, env.db.Model(&models.Site{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestRunFailsWhenContainerDoesNotSettle(t *testing.T) {
	env := newTestEnv(t)
	env.runtime.notRunning = true
	session := seedSession(t, env.db, "Café René")

	task := runPipeline(t, env, session)

	assert.Equal(t, models.TaskStatusFailed, task.Status)
	require.NotNil(t, task.Error)
	assert.Contains(t, *task.Error, "did not stay running")
}

func TestRunDomainFailureIsNonFatal(t *testing.T) {
	env := newTestEnv(t)
	env.allocator.err = apperrors.NewExternalProcess("nginx reload", "", fmt.Errorf("exit status 1"))
	session := seedSession(t, env.db, "Café René")

	task := runPipeline(t, env, session)

	assert.Equal(t, models.TaskStatusCompleted, task.Status)
	assert.Equal(t, 100, task.Progress)
	require.NotNil(t, task.SiteURL)
	assert.Equal(t, "203.0.113.10:3000", *task.SiteURL)

	var site models.Site
	require.NoError(t, env.db.First(&site, "id = ?", "cafe-rene").Error)
	assert.Equal(t, "203.0.113.10:3000", site.URL)
}

func TestRunStagesUploadedAssets(t *testing.T) {
	env := newTestEnv(t)
	session := seedSession(t, env.db, "Café René")
	session.MediaFiles = models.JSON(`["hero.jpg","missing.png"]`)
	require.NoError(t, env.db.Save(session).Error)

	uploadDir := filepath.Join(env.cfg.UploadsRoot, session.ID)
	require.NoError(t, os.MkdirAll(uploadDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(uploadDir, "hero.jpg"), []byte("jpeg"), 0o644))

	task := runPipeline(t, env, session)

	// A missing upload is logged and skipped, never fatal
	assert.Equal(t, models.TaskStatusCompleted, task.Status)

	staged, err := os.ReadFile(filepath.Join(env.cfg.SitesConfigRoot, "cafe-rene", "assets", "hero.jpg"))
	require.NoError(t, err)
	assert.Equal(t, []byte("jpeg"), staged)
}

func TestUniqueSiteIDResolvesCollisions(t *testing.T) {
	env := newTestEnv(t)

	require.NoError(t, env.db.Create(&models.Site{
		ID: "cafe-rene", SessionID: "s1", UserID: "user-1", Name: "Café René",
	}).Error)
	require.NoError(t, os.MkdirAll(filepath.Join(env.cfg.SitesConfigRoot, "cafe-rene-2"), 0o755))

	siteID, err := env.gen.uniqueSiteID(context.Background(), "Café René")
	require.NoError(t, err)
	assert.Equal(t, "cafe-rene-3", siteID)
}

func TestUniqueSiteIDFallsBackOnEmptySlug(t *testing.T) {
	env := newTestEnv(t)

	siteID, err := env.gen.uniqueSiteID(context.Background(), "!!!")
	require.NoError(t, err)
	assert.Equal(t, "site", siteID)
}

func TestTransformerStampsMetaAndPort(t *testing.T) {
	session := &models.WizardSession{
		ID:         uuid.NewString(),
		ConfigData: models.JSON(`{"theme":"bistro"}`),
	}

	out, err := NewJSONTransformer().Transform(session, "cafe-rene", "cafe-rene.sitelaunch.app")
	require.NoError(t, err)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(out, &doc))
	assert.Equal(t, "bistro", doc["theme"])

	meta := doc["meta"].(map[string]interface{})
	assert.Equal(t, "cafe-rene", meta["siteId"])
	assert.Equal(t, float64(1), meta["version"])

	deployment := doc["deployment"].(map[string]interface{})
	assert.Equal(t, float64(DefaultDeploymentPort), deployment["port"])
}

func TestTransformerRejectsInvalidConfig(t *testing.T) {
	session := &models.WizardSession{
		ID:         uuid.NewString(),
		ConfigData: models.JSON(`{not json`),
	}

	_, err := NewJSONTransformer().Transform(session, "cafe-rene", "cafe-rene.sitelaunch.app")
	assert.Error(t, err)
}
