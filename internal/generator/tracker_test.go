package generator

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/sitelaunch/sitelaunch/api/internal/models"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.GenerationTask{}, &models.WizardSession{}, &models.Site{}, &models.Domain{}))
	return db
}

func seedTask(t *testing.T, db *gorm.DB) *models.GenerationTask {
	t.Helper()
	task := &models.GenerationTask{
		ID:        uuid.NewString(),
		UserID:    "user-1",
		SessionID: "session-1",
		Status:    models.TaskStatusPending,
	}
	require.NoError(t, db.Create(task).Error)
	return task
}

func reloadTask(t *testing.T, db *gorm.DB, id string) *models.GenerationTask {
	t.Helper()
	var task models.GenerationTask
	require.NoError(t, db.First(&task, "id = ?", id).Error)
	return &task
}

func TestTrackerFirstProgressStartsTask(t *testing.T) {
	db := openTestDB(t)
	tracker := NewTracker(db)
	task := seedTask(t, db)

	tracker.Progress(context.Background(), task, 5, "Validating configuration")

	stored := reloadTask(t, db, task.ID)
	assert.Equal(t, models.TaskStatusInProgress, stored.Status)
	assert.Equal(t, 5, stored.Progress)
	assert.Equal(t, "Validating configuration", stored.CurrentStep)
	require.NotNil(t, stored.StartedAt)
	assert.WithinDuration(t, time.Now(), *stored.StartedAt, 5*time.Second)
}

func TestTrackerProgressNeverDecreases(t *testing.T) {
	db := openTestDB(t)
	tracker := NewTracker(db)
	task := seedTask(t, db)

	tracker.Progress(context.Background(), task, 60, "Build finished")
	tracker.Progress(context.Background(), task, 30, "Writing site configuration")

	stored := reloadTask(t, db, task.ID)
	assert.Equal(t, 60, stored.Progress)
}

func TestTrackerProgressCapsAtHundred(t *testing.T) {
	db := openTestDB(t)
	tracker := NewTracker(db)
	task := seedTask(t, db)

	tracker.Progress(context.Background(), task, 150, "Over the top")

	stored := reloadTask(t, db, task.ID)
	assert.Equal(t, 100, stored.Progress)
}

func TestTrackerComplete(t *testing.T) {
	db := openTestDB(t)
	tracker := NewTracker(db)
	task := seedTask(t, db)

	tracker.Progress(context.Background(), task, 95, "Configuring domain")
	tracker.Complete(context.Background(), task)

	stored := reloadTask(t, db, task.ID)
	assert.Equal(t, models.TaskStatusCompleted, stored.Status)
	assert.Equal(t, 100, stored.Progress)
	require.NotNil(t, stored.CompletedAt)
	assert.WithinDuration(t, time.Now(), *stored.CompletedAt, 5*time.Second)
}

func TestTrackerFailFreezesProgress(t *testing.T) {
	db := openTestDB(t)
	tracker := NewTracker(db)
	task := seedTask(t, db)

	tracker.Progress(context.Background(), task, 40, "Building site")
	tracker.Fail(context.Background(), task, fmt.Errorf("build exited with status 2"))

	stored := reloadTask(t, db, task.ID)
	assert.Equal(t, models.TaskStatusFailed, stored.Status)
	assert.Equal(t, 40, stored.Progress)
	require.NotNil(t, stored.Error)
	assert.Contains(t, *stored.Error, "build exited")
	require.NotNil(t, stored.CompletedAt)
}

func TestTrackerTerminalStateIsImmutable(t *testing.T) {
	db := openTestDB(t)
	tracker := NewTracker(db)
	task := seedTask(t, db)

	tracker.Progress(context.Background(), task, 40, "Building site")
	tracker.Fail(context.Background(), task, fmt.Errorf("boom"))

	tracker.Progress(context.Background(), task, 95, "Configuring domain")
	tracker.Complete(context.Background(), task)
	tracker.Cancel(context.Background(), task)

	stored := reloadTask(t, db, task.ID)
	assert.Equal(t, models.TaskStatusFailed, stored.Status)
	assert.Equal(t, 40, stored.Progress)
}

func TestTrackerCancel(t *testing.T) {
	db := openTestDB(t)
	tracker := NewTracker(db)
	task := seedTask(t, db)

	tracker.Progress(context.Background(), task, 15, "Reserving site identifier")
	tracker.Cancel(context.Background(), task)

	stored := reloadTask(t, db, task.ID)
	assert.Equal(t, models.TaskStatusCancelled, stored.Status)
	require.NotNil(t, stored.CompletedAt)
}
