package generator

import (
	"context"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/sitelaunch/sitelaunch/api/internal/models"
	"github.com/sitelaunch/sitelaunch/api/internal/redis"
)

// Tracker persists GenerationTask state transitions. It enforces the task
// state machine: progress never decreases within a run, and a task that
// reached COMPLETED, FAILED or CANCELLED never changes again.
type Tracker struct {
	db *gorm.DB
}

// NewTracker creates a tracker
func NewTracker(db *gorm.DB) *Tracker {
	return &Tracker{db: db}
}

// Progress moves the task forward. The first non-zero update flips the task
// to IN_PROGRESS and stamps startedAt. Updates against a terminal task are
// dropped.
func (t *Tracker) Progress(ctx context.Context, task *models.GenerationTask, progress int, step string) {
	if task.Status.IsTerminal() {
		return
	}
	if progress < task.Progress {
		progress = task.Progress
	}
	if progress > 100 {
		progress = 100
	}

	updates := map[string]interface{}{
		"progress":    progress,
		"currentStep": step,
	}
	if task.Status == models.TaskStatusPending {
		now := time.Now()
		updates["status"] = models.TaskStatusInProgress
		updates["startedAt"] = now
		task.Status = models.TaskStatusInProgress
		task.StartedAt = &now
	}
	task.Progress = progress
	task.CurrentStep = step

	t.persist(ctx, task, updates)
	t.publish(ctx, task)
}

// Complete marks the task COMPLETED at 100%
func (t *Tracker) Complete(ctx context.Context, task *models.GenerationTask) {
	if task.Status.IsTerminal() {
		return
	}

	now := time.Now()
	task.Status = models.TaskStatusCompleted
	task.Progress = 100
	task.CurrentStep = "Completed"
	task.CompletedAt = &now

	t.persist(ctx, task, map[string]interface{}{
		"status":      task.Status,
		"progress":    task.Progress,
		"currentStep": task.CurrentStep,
		"completedAt": now,
		"siteId":      task.SiteID,
		"port":        task.Port,
		"siteUrl":     task.SiteURL,
	})
	t.publish(ctx, task)
}

// Fail marks the task FAILED, freezing progress at its last checkpoint
func (t *Tracker) Fail(ctx context.Context, task *models.GenerationTask, err error) {
	if task.Status.IsTerminal() {
		return
	}

	now := time.Now()
	message := err.Error()
	task.Status = models.TaskStatusFailed
	task.Error = &message
	task.CompletedAt = &now

	t.persist(ctx, task, map[string]interface{}{
		"status":      task.Status,
		"error":       message,
		"completedAt": now,
	})
	t.publish(ctx, task)
}

// Cancel marks the task CANCELLED. Nothing triggers this today; the
// pipeline checks its context between steps so external cancellation can
// be wired without touching the state machine.
func (t *Tracker) Cancel(ctx context.Context, task *models.GenerationTask) {
	if task.Status.IsTerminal() {
		return
	}

	now := time.Now()
	task.Status = models.TaskStatusCancelled
	task.CompletedAt = &now

	t.persist(ctx, task, map[string]interface{}{
		"status":      task.Status,
		"completedAt": now,
	})
	t.publish(ctx, task)
}

func (t *Tracker) persist(ctx context.Context, task *models.GenerationTask, updates map[string]interface{}) {
	if err := t.db.WithContext(ctx).Model(&models.GenerationTask{}).
		Where("id = ?", task.ID).
		Updates(updates).Error; err != nil {
		// Polling clients read the DB record; log loudly but keep the
		// pipeline running on its in-memory copy.
		log.Printf("[Generator] Failed to persist task %s: %v", task.ID, err)
	}
}

func (t *Tracker) publish(ctx context.Context, task *models.GenerationTask) {
	event := redis.TaskProgressEvent{
		TaskID:      task.ID,
		Status:      string(task.Status),
		Progress:    task.Progress,
		CurrentStep: task.CurrentStep,
	}
	if task.Error != nil {
		event.Error = *task.Error
	}
	if task.SiteURL != nil {
		event.SiteURL = *task.SiteURL
	}
	if err := redis.PublishTaskProgress(ctx, event); err != nil {
		log.Printf("[Generator] Failed to publish progress for task %s: %v", task.ID, err)
	}
}
