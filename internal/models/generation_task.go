package models

import "time"

// GenerationTask tracks one provisioning pipeline run. It is created PENDING
// when generation is requested, mutated only by the pipeline that owns it,
// and becomes immutable once it reaches a terminal status.
type GenerationTask struct {
	ID          string     `gorm:"primaryKey;size:191;column:id" json:"id"`
	UserID      string     `gorm:"index;size:191;column:userId" json:"userId"`
	SessionID   string     `gorm:"index;size:191;column:sessionId" json:"sessionId"`
	SiteID      *string    `gorm:"size:191;column:siteId" json:"siteId,omitempty"`
	Port        *int       `gorm:"column:port" json:"port,omitempty"`
	SiteURL     *string    `gorm:"type:text;column:siteUrl" json:"siteUrl,omitempty"`
	Status      TaskStatus `gorm:"size:191;default:PENDING;column:status" json:"status"`
	Progress    int        `gorm:"default:0;column:progress" json:"progress"`
	CurrentStep string     `gorm:"size:191;column:currentStep" json:"currentStep"`
	Error       *string    `gorm:"type:text;column:error" json:"error,omitempty"`
	StartedAt   *time.Time `gorm:"column:startedAt" json:"startedAt,omitempty"`
	CompletedAt *time.Time `gorm:"column:completedAt" json:"completedAt,omitempty"`
	CreatedAt   time.Time  `gorm:"autoCreateTime;column:createdAt" json:"createdAt"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime;column:updatedAt" json:"updatedAt"`
}

func (GenerationTask) TableName() string {
	return "GenerationTask"
}
