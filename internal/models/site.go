package models

import "time"

// Site is the durable record of a provisioned site. Its ID is the slug used
// as the external key for the config directory, the generated output, the
// container image and (by default) the generated domain.
type Site struct {
	ID            string    `gorm:"primaryKey;size:191;column:id" json:"id"`
	SessionID     string    `gorm:"index;size:191;column:sessionId" json:"sessionId"`
	UserID        string    `gorm:"index;size:191;column:userId" json:"userId"`
	Name          string    `gorm:"size:191;column:name" json:"name"`
	Port          int       `gorm:"default:0;column:port" json:"port"`
	URL           string    `gorm:"type:text;column:url" json:"url"`
	ContainerName string    `gorm:"size:191;column:containerName" json:"containerName"`
	CreatedAt     time.Time `gorm:"autoCreateTime;column:createdAt" json:"createdAt"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime;column:updatedAt" json:"updatedAt"`
}

func (Site) TableName() string {
	return "Site"
}
