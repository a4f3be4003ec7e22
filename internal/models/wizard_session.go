package models

import "time"

// WizardSession is the source configuration a provisioning run starts from.
// ConfigData is the wizard's structured site-configuration document and is
// treated as an opaque, versioned JSON blob by the pipeline; SiteName and
// BusinessCategory are denormalized by the wizard when the session is saved.
type WizardSession struct {
	ID               string     `gorm:"primaryKey;size:191;column:id" json:"id"`
	UserID           string     `gorm:"index;size:191;column:userId" json:"userId"`
	SiteName         string     `gorm:"size:191;column:siteName" json:"siteName"`
	BusinessCategory string     `gorm:"size:191;column:businessCategory" json:"businessCategory"`
	ConfigData       JSON       `gorm:"type:json;column:configData" json:"configData,omitempty"`
	MediaFiles       JSON       `gorm:"type:json;column:mediaFiles" json:"mediaFiles,omitempty"`
	SiteID           *string    `gorm:"size:191;column:siteId" json:"siteId,omitempty"`
	Deployed         bool       `gorm:"default:false;column:deployed" json:"deployed"`
	DeployedAt       *time.Time `gorm:"column:deployedAt" json:"deployedAt,omitempty"`
	ActiveDomainID   *string    `gorm:"size:191;column:activeDomainId" json:"activeDomainId,omitempty"`
	CreatedAt        time.Time  `gorm:"autoCreateTime;column:createdAt" json:"createdAt"`
	UpdatedAt        time.Time  `gorm:"autoUpdateTime;column:updatedAt" json:"updatedAt"`
}

func (WizardSession) TableName() string {
	return "WizardSession"
}
