package models

import "time"

// Domain maps a public hostname to one container. Custom domains are always
// accompanied by a temporary generated subdomain so the owner has a working
// endpoint while DNS verification is pending.
type Domain struct {
	ID                    string              `gorm:"primaryKey;size:191;column:id" json:"id"`
	SessionID             string              `gorm:"index;size:191;column:sessionId" json:"sessionId"`
	UserID                string              `gorm:"index;size:191;column:userId" json:"userId"`
	Hostname              string              `gorm:"uniqueIndex;size:191;column:hostname" json:"hostname"`
	Type                  DomainType          `gorm:"size:191;default:GENERATED;column:type" json:"type"`
	IsTemporary           bool                `gorm:"default:false;column:isTemporary" json:"isTemporary"`
	Status                DomainStatus        `gorm:"size:191;default:PENDING;column:status" json:"status"`
	VerificationToken     *string             `gorm:"size:191;column:verificationToken" json:"verificationToken,omitempty"`
	VerificationMethod    *VerificationMethod `gorm:"size:191;column:verificationMethod" json:"verificationMethod,omitempty"`
	VerificationExpiresAt *time.Time          `gorm:"column:verificationExpiresAt" json:"verificationExpiresAt,omitempty"`
	VerifiedAt            *time.Time          `gorm:"column:verifiedAt" json:"verifiedAt,omitempty"`
	TLSStatus             *TLSStatus          `gorm:"size:191;column:tlsStatus" json:"tlsStatus,omitempty"`
	TLSExpiresAt          *time.Time          `gorm:"column:tlsExpiresAt" json:"tlsExpiresAt,omitempty"`
	ConfigPath            *string             `gorm:"size:191;column:configPath" json:"configPath,omitempty"`
	ContainerName         string              `gorm:"size:191;column:containerName" json:"containerName"`
	ActivatedAt           *time.Time          `gorm:"column:activatedAt" json:"activatedAt,omitempty"`
	LastCheckedAt         *time.Time          `gorm:"column:lastCheckedAt" json:"lastCheckedAt,omitempty"`
	Error                 *string             `gorm:"type:text;column:error" json:"error,omitempty"`
	RetryCount            int                 `gorm:"default:0;column:retryCount" json:"retryCount"`
	CreatedAt             time.Time           `gorm:"autoCreateTime;column:createdAt" json:"createdAt"`
	UpdatedAt             time.Time           `gorm:"autoUpdateTime;column:updatedAt" json:"updatedAt"`
}

func (Domain) TableName() string {
	return "Domain"
}

// IsVerified reports whether ownership verification has completed
func (d *Domain) IsVerified() bool {
	return d.VerifiedAt != nil
}
