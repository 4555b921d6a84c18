package campaigns

import (
	"time"

	"adpilot-app/internal/domain/users"
)

// Ad platforms a campaign can target. Publishing itself happens elsewhere;
// the value only shapes generation prompts and validation here.
const (
	PlatformFacebook  = "facebook"
	PlatformInstagram = "instagram"
	PlatformGoogle    = "google"
	PlatformLinkedIn  = "linkedin"
)

type Campaign struct {
	ID     uint `gorm:"primaryKey"`
	UserID uint `gorm:"not null;index:idx_campaigns_user_id"`
	User   users.User

	Name        string `gorm:"not null"`
	Product     string
	Audience    string
	Platform    string `gorm:"type:varchar(20);not null;default:'facebook'"`
	Description string `gorm:"type:text"`

	Ads []Ad `gorm:"constraint:OnDelete:CASCADE"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

type Ad struct {
	ID         uint `gorm:"primaryKey"`
	CampaignID uint `gorm:"not null;index:idx_ads_campaign_id"`

	Headline string
	Body     string `gorm:"type:text"`
	Tone     string `gorm:"type:varchar(30)"`

	// Last generator output applied to this ad, if any.
	GeneratedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}
