package users

import (
	"time"
)

type User struct {
	ID           uint `gorm:"primaryKey"`
	Name         string
	OrgName      string
	Email        string  `gorm:"not null;uniqueIndex:idx_users_email"`
	Password     *string `gorm:""`
	AuthProvider string  `gorm:"type:varchar(20);not null;default:'local'"`
	GoogleSub    *string `gorm:"uniqueIndex:idx_users_google_sub"`
	Role         string
	IsVerified   bool

	// Set for identities created by the provisioner on first paid checkout:
	// the stored password is a random unusable hash until the user resets it.
	MustResetPassword bool `gorm:"column:must_reset_password;not null;default:false"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
