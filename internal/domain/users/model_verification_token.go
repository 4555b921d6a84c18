package users

import "time"

// Token types. Setup tokens are minted by the identity provisioner when a
// checkout creates an account; the others come from the auth flows.
const (
	TokenTypeVerifyEmail   = "verify_email"
	TokenTypePasswordReset = "password_reset"
	TokenTypePasswordSetup = "password_setup"
)

type VerificationToken struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    uint   `gorm:"uniqueIndex"`
	User      User   `gorm:"constraint:OnDelete:CASCADE"`
	Token     string `gorm:"uniqueIndex"`
	Type      string `gorm:"index"`
	ExpiresAt time.Time
	CreatedAt time.Time
}
