package billing

import (
	"time"

	"adpilot-app/internal/domain/users"
)

type Payment struct {
	ID                   uint `gorm:"primaryKey"`
	UserID               uint
	User                 users.User
	Tier                 string `gorm:"type:varchar(20)"`
	StripeInvoiceID      string `gorm:"uniqueIndex"`
	StripeSubscriptionID *string
	Amount               float64
	Currency             string `gorm:"type:varchar(3)"`
	Status               string
	ReceiptURL           *string
	CreatedAt            time.Time
}
