package entitlement

import "time"

// Subscription status values mirrored from the billing provider. Transitions
// happen only in response to provider events; nothing in this app infers one.
const (
	StatusNone              = "none"
	StatusTrialing          = "trialing"
	StatusActive            = "active"
	StatusPastDue           = "past_due"
	StatusCanceled          = "canceled"
	StatusIncomplete        = "incomplete"
	StatusIncompleteExpired = "incomplete_expired"
)

// Record is the persisted statement of what a user is currently entitled to.
// One row per user; never hard-deleted (cancellation floors it to free/canceled).
//
// CreditsLimit is always recomputed from the tier catalog on write, never set
// independently, so it cannot drift from the tier. nil means unlimited.
type Record struct {
	ID     uint `gorm:"primaryKey"`
	UserID uint `gorm:"not null;uniqueIndex:idx_entitlements_user_id"`

	Tier         string  `gorm:"type:varchar(20);not null;default:'free'"`
	Status       string  `gorm:"type:varchar(30);not null;default:'none'"`
	BillingCycle *string `gorm:"type:varchar(10)"`

	CreditsUsed  int64  `gorm:"not null;default:0"`
	CreditsLimit *int64 `gorm:"column:credits_limit"`

	TrialEnd *time.Time `gorm:"column:trial_end"`

	StripeCustomerID     *string `gorm:"column:stripe_customer_id;uniqueIndex:idx_entitlements_stripe_customer_id"`
	StripeSubscriptionID *string `gorm:"column:stripe_subscription_id;uniqueIndex:idx_entitlements_stripe_subscription_id"`

	CreatedAt time.Time
	// UpdatedAt carries the provider event timestamp of the last applied event,
	// not the wall clock of the write. It is the ordering key for stale-event
	// rejection, so gorm must not auto-touch it.
	UpdatedAt time.Time `gorm:"autoUpdateTime:false"`
}

func (Record) TableName() string { return "entitlements" }

// Unlimited reports whether the record has no credit ceiling.
func (r *Record) Unlimited() bool { return r.CreditsLimit == nil }

// CreditsRemaining returns the remaining credits and false when unlimited.
func (r *Record) CreditsRemaining() (int64, bool) {
	if r.CreditsLimit == nil {
		return 0, false
	}
	left := *r.CreditsLimit - r.CreditsUsed
	if left < 0 {
		left = 0
	}
	return left, true
}
