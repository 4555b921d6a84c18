package entitlement

import (
	"context"
	"time"

	"adpilot-app/internal/domain/billing"
	"adpilot-app/internal/domain/users"
)

// Store is the persistence contract for entitlement rows. Lookups return
// (nil, nil) when no row exists. Implementations must provide atomic
// single-row updates; the engine relies on that instead of app-level locks.
type Store interface {
	GetByUserID(ctx context.Context, userID uint) (*Record, error)
	GetByCustomerRef(ctx context.Context, customerRef string) (*Record, error)
	Create(ctx context.Context, rec *Record) error

	// ApplyIfNewer applies updates to one record only when the stored
	// updated_at is not newer than eventTime, and stamps updated_at with
	// eventTime. Returns false when the record already carries newer state.
	ApplyIfNewer(ctx context.Context, recordID uint, eventTime time.Time, updates map[string]interface{}) (bool, error)

	// AttachBillingRefs binds provider customer/subscription refs to an
	// existing record without touching the ordering timestamp.
	AttachBillingRefs(ctx context.Context, recordID uint, customerRef string, subscriptionRef *string) error

	// IncrementCreditsUsed is the durable post-success credit consumption:
	// an atomic credits_used = credits_used + 1.
	IncrementCreditsUsed(ctx context.Context, userID uint) error
}

// EventLedger is the webhook dedup table. Record returns ErrDuplicateEvent
// when the event id has been durably seen before.
type EventLedger interface {
	Record(ctx context.Context, ev *billing.ProviderEvent) error
	MarkProcessed(ctx context.Context, provider, eventID string) error
	MarkFailed(ctx context.Context, provider, eventID string, procErr error) error
}

// IdentityStore is what the provisioner needs from the login-identity side.
// It is a separate store from the entitlement rows: the two writes are not one
// transaction, which is why provisioning has a compensating delete.
type IdentityStore interface {
	// FindByEmail matches case-insensitively; (nil, nil) when absent.
	FindByEmail(ctx context.Context, email string) (*users.User, error)
	Create(ctx context.Context, u *users.User) error
	Delete(ctx context.Context, userID uint) error
	CreateToken(ctx context.Context, userID uint, token, tokenType string, expiresAt time.Time) error
}

// ResourceCounter computes per-scope resource counts on demand; nothing is
// cached, the count at check time is the truth.
type ResourceCounter interface {
	CountCampaigns(ctx context.Context, userID uint) (int64, error)
	CountAds(ctx context.Context, campaignID uint) (int64, error)
}

// PaymentRecorder appends payment history. Duplicate invoice ids are silently
// dropped so a redelivered payment event stays a no-op.
type PaymentRecorder interface {
	RecordPayment(ctx context.Context, p *billing.Payment) error
}
