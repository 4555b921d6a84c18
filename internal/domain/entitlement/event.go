package entitlement

import "time"

// Event types the engine understands. The webhook gateway maps provider event
// names onto these; anything else is acknowledged and dropped before it gets
// here.
const (
	EventCheckoutCompleted   = "checkout_completed"
	EventSubscriptionUpdated = "subscription_updated"
	EventSubscriptionDeleted = "subscription_deleted"
	EventPaymentSucceeded    = "payment_succeeded"
)

// SubscriptionEvent is a provider event after signature verification and
// parsing. Timestamp is the provider's own event creation time and is the
// authoritative ordering key: the engine refuses to apply an event older than
// the state already stored, so a delayed redelivery can never revive stale
// state.
type SubscriptionEvent struct {
	EventID   string
	Type      string
	Timestamp time.Time

	CustomerRef     string
	SubscriptionRef string

	PriceID        string
	ProviderStatus string
	TrialEnd       *time.Time

	// Customer details, present on checkout events. Used only when the
	// customer ref is unknown and an identity has to be provisioned. Never
	// carries a credential.
	CustomerEmail string
	CustomerName  string
	OrgName       string

	// Invoice details, present on payment events.
	InvoiceID  string
	Amount     float64
	Currency   string
	ReceiptURL string
}
