package entitlement

import "errors"

var (
	// ErrDuplicateEvent: the dedup ledger already holds this event id. Callers
	// treat it as success; the provider redelivers on anything else.
	ErrDuplicateEvent = errors.New("provider event already seen")

	// ErrUnknownCustomer: an event referenced a customer we have no entitlement
	// row for and the event type cannot provision one. Data-consistency
	// violation; the event is acknowledged but flagged for an operator.
	ErrUnknownCustomer = errors.New("no entitlement for customer ref")

	// ErrTierResolution: the event's price id has no catalog entry. Never
	// guessed around; surfaced to an operator.
	ErrTierResolution = errors.New("tier resolution failed")

	// ErrProvisioningPartial: the entitlement insert failed after the identity
	// was created; the orphaned identity has been removed again.
	ErrProvisioningPartial = errors.New("provisioning failed after identity creation")

	// ErrPersistenceConflict: a write hit a constraint that a retry with
	// backoff may resolve. Retries never switch write strategy.
	ErrPersistenceConflict = errors.New("persistence conflict")
)
