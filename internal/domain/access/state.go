package access

import (
	"time"

	"adpilot-app/internal/domain/entitlement"
	"adpilot-app/internal/domain/tiers"
)

// Effective access for UI/product: trial|full|limited|locked
func ComputeEffectiveAccessState(now time.Time, rec *entitlement.Record) AccessState {
	if rec == nil {
		return AccessLocked
	}

	switch rec.Status {
	case entitlement.StatusTrialing:
		if rec.TrialEnd != nil && now.After(*rec.TrialEnd) {
			// Trial window elapsed but no webhook landed yet
			return AccessLimited
		}
		return AccessTrial

	case entitlement.StatusActive:
		if rec.Tier == tiers.TierFree {
			return AccessLimited
		}
		return AccessFull

	case entitlement.StatusPastDue:
		// Grace period: keep working features, surface the payment problem
		return AccessLimited

	case entitlement.StatusNone, entitlement.StatusCanceled:
		// Free tier is the floor, not a lockout
		return AccessLimited

	default:
		return AccessLocked
	}
}
