package access

import (
	"time"

	"adpilot-app/internal/domain/entitlement"
	"adpilot-app/internal/domain/tiers"
)

type Policy struct {
	State        AccessState
	Capabilities []string
	Quota        *tiers.Descriptor
}

func ComputePolicy(now time.Time, rec *entitlement.Record) Policy {
	state := ComputeEffectiveAccessState(now, rec)

	tier := tiers.TierFree
	if rec != nil {
		tier = rec.Tier
	}

	var quota *tiers.Descriptor
	if desc, ok := tiers.Describe(tier); ok {
		quota = &desc
	}

	return Policy{
		State:        state,
		Capabilities: CapabilitiesFor(state, tier),
		Quota:        quota,
	}
}
