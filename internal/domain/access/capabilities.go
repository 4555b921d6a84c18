package access

import "adpilot-app/internal/domain/tiers"

func CapabilitiesFor(state AccessState, tier string) []string {
	if state == AccessLocked {
		return []string{}
	}

	// limited keeps the working set; billing-sensitive extras drop off
	if state == AccessLimited {
		return []string{"campaigns", "ads", "generate"}
	}

	// trial and full: tier-based
	switch tier {
	case tiers.TierStarter:
		return []string{"campaigns", "ads", "generate", "billing_portal"}
	case tiers.TierPro:
		return []string{"campaigns", "ads", "generate", "billing_portal", "unlimited_credits"}
	default:
		return []string{"campaigns", "ads", "generate"}
	}
}
