package tiers

import "strings"

// Tier constants (single source of truth)
const (
	TierFree    = "free"
	TierStarter = "starter"
	TierPro     = "pro"
)

// Billing cycle values derived from the price id a subscription carries.
const (
	CycleMonthly = "monthly"
	CycleYearly  = "yearly"
)

// Descriptor holds the quota numbers for one tier. MonthlyCreditQuota == nil
// means no credit ceiling at all; it is never encoded as a large number.
type Descriptor struct {
	Tier               string
	MonthlyCreditQuota *int64
	MaxCampaigns       int
	MaxAdsPerCampaign  int
}

// Unlimited reports whether this tier has no credit ceiling.
func (d Descriptor) Unlimited() bool {
	return d.MonthlyCreditQuota == nil
}

func NormalizeTier(tier string) string {
	switch strings.ToLower(strings.TrimSpace(tier)) {
	case TierStarter:
		return TierStarter
	case TierPro:
		return TierPro
	case TierFree:
		return TierFree
	default:
		return ""
	}
}

func quota(n int64) *int64 { return &n }

var descriptors = map[string]Descriptor{
	TierFree: {
		Tier:               TierFree,
		MonthlyCreditQuota: quota(5),
		MaxCampaigns:       1,
		MaxAdsPerCampaign:  5,
	},
	TierStarter: {
		Tier:               TierStarter,
		MonthlyCreditQuota: quota(50),
		MaxCampaigns:       10,
		MaxAdsPerCampaign:  20,
	},
	TierPro: {
		Tier:               TierPro,
		MonthlyCreditQuota: nil, // unlimited credits
		MaxCampaigns:       50,
		MaxAdsPerCampaign:  100,
	},
}

// Describe returns the descriptor for a tier name. The second return is false
// for anything outside the catalog; callers must treat that as misconfiguration,
// never as "free".
func Describe(tier string) (Descriptor, bool) {
	d, ok := descriptors[NormalizeTier(tier)]
	return d, ok
}

// All returns the catalog in display order.
func All() []Descriptor {
	return []Descriptor{descriptors[TierFree], descriptors[TierStarter], descriptors[TierPro]}
}
