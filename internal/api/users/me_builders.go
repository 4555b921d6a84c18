package users

import (
	"time"

	"adpilot-app/internal/domain/access"
	"adpilot-app/internal/domain/entitlement"
)

func BuildBillingDTO(now time.Time, rec *entitlement.Record) BillingDTO {
	if rec == nil {
		return BillingDTO{Tier: "free", Status: entitlement.StatusNone}
	}
	return BillingDTO{
		Tier:         rec.Tier,
		Status:       rec.Status,
		BillingCycle: rec.BillingCycle,
		Trial:        BuildTrialDTO(now, rec.TrialEnd),
		Subscription: BuildSubscriptionDTO(rec),
	}
}

func BuildSubscriptionDTO(rec *entitlement.Record) *SubscriptionDTO {
	if rec.StripeSubscriptionID == nil && rec.StripeCustomerID == nil {
		return nil
	}
	return &SubscriptionDTO{
		StripeCustomerID:     rec.StripeCustomerID,
		StripeSubscriptionID: rec.StripeSubscriptionID,
	}
}

func BuildTrialDTO(now time.Time, end *time.Time) *TrialDTO {
	if end == nil {
		return nil
	}

	d := int(end.Sub(now).Hours() / 24)
	if d < 0 {
		d = 0
	}

	return &TrialDTO{
		EndsAt:   end,
		DaysLeft: &d,
	}
}

func BuildUsageDTO(rec *entitlement.Record, campaignCount int64, policy access.Policy) UsageDTO {
	usage := UsageDTO{Campaigns: campaignCount}

	if rec != nil {
		usage.CreditsUsed = rec.CreditsUsed
		usage.CreditsLimit = rec.CreditsLimit
		if left, bounded := rec.CreditsRemaining(); bounded {
			usage.CreditsRemaining = &left
		}
	}
	if policy.Quota != nil {
		usage.MaxCampaigns = policy.Quota.MaxCampaigns
	}

	return usage
}

func BuildAccessDTO(policy access.Policy) AccessDTO {
	var limits *LimitsDTO
	if policy.Quota != nil {
		limits = &LimitsDTO{
			MonthlyCredits:    policy.Quota.MonthlyCreditQuota,
			MaxCampaigns:      policy.Quota.MaxCampaigns,
			MaxAdsPerCampaign: policy.Quota.MaxAdsPerCampaign,
		}
	}
	return AccessDTO{
		State:        string(policy.State),
		Capabilities: policy.Capabilities,
		Limits:       limits,
	}
}
