package users

import "time"

type MeResponse struct {
	User    UserDTO    `json:"user"`
	Billing BillingDTO `json:"billing"`
	Usage   UsageDTO   `json:"usage"`
	Access  AccessDTO  `json:"access"`
}

/* ---------- USER ---------- */

type UserDTO struct {
	ID         uint   `json:"id"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	OrgName    string `json:"org_name"`
	Role       string `json:"role"`
	IsVerified bool   `json:"is_verified"`
}

/* ---------- BILLING ---------- */

type BillingDTO struct {
	Tier         string           `json:"tier"`
	Status       string           `json:"status"`
	BillingCycle *string          `json:"billing_cycle"`
	Trial        *TrialDTO        `json:"trial"`
	Subscription *SubscriptionDTO `json:"subscription"`
}

type SubscriptionDTO struct {
	StripeCustomerID     *string `json:"stripe_customer_id"`
	StripeSubscriptionID *string `json:"stripe_subscription_id"`
}

type TrialDTO struct {
	EndsAt   *time.Time `json:"ends_at"`
	DaysLeft *int       `json:"days_left"`
}

/* ---------- USAGE ---------- */

type UsageDTO struct {
	CreditsUsed      int64  `json:"credits_used"`
	CreditsLimit     *int64 `json:"credits_limit"` // null = unlimited
	CreditsRemaining *int64 `json:"credits_remaining"`
	Campaigns        int64  `json:"campaigns"`
	MaxCampaigns     int    `json:"max_campaigns"`
}

/* ---------- ACCESS ---------- */

type AccessDTO struct {
	State        string     `json:"state"` // trial|full|limited|locked
	Capabilities []string   `json:"capabilities"`
	Limits       *LimitsDTO `json:"limits,omitempty"`
}

type LimitsDTO struct {
	MonthlyCredits    *int64 `json:"monthly_credits"` // null = unlimited
	MaxCampaigns      int    `json:"max_campaigns"`
	MaxAdsPerCampaign int    `json:"max_ads_per_campaign"`
}
