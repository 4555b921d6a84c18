package entitlement

import (
	"context"
	"testing"

	"adpilot-app/internal/domain/tiers"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedQuotaRecord(store *fakeStore, userID uint, tier string, used int64, limit *int64) *Record {
	return store.add(&Record{
		UserID:       userID,
		Tier:         tier,
		Status:       StatusActive,
		CreditsUsed:  used,
		CreditsLimit: limit,
	})
}

func limitOf(n int64) *int64 { return &n }

func TestTryConsumeCredits(t *testing.T) {
	tests := []struct {
		name       string
		tier       string
		used       int64
		limit      *int64
		wantAllow  bool
		wantReason DenyReason
	}{
		{name: "within quota", tier: tiers.TierFree, used: 4, limit: limitOf(5), wantAllow: true},
		{name: "at quota", tier: tiers.TierFree, used: 5, limit: limitOf(5), wantReason: DenyQuotaExceeded},
		{name: "over quota", tier: tiers.TierFree, used: 7, limit: limitOf(5), wantReason: DenyQuotaExceeded},
		{name: "unlimited", tier: tiers.TierPro, used: 100000, limit: nil, wantAllow: true},
		{name: "fresh starter", tier: tiers.TierStarter, used: 0, limit: limitOf(50), wantAllow: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore()
			seedQuotaRecord(store, 1, tt.tier, tt.used, tt.limit)
			g := NewQuotaGateway(store, &fakeCounters{}, zerolog.Nop())

			d, err := g.TryConsume(context.Background(), 1, ResourceCredit, 0)
			require.NoError(t, err)
			assert.Equal(t, tt.wantAllow, d.Allowed)
			if !tt.wantAllow {
				assert.Equal(t, tt.wantReason, d.Reason)
			}
		})
	}
}

func TestTryConsumeCampaignsAndAds(t *testing.T) {
	tests := []struct {
		name      string
		tier      string
		kind      ResourceKind
		campaigns int64
		ads       int64
		wantAllow bool
	}{
		{name: "free under campaign cap", tier: tiers.TierFree, kind: ResourceCampaign, campaigns: 0, wantAllow: true},
		{name: "free at campaign cap", tier: tiers.TierFree, kind: ResourceCampaign, campaigns: 1},
		{name: "starter under campaign cap", tier: tiers.TierStarter, kind: ResourceCampaign, campaigns: 9, wantAllow: true},
		{name: "starter at campaign cap", tier: tiers.TierStarter, kind: ResourceCampaign, campaigns: 10},
		{name: "free under ad cap", tier: tiers.TierFree, kind: ResourceAd, ads: 4, wantAllow: true},
		{name: "free at ad cap", tier: tiers.TierFree, kind: ResourceAd, ads: 5},
		{name: "pro at free-sized counts", tier: tiers.TierPro, kind: ResourceAd, ads: 5, wantAllow: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore()
			desc, ok := tiers.Describe(tt.tier)
			require.True(t, ok)
			seedQuotaRecord(store, 1, tt.tier, 0, desc.MonthlyCreditQuota)
			counters := &fakeCounters{campaigns: tt.campaigns, ads: tt.ads}
			g := NewQuotaGateway(store, counters, zerolog.Nop())

			d, err := g.TryConsume(context.Background(), 1, tt.kind, 42)
			require.NoError(t, err)
			assert.Equal(t, tt.wantAllow, d.Allowed)
			if !tt.wantAllow {
				assert.Equal(t, DenyLimitReached, d.Reason)
			}
		})
	}
}

func TestTryConsumeCorruptState(t *testing.T) {
	t.Run("missing record denies, never allows", func(t *testing.T) {
		g := NewQuotaGateway(newFakeStore(), &fakeCounters{}, zerolog.Nop())
		d, err := g.TryConsume(context.Background(), 99, ResourceCredit, 0)
		require.NoError(t, err)
		assert.False(t, d.Allowed)
		assert.Equal(t, DenyConfigurationError, d.Reason)
	})

	t.Run("tier outside the catalog denies", func(t *testing.T) {
		store := newFakeStore()
		seedQuotaRecord(store, 1, "enterprise", 0, nil)
		g := NewQuotaGateway(store, &fakeCounters{}, zerolog.Nop())

		d, err := g.TryConsume(context.Background(), 1, ResourceCredit, 0)
		require.NoError(t, err)
		assert.False(t, d.Allowed)
		assert.Equal(t, DenyConfigurationError, d.Reason)
	})
}

func TestConsumeCredit(t *testing.T) {
	store := newFakeStore()
	seedQuotaRecord(store, 1, tiers.TierPro, 3, nil)
	g := NewQuotaGateway(store, &fakeCounters{}, zerolog.Nop())

	require.NoError(t, g.ConsumeCredit(context.Background(), 1))
	require.NoError(t, g.ConsumeCredit(context.Background(), 1))

	rec, _ := store.GetByUserID(context.Background(), 1)
	assert.Equal(t, int64(5), rec.CreditsUsed)

	assert.Error(t, g.ConsumeCredit(context.Background(), 404))
}

func TestNormalizeStatus(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"active", StatusActive},
		{"trialing", StatusTrialing},
		{"past_due", StatusPastDue},
		{"unpaid", StatusPastDue},
		{"canceled", StatusCanceled},
		{"incomplete", StatusIncomplete},
		{"incomplete_expired", StatusIncompleteExpired},
		{"", StatusNone},
		{" active ", StatusActive},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeStatus(tt.in), "input %q", tt.in)
	}
}

func TestLiveStatus(t *testing.T) {
	assert.True(t, LiveStatus(StatusActive))
	assert.True(t, LiveStatus(StatusTrialing))
	assert.True(t, LiveStatus(StatusPastDue))
	assert.False(t, LiveStatus(StatusCanceled))
	assert.False(t, LiveStatus(StatusIncomplete))
	assert.False(t, LiveStatus(StatusIncompleteExpired))
	assert.False(t, LiveStatus(StatusNone))
}
