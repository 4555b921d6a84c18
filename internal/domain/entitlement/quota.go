package entitlement

import (
	"context"
	"fmt"

	"adpilot-app/internal/domain/tiers"

	"github.com/rs/zerolog"
)

// ResourceKind names a quota dimension.
type ResourceKind string

const (
	ResourceCredit   ResourceKind = "credit"
	ResourceCampaign ResourceKind = "campaign"
	ResourceAd       ResourceKind = "ad"
)

// DenyReason distinguishes ordinary user-visible denials from corrupt state.
type DenyReason string

const (
	DenyQuotaExceeded      DenyReason = "quota_exceeded"
	DenyLimitReached       DenyReason = "limit_reached"
	DenyConfigurationError DenyReason = "configuration_error"
)

type Decision struct {
	Allowed bool
	Reason  DenyReason
}

func allow() Decision            { return Decision{Allowed: true} }
func deny(r DenyReason) Decision { return Decision{Reason: r} }

// QuotaGateway is the synchronous check resource-creation call sites run
// before proceeding. For credits it is advisory: the caller consumes the
// credit only after its own operation succeeded, accepting a slack of one per
// concurrent pair in exchange for simplicity.
type QuotaGateway struct {
	store    Store
	counters ResourceCounter
	log      zerolog.Logger
}

func NewQuotaGateway(store Store, counters ResourceCounter, logger zerolog.Logger) *QuotaGateway {
	return &QuotaGateway{
		store:    store,
		counters: counters,
		log:      logger.With().Str("component", "quota-gateway").Logger(),
	}
}

// GetEntitlement returns the record for an identity; (nil, nil) when absent.
func (g *QuotaGateway) GetEntitlement(ctx context.Context, userID uint) (*Record, error) {
	return g.store.GetByUserID(ctx, userID)
}

// TryConsume checks one resource dimension. scopeID is the campaign id for
// ResourceAd and ignored otherwise. A missing record or a tier outside the
// catalog is corrupt state: deny, never silently allow.
func (g *QuotaGateway) TryConsume(ctx context.Context, userID uint, kind ResourceKind, scopeID uint) (Decision, error) {
	rec, err := g.store.GetByUserID(ctx, userID)
	if err != nil {
		return Decision{}, fmt.Errorf("load entitlement for user %d: %w", userID, err)
	}
	if rec == nil {
		g.log.Error().Uint("user_id", userID).Msg("quota check against missing entitlement record")
		return deny(DenyConfigurationError), nil
	}

	desc, ok := tiers.Describe(rec.Tier)
	if !ok {
		g.log.Error().Uint("user_id", userID).Str("tier", rec.Tier).Msg("quota check against unmapped tier")
		return deny(DenyConfigurationError), nil
	}

	switch kind {
	case ResourceCredit:
		if rec.CreditsLimit == nil {
			return allow(), nil
		}
		if rec.CreditsUsed >= *rec.CreditsLimit {
			return deny(DenyQuotaExceeded), nil
		}
		return allow(), nil

	case ResourceCampaign:
		count, err := g.counters.CountCampaigns(ctx, userID)
		if err != nil {
			return Decision{}, fmt.Errorf("count campaigns for user %d: %w", userID, err)
		}
		if count >= int64(desc.MaxCampaigns) {
			return deny(DenyLimitReached), nil
		}
		return allow(), nil

	case ResourceAd:
		count, err := g.counters.CountAds(ctx, scopeID)
		if err != nil {
			return Decision{}, fmt.Errorf("count ads in campaign %d: %w", scopeID, err)
		}
		if count >= int64(desc.MaxAdsPerCampaign) {
			return deny(DenyLimitReached), nil
		}
		return allow(), nil

	default:
		return Decision{}, fmt.Errorf("unknown resource kind %q", kind)
	}
}

// ConsumeCredit durably records one consumed credit after the caller's own
// operation succeeded. Unlimited records still count usage; only the ceiling
// is absent.
func (g *QuotaGateway) ConsumeCredit(ctx context.Context, userID uint) error {
	return g.store.IncrementCreditsUsed(ctx, userID)
}
