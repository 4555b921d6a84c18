package tiers

import (
	"errors"
	"fmt"
)

// ErrUnknownPrice is returned when a provider price id has no catalog entry.
// The caller must surface it to an operator; guessing a tier here would let a
// misconfigured price silently grant (or strip) entitlements.
var ErrUnknownPrice = errors.New("price id not in tier catalog")

// PriceRef binds one provider price id to a tier and billing cycle.
type PriceRef struct {
	PriceID string
	Tier    string
	Cycle   string
}

// Catalog resolves provider price ids to tier descriptors. It is built once at
// startup from configuration and never mutated afterwards.
type Catalog struct {
	byPrice map[string]PriceRef
}

// NewCatalog builds the resolver from the configured price refs. Duplicate or
// empty price ids and unknown tiers are rejected so a bad deployment fails at
// boot instead of on the first webhook.
func NewCatalog(refs []PriceRef) (*Catalog, error) {
	byPrice := make(map[string]PriceRef, len(refs))
	for _, ref := range refs {
		if ref.PriceID == "" {
			return nil, fmt.Errorf("empty price id for tier %q", ref.Tier)
		}
		if NormalizeTier(ref.Tier) == "" || ref.Tier == TierFree {
			return nil, fmt.Errorf("price %s: invalid tier %q", ref.PriceID, ref.Tier)
		}
		if ref.Cycle != CycleMonthly && ref.Cycle != CycleYearly {
			return nil, fmt.Errorf("price %s: invalid billing cycle %q", ref.PriceID, ref.Cycle)
		}
		if _, dup := byPrice[ref.PriceID]; dup {
			return nil, fmt.Errorf("duplicate price id %s", ref.PriceID)
		}
		byPrice[ref.PriceID] = ref
	}
	return &Catalog{byPrice: byPrice}, nil
}

// Resolve maps a provider price id to its tier descriptor and billing cycle.
func (c *Catalog) Resolve(priceID string) (Descriptor, string, error) {
	ref, ok := c.byPrice[priceID]
	if !ok {
		return Descriptor{}, "", fmt.Errorf("%w: %s", ErrUnknownPrice, priceID)
	}
	d, ok := Describe(ref.Tier)
	if !ok {
		return Descriptor{}, "", fmt.Errorf("%w: %s maps to unknown tier %q", ErrUnknownPrice, priceID, ref.Tier)
	}
	return d, ref.Cycle, nil
}

// PriceIDs returns the configured price ids (for the admin catalog check).
func (c *Catalog) PriceIDs() []string {
	out := make([]string, 0, len(c.byPrice))
	for id := range c.byPrice {
		out = append(out, id)
	}
	return out
}
