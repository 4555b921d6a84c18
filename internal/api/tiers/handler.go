package tiers

import (
	"net/http"

	"adpilot-app/config"
	domain "adpilot-app/internal/domain/tiers"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v75"
	"github.com/stripe/stripe-go/v75/price"
)

type tierDTO struct {
	Tier              string `json:"tier"`
	MonthlyCredits    *int64 `json:"monthly_credits"` // null means unlimited
	MaxCampaigns      int    `json:"max_campaigns"`
	MaxAdsPerCampaign int    `json:"max_ads_per_campaign"`
}

// ListTiers exposes the static catalog to the pricing page.
func ListTiers(c *gin.Context) {
	out := make([]tierDTO, 0, 3)
	for _, d := range domain.All() {
		out = append(out, tierDTO{
			Tier:              d.Tier,
			MonthlyCredits:    d.MonthlyCreditQuota,
			MaxCampaigns:      d.MaxCampaigns,
			MaxAdsPerCampaign: d.MaxAdsPerCampaign,
		})
	}
	c.JSON(http.StatusOK, out)
}

// VerifyCatalog checks every configured price id against Stripe: it must
// exist, be active and recurring. Catches a price id pasted from the wrong
// Stripe environment before the webhook path starts rejecting events.
func VerifyCatalog(catalog *domain.Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		stripe.Key = config.STRIPE_SECRET_KEY

		known := map[string]bool{}
		params := &stripe.PriceListParams{}
		params.Active = stripe.Bool(true)
		params.Type = stripe.String("recurring")

		it := price.List(params)
		for it.Next() {
			known[it.Price().ID] = true
		}
		if err := it.Err(); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch Stripe prices"})
			return
		}

		missing := []string{}
		for _, id := range catalog.PriceIDs() {
			if !known[id] {
				missing = append(missing, id)
			}
		}

		if len(missing) > 0 {
			c.JSON(http.StatusConflict, gin.H{
				"status":  "mismatch",
				"missing": missing,
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "checked": len(catalog.PriceIDs())})
	}
}
