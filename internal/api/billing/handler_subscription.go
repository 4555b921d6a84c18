package billing

import (
	"net/http"

	"adpilot-app/config"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v75"
	"github.com/stripe/stripe-go/v75/subscription"
)

// CancelSubscription flags the subscription to end at the period boundary.
// The local entitlement only changes when the customer.subscription.deleted
// event arrives; nothing is inferred here.
func (h *Handler) CancelSubscription(c *gin.Context) {
	stripe.Key = config.STRIPE_SECRET_KEY

	userID := c.GetUint("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not identified"})
		return
	}

	rec, err := h.store.GetByUserID(c.Request.Context(), userID)
	if err != nil || rec == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
		return
	}
	if rec.StripeSubscriptionID == nil || *rec.StripeSubscriptionID == "" {
		c.JSON(http.StatusConflict, gin.H{"error": "No active subscription"})
		return
	}

	_, err = subscription.Update(*rec.StripeSubscriptionID, &stripe.SubscriptionParams{
		CancelAtPeriodEnd: stripe.Bool(true),
	})
	if err != nil {
		h.log.Error().Err(err).Uint("user_id", userID).Msg("cancel at period end failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to cancel subscription"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Subscription will cancel at the end of the current period"})
}

// ChangePlan swaps the subscription's price. The entitlement follows via the
// customer.subscription.updated webhook, same as any other provider change.
func (h *Handler) ChangePlan(c *gin.Context) {
	var body struct {
		PriceID string `json:"price_id"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.PriceID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing or invalid price_id"})
		return
	}

	stripe.Key = config.STRIPE_SECRET_KEY

	if _, _, err := h.catalog.Resolve(body.PriceID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown price_id"})
		return
	}

	userID := c.GetUint("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not identified"})
		return
	}

	rec, err := h.store.GetByUserID(c.Request.Context(), userID)
	if err != nil || rec == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
		return
	}
	if rec.StripeSubscriptionID == nil || *rec.StripeSubscriptionID == "" {
		c.JSON(http.StatusConflict, gin.H{"error": "No active subscription to change"})
		return
	}

	sub, err := subscription.Get(*rec.StripeSubscriptionID, nil)
	if err != nil || sub.Items == nil || len(sub.Items.Data) == 0 {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load subscription"})
		return
	}

	_, err = subscription.Update(sub.ID, &stripe.SubscriptionParams{
		Items: []*stripe.SubscriptionItemsParams{
			{
				ID:    stripe.String(sub.Items.Data[0].ID),
				Price: stripe.String(body.PriceID),
			},
		},
		ProrationBehavior: stripe.String("create_prorations"),
	})
	if err != nil {
		h.log.Error().Err(err).Uint("user_id", userID).Msg("plan change failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to change plan"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Plan change requested"})
}
