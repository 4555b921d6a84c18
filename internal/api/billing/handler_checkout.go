package billing

import (
	"fmt"
	"net/http"

	"adpilot-app/config"
	"adpilot-app/database"
	"adpilot-app/internal/domain/entitlement"
	"adpilot-app/internal/domain/tiers"
	"adpilot-app/internal/domain/users"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stripe/stripe-go/v75"
	portalSession "github.com/stripe/stripe-go/v75/billingportal/session"
	checkoutsession "github.com/stripe/stripe-go/v75/checkout/session"
	customer "github.com/stripe/stripe-go/v75/customer"
)

// Handler owns the checkout-facing billing endpoints. The catalog allow-lists
// price ids; the entitlement store holds the Stripe customer binding.
type Handler struct {
	catalog *tiers.Catalog
	store   entitlement.Store
	log     zerolog.Logger
}

func NewHandler(catalog *tiers.Catalog, store entitlement.Store, logger zerolog.Logger) *Handler {
	return &Handler{
		catalog: catalog,
		store:   store,
		log:     logger.With().Str("component", "billing-api").Logger(),
	}
}

func (h *Handler) CreateCheckoutSession(c *gin.Context) {
	var body struct {
		PriceID string `json:"price_id"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.PriceID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing or invalid price_id"})
		return
	}

	stripe.Key = config.STRIPE_SECRET_KEY

	userID := c.GetUint("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not identified"})
		return
	}

	// allow-list price id against the static catalog
	if _, _, err := h.catalog.Resolve(body.PriceID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown price_id"})
		return
	}

	var user users.User
	if err := database.DB.Where("id = ?", userID).First(&user).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
		return
	}

	if !user.IsVerified {
		c.JSON(http.StatusForbidden, gin.H{"error": "Please verify your email first"})
		return
	}

	rec, err := h.store.GetByUserID(c.Request.Context(), userID)
	if err != nil || rec == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Entitlement record missing"})
		return
	}

	// ensure stripe customer
	if rec.StripeCustomerID == nil || *rec.StripeCustomerID == "" {
		cus, err := customer.New(&stripe.CustomerParams{
			Email: stripe.String(user.Email),
			Name:  stripe.String(user.Name),
			Metadata: map[string]string{
				"user_id": fmt.Sprint(user.ID),
			},
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create Stripe customer"})
			return
		}

		if err := h.store.AttachBillingRefs(c.Request.Context(), rec.ID, cus.ID, nil); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store Stripe customer"})
			return
		}
		rec.StripeCustomerID = stripe.String(cus.ID)
	}

	params := &stripe.CheckoutSessionParams{
		SuccessURL: stripe.String(config.APP_URL + "/account"),
		CancelURL:  stripe.String(config.APP_URL + "/account?canceled=1"),
		Mode:       stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		Customer:   rec.StripeCustomerID,

		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{Price: stripe.String(body.PriceID), Quantity: stripe.Int64(1)},
		},

		ClientReferenceID: stripe.String(fmt.Sprint(user.ID)),

		// Only identifiers; the reconciliation flow never needs a credential
		// transported through event metadata.
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: map[string]string{
				"user_id": fmt.Sprint(user.ID),
			},
		},
	}

	s, err := checkoutsession.New(params)
	if err != nil {
		h.log.Error().Err(err).Uint("user_id", userID).Msg("checkout session creation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create checkout session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": s.URL})
}

func (h *Handler) CreateBillingPortal(c *gin.Context) {
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
	if rec.StripeCustomerID == nil || *rec.StripeCustomerID == "" {
		c.JSON(http.StatusConflict, gin.H{"error": "No Stripe customer yet (subscribe first)"})
		return
	}

	portal, err := portalSession.New(&stripe.BillingPortalSessionParams{
		Customer:  rec.StripeCustomerID,
		ReturnURL: stripe.String(config.APP_URL + "/account"),
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create billing portal session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": portal.URL})
}
