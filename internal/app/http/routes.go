package routes

import (
	adminapi "adpilot-app/internal/api/admin"
	authapi "adpilot-app/internal/api/auth"
	billingapi "adpilot-app/internal/api/billing"
	campaignsapi "adpilot-app/internal/api/campaigns"
	generationapi "adpilot-app/internal/api/generation"
	stripewebhooks "adpilot-app/internal/api/stripewebhook"
	tiersapi "adpilot-app/internal/api/tiers"
	"adpilot-app/internal/api/users"
	"adpilot-app/internal/app/http/middleware"
	"adpilot-app/internal/domain/tiers"

	"github.com/gin-gonic/gin"
)

// Handlers carries the constructed handlers that need injected dependencies.
// Package-function handlers (auth, users, admin) are referenced directly.
type Handlers struct {
	Webhook    *stripewebhooks.Handler
	Billing    *billingapi.Handler
	Campaigns  *campaignsapi.Handler
	Generation *generationapi.Handler
	Catalog    *tiers.Catalog
}

func RegisterRoutes(r *gin.Engine, h Handlers) {
	// Webhook gets the raw body; it must never go through the sanitizer or
	// the signature check would fail.
	r.POST("/webhook", h.Webhook.HandleWebhook)
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	public := r.Group("/")
	public.Use(middleware.SanitizeAndCleanInputMiddleware())

	public.POST("/register", authapi.Register)
	public.POST("/login", authapi.Login)
	public.GET("/tiers", tiersapi.ListTiers)
	public.GET("/verify", users.VerifyEmail)
	public.POST("/resend-verification", authapi.ResendVerification)
	public.POST("/request-password-reset", authapi.RequestPasswordReset)
	public.POST("/reset-password", authapi.ResetPassword)

	public.GET("/auth/google", authapi.GoogleStart)
	public.GET("/auth/google/callback", authapi.GoogleCallback)

	// Authenticated
	auth := r.Group("/")
	auth.Use(middleware.AuthMiddleware())
	auth.GET("/me", users.GetCurrentUser)
	auth.GET("/payments", billingapi.GetPaymentHistory)
	auth.POST("/create-checkout-session", h.Billing.CreateCheckoutSession)
	auth.POST("/billing-portal", h.Billing.CreateBillingPortal)
	auth.POST("/change-password", authapi.ChangePassword)

	auth.GET("/campaigns", h.Campaigns.ListCampaigns)
	auth.POST("/campaigns", h.Campaigns.CreateCampaign)
	auth.GET("/campaigns/:id", h.Campaigns.GetCampaign)
	auth.PUT("/campaigns/:id", h.Campaigns.UpdateCampaign)
	auth.DELETE("/campaigns/:id", h.Campaigns.DeleteCampaign)

	auth.POST("/campaigns/:id/ads", h.Campaigns.CreateAd)
	auth.PUT("/campaigns/:id/ads/:adID", h.Campaigns.UpdateAd)
	auth.DELETE("/campaigns/:id/ads/:adID", h.Campaigns.DeleteAd)

	auth.POST("/campaigns/:id/ads/:adID/generate", h.Generation.GenerateAdCopy)

	// Subscribed users
	subscribed := auth.Group("/")
	subscribed.Use(middleware.RequireLiveSubscription())
	subscribed.POST("/change-plan", h.Billing.ChangePlan)
	subscribed.POST("/cancel-subscription", h.Billing.CancelSubscription)

	// Admin routes
	admin := r.Group("/admin")
	admin.Use(middleware.AuthMiddleware(), middleware.RequireRole("admin"))
	admin.GET("/dashboard", adminapi.AdminDashboard)
	admin.GET("/users", adminapi.ListAllUsers)
	admin.GET("/payments", adminapi.ListAllPayments)
	admin.GET("/events", adminapi.ListRecentEvents)
	admin.GET("/stats", adminapi.GetAdminStats)
	admin.GET("/user/:id", adminapi.GetUserDetails)
	admin.POST("/verify-catalog", tiersapi.VerifyCatalog(h.Catalog))
}
