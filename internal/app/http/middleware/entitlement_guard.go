package middleware

import (
	"net/http"

	"adpilot-app/database"
	"adpilot-app/internal/domain/entitlement"

	"github.com/gin-gonic/gin"
)

// RequireLiveSubscription gates routes that only make sense for a paying
// subscriber, such as plan changes. Quota enforcement is not done here; the
// quota gateway handles that per resource.
func RequireLiveSubscription() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("user_id")
		if userID == 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		var rec entitlement.Record
		if err := database.DB.Where("user_id = ?", userID).First(&rec).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "No subscription on file"})
			return
		}

		if !entitlement.LiveStatus(rec.Status) || rec.StripeSubscriptionID == nil {
			c.AbortWithStatusJSON(http.StatusPaymentRequired, gin.H{"error": "An active subscription is required"})
			return
		}

		c.Next()
	}
}
