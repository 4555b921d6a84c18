package admin

import (
	"net/http"
	"time"

	"adpilot-app/database"
	"adpilot-app/internal/domain/billing"
	"adpilot-app/internal/domain/campaigns"
	"adpilot-app/internal/domain/entitlement"
	"adpilot-app/internal/domain/users"

	"github.com/gin-gonic/gin"
)

type AdminUser struct {
	ID               uint       `json:"id"`
	Name             string     `json:"name"`
	OrgName          string     `json:"org_name"`
	Email            string     `json:"email"`
	Role             string     `json:"role"`
	IsVerified       bool       `json:"is_verified"`
	Tier             string     `json:"tier"`
	Status           string     `json:"status"`
	CreditsUsed      int64      `json:"credits_used"`
	CreditsLimit     *int64     `json:"credits_limit"`
	TrialEnd         *time.Time `json:"trial_end,omitempty"`
	StripeCustomerID *string    `json:"stripe_customer_id,omitempty"`
	StripeSubID      *string    `json:"stripe_subscription_id,omitempty"`
}

type AdminPayment struct {
	ID         uint    `json:"id"`
	Email      string  `json:"email"`
	Tier       string  `json:"tier"`
	Amount     float64 `json:"amount"`
	Currency   string  `json:"currency"`
	Status     string  `json:"status"`
	InvoiceID  string  `json:"invoice_id"`
	ReceiptURL *string `json:"receipt_url,omitempty"`
	CreatedAt  string  `json:"created_at"`
}

type AdminEvent struct {
	ID             uint       `json:"id"`
	Provider       string     `json:"provider"`
	EventID        string     `json:"event_id"`
	EventType      string     `json:"event_type"`
	EventCreatedAt time.Time  `json:"event_created_at"`
	ReceivedAt     time.Time  `json:"received_at"`
	ProcessedAt    *time.Time `json:"processed_at,omitempty"`
	Error          *string    `json:"error,omitempty"`
}

type AdminStats struct {
	TotalUsers     int            `json:"total_users"`
	TotalCampaigns int            `json:"total_campaigns"`
	TotalRevenue   float64        `json:"total_revenue"`
	RecentRevenue  float64        `json:"recent_revenue"`
	UsersPerTier   map[string]int `json:"users_per_tier"`
}

func AdminDashboard(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Welcome to the admin dashboard 👑",
	})
}

func ListAllUsers(c *gin.Context) {
	var list []users.User
	if err := database.DB.Find(&list).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load users"})
		return
	}

	var records []entitlement.Record
	if err := database.DB.Find(&records).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load entitlements"})
		return
	}
	byUser := make(map[uint]entitlement.Record, len(records))
	for _, r := range records {
		byUser[r.UserID] = r
	}

	var adminUsers []AdminUser
	for _, u := range list {
		au := AdminUser{
			ID:         u.ID,
			Name:       u.Name,
			OrgName:    u.OrgName,
			Email:      u.Email,
			Role:       u.Role,
			IsVerified: u.IsVerified,
			Tier:       "free",
			Status:     entitlement.StatusNone,
		}
		if r, ok := byUser[u.ID]; ok {
			au.Tier = r.Tier
			au.Status = r.Status
			au.CreditsUsed = r.CreditsUsed
			au.CreditsLimit = r.CreditsLimit
			au.TrialEnd = r.TrialEnd
			au.StripeCustomerID = r.StripeCustomerID
			au.StripeSubID = r.StripeSubscriptionID
		}
		adminUsers = append(adminUsers, au)
	}

	c.JSON(http.StatusOK, adminUsers)
}

func ListAllPayments(c *gin.Context) {
	var payments []billing.Payment
	err := database.DB.Preload("User").Order("created_at DESC").Find(&payments).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load payments"})
		return
	}

	var result []AdminPayment
	for _, p := range payments {
		result = append(result, AdminPayment{
			ID:         p.ID,
			Email:      p.User.Email,
			Tier:       p.Tier,
			Amount:     p.Amount,
			Currency:   p.Currency,
			Status:     p.Status,
			InvoiceID:  p.StripeInvoiceID,
			ReceiptURL: p.ReceiptURL,
			CreatedAt:  p.CreatedAt.Format("2006-01-02 15:04"),
		})
	}

	c.JSON(http.StatusOK, result)
}

// ListRecentEvents exposes the webhook ledger tail for debugging delivery
// problems without grepping logs.
func ListRecentEvents(c *gin.Context) {
	var events []billing.ProviderEvent
	err := database.DB.Order("received_at DESC").Limit(100).Find(&events).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load events"})
		return
	}

	var result []AdminEvent
	for _, e := range events {
		result = append(result, AdminEvent{
			ID:             e.ID,
			Provider:       e.Provider,
			EventID:        e.EventID,
			EventType:      e.EventType,
			EventCreatedAt: e.EventCreatedAt,
			ReceivedAt:     e.ReceivedAt,
			ProcessedAt:    e.ProcessedAt,
			Error:          e.ProcessingError,
		})
	}

	c.JSON(http.StatusOK, result)
}

func GetAdminStats(c *gin.Context) {
	var stats AdminStats

	var totalUsers int64
	var totalCampaigns int64
	var totalRevenue float64
	var recentRevenue float64

	database.DB.Model(&users.User{}).Count(&totalUsers)
	database.DB.Model(&campaigns.Campaign{}).Count(&totalCampaigns)
	database.DB.Model(&billing.Payment{}).Where("status = ?", "paid").Select("COALESCE(SUM(amount), 0)").Scan(&totalRevenue)

	thirtyDaysAgo := time.Now().AddDate(0, 0, -30)
	database.DB.Model(&billing.Payment{}).
		Where("status = ? AND created_at >= ?", "paid", thirtyDaysAgo).
		Select("COALESCE(SUM(amount), 0)").Scan(&recentRevenue)

	stats.TotalUsers = int(totalUsers)
	stats.TotalCampaigns = int(totalCampaigns)
	stats.TotalRevenue = totalRevenue
	stats.RecentRevenue = recentRevenue

	type TierCount struct {
		Tier  *string
		Count int
	}
	var counts []TierCount

	database.DB.
		Table("users").
		Select("entitlements.tier, COUNT(users.id) as count").
		Joins("LEFT JOIN entitlements ON entitlements.user_id = users.id").
		Group("entitlements.tier").
		Scan(&counts)

	stats.UsersPerTier = map[string]int{}
	for _, tc := range counts {
		name := "none"
		if tc.Tier != nil {
			name = *tc.Tier
		}
		stats.UsersPerTier[name] = tc.Count
	}

	c.JSON(http.StatusOK, stats)
}

func GetUserDetails(c *gin.Context) {
	userID := c.Param("id")

	var user users.User
	if err := database.DB.First(&user, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	var rec entitlement.Record
	_ = database.DB.Where("user_id = ?", userID).First(&rec).Error

	var payments []billing.Payment
	if err := database.DB.Where("user_id = ?", userID).Order("created_at DESC").Find(&payments).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch payments"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":        user,
		"entitlement": rec,
		"payments":    payments,
	})
}
