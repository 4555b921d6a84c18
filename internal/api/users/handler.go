package users

import (
	"net/http"
	"time"

	"adpilot-app/config"
	"adpilot-app/database"
	"adpilot-app/internal/domain/access"
	"adpilot-app/internal/domain/campaigns"
	"adpilot-app/internal/domain/entitlement"
	"adpilot-app/internal/domain/users"

	"github.com/gin-gonic/gin"
)

func GetCurrentUser(c *gin.Context) {
	email := c.GetString("email")
	if email == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var user users.User
	if err := database.DB.
		Where("LOWER(email) = LOWER(?)", email).
		First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	var rec *entitlement.Record
	var found entitlement.Record
	err := database.DB.Where("user_id = ?", user.ID).First(&found).Error
	if err == nil {
		rec = &found
	}

	var campaignCount int64
	_ = database.DB.Model(&campaigns.Campaign{}).
		Where("user_id = ?", user.ID).
		Count(&campaignCount).Error

	now := time.Now()
	policy := access.ComputePolicy(now, rec)

	resp := MeResponse{
		User: UserDTO{
			ID:         user.ID,
			Email:      user.Email,
			Name:       user.Name,
			OrgName:    user.OrgName,
			Role:       user.Role,
			IsVerified: user.IsVerified,
		},
		Billing: BuildBillingDTO(now, rec),
		Usage:   BuildUsageDTO(rec, campaignCount, policy),
		Access:  BuildAccessDTO(policy),
	}

	c.JSON(http.StatusOK, resp)
}

func VerifyEmail(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing token"})
		return
	}

	var t users.VerificationToken
	if err := database.DB.
		Where("token = ? AND type = ?", token, users.TokenTypeVerifyEmail).
		First(&t).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or expired token"})
		return
	}
	if time.Now().After(t.ExpiresAt) {
		_ = database.DB.Delete(&t).Error
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or expired token"})
		return
	}

	if err := database.DB.Model(&users.User{}).Where("id = ?", t.UserID).Update("is_verified", true).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify user"})
		return
	}

	_ = database.DB.Delete(&t).Error

	c.Redirect(http.StatusTemporaryRedirect, config.APP_URL+"/signin")
}
