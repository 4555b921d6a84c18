package campaigns

import (
	"net/http"
	"strconv"

	"adpilot-app/database"
	"adpilot-app/internal/domain/campaigns"
	"adpilot-app/internal/domain/entitlement"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Handler serves campaign/ad CRUD. Every creation path runs through the quota
// gateway first; counts are taken at check time, nothing is reserved.
type Handler struct {
	quota *entitlement.QuotaGateway
	log   zerolog.Logger
}

func NewHandler(quota *entitlement.QuotaGateway, logger zerolog.Logger) *Handler {
	return &Handler{
		quota: quota,
		log:   logger.With().Str("component", "campaigns-api").Logger(),
	}
}

func mustUserID(c *gin.Context) (uint, bool) {
	userID := c.GetUint("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return 0, false
	}
	return userID, true
}

func pathID(c *gin.Context, name string) (uint, bool) {
	id64, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id64 == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return 0, false
	}
	return uint(id64), true
}

// rejectDenied writes the deny response; true when the request must stop.
func rejectDenied(c *gin.Context, d entitlement.Decision) bool {
	if d.Allowed {
		return false
	}
	switch d.Reason {
	case entitlement.DenyQuotaExceeded:
		c.JSON(http.StatusPaymentRequired, gin.H{"error": "Credit quota exceeded", "reason": string(d.Reason)})
	case entitlement.DenyLimitReached:
		c.JSON(http.StatusForbidden, gin.H{"error": "Plan limit reached", "reason": string(d.Reason)})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Account is misconfigured, contact support", "reason": string(d.Reason)})
	}
	return true
}

// GET /campaigns
func (h *Handler) ListCampaigns(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	var list []campaigns.Campaign
	err := database.DB.
		Where("user_id = ?", userID).
		Preload("Ads").
		Order("created_at DESC").
		Find(&list).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load campaigns"})
		return
	}

	out := make([]CampaignDTO, 0, len(list))
	for _, cp := range list {
		out = append(out, toCampaignDTO(cp))
	}
	c.JSON(http.StatusOK, gin.H{"campaigns": out})
}

// POST /campaigns
func (h *Handler) CreateCampaign(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	var req CreateCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	decision, err := h.quota.TryConsume(c.Request.Context(), userID, entitlement.ResourceCampaign, 0)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Quota check failed"})
		return
	}
	if rejectDenied(c, decision) {
		return
	}

	platform := req.Platform
	if platform == "" {
		platform = campaigns.PlatformFacebook
	}

	cp := campaigns.Campaign{
		UserID:      userID,
		Name:        req.Name,
		Product:     req.Product,
		Audience:    req.Audience,
		Platform:    platform,
		Description: req.Description,
	}
	if err := database.DB.Create(&cp).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create campaign"})
		return
	}

	c.JSON(http.StatusCreated, toCampaignDTO(cp))
}

// GET /campaigns/:id
func (h *Handler) GetCampaign(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var cp campaigns.Campaign
	err := database.DB.
		Where("id = ? AND user_id = ?", id, userID).
		Preload("Ads").
		First(&cp).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Campaign not found"})
		return
	}

	c.JSON(http.StatusOK, toCampaignDTO(cp))
}

// PUT /campaigns/:id
func (h *Handler) UpdateCampaign(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req UpdateCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var cp campaigns.Campaign
	if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&cp).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Campaign not found"})
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Product != nil {
		updates["product"] = *req.Product
	}
	if req.Audience != nil {
		updates["audience"] = *req.Audience
	}
	if req.Platform != nil {
		updates["platform"] = *req.Platform
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if len(updates) > 0 {
		if err := database.DB.Model(&cp).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update campaign"})
			return
		}
	}

	c.JSON(http.StatusOK, toCampaignDTO(cp))
}

// DELETE /campaigns/:id
func (h *Handler) DeleteCampaign(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	tx := database.DB.Where("id = ? AND user_id = ?", id, userID).Delete(&campaigns.Campaign{})
	if tx.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete campaign"})
		return
	}
	if tx.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Campaign not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Campaign deleted"})
}

// POST /campaigns/:id/ads
func (h *Handler) CreateAd(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	campaignID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req CreateAdRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var cp campaigns.Campaign
	if err := database.DB.Where("id = ? AND user_id = ?", campaignID, userID).First(&cp).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Campaign not found"})
		return
	}

	decision, err := h.quota.TryConsume(c.Request.Context(), userID, entitlement.ResourceAd, campaignID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Quota check failed"})
		return
	}
	if rejectDenied(c, decision) {
		return
	}

	ad := campaigns.Ad{
		CampaignID: cp.ID,
		Headline:   req.Headline,
		Body:       req.Body,
		Tone:       req.Tone,
	}
	if err := database.DB.Create(&ad).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create ad"})
		return
	}

	c.JSON(http.StatusCreated, toAdDTO(ad))
}

// PUT /campaigns/:id/ads/:adID
func (h *Handler) UpdateAd(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	campaignID, ok := pathID(c, "id")
	if !ok {
		return
	}
	adID, ok := pathID(c, "adID")
	if !ok {
		return
	}

	var req UpdateAdRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ad, found := h.ownedAd(c, userID, campaignID, adID)
	if !found {
		return
	}

	updates := map[string]interface{}{}
	if req.Headline != nil {
		updates["headline"] = *req.Headline
	}
	if req.Body != nil {
		updates["body"] = *req.Body
	}
	if req.Tone != nil {
		updates["tone"] = *req.Tone
	}
	if len(updates) > 0 {
		if err := database.DB.Model(&ad).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update ad"})
			return
		}
	}

	c.JSON(http.StatusOK, toAdDTO(ad))
}

// DELETE /campaigns/:id/ads/:adID
func (h *Handler) DeleteAd(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	campaignID, ok := pathID(c, "id")
	if !ok {
		return
	}
	adID, ok := pathID(c, "adID")
	if !ok {
		return
	}

	ad, found := h.ownedAd(c, userID, campaignID, adID)
	if !found {
		return
	}

	if err := database.DB.Delete(&ad).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete ad"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Ad deleted"})
}

// ownedAd loads an ad after confirming the campaign belongs to the caller.
func (h *Handler) ownedAd(c *gin.Context, userID, campaignID, adID uint) (campaigns.Ad, bool) {
	var cp campaigns.Campaign
	if err := database.DB.Where("id = ? AND user_id = ?", campaignID, userID).First(&cp).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Campaign not found"})
		return campaigns.Ad{}, false
	}

	var ad campaigns.Ad
	if err := database.DB.Where("id = ? AND campaign_id = ?", adID, campaignID).First(&ad).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Ad not found"})
		return campaigns.Ad{}, false
	}
	return ad, true
}
