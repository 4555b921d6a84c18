package generation

import (
	"net/http"
	"strconv"
	"time"

	"adpilot-app/database"
	"adpilot-app/internal/domain/campaigns"
	"adpilot-app/internal/domain/entitlement"
	"adpilot-app/internal/infra/generator"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Handler runs ad copy generation. One generation costs one credit; the
// credit is checked before calling the generator and consumed only after
// the generated copy is stored.
type Handler struct {
	quota     *entitlement.QuotaGateway
	generator generator.Client
	log       zerolog.Logger
}

func NewHandler(quota *entitlement.QuotaGateway, gen generator.Client, logger zerolog.Logger) *Handler {
	return &Handler{
		quota:     quota,
		generator: gen,
		log:       logger.With().Str("component", "generation-api").Logger(),
	}
}

type GenerateRequest struct {
	Tone  string `json:"tone"`
	Brief string `json:"brief"`
}

// POST /campaigns/:id/ads/:adID/generate
func (h *Handler) GenerateAdCopy(c *gin.Context) {
	userID := c.GetUint("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	campaignID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || campaignID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return
	}
	adID, err := strconv.ParseUint(c.Param("adID"), 10, 64)
	if err != nil || adID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return
	}

	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var cp campaigns.Campaign
	if err := database.DB.Where("id = ? AND user_id = ?", campaignID, userID).First(&cp).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Campaign not found"})
		return
	}

	var ad campaigns.Ad
	if err := database.DB.Where("id = ? AND campaign_id = ?", adID, cp.ID).First(&ad).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Ad not found"})
		return
	}

	decision, err := h.quota.TryConsume(c.Request.Context(), userID, entitlement.ResourceCredit, 0)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Quota check failed"})
		return
	}
	if !decision.Allowed {
		switch decision.Reason {
		case entitlement.DenyQuotaExceeded:
			c.JSON(http.StatusPaymentRequired, gin.H{"error": "Credit quota exceeded", "reason": string(decision.Reason)})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Account is misconfigured, contact support", "reason": string(decision.Reason)})
		}
		return
	}

	tone := req.Tone
	if tone == "" {
		tone = ad.Tone
	}

	result, err := h.generator.GenerateAdCopy(c.Request.Context(), generator.CopyRequest{
		Product:  cp.Product,
		Audience: cp.Audience,
		Platform: cp.Platform,
		Tone:     tone,
		Brief:    req.Brief,
	})
	if err != nil {
		h.log.Error().Err(err).Uint("ad_id", ad.ID).Msg("Ad copy generation failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "Generation failed, no credit was charged"})
		return
	}

	now := time.Now()
	updates := map[string]interface{}{
		"headline":     result.Headline,
		"body":         result.Body,
		"tone":         tone,
		"generated_at": now,
	}
	if err := database.DB.Model(&ad).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save generated copy"})
		return
	}

	if err := h.quota.ConsumeCredit(c.Request.Context(), userID); err != nil {
		// Copy is stored either way; the usage counter catches up on the next consume.
		h.log.Error().Err(err).Uint("user_id", userID).Msg("Failed to record credit usage")
	}

	ad.Headline = result.Headline
	ad.Body = result.Body
	ad.Tone = tone
	ad.GeneratedAt = &now

	c.JSON(http.StatusOK, gin.H{
		"id":           ad.ID,
		"campaign_id":  ad.CampaignID,
		"headline":     ad.Headline,
		"body":         ad.Body,
		"tone":         ad.Tone,
		"generated_at": ad.GeneratedAt,
	})
}
