package campaigns

import (
	"time"

	"adpilot-app/internal/domain/campaigns"
)

type CreateCampaignRequest struct {
	Name        string `json:"name" binding:"required"`
	Product     string `json:"product"`
	Audience    string `json:"audience"`
	Platform    string `json:"platform"`
	Description string `json:"description"`
}

type UpdateCampaignRequest struct {
	Name        *string `json:"name"`
	Product     *string `json:"product"`
	Audience    *string `json:"audience"`
	Platform    *string `json:"platform"`
	Description *string `json:"description"`
}

type CreateAdRequest struct {
	Headline string `json:"headline"`
	Body     string `json:"body"`
	Tone     string `json:"tone"`
}

type UpdateAdRequest struct {
	Headline *string `json:"headline"`
	Body     *string `json:"body"`
	Tone     *string `json:"tone"`
}

type CampaignDTO struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Product     string    `json:"product"`
	Audience    string    `json:"audience"`
	Platform    string    `json:"platform"`
	Description string    `json:"description"`
	Ads         []AdDTO   `json:"ads"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type AdDTO struct {
	ID          uint       `json:"id"`
	CampaignID  uint       `json:"campaign_id"`
	Headline    string     `json:"headline"`
	Body        string     `json:"body"`
	Tone        string     `json:"tone"`
	GeneratedAt *time.Time `json:"generated_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func toCampaignDTO(cp campaigns.Campaign) CampaignDTO {
	ads := make([]AdDTO, 0, len(cp.Ads))
	for _, ad := range cp.Ads {
		ads = append(ads, toAdDTO(ad))
	}
	return CampaignDTO{
		ID:          cp.ID,
		Name:        cp.Name,
		Product:     cp.Product,
		Audience:    cp.Audience,
		Platform:    cp.Platform,
		Description: cp.Description,
		Ads:         ads,
		CreatedAt:   cp.CreatedAt,
		UpdatedAt:   cp.UpdatedAt,
	}
}

func toAdDTO(ad campaigns.Ad) AdDTO {
	return AdDTO{
		ID:          ad.ID,
		CampaignID:  ad.CampaignID,
		Headline:    ad.Headline,
		Body:        ad.Body,
		Tone:        ad.Tone,
		GeneratedAt: ad.GeneratedAt,
		CreatedAt:   ad.CreatedAt,
		UpdatedAt:   ad.UpdatedAt,
	}
}
