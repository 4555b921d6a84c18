package repository

import (
	"context"
	"errors"

	"adpilot-app/internal/domain/billing"
	"adpilot-app/internal/domain/campaigns"
	"adpilot-app/internal/domain/entitlement"

	"gorm.io/gorm"
)

type resourceCounter struct {
	db *gorm.DB
}

// NewResourceCounter counts existing campaigns/ads at check time. Counts are
// never cached or stored.
func NewResourceCounter(db *gorm.DB) entitlement.ResourceCounter {
	return &resourceCounter{db: db}
}

func (r *resourceCounter) CountCampaigns(ctx context.Context, userID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&campaigns.Campaign{}).
		Where("user_id = ?", userID).
		Count(&n).Error
	return n, err
}

func (r *resourceCounter) CountAds(ctx context.Context, campaignID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&campaigns.Ad{}).
		Where("campaign_id = ?", campaignID).
		Count(&n).Error
	return n, err
}

type paymentRecorder struct {
	db *gorm.DB
}

// NewPaymentRecorder appends payment history rows, deduped by invoice id.
func NewPaymentRecorder(db *gorm.DB) entitlement.PaymentRecorder {
	return &paymentRecorder{db: db}
}

func (r *paymentRecorder) RecordPayment(ctx context.Context, p *billing.Payment) error {
	err := r.db.WithContext(ctx).Create(p).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil
	}
	return err
}
