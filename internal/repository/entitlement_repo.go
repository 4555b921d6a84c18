package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"adpilot-app/internal/domain/entitlement"

	"gorm.io/gorm"
)

type entitlementStore struct {
	db *gorm.DB
}

// NewEntitlementStore returns the gorm-backed entitlement store. It relies on
// the unique indexes on user_id and stripe_customer_id and on single-row
// conditional updates; there is no app-level locking.
func NewEntitlementStore(db *gorm.DB) entitlement.Store {
	return &entitlementStore{db: db}
}

func (s *entitlementStore) GetByUserID(ctx context.Context, userID uint) (*entitlement.Record, error) {
	var rec entitlement.Record
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *entitlementStore) GetByCustomerRef(ctx context.Context, customerRef string) (*entitlement.Record, error) {
	var rec entitlement.Record
	err := s.db.WithContext(ctx).Where("stripe_customer_id = ?", customerRef).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *entitlementStore) Create(ctx context.Context, rec *entitlement.Record) error {
	err := s.db.WithContext(ctx).Create(rec).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %v", entitlement.ErrPersistenceConflict, err)
	}
	return err
}

// ApplyIfNewer is the ordering guard: one conditional UPDATE keyed on the
// stored updated_at, which carries the timestamp of the last applied provider
// event. Concurrent deliveries for the same customer serialize on the row.
func (s *entitlementStore) ApplyIfNewer(ctx context.Context, recordID uint, eventTime time.Time, updates map[string]interface{}) (bool, error) {
	patch := make(map[string]interface{}, len(updates)+1)
	for k, v := range updates {
		patch[k] = v
	}
	patch["updated_at"] = eventTime

	tx := s.db.WithContext(ctx).
		Model(&entitlement.Record{}).
		Where("id = ? AND updated_at <= ?", recordID, eventTime).
		Updates(patch)
	if tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrDuplicatedKey) {
			return false, fmt.Errorf("%w: %v", entitlement.ErrPersistenceConflict, tx.Error)
		}
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

func (s *entitlementStore) AttachBillingRefs(ctx context.Context, recordID uint, customerRef string, subscriptionRef *string) error {
	patch := map[string]interface{}{
		"stripe_customer_id": customerRef,
	}
	if subscriptionRef != nil {
		patch["stripe_subscription_id"] = subscriptionRef
	}
	// UpdateColumns: attaching refs must not advance the ordering timestamp.
	return s.db.WithContext(ctx).
		Model(&entitlement.Record{}).
		Where("id = ?", recordID).
		UpdateColumns(patch).Error
}

func (s *entitlementStore) IncrementCreditsUsed(ctx context.Context, userID uint) error {
	tx := s.db.WithContext(ctx).
		Model(&entitlement.Record{}).
		Where("user_id = ?", userID).
		UpdateColumn("credits_used", gorm.Expr("credits_used + 1"))
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return fmt.Errorf("no entitlement record for user %d", userID)
	}
	return nil
}
