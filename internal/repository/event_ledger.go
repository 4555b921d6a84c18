package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"adpilot-app/internal/domain/billing"
	"adpilot-app/internal/domain/entitlement"

	"gorm.io/gorm"
)

type eventLedger struct {
	db *gorm.DB
}

// NewEventLedger returns the gorm-backed webhook dedup ledger. The unique
// index on (provider, event_id) is what makes the check-and-insert atomic.
func NewEventLedger(db *gorm.DB) entitlement.EventLedger {
	return &eventLedger{db: db}
}

func (l *eventLedger) Record(ctx context.Context, ev *billing.ProviderEvent) error {
	err := l.db.WithContext(ctx).Create(ev).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %s", entitlement.ErrDuplicateEvent, ev.EventID)
	}
	return err
}

func (l *eventLedger) MarkProcessed(ctx context.Context, provider, eventID string) error {
	now := time.Now()
	return l.db.WithContext(ctx).
		Model(&billing.ProviderEvent{}).
		Where("provider = ? AND event_id = ?", provider, eventID).
		Updates(map[string]interface{}{
			"processed_at":     now,
			"processing_error": nil,
		}).Error
}

func (l *eventLedger) MarkFailed(ctx context.Context, provider, eventID string, procErr error) error {
	msg := procErr.Error()
	return l.db.WithContext(ctx).
		Model(&billing.ProviderEvent{}).
		Where("provider = ? AND event_id = ?", provider, eventID).
		Update("processing_error", msg).Error
}
