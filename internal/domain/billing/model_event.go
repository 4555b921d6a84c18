package billing

import "time"

// ProviderEvent is the webhook dedup ledger. A row for a given event id means
// the event has been durably seen; reprocessing it must be a no-op. Rows are
// only ever inserted after the signature check passed, so a rejected delivery
// can legitimately be retried by the provider.
type ProviderEvent struct {
	ID              uint       `gorm:"primaryKey"`
	Provider        string     `gorm:"type:varchar(20);not null;default:'stripe';uniqueIndex:idx_provider_events_event,priority:1"`
	EventID         string     `gorm:"type:varchar(191);not null;uniqueIndex:idx_provider_events_event,priority:2"`
	EventType       string     `gorm:"type:varchar(100);not null;index"`
	EventCreatedAt  time.Time  `gorm:"column:event_created_at"`
	ProcessedAt     *time.Time `gorm:"column:processed_at"`
	ProcessingError *string    `gorm:"column:processing_error;type:text"`
	ReceivedAt      time.Time  `gorm:"autoCreateTime"`
}

func (ProviderEvent) TableName() string { return "provider_events" }
