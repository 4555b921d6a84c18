package repository

import (
	"context"
	"testing"
	"time"

	"adpilot-app/internal/domain/billing"
	"adpilot-app/internal/domain/campaigns"
	"adpilot-app/internal/domain/entitlement"
	"adpilot-app/internal/domain/tiers"
	"adpilot-app/internal/domain/users"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&users.User{},
		&users.VerificationToken{},
		&entitlement.Record{},
		&billing.ProviderEvent{},
		&billing.Payment{},
		&campaigns.Campaign{},
		&campaigns.Ad{},
	))
	return db
}

func seedRecord(t *testing.T, db *gorm.DB, userID uint, customerRef string, updatedAt time.Time) *entitlement.Record {
	t.Helper()
	limit := int64(50)
	rec := &entitlement.Record{
		UserID:           userID,
		Tier:             tiers.TierStarter,
		Status:           entitlement.StatusActive,
		CreditsLimit:     &limit,
		StripeCustomerID: &customerRef,
		UpdatedAt:        updatedAt,
	}
	require.NoError(t, db.Create(rec).Error)
	return rec
}

func TestEntitlementStoreApplyIfNewer(t *testing.T) {
	db := testDB(t)
	store := NewEntitlementStore(db)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	rec := seedRecord(t, db, 1, "cus_1", base)

	applied, err := store.ApplyIfNewer(ctx, rec.ID, base.Add(time.Minute), map[string]interface{}{
		"tier":   tiers.TierPro,
		"status": entitlement.StatusActive,
	})
	require.NoError(t, err)
	assert.True(t, applied)

	got, err := store.GetByUserID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, tiers.TierPro, got.Tier)
	assert.Equal(t, base.Add(time.Minute).Unix(), got.UpdatedAt.Unix())

	// An older event must bounce off the row untouched.
	applied, err = store.ApplyIfNewer(ctx, rec.ID, base.Add(-time.Minute), map[string]interface{}{
		"tier":   tiers.TierFree,
		"status": entitlement.StatusCanceled,
	})
	require.NoError(t, err)
	assert.False(t, applied)

	got, err = store.GetByUserID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, tiers.TierPro, got.Tier)
	assert.Equal(t, entitlement.StatusActive, got.Status)

	// Equal timestamps apply: the guard is <=, so a same-second retry with
	// the same payload converges instead of wedging.
	applied, err = store.ApplyIfNewer(ctx, rec.ID, base.Add(time.Minute), map[string]interface{}{
		"status": entitlement.StatusPastDue,
	})
	require.NoError(t, err)
	assert.True(t, applied)
}

func TestEntitlementStoreLookups(t *testing.T) {
	db := testDB(t)
	store := NewEntitlementStore(db)
	ctx := context.Background()

	got, err := store.GetByUserID(ctx, 42)
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = store.GetByCustomerRef(ctx, "cus_missing")
	require.NoError(t, err)
	assert.Nil(t, got)

	seedRecord(t, db, 42, "cus_42", time.Now())

	got, err = store.GetByCustomerRef(ctx, "cus_42")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, uint(42), got.UserID)
}

func TestEntitlementStoreIncrementCreditsUsed(t *testing.T) {
	db := testDB(t)
	store := NewEntitlementStore(db)
	ctx := context.Background()

	seedRecord(t, db, 1, "cus_1", time.Now())

	require.NoError(t, store.IncrementCreditsUsed(ctx, 1))
	require.NoError(t, store.IncrementCreditsUsed(ctx, 1))

	got, err := store.GetByUserID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.CreditsUsed)

	assert.Error(t, store.IncrementCreditsUsed(ctx, 404))
}

func TestEntitlementStoreAttachBillingRefs(t *testing.T) {
	db := testDB(t)
	store := NewEntitlementStore(db)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	rec := seedRecord(t, db, 1, "cus_old", base)

	sub := "sub_1"
	require.NoError(t, store.AttachBillingRefs(ctx, rec.ID, "cus_new", &sub))

	got, err := store.GetByUserID(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, got.StripeCustomerID)
	assert.Equal(t, "cus_new", *got.StripeCustomerID)
	require.NotNil(t, got.StripeSubscriptionID)
	assert.Equal(t, "sub_1", *got.StripeSubscriptionID)
	// Attaching refs is not a provider event; the ordering key stays put.
	assert.Equal(t, base.Unix(), got.UpdatedAt.Unix())
}

func TestEventLedgerDedup(t *testing.T) {
	db := testDB(t)
	ledger := NewEventLedger(db)
	ctx := context.Background()

	ev := &billing.ProviderEvent{
		Provider:       "stripe",
		EventID:        "evt_1",
		EventType:      "customer.subscription.updated",
		EventCreatedAt: time.Now(),
	}
	require.NoError(t, ledger.Record(ctx, ev))

	dup := &billing.ProviderEvent{
		Provider:       "stripe",
		EventID:        "evt_1",
		EventType:      "customer.subscription.updated",
		EventCreatedAt: time.Now(),
	}
	err := ledger.Record(ctx, dup)
	assert.ErrorIs(t, err, entitlement.ErrDuplicateEvent)

	// Same event id under a different provider is a different event.
	other := &billing.ProviderEvent{
		Provider:       "paddle",
		EventID:        "evt_1",
		EventType:      "something",
		EventCreatedAt: time.Now(),
	}
	assert.NoError(t, ledger.Record(ctx, other))
}

func TestEventLedgerMarkProcessedAndFailed(t *testing.T) {
	db := testDB(t)
	ledger := NewEventLedger(db)
	ctx := context.Background()

	require.NoError(t, ledger.Record(ctx, &billing.ProviderEvent{
		Provider: "stripe", EventID: "evt_1", EventType: "x", EventCreatedAt: time.Now(),
	}))

	require.NoError(t, ledger.MarkFailed(ctx, "stripe", "evt_1", assert.AnError))
	var row billing.ProviderEvent
	require.NoError(t, db.Where("event_id = ?", "evt_1").First(&row).Error)
	require.NotNil(t, row.ProcessingError)
	assert.Nil(t, row.ProcessedAt)

	require.NoError(t, ledger.MarkProcessed(ctx, "stripe", "evt_1"))
	require.NoError(t, db.Where("event_id = ?", "evt_1").First(&row).Error)
	assert.NotNil(t, row.ProcessedAt)
	assert.Nil(t, row.ProcessingError)
}

func TestIdentityStore(t *testing.T) {
	db := testDB(t)
	store := NewIdentityStore(db)
	ctx := context.Background()

	u := &users.User{Name: "Buyer", Email: "buyer@example.com", Role: "user"}
	require.NoError(t, store.Create(ctx, u))
	require.NotZero(t, u.ID)

	got, err := store.FindByEmail(ctx, "BUYER@example.COM")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, u.ID, got.ID)

	missing, err := store.FindByEmail(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, missing)

	// One token per user: a second CreateToken replaces the first.
	require.NoError(t, store.CreateToken(ctx, u.ID, "tok_a", users.TokenTypePasswordSetup, time.Now().Add(time.Hour)))
	require.NoError(t, store.CreateToken(ctx, u.ID, "tok_b", users.TokenTypePasswordSetup, time.Now().Add(time.Hour)))
	var count int64
	db.Model(&users.VerificationToken{}).Where("user_id = ?", u.ID).Count(&count)
	assert.Equal(t, int64(1), count)

	require.NoError(t, store.Delete(ctx, u.ID))
	gone, err := store.FindByEmail(ctx, "buyer@example.com")
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestResourceCounter(t *testing.T) {
	db := testDB(t)
	counter := NewResourceCounter(db)
	ctx := context.Background()

	require.NoError(t, db.Create(&campaigns.Campaign{UserID: 1, Name: "Spring", Platform: campaigns.PlatformFacebook}).Error)
	require.NoError(t, db.Create(&campaigns.Campaign{UserID: 1, Name: "Summer", Platform: campaigns.PlatformGoogle}).Error)
	require.NoError(t, db.Create(&campaigns.Campaign{UserID: 2, Name: "Other", Platform: campaigns.PlatformFacebook}).Error)

	n, err := counter.CountCampaigns(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	var cp campaigns.Campaign
	require.NoError(t, db.Where("name = ?", "Spring").First(&cp).Error)
	require.NoError(t, db.Create(&campaigns.Ad{CampaignID: cp.ID, Headline: "A"}).Error)
	require.NoError(t, db.Create(&campaigns.Ad{CampaignID: cp.ID, Headline: "B"}).Error)

	n, err = counter.CountAds(ctx, cp.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestPaymentRecorderDedup(t *testing.T) {
	db := testDB(t)
	recorder := NewPaymentRecorder(db)
	ctx := context.Background()

	p := &billing.Payment{UserID: 1, Tier: tiers.TierStarter, StripeInvoiceID: "in_1", Amount: 29, Currency: "usd", Status: "succeeded"}
	require.NoError(t, recorder.RecordPayment(ctx, p))

	dup := &billing.Payment{UserID: 1, Tier: tiers.TierStarter, StripeInvoiceID: "in_1", Amount: 29, Currency: "usd", Status: "succeeded"}
	require.NoError(t, recorder.RecordPayment(ctx, dup))

	var count int64
	db.Model(&billing.Payment{}).Count(&count)
	assert.Equal(t, int64(1), count)
}
