package stripewebhooks

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"adpilot-app/config"
	"adpilot-app/internal/domain/billing"
	"adpilot-app/internal/domain/entitlement"
	"adpilot-app/internal/domain/tiers"
	"adpilot-app/internal/domain/users"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testWebhookSecret = "whsec_test_secret"

func signPayload(t *testing.T, payload []byte) string {
	t.Helper()
	ts := time.Now().Unix()
	mac := hmac.New(sha256.New, []byte(testWebhookSecret))
	fmt.Fprintf(mac, "%d.%s", ts, payload)
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

// memStore is a minimal in-memory entitlement.Store for wiring a real engine.
type memStore struct {
	mu  sync.Mutex
	rec *entitlement.Record
}

func (s *memStore) GetByUserID(_ context.Context, userID uint) (*entitlement.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rec != nil && s.rec.UserID == userID {
		cp := *s.rec
		return &cp, nil
	}
	return nil, nil
}

func (s *memStore) GetByCustomerRef(_ context.Context, ref string) (*entitlement.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rec != nil && s.rec.StripeCustomerID != nil && *s.rec.StripeCustomerID == ref {
		cp := *s.rec
		return &cp, nil
	}
	return nil, nil
}

func (s *memStore) Create(_ context.Context, rec *entitlement.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec.ID = 1
	s.rec = rec
	return nil
}

func (s *memStore) ApplyIfNewer(_ context.Context, recordID uint, eventTime time.Time, updates map[string]interface{}) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rec == nil || s.rec.ID != recordID {
		return false, fmt.Errorf("record %d not found", recordID)
	}
	if s.rec.UpdatedAt.After(eventTime) {
		return false, nil
	}
	if v, ok := updates["tier"].(string); ok {
		s.rec.Tier = v
	}
	if v, ok := updates["status"].(string); ok {
		s.rec.Status = v
	}
	if v, ok := updates["credits_limit"].(*int64); ok {
		s.rec.CreditsLimit = v
	}
	s.rec.UpdatedAt = eventTime
	return true, nil
}

func (s *memStore) AttachBillingRefs(_ context.Context, recordID uint, customerRef string, subscriptionRef *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rec.StripeCustomerID = &customerRef
	s.rec.StripeSubscriptionID = subscriptionRef
	return nil
}

func (s *memStore) IncrementCreditsUsed(_ context.Context, _ uint) error { return nil }

// memLedger is a minimal in-memory dedup ledger.
type memLedger struct {
	mu        sync.Mutex
	rows      map[string]*billing.ProviderEvent
	processed []string
	failed    []string
}

func newMemLedger() *memLedger {
	return &memLedger{rows: map[string]*billing.ProviderEvent{}}
}

func (l *memLedger) Record(_ context.Context, ev *billing.ProviderEvent) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	key := ev.Provider + "/" + ev.EventID
	if _, dup := l.rows[key]; dup {
		return fmt.Errorf("%w: %s", entitlement.ErrDuplicateEvent, ev.EventID)
	}
	l.rows[key] = ev
	return nil
}

func (l *memLedger) MarkProcessed(_ context.Context, provider, eventID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.processed = append(l.processed, eventID)
	return nil
}

func (l *memLedger) MarkFailed(_ context.Context, provider, eventID string, _ error) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.failed = append(l.failed, eventID)
	return nil
}

type noIdentities struct{}

func (noIdentities) FindByEmail(_ context.Context, _ string) (*users.User, error) { return nil, nil }
func (noIdentities) Create(_ context.Context, u *users.User) error                { u.ID = 1; return nil }
func (noIdentities) Delete(_ context.Context, _ uint) error                       { return nil }
func (noIdentities) CreateToken(_ context.Context, _ uint, _, _ string, _ time.Time) error {
	return nil
}

func newTestHandler(t *testing.T, store *memStore, ledger *memLedger) *Handler {
	t.Helper()
	catalog, err := tiers.NewCatalog([]tiers.PriceRef{
		{PriceID: "price_pro_y", Tier: tiers.TierPro, Cycle: tiers.CycleYearly},
	})
	require.NoError(t, err)
	provisioner := entitlement.NewProvisioner(noIdentities{}, store, nil, zerolog.Nop())
	engine := entitlement.NewEngine(store, catalog, provisioner, nil, zerolog.Nop())
	return NewHandler(engine, ledger, zerolog.Nop())
}

func postWebhook(h *Handler, payload []byte, signature string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewReader(payload))
	c.Request.Header.Set("Stripe-Signature", signature)
	h.HandleWebhook(c)
	return w
}

func seedStoreRecord(store *memStore, customerRef string, updatedAt time.Time) {
	limit := int64(50)
	store.rec = &entitlement.Record{
		ID:               1,
		UserID:           7,
		Tier:             tiers.TierStarter,
		Status:           entitlement.StatusActive,
		CreditsLimit:     &limit,
		StripeCustomerID: &customerRef,
		UpdatedAt:        updatedAt,
	}
}

func subscriptionPayload(eventID, priceID string) []byte {
	created := time.Now().Unix()
	return []byte(fmt.Sprintf(`{
		"id": %q,
		"type": "customer.subscription.updated",
		"created": %d,
		"data": {
			"object": {
				"id": "sub_1",
				"customer": "cus_1",
				"status": "active",
				"items": {"data": [{"price": {"id": %q}}]}
			}
		}
	}`, eventID, created, priceID))
}

func TestHandleWebhookRejectsBadSignature(t *testing.T) {
	config.STRIPE_WEBHOOK_SECRET = testWebhookSecret
	store := &memStore{}
	ledger := newMemLedger()
	h := newTestHandler(t, store, ledger)

	payload := subscriptionPayload("evt_sig", "price_pro_y")
	w := postWebhook(h, payload, "t=123,v1=deadbeef")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	// A rejected delivery leaves no ledger row so the provider may retry.
	assert.Empty(t, ledger.rows)
}

func TestHandleWebhookAppliesSubscriptionUpdate(t *testing.T) {
	config.STRIPE_WEBHOOK_SECRET = testWebhookSecret
	store := &memStore{}
	seedStoreRecord(store, "cus_1", time.Now().Add(-time.Hour))
	ledger := newMemLedger()
	h := newTestHandler(t, store, ledger)

	payload := subscriptionPayload("evt_up", "price_pro_y")
	w := postWebhook(h, payload, signPayload(t, payload))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "received")
	assert.Equal(t, tiers.TierPro, store.rec.Tier)
	assert.Contains(t, ledger.processed, "evt_up")
}

func TestHandleWebhookDuplicateDeliveryIsNoOp(t *testing.T) {
	config.STRIPE_WEBHOOK_SECRET = testWebhookSecret
	store := &memStore{}
	seedStoreRecord(store, "cus_1", time.Now().Add(-time.Hour))
	ledger := newMemLedger()
	h := newTestHandler(t, store, ledger)

	payload := subscriptionPayload("evt_dup", "price_pro_y")
	first := postWebhook(h, payload, signPayload(t, payload))
	require.Equal(t, http.StatusOK, first.Code)

	tierAfterFirst := store.rec.Tier
	updatedAfterFirst := store.rec.UpdatedAt

	second := postWebhook(h, payload, signPayload(t, payload))
	assert.Equal(t, http.StatusOK, second.Code)
	assert.Contains(t, second.Body.String(), "duplicate")
	assert.Equal(t, tierAfterFirst, store.rec.Tier)
	assert.Equal(t, updatedAfterFirst, store.rec.UpdatedAt)
	assert.Len(t, ledger.rows, 1)
}

func TestHandleWebhookIgnoresUnknownEventType(t *testing.T) {
	config.STRIPE_WEBHOOK_SECRET = testWebhookSecret
	store := &memStore{}
	ledger := newMemLedger()
	h := newTestHandler(t, store, ledger)

	payload := []byte(fmt.Sprintf(`{
		"id": "evt_odd",
		"type": "customer.created",
		"created": %d,
		"data": {"object": {}}
	}`, time.Now().Unix()))
	w := postWebhook(h, payload, signPayload(t, payload))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ignored")
	// Unknown types are still recorded so redelivery stays cheap.
	assert.Len(t, ledger.rows, 1)
	assert.Contains(t, ledger.processed, "evt_odd")
}

func TestHandleWebhookAcknowledgesAfterProcessingFailure(t *testing.T) {
	config.STRIPE_WEBHOOK_SECRET = testWebhookSecret
	store := &memStore{}
	seedStoreRecord(store, "cus_1", time.Now().Add(-time.Hour))
	ledger := newMemLedger()
	h := newTestHandler(t, store, ledger)

	// Price id outside the catalog is a processing failure, but the event is
	// already durably seen: ack with 200 and record the error.
	payload := subscriptionPayload("evt_bad_price", "price_rogue")
	w := postWebhook(h, payload, signPayload(t, payload))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "accepted_with_error")
	assert.Contains(t, ledger.failed, "evt_bad_price")
	assert.Equal(t, tiers.TierStarter, store.rec.Tier)
}
