package entitlement

import (
	"context"
	"fmt"
	"sync"
	"time"

	"adpilot-app/internal/domain/billing"
	"adpilot-app/internal/domain/users"
)

// fakeStore is an in-memory Store with the same conditional-update semantics
// as the SQL implementation.
type fakeStore struct {
	mu      sync.Mutex
	records map[uint]*Record
	nextID  uint

	createErr error
	attachErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: map[uint]*Record{}}
}

func (s *fakeStore) add(rec *Record) *Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	rec.ID = s.nextID
	s.records[rec.ID] = rec
	return rec
}

func (s *fakeStore) GetByUserID(_ context.Context, userID uint) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.records {
		if r.UserID == userID {
			cp := *r
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *fakeStore) GetByCustomerRef(_ context.Context, customerRef string) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.records {
		if r.StripeCustomerID != nil && *r.StripeCustomerID == customerRef {
			cp := *r
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *fakeStore) Create(_ context.Context, rec *Record) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.add(rec)
	return nil
}

func (s *fakeStore) ApplyIfNewer(_ context.Context, recordID uint, eventTime time.Time, updates map[string]interface{}) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[recordID]
	if !ok {
		return false, fmt.Errorf("record %d not found", recordID)
	}
	if rec.UpdatedAt.After(eventTime) {
		return false, nil
	}
	applyPatch(rec, updates)
	rec.UpdatedAt = eventTime
	return true, nil
}

func (s *fakeStore) AttachBillingRefs(_ context.Context, recordID uint, customerRef string, subscriptionRef *string) error {
	if s.attachErr != nil {
		return s.attachErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[recordID]
	if !ok {
		return fmt.Errorf("record %d not found", recordID)
	}
	rec.StripeCustomerID = &customerRef
	rec.StripeSubscriptionID = subscriptionRef
	return nil
}

func (s *fakeStore) IncrementCreditsUsed(_ context.Context, userID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.records {
		if r.UserID == userID {
			r.CreditsUsed++
			return nil
		}
	}
	return fmt.Errorf("no entitlement record for user %d", userID)
}

func applyPatch(rec *Record, updates map[string]interface{}) {
	for key, val := range updates {
		switch key {
		case "tier":
			rec.Tier = val.(string)
		case "status":
			rec.Status = val.(string)
		case "billing_cycle":
			switch v := val.(type) {
			case string:
				rec.BillingCycle = &v
			case nil:
				rec.BillingCycle = nil
			}
		case "trial_end":
			switch v := val.(type) {
			case *time.Time:
				rec.TrialEnd = v
			case nil:
				rec.TrialEnd = nil
			}
		case "credits_limit":
			switch v := val.(type) {
			case *int64:
				rec.CreditsLimit = v
			case nil:
				rec.CreditsLimit = nil
			}
		case "stripe_customer_id":
			switch v := val.(type) {
			case string:
				rec.StripeCustomerID = &v
			case *string:
				rec.StripeCustomerID = v
			}
		case "stripe_subscription_id":
			switch v := val.(type) {
			case *string:
				rec.StripeSubscriptionID = v
			case nil:
				rec.StripeSubscriptionID = nil
			}
		}
	}
}

type fakeIdentities struct {
	mu     sync.Mutex
	users  map[uint]*users.User
	nextID uint

	createErr error
	deleted   []uint
	tokens    []fakeToken
}

type fakeToken struct {
	UserID    uint
	Token     string
	Type      string
	ExpiresAt time.Time
}

func newFakeIdentities() *fakeIdentities {
	return &fakeIdentities{users: map[uint]*users.User{}}
}

func (f *fakeIdentities) seed(u users.User) *users.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	u.ID = f.nextID
	f.users[u.ID] = &u
	return &u
}

func (f *fakeIdentities) FindByEmail(_ context.Context, email string) (*users.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeIdentities) Create(_ context.Context, u *users.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	u.ID = f.nextID
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f *fakeIdentities) Delete(_ context.Context, userID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.users, userID)
	f.deleted = append(f.deleted, userID)
	return nil
}

func (f *fakeIdentities) CreateToken(_ context.Context, userID uint, token, tokenType string, expiresAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens = append(f.tokens, fakeToken{UserID: userID, Token: token, Type: tokenType, ExpiresAt: expiresAt})
	return nil
}

type fakePayments struct {
	mu       sync.Mutex
	recorded []billing.Payment
	err      error
}

func (f *fakePayments) RecordPayment(_ context.Context, p *billing.Payment) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.recorded {
		if existing.StripeInvoiceID == p.StripeInvoiceID {
			return nil
		}
	}
	f.recorded = append(f.recorded, *p)
	return nil
}

type fakeCounters struct {
	campaigns int64
	ads       int64
	err       error
}

func (f *fakeCounters) CountCampaigns(_ context.Context, _ uint) (int64, error) {
	return f.campaigns, f.err
}

func (f *fakeCounters) CountAds(_ context.Context, _ uint) (int64, error) {
	return f.ads, f.err
}
