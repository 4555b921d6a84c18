package entitlement

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"adpilot-app/internal/domain/tiers"
	"adpilot-app/internal/domain/users"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// ProvisionInput is everything a first paid checkout tells us about a customer
// we have never seen. No credential is ever part of it; the new identity gets
// an unusable random secret and a set-password email instead.
type ProvisionInput struct {
	Email           string
	Name            string
	OrgName         string
	CustomerRef     string
	SubscriptionRef string
}

// NotifyFunc delivers the out-of-band "set your password" message. It is
// fire-and-forget: a failure is logged, never propagated.
type NotifyFunc func(email, name, token string) error

const setupTokenTTL = 48 * time.Hour

// Provisioner creates a login identity plus its entitlement row on first paid
// checkout. Identity and entitlement live in independent stores, so a failed
// entitlement insert triggers a compensating identity delete.
type Provisioner struct {
	identities IdentityStore
	store      Store
	notify     NotifyFunc
	log        zerolog.Logger
}

func NewProvisioner(identities IdentityStore, store Store, notify NotifyFunc, logger zerolog.Logger) *Provisioner {
	return &Provisioner{
		identities: identities,
		store:      store,
		notify:     notify,
		log:        logger.With().Str("component", "identity-provisioner").Logger(),
	}
}

// Provision returns the entitlement record for the checkout's customer,
// creating identity and record as needed. When the email already owns an
// account (say, a free-tier signup that later checks out), the billing refs
// are attached to its existing record instead of creating a duplicate.
func (p *Provisioner) Provision(ctx context.Context, in ProvisionInput) (*Record, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" {
		return nil, fmt.Errorf("provision: checkout carried no customer email")
	}

	existing, err := p.identities.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("provision: probe identity by email: %w", err)
	}
	if existing != nil {
		return p.attachToExisting(ctx, existing, in)
	}

	secret, err := unusableSecret()
	if err != nil {
		return nil, fmt.Errorf("provision: generate initial secret: %w", err)
	}

	user := &users.User{
		Name:              in.Name,
		OrgName:           in.OrgName,
		Email:             email,
		Password:          &secret,
		AuthProvider:      "local",
		Role:              "user",
		IsVerified:        true, // the address just completed a paid checkout
		MustResetPassword: true,
	}
	if err := p.identities.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("provision: create identity: %w", err)
	}

	rec := NewFreeRecord(user.ID)
	rec.StripeCustomerID = nullable(in.CustomerRef)
	rec.StripeSubscriptionID = nullable(in.SubscriptionRef)
	if err := p.store.Create(ctx, rec); err != nil {
		// Two stores, no shared transaction: roll the identity back by hand.
		if delErr := p.identities.Delete(ctx, user.ID); delErr != nil {
			p.log.Error().Err(delErr).
				Uint("user_id", user.ID).
				Msg("ALERT: orphaned identity left behind after failed provisioning")
		}
		return nil, fmt.Errorf("%w: %v", ErrProvisioningPartial, err)
	}

	p.sendSetupNotification(ctx, user)

	p.log.Info().
		Uint("user_id", user.ID).
		Str("customer", in.CustomerRef).
		Msg("provisioned identity for new paying customer")
	return rec, nil
}

func (p *Provisioner) attachToExisting(ctx context.Context, user *users.User, in ProvisionInput) (*Record, error) {
	rec, err := p.store.GetByUserID(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("provision: load entitlement for user %d: %w", user.ID, err)
	}
	if rec == nil {
		// Identity without an entitlement row should not happen (signup
		// creates one), but repair it rather than failing the checkout.
		rec = NewFreeRecord(user.ID)
		rec.StripeCustomerID = nullable(in.CustomerRef)
		rec.StripeSubscriptionID = nullable(in.SubscriptionRef)
		if err := p.store.Create(ctx, rec); err != nil {
			return nil, fmt.Errorf("provision: create entitlement for existing user %d: %w", user.ID, err)
		}
		return rec, nil
	}

	if err := p.store.AttachBillingRefs(ctx, rec.ID, in.CustomerRef, nullable(in.SubscriptionRef)); err != nil {
		return nil, fmt.Errorf("provision: attach billing refs to record %d: %w", rec.ID, err)
	}
	rec.StripeCustomerID = nullable(in.CustomerRef)
	rec.StripeSubscriptionID = nullable(in.SubscriptionRef)
	return rec, nil
}

func (p *Provisioner) sendSetupNotification(ctx context.Context, user *users.User) {
	if p.notify == nil {
		return
	}
	token := randomToken()
	if err := p.identities.CreateToken(ctx, user.ID, token, users.TokenTypePasswordSetup, time.Now().Add(setupTokenTTL)); err != nil {
		p.log.Warn().Err(err).Uint("user_id", user.ID).Msg("failed to store password setup token")
		return
	}
	if err := p.notify(user.Email, user.Name, token); err != nil {
		p.log.Warn().Err(err).Uint("user_id", user.ID).Msg("failed to send password setup email")
	}
}

// NewFreeRecord builds the entitlement row every identity starts from.
func NewFreeRecord(userID uint) *Record {
	free, _ := tiers.Describe(tiers.TierFree)
	return &Record{
		UserID:       userID,
		Tier:         free.Tier,
		Status:       StatusNone,
		CreditsLimit: free.MonthlyCreditQuota,
	}
}

func unusableSecret() (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(hex.EncodeToString(raw)), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func randomToken() string {
	bytes := make([]byte, 16)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}
