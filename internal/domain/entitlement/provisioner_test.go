package entitlement

import (
	"context"
	"errors"
	"testing"

	"adpilot-app/internal/domain/tiers"
	"adpilot-app/internal/domain/users"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProvisionNewIdentity(t *testing.T) {
	store := newFakeStore()
	identities := newFakeIdentities()

	var notifiedEmail, notifiedToken string
	notify := func(email, name, token string) error {
		notifiedEmail = email
		notifiedToken = token
		return nil
	}

	p := NewProvisioner(identities, store, notify, zerolog.Nop())

	rec, err := p.Provision(context.Background(), ProvisionInput{
		Email:           "  Buyer@Example.COM ",
		Name:            "Buyer",
		OrgName:         "Acme",
		CustomerRef:     "cus_1",
		SubscriptionRef: "sub_1",
	})
	require.NoError(t, err)
	require.NotNil(t, rec)

	require.Len(t, identities.users, 1)
	u := identities.users[rec.UserID]
	require.NotNil(t, u)
	assert.Equal(t, "buyer@example.com", u.Email)
	assert.Equal(t, "Acme", u.OrgName)
	assert.True(t, u.IsVerified)
	assert.True(t, u.MustResetPassword)
	// The stored secret is a hash of random bytes nobody ever saw.
	require.NotNil(t, u.Password)
	assert.NotEmpty(t, *u.Password)

	assert.Equal(t, tiers.TierFree, rec.Tier)
	require.NotNil(t, rec.StripeCustomerID)
	assert.Equal(t, "cus_1", *rec.StripeCustomerID)
	require.NotNil(t, rec.StripeSubscriptionID)
	assert.Equal(t, "sub_1", *rec.StripeSubscriptionID)

	assert.Equal(t, "buyer@example.com", notifiedEmail)
	assert.NotEmpty(t, notifiedToken)
	require.Len(t, identities.tokens, 1)
	assert.Equal(t, users.TokenTypePasswordSetup, identities.tokens[0].Type)
	assert.Equal(t, notifiedToken, identities.tokens[0].Token)
}

func TestProvisionCompensatesOnRecordFailure(t *testing.T) {
	store := newFakeStore()
	store.createErr = errors.New("insert failed")
	identities := newFakeIdentities()

	p := NewProvisioner(identities, store, nil, zerolog.Nop())

	_, err := p.Provision(context.Background(), ProvisionInput{
		Email:       "buyer@example.com",
		CustomerRef: "cus_1",
	})
	require.ErrorIs(t, err, ErrProvisioningPartial)

	// The identity created before the failed insert must be rolled back.
	assert.Empty(t, identities.users)
	assert.Len(t, identities.deleted, 1)
}

func TestProvisionAttachesToExistingIdentity(t *testing.T) {
	store := newFakeStore()
	identities := newFakeIdentities()
	existing := identities.seed(users.User{Email: "buyer@example.com", Name: "Buyer"})
	rec := store.add(NewFreeRecord(existing.ID))

	p := NewProvisioner(identities, store, nil, zerolog.Nop())

	got, err := p.Provision(context.Background(), ProvisionInput{
		Email:           "buyer@example.com",
		CustomerRef:     "cus_9",
		SubscriptionRef: "sub_9",
	})
	require.NoError(t, err)

	assert.Equal(t, rec.ID, got.ID)
	assert.Len(t, identities.users, 1)

	stored, _ := store.GetByUserID(context.Background(), existing.ID)
	require.NotNil(t, stored.StripeCustomerID)
	assert.Equal(t, "cus_9", *stored.StripeCustomerID)
}

func TestProvisionRepairsMissingRecord(t *testing.T) {
	store := newFakeStore()
	identities := newFakeIdentities()
	existing := identities.seed(users.User{Email: "buyer@example.com"})

	p := NewProvisioner(identities, store, nil, zerolog.Nop())

	got, err := p.Provision(context.Background(), ProvisionInput{
		Email:       "buyer@example.com",
		CustomerRef: "cus_9",
	})
	require.NoError(t, err)
	assert.Equal(t, existing.ID, got.UserID)
	assert.Equal(t, tiers.TierFree, got.Tier)
}

func TestProvisionRequiresEmail(t *testing.T) {
	p := NewProvisioner(newFakeIdentities(), newFakeStore(), nil, zerolog.Nop())
	_, err := p.Provision(context.Background(), ProvisionInput{CustomerRef: "cus_1"})
	assert.Error(t, err)
}

func TestProvisionNotifyFailureIsNotFatal(t *testing.T) {
	store := newFakeStore()
	identities := newFakeIdentities()
	notify := func(email, name, token string) error { return errors.New("smtp down") }

	p := NewProvisioner(identities, store, notify, zerolog.Nop())

	rec, err := p.Provision(context.Background(), ProvisionInput{
		Email:       "buyer@example.com",
		CustomerRef: "cus_1",
	})
	require.NoError(t, err)
	assert.NotNil(t, rec)
}
