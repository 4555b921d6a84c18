package entitlement

import (
	"context"
	"fmt"

	"adpilot-app/internal/domain/billing"
	"adpilot-app/internal/domain/tiers"

	"github.com/rs/zerolog"
)

// Engine is the reconciliation state machine. Given a verified, deduplicated
// provider event it computes and idempotently upserts the new entitlement
// state. It never infers a transition locally; provider events are the only
// source of truth.
type Engine struct {
	store       Store
	catalog     *tiers.Catalog
	provisioner *Provisioner
	payments    PaymentRecorder
	log         zerolog.Logger
}

func NewEngine(store Store, catalog *tiers.Catalog, provisioner *Provisioner, payments PaymentRecorder, logger zerolog.Logger) *Engine {
	return &Engine{
		store:       store,
		catalog:     catalog,
		provisioner: provisioner,
		payments:    payments,
		log:         logger.With().Str("component", "reconciliation-engine").Logger(),
	}
}

// Apply dispatches one parsed event to the matching transition.
func (e *Engine) Apply(ctx context.Context, ev SubscriptionEvent) error {
	switch ev.Type {
	case EventCheckoutCompleted, EventSubscriptionUpdated:
		return e.applySubscriptionChange(ctx, ev)
	case EventSubscriptionDeleted:
		return e.applySubscriptionDeleted(ctx, ev)
	case EventPaymentSucceeded:
		return e.applyPaymentSucceeded(ctx, ev)
	default:
		return fmt.Errorf("unhandled event type %q", ev.Type)
	}
}

// applySubscriptionChange handles checkout completion and subscription
// updates, both of which carry a subscription with a price.
func (e *Engine) applySubscriptionChange(ctx context.Context, ev SubscriptionEvent) error {
	desc, cycle, err := e.catalog.Resolve(ev.PriceID)
	if err != nil {
		// Misconfiguration, not bad data from the user. Never guess a tier.
		e.log.Error().Err(err).
			Str("event_id", ev.EventID).
			Str("price_id", ev.PriceID).
			Msg("ALERT: cannot resolve price to a tier")
		return fmt.Errorf("%w: %v", ErrTierResolution, err)
	}

	status := NormalizeStatus(ev.ProviderStatus)

	rec, err := e.store.GetByCustomerRef(ctx, ev.CustomerRef)
	if err != nil {
		return fmt.Errorf("lookup entitlement for %s: %w", ev.CustomerRef, err)
	}
	if rec == nil {
		if ev.Type != EventCheckoutCompleted {
			return fmt.Errorf("%w: %s on %s", ErrUnknownCustomer, ev.CustomerRef, ev.Type)
		}
		rec, err = e.provisioner.Provision(ctx, ProvisionInput{
			Email:           ev.CustomerEmail,
			Name:            ev.CustomerName,
			OrgName:         ev.OrgName,
			CustomerRef:     ev.CustomerRef,
			SubscriptionRef: ev.SubscriptionRef,
		})
		if err != nil {
			return err
		}
	}

	// Failure statuses keep their status value for visibility but never grant
	// a paid tier.
	tierName := desc.Tier
	limit := desc.MonthlyCreditQuota
	if !LiveStatus(status) {
		free, _ := tiers.Describe(tiers.TierFree)
		tierName = free.Tier
		limit = free.MonthlyCreditQuota
	}

	updates := map[string]interface{}{
		"tier":                   tierName,
		"status":                 status,
		"billing_cycle":          cycle,
		"trial_end":              ev.TrialEnd,
		"credits_limit":          limit,
		"stripe_customer_id":     ev.CustomerRef,
		"stripe_subscription_id": nullable(ev.SubscriptionRef),
	}

	applied, err := e.store.ApplyIfNewer(ctx, rec.ID, ev.Timestamp, updates)
	if err != nil {
		return fmt.Errorf("apply subscription change: %w", err)
	}
	if !applied {
		e.log.Info().
			Str("event_id", ev.EventID).
			Time("event_ts", ev.Timestamp).
			Msg("skipping stale subscription event")
		return nil
	}

	e.log.Info().
		Str("event_id", ev.EventID).
		Str("customer", ev.CustomerRef).
		Str("tier", tierName).
		Str("status", status).
		Msg("entitlement reconciled")
	return nil
}

// applySubscriptionDeleted floors the record to free/canceled. The row itself
// survives; creditsUsed is untouched.
func (e *Engine) applySubscriptionDeleted(ctx context.Context, ev SubscriptionEvent) error {
	rec, err := e.store.GetByCustomerRef(ctx, ev.CustomerRef)
	if err != nil {
		return fmt.Errorf("lookup entitlement for %s: %w", ev.CustomerRef, err)
	}
	if rec == nil {
		e.log.Warn().
			Str("event_id", ev.EventID).
			Str("customer", ev.CustomerRef).
			Msg("subscription deleted for unknown customer, nothing to do")
		return nil
	}

	free, _ := tiers.Describe(tiers.TierFree)
	updates := map[string]interface{}{
		"tier":          free.Tier,
		"status":        StatusCanceled,
		"billing_cycle": nil,
		"trial_end":     nil,
		"credits_limit": free.MonthlyCreditQuota,
	}

	applied, err := e.store.ApplyIfNewer(ctx, rec.ID, ev.Timestamp, updates)
	if err != nil {
		return fmt.Errorf("apply subscription deleted: %w", err)
	}
	if !applied {
		e.log.Info().
			Str("event_id", ev.EventID).
			Time("event_ts", ev.Timestamp).
			Msg("skipping stale subscription deletion")
		return nil
	}

	e.log.Info().
		Str("event_id", ev.EventID).
		Str("customer", ev.CustomerRef).
		Msg("entitlement floored to free after cancellation")
	return nil
}

// applyPaymentSucceeded touches status only; tier and credits_limit stay as
// they are. Also appends a payment history row, deduped by invoice id.
func (e *Engine) applyPaymentSucceeded(ctx context.Context, ev SubscriptionEvent) error {
	rec, err := e.store.GetByCustomerRef(ctx, ev.CustomerRef)
	if err != nil {
		return fmt.Errorf("lookup entitlement for %s: %w", ev.CustomerRef, err)
	}
	if rec == nil {
		return fmt.Errorf("%w: %s on %s", ErrUnknownCustomer, ev.CustomerRef, ev.Type)
	}

	status := NormalizeStatus(ev.ProviderStatus)
	applied, err := e.store.ApplyIfNewer(ctx, rec.ID, ev.Timestamp, map[string]interface{}{
		"status": status,
	})
	if err != nil {
		return fmt.Errorf("apply payment succeeded: %w", err)
	}
	if !applied {
		e.log.Info().
			Str("event_id", ev.EventID).
			Time("event_ts", ev.Timestamp).
			Msg("skipping stale payment event")
	}

	if e.payments != nil && ev.InvoiceID != "" {
		payment := &billing.Payment{
			UserID:               rec.UserID,
			Tier:                 rec.Tier,
			StripeInvoiceID:      ev.InvoiceID,
			StripeSubscriptionID: nullable(ev.SubscriptionRef),
			Amount:               ev.Amount,
			Currency:             ev.Currency,
			Status:               "succeeded",
			ReceiptURL:           nullable(ev.ReceiptURL),
		}
		if err := e.payments.RecordPayment(ctx, payment); err != nil {
			e.log.Warn().Err(err).
				Str("invoice_id", ev.InvoiceID).
				Msg("failed to record payment history")
		}
	}
	return nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
