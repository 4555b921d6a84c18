package stripewebhooks

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"adpilot-app/config"
	"adpilot-app/internal/domain/billing"
	"adpilot-app/internal/domain/entitlement"
	stripeinfra "adpilot-app/internal/infra/stripe"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stripe/stripe-go/v75"
	"github.com/stripe/stripe-go/v75/webhook"
)

const maxBodyBytes = 65536

// Retries vary by backoff timing only, never by write strategy.
const (
	conflictRetries = 3
	conflictBackoff = 100 * time.Millisecond
)

var eventTypes = map[stripe.EventType]string{
	"checkout.session.completed":    entitlement.EventCheckoutCompleted,
	"customer.subscription.updated": entitlement.EventSubscriptionUpdated,
	"customer.subscription.deleted": entitlement.EventSubscriptionDeleted,
	"invoice.payment_succeeded":     entitlement.EventPaymentSucceeded,
}

// Handler is the webhook ingestion gateway: signature check on the raw body,
// dedup insert, then dispatch into the reconciliation engine.
type Handler struct {
	engine *entitlement.Engine
	ledger entitlement.EventLedger
	log    zerolog.Logger
}

func NewHandler(engine *entitlement.Engine, ledger entitlement.EventLedger, logger zerolog.Logger) *Handler {
	return &Handler{
		engine: engine,
		ledger: ledger,
		log:    logger.With().Str("component", "webhook-gateway").Logger(),
	}
}

func (h *Handler) HandleWebhook(c *gin.Context) {
	// Stripe key is required for the follow-up API calls on checkout events.
	stripe.Key = config.STRIPE_SECRET_KEY

	payload, err := readRawBody(c, maxBodyBytes)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Error reading request body"})
		return
	}

	// Signature verification happens on the exact raw bytes, before any
	// parsing. A rejected delivery leaves no ledger row so Stripe may retry
	// with a correct signature.
	event, err := webhook.ConstructEventWithOptions(
		payload,
		c.GetHeader("Stripe-Signature"),
		config.STRIPE_WEBHOOK_SECRET,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true},
	)
	if err != nil {
		h.log.Warn().Err(err).Msg("webhook signature verification failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Signature verification failed"})
		return
	}

	// Durably mark the event as seen before any business processing. Stripe
	// redelivers on any non-2xx or timeout, so a second delivery of the same
	// id must be a cheap no-op.
	ledgerRow := &billing.ProviderEvent{
		Provider:       "stripe",
		EventID:        event.ID,
		EventType:      string(event.Type),
		EventCreatedAt: time.Unix(event.Created, 0),
	}
	if err := h.ledger.Record(c.Request.Context(), ledgerRow); err != nil {
		if errors.Is(err, entitlement.ErrDuplicateEvent) {
			c.JSON(http.StatusOK, gin.H{"status": "duplicate"})
			return
		}
		// The event is not recorded yet; let Stripe redeliver.
		h.log.Error().Err(err).Str("event_id", event.ID).Msg("failed to record webhook event")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record event"})
		return
	}

	internalType, ok := eventTypes[event.Type]
	if !ok {
		// Acknowledge unknown events to avoid redelivery storms.
		_ = h.ledger.MarkProcessed(c.Request.Context(), "stripe", event.ID)
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}

	ev, err := h.parseEvent(c.Request.Context(), &event, internalType)
	if err == nil {
		err = h.applyWithRetry(c.Request.Context(), ev)
	}
	if err != nil {
		// The event is already durably seen: acknowledge so Stripe stops
		// redelivering, record the failure for operator follow-up.
		h.log.Error().Err(err).
			Str("event_id", event.ID).
			Str("event_type", string(event.Type)).
			Msg("webhook processing failed after dedup record")
		_ = h.ledger.MarkFailed(c.Request.Context(), "stripe", event.ID, err)
		c.JSON(http.StatusOK, gin.H{"status": "accepted_with_error"})
		return
	}

	_ = h.ledger.MarkProcessed(c.Request.Context(), "stripe", event.ID)
	c.JSON(http.StatusOK, gin.H{"status": "received"})
}

func (h *Handler) parseEvent(ctx context.Context, event *stripe.Event, internalType string) (entitlement.SubscriptionEvent, error) {
	switch internalType {
	case entitlement.EventCheckoutCompleted:
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			return entitlement.SubscriptionEvent{}, err
		}
		return buildCheckoutEvent(event, &session)

	case entitlement.EventSubscriptionUpdated, entitlement.EventSubscriptionDeleted:
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return entitlement.SubscriptionEvent{}, err
		}
		return stripeinfra.FromSubscription(event.ID, event.Created, internalType, &sub)

	case entitlement.EventPaymentSucceeded:
		var inv stripe.Invoice
		if err := json.Unmarshal(event.Data.Raw, &inv); err != nil {
			return entitlement.SubscriptionEvent{}, err
		}
		return stripeinfra.FromInvoice(event.ID, event.Created, &inv)

	default:
		return entitlement.SubscriptionEvent{}, errors.New("unreachable event type")
	}
}

func (h *Handler) applyWithRetry(ctx context.Context, ev entitlement.SubscriptionEvent) error {
	var err error
	for attempt := 0; attempt < conflictRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(time.Duration(attempt) * conflictBackoff)
		}
		err = h.engine.Apply(ctx, ev)
		if err == nil || !errors.Is(err, entitlement.ErrPersistenceConflict) {
			return err
		}
	}
	return err
}

func readRawBody(c *gin.Context, maxBytes int64) ([]byte, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
	return io.ReadAll(c.Request.Body)
}
