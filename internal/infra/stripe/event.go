package stripe

import (
	"fmt"
	"time"

	"adpilot-app/internal/domain/entitlement"

	"github.com/stripe/stripe-go/v75"
)

// FromSubscription turns a Stripe subscription payload into the engine's
// event shape. The event's own created time is carried as the ordering key.
func FromSubscription(eventID string, eventCreated int64, eventType string, sub *stripe.Subscription) (entitlement.SubscriptionEvent, error) {
	if sub == nil || sub.ID == "" {
		return entitlement.SubscriptionEvent{}, fmt.Errorf("event %s: subscription missing id", eventID)
	}
	if sub.Customer == nil || sub.Customer.ID == "" {
		return entitlement.SubscriptionEvent{}, fmt.Errorf("event %s: subscription %s missing customer", eventID, sub.ID)
	}

	ev := entitlement.SubscriptionEvent{
		EventID:         eventID,
		Type:            eventType,
		Timestamp:       time.Unix(eventCreated, 0),
		CustomerRef:     sub.Customer.ID,
		SubscriptionRef: sub.ID,
		ProviderStatus:  string(sub.Status),
	}

	// Deletions don't need a price; everything else does.
	if eventType != entitlement.EventSubscriptionDeleted {
		if sub.Items == nil || len(sub.Items.Data) == 0 || sub.Items.Data[0].Price == nil {
			return entitlement.SubscriptionEvent{}, fmt.Errorf("event %s: subscription %s has no priced item", eventID, sub.ID)
		}
		ev.PriceID = sub.Items.Data[0].Price.ID
	}

	if sub.TrialEnd > 0 {
		t := time.Unix(sub.TrialEnd, 0)
		ev.TrialEnd = &t
	}
	return ev, nil
}

// FromInvoice maps a paid invoice onto a payment event. A paid invoice means
// the subscription is active; the engine only updates status from it.
func FromInvoice(eventID string, eventCreated int64, inv *stripe.Invoice) (entitlement.SubscriptionEvent, error) {
	if inv == nil || inv.Customer == nil || inv.Customer.ID == "" {
		return entitlement.SubscriptionEvent{}, fmt.Errorf("event %s: invoice missing customer", eventID)
	}

	ev := entitlement.SubscriptionEvent{
		EventID:        eventID,
		Type:           entitlement.EventPaymentSucceeded,
		Timestamp:      time.Unix(eventCreated, 0),
		CustomerRef:    inv.Customer.ID,
		ProviderStatus: "active",
		InvoiceID:      inv.ID,
		Amount:         float64(inv.AmountPaid) / 100.0,
		Currency:       string(inv.Currency),
		ReceiptURL:     inv.HostedInvoiceURL,
	}
	if inv.Subscription != nil {
		ev.SubscriptionRef = inv.Subscription.ID
	}
	return ev, nil
}
