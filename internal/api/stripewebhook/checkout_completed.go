package stripewebhooks

import (
	"errors"
	"fmt"

	"adpilot-app/internal/domain/entitlement"
	stripeinfra "adpilot-app/internal/infra/stripe"

	"github.com/stripe/stripe-go/v75"
	checkoutsession "github.com/stripe/stripe-go/v75/checkout/session"
	"github.com/stripe/stripe-go/v75/subscription"
)

// buildCheckoutEvent turns a checkout.session.completed payload into the
// engine's event shape. The session payload does not carry the subscription
// items, so the expanded session and its subscription are fetched from Stripe,
// exactly once, before anything is written.
func buildCheckoutEvent(event *stripe.Event, session *stripe.CheckoutSession) (entitlement.SubscriptionEvent, error) {
	fullSession, err := checkoutsession.Get(session.ID, &stripe.CheckoutSessionParams{
		Params: stripe.Params{
			Expand: []*string{
				stripe.String("subscription"),
				stripe.String("customer"),
			},
		},
	})
	if err != nil {
		return entitlement.SubscriptionEvent{}, fmt.Errorf("fetch expanded checkout session: %w", err)
	}

	if fullSession.Subscription == nil || fullSession.Subscription.ID == "" {
		return entitlement.SubscriptionEvent{}, errors.New("checkout session missing subscription")
	}

	subData, err := subscription.Get(fullSession.Subscription.ID, nil)
	if err != nil {
		return entitlement.SubscriptionEvent{}, fmt.Errorf("fetch subscription %s: %w", fullSession.Subscription.ID, err)
	}

	ev, err := stripeinfra.FromSubscription(event.ID, event.Created, entitlement.EventCheckoutCompleted, subData)
	if err != nil {
		return entitlement.SubscriptionEvent{}, err
	}

	// Customer details feed the identity provisioner if this customer is new.
	// Only contact data; never a credential.
	if fullSession.CustomerDetails != nil {
		ev.CustomerEmail = fullSession.CustomerDetails.Email
		ev.CustomerName = fullSession.CustomerDetails.Name
	}
	if ev.CustomerEmail == "" && fullSession.Customer != nil {
		ev.CustomerEmail = fullSession.Customer.Email
	}
	if fullSession.Metadata != nil {
		ev.OrgName = fullSession.Metadata["org_name"]
	}
	return ev, nil
}
