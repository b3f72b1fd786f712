package payments

import (
	"context"
	"fmt"

	"github.com/benjithedalilama/eat-wild/internal/domain"
	"github.com/cockroachdb/errors"
	stripe "github.com/stripe/stripe-go/v83"
	"github.com/stripe/stripe-go/v83/checkout/session"
	"github.com/stripe/stripe-go/v83/webhook"
)

// CheckoutSessionCompleted is the only event type that creates a ticket; all
// other types are acknowledged without action.
const CheckoutSessionCompleted = "checkout.session.completed"

type Client struct {
	webhookSecret string
	appURL        string
}

func New(secretKey, webhookSecret, appURL string) *Client {
	stripe.Key = secretKey
	return &Client{webhookSecret: webhookSecret, appURL: appURL}
}

// CreateCheckoutSession opens a hosted payment page for one ticket. The
// booking intent travels as session metadata and comes back in the webhook;
// no local state is written here.
func (c *Client) CreateCheckoutSession(ctx context.Context, ev *domain.Event, customerName, customerEmail string) (string, error) {
	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String("usd"),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name:        stripe.String(ev.Title),
						Description: stripe.String(ev.Description + " - " + ev.Date),
					},
					// price is stored in whole dollars
					UnitAmount: stripe.Int64(ev.Price * 100),
				},
				Quantity: stripe.Int64(1),
			},
		},
		Mode:          stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:    stripe.String(fmt.Sprintf("%s/events/%s/success?session_id={CHECKOUT_SESSION_ID}", c.appURL, ev.ID)),
		CancelURL:     stripe.String(fmt.Sprintf("%s/events/%s/cancel", c.appURL, ev.ID)),
		CustomerEmail: stripe.String(customerEmail),
	}
	params.Context = ctx
	params.AddMetadata("eventId", ev.ID)
	params.AddMetadata("customerName", customerName)
	params.AddMetadata("customerEmail", customerEmail)

	s, err := session.New(params)
	if err != nil {
		return "", errors.Mark(errors.Wrap(err, "create checkout session"), domain.ErrUpstream)
	}
	return s.URL, nil
}

// VerifyEvent checks the Stripe-Signature header against the raw payload.
// Any failure means the request cannot be trusted and must not change state.
func (c *Client) VerifyEvent(payload []byte, sigHeader string) (stripe.Event, error) {
	event, err := webhook.ConstructEvent(payload, sigHeader, c.webhookSecret)
	if err != nil {
		return stripe.Event{}, errors.Mark(err, domain.ErrBadSignature)
	}
	return event, nil
}
