package payments

import (
	"context"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
)

// ErrIntentNotFound signals that the remote payment intent no longer exists
// upstream. The reconciler falls back to creating a fresh intent on it; every
// other gateway failure propagates untouched.
var ErrIntentNotFound = errors.New("payment intent not found")

// Intent is the slice of a remote payment intent this service cares about
type Intent struct {
	ID           string
	ClientSecret string
}

// StripeGateway drives payment intents against the Stripe API. Amounts are
// minor currency units.
type StripeGateway struct {
	currency string
}

// NewStripeGateway configures the Stripe client and returns a gateway bound
// to the given currency
func NewStripeGateway(secretKey, currency string) *StripeGateway {
	stripe.Key = secretKey
	return &StripeGateway{currency: currency}
}

// CreateIntent creates a new payment intent for the given amount
func (g *StripeGateway) CreateIntent(ctx context.Context, amount int64) (*Intent, error) {
	params := &stripe.PaymentIntentParams{
		Params:             stripe.Params{Context: ctx},
		Amount:             stripe.Int64(amount),
		Currency:           stripe.String(g.currency),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
	}

	intent, err := paymentintent.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}

	return &Intent{ID: intent.ID, ClientSecret: intent.ClientSecret}, nil
}

// UpdateIntentAmount updates the amount of an existing intent in place.
// Returns ErrIntentNotFound when the intent id has expired upstream.
func (g *StripeGateway) UpdateIntentAmount(ctx context.Context, intentID string, amount int64) error {
	params := &stripe.PaymentIntentParams{
		Params: stripe.Params{Context: ctx},
		Amount: stripe.Int64(amount),
	}

	_, err := paymentintent.Update(intentID, params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && stripeErr.Code == stripe.ErrorCodeResourceMissing {
			return fmt.Errorf("intent %s: %w", intentID, ErrIntentNotFound)
		}
		return fmt.Errorf("failed to update payment intent: %w", err)
	}
	return nil
}
