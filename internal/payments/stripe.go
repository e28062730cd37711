package payments

import (
	"github.com/stripe/stripe-go/v83"
	"github.com/stripe/stripe-go/v83/paymentintent"
	"github.com/stripe/stripe-go/v83/refund"
	"github.com/stripe/stripe-go/v83/transfer"
	"go.uber.org/zap"

	"github.com/drivemate/rental-platform/pkg/config"
	"github.com/drivemate/rental-platform/pkg/logger"
)

// StripeClient is the production payment processor client
type StripeClient struct{}

// NewStripeClient configures the Stripe SDK and returns a client
func NewStripeClient(cfg *config.StripeConfig) *StripeClient {
	stripe.Key = cfg.SecretKey
	return &StripeClient{}
}

// ChargeOffSession charges a stored payment method via a confirmed
// off-session PaymentIntent. A processor decline is returned as a failed
// ChargeResult, not an error; errors mean the call itself could not be made.
func (c *StripeClient) ChargeOffSession(customerID, paymentMethodID string, amountCents int64, currency, description, idempotencyKey string, metadata map[string]string) (*ChargeResult, error) {
	params := &stripe.PaymentIntentParams{
		Amount:        stripe.Int64(amountCents),
		Currency:      stripe.String(currency),
		Customer:      stripe.String(customerID),
		PaymentMethod: stripe.String(paymentMethodID),
		Description:   stripe.String(description),
		Confirm:       stripe.Bool(true),
		OffSession:    stripe.Bool(true),
	}
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}
	if idempotencyKey != "" {
		params.SetIdempotencyKey(idempotencyKey)
	}

	pi, err := paymentintent.New(params)
	if err != nil {
		if stripeErr, ok := err.(*stripe.Error); ok {
			logger.Warn("Stripe charge declined",
				zap.String("customer_id", customerID),
				zap.Int64("amount_cents", amountCents),
				zap.String("decline_code", string(stripeErr.Code)),
			)
			return &ChargeResult{Status: ChargeFailed, Error: stripeErr.Msg}, nil
		}
		return nil, err
	}

	if pi.Status != stripe.PaymentIntentStatusSucceeded {
		return &ChargeResult{Status: ChargeFailed, Error: string(pi.Status)}, nil
	}

	return &ChargeResult{Status: ChargeSucceeded, ChargeID: pi.ID}, nil
}

// CreateTransfer moves funds to a connected host payout account
func (c *StripeClient) CreateTransfer(destinationAccountID string, amountCents int64, currency, description string, metadata map[string]string) (*TransferResult, error) {
	params := &stripe.TransferParams{
		Amount:      stripe.Int64(amountCents),
		Currency:    stripe.String(currency),
		Destination: stripe.String(destinationAccountID),
		Description: stripe.String(description),
	}
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	tr, err := transfer.New(params)
	if err != nil {
		if stripeErr, ok := err.(*stripe.Error); ok {
			return &TransferResult{Status: ChargeFailed, Error: stripeErr.Msg}, nil
		}
		return nil, err
	}

	return &TransferResult{Status: ChargeSucceeded, TransferID: tr.ID}, nil
}

// CreateRefund refunds a previous charge
func (c *StripeClient) CreateRefund(chargeID string, amountCents *int64, reason string) (*ChargeResult, error) {
	params := &stripe.RefundParams{
		Charge: stripe.String(chargeID),
	}
	if amountCents != nil {
		params.Amount = stripe.Int64(*amountCents)
	}

	r, err := refund.New(params)
	if err != nil {
		if stripeErr, ok := err.(*stripe.Error); ok {
			return &ChargeResult{Status: ChargeFailed, Error: stripeErr.Msg}, nil
		}
		return nil, err
	}

	return &ChargeResult{Status: ChargeSucceeded, ChargeID: r.ID}, nil
}

// DollarsToCents converts a dollar amount to integer cents for the processor
func DollarsToCents(amount float64) int64 {
	return int64(amount*100 + 0.5)
}
