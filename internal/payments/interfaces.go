package payments

// ChargeResult is the processor's answer to a charge attempt, in the shape
// the claim and dispute services consume.
type ChargeResult struct {
	Status   ChargeStatus `json:"status"`
	ChargeID string       `json:"charge_id,omitempty"`
	Error    string       `json:"error,omitempty"`
}

// ChargeStatus is the outcome of a processor call
type ChargeStatus string

const (
	ChargeSucceeded ChargeStatus = "succeeded"
	ChargeFailed    ChargeStatus = "failed"
)

// TransferResult is the processor's answer to a payout transfer attempt
type TransferResult struct {
	Status     ChargeStatus `json:"status"`
	TransferID string       `json:"transfer_id,omitempty"`
	Error      string       `json:"error,omitempty"`
}

// StripeClientInterface defines the payment processor operations this
// service depends on. Idempotency and retries for money movement are owned
// by the processor; callers attempt once and report the outcome.
type StripeClientInterface interface {
	// ChargeOffSession charges a stored payment method without the guest
	// present. amountCents must be positive.
	ChargeOffSession(customerID, paymentMethodID string, amountCents int64, currency, description, idempotencyKey string, metadata map[string]string) (*ChargeResult, error)

	// CreateTransfer moves funds to a host's connected payout account.
	CreateTransfer(destinationAccountID string, amountCents int64, currency, description string, metadata map[string]string) (*TransferResult, error)

	// CreateRefund refunds a previous charge, fully or partially.
	CreateRefund(chargeID string, amountCents *int64, reason string) (*ChargeResult, error)
}
