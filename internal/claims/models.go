package claims

import (
	"time"

	"github.com/google/uuid"
)

// ClaimType buckets what the host is claiming for
type ClaimType string

const (
	ClaimTypeDamage   ClaimType = "damage"
	ClaimTypeCleaning ClaimType = "cleaning"
	ClaimTypeOther    ClaimType = "other"
)

// ClaimStatus is the review lifecycle state of a claim
type ClaimStatus string

const (
	ClaimStatusPending        ClaimStatus = "pending"
	ClaimStatusApproved       ClaimStatus = "approved"
	ClaimStatusGuestResponded ClaimStatus = "guest_responded"
	ClaimStatusDenied         ClaimStatus = "denied"
)

// RecoveryStatus tracks how much of the guest responsibility has been collected
type RecoveryStatus string

const (
	RecoveryPending RecoveryStatus = "pending"
	RecoveryPartial RecoveryStatus = "partial"
	RecoveryFull    RecoveryStatus = "full"
)

// PayerType identifies whose insurance is primary for a claim
type PayerType string

const (
	PayerHostCommercial PayerType = "HOST_COMMERCIAL"
	PayerHostP2P        PayerType = "HOST_P2P"
	PayerPlatform       PayerType = "PLATFORM"
)

// InsuranceHierarchy is the resolved payer chain for a claim. It is computed
// once at claim creation and stored on the claim, never re-derived.
type InsuranceHierarchy struct {
	PrimaryPayer        PayerType `json:"primary_payer"`
	Deductible          float64   `json:"deductible"`
	GuestSecondary      bool      `json:"guest_secondary"`
	DepositApplied      float64   `json:"deposit_applied"`
	GuestResponsibility float64   `json:"guest_responsibility"`
}

// Claim is a host damage or cleaning claim against a completed booking
type Claim struct {
	ID                  uuid.UUID      `json:"id" db:"id"`
	BookingID           uuid.UUID      `json:"booking_id" db:"booking_id"`
	HostID              uuid.UUID      `json:"host_id" db:"host_id"`
	GuestID             uuid.UUID      `json:"guest_id" db:"guest_id"`
	ClaimType           ClaimType      `json:"claim_type" db:"claim_type"`
	Description         string         `json:"description" db:"description"`
	EstimatedCost       float64        `json:"estimated_cost" db:"estimated_cost"`
	PhotoURLs           []string       `json:"photo_urls,omitempty" db:"photo_urls"`
	Status              ClaimStatus    `json:"status" db:"status"`
	PrimaryPayer        PayerType      `json:"primary_payer" db:"primary_payer"`
	Deductible          float64        `json:"deductible" db:"deductible"`
	GuestSecondary      bool           `json:"guest_secondary" db:"guest_secondary"`
	DepositApplied      float64        `json:"deposit_applied" db:"deposit_applied"`
	GuestResponsibility float64        `json:"guest_responsibility" db:"guest_responsibility"`
	RecoveredFromGuest  float64        `json:"recovered_from_guest" db:"recovered_from_guest"`
	RecoveryStatus      RecoveryStatus `json:"recovery_status" db:"recovery_status"`
	CreatedAt           time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at" db:"updated_at"`
}

// Hierarchy reassembles the stored payer chain
func (c *Claim) Hierarchy() InsuranceHierarchy {
	return InsuranceHierarchy{
		PrimaryPayer:        c.PrimaryPayer,
		Deductible:          c.Deductible,
		GuestSecondary:      c.GuestSecondary,
		DepositApplied:      c.DepositApplied,
		GuestResponsibility: c.GuestResponsibility,
	}
}

// RemainingGuestResponsibility is what is still collectible from the guest
func (c *Claim) RemainingGuestResponsibility() float64 {
	remaining := c.GuestResponsibility - c.RecoveredFromGuest
	if remaining < 0 {
		return 0
	}
	return remaining
}

// TransferStatus is the lifecycle state of a queued host payout
type TransferStatus string

const (
	TransferPending   TransferStatus = "pending"
	TransferCompleted TransferStatus = "completed"
	TransferFailed    TransferStatus = "failed"
)

// PendingTransfer is a durable host payout row. Guest recoveries enqueue a
// transfer in the same transaction that records the charge; the Stripe
// transfer itself happens after commit and can be retried.
type PendingTransfer struct {
	ID                   uuid.UUID      `json:"id" db:"id"`
	ClaimID              uuid.UUID      `json:"claim_id" db:"claim_id"`
	HostID               uuid.UUID      `json:"host_id" db:"host_id"`
	DestinationAccountID string         `json:"destination_account_id" db:"destination_account_id"`
	Amount               float64        `json:"amount" db:"amount"`
	Currency             string         `json:"currency" db:"currency"`
	Status               TransferStatus `json:"status" db:"status"`
	Attempts             int            `json:"attempts" db:"attempts"`
	StripeTransferID     *string        `json:"stripe_transfer_id,omitempty" db:"stripe_transfer_id"`
	LastError            *string        `json:"last_error,omitempty" db:"last_error"`
	CreatedAt            time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time      `json:"updated_at" db:"updated_at"`
}

// CreateClaimRequest is the claim intake payload
type CreateClaimRequest struct {
	BookingID     uuid.UUID `json:"booking_id" binding:"required"`
	ClaimType     ClaimType `json:"claim_type" binding:"required,oneof=damage cleaning other"`
	Description   string    `json:"description" binding:"required,min=10"`
	EstimatedCost float64   `json:"estimated_cost" binding:"required,gt=0"`
	PhotoURLs     []string  `json:"photo_urls,omitempty"`
}

// RecoveryResult reports the outcome of a guest recovery charge
type RecoveryResult struct {
	Claim          *Claim  `json:"claim"`
	ChargedAmount  float64 `json:"charged_amount"`
	ChargeID       string  `json:"charge_id,omitempty"`
	TransferQueued bool    `json:"transfer_queued"`
}
