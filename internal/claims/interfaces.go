package claims

import (
	"context"

	"github.com/google/uuid"

	"github.com/drivemate/rental-platform/internal/payments"
	"github.com/drivemate/rental-platform/pkg/models"
)

// RepositoryInterface defines the claim persistence operations
type RepositoryInterface interface {
	GetBooking(ctx context.Context, bookingID uuid.UUID) (*models.Booking, error)
	GetHostProfile(ctx context.Context, hostID uuid.UUID) (*models.HostProfile, error)
	GetGuestProfile(ctx context.Context, guestID uuid.UUID) (*models.GuestProfile, error)
	CreateClaim(ctx context.Context, claim *Claim, hold *models.AccountHold) error
	GetClaim(ctx context.Context, claimID uuid.UUID) (*Claim, error)
	ListClaimsByHost(ctx context.Context, hostID uuid.UUID) ([]Claim, error)
	UpdateClaimStatus(ctx context.Context, claimID uuid.UUID, from, to ClaimStatus) (bool, error)
	RecordGuestRecovery(ctx context.Context, claimID uuid.UUID, amount float64, newStatus RecoveryStatus, releaseHold bool, transfer *PendingTransfer) error
	ListPendingTransfers(ctx context.Context) ([]PendingTransfer, error)
	GetPendingTransfer(ctx context.Context, transferID uuid.UUID) (*PendingTransfer, error)
	MarkTransferResult(ctx context.Context, transferID uuid.UUID, status TransferStatus, stripeTransferID *string, lastError *string) error
}

// NotifierInterface is the notification collaborator for claim events
type NotifierInterface interface {
	NotifyClaimRecovery(ctx context.Context, guestID uuid.UUID, claimID uuid.UUID, amount float64)
}

// StripeClientInterface is the payment collaborator used for guest recovery
// charges and host payout transfers.
type StripeClientInterface interface {
	ChargeOffSession(customerID, paymentMethodID string, amountCents int64, currency, description, idempotencyKey string, metadata map[string]string) (*payments.ChargeResult, error)
	CreateTransfer(destinationAccountID string, amountCents int64, currency, description string, metadata map[string]string) (*payments.TransferResult, error)
}
