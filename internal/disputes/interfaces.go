package disputes

import (
	"context"

	"github.com/google/uuid"

	"github.com/drivemate/rental-platform/internal/payments"
	"github.com/drivemate/rental-platform/internal/tripcharges"
	"github.com/drivemate/rental-platform/pkg/models"
)

// RepositoryInterface defines the dispute persistence operations. Every
// state transition is a compare-and-swap on the current charge status; a
// false return means the record was not in the expected state and nothing
// changed.
type RepositoryInterface interface {
	GetChargeRecord(ctx context.Context, recordID uuid.UUID) (*tripcharges.TripChargeRecord, error)
	GetGuestProfile(ctx context.Context, guestID uuid.UUID) (*models.GuestProfile, error)
	MarkDisputed(ctx context.Context, recordID uuid.UUID, reason string) (bool, error)
	ResolveToCharged(ctx context.Context, recordID, bookingID uuid.UUID, resolution string) (bool, error)
	ResolveToWaived(ctx context.Context, recordID, bookingID uuid.UUID, resolution string) (bool, error)
	ResolveToAdjusted(ctx context.Context, recordID uuid.UUID, newTotal float64, resolution string) (bool, error)
	MarkEscalated(ctx context.Context, recordID uuid.UUID, note string) (bool, error)
}

// NotifierInterface is the notification collaborator for dispute events
type NotifierInterface interface {
	NotifyDisputeResolved(ctx context.Context, guestID uuid.UUID, bookingID uuid.UUID, action string, amount float64)
}

// StripeClientInterface is the payment collaborator for charge_anyway
type StripeClientInterface interface {
	ChargeOffSession(customerID, paymentMethodID string, amountCents int64, currency, description, idempotencyKey string, metadata map[string]string) (*payments.ChargeResult, error)
}
