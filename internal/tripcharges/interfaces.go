package tripcharges

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/drivemate/rental-platform/pkg/models"
)

// RepositoryInterface defines the trip charge persistence operations
type RepositoryInterface interface {
	GetBooking(ctx context.Context, bookingID uuid.UUID) (*models.Booking, error)
	GetChargeRecordByBooking(ctx context.Context, bookingID uuid.UUID) (*TripChargeRecord, error)
	GetChargeRecord(ctx context.Context, id uuid.UUID) (*TripChargeRecord, error)
	CreateChargeRecord(ctx context.Context, record *TripChargeRecord) error
	CompleteBooking(ctx context.Context, bookingID uuid.UUID, endMileage float64, fuelLevelEnd string, actualEndDate time.Time) error
}

// NotifierInterface is the notification collaborator used on finalization
type NotifierInterface interface {
	NotifyChargesFinalized(ctx context.Context, guestID uuid.UUID, bookingID uuid.UUID, total float64)
}
