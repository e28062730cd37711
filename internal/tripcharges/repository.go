package tripcharges

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/drivemate/rental-platform/pkg/models"
)

// Repository handles trip charge database operations
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new trip charge repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// GetBooking loads a booking by ID
func (r *Repository) GetBooking(ctx context.Context, bookingID uuid.UUID) (*models.Booking, error) {
	query := `
		SELECT id, vehicle_id, guest_id, host_id,
			start_date, scheduled_end_date, actual_end_date, number_of_days,
			start_mileage, end_mileage, fuel_level_start, fuel_level_end,
			deposit_held, status, payment_status,
			created_at, updated_at
		FROM bookings
		WHERE id = $1
	`

	var b models.Booking
	err := r.db.QueryRow(ctx, query, bookingID).Scan(
		&b.ID, &b.VehicleID, &b.GuestID, &b.HostID,
		&b.StartDate, &b.ScheduledEndDate, &b.ActualEndDate, &b.NumberOfDays,
		&b.StartMileage, &b.EndMileage, &b.FuelLevelStart, &b.FuelLevelEnd,
		&b.DepositHeld, &b.Status, &b.PaymentStatus,
		&b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &b, nil
}

// CreateChargeRecord persists a computed trip charge result
func (r *Repository) CreateChargeRecord(ctx context.Context, record *TripChargeRecord) error {
	chargesJSON, err := json.Marshal(record.Charges)
	if err != nil {
		return err
	}
	warningsJSON, _ := json.Marshal(record.Warnings)

	query := `
		INSERT INTO trip_charges (
			id, booking_id, guest_id, charges, total_charges,
			charge_status, warnings, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err = r.db.Exec(ctx, query,
		record.ID, record.BookingID, record.GuestID, chargesJSON, record.TotalCharges,
		record.ChargeStatus, warningsJSON, record.CreatedAt, record.UpdatedAt,
	)
	return err
}

// GetChargeRecord loads a charge record by ID
func (r *Repository) GetChargeRecord(ctx context.Context, id uuid.UUID) (*TripChargeRecord, error) {
	return r.scanChargeRecord(ctx, `WHERE id = $1`, id)
}

// GetChargeRecordByBooking loads the charge record for a booking
func (r *Repository) GetChargeRecordByBooking(ctx context.Context, bookingID uuid.UUID) (*TripChargeRecord, error) {
	return r.scanChargeRecord(ctx, `WHERE booking_id = $1`, bookingID)
}

func (r *Repository) scanChargeRecord(ctx context.Context, where string, arg any) (*TripChargeRecord, error) {
	query := `
		SELECT id, booking_id, guest_id, charges, total_charges,
			charge_status, warnings,
			dispute_reason, disputed_at, dispute_resolved_at, dispute_resolution,
			requires_approval, created_at, updated_at
		FROM trip_charges ` + where

	var record TripChargeRecord
	var chargesJSON, warningsJSON []byte
	err := r.db.QueryRow(ctx, query, arg).Scan(
		&record.ID, &record.BookingID, &record.GuestID, &chargesJSON, &record.TotalCharges,
		&record.ChargeStatus, &warningsJSON,
		&record.DisputeReason, &record.DisputedAt, &record.DisputeResolvedAt, &record.DisputeResolution,
		&record.RequiresApproval, &record.CreatedAt, &record.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	_ = json.Unmarshal(chargesJSON, &record.Charges)
	_ = json.Unmarshal(warningsJSON, &record.Warnings)

	return &record, nil
}

// CompleteBooking records trip-end readings and marks the booking completed
func (r *Repository) CompleteBooking(ctx context.Context, bookingID uuid.UUID, endMileage float64, fuelLevelEnd string, actualEndDate time.Time) error {
	query := `
		UPDATE bookings SET
			end_mileage = $1, fuel_level_end = $2, actual_end_date = $3,
			status = 'completed', updated_at = NOW()
		WHERE id = $4
	`
	_, err := r.db.Exec(ctx, query, endMileage, fuelLevelEnd, actualEndDate, bookingID)
	return err
}
