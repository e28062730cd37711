package disputes

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/drivemate/rental-platform/internal/tripcharges"
	"github.com/drivemate/rental-platform/pkg/models"
)

// Repository handles dispute database operations over charge records. All
// transitions are compare-and-swap updates keyed on the current status, so
// two admins resolving the same dispute cannot both win.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new dispute repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// GetChargeRecord loads a charge record by ID
func (r *Repository) GetChargeRecord(ctx context.Context, recordID uuid.UUID) (*tripcharges.TripChargeRecord, error) {
	query := `
		SELECT id, booking_id, guest_id, charges, total_charges,
			charge_status, warnings,
			dispute_reason, disputed_at, dispute_resolved_at, dispute_resolution,
			requires_approval, created_at, updated_at
		FROM trip_charges
		WHERE id = $1
	`

	var record tripcharges.TripChargeRecord
	var chargesJSON, warningsJSON []byte
	err := r.db.QueryRow(ctx, query, recordID).Scan(
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

// GetGuestProfile loads a guest profile by user ID
func (r *Repository) GetGuestProfile(ctx context.Context, guestID uuid.UUID) (*models.GuestProfile, error) {
	query := `
		SELECT user_id, personal_insurance_verified, personal_insurance_expiry,
			stripe_customer_id, default_payment_method_id, suspension_level,
			suspended_at, suspended_reason, suspension_expires_at, created_at, updated_at
		FROM guest_profiles
		WHERE user_id = $1
	`

	var g models.GuestProfile
	err := r.db.QueryRow(ctx, query, guestID).Scan(
		&g.UserID, &g.PersonalInsuranceVerified, &g.PersonalInsuranceExpiry,
		&g.StripeCustomerID, &g.DefaultPaymentMethodID, &g.SuspensionLevel,
		&g.SuspendedAt, &g.SuspendedReason, &g.SuspensionExpiresAt, &g.CreatedAt, &g.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &g, nil
}

// MarkDisputed moves a pending charge record to disputed
func (r *Repository) MarkDisputed(ctx context.Context, recordID uuid.UUID, reason string) (bool, error) {
	query := `
		UPDATE trip_charges SET
			charge_status = $1, dispute_reason = $2, disputed_at = NOW(), updated_at = NOW()
		WHERE id = $3 AND charge_status = $4
	`
	tag, err := r.db.Exec(ctx, query,
		tripcharges.ChargeStatusDisputed, reason, recordID, tripcharges.ChargeStatusPending)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// ResolveToCharged moves a disputed record to charged and marks the parent
// booking paid, in one transaction.
func (r *Repository) ResolveToCharged(ctx context.Context, recordID, bookingID uuid.UUID, resolution string) (bool, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx)

	recordQuery := `
		UPDATE trip_charges SET
			charge_status = $1, dispute_resolution = $2,
			dispute_resolved_at = NOW(), updated_at = NOW()
		WHERE id = $3 AND charge_status = $4
	`
	tag, err := tx.Exec(ctx, recordQuery,
		tripcharges.ChargeStatusCharged, resolution, recordID, tripcharges.ChargeStatusDisputed)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() != 1 {
		return false, nil
	}

	bookingQuery := `UPDATE bookings SET payment_status = $1, updated_at = NOW() WHERE id = $2`
	if _, err := tx.Exec(ctx, bookingQuery, models.PaymentStatusPaid, bookingID); err != nil {
		return false, err
	}

	return true, tx.Commit(ctx)
}

// ResolveToWaived moves a disputed record to waived, zeroes the owed amount,
// and marks the parent booking charges_waived, in one transaction.
func (r *Repository) ResolveToWaived(ctx context.Context, recordID, bookingID uuid.UUID, resolution string) (bool, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx)

	recordQuery := `
		UPDATE trip_charges SET
			charge_status = $1, total_charges = 0, dispute_resolution = $2,
			dispute_resolved_at = NOW(), updated_at = NOW()
		WHERE id = $3 AND charge_status = $4
	`
	tag, err := tx.Exec(ctx, recordQuery,
		tripcharges.ChargeStatusWaived, resolution, recordID, tripcharges.ChargeStatusDisputed)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() != 1 {
		return false, nil
	}

	bookingQuery := `UPDATE bookings SET payment_status = $1, updated_at = NOW() WHERE id = $2`
	if _, err := tx.Exec(ctx, bookingQuery, models.PaymentStatusChargesWaived, bookingID); err != nil {
		return false, err
	}

	return true, tx.Commit(ctx)
}

// ResolveToAdjusted moves a disputed record to adjusted with the post-waiver
// remainder as the new total.
func (r *Repository) ResolveToAdjusted(ctx context.Context, recordID uuid.UUID, newTotal float64, resolution string) (bool, error) {
	query := `
		UPDATE trip_charges SET
			charge_status = $1, total_charges = $2, dispute_resolution = $3,
			dispute_resolved_at = NOW(), updated_at = NOW()
		WHERE id = $4 AND charge_status = $5
	`
	tag, err := r.db.Exec(ctx, query,
		tripcharges.ChargeStatusAdjusted, newTotal, resolution, recordID, tripcharges.ChargeStatusDisputed)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// MarkEscalated flags a disputed record for administrative approval. The
// record stays disputed; the note is appended to the resolution trail.
func (r *Repository) MarkEscalated(ctx context.Context, recordID uuid.UUID, note string) (bool, error) {
	query := `
		UPDATE trip_charges SET
			requires_approval = TRUE,
			dispute_resolution = COALESCE(dispute_resolution || E'\n', '') || $1,
			updated_at = NOW()
		WHERE id = $2 AND charge_status = $3
	`
	tag, err := r.db.Exec(ctx, query, note, recordID, tripcharges.ChargeStatusDisputed)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
