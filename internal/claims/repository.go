package claims

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/drivemate/rental-platform/pkg/models"
)

// Repository handles claim database operations
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new claim repository
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

// GetHostProfile loads a host profile by user ID
func (r *Repository) GetHostProfile(ctx context.Context, hostID uuid.UUID) (*models.HostProfile, error) {
	query := `
		SELECT user_id, earnings_tier, commercial_insurance_status, p2p_insurance_status,
			stripe_account_id, suspension_level, suspended_at, suspended_reason,
			suspension_expires_at, created_at, updated_at
		FROM host_profiles
		WHERE user_id = $1
	`

	var h models.HostProfile
	err := r.db.QueryRow(ctx, query, hostID).Scan(
		&h.UserID, &h.EarningsTier, &h.CommercialInsuranceStatus, &h.P2PInsuranceStatus,
		&h.StripeAccountID, &h.SuspensionLevel, &h.SuspendedAt, &h.SuspendedReason,
		&h.SuspensionExpiresAt, &h.CreatedAt, &h.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &h, nil
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

// CreateClaim persists a claim and its guest account hold in one transaction
func (r *Repository) CreateClaim(ctx context.Context, claim *Claim, hold *models.AccountHold) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	photosJSON, err := json.Marshal(claim.PhotoURLs)
	if err != nil {
		return err
	}

	claimQuery := `
		INSERT INTO claims (
			id, booking_id, host_id, guest_id, claim_type, description,
			estimated_cost, photo_urls, status,
			primary_payer, deductible, guest_secondary, deposit_applied,
			guest_responsibility, recovered_from_guest, recovery_status,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`
	_, err = tx.Exec(ctx, claimQuery,
		claim.ID, claim.BookingID, claim.HostID, claim.GuestID, claim.ClaimType, claim.Description,
		claim.EstimatedCost, photosJSON, claim.Status,
		claim.PrimaryPayer, claim.Deductible, claim.GuestSecondary, claim.DepositApplied,
		claim.GuestResponsibility, claim.RecoveredFromGuest, claim.RecoveryStatus,
		claim.CreatedAt, claim.UpdatedAt,
	)
	if err != nil {
		return err
	}

	if hold != nil {
		holdQuery := `
			INSERT INTO account_holds (id, guest_id, claim_id, reason, active, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`
		_, err = tx.Exec(ctx, holdQuery,
			hold.ID, hold.GuestID, hold.ClaimID, hold.Reason, hold.Active, hold.CreatedAt,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// GetClaim loads a claim by ID
func (r *Repository) GetClaim(ctx context.Context, claimID uuid.UUID) (*Claim, error) {
	query := `
		SELECT id, booking_id, host_id, guest_id, claim_type, description,
			estimated_cost, photo_urls, status,
			primary_payer, deductible, guest_secondary, deposit_applied,
			guest_responsibility, recovered_from_guest, recovery_status,
			created_at, updated_at
		FROM claims
		WHERE id = $1
	`

	return r.scanClaim(r.db.QueryRow(ctx, query, claimID))
}

// ListClaimsByHost loads all claims filed by a host, newest first
func (r *Repository) ListClaimsByHost(ctx context.Context, hostID uuid.UUID) ([]Claim, error) {
	query := `
		SELECT id, booking_id, host_id, guest_id, claim_type, description,
			estimated_cost, photo_urls, status,
			primary_payer, deductible, guest_secondary, deposit_applied,
			guest_responsibility, recovered_from_guest, recovery_status,
			created_at, updated_at
		FROM claims
		WHERE host_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(ctx, query, hostID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var claims []Claim
	for rows.Next() {
		claim, err := r.scanClaim(rows)
		if err != nil {
			return nil, err
		}
		claims = append(claims, *claim)
	}

	return claims, rows.Err()
}

func (r *Repository) scanClaim(row pgx.Row) (*Claim, error) {
	var c Claim
	var photosJSON []byte
	err := row.Scan(
		&c.ID, &c.BookingID, &c.HostID, &c.GuestID, &c.ClaimType, &c.Description,
		&c.EstimatedCost, &photosJSON, &c.Status,
		&c.PrimaryPayer, &c.Deductible, &c.GuestSecondary, &c.DepositApplied,
		&c.GuestResponsibility, &c.RecoveredFromGuest, &c.RecoveryStatus,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	_ = json.Unmarshal(photosJSON, &c.PhotoURLs)

	return &c, nil
}

// UpdateClaimStatus transitions a claim from one review state to another.
// Returns false when the claim was not in the expected state, so concurrent
// reviewers cannot double-apply a transition.
func (r *Repository) UpdateClaimStatus(ctx context.Context, claimID uuid.UUID, from, to ClaimStatus) (bool, error) {
	query := `
		UPDATE claims SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3
	`
	tag, err := r.db.Exec(ctx, query, to, claimID, from)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// RecordGuestRecovery applies a successful guest charge atomically: the
// recovered amount, the new recovery status, the hold release when the
// recovery completes, and the queued host payout all commit together.
func (r *Repository) RecordGuestRecovery(ctx context.Context, claimID uuid.UUID, amount float64, newStatus RecoveryStatus, releaseHold bool, transfer *PendingTransfer) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	claimQuery := `
		UPDATE claims SET
			recovered_from_guest = recovered_from_guest + $1,
			recovery_status = $2,
			status = $3,
			updated_at = NOW()
		WHERE id = $4
	`
	_, err = tx.Exec(ctx, claimQuery, amount, newStatus, ClaimStatusGuestResponded, claimID)
	if err != nil {
		return err
	}

	if releaseHold {
		holdQuery := `
			UPDATE account_holds SET active = FALSE, released_at = NOW()
			WHERE claim_id = $1 AND active = TRUE
		`
		if _, err = tx.Exec(ctx, holdQuery, claimID); err != nil {
			return err
		}
	}

	if transfer != nil {
		transferQuery := `
			INSERT INTO pending_transfers (
				id, claim_id, host_id, destination_account_id, amount, currency,
				status, attempts, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`
		_, err = tx.Exec(ctx, transferQuery,
			transfer.ID, transfer.ClaimID, transfer.HostID, transfer.DestinationAccountID,
			transfer.Amount, transfer.Currency, transfer.Status, transfer.Attempts,
			transfer.CreatedAt, transfer.UpdatedAt,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// ListPendingTransfers loads host payouts still waiting on a transfer
func (r *Repository) ListPendingTransfers(ctx context.Context) ([]PendingTransfer, error) {
	query := `
		SELECT id, claim_id, host_id, destination_account_id, amount, currency,
			status, attempts, stripe_transfer_id, last_error, created_at, updated_at
		FROM pending_transfers
		WHERE status = $1
		ORDER BY created_at ASC
	`

	rows, err := r.db.Query(ctx, query, TransferPending)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transfers []PendingTransfer
	for rows.Next() {
		var t PendingTransfer
		err := rows.Scan(
			&t.ID, &t.ClaimID, &t.HostID, &t.DestinationAccountID, &t.Amount, &t.Currency,
			&t.Status, &t.Attempts, &t.StripeTransferID, &t.LastError, &t.CreatedAt, &t.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		transfers = append(transfers, t)
	}

	return transfers, rows.Err()
}

// GetPendingTransfer loads a queued payout by ID
func (r *Repository) GetPendingTransfer(ctx context.Context, transferID uuid.UUID) (*PendingTransfer, error) {
	query := `
		SELECT id, claim_id, host_id, destination_account_id, amount, currency,
			status, attempts, stripe_transfer_id, last_error, created_at, updated_at
		FROM pending_transfers
		WHERE id = $1
	`

	var t PendingTransfer
	err := r.db.QueryRow(ctx, query, transferID).Scan(
		&t.ID, &t.ClaimID, &t.HostID, &t.DestinationAccountID, &t.Amount, &t.Currency,
		&t.Status, &t.Attempts, &t.StripeTransferID, &t.LastError, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &t, nil
}

// MarkTransferResult records the outcome of a transfer attempt
func (r *Repository) MarkTransferResult(ctx context.Context, transferID uuid.UUID, status TransferStatus, stripeTransferID *string, lastError *string) error {
	query := `
		UPDATE pending_transfers SET
			status = $1, stripe_transfer_id = $2, last_error = $3,
			attempts = attempts + 1, updated_at = NOW()
		WHERE id = $4
	`
	_, err := r.db.Exec(ctx, query, status, stripeTransferID, lastError, transferID)
	return err
}
