package suspensions

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/drivemate/rental-platform/pkg/models"
)

// Repository handles suspension database operations
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new suspension repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// GetGuestProfile loads a guest profile by user ID
func (r *Repository) GetGuestProfile(ctx context.Context, userID uuid.UUID) (*models.GuestProfile, error) {
	query := `
		SELECT user_id, personal_insurance_verified, personal_insurance_expiry,
			stripe_customer_id, default_payment_method_id, suspension_level,
			suspended_at, suspended_reason, suspension_expires_at, created_at, updated_at
		FROM guest_profiles
		WHERE user_id = $1
	`

	var g models.GuestProfile
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&g.UserID, &g.PersonalInsuranceVerified, &g.PersonalInsuranceExpiry,
		&g.StripeCustomerID, &g.DefaultPaymentMethodID, &g.SuspensionLevel,
		&g.SuspendedAt, &g.SuspendedReason, &g.SuspensionExpiresAt, &g.CreatedAt, &g.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &g, nil
}

// GetHostProfile loads a host profile by user ID
func (r *Repository) GetHostProfile(ctx context.Context, userID uuid.UUID) (*models.HostProfile, error) {
	query := `
		SELECT user_id, earnings_tier, commercial_insurance_status, p2p_insurance_status,
			stripe_account_id, suspension_level, suspended_at, suspended_reason,
			suspension_expires_at, created_at, updated_at
		FROM host_profiles
		WHERE user_id = $1
	`

	var h models.HostProfile
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&h.UserID, &h.EarningsTier, &h.CommercialInsuranceStatus, &h.P2PInsuranceStatus,
		&h.StripeAccountID, &h.SuspensionLevel, &h.SuspendedAt, &h.SuspendedReason,
		&h.SuspensionExpiresAt, &h.CreatedAt, &h.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &h, nil
}

func profileTable(role Role) (string, error) {
	switch role {
	case RoleGuest:
		return "guest_profiles", nil
	case RoleHost:
		return "host_profiles", nil
	default:
		return "", fmt.Errorf("unknown role %q", role)
	}
}

// ApplySuspension writes suspension fields to every listed role's profile
// in one transaction. An account-wide escalation either suspends both
// profiles or neither.
func (r *Repository) ApplySuspension(ctx context.Context, userID uuid.UUID, roles []Role, level models.SuspensionLevel, reason string, expiresAt *time.Time) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, role := range roles {
		table, err := profileTable(role)
		if err != nil {
			return err
		}

		query := fmt.Sprintf(`
			UPDATE %s SET
				suspension_level = $1, suspended_at = NOW(),
				suspended_reason = $2, suspension_expires_at = $3,
				updated_at = NOW()
			WHERE user_id = $4
		`, table)

		tag, err := tx.Exec(ctx, query, level, reason, expiresAt, userID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() != 1 {
			return fmt.Errorf("no %s profile for user %s", role, userID)
		}
	}

	return tx.Commit(ctx)
}

// ClearSuspension nulls the suspension fields on one role's profile
func (r *Repository) ClearSuspension(ctx context.Context, userID uuid.UUID, role Role) error {
	table, err := profileTable(role)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`
		UPDATE %s SET
			suspension_level = NULL, suspended_at = NULL,
			suspended_reason = NULL, suspension_expires_at = NULL,
			updated_at = NOW()
		WHERE user_id = $1
	`, table)

	tag, err := r.db.Exec(ctx, query, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() != 1 {
		return fmt.Errorf("no %s profile for user %s", role, userID)
	}

	return nil
}
