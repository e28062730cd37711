package claims

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/drivemate/rental-platform/internal/payments"
	"github.com/drivemate/rental-platform/pkg/common"
	"github.com/drivemate/rental-platform/pkg/config"
	"github.com/drivemate/rental-platform/pkg/logger"
	"github.com/drivemate/rental-platform/pkg/models"
)

// Service handles claim filing, review, and guest recovery
type Service struct {
	repo     RepositoryInterface
	stripe   StripeClientInterface
	notifier NotifierInterface
	rates    config.RatesConfig
}

// NewService creates a new claim service
func NewService(repo RepositoryInterface, stripe StripeClientInterface, notifier NotifierInterface, rates config.RatesConfig) *Service {
	return &Service{
		repo:     repo,
		stripe:   stripe,
		notifier: notifier,
		rates:    rates,
	}
}

// CreateClaim files a host claim against a completed booking. The insurance
// hierarchy is resolved at filing time from the profiles as they stand now
// and stored on the claim; later profile changes do not reprice it. A hold
// is placed on the guest account whenever any responsibility falls to them.
func (s *Service) CreateClaim(ctx context.Context, hostID uuid.UUID, req *CreateClaimRequest) (*Claim, error) {
	booking, err := s.repo.GetBooking(ctx, req.BookingID)
	if err != nil {
		return nil, common.NewNotFoundError("booking not found", err)
	}
	if booking.HostID != hostID {
		return nil, common.NewForbiddenError("booking does not belong to this host")
	}
	if booking.Status != models.BookingStatusCompleted {
		return nil, common.NewConflictError("claims can only be filed against completed bookings")
	}

	host, err := s.repo.GetHostProfile(ctx, booking.HostID)
	if err != nil {
		return nil, common.NewNotFoundError("host profile not found", err)
	}
	guest, err := s.repo.GetGuestProfile(ctx, booking.GuestID)
	if err != nil {
		return nil, common.NewNotFoundError("guest profile not found", err)
	}

	hierarchy := ResolveInsuranceHierarchy(host, guest,
		s.rates.PlatformDeductible, s.rates.HostDeductible, booking.DepositHeld, time.Now())

	now := time.Now()
	claim := &Claim{
		ID:                  uuid.New(),
		BookingID:           booking.ID,
		HostID:              booking.HostID,
		GuestID:             booking.GuestID,
		ClaimType:           req.ClaimType,
		Description:         req.Description,
		EstimatedCost:       req.EstimatedCost,
		PhotoURLs:           req.PhotoURLs,
		Status:              ClaimStatusPending,
		PrimaryPayer:        hierarchy.PrimaryPayer,
		Deductible:          hierarchy.Deductible,
		GuestSecondary:      hierarchy.GuestSecondary,
		DepositApplied:      hierarchy.DepositApplied,
		GuestResponsibility: hierarchy.GuestResponsibility,
		RecoveredFromGuest:  0,
		RecoveryStatus:      RecoveryPending,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	var hold *models.AccountHold
	if hierarchy.GuestResponsibility > 0 {
		hold = &models.AccountHold{
			ID:        uuid.New(),
			GuestID:   booking.GuestID,
			ClaimID:   claim.ID,
			Reason:    fmt.Sprintf("Pending %s claim recovery", req.ClaimType),
			Active:    true,
			CreatedAt: now,
		}
	}

	if err := s.repo.CreateClaim(ctx, claim, hold); err != nil {
		logger.WithContext(ctx).Error("Failed to create claim", zap.Error(err),
			zap.String("booking_id", booking.ID.String()))
		return nil, common.NewInternalServerError("failed to create claim")
	}

	logger.WithContext(ctx).Info("Claim filed",
		zap.String("claim_id", claim.ID.String()),
		zap.String("booking_id", booking.ID.String()),
		zap.String("primary_payer", string(claim.PrimaryPayer)),
		zap.Float64("deductible", claim.Deductible),
		zap.Float64("guest_responsibility", claim.GuestResponsibility),
		zap.Bool("hold_placed", hold != nil),
	)

	return claim, nil
}

// GetClaim loads a claim by ID
func (s *Service) GetClaim(ctx context.Context, claimID uuid.UUID) (*Claim, error) {
	claim, err := s.repo.GetClaim(ctx, claimID)
	if err != nil {
		return nil, common.NewNotFoundError("claim not found", err)
	}
	return claim, nil
}

// ListHostClaims loads all claims filed by a host
func (s *Service) ListHostClaims(ctx context.Context, hostID uuid.UUID) ([]Claim, error) {
	claims, err := s.repo.ListClaimsByHost(ctx, hostID)
	if err != nil {
		return nil, common.NewInternalServerError("failed to list claims")
	}
	return claims, nil
}

// ApproveClaim moves a pending claim to approved
func (s *Service) ApproveClaim(ctx context.Context, claimID uuid.UUID) (*Claim, error) {
	return s.transition(ctx, claimID, ClaimStatusPending, ClaimStatusApproved)
}

// DenyClaim moves a pending claim to denied
func (s *Service) DenyClaim(ctx context.Context, claimID uuid.UUID) (*Claim, error) {
	return s.transition(ctx, claimID, ClaimStatusPending, ClaimStatusDenied)
}

func (s *Service) transition(ctx context.Context, claimID uuid.UUID, from, to ClaimStatus) (*Claim, error) {
	ok, err := s.repo.UpdateClaimStatus(ctx, claimID, from, to)
	if err != nil {
		return nil, common.NewInternalServerError("failed to update claim")
	}
	if !ok {
		return nil, common.NewConflictError(fmt.Sprintf("claim is not %s", from))
	}

	claim, err := s.repo.GetClaim(ctx, claimID)
	if err != nil {
		return nil, common.NewNotFoundError("claim not found", err)
	}

	logger.WithContext(ctx).Info("Claim status updated",
		zap.String("claim_id", claimID.String()),
		zap.String("status", string(to)),
	)

	return claim, nil
}

// ChargeGuestForClaim collects the guest's remaining responsibility on an
// approved claim. The charge uses a recovery-state idempotency key, so a
// retry of the same attempt cannot double-bill. On success the recovered
// amount, recovery status, hold release, and queued host payout commit in
// one transaction; the Stripe transfer itself runs after commit and is
// retried from the queue when it fails.
func (s *Service) ChargeGuestForClaim(ctx context.Context, claimID uuid.UUID) (*RecoveryResult, error) {
	claim, err := s.repo.GetClaim(ctx, claimID)
	if err != nil {
		return nil, common.NewNotFoundError("claim not found", err)
	}

	if claim.Status != ClaimStatusApproved && claim.Status != ClaimStatusGuestResponded {
		return nil, common.NewConflictError("claim must be approved before guest recovery")
	}
	if claim.RecoveryStatus == RecoveryFull {
		return nil, common.NewConflictError("claim recovery is already complete")
	}

	amount := claim.RemainingGuestResponsibility()
	if amount <= 0 {
		return nil, common.NewConflictError("no guest responsibility remains on this claim")
	}

	guest, err := s.repo.GetGuestProfile(ctx, claim.GuestID)
	if err != nil {
		return nil, common.NewNotFoundError("guest profile not found", err)
	}
	if guest.StripeCustomerID == nil || guest.DefaultPaymentMethodID == nil {
		return nil, common.NewUnprocessableError("guest has no payment method on file")
	}

	idempotencyKey := fmt.Sprintf("claim-recovery-%s-%.2f", claim.ID, claim.RecoveredFromGuest)
	result, err := s.stripe.ChargeOffSession(
		*guest.StripeCustomerID,
		*guest.DefaultPaymentMethodID,
		payments.DollarsToCents(amount),
		"usd",
		fmt.Sprintf("Claim recovery for booking %s", claim.BookingID),
		idempotencyKey,
		map[string]string{
			"claim_id":   claim.ID.String(),
			"booking_id": claim.BookingID.String(),
			"guest_id":   claim.GuestID.String(),
		},
	)
	if err != nil {
		logger.WithContext(ctx).Error("Guest recovery charge errored", zap.Error(err),
			zap.String("claim_id", claim.ID.String()))
		return nil, common.NewInternalServerError("payment processor error")
	}
	if result.Status != payments.ChargeSucceeded {
		logger.WithContext(ctx).Warn("Guest recovery charge declined",
			zap.String("claim_id", claim.ID.String()),
			zap.String("decline_reason", result.Error),
		)
		return nil, common.NewPaymentFailedError("guest charge declined: "+result.Error, nil)
	}

	newStatus := RecoveryPartial
	releaseHold := false
	if claim.RecoveredFromGuest+amount >= claim.GuestResponsibility {
		newStatus = RecoveryFull
		releaseHold = true
	}

	transfer := s.buildHostPayout(ctx, claim, amount)

	if err := s.repo.RecordGuestRecovery(ctx, claim.ID, amount, newStatus, releaseHold, transfer); err != nil {
		// The charge already went through. The record must not be lost, so
		// this surfaces loudly for manual reconciliation.
		logger.WithContext(ctx).Error("Charged guest but failed to record recovery",
			zap.Error(err),
			zap.String("claim_id", claim.ID.String()),
			zap.String("charge_id", result.ChargeID),
			zap.Float64("amount", amount),
		)
		return nil, common.NewInternalServerError("charge succeeded but recording failed; manual reconciliation required")
	}

	if transfer != nil {
		s.attemptTransfer(ctx, transfer)
	}

	if s.notifier != nil {
		s.notifier.NotifyClaimRecovery(ctx, claim.GuestID, claim.ID, amount)
	}

	updated, err := s.repo.GetClaim(ctx, claim.ID)
	if err != nil {
		updated = claim
	}

	logger.WithContext(ctx).Info("Guest recovery charged",
		zap.String("claim_id", claim.ID.String()),
		zap.Float64("amount", amount),
		zap.String("recovery_status", string(newStatus)),
		zap.Bool("transfer_queued", transfer != nil),
	)

	return &RecoveryResult{
		Claim:          updated,
		ChargedAmount:  amount,
		ChargeID:       result.ChargeID,
		TransferQueued: transfer != nil,
	}, nil
}

// buildHostPayout queues the recovered amount for the host when their
// insurance was primary. Platform-primary recoveries stay with the platform.
func (s *Service) buildHostPayout(ctx context.Context, claim *Claim, amount float64) *PendingTransfer {
	if claim.PrimaryPayer == PayerPlatform {
		return nil
	}

	host, err := s.repo.GetHostProfile(ctx, claim.HostID)
	if err != nil || host.StripeAccountID == nil {
		logger.WithContext(ctx).Warn("Host payout skipped, no connected account",
			zap.String("claim_id", claim.ID.String()),
			zap.String("host_id", claim.HostID.String()),
		)
		return nil
	}

	now := time.Now()
	return &PendingTransfer{
		ID:                   uuid.New(),
		ClaimID:              claim.ID,
		HostID:               claim.HostID,
		DestinationAccountID: *host.StripeAccountID,
		Amount:               amount,
		Currency:             "usd",
		Status:               TransferPending,
		Attempts:             0,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
}

// attemptTransfer tries the Stripe transfer for a queued payout. Failures
// leave the row pending for a later retry and never fail the recovery.
func (s *Service) attemptTransfer(ctx context.Context, transfer *PendingTransfer) {
	result, err := s.stripe.CreateTransfer(
		transfer.DestinationAccountID,
		payments.DollarsToCents(transfer.Amount),
		transfer.Currency,
		fmt.Sprintf("Claim recovery payout for claim %s", transfer.ClaimID),
		map[string]string{
			"claim_id": transfer.ClaimID.String(),
			"host_id":  transfer.HostID.String(),
		},
	)

	if err != nil || result.Status != payments.ChargeSucceeded {
		var lastError string
		if err != nil {
			lastError = err.Error()
		} else {
			lastError = result.Error
		}
		logger.WithContext(ctx).Warn("Host payout transfer failed, left queued",
			zap.String("transfer_id", transfer.ID.String()),
			zap.String("error", lastError),
		)
		if markErr := s.repo.MarkTransferResult(ctx, transfer.ID, TransferPending, nil, &lastError); markErr != nil {
			logger.WithContext(ctx).Error("Failed to record transfer attempt", zap.Error(markErr),
				zap.String("transfer_id", transfer.ID.String()))
		}
		return
	}

	if err := s.repo.MarkTransferResult(ctx, transfer.ID, TransferCompleted, &result.TransferID, nil); err != nil {
		logger.WithContext(ctx).Error("Transfer completed but failed to record", zap.Error(err),
			zap.String("transfer_id", transfer.ID.String()),
			zap.String("stripe_transfer_id", result.TransferID))
	}
}

// ListPendingTransfers returns host payouts still waiting on a transfer
func (s *Service) ListPendingTransfers(ctx context.Context) ([]PendingTransfer, error) {
	transfers, err := s.repo.ListPendingTransfers(ctx)
	if err != nil {
		return nil, common.NewInternalServerError("failed to list pending transfers")
	}
	return transfers, nil
}

// RetryTransfer re-attempts a queued host payout
func (s *Service) RetryTransfer(ctx context.Context, transferID uuid.UUID) (*PendingTransfer, error) {
	transfer, err := s.repo.GetPendingTransfer(ctx, transferID)
	if err != nil {
		return nil, common.NewNotFoundError("transfer not found", err)
	}
	if transfer.Status == TransferCompleted {
		return nil, common.NewConflictError("transfer already completed")
	}

	s.attemptTransfer(ctx, transfer)

	updated, err := s.repo.GetPendingTransfer(ctx, transferID)
	if err != nil {
		return nil, common.NewInternalServerError("failed to reload transfer")
	}
	return updated, nil
}
