package disputes

import (
	"context"
	"fmt"
	"math"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/drivemate/rental-platform/internal/payments"
	"github.com/drivemate/rental-platform/internal/tripcharges"
	"github.com/drivemate/rental-platform/pkg/common"
	"github.com/drivemate/rental-platform/pkg/logger"
)

// Service handles dispute filing and administrative resolution
type Service struct {
	repo     RepositoryInterface
	stripe   StripeClientInterface
	notifier NotifierInterface
}

// NewService creates a new dispute service
func NewService(repo RepositoryInterface, stripe StripeClientInterface, notifier NotifierInterface) *Service {
	return &Service{
		repo:     repo,
		stripe:   stripe,
		notifier: notifier,
	}
}

// FileDispute lets the guest contest a pending charge record. Only pending
// records can be disputed; the transition is a compare-and-swap, so a record
// charged in the meantime rejects the dispute instead of silently losing it.
func (s *Service) FileDispute(ctx context.Context, recordID uuid.UUID, req *FileDisputeRequest) (*tripcharges.TripChargeRecord, error) {
	record, err := s.repo.GetChargeRecord(ctx, recordID)
	if err != nil {
		return nil, common.NewNotFoundError("charge record not found", err)
	}
	if record.GuestID != req.GuestID {
		return nil, common.NewForbiddenError("charge record does not belong to this guest")
	}

	ok, err := s.repo.MarkDisputed(ctx, recordID, req.Reason)
	if err != nil {
		return nil, common.NewInternalServerError("failed to file dispute")
	}
	if !ok {
		return nil, common.NewConflictError("only pending charges can be disputed")
	}

	logger.WithContext(ctx).Info("Dispute filed",
		zap.String("record_id", recordID.String()),
		zap.String("guest_id", req.GuestID.String()),
	)

	updated, err := s.repo.GetChargeRecord(ctx, recordID)
	if err != nil {
		return record, nil
	}
	return updated, nil
}

// ResolveDispute applies an administrative action to a disputed charge.
// Every transition is guarded on the record still being disputed at write
// time; a stale read rejects with a conflict instead of double-applying.
func (s *Service) ResolveDispute(ctx context.Context, recordID uuid.UUID, req *ResolveDisputeRequest) (*ResolutionResult, error) {
	record, err := s.repo.GetChargeRecord(ctx, recordID)
	if err != nil {
		return nil, common.NewNotFoundError("charge record not found", err)
	}
	if record.ChargeStatus != tripcharges.ChargeStatusDisputed {
		return nil, common.NewConflictError("charge is not disputed")
	}

	switch req.Action {
	case ActionChargeAnyway:
		return s.chargeAnyway(ctx, record)
	case ActionWaive:
		return s.waive(ctx, record, req.Note)
	case ActionPartialWaive:
		return s.partialWaive(ctx, record, req)
	case ActionEscalate:
		return s.escalate(ctx, record, req.Note)
	default:
		return nil, common.NewBadRequestError("unknown resolution action", nil)
	}
}

// chargeAnyway attempts the off-session charge. A declined charge leaves the
// record disputed with the processor error surfaced; only a successful
// charge transitions state.
func (s *Service) chargeAnyway(ctx context.Context, record *tripcharges.TripChargeRecord) (*ResolutionResult, error) {
	guest, err := s.repo.GetGuestProfile(ctx, record.GuestID)
	if err != nil {
		return nil, common.NewNotFoundError("guest profile not found", err)
	}
	if guest.StripeCustomerID == nil || guest.DefaultPaymentMethodID == nil {
		return nil, common.NewUnprocessableError("guest has no payment method on file")
	}

	result, err := s.stripe.ChargeOffSession(
		*guest.StripeCustomerID,
		*guest.DefaultPaymentMethodID,
		payments.DollarsToCents(record.TotalCharges),
		"usd",
		fmt.Sprintf("Trip charges for booking %s", record.BookingID),
		fmt.Sprintf("dispute-charge-%s", record.ID),
		map[string]string{
			"record_id":  record.ID.String(),
			"booking_id": record.BookingID.String(),
		},
	)
	if err != nil {
		logger.WithContext(ctx).Error("Dispute charge errored", zap.Error(err),
			zap.String("record_id", record.ID.String()))
		return nil, common.NewInternalServerError("payment processor error")
	}
	if result.Status != payments.ChargeSucceeded {
		logger.WithContext(ctx).Warn("Dispute charge declined, record stays disputed",
			zap.String("record_id", record.ID.String()),
			zap.String("decline_reason", result.Error),
		)
		return nil, common.NewPaymentFailedError("charge declined: "+result.Error, nil)
	}

	resolution := fmt.Sprintf("charged in full via %s", result.ChargeID)
	ok, err := s.repo.ResolveToCharged(ctx, record.ID, record.BookingID, resolution)
	if err != nil || !ok {
		// The guest was charged but the record did not transition. This is
		// the reconciliation case; it must not look like a clean failure.
		logger.WithContext(ctx).Error("Charged guest but record transition failed",
			zap.Error(err),
			zap.String("record_id", record.ID.String()),
			zap.String("charge_id", result.ChargeID),
		)
		return nil, common.NewInternalServerError("charge succeeded but recording failed; manual reconciliation required")
	}

	s.notifyResolved(ctx, record, string(ActionChargeAnyway), record.TotalCharges)

	return &ResolutionResult{
		RecordID:      record.ID,
		Action:        ActionChargeAnyway,
		ChargeStatus:  string(tripcharges.ChargeStatusCharged),
		TotalCharges:  record.TotalCharges,
		ChargedAmount: record.TotalCharges,
		ChargeID:      result.ChargeID,
	}, nil
}

func (s *Service) waive(ctx context.Context, record *tripcharges.TripChargeRecord, note string) (*ResolutionResult, error) {
	resolution := "charges waived"
	if note != "" {
		resolution = note
	}

	ok, err := s.repo.ResolveToWaived(ctx, record.ID, record.BookingID, resolution)
	if err != nil {
		return nil, common.NewInternalServerError("failed to waive charges")
	}
	if !ok {
		return nil, common.NewConflictError("charge is no longer disputed")
	}

	logger.WithContext(ctx).Info("Dispute resolved by waiver",
		zap.String("record_id", record.ID.String()),
		zap.Float64("waived_amount", record.TotalCharges),
	)
	s.notifyResolved(ctx, record, string(ActionWaive), 0)

	return &ResolutionResult{
		RecordID:     record.ID,
		Action:       ActionWaive,
		ChargeStatus: string(tripcharges.ChargeStatusWaived),
		TotalCharges: 0,
	}, nil
}

func (s *Service) partialWaive(ctx context.Context, record *tripcharges.TripChargeRecord, req *ResolveDisputeRequest) (*ResolutionResult, error) {
	if req.WaivePercentage == nil {
		return nil, common.NewBadRequestError("waive_percentage is required for partial_waive", nil)
	}
	pct := *req.WaivePercentage
	if pct < 1 || pct > 99 {
		return nil, common.NewBadRequestError("waive_percentage must be between 1 and 99", nil)
	}

	newTotal := math.Round(record.TotalCharges*(1-pct/100)*100) / 100
	resolution := fmt.Sprintf("%.0f%% waived, remainder $%.2f", pct, newTotal)
	if req.Note != "" {
		resolution = resolution + ": " + req.Note
	}

	ok, err := s.repo.ResolveToAdjusted(ctx, record.ID, newTotal, resolution)
	if err != nil {
		return nil, common.NewInternalServerError("failed to adjust charges")
	}
	if !ok {
		return nil, common.NewConflictError("charge is no longer disputed")
	}

	logger.WithContext(ctx).Info("Dispute resolved by partial waiver",
		zap.String("record_id", record.ID.String()),
		zap.Float64("waive_percentage", pct),
		zap.Float64("new_total", newTotal),
	)
	s.notifyResolved(ctx, record, string(ActionPartialWaive), newTotal)

	return &ResolutionResult{
		RecordID:     record.ID,
		Action:       ActionPartialWaive,
		ChargeStatus: string(tripcharges.ChargeStatusAdjusted),
		TotalCharges: newTotal,
	}, nil
}

func (s *Service) escalate(ctx context.Context, record *tripcharges.TripChargeRecord, note string) (*ResolutionResult, error) {
	if note == "" {
		note = "escalated for administrative review"
	}

	ok, err := s.repo.MarkEscalated(ctx, record.ID, note)
	if err != nil {
		return nil, common.NewInternalServerError("failed to escalate dispute")
	}
	if !ok {
		return nil, common.NewConflictError("charge is no longer disputed")
	}

	logger.WithContext(ctx).Info("Dispute escalated",
		zap.String("record_id", record.ID.String()),
	)

	return &ResolutionResult{
		RecordID:     record.ID,
		Action:       ActionEscalate,
		ChargeStatus: string(tripcharges.ChargeStatusDisputed),
		TotalCharges: record.TotalCharges,
	}, nil
}

func (s *Service) notifyResolved(ctx context.Context, record *tripcharges.TripChargeRecord, action string, amount float64) {
	if s.notifier != nil {
		s.notifier.NotifyDisputeResolved(ctx, record.GuestID, record.BookingID, action, amount)
	}
}
