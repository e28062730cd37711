package tripcharges

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/drivemate/rental-platform/pkg/common"
	"github.com/drivemate/rental-platform/pkg/logger"
	"github.com/drivemate/rental-platform/pkg/models"
)

// Service handles trip charge finalization
type Service struct {
	repo       RepositoryInterface
	calculator *Calculator
	notifier   NotifierInterface
}

// NewService creates a new trip charge service
func NewService(repo RepositoryInterface, calculator *Calculator, notifier NotifierInterface) *Service {
	return &Service{
		repo:       repo,
		calculator: calculator,
		notifier:   notifier,
	}
}

// FinalizeTrip computes, validates, and persists the post-trip charges for
// a booking. Validation warnings are stored on the record; validation
// errors reject the request and nothing is persisted.
func (s *Service) FinalizeTrip(ctx context.Context, bookingID uuid.UUID, req *FinalizeTripRequest) (*TripChargeRecord, error) {
	booking, err := s.repo.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, common.NewNotFoundError("booking not found", err)
	}

	if booking.Status == models.BookingStatusCancelled {
		return nil, common.NewConflictError("cannot finalize a cancelled booking")
	}

	if existing, _ := s.repo.GetChargeRecordByBooking(ctx, bookingID); existing != nil {
		return nil, common.NewConflictError("trip charges already finalized for this booking")
	}

	if req.EndMileage < booking.StartMileage {
		logger.WithContext(ctx).Warn("Odometer rollback reported, clamping mileage delta to zero",
			zap.String("booking_id", bookingID.String()),
			zap.Float64("start_mileage", booking.StartMileage),
			zap.Float64("end_mileage", req.EndMileage),
		)
	}

	charges := s.calculator.CalculateTripCharges(TripChargeInput{
		StartMileage:     booking.StartMileage,
		EndMileage:       req.EndMileage,
		FuelLevelStart:   FuelLevel(booking.FuelLevelStart),
		FuelLevelEnd:     FuelLevel(req.FuelLevelEnd),
		ScheduledEndDate: booking.ScheduledEndDate,
		ActualEndDate:    req.ActualEndDate,
		NumberOfDays:     booking.NumberOfDays,
		AdHocCharges:     req.AdHocCharges,
	})

	validation := s.calculator.ValidateCharges(charges)
	if !validation.Valid {
		return nil, common.NewUnprocessableError(validation.Errors[0])
	}
	for _, w := range validation.Warnings {
		logger.WithContext(ctx).Warn("Trip charge validation warning",
			zap.String("booking_id", bookingID.String()),
			zap.String("warning", w),
		)
	}

	now := time.Now()
	record := &TripChargeRecord{
		ID:           uuid.New(),
		BookingID:    booking.ID,
		GuestID:      booking.GuestID,
		Charges:      charges,
		TotalCharges: charges.Total,
		ChargeStatus: ChargeStatusPending,
		Warnings:     validation.Warnings,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.CreateChargeRecord(ctx, record); err != nil {
		logger.WithContext(ctx).Error("Failed to persist trip charges", zap.Error(err),
			zap.String("booking_id", bookingID.String()))
		return nil, common.NewInternalServerError("failed to save trip charges")
	}

	if err := s.repo.CompleteBooking(ctx, booking.ID, req.EndMileage, req.FuelLevelEnd, req.ActualEndDate); err != nil {
		logger.WithContext(ctx).Error("Failed to mark booking completed", zap.Error(err),
			zap.String("booking_id", bookingID.String()))
	}

	if s.notifier != nil {
		s.notifier.NotifyChargesFinalized(ctx, booking.GuestID, booking.ID, charges.Total)
	}

	logger.WithContext(ctx).Info("Trip charges finalized",
		zap.String("booking_id", booking.ID.String()),
		zap.String("charge_record_id", record.ID.String()),
		zap.Float64("total", charges.Total),
		zap.Int("warnings", len(validation.Warnings)),
	)

	return record, nil
}

// PreviewCharges computes charges for a booking without persisting anything
func (s *Service) PreviewCharges(ctx context.Context, bookingID uuid.UUID, req *FinalizeTripRequest) (*TripCharges, *ChargeValidation, error) {
	booking, err := s.repo.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, nil, common.NewNotFoundError("booking not found", err)
	}

	charges := s.calculator.CalculateTripCharges(TripChargeInput{
		StartMileage:     booking.StartMileage,
		EndMileage:       req.EndMileage,
		FuelLevelStart:   FuelLevel(booking.FuelLevelStart),
		FuelLevelEnd:     FuelLevel(req.FuelLevelEnd),
		ScheduledEndDate: booking.ScheduledEndDate,
		ActualEndDate:    req.ActualEndDate,
		NumberOfDays:     booking.NumberOfDays,
		AdHocCharges:     req.AdHocCharges,
	})

	validation := s.calculator.ValidateCharges(charges)

	return &charges, &validation, nil
}

// GetCharges returns the persisted charge record for a booking
func (s *Service) GetCharges(ctx context.Context, bookingID uuid.UUID) (*TripChargeRecord, error) {
	record, err := s.repo.GetChargeRecordByBooking(ctx, bookingID)
	if err != nil {
		return nil, common.NewNotFoundError("no trip charges for this booking", err)
	}
	return record, nil
}
