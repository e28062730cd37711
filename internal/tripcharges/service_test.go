package tripcharges

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/drivemate/rental-platform/pkg/common"
	"github.com/drivemate/rental-platform/pkg/config"
	"github.com/drivemate/rental-platform/pkg/models"
)

// MockRepository is a mock implementation of RepositoryInterface
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) GetBooking(ctx context.Context, bookingID uuid.UUID) (*models.Booking, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

func (m *MockRepository) GetChargeRecordByBooking(ctx context.Context, bookingID uuid.UUID) (*TripChargeRecord, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*TripChargeRecord), args.Error(1)
}

func (m *MockRepository) GetChargeRecord(ctx context.Context, id uuid.UUID) (*TripChargeRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*TripChargeRecord), args.Error(1)
}

func (m *MockRepository) CreateChargeRecord(ctx context.Context, record *TripChargeRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockRepository) CompleteBooking(ctx context.Context, bookingID uuid.UUID, endMileage float64, fuelLevelEnd string, actualEndDate time.Time) error {
	args := m.Called(ctx, bookingID, endMileage, fuelLevelEnd, actualEndDate)
	return args.Error(0)
}

// MockNotifier is a mock implementation of NotifierInterface
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) NotifyChargesFinalized(ctx context.Context, guestID uuid.UUID, bookingID uuid.UUID, total float64) {
	m.Called(ctx, guestID, bookingID, total)
}

func activeBooking() *models.Booking {
	return &models.Booking{
		ID:               uuid.New(),
		VehicleID:        uuid.New(),
		GuestID:          uuid.New(),
		HostID:           uuid.New(),
		StartDate:        time.Date(2025, 6, 7, 10, 0, 0, 0, time.UTC),
		ScheduledEndDate: time.Date(2025, 6, 10, 10, 0, 0, 0, time.UTC),
		NumberOfDays:     3,
		StartMileage:     1000,
		FuelLevelStart:   "Full",
		DepositHeld:      200,
		Status:           models.BookingStatusActive,
		PaymentStatus:    models.PaymentStatusPaid,
	}
}

func TestFinalizeTrip(t *testing.T) {
	ctx := context.Background()

	t.Run("successful finalization persists pending record", func(t *testing.T) {
		mockRepo := new(MockRepository)
		mockNotifier := new(MockNotifier)
		service := NewService(mockRepo, NewCalculator(config.DefaultRates()), mockNotifier)

		booking := activeBooking()
		req := &FinalizeTripRequest{
			EndMileage:    2000,
			FuelLevelEnd:  "1/2",
			ActualEndDate: booking.ScheduledEndDate.Add(4*time.Hour + 30*time.Minute),
		}

		mockRepo.On("GetBooking", ctx, booking.ID).Return(booking, nil)
		mockRepo.On("GetChargeRecordByBooking", ctx, booking.ID).Return(nil, errors.New("not found"))
		mockRepo.On("CreateChargeRecord", ctx, mock.AnythingOfType("*tripcharges.TripChargeRecord")).Return(nil)
		mockRepo.On("CompleteBooking", ctx, booking.ID, req.EndMileage, req.FuelLevelEnd, req.ActualEndDate).Return(nil)
		mockNotifier.On("NotifyChargesFinalized", ctx, booking.GuestID, booking.ID, 583.0).Return()

		record, err := service.FinalizeTrip(ctx, booking.ID, req)

		assert.NoError(t, err)
		assert.NotNil(t, record)
		assert.Equal(t, ChargeStatusPending, record.ChargeStatus)
		assert.Equal(t, booking.GuestID, record.GuestID)
		// 180 mileage + 150 fuel + 200 late, plus 10% tax
		assert.Equal(t, 583.0, record.TotalCharges)
		assert.Equal(t, record.Charges.Total, record.TotalCharges)
		mockRepo.AssertExpectations(t)
		mockNotifier.AssertExpectations(t)
	})

	t.Run("clean return finalizes at zero", func(t *testing.T) {
		mockRepo := new(MockRepository)
		mockNotifier := new(MockNotifier)
		service := NewService(mockRepo, NewCalculator(config.DefaultRates()), mockNotifier)

		booking := activeBooking()
		req := &FinalizeTripRequest{
			EndMileage:    1500,
			FuelLevelEnd:  "Full",
			ActualEndDate: booking.ScheduledEndDate,
		}

		mockRepo.On("GetBooking", ctx, booking.ID).Return(booking, nil)
		mockRepo.On("GetChargeRecordByBooking", ctx, booking.ID).Return(nil, errors.New("not found"))
		mockRepo.On("CreateChargeRecord", ctx, mock.Anything).Return(nil)
		mockRepo.On("CompleteBooking", ctx, booking.ID, req.EndMileage, req.FuelLevelEnd, req.ActualEndDate).Return(nil)
		mockNotifier.On("NotifyChargesFinalized", ctx, booking.GuestID, booking.ID, 0.0).Return()

		record, err := service.FinalizeTrip(ctx, booking.ID, req)

		assert.NoError(t, err)
		assert.Equal(t, 0.0, record.TotalCharges)
		assert.Empty(t, record.Charges.Breakdown)
		mockRepo.AssertExpectations(t)
	})

	t.Run("booking not found", func(t *testing.T) {
		mockRepo := new(MockRepository)
		service := NewService(mockRepo, NewCalculator(config.DefaultRates()), nil)

		bookingID := uuid.New()
		mockRepo.On("GetBooking", ctx, bookingID).Return(nil, errors.New("no rows"))

		record, err := service.FinalizeTrip(ctx, bookingID, &FinalizeTripRequest{
			EndMileage: 100, FuelLevelEnd: "Full", ActualEndDate: time.Now(),
		})

		assert.Nil(t, record)
		appErr, ok := err.(*common.AppError)
		assert.True(t, ok)
		assert.Equal(t, 404, appErr.Status)
	})

	t.Run("cancelled booking rejected", func(t *testing.T) {
		mockRepo := new(MockRepository)
		service := NewService(mockRepo, NewCalculator(config.DefaultRates()), nil)

		booking := activeBooking()
		booking.Status = models.BookingStatusCancelled
		mockRepo.On("GetBooking", ctx, booking.ID).Return(booking, nil)

		record, err := service.FinalizeTrip(ctx, booking.ID, &FinalizeTripRequest{
			EndMileage: 1500, FuelLevelEnd: "Full", ActualEndDate: booking.ScheduledEndDate,
		})

		assert.Nil(t, record)
		appErr, ok := err.(*common.AppError)
		assert.True(t, ok)
		assert.Equal(t, 409, appErr.Status)
	})

	t.Run("duplicate finalization rejected", func(t *testing.T) {
		mockRepo := new(MockRepository)
		service := NewService(mockRepo, NewCalculator(config.DefaultRates()), nil)

		booking := activeBooking()
		existing := &TripChargeRecord{ID: uuid.New(), BookingID: booking.ID}
		mockRepo.On("GetBooking", ctx, booking.ID).Return(booking, nil)
		mockRepo.On("GetChargeRecordByBooking", ctx, booking.ID).Return(existing, nil)

		record, err := service.FinalizeTrip(ctx, booking.ID, &FinalizeTripRequest{
			EndMileage: 1500, FuelLevelEnd: "Full", ActualEndDate: booking.ScheduledEndDate,
		})

		assert.Nil(t, record)
		appErr, ok := err.(*common.AppError)
		assert.True(t, ok)
		assert.Equal(t, 409, appErr.Status)
		mockRepo.AssertNotCalled(t, "CreateChargeRecord", mock.Anything, mock.Anything)
	})

	t.Run("persistence failure surfaces as internal error", func(t *testing.T) {
		mockRepo := new(MockRepository)
		service := NewService(mockRepo, NewCalculator(config.DefaultRates()), nil)

		booking := activeBooking()
		mockRepo.On("GetBooking", ctx, booking.ID).Return(booking, nil)
		mockRepo.On("GetChargeRecordByBooking", ctx, booking.ID).Return(nil, errors.New("not found"))
		mockRepo.On("CreateChargeRecord", ctx, mock.Anything).Return(errors.New("db down"))

		record, err := service.FinalizeTrip(ctx, booking.ID, &FinalizeTripRequest{
			EndMileage: 1500, FuelLevelEnd: "Full", ActualEndDate: booking.ScheduledEndDate,
		})

		assert.Nil(t, record)
		appErr, ok := err.(*common.AppError)
		assert.True(t, ok)
		assert.Equal(t, 500, appErr.Status)
	})

	t.Run("large total stores manual review warning", func(t *testing.T) {
		mockRepo := new(MockRepository)
		mockNotifier := new(MockNotifier)
		service := NewService(mockRepo, NewCalculator(config.DefaultRates()), mockNotifier)

		booking := activeBooking()
		req := &FinalizeTripRequest{
			EndMileage:    20000,
			FuelLevelEnd:  "Empty",
			ActualEndDate: booking.ScheduledEndDate,
		}

		mockRepo.On("GetBooking", ctx, booking.ID).Return(booking, nil)
		mockRepo.On("GetChargeRecordByBooking", ctx, booking.ID).Return(nil, errors.New("not found"))
		mockRepo.On("CreateChargeRecord", ctx, mock.Anything).Return(nil)
		mockRepo.On("CompleteBooking", ctx, booking.ID, req.EndMileage, req.FuelLevelEnd, req.ActualEndDate).Return(nil)
		mockNotifier.On("NotifyChargesFinalized", ctx, booking.GuestID, booking.ID, mock.AnythingOfType("float64")).Return()

		record, err := service.FinalizeTrip(ctx, booking.ID, req)

		assert.NoError(t, err)
		assert.NotEmpty(t, record.Warnings)
		assert.Equal(t, ChargeStatusPending, record.ChargeStatus)
	})
}

func TestPreviewCharges(t *testing.T) {
	ctx := context.Background()

	t.Run("preview computes without persisting", func(t *testing.T) {
		mockRepo := new(MockRepository)
		service := NewService(mockRepo, NewCalculator(config.DefaultRates()), nil)

		booking := activeBooking()
		mockRepo.On("GetBooking", ctx, booking.ID).Return(booking, nil)

		charges, validation, err := service.PreviewCharges(ctx, booking.ID, &FinalizeTripRequest{
			EndMileage:    2000,
			FuelLevelEnd:  "1/2",
			ActualEndDate: booking.ScheduledEndDate,
		})

		assert.NoError(t, err)
		assert.Equal(t, 363.0, charges.Total)
		assert.True(t, validation.Valid)
		mockRepo.AssertNotCalled(t, "CreateChargeRecord", mock.Anything, mock.Anything)
		mockRepo.AssertNotCalled(t, "CompleteBooking", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestGetCharges(t *testing.T) {
	ctx := context.Background()

	t.Run("returns persisted record", func(t *testing.T) {
		mockRepo := new(MockRepository)
		service := NewService(mockRepo, NewCalculator(config.DefaultRates()), nil)

		bookingID := uuid.New()
		existing := &TripChargeRecord{ID: uuid.New(), BookingID: bookingID, TotalCharges: 583}
		mockRepo.On("GetChargeRecordByBooking", ctx, bookingID).Return(existing, nil)

		record, err := service.GetCharges(ctx, bookingID)

		assert.NoError(t, err)
		assert.Equal(t, existing, record)
	})

	t.Run("not found", func(t *testing.T) {
		mockRepo := new(MockRepository)
		service := NewService(mockRepo, NewCalculator(config.DefaultRates()), nil)

		bookingID := uuid.New()
		mockRepo.On("GetChargeRecordByBooking", ctx, bookingID).Return(nil, errors.New("no rows"))

		record, err := service.GetCharges(ctx, bookingID)

		assert.Nil(t, record)
		appErr, ok := err.(*common.AppError)
		assert.True(t, ok)
		assert.Equal(t, 404, appErr.Status)
	})
}
