package claims

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/drivemate/rental-platform/internal/payments"
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

func (m *MockRepository) GetHostProfile(ctx context.Context, hostID uuid.UUID) (*models.HostProfile, error) {
	args := m.Called(ctx, hostID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.HostProfile), args.Error(1)
}

func (m *MockRepository) GetGuestProfile(ctx context.Context, guestID uuid.UUID) (*models.GuestProfile, error) {
	args := m.Called(ctx, guestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GuestProfile), args.Error(1)
}

func (m *MockRepository) CreateClaim(ctx context.Context, claim *Claim, hold *models.AccountHold) error {
	args := m.Called(ctx, claim, hold)
	return args.Error(0)
}

func (m *MockRepository) GetClaim(ctx context.Context, claimID uuid.UUID) (*Claim, error) {
	args := m.Called(ctx, claimID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Claim), args.Error(1)
}

func (m *MockRepository) ListClaimsByHost(ctx context.Context, hostID uuid.UUID) ([]Claim, error) {
	args := m.Called(ctx, hostID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Claim), args.Error(1)
}

func (m *MockRepository) UpdateClaimStatus(ctx context.Context, claimID uuid.UUID, from, to ClaimStatus) (bool, error) {
	args := m.Called(ctx, claimID, from, to)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) RecordGuestRecovery(ctx context.Context, claimID uuid.UUID, amount float64, newStatus RecoveryStatus, releaseHold bool, transfer *PendingTransfer) error {
	args := m.Called(ctx, claimID, amount, newStatus, releaseHold, transfer)
	return args.Error(0)
}

func (m *MockRepository) ListPendingTransfers(ctx context.Context) ([]PendingTransfer, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]PendingTransfer), args.Error(1)
}

func (m *MockRepository) GetPendingTransfer(ctx context.Context, transferID uuid.UUID) (*PendingTransfer, error) {
	args := m.Called(ctx, transferID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*PendingTransfer), args.Error(1)
}

func (m *MockRepository) MarkTransferResult(ctx context.Context, transferID uuid.UUID, status TransferStatus, stripeTransferID *string, lastError *string) error {
	args := m.Called(ctx, transferID, status, stripeTransferID, lastError)
	return args.Error(0)
}

// MockStripeClient is a mock implementation of StripeClientInterface
type MockStripeClient struct {
	mock.Mock
}

func (m *MockStripeClient) ChargeOffSession(customerID, paymentMethodID string, amountCents int64, currency, description, idempotencyKey string, metadata map[string]string) (*payments.ChargeResult, error) {
	args := m.Called(customerID, paymentMethodID, amountCents, currency, description, idempotencyKey, metadata)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payments.ChargeResult), args.Error(1)
}

func (m *MockStripeClient) CreateTransfer(destinationAccountID string, amountCents int64, currency, description string, metadata map[string]string) (*payments.TransferResult, error) {
	args := m.Called(destinationAccountID, amountCents, currency, description, metadata)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payments.TransferResult), args.Error(1)
}

// MockNotifier is a mock implementation of NotifierInterface
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) NotifyClaimRecovery(ctx context.Context, guestID uuid.UUID, claimID uuid.UUID, amount float64) {
	m.Called(ctx, guestID, claimID, amount)
}

func newTestService(repo *MockRepository, stripe *MockStripeClient, notifier *MockNotifier) *Service {
	var n NotifierInterface
	if notifier != nil {
		n = notifier
	}
	return NewService(repo, stripe, n, config.DefaultRates())
}

func completedBooking() *models.Booking {
	return &models.Booking{
		ID:           uuid.New(),
		GuestID:      uuid.New(),
		HostID:       uuid.New(),
		DepositHeld:  200,
		Status:       models.BookingStatusCompleted,
		NumberOfDays: 3,
	}
}

func strPtr(s string) *string { return &s }

func TestCreateClaim(t *testing.T) {
	ctx := context.Background()

	t.Run("premium host claim resolves hierarchy and places hold", func(t *testing.T) {
		mockRepo := new(MockRepository)
		service := newTestService(mockRepo, new(MockStripeClient), nil)

		booking := completedBooking()
		future := time.Now().Add(90 * 24 * time.Hour)

		mockRepo.On("GetBooking", ctx, booking.ID).Return(booking, nil)
		mockRepo.On("GetHostProfile", ctx, booking.HostID).Return(&models.HostProfile{
			UserID:                    booking.HostID,
			EarningsTier:              models.TierPremium,
			CommercialInsuranceStatus: models.InsuranceActive,
		}, nil)
		mockRepo.On("GetGuestProfile", ctx, booking.GuestID).Return(&models.GuestProfile{
			UserID:                    booking.GuestID,
			PersonalInsuranceVerified: true,
			PersonalInsuranceExpiry:   &future,
		}, nil)
		mockRepo.On("CreateClaim", ctx, mock.AnythingOfType("*claims.Claim"), mock.AnythingOfType("*models.AccountHold")).Return(nil)

		claim, err := service.CreateClaim(ctx, booking.HostID, &CreateClaimRequest{
			BookingID:     booking.ID,
			ClaimType:     ClaimTypeDamage,
			Description:   "rear bumper dented in parking lot",
			EstimatedCost: 1200,
		})

		assert.NoError(t, err)
		assert.Equal(t, ClaimStatusPending, claim.Status)
		assert.Equal(t, PayerHostCommercial, claim.PrimaryPayer)
		assert.Equal(t, 500.0, claim.Deductible)
		assert.True(t, claim.GuestSecondary)
		assert.Equal(t, 200.0, claim.DepositApplied)
		assert.Equal(t, 300.0, claim.GuestResponsibility)
		assert.Equal(t, RecoveryPending, claim.RecoveryStatus)
		mockRepo.AssertExpectations(t)
	})

	t.Run("no hold when deposit covers deductible", func(t *testing.T) {
		mockRepo := new(MockRepository)
		service := newTestService(mockRepo, new(MockStripeClient), nil)

		booking := completedBooking()
		booking.DepositHeld = 600

		mockRepo.On("GetBooking", ctx, booking.ID).Return(booking, nil)
		mockRepo.On("GetHostProfile", ctx, booking.HostID).Return(&models.HostProfile{
			EarningsTier:              models.TierPremium,
			CommercialInsuranceStatus: models.InsuranceActive,
		}, nil)
		mockRepo.On("GetGuestProfile", ctx, booking.GuestID).Return(&models.GuestProfile{}, nil)
		mockRepo.On("CreateClaim", ctx, mock.AnythingOfType("*claims.Claim"), (*models.AccountHold)(nil)).Return(nil)

		claim, err := service.CreateClaim(ctx, booking.HostID, &CreateClaimRequest{
			BookingID:     booking.ID,
			ClaimType:     ClaimTypeCleaning,
			Description:   "smoke smell requiring ozone treatment",
			EstimatedCost: 300,
		})

		assert.NoError(t, err)
		assert.Equal(t, 0.0, claim.GuestResponsibility)
		mockRepo.AssertExpectations(t)
	})

	t.Run("claim against another host's booking forbidden", func(t *testing.T) {
		mockRepo := new(MockRepository)
		service := newTestService(mockRepo, new(MockStripeClient), nil)

		booking := completedBooking()
		mockRepo.On("GetBooking", ctx, booking.ID).Return(booking, nil)

		claim, err := service.CreateClaim(ctx, uuid.New(), &CreateClaimRequest{
			BookingID:     booking.ID,
			ClaimType:     ClaimTypeDamage,
			Description:   "scratched door panel on pickup",
			EstimatedCost: 400,
		})

		assert.Nil(t, claim)
		appErr, ok := err.(*common.AppError)
		assert.True(t, ok)
		assert.Equal(t, 403, appErr.Status)
	})

	t.Run("claim against active booking rejected", func(t *testing.T) {
		mockRepo := new(MockRepository)
		service := newTestService(mockRepo, new(MockStripeClient), nil)

		booking := completedBooking()
		booking.Status = models.BookingStatusActive
		mockRepo.On("GetBooking", ctx, booking.ID).Return(booking, nil)

		claim, err := service.CreateClaim(ctx, booking.HostID, &CreateClaimRequest{
			BookingID:     booking.ID,
			ClaimType:     ClaimTypeDamage,
			Description:   "windshield chip from highway debris",
			EstimatedCost: 250,
		})

		assert.Nil(t, claim)
		appErr, ok := err.(*common.AppError)
		assert.True(t, ok)
		assert.Equal(t, 409, appErr.Status)
	})
}

func TestClaimReview(t *testing.T) {
	ctx := context.Background()

	t.Run("approve pending claim", func(t *testing.T) {
		mockRepo := new(MockRepository)
		service := newTestService(mockRepo, new(MockStripeClient), nil)

		claimID := uuid.New()
		approved := &Claim{ID: claimID, Status: ClaimStatusApproved}
		mockRepo.On("UpdateClaimStatus", ctx, claimID, ClaimStatusPending, ClaimStatusApproved).Return(true, nil)
		mockRepo.On("GetClaim", ctx, claimID).Return(approved, nil)

		claim, err := service.ApproveClaim(ctx, claimID)

		assert.NoError(t, err)
		assert.Equal(t, ClaimStatusApproved, claim.Status)
	})

	t.Run("approving non-pending claim conflicts", func(t *testing.T) {
		mockRepo := new(MockRepository)
		service := newTestService(mockRepo, new(MockStripeClient), nil)

		claimID := uuid.New()
		mockRepo.On("UpdateClaimStatus", ctx, claimID, ClaimStatusPending, ClaimStatusApproved).Return(false, nil)

		claim, err := service.ApproveClaim(ctx, claimID)

		assert.Nil(t, claim)
		appErr, ok := err.(*common.AppError)
		assert.True(t, ok)
		assert.Equal(t, 409, appErr.Status)
	})

	t.Run("deny pending claim", func(t *testing.T) {
		mockRepo := new(MockRepository)
		service := newTestService(mockRepo, new(MockStripeClient), nil)

		claimID := uuid.New()
		denied := &Claim{ID: claimID, Status: ClaimStatusDenied}
		mockRepo.On("UpdateClaimStatus", ctx, claimID, ClaimStatusPending, ClaimStatusDenied).Return(true, nil)
		mockRepo.On("GetClaim", ctx, claimID).Return(denied, nil)

		claim, err := service.DenyClaim(ctx, claimID)

		assert.NoError(t, err)
		assert.Equal(t, ClaimStatusDenied, claim.Status)
	})
}

func approvedClaim() *Claim {
	return &Claim{
		ID:                  uuid.New(),
		BookingID:           uuid.New(),
		HostID:              uuid.New(),
		GuestID:             uuid.New(),
		ClaimType:           ClaimTypeDamage,
		Status:              ClaimStatusApproved,
		PrimaryPayer:        PayerHostCommercial,
		Deductible:          500,
		DepositApplied:      200,
		GuestResponsibility: 300,
		RecoveredFromGuest:  0,
		RecoveryStatus:      RecoveryPending,
	}
}

func payableGuest(guestID uuid.UUID) *models.GuestProfile {
	return &models.GuestProfile{
		UserID:                 guestID,
		StripeCustomerID:       strPtr("cus_123"),
		DefaultPaymentMethodID: strPtr("pm_123"),
	}
}

func TestChargeGuestForClaim(t *testing.T) {
	ctx := context.Background()

	t.Run("full recovery charges, releases hold, and queues host payout", func(t *testing.T) {
		mockRepo := new(MockRepository)
		mockStripe := new(MockStripeClient)
		mockNotifier := new(MockNotifier)
		service := newTestService(mockRepo, mockStripe, mockNotifier)

		claim := approvedClaim()
		hostAccount := "acct_host"

		mockRepo.On("GetClaim", ctx, claim.ID).Return(claim, nil)
		mockRepo.On("GetGuestProfile", ctx, claim.GuestID).Return(payableGuest(claim.GuestID), nil)
		mockStripe.On("ChargeOffSession", "cus_123", "pm_123", int64(30000), "usd",
			mock.AnythingOfType("string"), mock.AnythingOfType("string"), mock.Anything).
			Return(&payments.ChargeResult{Status: payments.ChargeSucceeded, ChargeID: "pi_1"}, nil)
		mockRepo.On("GetHostProfile", ctx, claim.HostID).Return(&models.HostProfile{
			UserID:          claim.HostID,
			StripeAccountID: &hostAccount,
		}, nil)
		mockRepo.On("RecordGuestRecovery", ctx, claim.ID, 300.0, RecoveryFull, true,
			mock.AnythingOfType("*claims.PendingTransfer")).Return(nil)
		mockStripe.On("CreateTransfer", hostAccount, int64(30000), "usd",
			mock.AnythingOfType("string"), mock.Anything).
			Return(&payments.TransferResult{Status: payments.ChargeSucceeded, TransferID: "tr_1"}, nil)
		mockRepo.On("MarkTransferResult", ctx, mock.AnythingOfType("uuid.UUID"),
			TransferCompleted, mock.AnythingOfType("*string"), (*string)(nil)).Return(nil)
		mockNotifier.On("NotifyClaimRecovery", ctx, claim.GuestID, claim.ID, 300.0).Return()
		mockRepo.On("GetClaim", ctx, claim.ID).Return(claim, nil)

		result, err := service.ChargeGuestForClaim(ctx, claim.ID)

		assert.NoError(t, err)
		assert.Equal(t, 300.0, result.ChargedAmount)
		assert.Equal(t, "pi_1", result.ChargeID)
		assert.True(t, result.TransferQueued)
		mockRepo.AssertExpectations(t)
		mockStripe.AssertExpectations(t)
	})

	t.Run("platform primary claim does not queue host payout", func(t *testing.T) {
		mockRepo := new(MockRepository)
		mockStripe := new(MockStripeClient)
		service := newTestService(mockRepo, mockStripe, nil)

		claim := approvedClaim()
		claim.PrimaryPayer = PayerPlatform
		claim.Deductible = 1000
		claim.GuestResponsibility = 800

		mockRepo.On("GetClaim", ctx, claim.ID).Return(claim, nil)
		mockRepo.On("GetGuestProfile", ctx, claim.GuestID).Return(payableGuest(claim.GuestID), nil)
		mockStripe.On("ChargeOffSession", "cus_123", "pm_123", int64(80000), "usd",
			mock.AnythingOfType("string"), mock.AnythingOfType("string"), mock.Anything).
			Return(&payments.ChargeResult{Status: payments.ChargeSucceeded, ChargeID: "pi_2"}, nil)
		mockRepo.On("RecordGuestRecovery", ctx, claim.ID, 800.0, RecoveryFull, true,
			(*PendingTransfer)(nil)).Return(nil)
		mockRepo.On("GetClaim", ctx, claim.ID).Return(claim, nil)

		result, err := service.ChargeGuestForClaim(ctx, claim.ID)

		assert.NoError(t, err)
		assert.False(t, result.TransferQueued)
		mockStripe.AssertNotCalled(t, "CreateTransfer",
			mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("declined charge changes nothing", func(t *testing.T) {
		mockRepo := new(MockRepository)
		mockStripe := new(MockStripeClient)
		service := newTestService(mockRepo, mockStripe, nil)

		claim := approvedClaim()
		mockRepo.On("GetClaim", ctx, claim.ID).Return(claim, nil)
		mockRepo.On("GetGuestProfile", ctx, claim.GuestID).Return(payableGuest(claim.GuestID), nil)
		mockStripe.On("ChargeOffSession", "cus_123", "pm_123", int64(30000), "usd",
			mock.AnythingOfType("string"), mock.AnythingOfType("string"), mock.Anything).
			Return(&payments.ChargeResult{Status: payments.ChargeFailed, Error: "card_declined"}, nil)

		result, err := service.ChargeGuestForClaim(ctx, claim.ID)

		assert.Nil(t, result)
		appErr, ok := err.(*common.AppError)
		assert.True(t, ok)
		assert.Equal(t, "payment_failed", appErr.Code)
		mockRepo.AssertNotCalled(t, "RecordGuestRecovery",
			mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("pending claim cannot be charged", func(t *testing.T) {
		mockRepo := new(MockRepository)
		service := newTestService(mockRepo, new(MockStripeClient), nil)

		claim := approvedClaim()
		claim.Status = ClaimStatusPending
		mockRepo.On("GetClaim", ctx, claim.ID).Return(claim, nil)

		result, err := service.ChargeGuestForClaim(ctx, claim.ID)

		assert.Nil(t, result)
		appErr, ok := err.(*common.AppError)
		assert.True(t, ok)
		assert.Equal(t, 409, appErr.Status)
	})

	t.Run("fully recovered claim cannot be charged again", func(t *testing.T) {
		mockRepo := new(MockRepository)
		service := newTestService(mockRepo, new(MockStripeClient), nil)

		claim := approvedClaim()
		claim.Status = ClaimStatusGuestResponded
		claim.RecoveredFromGuest = 300
		claim.RecoveryStatus = RecoveryFull
		mockRepo.On("GetClaim", ctx, claim.ID).Return(claim, nil)

		result, err := service.ChargeGuestForClaim(ctx, claim.ID)

		assert.Nil(t, result)
		appErr, ok := err.(*common.AppError)
		assert.True(t, ok)
		assert.Equal(t, 409, appErr.Status)
	})

	t.Run("guest without payment method rejected", func(t *testing.T) {
		mockRepo := new(MockRepository)
		service := newTestService(mockRepo, new(MockStripeClient), nil)

		claim := approvedClaim()
		mockRepo.On("GetClaim", ctx, claim.ID).Return(claim, nil)
		mockRepo.On("GetGuestProfile", ctx, claim.GuestID).Return(&models.GuestProfile{UserID: claim.GuestID}, nil)

		result, err := service.ChargeGuestForClaim(ctx, claim.ID)

		assert.Nil(t, result)
		appErr, ok := err.(*common.AppError)
		assert.True(t, ok)
		assert.Equal(t, 422, appErr.Status)
	})

	t.Run("failed transfer leaves payout queued and recovery succeeds", func(t *testing.T) {
		mockRepo := new(MockRepository)
		mockStripe := new(MockStripeClient)
		service := newTestService(mockRepo, mockStripe, nil)

		claim := approvedClaim()
		hostAccount := "acct_host"

		mockRepo.On("GetClaim", ctx, claim.ID).Return(claim, nil)
		mockRepo.On("GetGuestProfile", ctx, claim.GuestID).Return(payableGuest(claim.GuestID), nil)
		mockStripe.On("ChargeOffSession", "cus_123", "pm_123", int64(30000), "usd",
			mock.AnythingOfType("string"), mock.AnythingOfType("string"), mock.Anything).
			Return(&payments.ChargeResult{Status: payments.ChargeSucceeded, ChargeID: "pi_3"}, nil)
		mockRepo.On("GetHostProfile", ctx, claim.HostID).Return(&models.HostProfile{
			UserID:          claim.HostID,
			StripeAccountID: &hostAccount,
		}, nil)
		mockRepo.On("RecordGuestRecovery", ctx, claim.ID, 300.0, RecoveryFull, true,
			mock.AnythingOfType("*claims.PendingTransfer")).Return(nil)
		mockStripe.On("CreateTransfer", hostAccount, int64(30000), "usd",
			mock.AnythingOfType("string"), mock.Anything).
			Return(nil, errors.New("stripe unavailable"))
		mockRepo.On("MarkTransferResult", ctx, mock.AnythingOfType("uuid.UUID"),
			TransferPending, (*string)(nil), mock.AnythingOfType("*string")).Return(nil)
		mockRepo.On("GetClaim", ctx, claim.ID).Return(claim, nil)

		result, err := service.ChargeGuestForClaim(ctx, claim.ID)

		assert.NoError(t, err)
		assert.True(t, result.TransferQueued)
		mockRepo.AssertExpectations(t)
	})
}

func TestRetryTransfer(t *testing.T) {
	ctx := context.Background()

	t.Run("retry completes a queued payout", func(t *testing.T) {
		mockRepo := new(MockRepository)
		mockStripe := new(MockStripeClient)
		service := newTestService(mockRepo, mockStripe, nil)

		transfer := &PendingTransfer{
			ID:                   uuid.New(),
			ClaimID:              uuid.New(),
			HostID:               uuid.New(),
			DestinationAccountID: "acct_host",
			Amount:               300,
			Currency:             "usd",
			Status:               TransferPending,
			Attempts:             1,
		}

		mockRepo.On("GetPendingTransfer", ctx, transfer.ID).Return(transfer, nil).Once()
		mockStripe.On("CreateTransfer", "acct_host", int64(30000), "usd",
			mock.AnythingOfType("string"), mock.Anything).
			Return(&payments.TransferResult{Status: payments.ChargeSucceeded, TransferID: "tr_9"}, nil)
		mockRepo.On("MarkTransferResult", ctx, transfer.ID, TransferCompleted,
			mock.AnythingOfType("*string"), (*string)(nil)).Return(nil)
		completed := *transfer
		completed.Status = TransferCompleted
		mockRepo.On("GetPendingTransfer", ctx, transfer.ID).Return(&completed, nil).Once()

		result, err := service.RetryTransfer(ctx, transfer.ID)

		assert.NoError(t, err)
		assert.Equal(t, TransferCompleted, result.Status)
		mockStripe.AssertExpectations(t)
	})

	t.Run("completed transfer cannot be retried", func(t *testing.T) {
		mockRepo := new(MockRepository)
		service := newTestService(mockRepo, new(MockStripeClient), nil)

		transfer := &PendingTransfer{ID: uuid.New(), Status: TransferCompleted}
		mockRepo.On("GetPendingTransfer", ctx, transfer.ID).Return(transfer, nil)

		result, err := service.RetryTransfer(ctx, transfer.ID)

		assert.Nil(t, result)
		appErr, ok := err.(*common.AppError)
		assert.True(t, ok)
		assert.Equal(t, 409, appErr.Status)
	})
}
