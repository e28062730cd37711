package notifications

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/drivemate/rental-platform/pkg/logger"
)

// EmailClientInterface is the outbound email provider
type EmailClientInterface interface {
	SendEmail(ctx context.Context, userID uuid.UUID, subject, body string) error
}

// Service sends fire-and-forget notifications. Delivery failures are logged
// and never block the state transition that triggered them.
type Service struct {
	emailClient EmailClientInterface
}

// NewService creates a new notification service
func NewService(emailClient EmailClientInterface) *Service {
	return &Service{emailClient: emailClient}
}

// NotifyChargesFinalized tells the guest their post-trip charges are ready
func (s *Service) NotifyChargesFinalized(ctx context.Context, guestID uuid.UUID, bookingID uuid.UUID, total float64) {
	s.send(ctx, guestID, "Your trip charges",
		"Your post-trip charges have been finalized.",
		zap.String("booking_id", bookingID.String()),
		zap.Float64("total", total),
	)
}

// NotifyDisputeResolved tells the guest how their dispute was resolved
func (s *Service) NotifyDisputeResolved(ctx context.Context, guestID uuid.UUID, bookingID uuid.UUID, action string, amount float64) {
	s.send(ctx, guestID, "Dispute resolved",
		"Your disputed charge has been reviewed.",
		zap.String("booking_id", bookingID.String()),
		zap.String("action", action),
		zap.Float64("amount", amount),
	)
}

// NotifyClaimRecovery tells the guest a claim recovery charge was processed
func (s *Service) NotifyClaimRecovery(ctx context.Context, guestID uuid.UUID, claimID uuid.UUID, amount float64) {
	s.send(ctx, guestID, "Claim recovery charge",
		"A claim recovery amount has been charged to your payment method.",
		zap.String("claim_id", claimID.String()),
		zap.Float64("amount", amount),
	)
}

// NotifySuspension tells a user their account standing changed
func (s *Service) NotifySuspension(ctx context.Context, userID uuid.UUID, role, level, reason string) {
	s.send(ctx, userID, "Account status update",
		"Your account standing has changed.",
		zap.String("role", role),
		zap.String("level", level),
		zap.String("reason", reason),
	)
}

func (s *Service) send(ctx context.Context, userID uuid.UUID, subject, body string, fields ...zap.Field) {
	if s.emailClient == nil {
		return
	}
	// The request logger is captured before detaching so delivery failures
	// still carry the originating correlation ID.
	reqLogger := logger.WithContext(ctx)
	go func() {
		if err := s.emailClient.SendEmail(context.Background(), userID, subject, body); err != nil {
			reqLogger.Warn("Failed to send notification email",
				append(fields, zap.String("user_id", userID.String()), zap.Error(err))...)
		}
	}()
}
