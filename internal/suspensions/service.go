package suspensions

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/drivemate/rental-platform/pkg/common"
	"github.com/drivemate/rental-platform/pkg/logger"
	"github.com/drivemate/rental-platform/pkg/models"
)

const cacheTTL = 5 * time.Minute

// Service handles account suspension and escalation
type Service struct {
	repo     RepositoryInterface
	cache    CacheInterface
	notifier NotifierInterface
}

// NewService creates a new suspension service
func NewService(repo RepositoryInterface, cache CacheInterface, notifier NotifierInterface) *Service {
	return &Service{
		repo:     repo,
		cache:    cache,
		notifier: notifier,
	}
}

func cacheKey(role Role, userID uuid.UUID) string {
	return fmt.Sprintf("suspension:%s:%s", role, userID)
}

// SuspendUser applies a suspension per the violation escalation table. An
// account-wide rule overrides the requested role and suspends both profiles
// transactionally. Unknown violation types are rejected; nothing is applied
// until a moderator classifies them.
func (s *Service) SuspendUser(ctx context.Context, req *SuspendRequest) (*SuspensionResult, error) {
	decision, err := ResolveEscalation(req.ViolationType, req.Role)
	if err != nil {
		logger.WithContext(ctx).Warn("Suspension rejected, unclassified violation",
			zap.String("user_id", req.UserID.String()),
			zap.String("violation_type", req.ViolationType),
		)
		return nil, common.NewUnprocessableError(err.Error())
	}

	var expiresAt *time.Time
	if !decision.Permanent() {
		t := time.Now().Add(time.Duration(decision.DurationDays) * 24 * time.Hour)
		expiresAt = &t
	}

	if err := s.repo.ApplySuspension(ctx, req.UserID, decision.Roles, decision.Level, req.Reason, expiresAt); err != nil {
		logger.WithContext(ctx).Error("Failed to apply suspension", zap.Error(err),
			zap.String("user_id", req.UserID.String()))
		return nil, common.NewInternalServerError("failed to apply suspension")
	}

	for _, role := range decision.Roles {
		s.cacheLevel(ctx, role, req.UserID, decision.Level)
		if s.notifier != nil {
			s.notifier.NotifySuspension(ctx, req.UserID, string(role), string(decision.Level), req.Reason)
		}
	}

	logger.WithContext(ctx).Info("Suspension applied",
		zap.String("user_id", req.UserID.String()),
		zap.String("violation_type", decision.ViolationType),
		zap.String("level", string(decision.Level)),
		zap.String("scope", string(decision.Scope)),
		zap.Bool("permanent", expiresAt == nil),
	)

	return &SuspensionResult{
		UserID:    req.UserID,
		Decision:  decision,
		Level:     decision.Level,
		ExpiresAt: expiresAt,
	}, nil
}

// LiftSuspension clears the suspension on one role of a user account.
// Banned profiles stay banned; a ban is lifted only through a separate
// reinstatement process, not this endpoint.
func (s *Service) LiftSuspension(ctx context.Context, userID uuid.UUID, role Role) error {
	status, err := s.loadStatus(ctx, userID, role)
	if err != nil {
		return err
	}
	if !status.Suspended {
		return common.NewConflictError("account role is not suspended")
	}
	if status.Level != nil && *status.Level == models.SuspensionBanned {
		return common.NewForbiddenError("banned accounts require reinstatement review")
	}

	if err := s.repo.ClearSuspension(ctx, userID, role); err != nil {
		logger.WithContext(ctx).Error("Failed to lift suspension", zap.Error(err),
			zap.String("user_id", userID.String()))
		return common.NewInternalServerError("failed to lift suspension")
	}

	s.invalidate(ctx, role, userID)

	logger.WithContext(ctx).Info("Suspension lifted",
		zap.String("user_id", userID.String()),
		zap.String("role", string(role)),
	)

	return nil
}

// GetStatus returns the current suspension standing of one role. A cached
// level short-circuits the profile load; an expired suspension reads as not
// suspended without mutating the profile.
func (s *Service) GetStatus(ctx context.Context, userID uuid.UUID, role Role) (*SuspensionStatus, error) {
	if s.cache != nil {
		if level, err := s.cache.GetString(ctx, cacheKey(role, userID)); err == nil && level != "" {
			if level == "none" {
				return &SuspensionStatus{UserID: userID, Role: role, Suspended: false}, nil
			}
			l := models.SuspensionLevel(level)
			return &SuspensionStatus{UserID: userID, Role: role, Suspended: true, Level: &l}, nil
		}
	}

	status, err := s.loadStatus(ctx, userID, role)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		value := "none"
		if status.Suspended && status.Level != nil {
			value = string(*status.Level)
		}
		if err := s.cache.SetWithExpiration(ctx, cacheKey(role, userID), value, cacheTTL); err != nil {
			logger.WithContext(ctx).Debug("Suspension cache write failed", zap.Error(err))
		}
	}

	return status, nil
}

func (s *Service) loadStatus(ctx context.Context, userID uuid.UUID, role Role) (*SuspensionStatus, error) {
	var level *models.SuspensionLevel
	var reason *string
	var expiresAt *time.Time

	switch role {
	case RoleGuest:
		profile, err := s.repo.GetGuestProfile(ctx, userID)
		if err != nil {
			return nil, common.NewNotFoundError("guest profile not found", err)
		}
		level, reason, expiresAt = profile.SuspensionLevel, profile.SuspendedReason, profile.SuspensionExpiresAt
	case RoleHost:
		profile, err := s.repo.GetHostProfile(ctx, userID)
		if err != nil {
			return nil, common.NewNotFoundError("host profile not found", err)
		}
		level, reason, expiresAt = profile.SuspensionLevel, profile.SuspendedReason, profile.SuspensionExpiresAt
	default:
		return nil, common.NewBadRequestError("role must be guest or host", nil)
	}

	suspended := level != nil
	if suspended && expiresAt != nil && expiresAt.Before(time.Now()) {
		suspended = false
	}

	status := &SuspensionStatus{
		UserID:    userID,
		Role:      role,
		Suspended: suspended,
	}
	if suspended {
		status.Level = level
		status.Reason = reason
		status.ExpiresAt = expiresAt
	}

	return status, nil
}

func (s *Service) cacheLevel(ctx context.Context, role Role, userID uuid.UUID, level models.SuspensionLevel) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SetWithExpiration(ctx, cacheKey(role, userID), string(level), cacheTTL); err != nil {
		logger.WithContext(ctx).Debug("Suspension cache write failed", zap.Error(err))
	}
}

func (s *Service) invalidate(ctx context.Context, role Role, userID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, cacheKey(role, userID)); err != nil {
		logger.WithContext(ctx).Debug("Suspension cache invalidation failed", zap.Error(err))
	}
}
