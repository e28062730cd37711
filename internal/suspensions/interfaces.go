package suspensions

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/drivemate/rental-platform/pkg/models"
)

// RepositoryInterface defines the suspension persistence operations
type RepositoryInterface interface {
	GetGuestProfile(ctx context.Context, userID uuid.UUID) (*models.GuestProfile, error)
	GetHostProfile(ctx context.Context, userID uuid.UUID) (*models.HostProfile, error)
	// ApplySuspension writes suspension fields to every listed role's
	// profile. All roles commit together or not at all.
	ApplySuspension(ctx context.Context, userID uuid.UUID, roles []Role, level models.SuspensionLevel, reason string, expiresAt *time.Time) error
	// ClearSuspension nulls the suspension fields on one role's profile.
	ClearSuspension(ctx context.Context, userID uuid.UUID, role Role) error
}

// CacheInterface is the suspension-flag cache. Misses are not errors; a
// cold cache just falls through to the database.
type CacheInterface interface {
	SetWithExpiration(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	GetString(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, keys ...string) error
}

// NotifierInterface is the notification collaborator for suspension events
type NotifierInterface interface {
	NotifySuspension(ctx context.Context, userID uuid.UUID, role string, level string, reason string)
}
