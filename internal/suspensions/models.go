package suspensions

import (
	"time"

	"github.com/google/uuid"

	"github.com/drivemate/rental-platform/pkg/models"
)

// Role identifies which side of the marketplace a suspension targets
type Role string

const (
	RoleGuest Role = "guest"
	RoleHost  Role = "host"
)

// EscalationScope is the breadth of a suspension after escalation rules apply
type EscalationScope string

const (
	ScopeRequested EscalationScope = "requested"
	ScopeBoth      EscalationScope = "both"
)

// EscalationDecision is the resolved outcome of a violation lookup: which
// roles to suspend, at what level, and for how long.
type EscalationDecision struct {
	ViolationType string                 `json:"violation_type"`
	Scope         EscalationScope        `json:"scope"`
	Roles         []Role                 `json:"roles"`
	Level         models.SuspensionLevel `json:"level"`
	DurationDays  int                    `json:"duration_days"` // 0 means permanent
}

// Permanent reports whether the decision has no expiry
func (d EscalationDecision) Permanent() bool {
	return d.Level == models.SuspensionBanned || d.DurationDays == 0
}

// SuspendRequest is the moderation intake payload
type SuspendRequest struct {
	UserID        uuid.UUID `json:"user_id" binding:"required"`
	Role          Role      `json:"role" binding:"required,suspension_role"`
	ViolationType string    `json:"violation_type" binding:"required"`
	Reason        string    `json:"reason" binding:"required,min=10"`
}

// SuspensionStatus is the current standing of one role of a user account
type SuspensionStatus struct {
	UserID    uuid.UUID               `json:"user_id"`
	Role      Role                    `json:"role"`
	Suspended bool                    `json:"suspended"`
	Level     *models.SuspensionLevel `json:"level,omitempty"`
	Reason    *string                 `json:"reason,omitempty"`
	ExpiresAt *time.Time              `json:"expires_at,omitempty"`
}

// SuspensionResult reports what a suspension request actually applied
type SuspensionResult struct {
	UserID    uuid.UUID              `json:"user_id"`
	Decision  EscalationDecision     `json:"decision"`
	Level     models.SuspensionLevel `json:"level"`
	ExpiresAt *time.Time             `json:"expires_at,omitempty"`
}
