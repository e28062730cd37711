package suspensions

import (
	"fmt"
	"strings"

	"github.com/drivemate/rental-platform/pkg/models"
)

// escalationRule is one row of the violation table
type escalationRule struct {
	scope        EscalationScope
	level        models.SuspensionLevel
	durationDays int // 0 means permanent
}

// escalationTable maps violation types to their escalation rules. Severe
// violations carry ScopeBoth and suspend the account on both sides of the
// marketplace no matter which role the moderator asked for.
var escalationTable = map[string]escalationRule{
	"payment_fraud":             {scope: ScopeBoth, level: models.SuspensionBanned},
	"identity_fraud":            {scope: ScopeBoth, level: models.SuspensionBanned},
	"vehicle_theft":             {scope: ScopeBoth, level: models.SuspensionBanned},
	"harassment":                {scope: ScopeBoth, level: models.SuspensionHard, durationDays: 90},
	"chargeback_abuse":          {scope: ScopeRequested, level: models.SuspensionHard, durationDays: 60},
	"unsafe_vehicle":            {scope: ScopeRequested, level: models.SuspensionHard, durationDays: 30},
	"insurance_lapse":           {scope: ScopeRequested, level: models.SuspensionHard, durationDays: 30},
	"repeated_cancellations":    {scope: ScopeRequested, level: models.SuspensionSoft, durationDays: 14},
	"late_returns":              {scope: ScopeRequested, level: models.SuspensionSoft, durationDays: 14},
	"listing_misrepresentation": {scope: ScopeRequested, level: models.SuspensionSoft, durationDays: 14},
}

// ResolveEscalation looks up a violation type and resolves the roles to
// suspend. An unknown violation type is rejected outright rather than
// defaulting to a role-specific suspension: a new violation category added
// without a table entry must force a manual decision, not silently
// under-escalate.
func ResolveEscalation(violationType string, requestedRole Role) (EscalationDecision, error) {
	key := strings.ToLower(strings.TrimSpace(violationType))

	rule, ok := escalationTable[key]
	if !ok {
		return EscalationDecision{}, fmt.Errorf("unknown violation type %q: no escalation rule on file, manual review required", violationType)
	}

	decision := EscalationDecision{
		ViolationType: key,
		Scope:         rule.scope,
		Level:         rule.level,
		DurationDays:  rule.durationDays,
	}

	if rule.scope == ScopeBoth {
		decision.Roles = []Role{RoleGuest, RoleHost}
	} else {
		decision.Roles = []Role{requestedRole}
	}

	return decision, nil
}

// KnownViolationTypes lists the violation types the table covers, for
// moderation tooling.
func KnownViolationTypes() []string {
	types := make([]string, 0, len(escalationTable))
	for key := range escalationTable {
		types = append(types, key)
	}
	return types
}
