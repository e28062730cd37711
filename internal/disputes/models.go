package disputes

import (
	"github.com/google/uuid"
)

// ResolutionAction is an administrative action on a disputed charge
type ResolutionAction string

const (
	ActionChargeAnyway ResolutionAction = "charge_anyway"
	ActionWaive        ResolutionAction = "waive"
	ActionPartialWaive ResolutionAction = "partial_waive"
	ActionEscalate     ResolutionAction = "escalate"
)

// FileDisputeRequest is the guest-side dispute intake payload
type FileDisputeRequest struct {
	GuestID uuid.UUID `json:"guest_id" binding:"required"`
	Reason  string    `json:"reason" binding:"required,min=10"`
}

// ResolveDisputeRequest is the admin-side resolution payload.
// WaivePercentage is required for partial_waive and must be 1..99.
type ResolveDisputeRequest struct {
	Action          ResolutionAction `json:"action" binding:"required,oneof=charge_anyway waive partial_waive escalate"`
	WaivePercentage *float64         `json:"waive_percentage,omitempty"`
	Note            string           `json:"note,omitempty"`
}

// ResolutionResult reports the outcome of a dispute resolution
type ResolutionResult struct {
	RecordID      uuid.UUID        `json:"record_id"`
	Action        ResolutionAction `json:"action"`
	ChargeStatus  string           `json:"charge_status"`
	TotalCharges  float64          `json:"total_charges"`
	ChargedAmount float64          `json:"charged_amount,omitempty"`
	ChargeID      string           `json:"charge_id,omitempty"`
}
