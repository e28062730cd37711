package tripcharges

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// ChargeCategory classifies a breakdown line item. Free-text charge types
// from intake forms are resolved to a category once, at input validation,
// never re-derived downstream.
type ChargeCategory string

const (
	CategoryMileage  ChargeCategory = "mileage"
	CategoryFuel     ChargeCategory = "fuel"
	CategoryLate     ChargeCategory = "late_return"
	CategoryDamage   ChargeCategory = "damage"
	CategoryCleaning ChargeCategory = "cleaning"
	CategoryOther    ChargeCategory = "other"
)

// ParseChargeCategory resolves a free-text charge type to a category.
// Unrecognized types fall through to "other".
func ParseChargeCategory(chargeType string) ChargeCategory {
	t := strings.ToLower(strings.TrimSpace(chargeType))
	switch {
	case strings.Contains(t, "mileage"):
		return CategoryMileage
	case strings.Contains(t, "fuel"):
		return CategoryFuel
	case strings.Contains(t, "late"):
		return CategoryLate
	case strings.Contains(t, "damage"):
		return CategoryDamage
	case strings.Contains(t, "clean"):
		return CategoryCleaning
	default:
		return CategoryOther
	}
}

// FuelLevel is a quantized fuel gauge reading
type FuelLevel string

const (
	FuelFull          FuelLevel = "Full"
	FuelThreeQuarters FuelLevel = "3/4"
	FuelHalf          FuelLevel = "1/2"
	FuelQuarter       FuelLevel = "1/4"
	FuelEmpty         FuelLevel = "Empty"
)

// TankFraction maps a fuel level label to its tank fraction. Unknown labels
// read as a full tank, so a bad reading never generates a charge.
func (f FuelLevel) TankFraction() float64 {
	switch f {
	case FuelFull:
		return 1.0
	case FuelThreeQuarters:
		return 0.75
	case FuelHalf:
		return 0.5
	case FuelQuarter:
		return 0.25
	case FuelEmpty:
		return 0.0
	default:
		return 1.0
	}
}

// DamageSeverity buckets reported damage
type DamageSeverity string

const (
	DamageNone     DamageSeverity = "none"
	DamageMinor    DamageSeverity = "minor"
	DamageModerate DamageSeverity = "moderate"
	DamageMajor    DamageSeverity = "major"
)

// CleaningType buckets required cleaning
type CleaningType string

const (
	CleaningStandard  CleaningType = "standard"
	CleaningDeep      CleaningType = "deep"
	CleaningBiohazard CleaningType = "biohazard"
)

// ChargeItem is one line of an itemized charge breakdown
type ChargeItem struct {
	Category ChargeCategory `json:"category"`
	Label    string         `json:"label"`
	Amount   float64        `json:"amount"`
	Details  string         `json:"details,omitempty"`
	Quantity float64        `json:"quantity,omitempty"`
	Rate     float64        `json:"rate,omitempty"`
}

// MileageCharge is the mileage overage computation result
type MileageCharge struct {
	Used     float64 `json:"used"`
	Included float64 `json:"included"`
	Overage  float64 `json:"overage"`
	Charge   float64 `json:"charge"`
	Rate     float64 `json:"rate"`
}

// FuelCharge is the fuel refill computation result
type FuelCharge struct {
	StartLevel      FuelLevel `json:"start_level"`
	EndLevel        FuelLevel `json:"end_level"`
	LevelDifference float64   `json:"level_difference"`
	Charge          float64   `json:"charge"`
	TankPercentage  float64   `json:"tank_percentage"`
}

// LateReturnCharge is the late-return computation result
type LateReturnCharge struct {
	HoursLate          int     `json:"hours_late"`
	Charge             float64 `json:"charge"`
	GracePeriodApplied bool    `json:"grace_period_applied"`
}

// DamageCharge is the damage resolution result
type DamageCharge struct {
	Reported           bool           `json:"reported"`
	Severity           DamageSeverity `json:"severity"`
	Charge             float64        `json:"charge"`
	RequiresInspection bool           `json:"requires_inspection"`
}

// CleaningCharge is the cleaning resolution result
type CleaningCharge struct {
	Required bool         `json:"required"`
	Type     CleaningType `json:"type,omitempty"`
	Charge   float64      `json:"charge"`
}

// TripCharges is a complete itemized post-trip charge result. Values are
// computed once and never mutated; adjustments produce a new TripCharges.
type TripCharges struct {
	Breakdown []ChargeItem      `json:"breakdown"`
	Mileage   *MileageCharge    `json:"mileage,omitempty"`
	Fuel      *FuelCharge       `json:"fuel,omitempty"`
	Late      *LateReturnCharge `json:"late,omitempty"`
	Damage    *DamageCharge     `json:"damage,omitempty"`
	Cleaning  *CleaningCharge   `json:"cleaning,omitempty"`
	Subtotal  float64           `json:"subtotal"`
	Taxes     float64           `json:"taxes"`
	Total     float64           `json:"total"`
}

// AdHocCharge is an operator-entered charge folded into the breakdown
type AdHocCharge struct {
	Type        string  `json:"type" binding:"required"`
	Cost        float64 `json:"cost" binding:"required,gt=0"`
	Description string  `json:"description"`
}

// TripChargeInput is everything the aggregator needs for one trip
type TripChargeInput struct {
	StartMileage     float64
	EndMileage       float64
	FuelLevelStart   FuelLevel
	FuelLevelEnd     FuelLevel
	ScheduledEndDate time.Time
	ActualEndDate    time.Time
	NumberOfDays     int
	AdHocCharges     []AdHocCharge
}

// ChargeAdjustment modifies one breakdown item during dispute resolution
// or claim review. Included=false removes the item entirely.
type ChargeAdjustment struct {
	Category       ChargeCategory `json:"category,omitempty"`
	Label          string         `json:"label,omitempty"`
	AdjustedAmount float64        `json:"adjusted_amount"`
	Included       bool           `json:"included"`
	Reason         string         `json:"reason,omitempty"`
}

// ChargeValidation reports sanity-check results for a computed TripCharges.
// Errors invalidate the result; warnings only flag it for manual review.
type ChargeValidation struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// ChargeRecordStatus is the lifecycle state of a persisted charge record
type ChargeRecordStatus string

const (
	ChargeStatusPending  ChargeRecordStatus = "pending"
	ChargeStatusDisputed ChargeRecordStatus = "disputed"
	ChargeStatusCharged  ChargeRecordStatus = "charged"
	ChargeStatusWaived   ChargeRecordStatus = "waived"
	ChargeStatusAdjusted ChargeRecordStatus = "adjusted"
)

// TripChargeRecord is the persisted charge result for a booking. The
// dispute fields stay empty until the guest contests the record.
type TripChargeRecord struct {
	ID                uuid.UUID          `json:"id" db:"id"`
	BookingID         uuid.UUID          `json:"booking_id" db:"booking_id"`
	GuestID           uuid.UUID          `json:"guest_id" db:"guest_id"`
	Charges           TripCharges        `json:"charges" db:"charges"`
	TotalCharges      float64            `json:"total_charges" db:"total_charges"`
	ChargeStatus      ChargeRecordStatus `json:"charge_status" db:"charge_status"`
	Warnings          []string           `json:"warnings,omitempty" db:"warnings"`
	DisputeReason     *string            `json:"dispute_reason,omitempty" db:"dispute_reason"`
	DisputedAt        *time.Time         `json:"disputed_at,omitempty" db:"disputed_at"`
	DisputeResolvedAt *time.Time         `json:"dispute_resolved_at,omitempty" db:"dispute_resolved_at"`
	DisputeResolution *string            `json:"dispute_resolution,omitempty" db:"dispute_resolution"`
	RequiresApproval  bool               `json:"requires_approval" db:"requires_approval"`
	CreatedAt         time.Time          `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time          `json:"updated_at" db:"updated_at"`
}

// FinalizeTripRequest is the trip-end intake payload
type FinalizeTripRequest struct {
	EndMileage    float64       `json:"end_mileage" binding:"required,gte=0"`
	FuelLevelEnd  string        `json:"fuel_level_end" binding:"required,fuel_level"`
	ActualEndDate time.Time     `json:"actual_end_date" binding:"required"`
	AdHocCharges  []AdHocCharge `json:"ad_hoc_charges,omitempty"`
}
