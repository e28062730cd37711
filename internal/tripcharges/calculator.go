package tripcharges

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/drivemate/rental-platform/pkg/config"
)

// Calculator computes post-trip charges from odometer, fuel, and timing
// data. All methods are pure functions over the injected rate table; the
// calculator holds no mutable state and is safe for concurrent use.
type Calculator struct {
	rates config.RatesConfig
}

// NewCalculator creates a calculator bound to a rate table
func NewCalculator(rates config.RatesConfig) *Calculator {
	return &Calculator{rates: rates}
}

// Rates returns the rate table this calculator was built with
func (c *Calculator) Rates() config.RatesConfig {
	return c.rates
}

// CalculateMileageCharge derives the mileage overage charge. An odometer
// rollback (end < start) reads as zero miles used, never a negative delta.
func (c *Calculator) CalculateMileageCharge(startMileage, endMileage float64, numberOfDays int) MileageCharge {
	used := math.Max(0, endMileage-startMileage)
	included := float64(numberOfDays) * c.rates.DailyIncludedMiles
	overage := math.Max(0, used-included)

	return MileageCharge{
		Used:     used,
		Included: included,
		Overage:  overage,
		Charge:   round2(overage * c.rates.MileageOverageRate),
		Rate:     c.rates.MileageOverageRate,
	}
}

// CalculateFuelCharge derives the refill charge from quantized fuel levels.
// Deficit is billed per quarter tank, rounded up; a guest who returns the
// car fuller than they got it owes nothing and earns no rebate.
func (c *Calculator) CalculateFuelCharge(startLevel, endLevel FuelLevel) FuelCharge {
	start := startLevel.TankFraction()
	end := endLevel.TankFraction()

	diff := math.Max(0, start-end)
	quarters := math.Ceil(diff * 4)

	return FuelCharge{
		StartLevel:      startLevel,
		EndLevel:        endLevel,
		LevelDifference: diff,
		Charge:          round2(quarters * c.rates.FuelQuarterRate),
		TankPercentage:  end * 100,
	}
}

// CalculateLateReturnCharge derives the late-return charge. A grace window
// is subtracted before any hour is billable; each day, full or partial, is
// capped at the daily rate.
func (c *Calculator) CalculateLateReturnCharge(scheduledEnd, actualEnd time.Time) LateReturnCharge {
	delta := actualEnd.Sub(scheduledEnd)
	grace := time.Duration(c.rates.LateGraceMinutes) * time.Minute

	chargeable := delta - grace
	if chargeable <= 0 {
		return LateReturnCharge{
			HoursLate:          0,
			Charge:             0,
			GracePeriodApplied: delta > 0,
		}
	}

	hoursLate := int(math.Ceil(chargeable.Hours()))
	daysLate := hoursLate / 24
	remainingHours := hoursLate % 24

	charge := float64(daysLate)*c.rates.LateDailyCap +
		math.Min(float64(remainingHours)*c.rates.LateHourlyRate, c.rates.LateDailyCap)

	return LateReturnCharge{
		HoursLate:          hoursLate,
		Charge:             round2(charge),
		GracePeriodApplied: true,
	}
}

// ResolveDamageCharge maps reported damage to a charge. A custom amount
// (claims context) is used verbatim and always requires inspection
// sign-off; otherwise the severity table applies, defaulting to moderate.
func (c *Calculator) ResolveDamageCharge(reported bool, severity DamageSeverity, customAmount *float64) DamageCharge {
	if !reported {
		return DamageCharge{Reported: false, Severity: DamageNone}
	}

	if customAmount != nil {
		return DamageCharge{
			Reported:           true,
			Severity:           severity,
			Charge:             round2(*customAmount),
			RequiresInspection: true,
		}
	}

	var charge float64
	switch severity {
	case DamageMinor:
		charge = c.rates.DamageMinor
	case DamageMajor:
		charge = c.rates.DamageMajor
	case DamageModerate:
		charge = c.rates.DamageModerate
	default:
		severity = DamageModerate
		charge = c.rates.DamageModerate
	}

	return DamageCharge{Reported: true, Severity: severity, Charge: charge}
}

// ResolveCleaningCharge maps a required cleaning to its tier charge
func (c *Calculator) ResolveCleaningCharge(required bool, cleaningType CleaningType) CleaningCharge {
	if !required {
		return CleaningCharge{Required: false}
	}

	var charge float64
	switch cleaningType {
	case CleaningDeep:
		charge = c.rates.CleaningDeep
	case CleaningBiohazard:
		charge = c.rates.CleaningBiohazard
	default:
		cleaningType = CleaningStandard
		charge = c.rates.CleaningStandard
	}

	return CleaningCharge{Required: true, Type: cleaningType, Charge: charge}
}

// CalculateTripCharges composes the calculators into a single itemized
// result: per-category sub-results, breakdown lines for every non-zero
// charge, ad-hoc charges classified by category, then subtotal, tax, total.
func (c *Calculator) CalculateTripCharges(input TripChargeInput) TripCharges {
	tc := TripCharges{}

	mileage := c.CalculateMileageCharge(input.StartMileage, input.EndMileage, input.NumberOfDays)
	tc.Mileage = &mileage
	if mileage.Charge > 0 {
		tc.Breakdown = append(tc.Breakdown, ChargeItem{
			Category: CategoryMileage,
			Label:    "Mileage overage",
			Amount:   mileage.Charge,
			Details: fmt.Sprintf("%.0f mi driven, %.0f mi included, %.0f mi over at $%.2f/mi",
				mileage.Used, mileage.Included, mileage.Overage, mileage.Rate),
			Quantity: mileage.Overage,
			Rate:     mileage.Rate,
		})
	}

	fuel := c.CalculateFuelCharge(input.FuelLevelStart, input.FuelLevelEnd)
	tc.Fuel = &fuel
	if fuel.Charge > 0 {
		quarters := math.Ceil(fuel.LevelDifference * 4)
		tc.Breakdown = append(tc.Breakdown, ChargeItem{
			Category: CategoryFuel,
			Label:    "Fuel refill",
			Amount:   fuel.Charge,
			Details: fmt.Sprintf("returned at %s from %s, %.0f quarter tank(s) at $%.2f",
				fuel.EndLevel, fuel.StartLevel, quarters, c.rates.FuelQuarterRate),
			Quantity: quarters,
			Rate:     c.rates.FuelQuarterRate,
		})
	}

	late := c.CalculateLateReturnCharge(input.ScheduledEndDate, input.ActualEndDate)
	tc.Late = &late
	if late.Charge > 0 {
		tc.Breakdown = append(tc.Breakdown, ChargeItem{
			Category: CategoryLate,
			Label:    "Late return",
			Amount:   late.Charge,
			Details: fmt.Sprintf("%d hour(s) late after %d-minute grace, $%.2f/hr capped at $%.2f/day",
				late.HoursLate, c.rates.LateGraceMinutes, c.rates.LateHourlyRate, c.rates.LateDailyCap),
			Quantity: float64(late.HoursLate),
			Rate:     c.rates.LateHourlyRate,
		})
	}

	for _, adHoc := range input.AdHocCharges {
		if adHoc.Cost <= 0 {
			continue
		}
		category := ParseChargeCategory(adHoc.Type)
		label := adHoc.Type
		if label == "" {
			label = string(category)
		}
		tc.Breakdown = append(tc.Breakdown, ChargeItem{
			Category: category,
			Label:    label,
			Amount:   round2(adHoc.Cost),
			Details:  adHoc.Description,
		})
	}

	tc.Subtotal = round2(sumBreakdown(tc.Breakdown))
	tc.Taxes = round2(tc.Subtotal * c.rates.TaxRate)
	tc.Total = round2(tc.Subtotal + tc.Taxes)

	return tc
}

// ValidateCharges sanity-checks a computed result. Errors mean the result
// must not be billed as-is; warnings flag it for manual review and never
// block the caller.
func (c *Calculator) ValidateCharges(tc TripCharges) ChargeValidation {
	v := ChargeValidation{Valid: true}

	for _, item := range tc.Breakdown {
		if item.Amount < 0 {
			v.Valid = false
			v.Errors = append(v.Errors, fmt.Sprintf("Invalid negative charge: %s", item.Label))
		}
	}
	if tc.Total < 0 {
		v.Valid = false
		v.Errors = append(v.Errors, "Invalid negative total")
	}

	if tc.Mileage != nil && tc.Mileage.Charge > 1000 {
		v.Warnings = append(v.Warnings, fmt.Sprintf("Mileage charge $%.2f exceeds $1000, manual review recommended", tc.Mileage.Charge))
	}
	if tc.Fuel != nil && tc.Fuel.Charge > c.rates.FullTankRate() {
		v.Warnings = append(v.Warnings, fmt.Sprintf("Fuel charge $%.2f exceeds full tank cost, manual review recommended", tc.Fuel.Charge))
	}
	if tc.Late != nil && tc.Late.HoursLate > 72 {
		v.Warnings = append(v.Warnings, fmt.Sprintf("Late return of %d hours exceeds 72, manual review recommended", tc.Late.HoursLate))
	}
	if tc.Total > 5000 {
		v.Warnings = append(v.Warnings, fmt.Sprintf("Total $%.2f exceeds $5000, manual review recommended", tc.Total))
	}

	return v
}

// ApplyAdjustments produces a new TripCharges from the original breakdown
// and an adjustment list. Matched items with Included=false are dropped;
// matched items otherwise take the adjusted amount; unmatched items keep
// their original amount. The original value is never mutated.
func (c *Calculator) ApplyAdjustments(original TripCharges, adjustments []ChargeAdjustment) TripCharges {
	adjusted := TripCharges{
		Mileage:  original.Mileage,
		Fuel:     original.Fuel,
		Late:     original.Late,
		Damage:   original.Damage,
		Cleaning: original.Cleaning,
	}

	for _, item := range original.Breakdown {
		adj := matchAdjustment(item, adjustments)
		if adj == nil {
			adjusted.Breakdown = append(adjusted.Breakdown, item)
			continue
		}
		if !adj.Included {
			continue
		}
		replaced := item
		replaced.Amount = round2(adj.AdjustedAmount)
		if adj.Reason != "" {
			replaced.Details = adj.Reason
		}
		adjusted.Breakdown = append(adjusted.Breakdown, replaced)
	}

	adjusted.Subtotal = round2(sumBreakdown(adjusted.Breakdown))
	adjusted.Taxes = round2(adjusted.Subtotal * c.rates.TaxRate)
	adjusted.Total = round2(adjusted.Subtotal + adjusted.Taxes)

	return adjusted
}

func matchAdjustment(item ChargeItem, adjustments []ChargeAdjustment) *ChargeAdjustment {
	for i := range adjustments {
		adj := &adjustments[i]
		if adj.Category != "" && adj.Category == item.Category {
			return adj
		}
		if adj.Label != "" && strings.Contains(strings.ToLower(item.Label), strings.ToLower(adj.Label)) {
			return adj
		}
	}
	return nil
}

func sumBreakdown(items []ChargeItem) float64 {
	var sum float64
	for _, item := range items {
		sum += item.Amount
	}
	return sum
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
