package models

import (
	"time"

	"github.com/google/uuid"
)

// BookingStatus represents booking lifecycle status
type BookingStatus string

const (
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusActive    BookingStatus = "active"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// BookingPaymentStatus represents the post-trip payment state of a booking
type BookingPaymentStatus string

const (
	PaymentStatusPending        BookingPaymentStatus = "pending"
	PaymentStatusPaid           BookingPaymentStatus = "paid"
	PaymentStatusChargesWaived  BookingPaymentStatus = "charges_waived"
	PaymentStatusChargesFailed  BookingPaymentStatus = "charges_failed"
	PaymentStatusChargesPartial BookingPaymentStatus = "charges_partial"
)

// Booking represents a rental booking between a guest and a host's vehicle
type Booking struct {
	ID               uuid.UUID            `json:"id" db:"id"`
	VehicleID        uuid.UUID            `json:"vehicle_id" db:"vehicle_id"`
	GuestID          uuid.UUID            `json:"guest_id" db:"guest_id"`
	HostID           uuid.UUID            `json:"host_id" db:"host_id"`
	StartDate        time.Time            `json:"start_date" db:"start_date"`
	ScheduledEndDate time.Time            `json:"scheduled_end_date" db:"scheduled_end_date"`
	ActualEndDate    *time.Time           `json:"actual_end_date,omitempty" db:"actual_end_date"`
	NumberOfDays     int                  `json:"number_of_days" db:"number_of_days"`
	StartMileage     float64              `json:"start_mileage" db:"start_mileage"`
	EndMileage       *float64             `json:"end_mileage,omitempty" db:"end_mileage"`
	FuelLevelStart   string               `json:"fuel_level_start" db:"fuel_level_start"`
	FuelLevelEnd     *string              `json:"fuel_level_end,omitempty" db:"fuel_level_end"`
	DepositHeld      float64              `json:"deposit_held" db:"deposit_held"`
	Status           BookingStatus        `json:"status" db:"status"`
	PaymentStatus    BookingPaymentStatus `json:"payment_status" db:"payment_status"`
	CreatedAt        time.Time            `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time            `json:"updated_at" db:"updated_at"`
}

// InsuranceStatus represents the state of an insurance policy on file
type InsuranceStatus string

const (
	InsuranceActive   InsuranceStatus = "ACTIVE"
	InsuranceLapsed   InsuranceStatus = "LAPSED"
	InsurancePending  InsuranceStatus = "PENDING"
	InsuranceDeclined InsuranceStatus = "DECLINED"
)

// EarningsTier represents a host's earnings/insurance tier
type EarningsTier string

const (
	TierPremium  EarningsTier = "PREMIUM"
	TierStandard EarningsTier = "STANDARD"
	TierBasic    EarningsTier = "BASIC"
)

// SuspensionLevel represents how restricted a profile is
type SuspensionLevel string

const (
	SuspensionSoft   SuspensionLevel = "SOFT"
	SuspensionHard   SuspensionLevel = "HARD"
	SuspensionBanned SuspensionLevel = "BANNED"
)

// HostProfile represents a host's fleet-side account record
type HostProfile struct {
	UserID                    uuid.UUID        `json:"user_id" db:"user_id"`
	EarningsTier              EarningsTier     `json:"earnings_tier" db:"earnings_tier"`
	CommercialInsuranceStatus InsuranceStatus  `json:"commercial_insurance_status" db:"commercial_insurance_status"`
	P2PInsuranceStatus        InsuranceStatus  `json:"p2p_insurance_status" db:"p2p_insurance_status"`
	StripeAccountID           *string          `json:"stripe_account_id,omitempty" db:"stripe_account_id"`
	SuspensionLevel           *SuspensionLevel `json:"suspension_level,omitempty" db:"suspension_level"`
	SuspendedAt               *time.Time       `json:"suspended_at,omitempty" db:"suspended_at"`
	SuspendedReason           *string          `json:"suspended_reason,omitempty" db:"suspended_reason"`
	SuspensionExpiresAt       *time.Time       `json:"suspension_expires_at,omitempty" db:"suspension_expires_at"`
	CreatedAt                 time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt                 time.Time        `json:"updated_at" db:"updated_at"`
}

// GuestProfile represents a guest's renter-side account record
type GuestProfile struct {
	UserID                    uuid.UUID        `json:"user_id" db:"user_id"`
	PersonalInsuranceVerified bool             `json:"personal_insurance_verified" db:"personal_insurance_verified"`
	PersonalInsuranceExpiry   *time.Time       `json:"personal_insurance_expiry,omitempty" db:"personal_insurance_expiry"`
	StripeCustomerID          *string          `json:"stripe_customer_id,omitempty" db:"stripe_customer_id"`
	DefaultPaymentMethodID    *string          `json:"default_payment_method_id,omitempty" db:"default_payment_method_id"`
	SuspensionLevel           *SuspensionLevel `json:"suspension_level,omitempty" db:"suspension_level"`
	SuspendedAt               *time.Time       `json:"suspended_at,omitempty" db:"suspended_at"`
	SuspendedReason           *string          `json:"suspended_reason,omitempty" db:"suspended_reason"`
	SuspensionExpiresAt       *time.Time       `json:"suspension_expires_at,omitempty" db:"suspension_expires_at"`
	CreatedAt                 time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt                 time.Time        `json:"updated_at" db:"updated_at"`
}

// AccountHold represents a hold placed on a guest account pending claim recovery
type AccountHold struct {
	ID         uuid.UUID  `json:"id" db:"id"`
	GuestID    uuid.UUID  `json:"guest_id" db:"guest_id"`
	ClaimID    uuid.UUID  `json:"claim_id" db:"claim_id"`
	Reason     string     `json:"reason" db:"reason"`
	Active     bool       `json:"active" db:"active"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
	ReleasedAt *time.Time `json:"released_at,omitempty" db:"released_at"`
}
