package claims

import (
	"math"
	"time"

	"github.com/drivemate/rental-platform/pkg/models"
)

// ResolveInsuranceHierarchy determines who pays first for a claim and how
// much of the deductible falls to the guest after the deposit is applied.
//
// Host insurance is primary only when the tier and the matching policy line
// up: PREMIUM hosts with an active commercial policy, STANDARD hosts with an
// active peer-to-peer policy. Everything else falls back to the platform
// policy. A PREMIUM host whose commercial policy has lapsed does NOT fall
// through to their P2P policy; tier and policy must match.
//
// The guest's personal insurance is secondary only when it is verified and
// unexpired at resolution time.
func ResolveInsuranceHierarchy(host *models.HostProfile, guest *models.GuestProfile, policyDeductible, hostDeductible, depositHeld float64, now time.Time) InsuranceHierarchy {
	var payer PayerType
	var deductible float64

	switch {
	case host.EarningsTier == models.TierPremium && host.CommercialInsuranceStatus == models.InsuranceActive:
		payer = PayerHostCommercial
		deductible = hostDeductible
	case host.EarningsTier == models.TierStandard && host.P2PInsuranceStatus == models.InsuranceActive:
		payer = PayerHostP2P
		deductible = hostDeductible
	default:
		payer = PayerPlatform
		deductible = policyDeductible
	}

	guestSecondary := guest.PersonalInsuranceVerified &&
		guest.PersonalInsuranceExpiry != nil &&
		guest.PersonalInsuranceExpiry.After(now)

	depositApplied := math.Min(depositHeld, deductible)

	return InsuranceHierarchy{
		PrimaryPayer:        payer,
		Deductible:          deductible,
		GuestSecondary:      guestSecondary,
		DepositApplied:      depositApplied,
		GuestResponsibility: math.Max(0, deductible-depositHeld),
	}
}
