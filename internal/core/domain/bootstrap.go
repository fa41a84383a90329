package domain

import "time"

// SetupState is the first-admin setup state reported to clients.
type SetupState string

const (
	SetupEligible   SetupState = "eligible"
	SetupIneligible SetupState = "ineligible"
	SetupComplete   SetupState = "complete"
)

// BootstrapClaim records which identity became the first admin. At most one
// claim exists for the lifetime of the store.
type BootstrapClaim struct {
	UserID    string
	ClaimedAt time.Time
}

// SetupStateFor derives the setup state from the population and the claim.
func SetupStateFor(totalUsers int64, claim *BootstrapClaim) SetupState {
	switch {
	case claim != nil:
		return SetupComplete
	case totalUsers == 0:
		return SetupEligible
	default:
		return SetupIneligible
	}
}
