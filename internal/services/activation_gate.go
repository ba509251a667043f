package services

import "onboarding-service/internal/models"

// IsUsable is the single authorization predicate applied wherever a record is
// looked up and then acted on. is_active is the externally checked flag;
// is_paid is bookkeeping set by the same confirmation event and is not
// re-checked here. Every lookup-then-authorize path must call this predicate
// instead of re-deriving its own condition.
func IsUsable(account *models.Account) bool {
	return account != nil && account.IsActive
}
