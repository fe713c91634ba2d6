package patron

import (
	"github.com/google/uuid"

	"openlms/internal/domain"
)

func ErrEmailAlreadyExists(email string) error {
	return domain.NewConflict("PatronEmailAlreadyExists", "patron with email %s already exists", email)
}

func ErrPatronNotActive(id uuid.UUID) error {
	return domain.NewStateError("PatronNotActive", "patron %s is not active", id)
}

func ErrPatronAlreadyActive(id uuid.UUID) error {
	return domain.NewStateError("PatronAlreadyActive", "patron %s is already active", id)
}

func ErrPatronNotSuspended(id uuid.UUID) error {
	return domain.NewStateError("PatronNotSuspended", "patron %s is not suspended", id)
}

func ErrPatronNotArchived(id uuid.UUID) error {
	return domain.NewStateError("PatronNotArchived", "patron %s is not archived", id)
}

func ErrPatronHasActiveLoans(id uuid.UUID) error {
	return domain.NewEligibility("PatronHasActiveLoans", "patron %s has active loans", id)
}

func ErrPatronNotEligibleToRenew(id uuid.UUID) error {
	return domain.NewEligibility("PatronNotEligibleToRenew", "patron %s is not eligible to renew this copy", id)
}

func ErrPatronHoldLimitReached(id uuid.UUID) error {
	return domain.NewEligibility("PatronHoldLimitReached", "patron %s has reached the concurrent hold limit", id)
}

func ErrFineAlreadyPaid(patronID, loanID uuid.UUID) error {
	return domain.NewStateError("FineAlreadyPaid", "fine for patron %s on loan %s is already paid", patronID, loanID)
}

func ErrFineAlreadyWaived(patronID, loanID uuid.UUID) error {
	return domain.NewStateError("FineAlreadyWaived", "fine for patron %s on loan %s is already waived", patronID, loanID)
}
