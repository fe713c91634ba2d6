package organization

import (
	"github.com/google/uuid"

	"openlms/internal/domain"
)

func ErrBranchNameAlreadyExists(name string) error {
	return domain.NewConflict("BranchNameAlreadyExists", "branch with name %q already exists", name)
}

func ErrBranchAlreadyClosed(id uuid.UUID) error {
	return domain.NewStateError("BranchAlreadyClosed", "branch %s is already closed", id)
}

func ErrStaffEmailAlreadyExists(email string) error {
	return domain.NewConflict("StaffEmailAlreadyExists", "staff with email %s already exists", email)
}

func ErrStaffNotManager(id uuid.UUID) error {
	return domain.NewEligibility("StaffNotManager", "staff %s cannot be assigned as branch manager", id)
}

func ErrStaffNotActive(id uuid.UUID) error {
	return domain.NewStateError("StaffNotActive", "staff %s is not active", id)
}

func ErrInvalidStaffRole(role string) error {
	return domain.NewEligibility("InvalidStaffRole", "unknown staff role: %s", role)
}
