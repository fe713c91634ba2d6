package catalog

import (
	"github.com/google/uuid"

	"openlms/internal/domain"
)

func ErrInvalidFormat(format string) error {
	return domain.NewEligibility("InvalidItemFormat", "unknown item format: %s", format)
}

func ErrCopyNotAvailable(id uuid.UUID) error {
	return domain.NewStateError("CopyNotAvailable", "copy %s is not available", id)
}

func ErrCopyNotCheckedOut(id uuid.UUID) error {
	return domain.NewStateError("CopyNotCheckedOut", "copy %s is not checked out", id)
}

func ErrCopyAlreadyLost(id uuid.UUID) error {
	return domain.NewStateError("CopyAlreadyLost", "copy %s is already marked as lost", id)
}

func ErrCopyAlreadyDamaged(id uuid.UUID) error {
	return domain.NewStateError("CopyAlreadyDamaged", "copy %s is already marked as damaged", id)
}
