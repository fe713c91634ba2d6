package serial

import (
	"github.com/google/uuid"

	"openlms/internal/domain"
)

func ErrInvalidFrequency(frequency string) error {
	return domain.NewEligibility("InvalidSerialFrequency", "%q is not a valid serial frequency", frequency)
}

func ErrSerialAlreadyActive(serialID uuid.UUID) error {
	return domain.NewStateError("SerialAlreadyActive", "serial %s is already active", serialID)
}

func ErrSerialAlreadyInactive(serialID uuid.UUID) error {
	return domain.NewStateError("SerialAlreadyInactive", "serial %s is already inactive", serialID)
}

func ErrSerialNotActive(serialID uuid.UUID) error {
	return domain.NewStateError("SerialNotActive", "serial %s is not active", serialID)
}
