package acquisition

import (
	"github.com/google/uuid"

	"openlms/internal/domain"
)

func ErrOrderNotPending(orderID uuid.UUID) error {
	return domain.NewStateError("AcquisitionOrderNotPending", "acquisition order %s is not pending", orderID)
}

func ErrOrderNotSubmitted(lineID, orderID uuid.UUID) error {
	return domain.NewStateError("AcquisitionOrderNotSubmitted",
		"cannot receive line %s: acquisition order %s is not submitted", lineID, orderID)
}

func ErrOrderHasNoLines(orderID uuid.UUID) error {
	return domain.NewEligibility("AcquisitionOrderHasNoLines", "acquisition order %s has no lines", orderID)
}

func ErrOrderLineAlreadyReceived(lineID, orderID uuid.UUID) error {
	return domain.NewStateError("AcquisitionOrderLineAlreadyReceived",
		"line %s of acquisition order %s has already been received", lineID, orderID)
}

func ErrVendorAlreadyActive(vendorID uuid.UUID) error {
	return domain.NewStateError("VendorAlreadyActive", "vendor %s is already active", vendorID)
}

func ErrVendorAlreadyInactive(vendorID uuid.UUID) error {
	return domain.NewStateError("VendorAlreadyInactive", "vendor %s is already inactive", vendorID)
}
