package acquisition

import (
	"time"

	"github.com/google/uuid"
)

// Event names published by the acquisition aggregates.
const (
	EventOrderCreated      = "acquisition_order.created"
	EventOrderSubmitted    = "acquisition_order.submitted"
	EventOrderReceived     = "acquisition_order.received"
	EventOrderCancelled    = "acquisition_order.cancelled"
	EventOrderLineReceived = "acquisition_order.line_received"
	EventVendorRegistered  = "vendor.registered"
)

type OrderCreatedEvent struct {
	OrderID  uuid.UUID
	VendorID uuid.UUID
	StaffID  uuid.UUID
}

func (OrderCreatedEvent) EventName() string { return EventOrderCreated }

type OrderSubmittedEvent struct {
	OrderID  uuid.UUID
	VendorID uuid.UUID
}

func (OrderSubmittedEvent) EventName() string { return EventOrderSubmitted }

// ReceivedItemLine pairs an item with the quantity that arrived for it.
type ReceivedItemLine struct {
	ItemID   uuid.UUID
	Quantity int
}

type OrderReceivedEvent struct {
	OrderID         uuid.UUID
	VendorID        uuid.UUID
	StaffID         uuid.UUID
	ItemLines       []ReceivedItemLine
	AcquisitionDate time.Time
}

func (OrderReceivedEvent) EventName() string { return EventOrderReceived }

type OrderCancelledEvent struct {
	OrderID uuid.UUID
}

func (OrderCancelledEvent) EventName() string { return EventOrderCancelled }

type OrderLineReceivedEvent struct {
	OrderID          uuid.UUID
	LineID           uuid.UUID
	Quantity         int
	ReceivedQuantity int
}

func (OrderLineReceivedEvent) EventName() string { return EventOrderLineReceived }

type VendorRegisteredEvent struct {
	VendorID uuid.UUID
	StaffID  uuid.UUID
}

func (VendorRegisteredEvent) EventName() string { return EventVendorRegistered }
