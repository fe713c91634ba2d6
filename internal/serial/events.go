package serial

import "github.com/google/uuid"

// Event names published by the serial aggregate.
const (
	EventSerialSubscribed   = "serial.subscribed"
	EventSerialActivated    = "serial.activated"
	EventSerialDeactivated  = "serial.deactivated"
	EventSerialIssueArrived = "serial_issue.received"
)

type SerialSubscribedEvent struct {
	SerialID  uuid.UUID
	ItemID    uuid.UUID
	ISSN      string
	Frequency string
}

func (SerialSubscribedEvent) EventName() string { return EventSerialSubscribed }

type SerialActivatedEvent struct {
	SerialID uuid.UUID
	ItemID   uuid.UUID
}

func (SerialActivatedEvent) EventName() string { return EventSerialActivated }

type SerialDeactivatedEvent struct {
	SerialID uuid.UUID
	ItemID   uuid.UUID
}

func (SerialDeactivatedEvent) EventName() string { return EventSerialDeactivated }

type SerialIssueReceivedEvent struct {
	IssueID  uuid.UUID
	SerialID uuid.UUID
	ItemID   uuid.UUID
	CopyID   *uuid.UUID
}

func (SerialIssueReceivedEvent) EventName() string { return EventSerialIssueArrived }
