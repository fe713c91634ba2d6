package patron

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	EventPatronRegistered   = "patron.registered"
	EventPatronEmailChanged = "patron.email_changed"
	EventPatronSuspended    = "patron.suspended"
	EventPatronReinstated   = "patron.reinstated"
	EventFineCreated        = "fine.created"
	EventFinePaid           = "fine.paid"
	EventFineWaived         = "fine.waived"
)

type PatronRegisteredEvent struct {
	PatronID uuid.UUID
	Email    string
}

func (e PatronRegisteredEvent) EventName() string { return EventPatronRegistered }

type PatronEmailChangedEvent struct {
	PatronID uuid.UUID
	OldEmail string
	NewEmail string
}

func (e PatronEmailChangedEvent) EventName() string { return EventPatronEmailChanged }

type PatronSuspendedEvent struct {
	PatronID uuid.UUID
	Email    string
}

func (e PatronSuspendedEvent) EventName() string { return EventPatronSuspended }

type PatronReinstatedEvent struct {
	PatronID uuid.UUID
	Email    string
}

func (e PatronReinstatedEvent) EventName() string { return EventPatronReinstated }

type FineCreatedEvent struct {
	FineID   uuid.UUID
	PatronID uuid.UUID
	LoanID   uuid.UUID
	Amount   decimal.Decimal
}

func (e FineCreatedEvent) EventName() string { return EventFineCreated }

type FinePaidEvent struct {
	FineID   uuid.UUID
	PatronID uuid.UUID
	LoanID   uuid.UUID
	Amount   decimal.Decimal
}

func (e FinePaidEvent) EventName() string { return EventFinePaid }

type FineWaivedEvent struct {
	FineID   uuid.UUID
	PatronID uuid.UUID
	LoanID   uuid.UUID
	Amount   decimal.Decimal
}

func (e FineWaivedEvent) EventName() string { return EventFineWaived }
