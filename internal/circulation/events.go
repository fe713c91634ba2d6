package circulation

import "github.com/google/uuid"

// Event names published by the circulation aggregates.
const (
	EventLoanCreated  = "loan.created"
	EventLoanReturned = "loan.returned"
	EventLoanOverdue  = "loan.overdue"
	EventLoanDamaged  = "loan.damaged"
	EventLoanLost     = "loan.lost"

	EventHoldReady     = "hold.ready_for_pickup"
	EventHoldFulfilled = "hold.fulfilled"
	EventHoldExpired   = "hold.expired"
	EventHoldCancelled = "hold.cancelled"
)

type LoanCreatedEvent struct {
	LoanID   uuid.UUID
	CopyID   uuid.UUID
	PatronID uuid.UUID
	BranchID uuid.UUID
}

func (LoanCreatedEvent) EventName() string { return EventLoanCreated }

type LoanReturnedEvent struct {
	LoanID   uuid.UUID
	CopyID   uuid.UUID
	PatronID uuid.UUID
}

func (LoanReturnedEvent) EventName() string { return EventLoanReturned }

type LoanOverdueEvent struct {
	LoanID   uuid.UUID
	PatronID uuid.UUID
	DaysLate int
}

func (LoanOverdueEvent) EventName() string { return EventLoanOverdue }

type LoanDamagedEvent struct {
	LoanID   uuid.UUID
	CopyID   uuid.UUID
	PatronID uuid.UUID
}

func (LoanDamagedEvent) EventName() string { return EventLoanDamaged }

type LoanLostEvent struct {
	LoanID   uuid.UUID
	CopyID   uuid.UUID
	PatronID uuid.UUID
}

func (LoanLostEvent) EventName() string { return EventLoanLost }

type HoldReadyEvent struct {
	HoldID   uuid.UUID
	ItemID   uuid.UUID
	PatronID uuid.UUID
	CopyID   uuid.UUID
}

func (HoldReadyEvent) EventName() string { return EventHoldReady }

type HoldFulfilledEvent struct {
	HoldID   uuid.UUID
	PatronID uuid.UUID
	LoanID   uuid.UUID
}

func (HoldFulfilledEvent) EventName() string { return EventHoldFulfilled }

type HoldExpiredEvent struct {
	HoldID   uuid.UUID
	PatronID uuid.UUID
}

func (HoldExpiredEvent) EventName() string { return EventHoldExpired }

type HoldCancelledEvent struct {
	HoldID   uuid.UUID
	PatronID uuid.UUID
}

func (HoldCancelledEvent) EventName() string { return EventHoldCancelled }
