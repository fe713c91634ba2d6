// Package circulation manages loans and holds, the two aggregates that move
// physical copies between patrons and shelves. Every transition mutates the
// affected copy together with the loan or hold so the pair is saved in one
// write.
package circulation

import (
	"context"
	"time"

	"github.com/google/uuid"

	"openlms/internal/catalog"
	"openlms/internal/domain"
	"openlms/internal/eventbus"
	"openlms/internal/patron"
)

// Hold lifecycle statuses.
const (
	HoldStatusPending   = "pending"
	HoldStatusReady     = "ready"
	HoldStatusFulfilled = "fulfilled"
	HoldStatusCancelled = "cancelled"
	HoldStatusExpired   = "expired"
)

// Loan is a copy checked out to a patron. DueDate is set at checkout from the
// loan policy and recomputed on renewal.
type Loan struct {
	ID         uuid.UUID  `json:"id" db:"id"`
	CopyID     uuid.UUID  `json:"copy_id" db:"copy_id"`
	PatronID   uuid.UUID  `json:"patron_id" db:"patron_id"`
	BranchID   uuid.UUID  `json:"branch_id" db:"branch_id"`
	StaffOutID uuid.UUID  `json:"staff_out_id" db:"staff_out_id"`
	StaffInID  *uuid.UUID `json:"staff_in_id" db:"staff_in_id"`
	LoanDate   time.Time  `json:"loan_date" db:"loan_date"`
	DueDate    time.Time  `json:"due_date" db:"due_date"`
	ReturnDate *time.Time `json:"return_date" db:"return_date"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at" db:"updated_at"`
}

// NewLoan checks the patron's borrowing eligibility, takes the copy out of
// circulation and computes the due date. The copy is mutated and must be
// saved with the loan.
func NewLoan(
	ctx context.Context,
	p *patron.Patron,
	copy *catalog.Copy,
	staffOutID, branchID uuid.UUID,
	loanDate time.Time,
	barring *patron.BarringService,
	policy *LoanPolicyService,
) (*Loan, error) {
	if err := p.AvailableToBorrow(ctx, barring); err != nil {
		return nil, err
	}
	if err := copy.MarkAsCheckedOut(); err != nil {
		return nil, err
	}

	loanDate = domain.DateOnly(loanDate)
	return &Loan{
		CopyID:     copy.ID,
		PatronID:   p.ID,
		BranchID:   branchID,
		StaffOutID: staffOutID,
		LoanDate:   loanDate,
		DueDate:    policy.CalculateDueDate(loanDate, p, copy),
	}, nil
}

// MarkAsReturned puts the copy back on the shelf and closes the loan. A late
// return additionally reports how many days overdue it was.
func (l *Loan) MarkAsReturned(copy *catalog.Copy, returnDate time.Time, staffInID uuid.UUID) ([]eventbus.Event, error) {
	if err := copy.MarkAsAvailable(); err != nil {
		return nil, err
	}
	if l.ReturnDate != nil {
		return nil, ErrLoanAlreadyReturned(l.ID, *l.ReturnDate)
	}

	returned := domain.DateOnly(returnDate)
	l.ReturnDate = &returned
	l.StaffInID = &staffInID

	events := []eventbus.Event{LoanReturnedEvent{
		LoanID:   l.ID,
		CopyID:   l.CopyID,
		PatronID: l.PatronID,
	}}
	if returned.After(l.DueDate) {
		events = append(events, LoanOverdueEvent{
			LoanID:   l.ID,
			PatronID: l.PatronID,
			DaysLate: domain.DaysBetween(l.DueDate, returned),
		})
	}
	return events, nil
}

// MarkDamaged closes the loan with the copy in the damaged state. The loan
// must still be open and not overdue.
func (l *Loan) MarkDamaged(copy *catalog.Copy, today time.Time) ([]eventbus.Event, error) {
	if err := copy.MarkAsDamaged(); err != nil {
		return nil, err
	}
	if l.ReturnDate != nil {
		return nil, ErrLoanAlreadyReturned(l.ID, *l.ReturnDate)
	}
	today = domain.DateOnly(today)
	if l.DueDate.Before(today) {
		return nil, ErrLoanOverdue(l.ID, domain.DaysBetween(l.DueDate, today))
	}

	l.ReturnDate = &today
	return []eventbus.Event{LoanDamagedEvent{
		LoanID:   l.ID,
		CopyID:   l.CopyID,
		PatronID: l.PatronID,
	}}, nil
}

// MarkLost closes the loan with the copy in the lost state. The loan must
// still be open and not overdue.
func (l *Loan) MarkLost(copy *catalog.Copy, today time.Time) ([]eventbus.Event, error) {
	if err := copy.MarkAsLost(); err != nil {
		return nil, err
	}
	if l.ReturnDate != nil {
		return nil, ErrLoanAlreadyReturned(l.ID, *l.ReturnDate)
	}
	today = domain.DateOnly(today)
	if l.DueDate.Before(today) {
		return nil, ErrLoanOverdue(l.ID, domain.DaysBetween(l.DueDate, today))
	}

	l.ReturnDate = &today
	return []eventbus.Event{LoanLostEvent{
		LoanID:   l.ID,
		CopyID:   l.CopyID,
		PatronID: l.PatronID,
	}}, nil
}

// Renew extends an open, not-yet-overdue loan. The new due date is computed
// from today, not from the original loan date.
func (l *Loan) Renew(
	ctx context.Context,
	p *patron.Patron,
	copy *catalog.Copy,
	today time.Time,
	barring *patron.BarringService,
	policy *LoanPolicyService,
) error {
	if err := p.AvailableToRenew(ctx, l.CopyID, barring); err != nil {
		return err
	}
	if l.ReturnDate != nil {
		return ErrLoanAlreadyReturned(l.ID, *l.ReturnDate)
	}
	today = domain.DateOnly(today)
	if l.DueDate.Before(today) {
		return ErrLoanOverdue(l.ID, domain.DaysBetween(l.DueDate, today))
	}

	l.DueDate = policy.CalculateDueDate(today, p, copy)
	return nil
}

// Hold is a patron's request for an item. A hold may name a specific copy at
// request time; otherwise the copy is attached when the hold becomes ready.
type Hold struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	ItemID      uuid.UUID  `json:"item_id" db:"item_id"`
	PatronID    uuid.UUID  `json:"patron_id" db:"patron_id"`
	CopyID      *uuid.UUID `json:"copy_id" db:"copy_id"`
	LoanID      *uuid.UUID `json:"loan_id" db:"loan_id"`
	RequestDate time.Time  `json:"request_date" db:"request_date"`
	ExpiryDate  time.Time  `json:"expiry_date" db:"expiry_date"`
	Status      string     `json:"status" db:"status"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

// NewHold checks the patron's holding eligibility and opens a pending hold on
// the item.
func NewHold(
	ctx context.Context,
	p *patron.Patron,
	itemID uuid.UUID,
	copyID *uuid.UUID,
	requestDate time.Time,
	holding *patron.HoldingService,
	policy *HoldPolicyService,
) (*Hold, error) {
	if err := p.AvailableToPlaceHold(ctx, holding); err != nil {
		return nil, err
	}

	requestDate = domain.DateOnly(requestDate)
	return &Hold{
		ItemID:      itemID,
		PatronID:    p.ID,
		CopyID:      copyID,
		RequestDate: requestDate,
		ExpiryDate:  policy.CalculateExpiryDate(requestDate),
		Status:      HoldStatusPending,
	}, nil
}

// ReadyForPickup attaches a concrete copy to a pending hold and flags it for
// pickup. The copy stays on the shelf until the patron collects it.
func (h *Hold) ReadyForPickup(copy *catalog.Copy) ([]eventbus.Event, error) {
	if h.Status != HoldStatusPending {
		return nil, ErrHoldNotPending(h.ID, h.Status)
	}
	h.Status = HoldStatusReady
	h.CopyID = &copy.ID
	return []eventbus.Event{HoldReadyEvent{
		HoldID:   h.ID,
		ItemID:   h.ItemID,
		PatronID: h.PatronID,
		CopyID:   copy.ID,
	}}, nil
}

// Fulfill closes the hold against the loan created at pickup.
func (h *Hold) Fulfill(copy *catalog.Copy, loan *Loan) ([]eventbus.Event, error) {
	if h.Status != HoldStatusPending && h.Status != HoldStatusReady {
		return nil, ErrHoldNotPending(h.ID, h.Status)
	}
	h.Status = HoldStatusFulfilled
	h.CopyID = &copy.ID
	h.LoanID = &loan.ID
	return []eventbus.Event{HoldFulfilledEvent{
		HoldID:   h.ID,
		PatronID: h.PatronID,
		LoanID:   loan.ID,
	}}, nil
}

// Expire lapses a pending hold that was never picked up.
func (h *Hold) Expire() ([]eventbus.Event, error) {
	if h.Status != HoldStatusPending {
		return nil, ErrHoldNotPending(h.ID, h.Status)
	}
	h.Status = HoldStatusExpired
	return []eventbus.Event{HoldExpiredEvent{HoldID: h.ID, PatronID: h.PatronID}}, nil
}

// Cancel withdraws a pending hold at the patron's request.
func (h *Hold) Cancel() ([]eventbus.Event, error) {
	if h.Status != HoldStatusPending {
		return nil, ErrHoldNotPending(h.ID, h.Status)
	}
	h.Status = HoldStatusCancelled
	return []eventbus.Event{HoldCancelledEvent{HoldID: h.ID, PatronID: h.PatronID}}, nil
}
