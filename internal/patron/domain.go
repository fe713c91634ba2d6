// Package patron manages library members and the fines levied against them.
// Borrowing, renewal, holding and reinstatement eligibility are computed by
// guard services over sibling aggregates; fine amounts come from the fine
// policy.
package patron

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"openlms/internal/domain"
	"openlms/internal/eventbus"
)

// Patron lifecycle statuses.
const (
	StatusRegistered = "registered"
	StatusActive     = "active"
	StatusSuspended  = "suspended"
	StatusArchived   = "archived"
)

// Fine lifecycle statuses. Fines are persisted unpaid from the start; there
// is no separate pre-issue state.
const (
	FineStatusUnpaid = "unpaid"
	FineStatusPaid   = "paid"
	FineStatusWaived = "waived"
)

// premiumMembershipAge is how long a patron must have been a member to
// qualify for the extended loan period.
const premiumMembershipAge = 5 * 365 * 24 * time.Hour

// Patron is a registered library member.
type Patron struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Email       string    `json:"email" db:"email"`
	BranchID    uuid.UUID `json:"branch_id" db:"branch_id"`
	Status      string    `json:"status" db:"status"`
	MemberSince time.Time `json:"member_since" db:"member_since"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

func NewPatron(name, email string, branchID uuid.UUID, memberSince time.Time) *Patron {
	return &Patron{
		Name:        name,
		Email:       email,
		BranchID:    branchID,
		Status:      StatusRegistered,
		MemberSince: domain.DateOnly(memberSince),
	}
}

// IsPremiumMembership reports whether the patron has been a member for at
// least five years as of today.
func (p *Patron) IsPremiumMembership(today time.Time) bool {
	return !p.MemberSince.After(domain.DateOnly(today).Add(-premiumMembershipAge))
}

// ChangeEmail updates the patron's email after a uniqueness check. Changing
// to the current address is a no-op.
func (p *Patron) ChangeEmail(ctx context.Context, email string, uniqueness *UniquenessService) ([]eventbus.Event, error) {
	if email == p.Email {
		return nil, nil
	}
	unique, err := uniqueness.IsEmailUnique(ctx, email)
	if err != nil {
		return nil, err
	}
	if !unique {
		return nil, ErrEmailAlreadyExists(email)
	}

	oldEmail := p.Email
	p.Email = email
	return []eventbus.Event{PatronEmailChangedEvent{
		PatronID: p.ID,
		OldEmail: oldEmail,
		NewEmail: email,
	}}, nil
}

// AvailableToBorrow fails unless the patron is active and the barring
// service reports them clear to borrow.
func (p *Patron) AvailableToBorrow(ctx context.Context, barring *BarringService) error {
	if p.Status != StatusActive {
		return ErrPatronNotActive(p.ID)
	}
	ok, err := barring.CanBorrowCopies(ctx, p.ID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrPatronHasActiveLoans(p.ID)
	}
	return nil
}

// AvailableToRenew fails unless the patron is active and the given copy is
// the patron's only outstanding loan.
func (p *Patron) AvailableToRenew(ctx context.Context, copyID uuid.UUID, barring *BarringService) error {
	if p.Status != StatusActive {
		return ErrPatronNotActive(p.ID)
	}
	ok, err := barring.CanRenewCopy(ctx, p.ID, copyID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrPatronNotEligibleToRenew(p.ID)
	}
	return nil
}

// AvailableToPlaceHold fails unless the patron is active and under the
// concurrent-hold limit.
func (p *Patron) AvailableToPlaceHold(ctx context.Context, holding *HoldingService) error {
	if p.Status != StatusActive {
		return ErrPatronNotActive(p.ID)
	}
	ok, err := holding.CanPlaceHolds(ctx, p.ID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrPatronHoldLimitReached(p.ID)
	}
	return nil
}

func (p *Patron) Activate() error {
	if p.Status == StatusActive {
		return ErrPatronAlreadyActive(p.ID)
	}
	p.Status = StatusActive
	return nil
}

// Suspend takes an active patron out of circulation until reinstated.
func (p *Patron) Suspend() ([]eventbus.Event, error) {
	if p.Status != StatusActive {
		return nil, ErrPatronNotActive(p.ID)
	}
	p.Status = StatusSuspended
	return []eventbus.Event{PatronSuspendedEvent{PatronID: p.ID, Email: p.Email}}, nil
}

func (p *Patron) Archive() error {
	if p.Status != StatusActive {
		return ErrPatronNotActive(p.ID)
	}
	p.Status = StatusArchived
	return nil
}

func (p *Patron) Unarchive() error {
	if p.Status != StatusArchived {
		return ErrPatronNotArchived(p.ID)
	}
	p.Status = StatusActive
	return nil
}

// Reinstate returns a suspended patron to active. The reinstatement service
// requires all of the patron's loans to be settled first.
func (p *Patron) Reinstate(ctx context.Context, reinstatement *ReinstatementService) ([]eventbus.Event, error) {
	if p.Status != StatusSuspended {
		return nil, ErrPatronNotSuspended(p.ID)
	}
	ok, err := reinstatement.CanReinstate(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrPatronHasActiveLoans(p.ID)
	}
	p.Status = StatusActive
	return []eventbus.Event{PatronReinstatedEvent{PatronID: p.ID, Email: p.Email}}, nil
}

// Fine is a monetary charge against a patron for an overdue, damaged or
// lost loan.
type Fine struct {
	ID         uuid.UUID       `json:"id" db:"id"`
	PatronID   uuid.UUID       `json:"patron_id" db:"patron_id"`
	LoanID     uuid.UUID       `json:"loan_id" db:"loan_id"`
	Amount     decimal.Decimal `json:"amount" db:"amount"`
	Reason     string          `json:"reason" db:"reason"`
	IssuedDate time.Time       `json:"issued_date" db:"issued_date"`
	PaidDate   *time.Time      `json:"paid_date" db:"paid_date"`
	Status     string          `json:"status" db:"status"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at" db:"updated_at"`
}

func NewOverdueFine(loanID, patronID uuid.UUID, daysLate int, issuedDate time.Time, policy *FinePolicyService) *Fine {
	return &Fine{
		PatronID:   patronID,
		LoanID:     loanID,
		Amount:     policy.CalculateOverdueFine(daysLate),
		Reason:     fmt.Sprintf("Overdue fine for loan ID %s", loanID),
		IssuedDate: domain.DateOnly(issuedDate),
		Status:     FineStatusUnpaid,
	}
}

func NewDamagedItemFine(ctx context.Context, loanID, patronID, copyID uuid.UUID, issuedDate time.Time, policy *FinePolicyService) (*Fine, error) {
	amount, err := policy.CalculateFineForDamagedItem(ctx, copyID)
	if err != nil {
		return nil, err
	}
	return &Fine{
		PatronID:   patronID,
		LoanID:     loanID,
		Amount:     amount,
		Reason:     fmt.Sprintf("Damaged fine for loan ID %s", loanID),
		IssuedDate: domain.DateOnly(issuedDate),
		Status:     FineStatusUnpaid,
	}, nil
}

func NewLostItemFine(ctx context.Context, loanID, patronID, copyID uuid.UUID, issuedDate time.Time, policy *FinePolicyService) (*Fine, error) {
	amount, err := policy.CalculateFineForLostItem(ctx, copyID)
	if err != nil {
		return nil, err
	}
	return &Fine{
		PatronID:   patronID,
		LoanID:     loanID,
		Amount:     amount,
		Reason:     fmt.Sprintf("Lost fine for loan ID %s", loanID),
		IssuedDate: domain.DateOnly(issuedDate),
		Status:     FineStatusUnpaid,
	}, nil
}

// Pay settles the fine. Paying an already-paid fine fails rather than
// being a no-op.
func (f *Fine) Pay(today time.Time) ([]eventbus.Event, error) {
	if f.Status == FineStatusPaid {
		return nil, ErrFineAlreadyPaid(f.PatronID, f.LoanID)
	}
	f.Status = FineStatusPaid
	paid := domain.DateOnly(today)
	f.PaidDate = &paid
	return []eventbus.Event{FinePaidEvent{
		FineID:   f.ID,
		PatronID: f.PatronID,
		LoanID:   f.LoanID,
		Amount:   f.Amount,
	}}, nil
}

// Waive forgives the fine. Waiving an already-waived fine fails.
func (f *Fine) Waive(today time.Time) ([]eventbus.Event, error) {
	if f.Status == FineStatusWaived {
		return nil, ErrFineAlreadyWaived(f.PatronID, f.LoanID)
	}
	f.Status = FineStatusWaived
	waived := domain.DateOnly(today)
	f.PaidDate = &waived
	return []eventbus.Event{FineWaivedEvent{
		FineID:   f.ID,
		PatronID: f.PatronID,
		LoanID:   f.LoanID,
		Amount:   f.Amount,
	}}, nil
}
