package circulation

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"openlms/internal/catalog"
	"openlms/internal/domain"
	"openlms/internal/patron"
)

type stubPatronLookup struct {
	patrons map[uuid.UUID]*patron.Patron
}

func (s *stubPatronLookup) PatronByID(_ context.Context, id uuid.UUID) (*patron.Patron, error) {
	if p, ok := s.patrons[id]; ok {
		return p, nil
	}
	return nil, domain.NewNotFound("patron", id.String())
}

func (s *stubPatronLookup) PatronExistsByEmail(_ context.Context, _ string) (bool, error) {
	return false, nil
}

type stubLoanLookup struct {
	count      int
	copyOnLoan map[uuid.UUID]bool
}

func (s *stubLoanLookup) CountLoansByPatron(_ context.Context, _ uuid.UUID) (int, error) {
	return s.count, nil
}

func (s *stubLoanLookup) LoanExistsForPatronAndCopy(_ context.Context, _, copyID uuid.UUID) (bool, error) {
	return s.copyOnLoan[copyID], nil
}

type stubHoldLookup struct {
	count int
}

func (s *stubHoldLookup) CountActiveHoldsByPatron(_ context.Context, _ uuid.UUID) (int, error) {
	return s.count, nil
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func activePatron(memberSince time.Time) *patron.Patron {
	return &patron.Patron{
		ID:          uuid.New(),
		Status:      patron.StatusActive,
		BranchID:    uuid.New(),
		MemberSince: memberSince,
	}
}

func availableCopy(acquired time.Time) *catalog.Copy {
	return &catalog.Copy{
		ID:              uuid.New(),
		ItemID:          uuid.New(),
		BranchID:        uuid.New(),
		Status:          catalog.CopyStatusAvailable,
		AcquisitionDate: acquired,
	}
}

func barringFor(p *patron.Patron, loans *stubLoanLookup) *patron.BarringService {
	return patron.NewBarringService(&stubPatronLookup{patrons: map[uuid.UUID]*patron.Patron{p.ID: p}}, loans)
}

func TestCheckoutComputesStandardDueDate(t *testing.T) {
	ctx := context.Background()
	loanDate := date(2026, time.March, 1)
	p := activePatron(date(2025, time.January, 1))
	copy := availableCopy(date(2026, time.January, 1))

	loan, err := NewLoan(ctx, p, copy, uuid.New(), p.BranchID, loanDate,
		barringFor(p, &stubLoanLookup{}), NewLoanPolicyService())
	require.NoError(t, err)

	assert.Equal(t, loanDate.AddDate(0, 0, 14), loan.DueDate)
	assert.Equal(t, catalog.CopyStatusCheckedOut, copy.Status)
}

func TestCheckoutExtendsDueDateForPremiumMember(t *testing.T) {
	ctx := context.Background()
	loanDate := date(2026, time.March, 1)
	p := activePatron(date(2015, time.January, 1))
	copy := availableCopy(date(2026, time.January, 1))

	loan, err := NewLoan(ctx, p, copy, uuid.New(), p.BranchID, loanDate,
		barringFor(p, &stubLoanLookup{}), NewLoanPolicyService())
	require.NoError(t, err)

	assert.Equal(t, loanDate.AddDate(0, 0, 28), loan.DueDate)
}

func TestCheckoutExtendsDueDateForOlderCopy(t *testing.T) {
	ctx := context.Background()
	loanDate := date(2026, time.March, 1)
	p := activePatron(date(2025, time.January, 1))
	copy := availableCopy(date(2020, time.January, 1))

	loan, err := NewLoan(ctx, p, copy, uuid.New(), p.BranchID, loanDate,
		barringFor(p, &stubLoanLookup{}), NewLoanPolicyService())
	require.NoError(t, err)

	assert.Equal(t, loanDate.AddDate(0, 0, 28), loan.DueDate)
}

func TestCheckoutBarredWhenPatronHasOpenLoan(t *testing.T) {
	ctx := context.Background()
	p := activePatron(date(2025, time.January, 1))
	copy := availableCopy(date(2026, time.January, 1))

	_, err := NewLoan(ctx, p, copy, uuid.New(), p.BranchID, date(2026, time.March, 1),
		barringFor(p, &stubLoanLookup{count: 1}), NewLoanPolicyService())
	var rule domain.RuleViolation
	require.ErrorAs(t, err, &rule)
	assert.Equal(t, "PatronHasActiveLoans", rule.RuleCode())
	assert.Equal(t, catalog.CopyStatusAvailable, copy.Status)
}

func TestLateReturnReportsDaysOverdue(t *testing.T) {
	dueDate := date(2026, time.March, 15)
	loan := &Loan{
		ID:       uuid.New(),
		CopyID:   uuid.New(),
		PatronID: uuid.New(),
		LoanDate: date(2026, time.March, 1),
		DueDate:  dueDate,
	}
	copy := &catalog.Copy{ID: loan.CopyID, Status: catalog.CopyStatusCheckedOut}

	events, err := loan.MarkAsReturned(copy, dueDate.AddDate(0, 0, 5), uuid.New())
	require.NoError(t, err)

	assert.Equal(t, catalog.CopyStatusAvailable, copy.Status)
	require.NotNil(t, loan.ReturnDate)
	require.Len(t, events, 2)
	assert.Equal(t, EventLoanReturned, events[0].EventName())
	overdue, ok := events[1].(LoanOverdueEvent)
	require.True(t, ok)
	assert.Equal(t, 5, overdue.DaysLate)
}

func TestOnTimeReturnEmitsNoOverdueEvent(t *testing.T) {
	dueDate := date(2026, time.March, 15)
	loan := &Loan{ID: uuid.New(), DueDate: dueDate}
	copy := &catalog.Copy{ID: uuid.New(), Status: catalog.CopyStatusCheckedOut}

	events, err := loan.MarkAsReturned(copy, dueDate, uuid.New())
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, EventLoanReturned, events[0].EventName())
}

func TestReturnOfClosedLoanFails(t *testing.T) {
	returned := date(2026, time.March, 10)
	loan := &Loan{ID: uuid.New(), DueDate: date(2026, time.March, 15), ReturnDate: &returned}
	copy := &catalog.Copy{ID: uuid.New(), Status: catalog.CopyStatusCheckedOut}

	_, err := loan.MarkAsReturned(copy, date(2026, time.March, 12), uuid.New())
	var rule domain.RuleViolation
	require.ErrorAs(t, err, &rule)
	assert.Equal(t, "LoanAlreadyReturned", rule.RuleCode())
	assert.Contains(t, err.Error(), "2026-03-10")
}

func TestMarkDamagedClosesLoanAndCopy(t *testing.T) {
	today := date(2026, time.March, 10)
	loan := &Loan{ID: uuid.New(), CopyID: uuid.New(), PatronID: uuid.New(), DueDate: date(2026, time.March, 15)}
	copy := &catalog.Copy{ID: loan.CopyID, Status: catalog.CopyStatusCheckedOut}

	events, err := loan.MarkDamaged(copy, today)
	require.NoError(t, err)

	assert.Equal(t, catalog.CopyStatusDamaged, copy.Status)
	require.NotNil(t, loan.ReturnDate)
	assert.Equal(t, today, *loan.ReturnDate)
	require.Len(t, events, 1)
	assert.Equal(t, EventLoanDamaged, events[0].EventName())
}

func TestMarkLostFailsOnOverdueLoan(t *testing.T) {
	loan := &Loan{ID: uuid.New(), DueDate: date(2026, time.March, 5)}
	copy := &catalog.Copy{ID: uuid.New(), Status: catalog.CopyStatusCheckedOut}

	_, err := loan.MarkLost(copy, date(2026, time.March, 10))
	var rule domain.RuleViolation
	require.ErrorAs(t, err, &rule)
	assert.Equal(t, "LoanOverdue", rule.RuleCode())
}

func TestRenewRecomputesDueDateFromToday(t *testing.T) {
	ctx := context.Background()
	p := activePatron(date(2025, time.January, 1))
	copy := &catalog.Copy{
		ID:              uuid.New(),
		Status:          catalog.CopyStatusCheckedOut,
		AcquisitionDate: date(2026, time.January, 1),
	}
	loan := &Loan{
		ID:       uuid.New(),
		CopyID:   copy.ID,
		PatronID: p.ID,
		LoanDate: date(2026, time.March, 1),
		DueDate:  date(2026, time.March, 15),
	}
	today := date(2026, time.March, 10)

	barring := barringFor(p, &stubLoanLookup{count: 1, copyOnLoan: map[uuid.UUID]bool{copy.ID: true}})
	require.NoError(t, loan.Renew(ctx, p, copy, today, barring, NewLoanPolicyService()))
	assert.Equal(t, today.AddDate(0, 0, 14), loan.DueDate)
}

func TestRenewBlockedWithMultipleOpenLoans(t *testing.T) {
	ctx := context.Background()
	p := activePatron(date(2025, time.January, 1))
	copy := &catalog.Copy{ID: uuid.New(), Status: catalog.CopyStatusCheckedOut}
	loan := &Loan{ID: uuid.New(), CopyID: copy.ID, PatronID: p.ID, DueDate: date(2026, time.March, 15)}

	barring := barringFor(p, &stubLoanLookup{count: 2, copyOnLoan: map[uuid.UUID]bool{copy.ID: true}})
	err := loan.Renew(ctx, p, copy, date(2026, time.March, 10), barring, NewLoanPolicyService())
	var rule domain.RuleViolation
	require.ErrorAs(t, err, &rule)
	assert.Equal(t, "PatronNotEligibleToRenew", rule.RuleCode())
}

func TestRenewBlockedOnOverdueLoan(t *testing.T) {
	ctx := context.Background()
	p := activePatron(date(2025, time.January, 1))
	copy := &catalog.Copy{ID: uuid.New(), Status: catalog.CopyStatusCheckedOut}
	loan := &Loan{ID: uuid.New(), CopyID: copy.ID, PatronID: p.ID, DueDate: date(2026, time.March, 5)}

	barring := barringFor(p, &stubLoanLookup{count: 1, copyOnLoan: map[uuid.UUID]bool{copy.ID: true}})
	err := loan.Renew(ctx, p, copy, date(2026, time.March, 10), barring, NewLoanPolicyService())
	var rule domain.RuleViolation
	require.ErrorAs(t, err, &rule)
	assert.Equal(t, "LoanOverdue", rule.RuleCode())
}

func TestNewHoldSetsExpiryWindow(t *testing.T) {
	ctx := context.Background()
	p := activePatron(date(2025, time.January, 1))
	requestDate := date(2026, time.March, 1)

	holding := patron.NewHoldingService(&stubHoldLookup{count: 0})
	hold, err := NewHold(ctx, p, uuid.New(), nil, requestDate, holding, NewHoldPolicyService())
	require.NoError(t, err)

	assert.Equal(t, HoldStatusPending, hold.Status)
	assert.Equal(t, requestDate.AddDate(0, 0, 7), hold.ExpiryDate)
	assert.Nil(t, hold.CopyID)
}

func TestNewHoldBlockedAtHoldLimit(t *testing.T) {
	ctx := context.Background()
	p := activePatron(date(2025, time.January, 1))

	holding := patron.NewHoldingService(&stubHoldLookup{count: 2})
	_, err := NewHold(ctx, p, uuid.New(), nil, date(2026, time.March, 1), holding, NewHoldPolicyService())
	var rule domain.RuleViolation
	require.ErrorAs(t, err, &rule)
	assert.Equal(t, "PatronHoldLimitReached", rule.RuleCode())
}

func TestHoldTransitionsRequirePending(t *testing.T) {
	copy := &catalog.Copy{ID: uuid.New(), Status: catalog.CopyStatusAvailable}

	hold := &Hold{ID: uuid.New(), Status: HoldStatusCancelled}
	_, err := hold.ReadyForPickup(copy)
	var rule domain.RuleViolation
	require.ErrorAs(t, err, &rule)
	assert.Equal(t, "HoldNotPending", rule.RuleCode())

	_, err = hold.Expire()
	require.ErrorAs(t, err, &rule)

	_, err = hold.Cancel()
	require.ErrorAs(t, err, &rule)
}

func TestReadyHoldCanBeFulfilled(t *testing.T) {
	copy := &catalog.Copy{ID: uuid.New(), Status: catalog.CopyStatusAvailable}
	hold := &Hold{ID: uuid.New(), Status: HoldStatusPending}

	_, err := hold.ReadyForPickup(copy)
	require.NoError(t, err)
	assert.Equal(t, HoldStatusReady, hold.Status)
	require.NotNil(t, hold.CopyID)
	assert.Equal(t, copy.ID, *hold.CopyID)

	loan := &Loan{ID: uuid.New()}
	events, err := hold.Fulfill(copy, loan)
	require.NoError(t, err)
	assert.Equal(t, HoldStatusFulfilled, hold.Status)
	require.NotNil(t, hold.LoanID)
	assert.Equal(t, loan.ID, *hold.LoanID)
	require.Len(t, events, 1)
	assert.Equal(t, EventHoldFulfilled, events[0].EventName())
}

func TestHoldExpiryPolicy(t *testing.T) {
	policy := NewHoldPolicyService()
	hold := &Hold{ExpiryDate: date(2026, time.March, 8)}

	assert.False(t, policy.IsExpired(hold, date(2026, time.March, 8)))
	assert.True(t, policy.IsExpired(hold, date(2026, time.March, 9)))
}
