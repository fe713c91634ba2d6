package circulation

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"openlms/internal/catalog"
	"openlms/internal/domain"
	"openlms/internal/eventbus"
	"openlms/internal/patron"
)

// memRepo is an in-memory Repository that also serves the patron guards.
type memRepo struct {
	loans  map[uuid.UUID]*Loan
	holds  map[uuid.UUID]*Hold
	copies map[uuid.UUID]*catalog.Copy
}

func newMemRepo() *memRepo {
	return &memRepo{
		loans:  map[uuid.UUID]*Loan{},
		holds:  map[uuid.UUID]*Hold{},
		copies: map[uuid.UUID]*catalog.Copy{},
	}
}

func (m *memRepo) LoanByID(_ context.Context, id uuid.UUID) (*Loan, error) {
	if l, ok := m.loans[id]; ok {
		return l, nil
	}
	return nil, domain.NewNotFound("loan", id.String())
}

func (m *memRepo) FindAllLoans(_ context.Context) ([]*Loan, error) {
	loans := []*Loan{}
	for _, l := range m.loans {
		loans = append(loans, l)
	}
	return loans, nil
}

func (m *memRepo) FindLoansByPatron(_ context.Context, patronID uuid.UUID) ([]*Loan, error) {
	loans := []*Loan{}
	for _, l := range m.loans {
		if l.PatronID == patronID {
			loans = append(loans, l)
		}
	}
	return loans, nil
}

func (m *memRepo) SaveLoan(_ context.Context, loan *Loan, copy *catalog.Copy) error {
	if loan.ID == uuid.Nil {
		loan.ID = uuid.New()
	}
	m.loans[loan.ID] = loan
	m.copies[copy.ID] = copy
	return nil
}

func (m *memRepo) HoldByID(_ context.Context, id uuid.UUID) (*Hold, error) {
	if h, ok := m.holds[id]; ok {
		return h, nil
	}
	return nil, domain.NewNotFound("hold", id.String())
}

func (m *memRepo) FindAllHolds(_ context.Context) ([]*Hold, error) {
	holds := []*Hold{}
	for _, h := range m.holds {
		holds = append(holds, h)
	}
	return holds, nil
}

func (m *memRepo) FindPendingHoldsByItem(_ context.Context, itemID uuid.UUID) ([]*Hold, error) {
	holds := []*Hold{}
	for _, h := range m.holds {
		if h.ItemID == itemID && h.Status == HoldStatusPending {
			holds = append(holds, h)
		}
	}
	sort.Slice(holds, func(i, j int) bool {
		if !holds[i].RequestDate.Equal(holds[j].RequestDate) {
			return holds[i].RequestDate.Before(holds[j].RequestDate)
		}
		return holds[i].ID.String() < holds[j].ID.String()
	})
	return holds, nil
}

func (m *memRepo) SaveHold(_ context.Context, h *Hold) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	m.holds[h.ID] = h
	return nil
}

func (m *memRepo) Transact(_ context.Context, fn func(Repository) error) error {
	return fn(m)
}

func (m *memRepo) CountLoansByPatron(_ context.Context, patronID uuid.UUID) (int, error) {
	count := 0
	for _, l := range m.loans {
		if l.PatronID == patronID && l.ReturnDate == nil {
			count++
		}
	}
	return count, nil
}

func (m *memRepo) LoanExistsForPatronAndCopy(_ context.Context, patronID, copyID uuid.UUID) (bool, error) {
	for _, l := range m.loans {
		if l.PatronID == patronID && l.CopyID == copyID && l.ReturnDate == nil {
			return true, nil
		}
	}
	return false, nil
}

func (m *memRepo) CountActiveHoldsByPatron(_ context.Context, patronID uuid.UUID) (int, error) {
	count := 0
	for _, h := range m.holds {
		if h.PatronID == patronID && (h.Status == HoldStatusPending || h.Status == HoldStatusReady) {
			count++
		}
	}
	return count, nil
}

// memDirectory resolves patrons, items and copies from maps. Copy pointers
// are shared with the repo so status changes are visible everywhere.
type memDirectory struct {
	patrons map[uuid.UUID]*patron.Patron
	items   map[uuid.UUID]*catalog.Item
	copies  map[uuid.UUID]*catalog.Copy
}

func (d *memDirectory) PatronByID(_ context.Context, id uuid.UUID) (*patron.Patron, error) {
	if p, ok := d.patrons[id]; ok {
		return p, nil
	}
	return nil, domain.NewNotFound("patron", id.String())
}

func (d *memDirectory) PatronExistsByEmail(_ context.Context, _ string) (bool, error) {
	return false, nil
}

func (d *memDirectory) ItemByID(_ context.Context, id uuid.UUID) (*catalog.Item, error) {
	if i, ok := d.items[id]; ok {
		return i, nil
	}
	return nil, domain.NewNotFound("item", id.String())
}

func (d *memDirectory) CopyByID(_ context.Context, id uuid.UUID) (*catalog.Copy, error) {
	if c, ok := d.copies[id]; ok {
		return c, nil
	}
	return nil, domain.NewNotFound("copy", id.String())
}

type allowAllStaff struct{}

func (allowAllStaff) StaffExists(_ context.Context, _ uuid.UUID) error { return nil }

type fixture struct {
	repo  *memRepo
	dir   *memDirectory
	bus   *eventbus.Bus
	loans *LoanService
	holds *HoldService
}

func newFixture() *fixture {
	repo := newMemRepo()
	dir := &memDirectory{
		patrons: map[uuid.UUID]*patron.Patron{},
		items:   map[uuid.UUID]*catalog.Item{},
		copies:  map[uuid.UUID]*catalog.Copy{},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	bus := eventbus.New(logger)

	barring := patron.NewBarringService(dir, repo)
	holding := patron.NewHoldingService(repo)

	loans := NewLoanService(repo, dir, dir, allowAllStaff{}, barring, NewLoanPolicyService(), bus, logger)
	holds := NewHoldService(repo, dir, dir, dir, allowAllStaff{}, holding, barring,
		NewHoldPolicyService(), NewLoanPolicyService(), bus, logger)

	return &fixture{repo: repo, dir: dir, bus: bus, loans: loans, holds: holds}
}

func (f *fixture) addPatron(memberSince time.Time) *patron.Patron {
	p := &patron.Patron{
		ID:          uuid.New(),
		Status:      patron.StatusActive,
		BranchID:    uuid.New(),
		MemberSince: memberSince,
	}
	f.dir.patrons[p.ID] = p
	return p
}

func (f *fixture) addItemWithCopy(acquired time.Time) (*catalog.Item, *catalog.Copy) {
	item := &catalog.Item{ID: uuid.New(), Title: "Go in Practice", Format: catalog.FormatBook}
	copy := &catalog.Copy{
		ID:              uuid.New(),
		ItemID:          item.ID,
		BranchID:        uuid.New(),
		Status:          catalog.CopyStatusAvailable,
		AcquisitionDate: acquired,
	}
	f.dir.items[item.ID] = item
	f.dir.copies[copy.ID] = copy
	f.repo.copies[copy.ID] = copy
	return item, copy
}

func TestLateCheckinPublishesOverdueEvent(t *testing.T) {
	f := newFixture()
	loanDate := date(2026, time.March, 1)
	p := f.addPatron(date(2025, time.June, 1))
	_, copy := f.addItemWithCopy(date(2026, time.January, 1))

	var overdue *LoanOverdueEvent
	f.bus.Subscribe(EventLoanOverdue, func(_ context.Context, e eventbus.Event) error {
		ev := e.(LoanOverdueEvent)
		overdue = &ev
		return nil
	})

	f.loans.now = func() time.Time { return loanDate }
	loan, err := f.loans.CheckoutCopy(context.Background(), copy.ID, p.ID, uuid.New())
	require.NoError(t, err)
	require.Equal(t, loanDate.AddDate(0, 0, 14), loan.DueDate)

	f.loans.now = func() time.Time { return loan.DueDate.AddDate(0, 0, 5) }
	_, err = f.loans.CheckinCopy(context.Background(), loan.ID, uuid.New())
	require.NoError(t, err)

	assert.Equal(t, catalog.CopyStatusAvailable, copy.Status)
	require.NotNil(t, overdue)
	assert.Equal(t, loan.ID, overdue.LoanID)
	assert.Equal(t, 5, overdue.DaysLate)
}

func TestReturnReadiesOldestPendingHold(t *testing.T) {
	f := newFixture()
	p := f.addPatron(date(2025, time.June, 1))
	holder1 := f.addPatron(date(2025, time.June, 1))
	holder2 := f.addPatron(date(2025, time.June, 1))
	item, copy := f.addItemWithCopy(date(2026, time.January, 1))

	f.bus.Subscribe(EventLoanReturned, func(ctx context.Context, e eventbus.Event) error {
		return f.holds.ProcessHoldsForReturnedCopy(ctx, e.(LoanReturnedEvent).CopyID)
	})

	f.loans.now = func() time.Time { return date(2026, time.March, 1) }
	loan, err := f.loans.CheckoutCopy(context.Background(), copy.ID, p.ID, uuid.New())
	require.NoError(t, err)

	f.holds.now = func() time.Time { return date(2026, time.March, 2) }
	first, err := f.holds.PlaceHold(context.Background(), holder1.ID, item.ID, nil)
	require.NoError(t, err)
	f.holds.now = func() time.Time { return date(2026, time.March, 3) }
	second, err := f.holds.PlaceHold(context.Background(), holder2.ID, item.ID, nil)
	require.NoError(t, err)

	f.loans.now = func() time.Time { return date(2026, time.March, 5) }
	_, err = f.loans.CheckinCopy(context.Background(), loan.ID, uuid.New())
	require.NoError(t, err)

	assert.Equal(t, HoldStatusReady, first.Status)
	require.NotNil(t, first.CopyID)
	assert.Equal(t, copy.ID, *first.CopyID)
	assert.Equal(t, HoldStatusPending, second.Status)
}

func TestPickupHoldCreatesLoanAndFulfills(t *testing.T) {
	f := newFixture()
	holder := f.addPatron(date(2025, time.June, 1))
	item, copy := f.addItemWithCopy(date(2026, time.January, 1))

	f.holds.now = func() time.Time { return date(2026, time.March, 2) }
	hold, err := f.holds.PlaceHold(context.Background(), holder.ID, item.ID, nil)
	require.NoError(t, err)

	_, err = f.holds.ReadyHoldForPickup(context.Background(), hold.ID, copy.ID)
	require.NoError(t, err)

	f.holds.now = func() time.Time { return date(2026, time.March, 4) }
	loan, err := f.holds.PickupHold(context.Background(), hold.ID, uuid.New(), copy.ID)
	require.NoError(t, err)

	assert.Equal(t, HoldStatusFulfilled, hold.Status)
	require.NotNil(t, hold.LoanID)
	assert.Equal(t, loan.ID, *hold.LoanID)
	assert.Equal(t, holder.ID, loan.PatronID)
	assert.Equal(t, catalog.CopyStatusCheckedOut, copy.Status)
	assert.Equal(t, date(2026, time.March, 4).AddDate(0, 0, 14), loan.DueDate)
}

func TestPickupOfCancelledHoldFails(t *testing.T) {
	f := newFixture()
	holder := f.addPatron(date(2025, time.June, 1))
	item, copy := f.addItemWithCopy(date(2026, time.January, 1))

	f.holds.now = func() time.Time { return date(2026, time.March, 2) }
	hold, err := f.holds.PlaceHold(context.Background(), holder.ID, item.ID, nil)
	require.NoError(t, err)
	_, err = f.holds.CancelHold(context.Background(), hold.ID)
	require.NoError(t, err)

	_, err = f.holds.PickupHold(context.Background(), hold.ID, uuid.New(), copy.ID)
	var rule domain.RuleViolation
	require.ErrorAs(t, err, &rule)
	assert.Equal(t, "HoldNotPending", rule.RuleCode())
}

func TestRenewBlockedWhenPatronHasTwoOpenLoans(t *testing.T) {
	f := newFixture()
	p := f.addPatron(date(2025, time.June, 1))
	_, copy := f.addItemWithCopy(date(2026, time.January, 1))
	copy.Status = catalog.CopyStatusCheckedOut

	loan := &Loan{
		ID:       uuid.New(),
		CopyID:   copy.ID,
		PatronID: p.ID,
		LoanDate: date(2026, time.March, 1),
		DueDate:  date(2026, time.March, 15),
	}
	other := &Loan{
		ID:       uuid.New(),
		CopyID:   uuid.New(),
		PatronID: p.ID,
		LoanDate: date(2026, time.March, 2),
		DueDate:  date(2026, time.March, 16),
	}
	f.repo.loans[loan.ID] = loan
	f.repo.loans[other.ID] = other

	f.loans.now = func() time.Time { return date(2026, time.March, 10) }
	_, err := f.loans.RenewLoan(context.Background(), loan.ID)
	var rule domain.RuleViolation
	require.ErrorAs(t, err, &rule)
	assert.Equal(t, "PatronNotEligibleToRenew", rule.RuleCode())
}

func TestDamagedCopyPublishesDamagedEvent(t *testing.T) {
	f := newFixture()
	p := f.addPatron(date(2025, time.June, 1))
	_, copy := f.addItemWithCopy(date(2026, time.January, 1))

	var damaged *LoanDamagedEvent
	f.bus.Subscribe(EventLoanDamaged, func(_ context.Context, e eventbus.Event) error {
		ev := e.(LoanDamagedEvent)
		damaged = &ev
		return nil
	})

	f.loans.now = func() time.Time { return date(2026, time.March, 1) }
	loan, err := f.loans.CheckoutCopy(context.Background(), copy.ID, p.ID, uuid.New())
	require.NoError(t, err)

	f.loans.now = func() time.Time { return date(2026, time.March, 10) }
	_, err = f.loans.DamagedCopy(context.Background(), loan.ID)
	require.NoError(t, err)

	assert.Equal(t, catalog.CopyStatusDamaged, copy.Status)
	require.NotNil(t, damaged)
	assert.Equal(t, loan.ID, damaged.LoanID)
	assert.Equal(t, copy.ID, damaged.CopyID)
}
