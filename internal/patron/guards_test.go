package patron

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func activePatron(t *testing.T) (*Patron, *stubPatronLookup) {
	t.Helper()
	p := NewPatron("Ada Lovelace", "ada@example.com", uuid.New(), time.Now())
	p.ID = uuid.New()
	require.NoError(t, p.Activate())
	return p, &stubPatronLookup{patrons: map[uuid.UUID]*Patron{p.ID: p}}
}

func TestCanBorrowCopiesRequiresZeroLoans(t *testing.T) {
	ctx := context.Background()
	p, patrons := activePatron(t)
	loans := &stubLoanLookup{}
	barring := NewBarringService(patrons, loans)

	ok, err := barring.CanBorrowCopies(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	loans.count = 1
	ok, err = barring.CanBorrowCopies(ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCanBorrowCopiesUnknownPatronIsFalse(t *testing.T) {
	ctx := context.Background()
	barring := NewBarringService(&stubPatronLookup{}, &stubLoanLookup{})

	ok, err := barring.CanBorrowCopies(ctx, uuid.New())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCanRenewCopyRequiresExactlyOneMatchingLoan(t *testing.T) {
	ctx := context.Background()
	p, patrons := activePatron(t)
	copyID := uuid.New()

	loans := &stubLoanLookup{count: 1, copyLoaned: true}
	barring := NewBarringService(patrons, loans)

	ok, err := barring.CanRenewCopy(ctx, p.ID, copyID)
	require.NoError(t, err)
	assert.True(t, ok)

	loans.count = 2
	ok, err = barring.CanRenewCopy(ctx, p.ID, copyID)
	require.NoError(t, err)
	assert.False(t, ok)

	loans.count = 1
	loans.copyLoaned = false
	ok, err = barring.CanRenewCopy(ctx, p.ID, copyID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCanPlaceHoldsAllowsUpToOneExistingHold(t *testing.T) {
	ctx := context.Background()
	holds := &stubHoldLookup{}
	holding := NewHoldingService(holds)

	for count, want := range map[int]bool{0: true, 1: true, 2: false} {
		holds.count = count
		ok, err := holding.CanPlaceHolds(ctx, uuid.New())
		require.NoError(t, err)
		assert.Equal(t, want, ok, "existing holds: %d", count)
	}
}

func TestAvailableToBorrowMapsGuardResultToError(t *testing.T) {
	ctx := context.Background()
	p, patrons := activePatron(t)
	loans := &stubLoanLookup{count: 1}
	barring := NewBarringService(patrons, loans)

	err := p.AvailableToBorrow(ctx, barring)
	require.Error(t, err)

	loans.count = 0
	require.NoError(t, p.AvailableToBorrow(ctx, barring))
}
