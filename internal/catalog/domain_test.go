package catalog

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"openlms/internal/domain"
)

func TestNewItemRejectsUnknownFormat(t *testing.T) {
	_, err := NewItem("Dune", "9780441013593", "vinyl", "", "", 1965, nil, nil)
	require.Error(t, err)

	var rule domain.RuleViolation
	require.ErrorAs(t, err, &rule)
	assert.Equal(t, "InvalidItemFormat", rule.RuleCode())
}

func TestUpdateDetailsLeavesFormatAndEditionAlone(t *testing.T) {
	item, err := NewItem("Dune", "9780441013593", FormatBook, "desert planet saga", "1st", 1965, nil, nil)
	require.NoError(t, err)

	item.UpdateDetails("Dune Messiah", "9780441172696", "second in the series")

	assert.Equal(t, "Dune Messiah", item.Title)
	assert.Equal(t, "9780441172696", item.ISBN)
	assert.Equal(t, "second in the series", item.Description)
	assert.Equal(t, FormatBook, item.Format)
	assert.Equal(t, "1st", item.Edition)
}

func TestCopyCheckoutAndReturnCycle(t *testing.T) {
	copy := NewCopy(uuid.New(), uuid.New(), "BC-1", "A-3", time.Now())

	require.NoError(t, copy.MarkAsCheckedOut())
	assert.Equal(t, CopyStatusCheckedOut, copy.Status)

	err := copy.MarkAsCheckedOut()
	require.Error(t, err)
	var rule domain.RuleViolation
	require.ErrorAs(t, err, &rule)
	assert.Equal(t, "CopyNotAvailable", rule.RuleCode())

	require.NoError(t, copy.MarkAsAvailable())
	assert.Equal(t, CopyStatusAvailable, copy.Status)
}

func TestCopyMarkAsAvailableRequiresCheckedOut(t *testing.T) {
	copy := NewCopy(uuid.New(), uuid.New(), "BC-1", "A-3", time.Now())

	err := copy.MarkAsAvailable()
	require.Error(t, err)
	var rule domain.RuleViolation
	require.ErrorAs(t, err, &rule)
	assert.Equal(t, "CopyNotCheckedOut", rule.RuleCode())
}

func TestCopyLostAndDamagedAreIdempotenceGuarded(t *testing.T) {
	copy := NewCopy(uuid.New(), uuid.New(), "BC-1", "A-3", time.Now())

	require.NoError(t, copy.MarkAsLost())
	err := copy.MarkAsLost()
	require.Error(t, err)
	var rule domain.RuleViolation
	require.ErrorAs(t, err, &rule)
	assert.Equal(t, "CopyAlreadyLost", rule.RuleCode())

	damaged := NewCopy(uuid.New(), uuid.New(), "BC-2", "A-4", time.Now())
	require.NoError(t, damaged.MarkAsDamaged())
	err = damaged.MarkAsDamaged()
	require.Error(t, err)
	require.ErrorAs(t, err, &rule)
	assert.Equal(t, "CopyAlreadyDamaged", rule.RuleCode())
}

func TestCopyIsOlderVersion(t *testing.T) {
	today := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	old := NewCopy(uuid.New(), uuid.New(), "BC-1", "A-3", today.AddDate(-3, 0, 0))
	assert.True(t, old.IsOlderVersion(today))

	recent := NewCopy(uuid.New(), uuid.New(), "BC-2", "A-3", today.AddDate(0, -6, 0))
	assert.False(t, recent.IsOlderVersion(today))
}
