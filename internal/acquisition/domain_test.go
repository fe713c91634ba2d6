package acquisition

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"openlms/internal/domain"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func orderWithLines(t *testing.T, quantities ...int) *AcquisitionOrder {
	t.Helper()
	o := NewAcquisitionOrder(uuid.New(), uuid.New(), date(2026, time.February, 1))
	o.ID = uuid.New()
	for _, q := range quantities {
		line, err := o.AddLine(uuid.New(), decimal.RequireFromString("19.99"), q)
		require.NoError(t, err)
		line.ID = uuid.New()
	}
	return o
}

func TestSubmitRequiresLines(t *testing.T) {
	o := NewAcquisitionOrder(uuid.New(), uuid.New(), date(2026, time.February, 1))
	o.ID = uuid.New()

	_, err := o.Submit()
	var rule domain.RuleViolation
	require.ErrorAs(t, err, &rule)
	assert.Equal(t, "AcquisitionOrderHasNoLines", rule.RuleCode())
	assert.Equal(t, OrderStatusPending, o.Status)
}

func TestLinesOnlyEditableWhilePending(t *testing.T) {
	o := orderWithLines(t, 2, 3)
	_, err := o.Submit()
	require.NoError(t, err)

	_, err = o.AddLine(uuid.New(), decimal.RequireFromString("5.00"), 1)
	var rule domain.RuleViolation
	require.ErrorAs(t, err, &rule)
	assert.Equal(t, "AcquisitionOrderNotPending", rule.RuleCode())

	err = o.RemoveLine(o.Lines[0].ID)
	require.ErrorAs(t, err, &rule)
	assert.Equal(t, "AcquisitionOrderNotPending", rule.RuleCode())
	assert.Len(t, o.Lines, 2)
}

func TestReceiveLineRequiresSubmittedOrder(t *testing.T) {
	o := orderWithLines(t, 2)

	_, err := o.ReceiveLine(o.Lines[0].ID, nil, date(2026, time.February, 10))
	var rule domain.RuleViolation
	require.ErrorAs(t, err, &rule)
	assert.Equal(t, "AcquisitionOrderNotSubmitted", rule.RuleCode())
}

func TestReceivingAllLinesClosesOrder(t *testing.T) {
	o := orderWithLines(t, 2, 3)
	_, err := o.Submit()
	require.NoError(t, err)

	events, err := o.ReceiveLine(o.Lines[0].ID, nil, date(2026, time.February, 10))
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, EventOrderLineReceived, events[0].EventName())
	assert.Equal(t, OrderStatusSubmitted, o.Status)

	events, err = o.ReceiveLine(o.Lines[1].ID, nil, date(2026, time.February, 12))
	require.NoError(t, err)
	require.Len(t, events, 2)

	received, ok := events[1].(OrderReceivedEvent)
	require.True(t, ok)
	assert.Equal(t, OrderStatusReceived, o.Status)
	require.NotNil(t, o.ReceivedDate)
	assert.Equal(t, date(2026, time.February, 12), *o.ReceivedDate)
	require.Len(t, received.ItemLines, 2)
	assert.Equal(t, 2, received.ItemLines[0].Quantity)
	assert.Equal(t, 3, received.ItemLines[1].Quantity)
	assert.Equal(t, o.StaffID, received.StaffID)
}

func TestPartialReceiptCountsTowardCompletion(t *testing.T) {
	o := orderWithLines(t, 5)
	_, err := o.Submit()
	require.NoError(t, err)

	three := 3
	events, err := o.ReceiveLine(o.Lines[0].ID, &three, date(2026, time.February, 10))
	require.NoError(t, err)

	assert.Equal(t, LineStatusPartiallyReceived, o.Lines[0].Status)
	// A partial delivery still completes the order; the received stock
	// reflects what actually arrived.
	received, ok := events[len(events)-1].(OrderReceivedEvent)
	require.True(t, ok)
	assert.Equal(t, OrderStatusReceived, o.Status)
	assert.Equal(t, 3, received.ItemLines[0].Quantity)
}

func TestRemoveReceivedLineFails(t *testing.T) {
	o := orderWithLines(t, 2)
	o.Lines[0].Receive(2)

	err := o.RemoveLine(o.Lines[0].ID)
	var rule domain.RuleViolation
	require.ErrorAs(t, err, &rule)
	assert.Equal(t, "AcquisitionOrderLineAlreadyReceived", rule.RuleCode())
}

func TestRemoveUnknownLineIsNotFound(t *testing.T) {
	o := orderWithLines(t, 2)

	err := o.RemoveLine(uuid.New())
	var notFound *domain.NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestCancelRequiresPendingOrder(t *testing.T) {
	o := orderWithLines(t, 1)
	_, err := o.Cancel()
	require.NoError(t, err)
	assert.Equal(t, OrderStatusCancelled, o.Status)

	_, err = o.Cancel()
	var rule domain.RuleViolation
	require.ErrorAs(t, err, &rule)
	assert.Equal(t, "AcquisitionOrderNotPending", rule.RuleCode())
}

func TestVendorStatusGuards(t *testing.T) {
	v := NewVendor("Ingram", "", "orders@ingram.example", "")
	assert.Equal(t, VendorStatusActive, v.Status)

	err := v.Activate()
	var rule domain.RuleViolation
	require.ErrorAs(t, err, &rule)
	assert.Equal(t, "VendorAlreadyActive", rule.RuleCode())

	require.NoError(t, v.Deactivate())
	err = v.Deactivate()
	require.ErrorAs(t, err, &rule)
	assert.Equal(t, "VendorAlreadyInactive", rule.RuleCode())
}
