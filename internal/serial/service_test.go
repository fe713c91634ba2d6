package serial

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"openlms/internal/domain"
	"openlms/internal/eventbus"
)

type memStore struct {
	serials map[uuid.UUID]*Serial
	issues  map[uuid.UUID]*SerialIssue
}

func newMemStore() *memStore {
	return &memStore{serials: map[uuid.UUID]*Serial{}, issues: map[uuid.UUID]*SerialIssue{}}
}

func (m *memStore) SerialByID(_ context.Context, id uuid.UUID) (*Serial, error) {
	if s, ok := m.serials[id]; ok {
		return s, nil
	}
	return nil, domain.NewNotFound("serial", id.String())
}

func (m *memStore) FindAllSerials(_ context.Context) ([]*Serial, error) {
	serials := []*Serial{}
	for _, s := range m.serials {
		serials = append(serials, s)
	}
	return serials, nil
}

func (m *memStore) SaveSerial(_ context.Context, s *Serial) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	m.serials[s.ID] = s
	return nil
}

func (m *memStore) IssueByID(_ context.Context, id uuid.UUID) (*SerialIssue, error) {
	if i, ok := m.issues[id]; ok {
		return i, nil
	}
	return nil, domain.NewNotFound("serial_issue", id.String())
}

func (m *memStore) FindIssuesBySerial(_ context.Context, serialID uuid.UUID) ([]*SerialIssue, error) {
	issues := []*SerialIssue{}
	for _, i := range m.issues {
		if i.SerialID == serialID {
			issues = append(issues, i)
		}
	}
	return issues, nil
}

func (m *memStore) SaveIssue(_ context.Context, issue *SerialIssue) error {
	if issue.ID == uuid.Nil {
		issue.ID = uuid.New()
	}
	m.issues[issue.ID] = issue
	return nil
}

type existsAll struct{}

func (existsAll) ItemExists(_ context.Context, _ uuid.UUID) error { return nil }
func (existsAll) CopyExists(_ context.Context, _ uuid.UUID) error { return nil }

func newService(store *memStore) *SerialService {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewSerialService(store, store, existsAll{}, existsAll{}, eventbus.New(logger), logger)
}

func TestSubscribeValidatesFrequency(t *testing.T) {
	svc := newService(newMemStore())

	_, err := svc.SubscribeSerial(context.Background(), "Go Gazette", "1234-5678", uuid.New(), "fortnightly", "")
	var rule domain.RuleViolation
	require.ErrorAs(t, err, &rule)
	assert.Equal(t, "InvalidSerialFrequency", rule.RuleCode())

	serial, err := svc.SubscribeSerial(context.Background(), "Go Gazette", "1234-5678", uuid.New(), FrequencyMonthly, "")
	require.NoError(t, err)
	assert.Equal(t, StatusActive, serial.Status)
}

func TestSubscriptionLifecycle(t *testing.T) {
	store := newMemStore()
	svc := newService(store)

	serial, err := svc.SubscribeSerial(context.Background(), "Go Gazette", "1234-5678", uuid.New(), FrequencyWeekly, "")
	require.NoError(t, err)

	_, err = svc.RenewSerialSubscription(context.Background(), serial.ID)
	var rule domain.RuleViolation
	require.ErrorAs(t, err, &rule)
	assert.Equal(t, "SerialAlreadyActive", rule.RuleCode())

	_, err = svc.UnsubscribeSerial(context.Background(), serial.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusInactive, serial.Status)

	_, err = svc.RenewSerialSubscription(context.Background(), serial.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusActive, serial.Status)
}

func TestReceiveIssueRequiresActiveSerial(t *testing.T) {
	store := newMemStore()
	svc := newService(store)
	svc.now = func() time.Time { return time.Date(2026, time.April, 1, 10, 0, 0, 0, time.UTC) }

	serial, err := svc.SubscribeSerial(context.Background(), "Go Gazette", "1234-5678", uuid.New(), FrequencyWeekly, "")
	require.NoError(t, err)

	issue, err := svc.ReceiveIssue(context.Background(), serial.ID, "2026-14", nil)
	require.NoError(t, err)
	assert.Equal(t, IssueStatusReceived, issue.Status)
	assert.Equal(t, time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC), issue.DateReceived)

	_, err = svc.UnsubscribeSerial(context.Background(), serial.ID)
	require.NoError(t, err)

	_, err = svc.ReceiveIssue(context.Background(), serial.ID, "2026-15", nil)
	var rule domain.RuleViolation
	require.ErrorAs(t, err, &rule)
	assert.Equal(t, "SerialNotActive", rule.RuleCode())
}

func TestIssueStatusTransitions(t *testing.T) {
	store := newMemStore()
	svc := newService(store)

	serial, err := svc.SubscribeSerial(context.Background(), "Go Gazette", "1234-5678", uuid.New(), FrequencyWeekly, "")
	require.NoError(t, err)
	issue, err := svc.ReceiveIssue(context.Background(), serial.ID, "2026-14", nil)
	require.NoError(t, err)

	updated, err := svc.MarkIssueMissing(context.Background(), issue.ID)
	require.NoError(t, err)
	assert.Equal(t, IssueStatusMissing, updated.Status)

	updated, err = svc.MarkIssueLost(context.Background(), issue.ID)
	require.NoError(t, err)
	assert.Equal(t, IssueStatusLost, updated.Status)

	issues, err := svc.ListIssuesBySerial(context.Background(), serial.ID)
	require.NoError(t, err)
	require.Len(t, issues, 1)
}
