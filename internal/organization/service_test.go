package organization

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

type memOrgStore struct {
	branches map[uuid.UUID]*Branch
	staff    map[uuid.UUID]*Staff
}

func newMemOrgStore() *memOrgStore {
	return &memOrgStore{branches: map[uuid.UUID]*Branch{}, staff: map[uuid.UUID]*Staff{}}
}

func (m *memOrgStore) BranchByID(_ context.Context, id uuid.UUID) (*Branch, error) {
	if b, ok := m.branches[id]; ok {
		return b, nil
	}
	return nil, domain.NewNotFound("branch", id.String())
}

func (m *memOrgStore) BranchExistsByName(_ context.Context, name string) (bool, error) {
	for _, b := range m.branches {
		if b.Name == name {
			return true, nil
		}
	}
	return false, nil
}

func (m *memOrgStore) FindAllBranches(_ context.Context) ([]*Branch, error) {
	branches := []*Branch{}
	for _, b := range m.branches {
		branches = append(branches, b)
	}
	return branches, nil
}

func (m *memOrgStore) SaveBranch(_ context.Context, b *Branch) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	m.branches[b.ID] = b
	return nil
}

func (m *memOrgStore) StaffByID(_ context.Context, id uuid.UUID) (*Staff, error) {
	if s, ok := m.staff[id]; ok {
		return s, nil
	}
	return nil, domain.NewNotFound("staff", id.String())
}

func (m *memOrgStore) StaffExistsByEmail(_ context.Context, email string) (bool, error) {
	for _, s := range m.staff {
		if s.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (m *memOrgStore) FindAllStaff(_ context.Context) ([]*Staff, error) {
	staff := []*Staff{}
	for _, s := range m.staff {
		staff = append(staff, s)
	}
	return staff, nil
}

func (m *memOrgStore) SaveStaff(_ context.Context, member *Staff) error {
	if member.ID == uuid.Nil {
		member.ID = uuid.New()
	}
	m.staff[member.ID] = member
	return nil
}

func newBranchService(store *memOrgStore, bus *eventbus.Bus) *BranchService {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewBranchService(
		store,
		NewBranchUniquenessService(store),
		NewBranchAssignmentService(store, store),
		bus,
		logger,
	)
}

func TestCreateBranchWithManagerPublishesSavedBranchID(t *testing.T) {
	ctx := context.Background()
	store := newMemOrgStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	bus := eventbus.New(logger)
	svc := newBranchService(store, bus)

	manager := &Staff{
		Name:     "Dana",
		Email:    "dana@example.com",
		Role:     RoleManager,
		Status:   StaffStatusActive,
		HireDate: time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, store.SaveStaff(ctx, manager))

	var assigned []ManagerAssignedToBranchEvent
	bus.Subscribe(EventManagerAssigned, func(_ context.Context, event eventbus.Event) error {
		e, ok := event.(ManagerAssignedToBranchEvent)
		if ok {
			assigned = append(assigned, e)
		}
		return nil
	})

	b, err := svc.CreateBranch(ctx, "Main", "1 Main St", "", "main@example.com", &manager.ID)
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, b.ID)

	require.Len(t, assigned, 1)
	assert.Equal(t, b.ID, assigned[0].BranchID)
	assert.Equal(t, manager.ID, assigned[0].ManagerID)
}

func TestCreateBranchWithoutManagerPublishesNoAssignment(t *testing.T) {
	ctx := context.Background()
	store := newMemOrgStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	bus := eventbus.New(logger)
	svc := newBranchService(store, bus)

	var assigned int
	bus.Subscribe(EventManagerAssigned, func(_ context.Context, _ eventbus.Event) error {
		assigned++
		return nil
	})

	b, err := svc.CreateBranch(ctx, "Main", "1 Main St", "", "main@example.com", nil)
	require.NoError(t, err)
	assert.Nil(t, b.ManagerID)
	assert.Zero(t, assigned)
}
