package organization

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"openlms/internal/eventbus"
)

type BranchRepository interface {
	BranchLookup
	FindAllBranches(ctx context.Context) ([]*Branch, error)
	SaveBranch(ctx context.Context, b *Branch) error
}

type StaffRepository interface {
	StaffLookup
	FindAllStaff(ctx context.Context) ([]*Staff, error)
	SaveStaff(ctx context.Context, s *Staff) error
}

// BranchService manages branch lifecycle and manager assignment.
type BranchService struct {
	branches   BranchRepository
	uniqueness *BranchUniquenessService
	assignment *BranchAssignmentService
	bus        *eventbus.Bus
	logger     *slog.Logger
}

func NewBranchService(
	branches BranchRepository,
	uniqueness *BranchUniquenessService,
	assignment *BranchAssignmentService,
	bus *eventbus.Bus,
	logger *slog.Logger,
) *BranchService {
	return &BranchService{
		branches:   branches,
		uniqueness: uniqueness,
		assignment: assignment,
		bus:        bus,
		logger:     logger,
	}
}

func (s *BranchService) CreateBranch(ctx context.Context, name, address, phone, email string, managerID *uuid.UUID) (*Branch, error) {
	b, err := NewBranch(ctx, name, address, phone, email, s.uniqueness)
	if err != nil {
		return nil, err
	}

	if managerID != nil {
		if _, err := b.AssignManager(ctx, *managerID, s.assignment); err != nil {
			return nil, err
		}
	}

	if err := s.branches.SaveBranch(ctx, b); err != nil {
		return nil, err
	}

	s.logger.Info("branch opened", "branch_id", b.ID, "name", b.Name)

	// The store assigns the branch id on first save, so creation-time events
	// are assembled here rather than taken from the aggregate.
	events := []eventbus.Event{BranchOpenedEvent{BranchID: b.ID, BranchName: b.Name}}
	if b.ManagerID != nil {
		events = append(events, ManagerAssignedToBranchEvent{BranchID: b.ID, ManagerID: *b.ManagerID})
	}
	if err := s.bus.Publish(ctx, events...); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *BranchService) UpdateBranch(ctx context.Context, id uuid.UUID, name, address, phone, email string) (*Branch, error) {
	b, err := s.branches.BranchByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var events []eventbus.Event
	if name != "" {
		events, err = b.ChangeName(ctx, name, s.uniqueness)
		if err != nil {
			return nil, err
		}
	}
	if address != "" {
		b.Address = address
	}
	if phone != "" {
		b.Phone = phone
	}
	if email != "" {
		b.Email = email
	}

	if err := s.branches.SaveBranch(ctx, b); err != nil {
		return nil, err
	}
	if err := s.bus.Publish(ctx, events...); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *BranchService) AssignBranchManager(ctx context.Context, branchID, managerID uuid.UUID) (*Branch, error) {
	b, err := s.branches.BranchByID(ctx, branchID)
	if err != nil {
		return nil, err
	}
	events, err := b.AssignManager(ctx, managerID, s.assignment)
	if err != nil {
		return nil, err
	}
	if err := s.branches.SaveBranch(ctx, b); err != nil {
		return nil, err
	}

	s.logger.Info("branch manager assigned", "branch_id", b.ID, "manager_id", managerID)

	if err := s.bus.Publish(ctx, events...); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *BranchService) CloseBranch(ctx context.Context, id uuid.UUID) (*Branch, error) {
	b, err := s.branches.BranchByID(ctx, id)
	if err != nil {
		return nil, err
	}
	events, err := b.Close()
	if err != nil {
		return nil, err
	}
	if err := s.branches.SaveBranch(ctx, b); err != nil {
		return nil, err
	}
	if err := s.bus.Publish(ctx, events...); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *BranchService) GetBranch(ctx context.Context, id uuid.UUID) (*Branch, error) {
	return s.branches.BranchByID(ctx, id)
}

func (s *BranchService) ListBranches(ctx context.Context) ([]*Branch, error) {
	return s.branches.FindAllBranches(ctx)
}

// StaffService manages staff records and branch assignment.
type StaffService struct {
	staff      StaffRepository
	uniqueness *StaffUniquenessService
	bus        *eventbus.Bus
	logger     *slog.Logger
	now        func() time.Time
}

func NewStaffService(staff StaffRepository, uniqueness *StaffUniquenessService, bus *eventbus.Bus, logger *slog.Logger) *StaffService {
	return &StaffService{
		staff:      staff,
		uniqueness: uniqueness,
		bus:        bus,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *StaffService) CreateStaff(ctx context.Context, name, email, role string) (*Staff, error) {
	member, err := NewStaff(ctx, name, email, role, s.now(), s.uniqueness)
	if err != nil {
		return nil, err
	}
	if err := s.staff.SaveStaff(ctx, member); err != nil {
		return nil, err
	}
	s.logger.Info("staff hired", "staff_id", member.ID, "role", member.Role)
	return member, nil
}

func (s *StaffService) UpdateStaff(ctx context.Context, id uuid.UUID, name string) (*Staff, error) {
	member, err := s.staff.StaffByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if name != "" {
		member.Name = name
	}
	if err := s.staff.SaveStaff(ctx, member); err != nil {
		return nil, err
	}
	return member, nil
}

func (s *StaffService) UpdateStaffEmail(ctx context.Context, id uuid.UUID, email string) (*Staff, error) {
	member, err := s.staff.StaffByID(ctx, id)
	if err != nil {
		return nil, err
	}
	events, err := member.ChangeEmail(ctx, email, s.uniqueness)
	if err != nil {
		return nil, err
	}
	if err := s.staff.SaveStaff(ctx, member); err != nil {
		return nil, err
	}
	if err := s.bus.Publish(ctx, events...); err != nil {
		return nil, err
	}
	return member, nil
}

// AssignStaffToBranch moves a staff member to a branch. Also invoked by the
// manager-assignment cascade so a new manager works out of their branch.
func (s *StaffService) AssignStaffToBranch(ctx context.Context, staffID, branchID uuid.UUID) (*Staff, error) {
	member, err := s.staff.StaffByID(ctx, staffID)
	if err != nil {
		return nil, err
	}
	member.AssignToBranch(branchID)
	if err := s.staff.SaveStaff(ctx, member); err != nil {
		return nil, err
	}
	return member, nil
}

func (s *StaffService) AssignStaffRole(ctx context.Context, staffID uuid.UUID, role string) (*Staff, error) {
	member, err := s.staff.StaffByID(ctx, staffID)
	if err != nil {
		return nil, err
	}
	if err := member.ChangeRole(role); err != nil {
		return nil, err
	}
	if err := s.staff.SaveStaff(ctx, member); err != nil {
		return nil, err
	}
	return member, nil
}

func (s *StaffService) InactivateStaff(ctx context.Context, staffID uuid.UUID) (*Staff, error) {
	member, err := s.staff.StaffByID(ctx, staffID)
	if err != nil {
		return nil, err
	}
	if err := member.MarkAsInactive(); err != nil {
		return nil, err
	}
	if err := s.staff.SaveStaff(ctx, member); err != nil {
		return nil, err
	}
	return member, nil
}

func (s *StaffService) GetStaff(ctx context.Context, id uuid.UUID) (*Staff, error) {
	return s.staff.StaffByID(ctx, id)
}

func (s *StaffService) ListStaff(ctx context.Context) ([]*Staff, error) {
	return s.staff.FindAllStaff(ctx)
}
