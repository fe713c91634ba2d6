package organization

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"openlms/internal/domain"
)

// BranchLookup resolves branches for the guard services.
type BranchLookup interface {
	BranchByID(ctx context.Context, id uuid.UUID) (*Branch, error)
	BranchExistsByName(ctx context.Context, name string) (bool, error)
}

// StaffLookup resolves staff for the guard services.
type StaffLookup interface {
	StaffByID(ctx context.Context, id uuid.UUID) (*Staff, error)
	StaffExistsByEmail(ctx context.Context, email string) (bool, error)
}

// BranchUniquenessService checks that a branch name is not already taken.
type BranchUniquenessService struct {
	branches BranchLookup
}

func NewBranchUniquenessService(branches BranchLookup) *BranchUniquenessService {
	return &BranchUniquenessService{branches: branches}
}

func (s *BranchUniquenessService) IsNameUnique(ctx context.Context, name string) (bool, error) {
	exists, err := s.branches.BranchExistsByName(ctx, name)
	if err != nil {
		return false, err
	}
	return !exists, nil
}

// StaffUniquenessService checks that a staff email is not already taken.
type StaffUniquenessService struct {
	staff StaffLookup
}

func NewStaffUniquenessService(staff StaffLookup) *StaffUniquenessService {
	return &StaffUniquenessService{staff: staff}
}

func (s *StaffUniquenessService) IsEmailUnique(ctx context.Context, email string) (bool, error) {
	exists, err := s.staff.StaffExistsByEmail(ctx, email)
	if err != nil {
		return false, err
	}
	return !exists, nil
}

// BranchAssignmentService permits manager assignment only when the branch
// exists and the candidate is existing staff with the manager role.
type BranchAssignmentService struct {
	branches BranchLookup
	staff    StaffLookup
}

func NewBranchAssignmentService(branches BranchLookup, staff StaffLookup) *BranchAssignmentService {
	return &BranchAssignmentService{branches: branches, staff: staff}
}

func (s *BranchAssignmentService) CanAssignManager(ctx context.Context, branchID, staffID uuid.UUID) (bool, error) {
	if branchID != uuid.Nil {
		if _, err := s.branches.BranchByID(ctx, branchID); err != nil {
			var notFound *domain.NotFoundError
			if errors.As(err, &notFound) {
				return false, nil
			}
			return false, err
		}
	}
	candidate, err := s.staff.StaffByID(ctx, staffID)
	if err != nil {
		var notFound *domain.NotFoundError
		if errors.As(err, &notFound) {
			return false, nil
		}
		return false, err
	}
	return candidate.Role == RoleManager, nil
}
