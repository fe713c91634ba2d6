// Package organization manages library branches and the staff who run them.
package organization

import (
	"context"
	"time"

	"github.com/google/uuid"

	"openlms/internal/domain"
	"openlms/internal/eventbus"
)

// Branch lifecycle statuses. A branch opens without a manager and becomes
// active once one is assigned.
const (
	BranchStatusOpen   = "open"
	BranchStatusActive = "active"
	BranchStatusClosed = "closed"
)

// Staff roles.
const (
	RoleLibrarian  = "librarian"
	RoleTechnician = "technician"
	RoleManager    = "manager"
)

// Staff statuses.
const (
	StaffStatusActive   = "active"
	StaffStatusInactive = "inactive"
)

var validRoles = map[string]bool{
	RoleLibrarian:  true,
	RoleTechnician: true,
	RoleManager:    true,
}

// Branch is a physical library location.
type Branch struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	Name      string     `json:"name" db:"name"`
	Address   string     `json:"address" db:"address"`
	Phone     string     `json:"phone" db:"phone"`
	Email     string     `json:"email" db:"email"`
	Status    string     `json:"status" db:"status"`
	ManagerID *uuid.UUID `json:"manager_id" db:"manager_id"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
}

// NewBranch opens a branch after a name-uniqueness check.
func NewBranch(ctx context.Context, name, address, phone, email string, uniqueness *BranchUniquenessService) (*Branch, error) {
	unique, err := uniqueness.IsNameUnique(ctx, name)
	if err != nil {
		return nil, err
	}
	if !unique {
		return nil, ErrBranchNameAlreadyExists(name)
	}
	return &Branch{
		Name:    name,
		Address: address,
		Phone:   phone,
		Email:   email,
		Status:  BranchStatusOpen,
	}, nil
}

// ChangeName renames the branch after a uniqueness check. Renaming to the
// current name is a no-op.
func (b *Branch) ChangeName(ctx context.Context, name string, uniqueness *BranchUniquenessService) ([]eventbus.Event, error) {
	if name == b.Name {
		return nil, nil
	}
	unique, err := uniqueness.IsNameUnique(ctx, name)
	if err != nil {
		return nil, err
	}
	if !unique {
		return nil, ErrBranchNameAlreadyExists(name)
	}

	oldName := b.Name
	b.Name = name
	return []eventbus.Event{BranchNameChangedEvent{
		BranchID: b.ID,
		OldName:  oldName,
		NewName:  name,
	}}, nil
}

// AssignManager sets the branch manager and activates the branch. The
// candidate must be existing staff with the manager role. Re-assigning the
// current manager is a no-op.
func (b *Branch) AssignManager(ctx context.Context, managerID uuid.UUID, assignment *BranchAssignmentService) ([]eventbus.Event, error) {
	ok, err := assignment.CanAssignManager(ctx, b.ID, managerID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrStaffNotManager(managerID)
	}
	if b.ManagerID != nil && *b.ManagerID == managerID {
		return nil, nil
	}

	b.ManagerID = &managerID
	b.Status = BranchStatusActive
	return []eventbus.Event{ManagerAssignedToBranchEvent{
		BranchID:  b.ID,
		ManagerID: managerID,
	}}, nil
}

// Close shuts the branch. Closing an already-closed branch fails.
func (b *Branch) Close() ([]eventbus.Event, error) {
	if b.Status == BranchStatusClosed {
		return nil, ErrBranchAlreadyClosed(b.ID)
	}
	b.Status = BranchStatusClosed
	return []eventbus.Event{BranchClosedEvent{BranchID: b.ID}}, nil
}

// Staff is a library employee, optionally assigned to a branch.
type Staff struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	Name      string     `json:"name" db:"name"`
	Email     string     `json:"email" db:"email"`
	BranchID  *uuid.UUID `json:"branch_id" db:"branch_id"`
	Role      string     `json:"role" db:"role"`
	HireDate  time.Time  `json:"hire_date" db:"hire_date"`
	Status    string     `json:"status" db:"status"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
}

// NewStaff hires a staff member after an email-uniqueness check.
func NewStaff(ctx context.Context, name, email, role string, hireDate time.Time, uniqueness *StaffUniquenessService) (*Staff, error) {
	if !validRoles[role] {
		return nil, ErrInvalidStaffRole(role)
	}
	unique, err := uniqueness.IsEmailUnique(ctx, email)
	if err != nil {
		return nil, err
	}
	if !unique {
		return nil, ErrStaffEmailAlreadyExists(email)
	}
	return &Staff{
		Name:     name,
		Email:    email,
		Role:     role,
		HireDate: domain.DateOnly(hireDate),
		Status:   StaffStatusActive,
	}, nil
}

// ChangeEmail updates the staff email after a uniqueness check.
func (s *Staff) ChangeEmail(ctx context.Context, email string, uniqueness *StaffUniquenessService) ([]eventbus.Event, error) {
	if email == s.Email {
		return nil, nil
	}
	unique, err := uniqueness.IsEmailUnique(ctx, email)
	if err != nil {
		return nil, err
	}
	if !unique {
		return nil, ErrStaffEmailAlreadyExists(email)
	}

	oldEmail := s.Email
	s.Email = email
	return []eventbus.Event{StaffEmailChangedEvent{
		StaffID:  s.ID,
		OldEmail: oldEmail,
		NewEmail: email,
	}}, nil
}

func (s *Staff) ChangeRole(role string) error {
	if !validRoles[role] {
		return ErrInvalidStaffRole(role)
	}
	s.Role = role
	return nil
}

// AssignToBranch moves the staff member to the given branch.
func (s *Staff) AssignToBranch(branchID uuid.UUID) {
	s.BranchID = &branchID
}

func (s *Staff) MarkAsInactive() error {
	if s.Status != StaffStatusActive {
		return ErrStaffNotActive(s.ID)
	}
	s.Status = StaffStatusInactive
	return nil
}
