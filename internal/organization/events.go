package organization

import "github.com/google/uuid"

const (
	EventBranchOpened      = "branch.opened"
	EventBranchNameChanged = "branch.name_changed"
	EventBranchClosed      = "branch.closed"
	EventManagerAssigned   = "branch.manager_assigned"
	EventStaffEmailChanged = "staff.email_changed"
)

type BranchOpenedEvent struct {
	BranchID   uuid.UUID
	BranchName string
}

func (e BranchOpenedEvent) EventName() string { return EventBranchOpened }

type BranchNameChangedEvent struct {
	BranchID uuid.UUID
	OldName  string
	NewName  string
}

func (e BranchNameChangedEvent) EventName() string { return EventBranchNameChanged }

type BranchClosedEvent struct {
	BranchID uuid.UUID
}

func (e BranchClosedEvent) EventName() string { return EventBranchClosed }

type ManagerAssignedToBranchEvent struct {
	BranchID  uuid.UUID
	ManagerID uuid.UUID
}

func (e ManagerAssignedToBranchEvent) EventName() string { return EventManagerAssigned }

type StaffEmailChangedEvent struct {
	StaffID  uuid.UUID
	OldEmail string
	NewEmail string
}

func (e StaffEmailChangedEvent) EventName() string { return EventStaffEmailChanged }
