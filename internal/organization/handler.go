package organization

import (
	"context"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"

	"openlms/internal/jsonrpc"
)

// Handler exposes branch and staff operations over JSON-RPC.
type Handler struct {
	branches *BranchService
	staff    *StaffService
}

func NewHandler(branches *BranchService, staff *StaffService) *Handler {
	return &Handler{branches: branches, staff: staff}
}

func (h *Handler) Register(server *jsonrpc.Server) {
	server.Register("Branch.create", h.createBranch)
	server.Register("Branch.update", h.updateBranch)
	server.Register("Branch.assign_manager", h.assignManager)
	server.Register("Branch.close", h.closeBranch)
	server.Register("Branch.get", h.getBranch)
	server.Register("Branch.list", h.listBranches)
	server.Register("Staff.create", h.createStaff)
	server.Register("Staff.update", h.updateStaff)
	server.Register("Staff.update_email", h.updateStaffEmail)
	server.Register("Staff.assign_branch", h.assignStaffBranch)
	server.Register("Staff.assign_role", h.assignStaffRole)
	server.Register("Staff.inactivate", h.inactivateStaff)
	server.Register("Staff.get", h.getStaff)
	server.Register("Staff.list", h.listStaff)
}

type idParams struct {
	ID uuid.UUID `json:"id"`
}

func (h *Handler) createBranch(ctx context.Context, params jsoniter.RawMessage) (any, error) {
	var req struct {
		Name      string     `json:"name"`
		Address   string     `json:"address"`
		Phone     string     `json:"phone"`
		Email     string     `json:"email"`
		ManagerID *uuid.UUID `json:"manager_id"`
	}
	if err := jsonrpc.DecodeParams(params, &req); err != nil {
		return nil, err
	}
	return h.branches.CreateBranch(ctx, req.Name, req.Address, req.Phone, req.Email, req.ManagerID)
}

func (h *Handler) updateBranch(ctx context.Context, params jsoniter.RawMessage) (any, error) {
	var req struct {
		ID      uuid.UUID `json:"id"`
		Name    string    `json:"name"`
		Address string    `json:"address"`
		Phone   string    `json:"phone"`
		Email   string    `json:"email"`
	}
	if err := jsonrpc.DecodeParams(params, &req); err != nil {
		return nil, err
	}
	return h.branches.UpdateBranch(ctx, req.ID, req.Name, req.Address, req.Phone, req.Email)
}

func (h *Handler) assignManager(ctx context.Context, params jsoniter.RawMessage) (any, error) {
	var req struct {
		BranchID  uuid.UUID `json:"branch_id"`
		ManagerID uuid.UUID `json:"manager_id"`
	}
	if err := jsonrpc.DecodeParams(params, &req); err != nil {
		return nil, err
	}
	return h.branches.AssignBranchManager(ctx, req.BranchID, req.ManagerID)
}

func (h *Handler) closeBranch(ctx context.Context, params jsoniter.RawMessage) (any, error) {
	var req idParams
	if err := jsonrpc.DecodeParams(params, &req); err != nil {
		return nil, err
	}
	return h.branches.CloseBranch(ctx, req.ID)
}

func (h *Handler) getBranch(ctx context.Context, params jsoniter.RawMessage) (any, error) {
	var req idParams
	if err := jsonrpc.DecodeParams(params, &req); err != nil {
		return nil, err
	}
	return h.branches.GetBranch(ctx, req.ID)
}

func (h *Handler) listBranches(ctx context.Context, _ jsoniter.RawMessage) (any, error) {
	return h.branches.ListBranches(ctx)
}

func (h *Handler) createStaff(ctx context.Context, params jsoniter.RawMessage) (any, error) {
	var req struct {
		Name  string `json:"name"`
		Email string `json:"email"`
		Role  string `json:"role"`
	}
	if err := jsonrpc.DecodeParams(params, &req); err != nil {
		return nil, err
	}
	return h.staff.CreateStaff(ctx, req.Name, req.Email, req.Role)
}

func (h *Handler) updateStaff(ctx context.Context, params jsoniter.RawMessage) (any, error) {
	var req struct {
		ID   uuid.UUID `json:"id"`
		Name string    `json:"name"`
	}
	if err := jsonrpc.DecodeParams(params, &req); err != nil {
		return nil, err
	}
	return h.staff.UpdateStaff(ctx, req.ID, req.Name)
}

func (h *Handler) updateStaffEmail(ctx context.Context, params jsoniter.RawMessage) (any, error) {
	var req struct {
		ID    uuid.UUID `json:"id"`
		Email string    `json:"email"`
	}
	if err := jsonrpc.DecodeParams(params, &req); err != nil {
		return nil, err
	}
	return h.staff.UpdateStaffEmail(ctx, req.ID, req.Email)
}

func (h *Handler) assignStaffBranch(ctx context.Context, params jsoniter.RawMessage) (any, error) {
	var req struct {
		StaffID  uuid.UUID `json:"staff_id"`
		BranchID uuid.UUID `json:"branch_id"`
	}
	if err := jsonrpc.DecodeParams(params, &req); err != nil {
		return nil, err
	}
	return h.staff.AssignStaffToBranch(ctx, req.StaffID, req.BranchID)
}

func (h *Handler) assignStaffRole(ctx context.Context, params jsoniter.RawMessage) (any, error) {
	var req struct {
		StaffID uuid.UUID `json:"staff_id"`
		Role    string    `json:"role"`
	}
	if err := jsonrpc.DecodeParams(params, &req); err != nil {
		return nil, err
	}
	return h.staff.AssignStaffRole(ctx, req.StaffID, req.Role)
}

func (h *Handler) inactivateStaff(ctx context.Context, params jsoniter.RawMessage) (any, error) {
	var req idParams
	if err := jsonrpc.DecodeParams(params, &req); err != nil {
		return nil, err
	}
	return h.staff.InactivateStaff(ctx, req.ID)
}

func (h *Handler) getStaff(ctx context.Context, params jsoniter.RawMessage) (any, error) {
	var req idParams
	if err := jsonrpc.DecodeParams(params, &req); err != nil {
		return nil, err
	}
	return h.staff.GetStaff(ctx, req.ID)
}

func (h *Handler) listStaff(ctx context.Context, _ jsoniter.RawMessage) (any, error) {
	return h.staff.ListStaff(ctx)
}
