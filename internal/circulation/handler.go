package circulation

import (
	"context"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"

	"openlms/internal/jsonrpc"
)

// Handler exposes loan and hold operations over JSON-RPC.
type Handler struct {
	loans *LoanService
	holds *HoldService
}

func NewHandler(loans *LoanService, holds *HoldService) *Handler {
	return &Handler{loans: loans, holds: holds}
}

func (h *Handler) Register(server *jsonrpc.Server) {
	server.Register("Loan.checkout_copy", h.checkout)
	server.Register("Loan.checkin_copy", h.checkin)
	server.Register("Loan.damaged_copy", h.damaged)
	server.Register("Loan.lost_copy", h.lost)
	server.Register("Loan.renew", h.renew)
	server.Register("Loan.get", h.getLoan)
	server.Register("Loan.list", h.listLoans)
	server.Register("Loan.list_by_patron", h.listLoansByPatron)
	server.Register("Hold.place", h.placeHold)
	server.Register("Hold.ready", h.readyHold)
	server.Register("Hold.pickup", h.pickupHold)
	server.Register("Hold.expire", h.expireHold)
	server.Register("Hold.cancel", h.cancelHold)
	server.Register("Hold.get", h.getHold)
	server.Register("Hold.list", h.listHolds)
}

type idParams struct {
	ID uuid.UUID `json:"id"`
}

func (h *Handler) checkout(ctx context.Context, params jsoniter.RawMessage) (any, error) {
	var req struct {
		CopyID     uuid.UUID `json:"copy_id"`
		PatronID   uuid.UUID `json:"patron_id"`
		StaffOutID uuid.UUID `json:"staff_out_id"`
	}
	if err := jsonrpc.DecodeParams(params, &req); err != nil {
		return nil, err
	}
	return h.loans.CheckoutCopy(ctx, req.CopyID, req.PatronID, req.StaffOutID)
}

func (h *Handler) checkin(ctx context.Context, params jsoniter.RawMessage) (any, error) {
	var req struct {
		LoanID    uuid.UUID `json:"loan_id"`
		StaffInID uuid.UUID `json:"staff_in_id"`
	}
	if err := jsonrpc.DecodeParams(params, &req); err != nil {
		return nil, err
	}
	return h.loans.CheckinCopy(ctx, req.LoanID, req.StaffInID)
}

func (h *Handler) damaged(ctx context.Context, params jsoniter.RawMessage) (any, error) {
	var req struct {
		LoanID uuid.UUID `json:"loan_id"`
	}
	if err := jsonrpc.DecodeParams(params, &req); err != nil {
		return nil, err
	}
	return h.loans.DamagedCopy(ctx, req.LoanID)
}

func (h *Handler) lost(ctx context.Context, params jsoniter.RawMessage) (any, error) {
	var req struct {
		LoanID uuid.UUID `json:"loan_id"`
	}
	if err := jsonrpc.DecodeParams(params, &req); err != nil {
		return nil, err
	}
	return h.loans.LostCopy(ctx, req.LoanID)
}

func (h *Handler) renew(ctx context.Context, params jsoniter.RawMessage) (any, error) {
	var req struct {
		LoanID uuid.UUID `json:"loan_id"`
	}
	if err := jsonrpc.DecodeParams(params, &req); err != nil {
		return nil, err
	}
	return h.loans.RenewLoan(ctx, req.LoanID)
}

func (h *Handler) getLoan(ctx context.Context, params jsoniter.RawMessage) (any, error) {
	var req idParams
	if err := jsonrpc.DecodeParams(params, &req); err != nil {
		return nil, err
	}
	return h.loans.GetLoan(ctx, req.ID)
}

func (h *Handler) listLoans(ctx context.Context, _ jsoniter.RawMessage) (any, error) {
	return h.loans.ListLoans(ctx)
}

func (h *Handler) listLoansByPatron(ctx context.Context, params jsoniter.RawMessage) (any, error) {
	var req struct {
		PatronID uuid.UUID `json:"patron_id"`
	}
	if err := jsonrpc.DecodeParams(params, &req); err != nil {
		return nil, err
	}
	return h.loans.ListLoansByPatron(ctx, req.PatronID)
}

func (h *Handler) placeHold(ctx context.Context, params jsoniter.RawMessage) (any, error) {
	var req struct {
		PatronID uuid.UUID  `json:"patron_id"`
		ItemID   uuid.UUID  `json:"item_id"`
		CopyID   *uuid.UUID `json:"copy_id"`
	}
	if err := jsonrpc.DecodeParams(params, &req); err != nil {
		return nil, err
	}
	return h.holds.PlaceHold(ctx, req.PatronID, req.ItemID, req.CopyID)
}

func (h *Handler) readyHold(ctx context.Context, params jsoniter.RawMessage) (any, error) {
	var req struct {
		HoldID uuid.UUID `json:"hold_id"`
		CopyID uuid.UUID `json:"copy_id"`
	}
	if err := jsonrpc.DecodeParams(params, &req); err != nil {
		return nil, err
	}
	return h.holds.ReadyHoldForPickup(ctx, req.HoldID, req.CopyID)
}

func (h *Handler) pickupHold(ctx context.Context, params jsoniter.RawMessage) (any, error) {
	var req struct {
		HoldID     uuid.UUID `json:"hold_id"`
		StaffOutID uuid.UUID `json:"staff_out_id"`
		CopyID     uuid.UUID `json:"copy_id"`
	}
	if err := jsonrpc.DecodeParams(params, &req); err != nil {
		return nil, err
	}
	return h.holds.PickupHold(ctx, req.HoldID, req.StaffOutID, req.CopyID)
}

func (h *Handler) expireHold(ctx context.Context, params jsoniter.RawMessage) (any, error) {
	var req struct {
		HoldID uuid.UUID `json:"hold_id"`
	}
	if err := jsonrpc.DecodeParams(params, &req); err != nil {
		return nil, err
	}
	return h.holds.ExpireHold(ctx, req.HoldID)
}

func (h *Handler) cancelHold(ctx context.Context, params jsoniter.RawMessage) (any, error) {
	var req struct {
		HoldID uuid.UUID `json:"hold_id"`
	}
	if err := jsonrpc.DecodeParams(params, &req); err != nil {
		return nil, err
	}
	return h.holds.CancelHold(ctx, req.HoldID)
}

func (h *Handler) getHold(ctx context.Context, params jsoniter.RawMessage) (any, error) {
	var req idParams
	if err := jsonrpc.DecodeParams(params, &req); err != nil {
		return nil, err
	}
	return h.holds.GetHold(ctx, req.ID)
}

func (h *Handler) listHolds(ctx context.Context, _ jsoniter.RawMessage) (any, error) {
	return h.holds.ListHolds(ctx)
}
