package patron

import (
	"context"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"

	"openlms/internal/jsonrpc"
)

// Handler exposes patron and fine operations over JSON-RPC.
type Handler struct {
	patrons *PatronService
	fines   *FineService
}

func NewHandler(patrons *PatronService, fines *FineService) *Handler {
	return &Handler{patrons: patrons, fines: fines}
}

func (h *Handler) Register(server *jsonrpc.Server) {
	server.Register("Patron.create", h.createPatron)
	server.Register("Patron.update", h.updatePatron)
	server.Register("Patron.update_email", h.updatePatronEmail)
	server.Register("Patron.activate", h.activatePatron)
	server.Register("Patron.suspend", h.suspendPatron)
	server.Register("Patron.reinstate", h.reinstatePatron)
	server.Register("Patron.archive", h.archivePatron)
	server.Register("Patron.unarchive", h.unarchivePatron)
	server.Register("Patron.get", h.getPatron)
	server.Register("Patron.list", h.listPatrons)
	server.Register("Fine.get", h.getFine)
	server.Register("Fine.list", h.listFines)
	server.Register("Fine.list_by_patron", h.listFinesByPatron)
	server.Register("Fine.pay", h.payFine)
	server.Register("Fine.waive", h.waiveFine)
}

type patronIDParams struct {
	ID uuid.UUID `json:"id"`
}

func (h *Handler) createPatron(ctx context.Context, params jsoniter.RawMessage) (any, error) {
	var req struct {
		Name     string    `json:"name"`
		Email    string    `json:"email"`
		BranchID uuid.UUID `json:"branch_id"`
	}
	if err := jsonrpc.DecodeParams(params, &req); err != nil {
		return nil, err
	}
	return h.patrons.RegisterPatron(ctx, req.Name, req.Email, req.BranchID)
}

func (h *Handler) updatePatron(ctx context.Context, params jsoniter.RawMessage) (any, error) {
	var req struct {
		ID   uuid.UUID `json:"id"`
		Name string    `json:"name"`
	}
	if err := jsonrpc.DecodeParams(params, &req); err != nil {
		return nil, err
	}
	return h.patrons.UpdatePatron(ctx, req.ID, req.Name)
}

func (h *Handler) updatePatronEmail(ctx context.Context, params jsoniter.RawMessage) (any, error) {
	var req struct {
		ID    uuid.UUID `json:"id"`
		Email string    `json:"email"`
	}
	if err := jsonrpc.DecodeParams(params, &req); err != nil {
		return nil, err
	}
	return h.patrons.UpdatePatronEmail(ctx, req.ID, req.Email)
}

func (h *Handler) activatePatron(ctx context.Context, params jsoniter.RawMessage) (any, error) {
	var req patronIDParams
	if err := jsonrpc.DecodeParams(params, &req); err != nil {
		return nil, err
	}
	return h.patrons.ActivatePatron(ctx, req.ID)
}

func (h *Handler) suspendPatron(ctx context.Context, params jsoniter.RawMessage) (any, error) {
	var req patronIDParams
	if err := jsonrpc.DecodeParams(params, &req); err != nil {
		return nil, err
	}
	return h.patrons.SuspendPatron(ctx, req.ID)
}

func (h *Handler) reinstatePatron(ctx context.Context, params jsoniter.RawMessage) (any, error) {
	var req patronIDParams
	if err := jsonrpc.DecodeParams(params, &req); err != nil {
		return nil, err
	}
	return h.patrons.ReinstatePatron(ctx, req.ID)
}

func (h *Handler) archivePatron(ctx context.Context, params jsoniter.RawMessage) (any, error) {
	var req patronIDParams
	if err := jsonrpc.DecodeParams(params, &req); err != nil {
		return nil, err
	}
	return h.patrons.ArchivePatron(ctx, req.ID)
}

func (h *Handler) unarchivePatron(ctx context.Context, params jsoniter.RawMessage) (any, error) {
	var req patronIDParams
	if err := jsonrpc.DecodeParams(params, &req); err != nil {
		return nil, err
	}
	return h.patrons.UnarchivePatron(ctx, req.ID)
}

func (h *Handler) getPatron(ctx context.Context, params jsoniter.RawMessage) (any, error) {
	var req patronIDParams
	if err := jsonrpc.DecodeParams(params, &req); err != nil {
		return nil, err
	}
	return h.patrons.GetPatron(ctx, req.ID)
}

func (h *Handler) listPatrons(ctx context.Context, _ jsoniter.RawMessage) (any, error) {
	return h.patrons.ListPatrons(ctx)
}

func (h *Handler) getFine(ctx context.Context, params jsoniter.RawMessage) (any, error) {
	var req patronIDParams
	if err := jsonrpc.DecodeParams(params, &req); err != nil {
		return nil, err
	}
	return h.fines.GetFine(ctx, req.ID)
}

func (h *Handler) listFines(ctx context.Context, _ jsoniter.RawMessage) (any, error) {
	return h.fines.ListFines(ctx)
}

func (h *Handler) listFinesByPatron(ctx context.Context, params jsoniter.RawMessage) (any, error) {
	var req struct {
		PatronID uuid.UUID `json:"patron_id"`
	}
	if err := jsonrpc.DecodeParams(params, &req); err != nil {
		return nil, err
	}
	return h.fines.ListFinesByPatron(ctx, req.PatronID)
}

func (h *Handler) payFine(ctx context.Context, params jsoniter.RawMessage) (any, error) {
	var req patronIDParams
	if err := jsonrpc.DecodeParams(params, &req); err != nil {
		return nil, err
	}
	return h.fines.PayFine(ctx, req.ID)
}

func (h *Handler) waiveFine(ctx context.Context, params jsoniter.RawMessage) (any, error) {
	var req patronIDParams
	if err := jsonrpc.DecodeParams(params, &req); err != nil {
		return nil, err
	}
	return h.fines.WaiveFine(ctx, req.ID)
}
