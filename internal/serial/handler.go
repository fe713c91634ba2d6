package serial

import (
	"context"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"

	"openlms/internal/jsonrpc"
)

// Handler exposes serial operations over JSON-RPC.
type Handler struct {
	serials *SerialService
}

func NewHandler(serials *SerialService) *Handler {
	return &Handler{serials: serials}
}

func (h *Handler) Register(server *jsonrpc.Server) {
	server.Register("Serial.subscribe", h.subscribe)
	server.Register("Serial.renew_subscription", h.renewSubscription)
	server.Register("Serial.unsubscribe", h.unsubscribe)
	server.Register("Serial.receive_issue", h.receiveIssue)
	server.Register("Serial.mark_issue_missing", h.markIssueMissing)
	server.Register("Serial.mark_issue_lost", h.markIssueLost)
	server.Register("Serial.get", h.getSerial)
	server.Register("Serial.list", h.listSerials)
	server.Register("Serial.list_issues", h.listIssues)
}

type idParams struct {
	ID uuid.UUID `json:"id"`
}

func (h *Handler) subscribe(ctx context.Context, params jsoniter.RawMessage) (any, error) {
	var req struct {
		Title       string    `json:"title"`
		ISSN        string    `json:"issn"`
		ItemID      uuid.UUID `json:"item_id"`
		Frequency   string    `json:"frequency"`
		Description string    `json:"description"`
	}
	if err := jsonrpc.DecodeParams(params, &req); err != nil {
		return nil, err
	}
	return h.serials.SubscribeSerial(ctx, req.Title, req.ISSN, req.ItemID, req.Frequency, req.Description)
}

func (h *Handler) renewSubscription(ctx context.Context, params jsoniter.RawMessage) (any, error) {
	var req idParams
	if err := jsonrpc.DecodeParams(params, &req); err != nil {
		return nil, err
	}
	return h.serials.RenewSerialSubscription(ctx, req.ID)
}

func (h *Handler) unsubscribe(ctx context.Context, params jsoniter.RawMessage) (any, error) {
	var req idParams
	if err := jsonrpc.DecodeParams(params, &req); err != nil {
		return nil, err
	}
	return h.serials.UnsubscribeSerial(ctx, req.ID)
}

func (h *Handler) receiveIssue(ctx context.Context, params jsoniter.RawMessage) (any, error) {
	var req struct {
		SerialID    uuid.UUID  `json:"serial_id"`
		IssueNumber string     `json:"issue_number"`
		CopyID      *uuid.UUID `json:"copy_id"`
	}
	if err := jsonrpc.DecodeParams(params, &req); err != nil {
		return nil, err
	}
	return h.serials.ReceiveIssue(ctx, req.SerialID, req.IssueNumber, req.CopyID)
}

func (h *Handler) markIssueMissing(ctx context.Context, params jsoniter.RawMessage) (any, error) {
	var req struct {
		IssueID uuid.UUID `json:"issue_id"`
	}
	if err := jsonrpc.DecodeParams(params, &req); err != nil {
		return nil, err
	}
	return h.serials.MarkIssueMissing(ctx, req.IssueID)
}

func (h *Handler) markIssueLost(ctx context.Context, params jsoniter.RawMessage) (any, error) {
	var req struct {
		IssueID uuid.UUID `json:"issue_id"`
	}
	if err := jsonrpc.DecodeParams(params, &req); err != nil {
		return nil, err
	}
	return h.serials.MarkIssueLost(ctx, req.IssueID)
}

func (h *Handler) getSerial(ctx context.Context, params jsoniter.RawMessage) (any, error) {
	var req idParams
	if err := jsonrpc.DecodeParams(params, &req); err != nil {
		return nil, err
	}
	return h.serials.GetSerial(ctx, req.ID)
}

func (h *Handler) listSerials(ctx context.Context, _ jsoniter.RawMessage) (any, error) {
	return h.serials.ListSerials(ctx)
}

func (h *Handler) listIssues(ctx context.Context, params jsoniter.RawMessage) (any, error) {
	var req struct {
		SerialID uuid.UUID `json:"serial_id"`
	}
	if err := jsonrpc.DecodeParams(params, &req); err != nil {
		return nil, err
	}
	return h.serials.ListIssuesBySerial(ctx, req.SerialID)
}
