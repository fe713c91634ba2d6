package acquisition

import (
	"context"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/shopspring/decimal"

	"openlms/internal/jsonrpc"
)

// Handler exposes vendor and acquisition order operations over JSON-RPC.
type Handler struct {
	vendors *VendorService
	orders  *AcquisitionOrderService
}

func NewHandler(vendors *VendorService, orders *AcquisitionOrderService) *Handler {
	return &Handler{vendors: vendors, orders: orders}
}

func (h *Handler) Register(server *jsonrpc.Server) {
	server.Register("Vendor.register", h.registerVendor)
	server.Register("Vendor.update", h.updateVendor)
	server.Register("Vendor.activate", h.activateVendor)
	server.Register("Vendor.deactivate", h.deactivateVendor)
	server.Register("Vendor.get", h.getVendor)
	server.Register("Vendor.list", h.listVendors)
	server.Register("AcquisitionOrder.create", h.createOrder)
	server.Register("AcquisitionOrder.add_line", h.addLine)
	server.Register("AcquisitionOrder.remove_line", h.removeLine)
	server.Register("AcquisitionOrder.submit", h.submitOrder)
	server.Register("AcquisitionOrder.receive_line", h.receiveLine)
	server.Register("AcquisitionOrder.cancel", h.cancelOrder)
	server.Register("AcquisitionOrder.get", h.getOrder)
	server.Register("AcquisitionOrder.list", h.listOrders)
}

type idParams struct {
	ID uuid.UUID `json:"id"`
}

func (h *Handler) registerVendor(ctx context.Context, params jsoniter.RawMessage) (any, error) {
	var req struct {
		Name    string    `json:"name"`
		Address string    `json:"address"`
		Email   string    `json:"email"`
		Phone   string    `json:"phone"`
		StaffID uuid.UUID `json:"staff_id"`
	}
	if err := jsonrpc.DecodeParams(params, &req); err != nil {
		return nil, err
	}
	return h.vendors.RegisterVendor(ctx, req.Name, req.Address, req.Email, req.Phone, req.StaffID)
}

func (h *Handler) updateVendor(ctx context.Context, params jsoniter.RawMessage) (any, error) {
	var req struct {
		ID      uuid.UUID `json:"id"`
		Name    string    `json:"name"`
		Address string    `json:"address"`
		Email   string    `json:"email"`
		Phone   string    `json:"phone"`
	}
	if err := jsonrpc.DecodeParams(params, &req); err != nil {
		return nil, err
	}
	return h.vendors.UpdateVendor(ctx, req.ID, req.Name, req.Address, req.Email, req.Phone)
}

func (h *Handler) activateVendor(ctx context.Context, params jsoniter.RawMessage) (any, error) {
	var req idParams
	if err := jsonrpc.DecodeParams(params, &req); err != nil {
		return nil, err
	}
	return h.vendors.ActivateVendor(ctx, req.ID)
}

func (h *Handler) deactivateVendor(ctx context.Context, params jsoniter.RawMessage) (any, error) {
	var req idParams
	if err := jsonrpc.DecodeParams(params, &req); err != nil {
		return nil, err
	}
	return h.vendors.DeactivateVendor(ctx, req.ID)
}

func (h *Handler) getVendor(ctx context.Context, params jsoniter.RawMessage) (any, error) {
	var req idParams
	if err := jsonrpc.DecodeParams(params, &req); err != nil {
		return nil, err
	}
	return h.vendors.GetVendor(ctx, req.ID)
}

func (h *Handler) listVendors(ctx context.Context, _ jsoniter.RawMessage) (any, error) {
	return h.vendors.ListVendors(ctx)
}

func (h *Handler) createOrder(ctx context.Context, params jsoniter.RawMessage) (any, error) {
	var req struct {
		VendorID uuid.UUID `json:"vendor_id"`
		StaffID  uuid.UUID `json:"staff_id"`
	}
	if err := jsonrpc.DecodeParams(params, &req); err != nil {
		return nil, err
	}
	return h.orders.CreateOrder(ctx, req.VendorID, req.StaffID)
}

func (h *Handler) addLine(ctx context.Context, params jsoniter.RawMessage) (any, error) {
	var req struct {
		OrderID   uuid.UUID       `json:"order_id"`
		ItemID    uuid.UUID       `json:"item_id"`
		UnitPrice decimal.Decimal `json:"unit_price"`
		Quantity  int             `json:"quantity"`
	}
	if err := jsonrpc.DecodeParams(params, &req); err != nil {
		return nil, err
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	return h.orders.AddOrderLine(ctx, req.OrderID, req.ItemID, req.UnitPrice, req.Quantity)
}

func (h *Handler) removeLine(ctx context.Context, params jsoniter.RawMessage) (any, error) {
	var req struct {
		OrderID uuid.UUID `json:"order_id"`
		LineID  uuid.UUID `json:"line_id"`
	}
	if err := jsonrpc.DecodeParams(params, &req); err != nil {
		return nil, err
	}
	return h.orders.RemoveOrderLine(ctx, req.OrderID, req.LineID)
}

func (h *Handler) submitOrder(ctx context.Context, params jsoniter.RawMessage) (any, error) {
	var req idParams
	if err := jsonrpc.DecodeParams(params, &req); err != nil {
		return nil, err
	}
	return h.orders.SubmitOrder(ctx, req.ID)
}

func (h *Handler) receiveLine(ctx context.Context, params jsoniter.RawMessage) (any, error) {
	var req struct {
		OrderID          uuid.UUID `json:"order_id"`
		LineID           uuid.UUID `json:"line_id"`
		ReceivedQuantity *int      `json:"received_quantity"`
	}
	if err := jsonrpc.DecodeParams(params, &req); err != nil {
		return nil, err
	}
	return h.orders.ReceiveOrderLine(ctx, req.OrderID, req.LineID, req.ReceivedQuantity)
}

func (h *Handler) cancelOrder(ctx context.Context, params jsoniter.RawMessage) (any, error) {
	var req idParams
	if err := jsonrpc.DecodeParams(params, &req); err != nil {
		return nil, err
	}
	return h.orders.CancelOrder(ctx, req.ID)
}

func (h *Handler) getOrder(ctx context.Context, params jsoniter.RawMessage) (any, error) {
	var req idParams
	if err := jsonrpc.DecodeParams(params, &req); err != nil {
		return nil, err
	}
	return h.orders.GetOrder(ctx, req.ID)
}

func (h *Handler) listOrders(ctx context.Context, _ jsoniter.RawMessage) (any, error) {
	return h.orders.ListOrders(ctx)
}
