package acquisition

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"openlms/internal/eventbus"
)

type VendorRepository interface {
	VendorByID(ctx context.Context, id uuid.UUID) (*Vendor, error)
	FindAllVendors(ctx context.Context) ([]*Vendor, error)
	SaveVendor(ctx context.Context, v *Vendor) error
}

type OrderRepository interface {
	OrderByID(ctx context.Context, id uuid.UUID) (*AcquisitionOrder, error)
	FindAllOrders(ctx context.Context) ([]*AcquisitionOrder, error)
	SaveOrder(ctx context.Context, o *AcquisitionOrder) error
}

// ItemDirectory confirms ordered items exist in the catalog.
type ItemDirectory interface {
	ItemExists(ctx context.Context, id uuid.UUID) error
}

// StaffDirectory confirms the ordering staff member exists.
type StaffDirectory interface {
	StaffExists(ctx context.Context, id uuid.UUID) error
}

// VendorService manages the vendor roster.
type VendorService struct {
	vendors VendorRepository
	staff   StaffDirectory
	bus     *eventbus.Bus
	logger  *slog.Logger
}

func NewVendorService(vendors VendorRepository, staff StaffDirectory, bus *eventbus.Bus, logger *slog.Logger) *VendorService {
	return &VendorService{vendors: vendors, staff: staff, bus: bus, logger: logger}
}

func (s *VendorService) RegisterVendor(ctx context.Context, name, address, email, phone string, staffID uuid.UUID) (*Vendor, error) {
	if err := s.staff.StaffExists(ctx, staffID); err != nil {
		return nil, err
	}

	v := NewVendor(name, address, email, phone)
	if err := s.vendors.SaveVendor(ctx, v); err != nil {
		return nil, err
	}

	s.logger.Info("vendor registered", "vendor_id", v.ID, "name", v.Name)

	if err := s.bus.Publish(ctx, VendorRegisteredEvent{VendorID: v.ID, StaffID: staffID}); err != nil {
		return nil, err
	}
	return v, nil
}

func (s *VendorService) UpdateVendor(ctx context.Context, id uuid.UUID, name, address, email, phone string) (*Vendor, error) {
	v, err := s.vendors.VendorByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if name != "" {
		v.Name = name
	}
	if address != "" {
		v.Address = address
	}
	if email != "" {
		v.Email = email
	}
	if phone != "" {
		v.Phone = phone
	}
	if err := s.vendors.SaveVendor(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

func (s *VendorService) ActivateVendor(ctx context.Context, id uuid.UUID) (*Vendor, error) {
	v, err := s.vendors.VendorByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := v.Activate(); err != nil {
		return nil, err
	}
	if err := s.vendors.SaveVendor(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

func (s *VendorService) DeactivateVendor(ctx context.Context, id uuid.UUID) (*Vendor, error) {
	v, err := s.vendors.VendorByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := v.Deactivate(); err != nil {
		return nil, err
	}
	if err := s.vendors.SaveVendor(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

func (s *VendorService) GetVendor(ctx context.Context, id uuid.UUID) (*Vendor, error) {
	return s.vendors.VendorByID(ctx, id)
}

func (s *VendorService) ListVendors(ctx context.Context) ([]*Vendor, error) {
	return s.vendors.FindAllVendors(ctx)
}

// AcquisitionOrderService runs purchase orders from creation through receipt.
type AcquisitionOrderService struct {
	orders  OrderRepository
	vendors VendorRepository
	items   ItemDirectory
	staff   StaffDirectory
	bus     *eventbus.Bus
	logger  *slog.Logger
	now     func() time.Time
}

func NewAcquisitionOrderService(
	orders OrderRepository,
	vendors VendorRepository,
	items ItemDirectory,
	staff StaffDirectory,
	bus *eventbus.Bus,
	logger *slog.Logger,
) *AcquisitionOrderService {
	return &AcquisitionOrderService{
		orders:  orders,
		vendors: vendors,
		items:   items,
		staff:   staff,
		bus:     bus,
		logger:  logger,
		now:     time.Now,
	}
}

func (s *AcquisitionOrderService) CreateOrder(ctx context.Context, vendorID, staffID uuid.UUID) (*AcquisitionOrder, error) {
	if _, err := s.vendors.VendorByID(ctx, vendorID); err != nil {
		return nil, err
	}
	if err := s.staff.StaffExists(ctx, staffID); err != nil {
		return nil, err
	}

	o := NewAcquisitionOrder(vendorID, staffID, s.now())
	if err := s.orders.SaveOrder(ctx, o); err != nil {
		return nil, err
	}

	s.logger.Info("acquisition order created", "order_id", o.ID, "vendor_id", vendorID)

	if err := s.bus.Publish(ctx, OrderCreatedEvent{OrderID: o.ID, VendorID: vendorID, StaffID: staffID}); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *AcquisitionOrderService) AddOrderLine(ctx context.Context, orderID, itemID uuid.UUID, unitPrice decimal.Decimal, quantity int) (*AcquisitionOrder, error) {
	o, err := s.orders.OrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := s.items.ItemExists(ctx, itemID); err != nil {
		return nil, err
	}
	if _, err := o.AddLine(itemID, unitPrice, quantity); err != nil {
		return nil, err
	}
	if err := s.orders.SaveOrder(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *AcquisitionOrderService) RemoveOrderLine(ctx context.Context, orderID, lineID uuid.UUID) (*AcquisitionOrder, error) {
	o, err := s.orders.OrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := o.RemoveLine(lineID); err != nil {
		return nil, err
	}
	if err := s.orders.SaveOrder(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *AcquisitionOrderService) SubmitOrder(ctx context.Context, orderID uuid.UUID) (*AcquisitionOrder, error) {
	o, err := s.orders.OrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	events, err := o.Submit()
	if err != nil {
		return nil, err
	}
	if err := s.orders.SaveOrder(ctx, o); err != nil {
		return nil, err
	}

	s.logger.Info("acquisition order submitted", "order_id", o.ID, "lines", len(o.Lines))

	if err := s.bus.Publish(ctx, events...); err != nil {
		return nil, err
	}
	return o, nil
}

// ReceiveOrderLine books a delivery. Receiving the last outstanding line
// closes the order and triggers copy creation for the received stock.
func (s *AcquisitionOrderService) ReceiveOrderLine(ctx context.Context, orderID, lineID uuid.UUID, receivedQuantity *int) (*AcquisitionOrder, error) {
	o, err := s.orders.OrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	events, err := o.ReceiveLine(lineID, receivedQuantity, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.orders.SaveOrder(ctx, o); err != nil {
		return nil, err
	}

	if o.Status == OrderStatusReceived {
		s.logger.Info("acquisition order fully received", "order_id", o.ID)
	}

	if err := s.bus.Publish(ctx, events...); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *AcquisitionOrderService) CancelOrder(ctx context.Context, orderID uuid.UUID) (*AcquisitionOrder, error) {
	o, err := s.orders.OrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	events, err := o.Cancel()
	if err != nil {
		return nil, err
	}
	if err := s.orders.SaveOrder(ctx, o); err != nil {
		return nil, err
	}
	if err := s.bus.Publish(ctx, events...); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *AcquisitionOrderService) GetOrder(ctx context.Context, id uuid.UUID) (*AcquisitionOrder, error) {
	return s.orders.OrderByID(ctx, id)
}

func (s *AcquisitionOrderService) ListOrders(ctx context.Context) ([]*AcquisitionOrder, error) {
	return s.orders.FindAllOrders(ctx)
}
