// Package acquisition manages vendors and purchase orders. Receiving the
// final line of an order publishes an event that stocks the catalog with new
// copies.
package acquisition

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"openlms/internal/domain"
	"openlms/internal/eventbus"
)

// Order lifecycle statuses.
const (
	OrderStatusPending   = "pending"
	OrderStatusSubmitted = "submitted"
	OrderStatusReceived  = "received"
	OrderStatusCancelled = "cancelled"
)

// Order line statuses.
const (
	LineStatusPending           = "pending"
	LineStatusReceived          = "received"
	LineStatusPartiallyReceived = "partially_received"
)

// Vendor statuses.
const (
	VendorStatusActive   = "active"
	VendorStatusInactive = "inactive"
)

// AcquisitionOrder is a purchase order against a vendor. Lines are edited
// while the order is pending and received after submission.
type AcquisitionOrder struct {
	ID           uuid.UUID               `json:"id" db:"id"`
	VendorID     uuid.UUID               `json:"vendor_id" db:"vendor_id"`
	StaffID      uuid.UUID               `json:"staff_id" db:"staff_id"`
	OrderDate    time.Time               `json:"order_date" db:"order_date"`
	ReceivedDate *time.Time              `json:"received_date" db:"received_date"`
	Status       string                  `json:"status" db:"status"`
	Lines        []*AcquisitionOrderLine `json:"lines" db:"-"`
}

func NewAcquisitionOrder(vendorID, staffID uuid.UUID, orderDate time.Time) *AcquisitionOrder {
	return &AcquisitionOrder{
		VendorID:  vendorID,
		StaffID:   staffID,
		OrderDate: domain.DateOnly(orderDate),
		Status:    OrderStatusPending,
	}
}

// AddLine appends a line to a pending order.
func (o *AcquisitionOrder) AddLine(itemID uuid.UUID, unitPrice decimal.Decimal, quantity int) (*AcquisitionOrderLine, error) {
	if o.Status != OrderStatusPending {
		return nil, ErrOrderNotPending(o.ID)
	}
	line := &AcquisitionOrderLine{
		OrderID:   o.ID,
		ItemID:    itemID,
		UnitPrice: unitPrice,
		Quantity:  quantity,
		Status:    LineStatusPending,
	}
	o.Lines = append(o.Lines, line)
	return line, nil
}

// RemoveLine drops a line that has not been received yet. Lines are only
// editable while the order is pending.
func (o *AcquisitionOrder) RemoveLine(lineID uuid.UUID) error {
	if o.Status != OrderStatusPending {
		return ErrOrderNotPending(o.ID)
	}
	for i, line := range o.Lines {
		if line.ID != lineID {
			continue
		}
		if line.IsReceived() {
			return ErrOrderLineAlreadyReceived(lineID, o.ID)
		}
		o.Lines = append(o.Lines[:i], o.Lines[i+1:]...)
		return nil
	}
	return domain.NewNotFound("acquisition_order_line", lineID.String())
}

// Submit locks the line set and sends the order to the vendor.
func (o *AcquisitionOrder) Submit() ([]eventbus.Event, error) {
	if o.Status != OrderStatusPending {
		return nil, ErrOrderNotPending(o.ID)
	}
	if len(o.Lines) == 0 {
		return nil, ErrOrderHasNoLines(o.ID)
	}
	o.Status = OrderStatusSubmitted
	return []eventbus.Event{OrderSubmittedEvent{OrderID: o.ID, VendorID: o.VendorID}}, nil
}

// ReceiveLine books a delivery against one line. A nil receivedQuantity means
// the full ordered quantity arrived. Once every line has been received the
// order closes and reports the received stock.
func (o *AcquisitionOrder) ReceiveLine(lineID uuid.UUID, receivedQuantity *int, today time.Time) ([]eventbus.Event, error) {
	if o.Status != OrderStatusSubmitted {
		return nil, ErrOrderNotSubmitted(lineID, o.ID)
	}

	var received *AcquisitionOrderLine
	for _, line := range o.Lines {
		if line.ID == lineID {
			received = line
			break
		}
	}
	if received == nil {
		return nil, domain.NewNotFound("acquisition_order_line", lineID.String())
	}
	if received.IsFullyReceived() {
		return nil, ErrOrderLineAlreadyReceived(lineID, o.ID)
	}

	quantity := received.Quantity
	if receivedQuantity != nil {
		quantity = *receivedQuantity
	}
	received.Receive(quantity)

	events := []eventbus.Event{OrderLineReceivedEvent{
		OrderID:          o.ID,
		LineID:           received.ID,
		Quantity:         received.Quantity,
		ReceivedQuantity: *received.ReceivedQuantity,
	}}

	for _, line := range o.Lines {
		if !line.IsReceived() {
			return events, nil
		}
	}

	o.Status = OrderStatusReceived
	receivedDate := domain.DateOnly(today)
	o.ReceivedDate = &receivedDate

	itemLines := make([]ReceivedItemLine, 0, len(o.Lines))
	for _, line := range o.Lines {
		itemLines = append(itemLines, ReceivedItemLine{
			ItemID:   line.ItemID,
			Quantity: *line.ReceivedQuantity,
		})
	}
	events = append(events, OrderReceivedEvent{
		OrderID:         o.ID,
		VendorID:        o.VendorID,
		StaffID:         o.StaffID,
		ItemLines:       itemLines,
		AcquisitionDate: receivedDate,
	})
	return events, nil
}

// Cancel withdraws a pending order.
func (o *AcquisitionOrder) Cancel() ([]eventbus.Event, error) {
	if o.Status != OrderStatusPending {
		return nil, ErrOrderNotPending(o.ID)
	}
	o.Status = OrderStatusCancelled
	return []eventbus.Event{OrderCancelledEvent{OrderID: o.ID}}, nil
}

// AcquisitionOrderLine is one item position on an order.
type AcquisitionOrderLine struct {
	ID               uuid.UUID       `json:"id" db:"id"`
	OrderID          uuid.UUID       `json:"order_id" db:"order_id"`
	ItemID           uuid.UUID       `json:"item_id" db:"item_id"`
	UnitPrice        decimal.Decimal `json:"unit_price" db:"unit_price"`
	Quantity         int             `json:"quantity" db:"quantity"`
	ReceivedQuantity *int            `json:"received_quantity" db:"received_quantity"`
	Status           string          `json:"status" db:"status"`
}

// IsReceived reports whether any delivery has been booked against the line.
func (l *AcquisitionOrderLine) IsReceived() bool {
	return l.Status == LineStatusReceived || l.Status == LineStatusPartiallyReceived
}

// IsFullyReceived reports whether the booked delivery covers the ordered
// quantity.
func (l *AcquisitionOrderLine) IsFullyReceived() bool {
	return l.ReceivedQuantity != nil && *l.ReceivedQuantity >= l.Quantity
}

func (l *AcquisitionOrderLine) Receive(receivedQuantity int) {
	l.ReceivedQuantity = &receivedQuantity
	if l.IsFullyReceived() {
		l.Status = LineStatusReceived
	} else {
		l.Status = LineStatusPartiallyReceived
	}
}

// Vendor supplies catalog items.
type Vendor struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Address   string    `json:"address" db:"address"`
	Email     string    `json:"email" db:"email"`
	Phone     string    `json:"phone" db:"phone"`
	Status    string    `json:"status" db:"status"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

func NewVendor(name, address, email, phone string) *Vendor {
	return &Vendor{
		Name:    name,
		Address: address,
		Email:   email,
		Phone:   phone,
		Status:  VendorStatusActive,
	}
}

func (v *Vendor) Activate() error {
	if v.Status == VendorStatusActive {
		return ErrVendorAlreadyActive(v.ID)
	}
	v.Status = VendorStatusActive
	return nil
}

func (v *Vendor) Deactivate() error {
	if v.Status == VendorStatusInactive {
		return ErrVendorAlreadyInactive(v.ID)
	}
	v.Status = VendorStatusInactive
	return nil
}
