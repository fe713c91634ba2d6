package acquisition

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"openlms/internal/domain"
)

var dialect = goqu.Dialect("postgres")

// Store persists vendors and acquisition orders in Postgres. Order lines are
// loaded and saved with their order.
type Store struct {
	db *sqlx.DB
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

func (s *Store) VendorByID(ctx context.Context, id uuid.UUID) (*Vendor, error) {
	query, args, err := dialect.From("vendors").Where(goqu.Ex{"id": id}).Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build vendor query: %w", err)
	}

	var v Vendor
	if err := s.db.GetContext(ctx, &v, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewNotFound("vendor", id.String())
		}
		return nil, fmt.Errorf("query vendor: %w", err)
	}
	return &v, nil
}

func (s *Store) FindAllVendors(ctx context.Context) ([]*Vendor, error) {
	query, args, err := dialect.From("vendors").Order(goqu.I("name").Asc()).Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build vendors query: %w", err)
	}

	vendors := []*Vendor{}
	if err := s.db.SelectContext(ctx, &vendors, query, args...); err != nil {
		return nil, fmt.Errorf("query vendors: %w", err)
	}
	return vendors, nil
}

func (s *Store) SaveVendor(ctx context.Context, v *Vendor) error {
	now := time.Now().UTC()

	if v.ID == uuid.Nil {
		v.ID = uuid.New()
		v.CreatedAt = now
		v.UpdatedAt = now

		query, args, err := dialect.Insert("vendors").Rows(goqu.Record{
			"id":         v.ID,
			"name":       v.Name,
			"address":    v.Address,
			"email":      v.Email,
			"phone":      v.Phone,
			"status":     v.Status,
			"created_at": v.CreatedAt,
			"updated_at": v.UpdatedAt,
		}).Prepared(true).ToSQL()
		if err != nil {
			return fmt.Errorf("build vendor insert: %w", err)
		}
		if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert vendor: %w", err)
		}
		return nil
	}

	v.UpdatedAt = now
	query, args, err := dialect.Update("vendors").Set(goqu.Record{
		"name":       v.Name,
		"address":    v.Address,
		"email":      v.Email,
		"phone":      v.Phone,
		"status":     v.Status,
		"updated_at": v.UpdatedAt,
	}).Where(goqu.Ex{"id": v.ID}).Prepared(true).ToSQL()
	if err != nil {
		return fmt.Errorf("build vendor update: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update vendor: %w", err)
	}
	return nil
}

func (s *Store) OrderByID(ctx context.Context, id uuid.UUID) (*AcquisitionOrder, error) {
	query, args, err := dialect.From("acquisition_orders").Where(goqu.Ex{"id": id}).Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build order query: %w", err)
	}

	var o AcquisitionOrder
	if err := s.db.GetContext(ctx, &o, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewNotFound("acquisition_order", id.String())
		}
		return nil, fmt.Errorf("query order: %w", err)
	}

	if err := s.loadLines(ctx, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

func (s *Store) FindAllOrders(ctx context.Context) ([]*AcquisitionOrder, error) {
	query, args, err := dialect.From("acquisition_orders").
		Order(goqu.I("order_date").Desc()).
		Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build orders query: %w", err)
	}

	orders := []*AcquisitionOrder{}
	if err := s.db.SelectContext(ctx, &orders, query, args...); err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	for _, o := range orders {
		if err := s.loadLines(ctx, o); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

func (s *Store) loadLines(ctx context.Context, o *AcquisitionOrder) error {
	query, args, err := dialect.From("acquisition_order_lines").
		Where(goqu.Ex{"order_id": o.ID}).
		Order(goqu.I("id").Asc()).
		Prepared(true).ToSQL()
	if err != nil {
		return fmt.Errorf("build order lines query: %w", err)
	}

	lines := []*AcquisitionOrderLine{}
	if err := s.db.SelectContext(ctx, &lines, query, args...); err != nil {
		return fmt.Errorf("query order lines: %w", err)
	}
	o.Lines = lines
	return nil
}

// SaveOrder writes the order row and reconciles its line set: new lines are
// inserted, existing ones updated, and lines removed from the order deleted.
func (s *Store) SaveOrder(ctx context.Context, o *AcquisitionOrder) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
		for _, line := range o.Lines {
			line.OrderID = o.ID
		}

		query, args, err := dialect.Insert("acquisition_orders").Rows(goqu.Record{
			"id":            o.ID,
			"vendor_id":     o.VendorID,
			"staff_id":      o.StaffID,
			"order_date":    o.OrderDate,
			"received_date": o.ReceivedDate,
			"status":        o.Status,
		}).Prepared(true).ToSQL()
		if err != nil {
			return fmt.Errorf("build order insert: %w", err)
		}
		if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert order: %w", err)
		}
	} else {
		query, args, err := dialect.Update("acquisition_orders").Set(goqu.Record{
			"received_date": o.ReceivedDate,
			"status":        o.Status,
		}).Where(goqu.Ex{"id": o.ID}).Prepared(true).ToSQL()
		if err != nil {
			return fmt.Errorf("build order update: %w", err)
		}
		if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("update order: %w", err)
		}
	}

	kept := make([]uuid.UUID, 0, len(o.Lines))
	for _, line := range o.Lines {
		if err := s.saveLine(ctx, line); err != nil {
			return err
		}
		kept = append(kept, line.ID)
	}

	del := dialect.Delete("acquisition_order_lines").Where(goqu.Ex{"order_id": o.ID})
	if len(kept) > 0 {
		del = del.Where(goqu.C("id").NotIn(kept))
	}
	query, args, err := del.Prepared(true).ToSQL()
	if err != nil {
		return fmt.Errorf("build order line delete: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete removed order lines: %w", err)
	}
	return nil
}

func (s *Store) saveLine(ctx context.Context, line *AcquisitionOrderLine) error {
	if line.ID == uuid.Nil {
		line.ID = uuid.New()

		query, args, err := dialect.Insert("acquisition_order_lines").Rows(goqu.Record{
			"id":                line.ID,
			"order_id":          line.OrderID,
			"item_id":           line.ItemID,
			"unit_price":        line.UnitPrice,
			"quantity":          line.Quantity,
			"received_quantity": line.ReceivedQuantity,
			"status":            line.Status,
		}).Prepared(true).ToSQL()
		if err != nil {
			return fmt.Errorf("build order line insert: %w", err)
		}
		if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert order line: %w", err)
		}
		return nil
	}

	query, args, err := dialect.Update("acquisition_order_lines").Set(goqu.Record{
		"received_quantity": line.ReceivedQuantity,
		"status":            line.Status,
	}).Where(goqu.Ex{"id": line.ID}).Prepared(true).ToSQL()
	if err != nil {
		return fmt.Errorf("build order line update: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update order line: %w", err)
	}
	return nil
}
