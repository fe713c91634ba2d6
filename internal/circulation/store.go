package circulation

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

	"openlms/internal/catalog"
	"openlms/internal/domain"
)

var dialect = goqu.Dialect("postgres")

// querier is satisfied by both *sqlx.DB and *sqlx.Tx.
type querier interface {
	sqlx.ExtContext
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
}

// Store persists loans and holds in Postgres. It also serves the patron
// guards their loan and hold counts.
type Store struct {
	db *sqlx.DB
	q  querier
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db, q: db}
}

// Transact runs fn against a store bound to a single transaction.
func (s *Store) Transact(ctx context.Context, fn func(Repository) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(&Store{db: s.db, q: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback after %w: %v", err, rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (s *Store) LoanByID(ctx context.Context, id uuid.UUID) (*Loan, error) {
	query, args, err := dialect.From("loans").Where(goqu.Ex{"id": id}).Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build loan query: %w", err)
	}

	var l Loan
	if err := s.q.GetContext(ctx, &l, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewNotFound("loan", id.String())
		}
		return nil, fmt.Errorf("query loan: %w", err)
	}
	return &l, nil
}

func (s *Store) FindAllLoans(ctx context.Context) ([]*Loan, error) {
	query, args, err := dialect.From("loans").Order(goqu.I("loan_date").Desc()).Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build loans query: %w", err)
	}

	loans := []*Loan{}
	if err := s.q.SelectContext(ctx, &loans, query, args...); err != nil {
		return nil, fmt.Errorf("query loans: %w", err)
	}
	return loans, nil
}

func (s *Store) FindLoansByPatron(ctx context.Context, patronID uuid.UUID) ([]*Loan, error) {
	query, args, err := dialect.From("loans").
		Where(goqu.Ex{"patron_id": patronID}).
		Order(goqu.I("loan_date").Desc()).
		Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build patron loans query: %w", err)
	}

	loans := []*Loan{}
	if err := s.q.SelectContext(ctx, &loans, query, args...); err != nil {
		return nil, fmt.Errorf("query patron loans: %w", err)
	}
	return loans, nil
}

// SaveLoan writes the loan and the status of its copy in the same call so a
// checkout or return never leaves the pair out of step.
func (s *Store) SaveLoan(ctx context.Context, loan *Loan, copy *catalog.Copy) error {
	now := time.Now().UTC()

	if loan.ID == uuid.Nil {
		loan.ID = uuid.New()
		loan.CreatedAt = now
		loan.UpdatedAt = now

		query, args, err := dialect.Insert("loans").Rows(goqu.Record{
			"id":           loan.ID,
			"copy_id":      loan.CopyID,
			"patron_id":    loan.PatronID,
			"branch_id":    loan.BranchID,
			"staff_out_id": loan.StaffOutID,
			"staff_in_id":  loan.StaffInID,
			"loan_date":    loan.LoanDate,
			"due_date":     loan.DueDate,
			"return_date":  loan.ReturnDate,
			"created_at":   loan.CreatedAt,
			"updated_at":   loan.UpdatedAt,
		}).Prepared(true).ToSQL()
		if err != nil {
			return fmt.Errorf("build loan insert: %w", err)
		}
		if _, err := s.q.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert loan: %w", err)
		}
	} else {
		loan.UpdatedAt = now
		query, args, err := dialect.Update("loans").Set(goqu.Record{
			"staff_in_id": loan.StaffInID,
			"due_date":    loan.DueDate,
			"return_date": loan.ReturnDate,
			"updated_at":  loan.UpdatedAt,
		}).Where(goqu.Ex{"id": loan.ID}).Prepared(true).ToSQL()
		if err != nil {
			return fmt.Errorf("build loan update: %w", err)
		}
		if _, err := s.q.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("update loan: %w", err)
		}
	}

	query, args, err := dialect.Update("copies").Set(goqu.Record{
		"status":     copy.Status,
		"updated_at": now,
	}).Where(goqu.Ex{"id": copy.ID}).Prepared(true).ToSQL()
	if err != nil {
		return fmt.Errorf("build copy status update: %w", err)
	}
	if _, err := s.q.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update copy status: %w", err)
	}
	return nil
}

// CountLoansByPatron counts the patron's open loans.
func (s *Store) CountLoansByPatron(ctx context.Context, patronID uuid.UUID) (int, error) {
	query, args, err := dialect.From("loans").
		Select(goqu.COUNT("*")).
		Where(goqu.Ex{"patron_id": patronID, "return_date": nil}).
		Prepared(true).ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build loan count query: %w", err)
	}

	var count int
	if err := s.q.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("count loans: %w", err)
	}
	return count, nil
}

// LoanExistsForPatronAndCopy reports whether the patron has an open loan on
// the copy.
func (s *Store) LoanExistsForPatronAndCopy(ctx context.Context, patronID, copyID uuid.UUID) (bool, error) {
	query, args, err := dialect.From("loans").
		Select(goqu.COUNT("*")).
		Where(goqu.Ex{"patron_id": patronID, "copy_id": copyID, "return_date": nil}).
		Prepared(true).ToSQL()
	if err != nil {
		return false, fmt.Errorf("build loan existence query: %w", err)
	}

	var count int
	if err := s.q.GetContext(ctx, &count, query, args...); err != nil {
		return false, fmt.Errorf("query loan existence: %w", err)
	}
	return count > 0, nil
}

func (s *Store) HoldByID(ctx context.Context, id uuid.UUID) (*Hold, error) {
	query, args, err := dialect.From("holds").Where(goqu.Ex{"id": id}).Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build hold query: %w", err)
	}

	var h Hold
	if err := s.q.GetContext(ctx, &h, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewNotFound("hold", id.String())
		}
		return nil, fmt.Errorf("query hold: %w", err)
	}
	return &h, nil
}

func (s *Store) FindAllHolds(ctx context.Context) ([]*Hold, error) {
	query, args, err := dialect.From("holds").Order(goqu.I("request_date").Desc()).Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build holds query: %w", err)
	}

	holds := []*Hold{}
	if err := s.q.SelectContext(ctx, &holds, query, args...); err != nil {
		return nil, fmt.Errorf("query holds: %w", err)
	}
	return holds, nil
}

// FindPendingHoldsByItem returns the item's pending holds in queue order:
// oldest request first, id as the tie-break.
func (s *Store) FindPendingHoldsByItem(ctx context.Context, itemID uuid.UUID) ([]*Hold, error) {
	query, args, err := dialect.From("holds").
		Where(goqu.Ex{"item_id": itemID, "status": HoldStatusPending}).
		Order(goqu.I("request_date").Asc(), goqu.I("id").Asc()).
		Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build pending holds query: %w", err)
	}

	holds := []*Hold{}
	if err := s.q.SelectContext(ctx, &holds, query, args...); err != nil {
		return nil, fmt.Errorf("query pending holds: %w", err)
	}
	return holds, nil
}

// CountActiveHoldsByPatron counts the patron's pending and ready holds.
func (s *Store) CountActiveHoldsByPatron(ctx context.Context, patronID uuid.UUID) (int, error) {
	query, args, err := dialect.From("holds").
		Select(goqu.COUNT("*")).
		Where(goqu.Ex{
			"patron_id": patronID,
			"status":    []string{HoldStatusPending, HoldStatusReady},
		}).
		Prepared(true).ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build hold count query: %w", err)
	}

	var count int
	if err := s.q.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("count holds: %w", err)
	}
	return count, nil
}

func (s *Store) SaveHold(ctx context.Context, h *Hold) error {
	now := time.Now().UTC()

	if h.ID == uuid.Nil {
		h.ID = uuid.New()
		h.CreatedAt = now
		h.UpdatedAt = now

		query, args, err := dialect.Insert("holds").Rows(goqu.Record{
			"id":           h.ID,
			"item_id":      h.ItemID,
			"patron_id":    h.PatronID,
			"copy_id":      h.CopyID,
			"loan_id":      h.LoanID,
			"request_date": h.RequestDate,
			"expiry_date":  h.ExpiryDate,
			"status":       h.Status,
			"created_at":   h.CreatedAt,
			"updated_at":   h.UpdatedAt,
		}).Prepared(true).ToSQL()
		if err != nil {
			return fmt.Errorf("build hold insert: %w", err)
		}
		if _, err := s.q.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert hold: %w", err)
		}
		return nil
	}

	h.UpdatedAt = now
	query, args, err := dialect.Update("holds").Set(goqu.Record{
		"copy_id":    h.CopyID,
		"loan_id":    h.LoanID,
		"status":     h.Status,
		"updated_at": h.UpdatedAt,
	}).Where(goqu.Ex{"id": h.ID}).Prepared(true).ToSQL()
	if err != nil {
		return fmt.Errorf("build hold update: %w", err)
	}
	if _, err := s.q.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update hold: %w", err)
	}
	return nil
}
