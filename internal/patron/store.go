package patron

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

// Store persists patrons and fines in Postgres.
type Store struct {
	db *sqlx.DB
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

func (s *Store) PatronByID(ctx context.Context, id uuid.UUID) (*Patron, error) {
	query, args, err := dialect.From("patrons").Where(goqu.Ex{"id": id}).Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build patron query: %w", err)
	}

	var p Patron
	if err := s.db.GetContext(ctx, &p, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewNotFound("patron", id.String())
		}
		return nil, fmt.Errorf("query patron: %w", err)
	}
	return &p, nil
}

func (s *Store) PatronExistsByEmail(ctx context.Context, email string) (bool, error) {
	query, args, err := dialect.From("patrons").
		Select(goqu.COUNT("*")).
		Where(goqu.Ex{"email": email}).
		Prepared(true).ToSQL()
	if err != nil {
		return false, fmt.Errorf("build patron email query: %w", err)
	}

	var count int
	if err := s.db.GetContext(ctx, &count, query, args...); err != nil {
		return false, fmt.Errorf("query patron by email: %w", err)
	}
	return count > 0, nil
}

func (s *Store) FindAllPatrons(ctx context.Context) ([]*Patron, error) {
	query, args, err := dialect.From("patrons").Order(goqu.I("created_at").Asc()).Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build patrons query: %w", err)
	}

	patrons := []*Patron{}
	if err := s.db.SelectContext(ctx, &patrons, query, args...); err != nil {
		return nil, fmt.Errorf("query patrons: %w", err)
	}
	return patrons, nil
}

func (s *Store) SavePatron(ctx context.Context, p *Patron) error {
	now := time.Now().UTC()

	if p.ID == uuid.Nil {
		p.ID = uuid.New()
		p.CreatedAt = now
		p.UpdatedAt = now

		query, args, err := dialect.Insert("patrons").Rows(goqu.Record{
			"id":           p.ID,
			"name":         p.Name,
			"email":        p.Email,
			"branch_id":    p.BranchID,
			"status":       p.Status,
			"member_since": p.MemberSince,
			"created_at":   p.CreatedAt,
			"updated_at":   p.UpdatedAt,
		}).Prepared(true).ToSQL()
		if err != nil {
			return fmt.Errorf("build patron insert: %w", err)
		}
		if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert patron: %w", err)
		}
		return nil
	}

	p.UpdatedAt = now
	query, args, err := dialect.Update("patrons").Set(goqu.Record{
		"name":       p.Name,
		"email":      p.Email,
		"status":     p.Status,
		"updated_at": p.UpdatedAt,
	}).Where(goqu.Ex{"id": p.ID}).Prepared(true).ToSQL()
	if err != nil {
		return fmt.Errorf("build patron update: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update patron: %w", err)
	}
	return nil
}

func (s *Store) FineByID(ctx context.Context, id uuid.UUID) (*Fine, error) {
	query, args, err := dialect.From("fines").Where(goqu.Ex{"id": id}).Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build fine query: %w", err)
	}

	var f Fine
	if err := s.db.GetContext(ctx, &f, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewNotFound("fine", id.String())
		}
		return nil, fmt.Errorf("query fine: %w", err)
	}
	return &f, nil
}

func (s *Store) FindAllFines(ctx context.Context) ([]*Fine, error) {
	query, args, err := dialect.From("fines").Order(goqu.I("issued_date").Asc()).Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build fines query: %w", err)
	}

	fines := []*Fine{}
	if err := s.db.SelectContext(ctx, &fines, query, args...); err != nil {
		return nil, fmt.Errorf("query fines: %w", err)
	}
	return fines, nil
}

func (s *Store) FindFinesByPatron(ctx context.Context, patronID uuid.UUID) ([]*Fine, error) {
	query, args, err := dialect.From("fines").
		Where(goqu.Ex{"patron_id": patronID}).
		Order(goqu.I("issued_date").Asc()).
		Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build fines query: %w", err)
	}

	fines := []*Fine{}
	if err := s.db.SelectContext(ctx, &fines, query, args...); err != nil {
		return nil, fmt.Errorf("query fines by patron: %w", err)
	}
	return fines, nil
}

func (s *Store) SaveFine(ctx context.Context, f *Fine) error {
	now := time.Now().UTC()

	if f.ID == uuid.Nil {
		f.ID = uuid.New()
		f.CreatedAt = now
		f.UpdatedAt = now

		query, args, err := dialect.Insert("fines").Rows(goqu.Record{
			"id":          f.ID,
			"patron_id":   f.PatronID,
			"loan_id":     f.LoanID,
			"amount":      f.Amount,
			"reason":      f.Reason,
			"issued_date": f.IssuedDate,
			"paid_date":   f.PaidDate,
			"status":      f.Status,
			"created_at":  f.CreatedAt,
			"updated_at":  f.UpdatedAt,
		}).Prepared(true).ToSQL()
		if err != nil {
			return fmt.Errorf("build fine insert: %w", err)
		}
		if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert fine: %w", err)
		}
		return nil
	}

	f.UpdatedAt = now
	query, args, err := dialect.Update("fines").Set(goqu.Record{
		"status":     f.Status,
		"paid_date":  f.PaidDate,
		"updated_at": f.UpdatedAt,
	}).Where(goqu.Ex{"id": f.ID}).Prepared(true).ToSQL()
	if err != nil {
		return fmt.Errorf("build fine update: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update fine: %w", err)
	}
	return nil
}
