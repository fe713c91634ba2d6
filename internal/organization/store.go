package organization

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

// Store persists branches and staff in Postgres.
type Store struct {
	db *sqlx.DB
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

func (s *Store) BranchByID(ctx context.Context, id uuid.UUID) (*Branch, error) {
	query, args, err := dialect.From("branches").Where(goqu.Ex{"id": id}).Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build branch query: %w", err)
	}

	var b Branch
	if err := s.db.GetContext(ctx, &b, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewNotFound("branch", id.String())
		}
		return nil, fmt.Errorf("query branch: %w", err)
	}
	return &b, nil
}

func (s *Store) BranchExistsByName(ctx context.Context, name string) (bool, error) {
	query, args, err := dialect.From("branches").
		Select(goqu.COUNT("*")).
		Where(goqu.Ex{"name": name}).
		Prepared(true).ToSQL()
	if err != nil {
		return false, fmt.Errorf("build branch name query: %w", err)
	}

	var count int
	if err := s.db.GetContext(ctx, &count, query, args...); err != nil {
		return false, fmt.Errorf("query branch by name: %w", err)
	}
	return count > 0, nil
}

func (s *Store) FindAllBranches(ctx context.Context) ([]*Branch, error) {
	query, args, err := dialect.From("branches").Order(goqu.I("name").Asc()).Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build branches query: %w", err)
	}

	branches := []*Branch{}
	if err := s.db.SelectContext(ctx, &branches, query, args...); err != nil {
		return nil, fmt.Errorf("query branches: %w", err)
	}
	return branches, nil
}

func (s *Store) SaveBranch(ctx context.Context, b *Branch) error {
	now := time.Now().UTC()

	if b.ID == uuid.Nil {
		b.ID = uuid.New()
		b.CreatedAt = now
		b.UpdatedAt = now

		query, args, err := dialect.Insert("branches").Rows(goqu.Record{
			"id":         b.ID,
			"name":       b.Name,
			"address":    b.Address,
			"phone":      b.Phone,
			"email":      b.Email,
			"status":     b.Status,
			"manager_id": b.ManagerID,
			"created_at": b.CreatedAt,
			"updated_at": b.UpdatedAt,
		}).Prepared(true).ToSQL()
		if err != nil {
			return fmt.Errorf("build branch insert: %w", err)
		}
		if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert branch: %w", err)
		}
		return nil
	}

	b.UpdatedAt = now
	query, args, err := dialect.Update("branches").Set(goqu.Record{
		"name":       b.Name,
		"address":    b.Address,
		"phone":      b.Phone,
		"email":      b.Email,
		"status":     b.Status,
		"manager_id": b.ManagerID,
		"updated_at": b.UpdatedAt,
	}).Where(goqu.Ex{"id": b.ID}).Prepared(true).ToSQL()
	if err != nil {
		return fmt.Errorf("build branch update: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update branch: %w", err)
	}
	return nil
}

func (s *Store) StaffByID(ctx context.Context, id uuid.UUID) (*Staff, error) {
	query, args, err := dialect.From("staff").Where(goqu.Ex{"id": id}).Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build staff query: %w", err)
	}

	var member Staff
	if err := s.db.GetContext(ctx, &member, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewNotFound("staff", id.String())
		}
		return nil, fmt.Errorf("query staff: %w", err)
	}
	return &member, nil
}

func (s *Store) StaffExistsByEmail(ctx context.Context, email string) (bool, error) {
	query, args, err := dialect.From("staff").
		Select(goqu.COUNT("*")).
		Where(goqu.Ex{"email": email}).
		Prepared(true).ToSQL()
	if err != nil {
		return false, fmt.Errorf("build staff email query: %w", err)
	}

	var count int
	if err := s.db.GetContext(ctx, &count, query, args...); err != nil {
		return false, fmt.Errorf("query staff by email: %w", err)
	}
	return count > 0, nil
}

func (s *Store) FindAllStaff(ctx context.Context) ([]*Staff, error) {
	query, args, err := dialect.From("staff").Order(goqu.I("name").Asc()).Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build staff query: %w", err)
	}

	staff := []*Staff{}
	if err := s.db.SelectContext(ctx, &staff, query, args...); err != nil {
		return nil, fmt.Errorf("query staff: %w", err)
	}
	return staff, nil
}

func (s *Store) SaveStaff(ctx context.Context, member *Staff) error {
	now := time.Now().UTC()

	if member.ID == uuid.Nil {
		member.ID = uuid.New()
		member.CreatedAt = now
		member.UpdatedAt = now

		query, args, err := dialect.Insert("staff").Rows(goqu.Record{
			"id":         member.ID,
			"name":       member.Name,
			"email":      member.Email,
			"branch_id":  member.BranchID,
			"role":       member.Role,
			"hire_date":  member.HireDate,
			"status":     member.Status,
			"created_at": member.CreatedAt,
			"updated_at": member.UpdatedAt,
		}).Prepared(true).ToSQL()
		if err != nil {
			return fmt.Errorf("build staff insert: %w", err)
		}
		if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert staff: %w", err)
		}
		return nil
	}

	member.UpdatedAt = now
	query, args, err := dialect.Update("staff").Set(goqu.Record{
		"name":       member.Name,
		"email":      member.Email,
		"branch_id":  member.BranchID,
		"role":       member.Role,
		"status":     member.Status,
		"updated_at": member.UpdatedAt,
	}).Where(goqu.Ex{"id": member.ID}).Prepared(true).ToSQL()
	if err != nil {
		return fmt.Errorf("build staff update: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update staff: %w", err)
	}
	return nil
}
