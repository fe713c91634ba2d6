package serial

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

// Store persists serials and their issues in Postgres.
type Store struct {
	db *sqlx.DB
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

func (s *Store) SerialByID(ctx context.Context, id uuid.UUID) (*Serial, error) {
	query, args, err := dialect.From("serials").Where(goqu.Ex{"id": id}).Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build serial query: %w", err)
	}

	var serial Serial
	if err := s.db.GetContext(ctx, &serial, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewNotFound("serial", id.String())
		}
		return nil, fmt.Errorf("query serial: %w", err)
	}
	return &serial, nil
}

func (s *Store) FindAllSerials(ctx context.Context) ([]*Serial, error) {
	query, args, err := dialect.From("serials").Order(goqu.I("title").Asc()).Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build serials query: %w", err)
	}

	serials := []*Serial{}
	if err := s.db.SelectContext(ctx, &serials, query, args...); err != nil {
		return nil, fmt.Errorf("query serials: %w", err)
	}
	return serials, nil
}

func (s *Store) SaveSerial(ctx context.Context, serial *Serial) error {
	now := time.Now().UTC()

	if serial.ID == uuid.Nil {
		serial.ID = uuid.New()
		serial.CreatedAt = now
		serial.UpdatedAt = now

		query, args, err := dialect.Insert("serials").Rows(goqu.Record{
			"id":          serial.ID,
			"title":       serial.Title,
			"issn":        serial.ISSN,
			"item_id":     serial.ItemID,
			"frequency":   serial.Frequency,
			"description": serial.Description,
			"status":      serial.Status,
			"created_at":  serial.CreatedAt,
			"updated_at":  serial.UpdatedAt,
		}).Prepared(true).ToSQL()
		if err != nil {
			return fmt.Errorf("build serial insert: %w", err)
		}
		if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert serial: %w", err)
		}
		return nil
	}

	serial.UpdatedAt = now
	query, args, err := dialect.Update("serials").Set(goqu.Record{
		"title":       serial.Title,
		"frequency":   serial.Frequency,
		"description": serial.Description,
		"status":      serial.Status,
		"updated_at":  serial.UpdatedAt,
	}).Where(goqu.Ex{"id": serial.ID}).Prepared(true).ToSQL()
	if err != nil {
		return fmt.Errorf("build serial update: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update serial: %w", err)
	}
	return nil
}

func (s *Store) IssueByID(ctx context.Context, id uuid.UUID) (*SerialIssue, error) {
	query, args, err := dialect.From("serial_issues").Where(goqu.Ex{"id": id}).Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build serial issue query: %w", err)
	}

	var issue SerialIssue
	if err := s.db.GetContext(ctx, &issue, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewNotFound("serial_issue", id.String())
		}
		return nil, fmt.Errorf("query serial issue: %w", err)
	}
	return &issue, nil
}

func (s *Store) FindIssuesBySerial(ctx context.Context, serialID uuid.UUID) ([]*SerialIssue, error) {
	query, args, err := dialect.From("serial_issues").
		Where(goqu.Ex{"serial_id": serialID}).
		Order(goqu.I("date_received").Desc()).
		Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build serial issues query: %w", err)
	}

	issues := []*SerialIssue{}
	if err := s.db.SelectContext(ctx, &issues, query, args...); err != nil {
		return nil, fmt.Errorf("query serial issues: %w", err)
	}
	return issues, nil
}

func (s *Store) SaveIssue(ctx context.Context, issue *SerialIssue) error {
	now := time.Now().UTC()

	if issue.ID == uuid.Nil {
		issue.ID = uuid.New()
		issue.CreatedAt = now
		issue.UpdatedAt = now

		query, args, err := dialect.Insert("serial_issues").Rows(goqu.Record{
			"id":            issue.ID,
			"serial_id":     issue.SerialID,
			"issue_number":  issue.IssueNumber,
			"date_received": issue.DateReceived,
			"status":        issue.Status,
			"copy_id":       issue.CopyID,
			"created_at":    issue.CreatedAt,
			"updated_at":    issue.UpdatedAt,
		}).Prepared(true).ToSQL()
		if err != nil {
			return fmt.Errorf("build serial issue insert: %w", err)
		}
		if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert serial issue: %w", err)
		}
		return nil
	}

	issue.UpdatedAt = now
	query, args, err := dialect.Update("serial_issues").Set(goqu.Record{
		"status":     issue.Status,
		"copy_id":    issue.CopyID,
		"updated_at": issue.UpdatedAt,
	}).Where(goqu.Ex{"id": issue.ID}).Prepared(true).ToSQL()
	if err != nil {
		return fmt.Errorf("build serial issue update: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update serial issue: %w", err)
	}
	return nil
}
