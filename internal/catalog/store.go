package catalog

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

// Store persists the catalog aggregates in Postgres. It implements all the
// catalog repository interfaces plus the copy and item lookups the
// circulation and patron contexts depend on.
type Store struct {
	db *sqlx.DB
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

func (s *Store) ItemByID(ctx context.Context, id uuid.UUID) (*Item, error) {
	query, args, err := dialect.From("items").Where(goqu.Ex{"id": id}).Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build item query: %w", err)
	}

	var item Item
	if err := s.db.GetContext(ctx, &item, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewNotFound("item", id.String())
		}
		return nil, fmt.Errorf("query item: %w", err)
	}
	return &item, nil
}

func (s *Store) FindAllItems(ctx context.Context) ([]*Item, error) {
	query, args, err := dialect.From("items").Order(goqu.I("created_at").Asc()).Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build items query: %w", err)
	}

	items := []*Item{}
	if err := s.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	return items, nil
}

func (s *Store) SaveItem(ctx context.Context, item *Item) error {
	now := time.Now().UTC()

	if item.ID == uuid.Nil {
		item.ID = uuid.New()
		item.CreatedAt = now
		item.UpdatedAt = now

		query, args, err := dialect.Insert("items").Rows(goqu.Record{
			"id":               item.ID,
			"title":            item.Title,
			"isbn":             item.ISBN,
			"format":           item.Format,
			"description":      item.Description,
			"edition":          item.Edition,
			"publication_year": item.PublicationYear,
			"category_id":      item.CategoryID,
			"publisher_id":     item.PublisherID,
			"created_at":       item.CreatedAt,
			"updated_at":       item.UpdatedAt,
		}).Prepared(true).ToSQL()
		if err != nil {
			return fmt.Errorf("build item insert: %w", err)
		}
		if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert item: %w", err)
		}
		return nil
	}

	item.UpdatedAt = now
	query, args, err := dialect.Update("items").Set(goqu.Record{
		"title":       item.Title,
		"isbn":        item.ISBN,
		"description": item.Description,
		"updated_at":  item.UpdatedAt,
	}).Where(goqu.Ex{"id": item.ID}).Prepared(true).ToSQL()
	if err != nil {
		return fmt.Errorf("build item update: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update item: %w", err)
	}
	return nil
}

func (s *Store) CopyByID(ctx context.Context, id uuid.UUID) (*Copy, error) {
	query, args, err := dialect.From("copies").Where(goqu.Ex{"id": id}).Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build copy query: %w", err)
	}

	var copy Copy
	if err := s.db.GetContext(ctx, &copy, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewNotFound("copy", id.String())
		}
		return nil, fmt.Errorf("query copy: %w", err)
	}
	return &copy, nil
}

func (s *Store) FindAllCopies(ctx context.Context) ([]*Copy, error) {
	query, args, err := dialect.From("copies").Order(goqu.I("created_at").Asc()).Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build copies query: %w", err)
	}

	copies := []*Copy{}
	if err := s.db.SelectContext(ctx, &copies, query, args...); err != nil {
		return nil, fmt.Errorf("query copies: %w", err)
	}
	return copies, nil
}

func (s *Store) FindCopiesByItem(ctx context.Context, itemID uuid.UUID) ([]*Copy, error) {
	query, args, err := dialect.From("copies").
		Where(goqu.Ex{"item_id": itemID}).
		Order(goqu.I("created_at").Asc()).
		Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build copies query: %w", err)
	}

	copies := []*Copy{}
	if err := s.db.SelectContext(ctx, &copies, query, args...); err != nil {
		return nil, fmt.Errorf("query copies by item: %w", err)
	}
	return copies, nil
}

func (s *Store) SaveCopy(ctx context.Context, copy *Copy) error {
	now := time.Now().UTC()

	if copy.ID == uuid.Nil {
		copy.ID = uuid.New()
		copy.CreatedAt = now
		copy.UpdatedAt = now

		query, args, err := dialect.Insert("copies").Rows(goqu.Record{
			"id":               copy.ID,
			"item_id":          copy.ItemID,
			"branch_id":        copy.BranchID,
			"barcode":          copy.Barcode,
			"status":           copy.Status,
			"location":         copy.Location,
			"acquisition_date": copy.AcquisitionDate,
			"created_at":       copy.CreatedAt,
			"updated_at":       copy.UpdatedAt,
		}).Prepared(true).ToSQL()
		if err != nil {
			return fmt.Errorf("build copy insert: %w", err)
		}
		if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert copy: %w", err)
		}
		return nil
	}

	copy.UpdatedAt = now
	query, args, err := dialect.Update("copies").Set(goqu.Record{
		"status":     copy.Status,
		"location":   copy.Location,
		"updated_at": copy.UpdatedAt,
	}).Where(goqu.Ex{"id": copy.ID}).Prepared(true).ToSQL()
	if err != nil {
		return fmt.Errorf("build copy update: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update copy: %w", err)
	}
	return nil
}

func (s *Store) AuthorByID(ctx context.Context, id uuid.UUID) (*Author, error) {
	query, args, err := dialect.From("authors").Where(goqu.Ex{"id": id}).Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build author query: %w", err)
	}

	var author Author
	if err := s.db.GetContext(ctx, &author, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewNotFound("author", id.String())
		}
		return nil, fmt.Errorf("query author: %w", err)
	}
	return &author, nil
}

func (s *Store) FindAllAuthors(ctx context.Context) ([]*Author, error) {
	query, args, err := dialect.From("authors").Order(goqu.I("name").Asc()).Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build authors query: %w", err)
	}

	authors := []*Author{}
	if err := s.db.SelectContext(ctx, &authors, query, args...); err != nil {
		return nil, fmt.Errorf("query authors: %w", err)
	}
	return authors, nil
}

func (s *Store) SaveAuthor(ctx context.Context, author *Author) error {
	now := time.Now().UTC()

	if author.ID == uuid.Nil {
		author.ID = uuid.New()
		author.CreatedAt = now
		author.UpdatedAt = now

		query, args, err := dialect.Insert("authors").Rows(goqu.Record{
			"id":         author.ID,
			"name":       author.Name,
			"bio":        author.Bio,
			"birth_date": author.BirthDate,
			"created_at": author.CreatedAt,
			"updated_at": author.UpdatedAt,
		}).Prepared(true).ToSQL()
		if err != nil {
			return fmt.Errorf("build author insert: %w", err)
		}
		if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert author: %w", err)
		}
		return nil
	}

	author.UpdatedAt = now
	query, args, err := dialect.Update("authors").Set(goqu.Record{
		"name":       author.Name,
		"bio":        author.Bio,
		"birth_date": author.BirthDate,
		"updated_at": author.UpdatedAt,
	}).Where(goqu.Ex{"id": author.ID}).Prepared(true).ToSQL()
	if err != nil {
		return fmt.Errorf("build author update: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update author: %w", err)
	}
	return nil
}

func (s *Store) CategoryByID(ctx context.Context, id uuid.UUID) (*Category, error) {
	query, args, err := dialect.From("categories").Where(goqu.Ex{"id": id}).Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build category query: %w", err)
	}

	var category Category
	if err := s.db.GetContext(ctx, &category, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewNotFound("category", id.String())
		}
		return nil, fmt.Errorf("query category: %w", err)
	}
	return &category, nil
}

func (s *Store) FindAllCategories(ctx context.Context) ([]*Category, error) {
	query, args, err := dialect.From("categories").Order(goqu.I("name").Asc()).Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build categories query: %w", err)
	}

	categories := []*Category{}
	if err := s.db.SelectContext(ctx, &categories, query, args...); err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	return categories, nil
}

func (s *Store) SaveCategory(ctx context.Context, category *Category) error {
	now := time.Now().UTC()

	if category.ID == uuid.Nil {
		category.ID = uuid.New()
		category.CreatedAt = now
		category.UpdatedAt = now

		query, args, err := dialect.Insert("categories").Rows(goqu.Record{
			"id":          category.ID,
			"name":        category.Name,
			"description": category.Description,
			"created_at":  category.CreatedAt,
			"updated_at":  category.UpdatedAt,
		}).Prepared(true).ToSQL()
		if err != nil {
			return fmt.Errorf("build category insert: %w", err)
		}
		if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert category: %w", err)
		}
		return nil
	}

	category.UpdatedAt = now
	query, args, err := dialect.Update("categories").Set(goqu.Record{
		"name":        category.Name,
		"description": category.Description,
		"updated_at":  category.UpdatedAt,
	}).Where(goqu.Ex{"id": category.ID}).Prepared(true).ToSQL()
	if err != nil {
		return fmt.Errorf("build category update: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	return nil
}

func (s *Store) PublisherByID(ctx context.Context, id uuid.UUID) (*Publisher, error) {
	query, args, err := dialect.From("publishers").Where(goqu.Ex{"id": id}).Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build publisher query: %w", err)
	}

	var publisher Publisher
	if err := s.db.GetContext(ctx, &publisher, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewNotFound("publisher", id.String())
		}
		return nil, fmt.Errorf("query publisher: %w", err)
	}
	return &publisher, nil
}

func (s *Store) FindAllPublishers(ctx context.Context) ([]*Publisher, error) {
	query, args, err := dialect.From("publishers").Order(goqu.I("name").Asc()).Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build publishers query: %w", err)
	}

	publishers := []*Publisher{}
	if err := s.db.SelectContext(ctx, &publishers, query, args...); err != nil {
		return nil, fmt.Errorf("query publishers: %w", err)
	}
	return publishers, nil
}

func (s *Store) SavePublisher(ctx context.Context, publisher *Publisher) error {
	now := time.Now().UTC()

	if publisher.ID == uuid.Nil {
		publisher.ID = uuid.New()
		publisher.CreatedAt = now
		publisher.UpdatedAt = now

		query, args, err := dialect.Insert("publishers").Rows(goqu.Record{
			"id":         publisher.ID,
			"name":       publisher.Name,
			"address":    publisher.Address,
			"email":      publisher.Email,
			"phone":      publisher.Phone,
			"created_at": publisher.CreatedAt,
			"updated_at": publisher.UpdatedAt,
		}).Prepared(true).ToSQL()
		if err != nil {
			return fmt.Errorf("build publisher insert: %w", err)
		}
		if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert publisher: %w", err)
		}
		return nil
	}

	publisher.UpdatedAt = now
	query, args, err := dialect.Update("publishers").Set(goqu.Record{
		"name":       publisher.Name,
		"address":    publisher.Address,
		"email":      publisher.Email,
		"phone":      publisher.Phone,
		"updated_at": publisher.UpdatedAt,
	}).Where(goqu.Ex{"id": publisher.ID}).Prepared(true).ToSQL()
	if err != nil {
		return fmt.Errorf("build publisher update: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update publisher: %w", err)
	}
	return nil
}
