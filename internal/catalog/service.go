package catalog

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"openlms/internal/domain"
	"openlms/internal/eventbus"
)

type ItemRepository interface {
	ItemByID(ctx context.Context, id uuid.UUID) (*Item, error)
	FindAllItems(ctx context.Context) ([]*Item, error)
	SaveItem(ctx context.Context, item *Item) error
}

type CopyRepository interface {
	CopyByID(ctx context.Context, id uuid.UUID) (*Copy, error)
	FindAllCopies(ctx context.Context) ([]*Copy, error)
	FindCopiesByItem(ctx context.Context, itemID uuid.UUID) ([]*Copy, error)
	SaveCopy(ctx context.Context, copy *Copy) error
}

type AuthorRepository interface {
	AuthorByID(ctx context.Context, id uuid.UUID) (*Author, error)
	FindAllAuthors(ctx context.Context) ([]*Author, error)
	SaveAuthor(ctx context.Context, author *Author) error
}

type CategoryRepository interface {
	CategoryByID(ctx context.Context, id uuid.UUID) (*Category, error)
	FindAllCategories(ctx context.Context) ([]*Category, error)
	SaveCategory(ctx context.Context, category *Category) error
}

type PublisherRepository interface {
	PublisherByID(ctx context.Context, id uuid.UUID) (*Publisher, error)
	FindAllPublishers(ctx context.Context) ([]*Publisher, error)
	SavePublisher(ctx context.Context, publisher *Publisher) error
}

// ItemService manages bibliographic records and the copies attached to them.
type ItemService struct {
	items      ItemRepository
	copies     CopyRepository
	categories CategoryRepository
	publishers PublisherRepository
	bus        *eventbus.Bus
	logger     *slog.Logger
	now        func() time.Time
}

func NewItemService(
	items ItemRepository,
	copies CopyRepository,
	categories CategoryRepository,
	publishers PublisherRepository,
	bus *eventbus.Bus,
	logger *slog.Logger,
) *ItemService {
	return &ItemService{
		items:      items,
		copies:     copies,
		categories: categories,
		publishers: publishers,
		bus:        bus,
		logger:     logger,
		now:        time.Now,
	}
}

type CreateItemInput struct {
	Title           string
	ISBN            string
	Format          string
	Description     string
	Edition         string
	PublicationYear int
	CategoryID      *uuid.UUID
	PublisherID     *uuid.UUID
}

func (s *ItemService) CreateItem(ctx context.Context, input CreateItemInput) (*Item, error) {
	if input.CategoryID != nil {
		if _, err := s.categories.CategoryByID(ctx, *input.CategoryID); err != nil {
			return nil, err
		}
	}
	if input.PublisherID != nil {
		if _, err := s.publishers.PublisherByID(ctx, *input.PublisherID); err != nil {
			return nil, err
		}
	}

	item, err := NewItem(input.Title, input.ISBN, input.Format, input.Description,
		input.Edition, input.PublicationYear, input.CategoryID, input.PublisherID)
	if err != nil {
		return nil, err
	}
	if err := s.items.SaveItem(ctx, item); err != nil {
		return nil, err
	}

	s.logger.Info("item created", "item_id", item.ID, "title", item.Title)

	if err := s.bus.Publish(ctx, ItemCreatedEvent{ItemID: item.ID, Title: item.Title, Format: item.Format}); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *ItemService) UpdateItem(ctx context.Context, id uuid.UUID, title, isbn, description string) (*Item, error) {
	item, err := s.items.ItemByID(ctx, id)
	if err != nil {
		return nil, err
	}

	item.UpdateDetails(title, isbn, description)
	if err := s.items.SaveItem(ctx, item); err != nil {
		return nil, err
	}

	if err := s.bus.Publish(ctx, ItemUpdatedEvent{ItemID: item.ID}); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *ItemService) GetItem(ctx context.Context, id uuid.UUID) (*Item, error) {
	return s.items.ItemByID(ctx, id)
}

func (s *ItemService) ListItems(ctx context.Context) ([]*Item, error) {
	return s.items.FindAllItems(ctx)
}

// AddCopyToItem registers a new physical copy of an existing item at the
// given branch. A barcode is generated when none is supplied; a zero
// acquisition date defaults to today.
func (s *ItemService) AddCopyToItem(ctx context.Context, itemID, branchID uuid.UUID, barcode, location string, acquisitionDate time.Time) (*Copy, error) {
	item, err := s.items.ItemByID(ctx, itemID)
	if err != nil {
		return nil, err
	}

	if barcode == "" {
		barcode = "BC-" + uuid.NewString()
	}
	if acquisitionDate.IsZero() {
		acquisitionDate = s.now()
	}
	copy := NewCopy(item.ID, branchID, barcode, location, domain.DateOnly(acquisitionDate))
	if err := s.copies.SaveCopy(ctx, copy); err != nil {
		return nil, err
	}

	s.logger.Info("copy added to item", "copy_id", copy.ID, "item_id", item.ID, "barcode", barcode)

	if err := s.bus.Publish(ctx, CopyAddedToItemEvent{
		CopyID:   copy.ID,
		ItemID:   item.ID,
		BranchID: branchID,
		Barcode:  barcode,
	}); err != nil {
		return nil, err
	}
	return copy, nil
}

// CopyService exposes read access to physical copies.
type CopyService struct {
	copies CopyRepository
}

func NewCopyService(copies CopyRepository) *CopyService {
	return &CopyService{copies: copies}
}

func (s *CopyService) GetCopy(ctx context.Context, id uuid.UUID) (*Copy, error) {
	return s.copies.CopyByID(ctx, id)
}

func (s *CopyService) ListCopies(ctx context.Context) ([]*Copy, error) {
	return s.copies.FindAllCopies(ctx)
}

func (s *CopyService) ListCopiesByItem(ctx context.Context, itemID uuid.UUID) ([]*Copy, error) {
	return s.copies.FindCopiesByItem(ctx, itemID)
}

func (s *CopyService) UpdateCopyLocation(ctx context.Context, id uuid.UUID, location string) (*Copy, error) {
	copy, err := s.copies.CopyByID(ctx, id)
	if err != nil {
		return nil, err
	}
	copy.Location = location
	if err := s.copies.SaveCopy(ctx, copy); err != nil {
		return nil, err
	}
	return copy, nil
}

// AuthorService manages author records.
type AuthorService struct {
	authors AuthorRepository
	bus     *eventbus.Bus
	logger  *slog.Logger
}

func NewAuthorService(authors AuthorRepository, bus *eventbus.Bus, logger *slog.Logger) *AuthorService {
	return &AuthorService{authors: authors, bus: bus, logger: logger}
}

func (s *AuthorService) CreateAuthor(ctx context.Context, name, bio string, birthDate *time.Time) (*Author, error) {
	author := NewAuthor(name, bio, birthDate)
	if err := s.authors.SaveAuthor(ctx, author); err != nil {
		return nil, err
	}
	s.logger.Info("author created", "author_id", author.ID, "name", author.Name)
	if err := s.bus.Publish(ctx, AuthorCreatedEvent{AuthorID: author.ID, Name: author.Name}); err != nil {
		return nil, err
	}
	return author, nil
}

func (s *AuthorService) GetAuthor(ctx context.Context, id uuid.UUID) (*Author, error) {
	return s.authors.AuthorByID(ctx, id)
}

func (s *AuthorService) ListAuthors(ctx context.Context) ([]*Author, error) {
	return s.authors.FindAllAuthors(ctx)
}

// CategoryService manages subject categories.
type CategoryService struct {
	categories CategoryRepository
	bus        *eventbus.Bus
	logger     *slog.Logger
}

func NewCategoryService(categories CategoryRepository, bus *eventbus.Bus, logger *slog.Logger) *CategoryService {
	return &CategoryService{categories: categories, bus: bus, logger: logger}
}

func (s *CategoryService) CreateCategory(ctx context.Context, name, description string) (*Category, error) {
	category := NewCategory(name, description)
	if err := s.categories.SaveCategory(ctx, category); err != nil {
		return nil, err
	}
	s.logger.Info("category created", "category_id", category.ID, "name", category.Name)
	if err := s.bus.Publish(ctx, CategoryCreatedEvent{CategoryID: category.ID, Name: category.Name}); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *CategoryService) GetCategory(ctx context.Context, id uuid.UUID) (*Category, error) {
	return s.categories.CategoryByID(ctx, id)
}

func (s *CategoryService) ListCategories(ctx context.Context) ([]*Category, error) {
	return s.categories.FindAllCategories(ctx)
}

// PublisherService manages publisher records.
type PublisherService struct {
	publishers PublisherRepository
	bus        *eventbus.Bus
	logger     *slog.Logger
}

func NewPublisherService(publishers PublisherRepository, bus *eventbus.Bus, logger *slog.Logger) *PublisherService {
	return &PublisherService{publishers: publishers, bus: bus, logger: logger}
}

func (s *PublisherService) CreatePublisher(ctx context.Context, name, address, email, phone string) (*Publisher, error) {
	publisher := NewPublisher(name, address, email, phone)
	if err := s.publishers.SavePublisher(ctx, publisher); err != nil {
		return nil, err
	}
	s.logger.Info("publisher created", "publisher_id", publisher.ID, "name", publisher.Name)
	if err := s.bus.Publish(ctx, PublisherCreatedEvent{PublisherID: publisher.ID, Name: publisher.Name}); err != nil {
		return nil, err
	}
	return publisher, nil
}

func (s *PublisherService) GetPublisher(ctx context.Context, id uuid.UUID) (*Publisher, error) {
	return s.publishers.PublisherByID(ctx, id)
}

func (s *PublisherService) ListPublishers(ctx context.Context) ([]*Publisher, error) {
	return s.publishers.FindAllPublishers(ctx)
}
