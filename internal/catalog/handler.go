package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"

	"openlms/internal/jsonrpc"
)

// Handler exposes the catalog services over JSON-RPC.
type Handler struct {
	items      *ItemService
	copies     *CopyService
	authors    *AuthorService
	categories *CategoryService
	publishers *PublisherService
}

func NewHandler(
	items *ItemService,
	copies *CopyService,
	authors *AuthorService,
	categories *CategoryService,
	publishers *PublisherService,
) *Handler {
	return &Handler{
		items:      items,
		copies:     copies,
		authors:    authors,
		categories: categories,
		publishers: publishers,
	}
}

func (h *Handler) Register(server *jsonrpc.Server) {
	server.Register("Item.create", h.createItem)
	server.Register("Item.update", h.updateItem)
	server.Register("Item.get", h.getItem)
	server.Register("Item.list", h.listItems)
	server.Register("Item.add_copy", h.addCopy)
	server.Register("Copy.get", h.getCopy)
	server.Register("Copy.list", h.listCopies)
	server.Register("Copy.list_by_item", h.listCopiesByItem)
	server.Register("Copy.update_location", h.updateCopyLocation)
	server.Register("Author.create", h.createAuthor)
	server.Register("Author.get", h.getAuthor)
	server.Register("Author.list", h.listAuthors)
	server.Register("Category.create", h.createCategory)
	server.Register("Category.get", h.getCategory)
	server.Register("Category.list", h.listCategories)
	server.Register("Publisher.create", h.createPublisher)
	server.Register("Publisher.get", h.getPublisher)
	server.Register("Publisher.list", h.listPublishers)
}

func (h *Handler) createItem(ctx context.Context, params jsoniter.RawMessage) (any, error) {
	var req struct {
		Title           string     `json:"title"`
		ISBN            string     `json:"isbn"`
		Format          string     `json:"format"`
		Description     string     `json:"description"`
		Edition         string     `json:"edition"`
		PublicationYear int        `json:"publication_year"`
		CategoryID      *uuid.UUID `json:"category_id"`
		PublisherID     *uuid.UUID `json:"publisher_id"`
	}
	if err := jsonrpc.DecodeParams(params, &req); err != nil {
		return nil, err
	}
	return h.items.CreateItem(ctx, CreateItemInput{
		Title:           req.Title,
		ISBN:            req.ISBN,
		Format:          req.Format,
		Description:     req.Description,
		Edition:         req.Edition,
		PublicationYear: req.PublicationYear,
		CategoryID:      req.CategoryID,
		PublisherID:     req.PublisherID,
	})
}

func (h *Handler) updateItem(ctx context.Context, params jsoniter.RawMessage) (any, error) {
	var req struct {
		ID          uuid.UUID `json:"id"`
		Title       string    `json:"title"`
		ISBN        string    `json:"isbn"`
		Description string    `json:"description"`
	}
	if err := jsonrpc.DecodeParams(params, &req); err != nil {
		return nil, err
	}
	return h.items.UpdateItem(ctx, req.ID, req.Title, req.ISBN, req.Description)
}

func (h *Handler) getItem(ctx context.Context, params jsoniter.RawMessage) (any, error) {
	var req struct {
		ID uuid.UUID `json:"id"`
	}
	if err := jsonrpc.DecodeParams(params, &req); err != nil {
		return nil, err
	}
	return h.items.GetItem(ctx, req.ID)
}

func (h *Handler) listItems(ctx context.Context, _ jsoniter.RawMessage) (any, error) {
	return h.items.ListItems(ctx)
}

func (h *Handler) addCopy(ctx context.Context, params jsoniter.RawMessage) (any, error) {
	var req struct {
		ItemID          uuid.UUID `json:"item_id"`
		BranchID        uuid.UUID `json:"branch_id"`
		Barcode         string    `json:"barcode"`
		Location        string    `json:"location"`
		AcquisitionDate time.Time `json:"acquisition_date"`
	}
	if err := jsonrpc.DecodeParams(params, &req); err != nil {
		return nil, err
	}
	return h.items.AddCopyToItem(ctx, req.ItemID, req.BranchID, req.Barcode, req.Location, req.AcquisitionDate)
}

func (h *Handler) getCopy(ctx context.Context, params jsoniter.RawMessage) (any, error) {
	var req struct {
		ID uuid.UUID `json:"id"`
	}
	if err := jsonrpc.DecodeParams(params, &req); err != nil {
		return nil, err
	}
	return h.copies.GetCopy(ctx, req.ID)
}

func (h *Handler) listCopies(ctx context.Context, _ jsoniter.RawMessage) (any, error) {
	return h.copies.ListCopies(ctx)
}

func (h *Handler) listCopiesByItem(ctx context.Context, params jsoniter.RawMessage) (any, error) {
	var req struct {
		ItemID uuid.UUID `json:"item_id"`
	}
	if err := jsonrpc.DecodeParams(params, &req); err != nil {
		return nil, err
	}
	return h.copies.ListCopiesByItem(ctx, req.ItemID)
}

func (h *Handler) updateCopyLocation(ctx context.Context, params jsoniter.RawMessage) (any, error) {
	var req struct {
		ID       uuid.UUID `json:"id"`
		Location string    `json:"location"`
	}
	if err := jsonrpc.DecodeParams(params, &req); err != nil {
		return nil, err
	}
	return h.copies.UpdateCopyLocation(ctx, req.ID, req.Location)
}

func (h *Handler) createAuthor(ctx context.Context, params jsoniter.RawMessage) (any, error) {
	var req struct {
		Name      string     `json:"name"`
		Bio       string     `json:"bio"`
		BirthDate *time.Time `json:"birth_date"`
	}
	if err := jsonrpc.DecodeParams(params, &req); err != nil {
		return nil, err
	}
	return h.authors.CreateAuthor(ctx, req.Name, req.Bio, req.BirthDate)
}

func (h *Handler) getAuthor(ctx context.Context, params jsoniter.RawMessage) (any, error) {
	var req struct {
		ID uuid.UUID `json:"id"`
	}
	if err := jsonrpc.DecodeParams(params, &req); err != nil {
		return nil, err
	}
	return h.authors.GetAuthor(ctx, req.ID)
}

func (h *Handler) listAuthors(ctx context.Context, _ jsoniter.RawMessage) (any, error) {
	return h.authors.ListAuthors(ctx)
}

func (h *Handler) createCategory(ctx context.Context, params jsoniter.RawMessage) (any, error) {
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := jsonrpc.DecodeParams(params, &req); err != nil {
		return nil, err
	}
	return h.categories.CreateCategory(ctx, req.Name, req.Description)
}

func (h *Handler) getCategory(ctx context.Context, params jsoniter.RawMessage) (any, error) {
	var req struct {
		ID uuid.UUID `json:"id"`
	}
	if err := jsonrpc.DecodeParams(params, &req); err != nil {
		return nil, err
	}
	return h.categories.GetCategory(ctx, req.ID)
}

func (h *Handler) listCategories(ctx context.Context, _ jsoniter.RawMessage) (any, error) {
	return h.categories.ListCategories(ctx)
}

func (h *Handler) createPublisher(ctx context.Context, params jsoniter.RawMessage) (any, error) {
	var req struct {
		Name    string `json:"name"`
		Address string `json:"address"`
		Email   string `json:"email"`
		Phone   string `json:"phone"`
	}
	if err := jsonrpc.DecodeParams(params, &req); err != nil {
		return nil, err
	}
	return h.publishers.CreatePublisher(ctx, req.Name, req.Address, req.Email, req.Phone)
}

func (h *Handler) getPublisher(ctx context.Context, params jsoniter.RawMessage) (any, error) {
	var req struct {
		ID uuid.UUID `json:"id"`
	}
	if err := jsonrpc.DecodeParams(params, &req); err != nil {
		return nil, err
	}
	return h.publishers.GetPublisher(ctx, req.ID)
}

func (h *Handler) listPublishers(ctx context.Context, _ jsoniter.RawMessage) (any, error) {
	return h.publishers.ListPublishers(ctx)
}
