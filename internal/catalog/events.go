package catalog

import "github.com/google/uuid"

const (
	EventItemCreated      = "item.created"
	EventItemUpdated      = "item.updated"
	EventCopyAddedToItem  = "copy.added_to_item"
	EventAuthorCreated    = "author.created"
	EventCategoryCreated  = "category.created"
	EventPublisherCreated = "publisher.created"
)

type ItemCreatedEvent struct {
	ItemID uuid.UUID
	Title  string
	Format string
}

func (e ItemCreatedEvent) EventName() string { return EventItemCreated }

type ItemUpdatedEvent struct {
	ItemID uuid.UUID
}

func (e ItemUpdatedEvent) EventName() string { return EventItemUpdated }

type CopyAddedToItemEvent struct {
	CopyID   uuid.UUID
	ItemID   uuid.UUID
	BranchID uuid.UUID
	Barcode  string
}

func (e CopyAddedToItemEvent) EventName() string { return EventCopyAddedToItem }

type AuthorCreatedEvent struct {
	AuthorID uuid.UUID
	Name     string
}

func (e AuthorCreatedEvent) EventName() string { return EventAuthorCreated }

type CategoryCreatedEvent struct {
	CategoryID uuid.UUID
	Name       string
}

func (e CategoryCreatedEvent) EventName() string { return EventCategoryCreated }

type PublisherCreatedEvent struct {
	PublisherID uuid.UUID
	Name        string
}

func (e PublisherCreatedEvent) EventName() string { return EventPublisherCreated }
