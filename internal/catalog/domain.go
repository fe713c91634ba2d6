// Package catalog manages the bibliographic inventory: items, their physical
// copies, and the authors, categories and publishers they reference.
package catalog

import (
	"time"

	"github.com/google/uuid"

	"openlms/internal/domain"
)

// Item formats. Format is fixed at creation time.
const (
	FormatBook     = "book"
	FormatEbook    = "ebook"
	FormatDVD      = "dvd"
	FormatCD       = "cd"
	FormatMagazine = "magazine"
)

// Copy lifecycle statuses.
const (
	CopyStatusAvailable  = "available"
	CopyStatusCheckedOut = "checked_out"
	CopyStatusReserved   = "reserved"
	CopyStatusLost       = "lost"
	CopyStatusDamaged    = "damaged"
)

// olderVersionAge is the copy age beyond which a newer acquisition of the
// same item counts as a newer version.
const olderVersionAge = 2 * 365 * 24 * time.Hour

var validFormats = map[string]bool{
	FormatBook:     true,
	FormatEbook:    true,
	FormatDVD:      true,
	FormatCD:       true,
	FormatMagazine: true,
}

// Item is a bibliographic record. Copies reference it; the item itself does
// not track availability.
type Item struct {
	ID              uuid.UUID  `json:"id" db:"id"`
	Title           string     `json:"title" db:"title"`
	ISBN            string     `json:"isbn" db:"isbn"`
	Format          string     `json:"format" db:"format"`
	Description     string     `json:"description" db:"description"`
	Edition         string     `json:"edition" db:"edition"`
	PublicationYear int        `json:"publication_year" db:"publication_year"`
	CategoryID      *uuid.UUID `json:"category_id" db:"category_id"`
	PublisherID     *uuid.UUID `json:"publisher_id" db:"publisher_id"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" db:"updated_at"`
}

func NewItem(title, isbn, format, description, edition string, publicationYear int, categoryID, publisherID *uuid.UUID) (*Item, error) {
	if !validFormats[format] {
		return nil, ErrInvalidFormat(format)
	}
	return &Item{
		Title:           title,
		ISBN:            isbn,
		Format:          format,
		Description:     description,
		Edition:         edition,
		PublicationYear: publicationYear,
		CategoryID:      categoryID,
		PublisherID:     publisherID,
	}, nil
}

// UpdateDetails changes the editable fields. Format and the author, category
// and publisher references are immutable after creation.
func (i *Item) UpdateDetails(title, isbn, description string) {
	i.Title = title
	i.ISBN = isbn
	i.Description = description
}

// Copy is a physical unit of an item held at a branch.
type Copy struct {
	ID              uuid.UUID `json:"id" db:"id"`
	ItemID          uuid.UUID `json:"item_id" db:"item_id"`
	BranchID        uuid.UUID `json:"branch_id" db:"branch_id"`
	Barcode         string    `json:"barcode" db:"barcode"`
	Status          string    `json:"status" db:"status"`
	Location        string    `json:"location" db:"location"`
	AcquisitionDate time.Time `json:"acquisition_date" db:"acquisition_date"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

func NewCopy(itemID, branchID uuid.UUID, barcode, location string, acquisitionDate time.Time) *Copy {
	return &Copy{
		ItemID:          itemID,
		BranchID:        branchID,
		Barcode:         barcode,
		Status:          CopyStatusAvailable,
		Location:        location,
		AcquisitionDate: domain.DateOnly(acquisitionDate),
	}
}

// MarkAsCheckedOut transitions an available copy into circulation.
func (c *Copy) MarkAsCheckedOut() error {
	if c.Status != CopyStatusAvailable {
		return ErrCopyNotAvailable(c.ID)
	}
	c.Status = CopyStatusCheckedOut
	return nil
}

// MarkAsAvailable returns a checked-out copy to the shelf.
func (c *Copy) MarkAsAvailable() error {
	if c.Status != CopyStatusCheckedOut {
		return ErrCopyNotCheckedOut(c.ID)
	}
	c.Status = CopyStatusAvailable
	return nil
}

func (c *Copy) MarkAsLost() error {
	if c.Status == CopyStatusLost {
		return ErrCopyAlreadyLost(c.ID)
	}
	c.Status = CopyStatusLost
	return nil
}

func (c *Copy) MarkAsDamaged() error {
	if c.Status == CopyStatusDamaged {
		return ErrCopyAlreadyDamaged(c.ID)
	}
	c.Status = CopyStatusDamaged
	return nil
}

// IsOlderVersion reports whether the copy was acquired long enough ago to be
// superseded by a more recent acquisition.
func (c *Copy) IsOlderVersion(today time.Time) bool {
	return !c.AcquisitionDate.After(domain.DateOnly(today).Add(-olderVersionAge))
}

// Author is a creator tracked alongside the catalog.
type Author struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	Name      string     `json:"name" db:"name"`
	Bio       string     `json:"bio" db:"bio"`
	BirthDate *time.Time `json:"birth_date" db:"birth_date"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
}

func NewAuthor(name, bio string, birthDate *time.Time) *Author {
	return &Author{Name: name, Bio: bio, BirthDate: birthDate}
}

// Category groups catalog items by subject.
type Category struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

func NewCategory(name, description string) *Category {
	return &Category{Name: name, Description: description}
}

// Publisher is the imprint a catalog item was published under.
type Publisher struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Address   string    `json:"address" db:"address"`
	Email     string    `json:"email" db:"email"`
	Phone     string    `json:"phone" db:"phone"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

func NewPublisher(name, address, email, phone string) *Publisher {
	return &Publisher{Name: name, Address: address, Email: email, Phone: phone}
}
