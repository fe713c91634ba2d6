// Package serial manages periodical subscriptions and the issues received
// against them.
package serial

import (
	"time"

	"github.com/google/uuid"

	"openlms/internal/domain"
)

// Serial statuses.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// Publication frequencies.
const (
	FrequencyWeekly    = "weekly"
	FrequencyMonthly   = "monthly"
	FrequencyQuarterly = "quarterly"
	FrequencyYearly    = "yearly"
)

// Issue statuses.
const (
	IssueStatusReceived = "received"
	IssueStatusMissing  = "missing"
	IssueStatusLost     = "lost"
)

var validFrequencies = map[string]bool{
	FrequencyWeekly:    true,
	FrequencyMonthly:   true,
	FrequencyQuarterly: true,
	FrequencyYearly:    true,
}

// Serial is a subscription to a periodical, anchored to a catalog item.
type Serial struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	ISSN        string    `json:"issn" db:"issn"`
	ItemID      uuid.UUID `json:"item_id" db:"item_id"`
	Frequency   string    `json:"frequency" db:"frequency"`
	Description string    `json:"description" db:"description"`
	Status      string    `json:"status" db:"status"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

func NewSerial(title, issn string, itemID uuid.UUID, frequency, description string) (*Serial, error) {
	if frequency != "" && !validFrequencies[frequency] {
		return nil, ErrInvalidFrequency(frequency)
	}
	return &Serial{
		Title:       title,
		ISSN:        issn,
		ItemID:      itemID,
		Frequency:   frequency,
		Description: description,
		Status:      StatusActive,
	}, nil
}

// Activate renews a lapsed subscription.
func (s *Serial) Activate() error {
	if s.Status == StatusActive {
		return ErrSerialAlreadyActive(s.ID)
	}
	s.Status = StatusActive
	return nil
}

// Deactivate ends the subscription. Received issues remain on record.
func (s *Serial) Deactivate() error {
	if s.Status == StatusInactive {
		return ErrSerialAlreadyInactive(s.ID)
	}
	s.Status = StatusInactive
	return nil
}

// SerialIssue is a single received (or missing) number of a serial,
// optionally linked to the shelf copy holding it.
type SerialIssue struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	SerialID     uuid.UUID  `json:"serial_id" db:"serial_id"`
	IssueNumber  string     `json:"issue_number" db:"issue_number"`
	DateReceived time.Time  `json:"date_received" db:"date_received"`
	Status       string     `json:"status" db:"status"`
	CopyID       *uuid.UUID `json:"copy_id" db:"copy_id"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

func NewSerialIssue(serialID uuid.UUID, issueNumber string, dateReceived time.Time, copyID *uuid.UUID) *SerialIssue {
	return &SerialIssue{
		SerialID:     serialID,
		IssueNumber:  issueNumber,
		DateReceived: domain.DateOnly(dateReceived),
		Status:       IssueStatusReceived,
		CopyID:       copyID,
	}
}

// MarkMissing flags an expected issue that never arrived.
func (i *SerialIssue) MarkMissing() {
	i.Status = IssueStatusMissing
}

// MarkLost flags a received issue that has since disappeared.
func (i *SerialIssue) MarkLost() {
	i.Status = IssueStatusLost
}
