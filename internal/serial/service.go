package serial

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"openlms/internal/eventbus"
)

type SerialRepository interface {
	SerialByID(ctx context.Context, id uuid.UUID) (*Serial, error)
	FindAllSerials(ctx context.Context) ([]*Serial, error)
	SaveSerial(ctx context.Context, s *Serial) error
}

type IssueRepository interface {
	IssueByID(ctx context.Context, id uuid.UUID) (*SerialIssue, error)
	FindIssuesBySerial(ctx context.Context, serialID uuid.UUID) ([]*SerialIssue, error)
	SaveIssue(ctx context.Context, issue *SerialIssue) error
}

// ItemDirectory confirms the anchor item exists in the catalog.
type ItemDirectory interface {
	ItemExists(ctx context.Context, id uuid.UUID) error
}

// CopyDirectory confirms the shelving copy exists.
type CopyDirectory interface {
	CopyExists(ctx context.Context, id uuid.UUID) error
}

// SerialService manages subscriptions and issue receipt.
type SerialService struct {
	serials SerialRepository
	issues  IssueRepository
	items   ItemDirectory
	copies  CopyDirectory
	bus     *eventbus.Bus
	logger  *slog.Logger
	now     func() time.Time
}

func NewSerialService(
	serials SerialRepository,
	issues IssueRepository,
	items ItemDirectory,
	copies CopyDirectory,
	bus *eventbus.Bus,
	logger *slog.Logger,
) *SerialService {
	return &SerialService{
		serials: serials,
		issues:  issues,
		items:   items,
		copies:  copies,
		bus:     bus,
		logger:  logger,
		now:     time.Now,
	}
}

func (s *SerialService) SubscribeSerial(ctx context.Context, title, issn string, itemID uuid.UUID, frequency, description string) (*Serial, error) {
	if err := s.items.ItemExists(ctx, itemID); err != nil {
		return nil, err
	}

	serial, err := NewSerial(title, issn, itemID, frequency, description)
	if err != nil {
		return nil, err
	}
	if err := s.serials.SaveSerial(ctx, serial); err != nil {
		return nil, err
	}

	s.logger.Info("serial subscribed", "serial_id", serial.ID, "issn", serial.ISSN)

	if err := s.bus.Publish(ctx, SerialSubscribedEvent{
		SerialID:  serial.ID,
		ItemID:    serial.ItemID,
		ISSN:      serial.ISSN,
		Frequency: serial.Frequency,
	}); err != nil {
		return nil, err
	}
	return serial, nil
}

// RenewSerialSubscription re-activates a lapsed subscription.
func (s *SerialService) RenewSerialSubscription(ctx context.Context, serialID uuid.UUID) (*Serial, error) {
	serial, err := s.serials.SerialByID(ctx, serialID)
	if err != nil {
		return nil, err
	}
	if err := serial.Activate(); err != nil {
		return nil, err
	}
	if err := s.serials.SaveSerial(ctx, serial); err != nil {
		return nil, err
	}
	if err := s.bus.Publish(ctx, SerialActivatedEvent{SerialID: serial.ID, ItemID: serial.ItemID}); err != nil {
		return nil, err
	}
	return serial, nil
}

func (s *SerialService) UnsubscribeSerial(ctx context.Context, serialID uuid.UUID) (*Serial, error) {
	serial, err := s.serials.SerialByID(ctx, serialID)
	if err != nil {
		return nil, err
	}
	if err := serial.Deactivate(); err != nil {
		return nil, err
	}
	if err := s.serials.SaveSerial(ctx, serial); err != nil {
		return nil, err
	}
	if err := s.bus.Publish(ctx, SerialDeactivatedEvent{SerialID: serial.ID, ItemID: serial.ItemID}); err != nil {
		return nil, err
	}
	return serial, nil
}

// ReceiveIssue books a new issue against an active subscription.
func (s *SerialService) ReceiveIssue(ctx context.Context, serialID uuid.UUID, issueNumber string, copyID *uuid.UUID) (*SerialIssue, error) {
	serial, err := s.serials.SerialByID(ctx, serialID)
	if err != nil {
		return nil, err
	}
	if serial.Status != StatusActive {
		return nil, ErrSerialNotActive(serial.ID)
	}
	if copyID != nil {
		if err := s.copies.CopyExists(ctx, *copyID); err != nil {
			return nil, err
		}
	}

	issue := NewSerialIssue(serial.ID, issueNumber, s.now(), copyID)
	if err := s.issues.SaveIssue(ctx, issue); err != nil {
		return nil, err
	}

	s.logger.Info("serial issue received", "issue_id", issue.ID, "serial_id", serial.ID, "issue_number", issueNumber)

	if err := s.bus.Publish(ctx, SerialIssueReceivedEvent{
		IssueID:  issue.ID,
		SerialID: serial.ID,
		ItemID:   serial.ItemID,
		CopyID:   copyID,
	}); err != nil {
		return nil, err
	}
	return issue, nil
}

func (s *SerialService) MarkIssueMissing(ctx context.Context, issueID uuid.UUID) (*SerialIssue, error) {
	issue, err := s.issues.IssueByID(ctx, issueID)
	if err != nil {
		return nil, err
	}
	issue.MarkMissing()
	if err := s.issues.SaveIssue(ctx, issue); err != nil {
		return nil, err
	}
	return issue, nil
}

func (s *SerialService) MarkIssueLost(ctx context.Context, issueID uuid.UUID) (*SerialIssue, error) {
	issue, err := s.issues.IssueByID(ctx, issueID)
	if err != nil {
		return nil, err
	}
	issue.MarkLost()
	if err := s.issues.SaveIssue(ctx, issue); err != nil {
		return nil, err
	}
	return issue, nil
}

func (s *SerialService) GetSerial(ctx context.Context, id uuid.UUID) (*Serial, error) {
	return s.serials.SerialByID(ctx, id)
}

func (s *SerialService) ListSerials(ctx context.Context) ([]*Serial, error) {
	return s.serials.FindAllSerials(ctx)
}

func (s *SerialService) ListIssuesBySerial(ctx context.Context, serialID uuid.UUID) ([]*SerialIssue, error) {
	if _, err := s.serials.SerialByID(ctx, serialID); err != nil {
		return nil, err
	}
	return s.issues.FindIssuesBySerial(ctx, serialID)
}
