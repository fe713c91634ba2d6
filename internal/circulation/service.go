package circulation

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"openlms/internal/catalog"
	"openlms/internal/eventbus"
	"openlms/internal/patron"
)

// Repository persists loans and holds. SaveLoan writes the loan and its copy
// together; Transact runs fn against a transactional view of the repository.
type Repository interface {
	LoanByID(ctx context.Context, id uuid.UUID) (*Loan, error)
	FindAllLoans(ctx context.Context) ([]*Loan, error)
	FindLoansByPatron(ctx context.Context, patronID uuid.UUID) ([]*Loan, error)
	SaveLoan(ctx context.Context, loan *Loan, copy *catalog.Copy) error

	HoldByID(ctx context.Context, id uuid.UUID) (*Hold, error)
	FindAllHolds(ctx context.Context) ([]*Hold, error)
	FindPendingHoldsByItem(ctx context.Context, itemID uuid.UUID) ([]*Hold, error)
	SaveHold(ctx context.Context, hold *Hold) error

	Transact(ctx context.Context, fn func(Repository) error) error
}

// Directories resolve aggregates owned by the other packages.
type PatronDirectory interface {
	PatronByID(ctx context.Context, id uuid.UUID) (*patron.Patron, error)
}

type CopyDirectory interface {
	CopyByID(ctx context.Context, id uuid.UUID) (*catalog.Copy, error)
}

type ItemDirectory interface {
	ItemByID(ctx context.Context, id uuid.UUID) (*catalog.Item, error)
}

type StaffDirectory interface {
	StaffExists(ctx context.Context, id uuid.UUID) error
}

// LoanService checks copies out, in, and through the damaged, lost and
// renewal paths.
type LoanService struct {
	repo    Repository
	patrons PatronDirectory
	copies  CopyDirectory
	staff   StaffDirectory
	barring *patron.BarringService
	policy  *LoanPolicyService
	bus     *eventbus.Bus
	logger  *slog.Logger
	now     func() time.Time
}

func NewLoanService(
	repo Repository,
	patrons PatronDirectory,
	copies CopyDirectory,
	staff StaffDirectory,
	barring *patron.BarringService,
	policy *LoanPolicyService,
	bus *eventbus.Bus,
	logger *slog.Logger,
) *LoanService {
	return &LoanService{
		repo:    repo,
		patrons: patrons,
		copies:  copies,
		staff:   staff,
		barring: barring,
		policy:  policy,
		bus:     bus,
		logger:  logger,
		now:     time.Now,
	}
}

func (s *LoanService) CheckoutCopy(ctx context.Context, copyID, patronID, staffOutID uuid.UUID) (*Loan, error) {
	p, err := s.patrons.PatronByID(ctx, patronID)
	if err != nil {
		return nil, err
	}
	if err := s.staff.StaffExists(ctx, staffOutID); err != nil {
		return nil, err
	}
	copy, err := s.copies.CopyByID(ctx, copyID)
	if err != nil {
		return nil, err
	}

	loan, err := NewLoan(ctx, p, copy, staffOutID, p.BranchID, s.now(), s.barring, s.policy)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SaveLoan(ctx, loan, copy); err != nil {
		return nil, err
	}

	s.logger.Info("copy checked out",
		"loan_id", loan.ID, "copy_id", copyID, "patron_id", patronID, "due_date", loan.DueDate)

	if err := s.bus.Publish(ctx, LoanCreatedEvent{
		LoanID:   loan.ID,
		CopyID:   loan.CopyID,
		PatronID: loan.PatronID,
		BranchID: loan.BranchID,
	}); err != nil {
		return nil, err
	}
	return loan, nil
}

func (s *LoanService) CheckinCopy(ctx context.Context, loanID, staffInID uuid.UUID) (*Loan, error) {
	loan, err := s.repo.LoanByID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if err := s.staff.StaffExists(ctx, staffInID); err != nil {
		return nil, err
	}
	copy, err := s.copies.CopyByID(ctx, loan.CopyID)
	if err != nil {
		return nil, err
	}

	events, err := loan.MarkAsReturned(copy, s.now(), staffInID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SaveLoan(ctx, loan, copy); err != nil {
		return nil, err
	}

	s.logger.Info("copy checked in", "loan_id", loan.ID, "copy_id", loan.CopyID)

	if err := s.bus.Publish(ctx, events...); err != nil {
		return nil, err
	}
	return loan, nil
}

func (s *LoanService) DamagedCopy(ctx context.Context, loanID uuid.UUID) (*Loan, error) {
	loan, err := s.repo.LoanByID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	copy, err := s.copies.CopyByID(ctx, loan.CopyID)
	if err != nil {
		return nil, err
	}

	events, err := loan.MarkDamaged(copy, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.repo.SaveLoan(ctx, loan, copy); err != nil {
		return nil, err
	}
	if err := s.bus.Publish(ctx, events...); err != nil {
		return nil, err
	}
	return loan, nil
}

func (s *LoanService) LostCopy(ctx context.Context, loanID uuid.UUID) (*Loan, error) {
	loan, err := s.repo.LoanByID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	copy, err := s.copies.CopyByID(ctx, loan.CopyID)
	if err != nil {
		return nil, err
	}

	events, err := loan.MarkLost(copy, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.repo.SaveLoan(ctx, loan, copy); err != nil {
		return nil, err
	}
	if err := s.bus.Publish(ctx, events...); err != nil {
		return nil, err
	}
	return loan, nil
}

func (s *LoanService) RenewLoan(ctx context.Context, loanID uuid.UUID) (*Loan, error) {
	loan, err := s.repo.LoanByID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	p, err := s.patrons.PatronByID(ctx, loan.PatronID)
	if err != nil {
		return nil, err
	}
	copy, err := s.copies.CopyByID(ctx, loan.CopyID)
	if err != nil {
		return nil, err
	}

	if err := loan.Renew(ctx, p, copy, s.now(), s.barring, s.policy); err != nil {
		return nil, err
	}
	if err := s.repo.SaveLoan(ctx, loan, copy); err != nil {
		return nil, err
	}

	s.logger.Info("loan renewed", "loan_id", loan.ID, "due_date", loan.DueDate)
	return loan, nil
}

func (s *LoanService) GetLoan(ctx context.Context, id uuid.UUID) (*Loan, error) {
	return s.repo.LoanByID(ctx, id)
}

func (s *LoanService) ListLoans(ctx context.Context) ([]*Loan, error) {
	return s.repo.FindAllLoans(ctx)
}

func (s *LoanService) ListLoansByPatron(ctx context.Context, patronID uuid.UUID) ([]*Loan, error) {
	return s.repo.FindLoansByPatron(ctx, patronID)
}

// HoldService manages the hold queue from placement through pickup.
type HoldService struct {
	repo       Repository
	patrons    PatronDirectory
	items      ItemDirectory
	copies     CopyDirectory
	staff      StaffDirectory
	holding    *patron.HoldingService
	barring    *patron.BarringService
	holdPolicy *HoldPolicyService
	loanPolicy *LoanPolicyService
	bus        *eventbus.Bus
	logger     *slog.Logger
	now        func() time.Time
}

func NewHoldService(
	repo Repository,
	patrons PatronDirectory,
	items ItemDirectory,
	copies CopyDirectory,
	staff StaffDirectory,
	holding *patron.HoldingService,
	barring *patron.BarringService,
	holdPolicy *HoldPolicyService,
	loanPolicy *LoanPolicyService,
	bus *eventbus.Bus,
	logger *slog.Logger,
) *HoldService {
	return &HoldService{
		repo:       repo,
		patrons:    patrons,
		items:      items,
		copies:     copies,
		staff:      staff,
		holding:    holding,
		barring:    barring,
		holdPolicy: holdPolicy,
		loanPolicy: loanPolicy,
		bus:        bus,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *HoldService) PlaceHold(ctx context.Context, patronID, itemID uuid.UUID, copyID *uuid.UUID) (*Hold, error) {
	p, err := s.patrons.PatronByID(ctx, patronID)
	if err != nil {
		return nil, err
	}
	if _, err := s.items.ItemByID(ctx, itemID); err != nil {
		return nil, err
	}
	if copyID != nil {
		if _, err := s.copies.CopyByID(ctx, *copyID); err != nil {
			return nil, err
		}
	}

	hold, err := NewHold(ctx, p, itemID, copyID, s.now(), s.holding, s.holdPolicy)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SaveHold(ctx, hold); err != nil {
		return nil, err
	}

	s.logger.Info("hold placed", "hold_id", hold.ID, "item_id", itemID, "patron_id", patronID)
	return hold, nil
}

func (s *HoldService) ReadyHoldForPickup(ctx context.Context, holdID, copyID uuid.UUID) (*Hold, error) {
	copy, err := s.copies.CopyByID(ctx, copyID)
	if err != nil {
		return nil, err
	}
	hold, err := s.repo.HoldByID(ctx, holdID)
	if err != nil {
		return nil, err
	}

	events, err := hold.ReadyForPickup(copy)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SaveHold(ctx, hold); err != nil {
		return nil, err
	}
	if err := s.bus.Publish(ctx, events...); err != nil {
		return nil, err
	}
	return hold, nil
}

// PickupHold converts a hold into a loan. The loan creation, copy checkout
// and hold fulfillment commit atomically.
func (s *HoldService) PickupHold(ctx context.Context, holdID, staffOutID, copyID uuid.UUID) (*Loan, error) {
	copy, err := s.copies.CopyByID(ctx, copyID)
	if err != nil {
		return nil, err
	}
	hold, err := s.repo.HoldByID(ctx, holdID)
	if err != nil {
		return nil, err
	}
	p, err := s.patrons.PatronByID(ctx, hold.PatronID)
	if err != nil {
		return nil, err
	}
	if err := s.staff.StaffExists(ctx, staffOutID); err != nil {
		return nil, err
	}

	var (
		loan   *Loan
		events []eventbus.Event
	)
	err = s.repo.Transact(ctx, func(tx Repository) error {
		loan, err = NewLoan(ctx, p, copy, staffOutID, p.BranchID, s.now(), s.barring, s.loanPolicy)
		if err != nil {
			return err
		}
		if err := tx.SaveLoan(ctx, loan, copy); err != nil {
			return err
		}

		fulfilled, err := hold.Fulfill(copy, loan)
		if err != nil {
			return err
		}
		if err := tx.SaveHold(ctx, hold); err != nil {
			return err
		}

		events = append(events, LoanCreatedEvent{
			LoanID:   loan.ID,
			CopyID:   loan.CopyID,
			PatronID: loan.PatronID,
			BranchID: loan.BranchID,
		})
		events = append(events, fulfilled...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("hold picked up", "hold_id", hold.ID, "loan_id", loan.ID, "patron_id", hold.PatronID)

	if err := s.bus.Publish(ctx, events...); err != nil {
		return nil, err
	}
	return loan, nil
}

func (s *HoldService) ExpireHold(ctx context.Context, holdID uuid.UUID) (*Hold, error) {
	hold, err := s.repo.HoldByID(ctx, holdID)
	if err != nil {
		return nil, err
	}
	events, err := hold.Expire()
	if err != nil {
		return nil, err
	}
	if err := s.repo.SaveHold(ctx, hold); err != nil {
		return nil, err
	}
	if err := s.bus.Publish(ctx, events...); err != nil {
		return nil, err
	}
	return hold, nil
}

func (s *HoldService) CancelHold(ctx context.Context, holdID uuid.UUID) (*Hold, error) {
	hold, err := s.repo.HoldByID(ctx, holdID)
	if err != nil {
		return nil, err
	}
	events, err := hold.Cancel()
	if err != nil {
		return nil, err
	}
	if err := s.repo.SaveHold(ctx, hold); err != nil {
		return nil, err
	}
	if err := s.bus.Publish(ctx, events...); err != nil {
		return nil, err
	}
	return hold, nil
}

// ProcessHoldsForReturnedCopy readies the oldest pending hold on the returned
// copy's item. Subscribed to loan returns.
func (s *HoldService) ProcessHoldsForReturnedCopy(ctx context.Context, copyID uuid.UUID) error {
	copy, err := s.copies.CopyByID(ctx, copyID)
	if err != nil {
		return err
	}
	holds, err := s.repo.FindPendingHoldsByItem(ctx, copy.ItemID)
	if err != nil {
		return err
	}
	if len(holds) == 0 {
		return nil
	}

	next := holds[0]
	if _, err := s.ReadyHoldForPickup(ctx, next.ID, copyID); err != nil {
		return err
	}
	s.logger.Info("hold ready for pickup",
		"hold_id", next.ID, "patron_id", next.PatronID, "copy_id", copyID)
	return nil
}

func (s *HoldService) GetHold(ctx context.Context, id uuid.UUID) (*Hold, error) {
	return s.repo.HoldByID(ctx, id)
}

func (s *HoldService) ListHolds(ctx context.Context) ([]*Hold, error) {
	return s.repo.FindAllHolds(ctx)
}
