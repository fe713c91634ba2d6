package patron

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"openlms/internal/domain"
	"openlms/internal/eventbus"
)

type PatronRepository interface {
	PatronLookup
	FindAllPatrons(ctx context.Context) ([]*Patron, error)
	SavePatron(ctx context.Context, p *Patron) error
}

type FineRepository interface {
	FineByID(ctx context.Context, id uuid.UUID) (*Fine, error)
	FindAllFines(ctx context.Context) ([]*Fine, error)
	FindFinesByPatron(ctx context.Context, patronID uuid.UUID) ([]*Fine, error)
	SaveFine(ctx context.Context, f *Fine) error
}

// PatronService manages patron registration and lifecycle. Registration is
// rate limited to keep bulk imports from starving interactive traffic.
type PatronService struct {
	patrons       PatronRepository
	uniqueness    *UniquenessService
	reinstatement *ReinstatementService
	limiter       *rate.Limiter
	bus           *eventbus.Bus
	logger        *slog.Logger
	now           func() time.Time
}

func NewPatronService(
	patrons PatronRepository,
	uniqueness *UniquenessService,
	reinstatement *ReinstatementService,
	limiter *rate.Limiter,
	bus *eventbus.Bus,
	logger *slog.Logger,
) *PatronService {
	return &PatronService{
		patrons:       patrons,
		uniqueness:    uniqueness,
		reinstatement: reinstatement,
		limiter:       limiter,
		bus:           bus,
		logger:        logger,
		now:           time.Now,
	}
}

// RegisterPatron creates a patron and immediately activates them.
func (s *PatronService) RegisterPatron(ctx context.Context, name, email string, branchID uuid.UUID) (*Patron, error) {
	if !s.limiter.Allow() {
		return nil, domain.NewEligibility("RegistrationRateLimited", "patron registration rate limit exceeded")
	}

	unique, err := s.uniqueness.IsEmailUnique(ctx, email)
	if err != nil {
		return nil, err
	}
	if !unique {
		return nil, ErrEmailAlreadyExists(email)
	}

	p := NewPatron(name, email, branchID, s.now())
	if err := p.Activate(); err != nil {
		return nil, err
	}
	if err := s.patrons.SavePatron(ctx, p); err != nil {
		return nil, err
	}

	s.logger.Info("patron registered", "patron_id", p.ID, "email", p.Email)

	if err := s.bus.Publish(ctx, PatronRegisteredEvent{PatronID: p.ID, Email: p.Email}); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *PatronService) UpdatePatron(ctx context.Context, id uuid.UUID, name string) (*Patron, error) {
	p, err := s.patrons.PatronByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if name != "" {
		p.Name = name
	}
	if err := s.patrons.SavePatron(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *PatronService) UpdatePatronEmail(ctx context.Context, id uuid.UUID, email string) (*Patron, error) {
	p, err := s.patrons.PatronByID(ctx, id)
	if err != nil {
		return nil, err
	}
	events, err := p.ChangeEmail(ctx, email, s.uniqueness)
	if err != nil {
		return nil, err
	}
	if err := s.patrons.SavePatron(ctx, p); err != nil {
		return nil, err
	}
	if err := s.bus.Publish(ctx, events...); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *PatronService) ActivatePatron(ctx context.Context, id uuid.UUID) (*Patron, error) {
	p, err := s.patrons.PatronByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := p.Activate(); err != nil {
		return nil, err
	}
	if err := s.patrons.SavePatron(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *PatronService) SuspendPatron(ctx context.Context, id uuid.UUID) (*Patron, error) {
	p, err := s.patrons.PatronByID(ctx, id)
	if err != nil {
		return nil, err
	}
	events, err := p.Suspend()
	if err != nil {
		return nil, err
	}
	if err := s.patrons.SavePatron(ctx, p); err != nil {
		return nil, err
	}
	s.logger.Info("patron suspended", "patron_id", p.ID)
	if err := s.bus.Publish(ctx, events...); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *PatronService) ReinstatePatron(ctx context.Context, id uuid.UUID) (*Patron, error) {
	p, err := s.patrons.PatronByID(ctx, id)
	if err != nil {
		return nil, err
	}
	events, err := p.Reinstate(ctx, s.reinstatement)
	if err != nil {
		return nil, err
	}
	if err := s.patrons.SavePatron(ctx, p); err != nil {
		return nil, err
	}
	s.logger.Info("patron reinstated", "patron_id", p.ID)
	if err := s.bus.Publish(ctx, events...); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *PatronService) ArchivePatron(ctx context.Context, id uuid.UUID) (*Patron, error) {
	p, err := s.patrons.PatronByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := p.Archive(); err != nil {
		return nil, err
	}
	if err := s.patrons.SavePatron(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *PatronService) UnarchivePatron(ctx context.Context, id uuid.UUID) (*Patron, error) {
	p, err := s.patrons.PatronByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := p.Unarchive(); err != nil {
		return nil, err
	}
	if err := s.patrons.SavePatron(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *PatronService) GetPatron(ctx context.Context, id uuid.UUID) (*Patron, error) {
	return s.patrons.PatronByID(ctx, id)
}

func (s *PatronService) ListPatrons(ctx context.Context) ([]*Patron, error) {
	return s.patrons.FindAllPatrons(ctx)
}

// FineService manages fines. The Process* methods are event handlers wired
// to circulation events; they create fines from loan outcomes.
type FineService struct {
	fines  FineRepository
	policy *FinePolicyService
	bus    *eventbus.Bus
	logger *slog.Logger
	now    func() time.Time
}

func NewFineService(fines FineRepository, policy *FinePolicyService, bus *eventbus.Bus, logger *slog.Logger) *FineService {
	return &FineService{
		fines:  fines,
		policy: policy,
		bus:    bus,
		logger: logger,
		now:    time.Now,
	}
}

func (s *FineService) GetFine(ctx context.Context, id uuid.UUID) (*Fine, error) {
	return s.fines.FineByID(ctx, id)
}

func (s *FineService) ListFines(ctx context.Context) ([]*Fine, error) {
	return s.fines.FindAllFines(ctx)
}

func (s *FineService) ListFinesByPatron(ctx context.Context, patronID uuid.UUID) ([]*Fine, error) {
	return s.fines.FindFinesByPatron(ctx, patronID)
}

func (s *FineService) PayFine(ctx context.Context, id uuid.UUID) (*Fine, error) {
	f, err := s.fines.FineByID(ctx, id)
	if err != nil {
		return nil, err
	}
	events, err := f.Pay(s.now())
	if err != nil {
		return nil, err
	}
	if err := s.fines.SaveFine(ctx, f); err != nil {
		return nil, err
	}
	if err := s.bus.Publish(ctx, events...); err != nil {
		return nil, err
	}
	return f, nil
}

func (s *FineService) WaiveFine(ctx context.Context, id uuid.UUID) (*Fine, error) {
	f, err := s.fines.FineByID(ctx, id)
	if err != nil {
		return nil, err
	}
	events, err := f.Waive(s.now())
	if err != nil {
		return nil, err
	}
	if err := s.fines.SaveFine(ctx, f); err != nil {
		return nil, err
	}
	if err := s.bus.Publish(ctx, events...); err != nil {
		return nil, err
	}
	return f, nil
}

// ProcessOverdueLoan creates an overdue fine for a late return.
func (s *FineService) ProcessOverdueLoan(ctx context.Context, loanID, patronID uuid.UUID, daysLate int) (*Fine, error) {
	f := NewOverdueFine(loanID, patronID, daysLate, s.now(), s.policy)
	if err := s.fines.SaveFine(ctx, f); err != nil {
		return nil, err
	}
	s.logger.Info("overdue fine created", "fine_id", f.ID, "loan_id", loanID, "amount", f.Amount)
	if err := s.bus.Publish(ctx, FineCreatedEvent{FineID: f.ID, PatronID: patronID, LoanID: loanID, Amount: f.Amount}); err != nil {
		return nil, err
	}
	return f, nil
}

// ProcessDamagedLoan creates a damage fine for the loaned copy.
func (s *FineService) ProcessDamagedLoan(ctx context.Context, loanID, patronID, copyID uuid.UUID) (*Fine, error) {
	f, err := NewDamagedItemFine(ctx, loanID, patronID, copyID, s.now(), s.policy)
	if err != nil {
		return nil, err
	}
	if err := s.fines.SaveFine(ctx, f); err != nil {
		return nil, err
	}
	s.logger.Info("damage fine created", "fine_id", f.ID, "loan_id", loanID, "amount", f.Amount)
	if err := s.bus.Publish(ctx, FineCreatedEvent{FineID: f.ID, PatronID: patronID, LoanID: loanID, Amount: f.Amount}); err != nil {
		return nil, err
	}
	return f, nil
}

// ProcessLostLoan creates a replacement-cost fine for the lost copy.
func (s *FineService) ProcessLostLoan(ctx context.Context, loanID, patronID, copyID uuid.UUID) (*Fine, error) {
	f, err := NewLostItemFine(ctx, loanID, patronID, copyID, s.now(), s.policy)
	if err != nil {
		return nil, err
	}
	if err := s.fines.SaveFine(ctx, f); err != nil {
		return nil, err
	}
	s.logger.Info("replacement fine created", "fine_id", f.ID, "loan_id", loanID, "amount", f.Amount)
	if err := s.bus.Publish(ctx, FineCreatedEvent{FineID: f.ID, PatronID: patronID, LoanID: loanID, Amount: f.Amount}); err != nil {
		return nil, err
	}
	return f, nil
}
