package patron

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"openlms/internal/domain"
)

// LoanLookup is the narrow view of the circulation store the patron guards
// need.
type LoanLookup interface {
	CountLoansByPatron(ctx context.Context, patronID uuid.UUID) (int, error)
	LoanExistsForPatronAndCopy(ctx context.Context, patronID, copyID uuid.UUID) (bool, error)
}

// HoldLookup counts a patron's still-pending holds.
type HoldLookup interface {
	CountActiveHoldsByPatron(ctx context.Context, patronID uuid.UUID) (int, error)
}

// PatronLookup resolves patrons for the guard services.
type PatronLookup interface {
	PatronByID(ctx context.Context, id uuid.UUID) (*Patron, error)
	PatronExistsByEmail(ctx context.Context, email string) (bool, error)
}

// UniquenessService checks that a patron email is not already taken.
type UniquenessService struct {
	patrons PatronLookup
}

func NewUniquenessService(patrons PatronLookup) *UniquenessService {
	return &UniquenessService{patrons: patrons}
}

func (s *UniquenessService) IsEmailUnique(ctx context.Context, email string) (bool, error) {
	exists, err := s.patrons.PatronExistsByEmail(ctx, email)
	if err != nil {
		return false, err
	}
	return !exists, nil
}

// BarringService decides whether a patron may borrow or renew. Borrowing
// requires an active patron with zero outstanding loans; renewal requires
// that the copy be the patron's only loan.
type BarringService struct {
	patrons PatronLookup
	loans   LoanLookup
}

func NewBarringService(patrons PatronLookup, loans LoanLookup) *BarringService {
	return &BarringService{patrons: patrons, loans: loans}
}

func (s *BarringService) CanBorrowCopies(ctx context.Context, patronID uuid.UUID) (bool, error) {
	p, err := s.patrons.PatronByID(ctx, patronID)
	if err != nil {
		var notFound *domain.NotFoundError
		if errors.As(err, &notFound) {
			return false, nil
		}
		return false, err
	}
	count, err := s.loans.CountLoansByPatron(ctx, patronID)
	if err != nil {
		return false, err
	}
	return p.Status == StatusActive && count == 0, nil
}

func (s *BarringService) CanRenewCopy(ctx context.Context, patronID, copyID uuid.UUID) (bool, error) {
	p, err := s.patrons.PatronByID(ctx, patronID)
	if err != nil {
		var notFound *domain.NotFoundError
		if errors.As(err, &notFound) {
			return false, nil
		}
		return false, err
	}
	exists, err := s.loans.LoanExistsForPatronAndCopy(ctx, patronID, copyID)
	if err != nil {
		return false, err
	}
	if !exists {
		return false, nil
	}
	count, err := s.loans.CountLoansByPatron(ctx, patronID)
	if err != nil {
		return false, err
	}
	return p.Status == StatusActive && count == 1, nil
}

// HoldingService caps a patron at one existing active hold when placing
// another, so at most two run concurrently.
type HoldingService struct {
	holds HoldLookup
}

func NewHoldingService(holds HoldLookup) *HoldingService {
	return &HoldingService{holds: holds}
}

func (s *HoldingService) CanPlaceHolds(ctx context.Context, patronID uuid.UUID) (bool, error) {
	count, err := s.holds.CountActiveHoldsByPatron(ctx, patronID)
	if err != nil {
		return false, err
	}
	return count <= 1, nil
}

// ReinstatementService permits reinstating a suspended patron only once all
// their loans are settled.
type ReinstatementService struct {
	patrons PatronLookup
	loans   LoanLookup
}

func NewReinstatementService(patrons PatronLookup, loans LoanLookup) *ReinstatementService {
	return &ReinstatementService{patrons: patrons, loans: loans}
}

func (s *ReinstatementService) CanReinstate(ctx context.Context, patronID uuid.UUID) (bool, error) {
	p, err := s.patrons.PatronByID(ctx, patronID)
	if err != nil {
		var notFound *domain.NotFoundError
		if errors.As(err, &notFound) {
			return false, nil
		}
		return false, err
	}
	count, err := s.loans.CountLoansByPatron(ctx, patronID)
	if err != nil {
		return false, err
	}
	return p.Status == StatusSuspended && count == 0, nil
}
