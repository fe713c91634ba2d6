package circulation

import (
	"time"

	"openlms/internal/catalog"
	"openlms/internal/domain"
	"openlms/internal/patron"
)

// Loan periods in days. The extended period applies to premium members and
// to copies old enough to count as superseded versions.
const (
	standardLoanDays = 14
	extendedLoanDays = 28
)

// holdPickupWindowDays is how long a hold stays claimable after it is placed.
const holdPickupWindowDays = 7

// LoanPolicyService computes due dates.
type LoanPolicyService struct{}

func NewLoanPolicyService() *LoanPolicyService {
	return &LoanPolicyService{}
}

func (s *LoanPolicyService) CalculateDueDate(loanDate time.Time, p *patron.Patron, copy *catalog.Copy) time.Time {
	loanDate = domain.DateOnly(loanDate)
	if p.IsPremiumMembership(loanDate) || copy.IsOlderVersion(loanDate) {
		return loanDate.AddDate(0, 0, extendedLoanDays)
	}
	return loanDate.AddDate(0, 0, standardLoanDays)
}

// HoldPolicyService computes hold expiry.
type HoldPolicyService struct{}

func NewHoldPolicyService() *HoldPolicyService {
	return &HoldPolicyService{}
}

func (s *HoldPolicyService) CalculateExpiryDate(requestDate time.Time) time.Time {
	return domain.DateOnly(requestDate).AddDate(0, 0, holdPickupWindowDays)
}

func (s *HoldPolicyService) IsExpired(h *Hold, today time.Time) bool {
	return h.ExpiryDate.Before(domain.DateOnly(today))
}
