package circulation

import (
	"time"

	"github.com/google/uuid"

	"openlms/internal/domain"
)

func ErrLoanAlreadyReturned(loanID uuid.UUID, returnDate time.Time) error {
	return domain.NewStateError("LoanAlreadyReturned",
		"loan %s was already returned on %s", loanID, returnDate.Format(time.DateOnly))
}

func ErrLoanOverdue(loanID uuid.UUID, daysLate int) error {
	return domain.NewStateError("LoanOverdue", "loan %s is overdue by %d days", loanID, daysLate)
}

func ErrHoldNotPending(holdID uuid.UUID, status string) error {
	return domain.NewStateError("HoldNotPending", "hold %s is %s, not pending", holdID, status)
}
