package lending

import (
	"time"

	"github.com/aliarmgnuygun/LibraryManagementSystem-sub000/models"
)

// MaxBorrowLimit is the number of unreturned items a borrower may hold before
// a new borrow is refused.
const MaxBorrowLimit = 5

// CheckEligibility decides whether user may start a new borrow transaction.
// openItems are the user's unreturned items. It has no side effects.
//
// Rules, first failure wins:
//
//	role must be borrower                 -> ErrRoleNotEligible
//	fewer than MaxBorrowLimit open items  -> ErrBorrowLimitReached
//	no open item past its due date        -> ErrHasOverdueItems
func CheckEligibility(user models.User, openItems []models.LoanItem, today time.Time) error {
	if user.Role != models.RoleBorrower {
		return ErrRoleNotEligible
	}

	open := 0
	for i := range openItems {
		if !openItems[i].Returned {
			open++
		}
	}
	if open >= MaxBorrowLimit {
		return ErrBorrowLimitReached
	}

	for i := range openItems {
		if openItems[i].IsOverdue(today) {
			return ErrHasOverdueItems
		}
	}

	return nil
}
