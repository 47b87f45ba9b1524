package lending

import (
	"errors"

	"github.com/aliarmgnuygun/LibraryManagementSystem-sub000/models"
)

// Business errors. None of them is transient; callers must not retry.
var (
	ErrUserNotFound   = errors.New("user not found")
	ErrBookNotFound   = errors.New("book not found")
	ErrItemNotFound   = errors.New("loan item not found")
	ErrRecordNotFound = errors.New("loan record not found")

	ErrOutOfStock      = models.ErrOutOfStock
	ErrAlreadyReturned = models.ErrAlreadyReturned

	ErrRoleNotEligible    = errors.New("role is not allowed to borrow")
	ErrBorrowLimitReached = errors.New("borrow limit reached")
	ErrHasOverdueItems    = errors.New("user has overdue items")

	ErrForbidden    = errors.New("forbidden")
	ErrInvalidRange = errors.New("invalid date range: start is after end")
	ErrEmptyRequest = errors.New("no books requested")
)

// IsEligibilityError reports whether err is one of the three eligibility reasons.
func IsEligibilityError(err error) bool {
	return errors.Is(err, ErrRoleNotEligible) ||
		errors.Is(err, ErrBorrowLimitReached) ||
		errors.Is(err, ErrHasOverdueItems)
}
