package lending

import (
	"context"
	"time"

	"github.com/aliarmgnuygun/LibraryManagementSystem-sub000/db"
	"github.com/aliarmgnuygun/LibraryManagementSystem-sub000/models"
)

// ActiveItems lists the user's unreturned items, earliest due first.
func (s *Service) ActiveItems(ctx context.Context, userID string) ([]models.LoanItem, error) {
	return s.repo.ListOpenItemsByUser(ctx, userID)
}

func (s *Service) HasOverdueItems(ctx context.Context, userID string) (bool, error) {
	return s.repo.HasOverdueItems(ctx, userID, s.today())
}

func (s *Service) CountActiveItems(ctx context.Context, userID string) (int64, error) {
	return s.repo.CountOpenItems(ctx, userID)
}

// OverdueItems pages through every user's unreturned items whose due date
// is before today.
func (s *Service) OverdueItems(ctx context.Context, p db.PageRequest) (*db.Page[models.LoanItem], error) {
	return s.repo.ListOverdueItems(ctx, s.today(), p)
}

// ItemsBorrowedBetween pages through items borrowed in [start, end]. A nil
// start means one month before today; a nil end means today.
func (s *Service) ItemsBorrowedBetween(ctx context.Context, start, end *time.Time, p db.PageRequest) (*db.Page[models.LoanItem], error) {
	today := s.today()
	from, to := monthBefore(today), today
	if start != nil {
		from = models.Day(*start)
	}
	if end != nil {
		to = models.Day(*end)
	}
	if from.After(to) {
		return nil, ErrInvalidRange
	}
	return s.repo.ListItemsBorrowedBetween(ctx, from, to, p)
}

// monthBefore steps back one calendar month, clamping to the last day of the
// shorter month (Mar 31 -> Feb 28).
func monthBefore(day time.Time) time.Time {
	y, m, d := day.Date()
	first := time.Date(y, m-1, 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1).Day()
	return time.Date(first.Year(), first.Month(), min(d, last), 0, 0, 0, 0, time.UTC)
}

// RecordFilter narrows SearchRecords. Zero fields do not filter.
type RecordFilter struct {
	UserID string
	Email  string
	Start  *time.Time
	End    *time.Time
}

// SearchRecords pages through loan records. Librarians may look at anyone and
// filter by email; everyone else only sees their own records.
func (s *Service) SearchRecords(ctx context.Context, actor Actor, f RecordFilter, p db.PageRequest) (*db.Page[models.LoanRecord], error) {
	if !actor.IsLibrarian() {
		if f.Email != "" {
			return nil, ErrForbidden
		}
		if f.UserID == "" {
			f.UserID = actor.UserID
		}
		if !actor.canAccess(f.UserID) {
			return nil, ErrForbidden
		}
	}
	if f.Start != nil && f.End != nil && models.Day(*f.Start).After(models.Day(*f.End)) {
		return nil, ErrInvalidRange
	}

	return s.repo.ListLoanRecords(ctx, db.RecordQuery{
		UserID: f.UserID,
		Email:  f.Email,
		Start:  f.Start,
		End:    f.End,
	}, p)
}

// Record returns one loan record with its items, subject to the same access
// rule as SearchRecords.
func (s *Service) Record(ctx context.Context, actor Actor, recordID string) (*models.LoanRecord, error) {
	rec, err := s.repo.FindLoanRecordByID(ctx, recordID)
	if err != nil {
		return nil, notFound(err, ErrRecordNotFound)
	}
	if !actor.canAccess(rec.UserID) {
		return nil, ErrForbidden
	}
	return rec, nil
}
