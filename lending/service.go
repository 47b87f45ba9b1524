// Package lending implements the borrow/return workflow: eligibility, atomic
// inventory reservation, loan records and the read-side queries over them.
package lending

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/aliarmgnuygun/LibraryManagementSystem-sub000/db"
	"github.com/aliarmgnuygun/LibraryManagementSystem-sub000/models"
)

// Actor is the authenticated identity on whose behalf a call is made.
type Actor struct {
	UserID string
	Role   string
}

func (a Actor) IsLibrarian() bool { return a.Role == models.RoleLibrarian }

func (a Actor) canAccess(ownerID string) bool {
	return a.IsLibrarian() || (a.UserID != "" && a.UserID == ownerID)
}

// Service orchestrates borrowing and returning on top of db.Repo.
type Service struct {
	repo   *db.Repo
	now    func() time.Time
	logger *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the structured logger. Defaults to a discarding logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides the time source used to derive "today".
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func NewService(repo *db.Repo, opts ...Option) *Service {
	s := &Service{
		repo:   repo,
		now:    time.Now,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) today() time.Time { return models.Day(s.now()) }

// notFound translates gorm's not-found into the given business error.
func notFound(err, kind error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return kind
	}
	return err
}

// BorrowBooks lends one copy of every requested book to userID in a single
// transaction. Duplicate ids each take their own copy. Any failure leaves
// inventory and loan tables exactly as they were.
func (s *Service) BorrowBooks(ctx context.Context, userID string, bookIDs []string) (*models.LoanRecord, error) {
	if len(bookIDs) == 0 {
		return nil, ErrEmptyRequest
	}
	today := s.today()

	var rec *models.LoanRecord
	err := s.repo.Transaction(ctx, func(tx *db.Repo) error {
		user, err := tx.LockUserByID(ctx, userID)
		if err != nil {
			return notFound(err, ErrUserNotFound)
		}
		open, err := tx.ListOpenItemsByUser(ctx, userID)
		if err != nil {
			return err
		}
		if err := CheckEligibility(*user, open, today); err != nil {
			return err
		}

		books := make(map[string]*models.Book, len(bookIDs))
		for _, bookID := range lockOrder(bookIDs) {
			book, err := tx.LockBookByID(ctx, bookID)
			if err != nil {
				return fmt.Errorf("book %s: %w", bookID, notFound(err, ErrBookNotFound))
			}
			books[bookID] = book
		}

		rec = models.NewLoanRecord(uuid.NewString(), user.ID, today)
		for _, bookID := range bookIDs {
			book := books[bookID]
			if err := book.ReserveCopy(); err != nil {
				return fmt.Errorf("book %s: %w", bookID, err)
			}
			if err := tx.SaveBookInventory(ctx, book); err != nil {
				return fmt.Errorf("reserve copy of %s: %w", bookID, err)
			}
			rec.AddItem(uuid.NewString(), book.ID)
		}

		return tx.CreateLoanRecord(ctx, rec)
	})
	if err != nil {
		s.logger.InfoContext(ctx, "borrow rejected",
			slog.String("user_id", userID), slog.Int("books", len(bookIDs)), slog.Any("error", err))
		return nil, err
	}

	s.logger.InfoContext(ctx, "books borrowed",
		slog.String("user_id", userID), slog.String("record_id", rec.ID),
		slog.Int("items", len(rec.Items)), slog.Time("due_date", rec.Items[0].DueDate))
	return rec, nil
}

// lockOrder returns the distinct ids sorted, so that concurrent borrows of
// overlapping books take row locks in the same order.
func lockOrder(bookIDs []string) []string {
	ids := slices.Clone(bookIDs)
	slices.Sort(ids)
	return slices.Compact(ids)
}

// ReturnItem closes one loan item and puts its copy back on the shelf. Only
// the owner or a librarian may return it; a second return is an error.
func (s *Service) ReturnItem(ctx context.Context, itemID string, actor Actor) (*models.LoanItem, error) {
	today := s.today()

	var item *models.LoanItem
	err := s.repo.Transaction(ctx, func(tx *db.Repo) error {
		it, err := tx.LockLoanItemByID(ctx, itemID)
		if err != nil {
			return notFound(err, ErrItemNotFound)
		}
		if !actor.canAccess(it.UserID) {
			return ErrForbidden
		}
		if err := it.MarkReturned(today, actor.UserID); err != nil {
			return err
		}
		ok, err := tx.SaveReturnedItem(ctx, it)
		if err != nil {
			return err
		}
		if !ok {
			return ErrAlreadyReturned
		}

		book, err := tx.LockBookByID(ctx, it.BookID)
		if err != nil {
			return fmt.Errorf("book %s: %w", it.BookID, notFound(err, ErrBookNotFound))
		}
		book.ReleaseCopy()
		if err := tx.SaveBookInventory(ctx, book); err != nil {
			return fmt.Errorf("release copy of %s: %w", it.BookID, err)
		}

		item = it
		return nil
	})
	if err != nil {
		s.logger.InfoContext(ctx, "return rejected",
			slog.String("item_id", itemID), slog.String("actor_id", actor.UserID), slog.Any("error", err))
		return nil, err
	}

	s.logger.InfoContext(ctx, "item returned",
		slog.String("item_id", item.ID), slog.String("book_id", item.BookID),
		slog.String("actor_id", actor.UserID), slog.Bool("late", item.ReturnDate.After(item.DueDate)))
	return item, nil
}

// CheckEligibility reports why userID may not borrow right now, or nil.
func (s *Service) CheckEligibility(ctx context.Context, userID string) error {
	user, err := s.repo.FindUserByID(ctx, userID)
	if err != nil {
		return notFound(err, ErrUserNotFound)
	}
	open, err := s.repo.ListOpenItemsByUser(ctx, userID)
	if err != nil {
		return err
	}
	return CheckEligibility(*user, open, s.today())
}

// CanBorrow is the pass/fail form of CheckEligibility. The reason is logged,
// not returned.
func (s *Service) CanBorrow(ctx context.Context, userID string) bool {
	if err := s.CheckEligibility(ctx, userID); err != nil {
		s.logger.DebugContext(ctx, "not eligible to borrow",
			slog.String("user_id", userID), slog.Any("reason", err))
		return false
	}
	return true
}

func (s *Service) IsBookAvailable(ctx context.Context, bookID string) (bool, error) {
	ok, err := s.repo.IsBookAvailable(ctx, bookID)
	if err != nil {
		return false, notFound(err, ErrBookNotFound)
	}
	return ok, nil
}
