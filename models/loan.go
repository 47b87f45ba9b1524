// models/loan.go
package models

import (
	"errors"
	"time"
)

const (
	LoanRecordTable = "lib_loan_records"
	LoanItemTable   = "lib_loan_items"
)

// LoanPeriod 固定借期
const LoanPeriod = 14 * 24 * time.Hour

var ErrAlreadyReturned = errors.New("loan item already returned")

// LoanRecord groups the items borrowed by one user in one borrow call.
type LoanRecord struct {
	ID         string     `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     string     `gorm:"type:uuid;index;not null" json:"userId"`
	BorrowDate time.Time  `gorm:"index;not null" json:"borrowDate"`
	Items      []LoanItem `gorm:"foreignKey:RecordID" json:"items"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// LoanItem is one borrowed copy. It points at its record and book by id only.
type LoanItem struct {
	ID         string     `gorm:"type:uuid;primaryKey" json:"id"`
	RecordID   string     `gorm:"type:uuid;index;not null" json:"recordId"`
	UserID     string     `gorm:"type:uuid;index;not null" json:"userId"`
	BookID     string     `gorm:"type:uuid;index;not null" json:"bookId"`
	Position   int        `gorm:"not null" json:"position"`
	BorrowDate time.Time  `gorm:"index;not null" json:"borrowDate"`
	DueDate    time.Time  `gorm:"index;not null" json:"dueDate"`
	ReturnDate *time.Time `json:"returnDate,omitempty"`
	Returned   bool       `gorm:"index;not null;default:false" json:"returned"`
	ReturnedBy *string    `gorm:"type:uuid" json:"returnedBy,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

func (LoanRecord) TableName() string { return LoanRecordTable }
func (LoanItem) TableName() string   { return LoanItemTable }

// Day truncates t to its calendar date in UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func NewLoanRecord(id, userID string, borrowDate time.Time) *LoanRecord {
	return &LoanRecord{ID: id, UserID: userID, BorrowDate: Day(borrowDate)}
}

// AddItem appends an item sharing the record's user and borrow date.
func (r *LoanRecord) AddItem(id, bookID string) *LoanItem {
	r.Items = append(r.Items, LoanItem{
		ID:         id,
		RecordID:   r.ID,
		UserID:     r.UserID,
		BookID:     bookID,
		Position:   len(r.Items),
		BorrowDate: r.BorrowDate,
		DueDate:    r.BorrowDate.Add(LoanPeriod),
	})
	return &r.Items[len(r.Items)-1]
}

// IsOverdue：未归还且到期日早于今天
func (it *LoanItem) IsOverdue(today time.Time) bool {
	return !it.Returned && it.DueDate.Before(Day(today))
}

// MarkReturned is the only transition of an item: returned false -> true.
func (it *LoanItem) MarkReturned(today time.Time, returnedBy string) error {
	if it.Returned {
		return ErrAlreadyReturned
	}
	d := Day(today)
	if d.Before(it.BorrowDate) {
		d = it.BorrowDate
	}
	it.ReturnDate = &d
	it.Returned = true
	if returnedBy != "" {
		it.ReturnedBy = &returnedBy
	}
	return nil
}
