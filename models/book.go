// models/book.go
package models

import (
	"errors"
	"time"
)

const BookTable = "lib_books"

var ErrOutOfStock = errors.New("book is out of stock")

// Book 由目录服务维护；借还只通过 ReserveCopy / ReleaseCopy 改动库存
type Book struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	Title     string    `gorm:"size:255;not null" json:"title"`
	CopyCount int       `gorm:"not null;default:0;check:copy_count >= 0" json:"copyCount"`
	Available bool      `gorm:"not null;default:false" json:"available"`
	Version   int       `gorm:"not null;default:0" json:"-"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Book) TableName() string { return BookTable }

// ReserveCopy takes one copy out of the shelf. State is untouched on failure.
func (b *Book) ReserveCopy() error {
	if b.CopyCount <= 0 {
		return ErrOutOfStock
	}
	b.CopyCount--
	b.syncAvailability()
	return nil
}

// ReleaseCopy puts one copy back. There is no upper bound: the catalog does
// not track a total separate from the available count.
func (b *Book) ReleaseCopy() {
	b.CopyCount++
	b.syncAvailability()
}

func (b *Book) syncAvailability() { b.Available = b.CopyCount > 0 }

// NewBook builds a catalog entry with a consistent availability flag.
func NewBook(id, title string, copies int) *Book {
	b := &Book{ID: id, Title: title, CopyCount: copies}
	b.syncAvailability()
	return b
}
