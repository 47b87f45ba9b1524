package db

import (
	"context"
	"strings"
	"time"

	"github.com/aliarmgnuygun/LibraryManagementSystem-sub000/models"

	"gorm.io/gorm"
)

// Loans

// CreateLoanRecord inserts the record and all of its items.
func (r *Repo) CreateLoanRecord(ctx context.Context, rec *models.LoanRecord) error {
	return r.DB.WithContext(ctx).Create(rec).Error
}

func (r *Repo) FindLoanRecordByID(ctx context.Context, id string) (*models.LoanRecord, error) {
	if !validID(id) {
		return nil, gorm.ErrRecordNotFound
	}
	var rec models.LoanRecord
	if err := r.DB.WithContext(ctx).
		Preload("Items", orderedItems).
		First(&rec, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *Repo) LockLoanItemByID(ctx context.Context, id string) (*models.LoanItem, error) {
	if !validID(id) {
		return nil, gorm.ErrRecordNotFound
	}
	var it models.LoanItem
	if err := r.forUpdate(r.DB.WithContext(ctx)).First(&it, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &it, nil
}

// SaveReturnedItem 只更新仍未归还的行，返回 false 表示已被别人归还
func (r *Repo) SaveReturnedItem(ctx context.Context, it *models.LoanItem) (bool, error) {
	res := r.DB.WithContext(ctx).Model(&models.LoanItem{}).
		Where("id = ? AND returned = ?", it.ID, false).
		Updates(map[string]any{
			"returned":    true,
			"return_date": it.ReturnDate,
			"returned_by": it.ReturnedBy,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *Repo) openItems(ctx context.Context, userID string) *gorm.DB {
	return r.DB.WithContext(ctx).Model(&models.LoanItem{}).
		Where("user_id = ? AND returned = ?", userID, false)
}

func (r *Repo) ListOpenItemsByUser(ctx context.Context, userID string) ([]models.LoanItem, error) {
	var items []models.LoanItem
	if err := r.openItems(ctx, userID).
		Order("due_date ASC").Order("position ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *Repo) CountOpenItems(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := r.openItems(ctx, userID).Count(&n).Error
	return n, err
}

func (r *Repo) HasOverdueItems(ctx context.Context, userID string, today time.Time) (bool, error) {
	var n int64
	err := r.openItems(ctx, userID).
		Where("due_date < ?", models.Day(today)).
		Limit(1).
		Count(&n).Error
	return n > 0, err
}

var itemSort = map[string]string{
	"borrow_date": "borrow_date",
	"due_date":    "due_date",
	"return_date": "return_date",
	"user_id":     "user_id",
	"book_id":     "book_id",
}

// ListOverdueItems: 全部用户的逾期条目 (!returned && due_date < today)
func (r *Repo) ListOverdueItems(ctx context.Context, today time.Time, p PageRequest) (*Page[models.LoanItem], error) {
	q := r.DB.WithContext(ctx).Model(&models.LoanItem{}).
		Where("returned = ? AND due_date < ?", false, models.Day(today))
	return paginate[models.LoanItem](q, p, p.orderBy(itemSort, "due_date ASC"))
}

// ListItemsBorrowedBetween lists items with borrow_date in [start, end], both inclusive.
func (r *Repo) ListItemsBorrowedBetween(ctx context.Context, start, end time.Time, p PageRequest) (*Page[models.LoanItem], error) {
	q := r.DB.WithContext(ctx).Model(&models.LoanItem{}).
		Where("borrow_date >= ? AND borrow_date <= ?", models.Day(start), models.Day(end))
	return paginate[models.LoanItem](q, p, p.orderBy(itemSort, "borrow_date DESC"))
}

// RecordQuery 借阅记录筛选；零值字段不参与过滤
type RecordQuery struct {
	UserID string
	Email  string // 子串匹配，大小写不敏感
	Start  *time.Time
	End    *time.Time
}

var recordSort = map[string]string{
	"borrow_date": "borrow_date",
	"user_id":     "user_id",
}

func (r *Repo) ListLoanRecords(ctx context.Context, f RecordQuery, p PageRequest) (*Page[models.LoanRecord], error) {
	if f.UserID != "" && !validID(f.UserID) {
		p = p.normalized()
		return &Page[models.LoanRecord]{Page: p.Page, Size: p.Size, Items: []models.LoanRecord{}}, nil
	}
	q := r.DB.WithContext(ctx).Model(&models.LoanRecord{})
	if f.UserID != "" {
		q = q.Where("user_id = ?", f.UserID)
	}
	if s := strings.TrimSpace(f.Email); s != "" {
		pat := "%" + strings.ToLower(s) + "%"
		q = q.Where("user_id IN (?)",
			r.DB.Model(&models.User{}).Select("id").Where("LOWER(email) LIKE ?", pat))
	}
	if f.Start != nil {
		q = q.Where("borrow_date >= ?", models.Day(*f.Start))
	}
	if f.End != nil {
		q = q.Where("borrow_date <= ?", models.Day(*f.End))
	}
	return paginate[models.LoanRecord](q, p, p.orderBy(recordSort, "borrow_date DESC"),
		func(tx *gorm.DB) *gorm.DB { return tx.Preload("Items", orderedItems) })
}

func orderedItems(tx *gorm.DB) *gorm.DB { return tx.Order("position ASC") }
