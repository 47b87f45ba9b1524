package db

import (
	"context"

	"github.com/aliarmgnuygun/LibraryManagementSystem-sub000/models"

	"gorm.io/gorm"
)

// Books (目录服务写入；这里只负责库存)

func (r *Repo) CreateBook(ctx context.Context, b *models.Book) error {
	return r.DB.WithContext(ctx).Create(b).Error
}

func (r *Repo) FindBookByID(ctx context.Context, id string) (*models.Book, error) {
	if !validID(id) {
		return nil, gorm.ErrRecordNotFound
	}
	var b models.Book
	if err := r.DB.WithContext(ctx).First(&b, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

// LockBookByID reads the book row under an exclusive lock. Call it inside Transaction.
func (r *Repo) LockBookByID(ctx context.Context, id string) (*models.Book, error) {
	if !validID(id) {
		return nil, gorm.ErrRecordNotFound
	}
	var b models.Book
	if err := r.forUpdate(r.DB.WithContext(ctx)).First(&b, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

// SaveBookInventory writes copy_count/available only if nobody wrote the row
// since it was read (version compare-and-set). On success b.Version is bumped.
func (r *Repo) SaveBookInventory(ctx context.Context, b *models.Book) error {
	res := r.DB.WithContext(ctx).Model(&models.Book{}).
		Where("id = ? AND version = ?", b.ID, b.Version).
		Updates(map[string]any{
			"copy_count": b.CopyCount,
			"available":  b.Available,
			"version":    b.Version + 1,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrConcurrentUpdate
	}
	b.Version++
	return nil
}

func (r *Repo) IsBookAvailable(ctx context.Context, id string) (bool, error) {
	if !validID(id) {
		return false, gorm.ErrRecordNotFound
	}
	var b models.Book
	if err := r.DB.WithContext(ctx).
		Select("id", "available").
		First(&b, "id = ?", id).Error; err != nil {
		return false, err
	}
	return b.Available, nil
}
