package db

import (
	"strings"

	"gorm.io/gorm"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// PageRequest: Page 从 1 开始；Sort 形如 "due_date" 或 "-borrow_date"
type PageRequest struct {
	Page int
	Size int
	Sort string
}

type Page[T any] struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Size  int   `json:"size"`
	Items []T   `json:"items"`
}

func (p PageRequest) normalized() PageRequest {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.Size <= 0 || p.Size > maxPageSize {
		p.Size = defaultPageSize
	}
	return p
}

// orderBy resolves Sort against a whitelist of column names; unknown values
// fall back to def.
func (p PageRequest) orderBy(allowed map[string]string, def string) string {
	key := strings.TrimSpace(p.Sort)
	desc := strings.HasPrefix(key, "-")
	key = strings.TrimPrefix(key, "-")
	col, ok := allowed[key]
	if !ok {
		return def
	}
	if desc {
		return col + " DESC"
	}
	return col + " ASC"
}

// paginate counts first, then loads one page ordered by order. scopes only
// apply to the page load (e.g. Preload).
func paginate[T any](q *gorm.DB, p PageRequest, order string, scopes ...func(*gorm.DB) *gorm.DB) (*Page[T], error) {
	p = p.normalized()

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, err
	}

	items := make([]T, 0, p.Size)
	if err := q.Session(&gorm.Session{}).
		Scopes(scopes...).
		Order(order).
		Order("id").
		Offset((p.Page - 1) * p.Size).
		Limit(p.Size).
		Find(&items).Error; err != nil {
		return nil, err
	}
	return &Page[T]{Total: total, Page: p.Page, Size: p.Size, Items: items}, nil
}
