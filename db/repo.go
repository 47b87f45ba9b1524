package db

import (
	"context"
	"errors"
	"strings"

	"github.com/aliarmgnuygun/LibraryManagementSystem-sub000/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrConcurrentUpdate means a compare-and-set write lost against another writer.
var ErrConcurrentUpdate = errors.New("concurrent update detected")

type Repo struct{ DB *gorm.DB }

func NewRepo(db *gorm.DB) *Repo { return &Repo{DB: db} }

// Transaction runs fn against a Repo bound to a single database transaction.
// Returning an error from fn rolls everything back.
func (r *Repo) Transaction(ctx context.Context, fn func(tx *Repo) error) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Repo{DB: tx})
	})
}

// forUpdate 加行锁；SQLite 没有行锁（整库写锁），直接跳过
func (r *Repo) forUpdate(q *gorm.DB) *gorm.DB {
	if r.DB.Dialector.Name() == "sqlite" {
		return q
	}
	return q.Clauses(clause.Locking{Strength: "UPDATE"})
}

// 非法 uuid 直接当作不存在，避免 Postgres 报类型错误
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// Users

func (r *Repo) CreateUser(ctx context.Context, u *models.User) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	return r.DB.WithContext(ctx).Create(u).Error
}

func (r *Repo) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	if !validID(id) {
		return nil, gorm.ErrRecordNotFound
	}
	var u models.User
	if err := r.DB.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// LockUserByID serializes concurrent borrow transactions of one user.
func (r *Repo) LockUserByID(ctx context.Context, id string) (*models.User, error) {
	if !validID(id) {
		return nil, gorm.ErrRecordNotFound
	}
	var u models.User
	if err := r.forUpdate(r.DB.WithContext(ctx)).First(&u, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *Repo) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := r.DB.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *Repo) TouchUserSeen(ctx context.Context, userID string) error {
	return r.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("last_seen_at", gorm.Expr("CURRENT_TIMESTAMP")).Error
}
