// db/repo_users_admin.go
package db

import (
	"context"
	"strings"

	"github.com/aliarmgnuygun/LibraryManagementSystem-sub000/models"
)

// SetRoleByEmail returns how many accounts were changed (0 if the email is unknown).
func (r *Repo) SetRoleByEmail(ctx context.Context, email, role string) (int64, error) {
	res := r.DB.WithContext(ctx).
		Model(&models.User{}).
		Where("email = ? AND role <> ?", strings.ToLower(strings.TrimSpace(email)), role).
		Update("role", role)
	return res.RowsAffected, res.Error
}

func (r *Repo) CountLibrarians(ctx context.Context) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).
		Model(&models.User{}).
		Where("role = ?", models.RoleLibrarian).
		Count(&n).Error
	return n, err
}
