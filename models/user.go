package models

import (
	"time"
)

const UserTable = "lib_users"

const (
	RoleBorrower  = "borrower"
	RoleLibrarian = "librarian"
)

// User 由账号服务维护，这里只读 id / email / role
type User struct {
	ID          string `gorm:"primaryKey;type:uuid" json:"id"`
	Email       string `gorm:"uniqueIndex;size:255;not null" json:"email"`
	DisplayName string `gorm:"size:255;not null" json:"displayName"`
	Role        string `gorm:"size:20;not null;default:'borrower'" json:"role"`

	LastSeenAt *time.Time `gorm:"index" json:"lastSeenAt,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (User) TableName() string {
	return UserTable
}

func (u *User) IsLibrarian() bool { return u.Role == RoleLibrarian }
