package models

import (
	"time"
)

// User represents a registered account. Rows are created at registration,
// mutated only by admin role updates, and never deleted.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"not null" json:"name"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"` // never exposed in JSON
	RoleID       uint      `gorm:"not null;index" json:"role_id"`
	Role         Role      `gorm:"foreignKey:RoleID" json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName specifies the table name for the User model
func (User) TableName() string {
	return "users"
}

// RoleName returns the user's role as a typed role name.
func (u *User) RoleName() RoleName {
	return RoleName(u.Role.Name)
}
