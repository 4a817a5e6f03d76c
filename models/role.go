package models

// RoleName identifies one of the three fixed roles.
type RoleName string

const (
	RoleClient  RoleName = "client"
	RoleSupport RoleName = "support"
	RoleAdmin   RoleName = "admin"
)

// Valid reports whether the role is one of the closed set. Caller-supplied
// role values must be validated with this before use; unknown roles are
// rejected, never coerced.
func (r RoleName) Valid() bool {
	switch r {
	case RoleClient, RoleSupport, RoleAdmin:
		return true
	}
	return false
}

// Role is a row in the fixed roles table
type Role struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"uniqueIndex;not null" json:"name"`
}

// TableName specifies the table name for the Role model
func (Role) TableName() string {
	return "roles"
}
