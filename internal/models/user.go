package models

// Role represents a user's access level
type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleUser     Role = "USER"
	RoleReadOnly Role = "READ_ONLY"
)

// ValidRole reports whether r is one of the three defined roles.
func ValidRole(r Role) bool {
	switch r {
	case RoleAdmin, RoleUser, RoleReadOnly:
		return true
	}
	return false
}

// User represents the user model in the database
type User struct {
	Base
	Name         string        `gorm:"not null" json:"name"`
	Email        string        `gorm:"uniqueIndex;not null" json:"email"`
	Password     string        `gorm:"not null" json:"-"`
	Role         Role          `gorm:"type:varchar(16);not null;default:'USER'" json:"role"`
	Transactions []Transaction `gorm:"foreignKey:UserID" json:"transactions,omitempty"`
}
