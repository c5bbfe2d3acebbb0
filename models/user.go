package models

import (
	"time"
)

// UserRole defines allowed roles in the system
type UserRole string

const (
	RoleStudent UserRole = "student"
	RoleCook    UserRole = "cook"
	RoleAdmin   UserRole = "admin"
)

// Valid reports whether r is one of the known roles.
func (r UserRole) Valid() bool {
	switch r {
	case RoleStudent, RoleCook, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID                 uint      `json:"id" gorm:"primaryKey"`
	Username           string    `json:"username" gorm:"uniqueIndex;not null"`
	PasswordHash       string    `json:"-" gorm:"not null"`
	FullName           string    `json:"full_name" gorm:"not null"`
	Role               UserRole  `json:"role" gorm:"not null;default:'student'"`
	ClassName          string    `json:"class_name"`
	Balance            Money     `json:"balance" gorm:"not null;default:0"` // only the ledger writes this
	Allergies          string    `json:"allergies"`
	DietaryPreferences string    `json:"dietary_preferences"`
	Email              string    `json:"email"`
	Phone              string    `json:"phone"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}
