package models

import "time"

// Roles as stored by the identity subsystem.
const (
	RoleChild   = "child"
	RoleParent  = "parent"
	RoleTeacher = "teacher"
	RoleAdmin   = "admin"
)

// User is owned by the identity subsystem. The engine only reads it.
type User struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Username     string     `gorm:"uniqueIndex;not null;size:50" json:"username"`
	Email        string     `gorm:"uniqueIndex;not null;size:100" json:"email"`
	PasswordHash string     `gorm:"not null" json:"-"`
	FirstName    string     `gorm:"size:50" json:"firstName"`
	LastName     string     `gorm:"size:50" json:"lastName"`
	DateOfBirth  time.Time  `json:"dateOfBirth"`
	Role         string     `gorm:"not null;default:child" json:"role"` // child, parent, teacher, admin
	ParentID     *uint      `gorm:"index" json:"parentId,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	LastLoginAt  *time.Time `json:"lastLoginAt,omitempty"`
}

func (u User) DisplayName() string {
	if u.FirstName == "" && u.LastName == "" {
		return u.Username
	}
	return u.FirstName + " " + u.LastName
}
