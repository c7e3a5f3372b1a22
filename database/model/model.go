// Package model contains the gorm models persisted by taskpanel.
package model

import "time"

// User is an account. Password holds a bcrypt hash for local accounts and is
// nil for accounts created through OAuth.
type User struct {
	Id       int     `json:"id" gorm:"primaryKey;autoIncrement"`
	Name     string  `json:"name" gorm:"size:255"`
	Email    string  `json:"email" gorm:"size:255;uniqueIndex;not null"`
	Password *string `json:"-" gorm:"size:255"`
}

// HasPassword reports whether the account can sign in with a local password.
func (u *User) HasPassword() bool {
	return u.Password != nil && *u.Password != ""
}

// Task is a to-do item owned by a single user.
type Task struct {
	Id        int       `json:"id" gorm:"primaryKey;autoIncrement"`
	UserId    int       `json:"userId" gorm:"index;not null"`
	User      *User     `json:"-" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Text      string    `json:"task" gorm:"column:task;type:text;not null"`
	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime"`
}

// AuditLog records security relevant actions.
type AuditLog struct {
	ID         int       `gorm:"primaryKey;autoIncrement"`
	UserID     int       `gorm:"index"`
	Email      string    `gorm:"size:255"`
	Action     string    `gorm:"size:32;index"`
	Resource   string    `gorm:"size:32"`
	ResourceID int
	IP         string    `gorm:"size:64"`
	UserAgent  string    `gorm:"size:512"`
	Details    string    `gorm:"type:text"`
	Timestamp  time.Time `gorm:"index"`
}
