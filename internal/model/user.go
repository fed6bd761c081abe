package model

import "time"

// User is an authenticated operator. Role: admin | manager | user.
type User struct {
	UserID       uint   `gorm:"primaryKey"`
	Username     string `gorm:"size:50;uniqueIndex;not null"`
	Email        string `gorm:"size:100;uniqueIndex;not null"`
	PasswordHash string `gorm:"size:255;not null"`
	FullName     *string
	Role         string `gorm:"size:20;not null;default:'user'"`
	IsActive     bool   `gorm:"not null;default:true"`
	CreatedAt    time.Time
	LastLogin    *time.Time
}
