package models

import "time"

// User owns every other record through its ID. PasswordHash never leaves the
// store; handlers respond with dto.UserResponse instead.
type User struct {
	ID           int64     `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"size:255;not null" json:"name"`
	Email        string    `gorm:"size:255;not null;uniqueIndex" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"password_hash"`
	Language     string    `gorm:"size:10;not null;default:'en'" json:"language"`
	CreatedAt    time.Time `json:"created_at"`
}
