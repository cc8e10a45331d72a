package models

import "time"

type Doctor struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	UserID    int64     `gorm:"not null;index" json:"user_id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Specialty string    `gorm:"size:255" json:"specialty"`
	Phone     string    `gorm:"size:50" json:"phone"`
	Email     string    `gorm:"size:255" json:"email"`
	Notes     string    `gorm:"type:text" json:"notes"`
	CreatedAt time.Time `json:"created_at"`
	User      *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}
