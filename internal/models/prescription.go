package models

import "time"

// Prescription is the metadata of an uploaded file. Filename is the stored,
// collision-free name; OriginalName is what the client sent.
type Prescription struct {
	ID           int64     `gorm:"primaryKey" json:"id"`
	UserID       int64     `gorm:"not null;index" json:"user_id"`
	DoctorName   string    `gorm:"size:255" json:"doctor_name"`
	Filename     string    `gorm:"size:255;not null;uniqueIndex" json:"filename"`
	OriginalName string    `gorm:"size:255" json:"original_name"`
	CreatedAt    time.Time `json:"created_at"`
	URL          string    `gorm:"-" json:"url,omitempty"`
	User         *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}
