package models

import (
	"time"

	"gorm.io/datatypes"
)

type Medicine struct {
	ID        int64      `gorm:"primaryKey" json:"id"`
	UserID    int64      `gorm:"not null;index" json:"user_id"`
	Name      string     `gorm:"size:255;not null" json:"name"`
	Dosage    string     `gorm:"size:255" json:"dosage"`
	Schedules []Schedule `gorm:"foreignKey:MedicineID;constraint:OnDelete:CASCADE" json:"schedules"`
	CreatedAt time.Time  `json:"created_at"`
	User      *User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// Schedule is one reminder slot of a medicine. Time is always HH:MM:SS.
type Schedule struct {
	ID         int64                       `gorm:"primaryKey" json:"-"`
	MedicineID int64                       `gorm:"not null;index" json:"-"`
	Position   int                         `gorm:"not null;default:0" json:"-"`
	Time       string                      `gorm:"size:8;not null" json:"time"`
	Days       datatypes.JSONSlice[string] `json:"days"`
}

func (Schedule) TableName() string { return "medicine_schedules" }
