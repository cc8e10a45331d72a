package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// SystemLog stores ERROR+ log records when a relational store is configured.
type SystemLog struct {
	ID        uuid.UUID      `gorm:"type:char(36);primaryKey" json:"id"`
	Timestamp time.Time      `gorm:"not null;index" json:"timestamp"`
	Level     string         `gorm:"size:10;not null;index" json:"level"`
	Message   string         `gorm:"type:text" json:"message"`
	RequestID string         `gorm:"size:64;index" json:"request_id"`
	UserID    *int64         `gorm:"index" json:"user_id"`
	Method    string         `gorm:"size:10" json:"method"`
	Path      string         `gorm:"size:255" json:"path"`
	Error     string         `gorm:"type:text" json:"error"`
	Extra     datatypes.JSON `json:"extra"`
	CreatedAt time.Time      `json:"created_at"`
}

// All lists every model the relational store migrates.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Medicine{},
		&Schedule{},
		&Doctor{},
		&Prescription{},
		&SystemLog{},
	}
}
