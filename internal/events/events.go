// Package events announces prescription changes to downstream consumers.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

const (
	PrescriptionUploaded = "prescription.uploaded"
	PrescriptionDeleted  = "prescription.deleted"
)

type Event struct {
	Type           string    `json:"type"`
	UserID         int64     `json:"user_id"`
	PrescriptionID int64     `json:"prescription_id"`
	Filename       string    `json:"filename"`
	DoctorName     string    `json:"doctor_name,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

func encode(e Event) ([]byte, error) {
	if e.Type == "" {
		return nil, fmt.Errorf("event type is required")
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}
	b, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("failed to encode event: %w", err)
	}
	return b, nil
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
func (NopPublisher) Close() error                         { return nil }
