package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/vms003/vatsal-medical/internal/events"
	"github.com/vms003/vatsal-medical/internal/models"
	"github.com/vms003/vatsal-medical/internal/storage"
	"github.com/vms003/vatsal-medical/internal/store"
)

// UploadsPath is the public prefix files are downloaded from.
const UploadsPath = "/uploads/"

// publishTimeout bounds how long a request waits on the event broker.
const publishTimeout = 3 * time.Second

type PrescriptionService struct {
	prescriptions store.PrescriptionRepository
	files         storage.FileStore
	namer         *storage.Namer
	publisher     events.Publisher
	timeout       time.Duration
}

func NewPrescriptionService(prescriptions store.PrescriptionRepository, files storage.FileStore, publisher events.Publisher) *PrescriptionService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &PrescriptionService{
		prescriptions: prescriptions,
		files:         files,
		namer:         storage.NewNamer(),
		publisher:     publisher,
		timeout:       publishTimeout,
	}
}

func withURL(p models.Prescription) models.Prescription {
	p.URL = UploadsPath + p.Filename
	return p
}

func (s *PrescriptionService) List(ctx context.Context, userID int64) ([]models.Prescription, error) {
	list, err := s.prescriptions.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list prescriptions: %w", err)
	}
	return lo.Map(list, func(p models.Prescription, _ int) models.Prescription {
		return withURL(p)
	}), nil
}

// Upload stores content under a fresh collision-free name and records it.
// The file is removed again if the record cannot be written.
func (s *PrescriptionService) Upload(ctx context.Context, userID int64, doctorName, originalName string, content io.Reader) (*models.Prescription, error) {
	if content == nil || strings.TrimSpace(originalName) == "" {
		return nil, ErrNoFile
	}

	filename := s.namer.Next(userID, originalName)
	if err := s.files.Save(ctx, filename, content); err != nil {
		return nil, fmt.Errorf("failed to store upload: %w", err)
	}

	p := models.Prescription{
		UserID:       userID,
		DoctorName:   strings.TrimSpace(doctorName),
		Filename:     filename,
		OriginalName: originalName,
	}
	if err := s.prescriptions.Create(ctx, &p); err != nil {
		if rmErr := s.files.Remove(ctx, filename); rmErr != nil {
			slog.Warn("failed to remove orphaned upload", "filename", filename, "error", rmErr)
		}
		return nil, fmt.Errorf("failed to record prescription: %w", err)
	}

	s.publish(ctx, events.PrescriptionUploaded, &p)
	out := withURL(p)
	return &out, nil
}

// Delete removes the record, then its file. A missing or undeletable file is
// only logged.
func (s *PrescriptionService) Delete(ctx context.Context, userID, id int64) error {
	p, err := s.prescriptions.Delete(ctx, userID, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete prescription: %w", err)
	}

	if err := s.files.Remove(ctx, p.Filename); err != nil {
		slog.Warn("failed to remove prescription file",
			"prescription_id", p.ID,
			"filename", p.Filename,
			"error", err,
		)
	}

	s.publish(ctx, events.PrescriptionDeleted, p)
	return nil
}

// Open streams a stored file by name. Invalid names read as not found.
func (s *PrescriptionService) Open(ctx context.Context, filename string) (io.ReadCloser, error) {
	rc, err := s.files.Open(ctx, filename)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) || errors.Is(err, storage.ErrInvalidName) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	return rc, nil
}

// publish outlives a cancelled request but never more than s.timeout.
func (s *PrescriptionService) publish(ctx context.Context, eventType string, p *models.Prescription) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()

	err := s.publisher.Publish(ctx, events.Event{
		Type:           eventType,
		UserID:         p.UserID,
		PrescriptionID: p.ID,
		Filename:       p.Filename,
		DoctorName:     p.DoctorName,
		OccurredAt:     time.Now().UTC(),
	})
	if err != nil {
		slog.Warn("failed to publish event", "type", eventType, "prescription_id", p.ID, "error", err)
	}
}
