// Package store defines the persistence contract the services depend on.
// Two backends implement it: jsonstore (a single JSON document rewritten on
// every mutation) and gormstore (relational tables behind GORM).
package store

import (
	"context"
	"errors"

	"github.com/vms003/vatsal-medical/internal/models"
)

var (
	// ErrNotFound covers both absent records and records owned by another user.
	ErrNotFound   = errors.New("record not found")
	ErrEmailTaken = errors.New("email already registered")
)

type UserRepository interface {
	Create(ctx context.Context, u *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// Update applies mutate to the stored user and persists the result.
	Update(ctx context.Context, id int64, mutate func(u *models.User) error) error
}

type MedicineRepository interface {
	Create(ctx context.Context, m *models.Medicine) error
	ListByUser(ctx context.Context, userID int64) ([]models.Medicine, error)
	// Update replaces the stored schedules with whatever mutate leaves in m.Schedules.
	Update(ctx context.Context, userID, id int64, mutate func(m *models.Medicine) error) error
	Delete(ctx context.Context, userID, id int64) error
}

type DoctorRepository interface {
	Create(ctx context.Context, d *models.Doctor) error
	ListByUser(ctx context.Context, userID int64) ([]models.Doctor, error)
	Update(ctx context.Context, userID, id int64, mutate func(d *models.Doctor) error) error
	Delete(ctx context.Context, userID, id int64) error
}

type PrescriptionRepository interface {
	Create(ctx context.Context, p *models.Prescription) error
	ListByUser(ctx context.Context, userID int64) ([]models.Prescription, error)
	// Delete returns the removed record so callers can clean up its file.
	Delete(ctx context.Context, userID, id int64) (*models.Prescription, error)
}

type Store interface {
	Users() UserRepository
	Medicines() MedicineRepository
	Doctors() DoctorRepository
	Prescriptions() PrescriptionRepository
	Ping(ctx context.Context) error
	Close() error
}
