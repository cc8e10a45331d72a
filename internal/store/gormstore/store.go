// Package gormstore maps every collection to a table with a user_id foreign
// key. Mutations run inside transactions that lock the owned row first.
package gormstore

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vms003/vatsal-medical/internal/models"
	"github.com/vms003/vatsal-medical/internal/store"
)

type Store struct {
	db *gorm.DB
}

var _ store.Store = (*Store)(nil)

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DB exposes the handle for components that share the connection, such as the
// error log sink.
func (s *Store) DB() *gorm.DB { return s.db }

// Migrate runs AutoMigrate for every model.
func (s *Store) Migrate() error {
	if err := s.db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

func (s *Store) Users() store.UserRepository                 { return &userRepo{db: s.db} }
func (s *Store) Medicines() store.MedicineRepository         { return &medicineRepo{db: s.db} }
func (s *Store) Doctors() store.DoctorRepository             { return &doctorRepo{db: s.db} }
func (s *Store) Prescriptions() store.PrescriptionRepository { return &prescriptionRepo{db: s.db} }

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// forUpdate scopes a query to locking reads inside a transaction.
func forUpdate(db *gorm.DB) *gorm.DB {
	return db.Clauses(clause.Locking{Strength: "UPDATE"})
}

// owned scopes a query to one record of one user.
func owned(userID, id int64) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("id = ? AND user_id = ?", id, userID)
	}
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return store.ErrNotFound
	}
	return err
}
