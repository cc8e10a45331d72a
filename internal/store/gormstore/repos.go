package gormstore

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vms003/vatsal-medical/internal/models"
	"github.com/vms003/vatsal-medical/internal/store"
)

type userRepo struct{ db *gorm.DB }

func (r *userRepo) Create(ctx context.Context, u *models.User) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("LOWER(email) = LOWER(?)", u.Email).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return store.ErrEmailTaken
		}
		if err := tx.Create(u).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return store.ErrEmailTaken
			}
			return err
		}
		return nil
	})
}

func (r *userRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).Where("LOWER(email) = LOWER(?)", email).First(&u).Error; err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (r *userRepo) Update(ctx context.Context, id int64, mutate func(u *models.User) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var u models.User
		if err := tx.Scopes(forUpdate).First(&u, id).Error; err != nil {
			return notFound(err)
		}
		if err := mutate(&u); err != nil {
			return err
		}
		u.ID = id
		return tx.Save(&u).Error
	})
}

type medicineRepo struct{ db *gorm.DB }

func (r *medicineRepo) Create(ctx context.Context, m *models.Medicine) error {
	for i := range m.Schedules {
		m.Schedules[i].Position = i
	}
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *medicineRepo) ListByUser(ctx context.Context, userID int64) ([]models.Medicine, error) {
	meds := []models.Medicine{}
	err := r.db.WithContext(ctx).
		Preload("Schedules", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Where("user_id = ?", userID).
		Order("id").
		Find(&meds).Error
	return meds, err
}

func (r *medicineRepo) Update(ctx context.Context, userID, id int64, mutate func(m *models.Medicine) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m models.Medicine
		if err := tx.Scopes(forUpdate, owned(userID, id)).First(&m).Error; err != nil {
			return notFound(err)
		}
		if err := tx.Where("medicine_id = ?", id).Order("position").Find(&m.Schedules).Error; err != nil {
			return err
		}
		if err := mutate(&m); err != nil {
			return err
		}
		m.ID, m.UserID = id, userID

		if err := tx.Omit(clause.Associations).Save(&m).Error; err != nil {
			return err
		}
		if err := tx.Where("medicine_id = ?", id).Delete(&models.Schedule{}).Error; err != nil {
			return err
		}
		if len(m.Schedules) == 0 {
			return nil
		}
		for i := range m.Schedules {
			m.Schedules[i].ID = 0
			m.Schedules[i].MedicineID = id
			m.Schedules[i].Position = i
		}
		return tx.Create(&m.Schedules).Error
	})
}

func (r *medicineRepo) Delete(ctx context.Context, userID, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m models.Medicine
		if err := tx.Scopes(forUpdate, owned(userID, id)).First(&m).Error; err != nil {
			return notFound(err)
		}
		if err := tx.Where("medicine_id = ?", id).Delete(&models.Schedule{}).Error; err != nil {
			return err
		}
		return tx.Delete(&m).Error
	})
}

type doctorRepo struct{ db *gorm.DB }

func (r *doctorRepo) Create(ctx context.Context, d *models.Doctor) error {
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *doctorRepo) ListByUser(ctx context.Context, userID int64) ([]models.Doctor, error) {
	docs := []models.Doctor{}
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("id").Find(&docs).Error
	return docs, err
}

func (r *doctorRepo) Update(ctx context.Context, userID, id int64, mutate func(d *models.Doctor) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var d models.Doctor
		if err := tx.Scopes(forUpdate, owned(userID, id)).First(&d).Error; err != nil {
			return notFound(err)
		}
		if err := mutate(&d); err != nil {
			return err
		}
		d.ID, d.UserID = id, userID
		return tx.Omit(clause.Associations).Save(&d).Error
	})
}

func (r *doctorRepo) Delete(ctx context.Context, userID, id int64) error {
	res := r.db.WithContext(ctx).Scopes(owned(userID, id)).Delete(&models.Doctor{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

type prescriptionRepo struct{ db *gorm.DB }

func (r *prescriptionRepo) Create(ctx context.Context, p *models.Prescription) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *prescriptionRepo) ListByUser(ctx context.Context, userID int64) ([]models.Prescription, error) {
	pres := []models.Prescription{}
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("id").Find(&pres).Error
	return pres, err
}

func (r *prescriptionRepo) Delete(ctx context.Context, userID, id int64) (*models.Prescription, error) {
	var p models.Prescription
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Scopes(forUpdate, owned(userID, id)).First(&p).Error; err != nil {
			return notFound(err)
		}
		return tx.Delete(&p).Error
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}
