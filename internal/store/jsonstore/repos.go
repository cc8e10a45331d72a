package jsonstore

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/vms003/vatsal-medical/internal/models"
	"github.com/vms003/vatsal-medical/internal/store"
)

type userRepo struct{ s *Store }

func (r *userRepo) Create(_ context.Context, u *models.User) error {
	return r.s.update(func(doc *Document) error {
		if _, ok := lo.Find(doc.Users, func(existing models.User) bool {
			return strings.EqualFold(existing.Email, u.Email)
		}); ok {
			return store.ErrEmailTaken
		}
		u.ID = nextID(doc.Users, func(x models.User) int64 { return x.ID })
		if u.CreatedAt.IsZero() {
			u.CreatedAt = time.Now().UTC()
		}
		doc.Users = append(doc.Users, *u)
		return nil
	})
}

func (r *userRepo) GetByID(_ context.Context, id int64) (*models.User, error) {
	var found *models.User
	err := r.s.view(func(doc *Document) error {
		u, ok := lo.Find(doc.Users, func(x models.User) bool { return x.ID == id })
		if !ok {
			return store.ErrNotFound
		}
		found = &u
		return nil
	})
	return found, err
}

func (r *userRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	var found *models.User
	err := r.s.view(func(doc *Document) error {
		u, ok := lo.Find(doc.Users, func(x models.User) bool { return strings.EqualFold(x.Email, email) })
		if !ok {
			return store.ErrNotFound
		}
		found = &u
		return nil
	})
	return found, err
}

func (r *userRepo) Update(_ context.Context, id int64, mutate func(u *models.User) error) error {
	return r.s.update(func(doc *Document) error {
		i := slices.IndexFunc(doc.Users, func(x models.User) bool { return x.ID == id })
		if i < 0 {
			return store.ErrNotFound
		}
		u := doc.Users[i]
		if err := mutate(&u); err != nil {
			return err
		}
		u.ID = id
		doc.Users[i] = u
		return nil
	})
}

type medicineRepo struct{ s *Store }

func (r *medicineRepo) Create(_ context.Context, m *models.Medicine) error {
	return r.s.update(func(doc *Document) error {
		m.ID = nextID(doc.Medicines, func(x models.Medicine) int64 { return x.ID })
		if m.CreatedAt.IsZero() {
			m.CreatedAt = time.Now().UTC()
		}
		doc.Medicines = append(doc.Medicines, *m)
		return nil
	})
}

func (r *medicineRepo) ListByUser(_ context.Context, userID int64) ([]models.Medicine, error) {
	var out []models.Medicine
	err := r.s.view(func(doc *Document) error {
		out = lo.Filter(doc.Medicines, func(x models.Medicine, _ int) bool { return x.UserID == userID })
		return nil
	})
	return out, err
}

func (r *medicineRepo) Update(_ context.Context, userID, id int64, mutate func(m *models.Medicine) error) error {
	return r.s.update(func(doc *Document) error {
		i := slices.IndexFunc(doc.Medicines, func(x models.Medicine) bool { return x.ID == id && x.UserID == userID })
		if i < 0 {
			return store.ErrNotFound
		}
		m := doc.Medicines[i]
		if err := mutate(&m); err != nil {
			return err
		}
		m.ID, m.UserID = id, userID
		doc.Medicines[i] = m
		return nil
	})
}

func (r *medicineRepo) Delete(_ context.Context, userID, id int64) error {
	return r.s.update(func(doc *Document) error {
		i := slices.IndexFunc(doc.Medicines, func(x models.Medicine) bool { return x.ID == id && x.UserID == userID })
		if i < 0 {
			return store.ErrNotFound
		}
		doc.Medicines = slices.Delete(doc.Medicines, i, i+1)
		return nil
	})
}

type doctorRepo struct{ s *Store }

func (r *doctorRepo) Create(_ context.Context, d *models.Doctor) error {
	return r.s.update(func(doc *Document) error {
		d.ID = nextID(doc.Doctors, func(x models.Doctor) int64 { return x.ID })
		if d.CreatedAt.IsZero() {
			d.CreatedAt = time.Now().UTC()
		}
		doc.Doctors = append(doc.Doctors, *d)
		return nil
	})
}

func (r *doctorRepo) ListByUser(_ context.Context, userID int64) ([]models.Doctor, error) {
	var out []models.Doctor
	err := r.s.view(func(doc *Document) error {
		out = lo.Filter(doc.Doctors, func(x models.Doctor, _ int) bool { return x.UserID == userID })
		return nil
	})
	return out, err
}

func (r *doctorRepo) Update(_ context.Context, userID, id int64, mutate func(d *models.Doctor) error) error {
	return r.s.update(func(doc *Document) error {
		i := slices.IndexFunc(doc.Doctors, func(x models.Doctor) bool { return x.ID == id && x.UserID == userID })
		if i < 0 {
			return store.ErrNotFound
		}
		d := doc.Doctors[i]
		if err := mutate(&d); err != nil {
			return err
		}
		d.ID, d.UserID = id, userID
		doc.Doctors[i] = d
		return nil
	})
}

func (r *doctorRepo) Delete(_ context.Context, userID, id int64) error {
	return r.s.update(func(doc *Document) error {
		i := slices.IndexFunc(doc.Doctors, func(x models.Doctor) bool { return x.ID == id && x.UserID == userID })
		if i < 0 {
			return store.ErrNotFound
		}
		doc.Doctors = slices.Delete(doc.Doctors, i, i+1)
		return nil
	})
}

type prescriptionRepo struct{ s *Store }

func (r *prescriptionRepo) Create(_ context.Context, p *models.Prescription) error {
	return r.s.update(func(doc *Document) error {
		p.ID = nextID(doc.Prescriptions, func(x models.Prescription) int64 { return x.ID })
		if p.CreatedAt.IsZero() {
			p.CreatedAt = time.Now().UTC()
		}
		stored := *p
		stored.URL = ""
		doc.Prescriptions = append(doc.Prescriptions, stored)
		return nil
	})
}

func (r *prescriptionRepo) ListByUser(_ context.Context, userID int64) ([]models.Prescription, error) {
	var out []models.Prescription
	err := r.s.view(func(doc *Document) error {
		out = lo.Filter(doc.Prescriptions, func(x models.Prescription, _ int) bool { return x.UserID == userID })
		return nil
	})
	return out, err
}

func (r *prescriptionRepo) Delete(_ context.Context, userID, id int64) (*models.Prescription, error) {
	var removed *models.Prescription
	err := r.s.update(func(doc *Document) error {
		i := slices.IndexFunc(doc.Prescriptions, func(x models.Prescription) bool { return x.ID == id && x.UserID == userID })
		if i < 0 {
			return store.ErrNotFound
		}
		p := doc.Prescriptions[i]
		removed = &p
		doc.Prescriptions = slices.Delete(doc.Prescriptions, i, i+1)
		return nil
	})
	return removed, err
}
