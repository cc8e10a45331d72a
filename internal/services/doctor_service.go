package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/vms003/vatsal-medical/internal/dto"
	"github.com/vms003/vatsal-medical/internal/models"
	"github.com/vms003/vatsal-medical/internal/store"
)

type DoctorService struct {
	doctors store.DoctorRepository
}

func NewDoctorService(doctors store.DoctorRepository) *DoctorService {
	return &DoctorService{doctors: doctors}
}

func (s *DoctorService) List(ctx context.Context, userID int64) ([]models.Doctor, error) {
	list, err := s.doctors.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list doctors: %w", err)
	}
	if list == nil {
		list = []models.Doctor{}
	}
	return list, nil
}

func (s *DoctorService) Create(ctx context.Context, userID int64, req *dto.CreateDoctorRequest) (*models.Doctor, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrMissingName
	}

	d := models.Doctor{
		UserID:    userID,
		Name:      name,
		Specialty: strings.TrimSpace(req.Specialty),
		Phone:     strings.TrimSpace(req.Phone),
		Email:     strings.TrimSpace(req.Email),
		Notes:     req.Notes,
	}
	if err := s.doctors.Create(ctx, &d); err != nil {
		return nil, fmt.Errorf("failed to create doctor: %w", err)
	}
	return &d, nil
}

func (s *DoctorService) Update(ctx context.Context, userID, id int64, req *dto.UpdateDoctorRequest) error {
	err := s.doctors.Update(ctx, userID, id, func(d *models.Doctor) error {
		if req.Name != nil {
			name := strings.TrimSpace(*req.Name)
			if name == "" {
				return ErrMissingName
			}
			d.Name = name
		}
		if req.Specialty != nil {
			d.Specialty = strings.TrimSpace(*req.Specialty)
		}
		if req.Phone != nil {
			d.Phone = strings.TrimSpace(*req.Phone)
		}
		if req.Email != nil {
			d.Email = strings.TrimSpace(*req.Email)
		}
		if req.Notes != nil {
			d.Notes = *req.Notes
		}
		return nil
	})
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

func (s *DoctorService) Delete(ctx context.Context, userID, id int64) error {
	err := s.doctors.Delete(ctx, userID, id)
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
