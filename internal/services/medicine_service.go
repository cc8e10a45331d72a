package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/vms003/vatsal-medical/internal/dto"
	"github.com/vms003/vatsal-medical/internal/models"
	"github.com/vms003/vatsal-medical/internal/store"
)

const clockLayout = "15:04:05"

type MedicineService struct {
	medicines store.MedicineRepository
}

func NewMedicineService(medicines store.MedicineRepository) *MedicineService {
	return &MedicineService{medicines: medicines}
}

// NormalizeTime turns "HH:MM" or "HH:MM:SS" into "HH:MM:SS".
func NormalizeTime(value string) (string, error) {
	value = strings.TrimSpace(value)
	for _, layout := range []string{clockLayout, "15:04"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Format(clockLayout), nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidSchedule, value)
}

func normalizeSchedules(in []dto.ScheduleInput) ([]models.Schedule, error) {
	out := make([]models.Schedule, 0, len(in))
	for i, s := range in {
		t, err := NormalizeTime(s.Time)
		if err != nil {
			return nil, err
		}
		days := lo.Uniq(lo.Compact(lo.Map(s.Days, func(d string, _ int) string {
			return strings.TrimSpace(d)
		})))
		out = append(out, models.Schedule{Position: i, Time: t, Days: days})
	}
	return out, nil
}

func (s *MedicineService) List(ctx context.Context, userID int64) ([]models.Medicine, error) {
	list, err := s.medicines.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list medicines: %w", err)
	}
	if list == nil {
		list = []models.Medicine{}
	}
	return list, nil
}

func (s *MedicineService) Create(ctx context.Context, userID int64, req *dto.CreateMedicineRequest) (*models.Medicine, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrMissingName
	}
	schedules, err := normalizeSchedules(req.Schedules)
	if err != nil {
		return nil, err
	}

	m := models.Medicine{
		UserID:    userID,
		Name:      name,
		Dosage:    strings.TrimSpace(req.Dosage),
		Schedules: schedules,
	}
	if err := s.medicines.Create(ctx, &m); err != nil {
		return nil, fmt.Errorf("failed to create medicine: %w", err)
	}
	return &m, nil
}

// Update applies a partial update. Schedules are replaced wholesale when present.
func (s *MedicineService) Update(ctx context.Context, userID, id int64, req *dto.UpdateMedicineRequest) error {
	var schedules []models.Schedule
	if req.Schedules != nil {
		normalized, err := normalizeSchedules(*req.Schedules)
		if err != nil {
			return err
		}
		schedules = normalized
	}

	err := s.medicines.Update(ctx, userID, id, func(m *models.Medicine) error {
		if req.Name != nil {
			name := strings.TrimSpace(*req.Name)
			if name == "" {
				return ErrMissingName
			}
			m.Name = name
		}
		if req.Dosage != nil {
			m.Dosage = strings.TrimSpace(*req.Dosage)
		}
		if req.Schedules != nil {
			m.Schedules = schedules
		}
		return nil
	})
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

func (s *MedicineService) Delete(ctx context.Context, userID, id int64) error {
	err := s.medicines.Delete(ctx, userID, id)
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
