package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/vms003/vatsal-medical/internal/auth"
	"github.com/vms003/vatsal-medical/internal/dto"
	"github.com/vms003/vatsal-medical/internal/models"
	"github.com/vms003/vatsal-medical/internal/store"
)

type ProfileService struct {
	users store.UserRepository
}

func NewProfileService(users store.UserRepository) *ProfileService {
	return &ProfileService{users: users}
}

func (s *ProfileService) Get(ctx context.Context, userID int64) (*dto.UserResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	resp := dto.NewUserResponse(user)
	return &resp, nil
}

// Update changes only the fields present in req. A new password is re-hashed.
func (s *ProfileService) Update(ctx context.Context, userID int64, req *dto.UpdateProfileRequest) error {
	var hash string
	if req.Password != nil {
		if *req.Password == "" {
			return ErrMissingFields
		}
		h, err := auth.HashPassword(*req.Password)
		if err != nil {
			return err
		}
		hash = h
	}

	err := s.users.Update(ctx, userID, func(u *models.User) error {
		if req.Name != nil {
			name := strings.TrimSpace(*req.Name)
			if name == "" {
				return ErrMissingFields
			}
			u.Name = name
		}
		if req.Language != nil {
			u.Language = strings.TrimSpace(*req.Language)
			if u.Language == "" {
				u.Language = defaultLanguage
			}
		}
		if hash != "" {
			u.PasswordHash = hash
		}
		return nil
	})
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
