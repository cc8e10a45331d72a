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

const defaultLanguage = "en"

type AuthService struct {
	users  store.UserRepository
	tokens *auth.TokenIssuer
}

func NewAuthService(users store.UserRepository, tokens *auth.TokenIssuer) *AuthService {
	return &AuthService{users: users, tokens: tokens}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	name := strings.TrimSpace(req.Name)
	email := normalizeEmail(req.Email)
	if name == "" || email == "" || req.Password == "" {
		return nil, ErrMissingFields
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	language := strings.TrimSpace(req.Language)
	if language == "" {
		language = defaultLanguage
	}

	user := models.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Language:     language,
	}
	if err := s.users.Create(ctx, &user); err != nil {
		if errors.Is(err, store.ErrEmailTaken) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return s.authResponse(&user)
}

func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	email := normalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return nil, ErrMissingFields
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		return nil, ErrInvalidCredentials
	}

	return s.authResponse(user)
}

func (s *AuthService) authResponse(user *models.User) (*dto.AuthResponse, error) {
	token, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return nil, err
	}
	return &dto.AuthResponse{Token: token, User: dto.NewUserResponse(user)}, nil
}
