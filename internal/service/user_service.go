package service

import (
	"fmt"
	"strings"

	"github.com/yourusername/testprep-api/internal/domain/entity"
	"github.com/yourusername/testprep-api/internal/domain/repository"
	apperrors "github.com/yourusername/testprep-api/internal/pkg/errors"
)

// UserService предоставляет методы для работы с профилем пользователя
type UserService struct {
	userRepo repository.UserRepository
}

// NewUserService создает новый сервис пользователей
func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// GetProfile возвращает профиль пользователя
func (s *UserService) GetProfile(userID uint) (*entity.User, error) {
	return s.userRepo.GetByID(userID)
}

// UpdateProfile обновляет имя и телефон пользователя
func (s *UserService) UpdateProfile(userID uint, fullName, phone string) (*entity.User, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}

	fullName = strings.TrimSpace(fullName)
	if fullName == "" {
		return nil, fmt.Errorf("%w: full name is required", apperrors.ErrValidation)
	}

	user.FullName = fullName
	user.Phone = strings.TrimSpace(phone)
	if err := s.userRepo.Update(user); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return user, nil
}

// SetRole назначает пользователю роль из закрытого набора (для администратора)
func (s *UserService) SetRole(userID uint, role string) (*entity.User, error) {
	if !entity.IsValidRole(role) {
		return nil, fmt.Errorf("%w: unknown role %q", apperrors.ErrValidation, role)
	}

	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}

	user.Role = role
	if err := s.userRepo.Update(user); err != nil {
		return nil, fmt.Errorf("failed to update role: %w", err)
	}
	return user, nil
}
