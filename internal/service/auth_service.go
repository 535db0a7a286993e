package service

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/testprep-api/internal/domain/entity"
	"github.com/yourusername/testprep-api/internal/domain/repository"
	apperrors "github.com/yourusername/testprep-api/internal/pkg/errors"
	"github.com/yourusername/testprep-api/pkg/auth"
)

// RegisterInput содержит данные регистрации нового пользователя
type RegisterInput struct {
	Username string
	Email    string
	Password string
	FullName string
	Phone    string
}

// TokenPair содержит пару access/refresh токенов
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"` // в секундах
}

// AuthService предоставляет методы регистрации и аутентификации
type AuthService struct {
	userRepo         repository.UserRepository
	refreshTokenRepo repository.RefreshTokenRepository
	jwtService       *auth.JWTService
	refreshTokenTTL  time.Duration
}

// NewAuthService создает новый сервис аутентификации
func NewAuthService(
	userRepo repository.UserRepository,
	refreshTokenRepo repository.RefreshTokenRepository,
	jwtService *auth.JWTService,
	refreshTokenTTLDays int,
) *AuthService {
	if refreshTokenTTLDays <= 0 {
		refreshTokenTTLDays = 30
	}
	return &AuthService{
		userRepo:         userRepo,
		refreshTokenRepo: refreshTokenRepo,
		jwtService:       jwtService,
		refreshTokenTTL:  time.Duration(refreshTokenTTLDays) * 24 * time.Hour,
	}
}

// RegisterUser регистрирует нового пользователя. Роль всегда student:
// преподавателей и администраторов назначают вручную.
func (s *AuthService) RegisterUser(input RegisterInput) (*entity.User, error) {
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	input.Username = strings.TrimSpace(input.Username)

	if input.Username == "" || input.Email == "" {
		return nil, fmt.Errorf("%w: username and email are required", apperrors.ErrValidation)
	}
	if len(input.Password) < 8 {
		return nil, fmt.Errorf("%w: password must be at least 8 characters", apperrors.ErrValidation)
	}

	// Проверяем, существует ли пользователь с таким email
	_, err := s.userRepo.GetByEmail(input.Email)
	if err == nil {
		return nil, fmt.Errorf("%w: user with this email already exists", apperrors.ErrConflict)
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to check email existence: %w", err)
	}

	// Проверяем, существует ли пользователь с таким username
	_, err = s.userRepo.GetByUsername(input.Username)
	if err == nil {
		return nil, fmt.Errorf("%w: user with this username already exists", apperrors.ErrConflict)
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to check username existence: %w", err)
	}

	user := &entity.User{
		Username: input.Username,
		Email:    input.Email,
		Password: input.Password, // хешируется в BeforeSave
		FullName: strings.TrimSpace(input.FullName),
		Phone:    strings.TrimSpace(input.Phone),
		Role:     entity.RoleStudent,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	log.Printf("[AuthService] Зарегистрирован пользователь ID=%d (%s)", user.ID, user.Email)
	return user, nil
}

// LoginUser проверяет учетные данные и выдает пару токенов
func (s *AuthService) LoginUser(email, password string) (*entity.User, *TokenPair, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil, apperrors.ErrUnauthorized
		}
		return nil, nil, err
	}
	if !user.CheckPassword(password) {
		return nil, nil, apperrors.ErrUnauthorized
	}

	tokens, err := s.issueTokens(user)
	if err != nil {
		return nil, nil, err
	}
	return user, tokens, nil
}

// RefreshTokens выдает новую пару токенов по refresh-токену.
// Старый токен отзывается: каждый refresh-токен одноразовый.
func (s *AuthService) RefreshTokens(refreshToken string) (*TokenPair, error) {
	if refreshToken == "" {
		return nil, apperrors.ErrUnauthorized
	}

	stored, err := s.refreshTokenRepo.GetByTokenHash(hashToken(refreshToken))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrUnauthorized
		}
		return nil, err
	}
	if !stored.IsValid() {
		if stored.RevokedAt == nil {
			return nil, apperrors.ErrExpiredToken
		}
		return nil, apperrors.ErrUnauthorized
	}

	user, err := s.userRepo.GetByID(stored.UserID)
	if err != nil {
		return nil, err
	}

	if err := s.refreshTokenRepo.Revoke(stored.TokenHash, "rotated"); err != nil {
		return nil, fmt.Errorf("failed to revoke refresh token: %w", err)
	}

	return s.issueTokens(user)
}

// LogoutUser отзывает refresh-токен. Несуществующий токен не считается
// ошибкой: выход идемпотентен.
func (s *AuthService) LogoutUser(refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	err := s.refreshTokenRepo.Revoke(hashToken(refreshToken), "logout")
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	return nil
}

// GetUserByID возвращает пользователя по ID
func (s *AuthService) GetUserByID(userID uint) (*entity.User, error) {
	return s.userRepo.GetByID(userID)
}

// ChangePassword меняет пароль пользователя после проверки старого
func (s *AuthService) ChangePassword(userID uint, oldPassword, newPassword string) error {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return err
	}
	if !user.CheckPassword(oldPassword) {
		return apperrors.ErrUnauthorized
	}
	if len(newPassword) < 8 {
		return fmt.Errorf("%w: password must be at least 8 characters", apperrors.ErrValidation)
	}

	user.Password = newPassword // хешируется в BeforeSave
	if err := s.userRepo.Update(user); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

// CleanupExpiredTokens удаляет истекшие refresh-токены
func (s *AuthService) CleanupExpiredTokens() {
	deleted, err := s.refreshTokenRepo.DeleteExpired()
	if err != nil {
		log.Printf("[AuthService] Ошибка очистки истекших refresh-токенов: %v", err)
		return
	}
	if deleted > 0 {
		log.Printf("[AuthService] Удалено %d истекших refresh-токенов", deleted)
	}
}

// issueTokens создает access-токен и новый refresh-токен для пользователя.
// В базе хранится только SHA-256 хеш refresh-токена.
func (s *AuthService) issueTokens(user *entity.User) (*TokenPair, error) {
	accessToken, err := s.jwtService.GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken := uuid.NewString()
	record := entity.NewRefreshToken(user.ID, hashToken(refreshToken), time.Now().Add(s.refreshTokenTTL))
	if err := s.refreshTokenRepo.Create(record); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.jwtService.TokenExpiry().Seconds()),
	}, nil
}

// hashToken возвращает hex-представление SHA-256 хеша токена
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
