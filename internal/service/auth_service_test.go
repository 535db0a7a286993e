package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/yourusername/testprep-api/internal/domain/entity"
	apperrors "github.com/yourusername/testprep-api/internal/pkg/errors"
	"github.com/yourusername/testprep-api/pkg/auth"
)

// MockUserRepository реализует repository.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(user *entity.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(id uint) (*entity.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(email string) (*entity.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepository) GetByUsername(username string) (*entity.User, error) {
	args := m.Called(username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepository) Update(user *entity.User) error {
	args := m.Called(user)
	return args.Error(0)
}

// MockRefreshTokenRepository реализует repository.RefreshTokenRepository
type MockRefreshTokenRepository struct {
	mock.Mock
}

func (m *MockRefreshTokenRepository) Create(token *entity.RefreshToken) error {
	args := m.Called(token)
	return args.Error(0)
}

func (m *MockRefreshTokenRepository) GetByTokenHash(tokenHash string) (*entity.RefreshToken, error) {
	args := m.Called(tokenHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.RefreshToken), args.Error(1)
}

func (m *MockRefreshTokenRepository) Revoke(tokenHash, reason string) error {
	args := m.Called(tokenHash, reason)
	return args.Error(0)
}

func (m *MockRefreshTokenRepository) DeleteExpired() (int64, error) {
	args := m.Called()
	return args.Get(0).(int64), args.Error(1)
}

func newTestAuthService(userRepo *MockUserRepository, tokenRepo *MockRefreshTokenRepository) *AuthService {
	jwtService, err := auth.NewJWTService("test-secret", 1)
	if err != nil {
		panic(err)
	}
	return NewAuthService(userRepo, tokenRepo, jwtService, 30)
}

func hashedPassword(t *testing.T, password string) string {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hashed)
}

func TestAuthService_RegisterUser_Success(t *testing.T) {
	// Arrange
	mockUserRepo := new(MockUserRepository)
	mockUserRepo.On("GetByEmail", "new@example.com").Return(nil, apperrors.ErrNotFound)
	mockUserRepo.On("GetByUsername", "newuser").Return(nil, apperrors.ErrNotFound)
	mockUserRepo.On("Create", mock.AnythingOfType("*entity.User")).Return(nil)

	svc := newTestAuthService(mockUserRepo, nil)

	// Act
	user, err := svc.RegisterUser(RegisterInput{
		Username: "newuser",
		Email:    "New@Example.com",
		Password: "password123",
		FullName: "Иван Иванов",
	})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", user.Email, "email нормализуется к нижнему регистру")
	assert.Equal(t, entity.RoleStudent, user.Role, "регистрация всегда дает роль student")
	mockUserRepo.AssertExpectations(t)
}

func TestAuthService_RegisterUser_DuplicateEmail(t *testing.T) {
	// Arrange
	mockUserRepo := new(MockUserRepository)
	existing := &entity.User{ID: 1, Email: "taken@example.com"}
	mockUserRepo.On("GetByEmail", "taken@example.com").Return(existing, nil)

	svc := newTestAuthService(mockUserRepo, nil)

	// Act
	user, err := svc.RegisterUser(RegisterInput{
		Username: "someone",
		Email:    "taken@example.com",
		Password: "password123",
	})

	// Assert
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	assert.Nil(t, user)
	mockUserRepo.AssertNotCalled(t, "Create")
}

func TestAuthService_RegisterUser_ShortPassword(t *testing.T) {
	// Arrange
	mockUserRepo := new(MockUserRepository)
	svc := newTestAuthService(mockUserRepo, nil)

	// Act
	user, err := svc.RegisterUser(RegisterInput{
		Username: "someone",
		Email:    "a@example.com",
		Password: "short",
	})

	// Assert
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Nil(t, user)
}

func TestAuthService_LoginUser_Success(t *testing.T) {
	// Arrange
	mockUserRepo := new(MockUserRepository)
	mockTokenRepo := new(MockRefreshTokenRepository)

	user := &entity.User{
		ID:       1,
		Email:    "student@example.com",
		Password: hashedPassword(t, "password123"),
		Role:     entity.RoleStudent,
	}
	mockUserRepo.On("GetByEmail", "student@example.com").Return(user, nil)
	mockTokenRepo.On("Create", mock.AnythingOfType("*entity.RefreshToken")).Return(nil)

	svc := newTestAuthService(mockUserRepo, mockTokenRepo)

	// Act
	loggedIn, tokens, err := svc.LoginUser("student@example.com", "password123")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, uint(1), loggedIn.ID)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)
	mockTokenRepo.AssertExpectations(t)
}

func TestAuthService_LoginUser_WrongPassword(t *testing.T) {
	// Arrange
	mockUserRepo := new(MockUserRepository)
	mockTokenRepo := new(MockRefreshTokenRepository)

	user := &entity.User{
		ID:       1,
		Email:    "student@example.com",
		Password: hashedPassword(t, "password123"),
	}
	mockUserRepo.On("GetByEmail", "student@example.com").Return(user, nil)

	svc := newTestAuthService(mockUserRepo, mockTokenRepo)

	// Act
	_, tokens, err := svc.LoginUser("student@example.com", "wrong-password")

	// Assert
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	assert.Nil(t, tokens)
	mockTokenRepo.AssertNotCalled(t, "Create")
}

func TestAuthService_RefreshTokens_RotatesToken(t *testing.T) {
	// Arrange
	mockUserRepo := new(MockUserRepository)
	mockTokenRepo := new(MockRefreshTokenRepository)

	refreshToken := "11111111-2222-3333-4444-555555555555"
	stored := entity.NewRefreshToken(1, hashToken(refreshToken), time.Now().Add(time.Hour))
	user := &entity.User{ID: 1, Email: "student@example.com", Role: entity.RoleStudent}

	mockTokenRepo.On("GetByTokenHash", hashToken(refreshToken)).Return(stored, nil)
	mockUserRepo.On("GetByID", uint(1)).Return(user, nil)
	mockTokenRepo.On("Revoke", stored.TokenHash, "rotated").Return(nil)
	mockTokenRepo.On("Create", mock.AnythingOfType("*entity.RefreshToken")).Return(nil)

	svc := newTestAuthService(mockUserRepo, mockTokenRepo)

	// Act
	tokens, err := svc.RefreshTokens(refreshToken)

	// Assert
	require.NoError(t, err)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEqual(t, refreshToken, tokens.RefreshToken, "refresh-токен одноразовый")
	mockTokenRepo.AssertExpectations(t)
}

func TestAuthService_RefreshTokens_Expired(t *testing.T) {
	// Arrange
	mockUserRepo := new(MockUserRepository)
	mockTokenRepo := new(MockRefreshTokenRepository)

	refreshToken := "11111111-2222-3333-4444-555555555555"
	stored := entity.NewRefreshToken(1, hashToken(refreshToken), time.Now().Add(-time.Hour))

	mockTokenRepo.On("GetByTokenHash", hashToken(refreshToken)).Return(stored, nil)

	svc := newTestAuthService(mockUserRepo, mockTokenRepo)

	// Act
	tokens, err := svc.RefreshTokens(refreshToken)

	// Assert
	assert.ErrorIs(t, err, apperrors.ErrExpiredToken)
	assert.Nil(t, tokens)
	mockTokenRepo.AssertNotCalled(t, "Create")
}

func TestAuthService_RefreshTokens_Revoked(t *testing.T) {
	// Arrange
	mockUserRepo := new(MockUserRepository)
	mockTokenRepo := new(MockRefreshTokenRepository)

	refreshToken := "11111111-2222-3333-4444-555555555555"
	stored := entity.NewRefreshToken(1, hashToken(refreshToken), time.Now().Add(time.Hour))
	stored.Revoke("logout")

	mockTokenRepo.On("GetByTokenHash", hashToken(refreshToken)).Return(stored, nil)

	svc := newTestAuthService(mockUserRepo, mockTokenRepo)

	// Act
	tokens, err := svc.RefreshTokens(refreshToken)

	// Assert
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	assert.Nil(t, tokens)
}

func TestAuthService_LogoutUser_IsIdempotent(t *testing.T) {
	// Arrange
	mockTokenRepo := new(MockRefreshTokenRepository)
	mockTokenRepo.On("Revoke", mock.AnythingOfType("string"), "logout").Return(apperrors.ErrNotFound)

	svc := newTestAuthService(nil, mockTokenRepo)

	// Act: отзыв несуществующего токена не считается ошибкой
	err := svc.LogoutUser("unknown-token")

	// Assert
	assert.NoError(t, err)
}
