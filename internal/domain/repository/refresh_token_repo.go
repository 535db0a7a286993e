package repository

import (
	"github.com/yourusername/testprep-api/internal/domain/entity"
)

// RefreshTokenRepository определяет методы для работы с refresh-токенами
type RefreshTokenRepository interface {
	Create(token *entity.RefreshToken) error
	GetByTokenHash(tokenHash string) (*entity.RefreshToken, error)
	Revoke(tokenHash, reason string) error
	DeleteExpired() (int64, error)
}
