package postgres

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/yourusername/testprep-api/internal/domain/entity"
	apperrors "github.com/yourusername/testprep-api/internal/pkg/errors"
)

// RefreshTokenRepo реализует repository.RefreshTokenRepository
type RefreshTokenRepo struct {
	db *gorm.DB
}

// NewRefreshTokenRepo создает новый репозиторий refresh-токенов
func NewRefreshTokenRepo(db *gorm.DB) *RefreshTokenRepo {
	return &RefreshTokenRepo{db: db}
}

// Create сохраняет новый refresh-токен
func (r *RefreshTokenRepo) Create(token *entity.RefreshToken) error {
	return r.db.Create(token).Error
}

// GetByTokenHash возвращает токен по SHA-256 хешу
func (r *RefreshTokenRepo) GetByTokenHash(tokenHash string) (*entity.RefreshToken, error) {
	var token entity.RefreshToken
	err := r.db.Where("token_hash = ?", tokenHash).First(&token).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &token, nil
}

// Revoke помечает токен отозванным
func (r *RefreshTokenRepo) Revoke(tokenHash, reason string) error {
	now := time.Now()
	result := r.db.Model(&entity.RefreshToken{}).
		Where("token_hash = ? AND revoked_at IS NULL", tokenHash).
		Updates(map[string]interface{}{
			"revoked_at": now,
			"reason":     reason,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// DeleteExpired удаляет просроченные токены и возвращает их количество
func (r *RefreshTokenRepo) DeleteExpired() (int64, error) {
	result := r.db.Where("expires_at < ?", time.Now()).
		Delete(&entity.RefreshToken{})
	return result.RowsAffected, result.Error
}
