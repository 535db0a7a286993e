package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/yourusername/testprep-api/internal/domain/entity"
	"github.com/yourusername/testprep-api/internal/domain/repository"
	apperrors "github.com/yourusername/testprep-api/internal/pkg/errors"
)

// AttemptRepo реализует repository.AttemptRepository
type AttemptRepo struct {
	db *gorm.DB
}

// NewAttemptRepo создает новый репозиторий попыток
func NewAttemptRepo(db *gorm.DB) *AttemptRepo {
	return &AttemptRepo{db: db}
}

// Create сохраняет новую попытку
func (r *AttemptRepo) Create(attempt *entity.TestAttempt) error {
	return r.db.Create(attempt).Error
}

// GetByID возвращает попытку по id
func (r *AttemptRepo) GetByID(id uint) (*entity.TestAttempt, error) {
	var attempt entity.TestAttempt
	err := r.db.First(&attempt, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &attempt, nil
}

// GetIncompleteByUserAndTest возвращает незавершенную попытку пары (user, test)
func (r *AttemptRepo) GetIncompleteByUserAndTest(userID, testID uint) (*entity.TestAttempt, error) {
	var attempt entity.TestAttempt
	err := r.db.Where("user_id = ? AND test_id = ? AND is_completed = ?", userID, testID, false).
		Order("created_at").
		First(&attempt).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &attempt, nil
}

// GetByUser возвращает все попытки пользователя, новые первыми
func (r *AttemptRepo) GetByUser(userID uint) ([]entity.TestAttempt, error) {
	var attempts []entity.TestAttempt
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&attempts).Error
	return attempts, err
}

// GetByTest возвращает все попытки по тесту, новые первыми
func (r *AttemptRepo) GetByTest(testID uint) ([]entity.TestAttempt, error) {
	var attempts []entity.TestAttempt
	err := r.db.Where("test_id = ?", testID).
		Order("created_at DESC").
		Find(&attempts).Error
	return attempts, err
}

// Complete завершает попытку одним условным UPDATE.
// Предикат is_completed = false закрывает гонку двух конкурентных
// завершений: проигравший вызов получает RowsAffected = 0 и
// ErrInvalidState, а все итоговые поля пишутся одним стейтментом,
// так что частично завершенная попытка не видна читателям.
func (r *AttemptRepo) Complete(id uint, result repository.AttemptCompletion) error {
	res := r.db.Model(&entity.TestAttempt{}).
		Where("id = ? AND is_completed = ?", id, false).
		Updates(map[string]interface{}{
			"is_completed":      true,
			"end_time":          result.EndTime,
			"score":             result.Score,
			"time_taken":        result.TimeTaken,
			"correct_answers":   result.CorrectAnswers,
			"incorrect_answers": result.IncorrectAnswers,
			"unanswered":        result.Unanswered,
			"percentage":        result.Percentage,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		// Существование попытки проверяется вызывающей стороной,
		// поэтому 0 строк означает уже завершенную попытку.
		return apperrors.ErrInvalidState
	}
	return nil
}
