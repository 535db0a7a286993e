package postgres

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yourusername/testprep-api/internal/domain/entity"
	apperrors "github.com/yourusername/testprep-api/internal/pkg/errors"
)

// AnswerRepo реализует repository.AnswerRepository
type AnswerRepo struct {
	db *gorm.DB
}

// NewAnswerRepo создает новый репозиторий ответов
func NewAnswerRepo(db *gorm.DB) *AnswerRepo {
	return &AnswerRepo{db: db}
}

// Upsert вставляет или перезаписывает ответ по ключу (attempt, question).
// Единственный атомарный стейтмент: конкурентные отправки одного вопроса
// сходятся к порядку записи БД без дублей.
func (r *AnswerRepo) Upsert(answer *entity.UserAnswer) error {
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "test_attempt_id"}, {Name: "question_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"answer", "is_correct", "marks_obtained", "updated_at",
		}),
	}).Create(answer).Error
}

// GetByAttempt возвращает все ответы попытки
func (r *AnswerRepo) GetByAttempt(attemptID uint) ([]entity.UserAnswer, error) {
	var answers []entity.UserAnswer
	err := r.db.Where("test_attempt_id = ?", attemptID).
		Order("question_id").
		Find(&answers).Error
	return answers, err
}

// GetByAttemptAndQuestion возвращает ответ на вопрос в рамках попытки
func (r *AnswerRepo) GetByAttemptAndQuestion(attemptID, questionID uint) (*entity.UserAnswer, error) {
	var answer entity.UserAnswer
	err := r.db.Where("test_attempt_id = ? AND question_id = ?", attemptID, questionID).
		First(&answer).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &answer, nil
}
