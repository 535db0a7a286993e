package postgres

import (
	"errors"
	"log"

	"gorm.io/gorm"

	"github.com/yourusername/testprep-api/internal/domain/entity"
	apperrors "github.com/yourusername/testprep-api/internal/pkg/errors"
)

// QuestionRepo реализует repository.QuestionRepository
type QuestionRepo struct {
	db *gorm.DB
}

// NewQuestionRepo создает новый репозиторий вопросов
func NewQuestionRepo(db *gorm.DB) *QuestionRepo {
	return &QuestionRepo{db: db}
}

// CreateWithOptions сохраняет вопрос, его варианты и разбор в одной транзакции
func (r *QuestionRepo) CreateWithOptions(question *entity.Question, options []entity.Option, explanation *entity.Explanation) error {
	tx := r.db.Begin()
	defer func() {
		if rec := recover(); rec != nil {
			tx.Rollback()
			log.Printf("PANIC recovered during CreateWithOptions transaction: %v", rec)
		}
	}()
	if tx.Error != nil {
		return tx.Error
	}

	if err := tx.Create(question).Error; err != nil {
		tx.Rollback()
		return err
	}

	for i := range options {
		options[i].QuestionID = question.ID
	}
	if len(options) > 0 {
		if err := tx.Create(&options).Error; err != nil {
			tx.Rollback()
			return err
		}
	}

	if explanation != nil {
		explanation.QuestionID = question.ID
		if err := tx.Create(explanation).Error; err != nil {
			tx.Rollback()
			return err
		}
	}

	return tx.Commit().Error
}

// GetByID возвращает вопрос по id
func (r *QuestionRepo) GetByID(id uint) (*entity.Question, error) {
	var question entity.Question
	err := r.db.First(&question, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &question, nil
}

// GetByTestID возвращает вопросы теста, отсортированные по id
func (r *QuestionRepo) GetByTestID(testID uint) ([]entity.Question, error) {
	var questions []entity.Question
	err := r.db.Where("test_id = ?", testID).
		Order("id").
		Find(&questions).Error
	return questions, err
}

// GetOptionsByQuestion возвращает варианты ответа на вопрос
func (r *QuestionRepo) GetOptionsByQuestion(questionID uint) ([]entity.Option, error) {
	var options []entity.Option
	err := r.db.Where("question_id = ?", questionID).
		Order("id").
		Find(&options).Error
	return options, err
}

// GetExplanationByQuestion возвращает разбор вопроса или ErrNotFound
func (r *QuestionRepo) GetExplanationByQuestion(questionID uint) (*entity.Explanation, error) {
	var explanation entity.Explanation
	err := r.db.Where("question_id = ?", questionID).First(&explanation).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &explanation, nil
}
