package repository

import (
	"github.com/yourusername/testprep-api/internal/domain/entity"
)

// QuestionRepository определяет методы для работы с вопросами теста.
// Для подсистемы попыток репозиторий доступен только на чтение;
// запись выполняет подсистема авторинга (TestService).
type QuestionRepository interface {
	// CreateWithOptions сохраняет вопрос вместе с вариантами ответа
	// и необязательным разбором в одной транзакции.
	CreateWithOptions(question *entity.Question, options []entity.Option, explanation *entity.Explanation) error

	GetByID(id uint) (*entity.Question, error)
	// GetByTestID возвращает вопросы теста в стабильном порядке (по id).
	GetByTestID(testID uint) ([]entity.Question, error)
	GetOptionsByQuestion(questionID uint) ([]entity.Option, error)
	GetExplanationByQuestion(questionID uint) (*entity.Explanation, error)
}
