package repository

import (
	"time"

	"github.com/yourusername/testprep-api/internal/domain/entity"
)

// AttemptCompletion содержит итоговые поля попытки, записываемые при завершении.
// Все поля применяются одним условным UPDATE (см. AttemptRepository.Complete).
type AttemptCompletion struct {
	EndTime          time.Time
	Score            float64
	TimeTaken        int
	CorrectAnswers   int
	IncorrectAnswers int
	Unanswered       int
	Percentage       float64
}

// AttemptRepository определяет методы для работы с попытками тестов
type AttemptRepository interface {
	Create(attempt *entity.TestAttempt) error
	GetByID(id uint) (*entity.TestAttempt, error)

	// GetIncompleteByUserAndTest возвращает незавершенную попытку пары
	// (user, test) или ErrNotFound.
	GetIncompleteByUserAndTest(userID, testID uint) (*entity.TestAttempt, error)

	GetByUser(userID uint) ([]entity.TestAttempt, error)
	GetByTest(testID uint) ([]entity.TestAttempt, error)

	// Complete записывает итоговые поля и is_completed = true одним
	// условным UPDATE с предикатом is_completed = false. Если попытка
	// уже завершена конкурентным вызовом, возвращает ErrInvalidState;
	// частично завершенная попытка не наблюдаема ни при каком исходе.
	Complete(id uint, result AttemptCompletion) error
}
