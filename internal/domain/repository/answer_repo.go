package repository

import (
	"github.com/yourusername/testprep-api/internal/domain/entity"
)

// AnswerRepository определяет методы для работы с ответами пользователей
type AnswerRepository interface {
	// Upsert вставляет ответ или перезаписывает существующий по ключу
	// (test_attempt_id, question_id). Последняя запись выигрывает.
	Upsert(answer *entity.UserAnswer) error

	GetByAttempt(attemptID uint) ([]entity.UserAnswer, error)
	GetByAttemptAndQuestion(attemptID, questionID uint) (*entity.UserAnswer, error)
}
