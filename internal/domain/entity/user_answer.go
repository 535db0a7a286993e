package entity

import (
	"time"
)

// UserAnswer представляет ответ пользователя на вопрос в рамках попытки.
// Пара (TestAttemptID, QuestionID) уникальна: повторная отправка ответа
// перезаписывает существующую запись (last-write-wins), история не хранится.
type UserAnswer struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	TestAttemptID uint      `gorm:"not null;uniqueIndex:idx_attempt_question" json:"test_attempt_id"`
	QuestionID    uint      `gorm:"not null;uniqueIndex:idx_attempt_question" json:"question_id"`
	Answer        string    `gorm:"type:text;not null" json:"answer"` // id варианта для mcq, текст для остальных типов
	IsCorrect     *bool     `json:"is_correct"`                       // nil = не проверено автоматически
	MarksObtained float64   `gorm:"type:numeric(8,2);not null;default:0" json:"marks_obtained"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (UserAnswer) TableName() string {
	return "user_answers"
}
