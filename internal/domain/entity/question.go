package entity

import (
	"time"
)

// Типы вопросов. Автоматически проверяется только mcq;
// остальные типы сохраняются, но ждут ручной проверки.
const (
	QuestionTypeMCQ  = "mcq"
	QuestionTypeText = "text"
)

// Question представляет вопрос теста
type Question struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	TestID       uint      `gorm:"not null;index" json:"test_id"`
	QuestionText string    `gorm:"type:text;not null" json:"question_text"`
	Marks        int       `gorm:"not null;default:1" json:"marks"`
	QuestionType string    `gorm:"size:30;not null;default:'mcq'" json:"question_type"`
	CreatedAt    time.Time `json:"created_at"`
}

// TableName определяет имя таблицы для GORM
func (Question) TableName() string {
	return "questions"
}

// IsAutoGraded возвращает true для типов, которые проверяются автоматически
func (q *Question) IsAutoGraded() bool {
	return q.QuestionType == QuestionTypeMCQ
}
