package entity

import (
	"time"
)

// TestAttempt представляет одну попытку прохождения теста пользователем.
// На пару (user, test) в любой момент может существовать не более одной
// незавершенной попытки; это бизнес-инвариант, который обеспечивает
// AttemptService, а не схема базы.
//
// Итоговые поля (EndTime, Score, TimeTaken, счетчики, Percentage)
// заполняются атомарно при завершении и после этого не меняются.
type TestAttempt struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	UserID           uint       `gorm:"not null;index:idx_attempt_user_test" json:"user_id"`
	TestID           uint       `gorm:"not null;index:idx_attempt_user_test" json:"test_id"`
	StartTime        time.Time  `gorm:"not null" json:"start_time"`
	EndTime          *time.Time `json:"end_time,omitempty"`
	TotalMarks       int        `gorm:"not null" json:"total_marks"` // снимок test.TotalMarks на момент старта
	IsCompleted      bool       `gorm:"not null;default:false" json:"is_completed"`
	Score            *float64   `gorm:"type:numeric(8,2)" json:"score,omitempty"`
	TimeTaken        *int       `json:"time_taken,omitempty"` // в секундах
	CorrectAnswers   *int       `json:"correct_answers,omitempty"`
	IncorrectAnswers *int       `json:"incorrect_answers,omitempty"`
	Unanswered       *int       `json:"unanswered,omitempty"`
	Percentage       *float64   `gorm:"type:numeric(8,2)" json:"percentage,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

// TableName определяет имя таблицы для GORM
func (TestAttempt) TableName() string {
	return "test_attempts"
}

// IsOwnedBy проверяет, принадлежит ли попытка пользователю
func (a *TestAttempt) IsOwnedBy(userID uint) bool {
	return a.UserID == userID
}
