package entity

import "time"

// Explanation представляет разбор вопроса, показываемый после завершения попытки
type Explanation struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	QuestionID      uint      `gorm:"not null;uniqueIndex" json:"question_id"`
	ExplanationText string    `gorm:"type:text;not null" json:"explanation_text"`
	CreatedAt       time.Time `json:"created_at"`
}

// TableName определяет имя таблицы для GORM
func (Explanation) TableName() string {
	return "explanations"
}
