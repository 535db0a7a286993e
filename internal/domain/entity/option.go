package entity

import "time"

// Option представляет вариант ответа на вопрос.
// Флаг IsCorrect скрыт от клиента при выдаче теста на прохождение
// (см. dto.NewTestDetailResponse) и виден только при разборе попытки.
type Option struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	QuestionID uint      `gorm:"not null;index" json:"question_id"`
	OptionText string    `gorm:"type:text;not null" json:"option_text"`
	IsCorrect  bool      `gorm:"not null;default:false" json:"is_correct"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName определяет имя таблицы для GORM
func (Option) TableName() string {
	return "options"
}

// FindOption ищет вариант по id среди вариантов вопроса
func FindOption(options []Option, id uint) *Option {
	for i := range options {
		if options[i].ID == id {
			return &options[i]
		}
	}
	return nil
}
