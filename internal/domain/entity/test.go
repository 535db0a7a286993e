package entity

import (
	"time"
)

// Test представляет тест (экзаменационную работу) внутри серии тестов.
// TotalMarks и NegativeMarking копируются в попытку при старте,
// поэтому правки теста не влияют на уже начатые попытки.
type Test struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	Title           string    `gorm:"size:200;not null" json:"title"`
	Description     string    `gorm:"type:text;not null;default:''" json:"description"`
	TestSeriesID    *uint     `gorm:"index" json:"test_series_id,omitempty"`
	Duration        int       `gorm:"not null" json:"duration"` // в минутах
	TotalMarks      int       `gorm:"not null" json:"total_marks"`
	PassingMarks    int       `gorm:"not null" json:"passing_marks"`
	NegativeMarking float64   `gorm:"type:numeric(4,2);not null;default:0" json:"negative_marking"`
	Instructions    string    `gorm:"type:text;not null;default:''" json:"instructions,omitempty"`
	IsActive        bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Test) TableName() string {
	return "tests"
}
