package entity

import "time"

// TestSeries представляет серию тестов, объединяющую несколько тестов
type TestSeries struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"size:200;not null" json:"title"`
	Description string    `gorm:"type:text;not null;default:''" json:"description"`
	Category    string    `gorm:"size:100;not null;default:''" json:"category"`
	CreatorID   *uint     `gorm:"index" json:"creator_id,omitempty"`
	IsPublished bool      `gorm:"not null;default:false" json:"is_published"`
	CreatedAt   time.Time `json:"created_at"`
}

// TableName определяет имя таблицы для GORM
func (TestSeries) TableName() string {
	return "test_series"
}
