package repository

import (
	"github.com/yourusername/testprep-api/internal/domain/entity"
)

// TestRepository определяет методы для работы с тестами и сериями тестов
type TestRepository interface {
	Create(test *entity.Test) error
	GetByID(id uint) (*entity.Test, error)
	List(limit, offset int) ([]entity.Test, int64, error)
	SetActive(id uint, active bool) error

	CreateSeries(series *entity.TestSeries) error
	GetSeriesByID(id uint) (*entity.TestSeries, error)
}
