package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/yourusername/testprep-api/internal/domain/entity"
	apperrors "github.com/yourusername/testprep-api/internal/pkg/errors"
)

// TestRepo реализует repository.TestRepository
type TestRepo struct {
	db *gorm.DB
}

// NewTestRepo создает новый репозиторий тестов
func NewTestRepo(db *gorm.DB) *TestRepo {
	return &TestRepo{db: db}
}

// Create сохраняет новый тест
func (r *TestRepo) Create(test *entity.Test) error {
	return r.db.Create(test).Error
}

// GetByID возвращает тест по id
func (r *TestRepo) GetByID(id uint) (*entity.Test, error) {
	var test entity.Test
	err := r.db.First(&test, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &test, nil
}

// List возвращает тесты с пагинацией и общее количество
func (r *TestRepo) List(limit, offset int) ([]entity.Test, int64, error) {
	var tests []entity.Test
	var total int64

	if err := r.db.Model(&entity.Test{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&tests).Error
	if err != nil {
		return nil, 0, err
	}

	return tests, total, nil
}

// SetActive включает или выключает тест
func (r *TestRepo) SetActive(id uint, active bool) error {
	result := r.db.Model(&entity.Test{}).
		Where("id = ?", id).
		Update("is_active", active)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// CreateSeries сохраняет новую серию тестов
func (r *TestRepo) CreateSeries(series *entity.TestSeries) error {
	return r.db.Create(series).Error
}

// GetSeriesByID возвращает серию тестов по id
func (r *TestRepo) GetSeriesByID(id uint) (*entity.TestSeries, error) {
	var series entity.TestSeries
	err := r.db.First(&series, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &series, nil
}
