package service

import (
	"errors"
	"fmt"
	"log"

	"github.com/yourusername/testprep-api/internal/domain/entity"
	"github.com/yourusername/testprep-api/internal/domain/repository"
	apperrors "github.com/yourusername/testprep-api/internal/pkg/errors"
)

// TestWithQuestions объединяет тест с его вопросами для выдачи клиенту.
type TestWithQuestions struct {
	Test      *entity.Test
	Questions []QuestionWithDetails
}

// QuestionWithDetails объединяет вопрос с вариантами и разбором.
type QuestionWithDetails struct {
	Question    entity.Question
	Options     []entity.Option
	Explanation *entity.Explanation
}

// TestService предоставляет методы для создания и публикации тестов
type TestService struct {
	testRepo     repository.TestRepository
	questionRepo repository.QuestionRepository
	cacheRepo    repository.CacheRepository
}

// NewTestService создает новый сервис тестов
func NewTestService(
	testRepo repository.TestRepository,
	questionRepo repository.QuestionRepository,
	cacheRepo repository.CacheRepository,
) *TestService {
	return &TestService{
		testRepo:     testRepo,
		questionRepo: questionRepo,
		cacheRepo:    cacheRepo,
	}
}

// CreateTest создает новый тест
func (s *TestService) CreateTest(test *entity.Test) (*entity.Test, error) {
	if test.Title == "" {
		return nil, fmt.Errorf("%w: title is required", apperrors.ErrValidation)
	}
	if test.Duration <= 0 {
		return nil, fmt.Errorf("%w: duration must be positive", apperrors.ErrValidation)
	}
	if test.TotalMarks <= 0 {
		return nil, fmt.Errorf("%w: total marks must be positive", apperrors.ErrValidation)
	}
	if test.PassingMarks < 0 || test.PassingMarks > test.TotalMarks {
		return nil, fmt.Errorf("%w: passing marks must be between 0 and total marks", apperrors.ErrValidation)
	}
	if test.NegativeMarking < 0 {
		return nil, fmt.Errorf("%w: negative marking must not be negative", apperrors.ErrValidation)
	}

	if test.TestSeriesID != nil {
		if _, err := s.testRepo.GetSeriesByID(*test.TestSeriesID); err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, fmt.Errorf("%w: test series %d does not exist", apperrors.ErrValidation, *test.TestSeriesID)
			}
			return nil, err
		}
	}

	if err := s.testRepo.Create(test); err != nil {
		return nil, fmt.Errorf("failed to create test: %w", err)
	}

	log.Printf("[TestService] Создан тест ID=%d (%q)", test.ID, test.Title)
	return test, nil
}

// CreateSeries создает новую серию тестов
func (s *TestService) CreateSeries(series *entity.TestSeries) (*entity.TestSeries, error) {
	if series.Title == "" {
		return nil, fmt.Errorf("%w: title is required", apperrors.ErrValidation)
	}
	if err := s.testRepo.CreateSeries(series); err != nil {
		return nil, fmt.Errorf("failed to create test series: %w", err)
	}
	return series, nil
}

// AddQuestion добавляет вопрос к тесту вместе с вариантами ответа и
// необязательным разбором. Для mcq требуется минимум два варианта и
// ровно один правильный.
func (s *TestService) AddQuestion(testID uint, question *entity.Question, options []entity.Option, explanation *entity.Explanation) (*entity.Question, error) {
	if _, err := s.testRepo.GetByID(testID); err != nil {
		return nil, err
	}

	if question.QuestionText == "" {
		return nil, fmt.Errorf("%w: question text is required", apperrors.ErrValidation)
	}
	if question.Marks <= 0 {
		return nil, fmt.Errorf("%w: marks must be positive", apperrors.ErrValidation)
	}
	if question.QuestionType == "" {
		question.QuestionType = entity.QuestionTypeMCQ
	}
	if question.QuestionType != entity.QuestionTypeMCQ && question.QuestionType != entity.QuestionTypeText {
		return nil, fmt.Errorf("%w: unknown question type %q", apperrors.ErrValidation, question.QuestionType)
	}

	if question.QuestionType == entity.QuestionTypeMCQ {
		if len(options) < 2 {
			return nil, fmt.Errorf("%w: mcq question requires at least two options", apperrors.ErrValidation)
		}
		correctCount := 0
		for i := range options {
			if options[i].OptionText == "" {
				return nil, fmt.Errorf("%w: option text is required", apperrors.ErrValidation)
			}
			if options[i].IsCorrect {
				correctCount++
			}
		}
		if correctCount != 1 {
			return nil, fmt.Errorf("%w: mcq question requires exactly one correct option", apperrors.ErrValidation)
		}
	} else if len(options) > 0 {
		return nil, fmt.Errorf("%w: only mcq questions can have options", apperrors.ErrValidation)
	}

	question.TestID = testID
	if err := s.questionRepo.CreateWithOptions(question, options, explanation); err != nil {
		return nil, fmt.Errorf("failed to create question: %w", err)
	}

	s.invalidateQuestionCache(testID)

	log.Printf("[TestService] Добавлен вопрос ID=%d к тесту ID=%d", question.ID, testID)
	return question, nil
}

// GetTestByID возвращает тест по ID
func (s *TestService) GetTestByID(testID uint) (*entity.Test, error) {
	return s.testRepo.GetByID(testID)
}

// GetTestWithQuestions возвращает тест с вопросами, вариантами и
// разборами. Скрытие правильных ответов от проходящего тест выполняет
// слой DTO, сервис всегда возвращает полные данные.
func (s *TestService) GetTestWithQuestions(testID uint) (*TestWithQuestions, error) {
	test, err := s.testRepo.GetByID(testID)
	if err != nil {
		return nil, err
	}

	questions, err := s.questionRepo.GetByTestID(testID)
	if err != nil {
		return nil, fmt.Errorf("failed to load questions: %w", err)
	}

	details := make([]QuestionWithDetails, 0, len(questions))
	for i := range questions {
		options, err := s.questionRepo.GetOptionsByQuestion(questions[i].ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load options for question %d: %w", questions[i].ID, err)
		}
		explanation, err := s.questionRepo.GetExplanationByQuestion(questions[i].ID)
		if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("failed to load explanation for question %d: %w", questions[i].ID, err)
		}
		details = append(details, QuestionWithDetails{
			Question:    questions[i],
			Options:     options,
			Explanation: explanation,
		})
	}

	return &TestWithQuestions{Test: test, Questions: details}, nil
}

// ListTests возвращает страницу тестов и общее количество
func (s *TestService) ListTests(page, pageSize int) ([]entity.Test, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return s.testRepo.List(pageSize, (page-1)*pageSize)
}

// SetActive включает или выключает тест. Уже начатые попытки
// выключение не затрагивает.
func (s *TestService) SetActive(testID uint, active bool) error {
	if _, err := s.testRepo.GetByID(testID); err != nil {
		return err
	}
	if err := s.testRepo.SetActive(testID, active); err != nil {
		return fmt.Errorf("failed to update test status: %w", err)
	}
	log.Printf("[TestService] Тест ID=%d: is_active=%v", testID, active)
	return nil
}

// invalidateQuestionCache сбрасывает кеш набора вопросов теста.
// Ошибка сброса логируется: кеш истечет по TTL.
func (s *TestService) invalidateQuestionCache(testID uint) {
	if s.cacheRepo == nil {
		return
	}
	if err := s.cacheRepo.Delete(questionSetKey(testID)); err != nil {
		log.Printf("[TestService] Не удалось сбросить кеш вопросов теста ID=%d: %v", testID, err)
	}
}
