package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/testprep-api/internal/domain/entity"
	apperrors "github.com/yourusername/testprep-api/internal/pkg/errors"
)

func validTest() *entity.Test {
	return &entity.Test{
		Title:           "Математика. Пробный вариант",
		Duration:        90,
		TotalMarks:      100,
		PassingMarks:    35,
		NegativeMarking: 0.25,
	}
}

func TestTestService_CreateTest_Success(t *testing.T) {
	// Arrange
	mockTestRepo := new(MockTestRepository)
	mockTestRepo.On("Create", mock.AnythingOfType("*entity.Test")).Return(nil)

	svc := NewTestService(mockTestRepo, nil, nil)

	// Act
	created, err := svc.CreateTest(validTest())

	// Assert
	require.NoError(t, err)
	assert.NotNil(t, created)
	mockTestRepo.AssertExpectations(t)
}

func TestTestService_CreateTest_Validation(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(*entity.Test)
	}{
		{"Empty title", func(tt *entity.Test) { tt.Title = "" }},
		{"Zero duration", func(tt *entity.Test) { tt.Duration = 0 }},
		{"Zero total marks", func(tt *entity.Test) { tt.TotalMarks = 0 }},
		{"Passing above total", func(tt *entity.Test) { tt.PassingMarks = 150 }},
		{"Negative marking below zero", func(tt *entity.Test) { tt.NegativeMarking = -0.25 }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mockTestRepo := new(MockTestRepository)
			svc := NewTestService(mockTestRepo, nil, nil)

			test := validTest()
			tc.mutate(test)

			created, err := svc.CreateTest(test)

			assert.ErrorIs(t, err, apperrors.ErrValidation)
			assert.Nil(t, created)
			mockTestRepo.AssertNotCalled(t, "Create")
		})
	}
}

func TestTestService_CreateTest_UnknownSeries(t *testing.T) {
	// Arrange
	mockTestRepo := new(MockTestRepository)
	mockTestRepo.On("GetSeriesByID", uint(7)).Return(nil, apperrors.ErrNotFound)

	svc := NewTestService(mockTestRepo, nil, nil)

	test := validTest()
	seriesID := uint(7)
	test.TestSeriesID = &seriesID

	// Act
	created, err := svc.CreateTest(test)

	// Assert
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Nil(t, created)
	mockTestRepo.AssertNotCalled(t, "Create")
}

func TestTestService_AddQuestion_Success(t *testing.T) {
	// Arrange
	mockTestRepo := new(MockTestRepository)
	mockQuestionRepo := new(MockQuestionRepository)

	mockTestRepo.On("GetByID", uint(5)).Return(&entity.Test{ID: 5, IsActive: true}, nil)
	mockQuestionRepo.On("CreateWithOptions",
		mock.AnythingOfType("*entity.Question"),
		mock.AnythingOfType("[]entity.Option"),
		mock.AnythingOfType("*entity.Explanation"),
	).Return(nil)

	svc := NewTestService(mockTestRepo, mockQuestionRepo, nil)

	question := &entity.Question{QuestionText: "2 + 2 = ?", Marks: 1, QuestionType: entity.QuestionTypeMCQ}
	options := []entity.Option{
		{OptionText: "3", IsCorrect: false},
		{OptionText: "4", IsCorrect: true},
	}
	explanation := &entity.Explanation{ExplanationText: "Сложение однозначных чисел"}

	// Act
	created, err := svc.AddQuestion(5, question, options, explanation)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, uint(5), created.TestID, "вопрос привязывается к тесту из URL")
	mockQuestionRepo.AssertExpectations(t)
}

func TestTestService_AddQuestion_MCQValidation(t *testing.T) {
	testCases := []struct {
		name    string
		options []entity.Option
	}{
		{
			name:    "Single option",
			options: []entity.Option{{OptionText: "4", IsCorrect: true}},
		},
		{
			name: "No correct option",
			options: []entity.Option{
				{OptionText: "3", IsCorrect: false},
				{OptionText: "5", IsCorrect: false},
			},
		},
		{
			name: "Two correct options",
			options: []entity.Option{
				{OptionText: "4", IsCorrect: true},
				{OptionText: "четыре", IsCorrect: true},
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mockTestRepo := new(MockTestRepository)
			mockQuestionRepo := new(MockQuestionRepository)
			mockTestRepo.On("GetByID", uint(5)).Return(&entity.Test{ID: 5}, nil)

			svc := NewTestService(mockTestRepo, mockQuestionRepo, nil)

			question := &entity.Question{QuestionText: "2 + 2 = ?", Marks: 1, QuestionType: entity.QuestionTypeMCQ}

			created, err := svc.AddQuestion(5, question, tc.options, nil)

			assert.ErrorIs(t, err, apperrors.ErrValidation)
			assert.Nil(t, created)
			mockQuestionRepo.AssertNotCalled(t, "CreateWithOptions")
		})
	}
}

func TestTestService_AddQuestion_TextWithOptionsRejected(t *testing.T) {
	// Arrange
	mockTestRepo := new(MockTestRepository)
	mockQuestionRepo := new(MockQuestionRepository)
	mockTestRepo.On("GetByID", uint(5)).Return(&entity.Test{ID: 5}, nil)

	svc := NewTestService(mockTestRepo, mockQuestionRepo, nil)

	question := &entity.Question{QuestionText: "Объясните", Marks: 5, QuestionType: entity.QuestionTypeText}
	options := []entity.Option{{OptionText: "A", IsCorrect: true}}

	// Act
	created, err := svc.AddQuestion(5, question, options, nil)

	// Assert
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Nil(t, created)
}

func TestTestService_AddQuestion_TestNotFound(t *testing.T) {
	// Arrange
	mockTestRepo := new(MockTestRepository)
	mockQuestionRepo := new(MockQuestionRepository)
	mockTestRepo.On("GetByID", uint(99)).Return(nil, apperrors.ErrNotFound)

	svc := NewTestService(mockTestRepo, mockQuestionRepo, nil)

	question := &entity.Question{QuestionText: "?", Marks: 1}

	// Act
	created, err := svc.AddQuestion(99, question, nil, nil)

	// Assert
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.Nil(t, created)
}

func TestTestService_GetTestWithQuestions(t *testing.T) {
	// Arrange
	mockTestRepo := new(MockTestRepository)
	mockQuestionRepo := new(MockQuestionRepository)

	test := &entity.Test{ID: 5, Title: "Физика"}
	questions := []entity.Question{
		{ID: 10, TestID: 5, QuestionText: "Вопрос 1", Marks: 4, QuestionType: entity.QuestionTypeMCQ},
	}
	options := []entity.Option{
		{ID: 101, QuestionID: 10, OptionText: "A", IsCorrect: true},
		{ID: 102, QuestionID: 10, OptionText: "B", IsCorrect: false},
	}

	mockTestRepo.On("GetByID", uint(5)).Return(test, nil)
	mockQuestionRepo.On("GetByTestID", uint(5)).Return(questions, nil)
	mockQuestionRepo.On("GetOptionsByQuestion", uint(10)).Return(options, nil)
	// Разбора у вопроса нет - это не ошибка
	mockQuestionRepo.On("GetExplanationByQuestion", uint(10)).Return(nil, apperrors.ErrNotFound)

	svc := NewTestService(mockTestRepo, mockQuestionRepo, nil)

	// Act
	result, err := svc.GetTestWithQuestions(5)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "Физика", result.Test.Title)
	require.Len(t, result.Questions, 1)
	assert.Len(t, result.Questions[0].Options, 2)
	assert.Nil(t, result.Questions[0].Explanation)
}

func TestTestService_SetActive(t *testing.T) {
	// Arrange
	mockTestRepo := new(MockTestRepository)
	mockTestRepo.On("GetByID", uint(5)).Return(&entity.Test{ID: 5, IsActive: true}, nil)
	mockTestRepo.On("SetActive", uint(5), false).Return(nil)

	svc := NewTestService(mockTestRepo, nil, nil)

	// Act
	err := svc.SetActive(5, false)

	// Assert
	require.NoError(t, err)
	mockTestRepo.AssertExpectations(t)
}
