package dto

import (
	"time"

	"github.com/yourusername/testprep-api/internal/domain/entity"
	"github.com/yourusername/testprep-api/internal/service"
)

// OptionResponse представляет вариант ответа без флага правильности.
// Используется при выдаче теста на прохождение.
type OptionResponse struct {
	ID         uint   `json:"id"`
	OptionText string `json:"option_text"`
}

// OptionWithAnswerResponse представляет вариант ответа с флагом правильности.
// Используется в разборе после завершения попытки.
type OptionWithAnswerResponse struct {
	ID         uint   `json:"id"`
	OptionText string `json:"option_text"`
	IsCorrect  bool   `json:"is_correct"`
}

// QuestionResponse представляет вопрос в формате для прохождения теста:
// без правильных ответов и без разбора.
type QuestionResponse struct {
	ID           uint             `json:"id"`
	TestID       uint             `json:"test_id"`
	QuestionText string           `json:"question_text"`
	Marks        int              `json:"marks"`
	QuestionType string           `json:"question_type"`
	Options      []OptionResponse `json:"options"`
}

// QuestionReviewResponse представляет вопрос в формате разбора:
// с правильными ответами и объяснением.
type QuestionReviewResponse struct {
	ID           uint                       `json:"id"`
	TestID       uint                       `json:"test_id"`
	QuestionText string                     `json:"question_text"`
	Marks        int                        `json:"marks"`
	QuestionType string                     `json:"question_type"`
	Options      []OptionWithAnswerResponse `json:"options"`
	Explanation  string                     `json:"explanation,omitempty"`
}

// TestResponse представляет тест в формате для ответа клиенту
type TestResponse struct {
	ID              uint      `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description,omitempty"`
	TestSeriesID    *uint     `json:"test_series_id,omitempty"`
	Duration        int       `json:"duration"`
	TotalMarks      int       `json:"total_marks"`
	PassingMarks    int       `json:"passing_marks"`
	NegativeMarking float64   `json:"negative_marking"`
	Instructions    string    `json:"instructions,omitempty"`
	IsActive        bool      `json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
}

// TestDetailResponse представляет тест вместе с вопросами для прохождения
type TestDetailResponse struct {
	TestResponse
	Questions []QuestionResponse `json:"questions"`
}

// PaginatedTestResponse представляет пагинированный список тестов
type PaginatedTestResponse struct {
	Tests   []*TestResponse `json:"tests"`
	Total   int64           `json:"total"`
	Page    int             `json:"page"`
	PerPage int             `json:"per_page"`
}

// NewTestResponse создает DTO для теста
func NewTestResponse(test *entity.Test) *TestResponse {
	return &TestResponse{
		ID:              test.ID,
		Title:           test.Title,
		Description:     test.Description,
		TestSeriesID:    test.TestSeriesID,
		Duration:        test.Duration,
		TotalMarks:      test.TotalMarks,
		PassingMarks:    test.PassingMarks,
		NegativeMarking: test.NegativeMarking,
		Instructions:    test.Instructions,
		IsActive:        test.IsActive,
		CreatedAt:       test.CreatedAt,
	}
}

// NewTestDetailResponse создает DTO теста с вопросами для прохождения.
// Правильные ответы и разборы в ответ не попадают.
func NewTestDetailResponse(tq *service.TestWithQuestions) *TestDetailResponse {
	questions := make([]QuestionResponse, 0, len(tq.Questions))
	for i := range tq.Questions {
		q := &tq.Questions[i]
		options := make([]OptionResponse, 0, len(q.Options))
		for j := range q.Options {
			options = append(options, OptionResponse{
				ID:         q.Options[j].ID,
				OptionText: q.Options[j].OptionText,
			})
		}
		questions = append(questions, QuestionResponse{
			ID:           q.Question.ID,
			TestID:       q.Question.TestID,
			QuestionText: q.Question.QuestionText,
			Marks:        q.Question.Marks,
			QuestionType: q.Question.QuestionType,
			Options:      options,
		})
	}

	return &TestDetailResponse{
		TestResponse: *NewTestResponse(tq.Test),
		Questions:    questions,
	}
}

// NewQuestionReviewResponse создает DTO вопроса для разбора попытки
func NewQuestionReviewResponse(q *service.QuestionWithDetails) QuestionReviewResponse {
	options := make([]OptionWithAnswerResponse, 0, len(q.Options))
	for i := range q.Options {
		options = append(options, OptionWithAnswerResponse{
			ID:         q.Options[i].ID,
			OptionText: q.Options[i].OptionText,
			IsCorrect:  q.Options[i].IsCorrect,
		})
	}

	explanation := ""
	if q.Explanation != nil {
		explanation = q.Explanation.ExplanationText
	}

	return QuestionReviewResponse{
		ID:           q.Question.ID,
		TestID:       q.Question.TestID,
		QuestionText: q.Question.QuestionText,
		Marks:        q.Question.Marks,
		QuestionType: q.Question.QuestionType,
		Options:      options,
		Explanation:  explanation,
	}
}
