package dto

import (
	"time"

	"github.com/yourusername/testprep-api/internal/domain/entity"
	"github.com/yourusername/testprep-api/internal/service"
)

// AttemptResponse представляет попытку в формате для ответа клиенту
type AttemptResponse struct {
	ID               uint       `json:"id"`
	UserID           uint       `json:"user_id"`
	TestID           uint       `json:"test_id"`
	StartTime        time.Time  `json:"start_time"`
	EndTime          *time.Time `json:"end_time,omitempty"`
	TotalMarks       int        `json:"total_marks"`
	IsCompleted      bool       `json:"is_completed"`
	Score            *float64   `json:"score,omitempty"`
	TimeTaken        *int       `json:"time_taken,omitempty"`
	CorrectAnswers   *int       `json:"correct_answers,omitempty"`
	IncorrectAnswers *int       `json:"incorrect_answers,omitempty"`
	Unanswered       *int       `json:"unanswered,omitempty"`
	Percentage       *float64   `json:"percentage,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

// AnswerResponse представляет сохраненный ответ пользователя
type AnswerResponse struct {
	ID            uint      `json:"id"`
	TestAttemptID uint      `json:"test_attempt_id"`
	QuestionID    uint      `json:"question_id"`
	Answer        string    `json:"answer"`
	IsCorrect     *bool     `json:"is_correct"`
	MarksObtained float64   `json:"marks_obtained"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// AttemptQuestionReviewResponse представляет вопрос разбора вместе с
// ответом пользователя. UserAnswer равен null для пропущенных вопросов.
type AttemptQuestionReviewResponse struct {
	QuestionReviewResponse
	UserAnswer *AnswerResponse `json:"user_answer"`
}

// AttemptWithTestResponse представляет попытку со сводкой теста
// для истории пользователя
type AttemptWithTestResponse struct {
	AttemptResponse
	Test *TestResponse `json:"test"`
}

// AttemptDetailResponse представляет попытку вместе с разбором вопросов
type AttemptDetailResponse struct {
	Attempt   *AttemptResponse                `json:"attempt"`
	Questions []AttemptQuestionReviewResponse `json:"questions"`
}

// NewAttemptResponse создает DTO для попытки
func NewAttemptResponse(attempt *entity.TestAttempt) *AttemptResponse {
	return &AttemptResponse{
		ID:               attempt.ID,
		UserID:           attempt.UserID,
		TestID:           attempt.TestID,
		StartTime:        attempt.StartTime,
		EndTime:          attempt.EndTime,
		TotalMarks:       attempt.TotalMarks,
		IsCompleted:      attempt.IsCompleted,
		Score:            attempt.Score,
		TimeTaken:        attempt.TimeTaken,
		CorrectAnswers:   attempt.CorrectAnswers,
		IncorrectAnswers: attempt.IncorrectAnswers,
		Unanswered:       attempt.Unanswered,
		Percentage:       attempt.Percentage,
		CreatedAt:        attempt.CreatedAt,
	}
}

// NewAnswerResponse создает DTO для ответа пользователя
func NewAnswerResponse(answer *entity.UserAnswer) AnswerResponse {
	return AnswerResponse{
		ID:            answer.ID,
		TestAttemptID: answer.TestAttemptID,
		QuestionID:    answer.QuestionID,
		Answer:        answer.Answer,
		IsCorrect:     answer.IsCorrect,
		MarksObtained: answer.MarksObtained,
		UpdatedAt:     answer.UpdatedAt,
	}
}

// NewAttemptWithTestResponse создает DTO попытки со сводкой теста
func NewAttemptWithTestResponse(row *service.AttemptWithTest) AttemptWithTestResponse {
	var test *TestResponse
	if row.Test != nil {
		test = NewTestResponse(row.Test)
	}
	return AttemptWithTestResponse{
		AttemptResponse: *NewAttemptResponse(&row.Attempt),
		Test:            test,
	}
}

// NewAttemptDetailResponse создает DTO попытки с разбором вопросов
func NewAttemptDetailResponse(detail *service.AttemptDetail) *AttemptDetailResponse {
	questions := make([]AttemptQuestionReviewResponse, 0, len(detail.Questions))
	for i := range detail.Questions {
		q := &detail.Questions[i]

		var userAnswer *AnswerResponse
		if q.UserAnswer != nil {
			answer := NewAnswerResponse(q.UserAnswer)
			userAnswer = &answer
		}

		questions = append(questions, AttemptQuestionReviewResponse{
			QuestionReviewResponse: NewQuestionReviewResponse(&q.QuestionWithDetails),
			UserAnswer:             userAnswer,
		})
	}
	return &AttemptDetailResponse{
		Attempt:   NewAttemptResponse(detail.Attempt),
		Questions: questions,
	}
}
