package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yourusername/testprep-api/internal/domain/entity"
)

func TestGradeAnswer_MCQ(t *testing.T) {
	question := &entity.Question{
		ID:           10,
		QuestionText: "Столица Франции?",
		Marks:        4,
		QuestionType: entity.QuestionTypeMCQ,
	}
	options := []entity.Option{
		{ID: 101, QuestionID: 10, OptionText: "Париж", IsCorrect: true},
		{ID: 102, QuestionID: 10, OptionText: "Лион", IsCorrect: false},
		{ID: 103, QuestionID: 10, OptionText: "Марсель", IsCorrect: false},
	}

	testCases := []struct {
		name            string
		rawAnswer       string
		negativeMarking float64
		wantCorrect     bool
		wantMarks       float64
	}{
		{
			name:            "Correct option earns full marks",
			rawAnswer:       "101",
			negativeMarking: 0.25,
			wantCorrect:     true,
			wantMarks:       4,
		},
		{
			name:            "Wrong option is penalized",
			rawAnswer:       "102",
			negativeMarking: 0.25,
			wantCorrect:     false,
			wantMarks:       -1,
		},
		{
			name:            "Wrong option without negative marking",
			rawAnswer:       "103",
			negativeMarking: 0,
			wantCorrect:     false,
			wantMarks:       0,
		},
		{
			name:            "Unknown option id gives no penalty",
			rawAnswer:       "999",
			negativeMarking: 0.25,
			wantCorrect:     false,
			wantMarks:       0,
		},
		{
			name:            "Non-numeric answer gives no penalty",
			rawAnswer:       "Париж",
			negativeMarking: 0.25,
			wantCorrect:     false,
			wantMarks:       0,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result := GradeAnswer(question, options, tc.rawAnswer, tc.negativeMarking)

			if assert.NotNil(t, result.IsCorrect) {
				assert.Equal(t, tc.wantCorrect, *result.IsCorrect)
			}
			assert.InDelta(t, tc.wantMarks, result.MarksObtained, 0.0001)
		})
	}
}

func TestGradeAnswer_TextQuestionIsNotAutoGraded(t *testing.T) {
	question := &entity.Question{
		ID:           20,
		QuestionText: "Объясните закон Ома",
		Marks:        5,
		QuestionType: entity.QuestionTypeText,
	}

	result := GradeAnswer(question, nil, "U = I * R", 0.25)

	assert.Nil(t, result.IsCorrect)
	assert.Zero(t, result.MarksObtained)
}

func TestGradeAnswer_IsDeterministic(t *testing.T) {
	question := &entity.Question{ID: 30, Marks: 2, QuestionType: entity.QuestionTypeMCQ}
	options := []entity.Option{
		{ID: 301, IsCorrect: false},
		{ID: 302, IsCorrect: true},
	}

	first := GradeAnswer(question, options, "301", 0.5)
	second := GradeAnswer(question, options, "301", 0.5)

	assert.Equal(t, *first.IsCorrect, *second.IsCorrect)
	assert.Equal(t, first.MarksObtained, second.MarksObtained)
}
