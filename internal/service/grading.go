package service

import (
	"strconv"

	"github.com/yourusername/testprep-api/internal/domain/entity"
)

// GradeResult содержит итог автоматической проверки одного ответа.
// IsCorrect == nil означает, что ответ не проверялся автоматически
// (вопрос не mcq) и ждет ручной проверки.
type GradeResult struct {
	IsCorrect     *bool
	MarksObtained float64
}

// GradeAnswer проверяет ответ на вопрос. Чистая функция: без состояния
// и побочных эффектов, один и тот же вход всегда дает один и тот же
// результат, поэтому повторная отправка ответа безопасна.
//
// Правила для mcq:
//   - выбран правильный вариант:   +question.Marks
//   - выбран неправильный вариант: -negativeMarking * question.Marks
//   - ответ не совпал ни с одним вариантом (мусорный id): неправильно,
//     но без штрафа - это не осознанный неверный выбор.
//
// Решает флаг is_correct самого выбранного варианта: если в данных
// несколько вариантов помечены правильными, любой из них дает полный
// балл; если правильных нет, любой выбор считается неверным.
func GradeAnswer(question *entity.Question, options []entity.Option, rawAnswer string, negativeMarking float64) GradeResult {
	if !question.IsAutoGraded() {
		return GradeResult{IsCorrect: nil, MarksObtained: 0}
	}

	incorrect := false
	optionID, err := strconv.ParseUint(rawAnswer, 10, 32)
	if err != nil {
		return GradeResult{IsCorrect: &incorrect, MarksObtained: 0}
	}

	selected := entity.FindOption(options, uint(optionID))
	if selected == nil {
		return GradeResult{IsCorrect: &incorrect, MarksObtained: 0}
	}

	if selected.IsCorrect {
		correct := true
		return GradeResult{IsCorrect: &correct, MarksObtained: float64(question.Marks)}
	}

	return GradeResult{IsCorrect: &incorrect, MarksObtained: -negativeMarking * float64(question.Marks)}
}
