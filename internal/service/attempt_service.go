package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/yourusername/testprep-api/internal/domain/entity"
	"github.com/yourusername/testprep-api/internal/domain/repository"
	apperrors "github.com/yourusername/testprep-api/internal/pkg/errors"
)

// questionSetCacheTTL определяет время жизни кеша набора вопросов теста.
const questionSetCacheTTL = 15 * time.Minute

// questionSetKey формирует ключ кеша для набора вопросов теста.
func questionSetKey(testID uint) string {
	return fmt.Sprintf("test:%d:questions", testID)
}

// questionWithOptions объединяет вопрос с его вариантами ответа.
// В таком виде набор вопросов кешируется в Redis и передается в проверку.
type questionWithOptions struct {
	Question entity.Question `json:"question"`
	Options  []entity.Option `json:"options"`
}

// AttemptQuestionReview объединяет вопрос разбора с ответом пользователя.
// UserAnswer равен nil, если пользователь не отвечал на этот вопрос.
type AttemptQuestionReview struct {
	QuestionWithDetails
	UserAnswer *entity.UserAnswer
}

// AttemptDetail содержит попытку вместе с полным разбором: каждый вопрос
// теста с вариантами, флагами правильности, объяснением и ответом пользователя.
type AttemptDetail struct {
	Attempt   *entity.TestAttempt
	Questions []AttemptQuestionReview
}

// AttemptService управляет жизненным циклом попыток прохождения тестов:
// старт, прием ответов с автоматической проверкой и атомарное завершение.
type AttemptService struct {
	attemptRepo  repository.AttemptRepository
	answerRepo   repository.AnswerRepository
	testRepo     repository.TestRepository
	questionRepo repository.QuestionRepository
	cacheRepo    repository.CacheRepository
	emailService EmailService
	userRepo     repository.UserRepository
}

// NewAttemptService создает новый сервис попыток
func NewAttemptService(
	attemptRepo repository.AttemptRepository,
	answerRepo repository.AnswerRepository,
	testRepo repository.TestRepository,
	questionRepo repository.QuestionRepository,
	cacheRepo repository.CacheRepository,
	emailService EmailService,
	userRepo repository.UserRepository,
) *AttemptService {
	return &AttemptService{
		attemptRepo:  attemptRepo,
		answerRepo:   answerRepo,
		testRepo:     testRepo,
		questionRepo: questionRepo,
		cacheRepo:    cacheRepo,
		emailService: emailService,
		userRepo:     userRepo,
	}
}

// StartAttempt начинает попытку прохождения теста. Если у пользователя
// уже есть незавершенная попытка этого теста, возвращает ее вместо
// создания новой: повторный вызов идемпотентен.
//
// Второй результат true означает, что возвращена существующая попытка.
func (s *AttemptService) StartAttempt(userID, testID uint) (*entity.TestAttempt, bool, error) {
	// Сначала ищем незавершенную попытку - возобновление не должно
	// зависеть от текущего состояния теста (тест могли деактивировать
	// после старта).
	existing, err := s.attemptRepo.GetIncompleteByUserAndTest(userID, testID)
	if err == nil {
		log.Printf("[AttemptService] Возобновление попытки ID=%d (user=%d, test=%d)", existing.ID, userID, testID)
		return existing, true, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, false, fmt.Errorf("failed to look up incomplete attempt: %w", err)
	}

	test, err := s.testRepo.GetByID(testID)
	if err != nil {
		return nil, false, err
	}
	if !test.IsActive {
		return nil, false, apperrors.ErrValidation
	}

	attempt := &entity.TestAttempt{
		UserID:     userID,
		TestID:     testID,
		StartTime:  time.Now(),
		TotalMarks: test.TotalMarks,
	}
	if err := s.attemptRepo.Create(attempt); err != nil {
		return nil, false, fmt.Errorf("failed to create attempt: %w", err)
	}

	log.Printf("[AttemptService] Начата попытка ID=%d (user=%d, test=%d)", attempt.ID, userID, testID)
	return attempt, false, nil
}

// SubmitAnswer принимает ответ на вопрос в рамках попытки, сразу проверяет
// его и сохраняет. Повторный ответ на тот же вопрос перезаписывает
// предыдущий - засчитывается последняя отправка.
func (s *AttemptService) SubmitAnswer(userID, attemptID, questionID uint, rawAnswer string) (*entity.UserAnswer, error) {
	attempt, err := s.attemptRepo.GetByID(attemptID)
	if err != nil {
		return nil, err
	}
	if !attempt.IsOwnedBy(userID) {
		return nil, apperrors.ErrForbidden
	}
	if attempt.IsCompleted {
		return nil, apperrors.ErrInvalidState
	}

	test, err := s.testRepo.GetByID(attempt.TestID)
	if err != nil {
		return nil, err
	}

	questions, err := s.loadQuestionSet(attempt.TestID)
	if err != nil {
		return nil, err
	}

	var target *questionWithOptions
	for i := range questions {
		if questions[i].Question.ID == questionID {
			target = &questions[i]
			break
		}
	}
	if target == nil {
		// Различаем несуществующий вопрос и вопрос из другого теста.
		if _, qErr := s.questionRepo.GetByID(questionID); qErr != nil {
			return nil, qErr
		}
		return nil, apperrors.ErrValidation
	}

	grade := GradeAnswer(&target.Question, target.Options, rawAnswer, test.NegativeMarking)

	answer := &entity.UserAnswer{
		TestAttemptID: attemptID,
		QuestionID:    questionID,
		Answer:        rawAnswer,
		IsCorrect:     grade.IsCorrect,
		MarksObtained: grade.MarksObtained,
	}
	if err := s.answerRepo.Upsert(answer); err != nil {
		return nil, fmt.Errorf("failed to save answer: %w", err)
	}

	return answer, nil
}

// CompleteAttempt завершает попытку: считает итоговый балл, счетчики
// правильных/неправильных/пропущенных вопросов и процент, и записывает
// их одним условным UPDATE. Если попытка уже завершена (в том числе
// конкурентным вызовом), возвращает ErrInvalidState; итоги первого
// завершения при этом не изменяются.
func (s *AttemptService) CompleteAttempt(userID, attemptID uint) (*entity.TestAttempt, error) {
	attempt, err := s.attemptRepo.GetByID(attemptID)
	if err != nil {
		return nil, err
	}
	if !attempt.IsOwnedBy(userID) {
		return nil, apperrors.ErrForbidden
	}
	if attempt.IsCompleted {
		return nil, apperrors.ErrInvalidState
	}

	answers, err := s.answerRepo.GetByAttempt(attemptID)
	if err != nil {
		return nil, fmt.Errorf("failed to load answers: %w", err)
	}

	questions, err := s.loadQuestionSet(attempt.TestID)
	if err != nil {
		return nil, err
	}

	var score float64
	var correct, incorrect int
	answered := make(map[uint]bool, len(answers))
	for i := range answers {
		a := &answers[i]
		answered[a.QuestionID] = true
		score += a.MarksObtained
		if a.IsCorrect == nil {
			continue
		}
		if *a.IsCorrect {
			correct++
		} else {
			incorrect++
		}
	}

	unanswered := len(questions) - len(answered)
	if unanswered < 0 {
		unanswered = 0
	}

	// Процент считается от снимка TotalMarks; при отрицательном балле
	// он тоже отрицательный, усечения нет.
	var percentage float64
	if attempt.TotalMarks > 0 {
		percentage = score / float64(attempt.TotalMarks) * 100
	}

	now := time.Now()
	result := repository.AttemptCompletion{
		EndTime:          now,
		Score:            score,
		TimeTaken:        int(now.Sub(attempt.StartTime).Seconds()),
		CorrectAnswers:   correct,
		IncorrectAnswers: incorrect,
		Unanswered:       unanswered,
		Percentage:       percentage,
	}
	if err := s.attemptRepo.Complete(attemptID, result); err != nil {
		return nil, err
	}

	attempt.IsCompleted = true
	attempt.EndTime = &result.EndTime
	attempt.Score = &result.Score
	attempt.TimeTaken = &result.TimeTaken
	attempt.CorrectAnswers = &result.CorrectAnswers
	attempt.IncorrectAnswers = &result.IncorrectAnswers
	attempt.Unanswered = &result.Unanswered
	attempt.Percentage = &result.Percentage

	log.Printf("[AttemptService] Попытка ID=%d завершена: score=%.2f, correct=%d, incorrect=%d, unanswered=%d",
		attemptID, score, correct, incorrect, unanswered)

	go s.notifyResult(attempt)

	return attempt, nil
}

// GetAttemptDetail возвращает попытку с разбором: каждый вопрос теста
// с вариантами, объяснением и ответом пользователя (nil для пропущенных).
// Доступ имеет владелец попытки и администратор.
func (s *AttemptService) GetAttemptDetail(requesterID uint, requesterRole string, attemptID uint) (*AttemptDetail, error) {
	attempt, err := s.attemptRepo.GetByID(attemptID)
	if err != nil {
		return nil, err
	}
	if !attempt.IsOwnedBy(requesterID) && requesterRole != entity.RoleAdmin {
		return nil, apperrors.ErrForbidden
	}

	answers, err := s.answerRepo.GetByAttempt(attemptID)
	if err != nil {
		return nil, fmt.Errorf("failed to load answers: %w", err)
	}
	byQuestion := make(map[uint]*entity.UserAnswer, len(answers))
	for i := range answers {
		byQuestion[answers[i].QuestionID] = &answers[i]
	}

	set, err := s.loadQuestionSet(attempt.TestID)
	if err != nil {
		return nil, err
	}

	questions := make([]AttemptQuestionReview, 0, len(set))
	for i := range set {
		explanation, err := s.questionRepo.GetExplanationByQuestion(set[i].Question.ID)
		if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("failed to load explanation for question %d: %w", set[i].Question.ID, err)
		}
		questions = append(questions, AttemptQuestionReview{
			QuestionWithDetails: QuestionWithDetails{
				Question:    set[i].Question,
				Options:     set[i].Options,
				Explanation: explanation,
			},
			UserAnswer: byQuestion[set[i].Question.ID],
		})
	}

	return &AttemptDetail{Attempt: attempt, Questions: questions}, nil
}

// AttemptWithTest объединяет попытку со сводкой теста для истории пользователя.
// Test равен nil, если тест был удален после прохождения.
type AttemptWithTest struct {
	Attempt entity.TestAttempt
	Test    *entity.Test
}

// ListUserAttempts возвращает все попытки пользователя вместе со сводками
// тестов, чтобы клиент не запрашивал названия тестов по одному.
func (s *AttemptService) ListUserAttempts(userID uint) ([]AttemptWithTest, error) {
	attempts, err := s.attemptRepo.GetByUser(userID)
	if err != nil {
		return nil, err
	}

	tests := make(map[uint]*entity.Test)
	rows := make([]AttemptWithTest, 0, len(attempts))
	for i := range attempts {
		test, ok := tests[attempts[i].TestID]
		if !ok {
			test, err = s.testRepo.GetByID(attempts[i].TestID)
			if err != nil {
				// Попытка по удаленному тесту остается в истории без сводки
				log.Printf("[AttemptService] Не удалось загрузить тест ID=%d для истории попыток: %v", attempts[i].TestID, err)
				test = nil
			}
			tests[attempts[i].TestID] = test
		}
		rows = append(rows, AttemptWithTest{Attempt: attempts[i], Test: test})
	}
	return rows, nil
}

// ListTestAttempts возвращает все попытки по тесту (для администратора)
func (s *AttemptService) ListTestAttempts(testID uint) ([]entity.TestAttempt, error) {
	if _, err := s.testRepo.GetByID(testID); err != nil {
		return nil, err
	}
	return s.attemptRepo.GetByTest(testID)
}

// AttemptExportRow описывает одну строку экспорта попыток теста.
type AttemptExportRow struct {
	AttemptID        uint
	Username         string
	Email            string
	StartTime        time.Time
	IsCompleted      bool
	Score            *float64
	CorrectAnswers   *int
	IncorrectAnswers *int
	Unanswered       *int
	Percentage       *float64
	TimeTaken        *int
}

// ExportTestAttempts собирает все попытки теста со сведениями о
// пользователях для выгрузки администратором.
func (s *AttemptService) ExportTestAttempts(testID uint) ([]AttemptExportRow, error) {
	attempts, err := s.ListTestAttempts(testID)
	if err != nil {
		return nil, err
	}

	users := make(map[uint]*entity.User)
	rows := make([]AttemptExportRow, 0, len(attempts))
	for i := range attempts {
		a := &attempts[i]
		user, ok := users[a.UserID]
		if !ok {
			user, err = s.userRepo.GetByID(a.UserID)
			if err != nil {
				// Попытка осиротевшего пользователя попадает в выгрузку без имени
				log.Printf("[AttemptService] Не удалось загрузить пользователя ID=%d для экспорта: %v", a.UserID, err)
				user = &entity.User{ID: a.UserID}
			}
			users[a.UserID] = user
		}
		rows = append(rows, AttemptExportRow{
			AttemptID:        a.ID,
			Username:         user.Username,
			Email:            user.Email,
			StartTime:        a.StartTime,
			IsCompleted:      a.IsCompleted,
			Score:            a.Score,
			CorrectAnswers:   a.CorrectAnswers,
			IncorrectAnswers: a.IncorrectAnswers,
			Unanswered:       a.Unanswered,
			Percentage:       a.Percentage,
			TimeTaken:        a.TimeTaken,
		})
	}
	return rows, nil
}

// loadQuestionSet возвращает вопросы теста с вариантами ответов,
// используя кеш. Промах кеша или его недоступность не являются ошибкой -
// набор читается из базы и кеш обновляется по возможности.
func (s *AttemptService) loadQuestionSet(testID uint) ([]questionWithOptions, error) {
	key := questionSetKey(testID)

	if s.cacheRepo != nil {
		var cached []questionWithOptions
		if err := s.cacheRepo.GetJSON(key, &cached); err == nil && len(cached) > 0 {
			return cached, nil
		}
	}

	questions, err := s.questionRepo.GetByTestID(testID)
	if err != nil {
		return nil, fmt.Errorf("failed to load questions: %w", err)
	}

	set := make([]questionWithOptions, 0, len(questions))
	for i := range questions {
		options, err := s.questionRepo.GetOptionsByQuestion(questions[i].ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load options for question %d: %w", questions[i].ID, err)
		}
		set = append(set, questionWithOptions{Question: questions[i], Options: options})
	}

	if s.cacheRepo != nil {
		if err := s.cacheRepo.SetJSON(key, set, questionSetCacheTTL); err != nil {
			log.Printf("[AttemptService] Не удалось закешировать вопросы теста ID=%d: %v", testID, err)
		}
	}

	return set, nil
}

// notifyResult отправляет письмо с результатом завершенной попытки.
// Ошибка отправки логируется и не влияет на результат завершения.
func (s *AttemptService) notifyResult(attempt *entity.TestAttempt) {
	if s.emailService == nil || s.userRepo == nil {
		return
	}

	user, err := s.userRepo.GetByID(attempt.UserID)
	if err != nil {
		log.Printf("[AttemptService] Не удалось загрузить пользователя ID=%d для уведомления: %v", attempt.UserID, err)
		return
	}

	test, err := s.testRepo.GetByID(attempt.TestID)
	if err != nil {
		log.Printf("[AttemptService] Не удалось загрузить тест ID=%d для уведомления: %v", attempt.TestID, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := s.emailService.SendAttemptResult(ctx, user, test, attempt); err != nil {
		log.Printf("[AttemptService] Не удалось отправить результат попытки ID=%d: %v", attempt.ID, err)
	}
}
