package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/testprep-api/internal/domain/entity"
	"github.com/yourusername/testprep-api/internal/handler/dto"
	"github.com/yourusername/testprep-api/internal/middleware"
	apperrors "github.com/yourusername/testprep-api/internal/pkg/errors"
	"github.com/yourusername/testprep-api/internal/service"
)

// TestHandler обрабатывает запросы создания и публикации тестов
type TestHandler struct {
	testService *service.TestService
}

// NewTestHandler создает новый обработчик тестов
func NewTestHandler(testService *service.TestService) *TestHandler {
	return &TestHandler{testService: testService}
}

// CreateTestRequest представляет запрос на создание теста
type CreateTestRequest struct {
	Title           string  `json:"title" binding:"required,min=3,max=200"`
	Description     string  `json:"description" binding:"omitempty,max=2000"`
	TestSeriesID    *uint   `json:"test_series_id"`
	Duration        int     `json:"duration" binding:"required,min=1"`
	TotalMarks      int     `json:"total_marks" binding:"required,min=1"`
	PassingMarks    int     `json:"passing_marks" binding:"min=0"`
	NegativeMarking float64 `json:"negative_marking" binding:"min=0"`
	Instructions    string  `json:"instructions" binding:"omitempty,max=5000"`
}

// CreateSeriesRequest представляет запрос на создание серии тестов
type CreateSeriesRequest struct {
	Title       string `json:"title" binding:"required,min=3,max=200"`
	Description string `json:"description" binding:"omitempty,max=2000"`
	Category    string `json:"category" binding:"omitempty,max=100"`
}

// OptionRequest представляет вариант ответа в запросе на создание вопроса
type OptionRequest struct {
	OptionText string `json:"option_text" binding:"required"`
	IsCorrect  bool   `json:"is_correct"`
}

// AddQuestionRequest представляет запрос на добавление вопроса к тесту
type AddQuestionRequest struct {
	QuestionText string          `json:"question_text" binding:"required"`
	Marks        int             `json:"marks" binding:"required,min=1"`
	QuestionType string          `json:"question_type" binding:"omitempty,oneof=mcq text"`
	Options      []OptionRequest `json:"options" binding:"omitempty,max=10,dive"`
	Explanation  string          `json:"explanation" binding:"omitempty,max=5000"`
}

// SetActiveRequest представляет запрос на включение/выключение теста
type SetActiveRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

// CreateTest обрабатывает запрос на создание теста.
// POST /api/tests
func (h *TestHandler) CreateTest(c *gin.Context) {
	var req CreateTestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	test := &entity.Test{
		Title:           req.Title,
		Description:     req.Description,
		TestSeriesID:    req.TestSeriesID,
		Duration:        req.Duration,
		TotalMarks:      req.TotalMarks,
		PassingMarks:    req.PassingMarks,
		NegativeMarking: req.NegativeMarking,
		Instructions:    req.Instructions,
		IsActive:        true,
	}

	created, err := h.testService.CreateTest(test)
	if err != nil {
		h.handleTestError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewTestResponse(created))
}

// CreateSeries обрабатывает запрос на создание серии тестов.
// POST /api/test-series
func (h *TestHandler) CreateSeries(c *gin.Context) {
	var req CreateSeriesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	creatorID := c.MustGet("user_id").(uint)
	series, err := h.testService.CreateSeries(&entity.TestSeries{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		CreatorID:   &creatorID,
	})
	if err != nil {
		h.handleTestError(c, err)
		return
	}

	c.JSON(http.StatusCreated, series)
}

// AddQuestion обрабатывает добавление вопроса к тесту.
// POST /api/tests/:id/questions
func (h *TestHandler) AddQuestion(c *gin.Context) {
	testID := c.MustGet(middleware.CtxTestID).(uint)

	var req AddQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	question := &entity.Question{
		QuestionText: req.QuestionText,
		Marks:        req.Marks,
		QuestionType: req.QuestionType,
	}

	options := make([]entity.Option, 0, len(req.Options))
	for _, o := range req.Options {
		options = append(options, entity.Option{
			OptionText: o.OptionText,
			IsCorrect:  o.IsCorrect,
		})
	}

	var explanation *entity.Explanation
	if req.Explanation != "" {
		explanation = &entity.Explanation{ExplanationText: req.Explanation}
	}

	created, err := h.testService.AddQuestion(testID, question, options, explanation)
	if err != nil {
		h.handleTestError(c, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

// GetTest возвращает тест с вопросами для прохождения.
// Правильные ответы и разборы скрыты.
// GET /api/tests/:id
func (h *TestHandler) GetTest(c *gin.Context) {
	testID := c.MustGet(middleware.CtxTestID).(uint)

	result, err := h.testService.GetTestWithQuestions(testID)
	if err != nil {
		h.handleTestError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewTestDetailResponse(result))
}

// ListTests возвращает страницу тестов.
// GET /api/tests?page=1&per_page=20
func (h *TestHandler) ListTests(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))

	tests, total, err := h.testService.ListTests(page, perPage)
	if err != nil {
		h.handleTestError(c, err)
		return
	}

	responses := make([]*dto.TestResponse, 0, len(tests))
	for i := range tests {
		responses = append(responses, dto.NewTestResponse(&tests[i]))
	}

	c.JSON(http.StatusOK, dto.PaginatedTestResponse{
		Tests:   responses,
		Total:   total,
		Page:    page,
		PerPage: perPage,
	})
}

// SetActive включает или выключает тест.
// PUT /api/tests/:id/active
func (h *TestHandler) SetActive(c *gin.Context) {
	testID := c.MustGet(middleware.CtxTestID).(uint)

	var req SetActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.testService.SetActive(testID, *req.IsActive); err != nil {
		h.handleTestError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": testID, "is_active": *req.IsActive})
}

// handleTestError обрабатывает ошибки сервиса тестов и отправляет соответствующий HTTP ответ
func (h *TestHandler) handleTestError(c *gin.Context, err error) {
	if errors.Is(err, apperrors.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrConflict) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrValidation) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrForbidden) {
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	} else {
		log.Printf("ERROR: Internal server error in TestHandler: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
