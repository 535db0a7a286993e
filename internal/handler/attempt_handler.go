package handler

import (
	"encoding/csv"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"github.com/yourusername/testprep-api/internal/handler/dto"
	"github.com/yourusername/testprep-api/internal/middleware"
	apperrors "github.com/yourusername/testprep-api/internal/pkg/errors"
	"github.com/yourusername/testprep-api/internal/service"
)

// AttemptHandler обрабатывает запросы жизненного цикла попыток
type AttemptHandler struct {
	attemptService *service.AttemptService
}

// NewAttemptHandler создает новый обработчик попыток
func NewAttemptHandler(attemptService *service.AttemptService) *AttemptHandler {
	return &AttemptHandler{
		attemptService: attemptService,
	}
}

// SubmitAnswerRequest представляет запрос на отправку ответа
type SubmitAnswerRequest struct {
	QuestionID uint   `json:"question_id" binding:"required"`
	Answer     string `json:"answer" binding:"required"`
}

// StartAttempt обрабатывает запрос на начало попытки.
// POST /api/tests/:id/start
// 201 - создана новая попытка, 200 - возвращена существующая незавершенная.
func (h *AttemptHandler) StartAttempt(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)
	testID := c.MustGet(middleware.CtxTestID).(uint)

	attempt, resumed, err := h.attemptService.StartAttempt(userID, testID)
	if err != nil {
		h.handleAttemptError(c, err)
		return
	}

	status := http.StatusCreated
	if resumed {
		status = http.StatusOK
	}
	c.JSON(status, dto.NewAttemptResponse(attempt))
}

// SubmitAnswer обрабатывает отправку ответа на вопрос.
// POST /api/test-attempts/:id/submit-answer
func (h *AttemptHandler) SubmitAnswer(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)
	attemptID := c.MustGet(middleware.CtxAttemptID).(uint)

	var req SubmitAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	answer, err := h.attemptService.SubmitAnswer(userID, attemptID, req.QuestionID, req.Answer)
	if err != nil {
		h.handleAttemptError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewAnswerResponse(answer))
}

// CompleteAttempt обрабатывает завершение попытки.
// POST /api/test-attempts/:id/complete
func (h *AttemptHandler) CompleteAttempt(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)
	attemptID := c.MustGet(middleware.CtxAttemptID).(uint)

	attempt, err := h.attemptService.CompleteAttempt(userID, attemptID)
	if err != nil {
		h.handleAttemptError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewAttemptResponse(attempt))
}

// GetAttemptDetail возвращает попытку с ответами.
// GET /api/test-attempts/:id
func (h *AttemptHandler) GetAttemptDetail(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)
	role := c.MustGet("role").(string)
	attemptID := c.MustGet(middleware.CtxAttemptID).(uint)

	detail, err := h.attemptService.GetAttemptDetail(userID, role, attemptID)
	if err != nil {
		h.handleAttemptError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewAttemptDetailResponse(detail))
}

// ListUserAttempts возвращает все попытки текущего пользователя.
// GET /api/users/test-attempts
func (h *AttemptHandler) ListUserAttempts(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)

	attempts, err := h.attemptService.ListUserAttempts(userID)
	if err != nil {
		h.handleAttemptError(c, err)
		return
	}

	responses := make([]dto.AttemptWithTestResponse, 0, len(attempts))
	for i := range attempts {
		responses = append(responses, dto.NewAttemptWithTestResponse(&attempts[i]))
	}
	c.JSON(http.StatusOK, gin.H{"attempts": responses, "total": len(responses)})
}

// ListTestAttempts возвращает все попытки по тесту (для администратора).
// GET /api/admin/tests/:id/attempts
func (h *AttemptHandler) ListTestAttempts(c *gin.Context) {
	testID := c.MustGet(middleware.CtxTestID).(uint)

	attempts, err := h.attemptService.ListTestAttempts(testID)
	if err != nil {
		h.handleAttemptError(c, err)
		return
	}

	responses := make([]*dto.AttemptResponse, 0, len(attempts))
	for i := range attempts {
		responses = append(responses, dto.NewAttemptResponse(&attempts[i]))
	}
	c.JSON(http.StatusOK, gin.H{"attempts": responses, "total": len(responses)})
}

// ExportTestAttempts выгружает попытки теста в CSV или Excel.
// GET /api/admin/tests/:id/attempts/export?format=csv|xlsx
func (h *AttemptHandler) ExportTestAttempts(c *gin.Context) {
	testID := c.MustGet(middleware.CtxTestID).(uint)
	format := c.DefaultQuery("format", "csv")

	rows, err := h.attemptService.ExportTestAttempts(testID)
	if err != nil {
		h.handleAttemptError(c, err)
		return
	}

	filename := fmt.Sprintf("test_%d_attempts_%s", testID, time.Now().Format("2006-01-02"))

	switch format {
	case "xlsx":
		h.exportXLSX(c, rows, filename)
	default:
		h.exportCSV(c, rows, filename)
	}
}

// exportCSV экспортирует попытки в CSV с правильным экранированием спецсимволов
func (h *AttemptHandler) exportCSV(c *gin.Context, rows []service.AttemptExportRow, filename string) {
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.csv\"", filename))

	// BOM для корректного отображения UTF-8 в Excel
	c.Writer.Write([]byte{0xEF, 0xBB, 0xBF})

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	writer.Write([]string{"Попытка", "Пользователь", "Email", "Начата", "Завершена", "Баллы", "Правильных", "Неправильных", "Без ответа", "Процент", "Время (сек)"})

	for _, r := range rows {
		completed := "Нет"
		if r.IsCompleted {
			completed = "Да"
		}

		writer.Write([]string{
			strconv.FormatUint(uint64(r.AttemptID), 10),
			sanitizeForExcel(r.Username),
			sanitizeForExcel(r.Email),
			r.StartTime.Format(time.RFC3339),
			completed,
			formatFloatPtr(r.Score),
			formatIntPtr(r.CorrectAnswers),
			formatIntPtr(r.IncorrectAnswers),
			formatIntPtr(r.Unanswered),
			formatFloatPtr(r.Percentage),
			formatIntPtr(r.TimeTaken),
		})
	}
}

// exportXLSX экспортирует попытки в Excel с использованием StreamWriter
func (h *AttemptHandler) exportXLSX(c *gin.Context, rows []service.AttemptExportRow, filename string) {
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.xlsx\"", filename))

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Попытки"
	f.SetSheetName("Sheet1", sheetName)

	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		log.Printf("[AttemptHandler] Ошибка создания StreamWriter: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create Excel file"})
		return
	}

	headers := []interface{}{"Попытка", "Пользователь", "Email", "Начата", "Завершена", "Баллы", "Правильных", "Неправильных", "Без ответа", "Процент", "Время (сек)"}
	if err := sw.SetRow("A1", headers); err != nil {
		log.Printf("[AttemptHandler] Ошибка записи заголовков: %v", err)
	}

	for i, r := range rows {
		rowNum := i + 2 // 1 строка - заголовки
		cell := fmt.Sprintf("A%d", rowNum)

		completed := "Нет"
		if r.IsCompleted {
			completed = "Да"
		}

		row := []interface{}{
			r.AttemptID,
			sanitizeForExcel(r.Username),
			sanitizeForExcel(r.Email),
			r.StartTime.Format(time.RFC3339),
			completed,
			formatFloatPtr(r.Score),
			formatIntPtr(r.CorrectAnswers),
			formatIntPtr(r.IncorrectAnswers),
			formatIntPtr(r.Unanswered),
			formatFloatPtr(r.Percentage),
			formatIntPtr(r.TimeTaken),
		}
		if err := sw.SetRow(cell, row); err != nil {
			log.Printf("[AttemptHandler] Ошибка записи строки %d: %v", rowNum, err)
		}
	}

	if err := sw.Flush(); err != nil {
		log.Printf("[AttemptHandler] Ошибка при Flush: %v", err)
	}

	if err := f.Write(c.Writer); err != nil {
		log.Printf("[AttemptHandler] Ошибка записи Excel в response: %v", err)
	}
}

// sanitizeForExcel экранирует данные для защиты от formula injection в Excel/CSV
func sanitizeForExcel(s string) string {
	if len(s) == 0 {
		return s
	}
	// Символы, начинающие формулу в Excel/LibreOffice: = + - @ \t \r
	if s[0] == '=' || s[0] == '+' || s[0] == '-' || s[0] == '@' || s[0] == '\t' || s[0] == '\r' {
		return "'" + s
	}
	return s
}

func formatFloatPtr(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', 2, 64)
}

func formatIntPtr(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

// handleAttemptError обрабатывает ошибки сервисов попыток и отправляет соответствующий HTTP ответ
func (h *AttemptHandler) handleAttemptError(c *gin.Context, err error) {
	if errors.Is(err, apperrors.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrInvalidState) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrConflict) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrValidation) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrUnauthorized) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrForbidden) {
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	} else {
		log.Printf("ERROR: Internal server error in AttemptHandler: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
