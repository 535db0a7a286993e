package middleware

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// Ключи контекста Gin, под которыми middleware сохраняют идентификаторы
// ресурсов из URL. Обработчики читают их через c.MustGet.
const (
	CtxTestID    = "testID"
	CtxAttemptID = "attemptID"
	CtxUserID    = "userID"
)

// TestIDParam извлекает идентификатор теста из параметра :id.
func TestIDParam() gin.HandlerFunc {
	return uintParam("id", CtxTestID)
}

// AttemptIDParam извлекает идентификатор попытки из параметра :id.
func AttemptIDParam() gin.HandlerFunc {
	return uintParam("id", CtxAttemptID)
}

// TargetUserIDParam извлекает идентификатор пользователя из параметра :id.
func TargetUserIDParam() gin.HandlerFunc {
	return uintParam("id", CtxUserID)
}

// uintParam валидирует числовой параметр URL и сохраняет его в контексте как uint
func uintParam(paramName, contextKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		idStr := c.Param(paramName)
		id, err := strconv.ParseUint(idStr, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Invalid %s", paramName)})
			c.Abort()
			return
		}
		c.Set(contextKey, uint(id))
		c.Next()
	}
}
