package errors

import "errors"

// Общие ошибки приложения
var (
	// ErrNotFound используется, когда запись или ресурс не найдены.
	ErrNotFound = errors.New("record not found")

	// ErrUnauthorized используется для ошибок авторизации (неверный токен, нет прав).
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden используется, когда у пользователя недостаточно прав для действия.
	ErrForbidden = errors.New("forbidden")

	// ErrValidation используется для ошибок валидации входных данных.
	ErrValidation = errors.New("validation failed")

	// ErrExpiredToken используется, когда токен (например, refresh) истек.
	ErrExpiredToken = errors.New("token is expired")

	// ErrConflict используется для конфликтов уникальности (например, занятый email).
	ErrConflict = errors.New("resource state conflict")

	// ErrInvalidState используется для операций над завершенной попыткой:
	// повторное завершение или отправка ответа после завершения теста.
	ErrInvalidState = errors.New("invalid state")
)
